package model

type RecommendationType string

const (
	RecommendationVideo     RecommendationType = "video"
	RecommendationPractice  RecommendationType = "practice"
	RecommendationReview    RecommendationType = "review"
	RecommendationStudyPlan RecommendationType = "study_plan"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

type LearningPace string

const (
	PaceSlow     LearningPace = "slow"
	PaceModerate LearningPace = "moderate"
	PaceFast     LearningPace = "fast"
)

// PersonalizedRecommendation 个性化推荐，每次请求重新计算，不落库
type PersonalizedRecommendation struct {
	Type          RecommendationType `json:"type"`
	Priority      Priority           `json:"priority"`
	Title         string             `json:"title"`
	Description   string             `json:"description"`
	Subject       string             `json:"subject,omitempty"`
	Topic         string             `json:"topic,omitempty"`
	Difficulty    Difficulty         `json:"difficulty,omitempty"`
	EstimatedTime string             `json:"estimatedTime,omitempty"`
	ActionURL     string             `json:"actionUrl,omitempty"`
	Video         *ContentItem       `json:"video,omitempty"`
}

type StudyPlan struct {
	DailyGoal     int      `json:"dailyGoal"`  // 分钟
	WeeklyGoal    int      `json:"weeklyGoal"` // 测验次数
	FocusSubjects []string `json:"focusSubjects"`
}

// AdaptiveLearningInsights 自适应学习分析结果
type AdaptiveLearningInsights struct {
	RecommendedDifficulty Difficulty                   `json:"recommendedDifficulty"`
	LearningPace          LearningPace                 `json:"learningPace"`
	FocusAreas            []string                     `json:"focusAreas"`
	Strengths             []string                     `json:"strengths"`
	StudyPlan             StudyPlan                    `json:"studyPlan"`
	Recommendations       []PersonalizedRecommendation `json:"recommendations"`
}

// DifficultyAdjustment 难度调整建议，仅供参考
type DifficultyAdjustment struct {
	ShouldAdjust  bool       `json:"shouldAdjust"`
	NewDifficulty Difficulty `json:"newDifficulty"`
	Reason        string     `json:"reason"`
}
