package model

// SubjectAccuracy 学科及其正确率
type SubjectAccuracy struct {
	Subject  string  `json:"subject"`
	Accuracy float64 `json:"accuracy"`
}

// DifficultySuccessRate 各难度的答对率（百分比）
type DifficultySuccessRate struct {
	Easy   float64 `json:"easy"`
	Medium float64 `json:"medium"`
	Hard   float64 `json:"hard"`
}

// PerformanceMetrics 全量测验结果的汇总指标
type PerformanceMetrics struct {
	TotalQuizzes           int                   `json:"totalQuizzes"`
	AverageScore           float64               `json:"averageScore"`
	AverageAccuracy        float64               `json:"averageAccuracy"`
	AverageTimePerQuestion float64               `json:"averageTimePerQuestion"`
	DifficultySuccessRate  DifficultySuccessRate `json:"difficultySuccessRate"`
	BestSubject            SubjectAccuracy       `json:"bestSubject"`
	WeakestSubject         SubjectAccuracy       `json:"weakestSubject"`
}

// ProgressDataPoint 进度曲线上的一个点
type ProgressDataPoint struct {
	Date           string  `json:"date"`
	Score          int     `json:"score"`
	Accuracy       float64 `json:"accuracy"`
	TimeEfficiency float64 `json:"timeEfficiency"` // 每分钟答题数
}

// SubjectPerformance 按学科汇总
type SubjectPerformance struct {
	Subject      string  `json:"subject"`
	AverageScore float64 `json:"averageScore"`
	Attempts     int     `json:"attempts"`
	Accuracy     float64 `json:"accuracy"`
}

// TopicPerformance 按知识点汇总，弱项与强项都从这里筛选
type TopicPerformance struct {
	Topic           string  `json:"topic"`
	Subject         string  `json:"subject"`
	Accuracy        float64 `json:"accuracy"`
	AverageTime     float64 `json:"averageTime"`
	TotalAttempts   int     `json:"totalAttempts"`
	CorrectAttempts int     `json:"correctAttempts"`
}

type WeakArea = TopicPerformance

type StrongArea = TopicPerformance

type DifficultyCount struct {
	Total   int `json:"total"`
	Correct int `json:"correct"`
}

// DifficultyDistribution 各难度题目的作答分布
type DifficultyDistribution struct {
	Easy   DifficultyCount `json:"easy"`
	Medium DifficultyCount `json:"medium"`
	Hard   DifficultyCount `json:"hard"`
}

// SkillRadarData 六维能力雷达图，每项 0-100
type SkillRadarData struct {
	Speed              int `json:"speed"`
	Accuracy           int `json:"accuracy"`
	Consistency        int `json:"consistency"`
	ConceptMastery     int `json:"conceptMastery"`
	DifficultyHandling int `json:"difficultyHandling"`
	Stability          int `json:"stability"`
}
