package service

import (
	"context"
	"fmt"
	"learning_dashboard_backend/internal/model"
	"learning_dashboard_backend/internal/repository"
	"learning_dashboard_backend/internal/util"
	"learning_dashboard_backend/pkg/logger"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	maxFocusAreas       = 5
	maxStrengths        = 3
	maxFocusSubjects    = 2
	maxVideoRecs        = 3
	maxReviewRecs       = 2
	maxContentAreas     = 5
	contentPerArea      = 3
	defaultDailyGoal    = 60
	defaultWeeklyGoal   = 3
	strugglingThreshold = 50.0
	excellingThreshold  = 80.0
)

// RecommendationService 基于测验分析结果生成自适应学习建议，结果不落库
type RecommendationService struct {
	QuizResultRepo *repository.QuizResultRepository
	Queue          *ContentQueue
}

func NewRecommendationService(quizResultRepo *repository.QuizResultRepository, queue *ContentQueue) *RecommendationService {
	return &RecommendationService{
		QuizResultRepo: quizResultRepo,
		Queue:          queue,
	}
}

// AnalyzeLearnerPerformance 没有任何测验记录时返回冷启动默认值
func (s *RecommendationService) AnalyzeLearnerPerformance(ctx context.Context) model.AdaptiveLearningInsights {
	results := s.QuizResultRepo.FindAll(ctx)
	if len(results) == 0 {
		return defaultInsights()
	}

	metrics := computePerformanceMetrics(results)
	weakAreas := computeWeakAreas(results)
	subjects := computeSubjectPerformance(results)

	focusAreas := make([]string, 0, maxFocusAreas)
	for i, area := range weakAreas {
		if i >= maxFocusAreas {
			break
		}
		focusAreas = append(focusAreas, fmt.Sprintf("%s (%s)", area.Topic, area.Subject))
	}

	strengths := make([]string, 0, maxStrengths)
	for _, subj := range subjects {
		if len(strengths) >= maxStrengths {
			break
		}
		if subj.Accuracy >= excellingThreshold {
			strengths = append(strengths, subj.Subject)
		}
	}

	return model.AdaptiveLearningInsights{
		RecommendedDifficulty: recommendDifficulty(metrics),
		LearningPace:          learningPace(metrics),
		FocusAreas:            focusAreas,
		Strengths:             strengths,
		StudyPlan:             studyPlan(metrics, subjects),
		Recommendations:       buildRecommendations(weakAreas, metrics),
	}
}

func defaultInsights() model.AdaptiveLearningInsights {
	return model.AdaptiveLearningInsights{
		RecommendedDifficulty: model.DifficultyMedium,
		LearningPace:          model.PaceModerate,
		FocusAreas:            []string{},
		Strengths:             []string{},
		StudyPlan: model.StudyPlan{
			DailyGoal:     defaultDailyGoal,
			WeeklyGoal:    defaultWeeklyGoal,
			FocusSubjects: []string{},
		},
		Recommendations: []model.PersonalizedRecommendation{
			{
				Type:          model.RecommendationPractice,
				Priority:      model.PriorityHigh,
				Title:         "Take Your First Quiz",
				Description:   "Start by taking a quiz to get personalized recommendations based on your performance.",
				EstimatedTime: "15-20 min",
				ActionURL:     util.PracticeURL,
			},
			{
				Type:          model.RecommendationStudyPlan,
				Priority:      model.PriorityMedium,
				Title:         "Explore Learning Resources",
				Description:   "Browse study notes, videos, and practice materials to get started.",
				EstimatedTime: "10 min",
				ActionURL:     util.LearningURL,
			},
		},
	}
}

// recommendDifficulty 按顺序判断，命中第一条即返回
func recommendDifficulty(m model.PerformanceMetrics) model.Difficulty {
	switch {
	case m.AverageAccuracy < 50:
		return model.DifficultyEasy
	case m.DifficultySuccessRate.Hard >= 70:
		return model.DifficultyHard
	case m.DifficultySuccessRate.Medium >= 65:
		return model.DifficultyMedium
	default:
		return model.DifficultyMedium
	}
}

// learningPace fast 需要两个条件同时满足，slow 满足其一即可
func learningPace(m model.PerformanceMetrics) model.LearningPace {
	if m.AverageTimePerQuestion < 60 && m.AverageAccuracy >= 70 {
		return model.PaceFast
	}
	if m.AverageTimePerQuestion > 120 || m.AverageAccuracy < 50 {
		return model.PaceSlow
	}
	return model.PaceModerate
}

func studyPlan(m model.PerformanceMetrics, subjects []model.SubjectPerformance) model.StudyPlan {
	plan := model.StudyPlan{
		DailyGoal:  defaultDailyGoal,
		WeeklyGoal: defaultWeeklyGoal,
	}

	switch {
	case m.AverageAccuracy < strugglingThreshold:
		plan.DailyGoal = 90
	case m.AverageAccuracy >= excellingThreshold:
		plan.DailyGoal = 45
	}

	switch {
	case m.TotalQuizzes == 0:
		plan.WeeklyGoal = 5
	case m.AverageAccuracy < strugglingThreshold:
		plan.WeeklyGoal = 4
	}

	sorted := make([]model.SubjectPerformance, len(subjects))
	copy(sorted, subjects)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Accuracy < sorted[j].Accuracy })

	plan.FocusSubjects = make([]string, 0, maxFocusSubjects)
	for i := 0; i < len(sorted) && i < maxFocusSubjects; i++ {
		plan.FocusSubjects = append(plan.FocusSubjects, sorted[i].Subject)
	}
	return plan
}

func buildRecommendations(weakAreas []model.WeakArea, m model.PerformanceMetrics) []model.PersonalizedRecommendation {
	recs := make([]model.PersonalizedRecommendation, 0, maxVideoRecs+maxReviewRecs+2)

	for i, area := range weakAreas {
		if i >= maxVideoRecs {
			break
		}
		difficulty := model.DifficultyMedium
		if area.Accuracy < 40 {
			difficulty = model.DifficultyEasy
		}
		recs = append(recs, model.PersonalizedRecommendation{
			Type:          model.RecommendationVideo,
			Priority:      model.PriorityHigh,
			Title:         "Learn " + area.Topic,
			Description:   fmt.Sprintf("You scored %.1f%% on %s. Watch this video to strengthen your understanding.", area.Accuracy, area.Topic),
			Subject:       area.Subject,
			Topic:         area.Topic,
			Difficulty:    difficulty,
			EstimatedTime: "10-15 min",
		})
	}

	if m.WeakestSubject.Subject != noSubject {
		recs = append(recs, model.PersonalizedRecommendation{
			Type:          model.RecommendationPractice,
			Priority:      model.PriorityHigh,
			Title:         "Practice " + m.WeakestSubject.Subject,
			Description:   fmt.Sprintf("Your accuracy in %s is %.1f%%. Take a practice quiz to improve.", m.WeakestSubject.Subject, m.WeakestSubject.Accuracy),
			Subject:       m.WeakestSubject.Subject,
			Difficulty:    model.DifficultyMedium,
			EstimatedTime: "15-20 min",
			ActionURL:     util.PracticeURL,
		})
	}

	reviews := 0
	for _, area := range weakAreas {
		if reviews >= maxReviewRecs {
			break
		}
		if area.Accuracy < 40 || area.Accuracy >= weakAreaThreshold {
			continue
		}
		recs = append(recs, model.PersonalizedRecommendation{
			Type:          model.RecommendationReview,
			Priority:      model.PriorityMedium,
			Title:         "Review " + area.Topic,
			Description:   fmt.Sprintf("Review %s concepts to improve your %.1f%% accuracy.", area.Topic, area.Accuracy),
			Subject:       area.Subject,
			Topic:         area.Topic,
			EstimatedTime: "20-30 min",
		})
		reviews++
	}

	recs = append(recs, model.PersonalizedRecommendation{
		Type:          model.RecommendationStudyPlan,
		Priority:      model.PriorityMedium,
		Title:         "Customize Your Study Plan",
		Description:   "Based on your performance, we recommend focusing on specific subjects and topics.",
		EstimatedTime: "5 min",
		ActionURL:     util.PracticeURL,
	})
	return recs
}

// GetDifficultyAdjustment 只给出建议，不修改任何状态
func (s *RecommendationService) GetDifficultyAdjustment(current model.Difficulty, m model.PerformanceMetrics) (model.DifficultyAdjustment, error) {
	if !current.Valid() {
		return model.DifficultyAdjustment{}, util.ErrInvalidDifficulty
	}

	recommended := recommendDifficulty(m)
	if recommended == current {
		return model.DifficultyAdjustment{
			ShouldAdjust:  false,
			NewDifficulty: current,
			Reason:        fmt.Sprintf("Your current difficulty level (%s) matches your performance.", current),
		}, nil
	}

	var reason string
	switch recommended {
	case model.DifficultyEasy:
		reason = fmt.Sprintf("Your accuracy is %.1f%%. Start with easier questions to build confidence.", m.AverageAccuracy)
	case model.DifficultyHard:
		reason = fmt.Sprintf("You're performing well (%.1f%% accuracy). Challenge yourself with harder questions.", m.AverageAccuracy)
	default:
		reason = fmt.Sprintf("Based on your performance, %s difficulty would be more suitable.", recommended)
	}
	return model.DifficultyAdjustment{
		ShouldAdjust:  true,
		NewDifficulty: recommended,
		Reason:        reason,
	}, nil
}

// GetRecommendedContent 为最弱的几个知识点排队检索内容，键为 "学科::知识点"；
// 单个知识点失败只记录日志
func (s *RecommendationService) GetRecommendedContent(ctx context.Context, weakAreas []model.WeakArea, maxResults int) map[string][]model.ContentItem {
	content := make(map[string][]model.ContentItem)
	if s.Queue == nil || len(weakAreas) == 0 {
		return content
	}
	if maxResults <= 0 {
		maxResults = contentPerArea
	}

	areas := make([]model.WeakArea, len(weakAreas))
	copy(areas, weakAreas)
	sort.SliceStable(areas, func(i, j int) bool { return areas[i].Accuracy < areas[j].Accuracy })
	if len(areas) > maxContentAreas {
		areas = areas[:maxContentAreas]
	}

	// 先按顺序全部入队，保证 FIFO 与弱项排序一致，再并发等待
	pending := make([]<-chan ContentResult, len(areas))
	for i, area := range areas {
		pending[i] = s.Queue.Submit(ctx, ContentSearchRequest{
			Kind:       model.ContentKindTopic,
			Query:      area.Topic,
			Subject:    area.Subject,
			Topic:      area.Topic,
			MaxResults: maxResults,
		})
	}

	var mu sync.Mutex
	var g errgroup.Group
	for i, area := range areas {
		i, area := i, area
		g.Go(func() error {
			res := awaitContent(ctx, pending[i])
			if res.Err != nil {
				logger.Log.Warn("Failed to fetch content for weak area",
					zap.String("subject", area.Subject), zap.String("topic", area.Topic), zap.Error(res.Err))
				return nil
			}
			if len(res.Items) == 0 {
				return nil
			}
			mu.Lock()
			content[area.Subject+"::"+area.Topic] = res.Items
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return content
}

// GetSubjectRecommendedContent 为学习计划中的重点学科检索内容，键为学科名
func (s *RecommendationService) GetSubjectRecommendedContent(ctx context.Context, subjects []string, perSubject int) map[string][]model.ContentItem {
	content := make(map[string][]model.ContentItem)
	if s.Queue == nil || len(subjects) == 0 {
		return content
	}
	if perSubject <= 0 {
		perSubject = contentPerArea
	}

	pending := make([]<-chan ContentResult, len(subjects))
	for i, subject := range subjects {
		pending[i] = s.Queue.Submit(ctx, ContentSearchRequest{
			Kind:       model.ContentKindSubject,
			Query:      subject,
			Subject:    subject,
			MaxResults: perSubject,
		})
	}

	var mu sync.Mutex
	var g errgroup.Group
	for i, subject := range subjects {
		i, subject := i, subject
		g.Go(func() error {
			res := awaitContent(ctx, pending[i])
			if res.Err != nil {
				logger.Log.Warn("Failed to fetch content for subject", zap.String("subject", subject), zap.Error(res.Err))
				return nil
			}
			if len(res.Items) > 0 {
				mu.Lock()
				content[subject] = res.Items
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return content
}

// EnrichWithContent 为每条视频类推荐附上检索到的第一条内容
func (s *RecommendationService) EnrichWithContent(ctx context.Context, insights *model.AdaptiveLearningInsights) {
	if s.Queue == nil || insights == nil {
		return
	}

	type slot struct {
		index  int
		result <-chan ContentResult
	}
	var slots []slot
	for i, rec := range insights.Recommendations {
		if rec.Type != model.RecommendationVideo || rec.Topic == "" {
			continue
		}
		slots = append(slots, slot{index: i, result: s.Queue.Submit(ctx, ContentSearchRequest{
			Kind:       model.ContentKindTopic,
			Query:      rec.Topic,
			Subject:    rec.Subject,
			Topic:      rec.Topic,
			MaxResults: 1,
		})})
	}

	var g errgroup.Group
	for _, sl := range slots {
		sl := sl
		g.Go(func() error {
			res := awaitContent(ctx, sl.result)
			if res.Err != nil {
				logger.Log.Warn("Failed to attach content to recommendation",
					zap.String("topic", insights.Recommendations[sl.index].Topic), zap.Error(res.Err))
				return nil
			}
			if len(res.Items) > 0 {
				item := res.Items[0]
				insights.Recommendations[sl.index].Video = &item
			}
			return nil
		})
	}
	_ = g.Wait()
}

func awaitContent(ctx context.Context, ch <-chan ContentResult) ContentResult {
	select {
	case res := <-ch:
		return res
	case <-ctx.Done():
		return ContentResult{Err: ctx.Err()}
	}
}
