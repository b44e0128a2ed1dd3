package service

import (
	"context"
	"learning_dashboard_backend/internal/model"
	"learning_dashboard_backend/internal/repository"
	"learning_dashboard_backend/internal/util"
	"math"
	"sort"
	"strings"
	"time"
)

const (
	weakAreaThreshold   = 60.0
	strongAreaThreshold = 80.0
	noSubject           = "N/A"
	stabilityWindow     = 5
)

// AnalyticsService 所有派生视图每次都从完整账本重新计算，不做缓存
type AnalyticsService struct {
	QuizResultRepo *repository.QuizResultRepository
	Location       *time.Location
}

func NewAnalyticsService(quizResultRepo *repository.QuizResultRepository, loc *time.Location) *AnalyticsService {
	if loc == nil {
		loc = time.Local
	}
	return &AnalyticsService{
		QuizResultRepo: quizResultRepo,
		Location:       loc,
	}
}

func (s *AnalyticsService) GetPerformanceMetrics(ctx context.Context) model.PerformanceMetrics {
	return computePerformanceMetrics(s.QuizResultRepo.FindAll(ctx))
}

func (s *AnalyticsService) GetSubjectPerformance(ctx context.Context) []model.SubjectPerformance {
	return computeSubjectPerformance(s.QuizResultRepo.FindAll(ctx))
}

func (s *AnalyticsService) GetProgressOverTime(ctx context.Context) []model.ProgressDataPoint {
	return computeProgress(s.QuizResultRepo.FindAll(ctx), s.Location)
}

func (s *AnalyticsService) GetWeakAreas(ctx context.Context) []model.WeakArea {
	return computeWeakAreas(s.QuizResultRepo.FindAll(ctx))
}

func (s *AnalyticsService) GetStrongAreas(ctx context.Context) []model.StrongArea {
	return computeStrongAreas(s.QuizResultRepo.FindAll(ctx))
}

func (s *AnalyticsService) GetDifficultyDistribution(ctx context.Context) model.DifficultyDistribution {
	return computeDifficultyDistribution(s.QuizResultRepo.FindAll(ctx))
}

func (s *AnalyticsService) GetSkillRadarData(ctx context.Context) model.SkillRadarData {
	return computeSkillRadar(s.QuizResultRepo.FindAll(ctx))
}

// sortedKeys 保证同一条结果内的统计项以固定顺序参与汇总
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func computeDifficultyDistribution(results []model.QuizResult) model.DifficultyDistribution {
	var dist model.DifficultyDistribution
	for _, r := range results {
		dist.Easy.Total += r.DifficultyStats.Easy.Total
		dist.Easy.Correct += r.DifficultyStats.Easy.Correct
		dist.Medium.Total += r.DifficultyStats.Medium.Total
		dist.Medium.Correct += r.DifficultyStats.Medium.Correct
		dist.Hard.Total += r.DifficultyStats.Hard.Total
		dist.Hard.Correct += r.DifficultyStats.Hard.Correct
	}
	return dist
}

func computePerformanceMetrics(results []model.QuizResult) model.PerformanceMetrics {
	metrics := model.PerformanceMetrics{
		BestSubject:    model.SubjectAccuracy{Subject: noSubject},
		WeakestSubject: model.SubjectAccuracy{Subject: noSubject},
	}
	if len(results) == 0 {
		return metrics
	}

	var totalScore, totalQuestions int
	var totalAccuracy, totalTime float64
	for _, r := range results {
		totalScore += r.TotalScore
		totalAccuracy += r.Accuracy
		totalTime += r.TotalTime
		totalQuestions += len(r.Answers)
	}

	n := float64(len(results))
	metrics.TotalQuizzes = len(results)
	metrics.AverageScore = float64(totalScore) / n
	metrics.AverageAccuracy = totalAccuracy / n
	metrics.AverageTimePerQuestion = util.SafeDivide(totalTime, float64(totalQuestions))

	dist := computeDifficultyDistribution(results)
	metrics.DifficultySuccessRate = model.DifficultySuccessRate{
		Easy:   util.Percent(dist.Easy.Correct, dist.Easy.Total),
		Medium: util.Percent(dist.Medium.Correct, dist.Medium.Total),
		Hard:   util.Percent(dist.Hard.Correct, dist.Hard.Total),
	}

	// 学科按首次出现的顺序汇总，并列时先出现者胜出
	type subjectTotals struct {
		subject        string
		correct, total int
	}
	var order []*subjectTotals
	index := make(map[string]*subjectTotals)
	for _, r := range results {
		for _, subject := range sortedKeys(r.SubjectStats) {
			stat := r.SubjectStats[subject]
			t, ok := index[subject]
			if !ok {
				t = &subjectTotals{subject: subject}
				index[subject] = t
				order = append(order, t)
			}
			t.correct += stat.Correct
			t.total += stat.Total
		}
	}

	for i, t := range order {
		acc := util.Percent(t.correct, t.total)
		if i == 0 {
			metrics.BestSubject = model.SubjectAccuracy{Subject: t.subject, Accuracy: acc}
			metrics.WeakestSubject = model.SubjectAccuracy{Subject: t.subject, Accuracy: acc}
			continue
		}
		if acc > metrics.BestSubject.Accuracy {
			metrics.BestSubject = model.SubjectAccuracy{Subject: t.subject, Accuracy: acc}
		}
		if acc < metrics.WeakestSubject.Accuracy {
			metrics.WeakestSubject = model.SubjectAccuracy{Subject: t.subject, Accuracy: acc}
		}
	}
	return metrics
}

func computeSubjectPerformance(results []model.QuizResult) []model.SubjectPerformance {
	type subjectTotals struct {
		subject        string
		scoreSum       int
		attempts       int
		correct, total int
	}
	var order []*subjectTotals
	index := make(map[string]*subjectTotals)
	for _, r := range results {
		t, ok := index[r.Subject]
		if !ok {
			t = &subjectTotals{subject: r.Subject}
			index[r.Subject] = t
			order = append(order, t)
		}
		t.scoreSum += r.TotalScore
		t.attempts++
		if stat, ok := r.SubjectStats[r.Subject]; ok {
			t.correct += stat.Correct
			t.total += stat.Total
		}
	}

	perf := make([]model.SubjectPerformance, 0, len(order))
	for _, t := range order {
		perf = append(perf, model.SubjectPerformance{
			Subject:      t.subject,
			AverageScore: util.SafeDivide(float64(t.scoreSum), float64(t.attempts)),
			Attempts:     t.attempts,
			Accuracy:     util.Percent(t.correct, t.total),
		})
	}
	return perf
}

func computeProgress(results []model.QuizResult, loc *time.Location) []model.ProgressDataPoint {
	sorted := make([]model.QuizResult, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CompletedAt.Before(sorted[j].CompletedAt)
	})

	points := make([]model.ProgressDataPoint, 0, len(sorted))
	for _, r := range sorted {
		points = append(points, model.ProgressDataPoint{
			Date:           util.FormatDate(r.CompletedAt.In(loc)),
			Score:          r.TotalScore,
			Accuracy:       r.Accuracy,
			TimeEfficiency: util.SafeDivide(float64(len(r.Answers)), r.TotalTime/60),
		})
	}
	return points
}

// computeTopicPerformances 按 学科::小写知识点 归并，展示名取首次出现的写法
func computeTopicPerformances(results []model.QuizResult) []model.TopicPerformance {
	type topicTotals struct {
		topic, subject string
		correct, total int
		totalTime      float64
	}
	var order []*topicTotals
	index := make(map[string]*topicTotals)
	for _, r := range results {
		subject := strings.TrimSpace(r.Subject)
		for _, topic := range sortedKeys(r.TopicStats) {
			stat := r.TopicStats[topic]
			key := subject + "::" + strings.ToLower(strings.TrimSpace(topic))
			t, ok := index[key]
			if !ok {
				t = &topicTotals{topic: strings.TrimSpace(topic), subject: subject}
				index[key] = t
				order = append(order, t)
			}
			t.correct += stat.Correct
			t.total += stat.Total
			t.totalTime += stat.AvgTime * float64(stat.Total)
		}
	}

	perf := make([]model.TopicPerformance, 0, len(order))
	for _, t := range order {
		perf = append(perf, model.TopicPerformance{
			Topic:           t.topic,
			Subject:         t.subject,
			Accuracy:        util.Percent(t.correct, t.total),
			AverageTime:     util.SafeDivide(t.totalTime, float64(t.total)),
			TotalAttempts:   t.total,
			CorrectAttempts: t.correct,
		})
	}
	return perf
}

func computeWeakAreas(results []model.QuizResult) []model.WeakArea {
	weak := make([]model.WeakArea, 0)
	for _, p := range computeTopicPerformances(results) {
		if p.TotalAttempts >= 1 && p.Accuracy < weakAreaThreshold {
			weak = append(weak, p)
		}
	}
	sort.SliceStable(weak, func(i, j int) bool { return weak[i].Accuracy < weak[j].Accuracy })
	return weak
}

func computeStrongAreas(results []model.QuizResult) []model.StrongArea {
	strong := make([]model.StrongArea, 0)
	for _, p := range computeTopicPerformances(results) {
		if p.TotalAttempts >= 1 && p.Accuracy >= strongAreaThreshold {
			strong = append(strong, p)
		}
	}
	sort.SliceStable(strong, func(i, j int) bool { return strong[i].Accuracy > strong[j].Accuracy })
	return strong
}

func variance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	var sq float64
	for _, v := range values {
		sq += (v - mean) * (v - mean)
	}
	return sq / float64(len(values))
}

// radarScore 四舍五入并限制在 [0,100]
func radarScore(v float64) int {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(math.Round(v))
}

func computeSkillRadar(results []model.QuizResult) model.SkillRadarData {
	if len(results) == 0 {
		return model.SkillRadarData{}
	}
	metrics := computePerformanceMetrics(results)

	scores := make([]float64, 0, len(results))
	for _, r := range results {
		scores = append(scores, float64(r.TotalScore))
	}
	consistency := 100 - variance(scores)/10

	recent := scores
	if len(recent) > stabilityWindow {
		recent = recent[len(recent)-stabilityWindow:]
	}
	stability := 100 - variance(recent)/10

	var topicAccSum float64
	topicCount := 0
	for _, r := range results {
		for _, stat := range r.TopicStats {
			if stat.Total > 0 {
				topicAccSum += util.Percent(stat.Correct, stat.Total)
				topicCount++
			}
		}
	}
	conceptMastery := util.SafeDivide(topicAccSum, float64(topicCount))

	speed := 60 / math.Max(metrics.AverageTimePerQuestion, 1) * 10

	return model.SkillRadarData{
		Speed:              radarScore(speed),
		Accuracy:           radarScore(metrics.AverageAccuracy),
		Consistency:        radarScore(consistency),
		ConceptMastery:     radarScore(conceptMastery),
		DifficultyHandling: radarScore(metrics.DifficultySuccessRate.Hard),
		Stability:          radarScore(stability),
	}
}
