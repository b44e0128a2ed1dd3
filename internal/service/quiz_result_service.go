package service

import (
	"context"
	"fmt"
	"learning_dashboard_backend/internal/model"
	"learning_dashboard_backend/internal/repository"
	"learning_dashboard_backend/internal/util"
	"learning_dashboard_backend/pkg/logger"
	"strings"
	"time"

	"go.uber.org/zap"
)

type QuizResultService struct {
	QuizResultRepo *repository.QuizResultRepository
	Notifier       Notifier
	Now            func() time.Time
}

func NewQuizResultService(quizResultRepo *repository.QuizResultRepository, notifier Notifier) *QuizResultService {
	return &QuizResultService{
		QuizResultRepo: quizResultRepo,
		Notifier:       notifier,
		Now:            time.Now,
	}
}

// SaveQuizResult 计算汇总字段、分配 ID 后追加到账本，重复提交会产生新记录
func (s *QuizResultService) SaveQuizResult(ctx context.Context, draft *model.QuizResultDraft) (*model.QuizResult, error) {
	if draft == nil || strings.TrimSpace(draft.Subject) == "" {
		return nil, fmt.Errorf("%w: subject is required", util.ErrInvalidQuizResult)
	}
	for i, a := range draft.Answers {
		if !a.Difficulty.Valid() {
			return nil, fmt.Errorf("%w: answer %d has difficulty %q", util.ErrInvalidDifficulty, i, a.Difficulty)
		}
	}

	now := s.Now().UTC()
	result := BuildQuizResult(draft)
	result.ID = model.GenerateUUID()
	result.CreatedAt = now
	if result.CompletedAt.IsZero() {
		result.CompletedAt = now
	}

	if err := s.QuizResultRepo.Create(ctx, &result); err != nil {
		return nil, err
	}

	logger.Log.Info("Quiz result saved",
		zap.String("id", result.ID),
		zap.String("subject", result.Subject),
		zap.Int("answers", len(result.Answers)),
		zap.Float64("accuracy", result.Accuracy),
	)
	if s.Notifier != nil {
		s.Notifier.Publish(model.EventQuizResultSaved)
	}
	return &result, nil
}

// BuildQuizResult 根据作答记录计算全部汇总字段，不含 ID 与创建时间
func BuildQuizResult(draft *model.QuizResultDraft) model.QuizResult {
	result := model.QuizResult{
		QuizID:       draft.QuizID,
		Branch:       draft.Branch,
		Semester:     draft.Semester,
		Subject:      draft.Subject,
		Answers:      draft.Answers,
		SubjectStats: make(map[string]model.AccuracyStat),
		TopicStats:   make(map[string]model.TopicStat),
	}
	if result.Answers == nil {
		result.Answers = []model.QuizAnswer{}
	}
	if draft.CompletedAt != nil {
		result.CompletedAt = draft.CompletedAt.UTC()
	}

	topicTime := make(map[string]float64)
	correct := 0
	for _, a := range result.Answers {
		result.TotalTime += a.TimeTaken
		if a.IsCorrect {
			correct++
		}

		diff := difficultyStat(&result.DifficultyStats, a.Difficulty)
		if diff != nil {
			diff.Total++
			if a.IsCorrect {
				diff.Correct++
			}
		}

		subject := a.Subject
		if strings.TrimSpace(subject) == "" {
			subject = result.Subject
		}
		ss := result.SubjectStats[subject]
		ss.Total++
		if a.IsCorrect {
			ss.Correct++
		}
		result.SubjectStats[subject] = ss

		ts := result.TopicStats[a.Topic]
		ts.Total++
		if a.IsCorrect {
			ts.Correct++
		}
		result.TopicStats[a.Topic] = ts
		topicTime[a.Topic] += a.TimeTaken
	}

	result.TotalScore = correct
	result.Accuracy = util.Percent(correct, len(result.Answers))

	for _, d := range []*model.AccuracyStat{&result.DifficultyStats.Easy, &result.DifficultyStats.Medium, &result.DifficultyStats.Hard} {
		d.Accuracy = util.Percent(d.Correct, d.Total)
	}
	for k, v := range result.SubjectStats {
		v.Accuracy = util.Percent(v.Correct, v.Total)
		result.SubjectStats[k] = v
	}
	for k, v := range result.TopicStats {
		v.Accuracy = util.Percent(v.Correct, v.Total)
		v.AvgTime = util.SafeDivide(topicTime[k], float64(v.Total))
		result.TopicStats[k] = v
	}
	return result
}

func difficultyStat(stats *model.DifficultyStats, d model.Difficulty) *model.AccuracyStat {
	switch d {
	case model.DifficultyEasy:
		return &stats.Easy
	case model.DifficultyMedium:
		return &stats.Medium
	case model.DifficultyHard:
		return &stats.Hard
	}
	return nil
}

func (s *QuizResultService) GetQuizResults(ctx context.Context) []model.QuizResult {
	return s.QuizResultRepo.FindAll(ctx)
}

func (s *QuizResultService) GetQuizResultByID(ctx context.Context, id string) (*model.QuizResult, error) {
	return s.QuizResultRepo.FindByID(ctx, id)
}

// DeleteQuizResult 硬删除，ID 不存在时返回 false
func (s *QuizResultService) DeleteQuizResult(ctx context.Context, id string) (bool, error) {
	deleted, err := s.QuizResultRepo.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		logger.Log.Info("Quiz result deleted", zap.String("id", id))
		if s.Notifier != nil {
			s.Notifier.Publish(model.EventQuizResultDelete)
		}
	}
	return deleted, nil
}
