package service

import (
	"context"
	"learning_dashboard_backend/internal/model"
	"learning_dashboard_backend/internal/repository"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) Publish(eventType string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, eventType)
}

func (n *recordingNotifier) Events() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.events...)
}

func noSleep(ctx context.Context, d time.Duration) error { return nil }

func daysAgo(n int) string {
	return fixedNow.AddDate(0, 0, -n).Format("2006-01-02")
}

func newActivityFixture(t *testing.T, records ...model.ActivityRecord) (*ActivityService, *recordingNotifier) {
	t.Helper()
	repo := repository.NewActivityRepository(repository.NewMemoryRecordStore())
	if len(records) > 0 {
		_, err := repo.Update(context.Background(), func([]model.ActivityRecord) []model.ActivityRecord {
			return records
		})
		require.NoError(t, err)
	}
	notifier := &recordingNotifier{}
	svc := NewActivityService(repo, notifier, time.UTC)
	svc.Now = fixedClock
	return svc, notifier
}

func activity(date string, count int) model.ActivityRecord {
	kinds := make([]model.ActivityType, count)
	for i := range kinds {
		kinds[i] = model.ActivityQuizCompleted
	}
	return model.ActivityRecord{Date: date, Count: count, Activities: kinds}
}

// answersFor 生成 total 道同一知识点的题目，前 correct 道答对
func answersFor(subject, topic string, difficulty model.Difficulty, total, correct int, seconds float64) []model.QuizAnswer {
	answers := make([]model.QuizAnswer, 0, total)
	for i := 0; i < total; i++ {
		answers = append(answers, model.QuizAnswer{
			QID:        topic + "-" + string(rune('a'+i)),
			IsCorrect:  i < correct,
			TimeTaken:  seconds,
			Topic:      topic,
			Difficulty: difficulty,
			Subject:    subject,
		})
	}
	return answers
}

type quizFixture struct {
	repo     *repository.QuizResultRepository
	quiz     *QuizResultService
	notifier *recordingNotifier
}

func newQuizFixture(t *testing.T) *quizFixture {
	t.Helper()
	repo := repository.NewQuizResultRepository(repository.NewMemoryRecordStore())
	notifier := &recordingNotifier{}
	quiz := NewQuizResultService(repo, notifier)
	quiz.Now = fixedClock
	return &quizFixture{repo: repo, quiz: quiz, notifier: notifier}
}

func (f *quizFixture) save(t *testing.T, subject string, completedAt time.Time, answers ...[]model.QuizAnswer) *model.QuizResult {
	t.Helper()
	var all []model.QuizAnswer
	for _, a := range answers {
		all = append(all, a...)
	}
	result, err := f.quiz.SaveQuizResult(context.Background(), &model.QuizResultDraft{
		QuizID:      "quiz-" + subject,
		Branch:      "CSE",
		Semester:    "3",
		Subject:     subject,
		Answers:     all,
		CompletedAt: &completedAt,
	})
	require.NoError(t, err)
	return result
}
