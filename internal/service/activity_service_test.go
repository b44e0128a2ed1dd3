package service

import (
	"context"
	"errors"
	"learning_dashboard_backend/internal/model"
	"learning_dashboard_backend/internal/repository"
	"learning_dashboard_backend/internal/util"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivityService_RecordActivity(t *testing.T) {
	ctx := context.Background()
	svc, notifier := newActivityFixture(t, activity(daysAgo(400), 3), activity(daysAgo(10), 2))

	rec, err := svc.RecordActivity(ctx, model.ActivityVideoWatched, map[string]interface{}{"videoId": "abc"})
	require.NoError(t, err)
	assert.Equal(t, daysAgo(0), rec.Date)
	assert.Equal(t, 1, rec.Count)

	rec, err = svc.RecordActivity(ctx, model.ActivityQuizCompleted, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, rec.Count)
	assert.Equal(t, []model.ActivityType{model.ActivityVideoWatched, model.ActivityQuizCompleted}, rec.Activities)

	records := svc.GetActivityRecords(ctx)
	require.Len(t, records, 2, "records older than a year are pruned on write")
	for _, r := range records {
		assert.Equal(t, r.Count, len(r.Activities))
		assert.NotEqual(t, daysAgo(400), r.Date)
	}

	assert.Equal(t, []string{model.EventActivityUpdated, model.EventActivityUpdated}, notifier.Events())
}

func TestActivityService_RecordActivityRejectsUnknownType(t *testing.T) {
	svc, notifier := newActivityFixture(t)

	_, err := svc.RecordActivity(context.Background(), model.ActivityType("dancing"), nil)
	assert.ErrorIs(t, err, util.ErrUnknownActivityType)
	assert.Empty(t, svc.GetActivityRecords(context.Background()))
	assert.Empty(t, notifier.Events())
}

// unreachableOnce 让下一次读取失败一次
type unreachableOnce struct {
	*repository.MemoryRecordStore
	fail bool
}

func (s *unreachableOnce) Get(ctx context.Context, key string) (string, bool, error) {
	if s.fail {
		s.fail = false
		return "", false, errors.New("redis: connection refused")
	}
	return s.MemoryRecordStore.Get(ctx, key)
}

func TestActivityService_ReadFailureDoesNotWipeLedger(t *testing.T) {
	ctx := context.Background()
	store := &unreachableOnce{MemoryRecordStore: repository.NewMemoryRecordStore()}
	repo := repository.NewActivityRepository(store)
	_, err := repo.Update(ctx, func([]model.ActivityRecord) []model.ActivityRecord {
		return []model.ActivityRecord{activity(daysAgo(3), 4), activity(daysAgo(2), 4), activity(daysAgo(1), 4)}
	})
	require.NoError(t, err)

	notifier := &recordingNotifier{}
	svc := NewActivityService(repo, notifier, time.UTC)
	svc.Now = fixedClock

	store.fail = true
	_, err = svc.RecordActivity(ctx, model.ActivityVideoWatched, nil)
	assert.Error(t, err)
	assert.Empty(t, notifier.Events())

	assert.Len(t, svc.GetActivityRecords(ctx), 3)
	assert.Equal(t, 12, svc.GetTotalActivityCount(ctx))
}

func TestActivityService_HeatmapShape(t *testing.T) {
	svc, _ := newActivityFixture(t,
		activity(daysAgo(0), 4),
		activity(daysAgo(1), 1),
		activity(daysAgo(3), 2),
		activity(daysAgo(400), 100),
	)

	cells := svc.GetActivityHeatmapData(context.Background())
	require.Len(t, cells, 371)
	assert.Equal(t, daysAgo(370), cells[0].Date)
	assert.Equal(t, daysAgo(0), cells[len(cells)-1].Date)

	byDate := make(map[string]model.HeatmapCell, len(cells))
	for _, c := range cells {
		byDate[c.Date] = c
		if c.Count == 0 {
			assert.Equal(t, 0, c.Level)
		} else {
			assert.Greater(t, c.Level, 0)
		}
	}
	assert.Equal(t, 4, byDate[daysAgo(0)].Level)
	assert.Equal(t, 2, byDate[daysAgo(1)].Level)
	assert.Equal(t, 3, byDate[daysAgo(3)].Level)
}

func TestActivityService_HeatmapEmptyAndFlat(t *testing.T) {
	svc, _ := newActivityFixture(t)
	cells := svc.GetActivityHeatmapData(context.Background())
	require.Len(t, cells, 371)
	for _, c := range cells {
		assert.Equal(t, 0, c.Level)
	}

	svc, _ = newActivityFixture(t, activity(daysAgo(2), 1), activity(daysAgo(5), 1))
	for _, c := range svc.GetActivityHeatmapData(context.Background()) {
		if c.Count > 0 {
			assert.Equal(t, 1, c.Level)
		}
	}
}

func TestActivityService_Streaks(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		records []model.ActivityRecord
		current int
		longest int
	}{
		{
			name:    "empty ledger",
			current: 0,
			longest: 0,
		},
		{
			name:    "three consecutive days ending today",
			records: []model.ActivityRecord{activity(daysAgo(0), 1), activity(daysAgo(1), 1), activity(daysAgo(2), 1)},
			current: 3,
			longest: 3,
		},
		{
			name:    "today inactive, streak starts yesterday",
			records: []model.ActivityRecord{activity(daysAgo(1), 2), activity(daysAgo(2), 1)},
			current: 2,
			longest: 2,
		},
		{
			name:    "gap ends the walk",
			records: []model.ActivityRecord{activity(daysAgo(0), 1), activity(daysAgo(2), 1), activity(daysAgo(3), 1), activity(daysAgo(4), 1)},
			current: 1,
			longest: 3,
		},
		{
			name:    "nothing today or yesterday",
			records: []model.ActivityRecord{activity(daysAgo(5), 1), activity(daysAgo(6), 1)},
			current: 0,
			longest: 2,
		},
		{
			name:    "zero-count records are ignored",
			records: []model.ActivityRecord{activity(daysAgo(0), 1), {Date: daysAgo(1), Count: 0}, activity(daysAgo(2), 1)},
			current: 1,
			longest: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newActivityFixture(t, tt.records...)
			assert.Equal(t, tt.current, svc.GetActivityStreak(ctx))
			assert.Equal(t, tt.longest, svc.GetLongestActivityStreak(ctx))
		})
	}
}

func TestActivityService_StreakIsCapped(t *testing.T) {
	records := make([]model.ActivityRecord, 0, 400)
	for i := 0; i < 400; i++ {
		records = append(records, activity(daysAgo(i), 1))
	}
	svc, _ := newActivityFixture(t, records...)
	assert.Equal(t, 365, svc.GetActivityStreak(context.Background()))
}

func TestActivityService_CountsAndLevels(t *testing.T) {
	ctx := context.Background()
	svc, _ := newActivityFixture(t,
		activity(daysAgo(0), 10),
		activity(daysAgo(1), 7),
		activity(daysAgo(2), 4),
		activity(daysAgo(3), 1),
	)

	assert.Equal(t, 22, svc.GetTotalActivityCount(ctx))

	total := 0
	for _, r := range svc.GetActivityRecords(ctx) {
		total += r.Count
	}
	assert.Equal(t, total, svc.GetTotalActivityCount(ctx))

	n, err := svc.GetActivityCount(ctx, daysAgo(2), daysAgo(1))
	require.NoError(t, err)
	assert.Equal(t, 11, n)

	_, err = svc.GetActivityCount(ctx, "yesterday", daysAgo(0))
	assert.ErrorIs(t, err, util.ErrInvalidDate)

	levels := map[string]int{daysAgo(0): 4, daysAgo(1): 3, daysAgo(2): 2, daysAgo(3): 1, daysAgo(9): 0}
	for date, want := range levels {
		got, err := svc.GetActivityLevel(ctx, date)
		require.NoError(t, err)
		assert.Equal(t, want, got, date)
	}

	rec, err := svc.GetActivityForDate(ctx, daysAgo(1))
	require.NoError(t, err)
	assert.Equal(t, 7, rec.Count)

	_, err = svc.GetActivityForDate(ctx, daysAgo(30))
	assert.ErrorIs(t, err, util.ErrRecordNotFound)

	summary := svc.GetSummary(ctx)
	assert.Equal(t, model.ActivitySummary{CurrentStreak: 4, LongestStreak: 4, TotalCount: 22}, summary)
}
