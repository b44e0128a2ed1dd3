package service

import (
	"context"
	"learning_dashboard_backend/internal/model"
	"learning_dashboard_backend/internal/repository"
	"learning_dashboard_backend/internal/util"
	"learning_dashboard_backend/pkg/logger"
	"sort"
	"time"

	"go.uber.org/zap"
)

const (
	heatmapDays           = 53 * 7
	activityRetentionDays = 365
	maxStreakDays         = 365
)

// Notifier 接收"数据已变化"的信号，不携带负载
type Notifier interface {
	Publish(eventType string)
}

type ActivityService struct {
	ActivityRepo *repository.ActivityRepository
	Notifier     Notifier
	Location     *time.Location
	Now          func() time.Time
}

func NewActivityService(activityRepo *repository.ActivityRepository, notifier Notifier, loc *time.Location) *ActivityService {
	if loc == nil {
		loc = time.Local
	}
	return &ActivityService{
		ActivityRepo: activityRepo,
		Notifier:     notifier,
		Location:     loc,
		Now:          time.Now,
	}
}

func (s *ActivityService) today() time.Time {
	return util.DayStart(s.Now(), s.Location)
}

// RecordActivity 在今天的记录上追加一次活动，并裁剪一年以前的记录
func (s *ActivityService) RecordActivity(ctx context.Context, kind model.ActivityType, metadata map[string]interface{}) (*model.ActivityRecord, error) {
	if !kind.Valid() {
		return nil, util.ErrUnknownActivityType
	}

	today := s.today()
	todayStr := util.FormatDate(today)
	cutoff := util.FormatDate(today.AddDate(0, 0, -activityRetentionDays))

	var updated model.ActivityRecord
	_, err := s.ActivityRepo.Update(ctx, func(records []model.ActivityRecord) []model.ActivityRecord {
		idx := -1
		for i := range records {
			if records[i].Date == todayStr {
				idx = i
				break
			}
		}
		if idx < 0 {
			records = append(records, model.ActivityRecord{Date: todayStr, Activities: []model.ActivityType{}})
			idx = len(records) - 1
		}
		records[idx].Count++
		records[idx].Activities = append(records[idx].Activities, kind)

		updated = records[idx]
		updated.Activities = append([]model.ActivityType(nil), records[idx].Activities...)

		kept := make([]model.ActivityRecord, 0, len(records))
		for _, r := range records {
			if r.Date >= cutoff {
				kept = append(kept, r)
			}
		}
		return kept
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Debug("Activity recorded",
		zap.String("type", string(kind)),
		zap.String("date", todayStr),
		zap.Int("count", updated.Count),
		zap.Any("metadata", metadata),
	)
	s.notify(model.EventActivityUpdated)
	return &updated, nil
}

func (s *ActivityService) notify(eventType string) {
	if s.Notifier != nil {
		s.Notifier.Publish(eventType)
	}
}

func (s *ActivityService) GetActivityRecords(ctx context.Context) []model.ActivityRecord {
	return s.ActivityRepo.FindAll(ctx)
}

// GetActivityForDate 返回指定日期的记录
func (s *ActivityService) GetActivityForDate(ctx context.Context, date string) (*model.ActivityRecord, error) {
	if _, err := util.ParseDate(date); err != nil {
		return nil, err
	}
	for _, r := range s.ActivityRepo.FindAll(ctx) {
		if r.Date == date {
			found := r
			return &found, nil
		}
	}
	return nil, util.ErrRecordNotFound
}

// GetActivityCount 统计闭区间 [start, end] 内的活动总数
func (s *ActivityService) GetActivityCount(ctx context.Context, start, end string) (int, error) {
	if _, err := util.ParseDate(start); err != nil {
		return 0, err
	}
	if _, err := util.ParseDate(end); err != nil {
		return 0, err
	}

	total := 0
	for _, r := range s.ActivityRepo.FindAll(ctx) {
		if r.Date >= start && r.Date <= end {
			total += r.Count
		}
	}
	return total, nil
}

// GetActivityHeatmapData 返回以今天结尾的 53 周热力图，最早的日期在前
func (s *ActivityService) GetActivityHeatmapData(ctx context.Context) []model.HeatmapCell {
	counts := make(map[string]int)
	for _, r := range s.ActivityRepo.FindAll(ctx) {
		counts[r.Date] = r.Count
	}

	start := s.today().AddDate(0, 0, -(heatmapDays - 1))
	cells := make([]model.HeatmapCell, 0, heatmapDays)
	maxCount := 0
	for i := 0; i < heatmapDays; i++ {
		date := util.FormatDate(start.AddDate(0, 0, i))
		count := counts[date]
		if count > maxCount {
			maxCount = count
		}
		cells = append(cells, model.HeatmapCell{Date: date, Count: count})
	}
	if maxCount == 0 {
		maxCount = 1
	}

	for i := range cells {
		cells[i].Level = heatmapLevel(cells[i].Count, maxCount)
	}
	return cells
}

// heatmapLevel 按相对于区间峰值的比例分为 0-4 级
func heatmapLevel(count, maxCount int) int {
	if count <= 0 {
		return 0
	}
	if maxCount <= 1 {
		return 1
	}
	ratio := float64(count) / float64(maxCount)
	switch {
	case ratio >= 0.75:
		return 4
	case ratio >= 0.5:
		return 3
	case ratio >= 0.25:
		return 2
	default:
		return 1
	}
}

// GetActivityLevel 计算单日等级，参照整个账本的最大值
func (s *ActivityService) GetActivityLevel(ctx context.Context, date string) (int, error) {
	if _, err := util.ParseDate(date); err != nil {
		return 0, err
	}

	records := s.ActivityRepo.FindAll(ctx)
	count := 0
	maxCount := 1
	for _, r := range records {
		if r.Date == date {
			count = r.Count
		}
		if r.Count > maxCount {
			maxCount = r.Count
		}
	}
	if count <= 0 {
		return 0, nil
	}

	ratio := float64(count) / float64(maxCount)
	switch {
	case ratio >= 0.8:
		return 4, nil
	case ratio >= 0.6:
		return 3, nil
	case ratio >= 0.4:
		return 2, nil
	default:
		return 1, nil
	}
}

func activeDates(records []model.ActivityRecord) map[string]bool {
	active := make(map[string]bool, len(records))
	for _, r := range records {
		if r.Count > 0 {
			active[r.Date] = true
		}
	}
	return active
}

// GetActivityStreak 从今天往回数连续活跃的天数；今天尚无活动时从昨天开始
func (s *ActivityService) GetActivityStreak(ctx context.Context) int {
	active := activeDates(s.ActivityRepo.FindAll(ctx))
	if len(active) == 0 {
		return 0
	}

	day := s.today()
	if !active[util.FormatDate(day)] {
		day = day.AddDate(0, 0, -1)
	}

	streak := 0
	for streak < maxStreakDays && active[util.FormatDate(day)] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

// GetLongestActivityStreak 按日期升序扫描，只有间隔恰好一天才延续
func (s *ActivityService) GetLongestActivityStreak(ctx context.Context) int {
	var dates []string
	for _, r := range s.ActivityRepo.FindAll(ctx) {
		if r.Count > 0 {
			if _, err := util.ParseDate(r.Date); err == nil {
				dates = append(dates, r.Date)
			}
		}
	}
	if len(dates) == 0 {
		return 0
	}
	sort.Strings(dates)

	longest, current := 1, 1
	for i := 1; i < len(dates); i++ {
		diff, _ := util.DaysBetween(dates[i-1], dates[i])
		if diff == 1 {
			current++
		} else {
			current = 1
		}
		if current > longest {
			longest = current
		}
	}
	return longest
}

func (s *ActivityService) GetTotalActivityCount(ctx context.Context) int {
	total := 0
	for _, r := range s.ActivityRepo.FindAll(ctx) {
		total += r.Count
	}
	return total
}

// GetSummary 仪表盘顶部的三项汇总
func (s *ActivityService) GetSummary(ctx context.Context) model.ActivitySummary {
	return model.ActivitySummary{
		CurrentStreak: s.GetActivityStreak(ctx),
		LongestStreak: s.GetLongestActivityStreak(ctx),
		TotalCount:    s.GetTotalActivityCount(ctx),
	}
}
