package model

// ActivityType 学习活动类型
type ActivityType string

const (
	ActivityQuizCompleted             ActivityType = "quiz_completed"
	ActivityStudyNoteViewed           ActivityType = "study_note_viewed"
	ActivityVideoWatched              ActivityType = "video_watched"
	ActivityTimetableSessionCompleted ActivityType = "timetable_session_completed"
	ActivityJobSaved                  ActivityType = "job_saved"
	ActivityPracticeViewed            ActivityType = "practice_viewed"
	ActivityResumeAnalyzed            ActivityType = "resume_analyzed"
)

var knownActivityTypes = map[ActivityType]bool{
	ActivityQuizCompleted:             true,
	ActivityStudyNoteViewed:           true,
	ActivityVideoWatched:              true,
	ActivityTimetableSessionCompleted: true,
	ActivityJobSaved:                  true,
	ActivityPracticeViewed:            true,
	ActivityResumeAnalyzed:            true,
}

func (t ActivityType) Valid() bool {
	return knownActivityTypes[t]
}

// ActivityRecord 某一天的活动记录，每个日期最多一条
// swagger:model ActivityRecord
type ActivityRecord struct {
	Date       string         `json:"date"` // YYYY-MM-DD
	Count      int            `json:"count"`
	Activities []ActivityType `json:"activities"`
}

// HeatmapCell 热力图单元格
type HeatmapCell struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
	Level int    `json:"level"` // 0-4
}

// ActivitySummary 仪表盘顶部的活动汇总
type ActivitySummary struct {
	CurrentStreak int `json:"currentStreak"`
	LongestStreak int `json:"longestStreak"`
	TotalCount    int `json:"totalCount"`
}
