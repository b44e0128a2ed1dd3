package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

// 记录存储中的账本键
const (
	ActivityLedgerKey   = "student_activity"
	QuizResultLedgerKey = "quiz_results"
)

const (
	StoreGorm   = "gorm"
	StoreBadger = "badger"
	StoreRedis  = "redis"
	StoreMinio  = "minio"
	StoreMemory = "memory"
)

// 前端路由，推荐里的跳转地址
const (
	PracticeURL = "/student/practice"
	LearningURL = "/student/learning"
)
