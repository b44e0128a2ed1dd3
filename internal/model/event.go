package model

import "time"

const (
	EventActivityUpdated  = "activity_updated"
	EventQuizResultSaved  = "quiz_result_saved"
	EventQuizResultDelete = "quiz_result_deleted"
)

// Event 推送给前端的通知信号，不承诺负载内容，收到后应重新查询
type Event struct {
	Type string    `json:"type"`
	At   time.Time `json:"at"`
}
