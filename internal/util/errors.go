package util

import "errors"

var (
	ErrUnknownActivityType = errors.New("unknown activity type")
	ErrInvalidDate         = errors.New("invalid date, expected YYYY-MM-DD")
	ErrQuizResultNotFound  = errors.New("quiz result not found")
	ErrInvalidQuizResult   = errors.New("invalid quiz result")
	ErrInvalidDifficulty   = errors.New("invalid difficulty")
	ErrInvalidContentKind  = errors.New("invalid content kind")
	ErrQueueCleared        = errors.New("queue cleared")
	ErrQueueClosed         = errors.New("queue closed")
	ErrRecordNotFound      = errors.New("record not found")
)
