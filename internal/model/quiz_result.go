package model

import "time"

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func (d Difficulty) Valid() bool {
	return d == DifficultyEasy || d == DifficultyMedium || d == DifficultyHard
}

// QuizQuestion 由题目生成器提供，这里只保存，不校验内容
type QuizQuestion struct {
	QID         string            `json:"qid"`
	Question    string            `json:"question"`
	Options     map[string]string `json:"options,omitempty"`
	Correct     string            `json:"correct"`
	Explanation string            `json:"explanation,omitempty"`
	Topic       string            `json:"topic"`
	Difficulty  Difficulty        `json:"difficulty"`
}

// QuizAnswer 单道题的作答记录
type QuizAnswer struct {
	QID            string        `json:"qid"`
	Question       *QuizQuestion `json:"question,omitempty"`
	SelectedAnswer string        `json:"selectedAnswer"`
	CorrectAnswer  string        `json:"correctAnswer"`
	IsCorrect      bool          `json:"isCorrect"`
	TimeTaken      float64       `json:"timeTaken"` // 秒
	HintUsed       bool          `json:"hintUsed"`
	AttemptNumber  int           `json:"attemptNumber"`
	Topic          string        `json:"topic"`
	Difficulty     Difficulty    `json:"difficulty"`
	Subject        string        `json:"subject"`
}

type AccuracyStat struct {
	Correct  int     `json:"correct"`
	Total    int     `json:"total"`
	Accuracy float64 `json:"accuracy"`
}

type TopicStat struct {
	Correct  int     `json:"correct"`
	Total    int     `json:"total"`
	Accuracy float64 `json:"accuracy"`
	AvgTime  float64 `json:"avgTime"`
}

type DifficultyStats struct {
	Easy   AccuracyStat `json:"easy"`
	Medium AccuracyStat `json:"medium"`
	Hard   AccuracyStat `json:"hard"`
}

// QuizResult 一次完整的测验结果，创建后不可修改
// swagger:model QuizResult
type QuizResult struct {
	ID              string                  `json:"id"`
	QuizID          string                  `json:"quizId"`
	Branch          string                  `json:"branch"`
	Semester        string                  `json:"semester"`
	Subject         string                  `json:"subject"`
	Answers         []QuizAnswer            `json:"answers"`
	TotalScore      int                     `json:"totalScore"`
	TotalTime       float64                 `json:"totalTime"` // 秒
	Accuracy        float64                 `json:"accuracy"`  // 百分比
	DifficultyStats DifficultyStats         `json:"difficultyStats"`
	SubjectStats    map[string]AccuracyStat `json:"subjectStats"`
	TopicStats      map[string]TopicStat    `json:"topicStats"`
	CompletedAt     time.Time               `json:"completedAt"`
	CreatedAt       time.Time               `json:"createdAt"`
}

// QuizResultDraft 保存前由调用方提交的部分结果，统计字段由服务端计算
type QuizResultDraft struct {
	QuizID      string       `json:"quizId"`
	Branch      string       `json:"branch"`
	Semester    string       `json:"semester"`
	Subject     string       `json:"subject" binding:"required"`
	Answers     []QuizAnswer `json:"answers"`
	CompletedAt *time.Time   `json:"completedAt,omitempty"`
}
