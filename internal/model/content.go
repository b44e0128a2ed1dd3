package model

import "time"

// ContentKind 检索类型
type ContentKind string

const (
	ContentKindSubject ContentKind = "subject"
	ContentKindTopic   ContentKind = "topic"
)

func (k ContentKind) Valid() bool {
	return k == ContentKindSubject || k == ContentKindTopic
}

// ContentItem 外部检索返回的一条内容，对推荐引擎是不透明的
type ContentItem struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	ChannelTitle string `json:"channelTitle"`
	ThumbnailURL string `json:"thumbnailUrl"`
}

// QueueStatus 队列状态，仅用于观测
type QueueStatus struct {
	QueueLength    int    `json:"queueLength"`
	Processing     bool   `json:"processing"`
	CurrentRequest string `json:"currentRequest,omitempty"`
}

// CachedContent 检索结果缓存条目
type CachedContent struct {
	Items    []ContentItem `json:"items"`
	Query    string        `json:"query"`
	CachedAt time.Time     `json:"cachedAt"`
}
