package service

import (
	"context"
	"errors"
	"fmt"
	"learning_dashboard_backend/internal/model"
	"learning_dashboard_backend/pkg/logger"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// ContentSearchRequest 发往外部检索服务的一次请求
type ContentSearchRequest struct {
	Kind       model.ContentKind
	Query      string
	Subject    string
	Topic      string
	MaxResults int
}

// ContentSearcher 外部内容检索，可能因网络或配额失败
type ContentSearcher interface {
	Search(ctx context.Context, req ContentSearchRequest) ([]model.ContentItem, error)
}

// ErrQuotaExceeded 外部服务配额耗尽
var ErrQuotaExceeded = errors.New("content provider quota exceeded")

// BuildSearchQuery 按检索类型拼接带教学关键词的查询语句
func BuildSearchQuery(req ContentSearchRequest) string {
	if req.Kind == model.ContentKindTopic {
		topic := req.Topic
		if topic == "" {
			topic = req.Query
		}
		parts := []string{}
		if s := strings.TrimSpace(req.Subject); s != "" {
			parts = append(parts, s)
		}
		parts = append(parts, strings.TrimSpace(topic),
			"tutorial explanation examples practice problems engineering competitive exam preparation")
		return strings.Join(parts, " ")
	}

	subject := req.Query
	if subject == "" {
		subject = req.Subject
	}
	return strings.TrimSpace(subject) + " lecture tutorial engineering competitive exam"
}

type YouTubeSearcher struct {
	Service *youtube.Service
}

// NewYouTubeSearcher 未配置 API Key 时返回一个只会给出空结果的检索器
func NewYouTubeSearcher(ctx context.Context, apiKey string, opts ...option.ClientOption) (*YouTubeSearcher, error) {
	if apiKey == "" {
		logger.Log.Warn("YouTube API key is not configured, content search will return no results")
		return &YouTubeSearcher{}, nil
	}

	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}
	return &YouTubeSearcher{Service: svc}, nil
}

func (s *YouTubeSearcher) Search(ctx context.Context, req ContentSearchRequest) ([]model.ContentItem, error) {
	if s.Service == nil {
		logger.Log.Warn("YouTube search skipped, API key missing", zap.String("query", req.Query))
		return []model.ContentItem{}, nil
	}

	query := BuildSearchQuery(req)
	resp, err := s.Service.Search.List([]string{"snippet"}).
		Q(query).
		Type("video").
		MaxResults(int64(req.MaxResults)).
		Order("relevance").
		VideoDuration("medium").
		SafeSearch("strict").
		Context(ctx).
		Do()
	if err != nil {
		if isQuotaExceeded(err) {
			return nil, fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
		}
		return nil, fmt.Errorf("youtube search %q: %w", query, err)
	}

	items := make([]model.ContentItem, 0, len(resp.Items))
	for _, it := range resp.Items {
		if it.Id == nil || it.Id.VideoId == "" || it.Snippet == nil {
			continue
		}
		item := model.ContentItem{
			ID:           it.Id.VideoId,
			Title:        it.Snippet.Title,
			Description:  it.Snippet.Description,
			ChannelTitle: it.Snippet.ChannelTitle,
		}
		if th := it.Snippet.Thumbnails; th != nil {
			switch {
			case th.Medium != nil:
				item.ThumbnailURL = th.Medium.Url
			case th.High != nil:
				item.ThumbnailURL = th.High.Url
			case th.Default != nil:
				item.ThumbnailURL = th.Default.Url
			}
		}
		items = append(items, item)
	}
	return items, nil
}

func isQuotaExceeded(err error) bool {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return false
	}
	for _, e := range gerr.Errors {
		if e.Reason == "quotaExceeded" || e.Reason == "dailyLimitExceeded" {
			return true
		}
	}
	return false
}
