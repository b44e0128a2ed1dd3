package service

import (
	"context"
	"errors"
	"learning_dashboard_backend/internal/model"
	"learning_dashboard_backend/internal/util"
	"learning_dashboard_backend/pkg/logger"
	"learning_dashboard_backend/pkg/monitoring"
	"learning_dashboard_backend/pkg/tracing"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	defaultCooldown       = time.Second
	defaultGap            = 500 * time.Millisecond
	defaultRequestTimeout = 15 * time.Second
	defaultMaxResults     = 5
	// 搜索接口单次最多返回 50 条
	maxProviderResults = 50
)

// Sleeper 等待 d 时长，ctx 取消时提前返回
type Sleeper func(ctx context.Context, d time.Duration) error

func realSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ContentResult 排队请求的最终结果
type ContentResult struct {
	Items []model.ContentItem
	Err   error
}

type queuedRequest struct {
	id     string
	req    ContentSearchRequest
	ctx    context.Context
	result chan ContentResult
}

// ContentQueue 单飞 FIFO 队列：任意时刻最多一个外部检索在执行，
// 每次调用结束后先冷却，队列非空时再间隔一小段时间处理下一个
type ContentQueue struct {
	searcher ContentSearcher
	breaker  *gobreaker.CircuitBreaker[[]model.ContentItem]
	sleep    Sleeper

	mu         sync.Mutex
	queue      []*queuedRequest
	processing bool
	current    *queuedRequest
	closed     bool
	cooldown   time.Duration
	gap        time.Duration
	timeout    time.Duration
	maxResults int

	baseCtx context.Context
	cancel  context.CancelFunc
}

type QueueOption func(*ContentQueue)

func WithSleeper(sleep Sleeper) QueueOption {
	return func(q *ContentQueue) { q.sleep = sleep }
}

func WithDelays(cooldown, gap time.Duration) QueueOption {
	return func(q *ContentQueue) {
		q.cooldown = cooldown
		q.gap = gap
	}
}

// WithRequestTimeout 单次外部调用的超时，0 表示不限时
func WithRequestTimeout(timeout time.Duration) QueueOption {
	return func(q *ContentQueue) { q.timeout = timeout }
}

func WithDefaultMaxResults(n int) QueueOption {
	return func(q *ContentQueue) {
		if n > 0 {
			q.maxResults = n
		}
	}
}

// WithBreaker 连续失败 failures 次后熔断，openTimeout 后进入半开状态
func WithBreaker(failures uint32, openTimeout time.Duration) QueueOption {
	return func(q *ContentQueue) {
		q.breaker = newContentBreaker(failures, openTimeout)
	}
}

func newContentBreaker(failures uint32, openTimeout time.Duration) *gobreaker.CircuitBreaker[[]model.ContentItem] {
	if failures == 0 {
		failures = 5
	}
	if openTimeout <= 0 {
		openTimeout = time.Minute
	}
	return gobreaker.NewCircuitBreaker[[]model.ContentItem](gobreaker.Settings{
		Name:        "content-search",
		MaxRequests: 1,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// 调用方取消不算外部服务的故障
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Log.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
}

func NewContentQueue(searcher ContentSearcher, opts ...QueueOption) *ContentQueue {
	ctx, cancel := context.WithCancel(context.Background())
	q := &ContentQueue{
		searcher:   searcher,
		sleep:      realSleep,
		cooldown:   defaultCooldown,
		gap:        defaultGap,
		timeout:    defaultRequestTimeout,
		maxResults: defaultMaxResults,
		baseCtx:    ctx,
		cancel:     cancel,
	}
	for _, opt := range opts {
		opt(q)
	}
	if q.breaker == nil {
		q.breaker = newContentBreaker(0, 0)
	}
	return q
}

// SetDelays 热更新冷却、间隔与超时，对下一次调用生效
func (q *ContentQueue) SetDelays(cooldown, gap, timeout time.Duration) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.cooldown = cooldown
	q.gap = gap
	q.timeout = timeout
}

// Submit 把请求放入队尾并立即返回结果通道，通道在轮到该请求并完成后收到恰好一个结果
func (q *ContentQueue) Submit(ctx context.Context, req ContentSearchRequest) <-chan ContentResult {
	return q.submit(ctx, req).result
}

func (q *ContentQueue) submit(ctx context.Context, req ContentSearchRequest) *queuedRequest {
	if req.MaxResults <= 0 {
		req.MaxResults = q.defaultMax()
	}
	req.MaxResults = clampMaxResults(req.MaxResults)
	r := &queuedRequest{
		id:     uuid.NewString(),
		req:    req,
		ctx:    ctx,
		result: make(chan ContentResult, 1),
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		r.result <- ContentResult{Err: util.ErrQueueClosed}
		return r
	}
	q.queue = append(q.queue, r)
	depth := len(q.queue)
	start := !q.processing
	if start {
		q.processing = true
	}
	q.mu.Unlock()

	monitoring.ContentQueueDepth.Set(float64(depth))
	logger.Log.Debug("Content request queued",
		zap.String("id", r.id),
		zap.String("kind", string(req.Kind)),
		zap.String("query", req.Query),
		zap.Int("queueLength", depth),
	)

	if start {
		go q.run()
	}
	return r
}

func clampMaxResults(n int) int {
	if n < 1 {
		return 1
	}
	if n > maxProviderResults {
		return maxProviderResults
	}
	return n
}

func (q *ContentQueue) defaultMax() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.maxResults
}

// Enqueue 排队并阻塞到该请求被处理；ctx 在请求开始前取消时会把它移出队列
func (q *ContentQueue) Enqueue(ctx context.Context, kind model.ContentKind, query string, maxResults int, subject, topic string) ([]model.ContentItem, error) {
	r := q.submit(ctx, ContentSearchRequest{
		Kind:       kind,
		Query:      query,
		Subject:    subject,
		Topic:      topic,
		MaxResults: maxResults,
	})

	select {
	case res := <-r.result:
		return res.Items, res.Err
	case <-ctx.Done():
		q.remove(r.id)
		return nil, ctx.Err()
	}
}

func (q *ContentQueue) QueueSubjectContent(ctx context.Context, subject string, maxResults int) ([]model.ContentItem, error) {
	return q.Enqueue(ctx, model.ContentKindSubject, subject, maxResults, subject, "")
}

func (q *ContentQueue) QueueTopicContent(ctx context.Context, topic, subject string, maxResults int) ([]model.ContentItem, error) {
	return q.Enqueue(ctx, model.ContentKindTopic, topic, maxResults, subject, topic)
}

func (q *ContentQueue) remove(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, r := range q.queue {
		if r.id == id {
			q.queue = append(q.queue[:i], q.queue[i+1:]...)
			monitoring.ContentQueueDepth.Set(float64(len(q.queue)))
			return true
		}
	}
	return false
}

func (q *ContentQueue) run() {
	for {
		q.mu.Lock()
		if len(q.queue) == 0 || q.closed {
			q.processing = false
			q.current = nil
			q.mu.Unlock()
			return
		}
		r := q.queue[0]
		q.queue[0] = nil
		q.queue = q.queue[1:]
		q.current = r
		depth := len(q.queue)
		timeout := q.timeout
		q.mu.Unlock()
		monitoring.ContentQueueDepth.Set(float64(depth))

		// 调用方已放弃，不占用外部配额
		if err := r.ctx.Err(); err != nil {
			r.result <- ContentResult{Err: err}
			q.setCurrent(nil)
			continue
		}

		items, err := q.execute(r, timeout)
		r.result <- ContentResult{Items: items, Err: err}
		q.setCurrent(nil)

		q.mu.Lock()
		cooldown, gap := q.cooldown, q.gap
		q.mu.Unlock()

		_ = q.sleep(q.baseCtx, cooldown)

		q.mu.Lock()
		more := len(q.queue) > 0 && !q.closed
		q.mu.Unlock()
		if more {
			_ = q.sleep(q.baseCtx, gap)
		}
	}
}

func (q *ContentQueue) setCurrent(r *queuedRequest) {
	q.mu.Lock()
	q.current = r
	q.mu.Unlock()
}

func (q *ContentQueue) execute(r *queuedRequest, timeout time.Duration) ([]model.ContentItem, error) {
	ctx, span := tracing.Tracer.Start(r.ctx, "ContentQueue.Search",
		trace.WithAttributes(
			attribute.String("content.kind", string(r.req.Kind)),
			attribute.String("content.query", r.req.Query),
			attribute.Int("content.max_results", r.req.MaxResults),
		),
	)
	defer span.End()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(q.baseCtx, cancel)
	defer stop()
	if timeout > 0 {
		var cancelTimeout context.CancelFunc
		ctx, cancelTimeout = context.WithTimeout(ctx, timeout)
		defer cancelTimeout()
	}

	logger.Log.Info("Processing content request",
		zap.String("id", r.id),
		zap.String("kind", string(r.req.Kind)),
		zap.String("query", r.req.Query),
	)

	started := time.Now()
	items, err := q.breaker.Execute(func() ([]model.ContentItem, error) {
		return q.searcher.Search(ctx, r.req)
	})
	monitoring.ContentRequestDuration.WithLabelValues(string(r.req.Kind)).Observe(time.Since(started).Seconds())

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		monitoring.ContentRequestCounter.WithLabelValues(string(r.req.Kind), "error").Inc()
		logger.Log.Error("Content request failed", zap.String("id", r.id), zap.String("query", r.req.Query), zap.Error(err))
		return nil, err
	}

	if items == nil {
		items = []model.ContentItem{}
	}
	monitoring.ContentRequestCounter.WithLabelValues(string(r.req.Kind), "success").Inc()
	logger.Log.Info("Content request completed", zap.String("id", r.id), zap.Int("items", len(items)))
	return items, nil
}

// Status 队列快照，仅用于观测
func (q *ContentQueue) Status() model.QueueStatus {
	q.mu.Lock()
	defer q.mu.Unlock()
	status := model.QueueStatus{
		QueueLength: len(q.queue),
		Processing:  q.processing,
	}
	if q.current != nil {
		status.CurrentRequest = q.current.req.Query
	}
	return status
}

// Clear 拒绝所有尚未开始的请求，已在执行的外部调用不受影响
func (q *ContentQueue) Clear() int {
	q.mu.Lock()
	pending := q.queue
	q.queue = nil
	q.mu.Unlock()

	for _, r := range pending {
		r.result <- ContentResult{Err: util.ErrQueueCleared}
	}
	monitoring.ContentQueueDepth.Set(0)
	if len(pending) > 0 {
		logger.Log.Info("Content queue cleared", zap.Int("rejected", len(pending)))
	}
	return len(pending)
}

// Shutdown 拒绝后续请求、清空队列并取消正在执行的调用
func (q *ContentQueue) Shutdown() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	q.Clear()
	q.cancel()
}
