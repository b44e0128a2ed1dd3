package app

import (
	"bytes"
	"context"
	"learning_dashboard_backend/internal/config"
	"learning_dashboard_backend/internal/model"
	"learning_dashboard_backend/internal/repository"
	"learning_dashboard_backend/internal/service"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSearcher struct{}

func (stubSearcher) Search(ctx context.Context, req service.ContentSearchRequest) ([]model.ContentItem, error) {
	return []model.ContentItem{{ID: req.Query, Title: service.BuildSearchQuery(req)}}, nil
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Server:    config.ServerConfig{Port: "0", Mode: "test"},
		Store:     config.StoreConfig{Backend: "memory"},
		Content:   config.ContentConfig{DefaultMaxResults: 3, BreakerFailures: 5, BreakerTimeout: time.Minute},
		Analytics: config.AnalyticsConfig{Timezone: "UTC"},
		RateLimit: config.RateLimitConfig{MaxRequests: 10000, WindowMinutes: 1},
	}
	a := &App{Config: cfg}
	a.build(repository.NewMemoryRecordStore(), stubSearcher{})
	t.Cleanup(func() {
		a.services.contentQueue.Shutdown()
		a.services.eventHub.Stop()
	})
	return a
}

func (a *App) do(t *testing.T, method, path string, body interface{}) (int, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "" && bytes.HasPrefix(w.Body.Bytes(), []byte("{")) {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w.Code, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func quizBody(subject string, correct ...bool) map[string]interface{} {
	answers := make([]map[string]interface{}, 0, len(correct))
	for i, ok := range correct {
		answers = append(answers, map[string]interface{}{
			"qid":        string(rune('a' + i)),
			"isCorrect":  ok,
			"timeTaken":  30,
			"topic":      "Linked Lists",
			"difficulty": "medium",
		})
	}
	return map[string]interface{}{"subject": subject, "answers": answers}
}

func TestRouter_Health(t *testing.T) {
	a := newTestApp(t)

	code, env := a.do(t, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, code)
	data := decode[map[string]interface{}](t, env.Data)
	assert.Equal(t, "ok", data["status"])
	assert.Equal(t, map[string]interface{}{"store": "up"}, data["components"])
}

func TestRouter_QuizResultLifecycle(t *testing.T) {
	a := newTestApp(t)

	code, env := a.do(t, http.MethodPost, "/api/quiz-results", quizBody("DSA", true, false, false))
	require.Equal(t, http.StatusCreated, code)
	saved := decode[model.QuizResult](t, env.Data)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, 1, saved.TotalScore)
	assert.Equal(t, 3, saved.TopicStats["Linked Lists"].Total)

	// 保存测验同时记一次 quiz_completed 活动
	code, env = a.do(t, http.MethodGet, "/api/activities", nil)
	require.Equal(t, http.StatusOK, code)
	records := decode[[]model.ActivityRecord](t, env.Data)
	require.Len(t, records, 1)
	assert.Equal(t, []model.ActivityType{model.ActivityQuizCompleted}, records[0].Activities)

	code, env = a.do(t, http.MethodGet, "/api/quiz-results/"+saved.ID, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, saved.ID, decode[model.QuizResult](t, env.Data).ID)

	code, env = a.do(t, http.MethodGet, "/api/analytics/weak-areas", nil)
	assert.Equal(t, http.StatusOK, code)
	weak := decode[[]model.WeakArea](t, env.Data)
	require.Len(t, weak, 1)
	assert.Equal(t, "Linked Lists", weak[0].Topic)

	code, _ = a.do(t, http.MethodDelete, "/api/quiz-results/"+saved.ID, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = a.do(t, http.MethodDelete, "/api/quiz-results/"+saved.ID, nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = a.do(t, http.MethodGet, "/api/quiz-results/"+saved.ID, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestRouter_QuizResultValidation(t *testing.T) {
	a := newTestApp(t)

	code, _ := a.do(t, http.MethodPost, "/api/quiz-results", map[string]interface{}{"answers": []interface{}{}})
	assert.Equal(t, http.StatusBadRequest, code)

	body := quizBody("DSA", true)
	body["answers"].([]map[string]interface{})[0]["difficulty"] = "brutal"
	code, _ = a.do(t, http.MethodPost, "/api/quiz-results", body)
	assert.Equal(t, http.StatusBadRequest, code)

	code, env := a.do(t, http.MethodGet, "/api/quiz-results", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Empty(t, decode[[]model.QuizResult](t, env.Data))
}

func TestRouter_Activities(t *testing.T) {
	a := newTestApp(t)
	today := time.Now().In(time.UTC).Format("2006-01-02")

	code, _ := a.do(t, http.MethodPost, "/api/activities", map[string]interface{}{"type": "juggling"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env := a.do(t, http.MethodPost, "/api/activities", map[string]interface{}{"type": "video_watched"})
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, today, decode[model.ActivityRecord](t, env.Data).Date)

	code, env = a.do(t, http.MethodGet, "/api/activities/heatmap", nil)
	assert.Equal(t, http.StatusOK, code)
	cells := decode[[]model.HeatmapCell](t, env.Data)
	require.Len(t, cells, 371)
	assert.Equal(t, today, cells[370].Date)
	assert.Equal(t, 1, cells[370].Level, "a peak of one is level 1")

	code, env = a.do(t, http.MethodGet, "/api/activities/summary", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, model.ActivitySummary{CurrentStreak: 1, LongestStreak: 1, TotalCount: 1}, decode[model.ActivitySummary](t, env.Data))

	code, env = a.do(t, http.MethodGet, "/api/activities/streak", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]int{"current": 1, "longest": 1}, decode[map[string]int](t, env.Data))

	code, _ = a.do(t, http.MethodGet, "/api/activities/"+today, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = a.do(t, http.MethodGet, "/api/activities/2001-01-01", nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = a.do(t, http.MethodGet, "/api/activities/yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = a.do(t, http.MethodGet, "/api/activities/range?start=2000-01-01&end="+today, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, decode[map[string]interface{}](t, env.Data)["count"])
	code, _ = a.do(t, http.MethodGet, "/api/activities/range?start=bad&end="+today, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestRouter_Recommendations(t *testing.T) {
	a := newTestApp(t)

	code, env := a.do(t, http.MethodGet, "/api/recommendations", nil)
	assert.Equal(t, http.StatusOK, code)
	insights := decode[model.AdaptiveLearningInsights](t, env.Data)
	assert.Equal(t, model.DifficultyMedium, insights.RecommendedDifficulty)
	assert.Len(t, insights.Recommendations, 2)

	code, _ = a.do(t, http.MethodGet, "/api/recommendations/difficulty?current=extreme", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = a.do(t, http.MethodPost, "/api/quiz-results", quizBody("OS", false, false, true))
	require.Equal(t, http.StatusCreated, code)

	code, env = a.do(t, http.MethodGet, "/api/recommendations/difficulty?current=hard", nil)
	assert.Equal(t, http.StatusOK, code)
	adj := decode[model.DifficultyAdjustment](t, env.Data)
	assert.True(t, adj.ShouldAdjust)
	assert.Equal(t, model.DifficultyEasy, adj.NewDifficulty)

	code, env = a.do(t, http.MethodGet, "/api/recommendations?withContent=true", nil)
	assert.Equal(t, http.StatusOK, code)
	insights = decode[model.AdaptiveLearningInsights](t, env.Data)
	require.NotEmpty(t, insights.Recommendations)
	require.NotNil(t, insights.Recommendations[0].Video)
	assert.Equal(t, "Linked Lists", insights.Recommendations[0].Video.ID)

	code, env = a.do(t, http.MethodGet, "/api/recommendations/content", nil)
	assert.Equal(t, http.StatusOK, code)
	content := decode[map[string]map[string][]model.ContentItem](t, env.Data)
	assert.Contains(t, content["topics"], "OS::Linked Lists")
	assert.Contains(t, content["subjects"], "OS")
}

func TestRouter_ContentSearch(t *testing.T) {
	a := newTestApp(t)

	code, _ := a.do(t, http.MethodGet, "/api/content/search?kind=podcast&query=x", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = a.do(t, http.MethodGet, "/api/content/search?kind=topic", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, env := a.do(t, http.MethodGet, "/api/content/search?kind=topic&query=Heaps&subject=DSA&max=2", nil)
	require.Equal(t, http.StatusOK, code)
	items := decode[[]model.ContentItem](t, env.Data)
	require.Len(t, items, 1)
	assert.Equal(t, "DSA Heaps tutorial explanation examples practice problems engineering competitive exam preparation", items[0].Title)

	code, env = a.do(t, http.MethodGet, "/api/content/queue", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 0, decode[model.QueueStatus](t, env.Data).QueueLength)

	code, env = a.do(t, http.MethodDelete, "/api/content/queue", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]int{"rejected": 0}, decode[map[string]int](t, env.Data))
}

func TestRouter_ConfigReloadRunsCallbacks(t *testing.T) {
	a := newTestApp(t)

	var got *config.Config
	a.RegisterConfigCallback(func(cfg *config.Config) { got = cfg })

	newCfg := *a.Config
	newCfg.Content.Cooldown = 3 * time.Second
	a.applyConfig(&newCfg)

	require.NotNil(t, got)
	assert.Equal(t, 3*time.Second, got.Content.Cooldown)

	// 队列节奏更新后仍可正常处理请求
	code, _ := a.do(t, http.MethodGet, "/api/content/search?kind=subject&query=CN", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestRouter_Metrics(t *testing.T) {
	a := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
