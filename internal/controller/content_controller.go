package controller

import (
	"context"
	"errors"
	"learning_dashboard_backend/internal/model"
	"learning_dashboard_backend/internal/service"
	"learning_dashboard_backend/internal/util"
	"learning_dashboard_backend/pkg/logger"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

type ContentController struct {
	Queue *service.ContentQueue
}

func NewContentController(queue *service.ContentQueue) *ContentController {
	return &ContentController{Queue: queue}
}

// @Summary 检索学习内容
// @Description 请求进入全局顺序队列，同一时间只有一个外部调用
// @Tags 内容
// @Produce json
// @Param kind query string true "subject 或 topic"
// @Param query query string true "学科名或知识点"
// @Param subject query string false "知识点所属学科"
// @Param max query int false "最大条数"
// @Success 200 {object} util.Response{data=[]model.ContentItem}
// @Failure 400 {object} util.Response
// @Failure 503 {object} util.Response
// @Router /api/content/search [get]
func (c *ContentController) Search(ctx *gin.Context) {
	kind := model.ContentKind(ctx.DefaultQuery("kind", string(model.ContentKindSubject)))
	if !kind.Valid() {
		util.BadRequest(ctx, util.ErrInvalidContentKind.Error())
		return
	}
	query := strings.TrimSpace(ctx.Query("query"))
	if query == "" {
		util.BadRequest(ctx, "query is required")
		return
	}

	topic := ctx.Query("topic")
	if kind == model.ContentKindTopic && topic == "" {
		topic = query
	}
	max := util.MustParseInt(ctx.Query("max"), 0)

	items, err := c.Queue.Enqueue(ctx.Request.Context(), kind, query, max, ctx.Query("subject"), topic)
	if err != nil {
		logger.Log.Warn("Content search failed", zap.String("query", query), zap.Error(err))
		switch {
		case errors.Is(err, util.ErrQueueCleared), errors.Is(err, util.ErrQueueClosed),
			errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			util.ServiceUnavailable(ctx, err.Error())
		case errors.Is(err, context.DeadlineExceeded):
			util.Error(ctx, http.StatusGatewayTimeout, "Content provider timed out")
		default:
			util.Error(ctx, http.StatusBadGateway, "Content provider error")
		}
		return
	}
	util.Success(ctx, items)
}

func (c *ContentController) GetQueueStatus(ctx *gin.Context) {
	util.Success(ctx, c.Queue.Status())
}

// ClearQueue 拒绝所有等待中的请求
func (c *ContentController) ClearQueue(ctx *gin.Context) {
	util.Success(ctx, gin.H{"rejected": c.Queue.Clear()})
}
