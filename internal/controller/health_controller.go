package controller

import (
	"context"
	"learning_dashboard_backend/internal/service"
	"learning_dashboard_backend/internal/util"
	"learning_dashboard_backend/pkg/logger"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthCheck 返回 nil 表示组件可用
type HealthCheck func(ctx context.Context) error

type HealthController struct {
	Checks map[string]HealthCheck
	Queue  *service.ContentQueue
}

func NewHealthController(checks map[string]HealthCheck, queue *service.ContentQueue) *HealthController {
	return &HealthController{Checks: checks, Queue: queue}
}

// @Summary 健康检查
// @Description 检查记录存储等组件状态
// @Tags 系统
// @Produce json
// @Success 200 {object} util.Response
// @Failure 503 {object} util.Response
// @Router /api/health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	reqCtx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	names := make([]string, 0, len(c.Checks))
	for name := range c.Checks {
		names = append(names, name)
	}
	sort.Strings(names)

	components := gin.H{}
	healthy := true
	for _, name := range names {
		if err := c.Checks[name](reqCtx); err != nil {
			logger.Log.Warn("Health check failed", zap.String("component", name), zap.Error(err))
			components[name] = "down"
			healthy = false
			continue
		}
		components[name] = "up"
	}

	data := gin.H{
		"status":     "ok",
		"components": components,
	}
	if c.Queue != nil {
		data["contentQueue"] = c.Queue.Status()
	}

	if !healthy {
		data["status"] = "degraded"
		ctx.JSON(http.StatusServiceUnavailable, util.Response{
			Code:    http.StatusServiceUnavailable,
			Message: "Component unavailable",
			Data:    data,
		})
		return
	}
	util.Success(ctx, data)
}
