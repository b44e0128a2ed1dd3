package controller

import (
	"learning_dashboard_backend/internal/service"

	"github.com/gin-gonic/gin"
)

type EventController struct {
	Hub *service.EventHub
}

func NewEventController(hub *service.EventHub) *EventController {
	return &EventController{Hub: hub}
}

// @Summary 数据变化通知
// @Description WebSocket 推送 activity_updated / quiz_result_saved / quiz_result_deleted 信号，收到后重新查询
// @Tags 通知
// @Router /api/events/ws [get]
func (c *EventController) HandleWS(ctx *gin.Context) {
	service.ServeWs(c.Hub, ctx.Writer, ctx.Request)
}
