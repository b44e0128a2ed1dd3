package controller

import (
	"errors"
	"learning_dashboard_backend/internal/model"
	"learning_dashboard_backend/internal/service"
	"learning_dashboard_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ActivityController struct {
	ActivityService *service.ActivityService
}

func NewActivityController(activityService *service.ActivityService) *ActivityController {
	return &ActivityController{ActivityService: activityService}
}

type RecordActivityRequest struct {
	Type     model.ActivityType     `json:"type" binding:"required"`
	Metadata map[string]interface{} `json:"metadata"`
}

// @Summary 记录学习活动
// @Description 在今天的记录上累加一次活动
// @Tags 活动
// @Accept json
// @Produce json
// @Param request body RecordActivityRequest true "活动类型"
// @Success 201 {object} util.Response{data=model.ActivityRecord}
// @Failure 400 {object} util.Response
// @Router /api/activities [post]
func (c *ActivityController) RecordActivity(ctx *gin.Context) {
	var req RecordActivityRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	record, err := c.ActivityService.RecordActivity(ctx.Request.Context(), req.Type, req.Metadata)
	if err != nil {
		if errors.Is(err, util.ErrUnknownActivityType) {
			util.BadRequest(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, record)
}

// @Summary 获取全部活动记录
// @Tags 活动
// @Produce json
// @Success 200 {object} util.Response{data=[]model.ActivityRecord}
// @Router /api/activities [get]
func (c *ActivityController) GetActivities(ctx *gin.Context) {
	util.Success(ctx, c.ActivityService.GetActivityRecords(ctx.Request.Context()))
}

// @Summary 获取活动热力图
// @Description 最近 371 天，按日期从旧到新
// @Tags 活动
// @Produce json
// @Success 200 {object} util.Response{data=[]model.HeatmapCell}
// @Router /api/activities/heatmap [get]
func (c *ActivityController) GetHeatmap(ctx *gin.Context) {
	util.Success(ctx, c.ActivityService.GetActivityHeatmapData(ctx.Request.Context()))
}

func (c *ActivityController) GetStreak(ctx *gin.Context) {
	reqCtx := ctx.Request.Context()
	util.Success(ctx, gin.H{
		"current": c.ActivityService.GetActivityStreak(reqCtx),
		"longest": c.ActivityService.GetLongestActivityStreak(reqCtx),
	})
}

func (c *ActivityController) GetSummary(ctx *gin.Context) {
	util.Success(ctx, c.ActivityService.GetSummary(ctx.Request.Context()))
}

// @Summary 获取指定日期的活动
// @Tags 活动
// @Produce json
// @Param date path string true "日期 YYYY-MM-DD"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/activities/{date} [get]
func (c *ActivityController) GetActivityForDate(ctx *gin.Context) {
	date := ctx.Param("date")
	reqCtx := ctx.Request.Context()

	record, err := c.ActivityService.GetActivityForDate(reqCtx, date)
	switch {
	case errors.Is(err, util.ErrInvalidDate):
		util.BadRequest(ctx, err.Error())
		return
	case errors.Is(err, util.ErrRecordNotFound):
		util.NotFound(ctx)
		return
	case err != nil:
		util.LogInternalError(ctx, err)
		return
	}

	level, err := c.ActivityService.GetActivityLevel(reqCtx, date)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"record": record,
		"level":  level,
	})
}

// @Summary 统计日期区间内的活动次数
// @Tags 活动
// @Produce json
// @Param start query string true "开始日期"
// @Param end query string true "结束日期"
// @Success 200 {object} util.Response
// @Router /api/activities/range [get]
func (c *ActivityController) GetActivityCount(ctx *gin.Context) {
	start := ctx.Query("start")
	end := ctx.Query("end")

	count, err := c.ActivityService.GetActivityCount(ctx.Request.Context(), start, end)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	util.Success(ctx, gin.H{
		"start": start,
		"end":   end,
		"count": count,
	})
}
