package controller

import (
	"learning_dashboard_backend/internal/service"
	"learning_dashboard_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AnalyticsController struct {
	AnalyticsService *service.AnalyticsService
}

func NewAnalyticsController(analyticsService *service.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{AnalyticsService: analyticsService}
}

// @Summary 获取整体表现指标
// @Description 平均分、平均正确率、各难度正确率以及最好/最弱学科
// @Tags 分析
// @Produce json
// @Success 200 {object} util.Response{data=model.PerformanceMetrics}
// @Router /api/analytics/metrics [get]
func (c *AnalyticsController) GetMetrics(ctx *gin.Context) {
	util.Success(ctx, c.AnalyticsService.GetPerformanceMetrics(ctx.Request.Context()))
}

// @Summary 获取各学科表现
// @Tags 分析
// @Produce json
// @Success 200 {object} util.Response{data=[]model.SubjectPerformance}
// @Router /api/analytics/subjects [get]
func (c *AnalyticsController) GetSubjects(ctx *gin.Context) {
	util.Success(ctx, c.AnalyticsService.GetSubjectPerformance(ctx.Request.Context()))
}

// @Summary 获取学习进度曲线
// @Tags 分析
// @Produce json
// @Success 200 {object} util.Response{data=[]model.ProgressDataPoint}
// @Router /api/analytics/progress [get]
func (c *AnalyticsController) GetProgress(ctx *gin.Context) {
	util.Success(ctx, c.AnalyticsService.GetProgressOverTime(ctx.Request.Context()))
}

func (c *AnalyticsController) GetWeakAreas(ctx *gin.Context) {
	util.Success(ctx, c.AnalyticsService.GetWeakAreas(ctx.Request.Context()))
}

func (c *AnalyticsController) GetStrongAreas(ctx *gin.Context) {
	util.Success(ctx, c.AnalyticsService.GetStrongAreas(ctx.Request.Context()))
}

func (c *AnalyticsController) GetDifficulty(ctx *gin.Context) {
	util.Success(ctx, c.AnalyticsService.GetDifficultyDistribution(ctx.Request.Context()))
}

// @Summary 获取能力雷达图
// @Description 速度、正确率、稳定性、概念掌握、难题处理、近期稳定度，均为 0-100
// @Tags 分析
// @Produce json
// @Success 200 {object} util.Response{data=model.SkillRadarData}
// @Router /api/analytics/skill-radar [get]
func (c *AnalyticsController) GetSkillRadar(ctx *gin.Context) {
	util.Success(ctx, c.AnalyticsService.GetSkillRadarData(ctx.Request.Context()))
}
