package controller

import (
	"errors"
	"learning_dashboard_backend/internal/model"
	"learning_dashboard_backend/internal/service"
	"learning_dashboard_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type RecommendationController struct {
	RecommendationService *service.RecommendationService
	AnalyticsService      *service.AnalyticsService
}

func NewRecommendationController(recommendationService *service.RecommendationService, analyticsService *service.AnalyticsService) *RecommendationController {
	return &RecommendationController{
		RecommendationService: recommendationService,
		AnalyticsService:      analyticsService,
	}
}

// @Summary 获取自适应学习建议
// @Description withContent=true 时为视频类推荐附上检索到的内容，会经过内容队列，耗时较长
// @Tags 推荐
// @Produce json
// @Param withContent query bool false "是否附带视频内容"
// @Success 200 {object} util.Response{data=model.AdaptiveLearningInsights}
// @Router /api/recommendations [get]
func (c *RecommendationController) GetInsights(ctx *gin.Context) {
	reqCtx := ctx.Request.Context()
	insights := c.RecommendationService.AnalyzeLearnerPerformance(reqCtx)

	if withContent, _ := strconv.ParseBool(ctx.Query("withContent")); withContent {
		c.RecommendationService.EnrichWithContent(reqCtx, &insights)
	}

	util.Success(ctx, insights)
}

// @Summary 获取难度调整建议
// @Tags 推荐
// @Produce json
// @Param current query string true "当前难度 easy/medium/hard"
// @Success 200 {object} util.Response{data=model.DifficultyAdjustment}
// @Failure 400 {object} util.Response
// @Router /api/recommendations/difficulty [get]
func (c *RecommendationController) GetDifficultyAdjustment(ctx *gin.Context) {
	current := model.Difficulty(ctx.DefaultQuery("current", string(model.DifficultyMedium)))
	metrics := c.AnalyticsService.GetPerformanceMetrics(ctx.Request.Context())

	adjustment, err := c.RecommendationService.GetDifficultyAdjustment(current, metrics)
	if err != nil {
		if errors.Is(err, util.ErrInvalidDifficulty) {
			util.BadRequest(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, adjustment)
}

// GetContent 为弱项知识点和重点学科检索学习内容
func (c *RecommendationController) GetContent(ctx *gin.Context) {
	reqCtx := ctx.Request.Context()
	max := util.MustParseInt(ctx.Query("max"), 0)

	weakAreas := c.AnalyticsService.GetWeakAreas(reqCtx)
	topics := c.RecommendationService.GetRecommendedContent(reqCtx, weakAreas, max)

	insights := c.RecommendationService.AnalyzeLearnerPerformance(reqCtx)
	subjects := c.RecommendationService.GetSubjectRecommendedContent(reqCtx, insights.StudyPlan.FocusSubjects, max)

	util.Success(ctx, gin.H{
		"topics":   topics,
		"subjects": subjects,
	})
}
