package controller

import (
	"errors"
	"learning_dashboard_backend/internal/model"
	"learning_dashboard_backend/internal/service"
	"learning_dashboard_backend/internal/util"
	"learning_dashboard_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type QuizResultController struct {
	QuizResultService *service.QuizResultService
	ActivityService   *service.ActivityService
}

func NewQuizResultController(quizResultService *service.QuizResultService, activityService *service.ActivityService) *QuizResultController {
	return &QuizResultController{
		QuizResultService: quizResultService,
		ActivityService:   activityService,
	}
}

// @Summary 保存测验结果
// @Description 统计字段由服务端计算，同时记录一次 quiz_completed 活动
// @Tags 测验
// @Accept json
// @Produce json
// @Param request body model.QuizResultDraft true "测验结果"
// @Success 201 {object} util.Response{data=model.QuizResult}
// @Failure 400 {object} util.Response
// @Router /api/quiz-results [post]
func (c *QuizResultController) SaveQuizResult(ctx *gin.Context) {
	var draft model.QuizResultDraft
	if err := ctx.ShouldBindJSON(&draft); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	reqCtx := ctx.Request.Context()
	result, err := c.QuizResultService.SaveQuizResult(reqCtx, &draft)
	if err != nil {
		if errors.Is(err, util.ErrInvalidQuizResult) || errors.Is(err, util.ErrInvalidDifficulty) {
			util.BadRequest(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	// 活动记录失败不影响测验结果的保存
	if c.ActivityService != nil {
		if _, err := c.ActivityService.RecordActivity(reqCtx, model.ActivityQuizCompleted, map[string]interface{}{
			"quizResultId": result.ID,
			"subject":      result.Subject,
		}); err != nil {
			logger.Log.Warn("Failed to record quiz activity", zap.String("quizResultId", result.ID), zap.Error(err))
		}
	}

	util.Created(ctx, result)
}

func (c *QuizResultController) GetQuizResults(ctx *gin.Context) {
	util.Success(ctx, c.QuizResultService.GetQuizResults(ctx.Request.Context()))
}

// @Summary 获取测验结果详情
// @Tags 测验
// @Produce json
// @Param id path string true "结果ID"
// @Success 200 {object} util.Response{data=model.QuizResult}
// @Failure 404 {object} util.Response
// @Router /api/quiz-results/{id} [get]
func (c *QuizResultController) GetQuizResult(ctx *gin.Context) {
	result, err := c.QuizResultService.GetQuizResultByID(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrQuizResultNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// @Summary 删除测验结果
// @Tags 测验
// @Produce json
// @Param id path string true "结果ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/quiz-results/{id} [delete]
func (c *QuizResultController) DeleteQuizResult(ctx *gin.Context) {
	id := ctx.Param("id")
	deleted, err := c.QuizResultService.DeleteQuizResult(ctx.Request.Context(), id)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	if !deleted {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, gin.H{"id": id, "deleted": true})
}
