package app

import (
	"learning_dashboard_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	router.GET("/metrics", monitoring.PrometheusHandler())

	api := router.Group("/api")
	api.GET("/health", c.health.HealthCheck)

	a.registerActivityRoutes(api, c)
	a.registerQuizResultRoutes(api, c)
	a.registerAnalyticsRoutes(api, c)
	a.registerRecommendationRoutes(api, c)
	a.registerContentRoutes(api, c)

	api.GET("/events/ws", c.event.HandleWS)
}

func (a *App) registerActivityRoutes(api *gin.RouterGroup, c *controllers) {
	activities := api.Group("/activities")
	{
		activities.POST("", c.activity.RecordActivity)
		activities.GET("", c.activity.GetActivities)
		activities.GET("/heatmap", c.activity.GetHeatmap)
		activities.GET("/streak", c.activity.GetStreak)
		activities.GET("/summary", c.activity.GetSummary)
		activities.GET("/range", c.activity.GetActivityCount)
		activities.GET("/:date", c.activity.GetActivityForDate)
	}
}

func (a *App) registerQuizResultRoutes(api *gin.RouterGroup, c *controllers) {
	results := api.Group("/quiz-results")
	{
		results.POST("", c.quizResult.SaveQuizResult)
		results.GET("", c.quizResult.GetQuizResults)
		results.GET("/:id", c.quizResult.GetQuizResult)
		results.DELETE("/:id", c.quizResult.DeleteQuizResult)
	}
}

func (a *App) registerAnalyticsRoutes(api *gin.RouterGroup, c *controllers) {
	analytics := api.Group("/analytics")
	{
		analytics.GET("/metrics", c.analytics.GetMetrics)
		analytics.GET("/subjects", c.analytics.GetSubjects)
		analytics.GET("/progress", c.analytics.GetProgress)
		analytics.GET("/weak-areas", c.analytics.GetWeakAreas)
		analytics.GET("/strong-areas", c.analytics.GetStrongAreas)
		analytics.GET("/difficulty", c.analytics.GetDifficulty)
		analytics.GET("/skill-radar", c.analytics.GetSkillRadar)
	}
}

func (a *App) registerRecommendationRoutes(api *gin.RouterGroup, c *controllers) {
	recs := api.Group("/recommendations")
	{
		recs.GET("", c.recommendation.GetInsights)
		recs.GET("/difficulty", c.recommendation.GetDifficultyAdjustment)
		recs.GET("/content", c.recommendation.GetContent)
	}
}

func (a *App) registerContentRoutes(api *gin.RouterGroup, c *controllers) {
	content := api.Group("/content")
	{
		content.GET("/search", c.content.Search)
		content.GET("/queue", c.content.GetQueueStatus)
		content.DELETE("/queue", c.content.ClearQueue)
	}
}
