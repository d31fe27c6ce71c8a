package server

import (
	"github.com/labstack/echo/v4"

	"github.com/keno-github/together-forward-relationship-planner-sub003/internal/handlers"
	"github.com/keno-github/together-forward-relationship-planner-sub003/internal/telemetry"
)

func registerRoutes(
	e *echo.Echo,
	authHandler *handlers.AuthHandler,
	dreamHandler *handlers.DreamHandler,
	milestoneHandler *handlers.MilestoneHandler,
	taskHandler *handlers.TaskHandler,
	expenseHandler *handlers.ExpenseHandler,
	insightHandler *handlers.InsightHandler,
	notificationHandler *handlers.NotificationHandler,
	authMiddleware echo.MiddlewareFunc,
	authRateLimiter echo.MiddlewareFunc,
) {
	e.GET("/health", handlers.Health)
	e.GET("/metrics", telemetry.Handler())

	api := e.Group("/api/v1")
	authGroup := api.Group("/auth", authRateLimiter)

	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/refresh", authHandler.Refresh)
	authGroup.POST("/logout", authHandler.Logout)
	authGroup.GET("/me", authHandler.Me, authMiddleware)

	dreams := api.Group("/dreams", authMiddleware)
	dreams.GET("", dreamHandler.List)
	dreams.POST("", dreamHandler.Create)
	dreams.GET("/:id", dreamHandler.Get)
	dreams.PUT("/:id", dreamHandler.Update)
	dreams.DELETE("/:id", dreamHandler.Delete)
	dreams.PATCH("/:id/complete", dreamHandler.Complete)
	dreams.GET("/:id/metrics", insightHandler.Metrics)
	dreams.GET("/:id/alerts", insightHandler.Alerts)
	dreams.GET("/:id/export/json", dreamHandler.ExportJSON)
	dreams.GET("/:id/export/csv", dreamHandler.ExportCSV)
	dreams.POST("/:dreamId/milestones", milestoneHandler.Create)

	milestones := api.Group("/milestones", authMiddleware)
	milestones.PATCH("/:id/toggle", milestoneHandler.Toggle)
	milestones.PATCH("/:id/phases/:index/toggle", milestoneHandler.TogglePhase)
	milestones.DELETE("/:id", milestoneHandler.Delete)
	milestones.POST("/:milestoneId/tasks", taskHandler.Create)
	milestones.POST("/:milestoneId/expenses", expenseHandler.Create)

	tasks := api.Group("/tasks", authMiddleware)
	tasks.PATCH("/:id/toggle", taskHandler.Toggle)
	tasks.PATCH("/:id/assign", taskHandler.Assign)
	tasks.DELETE("/:id", taskHandler.Delete)

	expenses := api.Group("/expenses", authMiddleware)
	expenses.PATCH("/:id/status", expenseHandler.UpdateStatus)
	expenses.DELETE("/:id", expenseHandler.Delete)

	insightsGroup := api.Group("/insights", authMiddleware)
	insightsGroup.GET("/velocity", insightHandler.Velocity)

	notificationsGroup := api.Group("/notifications", authMiddleware)
	notificationsGroup.GET("/stream", notificationHandler.Stream)
}
