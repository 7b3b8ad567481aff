// Package api 提供dag-engine的HTTP API服务
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/LENAX/dag-engine/pkg/api/handler"
	"github.com/LENAX/dag-engine/pkg/api/middleware"
	"github.com/LENAX/dag-engine/pkg/config"
	"github.com/LENAX/dag-engine/pkg/core/engine"
)

// SetupRouter 设置路由
func SetupRouter(eng *engine.Engine, registry *config.HandlerRegistry, version string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// 全局中间件
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	graphHandler := handler.NewGraphHandler(eng, registry)
	healthHandler := handler.NewHealthHandler(version)
	eventsHandler := handler.NewEventsHandler(eng.EventBus())

	// 健康检查路由（不带前缀）
	router.GET("/health", healthHandler.Health)

	// WebSocket事件流
	router.GET("/ws/events", eventsHandler.Stream)

	// API v1 路由组
	v1 := router.Group("/api/v1")
	{
		graphs := v1.Group("/graphs")
		{
			graphs.GET("", graphHandler.List)
			graphs.POST("/run", graphHandler.Run)
		}
		runs := v1.Group("/runs")
		{
			runs.GET("", graphHandler.ListRuns)
			runs.GET("/:id", graphHandler.GetRun)
		}
	}

	return router
}
