package router

import (
	"github.com/gin-gonic/gin"

	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/http/handler"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/http/middleware"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/service"
)

type RouterConfig struct {
	AdminAPIKey string
}

func SetupRoutes(router *gin.Engine, services *service.Services, cfg RouterConfig) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		debateHandler := handler.NewDebateHandler(services.Debate())
		RoomRouter(v1.Group("/rooms/:roomId"), debateHandler)
		GroupRouter(v1.Group("/groups/:groupId"), debateHandler)
	}

	admin := router.Group("/admin", middleware.RequireAdminAPIKey(cfg.AdminAPIKey))
	AdminRouter(admin, handler.NewAdminHandler(services.Admin()))
}
