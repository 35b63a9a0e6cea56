package router

import (
	"github.com/gin-gonic/gin"

	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/http/handler"
)

func RoomRouter(router *gin.RouterGroup, h *handler.DebateHandler) {
	router.POST("/comments", h.AddComment)
	router.GET("/groups", h.ListGroups)
	router.GET("/groups/search", h.SearchGroups)
	router.POST("/relink", h.Relink)
	router.GET("/counter-status", h.CounterStatus)
}

func GroupRouter(router *gin.RouterGroup, h *handler.DebateHandler) {
	router.POST("/regenerate", h.RegenerateGroup)
	router.GET("/counter-analysis", h.CounterAnalysis)
	router.GET("/oracle-calls", h.OracleCalls)
}
