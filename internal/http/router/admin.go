package router

import (
	"github.com/gin-gonic/gin"

	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/http/handler"
)

func AdminRouter(router *gin.RouterGroup, h *handler.AdminHandler) {
	router.POST("/rooms", h.CreateRoom)
	router.POST("/rooms/:roomId/groups", h.CreateGroup)
	router.DELETE("/groups/:groupId", h.DeleteGroup)
	router.DELETE("/comments/:commentId", h.RemoveComment)
}
