package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/http/dto"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/model"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/service"
)

type AdminHandler struct {
	adminService service.AdminService
}

func NewAdminHandler(adminService service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

func (h *AdminHandler) CreateRoom(c *gin.Context) {
	var req dto.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	room, err := h.adminService.CreateRoom(c.Request.Context(), req.Topic)
	if err != nil {
		writeError(c, err, "failed to create room")
		return
	}

	c.JSON(http.StatusCreated, dto.ToRoomResponse(room))
}

func (h *AdminHandler) CreateGroup(c *gin.Context) {
	roomID, ok := paramID(c, "roomId")
	if !ok {
		return
	}

	var req dto.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	stance, err := model.ParseStance(req.Stance)
	if err != nil {
		badRequest(c, err)
		return
	}

	group, err := h.adminService.CreateGroup(c.Request.Context(), roomID, stance, req.Label)
	if err != nil {
		writeError(c, err, "failed to create group")
		return
	}

	c.JSON(http.StatusCreated, dto.ToGroupResponse(group))
}

func (h *AdminHandler) DeleteGroup(c *gin.Context) {
	groupID, ok := paramID(c, "groupId")
	if !ok {
		return
	}

	if err := h.adminService.DeleteGroup(c.Request.Context(), groupID); err != nil {
		writeError(c, err, "failed to delete group")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) RemoveComment(c *gin.Context) {
	commentID, ok := paramID(c, "commentId")
	if !ok {
		return
	}

	if err := h.adminService.RemoveComment(c.Request.Context(), commentID); err != nil {
		writeError(c, err, "failed to remove comment")
		return
	}

	c.Status(http.StatusNoContent)
}
