package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/common/logger"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/http/dto"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/model"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/service"
)

type DebateHandler struct {
	debateService service.DebateService
}

func NewDebateHandler(debateService service.DebateService) *DebateHandler {
	return &DebateHandler{debateService: debateService}
}

func (h *DebateHandler) AddComment(c *gin.Context) {
	roomID, ok := paramID(c, "roomId")
	if !ok {
		return
	}
	ctx := logger.WithLogFields(c.Request.Context(), logger.LogFields{
		RoomID:    logger.Ptr(roomID),
		Component: "opinion.http.comments",
	})
	c.Request = c.Request.WithContext(ctx)

	var req dto.AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	stance, err := model.ParseStance(req.Stance)
	if err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.debateService.AddComment(ctx, service.AddCommentInput{
		RoomID: roomID,
		Stance: stance,
		Text:   req.Text,
		Author: model.Author{Kind: model.AuthorKind(req.Author.Kind), ID: req.Author.ID},
	})
	if err != nil {
		writeError(c, err, "failed to add comment")
		return
	}

	c.JSON(http.StatusCreated, dto.ToAddCommentResponse(result))
}

func (h *DebateHandler) ListGroups(c *gin.Context) {
	roomID, ok := paramID(c, "roomId")
	if !ok {
		return
	}

	var stance *model.Stance
	if raw := c.Query("stance"); raw != "" {
		s, err := model.ParseStance(raw)
		if err != nil {
			badRequest(c, err)
			return
		}
		stance = &s
	}

	groups, err := h.debateService.ListGroups(c.Request.Context(), roomID, stance)
	if err != nil {
		writeError(c, err, "failed to list groups")
		return
	}

	c.JSON(http.StatusOK, dto.GroupListResponse{Groups: dto.ToGroupResponses(groups)})
}

func (h *DebateHandler) SearchGroups(c *gin.Context) {
	roomID, ok := paramID(c, "roomId")
	if !ok {
		return
	}

	groups, err := h.debateService.SearchGroups(c.Request.Context(), roomID, c.Query("q"))
	if err != nil {
		writeError(c, err, "failed to search groups")
		return
	}

	c.JSON(http.StatusOK, dto.GroupListResponse{Groups: dto.ToGroupResponses(groups)})
}

// Relink runs the room relink inline, or hands it to the worker when
// ?async=true.
func (h *DebateHandler) Relink(c *gin.Context) {
	roomID, ok := paramID(c, "roomId")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	async, _ := strconv.ParseBool(c.DefaultQuery("async", "false"))
	if async {
		messageID, err := h.debateService.EnqueueRelink(ctx, roomID)
		if err != nil {
			writeError(c, err, "failed to enqueue relink")
			return
		}
		c.JSON(http.StatusAccepted, dto.RelinkEnqueuedResponse{Enqueued: true, MessageID: messageID})
		return
	}

	result, err := h.debateService.RelinkRoom(ctx, roomID)
	if err != nil {
		writeError(c, err, "failed to relink room")
		return
	}

	c.JSON(http.StatusOK, dto.ToRelinkResponse(result))
}

func (h *DebateHandler) CounterStatus(c *gin.Context) {
	roomID, ok := paramID(c, "roomId")
	if !ok {
		return
	}

	rows, err := h.debateService.DebugCounterStatus(c.Request.Context(), roomID)
	if err != nil {
		writeError(c, err, "failed to load counter status")
		return
	}

	c.JSON(http.StatusOK, dto.ToCounterStatusList(rows))
}

func (h *DebateHandler) RegenerateGroup(c *gin.Context) {
	groupID, ok := paramID(c, "groupId")
	if !ok {
		return
	}

	group, err := h.debateService.RegenerateGroup(c.Request.Context(), groupID)
	if err != nil {
		writeError(c, err, "failed to regenerate group")
		return
	}

	c.JSON(http.StatusOK, dto.ToGroupResponse(group))
}

func (h *DebateHandler) CounterAnalysis(c *gin.Context) {
	groupID, ok := paramID(c, "groupId")
	if !ok {
		return
	}

	analysis, err := h.debateService.GetCounterAnalysis(c.Request.Context(), groupID)
	if err != nil {
		writeError(c, err, "failed to analyze counter link")
		return
	}

	c.JSON(http.StatusOK, dto.ToCounterAnalysisResponse(analysis))
}

func (h *DebateHandler) OracleCalls(c *gin.Context) {
	groupID, ok := paramID(c, "groupId")
	if !ok {
		return
	}

	calls, err := h.debateService.ListOracleCalls(c.Request.Context(), groupID)
	if err != nil {
		writeError(c, err, "failed to list oracle calls")
		return
	}

	c.JSON(http.StatusOK, dto.ToOracleCallList(calls))
}
