package dto

import (
	"time"

	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/clustering"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/model"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/service"
)

type AuthorRequest struct {
	Kind string `json:"kind" binding:"required"`
	ID   string `json:"id" binding:"required,max=255"`
}

type AddCommentRequest struct {
	Stance string        `json:"stance" binding:"required"`
	Text   string        `json:"text" binding:"required,max=10000"`
	Author AuthorRequest `json:"author" binding:"required"`
}

type CommentResponse struct {
	ID        int64        `json:"id,string"`
	RoomID    int64        `json:"room_id,string"`
	Stance    model.Stance `json:"stance"`
	Text      string       `json:"text"`
	GroupID   *string      `json:"group_id"`
	Author    model.Author `json:"author"`
	Likes     []string     `json:"likes"`
	Dislikes  []string     `json:"dislikes"`
	CreatedAt time.Time    `json:"created_at"`
}

func ToCommentResponse(c model.Comment) CommentResponse {
	likes := c.Likes
	if likes == nil {
		likes = []string{}
	}
	dislikes := c.Dislikes
	if dislikes == nil {
		dislikes = []string{}
	}
	return CommentResponse{
		ID:        c.ID,
		RoomID:    c.RoomID,
		Stance:    c.Stance,
		Text:      c.Text,
		GroupID:   idString(c.GroupID),
		Author:    c.Author,
		Likes:     likes,
		Dislikes:  dislikes,
		CreatedAt: c.CreatedAt,
	}
}

type GroupResponse struct {
	ID             int64        `json:"id,string"`
	RoomID         int64        `json:"room_id,string"`
	Stance         model.Stance `json:"stance"`
	Label          string       `json:"label"`
	Title          string       `json:"title"`
	Description    string       `json:"description"`
	CommentIDs     []string     `json:"comment_ids"`
	CommentCount   int          `json:"comment_count"`
	CounterGroupID *string      `json:"counter_group_id"`
	DisplayOrder   float64      `json:"display_order"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

func ToGroupResponse(g model.Group) GroupResponse {
	ids := make([]string, 0, len(g.CommentIDs))
	for _, id := range g.CommentIDs {
		ids = append(ids, formatID(id))
	}
	return GroupResponse{
		ID:             g.ID,
		RoomID:         g.RoomID,
		Stance:         g.Stance,
		Label:          g.Label,
		Title:          g.Title,
		Description:    g.Description,
		CommentIDs:     ids,
		CommentCount:   g.CommentCount(),
		CounterGroupID: idString(g.CounterGroupID),
		DisplayOrder:   g.DisplayOrder,
		UpdatedAt:      g.UpdatedAt,
	}
}

func ToGroupResponses(groups []model.Group) []GroupResponse {
	out := make([]GroupResponse, 0, len(groups))
	for _, g := range groups {
		out = append(out, ToGroupResponse(g))
	}
	return out
}

type GroupListResponse struct {
	Groups []GroupResponse `json:"groups"`
}

type AddCommentResponse struct {
	Comment            CommentResponse `json:"comment"`
	Group              GroupResponse   `json:"group"`
	IsNewGroup         bool            `json:"is_new_group"`
	CounterLinkSkipped bool            `json:"counter_link_skipped"`
}

func ToAddCommentResponse(r service.IngestResult) AddCommentResponse {
	return AddCommentResponse{
		Comment:            ToCommentResponse(r.Comment),
		Group:              ToGroupResponse(r.Group),
		IsNewGroup:         r.IsNewGroup,
		CounterLinkSkipped: r.CounterLinkSkipped,
	}
}

type RelinkResponse struct {
	UpdatedCount int `json:"updated_count"`
	SkippedCount int `json:"skipped_count"`
}

func ToRelinkResponse(r clustering.RelinkResult) RelinkResponse {
	return RelinkResponse{UpdatedCount: r.UpdatedCount, SkippedCount: r.SkippedCount}
}

type RelinkEnqueuedResponse struct {
	Enqueued  bool   `json:"enqueued"`
	MessageID string `json:"message_id"`
}

type CounterAnalysisResponse struct {
	CounterGroup   *GroupResponse `json:"counter_group"`
	SuggestedGroup *GroupResponse `json:"suggested_group"`
	Confidence     float64        `json:"confidence"`
	Reasoning      string         `json:"reasoning"`
	IsStillValid   bool           `json:"is_still_valid"`
}

func ToCounterAnalysisResponse(a service.CounterAnalysis) CounterAnalysisResponse {
	resp := CounterAnalysisResponse{
		Confidence:   a.Confidence,
		Reasoning:    a.Reasoning,
		IsStillValid: a.IsStillValid,
	}
	if a.CounterGroup != nil {
		g := ToGroupResponse(*a.CounterGroup)
		resp.CounterGroup = &g
	}
	if a.SuggestedGroup != nil {
		g := ToGroupResponse(*a.SuggestedGroup)
		resp.SuggestedGroup = &g
	}
	return resp
}

type CounterStatusResponse struct {
	GroupID           int64        `json:"group_id,string"`
	Title             string       `json:"title"`
	Stance            model.Stance `json:"stance"`
	CommentCount      int          `json:"comment_count"`
	CounterGroupID    *string      `json:"counter_group_id"`
	CounterGroupTitle *string      `json:"counter_group_title"`
	DisplayOrder      float64      `json:"display_order"`
}

type CounterStatusListResponse struct {
	Groups []CounterStatusResponse `json:"groups"`
}

func ToCounterStatusList(rows []service.CounterStatus) CounterStatusListResponse {
	out := make([]CounterStatusResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, CounterStatusResponse{
			GroupID:           r.GroupID,
			Title:             r.Title,
			Stance:            r.Stance,
			CommentCount:      r.CommentCount,
			CounterGroupID:    idString(r.CounterGroupID),
			CounterGroupTitle: r.CounterGroupTitle,
			DisplayOrder:      r.DisplayOrder,
		})
	}
	return CounterStatusListResponse{Groups: out}
}

type OracleCallResponse struct {
	ID               int64             `json:"id,string"`
	Stage            model.OracleStage `json:"stage"`
	Model            string            `json:"model"`
	InputText        string            `json:"input_text"`
	OutputJSON       string            `json:"output_json,omitempty"`
	LatencyMs        int64             `json:"latency_ms"`
	PromptTokens     *int              `json:"prompt_tokens,omitempty"`
	CompletionTokens *int              `json:"completion_tokens,omitempty"`
	Error            *string           `json:"error,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
}

type OracleCallListResponse struct {
	Calls []OracleCallResponse `json:"calls"`
}

func ToOracleCallList(calls []model.OracleCall) OracleCallListResponse {
	out := make([]OracleCallResponse, 0, len(calls))
	for _, c := range calls {
		out = append(out, OracleCallResponse{
			ID:               c.ID,
			Stage:            c.Stage,
			Model:            c.Model,
			InputText:        c.InputText,
			OutputJSON:       c.OutputJSON,
			LatencyMs:        c.LatencyMs,
			PromptTokens:     c.PromptTokens,
			CompletionTokens: c.CompletionTokens,
			Error:            c.Error,
			CreatedAt:        c.CreatedAt,
		})
	}
	return OracleCallListResponse{Calls: out}
}
