package store

import (
	"context"

	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = model.ErrNotFound

// RoomStore defines the contract for room data access
type RoomStore interface {
	Create(ctx context.Context, room model.Room) (model.Room, error)
	GetByID(ctx context.Context, id int64) (model.Room, error)
}

// GroupStore defines the contract for opinion group data access.
// List methods return groups in creation order.
type GroupStore interface {
	Create(ctx context.Context, group model.Group) (model.Group, error)
	GetByID(ctx context.Context, id int64) (model.Group, error)
	ListByRoom(ctx context.Context, roomID int64) ([]model.Group, error)
	ListByRoomAndStance(ctx context.Context, roomID int64, stance model.Stance) ([]model.Group, error)
	AppendComment(ctx context.Context, groupID, commentID int64) (model.Group, error)
	RemoveComment(ctx context.Context, groupID, commentID int64) (model.Group, error)
	UpdateContent(ctx context.Context, id int64, label, title, description string) (model.Group, error)
	UpdateLink(ctx context.Context, id int64, counterGroupID *int64) error
	UpdateOrder(ctx context.Context, id int64, displayOrder float64) error
	Delete(ctx context.Context, id int64) error
	// MaxDisplayOrder reports false when the room has no group of that stance.
	MaxDisplayOrder(ctx context.Context, roomID int64, stance model.Stance) (float64, bool, error)
}

// CommentStore defines the contract for comment data access
type CommentStore interface {
	Create(ctx context.Context, comment model.Comment) (model.Comment, error)
	GetByID(ctx context.Context, id int64) (model.Comment, error)
	AssignToGroup(ctx context.Context, commentID, groupID int64) error
	Detach(ctx context.Context, commentID int64) error
	Delete(ctx context.Context, commentID int64) error
	ListByGroup(ctx context.Context, groupID int64) ([]model.Comment, error)
	ListByRoom(ctx context.Context, roomID int64) ([]model.Comment, error)
}

// OracleCallStore records every oracle request for later inspection
type OracleCallStore interface {
	Create(ctx context.Context, call model.OracleCall) (model.OracleCall, error)
	ListByGroup(ctx context.Context, groupID int64) ([]model.OracleCall, error)
}

// Provider exposes every store bound to the same connection or transaction.
type Provider interface {
	Rooms() RoomStore
	Groups() GroupStore
	Comments() CommentStore
	OracleCalls() OracleCallStore
}

// TxRunner runs functions within a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(stores Provider) error) error
}
