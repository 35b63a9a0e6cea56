// Package search finds opinion groups by free text. Meilisearch serves the
// query when it is configured and healthy; otherwise groups are matched by
// substring straight from the store.
package search

import (
	"strconv"

	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/model"
)

const defaultLimit = 20

// GroupRecord is the indexed form of a group. IDs are strings so that
// snowflake values survive JSON number handling on the index side.
type GroupRecord struct {
	ID          string `json:"id"`
	RoomID      string `json:"roomId"`
	Stance      string `json:"stance"`
	Label       string `json:"label"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

func RecordFromGroup(g model.Group) GroupRecord {
	return GroupRecord{
		ID:          strconv.FormatInt(g.ID, 10),
		RoomID:      strconv.FormatInt(g.RoomID, 10),
		Stance:      string(g.Stance),
		Label:       g.Label,
		Title:       g.Title,
		Description: g.Description,
	}
}

// Query restricts a search to one room.
type Query struct {
	RoomID int64
	Text   string
	Limit  int
}

func (q Query) limit() int {
	if q.Limit <= 0 {
		return defaultLimit
	}
	return q.Limit
}

// Index is a remote full-text index of groups.
type Index interface {
	Healthy() bool
	SearchGroups(q Query) ([]int64, error)
	IndexGroup(rec GroupRecord) error
	DeleteGroup(id int64) error
}
