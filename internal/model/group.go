package model

import (
	"cmp"
	"slices"
	"time"
)

// Group is one cluster of same-stance comments in a room.
//
// CounterGroupID, when set, names a group of the opposite stance in the same
// room whose CounterGroupID names this group back.
type Group struct {
	ID             int64     `json:"id"`
	RoomID         int64     `json:"room_id"`
	Stance         Stance    `json:"stance"`
	Label          string    `json:"label"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	CommentIDs     []int64   `json:"comment_ids"`
	CounterGroupID *int64    `json:"counter_group_id,omitempty"`
	DisplayOrder   float64   `json:"display_order"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (g Group) CommentCount() int {
	return len(g.CommentIDs)
}

func (g Group) IsEmpty() bool {
	return len(g.CommentIDs) == 0
}

func (g Group) HasComment(commentID int64) bool {
	return slices.Contains(g.CommentIDs, commentID)
}

// LinkedTo reports whether the group's counter link currently names id.
func (g Group) LinkedTo(id int64) bool {
	return g.CounterGroupID != nil && *g.CounterGroupID == id
}

// SortGroups orders groups by display order, breaking ties by id, which is
// time ordered and therefore follows insertion order.
func SortGroups(groups []Group) {
	slices.SortStableFunc(groups, func(a, b Group) int {
		if c := cmp.Compare(a.DisplayOrder, b.DisplayOrder); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
