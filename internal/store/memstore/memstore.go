// Package memstore keeps rooms, groups, comments and oracle calls in process
// memory. It backs tests and STORE_DRIVER=memory.
package memstore

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/common/id"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/model"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/store"
)

type state struct {
	rooms    map[int64]model.Room
	groups   map[int64]model.Group
	comments map[int64]model.Comment
	calls    map[int64]model.OracleCall
}

// Store implements store.Provider and store.TxRunner.
// Thread-safety: every method is safe for concurrent use. Transactions are
// serialized with each other; writes made outside a transaction are never
// undone by its rollback.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	data state
	now  func() time.Time
}

func New() *Store {
	return &Store{
		data: state{
			rooms:    map[int64]model.Room{},
			groups:   map[int64]model.Group{},
			comments: map[int64]model.Comment{},
			calls:    map[int64]model.OracleCall{},
		},
		now: time.Now,
	}
}

func (s *Store) Rooms() store.RoomStore             { return roomStore{s: s} }
func (s *Store) Groups() store.GroupStore           { return groupStore{s: s} }
func (s *Store) Comments() store.CommentStore       { return commentStore{s: s} }
func (s *Store) OracleCalls() store.OracleCallStore { return oracleCallStore{s: s} }

// WithTx hands fn stores that record the prior value of every key they
// write. When fn fails only those keys are put back.
func (s *Store) WithTx(ctx context.Context, fn func(stores store.Provider) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	tx := txProvider{s: s, undo: newUndoLog()}
	if err := fn(tx); err != nil {
		s.mu.Lock()
		tx.undo.restore(&s.data)
		s.mu.Unlock()
		return err
	}
	return nil
}

type txProvider struct {
	s    *Store
	undo *undoLog
}

func (p txProvider) Rooms() store.RoomStore       { return roomStore{s: p.s, undo: p.undo} }
func (p txProvider) Groups() store.GroupStore     { return groupStore{s: p.s, undo: p.undo} }
func (p txProvider) Comments() store.CommentStore { return commentStore{s: p.s, undo: p.undo} }
func (p txProvider) OracleCalls() store.OracleCallStore {
	return oracleCallStore{s: p.s, undo: p.undo}
}

type prior[T any] struct {
	value   T
	present bool
}

// undoLog keeps the first-seen value of each key a transaction touched.
// Stored values are replaced, never mutated in place, so keeping the old
// value is enough.
type undoLog struct {
	rooms    map[int64]prior[model.Room]
	groups   map[int64]prior[model.Group]
	comments map[int64]prior[model.Comment]
	calls    map[int64]prior[model.OracleCall]
}

func newUndoLog() *undoLog {
	return &undoLog{
		rooms:    map[int64]prior[model.Room]{},
		groups:   map[int64]prior[model.Group]{},
		comments: map[int64]prior[model.Comment]{},
		calls:    map[int64]prior[model.OracleCall]{},
	}
}

// remember must be called with Store.mu held, before the write.
func remember[T any](log map[int64]prior[T], data map[int64]T, key int64) {
	if _, seen := log[key]; seen {
		return
	}
	v, ok := data[key]
	log[key] = prior[T]{value: v, present: ok}
}

func rollback[T any](log map[int64]prior[T], data map[int64]T) {
	for key, p := range log {
		if p.present {
			data[key] = p.value
		} else {
			delete(data, key)
		}
	}
}

func (u *undoLog) room(data state, key int64) {
	if u != nil {
		remember(u.rooms, data.rooms, key)
	}
}

func (u *undoLog) group(data state, key int64) {
	if u != nil {
		remember(u.groups, data.groups, key)
	}
}

func (u *undoLog) comment(data state, key int64) {
	if u != nil {
		remember(u.comments, data.comments, key)
	}
}

func (u *undoLog) call(data state, key int64) {
	if u != nil {
		remember(u.calls, data.calls, key)
	}
}

func (u *undoLog) restore(data *state) {
	rollback(u.rooms, data.rooms)
	rollback(u.groups, data.groups)
	rollback(u.comments, data.comments)
	rollback(u.calls, data.calls)
}

func cloneGroup(g model.Group) model.Group {
	g.CommentIDs = slices.Clone(g.CommentIDs)
	if g.CommentIDs == nil {
		g.CommentIDs = []int64{}
	}
	if g.CounterGroupID != nil {
		v := *g.CounterGroupID
		g.CounterGroupID = &v
	}
	return g
}

func cloneComment(c model.Comment) model.Comment {
	c.Likes = slices.Clone(c.Likes)
	c.Dislikes = slices.Clone(c.Dislikes)
	if c.GroupID != nil {
		v := *c.GroupID
		c.GroupID = &v
	}
	return c
}

type roomStore struct {
	s    *Store
	undo *undoLog
}

func (r roomStore) Create(_ context.Context, room model.Room) (model.Room, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if room.ID == 0 {
		room.ID = id.New()
	}
	room.CreatedAt = r.s.now()
	r.undo.room(r.s.data, room.ID)
	r.s.data.rooms[room.ID] = room
	return room, nil
}

func (r roomStore) GetByID(_ context.Context, roomID int64) (model.Room, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	room, ok := r.s.data.rooms[roomID]
	if !ok {
		return model.Room{}, store.ErrNotFound
	}
	return room, nil
}

type groupStore struct {
	s    *Store
	undo *undoLog
}

func (g groupStore) Create(_ context.Context, group model.Group) (model.Group, error) {
	g.s.mu.Lock()
	defer g.s.mu.Unlock()

	if group.ID == 0 {
		group.ID = id.New()
	}
	now := g.s.now()
	group.CreatedAt = now
	group.UpdatedAt = now
	group = cloneGroup(group)
	g.undo.group(g.s.data, group.ID)
	g.s.data.groups[group.ID] = group
	return cloneGroup(group), nil
}

func (g groupStore) GetByID(_ context.Context, groupID int64) (model.Group, error) {
	g.s.mu.RLock()
	defer g.s.mu.RUnlock()

	group, ok := g.s.data.groups[groupID]
	if !ok {
		return model.Group{}, store.ErrNotFound
	}
	return cloneGroup(group), nil
}

func (g groupStore) ListByRoom(_ context.Context, roomID int64) ([]model.Group, error) {
	return g.list(func(group model.Group) bool { return group.RoomID == roomID }), nil
}

func (g groupStore) ListByRoomAndStance(_ context.Context, roomID int64, stance model.Stance) ([]model.Group, error) {
	return g.list(func(group model.Group) bool {
		return group.RoomID == roomID && group.Stance == stance
	}), nil
}

func (g groupStore) list(keep func(model.Group) bool) []model.Group {
	g.s.mu.RLock()
	defer g.s.mu.RUnlock()

	var out []model.Group
	for _, group := range g.s.data.groups {
		if keep(group) {
			out = append(out, cloneGroup(group))
		}
	}
	slices.SortFunc(out, func(a, b model.Group) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

func (g groupStore) mutate(groupID int64, fn func(*model.Group)) (model.Group, error) {
	g.s.mu.Lock()
	defer g.s.mu.Unlock()

	group, ok := g.s.data.groups[groupID]
	if !ok {
		return model.Group{}, store.ErrNotFound
	}
	group = cloneGroup(group)
	fn(&group)
	group.UpdatedAt = g.s.now()
	g.undo.group(g.s.data, groupID)
	g.s.data.groups[groupID] = group
	return cloneGroup(group), nil
}

func (g groupStore) AppendComment(_ context.Context, groupID, commentID int64) (model.Group, error) {
	return g.mutate(groupID, func(group *model.Group) {
		if !slices.Contains(group.CommentIDs, commentID) {
			group.CommentIDs = append(group.CommentIDs, commentID)
		}
	})
}

func (g groupStore) RemoveComment(_ context.Context, groupID, commentID int64) (model.Group, error) {
	return g.mutate(groupID, func(group *model.Group) {
		group.CommentIDs = slices.DeleteFunc(group.CommentIDs, func(v int64) bool { return v == commentID })
	})
}

func (g groupStore) UpdateContent(_ context.Context, groupID int64, label, title, description string) (model.Group, error) {
	return g.mutate(groupID, func(group *model.Group) {
		group.Label = label
		group.Title = title
		group.Description = description
	})
}

func (g groupStore) UpdateLink(_ context.Context, groupID int64, counterGroupID *int64) error {
	_, err := g.mutate(groupID, func(group *model.Group) {
		if counterGroupID == nil {
			group.CounterGroupID = nil
			return
		}
		v := *counterGroupID
		group.CounterGroupID = &v
	})
	return err
}

func (g groupStore) UpdateOrder(_ context.Context, groupID int64, displayOrder float64) error {
	_, err := g.mutate(groupID, func(group *model.Group) {
		group.DisplayOrder = displayOrder
	})
	return err
}

// Delete mirrors the foreign keys of the Postgres schema: links and comment
// memberships naming the group are set to null.
func (g groupStore) Delete(_ context.Context, groupID int64) error {
	g.s.mu.Lock()
	defer g.s.mu.Unlock()

	if _, ok := g.s.data.groups[groupID]; !ok {
		return store.ErrNotFound
	}
	g.undo.group(g.s.data, groupID)
	delete(g.s.data.groups, groupID)

	for k, other := range g.s.data.groups {
		if other.LinkedTo(groupID) {
			g.undo.group(g.s.data, k)
			other.CounterGroupID = nil
			g.s.data.groups[k] = other
		}
	}
	for k, c := range g.s.data.comments {
		if c.GroupID != nil && *c.GroupID == groupID {
			g.undo.comment(g.s.data, k)
			c.GroupID = nil
			g.s.data.comments[k] = c
		}
	}
	return nil
}

func (g groupStore) MaxDisplayOrder(_ context.Context, roomID int64, stance model.Stance) (float64, bool, error) {
	g.s.mu.RLock()
	defer g.s.mu.RUnlock()

	var (
		maxOrder float64
		found    bool
	)
	for _, group := range g.s.data.groups {
		if group.RoomID != roomID || group.Stance != stance {
			continue
		}
		if !found || group.DisplayOrder > maxOrder {
			maxOrder = group.DisplayOrder
			found = true
		}
	}
	return maxOrder, found, nil
}

type commentStore struct {
	s    *Store
	undo *undoLog
}

func (c commentStore) Create(_ context.Context, comment model.Comment) (model.Comment, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	if comment.ID == 0 {
		comment.ID = id.New()
	}
	now := c.s.now()
	comment.CreatedAt = now
	comment.UpdatedAt = now
	if comment.Likes == nil {
		comment.Likes = []string{}
	}
	if comment.Dislikes == nil {
		comment.Dislikes = []string{}
	}
	c.undo.comment(c.s.data, comment.ID)
	c.s.data.comments[comment.ID] = cloneComment(comment)
	return cloneComment(comment), nil
}

func (c commentStore) GetByID(_ context.Context, commentID int64) (model.Comment, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()

	comment, ok := c.s.data.comments[commentID]
	if !ok {
		return model.Comment{}, store.ErrNotFound
	}
	return cloneComment(comment), nil
}

func (c commentStore) AssignToGroup(_ context.Context, commentID, groupID int64) error {
	return c.setGroup(commentID, &groupID)
}

func (c commentStore) Detach(_ context.Context, commentID int64) error {
	return c.setGroup(commentID, nil)
}

func (c commentStore) setGroup(commentID int64, groupID *int64) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	comment, ok := c.s.data.comments[commentID]
	if !ok {
		return store.ErrNotFound
	}
	comment.GroupID = groupID
	comment.UpdatedAt = c.s.now()
	c.undo.comment(c.s.data, commentID)
	c.s.data.comments[commentID] = comment
	return nil
}

func (c commentStore) Delete(_ context.Context, commentID int64) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	if _, ok := c.s.data.comments[commentID]; !ok {
		return store.ErrNotFound
	}
	c.undo.comment(c.s.data, commentID)
	delete(c.s.data.comments, commentID)
	return nil
}

func (c commentStore) ListByGroup(_ context.Context, groupID int64) ([]model.Comment, error) {
	return c.list(func(comment model.Comment) bool {
		return comment.GroupID != nil && *comment.GroupID == groupID
	}), nil
}

func (c commentStore) ListByRoom(_ context.Context, roomID int64) ([]model.Comment, error) {
	return c.list(func(comment model.Comment) bool { return comment.RoomID == roomID }), nil
}

func (c commentStore) list(keep func(model.Comment) bool) []model.Comment {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()

	var out []model.Comment
	for _, comment := range c.s.data.comments {
		if keep(comment) {
			out = append(out, cloneComment(comment))
		}
	}
	slices.SortFunc(out, func(a, b model.Comment) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

type oracleCallStore struct {
	s    *Store
	undo *undoLog
}

func (o oracleCallStore) Create(_ context.Context, call model.OracleCall) (model.OracleCall, error) {
	o.s.mu.Lock()
	defer o.s.mu.Unlock()

	if call.ID == 0 {
		call.ID = id.New()
	}
	call.CreatedAt = o.s.now()
	o.undo.call(o.s.data, call.ID)
	o.s.data.calls[call.ID] = call
	return call, nil
}

func (o oracleCallStore) ListByGroup(_ context.Context, groupID int64) ([]model.OracleCall, error) {
	o.s.mu.RLock()
	defer o.s.mu.RUnlock()

	var out []model.OracleCall
	for _, call := range o.s.data.calls {
		if call.GroupID != nil && *call.GroupID == groupID {
			out = append(out, call)
		}
	}
	slices.SortFunc(out, func(a, b model.OracleCall) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}
