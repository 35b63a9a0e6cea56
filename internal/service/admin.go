package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/common"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/common/logger"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/clustering"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/lock"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/model"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/search"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/store"
)

// AdminService covers the lifecycle hooks owned outside the clustering core:
// seeding rooms and groups, and removing groups or comments without breaking
// link symmetry or single membership.
type AdminService interface {
	CreateRoom(ctx context.Context, topic string) (model.Room, error)
	CreateGroup(ctx context.Context, roomID int64, stance model.Stance, label string) (model.Group, error)
	DeleteGroup(ctx context.Context, groupID int64) error
	RemoveComment(ctx context.Context, commentID int64) error
}

type adminService struct {
	debate *debateService
	tx     store.TxRunner
}

func NewAdminService(stores store.Provider, tx store.TxRunner, engine *clustering.Engine, locker lock.Locker, searcher *search.Service) AdminService {
	return &adminService{
		debate: &debateService{
			stores: stores,
			engine: engine,
			locker: locker,
			search: searcher,
		},
		tx: tx,
	}
}

func (s *adminService) CreateRoom(ctx context.Context, topic string) (model.Room, error) {
	topic = common.PlainText(topic)
	if topic == "" {
		return model.Room{}, fmt.Errorf("%w: topic is required", model.ErrInvalidInput)
	}

	slug, err := common.Slugify(topic, "room")
	if err != nil {
		return model.Room{}, fmt.Errorf("generating slug: %w", err)
	}

	room, err := s.debate.stores.Rooms().Create(ctx, model.Room{Topic: topic, Slug: slug})
	if err != nil {
		return model.Room{}, fmt.Errorf("creating room: %w", err)
	}

	slog.InfoContext(ctx, "room created", "room_id", room.ID, "slug", room.Slug)
	return room, nil
}

// CreateGroup adds an empty group at the end of its stance. It stays hidden
// from ListGroups until a comment lands in it.
func (s *adminService) CreateGroup(ctx context.Context, roomID int64, stance model.Stance, label string) (model.Group, error) {
	if !stance.Valid() {
		return model.Group{}, fmt.Errorf("%w: unknown stance %q", model.ErrInvalidInput, stance)
	}
	label = common.PlainText(label)
	if label == "" {
		return model.Group{}, fmt.Errorf("%w: label is required", model.ErrInvalidInput)
	}
	if _, err := s.debate.stores.Rooms().GetByID(ctx, roomID); err != nil {
		return model.Group{}, fmt.Errorf("loading room %d: %w", roomID, err)
	}

	var group model.Group
	err := s.debate.withRoomLock(ctx, roomID, func(ctx context.Context) error {
		return s.tx.WithTx(ctx, func(stores store.Provider) error {
			maxOrder, found, err := stores.Groups().MaxDisplayOrder(ctx, roomID, stance)
			if err != nil {
				return fmt.Errorf("reading display order: %w", err)
			}
			order := 0.0
			if found {
				order = maxOrder + 1
			}
			group, err = stores.Groups().Create(ctx, model.Group{
				RoomID:       roomID,
				Stance:       stance,
				Label:        label,
				CommentIDs:   []int64{},
				DisplayOrder: order,
			})
			if err != nil {
				return fmt.Errorf("creating group: %w", err)
			}
			return nil
		})
	})
	if err != nil {
		return model.Group{}, err
	}

	slog.InfoContext(ctx, "empty group created", "room_id", roomID, "group_id", group.ID, "stance", stance)
	return group, nil
}

// DeleteGroup clears the partner's reverse link, detaches member comments and
// deletes the group in one transaction.
func (s *adminService) DeleteGroup(ctx context.Context, groupID int64) error {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		GroupID:   logger.Ptr(groupID),
		Component: "opinion.service.admin",
	})

	group, err := s.debate.stores.Groups().GetByID(ctx, groupID)
	if err != nil {
		return fmt.Errorf("loading group %d: %w", groupID, err)
	}

	err = s.debate.withRoomLock(ctx, group.RoomID, func(ctx context.Context) error {
		return s.tx.WithTx(ctx, func(stores store.Provider) error {
			return deleteGroup(ctx, stores, groupID)
		})
	})
	if err != nil {
		return err
	}

	s.debate.search.DeleteGroup(groupID)
	slog.InfoContext(ctx, "group deleted", "room_id", group.RoomID)
	return nil
}

// RemoveComment detaches a comment from its group and regenerates that group.
// A group left without comments is deleted.
func (s *adminService) RemoveComment(ctx context.Context, commentID int64) error {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		CommentID: logger.Ptr(commentID),
		Component: "opinion.service.admin",
	})

	comment, err := s.debate.stores.Comments().GetByID(ctx, commentID)
	if err != nil {
		return fmt.Errorf("loading comment %d: %w", commentID, err)
	}
	if comment.GroupID == nil {
		return nil
	}
	groupID := *comment.GroupID

	var remaining model.Group
	err = s.debate.withRoomLock(ctx, comment.RoomID, func(ctx context.Context) error {
		err := s.tx.WithTx(ctx, func(stores store.Provider) error {
			var err error
			remaining, err = stores.Groups().RemoveComment(ctx, groupID, commentID)
			if err != nil {
				return fmt.Errorf("removing comment from group: %w", err)
			}
			if err := stores.Comments().Detach(ctx, commentID); err != nil {
				return fmt.Errorf("detaching comment: %w", err)
			}
			if remaining.IsEmpty() {
				return deleteGroup(ctx, stores, groupID)
			}
			return nil
		})
		if err != nil || remaining.IsEmpty() {
			return err
		}

		updated, err := s.debate.engine.Regenerate(ctx, groupID, false)
		if err != nil {
			return fmt.Errorf("regenerating group %d: %w", groupID, err)
		}
		remaining = updated
		return nil
	})
	if err != nil {
		return err
	}

	if remaining.IsEmpty() {
		s.debate.search.DeleteGroup(groupID)
	} else {
		s.debate.search.IndexGroup(remaining)
	}
	slog.InfoContext(ctx, "comment removed from group", "group_id", groupID, "group_deleted", remaining.IsEmpty())
	return nil
}

func deleteGroup(ctx context.Context, stores store.Provider, groupID int64) error {
	groups := stores.Groups()
	group, err := groups.GetByID(ctx, groupID)
	if err != nil {
		return fmt.Errorf("loading group %d: %w", groupID, err)
	}

	if group.CounterGroupID != nil {
		partner, err := groups.GetByID(ctx, *group.CounterGroupID)
		switch {
		case errors.Is(err, store.ErrNotFound):
		case err != nil:
			return fmt.Errorf("loading partner %d: %w", *group.CounterGroupID, err)
		case partner.LinkedTo(groupID):
			if err := groups.UpdateLink(ctx, partner.ID, nil); err != nil {
				return fmt.Errorf("releasing partner %d: %w", partner.ID, err)
			}
		}
	}

	comments, err := stores.Comments().ListByGroup(ctx, groupID)
	if err != nil {
		return fmt.Errorf("listing member comments: %w", err)
	}
	for _, c := range comments {
		if err := stores.Comments().Detach(ctx, c.ID); err != nil {
			return fmt.Errorf("detaching comment %d: %w", c.ID, err)
		}
	}

	if err := groups.Delete(ctx, groupID); err != nil {
		return fmt.Errorf("deleting group: %w", err)
	}
	return nil
}
