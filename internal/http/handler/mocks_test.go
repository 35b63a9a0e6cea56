package handler_test

import (
	"context"

	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/clustering"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/model"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/service"
)

type mockDebateService struct {
	addCommentFn      func(ctx context.Context, in service.AddCommentInput) (service.IngestResult, error)
	listGroupsFn      func(ctx context.Context, roomID int64, stance *model.Stance) ([]model.Group, error)
	regenerateGroupFn func(ctx context.Context, groupID int64) (model.Group, error)
	relinkRoomFn      func(ctx context.Context, roomID int64) (clustering.RelinkResult, error)
	enqueueRelinkFn   func(ctx context.Context, roomID int64) (string, error)
	counterAnalysisFn func(ctx context.Context, groupID int64) (service.CounterAnalysis, error)
	counterStatusFn   func(ctx context.Context, roomID int64) ([]service.CounterStatus, error)
	searchGroupsFn    func(ctx context.Context, roomID int64, query string) ([]model.Group, error)
	listOracleCallsFn func(ctx context.Context, groupID int64) ([]model.OracleCall, error)
}

func (m *mockDebateService) AddComment(ctx context.Context, in service.AddCommentInput) (service.IngestResult, error) {
	if m.addCommentFn != nil {
		return m.addCommentFn(ctx, in)
	}
	return service.IngestResult{}, nil
}

func (m *mockDebateService) ListGroups(ctx context.Context, roomID int64, stance *model.Stance) ([]model.Group, error) {
	if m.listGroupsFn != nil {
		return m.listGroupsFn(ctx, roomID, stance)
	}
	return nil, nil
}

func (m *mockDebateService) RegenerateGroup(ctx context.Context, groupID int64) (model.Group, error) {
	if m.regenerateGroupFn != nil {
		return m.regenerateGroupFn(ctx, groupID)
	}
	return model.Group{}, nil
}

func (m *mockDebateService) RelinkRoom(ctx context.Context, roomID int64) (clustering.RelinkResult, error) {
	if m.relinkRoomFn != nil {
		return m.relinkRoomFn(ctx, roomID)
	}
	return clustering.RelinkResult{}, nil
}

func (m *mockDebateService) EnqueueRelink(ctx context.Context, roomID int64) (string, error) {
	if m.enqueueRelinkFn != nil {
		return m.enqueueRelinkFn(ctx, roomID)
	}
	return "", nil
}

func (m *mockDebateService) GetCounterAnalysis(ctx context.Context, groupID int64) (service.CounterAnalysis, error) {
	if m.counterAnalysisFn != nil {
		return m.counterAnalysisFn(ctx, groupID)
	}
	return service.CounterAnalysis{}, nil
}

func (m *mockDebateService) DebugCounterStatus(ctx context.Context, roomID int64) ([]service.CounterStatus, error) {
	if m.counterStatusFn != nil {
		return m.counterStatusFn(ctx, roomID)
	}
	return nil, nil
}

func (m *mockDebateService) SearchGroups(ctx context.Context, roomID int64, query string) ([]model.Group, error) {
	if m.searchGroupsFn != nil {
		return m.searchGroupsFn(ctx, roomID, query)
	}
	return nil, nil
}

func (m *mockDebateService) ListOracleCalls(ctx context.Context, groupID int64) ([]model.OracleCall, error) {
	if m.listOracleCallsFn != nil {
		return m.listOracleCallsFn(ctx, groupID)
	}
	return nil, nil
}

type mockAdminService struct {
	createRoomFn    func(ctx context.Context, topic string) (model.Room, error)
	createGroupFn   func(ctx context.Context, roomID int64, stance model.Stance, label string) (model.Group, error)
	deleteGroupFn   func(ctx context.Context, groupID int64) error
	removeCommentFn func(ctx context.Context, commentID int64) error
}

func (m *mockAdminService) CreateRoom(ctx context.Context, topic string) (model.Room, error) {
	if m.createRoomFn != nil {
		return m.createRoomFn(ctx, topic)
	}
	return model.Room{}, nil
}

func (m *mockAdminService) CreateGroup(ctx context.Context, roomID int64, stance model.Stance, label string) (model.Group, error) {
	if m.createGroupFn != nil {
		return m.createGroupFn(ctx, roomID, stance, label)
	}
	return model.Group{}, nil
}

func (m *mockAdminService) DeleteGroup(ctx context.Context, groupID int64) error {
	if m.deleteGroupFn != nil {
		return m.deleteGroupFn(ctx, groupID)
	}
	return nil
}

func (m *mockAdminService) RemoveComment(ctx context.Context, commentID int64) error {
	if m.removeCommentFn != nil {
		return m.removeCommentFn(ctx, commentID)
	}
	return nil
}
