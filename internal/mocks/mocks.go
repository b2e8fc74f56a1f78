package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"feed-service/internal/feed"
	"feed-service/internal/models"
	"feed-service/internal/repositories"
)

type RoomRepositoryMock struct {
	mock.Mock
}

func (m *RoomRepositoryMock) CreateRoom(ctx context.Context, ownerID string, name string) (models.Room, error) {
	args := m.Called(ctx, ownerID, name)
	var room models.Room
	if val := args.Get(0); val != nil {
		room = val.(models.Room)
	}
	return room, args.Error(1)
}

func (m *RoomRepositoryMock) GetRoom(ctx context.Context, roomID string) (models.Room, error) {
	args := m.Called(ctx, roomID)
	var room models.Room
	if val := args.Get(0); val != nil {
		room = val.(models.Room)
	}
	return room, args.Error(1)
}

func (m *RoomRepositoryMock) ListRooms(ctx context.Context) ([]models.Room, error) {
	args := m.Called(ctx)
	var rooms []models.Room
	if val := args.Get(0); val != nil {
		rooms = val.([]models.Room)
	}
	return rooms, args.Error(1)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) ListPage(ctx context.Context, roomID string, cursor string, limit int) (models.Page, error) {
	args := m.Called(ctx, roomID, cursor, limit)
	var page models.Page
	if val := args.Get(0); val != nil {
		page = val.(models.Page)
	}
	return page, args.Error(1)
}

func (m *MessageRepositoryMock) Create(ctx context.Context, roomID string, ownerID string, content string, attachments []models.Attachment) (models.Message, error) {
	args := m.Called(ctx, roomID, ownerID, content, attachments)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) Update(ctx context.Context, messageID string, content string) (models.Message, error) {
	args := m.Called(ctx, messageID, content)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) Delete(ctx context.Context, messageID string) error {
	args := m.Called(ctx, messageID)
	return args.Error(0)
}

func (m *MessageRepositoryMock) GetMessage(ctx context.Context, messageID string) (models.Message, error) {
	args := m.Called(ctx, messageID)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

type PageFetcherMock struct {
	mock.Mock
}

func (m *PageFetcherMock) FetchPage(ctx context.Context, roomID string, cursor string, limit int) (models.Page, error) {
	args := m.Called(ctx, roomID, cursor, limit)
	var page models.Page
	if val := args.Get(0); val != nil {
		page = val.(models.Page)
	}
	return page, args.Error(1)
}

type MutationStoreMock struct {
	mock.Mock
}

func (m *MutationStoreMock) UpdateMessage(ctx context.Context, roomID string, messageID string, content string) (models.Message, error) {
	args := m.Called(ctx, roomID, messageID, content)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MutationStoreMock) DeleteMessage(ctx context.Context, roomID string, messageID string) error {
	args := m.Called(ctx, roomID, messageID)
	return args.Error(0)
}

var _ repositories.RoomRepository = (*RoomRepositoryMock)(nil)
var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
var _ feed.PageFetcher = (*PageFetcherMock)(nil)
var _ feed.MutationStore = (*MutationStoreMock)(nil)
