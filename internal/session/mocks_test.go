package session

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/animaweaver/chatstore/internal/domain"
)

// MockRepository mocks the domain.Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateChat(ctx context.Context, title string, groupID *int64) (*domain.Chat, error) {
	args := m.Called(ctx, title, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Chat), args.Error(1)
}

func (m *MockRepository) CreateGroup(ctx context.Context, name string) (*domain.Group, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Group), args.Error(1)
}

func (m *MockRepository) AddMessage(ctx context.Context, chatID int64, sender domain.Sender, content string) (*domain.MessagePair, error) {
	args := m.Called(ctx, chatID, sender, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MessagePair), args.Error(1)
}

func (m *MockRepository) GetUserChats(ctx context.Context) ([]domain.Chat, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Chat), args.Error(1)
}

func (m *MockRepository) GetChatMessages(ctx context.Context, chatID int64) ([]domain.Message, error) {
	args := m.Called(ctx, chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Message), args.Error(1)
}

func (m *MockRepository) GetGroups(ctx context.Context) ([]domain.Group, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Group), args.Error(1)
}

func (m *MockRepository) GetGroup(ctx context.Context, groupID int64) (*domain.Group, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Group), args.Error(1)
}

func (m *MockRepository) GetGroupChats(ctx context.Context, groupID int64) ([]domain.Chat, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Chat), args.Error(1)
}

func (m *MockRepository) DeleteChat(ctx context.Context, chatID int64) error {
	args := m.Called(ctx, chatID)
	return args.Error(0)
}

func (m *MockRepository) DeleteGroup(ctx context.Context, groupID int64) error {
	args := m.Called(ctx, groupID)
	return args.Error(0)
}

func (m *MockRepository) RenameChat(ctx context.Context, chatID int64, title string) (*domain.Chat, error) {
	args := m.Called(ctx, chatID, title)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Chat), args.Error(1)
}

func (m *MockRepository) RenameGroup(ctx context.Context, groupID int64, name string) (*domain.Group, error) {
	args := m.Called(ctx, groupID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Group), args.Error(1)
}
