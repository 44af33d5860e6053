package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"live-service/internal/models"
	"live-service/internal/repositories"
)

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) Create(ctx context.Context, user models.Participant, text string) (models.ChatMessage, error) {
	args := m.Called(ctx, user, text)
	var msg models.ChatMessage
	if val := args.Get(0); val != nil {
		msg = val.(models.ChatMessage)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) ListRecent(ctx context.Context, limit int) ([]models.ChatMessage, error) {
	args := m.Called(ctx, limit)
	var msgs []models.ChatMessage
	if val := args.Get(0); val != nil {
		msgs = val.([]models.ChatMessage)
	}
	return msgs, args.Error(1)
}

type DirectMessageRepositoryMock struct {
	mock.Mock
}

func (m *DirectMessageRepositoryMock) Create(ctx context.Context, sender, recipient models.Identity, text string) (models.DirectMessage, error) {
	args := m.Called(ctx, sender, recipient, text)
	var dm models.DirectMessage
	if val := args.Get(0); val != nil {
		dm = val.(models.DirectMessage)
	}
	return dm, args.Error(1)
}

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) FindByID(ctx context.Context, id string) (*models.Identity, error) {
	args := m.Called(ctx, id)
	var ident *models.Identity
	if val := args.Get(0); val != nil {
		ident = val.(*models.Identity)
	}
	return ident, args.Error(1)
}

func (m *UserRepositoryMock) FindAccount(ctx context.Context, id string) (*models.Account, error) {
	args := m.Called(ctx, id)
	var account *models.Account
	if val := args.Get(0); val != nil {
		account = val.(*models.Account)
	}
	return account, args.Error(1)
}

type ContentRepositoryMock struct {
	mock.Mock
}

func (m *ContentRepositoryMock) ListEligibleIDs(ctx context.Context, kind models.ContentKind, limit int) ([]string, error) {
	args := m.Called(ctx, kind, limit)
	var ids []string
	if val := args.Get(0); val != nil {
		ids = val.([]string)
	}
	return ids, args.Error(1)
}

var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
var _ repositories.DirectMessageRepository = (*DirectMessageRepositoryMock)(nil)
var _ repositories.UserRepository = (*UserRepositoryMock)(nil)
var _ repositories.ContentRepository = (*ContentRepositoryMock)(nil)
