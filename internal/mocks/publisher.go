package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"live-service/internal/bridge"
)

type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) Publish(ctx context.Context, body []byte) error {
	args := m.Called(ctx, body)
	return args.Error(0)
}

func (m *PublisherMock) Ready() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *PublisherMock) Close() error {
	args := m.Called()
	return args.Error(0)
}

var _ bridge.Publisher = (*PublisherMock)(nil)
