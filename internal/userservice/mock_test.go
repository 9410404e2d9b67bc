package userservice

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sushihentaime/blogapi/internal/common"
)

type MockMessageProducer struct {
	mock.Mock
}

func (m *MockMessageProducer) Publish(ctx context.Context, route common.Route, body []byte) error {
	args := m.Called(route, body)
	return args.Error(0)
}
