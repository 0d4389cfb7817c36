package mocks

import (
	"context"

	"github.com/Gedamu-tinsae/remove-password/internal/model"
	"github.com/Gedamu-tinsae/remove-password/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockUnlockService struct {
	mock.Mock
}

func (m *MockUnlockService) Unlock(ctx context.Context, in service.UnlockInput) (*model.UnlockResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UnlockResult), args.Error(1)
}
