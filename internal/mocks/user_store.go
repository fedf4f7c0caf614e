package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"user-service/internal/model"
)

// UserStore is a testify mock of model.UserStore
type UserStore struct {
	mock.Mock
}

var _ model.UserStore = (*UserStore)(nil)

func (m *UserStore) FindByUserID(ctx context.Context, userID int) (model.User, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) Create(ctx context.Context, user model.User) (model.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) List(ctx context.Context) ([]model.UserSummary, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]model.UserSummary)
	return users, args.Error(1)
}

func (m *UserStore) Update(ctx context.Context, userID int, patch model.UserPatch) (model.User, error) {
	args := m.Called(ctx, userID, patch)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) Delete(ctx context.Context, userID int) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *UserStore) PushOrder(ctx context.Context, userID int, order model.Order) (int64, error) {
	args := m.Called(ctx, userID, order)
	return args.Get(0).(int64), args.Error(1)
}

func (m *UserStore) SetOrders(ctx context.Context, userID int, orders []model.Order) (int64, error) {
	args := m.Called(ctx, userID, orders)
	return args.Get(0).(int64), args.Error(1)
}

func (m *UserStore) Orders(ctx context.Context, userID int) ([]model.Order, error) {
	args := m.Called(ctx, userID)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Error(1)
}

func (m *UserStore) OrderTotal(ctx context.Context, userID int) (float64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(float64), args.Error(1)
}

func (m *UserStore) Close(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
