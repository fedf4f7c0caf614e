package service

import (
	"context"
	"errors"
	"testing"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"user-service/internal/mocks"
	"user-service/internal/model"
	"user-service/prometheus"
)

func newTestService(store model.UserStore) (*UserService, *prometheus.Metrics) {
	metrics := prometheus.NewMetrics("test", prom.NewRegistry())
	return NewUserService(store, bcrypt.MinCost, metrics), metrics
}

func validUser() model.User {
	return model.User{
		UserID:   1,
		Username: "ana",
		Password: "pw",
		FullName: model.Name{FirstName: "Ana", LastName: "Lee"},
		Age:      30,
		Email:    "a@b.com",
		IsActive: true,
		Hobbies:  []string{"reading"},
		Address:  model.Address{Street: "1 Rd", City: "X", Country: "Y"},
	}
}

func TestUserService_Create_HashesPassword(t *testing.T) {
	ctx := context.Background()
	store := &mocks.UserStore{}
	svc, metrics := newTestService(store)

	store.On("FindByUserID", mock.Anything, 1).Return(model.User{}, model.ErrNotFound)
	store.On("Create", mock.Anything, mock.MatchedBy(func(u model.User) bool {
		return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("pw")) == nil
	})).Return(model.User{UserID: 1, Username: "ana", Password: "$2a$hash"}, nil)

	created, err := svc.Create(ctx, validUser())
	require.NoError(t, err)
	assert.Equal(t, "ana", created.Username)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.UserOperationsCounter.WithLabelValues("create", "success")))
	store.AssertExpectations(t)
}

func TestUserService_Create_AlreadyExists(t *testing.T) {
	ctx := context.Background()
	store := &mocks.UserStore{}
	svc, metrics := newTestService(store)

	store.On("FindByUserID", mock.Anything, 1).Return(validUser(), nil)

	_, err := svc.Create(ctx, validUser())
	assert.ErrorIs(t, err, model.ErrAlreadyExists)
	assert.Equal(t, model.KindAlreadyExists, model.KindOf(err))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.UserOperationsCounter.WithLabelValues("create", "already_exists")))
	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUserService_Create_ConstraintViolation(t *testing.T) {
	ctx := context.Background()
	store := &mocks.UserStore{}
	svc, _ := newTestService(store)

	store.On("FindByUserID", mock.Anything, 1).Return(model.User{}, model.ErrNotFound)

	u := validUser()
	u.FullName.FirstName = "An4"
	_, err := svc.Create(ctx, u)

	var ce *model.ConstraintError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "fullName.firstName", ce.Field)
	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUserService_Create_LookupFailure(t *testing.T) {
	ctx := context.Background()
	store := &mocks.UserStore{}
	svc, _ := newTestService(store)

	boom := errors.New("connection reset")
	store.On("FindByUserID", mock.Anything, 1).Return(model.User{}, boom)

	_, err := svc.Create(ctx, validUser())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, model.KindInternal, model.KindOf(err))
}

func TestUserService_NotFoundForEveryPerUserOperation(t *testing.T) {
	ctx := context.Background()
	age := 40

	ops := map[string]func(s *UserService) error{
		"GetOne": func(s *UserService) error {
			_, err := s.GetOne(ctx, 999)
			return err
		},
		"Update": func(s *UserService) error {
			_, err := s.Update(ctx, 999, model.UserPatch{Age: &age})
			return err
		},
		"Delete": func(s *UserService) error {
			return s.Delete(ctx, 999)
		},
		"GetOrders": func(s *UserService) error {
			_, err := s.GetOrders(ctx, 999)
			return err
		},
		"AppendOrder": func(s *UserService) error {
			_, err := s.AppendOrder(ctx, 999, model.Order{ProductName: "pen", Price: 1, Quantity: 1})
			return err
		},
		"GetOrderTotal": func(s *UserService) error {
			_, err := s.GetOrderTotal(ctx, 999)
			return err
		},
	}

	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			store := &mocks.UserStore{}
			store.On("FindByUserID", mock.Anything, 999).Return(model.User{}, model.ErrNotFound)
			svc, _ := newTestService(store)

			err := op(svc)
			assert.ErrorIs(t, err, model.ErrNotFound)
			assert.Equal(t, model.KindNotFound, model.KindOf(err))
			store.AssertNumberOfCalls(t, "FindByUserID", 1)
			assert.Len(t, store.Calls, 1)
		})
	}
}

func TestUserService_ListAll(t *testing.T) {
	ctx := context.Background()
	store := &mocks.UserStore{}
	svc, _ := newTestService(store)

	summaries := []model.UserSummary{validUser().Summary()}
	store.On("List", mock.Anything).Return(summaries, nil)

	users, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, summaries, users)
}

func TestUserService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("without password", func(t *testing.T) {
		store := &mocks.UserStore{}
		svc, _ := newTestService(store)

		age := 31
		store.On("FindByUserID", mock.Anything, 1).Return(validUser(), nil)
		store.On("Update", mock.Anything, 1, mock.MatchedBy(func(p model.UserPatch) bool {
			return p.Password == nil && p.Age != nil && *p.Age == 31
		})).Return(validUser(), nil)

		_, err := svc.Update(ctx, 1, model.UserPatch{Age: &age})
		require.NoError(t, err)
		store.AssertExpectations(t)
	})

	t.Run("with password", func(t *testing.T) {
		store := &mocks.UserStore{}
		svc, _ := newTestService(store)

		pw := "new-secret"
		store.On("FindByUserID", mock.Anything, 1).Return(validUser(), nil)
		store.On("Update", mock.Anything, 1, mock.MatchedBy(func(p model.UserPatch) bool {
			return p.Password != nil &&
				bcrypt.CompareHashAndPassword([]byte(*p.Password), []byte("new-secret")) == nil
		})).Return(validUser(), nil)

		_, err := svc.Update(ctx, 1, model.UserPatch{Password: &pw})
		require.NoError(t, err)
		assert.Equal(t, "new-secret", pw)
		store.AssertExpectations(t)
	})

	t.Run("constraint violation", func(t *testing.T) {
		store := &mocks.UserStore{}
		svc, _ := newTestService(store)

		email := "nope"
		store.On("FindByUserID", mock.Anything, 1).Return(validUser(), nil)

		_, err := svc.Update(ctx, 1, model.UserPatch{Email: &email})
		assert.Equal(t, model.KindConstraint, model.KindOf(err))
		store.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestUserService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("deleted", func(t *testing.T) {
		store := &mocks.UserStore{}
		svc, _ := newTestService(store)
		store.On("FindByUserID", mock.Anything, 1).Return(validUser(), nil)
		store.On("Delete", mock.Anything, 1).Return(int64(1), nil)

		assert.NoError(t, svc.Delete(ctx, 1))
	})

	t.Run("removed concurrently", func(t *testing.T) {
		store := &mocks.UserStore{}
		svc, _ := newTestService(store)
		store.On("FindByUserID", mock.Anything, 1).Return(validUser(), nil)
		store.On("Delete", mock.Anything, 1).Return(int64(0), nil)

		err := svc.Delete(ctx, 1)
		assert.ErrorIs(t, err, ErrNothingDeleted)
		assert.Equal(t, model.KindInternal, model.KindOf(err))
	})
}

func TestUserService_AppendOrder(t *testing.T) {
	ctx := context.Background()
	order := model.Order{ProductName: "pen", Price: 2, Quantity: 3}

	t.Run("first order initializes the list", func(t *testing.T) {
		store := &mocks.UserStore{}
		svc, metrics := newTestService(store)
		store.On("FindByUserID", mock.Anything, 1).Return(validUser(), nil)
		store.On("SetOrders", mock.Anything, 1, []model.Order{order}).Return(int64(1), nil)

		modified, err := svc.AppendOrder(ctx, 1, order)
		require.NoError(t, err)
		assert.EqualValues(t, 1, modified)
		store.AssertNotCalled(t, "PushOrder", mock.Anything, mock.Anything, mock.Anything)
		assert.Equal(t, 1.0, testutil.ToFloat64(metrics.OrdersAppendedCounter))
	})

	t.Run("later orders are pushed", func(t *testing.T) {
		store := &mocks.UserStore{}
		svc, _ := newTestService(store)
		u := validUser()
		u.Orders = []model.Order{{ProductName: "book", Price: 10, Quantity: 1}}
		store.On("FindByUserID", mock.Anything, 1).Return(u, nil)
		store.On("PushOrder", mock.Anything, 1, order).Return(int64(1), nil)

		_, err := svc.AppendOrder(ctx, 1, order)
		require.NoError(t, err)
		store.AssertNotCalled(t, "SetOrders", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("nothing modified", func(t *testing.T) {
		store := &mocks.UserStore{}
		svc, _ := newTestService(store)
		store.On("FindByUserID", mock.Anything, 1).Return(validUser(), nil)
		store.On("SetOrders", mock.Anything, 1, []model.Order{order}).Return(int64(0), nil)

		_, err := svc.AppendOrder(ctx, 1, order)
		assert.ErrorIs(t, err, ErrOrderNotRecorded)
	})

	t.Run("negative quantity", func(t *testing.T) {
		store := &mocks.UserStore{}
		svc, _ := newTestService(store)
		store.On("FindByUserID", mock.Anything, 1).Return(validUser(), nil)

		_, err := svc.AppendOrder(ctx, 1, model.Order{ProductName: "pen", Price: 1, Quantity: -1})
		assert.Equal(t, model.KindConstraint, model.KindOf(err))
	})
}

func TestUserService_GetOrders(t *testing.T) {
	ctx := context.Background()
	store := &mocks.UserStore{}
	svc, _ := newTestService(store)

	store.On("FindByUserID", mock.Anything, 1).Return(validUser(), nil)
	store.On("Orders", mock.Anything, 1).Return(nil, nil)

	orders, err := svc.GetOrders(ctx, 1)
	require.NoError(t, err)
	assert.NotNil(t, orders)
	assert.Empty(t, orders)
}

func TestUserService_GetOrderTotal(t *testing.T) {
	ctx := context.Background()

	t.Run("no orders", func(t *testing.T) {
		store := &mocks.UserStore{}
		svc, _ := newTestService(store)
		store.On("FindByUserID", mock.Anything, 1).Return(validUser(), nil)

		total, err := svc.GetOrderTotal(ctx, 1)
		require.NoError(t, err)
		assert.Zero(t, total)
		store.AssertNotCalled(t, "OrderTotal", mock.Anything, mock.Anything)
	})

	t.Run("with orders", func(t *testing.T) {
		store := &mocks.UserStore{}
		svc, _ := newTestService(store)
		u := validUser()
		u.Orders = []model.Order{{ProductName: "a", Price: 10, Quantity: 2}, {ProductName: "b", Price: 5, Quantity: 3}}
		store.On("FindByUserID", mock.Anything, 1).Return(u, nil)
		store.On("OrderTotal", mock.Anything, 1).Return(35.0, nil)

		total, err := svc.GetOrderTotal(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 35.0, total)
	})
}
