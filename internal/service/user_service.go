package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"user-service/internal/model"
	"user-service/pkg/logger"
	"user-service/prometheus"
)

// ErrNothingDeleted is returned when a user passed the existence check but
// the delete removed no document, i.e. a concurrent request removed it first.
var ErrNothingDeleted = errors.New("Something went wrong")

// ErrOrderNotRecorded is returned when an order update modified nothing
var ErrOrderNotRecorded = errors.New("order was not recorded")

// UserService holds the user operations. Every per-user operation looks the
// user up by userId first and fails with model.ErrNotFound when it is missing.
type UserService struct {
	store    model.UserStore
	hashCost int
	metrics  *prometheus.Metrics
}

// NewUserService creates a service on store hashing passwords with hashCost
func NewUserService(store model.UserStore, hashCost int, metrics *prometheus.Metrics) *UserService {
	return &UserService{
		store:    store,
		hashCost: hashCost,
		metrics:  metrics,
	}
}

func (s *UserService) track(op string) func(time.Time) {
	return s.metrics.TrackDBOperation(op)
}

func (s *UserService) record(op string, err error) {
	outcome := "success"
	if err != nil {
		outcome = model.KindOf(err).String()
	}
	s.metrics.RecordUserOperation(op, outcome)
}

// lookup is the single existence check used by every operation
func (s *UserService) lookup(ctx context.Context, userID int) (model.User, error) {
	defer s.track("find")(time.Now())
	return s.store.FindByUserID(ctx, userID)
}

func (s *UserService) hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Create stores a validated user, rejecting a userId that is already taken.
// The returned user carries the password hash.
func (s *UserService) Create(ctx context.Context, user model.User) (created model.User, err error) {
	log := logger.FromContext(ctx)
	defer func() { s.record("create", err) }()

	_, err = s.lookup(ctx, user.UserID)
	switch {
	case err == nil:
		log.Warn("User already exists", zap.Int("user_id", user.UserID))
		return model.User{}, model.ErrAlreadyExists
	case !errors.Is(err, model.ErrNotFound):
		return model.User{}, err
	}

	if err = model.CheckUser(user); err != nil {
		log.Warn("User failed constraint check", zap.Int("user_id", user.UserID), zap.Error(err))
		return model.User{}, err
	}

	if user.Password, err = s.hashPassword(user.Password); err != nil {
		return model.User{}, err
	}
	if len(user.Orders) == 0 {
		user.Orders = nil
	}

	defer s.track("insert")(time.Now())
	created, err = s.store.Create(ctx, user)
	if err != nil {
		log.Error("Failed to create user", zap.Int("user_id", user.UserID), zap.Error(err))
		return model.User{}, err
	}

	log.Info("User created", zap.Int("user_id", created.UserID), zap.String("username", created.Username))
	return created, nil
}

// ListAll returns every user projected to the public listing fields
func (s *UserService) ListAll(ctx context.Context) (users []model.UserSummary, err error) {
	defer func() { s.record("list", err) }()
	defer s.track("query")(time.Now())

	users, err = s.store.List(ctx)
	if err != nil {
		logger.FromContext(ctx).Error("Failed to list users", zap.Error(err))
		return nil, err
	}
	return users, nil
}

// GetOne returns the full user with the given userId
func (s *UserService) GetOne(ctx context.Context, userID int) (user model.User, err error) {
	defer func() { s.record("get", err) }()
	return s.lookup(ctx, userID)
}

// Update writes the replacement document over the user and returns the
// updated user. The password is rehashed only when the patch carries one.
func (s *UserService) Update(ctx context.Context, userID int, patch model.UserPatch) (updated model.User, err error) {
	log := logger.FromContext(ctx)
	defer func() { s.record("update", err) }()

	if _, err = s.lookup(ctx, userID); err != nil {
		return model.User{}, err
	}

	if err = model.CheckPatch(patch); err != nil {
		log.Warn("Update failed constraint check", zap.Int("user_id", userID), zap.Error(err))
		return model.User{}, err
	}

	if patch.Password != nil {
		hashed, hashErr := s.hashPassword(*patch.Password)
		if hashErr != nil {
			return model.User{}, hashErr
		}
		patch.Password = &hashed
	}

	defer s.track("update")(time.Now())
	updated, err = s.store.Update(ctx, userID, patch)
	if err != nil {
		log.Error("Failed to update user", zap.Int("user_id", userID), zap.Error(err))
		return model.User{}, err
	}

	log.Info("User updated",
		zap.Int("user_id", userID),
		zap.Bool("password_changed", patch.Password != nil))
	return updated, nil
}

// Delete removes the user with the given userId
func (s *UserService) Delete(ctx context.Context, userID int) (err error) {
	log := logger.FromContext(ctx)
	defer func() { s.record("delete", err) }()

	if _, err = s.lookup(ctx, userID); err != nil {
		return err
	}

	defer s.track("delete")(time.Now())
	deleted, err := s.store.Delete(ctx, userID)
	if err != nil {
		log.Error("Failed to delete user", zap.Int("user_id", userID), zap.Error(err))
		return err
	}
	if deleted == 0 {
		log.Warn("User vanished between lookup and delete", zap.Int("user_id", userID))
		return ErrNothingDeleted
	}

	log.Info("User deleted", zap.Int("user_id", userID))
	return nil
}

// AppendOrder adds order to the user's orders. A user without orders gets
// the field initialized with the single order; otherwise the order is pushed
// onto the existing list. It returns the number of modified users.
func (s *UserService) AppendOrder(ctx context.Context, userID int, order model.Order) (modified int64, err error) {
	log := logger.FromContext(ctx)
	defer func() { s.record("append_order", err) }()

	user, err := s.lookup(ctx, userID)
	if err != nil {
		return 0, err
	}

	if err = model.CheckOrder(order); err != nil {
		return 0, err
	}

	defer s.track("update")(time.Now())
	if user.HasOrders() {
		modified, err = s.store.PushOrder(ctx, userID, order)
	} else {
		modified, err = s.store.SetOrders(ctx, userID, []model.Order{order})
	}
	if err != nil {
		log.Error("Failed to append order", zap.Int("user_id", userID), zap.Error(err))
		return 0, err
	}
	if modified == 0 {
		return 0, ErrOrderNotRecorded
	}

	s.metrics.RecordOrderAppended()
	log.Info("Order appended",
		zap.Int("user_id", userID),
		zap.String("product_name", order.ProductName),
		zap.Bool("first_order", !user.HasOrders()))
	return modified, nil
}

// GetOrders returns the user's orders, empty when none were placed
func (s *UserService) GetOrders(ctx context.Context, userID int) (orders []model.Order, err error) {
	defer func() { s.record("get_orders", err) }()

	if _, err = s.lookup(ctx, userID); err != nil {
		return nil, err
	}

	defer s.track("query")(time.Now())
	orders, err = s.store.Orders(ctx, userID)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []model.Order{}
	}
	return orders, nil
}

// GetOrderTotal returns the sum of price*quantity over the user's orders
func (s *UserService) GetOrderTotal(ctx context.Context, userID int) (total float64, err error) {
	defer func() { s.record("order_total", err) }()

	user, err := s.lookup(ctx, userID)
	if err != nil {
		return 0, err
	}
	if !user.HasOrders() {
		return 0, nil
	}

	defer s.track("aggregate")(time.Now())
	return s.store.OrderTotal(ctx, userID)
}
