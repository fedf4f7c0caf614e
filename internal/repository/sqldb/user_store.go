// Package sqldb implements model.UserStore on a relational database through gorm.
// Each user is one row; hobbies and orders are JSON columns so that a user
// without orders keeps a NULL orders column.
package sqldb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"user-service/internal/model"
)

// userRow is the users table
type userRow struct {
	ID        uint          `gorm:"primaryKey"`
	UserID    int           `gorm:"column:user_id;uniqueIndex;not null"`
	Username  string        `gorm:"type:varchar(255);uniqueIndex;not null"`
	Password  string        `gorm:"type:varchar(255);not null"`
	FirstName string        `gorm:"type:varchar(100);not null"`
	LastName  string        `gorm:"type:varchar(100);not null"`
	Age       int           `gorm:"not null"`
	Email     string        `gorm:"type:varchar(255);not null"`
	IsActive  bool          `gorm:"not null"`
	Hobbies   []string      `gorm:"serializer:json;type:text"`
	Street    string        `gorm:"type:varchar(255);not null"`
	City      string        `gorm:"type:varchar(100);not null"`
	Country   string        `gorm:"type:varchar(100);not null"`
	Orders    []model.Order `gorm:"serializer:json;type:text"`
	Version   int           `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (userRow) TableName() string {
	return "users"
}

func rowFromUser(u model.User) userRow {
	row := userRow{
		UserID:    u.UserID,
		Username:  u.Username,
		Password:  u.Password,
		FirstName: u.FullName.FirstName,
		LastName:  u.FullName.LastName,
		Age:       u.Age,
		Email:     u.Email,
		IsActive:  u.IsActive,
		Hobbies:   u.Hobbies,
		Street:    u.Address.Street,
		City:      u.Address.City,
		Country:   u.Address.Country,
	}
	if len(u.Orders) > 0 {
		row.Orders = u.Orders
	}
	return row
}

func (r userRow) user() model.User {
	u := model.User{
		UserID:   r.UserID,
		Username: r.Username,
		Password: r.Password,
		FullName: model.Name{FirstName: r.FirstName, LastName: r.LastName},
		Age:      r.Age,
		Email:    r.Email,
		IsActive: r.IsActive,
		Hobbies:  r.Hobbies,
		Address:  model.Address{Street: r.Street, City: r.City, Country: r.Country},
	}
	if len(r.Orders) > 0 {
		u.Orders = r.Orders
	}
	return u
}

// UserStore persists users in the users table
type UserStore struct {
	db *gorm.DB
}

var _ model.UserStore = (*UserStore)(nil)

// NewUserStore creates a store on db
func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// Migrate creates or updates the users table and its unique indexes
func (s *UserStore) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&userRow{}); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}
	return nil
}

func (s *UserStore) findRow(tx *gorm.DB, userID int) (userRow, error) {
	var row userRow
	err := tx.Where("user_id = ?", userID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return userRow{}, model.ErrNotFound
	}
	if err != nil {
		return userRow{}, fmt.Errorf("failed to find user %d: %w", userID, err)
	}
	return row, nil
}

// lockRow loads the row for update inside tx
func (s *UserStore) lockRow(tx *gorm.DB, userID int) (userRow, error) {
	return s.findRow(tx.Clauses(clause.Locking{Strength: "UPDATE"}), userID)
}

func (s *UserStore) FindByUserID(ctx context.Context, userID int) (model.User, error) {
	row, err := s.findRow(s.db.WithContext(ctx), userID)
	if err != nil {
		return model.User{}, err
	}
	return row.user(), nil
}

func (s *UserStore) Create(ctx context.Context, user model.User) (model.User, error) {
	row := rowFromUser(user)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if dup := duplicateKeyError(err, user.UserID, user.Username); dup != nil {
			return model.User{}, dup
		}
		return model.User{}, fmt.Errorf("failed to insert user %d: %w", user.UserID, err)
	}
	return row.user(), nil
}

func (s *UserStore) List(ctx context.Context) ([]model.UserSummary, error) {
	var rows []userRow
	err := s.db.WithContext(ctx).
		Select("username", "first_name", "last_name", "age", "email", "street", "city", "country").
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]model.UserSummary, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.user().Summary())
	}
	return users, nil
}

func (s *UserStore) Update(ctx context.Context, userID int, patch model.UserPatch) (model.User, error) {
	var updated userRow
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := s.lockRow(tx, userID)
		if err != nil {
			return err
		}
		if patch.IsEmpty() {
			updated = row
			return nil
		}

		next := rowFromUser(patch.Apply(row.user()))
		next.ID, next.CreatedAt, next.Version = row.ID, row.CreatedAt, row.Version+1
		if err := tx.Save(&next).Error; err != nil {
			return err
		}
		updated = next
		return nil
	})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.User{}, err
		}
		if dup := duplicateKeyError(err, deref(patch.UserID), deref(patch.Username)); dup != nil {
			return model.User{}, dup
		}
		return model.User{}, fmt.Errorf("failed to update user %d: %w", userID, err)
	}
	return updated.user(), nil
}

func (s *UserStore) Delete(ctx context.Context, userID int) (int64, error) {
	res := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&userRow{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete user %d: %w", userID, res.Error)
	}
	return res.RowsAffected, nil
}

func (s *UserStore) PushOrder(ctx context.Context, userID int, order model.Order) (int64, error) {
	return s.updateOrders(ctx, userID, func(orders []model.Order) []model.Order {
		return append(orders, order)
	})
}

func (s *UserStore) SetOrders(ctx context.Context, userID int, orders []model.Order) (int64, error) {
	return s.updateOrders(ctx, userID, func([]model.Order) []model.Order {
		return append([]model.Order(nil), orders...)
	})
}

func (s *UserStore) updateOrders(ctx context.Context, userID int, change func([]model.Order) []model.Order) (int64, error) {
	var affected int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := s.lockRow(tx, userID)
		if err != nil {
			return err
		}

		row.Orders = change(row.Orders)
		if len(row.Orders) == 0 {
			row.Orders = nil
		}
		row.Version++

		res := tx.Save(&row)
		if res.Error != nil {
			return res.Error
		}
		affected = res.RowsAffected
		return nil
	})
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return 0, err
		}
		return 0, fmt.Errorf("failed to update orders of user %d: %w", userID, err)
	}
	return affected, nil
}

func (s *UserStore) Orders(ctx context.Context, userID int) ([]model.Order, error) {
	row, err := s.findRow(s.db.WithContext(ctx).Select("id", "orders"), userID)
	if err != nil {
		return nil, err
	}
	return row.user().Orders, nil
}

// OrderTotal sums price*quantity over the user's orders
func (s *UserStore) OrderTotal(ctx context.Context, userID int) (float64, error) {
	orders, err := s.Orders(ctx, userID)
	if err != nil {
		return 0, err
	}
	return model.TotalPrice(orders), nil
}

func (s *UserStore) Close(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// duplicateKeyError maps a unique index violation reported by postgres or
// sqlite to a constraint error
func duplicateKeyError(err error, userID any, username any) error {
	msg := err.Error()
	if !strings.Contains(msg, "duplicate key value") && !strings.Contains(msg, "UNIQUE constraint failed") {
		return nil
	}
	if strings.Contains(msg, "username") {
		return model.NewDuplicateKeyError("username", username)
	}
	return model.NewDuplicateKeyError("userId", userID)
}

func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
