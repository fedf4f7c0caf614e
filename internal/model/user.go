package model

import (
	"context"
)

// Name represents a user's full name
type Name struct {
	FirstName string `json:"firstName" bson:"firstName" validate:"required,alpha"`
	LastName  string `json:"lastName" bson:"lastName" validate:"required,alpha"`
}

// Address represents a user's postal address
type Address struct {
	Street  string `json:"street" bson:"street" validate:"required"`
	City    string `json:"city" bson:"city" validate:"required"`
	Country string `json:"country" bson:"country" validate:"required"`
}

// Order is a single order line owned by a user
type Order struct {
	ProductName string  `json:"productName" bson:"productName" validate:"required"`
	Price       float64 `json:"price" bson:"price" validate:"gte=0"`
	Quantity    int     `json:"quantity" bson:"quantity" validate:"gte=0"`
}

// User is the user record as seen by the service layer.
//
// UserID is the business key. Storage-internal identifiers never appear here,
// and Password is excluded from JSON so a User can be written to a response
// as-is. Orders is nil when the user never placed an order.
type User struct {
	UserID   int      `json:"userId" bson:"userId"`
	Username string   `json:"username" bson:"username" validate:"required"`
	Password string   `json:"-" bson:"password" validate:"required"`
	FullName Name     `json:"fullName" bson:"fullName"`
	Age      int      `json:"age" bson:"age"`
	Email    string   `json:"email" bson:"email" validate:"required,email"`
	IsActive bool     `json:"isActive" bson:"isActive"`
	Hobbies  []string `json:"hobbies" bson:"hobbies"`
	Address  Address  `json:"address" bson:"address"`
	Orders   []Order  `json:"orders,omitempty" bson:"orders,omitempty" validate:"dive"`
}

// HasOrders reports whether the orders field is present
func (u User) HasOrders() bool {
	return len(u.Orders) > 0
}

// UserSummary is the limited public projection returned when listing users
type UserSummary struct {
	Username string  `json:"username" bson:"username"`
	FullName Name    `json:"fullName" bson:"fullName"`
	Age      int     `json:"age" bson:"age"`
	Email    string  `json:"email" bson:"email"`
	Address  Address `json:"address" bson:"address"`
}

// Summary projects the user onto the public listing fields
func (u User) Summary() UserSummary {
	return UserSummary{
		Username: u.Username,
		FullName: u.FullName,
		Age:      u.Age,
		Email:    u.Email,
		Address:  u.Address,
	}
}

// UserPatch is a replacement document for an existing user. Every non-nil
// field overwrites the stored field as a whole; nil fields are left alone.
type UserPatch struct {
	UserID   *int      `json:"userId,omitempty" bson:"userId,omitempty"`
	Username *string   `json:"username,omitempty" bson:"username,omitempty" validate:"omitnil,required"`
	Password *string   `json:"password,omitempty" bson:"password,omitempty" validate:"omitnil,required"`
	FullName *Name     `json:"fullName,omitempty" bson:"fullName,omitempty" validate:"omitnil"`
	Age      *int      `json:"age,omitempty" bson:"age,omitempty"`
	Email    *string   `json:"email,omitempty" bson:"email,omitempty" validate:"omitnil,required,email"`
	IsActive *bool     `json:"isActive,omitempty" bson:"isActive,omitempty"`
	Hobbies  *[]string `json:"hobbies,omitempty" bson:"hobbies,omitempty"`
	Address  *Address  `json:"address,omitempty" bson:"address,omitempty" validate:"omitnil"`
	Orders   *[]Order  `json:"orders,omitempty" bson:"orders,omitempty" validate:"omitnil,dive"`
}

// IsEmpty reports whether the patch carries no fields at all
func (p UserPatch) IsEmpty() bool {
	return p.UserID == nil && p.Username == nil && p.Password == nil &&
		p.FullName == nil && p.Age == nil && p.Email == nil && p.IsActive == nil &&
		p.Hobbies == nil && p.Address == nil && p.Orders == nil
}

// Apply returns a copy of u with the patch fields written over it.
// An empty orders replacement removes the orders field.
func (p UserPatch) Apply(u User) User {
	if p.UserID != nil {
		u.UserID = *p.UserID
	}
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Password != nil {
		u.Password = *p.Password
	}
	if p.FullName != nil {
		u.FullName = *p.FullName
	}
	if p.Age != nil {
		u.Age = *p.Age
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.IsActive != nil {
		u.IsActive = *p.IsActive
	}
	if p.Hobbies != nil {
		u.Hobbies = append([]string(nil), (*p.Hobbies)...)
	}
	if p.Address != nil {
		u.Address = *p.Address
	}
	if p.Orders != nil {
		if len(*p.Orders) == 0 {
			u.Orders = nil
		} else {
			u.Orders = append([]Order(nil), (*p.Orders)...)
		}
	}
	return u
}

// TotalPrice sums price*quantity over every order line
func TotalPrice(orders []Order) float64 {
	total := 0.0
	for _, o := range orders {
		total += o.Price * float64(o.Quantity)
	}
	return total
}

// UserStore defines persistence operations for users keyed by userId.
type UserStore interface {
	// FindByUserID returns ErrNotFound when no user has the given business key.
	FindByUserID(ctx context.Context, userID int) (User, error)
	Create(ctx context.Context, user User) (User, error)
	List(ctx context.Context) ([]UserSummary, error)
	// Update writes the patch and returns the stored user after the update.
	Update(ctx context.Context, userID int, patch UserPatch) (User, error)
	Delete(ctx context.Context, userID int) (int64, error)
	PushOrder(ctx context.Context, userID int, order Order) (int64, error)
	SetOrders(ctx context.Context, userID int, orders []Order) (int64, error)
	Orders(ctx context.Context, userID int) ([]Order, error)
	OrderTotal(ctx context.Context, userID int) (float64, error)
	Close(ctx context.Context) error
}
