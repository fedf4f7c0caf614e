package handler

import (
	"fmt"
	"io"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"user-service/internal/model"
	"user-service/internal/service"
	"user-service/internal/validation"
	"user-service/pkg/logger"
)

// UserHandler serves the /api/users resource
type UserHandler struct {
	users *service.UserService
}

// NewUserHandler creates a handler on the user service
func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// OrderUpdateResult is the data returned after an order was recorded
type OrderUpdateResult struct {
	Acknowledged  bool  `json:"acknowledged"`
	ModifiedCount int64 `json:"modifiedCount"`
}

// OrderTotal is the data returned by the total price endpoint
type OrderTotal struct {
	TotalPrice float64 `json:"totalPrice"`
}

// userID parses the :userId path parameter. A non-numeric value can never
// match a stored user, so it is reported as not found.
func userID(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("userId"))
	if err != nil {
		logger.FromEcho(c).Debug("Non-numeric userId", zap.String("user_id", c.Param("userId")))
		return 0, model.ErrNotFound
	}
	return id, nil
}

func readBody(c echo.Context) ([]byte, error) {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	return body, nil
}

// CreateUser handles POST /api/users
func (h *UserHandler) CreateUser(c echo.Context) error {
	body, err := readBody(c)
	if err != nil {
		return respondError(c, err)
	}

	user, err := validation.ParseUser(body)
	if err != nil {
		return respondError(c, err)
	}

	created, err := h.users.Create(c.Request().Context(), user)
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, "User created successfully!", created)
}

// ListUsers handles GET /api/users
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.users.ListAll(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, "Users fetched successfully!", users)
}

// GetUser handles GET /api/users/:userId
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return respondError(c, err)
	}

	user, err := h.users.GetOne(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, "User fetched successfully!", user)
}

// UpdateUser handles PUT /api/users/:userId
func (h *UserHandler) UpdateUser(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return respondError(c, err)
	}

	body, err := readBody(c)
	if err != nil {
		return respondError(c, err)
	}
	patch, err := validation.ParseUserPatch(body)
	if err != nil {
		return respondError(c, err)
	}

	updated, err := h.users.Update(c.Request().Context(), id, patch)
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, "User updated successfully!", updated)
}

// DeleteUser handles DELETE /api/users/:userId
func (h *UserHandler) DeleteUser(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return respondError(c, err)
	}

	if err := h.users.Delete(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return ok(c, "User deleted successfully!", deleted{})
}

// AddOrder handles PUT /api/users/:userId/orders
func (h *UserHandler) AddOrder(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return respondError(c, err)
	}

	body, err := readBody(c)
	if err != nil {
		return respondError(c, err)
	}
	order, err := validation.ParseOrder(body)
	if err != nil {
		return respondError(c, err)
	}

	modified, err := h.users.AppendOrder(c.Request().Context(), id, order)
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, "Order created successfully!", OrderUpdateResult{
		Acknowledged:  true,
		ModifiedCount: modified,
	})
}

// GetOrders handles GET /api/users/:userId/orders
func (h *UserHandler) GetOrders(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return respondError(c, err)
	}

	orders, err := h.users.GetOrders(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, "Order fetched successfully!", orders)
}

// GetOrderTotal handles GET /api/users/:userId/orders/total-price
func (h *UserHandler) GetOrderTotal(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return respondError(c, err)
	}

	total, err := h.users.GetOrderTotal(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, "Total price calculated successfully!", OrderTotal{TotalPrice: total})
}
