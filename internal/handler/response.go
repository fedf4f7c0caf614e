package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"user-service/internal/model"
	"user-service/pkg/logger"
)

// Response is the envelope of every API response
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Error   any    `json:"error,omitempty"`
}

// NotFoundBody is the fixed error body of a missing user
type NotFoundBody struct {
	Code        int    `json:"code"`
	Description string `json:"description"`
}

// ErrorBody describes any failure other than a missing user
type ErrorBody struct {
	Kind   string        `json:"kind"`
	Issues []model.Issue `json:"issues,omitempty"`
	Field  string        `json:"field,omitempty"`
	Rule   string        `json:"rule,omitempty"`
}

// deleted is the data of a successful delete, always serialized as null
type deleted struct{}

func (deleted) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

func ok(c echo.Context, message string, data any) error {
	return c.JSON(http.StatusOK, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// respondError maps a service error to its status code and envelope
func respondError(c echo.Context, err error) error {
	log := logger.FromEcho(c)
	kind := model.KindOf(err)

	if kind == model.KindNotFound {
		log.Info("User not found", zap.String("path", c.Request().URL.Path))
		return c.JSON(http.StatusNotFound, Response{
			Success: false,
			Message: "User not found",
			Error: NotFoundBody{
				Code:        http.StatusNotFound,
				Description: "User not found!",
			},
		})
	}

	body := ErrorBody{Kind: kind.String()}
	var ve *model.ValidationError
	var ce *model.ConstraintError
	switch {
	case errors.As(err, &ve):
		body.Issues = ve.Issues
	case errors.As(err, &ce):
		body.Field = ce.Field
		body.Rule = ce.Rule
	}

	if kind == model.KindInternal {
		log.Error("Request failed", zap.Error(err))
	} else {
		log.Warn("Request rejected", zap.String("kind", body.Kind), zap.Error(err))
	}

	return c.JSON(http.StatusInternalServerError, Response{
		Success: false,
		Message: message(err),
		Error:   body,
	})
}

func message(err error) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return "Something went wrong!"
}
