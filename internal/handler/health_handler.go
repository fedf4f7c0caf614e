package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Banner handles the root endpoint
func Banner(c echo.Context) error {
	return c.JSON(http.StatusOK, Response{
		Success: true,
		Message: "A server for mongoose assignment",
	})
}

// HealthCheck handles the health check endpoint
func HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "healthy",
		"service": "user-service",
	})
}
