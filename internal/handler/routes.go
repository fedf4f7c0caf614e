package handler

import (
	"github.com/labstack/echo/v4"
	prom "github.com/prometheus/client_golang/prometheus"

	"user-service/prometheus"
)

// RegisterRoutes mounts the banner, health, metrics and user routes on e
func RegisterRoutes(e *echo.Echo, h *UserHandler, gatherer prom.Gatherer) {
	e.GET("/", Banner)
	e.GET("/health", HealthCheck)
	e.GET("/metrics", echo.WrapHandler(prometheus.Handler(gatherer)))

	users := e.Group("/api/users")
	users.POST("", h.CreateUser)
	users.POST("/", h.CreateUser)
	users.GET("", h.ListUsers)
	users.GET("/", h.ListUsers)
	users.GET("/:userId", h.GetUser)
	users.PUT("/:userId", h.UpdateUser)
	users.DELETE("/:userId", h.DeleteUser)
	users.GET("/:userId/orders", h.GetOrders)
	users.PUT("/:userId/orders", h.AddOrder)
	users.GET("/:userId/orders/total-price", h.GetOrderTotal)
}
