package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// RequestIDKey is the header and echo context key of the request ID
const RequestIDKey = echo.HeaderXRequestID

// maxRequestIDLength bounds caller-supplied IDs before they reach the logs
const maxRequestIDLength = 128

// RequestIDMiddleware tags every request with an ID, reusing the caller's
// X-Request-ID when it is usable
func RequestIDMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		id := req.Header.Get(RequestIDKey)
		if id == "" || len(id) > maxRequestIDLength {
			id = uuid.NewString()
			req.Header.Set(RequestIDKey, id)
		}

		c.Set(RequestIDKey, id)
		c.Response().Header().Set(RequestIDKey, id)
		return next(c)
	}
}
