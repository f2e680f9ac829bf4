package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// RequestTimeout puts a deadline on the request context. A read-only handler
// still running at the deadline is abandoned and the client receives 504.
// Mutating requests see the same deadline but always run to completion, so a
// response never hides a change that was applied after the client gave up.
// A non-positive timeout disables the middleware.
func RequestTimeout(timeout time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if timeout <= 0 {
			return next
		}
		return func(c echo.Context) error {
			ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
			defer cancel()
			c.SetRequest(c.Request().WithContext(ctx))

			if !readOnly(c.Request().Method) {
				return next(c)
			}

			done := make(chan error, 1)
			go func() {
				done <- next(c)
			}()

			select {
			case err := <-done:
				// a handler that gave up on the deadline itself still reports 504
				if errors.Is(err, context.DeadlineExceeded) {
					return errTimeout()
				}
				return err
			case <-ctx.Done():
				if errors.Is(ctx.Err(), context.DeadlineExceeded) {
					return errTimeout()
				}
				return ctx.Err()
			}
		}
	}
}

func readOnly(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

func errTimeout() *echo.HTTPError {
	return echo.NewHTTPError(http.StatusGatewayTimeout, "request exceeded the allowed time limit")
}
