package middleware

import (
	"github.com/Ramsey-B/clover/pkg/context"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// HeaderTenantID is the header the tenant identity arrives on
const HeaderTenantID = "X-Tenant-ID"

// Context copies the request ID and tenant ID from the request headers
// into the request context, assigning a request ID when the caller did
// not send one.
func Context() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			req := c.Request()

			requestID := req.Header.Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = uuid.New().String()
			}

			ctx := req.Context()
			ctx = context.SetRequestID(ctx, requestID)
			ctx = context.SetTenantID(ctx, req.Header.Get(HeaderTenantID))

			c.SetRequest(req.WithContext(ctx))

			return next(c)
		}
	}
}
