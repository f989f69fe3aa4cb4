package middleware

import (
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/clover/pkg/context"
	"github.com/labstack/echo/v4"
)

// Logger writes one access log line per request after the handler chain
// finishes. Runs after Context so the request and tenant IDs are present.
func Logger(logger ectologger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			req := c.Request()
			res := c.Response()
			start := time.Now()
			if err = next(c); err != nil {
				c.Error(err)
			}

			ctx := req.Context()
			logger.WithContext(ctx).WithFields(map[string]any{
				"request_id":    context.GetRequestID(ctx),
				"tenant_id":     context.GetTenantID(ctx),
				"method":        req.Method,
				"uri":           req.RequestURI,
				"status":        res.Status,
				"route":         c.Path(),
				"remote_ip":     c.RealIP(),
				"user_agent":    req.UserAgent(),
				"response_time": time.Since(start),
				"response_size": res.Size,
			}).Info("Request")

			return nil
		}
	}
}
