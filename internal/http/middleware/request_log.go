package middleware

import (
	echo "github.com/labstack/echo/v4"
	echoMid "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// RequestLogMiddleware writes one structured line per request through echo's
// RequestLogger. Errors go through echo's error handler first so the logged
// status is the one the client saw.
func RequestLogMiddleware(log *zap.Logger) echo.MiddlewareFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return echoMid.RequestLoggerWithConfig(echoMid.RequestLoggerConfig{
		HandleError:   true,
		LogMethod:     true,
		LogRoutePath:  true,
		LogStatus:     true,
		LogLatency:    true,
		LogRemoteIP:   true,
		LogRequestID:  true,
		LogError:      true,
		LogValuesFunc: func(_ echo.Context, v echoMid.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("path", v.RoutePath),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("remote_ip", v.RemoteIP),
				zap.String("request_id", v.RequestID),
			}
			if v.Status >= 500 {
				log.Error("http request", append(fields, zap.Error(v.Error))...)
				return nil
			}
			log.Info("http request", fields...)
			return nil
		},
	})
}
