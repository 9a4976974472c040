package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/otel/trace"
)

// SetupMiddleware は共通ミドルウェアを設定する
// 認証はルートグループ単位で付与するためここでは扱わない
func SetupMiddleware(e *echo.Echo, tracer trace.Tracer) {
	e.Use(
		RequestIDMiddleware(),
		// ログにトレースIDを載せるため RequestLogger より前
		Tracing(tracer),
		RequestLogger(),
		middleware.Recover(),
		middleware.BodyLimit("1M"),
		middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{echo.GET, echo.HEAD, echo.PATCH, echo.POST, echo.DELETE},
			AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType, echo.HeaderXRequestID},
		}),
	)
}
