package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-seat-booking/internal/api"
	"github.com/sanosuguru/go-seat-booking/internal/api/middleware"
	"github.com/sanosuguru/go-seat-booking/internal/application"
)

// NewTestEcho はテスト用のEchoインスタンスを作成する
// バリデーターとエラーハンドラーは本番と同じものを使う
func NewTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	return e
}

// InjectActor は JWT を経由せずに操作者を格納するテスト用ミドルウェア
// actor が nil の場合は未認証のまま通す
func InjectActor(actor *application.Actor) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if actor != nil {
				middleware.SetActor(c, *actor)
			}
			return next(c)
		}
	}
}
