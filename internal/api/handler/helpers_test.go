package handler

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-seat-booking/internal/application"
	"github.com/sanosuguru/go-seat-booking/internal/domain/user"
	"github.com/sanosuguru/go-seat-booking/internal/pkg/wallclock"
)

const (
	userID  = "6f1c2a4e-8a44-4a43-9a1e-3f2b7c1d9e10"
	otherID = "0b7e5f6a-2c1d-4e3f-8a9b-1c2d3e4f5a6b"
	adminID = "9d8c7b6a-5f4e-4d3c-8b2a-1f0e9d8c7b6a"
	seatID  = "c1a7e3a2-0f5e-4b8e-9c55-2d8a1b7f4e21"
	resID   = "3a4b5c6d-7e8f-4a0b-9c1d-2e3f4a5b6c7d"
)

var (
	asUser  = application.Actor{UserID: userID, Role: user.RoleUser}
	asAdmin = application.Actor{UserID: adminID, Role: user.RoleAdmin}
)

func testZone(t *testing.T) *wallclock.Zone {
	t.Helper()
	z, err := wallclock.NewZone(wallclock.DefaultZoneName)
	require.NoError(t, err)
	return z
}

// serve はルートを1本だけ登録した Echo でリクエストを処理する
// actor が nil でなければ認証済みとして扱う
func serve(method, route, target, body string, actor *application.Actor, h echo.HandlerFunc) *httptest.ResponseRecorder {
	e := NewTestEcho()
	e.Add(method, route, h, InjectActor(actor))

	var req = httptest.NewRequest(method, target, nil)
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}
