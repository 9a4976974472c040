// Package router は HTTP ルーティングを組み立てる
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sanosuguru/go-seat-booking/internal/api/handler"
	"github.com/sanosuguru/go-seat-booking/internal/api/middleware"
	"github.com/sanosuguru/go-seat-booking/internal/config"
	"github.com/sanosuguru/go-seat-booking/internal/domain/user"
	"github.com/sanosuguru/go-seat-booking/internal/pkg/metrics"
)

// Handlers はルーティング対象のハンドラー群
type Handlers struct {
	Health      *handler.HealthHandler
	Seat        *handler.SeatHandler
	Reservation *handler.ReservationHandler
	Ticket      *handler.TicketHandler
	User        *handler.UserHandler
	Admin       *handler.AdminHandler
}

// Options は認証とメトリクスの設定
// Metrics が nil の場合は /metrics を公開しない
// Provisioner が nil でなければ初回アクセス時にユーザーを登録する
type Options struct {
	JWT         config.JWTConfig
	Provisioner middleware.UserProvisioner
	MetricsAuth config.MetricsConfig
	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer
}

// Register は /api/v1 配下のルートと /metrics を登録する
func Register(e *echo.Echo, h Handlers, opts Options) {
	if opts.Metrics != nil {
		e.Use(middleware.PrometheusMiddleware(opts.Metrics, "/metrics"))
		gatherer := opts.Gatherer
		if gatherer == nil {
			gatherer = prometheus.DefaultGatherer
		}
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})),
			middleware.MetricsBasicAuth(opts.MetricsAuth))
	}

	v1 := e.Group("/api/v1")
	v1.GET("/health", h.Health.Check)

	authMW := []echo.MiddlewareFunc{middleware.JWTAuth(opts.JWT)}
	if opts.Provisioner != nil {
		authMW = append(authMW, middleware.ProvisionUser(opts.Provisioner))
	}
	authed := v1.Group("", authMW...)
	admin := middleware.RequireRole(user.RoleAdmin)

	authed.GET("/users/me", h.User.Me)
	authed.PATCH("/users/me", h.User.UpdateMe)
	authed.DELETE("/users/me", h.User.DeleteMe)
	authed.GET("/users/:id", h.User.GetByID)

	authed.GET("/seats", h.Seat.List)
	authed.GET("/seats/:id", h.Seat.GetByID)
	authed.POST("/seats", h.Seat.Create, admin)
	authed.POST("/seats/bulk", h.Seat.CreateBulk, admin)
	authed.PATCH("/seats/:id", h.Seat.Update, admin)
	authed.DELETE("/seats/:id", h.Seat.Delete, admin)

	authed.POST("/reservations", h.Reservation.Create)
	authed.GET("/reservations", h.Reservation.List)
	authed.GET("/reservations/active", h.Reservation.GetActive)
	authed.GET("/reservations/maximum-available-time", h.Reservation.GetMaximumAvailableTime)
	authed.GET("/reservations/:id", h.Reservation.GetByID)
	authed.PATCH("/reservations/:id", h.Reservation.Update)
	authed.POST("/reservations/:id/cancel", h.Reservation.Cancel)

	authed.POST("/tickets", h.Ticket.Create)
	authed.GET("/tickets/my", h.Ticket.ListMine)

	// 管理者
	adm := authed.Group("/admin", admin)
	adm.POST("/check-in/:id", h.Admin.CheckIn)
	adm.POST("/reconcile", h.Admin.Reconcile)
	adm.GET("/users", h.Admin.ListUsers)
	adm.POST("/users/:id/verify", h.Admin.VerifyUser)
	adm.PATCH("/users/:id", h.Admin.UpdateUser)
	adm.GET("/reservations", h.Admin.ListReservations)
	adm.POST("/reservations", h.Reservation.Create)
	adm.GET("/reservations/:id", h.Reservation.GetByID)
	adm.PATCH("/reservations/:id", h.Reservation.Update)
	adm.DELETE("/reservations/:id", h.Admin.DeleteReservation)
	adm.GET("/tickets", h.Admin.ListTickets)
	adm.PATCH("/tickets/:id/status", h.Admin.UpdateTicketStatus)
}
