package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// 予約作成の結果ラベル
const (
	OutcomeSuccess         = "success"
	OutcomeSeatUnavailable = "seat_unavailable"
	OutcomeUserHasActive   = "user_has_active"
	OutcomeLockFailed      = "lock_failed"
	OutcomeError           = "error"
)

// Metrics はアプリケーションのメトリクスを管理する
type Metrics struct {
	// HTTPリクエストの総数（method, path, status_code）
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPリクエストのレイテンシ（method, path）
	HTTPRequestDuration *prometheus.HistogramVec

	// 予約作成の試行数（outcome）
	ReservationsTotal *prometheus.CounterVec

	// ロックの取得時間（scope: seat/user, status: success/failed）
	LockDuration *prometheus.HistogramVec

	// 状態同期で did_not_come に更新された予約数
	ReconciledReservations prometheus.Counter

	// 作成された問い合わせ数（theme）
	TicketsCreated *prometheus.CounterVec
}

// NewWithRegistry は指定したレジストリにメトリクスを登録する
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		ReservationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "booking_reservations_total",
				Help: "Total number of reservation attempts by outcome",
			},
			[]string{"outcome"},
		),
		LockDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "booking_lock_duration_seconds",
				Help:    "Time spent acquiring seat and user locks",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"scope", "status"},
		),
		ReconciledReservations: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "booking_reconciled_reservations_total",
				Help: "Reservations moved from future to did_not_come by the status sweep",
			},
		),
		TicketsCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "booking_tickets_created_total",
				Help: "Total number of support tickets created",
			},
			[]string{"theme"},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.ReservationsTotal,
		m.LockDuration,
		m.ReconciledReservations,
		m.TicketsCreated,
	)

	return m
}

// NewNop はどこにも登録しないメトリクスを作成する（テスト用）
func NewNop() *Metrics {
	return NewWithRegistry(prometheus.NewRegistry())
}
