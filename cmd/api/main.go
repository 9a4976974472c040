package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-seat-booking/internal/api"
	"github.com/sanosuguru/go-seat-booking/internal/api/handler"
	"github.com/sanosuguru/go-seat-booking/internal/api/middleware"
	"github.com/sanosuguru/go-seat-booking/internal/api/router"
	"github.com/sanosuguru/go-seat-booking/internal/application"
	"github.com/sanosuguru/go-seat-booking/internal/config"
	"github.com/sanosuguru/go-seat-booking/internal/domain/ticket"
	"github.com/sanosuguru/go-seat-booking/internal/infrastructure/postgres"
	"github.com/sanosuguru/go-seat-booking/internal/infrastructure/rabbitmq"
	redisinfra "github.com/sanosuguru/go-seat-booking/internal/infrastructure/redis"
	"github.com/sanosuguru/go-seat-booking/internal/pkg/clock"
	"github.com/sanosuguru/go-seat-booking/internal/pkg/logger"
	"github.com/sanosuguru/go-seat-booking/internal/pkg/metrics"
	"github.com/sanosuguru/go-seat-booking/internal/pkg/telemetry"
	"github.com/sanosuguru/go-seat-booking/internal/pkg/wallclock"
	"github.com/sanosuguru/go-seat-booking/internal/worker"
)

func main() {
	cfg := config.Load()

	logger.Set(logger.New(logger.Options{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	}))
	defer func() { _ = logger.Sync() }()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("設定エラー", zap.Error(err))
	}

	zone, err := wallclock.NewZone(cfg.Booking.Timezone)
	if err != nil {
		logger.Fatal("タイムゾーン設定エラー", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// トレース
	tel, err := telemetry.New(ctx, telemetry.Config{
		Enabled:       cfg.Telemetry.Enabled,
		ServiceName:   cfg.App.Name,
		Environment:   cfg.App.Env,
		CollectorAddr: cfg.Telemetry.CollectorAddr,
		SampleRatio:   cfg.Telemetry.SampleRatio,
	})
	if err != nil {
		logger.Fatal("トレース初期化エラー", zap.Error(err))
	}

	// データベース
	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		logger.Fatal("データベース接続エラー", zap.Error(err))
	}
	defer db.Close()

	if _, err := postgres.RunMigrations(db.DB, cfg.Database.MigrationsPath); err != nil {
		logger.Fatal("マイグレーションエラー", zap.Error(err))
	}

	// メトリクス
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewWithRegistry(reg)

	checks := map[string]handler.Checker{
		"postgres": func(ctx context.Context) error { return postgres.Ping(ctx, db) },
	}

	reservationOpts := []application.ReservationOption{
		application.WithClock(clock.Real()),
		application.WithMetrics(m),
		application.WithTracer(tel.Tracer()),
	}

	// Redis（分散ロック）は任意
	var redisClient *goredis.Client
	if cfg.Redis.Enabled {
		redisClient, err = redisinfra.NewClient(&redisinfra.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			logger.Warn("Redisに接続できないため分散ロックを無効にします", zap.Error(err))
		} else {
			defer redisClient.Close()
			reservationOpts = append(reservationOpts, application.WithLockManager(
				redisinfra.NewLockManager(redisClient),
				application.LockConfig{
					TTL:        cfg.Booking.LockTTL,
					Retries:    cfg.Booking.LockRetries,
					RetryDelay: cfg.Booking.LockRetryDelay,
				},
			))
			checks["redis"] = func(ctx context.Context) error { return redisinfra.Ping(ctx, redisClient) }
		}
	}

	// 管理者通知
	var notifier ticket.Notifier
	if cfg.RabbitMQ.URL != "" {
		notifier = rabbitmq.NewTicketPublisher(rabbitmq.Config{
			URL:         cfg.RabbitMQ.URL,
			Queue:       cfg.RabbitMQ.TicketQueue,
			DialTimeout: cfg.RabbitMQ.DialTimeout,
		})
	} else {
		logger.Info("RABBITMQ_URL が未設定のため問い合わせ通知を無効にします")
	}

	// リポジトリとサービス
	txManager := postgres.NewTxManager(db)
	reservationRepo := postgres.NewReservationRepository(db)
	seatRepo := postgres.NewSeatRepository(db)
	userRepo := postgres.NewUserRepository(db)
	ticketRepo := postgres.NewTicketRepository(db)

	reservationService := application.NewReservationService(txManager, reservationRepo, seatRepo, userRepo, zone, reservationOpts...)
	seatService := application.NewSeatService(seatRepo, reservationService.Availability())
	userService := application.NewUserService(userRepo)
	ticketService := application.NewTicketService(ticketRepo, reservationRepo, seatRepo, userRepo, notifier, zone, clock.Real(), m)

	// 状態同期ワーカー
	reconciler := worker.NewStatusReconciler(reservationService, cfg.Booking.ReconcileInterval)
	go reconciler.Start(ctx)

	// HTTP
	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	middleware.SetupMiddleware(e, tel.Tracer())
	router.Register(e, router.Handlers{
		Health:      handler.NewHealthHandler(checks),
		Seat:        handler.NewSeatHandler(seatService, zone),
		Reservation: handler.NewReservationHandler(reservationService, zone),
		Ticket:      handler.NewTicketHandler(ticketService),
		User:        handler.NewUserHandler(userService),
		Admin:       handler.NewAdminHandler(reservationService, userService, ticketService),
	}, router.Options{
		JWT:         cfg.JWT,
		Provisioner: userService,
		MetricsAuth: cfg.Metrics,
		Metrics:     m,
		Gatherer:    reg,
	})

	go func() {
		logger.Info("サーバー起動", zap.String("port", cfg.Server.Port), zap.String("timezone", cfg.Booking.Timezone))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("サーバー起動エラー", zap.Error(err))
			stop()
		}
	}()

	// シグナル待機
	<-ctx.Done()
	logger.Info("サーバーをシャットダウンしています...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("サーバーシャットダウンエラー", zap.Error(err))
	}
	reconciler.Stop()
	if err := tel.Shutdown(shutdownCtx); err != nil {
		logger.Warn("トレースの送信に失敗", zap.Error(err))
	}

	logger.Info("サーバーが正常にシャットダウンしました")
}
