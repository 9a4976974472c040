package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-seat-booking/internal/domain/reservation"
	"github.com/sanosuguru/go-seat-booking/internal/domain/seat"
	"github.com/sanosuguru/go-seat-booking/internal/domain/transaction"
	"github.com/sanosuguru/go-seat-booking/internal/domain/user"
	redisinfra "github.com/sanosuguru/go-seat-booking/internal/infrastructure/redis"
	"github.com/sanosuguru/go-seat-booking/internal/pkg/clock"
	"github.com/sanosuguru/go-seat-booking/internal/pkg/logger"
	"github.com/sanosuguru/go-seat-booking/internal/pkg/metrics"
	"github.com/sanosuguru/go-seat-booking/internal/pkg/wallclock"
)

// ErrLockBusy は同じ座席またはユーザーの予約処理が他で進行中であることを表す
var ErrLockBusy = errors.New("座席またはユーザーが他のリクエストで処理中です")

// LockConfig は分散ロックの取得設定
type LockConfig struct {
	TTL        time.Duration
	Retries    int
	RetryDelay time.Duration
}

var DefaultLockConfig = LockConfig{TTL: 10 * time.Second, Retries: 20, RetryDelay: 50 * time.Millisecond}

// ReservationOption は ReservationService の任意設定
type ReservationOption func(*ReservationService)

// WithLockManager は複数インスタンス間の排他に分散ロックを使う
func WithLockManager(lm redisinfra.LockManagerInterface, cfg LockConfig) ReservationOption {
	return func(s *ReservationService) {
		s.lockManager = lm
		s.lockCfg = cfg
	}
}

func WithClock(c clock.Clock) ReservationOption {
	return func(s *ReservationService) { s.clock = c }
}

func WithMetrics(m *metrics.Metrics) ReservationOption {
	return func(s *ReservationService) { s.metrics = m }
}

func WithTracer(t trace.Tracer) ReservationOption {
	return func(s *ReservationService) { s.tracer = t }
}

// ReservationService は予約のライフサイクルを管理する
type ReservationService struct {
	txManager       transaction.Manager
	reservationRepo reservation.Repository
	seatRepo        seat.Repository
	userRepo        user.Repository
	availability    *AvailabilityService
	zone            *wallclock.Zone
	clock           clock.Clock
	lockManager     redisinfra.LockManagerInterface
	lockCfg         LockConfig
	metrics         *metrics.Metrics
	tracer          trace.Tracer
}

func NewReservationService(txm transaction.Manager, rr reservation.Repository, sr seat.Repository, ur user.Repository, zone *wallclock.Zone, opts ...ReservationOption) *ReservationService {
	s := &ReservationService{
		txManager:       txm,
		reservationRepo: rr,
		seatRepo:        sr,
		userRepo:        ur,
		zone:            zone,
		clock:           clock.Real(),
		lockCfg:         DefaultLockConfig,
		tracer:          noop.NewTracerProvider().Tracer(""),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.availability = NewAvailabilityService(rr, zone, s.clock)
	return s
}

// Availability は同じ時計とタイムゾーンを共有する空き状況サービスを返す
func (s *ReservationService) Availability() *AvailabilityService {
	return s.availability
}

func (s *ReservationService) now() wallclock.Time {
	return s.zone.Now(s.clock.Now())
}

type CreateReservationInput struct {
	UserID string
	SeatID string
	Start  wallclock.Time
	End    wallclock.Time
}

// CreateReservation は予約を作成する
// 座席の空き確認、ユーザーの有効予約確認の順に判定し、いずれかで拒否した場合は何も書き込まない
func (s *ReservationService) CreateReservation(ctx context.Context, in CreateReservationInput) (*reservation.Reservation, error) {
	ctx, span := s.tracer.Start(ctx, "ReservationService.CreateReservation", trace.WithAttributes(
		attribute.String("seat_id", in.SeatID),
		attribute.String("user_id", in.UserID),
	))
	defer span.End()

	res, err := s.createReservation(ctx, in)
	s.recordOutcome(err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	logger.FromContext(ctx).Info("予約を作成しました",
		zap.String("reservation_id", res.ID),
		zap.String("seat_id", res.SeatID),
		zap.String("user_id", res.UserID),
		zap.Stringer("start", res.Start),
		zap.Stringer("end", res.End),
	)
	return res, nil
}

func (s *ReservationService) createReservation(ctx context.Context, in CreateReservationInput) (*reservation.Reservation, error) {
	now := s.now()
	res := reservation.NewReservation(in.UserID, in.SeatID, in.Start, in.End, now)
	if err := res.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.seatRepo.GetByID(ctx, in.SeatID); err != nil {
		return nil, err
	}

	release, err := s.acquireLocks(ctx, in.SeatID, in.UserID)
	if err != nil {
		return nil, err
	}
	defer release()

	err = transaction.Run(ctx, s.txManager, func(tx transaction.Tx) error {
		// 座席、ユーザーの順にロックする
		if err := s.txManager.Lock(ctx, tx, "seat:"+in.SeatID); err != nil {
			return err
		}
		if err := s.txManager.Lock(ctx, tx, "user:"+in.UserID); err != nil {
			return err
		}

		if _, err := s.userRepo.GetByID(ctx, tx, in.UserID); err != nil {
			return err
		}
		if err := s.reconcileSeat(ctx, tx, in.SeatID, now); err != nil {
			return err
		}

		available, err := s.availability.IsSeatAvailable(ctx, tx, in.SeatID, res.Start, res.End)
		if err != nil {
			return err
		}
		if !available {
			return &reservation.SeatUnavailableError{SeatID: in.SeatID, Start: res.Start, End: res.End}
		}

		held, err := s.hasHeld(ctx, tx, in.UserID, now)
		if err != nil {
			return err
		}
		if held {
			return &reservation.UserHasActiveReservationError{UserID: in.UserID}
		}

		return s.reservationRepo.Create(ctx, tx, res)
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// acquireLocks は分散ロックを座席、ユーザーの順に取得する
// 分散ロックが無効な場合は何もしない
func (s *ReservationService) acquireLocks(ctx context.Context, seatID, userID string) (func(), error) {
	if s.lockManager == nil {
		return func() {}, nil
	}
	seatLock, err := s.acquireLock(ctx, "seat", seatID)
	if err != nil {
		return nil, err
	}
	userLock, err := s.acquireLock(ctx, "user", userID)
	if err != nil {
		releaseLock(seatLock)
		return nil, err
	}
	return func() {
		releaseLock(userLock)
		releaseLock(seatLock)
	}, nil
}

func (s *ReservationService) acquireLock(ctx context.Context, scope, id string) (redisinfra.Lock, error) {
	start := time.Now()
	lock, err := s.lockManager.AcquireLockWithRetry(ctx, "reservation:"+scope+":"+id, s.lockCfg.TTL, s.lockCfg.Retries, s.lockCfg.RetryDelay)
	status := "success"
	if err != nil {
		status = "failed"
	}
	if s.metrics != nil {
		s.metrics.LockDuration.WithLabelValues(scope, status).Observe(time.Since(start).Seconds())
	}
	if err != nil {
		if errors.Is(err, redisinfra.ErrLockNotAcquired) {
			return nil, ErrLockBusy
		}
		return nil, fmt.Errorf("ロック取得に失敗: %w", err)
	}
	return lock, nil
}

func releaseLock(l redisinfra.Lock) {
	// リクエストのキャンセル後も解放できるよう独立したコンテキストを使う
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := l.Release(ctx); err != nil {
		logger.Warn("ロック解放に失敗", zap.Error(err))
	}
}

func (s *ReservationService) recordOutcome(err error) {
	if s.metrics == nil {
		return
	}
	outcome := metrics.OutcomeSuccess
	switch {
	case err == nil:
	case errors.Is(err, reservation.ErrSeatUnavailable):
		outcome = metrics.OutcomeSeatUnavailable
	case errors.Is(err, reservation.ErrUserHasActiveReservation):
		outcome = metrics.OutcomeUserHasActive
	case errors.Is(err, ErrLockBusy):
		outcome = metrics.OutcomeLockFailed
	default:
		outcome = metrics.OutcomeError
	}
	s.metrics.ReservationsTotal.WithLabelValues(outcome).Inc()
}

// reconcileSeat は座席の期限切れ future を did_not_come に更新する
func (s *ReservationService) reconcileSeat(ctx context.Context, tx transaction.Tx, seatID string, now wallclock.Time) error {
	rs, err := s.reservationRepo.ListBySeat(ctx, tx, seatID)
	if err != nil {
		return err
	}
	var ids []string
	for _, r := range rs {
		if r.Reconcile(now) {
			ids = append(ids, r.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	_, err = s.reservationRepo.UpdateStatuses(ctx, tx, ids, reservation.StatusFuture, reservation.StatusDidNotCome)
	return err
}

func (s *ReservationService) hasHeld(ctx context.Context, tx transaction.Tx, userID string, now wallclock.Time) (bool, error) {
	_, err := s.reservationRepo.FindHeldByUser(ctx, tx, userID, now)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, reservation.ErrReservationNotFound) {
		return false, nil
	}
	return false, err
}

// HasActiveOrFutureReservation はユーザーが終了前かつ未キャンセルの予約を持つかを返す
func (s *ReservationService) HasActiveOrFutureReservation(ctx context.Context, userID string) (bool, error) {
	return s.hasHeld(ctx, nil, userID, s.now())
}

// GetActiveReservation はユーザーの有効な予約を座席名付きで返す
func (s *ReservationService) GetActiveReservation(ctx context.Context, userID string) (*reservation.View, error) {
	now := s.now()
	r, err := s.reservationRepo.FindHeldByUser(ctx, nil, userID, now)
	if err != nil {
		return nil, err
	}
	st, err := s.seatRepo.GetByID(ctx, r.SeatID)
	if err != nil {
		return nil, err
	}
	r.Status = r.EffectiveStatus(now)
	return &reservation.View{Reservation: r, SeatName: st.Name}, nil
}

// GetMaximumExtensionTime は start 以降で他ユーザーの予約が始まる最も早い時刻を返す
// 該当する予約がなければ Unbounded を返す
func (s *ReservationService) GetMaximumExtensionTime(ctx context.Context, userID string, start wallclock.Time) (reservation.Extension, error) {
	next, err := s.reservationRepo.NextStartAfter(ctx, userID, start)
	if err != nil {
		return reservation.Extension{}, err
	}
	if next == nil {
		return reservation.Extension{Unbounded: true}, nil
	}
	return reservation.Extension{Until: *next}, nil
}

// GetReservation は予約を取得する（本人または管理者のみ）
func (s *ReservationService) GetReservation(ctx context.Context, actor Actor, id string) (*reservation.Reservation, error) {
	r, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(r.UserID) {
		return nil, reservation.ErrNotOwner
	}
	r.Status = r.EffectiveStatus(s.now())
	return r, nil
}

// ListUserReservations はユーザーの予約を新しい順に返す
func (s *ReservationService) ListUserReservations(ctx context.Context, userID string) ([]*reservation.View, error) {
	views, err := s.reservationRepo.ListViewsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.present(views), nil
}

// ListAllReservations はすべての予約を新しい順に返す
func (s *ReservationService) ListAllReservations(ctx context.Context) ([]*reservation.View, error) {
	views, err := s.reservationRepo.ListAllViews(ctx)
	if err != nil {
		return nil, err
	}
	return s.present(views), nil
}

func (s *ReservationService) present(views []*reservation.View) []*reservation.View {
	now := s.now()
	for _, v := range views {
		v.Status = v.EffectiveStatus(now)
	}
	return views
}

// UpdateReservation は予約を部分更新する
// 本人は closed への変更のみ可能で、それ以外の状態変更は管理者に限る
// 座席の重なりは DB の制約で、ユーザーごとの有効予約1件は mutate で検査する
func (s *ReservationService) UpdateReservation(ctx context.Context, actor Actor, id string, patch reservation.Patch) (*reservation.Reservation, error) {
	if patch.Status != nil && *patch.Status != reservation.StatusClosed && !actor.IsAdmin() {
		return nil, reservation.ErrStatusChangeNotAllowed
	}
	return s.mutate(ctx, actor, id, func(_ transaction.Tx, r *reservation.Reservation) error {
		return r.Apply(patch)
	})
}

// CheckIn は来場を確認し予約を active にする（管理者操作）
// 予約者の本人確認が済んでいない場合は拒否する
func (s *ReservationService) CheckIn(ctx context.Context, id string) (*reservation.Reservation, error) {
	admin := Actor{Role: user.RoleAdmin}
	return s.mutate(ctx, admin, id, func(tx transaction.Tx, r *reservation.Reservation) error {
		u, err := s.userRepo.GetByID(ctx, tx, r.UserID)
		if err != nil {
			return err
		}
		if !u.Verified {
			return user.ErrUserNotVerified
		}
		return r.CheckIn()
	})
}

// Cancel は予約をキャンセルする（本人または管理者）
func (s *ReservationService) Cancel(ctx context.Context, actor Actor, id string) (*reservation.Reservation, error) {
	return s.mutate(ctx, actor, id, func(_ transaction.Tx, r *reservation.Reservation) error {
		return r.Close()
	})
}

// mutate は予約を行ロック付きで読み直し、期限切れを反映してから fn を適用して保存する
// 読み込みから書き込みまでを1トランザクションで行う
func (s *ReservationService) mutate(ctx context.Context, actor Actor, id string, fn func(transaction.Tx, *reservation.Reservation) error) (*reservation.Reservation, error) {
	// ロック対象のユーザーを決めるための読み込み（user_id は変更されない）
	current, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(current.UserID) {
		return nil, reservation.ErrNotOwner
	}

	var updated *reservation.Reservation
	err = transaction.Run(ctx, s.txManager, func(tx transaction.Tx) error {
		// 作成と同じくユーザー、行の順にロックする
		if err := s.txManager.Lock(ctx, tx, "user:"+current.UserID); err != nil {
			return err
		}
		r, err := s.reservationRepo.GetForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}

		now := s.now()
		r.Reconcile(now)
		wasHeld := r.HoldsUser(now)
		if err := fn(tx, r); err != nil {
			return err
		}
		if !wasHeld && r.HoldsUser(now) {
			other, err := s.reservationRepo.FindHeldByUserExcept(ctx, tx, r.UserID, r.ID, now)
			switch {
			case err == nil:
				logger.FromContext(ctx).Warn("有効な予約が既にあるため変更を拒否",
					zap.String("reservation_id", r.ID),
					zap.String("held_reservation_id", other.ID),
				)
				return &reservation.UserHasActiveReservationError{UserID: r.UserID}
			case !errors.Is(err, reservation.ErrReservationNotFound):
				return err
			}
		}

		if err := s.reservationRepo.Update(ctx, tx, r); err != nil {
			return err
		}
		updated = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteReservation は予約を物理削除する（管理者操作）
func (s *ReservationService) DeleteReservation(ctx context.Context, id string) error {
	return s.reservationRepo.Delete(ctx, id)
}

// ReconcileStatuses は終了済みの future をすべて did_not_come に更新する
// 1トランザクションで実行し、何度呼んでも結果は同じ
func (s *ReservationService) ReconcileStatuses(ctx context.Context) (int, error) {
	ctx, span := s.tracer.Start(ctx, "ReservationService.ReconcileStatuses")
	defer span.End()

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	now := s.now()
	stale, err := s.reservationRepo.ListStale(ctx, tx, now)
	if err != nil {
		return 0, err
	}
	ids := make([]string, 0, len(stale))
	for _, r := range stale {
		if r.Reconcile(now) {
			ids = append(ids, r.ID)
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}
	n, err := s.reservationRepo.UpdateStatuses(ctx, tx, ids, reservation.StatusFuture, reservation.StatusDidNotCome)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("コミットに失敗: %w", err)
	}

	span.SetAttributes(attribute.Int("reconciled", n))
	if s.metrics != nil && n > 0 {
		s.metrics.ReconciledReservations.Add(float64(n))
	}
	return n, nil
}
