package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-seat-booking/internal/pkg/logger"
)

// Reconciler は終了済みの future 予約を did_not_come に更新するインターフェース
type Reconciler interface {
	ReconcileStatuses(ctx context.Context) (int, error)
}

// StatusReconciler は予約状態を定期的に同期するワーカー
type StatusReconciler struct {
	reservationService Reconciler
	interval           time.Duration
	stopOnce           sync.Once
	stopCh             chan struct{}
	doneCh             chan struct{}
}

// NewStatusReconciler は新しいワーカーを作成
func NewStatusReconciler(rs Reconciler, interval time.Duration) *StatusReconciler {
	return &StatusReconciler{
		reservationService: rs,
		interval:           interval,
		stopCh:             make(chan struct{}),
		doneCh:             make(chan struct{}),
	}
}

// Start はワーカーを開始する
// 起動直後に1回同期し、その後は interval ごとに同期する
func (r *StatusReconciler) Start(ctx context.Context) {
	logger.Info("予約状態の同期ワーカー開始", zap.Duration("interval", r.interval))

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	defer close(r.doneCh)

	r.reconcile(ctx)

	for {
		select {
		case <-ctx.Done():
			logger.Info("予約状態の同期ワーカー停止（コンテキストキャンセル）")
			return
		case <-r.stopCh:
			logger.Info("予約状態の同期ワーカー停止（シグナル受信）")
			return
		case <-ticker.C:
			r.reconcile(ctx)
		}
	}
}

// Stop はワーカーを停止し、終了を待つ
func (r *StatusReconciler) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
	<-r.doneCh
}

func (r *StatusReconciler) reconcile(ctx context.Context) {
	log := logger.Get()

	count, err := r.reservationService.ReconcileStatuses(ctx)
	if err != nil {
		log.Error("予約状態の同期に失敗", zap.Error(err))
		return
	}

	if count > 0 {
		log.Info("終了済みの予約を did_not_come に更新", zap.Int("count", count))
	} else {
		log.Debug("同期対象の予約なし")
	}
}
