package reservation

import (
	"context"

	"github.com/sanosuguru/go-seat-booking/internal/domain/transaction"
	"github.com/sanosuguru/go-seat-booking/internal/pkg/wallclock"
)

// Repository は予約リポジトリのインターフェース
// tx を受け取る読み取りメソッドは tx が nil の場合トランザクション外で実行する
type Repository interface {
	// Create は新しい予約を作成する（トランザクション必須）
	Create(ctx context.Context, tx transaction.Tx, r *Reservation) error

	// GetByID はIDから予約を取得する
	GetByID(ctx context.Context, id string) (*Reservation, error)

	// GetForUpdate は予約を行ロック付きで取得する（トランザクション必須）
	// ロックはトランザクション終了まで保持される
	GetForUpdate(ctx context.Context, tx transaction.Tx, id string) (*Reservation, error)

	// ListBySeat は座席の予約を状態に関係なくすべて取得する
	ListBySeat(ctx context.Context, tx transaction.Tx, seatID string) ([]*Reservation, error)

	// ListOverlapping は [start, end) と重なる予約を状態に関係なく取得する
	ListOverlapping(ctx context.Context, tx transaction.Tx, start, end wallclock.Time) ([]*Reservation, error)

	// ListStale は now 時点で終了済みなのに future のままの予約を取得する
	ListStale(ctx context.Context, tx transaction.Tx, now wallclock.Time) ([]*Reservation, error)

	// ListViewsByUser はユーザーの予約を座席名付きで新しい順に取得する
	ListViewsByUser(ctx context.Context, userID string) ([]*View, error)

	// ListAllViews はすべての予約を座席名付きで新しい順に取得する
	ListAllViews(ctx context.Context) ([]*View, error)

	// FindHeldByUser は終了時刻が now より後で closed でない予約を1件取得する
	FindHeldByUser(ctx context.Context, tx transaction.Tx, userID string, now wallclock.Time) (*Reservation, error)

	// FindHeldByUserExcept は exceptID 以外で FindHeldByUser の条件に当てはまる予約を1件取得する
	FindHeldByUserExcept(ctx context.Context, tx transaction.Tx, userID, exceptID string, now wallclock.Time) (*Reservation, error)

	// NextStartAfter は他ユーザーの closed でない予約のうち after より後に始まる最も早い開始時刻を返す
	// 該当がなければ nil を返す
	NextStartAfter(ctx context.Context, userID string, after wallclock.Time) (*wallclock.Time, error)

	// Update は予約の区間と状態を更新する（トランザクション必須）
	Update(ctx context.Context, tx transaction.Tx, r *Reservation) error

	// UpdateStatuses は状態が from の予約のうち ids に含まれるものを to に一括更新する（トランザクション必須）
	// 更新件数を返す
	UpdateStatuses(ctx context.Context, tx transaction.Tx, ids []string, from, to Status) (int, error)

	// Delete は予約を物理削除する
	Delete(ctx context.Context, id string) error
}
