package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sanosuguru/go-seat-booking/internal/domain/reservation"
	"github.com/sanosuguru/go-seat-booking/internal/domain/transaction"
	"github.com/sanosuguru/go-seat-booking/internal/pkg/wallclock"
)

const reservationColumns = `id, user_id, seat_id, start_at, end_at, status, created_at, updated_at`

type reservationRow struct {
	ID        string         `db:"id"`
	UserID    string         `db:"user_id"`
	SeatID    string         `db:"seat_id"`
	StartAt   wallclock.Time `db:"start_at"`
	EndAt     wallclock.Time `db:"end_at"`
	Status    string         `db:"status"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

type reservationViewRow struct {
	reservationRow
	SeatName string `db:"seat_name"`
}

type ReservationRepository struct{ db *sqlx.DB }

func NewReservationRepository(db *sqlx.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

func (r *ReservationRepository) Create(ctx context.Context, tx transaction.Tx, res *reservation.Reservation) error {
	sqlTx := UnwrapTx(tx)
	if sqlTx == nil {
		return fmt.Errorf("予約作成にはトランザクションが必要です")
	}
	query := `INSERT INTO reservations (user_id, seat_id, start_at, end_at, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	if err := sqlTx.QueryRowContext(ctx, query, res.UserID, res.SeatID, res.Start, res.End, string(res.Status), res.CreatedAt, res.UpdatedAt).Scan(&res.ID); err != nil {
		return r.mapWriteError(err, res)
	}
	return nil
}

func (r *ReservationRepository) GetByID(ctx context.Context, id string) (*reservation.Reservation, error) {
	var row reservationRow
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, reservation.ErrReservationNotFound
		}
		return nil, fmt.Errorf("予約取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *ReservationRepository) GetForUpdate(ctx context.Context, tx transaction.Tx, id string) (*reservation.Reservation, error) {
	sqlTx := UnwrapTx(tx)
	if sqlTx == nil {
		return nil, fmt.Errorf("行ロックにはトランザクションが必要です")
	}
	var row reservationRow
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1 FOR UPDATE`
	if err := sqlTx.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, reservation.ErrReservationNotFound
		}
		return nil, fmt.Errorf("予約取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *ReservationRepository) ListBySeat(ctx context.Context, tx transaction.Tx, seatID string) ([]*reservation.Reservation, error) {
	var rows []reservationRow
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE seat_id = $1 ORDER BY start_at`
	if err := pick(r.db, tx).SelectContext(ctx, &rows, query, seatID); err != nil {
		return nil, fmt.Errorf("座席の予約一覧取得に失敗: %w", err)
	}
	return toEntities(rows), nil
}

func (r *ReservationRepository) ListOverlapping(ctx context.Context, tx transaction.Tx, start, end wallclock.Time) ([]*reservation.Reservation, error) {
	var rows []reservationRow
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE start_at < $2 AND end_at > $1 ORDER BY start_at`
	if err := pick(r.db, tx).SelectContext(ctx, &rows, query, start, end); err != nil {
		return nil, fmt.Errorf("時間帯の予約一覧取得に失敗: %w", err)
	}
	return toEntities(rows), nil
}

func (r *ReservationRepository) ListStale(ctx context.Context, tx transaction.Tx, now wallclock.Time) ([]*reservation.Reservation, error) {
	var rows []reservationRow
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE status = 'future' AND end_at <= $1 ORDER BY end_at FOR UPDATE`
	if err := pick(r.db, tx).SelectContext(ctx, &rows, query, now); err != nil {
		return nil, fmt.Errorf("期限切れ予約の取得に失敗: %w", err)
	}
	return toEntities(rows), nil
}

func (r *ReservationRepository) ListViewsByUser(ctx context.Context, userID string) ([]*reservation.View, error) {
	var rows []reservationViewRow
	query := `SELECT r.id, r.user_id, r.seat_id, r.start_at, r.end_at, r.status, r.created_at, r.updated_at, s.name AS seat_name
		FROM reservations r JOIN seats s ON s.id = r.seat_id
		WHERE r.user_id = $1 ORDER BY r.created_at DESC`
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("ユーザーの予約一覧取得に失敗: %w", err)
	}
	return toViews(rows), nil
}

func (r *ReservationRepository) ListAllViews(ctx context.Context) ([]*reservation.View, error) {
	var rows []reservationViewRow
	query := `SELECT r.id, r.user_id, r.seat_id, r.start_at, r.end_at, r.status, r.created_at, r.updated_at, s.name AS seat_name
		FROM reservations r JOIN seats s ON s.id = r.seat_id
		ORDER BY r.created_at DESC`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("予約一覧取得に失敗: %w", err)
	}
	return toViews(rows), nil
}

func (r *ReservationRepository) FindHeldByUser(ctx context.Context, tx transaction.Tx, userID string, now wallclock.Time) (*reservation.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations
		WHERE user_id = $1 AND end_at > $2 AND status <> 'closed'
		ORDER BY start_at LIMIT 1`
	return r.findOne(ctx, tx, query, userID, now)
}

func (r *ReservationRepository) FindHeldByUserExcept(ctx context.Context, tx transaction.Tx, userID, exceptID string, now wallclock.Time) (*reservation.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations
		WHERE user_id = $1 AND end_at > $2 AND status <> 'closed' AND id <> $3
		ORDER BY start_at LIMIT 1`
	return r.findOne(ctx, tx, query, userID, now, exceptID)
}

func (r *ReservationRepository) findOne(ctx context.Context, tx transaction.Tx, query string, args ...interface{}) (*reservation.Reservation, error) {
	var row reservationRow
	if err := pick(r.db, tx).GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, reservation.ErrReservationNotFound
		}
		return nil, fmt.Errorf("有効な予約の取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *ReservationRepository) NextStartAfter(ctx context.Context, userID string, after wallclock.Time) (*wallclock.Time, error) {
	var next wallclock.Time
	query := `SELECT start_at FROM reservations
		WHERE user_id <> $1 AND start_at > $2 AND status <> 'closed'
		ORDER BY start_at LIMIT 1`
	if err := r.db.GetContext(ctx, &next, query, userID, after); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("次の予約開始時刻の取得に失敗: %w", err)
	}
	return &next, nil
}

func (r *ReservationRepository) Update(ctx context.Context, tx transaction.Tx, res *reservation.Reservation) error {
	sqlTx := UnwrapTx(tx)
	if sqlTx == nil {
		return fmt.Errorf("予約更新にはトランザクションが必要です")
	}
	query := `UPDATE reservations SET start_at = $1, end_at = $2, status = $3, updated_at = $4 WHERE id = $5`
	result, err := sqlTx.ExecContext(ctx, query, res.Start, res.End, string(res.Status), res.UpdatedAt, res.ID)
	if err != nil {
		return r.mapWriteError(err, res)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return reservation.ErrReservationNotFound
	}
	return nil
}

func (r *ReservationRepository) UpdateStatuses(ctx context.Context, tx transaction.Tx, ids []string, from, to reservation.Status) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	sqlTx := UnwrapTx(tx)
	if sqlTx == nil {
		return 0, fmt.Errorf("状態の一括更新にはトランザクションが必要です")
	}
	query := `UPDATE reservations SET status = $1, updated_at = NOW() WHERE id = ANY($2) AND status = $3`
	result, err := sqlTx.ExecContext(ctx, query, string(to), pq.Array(ids), string(from))
	if err != nil {
		return 0, fmt.Errorf("予約状態の一括更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	return int(rows), nil
}

func (r *ReservationRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reservations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("予約削除に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return reservation.ErrReservationNotFound
	}
	return nil
}

// mapWriteError は書き込み時の制約違反をドメインエラーに変換する
func (r *ReservationRepository) mapWriteError(err error, res *reservation.Reservation) error {
	switch pgCode(err) {
	case codeExclusionViolation:
		return &reservation.SeatUnavailableError{SeatID: res.SeatID, Start: res.Start, End: res.End}
	case codeForeignKeyViolation:
		return fmt.Errorf("座席またはユーザーが存在しません: %w", err)
	}
	return fmt.Errorf("予約の保存に失敗: %w", err)
}

func (row *reservationRow) toEntity() *reservation.Reservation {
	return &reservation.Reservation{
		ID: row.ID, UserID: row.UserID, SeatID: row.SeatID,
		Start: row.StartAt, End: row.EndAt,
		Status:    reservation.Status(row.Status),
		CreatedAt: row.CreatedAt, UpdatedAt: row.UpdatedAt,
	}
}

func toEntities(rows []reservationRow) []*reservation.Reservation {
	result := make([]*reservation.Reservation, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result
}

func toViews(rows []reservationViewRow) []*reservation.View {
	result := make([]*reservation.View, len(rows))
	for i := range rows {
		result[i] = &reservation.View{Reservation: rows[i].toEntity(), SeatName: rows[i].SeatName}
	}
	return result
}

var _ reservation.Repository = (*ReservationRepository)(nil)
