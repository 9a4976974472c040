package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-seat-booking/internal/domain/seat"
)

const seatColumns = `id, name, type, x, y, has_computer, has_water, has_kitchen, has_smart_desk, is_quiet, is_talk_room, created_at, updated_at`

type seatRow struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Type         string    `db:"type"`
	X            float64   `db:"x"`
	Y            float64   `db:"y"`
	HasComputer  bool      `db:"has_computer"`
	HasWater     bool      `db:"has_water"`
	HasKitchen   bool      `db:"has_kitchen"`
	HasSmartDesk bool      `db:"has_smart_desk"`
	IsQuiet      bool      `db:"is_quiet"`
	IsTalkRoom   bool      `db:"is_talk_room"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r *seatRow) toEntity() *seat.Seat {
	return &seat.Seat{
		ID: r.ID, Name: r.Name, Type: r.Type, X: r.X, Y: r.Y,
		HasComputer: r.HasComputer, HasWater: r.HasWater, HasKitchen: r.HasKitchen,
		HasSmartDesk: r.HasSmartDesk, IsQuiet: r.IsQuiet, IsTalkRoom: r.IsTalkRoom,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

func seatArgs(s *seat.Seat) []interface{} {
	return []interface{}{
		s.Name, s.Type, s.X, s.Y, s.HasComputer, s.HasWater, s.HasKitchen,
		s.HasSmartDesk, s.IsQuiet, s.IsTalkRoom, s.CreatedAt, s.UpdatedAt,
	}
}

const seatInsertColumns = `name, type, x, y, has_computer, has_water, has_kitchen, has_smart_desk, is_quiet, is_talk_room, created_at, updated_at`

type SeatRepository struct{ db *sqlx.DB }

func NewSeatRepository(db *sqlx.DB) *SeatRepository { return &SeatRepository{db: db} }

func (r *SeatRepository) Create(ctx context.Context, s *seat.Seat) error {
	query := `INSERT INTO seats (` + seatInsertColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING id`
	if err := r.db.QueryRowContext(ctx, query, seatArgs(s)...).Scan(&s.ID); err != nil {
		return fmt.Errorf("座席作成に失敗: %w", err)
	}
	return nil
}

func (r *SeatRepository) CreateBulk(ctx context.Context, seats []*seat.Seat) error {
	if len(seats) == 0 {
		return nil
	}

	// バッチサイズごとに分割してマルチバリューINSERTを実行
	const batchSize = 500
	for i := 0; i < len(seats); i += batchSize {
		end := i + batchSize
		if end > len(seats) {
			end = len(seats)
		}
		if err := r.createBulkBatch(ctx, seats[i:end]); err != nil {
			return err
		}
	}
	return nil
}

// createBulkBatch はバッチ単位でマルチバリューINSERTを実行し、採番されたIDを書き戻す
func (r *SeatRepository) createBulkBatch(ctx context.Context, seats []*seat.Seat) error {
	const cols = 12
	args := make([]interface{}, 0, len(seats)*cols)
	placeholders := make([]string, 0, len(seats))

	for i, s := range seats {
		ph := make([]string, cols)
		for j := range ph {
			ph[j] = fmt.Sprintf("$%d", i*cols+j+1)
		}
		placeholders = append(placeholders, "("+strings.Join(ph, ", ")+")")
		args = append(args, seatArgs(s)...)
	}

	query := `INSERT INTO seats (` + seatInsertColumns + `) VALUES ` + strings.Join(placeholders, ", ") + ` RETURNING id`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return fmt.Errorf("座席一括作成に失敗: %w", err)
	}
	// RETURNING の順序は VALUES の順序と一致する
	for i := range ids {
		if i < len(seats) {
			seats[i].ID = ids[i]
		}
	}
	return nil
}

func (r *SeatRepository) GetByID(ctx context.Context, id string) (*seat.Seat, error) {
	query := `SELECT ` + seatColumns + ` FROM seats WHERE id = $1`
	var row seatRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, seat.ErrSeatNotFound
		}
		return nil, fmt.Errorf("座席取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *SeatRepository) List(ctx context.Context) ([]*seat.Seat, error) {
	query := `SELECT ` + seatColumns + ` FROM seats ORDER BY name`
	var rows []seatRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("座席一覧取得に失敗: %w", err)
	}
	seats := make([]*seat.Seat, len(rows))
	for i := range rows {
		seats[i] = rows[i].toEntity()
	}
	return seats, nil
}

func (r *SeatRepository) Update(ctx context.Context, s *seat.Seat) error {
	query := `UPDATE seats SET name = $1, type = $2, x = $3, y = $4, has_computer = $5, has_water = $6,
		has_kitchen = $7, has_smart_desk = $8, is_quiet = $9, is_talk_room = $10, updated_at = $11 WHERE id = $12`
	result, err := r.db.ExecContext(ctx, query,
		s.Name, s.Type, s.X, s.Y, s.HasComputer, s.HasWater, s.HasKitchen,
		s.HasSmartDesk, s.IsQuiet, s.IsTalkRoom, s.UpdatedAt, s.ID)
	if err != nil {
		return fmt.Errorf("座席更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return seat.ErrSeatNotFound
	}
	return nil
}

func (r *SeatRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM seats WHERE id = $1`, id)
	if err != nil {
		if pgCode(err) == codeForeignKeyViolation {
			return seat.ErrSeatInUse
		}
		return fmt.Errorf("座席削除に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return seat.ErrSeatNotFound
	}
	return nil
}

var _ seat.Repository = (*SeatRepository)(nil)
