package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-seat-booking/internal/domain/ticket"
)

const ticketColumns = `id, user_id, reservation_id, seat_id, seat_name, theme, message, status, made_on`

type ticketRow struct {
	ID            string    `db:"id"`
	UserID        string    `db:"user_id"`
	ReservationID *string   `db:"reservation_id"`
	SeatID        *string   `db:"seat_id"`
	SeatName      *string   `db:"seat_name"`
	Theme         string    `db:"theme"`
	Message       string    `db:"message"`
	Status        string    `db:"status"`
	MadeOn        time.Time `db:"made_on"`
}

func (r *ticketRow) toEntity() *ticket.Ticket {
	return &ticket.Ticket{
		ID: r.ID, UserID: r.UserID, ReservationID: r.ReservationID,
		SeatID: r.SeatID, SeatName: r.SeatName,
		Theme: ticket.Theme(r.Theme), Message: r.Message,
		Status: ticket.Status(r.Status), MadeOn: r.MadeOn,
	}
}

type TicketRepository struct{ db *sqlx.DB }

func NewTicketRepository(db *sqlx.DB) *TicketRepository { return &TicketRepository{db: db} }

func (r *TicketRepository) Create(ctx context.Context, t *ticket.Ticket) error {
	query := `INSERT INTO tickets (user_id, reservation_id, seat_id, seat_name, theme, message, status, made_on) VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	if err := r.db.QueryRowContext(ctx, query, t.UserID, t.ReservationID, t.SeatID, t.SeatName, string(t.Theme), t.Message, string(t.Status), t.MadeOn).Scan(&t.ID); err != nil {
		return fmt.Errorf("問い合わせ作成に失敗: %w", err)
	}
	return nil
}

func (r *TicketRepository) GetByID(ctx context.Context, id string) (*ticket.Ticket, error) {
	var row ticketRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+ticketColumns+` FROM tickets WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ticket.ErrTicketNotFound
		}
		return nil, fmt.Errorf("問い合わせ取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *TicketRepository) ListByUser(ctx context.Context, userID string) ([]*ticket.Ticket, error) {
	return r.list(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE user_id = $1 ORDER BY made_on DESC`, userID)
}

func (r *TicketRepository) ListAll(ctx context.Context) ([]*ticket.Ticket, error) {
	return r.list(ctx, `SELECT `+ticketColumns+` FROM tickets ORDER BY made_on DESC`)
}

func (r *TicketRepository) list(ctx context.Context, query string, args ...interface{}) ([]*ticket.Ticket, error) {
	var rows []ticketRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("問い合わせ一覧取得に失敗: %w", err)
	}
	tickets := make([]*ticket.Ticket, len(rows))
	for i := range rows {
		tickets[i] = rows[i].toEntity()
	}
	return tickets, nil
}

func (r *TicketRepository) UpdateStatus(ctx context.Context, id string, status ticket.Status) error {
	result, err := r.db.ExecContext(ctx, `UPDATE tickets SET status = $1 WHERE id = $2`, string(status), id)
	if err != nil {
		return fmt.Errorf("問い合わせ状態の更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ticket.ErrTicketNotFound
	}
	return nil
}

var _ ticket.Repository = (*TicketRepository)(nil)
