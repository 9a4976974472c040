package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-seat-booking/internal/domain/transaction"
	"github.com/sanosuguru/go-seat-booking/internal/domain/user"
)

const userColumns = `id, email, login, first_name, last_name, role, verified, telegram_id, created_at, updated_at`

type userRow struct {
	ID         string    `db:"id"`
	Email      string    `db:"email"`
	Login      string    `db:"login"`
	FirstName  *string   `db:"first_name"`
	LastName   *string   `db:"last_name"`
	Role       string    `db:"role"`
	Verified   bool      `db:"verified"`
	TelegramID *string   `db:"telegram_id"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (r *userRow) toEntity() *user.User {
	return &user.User{
		ID: r.ID, Email: r.Email, Login: r.Login,
		FirstName: r.FirstName, LastName: r.LastName,
		Role: user.Role(r.Role), Verified: r.Verified, TelegramID: r.TelegramID,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

type UserRepository struct{ db *sqlx.DB }

func NewUserRepository(db *sqlx.DB) *UserRepository { return &UserRepository{db: db} }

func (r *UserRepository) GetByID(ctx context.Context, tx transaction.Tx, id string) (*user.User, error) {
	var row userRow
	if err := pick(r.db, tx).GetContext(ctx, &row, `SELECT `+userColumns+` FROM users WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrUserNotFound
		}
		return nil, fmt.Errorf("ユーザー取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var row userRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+userColumns+` FROM users WHERE email = $1`, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrUserNotFound
		}
		return nil, fmt.Errorf("ユーザー取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *UserRepository) List(ctx context.Context) ([]*user.User, error) {
	return r.list(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
}

func (r *UserRepository) ListAdmins(ctx context.Context) ([]*user.User, error) {
	return r.list(ctx, `SELECT `+userColumns+` FROM users WHERE role = 'admin' ORDER BY created_at`)
}

func (r *UserRepository) list(ctx context.Context, query string) ([]*user.User, error) {
	var rows []userRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("ユーザー一覧取得に失敗: %w", err)
	}
	users := make([]*user.User, len(rows))
	for i := range rows {
		users[i] = rows[i].toEntity()
	}
	return users, nil
}

func (r *UserRepository) CreateIfAbsent(ctx context.Context, u *user.User) (bool, error) {
	query := `
		INSERT INTO users (id, email, login, first_name, last_name, role, verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`
	result, err := r.db.ExecContext(ctx, query,
		u.ID, u.Email, u.Login, u.FirstName, u.LastName, string(u.Role), u.Verified, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if mapped := mapUserWriteError(err); mapped != nil {
			return false, mapped
		}
		return false, fmt.Errorf("ユーザー作成に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	query := `UPDATE users SET email = $1, first_name = $2, last_name = $3, role = $4, verified = $5, updated_at = $6 WHERE id = $7`
	result, err := r.db.ExecContext(ctx, query, u.Email, u.FirstName, u.LastName, string(u.Role), u.Verified, u.UpdatedAt, u.ID)
	if err != nil {
		if mapped := mapUserWriteError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("ユーザー更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ユーザー削除に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

// mapUserWriteError は一意制約違反をドメインエラーに変換する
func mapUserWriteError(err error) error {
	if pgCode(err) != codeUniqueViolation {
		return nil
	}
	if pgConstraint(err) == "users_login_key" {
		return user.ErrLoginAlreadyExists
	}
	return user.ErrEmailAlreadyExists
}

var _ user.Repository = (*UserRepository)(nil)
