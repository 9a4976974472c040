package user

import (
	"context"

	"github.com/sanosuguru/go-seat-booking/internal/domain/transaction"
)

// Repository はユーザーリポジトリのインターフェース
type Repository interface {
	// GetByID はIDからユーザーを取得する（tx が nil の場合はトランザクション外）
	GetByID(ctx context.Context, tx transaction.Tx, id string) (*User, error)

	// GetByEmail はメールアドレスからユーザーを取得する
	GetByEmail(ctx context.Context, email string) (*User, error)

	// List はユーザー一覧を取得する
	List(ctx context.Context) ([]*User, error)

	// ListAdmins は管理者の一覧を取得する
	ListAdmins(ctx context.Context) ([]*User, error)

	// CreateIfAbsent はユーザーを作成する
	// 同じIDのユーザーが既にある場合は何もせず false を返す
	CreateIfAbsent(ctx context.Context, u *User) (bool, error)

	// Update はユーザーを更新する
	Update(ctx context.Context, u *User) error

	// Delete はユーザーを削除する（予約と問い合わせも削除される）
	Delete(ctx context.Context, id string) error
}
