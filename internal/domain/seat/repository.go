package seat

import "context"

// Repository は座席リポジトリのインターフェース
type Repository interface {
	// Create は新しい座席を作成する
	Create(ctx context.Context, seat *Seat) error

	// CreateBulk は複数の座席を一括作成する
	CreateBulk(ctx context.Context, seats []*Seat) error

	// GetByID はIDから座席を取得する
	GetByID(ctx context.Context, id string) (*Seat, error)

	// List は座席一覧を名前順で取得する
	List(ctx context.Context) ([]*Seat, error)

	// Update は座席を更新する
	Update(ctx context.Context, seat *Seat) error

	// Delete は座席を削除する
	Delete(ctx context.Context, id string) error
}
