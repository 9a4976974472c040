package ticket

import "context"

// Repository は問い合わせリポジトリのインターフェース
type Repository interface {
	// Create は新しい問い合わせを作成する
	Create(ctx context.Context, t *Ticket) error

	// GetByID はIDから問い合わせを取得する
	GetByID(ctx context.Context, id string) (*Ticket, error)

	// ListByUser はユーザーの問い合わせを新しい順に取得する
	ListByUser(ctx context.Context, userID string) ([]*Ticket, error)

	// ListAll はすべての問い合わせを新しい順に取得する
	ListAll(ctx context.Context) ([]*Ticket, error)

	// UpdateStatus は状態を更新する
	UpdateStatus(ctx context.Context, id string, status Status) error
}

// Notification は管理者へ送る問い合わせ通知
type Notification struct {
	TicketID string  `json:"ticket_id"`
	UserID   string  `json:"user_id"`
	Theme    Theme   `json:"theme"`
	Message  string  `json:"message"`
	SeatName *string `json:"seat_name,omitempty"`
	// Recipients は通知先管理者の Telegram ID
	Recipients []string `json:"recipients"`
}

// Notifier は問い合わせ作成後の通知先
// 失敗しても問い合わせの作成は取り消さない
type Notifier interface {
	NotifyTicketCreated(ctx context.Context, n Notification) error
}
