package ticket

import "errors"

// Ticket ドメインのエラー定義
var (
	ErrTicketNotFound  = errors.New("問い合わせが見つかりません")
	ErrUserIDRequired  = errors.New("ユーザーIDは必須です")
	ErrMessageRequired = errors.New("本文は必須です")
	ErrInvalidTheme    = errors.New("問い合わせ種別が不正です")
	ErrInvalidStatus   = errors.New("問い合わせの状態が不正です")
)
