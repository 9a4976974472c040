package user

import "errors"

// User ドメインのエラー定義
var (
	ErrUserNotFound       = errors.New("ユーザーが見つかりません")
	ErrUserNotVerified    = errors.New("ユーザーの本人確認が必要です")
	ErrEmailAlreadyExists = errors.New("このメールアドレスは既に使用されています")
	ErrLoginAlreadyExists = errors.New("このログイン名は既に使用されています")
	ErrInvalidEmail       = errors.New("メールアドレスの形式が正しくありません")
	ErrLoginRequired      = errors.New("ログイン名は必須です")
	ErrInvalidRole        = errors.New("権限が不正です")
)
