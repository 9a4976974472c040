package seat

import "errors"

// Seat ドメインのエラー定義
var (
	ErrSeatNotFound     = errors.New("座席が見つかりません")
	ErrSeatNameRequired = errors.New("座席名は必須です")
	ErrSeatTypeRequired = errors.New("座席タイプは必須です")
	ErrSeatInUse        = errors.New("座席には予約が存在するため削除できません")
)
