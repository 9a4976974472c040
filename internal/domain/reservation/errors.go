package reservation

import (
	"errors"
	"fmt"

	"github.com/sanosuguru/go-seat-booking/internal/pkg/wallclock"
)

// Reservation ドメインのエラー定義
var (
	ErrReservationNotFound      = errors.New("予約が見つかりません")
	ErrSeatUnavailable          = errors.New("座席は指定の時間帯に予約できません")
	ErrUserHasActiveReservation = errors.New("ユーザーは既に有効な予約を持っています")
	ErrReservationAlreadyClosed = errors.New("予約は既にキャンセルされています")
	ErrReservationAlreadyActive = errors.New("予約は既にチェックイン済みです")
	ErrInvalidStatusTransition  = errors.New("この状態からは変更できません")
	ErrInvalidStatus            = errors.New("予約の状態が不正です")
	ErrUserIDRequired           = errors.New("ユーザーIDは必須です")
	ErrSeatIDRequired           = errors.New("座席IDは必須です")
	ErrIntervalRequired         = errors.New("開始時刻と終了時刻は必須です")
	ErrInvalidInterval          = errors.New("終了時刻は開始時刻より後である必要があります")
	ErrNotOwner                 = errors.New("他のユーザーの予約は操作できません")
	ErrStatusChangeNotAllowed   = errors.New("この状態への変更は管理者のみ可能です")
)

// SeatUnavailableError は座席が指定区間で占有されていることを表す
type SeatUnavailableError struct {
	SeatID string
	Start  wallclock.Time
	End    wallclock.Time
}

func (e *SeatUnavailableError) Error() string {
	return fmt.Sprintf("座席 %s は %s - %s に予約できません", e.SeatID, e.Start, e.End)
}

func (e *SeatUnavailableError) Is(target error) bool {
	return target == ErrSeatUnavailable
}

// UserHasActiveReservationError はユーザーが既に有効な予約を持っていることを表す
type UserHasActiveReservationError struct {
	UserID string
}

func (e *UserHasActiveReservationError) Error() string {
	return fmt.Sprintf("ユーザー %s は既に有効な予約を持っています", e.UserID)
}

func (e *UserHasActiveReservationError) Is(target error) bool {
	return target == ErrUserHasActiveReservation
}
