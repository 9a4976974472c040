package reservation

import (
	"time"

	"github.com/sanosuguru/go-seat-booking/internal/pkg/wallclock"
)

// Status は予約の状態を表す
type Status string

const (
	StatusFuture     Status = "future"
	StatusActive     Status = "active"
	StatusDidNotCome Status = "did_not_come"
	StatusClosed     Status = "closed"
)

// Valid は定義済みの状態かを返す
func (s Status) Valid() bool {
	switch s {
	case StatusFuture, StatusActive, StatusDidNotCome, StatusClosed:
		return true
	}
	return false
}

// Blocking は座席を占有する状態かを返す
// closed と did_not_come は座席を解放済みとみなす
func (s Status) Blocking() bool {
	return s == StatusFuture || s == StatusActive
}

// Reservation は予約エンティティを表す
// Start と End は基準タイムゾーンのナイーブ時刻で、区間は [Start, End)
type Reservation struct {
	ID        string
	UserID    string
	SeatID    string
	Start     wallclock.Time
	End       wallclock.Time
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// View は座席の表示名を付与した予約（保存はしない）
type View struct {
	*Reservation
	SeatName string
}

// Patch は予約の部分更新を表す（nil のフィールドは変更しない）
type Patch struct {
	Start  *wallclock.Time
	End    *wallclock.Time
	Status *Status
}

// Extension は予約の終了時刻をどこまで延長できるかを表す
type Extension struct {
	Until     wallclock.Time
	Unbounded bool
}

// InitialStatus は作成時点の状態を決める
func InitialStatus(end, now wallclock.Time) Status {
	if end.After(now) {
		return StatusFuture
	}
	return StatusDidNotCome
}

// NewReservation は新しい予約を作成する
func NewReservation(userID, seatID string, start, end, now wallclock.Time) *Reservation {
	ts := time.Now()
	return &Reservation{
		UserID:    userID,
		SeatID:    seatID,
		Start:     start,
		End:       end,
		Status:    InitialStatus(end, now),
		CreatedAt: ts,
		UpdatedAt: ts,
	}
}

// Interval は予約の時間区間を返す
func (r *Reservation) Interval() Interval {
	return Interval{Start: r.Start, End: r.End}
}

// HoldsUser はユーザーの「有効な予約」に該当するかを返す
// 終了時刻が未来で closed でない予約はユーザーごとに1件まで
func (r *Reservation) HoldsUser(now wallclock.Time) bool {
	return r.End.After(now) && r.Status != StatusClosed
}

// EffectiveStatus は now 時点での状態を計算する（保存値は変更しない）
func (r *Reservation) EffectiveStatus(now wallclock.Time) Status {
	if r.Status == StatusFuture && !r.End.After(now) {
		return StatusDidNotCome
	}
	return r.Status
}

// Reconcile は期限切れの future を did_not_come にする
// 状態が変わった場合 true を返す
func (r *Reservation) Reconcile(now wallclock.Time) bool {
	next := r.EffectiveStatus(now)
	if next == r.Status {
		return false
	}
	r.Status = next
	r.UpdatedAt = time.Now()
	return true
}

// CheckIn は来場確認を行い active にする
func (r *Reservation) CheckIn() error {
	switch r.Status {
	case StatusFuture:
	case StatusActive:
		return ErrReservationAlreadyActive
	case StatusClosed:
		return ErrReservationAlreadyClosed
	default:
		return ErrInvalidStatusTransition
	}
	r.Status = StatusActive
	r.UpdatedAt = time.Now()
	return nil
}

// Close は予約をキャンセルする
func (r *Reservation) Close() error {
	switch r.Status {
	case StatusFuture, StatusActive:
	case StatusClosed:
		return ErrReservationAlreadyClosed
	default:
		return ErrInvalidStatusTransition
	}
	r.Status = StatusClosed
	r.UpdatedAt = time.Now()
	return nil
}

// Apply は部分更新を適用する（管理者による状態の上書きを含む）
func (r *Reservation) Apply(p Patch) error {
	next := *r
	if p.Start != nil {
		next.Start = *p.Start
	}
	if p.End != nil {
		next.End = *p.End
	}
	if p.Status != nil {
		if !p.Status.Valid() {
			return ErrInvalidStatus
		}
		next.Status = *p.Status
	}
	if err := next.Validate(); err != nil {
		return err
	}
	next.UpdatedAt = time.Now()
	*r = next
	return nil
}

// Validate は予約の検証を行う
func (r *Reservation) Validate() error {
	if r.UserID == "" {
		return ErrUserIDRequired
	}
	if r.SeatID == "" {
		return ErrSeatIDRequired
	}
	if r.Start.IsZero() || r.End.IsZero() {
		return ErrIntervalRequired
	}
	if !r.End.After(r.Start) {
		return ErrInvalidInterval
	}
	if !r.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}
