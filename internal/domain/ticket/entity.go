package ticket

import (
	"strings"
	"time"
)

// Theme は問い合わせの種別を表す
type Theme string

const (
	ThemeFailure Theme = "failure"
	ThemeWish    Theme = "wish"
	ThemeOther   Theme = "other"
)

func (t Theme) Valid() bool {
	switch t {
	case ThemeFailure, ThemeWish, ThemeOther:
		return true
	}
	return false
}

// Status は問い合わせの状態を表す
type Status string

const (
	StatusActive Status = "active"
	StatusClosed Status = "closed"
)

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusClosed
}

// Ticket は利用者からの問い合わせを表す
// 座席と予約は作成時点の有効な予約のスナップショット
type Ticket struct {
	ID            string
	UserID        string
	ReservationID *string
	SeatID        *string
	SeatName      *string
	Theme         Theme
	Message       string
	Status        Status
	MadeOn        time.Time
}

// NewTicket は新しい問い合わせを作成する
// theme が空の場合は other とする
func NewTicket(userID string, theme Theme, message string) *Ticket {
	if theme == "" {
		theme = ThemeOther
	}
	return &Ticket{
		UserID:  userID,
		Theme:   theme,
		Message: strings.TrimSpace(message),
		Status:  StatusActive,
		MadeOn:  time.Now(),
	}
}

// AttachReservation は問い合わせに予約中の座席を記録する
func (t *Ticket) AttachReservation(reservationID, seatID, seatName string) {
	t.ReservationID = &reservationID
	t.SeatID = &seatID
	t.SeatName = &seatName
}

// SetStatus は状態を変更する
func (t *Ticket) SetStatus(s Status) error {
	if !s.Valid() {
		return ErrInvalidStatus
	}
	t.Status = s
	return nil
}

// Validate は問い合わせの検証を行う
func (t *Ticket) Validate() error {
	if t.UserID == "" {
		return ErrUserIDRequired
	}
	if !t.Theme.Valid() {
		return ErrInvalidTheme
	}
	if t.Message == "" {
		return ErrMessageRequired
	}
	if !t.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}
