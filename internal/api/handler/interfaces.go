package handler

import (
	"context"

	"github.com/sanosuguru/go-seat-booking/internal/application"
	"github.com/sanosuguru/go-seat-booking/internal/domain/reservation"
	"github.com/sanosuguru/go-seat-booking/internal/domain/seat"
	"github.com/sanosuguru/go-seat-booking/internal/domain/ticket"
	"github.com/sanosuguru/go-seat-booking/internal/domain/user"
	"github.com/sanosuguru/go-seat-booking/internal/pkg/wallclock"
)

// SeatServiceInterface は座席サービスのインターフェース
type SeatServiceInterface interface {
	CreateSeat(ctx context.Context, input application.CreateSeatInput) (*seat.Seat, error)
	CreateSeats(ctx context.Context, inputs []application.CreateSeatInput) ([]*seat.Seat, error)
	GetSeat(ctx context.Context, id string) (*seat.Seat, error)
	UpdateSeat(ctx context.Context, id string, patch seat.Patch) (*seat.Seat, error)
	DeleteSeat(ctx context.Context, id string) error
	ListSeatsWithAvailability(ctx context.Context, window *reservation.Interval) ([]*seat.Availability, error)
}

// ReservationServiceInterface は予約サービスのインターフェース
type ReservationServiceInterface interface {
	CreateReservation(ctx context.Context, input application.CreateReservationInput) (*reservation.Reservation, error)
	GetActiveReservation(ctx context.Context, userID string) (*reservation.View, error)
	GetMaximumExtensionTime(ctx context.Context, userID string, start wallclock.Time) (reservation.Extension, error)
	GetReservation(ctx context.Context, actor application.Actor, id string) (*reservation.Reservation, error)
	ListUserReservations(ctx context.Context, userID string) ([]*reservation.View, error)
	ListAllReservations(ctx context.Context) ([]*reservation.View, error)
	UpdateReservation(ctx context.Context, actor application.Actor, id string, patch reservation.Patch) (*reservation.Reservation, error)
	CheckIn(ctx context.Context, id string) (*reservation.Reservation, error)
	Cancel(ctx context.Context, actor application.Actor, id string) (*reservation.Reservation, error)
	DeleteReservation(ctx context.Context, id string) error
	ReconcileStatuses(ctx context.Context) (int, error)
}

// UserServiceInterface はユーザーサービスのインターフェース
type UserServiceInterface interface {
	GetUser(ctx context.Context, id string) (*user.User, error)
	ListUsers(ctx context.Context) ([]*user.User, error)
	VerifyUser(ctx context.Context, id string) (*user.User, error)
	UpdateUser(ctx context.Context, id string, patch user.Patch) (*user.User, error)
	UpdateProfile(ctx context.Context, id string, patch user.Patch) (*user.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// TicketServiceInterface は問い合わせサービスのインターフェース
type TicketServiceInterface interface {
	CreateTicket(ctx context.Context, input application.CreateTicketInput) (*ticket.Ticket, error)
	ListUserTickets(ctx context.Context, userID string) ([]*ticket.Ticket, error)
	ListAllTickets(ctx context.Context) ([]*ticket.Ticket, error)
	UpdateTicketStatus(ctx context.Context, id string, status ticket.Status) (*ticket.Ticket, error)
}
