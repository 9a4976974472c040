package application

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-seat-booking/internal/domain/reservation"
	"github.com/sanosuguru/go-seat-booking/internal/domain/seat"
	"github.com/sanosuguru/go-seat-booking/internal/domain/ticket"
	"github.com/sanosuguru/go-seat-booking/internal/domain/user"
	"github.com/sanosuguru/go-seat-booking/internal/pkg/clock"
	"github.com/sanosuguru/go-seat-booking/internal/pkg/logger"
	"github.com/sanosuguru/go-seat-booking/internal/pkg/metrics"
	"github.com/sanosuguru/go-seat-booking/internal/pkg/wallclock"
)

// TicketService は利用者からの問い合わせを扱う
type TicketService struct {
	ticketRepo      ticket.Repository
	reservationRepo reservation.Repository
	seatRepo        seat.Repository
	userRepo        user.Repository
	notifier        ticket.Notifier
	zone            *wallclock.Zone
	clock           clock.Clock
	metrics         *metrics.Metrics
}

// NewTicketService は TicketService を作成する
// notifier と m は nil でもよい
func NewTicketService(tr ticket.Repository, rr reservation.Repository, sr seat.Repository, ur user.Repository, notifier ticket.Notifier, zone *wallclock.Zone, c clock.Clock, m *metrics.Metrics) *TicketService {
	return &TicketService{
		ticketRepo:      tr,
		reservationRepo: rr,
		seatRepo:        sr,
		userRepo:        ur,
		notifier:        notifier,
		zone:            zone,
		clock:           c,
		metrics:         m,
	}
}

type CreateTicketInput struct {
	UserID  string
	Theme   ticket.Theme
	Message string
}

// CreateTicket は問い合わせを作成し、管理者へ通知する
// 作成時点で有効な予約があれば座席を記録する
func (s *TicketService) CreateTicket(ctx context.Context, in CreateTicketInput) (*ticket.Ticket, error) {
	t := ticket.NewTicket(in.UserID, in.Theme, in.Message)
	if err := t.Validate(); err != nil {
		return nil, err
	}

	now := s.zone.Now(s.clock.Now())
	held, err := s.reservationRepo.FindHeldByUser(ctx, nil, in.UserID, now)
	switch {
	case err == nil:
		st, err := s.seatRepo.GetByID(ctx, held.SeatID)
		if err != nil && !errors.Is(err, seat.ErrSeatNotFound) {
			return nil, err
		}
		if st != nil {
			t.AttachReservation(held.ID, st.ID, st.Name)
		}
	case !errors.Is(err, reservation.ErrReservationNotFound):
		return nil, err
	}

	if err := s.ticketRepo.Create(ctx, t); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.TicketsCreated.WithLabelValues(string(t.Theme)).Inc()
	}

	s.notify(ctx, t)
	return t, nil
}

// notify は作成済みの問い合わせを管理者に通知する
// 失敗はログに残すのみ
func (s *TicketService) notify(ctx context.Context, t *ticket.Ticket) {
	if s.notifier == nil {
		return
	}
	admins, err := s.userRepo.ListAdmins(ctx)
	if err != nil {
		logger.Warn("管理者一覧の取得に失敗", zap.String("ticket_id", t.ID), zap.Error(err))
		return
	}
	recipients := make([]string, 0, len(admins))
	for _, a := range admins {
		if a.TelegramID != nil && *a.TelegramID != "" {
			recipients = append(recipients, *a.TelegramID)
		}
	}
	n := ticket.Notification{
		TicketID:   t.ID,
		UserID:     t.UserID,
		Theme:      t.Theme,
		Message:    t.Message,
		SeatName:   t.SeatName,
		Recipients: recipients,
	}
	if err := s.notifier.NotifyTicketCreated(ctx, n); err != nil {
		logger.Warn("問い合わせ通知に失敗", zap.String("ticket_id", t.ID), zap.Error(err))
	}
}

func (s *TicketService) ListUserTickets(ctx context.Context, userID string) ([]*ticket.Ticket, error) {
	return s.ticketRepo.ListByUser(ctx, userID)
}

func (s *TicketService) ListAllTickets(ctx context.Context) ([]*ticket.Ticket, error) {
	return s.ticketRepo.ListAll(ctx)
}

// UpdateTicketStatus は問い合わせの状態を変更する（管理者操作）
func (s *TicketService) UpdateTicketStatus(ctx context.Context, id string, status ticket.Status) (*ticket.Ticket, error) {
	t, err := s.ticketRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := t.SetStatus(status); err != nil {
		return nil, err
	}
	if err := s.ticketRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return t, nil
}
