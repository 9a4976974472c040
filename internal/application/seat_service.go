package application

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-seat-booking/internal/domain/reservation"
	"github.com/sanosuguru/go-seat-booking/internal/domain/seat"
	"github.com/sanosuguru/go-seat-booking/internal/pkg/logger"
)

type SeatService struct {
	seatRepo     seat.Repository
	availability *AvailabilityService
}

func NewSeatService(sr seat.Repository, availability *AvailabilityService) *SeatService {
	return &SeatService{seatRepo: sr, availability: availability}
}

type CreateSeatInput struct {
	Name         string
	Type         string
	X            float64
	Y            float64
	HasComputer  bool
	HasWater     bool
	HasKitchen   bool
	HasSmartDesk bool
	IsQuiet      bool
	IsTalkRoom   bool
}

func (in CreateSeatInput) build() (*seat.Seat, error) {
	se := seat.NewSeat(in.Name, in.Type, in.X, in.Y)
	se.HasComputer = in.HasComputer
	se.HasWater = in.HasWater
	se.HasKitchen = in.HasKitchen
	se.HasSmartDesk = in.HasSmartDesk
	se.IsQuiet = in.IsQuiet
	se.IsTalkRoom = in.IsTalkRoom
	if err := se.Validate(); err != nil {
		return nil, err
	}
	return se, nil
}

func (s *SeatService) CreateSeat(ctx context.Context, input CreateSeatInput) (*seat.Seat, error) {
	se, err := input.build()
	if err != nil {
		return nil, err
	}
	if err := s.seatRepo.Create(ctx, se); err != nil {
		return nil, err
	}
	return se, nil
}

// CreateSeats は座席をまとめて作成する
// 1件でも検証に失敗した場合は何も作成しない
func (s *SeatService) CreateSeats(ctx context.Context, inputs []CreateSeatInput) ([]*seat.Seat, error) {
	seats := make([]*seat.Seat, 0, len(inputs))
	for i, in := range inputs {
		se, err := in.build()
		if err != nil {
			return nil, fmt.Errorf("%d件目: %w", i+1, err)
		}
		seats = append(seats, se)
	}
	if len(seats) == 0 {
		return seats, nil
	}
	if err := s.seatRepo.CreateBulk(ctx, seats); err != nil {
		return nil, err
	}
	logger.Info("座席を一括作成しました", zap.Int("count", len(seats)))
	return seats, nil
}

func (s *SeatService) GetSeat(ctx context.Context, id string) (*seat.Seat, error) {
	return s.seatRepo.GetByID(ctx, id)
}

func (s *SeatService) UpdateSeat(ctx context.Context, id string, patch seat.Patch) (*seat.Seat, error) {
	se, err := s.seatRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := se.Apply(patch); err != nil {
		return nil, err
	}
	if err := s.seatRepo.Update(ctx, se); err != nil {
		return nil, err
	}
	return se, nil
}

// DeleteSeat は座席を削除する
// 予約が残っている座席は削除できない
func (s *SeatService) DeleteSeat(ctx context.Context, id string) error {
	return s.seatRepo.Delete(ctx, id)
}

// ListSeatsWithAvailability は座席一覧に window 内の空き状況を付けて返す
// window が nil の場合はすべて空きとして返す
func (s *SeatService) ListSeatsWithAvailability(ctx context.Context, window *reservation.Interval) ([]*seat.Availability, error) {
	seats, err := s.seatRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if window == nil {
		return seat.Project(seats, nil), nil
	}
	if !window.End.After(window.Start) {
		return nil, reservation.ErrInvalidInterval
	}
	occupied, err := s.availability.ListOccupiedSeats(ctx, nil, window.Start, window.End)
	if err != nil {
		return nil, err
	}
	return seat.Project(seats, occupied), nil
}
