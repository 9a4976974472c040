package application

import (
	"context"

	"github.com/sanosuguru/go-seat-booking/internal/domain/reservation"
	"github.com/sanosuguru/go-seat-booking/internal/domain/transaction"
	"github.com/sanosuguru/go-seat-booking/internal/pkg/clock"
	"github.com/sanosuguru/go-seat-booking/internal/pkg/wallclock"
)

// AvailabilityService は座席の空き状況を判定する
// 占有とみなすのは now 時点で future または active の予約のみ
type AvailabilityService struct {
	reservationRepo reservation.Repository
	zone            *wallclock.Zone
	clock           clock.Clock
}

func NewAvailabilityService(rr reservation.Repository, zone *wallclock.Zone, c clock.Clock) *AvailabilityService {
	return &AvailabilityService{reservationRepo: rr, zone: zone, clock: c}
}

// IsSeatAvailable は座席が [start, end) で空いているかを返す
// 予約が1件もない座席（存在しない座席を含む）は空いているとみなす
func (s *AvailabilityService) IsSeatAvailable(ctx context.Context, tx transaction.Tx, seatID string, start, end wallclock.Time) (bool, error) {
	existing, err := s.reservationRepo.ListBySeat(ctx, tx, seatID)
	if err != nil {
		return false, err
	}
	now := s.zone.Now(s.clock.Now())
	candidate := reservation.Interval{Start: start, End: end}
	return reservation.IsAvailable(candidate, reservation.BlockingIntervals(existing, now)), nil
}

// ListOccupiedSeats は [start, end) に占有中の予約がある座席IDの集合を返す
func (s *AvailabilityService) ListOccupiedSeats(ctx context.Context, tx transaction.Tx, start, end wallclock.Time) (map[string]struct{}, error) {
	overlapping, err := s.reservationRepo.ListOverlapping(ctx, tx, start, end)
	if err != nil {
		return nil, err
	}
	now := s.zone.Now(s.clock.Now())
	window := reservation.Interval{Start: start, End: end}
	occupied := make(map[string]struct{})
	for _, r := range overlapping {
		if !r.EffectiveStatus(now).Blocking() || !window.Overlaps(r.Interval()) {
			continue
		}
		occupied[r.SeatID] = struct{}{}
	}
	return occupied, nil
}
