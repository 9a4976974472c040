package reservation

import "github.com/sanosuguru/go-seat-booking/internal/pkg/wallclock"

// Interval は半開区間 [Start, End) を表す
type Interval struct {
	Start wallclock.Time
	End   wallclock.Time
}

// Overlaps は2つの区間が重なるかを返す
// 端点が接するだけの場合は重ならない（連続した予約を許可する）
func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && o.Start.Before(i.End)
}

// IsAvailable は candidate が existing のどれとも重ならないかを返す
func IsAvailable(candidate Interval, existing []Interval) bool {
	for _, e := range existing {
		if candidate.Overlaps(e) {
			return false
		}
	}
	return true
}

// BlockingIntervals は now 時点で座席を占有している予約の区間のみを返す
func BlockingIntervals(reservations []*Reservation, now wallclock.Time) []Interval {
	out := make([]Interval, 0, len(reservations))
	for _, r := range reservations {
		if r.EffectiveStatus(now).Blocking() {
			out = append(out, r.Interval())
		}
	}
	return out
}
