package reservation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sanosuguru/go-seat-booking/internal/pkg/wallclock"
)

func at(hour, min int) wallclock.Time {
	return wallclock.Date(2025, 1, 1, hour, min, 0, 0)
}

func TestInterval_Overlaps(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Interval
		expected bool
	}{
		{"部分的に重なる", Interval{at(9, 0), at(11, 0)}, Interval{at(10, 0), at(12, 0)}, true},
		{"包含する", Interval{at(9, 0), at(12, 0)}, Interval{at(10, 0), at(11, 0)}, true},
		{"同一区間", Interval{at(9, 0), at(10, 0)}, Interval{at(9, 0), at(10, 0)}, true},
		{"終端と始端が接する", Interval{at(9, 0), at(10, 0)}, Interval{at(10, 0), at(11, 0)}, false},
		{"離れている", Interval{at(9, 0), at(10, 0)}, Interval{at(11, 0), at(12, 0)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.a.Overlaps(tt.b))
			assert.Equal(t, tt.expected, tt.b.Overlaps(tt.a), "対称であること")
		})
	}
}

func TestIsAvailable(t *testing.T) {
	existing := []Interval{
		{at(9, 0), at(10, 0)},
		{at(13, 0), at(14, 0)},
	}

	t.Run("既存予約がなければ空いている", func(t *testing.T) {
		assert.True(t, IsAvailable(Interval{at(9, 0), at(10, 0)}, nil))
	})

	t.Run("既存予約の間に収まる", func(t *testing.T) {
		assert.True(t, IsAvailable(Interval{at(10, 0), at(13, 0)}, existing))
	})

	t.Run("どれか1つと重なると空いていない", func(t *testing.T) {
		assert.False(t, IsAvailable(Interval{at(12, 30), at(13, 30)}, existing))
	})

	t.Run("1秒でも重なると空いていない", func(t *testing.T) {
		c := Interval{at(10, 0).Add(-time.Second), at(11, 0)}
		assert.False(t, IsAvailable(c, existing))
	})
}

func TestBlockingIntervals(t *testing.T) {
	rs := []*Reservation{
		{Start: at(9, 0), End: at(10, 0), Status: StatusFuture},
		{Start: at(10, 0), End: at(11, 0), Status: StatusActive},
		{Start: at(11, 0), End: at(12, 0), Status: StatusClosed},
		{Start: at(12, 0), End: at(13, 0), Status: StatusDidNotCome},
	}

	t.Run("キャンセル済みと不来場は座席を占有しない", func(t *testing.T) {
		got := BlockingIntervals(rs, at(8, 0))

		assert.Equal(t, []Interval{{at(9, 0), at(10, 0)}, {at(10, 0), at(11, 0)}}, got)
		assert.True(t, IsAvailable(Interval{at(11, 0), at(13, 0)}, got))
	})

	t.Run("終了済みの future は占有しない", func(t *testing.T) {
		got := BlockingIntervals(rs, at(10, 30))

		assert.Equal(t, []Interval{{at(10, 0), at(11, 0)}}, got)
	})
}
