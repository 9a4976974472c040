package seat

import (
	"strings"
	"time"
)

// Seat は座席エンティティを表す
// X, Y はフロアマップ上の座標
type Seat struct {
	ID           string
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
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Availability は指定時間帯の空き状況を付与した座席（保存はしない）
type Availability struct {
	*Seat
	IsAvailable bool
}

// Patch は座席の部分更新を表す（nil のフィールドは変更しない）
type Patch struct {
	Name         *string
	Type         *string
	X            *float64
	Y            *float64
	HasComputer  *bool
	HasWater     *bool
	HasKitchen   *bool
	HasSmartDesk *bool
	IsQuiet      *bool
	IsTalkRoom   *bool
}

// NewSeat は新しい座席を作成する
func NewSeat(name, seatType string, x, y float64) *Seat {
	now := time.Now()
	return &Seat{
		Name:      name,
		Type:      seatType,
		X:         x,
		Y:         y,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Apply は部分更新を適用する
func (s *Seat) Apply(p Patch) error {
	next := *s
	setString(&next.Name, p.Name)
	setString(&next.Type, p.Type)
	setFloat(&next.X, p.X)
	setFloat(&next.Y, p.Y)
	setBool(&next.HasComputer, p.HasComputer)
	setBool(&next.HasWater, p.HasWater)
	setBool(&next.HasKitchen, p.HasKitchen)
	setBool(&next.HasSmartDesk, p.HasSmartDesk)
	setBool(&next.IsQuiet, p.IsQuiet)
	setBool(&next.IsTalkRoom, p.IsTalkRoom)
	if err := next.Validate(); err != nil {
		return err
	}
	next.UpdatedAt = time.Now()
	*s = next
	return nil
}

// Validate は座席の検証を行う
func (s *Seat) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrSeatNameRequired
	}
	if strings.TrimSpace(s.Type) == "" {
		return ErrSeatTypeRequired
	}
	return nil
}

// Project は座席一覧に空き状況を付与する
// occupied に含まれる座席IDは空いていないとみなす
func Project(seats []*Seat, occupied map[string]struct{}) []*Availability {
	out := make([]*Availability, 0, len(seats))
	for _, s := range seats {
		_, busy := occupied[s.ID]
		out = append(out, &Availability{Seat: s, IsAvailable: !busy})
	}
	return out
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
