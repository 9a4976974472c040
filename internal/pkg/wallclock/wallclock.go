// Package wallclock は基準タイムゾーンの壁時計時刻（ナイーブ時刻）を扱う
//
// 予約の保存と比較はすべて Time で行い、タイムゾーン付きの time.Time とは
// Zone を通してのみ相互変換する。型を分けることで、ナイーブ時刻と
// タイムゾーン付き時刻を直接比較するコードはコンパイルできない。
package wallclock

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"
)

// Layout はナイーブ時刻の文字列表現
const Layout = "2006-01-02T15:04:05"

var ErrInvalidTimestamp = errors.New("日時の形式が正しくありません")

// Time はタイムゾーン情報を持たない正規化済みの時刻
// 内部値は常に UTC ロケーションに置き、壁時計のフィールドだけに意味がある
type Time struct {
	t time.Time
}

// Date は壁時計のフィールドから Time を作成する
func Date(year int, month time.Month, day, hour, min, sec, nsec int) Time {
	return Time{t: time.Date(year, month, day, hour, min, sec, nsec, time.UTC)}
}

// fromWall は任意ロケーションの時刻から壁時計のフィールドのみを取り出す
func fromWall(t time.Time) Time {
	return Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond())
}

func (w Time) IsZero() bool             { return w.t.IsZero() }
func (w Time) Before(o Time) bool       { return w.t.Before(o.t) }
func (w Time) After(o Time) bool        { return w.t.After(o.t) }
func (w Time) Equal(o Time) bool        { return w.t.Equal(o.t) }
func (w Time) Compare(o Time) int       { return w.t.Compare(o.t) }
func (w Time) Add(d time.Duration) Time { return Time{t: w.t.Add(d)} }
func (w Time) Sub(o Time) time.Duration { return w.t.Sub(o.t) }
func (w Time) String() string           { return w.t.Format(Layout) }

// Wall は壁時計の値を UTC ロケーションの time.Time として返す（DB ドライバ向け）
func (w Time) Wall() time.Time { return w.t }

// Value は timestamp without time zone 列への書き込み値を返す
func (w Time) Value() (driver.Value, error) {
	return w.t, nil
}

// Scan は timestamp without time zone 列の値を読み込む
func (w *Time) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*w = fromWall(v)
		return nil
	case nil:
		*w = Time{}
		return nil
	default:
		return fmt.Errorf("wallclock: %T は読み込めません", src)
	}
}

func (w Time) MarshalJSON() ([]byte, error) {
	return []byte(`"` + w.String() + `"`), nil
}

// UnmarshalJSON はオフセットなしの日時のみ受け付ける
// オフセット付きの入力は Zone.Parse で正規化すること
func (w *Time) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*w = Time{}
		return nil
	}
	t, err := time.ParseInLocation(Layout, s, time.UTC)
	if err != nil {
		return ErrInvalidTimestamp
	}
	*w = Time{t: t}
	return nil
}

// Zone は基準タイムゾーンを表し、ナイーブ時刻との変換を担う
type Zone struct {
	loc *time.Location
}

// DefaultZoneName は基準タイムゾーンの既定値
const DefaultZoneName = "Europe/Moscow"

// NewZone は IANA 名から Zone を作成する
func NewZone(name string) (*Zone, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("タイムゾーン %q の読み込みに失敗: %w", name, err)
	}
	return &Zone{loc: loc}, nil
}

// ZoneFromLocation は既存のロケーションから Zone を作成する
func ZoneFromLocation(loc *time.Location) *Zone {
	return &Zone{loc: loc}
}

func (z *Zone) Location() *time.Location { return z.loc }

// ToNaive はタイムゾーン付き時刻を基準タイムゾーンに変換し、ゾーン情報を落とす
func (z *Zone) ToNaive(t time.Time) Time {
	return fromWall(t.In(z.loc))
}

// ToAware はナイーブ時刻に zone を付与する
func (z *Zone) ToAware(w Time, zone *time.Location) time.Time {
	if zone == nil {
		zone = z.loc
	}
	t := w.t
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), zone)
}

// Now は clock の現在時刻を基準タイムゾーンのナイーブ時刻で返す
func (z *Zone) Now(now time.Time) Time {
	return z.ToNaive(now)
}

// naiveLayouts はオフセットを持たない入力として受け付ける形式
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
}

// Parse は外部から受け取った日時文字列を正規化する
// オフセット付き（RFC3339）は基準タイムゾーンへ変換し、オフセットなしはそのまま扱う
func (z *Zone) Parse(s string) (Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Time{}, ErrInvalidTimestamp
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return z.ToNaive(t), nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return Time{t: t}, nil
		}
	}
	return Time{}, ErrInvalidTimestamp
}
