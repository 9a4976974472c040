// Package clock は現在時刻の取得を抽象化する
//
// 本番コードは Real() を、テストは Fake() を注入する。
package clock

import (
	"sync"
	"time"
)

// Clock は現在時刻の供給元
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Real はシステム時刻を返す Clock
func Real() Clock { return realClock{} }

// FakeClock はテスト用の手動で進める時計
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// Fake は指定時刻で止まった FakeClock を作成する
func Fake(now time.Time) *FakeClock {
	return &FakeClock{now: now}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance は時計を d だけ進める
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Set は時計を指定時刻に合わせる
func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}
