// Package rabbitmq は管理者向け通知を RabbitMQ に発行する
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/sanosuguru/go-seat-booking/internal/domain/ticket"
)

const (
	// DefaultTicketQueue は問い合わせ通知のキュー名
	DefaultTicketQueue = "tickets.created"
	// DefaultDialTimeout は接続とハンドシェイクの上限
	DefaultDialTimeout = 2 * time.Second
)

// Config は RabbitMQ 接続設定
type Config struct {
	URL         string
	Queue       string
	DialTimeout time.Duration
}

// TicketPublisher は問い合わせ作成の通知を発行する
// 発行のたびに接続し、キューを宣言してから永続メッセージを送る
// 通知はリクエスト処理中に行うため、接続は DialTimeout で打ち切る
type TicketPublisher struct {
	url         string
	queue       string
	dialTimeout time.Duration
	dial        func(url string, timeout time.Duration) (*amqp.Connection, error)
}

func NewTicketPublisher(cfg Config) *TicketPublisher {
	queue := cfg.Queue
	if queue == "" {
		queue = DefaultTicketQueue
	}
	timeout := cfg.DialTimeout
	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}
	return &TicketPublisher{url: cfg.URL, queue: queue, dialTimeout: timeout, dial: dialWithTimeout}
}

// dialWithTimeout は TCP 接続と AMQP ハンドシェイクを timeout 以内に終える
func dialWithTimeout(url string, timeout time.Duration) (*amqp.Connection, error) {
	return amqp.DialConfig(url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(timeout),
	})
}

// timeoutFor はコンテキストの残り時間が短ければそちらを使う
func (p *TicketPublisher) timeoutFor(ctx context.Context) time.Duration {
	timeout := p.dialTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	return timeout
}

// NotifyTicketCreated は通知をキューに発行する
func (p *TicketPublisher) NotifyTicketCreated(ctx context.Context, n ticket.Notification) error {
	body, err := encode(n)
	if err != nil {
		return err
	}

	timeout := p.timeoutFor(ctx)
	if timeout <= 0 {
		return fmt.Errorf("RabbitMQ接続に失敗: %w", context.DeadlineExceeded)
	}
	conn, err := p.dial(p.url, timeout)
	if err != nil {
		return fmt.Errorf("RabbitMQ接続に失敗: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("チャネル作成に失敗: %w", err)
	}
	defer func() { _ = ch.Close() }()

	// durable: ブローカー再起動後もキューを残す
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("キュー宣言に失敗: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		MessageId:    n.TicketID,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, msg); err != nil {
		return fmt.Errorf("通知の発行に失敗: %w", err)
	}
	return nil
}

func encode(n ticket.Notification) ([]byte, error) {
	if n.Recipients == nil {
		n.Recipients = []string{}
	}
	body, err := json.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("通知のエンコードに失敗: %w", err)
	}
	return body, nil
}

var _ ticket.Notifier = (*TicketPublisher)(nil)
