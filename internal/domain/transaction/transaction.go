package transaction

import (
	"context"
	"fmt"
)

// Tx はトランザクションを表すインターフェース
// ドメイン層がインフラ層（sqlx等）に依存しないようにするための抽象化
type Tx interface {
	Commit() error
	Rollback() error
}

// Manager はトランザクションの開始とトランザクション内の排他を提供する
type Manager interface {
	Begin(ctx context.Context) (Tx, error)

	// Lock はトランザクション終了まで保持される排他ロックを key に対して取得する
	// 同じ key を要求する他のトランザクションは解放まで待たされる
	Lock(ctx context.Context, tx Tx, key string) error
}

// Run は fn をトランザクション内で実行し、fn が成功した場合のみコミットする
// fn がエラーを返した場合やパニックした場合はロールバックされる
func Run(ctx context.Context, m Manager, fn func(tx Tx) error) error {
	tx, err := m.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("コミットに失敗: %w", err)
	}
	return nil
}
