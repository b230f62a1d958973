package ports

import "context"

// TxManager runs fn with a context that repositories use to join the same
// transaction.
type TxManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
