package aggregates

import (
	"context"

	"gorm.io/gorm"

	domainagg "github.com/yungbote/learnqueue-backend/internal/domain/aggregates"
	"github.com/yungbote/learnqueue-backend/internal/platform/dbctx"
)

// TxRunner opens the transaction one aggregate write runs in.
type TxRunner interface {
	InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error
}

type TxRunnerFunc func(ctx context.Context, fn func(dbc dbctx.Context) error) error

func (f TxRunnerFunc) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	return f(ctx, fn)
}

// NewGormTxRunner begins on db, or opens a savepoint when ctx already carries a tx.
// fn sees the tx both on dbc.Tx and on dbc.Ctx so nested aggregate calls join it.
func NewGormTxRunner(db *gorm.DB) TxRunner {
	return TxRunnerFunc(func(ctx context.Context, fn func(dbc dbctx.Context) error) error {
		if fn == nil {
			return nil
		}
		outer := dbctx.TxFromContext(ctx)
		if outer == nil {
			outer = db
		}
		if outer == nil {
			return domainagg.NewError(domainagg.CodeInternal, "aggregate.tx", "no database configured", nil)
		}
		return outer.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(dbctx.Context{Ctx: dbctx.WithTx(ctx, tx), Tx: tx})
		})
	})
}
