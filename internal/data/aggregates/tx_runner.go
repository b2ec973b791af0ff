package aggregates

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/philoatlas-backend/internal/platform/ctxutil"
	"github.com/yungbote/philoatlas-backend/internal/platform/dbctx"
	"github.com/yungbote/philoatlas-backend/internal/platform/logger"
)

// DefaultSlowTx is how long a transaction may run before it is logged as slow.
const DefaultSlowTx = 500 * time.Millisecond

var errNilDB = errors.New("transaction runner has nil db")

// TxRunner provides a shared transaction boundary for multi-statement writes.
type TxRunner interface {
	InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error
}

type gormTxRunner struct {
	db        *gorm.DB
	log       *logger.Logger
	slowAfter time.Duration
}

// NewGormTxRunner returns a transaction runner backed by GORM transactions.
// Rollbacks are logged at debug and transactions slower than DefaultSlowTx at warn.
func NewGormTxRunner(db *gorm.DB, log *logger.Logger) TxRunner {
	if log == nil {
		log = logger.Nop()
	}
	return &gormTxRunner{db: db, log: log.With("component", "TxRunner"), slowAfter: DefaultSlowTx}
}

func (r *gormTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if fn == nil {
		return nil
	}
	if r == nil || r.db == nil {
		return errNilDB
	}
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: ctx, Tx: tx})
	})
	dur := time.Since(start)

	fields := append([]interface{}{"duration_ms", dur.Milliseconds()}, ctxutil.GetTraceData(ctx).LogFields()...)
	if err != nil {
		r.log.Debug("transaction rolled back", append(fields, "error", err)...)
	}
	if r.slowAfter > 0 && dur >= r.slowAfter {
		r.log.Warn("slow transaction", fields...)
	}
	return err
}
