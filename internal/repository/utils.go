package repository

import (
	"context"
	"errors"

	"github.com/osse101/idlegarden/internal/domain"
	"github.com/osse101/idlegarden/internal/logger"
)

// Tx is the commit/rollback half shared by every settlement transaction.
// Both the pgx adapter and the in-memory store satisfy it.
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// SafeRollback rolls back a transaction and logs any error other than the
// one returned for an already committed transaction.
func SafeRollback(ctx context.Context, tx Tx) {
	err := tx.Rollback(ctx)
	if err == nil || errors.Is(err, domain.ErrTxClosed) {
		return
	}
	logger.FromContext(ctx).Error("Failed to rollback transaction", "error", err)
}
