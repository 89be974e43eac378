package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

// Tx is an infra-defined transaction handle (pgx.Tx for Postgres).
// Repositories treat nil as "use the pool".
type Tx interface{}

// TransactionManager runs fn inside one transaction and passes the handle as tx.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
