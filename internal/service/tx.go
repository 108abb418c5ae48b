package service

import (
	"context"
	"database/sql"

	"rideshare/internal/repository"
	"rideshare/internal/repository/postgres"
)

// Stores bundles the repositories one atomic write set goes through.
type Stores struct {
	Rides      repository.RideRepository
	Passengers repository.PassengerRepository
	Drivers    repository.DriverRepository
	Payments   repository.PaymentRepository
}

// TxRunner executes a write set atomically: the writes fn makes commit
// together or none do.
type TxRunner interface {
	InTx(ctx context.Context, fn func(st Stores) error) error
}

// SQLTxRunner runs write sets inside a single database transaction using
// transaction-scoped repositories.
type SQLTxRunner struct {
	db *sql.DB
}

// NewSQLTxRunner creates a TxRunner over the given database.
func NewSQLTxRunner(db *sql.DB) *SQLTxRunner {
	return &SQLTxRunner{db: db}
}

// Ensure SQLTxRunner implements TxRunner.
var _ TxRunner = (*SQLTxRunner)(nil)

func (r *SQLTxRunner) InTx(ctx context.Context, fn func(st Stores) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	st := Stores{
		Rides:      postgres.NewRideRepositoryWithTx(tx),
		Passengers: postgres.NewPassengerRepositoryWithTx(tx),
		Drivers:    postgres.NewDriverRepositoryWithTx(tx),
		Payments:   postgres.NewPaymentRepositoryWithTx(tx),
	}

	if err := fn(st); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
