package postgres

import (
	"context"
	"database/sql"
	"errors"

	"rideshare/internal/domain"
	"rideshare/internal/repository"
)

// PaymentRepository is a PostgreSQL implementation of repository.PaymentRepository.
type PaymentRepository struct {
	q Querier
}

// NewPaymentRepository creates a new PostgreSQL payment repository.
func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{q: db}
}

// NewPaymentRepositoryWithTx creates a payment repository scoped to a transaction.
func NewPaymentRepositoryWithTx(tx *sql.Tx) *PaymentRepository {
	return &PaymentRepository{q: tx}
}

// Create persists a new payment.
func (r *PaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (id, ride_id, amount, payment_type, status, transaction_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.q.ExecContext(ctx, query,
		payment.ID, payment.RideID, payment.Amount, payment.Type,
		payment.Status, nullString(payment.TransactionID), payment.CreatedAt,
	)
	return err
}

// GetByID retrieves a payment by ID.
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	query := `
		SELECT id, ride_id, amount, payment_type, status, transaction_id, created_at
		FROM payments WHERE id = $1
	`

	payment, err := scanPayment(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return payment, nil
}

// GetByRide retrieves the payment settled against the given ride.
// Returns nil if the ride has no payment yet.
func (r *PaymentRepository) GetByRide(ctx context.Context, rideID string) (*domain.Payment, error) {
	query := `
		SELECT id, ride_id, amount, payment_type, status, transaction_id, created_at
		FROM payments WHERE ride_id = $1
	`

	payment, err := scanPayment(r.q.QueryRowContext(ctx, query, rideID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return payment, nil
}

// GetByPassenger retrieves all payments for rides requested by the passenger.
func (r *PaymentRepository) GetByPassenger(ctx context.Context, passengerID string) ([]*domain.Payment, error) {
	query := `
		SELECT p.id, p.ride_id, p.amount, p.payment_type, p.status, p.transaction_id, p.created_at
		FROM payments p
		JOIN rides r ON r.id = p.ride_id
		WHERE r.passenger_id = $1
		ORDER BY p.created_at DESC
	`

	rows, err := r.q.QueryContext(ctx, query, passengerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*domain.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}
	return payments, rows.Err()
}

// UpdateStatus updates the status of a payment.
func (r *PaymentRepository) UpdateStatus(ctx context.Context, id string, status domain.PaymentStatus) error {
	query := `UPDATE payments SET status = $1 WHERE id = $2`

	result, err := r.q.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func scanPayment(row rowScanner) (*domain.Payment, error) {
	var payment domain.Payment
	var transactionID sql.NullString

	err := row.Scan(
		&payment.ID, &payment.RideID, &payment.Amount, &payment.Type,
		&payment.Status, &transactionID, &payment.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if transactionID.Valid {
		payment.TransactionID = transactionID.String
	}

	return &payment, nil
}
