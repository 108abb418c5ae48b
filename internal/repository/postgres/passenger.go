package postgres

import (
	"context"
	"database/sql"
	"errors"

	"rideshare/internal/domain"
	"rideshare/internal/repository"
)

// PassengerRepository is a PostgreSQL implementation of repository.PassengerRepository.
type PassengerRepository struct {
	q Querier
}

// NewPassengerRepository creates a new PostgreSQL passenger repository.
func NewPassengerRepository(db *sql.DB) *PassengerRepository {
	return &PassengerRepository{q: db}
}

// NewPassengerRepositoryWithTx creates a passenger repository scoped to a transaction.
func NewPassengerRepositoryWithTx(tx *sql.Tx) *PassengerRepository {
	return &PassengerRepository{q: tx}
}

// Create adds a new passenger.
func (r *PassengerRepository) Create(ctx context.Context, passenger *domain.Passenger) error {
	query := `
		INSERT INTO passengers (id, name, email, phone, wallet_balance, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.q.ExecContext(ctx, query,
		passenger.ID, passenger.Name, passenger.Email, passenger.Phone,
		passenger.WalletBalance, passenger.CreatedAt,
	)
	return err
}

// GetByID retrieves a passenger by ID.
func (r *PassengerRepository) GetByID(ctx context.Context, id string) (*domain.Passenger, error) {
	query := `SELECT id, name, email, COALESCE(phone, ''), wallet_balance, created_at FROM passengers WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetByEmail retrieves a passenger by email address.
func (r *PassengerRepository) GetByEmail(ctx context.Context, email string) (*domain.Passenger, error) {
	query := `SELECT id, name, email, COALESCE(phone, ''), wallet_balance, created_at FROM passengers WHERE email = $1`
	return r.getOne(ctx, query, email)
}

// Update updates an existing passenger.
func (r *PassengerRepository) Update(ctx context.Context, passenger *domain.Passenger) error {
	query := `
		UPDATE passengers
		SET name = $1, email = $2, phone = $3, wallet_balance = $4
		WHERE id = $5
	`

	result, err := r.q.ExecContext(ctx, query,
		passenger.Name, passenger.Email, passenger.Phone, passenger.WalletBalance, passenger.ID,
	)
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

func (r *PassengerRepository) getOne(ctx context.Context, query string, arg any) (*domain.Passenger, error) {
	var p domain.Passenger
	err := r.q.QueryRowContext(ctx, query, arg).Scan(
		&p.ID, &p.Name, &p.Email, &p.Phone, &p.WalletBalance, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}
