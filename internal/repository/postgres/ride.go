package postgres

import (
	"context"
	"database/sql"
	"errors"

	"rideshare/internal/domain"
	"rideshare/internal/repository"
)

// RideRepository is a PostgreSQL implementation of repository.RideRepository.
type RideRepository struct {
	q Querier
}

// NewRideRepository creates a new PostgreSQL ride repository.
func NewRideRepository(db *sql.DB) *RideRepository {
	return &RideRepository{q: db}
}

// NewRideRepositoryWithTx creates a ride repository scoped to a transaction.
func NewRideRepositoryWithTx(tx *sql.Tx) *RideRepository {
	return &RideRepository{q: tx}
}

const rideColumns = `
	id, passenger_id, driver_id,
	pickup_lat, pickup_lng, pickup_address, pickup_postcode,
	dropoff_lat, dropoff_lng, dropoff_address, dropoff_postcode,
	status, ride_type, payment_method,
	fare, distance_km, surge_multiplier, rating,
	requested_at, picked_up_at, dropped_off_at
`

// Create persists a new ride.
func (r *RideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	query := `
		INSERT INTO rides (` + rideColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`

	_, err := r.q.ExecContext(ctx, query,
		ride.ID,
		ride.PassengerID,
		nullString(ride.DriverID),
		ride.Pickup.Latitude,
		ride.Pickup.Longitude,
		ride.Pickup.Address,
		ride.Pickup.Postcode,
		ride.Dropoff.Latitude,
		ride.Dropoff.Longitude,
		ride.Dropoff.Address,
		ride.Dropoff.Postcode,
		ride.Status,
		ride.RideType,
		ride.PaymentMethod,
		ride.Fare,
		ride.DistanceKm,
		ride.SurgeMultiplier,
		ride.Rating,
		ride.RequestedAt,
		nullTime(ride.PickedUpAt),
		nullTime(ride.DroppedOffAt),
	)

	return err
}

// GetByID retrieves a ride by ID.
func (r *RideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE id = $1`

	ride, err := scanRide(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return ride, nil
}

// GetByStatus retrieves all rides in the given status.
func (r *RideRepository) GetByStatus(ctx context.Context, status domain.RideStatus) ([]*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE status = $1 ORDER BY requested_at DESC`
	return r.queryRides(ctx, query, status)
}

// GetByPassenger retrieves all rides requested by the given passenger.
func (r *RideRepository) GetByPassenger(ctx context.Context, passengerID string) ([]*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE passenger_id = $1 ORDER BY requested_at DESC`
	return r.queryRides(ctx, query, passengerID)
}

// GetByDriver retrieves all rides served by the given driver.
func (r *RideRepository) GetByDriver(ctx context.Context, driverID string) ([]*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE driver_id = $1 ORDER BY requested_at DESC`
	return r.queryRides(ctx, query, driverID)
}

// GetActive retrieves all rides in a non-terminal status.
func (r *RideRepository) GetActive(ctx context.Context) ([]*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE status NOT IN ('COMPLETED', 'CANCELLED') ORDER BY requested_at DESC`
	return r.queryRides(ctx, query)
}

// CountActive returns the number of rides in a non-terminal status.
func (r *RideRepository) CountActive(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM rides WHERE status NOT IN ('COMPLETED', 'CANCELLED')`

	var count int
	if err := r.q.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// Update updates an existing ride.
func (r *RideRepository) Update(ctx context.Context, ride *domain.Ride) error {
	query := `
		UPDATE rides
		SET driver_id = $1, status = $2, fare = $3, rating = $4,
		    picked_up_at = $5, dropped_off_at = $6
		WHERE id = $7
	`

	result, err := r.q.ExecContext(ctx, query,
		nullString(ride.DriverID),
		ride.Status,
		ride.Fare,
		ride.Rating,
		nullTime(ride.PickedUpAt),
		nullTime(ride.DroppedOffAt),
		ride.ID,
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

func (r *RideRepository) queryRides(ctx context.Context, query string, args ...any) ([]*domain.Ride, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rides []*domain.Ride
	for rows.Next() {
		ride, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		rides = append(rides, ride)
	}
	return rides, rows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRide(row rowScanner) (*domain.Ride, error) {
	var ride domain.Ride
	var driverID sql.NullString
	var pickedUpAt, droppedOffAt sql.NullTime

	err := row.Scan(
		&ride.ID,
		&ride.PassengerID,
		&driverID,
		&ride.Pickup.Latitude,
		&ride.Pickup.Longitude,
		&ride.Pickup.Address,
		&ride.Pickup.Postcode,
		&ride.Dropoff.Latitude,
		&ride.Dropoff.Longitude,
		&ride.Dropoff.Address,
		&ride.Dropoff.Postcode,
		&ride.Status,
		&ride.RideType,
		&ride.PaymentMethod,
		&ride.Fare,
		&ride.DistanceKm,
		&ride.SurgeMultiplier,
		&ride.Rating,
		&ride.RequestedAt,
		&pickedUpAt,
		&droppedOffAt,
	)
	if err != nil {
		return nil, err
	}

	if driverID.Valid {
		ride.DriverID = driverID.String
	}
	if pickedUpAt.Valid {
		ride.PickedUpAt = pickedUpAt.Time
	}
	if droppedOffAt.Valid {
		ride.DroppedOffAt = droppedOffAt.Time
	}

	return &ride, nil
}
