package postgres

import (
	"context"
	"database/sql"
	"errors"

	"rideshare/internal/domain"
	"rideshare/internal/repository"
)

// DriverRepository is a PostgreSQL implementation of repository.DriverRepository.
type DriverRepository struct {
	q Querier
}

// NewDriverRepository creates a new PostgreSQL driver repository.
func NewDriverRepository(db *sql.DB) *DriverRepository {
	return &DriverRepository{q: db}
}

// NewDriverRepositoryWithTx creates a driver repository scoped to a transaction.
func NewDriverRepositoryWithTx(tx *sql.Tx) *DriverRepository {
	return &DriverRepository{q: tx}
}

const driverColumns = `
	id, COALESCE(name, ''), COALESCE(email, ''), COALESCE(phone, ''),
	COALESCE(vehicle_number, ''), COALESCE(vehicle_type, ''),
	available, rating, earnings, total_rides,
	location_lat, location_lng
`

// Create adds a new driver.
func (r *DriverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	query := `
		INSERT INTO drivers (id, name, email, phone, vehicle_number, vehicle_type, available, rating, earnings, total_rides, location_lat, location_lng)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	var lat, lng sql.NullFloat64
	if driver.Location != nil {
		lat = sql.NullFloat64{Float64: driver.Location.Latitude, Valid: true}
		lng = sql.NullFloat64{Float64: driver.Location.Longitude, Valid: true}
	}

	_, err := r.q.ExecContext(ctx, query,
		driver.ID, driver.Name, driver.Email, driver.Phone,
		driver.VehicleNumber, driver.VehicleType,
		driver.Available, driver.Rating, driver.Earnings, driver.TotalRides,
		lat, lng,
	)
	return err
}

// GetByID retrieves a driver by ID.
func (r *DriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetByEmail retrieves a driver by email address.
func (r *DriverRepository) GetByEmail(ctx context.Context, email string) (*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE email = $1`
	return r.getOne(ctx, query, email)
}

// GetAvailable retrieves all drivers currently flagged available.
func (r *DriverRepository) GetAvailable(ctx context.Context) ([]*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE available = TRUE ORDER BY id`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drivers []*domain.Driver
	for rows.Next() {
		driver, err := scanDriver(rows)
		if err != nil {
			return nil, err
		}
		drivers = append(drivers, driver)
	}
	return drivers, rows.Err()
}

// Update updates an existing driver.
func (r *DriverRepository) Update(ctx context.Context, driver *domain.Driver) error {
	query := `
		UPDATE drivers
		SET name = $1, email = $2, phone = $3, vehicle_number = $4, vehicle_type = $5,
		    available = $6, rating = $7, earnings = $8, total_rides = $9,
		    location_lat = $10, location_lng = $11
		WHERE id = $12
	`

	var lat, lng sql.NullFloat64
	if driver.Location != nil {
		lat = sql.NullFloat64{Float64: driver.Location.Latitude, Valid: true}
		lng = sql.NullFloat64{Float64: driver.Location.Longitude, Valid: true}
	}

	result, err := r.q.ExecContext(ctx, query,
		driver.Name, driver.Email, driver.Phone, driver.VehicleNumber, driver.VehicleType,
		driver.Available, driver.Rating, driver.Earnings, driver.TotalRides,
		lat, lng,
		driver.ID,
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

func (r *DriverRepository) getOne(ctx context.Context, query string, arg any) (*domain.Driver, error) {
	driver, err := scanDriver(r.q.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return driver, nil
}

func scanDriver(row rowScanner) (*domain.Driver, error) {
	var driver domain.Driver
	var lat, lng sql.NullFloat64

	err := row.Scan(
		&driver.ID, &driver.Name, &driver.Email, &driver.Phone,
		&driver.VehicleNumber, &driver.VehicleType,
		&driver.Available, &driver.Rating, &driver.Earnings, &driver.TotalRides,
		&lat, &lng,
	)
	if err != nil {
		return nil, err
	}

	if lat.Valid && lng.Valid {
		driver.Location = &domain.Location{Latitude: lat.Float64, Longitude: lng.Float64}
	}

	return &driver, nil
}
