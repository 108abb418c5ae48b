package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"rideshare/internal/domain"
	"rideshare/internal/repository"
)

// UserService handles passenger and driver registration and passenger
// wallet operations.
type UserService struct {
	passengerRepo repository.PassengerRepository
	driverRepo    repository.DriverRepository
	locks         *Locks
}

// NewUserService creates a new UserService. locks must be the same set the
// lifecycle engine uses, so top-ups contend with settlement debits.
func NewUserService(passengerRepo repository.PassengerRepository, driverRepo repository.DriverRepository, locks *Locks) *UserService {
	return &UserService{
		passengerRepo: passengerRepo,
		driverRepo:    driverRepo,
		locks:         locks,
	}
}

// RegisterPassengerInput contains the parameters for registering a passenger.
type RegisterPassengerInput struct {
	Name  string
	Email string
	Phone string
}

// RegisterPassenger creates a passenger account with a zero wallet balance.
// The email must not already be registered.
func (s *UserService) RegisterPassenger(ctx context.Context, in RegisterPassengerInput) (*domain.Passenger, error) {
	if _, err := s.passengerRepo.GetByEmail(ctx, in.Email); err == nil {
		return nil, ErrEmailAlreadyRegistered
	} else if err != repository.ErrNotFound {
		return nil, err
	}

	passenger := &domain.Passenger{
		ID:        uuid.New().String(),
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		CreatedAt: time.Now(),
	}

	if err := s.passengerRepo.Create(ctx, passenger); err != nil {
		return nil, err
	}
	return passenger, nil
}

// RegisterDriverInput contains the parameters for registering a driver.
type RegisterDriverInput struct {
	Name          string
	Email         string
	Phone         string
	VehicleNumber string
	VehicleType   string
}

// RegisterDriver creates a driver account. New drivers start available with
// no reported location, so they stay out of matching until they report one.
func (s *UserService) RegisterDriver(ctx context.Context, in RegisterDriverInput) (*domain.Driver, error) {
	if _, err := s.driverRepo.GetByEmail(ctx, in.Email); err == nil {
		return nil, ErrEmailAlreadyRegistered
	} else if err != repository.ErrNotFound {
		return nil, err
	}

	driver := &domain.Driver{
		ID:            uuid.New().String(),
		Name:          in.Name,
		Email:         in.Email,
		Phone:         in.Phone,
		VehicleNumber: in.VehicleNumber,
		VehicleType:   in.VehicleType,
		Available:     true,
	}

	if err := s.driverRepo.Create(ctx, driver); err != nil {
		return nil, err
	}
	return driver, nil
}

// GetPassenger retrieves a passenger by ID.
func (s *UserService) GetPassenger(ctx context.Context, passengerID string) (*domain.Passenger, error) {
	if passengerID == "" {
		return nil, ErrInvalidPassengerID
	}
	return s.passengerRepo.GetByID(ctx, passengerID)
}

// TopUpWallet credits the passenger's wallet and returns the new balance.
func (s *UserService) TopUpWallet(ctx context.Context, passengerID string, amount float64) (float64, error) {
	if passengerID == "" {
		return 0, ErrInvalidPassengerID
	}
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	s.locks.wallets.get(passengerID).Lock()
	defer s.locks.wallets.get(passengerID).Unlock()

	passenger, err := s.passengerRepo.GetByID(ctx, passengerID)
	if err != nil {
		return 0, err
	}

	passenger.WalletBalance += amount
	if err := s.passengerRepo.Update(ctx, passenger); err != nil {
		return 0, err
	}
	return passenger.WalletBalance, nil
}

// GetWalletBalance returns the passenger's current wallet balance.
func (s *UserService) GetWalletBalance(ctx context.Context, passengerID string) (float64, error) {
	passenger, err := s.GetPassenger(ctx, passengerID)
	if err != nil {
		return 0, err
	}
	return passenger.WalletBalance, nil
}
