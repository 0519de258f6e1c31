package service

import (
	"context"
	"log"
	"time"

	"github.com/adeolu/swiftride/internal/cache"
	apperrors "github.com/adeolu/swiftride/internal/errors"
	"github.com/adeolu/swiftride/internal/models"
	"github.com/adeolu/swiftride/internal/repository"
	"github.com/jmoiron/sqlx"
)

// AssignmentService is the driver/vehicle assignment registry. It owns the
// exclusivity invariants: at most one active ride per driver and at most one
// vehicle per driver. Every multi-record mutation happens in a single
// transaction with compare-and-set preconditions, so concurrent callers
// racing for the same driver or ride produce exactly one winner.
type AssignmentService interface {
	Assign(ctx context.Context, rideID, driverID string) (*models.Ride, error)
	Release(ctx context.Context, ride *models.Ride) error
	BindVehicle(ctx context.Context, driverID, vehicleID string) (*models.Driver, error)
	UnbindVehicle(ctx context.Context, driverID string) (*models.Driver, error)
}

type assignmentService struct {
	db          *sqlx.DB
	rideRepo    repository.RideRepository
	driverRepo  repository.DriverRepository
	vehicleRepo repository.VehicleRepository
	rideCache   cache.RideCache
}

func NewAssignmentService(
	db *sqlx.DB,
	rideRepo repository.RideRepository,
	driverRepo repository.DriverRepository,
	vehicleRepo repository.VehicleRepository,
	rideCache cache.RideCache,
) AssignmentService {
	return &assignmentService{
		db:          db,
		rideRepo:    rideRepo,
		driverRepo:  driverRepo,
		vehicleRepo: vehicleRepo,
		rideCache:   rideCache,
	}
}

func (s *assignmentService) Assign(ctx context.Context, rideID, driverID string) (*models.Ride, error) {
	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if driver == nil {
		return nil, apperrors.NotFound("driver")
	}

	switch driver.Status {
	case models.DriverStatusActive:
		// eligible
	case models.DriverStatusOnRide:
		return nil, apperrors.AlreadyAssigned()
	default:
		return nil, apperrors.DriverUnavailable("driver status is " + driver.Status)
	}

	if !driver.HasVehicle() {
		return nil, apperrors.DriverUnavailable("driver has no vehicle on file")
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if ride == nil {
		return nil, apperrors.NotFound("ride")
	}
	if !models.IsUnassignedRideStatus(ride.Status) {
		if models.IsTerminalRideStatus(ride.Status) {
			return nil, apperrors.InvalidTransition(ride.Status, models.RideStatusAccepted)
		}
		return nil, apperrors.AlreadyAssigned()
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// Claim the driver first: active -> on_ride. A concurrent assignment
	// for the same driver loses exactly here.
	claimed, err := s.driverRepo.ClaimForRide(ctx, tx, driverID)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, apperrors.AlreadyAssigned()
	}

	now := time.Now()
	accepted, err := s.rideRepo.AcceptWithDriver(ctx, tx, rideID, driverID, *driver.VehicleID, now)
	if err != nil {
		return nil, err
	}
	if !accepted {
		// The ride was claimed or cancelled between our read and the update.
		return nil, apperrors.AlreadyAssigned()
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	ride.DriverID = &driverID
	ride.VehicleID = driver.VehicleID
	ride.Status = models.RideStatusAccepted
	ride.AcceptedAt = &now

	if s.rideCache != nil {
		if err := s.rideCache.SetDriverActiveRide(ctx, driverID, rideID); err != nil {
			log.Printf("failed to cache driver active ride: %v", err)
		}
		if err := s.rideCache.SetRiderActiveRide(ctx, ride.RiderID, rideID); err != nil {
			log.Printf("failed to cache rider active ride: %v", err)
		}
	}

	return ride, nil
}

// Release returns the ride's driver to active after completion or
// cancellation-from-assigned. The vehicle stays bound to its driver across
// rides; unbinding is a separate administrative operation.
func (s *assignmentService) Release(ctx context.Context, ride *models.Ride) error {
	if ride.DriverID == nil {
		return nil
	}

	if err := s.driverRepo.ReleaseFromRide(ctx, *ride.DriverID); err != nil {
		return err
	}

	if s.rideCache != nil {
		if err := s.rideCache.ClearDriverActiveRide(ctx, *ride.DriverID); err != nil {
			log.Printf("failed to clear driver active ride cache: %v", err)
		}
		if err := s.rideCache.ClearRiderActiveRide(ctx, ride.RiderID); err != nil {
			log.Printf("failed to clear rider active ride cache: %v", err)
		}
	}

	return nil
}

// BindVehicle is the administrative vehicle-to-driver assignment. The vehicle
// must be available and the driver must not already have one; both sides flip
// in one transaction.
func (s *assignmentService) BindVehicle(ctx context.Context, driverID, vehicleID string) (*models.Driver, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	driver, err := s.driverRepo.GetByIDForUpdate(ctx, tx, driverID)
	if err != nil {
		return nil, err
	}
	if driver == nil {
		return nil, apperrors.NotFound("driver")
	}
	if driver.HasVehicle() {
		return nil, apperrors.Conflict("driver already has a vehicle assigned")
	}

	vehicle, err := s.vehicleRepo.GetByIDForUpdate(ctx, tx, vehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle == nil {
		return nil, apperrors.NotFound("vehicle")
	}

	flipped, err := s.vehicleRepo.ChangeStatusFrom(ctx, tx, vehicleID, models.VehicleStatusAvailable, models.VehicleStatusAssigned)
	if err != nil {
		return nil, err
	}
	if !flipped {
		return nil, apperrors.VehicleUnavailable()
	}

	bound, err := s.driverRepo.BindVehicle(ctx, tx, driverID, vehicleID)
	if err != nil {
		return nil, err
	}
	if !bound {
		return nil, apperrors.Conflict("driver already has a vehicle assigned")
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	driver.VehicleID = &vehicleID
	return driver, nil
}

// UnbindVehicle removes a driver's vehicle. Rejected with DriverBusy while
// the driver has a ride in a post-acceptance, non-terminal status.
func (s *assignmentService) UnbindVehicle(ctx context.Context, driverID string) (*models.Driver, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	driver, err := s.driverRepo.GetByIDForUpdate(ctx, tx, driverID)
	if err != nil {
		return nil, err
	}
	if driver == nil {
		return nil, apperrors.NotFound("driver")
	}
	if driver.Status == models.DriverStatusOnRide {
		return nil, apperrors.DriverBusy()
	}
	if !driver.HasVehicle() {
		return nil, apperrors.BadRequest("driver has no vehicle assigned")
	}

	activeRide, err := s.rideRepo.GetActiveByDriverID(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if activeRide != nil && !models.IsUnassignedRideStatus(activeRide.Status) {
		return nil, apperrors.DriverBusy()
	}

	vehicleID := *driver.VehicleID
	flipped, err := s.vehicleRepo.ChangeStatusFrom(ctx, tx, vehicleID, models.VehicleStatusAssigned, models.VehicleStatusAvailable)
	if err != nil {
		return nil, err
	}
	if !flipped {
		return nil, apperrors.Conflict("vehicle is not in assigned state")
	}

	if err := s.driverRepo.UnbindVehicle(ctx, tx, driverID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	driver.VehicleID = nil
	return driver, nil
}
