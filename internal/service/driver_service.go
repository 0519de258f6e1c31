package service

import (
	"context"

	apperrors "github.com/adeolu/swiftride/internal/errors"
	"github.com/adeolu/swiftride/internal/models"
	"github.com/adeolu/swiftride/internal/repository"
)

type DriverService interface {
	CreateDriver(ctx context.Context, req *models.CreateDriverRequest) (*models.Driver, error)
	GetDriver(ctx context.Context, id string) (*models.DriverResponse, error)
	UpdateStatus(ctx context.Context, id, status string) (*models.Driver, error)
	ListAvailable(ctx context.Context) ([]*models.DriverResponse, error)
}

type driverService struct {
	driverRepo  repository.DriverRepository
	vehicleRepo repository.VehicleRepository
	rideRepo    repository.RideRepository
}

func NewDriverService(
	driverRepo repository.DriverRepository,
	vehicleRepo repository.VehicleRepository,
	rideRepo repository.RideRepository,
) DriverService {
	return &driverService{
		driverRepo:  driverRepo,
		vehicleRepo: vehicleRepo,
		rideRepo:    rideRepo,
	}
}

func (s *driverService) CreateDriver(ctx context.Context, req *models.CreateDriverRequest) (*models.Driver, error) {
	existing, err := s.driverRepo.GetByPhone(ctx, req.Phone)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.Conflict("driver with this phone already exists")
	}

	driver := &models.Driver{
		Phone:         req.Phone,
		Name:          req.Name,
		LicenseNumber: req.LicenseNumber,
	}
	if req.Email != "" {
		driver.Email = &req.Email
	}

	if err := s.driverRepo.Create(ctx, driver); err != nil {
		return nil, err
	}

	return driver, nil
}

func (s *driverService) GetDriver(ctx context.Context, id string) (*models.DriverResponse, error) {
	driver, err := s.driverRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if driver == nil {
		return nil, apperrors.NotFound("driver")
	}

	response := driver.ToResponse()
	if driver.HasVehicle() {
		vehicle, err := s.vehicleRepo.GetByID(ctx, *driver.VehicleID)
		if err == nil && vehicle != nil {
			response.Vehicle = vehicle.ToResponse()
		}
	}

	return response, nil
}

// UpdateStatus applies an administrative status change. Changes are checked
// against the lookup table and applied with the current status as a
// precondition, so a driver who went on_ride in the meantime is not clobbered.
func (s *driverService) UpdateStatus(ctx context.Context, id, status string) (*models.Driver, error) {
	driver, err := s.driverRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if driver == nil {
		return nil, apperrors.NotFound("driver")
	}

	if driver.Status == status {
		return driver, nil
	}
	if driver.Status == models.DriverStatusOnRide {
		return nil, apperrors.DriverBusy()
	}
	if !driver.CanChangeStatusTo(status) {
		return nil, apperrors.InvalidTransition(driver.Status, status)
	}

	changed, err := s.driverRepo.ChangeStatusFrom(ctx, id, driver.Status, status)
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, apperrors.AlreadyAssigned()
	}

	driver.Status = status
	return driver, nil
}

func (s *driverService) ListAvailable(ctx context.Context) ([]*models.DriverResponse, error) {
	drivers, err := s.driverRepo.ListAvailable(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]*models.DriverResponse, 0, len(drivers))
	for _, driver := range drivers {
		responses = append(responses, driver.ToResponse())
	}
	return responses, nil
}
