package service

import (
	"context"
	"log"
	"time"

	"github.com/adeolu/swiftride/internal/cache"
	apperrors "github.com/adeolu/swiftride/internal/errors"
	"github.com/adeolu/swiftride/internal/geo"
	"github.com/adeolu/swiftride/internal/models"
	"github.com/adeolu/swiftride/internal/repository"
)

// LocationResolver is the slice of the distance/duration resolver the ride
// service needs. *geo.Resolver satisfies it.
type LocationResolver interface {
	Resolve(ctx context.Context, address string, coords *geo.Point) (*geo.ResolvedLocation, error)
	DistanceDuration(ctx context.Context, origin, dest geo.Point, vehicleClass string) (float64, int, bool)
}

type RideService interface {
	Quote(ctx context.Context, req *models.EstimateRequest) (*models.FareQuote, error)
	Order(ctx context.Context, req *models.CreateRideRequest) (*models.Ride, error)
	GetRide(ctx context.Context, id string) (*models.RideResponse, error)
	ListRides(ctx context.Context, filter *models.RideFilter) ([]*models.RideResponse, error)
	ActiveRideForRider(ctx context.Context, riderID string) (*models.RideResponse, error)
	Cancel(ctx context.Context, id string, req *models.CancelRideRequest) (*models.Ride, error)
	Decline(ctx context.Context, id string) (*models.Ride, error)
	AdvanceStatus(ctx context.Context, id, nextStatus string) (*models.Ride, error)
	Rate(ctx context.Context, id string, req *models.RateRideRequest) error
}

type rideService struct {
	rideRepo   repository.RideRepository
	userRepo   repository.UserRepository
	driverRepo repository.DriverRepository
	resolver   LocationResolver
	pricing    PricingService
	assignment AssignmentService
	rideCache  cache.RideCache
}

func NewRideService(
	rideRepo repository.RideRepository,
	userRepo repository.UserRepository,
	driverRepo repository.DriverRepository,
	resolver LocationResolver,
	pricing PricingService,
	assignment AssignmentService,
	rideCache cache.RideCache,
) RideService {
	return &rideService{
		rideRepo:   rideRepo,
		userRepo:   userRepo,
		driverRepo: driverRepo,
		resolver:   resolver,
		pricing:    pricing,
		assignment: assignment,
		rideCache:  rideCache,
	}
}

// Quote prices a prospective ride without creating anything.
func (s *rideService) Quote(ctx context.Context, req *models.EstimateRequest) (*models.FareQuote, error) {
	pickup, dest, estimated, distanceKm, durationMins, err := s.resolveTrip(ctx, req.Pickup, req.Destination, req.VehicleClass)
	if err != nil {
		return nil, err
	}

	approximate := pickup.Approximate || dest.Approximate || estimated
	return s.pricing.Quote(req.VehicleClass, distanceKm, durationMins, approximate)
}

// Order creates a ride with the fare frozen at order time. The breakdown is
// never rewritten by any later transition.
func (s *rideService) Order(ctx context.Context, req *models.CreateRideRequest) (*models.Ride, error) {
	rider, err := s.userRepo.GetByID(ctx, req.RiderID)
	if err != nil {
		return nil, err
	}
	if rider == nil {
		return nil, apperrors.NotFound("rider")
	}

	activeRide, err := s.rideRepo.GetActiveByRiderID(ctx, req.RiderID)
	if err != nil {
		return nil, err
	}
	if activeRide != nil {
		return nil, apperrors.RiderHasActiveRide()
	}

	pickup, dest, _, distanceKm, durationMins, err := s.resolveTrip(ctx, req.Pickup, req.Destination, req.VehicleClass)
	if err != nil {
		return nil, err
	}

	fare, err := s.pricing.Estimate(req.VehicleClass, distanceKm, durationMins)
	if err != nil {
		return nil, err
	}

	ride := &models.Ride{
		RiderID:       req.RiderID,
		PickupAddress: pickup.Address,
		PickupLat:     pickup.Point.Lat,
		PickupLng:     pickup.Point.Lng,
		DestAddress:   dest.Address,
		DestLat:       dest.Point.Lat,
		DestLng:       dest.Point.Lng,
		VehicleClass:  req.VehicleClass,
		Status:        models.RideStatusPending,
		DistanceKm:    distanceKm,
		DurationMins:  durationMins,
		BaseFare:      fare.BaseFare,
		DistanceFare:  fare.DistanceFare,
		TimeFare:      fare.TimeFare,
		ServiceFee:    fare.ServiceFee,
		TotalFare:     fare.Total,
		PaymentMethod: req.PaymentMethod,
	}
	if req.Instructions != "" {
		ride.Instructions = &req.Instructions
	}

	if err := s.rideRepo.Create(ctx, ride); err != nil {
		return nil, err
	}

	if err := s.rideRepo.UpdateStatus(ctx, ride.ID, models.RideStatusSearching); err != nil {
		log.Printf("failed to update ride status to searching: %v", err)
	} else {
		ride.Status = models.RideStatusSearching
	}

	if s.rideCache != nil {
		if err := s.rideCache.SetRiderActiveRide(ctx, ride.RiderID, ride.ID); err != nil {
			log.Printf("failed to cache rider active ride: %v", err)
		}
	}

	return ride, nil
}

func (s *rideService) resolveTrip(ctx context.Context, pickup, destination models.Location, vehicleClass string) (*geo.ResolvedLocation, *geo.ResolvedLocation, bool, float64, int, error) {
	p, err := s.resolver.Resolve(ctx, pickup.Address, pointFrom(pickup))
	if err != nil {
		if err == apperrors.ErrUnresolvableLocation {
			return nil, nil, false, 0, 0, apperrors.UnresolvableLocation("pickup")
		}
		return nil, nil, false, 0, 0, err
	}

	d, err := s.resolver.Resolve(ctx, destination.Address, pointFrom(destination))
	if err != nil {
		if err == apperrors.ErrUnresolvableLocation {
			return nil, nil, false, 0, 0, apperrors.UnresolvableLocation("destination")
		}
		return nil, nil, false, 0, 0, err
	}

	distanceKm, durationMins, estimated := s.resolver.DistanceDuration(ctx, p.Point, d.Point, vehicleClass)
	return p, d, estimated, distanceKm, durationMins, nil
}

func pointFrom(loc models.Location) *geo.Point {
	if lat, lng, ok := loc.Coords(); ok {
		return &geo.Point{Lat: lat, Lng: lng}
	}
	return nil
}

func (s *rideService) GetRide(ctx context.Context, id string) (*models.RideResponse, error) {
	ride, err := s.rideRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ride == nil {
		return nil, apperrors.NotFound("ride")
	}

	return s.toResponse(ctx, ride), nil
}

func (s *rideService) ListRides(ctx context.Context, filter *models.RideFilter) ([]*models.RideResponse, error) {
	rides, err := s.rideRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]*models.RideResponse, 0, len(rides))
	for _, ride := range rides {
		responses = append(responses, ride.ToResponse())
	}
	return responses, nil
}

func (s *rideService) ActiveRideForRider(ctx context.Context, riderID string) (*models.RideResponse, error) {
	// Cache first, database as the source of truth.
	if s.rideCache != nil {
		if rideID, err := s.rideCache.GetRiderActiveRide(ctx, riderID); err == nil && rideID != "" {
			if ride, err := s.rideRepo.GetByID(ctx, rideID); err == nil && ride != nil && ride.IsActive() {
				return s.toResponse(ctx, ride), nil
			}
		}
	}

	ride, err := s.rideRepo.GetActiveByRiderID(ctx, riderID)
	if err != nil {
		return nil, err
	}
	if ride == nil {
		return nil, apperrors.NotFound("active ride")
	}
	return s.toResponse(ctx, ride), nil
}

// Cancel moves any non-terminal ride to cancelled. A repeated cancel of an
// already cancelled ride succeeds without side effects; cancelling a
// completed ride is rejected.
func (s *rideService) Cancel(ctx context.Context, id string, req *models.CancelRideRequest) (*models.Ride, error) {
	ride, err := s.rideRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ride == nil {
		return nil, apperrors.NotFound("ride")
	}

	if ride.Status == models.RideStatusCancelled {
		return ride, nil
	}
	if ride.Status == models.RideStatusCompleted {
		return nil, apperrors.InvalidTransition(ride.Status, models.RideStatusCancelled)
	}

	wasAssigned := ride.IsAssigned()
	from := ride.Status

	if !ride.ApplyTransition(models.RideStatusCancelled, time.Now()) {
		return nil, apperrors.InvalidTransition(ride.Status, models.RideStatusCancelled)
	}
	ride.CancelledBy = &req.CancelledBy

	won, err := s.rideRepo.SaveTransition(ctx, ride, from)
	if err != nil {
		return nil, err
	}
	if !won {
		// The ride moved under us between the read and the write.
		return nil, apperrors.InvalidTransition(from, models.RideStatusCancelled)
	}

	if wasAssigned {
		if err := s.assignment.Release(ctx, ride); err != nil {
			log.Printf("failed to release driver after cancellation: %v", err)
		}
	} else if s.rideCache != nil {
		if err := s.rideCache.ClearRiderActiveRide(ctx, ride.RiderID); err != nil {
			log.Printf("failed to clear rider active ride cache: %v", err)
		}
	}

	return ride, nil
}

// Decline is the driver's refusal. Before acceptance it returns an offered
// ride to the searching pool; after acceptance it is a driver-initiated
// cancellation, releasing the held driver and vehicle.
func (s *rideService) Decline(ctx context.Context, id string) (*models.Ride, error) {
	ride, err := s.rideRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ride == nil {
		return nil, apperrors.NotFound("ride")
	}

	if ride.IsAssigned() {
		return s.Cancel(ctx, id, &models.CancelRideRequest{
			CancelledBy: "driver",
			Reason:      "declined by driver",
		})
	}

	if ride.Status == models.RideStatusSearching {
		return ride, nil
	}
	if ride.Status != models.RideStatusAwaitingConfirm {
		return nil, apperrors.InvalidTransition(ride.Status, models.RideStatusSearching)
	}

	if !ride.ApplyTransition(models.RideStatusSearching, time.Now()) {
		return nil, apperrors.InvalidTransition(ride.Status, models.RideStatusSearching)
	}
	won, err := s.rideRepo.SaveTransition(ctx, ride, models.RideStatusAwaitingConfirm)
	if err != nil {
		return nil, err
	}
	if !won {
		// An accept won the ride between the read and the write.
		return nil, apperrors.AlreadyAssigned()
	}
	return ride, nil
}

// AdvanceStatus performs the strictly ordered advance
// arrived -> picked_up -> in_progress -> completed. Completion releases the
// driver and credits the trip count and earnings exactly once.
func (s *rideService) AdvanceStatus(ctx context.Context, id, nextStatus string) (*models.Ride, error) {
	ride, err := s.rideRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ride == nil {
		return nil, apperrors.NotFound("ride")
	}

	if models.IsTerminalRideStatus(ride.Status) {
		// Tolerate at-least-once delivery: repeating the terminal state the
		// ride is already in succeeds without repeating side effects.
		if ride.Status == nextStatus {
			return ride, nil
		}
		return nil, apperrors.InvalidTransition(ride.Status, nextStatus)
	}

	from := ride.Status
	if !ride.ApplyTransition(nextStatus, time.Now()) {
		return nil, apperrors.InvalidTransition(ride.Status, nextStatus)
	}

	// Conditional write: a concurrent transition wins the row exactly once,
	// so completion side effects below never run twice for one ride.
	won, err := s.rideRepo.SaveTransition(ctx, ride, from)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, apperrors.InvalidTransition(from, nextStatus)
	}

	if nextStatus == models.RideStatusCompleted {
		if err := s.assignment.Release(ctx, ride); err != nil {
			log.Printf("failed to release driver after completion: %v", err)
		}
		if ride.DriverID != nil {
			if err := s.driverRepo.AddTripEarnings(ctx, *ride.DriverID, ride.TotalFare); err != nil {
				log.Printf("failed to credit driver earnings: %v", err)
			}
		}
	}

	return ride, nil
}

// Rate records the rider's rating of a completed ride and folds it into the
// driver's running average.
func (s *rideService) Rate(ctx context.Context, id string, req *models.RateRideRequest) error {
	ride, err := s.rideRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if ride == nil {
		return apperrors.NotFound("ride")
	}

	if ride.Status != models.RideStatusCompleted {
		return apperrors.BadRequest("only completed rides can be rated")
	}
	if ride.RiderRating != nil {
		return apperrors.Conflict("ride already rated")
	}

	if err := s.rideRepo.Rate(ctx, id, req.Rating, req.Feedback); err != nil {
		return err
	}

	if ride.DriverID != nil {
		driver, err := s.driverRepo.GetByID(ctx, *ride.DriverID)
		if err == nil && driver != nil && driver.TotalTrips > 0 {
			updated := (driver.Rating*float64(driver.TotalTrips) + float64(req.Rating)) / float64(driver.TotalTrips+1)
			if err := s.driverRepo.UpdateRating(ctx, driver.ID, updated); err != nil {
				log.Printf("failed to update driver rating: %v", err)
			}
		}
	}

	return nil
}

func (s *rideService) toResponse(ctx context.Context, ride *models.Ride) *models.RideResponse {
	response := ride.ToResponse()

	rider, err := s.userRepo.GetByID(ctx, ride.RiderID)
	if err == nil && rider != nil {
		response.Rider = rider.ToResponse()
	}

	if ride.DriverID != nil {
		driver, err := s.driverRepo.GetByID(ctx, *ride.DriverID)
		if err == nil && driver != nil {
			response.Driver = driver.ToResponse()
		}
	}

	return response
}
