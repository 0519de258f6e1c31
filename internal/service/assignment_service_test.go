package service

import (
	"context"
	"testing"
	"time"

	"github.com/adeolu/swiftride/internal/models"
)

// The validation paths below all fail before the assignment transaction
// opens, so the service is built without a database handle.

type assignFixture struct {
	svc     AssignmentService
	rides   *fakeRideRepo
	drivers *fakeDriverRepo
}

func newAssignFixture(t *testing.T) *assignFixture {
	t.Helper()
	rides := newFakeRideRepo()
	drivers := newFakeDriverRepo()
	return &assignFixture{
		svc:     NewAssignmentService(nil, rides, drivers, nil, nil),
		rides:   rides,
		drivers: drivers,
	}
}

func (f *assignFixture) seedDriver(t *testing.T, status string, withVehicle bool) string {
	t.Helper()
	driver := &models.Driver{Name: "Chidi", Phone: "+2348030000001", Status: status, Rating: 5.0}
	if withVehicle {
		vehicleID := "veh-1"
		driver.VehicleID = &vehicleID
	}
	if err := f.drivers.Create(context.Background(), driver); err != nil {
		t.Fatalf("seed driver: %v", err)
	}
	return driver.ID
}

func (f *assignFixture) seedRide(t *testing.T, status string) string {
	t.Helper()
	ride := &models.Ride{
		RiderID:      "rider-1",
		Status:       status,
		VehicleClass: models.VehicleClassCar,
		TotalFare:    1705,
	}
	if err := f.rides.Create(context.Background(), ride); err != nil {
		t.Fatalf("seed ride: %v", err)
	}
	return ride.ID
}

func TestAssignUnknownDriver(t *testing.T) {
	f := newAssignFixture(t)
	rideID := f.seedRide(t, models.RideStatusSearching)

	_, err := f.svc.Assign(context.Background(), rideID, "missing")
	assertErrorCode(t, err, "not_found")
}

func TestAssignIneligibleDriverStatuses(t *testing.T) {
	tests := []struct {
		status   string
		wantCode string
	}{
		{models.DriverStatusPending, "driver_unavailable"},
		{models.DriverStatusSuspended, "driver_unavailable"},
		{models.DriverStatusInactive, "driver_unavailable"},
		{models.DriverStatusOnRide, "already_assigned"},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			f := newAssignFixture(t)
			rideID := f.seedRide(t, models.RideStatusSearching)
			driverID := f.seedDriver(t, tt.status, true)

			_, err := f.svc.Assign(context.Background(), rideID, driverID)
			assertErrorCode(t, err, tt.wantCode)
		})
	}
}

func TestAssignDriverWithoutVehicle(t *testing.T) {
	f := newAssignFixture(t)
	rideID := f.seedRide(t, models.RideStatusSearching)
	driverID := f.seedDriver(t, models.DriverStatusActive, false)

	_, err := f.svc.Assign(context.Background(), rideID, driverID)
	assertErrorCode(t, err, "driver_unavailable")
}

func TestAssignUnknownRide(t *testing.T) {
	f := newAssignFixture(t)
	driverID := f.seedDriver(t, models.DriverStatusActive, true)

	_, err := f.svc.Assign(context.Background(), "missing", driverID)
	assertErrorCode(t, err, "not_found")
}

func TestAssignAlreadyClaimedRide(t *testing.T) {
	f := newAssignFixture(t)
	driverID := f.seedDriver(t, models.DriverStatusActive, true)

	for _, status := range []string{models.RideStatusAccepted, models.RideStatusInProgress} {
		t.Run(status, func(t *testing.T) {
			rideID := f.seedRide(t, status)
			_, err := f.svc.Assign(context.Background(), rideID, driverID)
			assertErrorCode(t, err, "already_assigned")
		})
	}
}

func TestAssignTerminalRide(t *testing.T) {
	f := newAssignFixture(t)
	driverID := f.seedDriver(t, models.DriverStatusActive, true)

	for _, status := range []string{models.RideStatusCompleted, models.RideStatusCancelled} {
		t.Run(status, func(t *testing.T) {
			rideID := f.seedRide(t, status)
			_, err := f.svc.Assign(context.Background(), rideID, driverID)
			assertErrorCode(t, err, "invalid_transition")
		})
	}
}

// staleDriverReads serves a frozen snapshot of one driver while the
// compare-and-set writes still hit the live store.
type staleDriverReads struct {
	*fakeDriverRepo
	snapshot models.Driver
}

func (s *staleDriverReads) GetByID(ctx context.Context, id string) (*models.Driver, error) {
	if id == s.snapshot.ID {
		copied := s.snapshot
		return &copied, nil
	}
	return s.fakeDriverRepo.GetByID(ctx, id)
}

func TestAssignAcceptsRideAndClaimsDriver(t *testing.T) {
	f := newAssignFixture(t)
	f.svc = NewAssignmentService(newStubDB(t), f.rides, f.drivers, nil, nil)
	rideID := f.seedRide(t, models.RideStatusSearching)
	driverID := f.seedDriver(t, models.DriverStatusActive, true)

	ride, err := f.svc.Assign(context.Background(), rideID, driverID)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if ride.Status != models.RideStatusAccepted {
		t.Errorf("expected accepted, got %s", ride.Status)
	}
	if ride.DriverID == nil || *ride.DriverID != driverID {
		t.Errorf("driver not recorded on ride: %v", ride.DriverID)
	}
	if ride.AcceptedAt == nil {
		t.Error("accepted_at not set")
	}
	driver, _ := f.drivers.GetByID(context.Background(), driverID)
	if driver.Status != models.DriverStatusOnRide {
		t.Errorf("expected driver on_ride, got %s", driver.Status)
	}
}

func TestAssignSingleWinnerPerDriver(t *testing.T) {
	f := newAssignFixture(t)
	ride1 := f.seedRide(t, models.RideStatusSearching)
	ride2 := f.seedRide(t, models.RideStatusSearching)
	driverID := f.seedDriver(t, models.DriverStatusActive, true)

	// Both callers read the driver while still active; the claim decides.
	active, err := f.drivers.GetByID(context.Background(), driverID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	stale := &staleDriverReads{fakeDriverRepo: f.drivers, snapshot: *active}
	svc := NewAssignmentService(newStubDB(t), f.rides, stale, nil, nil)

	if _, err := svc.Assign(context.Background(), ride1, driverID); err != nil {
		t.Fatalf("first Assign: %v", err)
	}
	_, err = svc.Assign(context.Background(), ride2, driverID)
	assertErrorCode(t, err, "already_assigned")

	second, err := f.rides.GetByID(context.Background(), ride2)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if second.Status != models.RideStatusSearching || second.DriverID != nil {
		t.Errorf("losing assignment must leave the ride unclaimed: status=%s driver=%v", second.Status, second.DriverID)
	}
}

func TestUnbindVehicleReleasesBothSides(t *testing.T) {
	f := newAssignFixture(t)
	vehicles := newFakeVehicleRepo()
	f.svc = NewAssignmentService(newStubDB(t), f.rides, f.drivers, vehicles, nil)
	driverID := f.seedDriver(t, models.DriverStatusActive, true)
	if err := vehicles.Create(context.Background(), &models.Vehicle{ID: "veh-1", Class: models.VehicleClassCar, Status: models.VehicleStatusAssigned}); err != nil {
		t.Fatalf("seed vehicle: %v", err)
	}

	driver, err := f.svc.UnbindVehicle(context.Background(), driverID)
	if err != nil {
		t.Fatalf("UnbindVehicle: %v", err)
	}
	if driver.HasVehicle() {
		t.Error("driver still has a vehicle after unbind")
	}
	vehicle, _ := vehicles.GetByID(context.Background(), "veh-1")
	if vehicle.Status != models.VehicleStatusAvailable {
		t.Errorf("expected vehicle available, got %s", vehicle.Status)
	}
}

func TestUnbindVehicleStateMismatch(t *testing.T) {
	f := newAssignFixture(t)
	vehicles := newFakeVehicleRepo()
	f.svc = NewAssignmentService(newStubDB(t), f.rides, f.drivers, vehicles, nil)
	driverID := f.seedDriver(t, models.DriverStatusActive, true)
	if err := vehicles.Create(context.Background(), &models.Vehicle{ID: "veh-1", Class: models.VehicleClassCar, Status: models.VehicleStatusMaintenance}); err != nil {
		t.Fatalf("seed vehicle: %v", err)
	}

	_, err := f.svc.UnbindVehicle(context.Background(), driverID)
	assertErrorCode(t, err, "conflict")

	driver, _ := f.drivers.GetByID(context.Background(), driverID)
	if !driver.HasVehicle() {
		t.Error("failed unbind must leave the driver's vehicle in place")
	}
}

func TestReleaseWithoutDriverIsNoOp(t *testing.T) {
	f := newAssignFixture(t)
	ride := &models.Ride{ID: "ride-1", RiderID: "rider-1", Status: models.RideStatusCancelled}

	if err := f.svc.Release(context.Background(), ride); err != nil {
		t.Fatalf("Release: %v", err)
	}
}

func TestReleaseReturnsDriverToActive(t *testing.T) {
	f := newAssignFixture(t)
	driverID := f.seedDriver(t, models.DriverStatusOnRide, true)
	now := time.Now()
	ride := &models.Ride{ID: "ride-1", RiderID: "rider-1", DriverID: &driverID, Status: models.RideStatusCompleted, CompletedAt: &now}

	if err := f.svc.Release(context.Background(), ride); err != nil {
		t.Fatalf("Release: %v", err)
	}
	driver, err := f.drivers.GetByID(context.Background(), driverID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if driver.Status != models.DriverStatusActive {
		t.Errorf("expected driver active after release, got %s", driver.Status)
	}
	if !driver.HasVehicle() {
		t.Error("release must not unbind the vehicle")
	}
}
