package service

import (
	"context"
	"database/sql"
	sqldriver "database/sql/driver"
	"sync"
	"testing"
	"time"

	"github.com/adeolu/swiftride/internal/geo"
	"github.com/adeolu/swiftride/internal/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// In-memory repository fakes for exercising service logic without a database.

type fakeRideRepo struct {
	rides map[string]*models.Ride
}

func newFakeRideRepo() *fakeRideRepo {
	return &fakeRideRepo{rides: make(map[string]*models.Ride)}
}

func (f *fakeRideRepo) Create(ctx context.Context, ride *models.Ride) error {
	if ride.ID == "" {
		ride.ID = uuid.New().String()
	}
	now := time.Now()
	ride.RequestedAt = now
	ride.CreatedAt = now
	ride.UpdatedAt = now
	stored := *ride
	f.rides[ride.ID] = &stored
	return nil
}

func (f *fakeRideRepo) GetByID(ctx context.Context, id string) (*models.Ride, error) {
	ride, ok := f.rides[id]
	if !ok {
		return nil, nil
	}
	copied := *ride
	return &copied, nil
}

func (f *fakeRideRepo) GetByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*models.Ride, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeRideRepo) AcceptWithDriver(ctx context.Context, tx *sqlx.Tx, rideID, driverID, vehicleID string, acceptedAt time.Time) (bool, error) {
	ride, ok := f.rides[rideID]
	if !ok || !models.IsUnassignedRideStatus(ride.Status) {
		return false, nil
	}
	ride.DriverID = &driverID
	ride.VehicleID = &vehicleID
	ride.Status = models.RideStatusAccepted
	ride.AcceptedAt = &acceptedAt
	return true, nil
}

func (f *fakeRideRepo) SaveTransition(ctx context.Context, ride *models.Ride, from string) (bool, error) {
	stored, ok := f.rides[ride.ID]
	if !ok || stored.Status != from {
		return false, nil
	}
	stored.Status = ride.Status
	stored.ArrivedAt = ride.ArrivedAt
	stored.PickedUpAt = ride.PickedUpAt
	stored.StartedAt = ride.StartedAt
	stored.CompletedAt = ride.CompletedAt
	stored.CancelledAt = ride.CancelledAt
	stored.CancelledBy = ride.CancelledBy
	stored.UpdatedAt = time.Now()
	return true, nil
}

func (f *fakeRideRepo) UpdateStatus(ctx context.Context, id, status string) error {
	if ride, ok := f.rides[id]; ok {
		ride.Status = status
	}
	return nil
}

func (f *fakeRideRepo) Rate(ctx context.Context, id string, rating int, feedback string) error {
	if ride, ok := f.rides[id]; ok {
		ride.RiderRating = &rating
		ride.RiderFeedback = &feedback
	}
	return nil
}

func (f *fakeRideRepo) GetActiveByRiderID(ctx context.Context, riderID string) (*models.Ride, error) {
	for _, ride := range f.rides {
		if ride.RiderID == riderID && ride.IsActive() {
			copied := *ride
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeRideRepo) GetActiveByDriverID(ctx context.Context, driverID string) (*models.Ride, error) {
	for _, ride := range f.rides {
		if ride.DriverID != nil && *ride.DriverID == driverID && ride.IsActive() {
			copied := *ride
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeRideRepo) List(ctx context.Context, filter *models.RideFilter) ([]*models.Ride, error) {
	var out []*models.Ride
	for _, ride := range f.rides {
		if filter != nil {
			if filter.RiderID != "" && ride.RiderID != filter.RiderID {
				continue
			}
			if filter.DriverID != "" && (ride.DriverID == nil || *ride.DriverID != filter.DriverID) {
				continue
			}
			if filter.Status != "" && ride.Status != filter.Status {
				continue
			}
		}
		copied := *ride
		out = append(out, &copied)
	}
	return out, nil
}

type fakeUserRepo struct {
	users map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	return f.users[id], nil
}

func (f *fakeUserRepo) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	for _, u := range f.users {
		if u.Phone == phone {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) UpdateRating(ctx context.Context, id string, rating float64) error {
	if u, ok := f.users[id]; ok {
		u.Rating = rating
	}
	return nil
}

type fakeDriverRepo struct {
	drivers  map[string]*models.Driver
	earnings map[string]int64
	trips    map[string]int
}

func newFakeDriverRepo() *fakeDriverRepo {
	return &fakeDriverRepo{
		drivers:  make(map[string]*models.Driver),
		earnings: make(map[string]int64),
		trips:    make(map[string]int),
	}
}

func (f *fakeDriverRepo) Create(ctx context.Context, driver *models.Driver) error {
	if driver.ID == "" {
		driver.ID = uuid.New().String()
	}
	if driver.Status == "" {
		driver.Status = models.DriverStatusPending
	}
	f.drivers[driver.ID] = driver
	return nil
}

func (f *fakeDriverRepo) GetByID(ctx context.Context, id string) (*models.Driver, error) {
	driver, ok := f.drivers[id]
	if !ok {
		return nil, nil
	}
	copied := *driver
	return &copied, nil
}

func (f *fakeDriverRepo) GetByPhone(ctx context.Context, phone string) (*models.Driver, error) {
	for _, d := range f.drivers {
		if d.Phone == phone {
			copied := *d
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeDriverRepo) GetByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*models.Driver, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeDriverRepo) UpdateStatus(ctx context.Context, id, status string) error {
	if d, ok := f.drivers[id]; ok {
		d.Status = status
	}
	return nil
}

func (f *fakeDriverRepo) ClaimForRide(ctx context.Context, tx *sqlx.Tx, id string) (bool, error) {
	d, ok := f.drivers[id]
	if !ok || d.Status != models.DriverStatusActive || !d.HasVehicle() {
		return false, nil
	}
	d.Status = models.DriverStatusOnRide
	return true, nil
}

func (f *fakeDriverRepo) ReleaseFromRide(ctx context.Context, id string) error {
	if d, ok := f.drivers[id]; ok {
		d.Status = models.DriverStatusActive
	}
	return nil
}

func (f *fakeDriverRepo) ChangeStatusFrom(ctx context.Context, id, from, to string) (bool, error) {
	d, ok := f.drivers[id]
	if !ok || d.Status != from {
		return false, nil
	}
	d.Status = to
	return true, nil
}

func (f *fakeDriverRepo) BindVehicle(ctx context.Context, tx *sqlx.Tx, driverID, vehicleID string) (bool, error) {
	d, ok := f.drivers[driverID]
	if !ok || d.HasVehicle() {
		return false, nil
	}
	d.VehicleID = &vehicleID
	return true, nil
}

func (f *fakeDriverRepo) UnbindVehicle(ctx context.Context, tx *sqlx.Tx, driverID string) error {
	if d, ok := f.drivers[driverID]; ok {
		d.VehicleID = nil
	}
	return nil
}

func (f *fakeDriverRepo) AddTripEarnings(ctx context.Context, id string, earnings int64) error {
	f.earnings[id] += earnings
	f.trips[id]++
	if d, ok := f.drivers[id]; ok {
		d.TotalTrips++
		d.TotalEarnings += earnings
	}
	return nil
}

func (f *fakeDriverRepo) UpdateRating(ctx context.Context, id string, rating float64) error {
	if d, ok := f.drivers[id]; ok {
		d.Rating = rating
	}
	return nil
}

func (f *fakeDriverRepo) ListAvailable(ctx context.Context) ([]*models.Driver, error) {
	var out []*models.Driver
	for _, d := range f.drivers {
		if d.Status == models.DriverStatusActive && d.HasVehicle() {
			copied := *d
			out = append(out, &copied)
		}
	}
	return out, nil
}

// fakeResolver resolves every address to a fixed pair of points with a
// deterministic distance.
type fakeResolver struct {
	distanceKm   float64
	durationMins int
	estimated    bool
}

func (f *fakeResolver) Resolve(ctx context.Context, address string, coords *geo.Point) (*geo.ResolvedLocation, error) {
	if coords != nil {
		return &geo.ResolvedLocation{Address: address, Point: *coords}, nil
	}
	return &geo.ResolvedLocation{Address: address, Point: geo.Point{Lat: 6.52, Lng: 3.37}}, nil
}

func (f *fakeResolver) DistanceDuration(ctx context.Context, origin, dest geo.Point, vehicleClass string) (float64, int, bool) {
	return f.distanceKm, f.durationMins, f.estimated
}

// fakeAssignment records release calls for the ride service tests.
type fakeAssignment struct {
	released []string
}

func (f *fakeAssignment) Assign(ctx context.Context, rideID, driverID string) (*models.Ride, error) {
	return nil, nil
}

func (f *fakeAssignment) Release(ctx context.Context, ride *models.Ride) error {
	f.released = append(f.released, ride.ID)
	return nil
}

func (f *fakeAssignment) BindVehicle(ctx context.Context, driverID, vehicleID string) (*models.Driver, error) {
	return nil, nil
}

func (f *fakeAssignment) UnbindVehicle(ctx context.Context, driverID string) (*models.Driver, error) {
	return nil, nil
}

type fakeVehicleRepo struct {
	vehicles map[string]*models.Vehicle
}

func newFakeVehicleRepo() *fakeVehicleRepo {
	return &fakeVehicleRepo{vehicles: make(map[string]*models.Vehicle)}
}

func (f *fakeVehicleRepo) Create(ctx context.Context, vehicle *models.Vehicle) error {
	if vehicle.ID == "" {
		vehicle.ID = uuid.New().String()
	}
	if vehicle.Status == "" {
		vehicle.Status = models.VehicleStatusAvailable
	}
	f.vehicles[vehicle.ID] = vehicle
	return nil
}

func (f *fakeVehicleRepo) GetByID(ctx context.Context, id string) (*models.Vehicle, error) {
	v, ok := f.vehicles[id]
	if !ok {
		return nil, nil
	}
	copied := *v
	return &copied, nil
}

func (f *fakeVehicleRepo) GetByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*models.Vehicle, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeVehicleRepo) List(ctx context.Context) ([]*models.Vehicle, error) {
	var out []*models.Vehicle
	for _, v := range f.vehicles {
		copied := *v
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeVehicleRepo) ListAvailable(ctx context.Context) ([]*models.Vehicle, error) {
	var out []*models.Vehicle
	for _, v := range f.vehicles {
		if v.Status == models.VehicleStatusAvailable {
			copied := *v
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeVehicleRepo) ChangeStatusFrom(ctx context.Context, tx *sqlx.Tx, id, from, to string) (bool, error) {
	v, ok := f.vehicles[id]
	if !ok || v.Status != from {
		return false, nil
	}
	v.Status = to
	return true, nil
}

// noopDriver backs a *sqlx.DB whose transactions begin and commit without a
// server, so transactional service paths run against the in-memory fakes.
type noopDriver struct{}

func (noopDriver) Open(name string) (sqldriver.Conn, error) { return noopConn{}, nil }

type noopConn struct{}

func (noopConn) Prepare(query string) (sqldriver.Stmt, error) { return nil, sqldriver.ErrSkip }
func (noopConn) Close() error                                 { return nil }
func (noopConn) Begin() (sqldriver.Tx, error)                 { return noopTx{}, nil }

type noopTx struct{}

func (noopTx) Commit() error   { return nil }
func (noopTx) Rollback() error { return nil }

var registerNoopDriver sync.Once

func newStubDB(t *testing.T) *sqlx.DB {
	t.Helper()
	registerNoopDriver.Do(func() {
		sql.Register("noop", noopDriver{})
	})
	db, err := sql.Open("noop", "")
	if err != nil {
		t.Fatalf("open stub db: %v", err)
	}
	return sqlx.NewDb(db, "postgres")
}
