package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/adeolu/swiftride/internal/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type RideRepository interface {
	Create(ctx context.Context, ride *models.Ride) error
	GetByID(ctx context.Context, id string) (*models.Ride, error)
	GetByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*models.Ride, error)
	// AcceptWithDriver binds driver and vehicle and moves the ride to accepted,
	// only while the ride is still unassigned. Returns false when a concurrent
	// caller won the ride first.
	AcceptWithDriver(ctx context.Context, tx *sqlx.Tx, rideID, driverID, vehicleID string, acceptedAt time.Time) (bool, error)
	// SaveTransition persists status and transition timestamps after an
	// ApplyTransition, but only while the stored status still equals from.
	// Returns false when a concurrent transition won the row first. Fare
	// fields are deliberately not writable here.
	SaveTransition(ctx context.Context, ride *models.Ride, from string) (bool, error)
	UpdateStatus(ctx context.Context, id, status string) error
	Rate(ctx context.Context, id string, rating int, feedback string) error
	GetActiveByRiderID(ctx context.Context, riderID string) (*models.Ride, error)
	GetActiveByDriverID(ctx context.Context, driverID string) (*models.Ride, error)
	List(ctx context.Context, filter *models.RideFilter) ([]*models.Ride, error)
}

type rideRepository struct {
	db *sqlx.DB
}

func NewRideRepository(db *sqlx.DB) RideRepository {
	return &rideRepository{db: db}
}

func (r *rideRepository) Create(ctx context.Context, ride *models.Ride) error {
	if ride.ID == "" {
		ride.ID = uuid.New().String()
	}
	now := time.Now()
	ride.RequestedAt = now
	ride.CreatedAt = now
	ride.UpdatedAt = now

	query := `
		INSERT INTO rides (id, rider_id, pickup_address, pickup_lat, pickup_lng,
			dest_address, dest_lat, dest_lng, vehicle_class, status,
			distance_km, duration_mins, base_fare, distance_fare, time_fare,
			service_fee, total_fare, payment_method, instructions, requested_at,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22)
	`
	_, err := r.db.ExecContext(ctx, query,
		ride.ID, ride.RiderID, ride.PickupAddress, ride.PickupLat, ride.PickupLng,
		ride.DestAddress, ride.DestLat, ride.DestLng, ride.VehicleClass, ride.Status,
		ride.DistanceKm, ride.DurationMins, ride.BaseFare, ride.DistanceFare,
		ride.TimeFare, ride.ServiceFee, ride.TotalFare, ride.PaymentMethod,
		ride.Instructions, ride.RequestedAt, ride.CreatedAt, ride.UpdatedAt)
	return err
}

func (r *rideRepository) GetByID(ctx context.Context, id string) (*models.Ride, error) {
	var ride models.Ride
	query := `SELECT * FROM rides WHERE id = $1`
	err := r.db.GetContext(ctx, &ride, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &ride, err
}

// GetByIDForUpdate gets a ride with a FOR UPDATE row lock inside tx.
func (r *rideRepository) GetByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*models.Ride, error) {
	var ride models.Ride
	query := `SELECT * FROM rides WHERE id = $1 FOR UPDATE`
	err := tx.GetContext(ctx, &ride, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &ride, err
}

func (r *rideRepository) AcceptWithDriver(ctx context.Context, tx *sqlx.Tx, rideID, driverID, vehicleID string, acceptedAt time.Time) (bool, error) {
	query := `
		UPDATE rides
		SET driver_id = $1, vehicle_id = $2, status = $3, accepted_at = $4, updated_at = $4
		WHERE id = $5 AND status IN ($6, $7, $8)
	`
	res, err := tx.ExecContext(ctx, query,
		driverID, vehicleID, models.RideStatusAccepted, acceptedAt, rideID,
		models.RideStatusPending, models.RideStatusSearching, models.RideStatusAwaitingConfirm)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	return affected == 1, err
}

func (r *rideRepository) SaveTransition(ctx context.Context, ride *models.Ride, from string) (bool, error) {
	ride.UpdatedAt = time.Now()
	query := `
		UPDATE rides
		SET status = $1, arrived_at = $2, picked_up_at = $3, started_at = $4,
			completed_at = $5, cancelled_at = $6, cancelled_by = $7, updated_at = $8
		WHERE id = $9 AND status = $10
	`
	res, err := r.db.ExecContext(ctx, query,
		ride.Status, ride.ArrivedAt, ride.PickedUpAt, ride.StartedAt,
		ride.CompletedAt, ride.CancelledAt, ride.CancelledBy, ride.UpdatedAt, ride.ID, from)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	return affected == 1, err
}

func (r *rideRepository) UpdateStatus(ctx context.Context, id, status string) error {
	query := `UPDATE rides SET status = $1, updated_at = $2 WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	return err
}

func (r *rideRepository) Rate(ctx context.Context, id string, rating int, feedback string) error {
	query := `UPDATE rides SET rider_rating = $1, rider_feedback = $2, updated_at = $3 WHERE id = $4`
	_, err := r.db.ExecContext(ctx, query, rating, feedback, time.Now(), id)
	return err
}

func (r *rideRepository) GetActiveByRiderID(ctx context.Context, riderID string) (*models.Ride, error) {
	var ride models.Ride
	query := `
		SELECT * FROM rides
		WHERE rider_id = $1 AND status NOT IN ($2, $3)
		ORDER BY created_at DESC
		LIMIT 1
	`
	err := r.db.GetContext(ctx, &ride, query, riderID, models.RideStatusCompleted, models.RideStatusCancelled)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &ride, err
}

func (r *rideRepository) GetActiveByDriverID(ctx context.Context, driverID string) (*models.Ride, error) {
	var ride models.Ride
	query := `
		SELECT * FROM rides
		WHERE driver_id = $1 AND status NOT IN ($2, $3)
		ORDER BY created_at DESC
		LIMIT 1
	`
	err := r.db.GetContext(ctx, &ride, query, driverID, models.RideStatusCompleted, models.RideStatusCancelled)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &ride, err
}

func (r *rideRepository) List(ctx context.Context, filter *models.RideFilter) ([]*models.Ride, error) {
	query := `SELECT * FROM rides WHERE 1=1`
	args := []interface{}{}
	idx := 1

	if filter != nil {
		if filter.RiderID != "" {
			query += fmt.Sprintf(" AND rider_id = $%d", idx)
			args = append(args, filter.RiderID)
			idx++
		}
		if filter.DriverID != "" {
			query += fmt.Sprintf(" AND driver_id = $%d", idx)
			args = append(args, filter.DriverID)
			idx++
		}
		if filter.Status != "" {
			query += fmt.Sprintf(" AND status = $%d", idx)
			args = append(args, filter.Status)
			idx++
		}
	}

	query += " ORDER BY created_at DESC"

	limit := 100
	if filter != nil && filter.Limit > 0 {
		limit = filter.Limit
	}
	query += fmt.Sprintf(" LIMIT $%d", idx)
	args = append(args, limit)

	var rides []*models.Ride
	err := r.db.SelectContext(ctx, &rides, query, args...)
	return rides, err
}
