package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/adeolu/swiftride/internal/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type DriverRepository interface {
	Create(ctx context.Context, driver *models.Driver) error
	GetByID(ctx context.Context, id string) (*models.Driver, error)
	GetByPhone(ctx context.Context, phone string) (*models.Driver, error)
	GetByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*models.Driver, error)
	UpdateStatus(ctx context.Context, id, status string) error
	// ClaimForRide flips an active driver with a vehicle on file to on_ride.
	// Returns false when the precondition no longer holds (concurrent claim).
	ClaimForRide(ctx context.Context, tx *sqlx.Tx, id string) (bool, error)
	// ReleaseFromRide resets the driver to active unconditionally.
	ReleaseFromRide(ctx context.Context, id string) error
	// ChangeStatusFrom applies an administrative status change only if the
	// current status still matches the expected pre-state.
	ChangeStatusFrom(ctx context.Context, id, from, to string) (bool, error)
	BindVehicle(ctx context.Context, tx *sqlx.Tx, driverID, vehicleID string) (bool, error)
	UnbindVehicle(ctx context.Context, tx *sqlx.Tx, driverID string) error
	AddTripEarnings(ctx context.Context, id string, earnings int64) error
	UpdateRating(ctx context.Context, id string, rating float64) error
	ListAvailable(ctx context.Context) ([]*models.Driver, error)
}

type driverRepository struct {
	db *sqlx.DB
}

func NewDriverRepository(db *sqlx.DB) DriverRepository {
	return &driverRepository{db: db}
}

func (r *driverRepository) Create(ctx context.Context, driver *models.Driver) error {
	if driver.ID == "" {
		driver.ID = uuid.New().String()
	}
	driver.CreatedAt = time.Now()
	driver.UpdatedAt = time.Now()
	driver.Rating = 5.0
	driver.Status = models.DriverStatusPending

	query := `
		INSERT INTO drivers (id, phone, name, email, license_number, vehicle_id,
			status, rating, total_trips, total_earnings, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.ExecContext(ctx, query,
		driver.ID, driver.Phone, driver.Name, driver.Email, driver.LicenseNumber,
		driver.VehicleID, driver.Status, driver.Rating, driver.TotalTrips,
		driver.TotalEarnings, driver.CreatedAt, driver.UpdatedAt)
	return err
}

func (r *driverRepository) GetByID(ctx context.Context, id string) (*models.Driver, error) {
	var driver models.Driver
	query := `SELECT * FROM drivers WHERE id = $1`
	err := r.db.GetContext(ctx, &driver, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &driver, err
}

func (r *driverRepository) GetByPhone(ctx context.Context, phone string) (*models.Driver, error) {
	var driver models.Driver
	query := `SELECT * FROM drivers WHERE phone = $1`
	err := r.db.GetContext(ctx, &driver, query, phone)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &driver, err
}

// GetByIDForUpdate gets a driver with a FOR UPDATE row lock inside tx.
func (r *driverRepository) GetByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*models.Driver, error) {
	var driver models.Driver
	query := `SELECT * FROM drivers WHERE id = $1 FOR UPDATE`
	err := tx.GetContext(ctx, &driver, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &driver, err
}

func (r *driverRepository) UpdateStatus(ctx context.Context, id, status string) error {
	query := `UPDATE drivers SET status = $1, updated_at = $2 WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	return err
}

func (r *driverRepository) ClaimForRide(ctx context.Context, tx *sqlx.Tx, id string) (bool, error) {
	query := `
		UPDATE drivers
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4 AND vehicle_id IS NOT NULL
	`
	res, err := tx.ExecContext(ctx, query, models.DriverStatusOnRide, time.Now(), id, models.DriverStatusActive)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	return affected == 1, err
}

func (r *driverRepository) ReleaseFromRide(ctx context.Context, id string) error {
	query := `UPDATE drivers SET status = $1, updated_at = $2 WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, models.DriverStatusActive, time.Now(), id)
	return err
}

func (r *driverRepository) ChangeStatusFrom(ctx context.Context, id, from, to string) (bool, error) {
	query := `UPDATE drivers SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`
	res, err := r.db.ExecContext(ctx, query, to, time.Now(), id, from)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	return affected == 1, err
}

func (r *driverRepository) BindVehicle(ctx context.Context, tx *sqlx.Tx, driverID, vehicleID string) (bool, error) {
	query := `
		UPDATE drivers
		SET vehicle_id = $1, updated_at = $2
		WHERE id = $3 AND vehicle_id IS NULL
	`
	res, err := tx.ExecContext(ctx, query, vehicleID, time.Now(), driverID)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	return affected == 1, err
}

func (r *driverRepository) UnbindVehicle(ctx context.Context, tx *sqlx.Tx, driverID string) error {
	query := `UPDATE drivers SET vehicle_id = NULL, updated_at = $1 WHERE id = $2`
	_, err := tx.ExecContext(ctx, query, time.Now(), driverID)
	return err
}

func (r *driverRepository) AddTripEarnings(ctx context.Context, id string, earnings int64) error {
	query := `
		UPDATE drivers
		SET total_trips = total_trips + 1, total_earnings = total_earnings + $1, updated_at = $2
		WHERE id = $3
	`
	_, err := r.db.ExecContext(ctx, query, earnings, time.Now(), id)
	return err
}

func (r *driverRepository) UpdateRating(ctx context.Context, id string, rating float64) error {
	query := `UPDATE drivers SET rating = $1, updated_at = $2 WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, rating, time.Now(), id)
	return err
}

// ListAvailable returns active drivers with a vehicle on file, ready for
// ride assignment.
func (r *driverRepository) ListAvailable(ctx context.Context) ([]*models.Driver, error) {
	var drivers []*models.Driver
	query := `
		SELECT * FROM drivers
		WHERE status = $1 AND vehicle_id IS NOT NULL
		ORDER BY rating DESC
	`
	err := r.db.SelectContext(ctx, &drivers, query, models.DriverStatusActive)
	return drivers, err
}
