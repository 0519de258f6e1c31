package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/adeolu/swiftride/internal/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type VehicleRepository interface {
	Create(ctx context.Context, vehicle *models.Vehicle) error
	GetByID(ctx context.Context, id string) (*models.Vehicle, error)
	GetByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*models.Vehicle, error)
	List(ctx context.Context) ([]*models.Vehicle, error)
	ListAvailable(ctx context.Context) ([]*models.Vehicle, error)
	// ChangeStatusFrom applies a status change only if the current status
	// still matches the expected pre-state.
	ChangeStatusFrom(ctx context.Context, tx *sqlx.Tx, id, from, to string) (bool, error)
}

type vehicleRepository struct {
	db *sqlx.DB
}

func NewVehicleRepository(db *sqlx.DB) VehicleRepository {
	return &vehicleRepository{db: db}
}

func (r *vehicleRepository) Create(ctx context.Context, vehicle *models.Vehicle) error {
	if vehicle.ID == "" {
		vehicle.ID = uuid.New().String()
	}
	vehicle.CreatedAt = time.Now()
	vehicle.UpdatedAt = time.Now()
	vehicle.Status = models.VehicleStatusAvailable
	if vehicle.Capacity == 0 {
		vehicle.Capacity = models.DefaultCapacity(vehicle.Class)
	}

	query := `
		INSERT INTO vehicles (id, class, make, model, year, license_plate, color,
			capacity, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.ExecContext(ctx, query,
		vehicle.ID, vehicle.Class, vehicle.Make, vehicle.Model, vehicle.Year,
		vehicle.LicensePlate, vehicle.Color, vehicle.Capacity, vehicle.Status,
		vehicle.CreatedAt, vehicle.UpdatedAt)
	return err
}

func (r *vehicleRepository) GetByID(ctx context.Context, id string) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	query := `SELECT * FROM vehicles WHERE id = $1`
	err := r.db.GetContext(ctx, &vehicle, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &vehicle, err
}

// GetByIDForUpdate gets a vehicle with a FOR UPDATE row lock inside tx.
func (r *vehicleRepository) GetByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	query := `SELECT * FROM vehicles WHERE id = $1 FOR UPDATE`
	err := tx.GetContext(ctx, &vehicle, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &vehicle, err
}

func (r *vehicleRepository) List(ctx context.Context) ([]*models.Vehicle, error) {
	var vehicles []*models.Vehicle
	query := `SELECT * FROM vehicles ORDER BY created_at DESC`
	err := r.db.SelectContext(ctx, &vehicles, query)
	return vehicles, err
}

func (r *vehicleRepository) ListAvailable(ctx context.Context) ([]*models.Vehicle, error) {
	var vehicles []*models.Vehicle
	query := `SELECT * FROM vehicles WHERE status = $1 ORDER BY created_at DESC`
	err := r.db.SelectContext(ctx, &vehicles, query, models.VehicleStatusAvailable)
	return vehicles, err
}

func (r *vehicleRepository) ChangeStatusFrom(ctx context.Context, tx *sqlx.Tx, id, from, to string) (bool, error) {
	query := `UPDATE vehicles SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`
	res, err := tx.ExecContext(ctx, query, to, time.Now(), id, from)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	return affected == 1, err
}
