package models

import (
	"time"
)

// Vehicle status constants
const (
	VehicleStatusAvailable   = "available"
	VehicleStatusAssigned    = "assigned"
	VehicleStatusMaintenance = "maintenance"
	VehicleStatusInactive    = "inactive"
)

type Vehicle struct {
	ID           string    `db:"id" json:"id"`
	Class        string    `db:"class" json:"class"`
	Make         string    `db:"make" json:"make"`
	Model        string    `db:"model" json:"model"`
	Year         int       `db:"year" json:"year"`
	LicensePlate string    `db:"license_plate" json:"license_plate"`
	Color        string    `db:"color" json:"color"`
	Capacity     int       `db:"capacity" json:"capacity"`
	Status       string    `db:"status" json:"status"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

type CreateVehicleRequest struct {
	Class        string `json:"class" validate:"required,oneof=bicycle motorcycle car"`
	Make         string `json:"make" validate:"required"`
	Model        string `json:"model" validate:"required"`
	Year         int    `json:"year" validate:"required,min=1990,max=2100"`
	LicensePlate string `json:"license_plate" validate:"required"`
	Color        string `json:"color" validate:"required"`
	Capacity     int    `json:"capacity,omitempty" validate:"omitempty,min=1,max=8"`
}

type VehicleResponse struct {
	ID           string `json:"id"`
	Class        string `json:"class"`
	Make         string `json:"make"`
	Model        string `json:"model"`
	Year         int    `json:"year"`
	LicensePlate string `json:"license_plate"`
	Color        string `json:"color"`
	Capacity     int    `json:"capacity"`
	Status       string `json:"status"`
}

func (v *Vehicle) ToResponse() *VehicleResponse {
	return &VehicleResponse{
		ID:           v.ID,
		Class:        v.Class,
		Make:         v.Make,
		Model:        v.Model,
		Year:         v.Year,
		LicensePlate: v.LicensePlate,
		Color:        v.Color,
		Capacity:     v.Capacity,
		Status:       v.Status,
	}
}

// DefaultCapacity returns the seat count implied by a vehicle class.
func DefaultCapacity(class string) int {
	switch class {
	case VehicleClassBicycle:
		return 1
	case VehicleClassMotorcycle:
		return 2
	default:
		return 4
	}
}
