package models

import (
	"time"
)

// Driver status constants
const (
	DriverStatusPending   = "pending"
	DriverStatusActive    = "active"
	DriverStatusOnRide    = "on_ride"
	DriverStatusSuspended = "suspended"
	DriverStatusInactive  = "inactive"
)

// Vehicle classes
const (
	VehicleClassBicycle    = "bicycle"
	VehicleClassMotorcycle = "motorcycle"
	VehicleClassCar        = "car"
)

// Administrative driver status changes. on_ride is entered and left only by the
// assignment registry, never directly by an administrator.
var ValidDriverStatusChanges = map[string][]string{
	DriverStatusPending:   {DriverStatusActive, DriverStatusInactive},
	DriverStatusActive:    {DriverStatusSuspended, DriverStatusInactive},
	DriverStatusSuspended: {DriverStatusActive, DriverStatusInactive},
	DriverStatusInactive:  {DriverStatusActive},
	DriverStatusOnRide:    {},
}

type Driver struct {
	ID            string    `db:"id" json:"id"`
	Phone         string    `db:"phone" json:"phone"`
	Name          string    `db:"name" json:"name"`
	Email         *string   `db:"email" json:"email,omitempty"`
	LicenseNumber string    `db:"license_number" json:"license_number"`
	VehicleID     *string   `db:"vehicle_id" json:"vehicle_id,omitempty"`
	Status        string    `db:"status" json:"status"`
	Rating        float64   `db:"rating" json:"rating"`
	TotalTrips    int       `db:"total_trips" json:"total_trips"`
	TotalEarnings int64     `db:"total_earnings" json:"total_earnings"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

type CreateDriverRequest struct {
	Phone         string `json:"phone" validate:"required,min=10,max=15"`
	Name          string `json:"name" validate:"required,min=2,max=100"`
	Email         string `json:"email,omitempty" validate:"omitempty,email"`
	LicenseNumber string `json:"license_number" validate:"required"`
}

type UpdateDriverStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active suspended inactive"`
}

type AssignVehicleRequest struct {
	VehicleID string `json:"vehicle_id" validate:"required,uuid"`
}

type DriverResponse struct {
	ID            string           `json:"id"`
	Phone         string           `json:"phone"`
	Name          string           `json:"name"`
	LicenseNumber string           `json:"license_number"`
	Status        string           `json:"status"`
	Rating        float64          `json:"rating"`
	TotalTrips    int              `json:"total_trips"`
	TotalEarnings int64            `json:"total_earnings"`
	Vehicle       *VehicleResponse `json:"vehicle,omitempty"`
}

func (d *Driver) ToResponse() *DriverResponse {
	return &DriverResponse{
		ID:            d.ID,
		Phone:         d.Phone,
		Name:          d.Name,
		LicenseNumber: d.LicenseNumber,
		Status:        d.Status,
		Rating:        d.Rating,
		TotalTrips:    d.TotalTrips,
		TotalEarnings: d.TotalEarnings,
	}
}

// CanChangeStatusTo checks an administrative status change against the lookup table.
func (d *Driver) CanChangeStatusTo(newStatus string) bool {
	allowed, exists := ValidDriverStatusChanges[d.Status]
	if !exists {
		return false
	}
	for _, s := range allowed {
		if s == newStatus {
			return true
		}
	}
	return false
}

// HasVehicle reports whether a vehicle is on file for this driver.
func (d *Driver) HasVehicle() bool {
	return d.VehicleID != nil && *d.VehicleID != ""
}

func IsValidVehicleClass(vc string) bool {
	return vc == VehicleClassBicycle || vc == VehicleClassMotorcycle || vc == VehicleClassCar
}
