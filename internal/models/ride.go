package models

import (
	"time"
)

// Ride status constants
const (
	RideStatusPending         = "pending"
	RideStatusSearching       = "searching"
	RideStatusAwaitingConfirm = "awaiting_driver_confirmation"
	RideStatusAccepted        = "accepted"
	RideStatusArrived         = "arrived"
	RideStatusPickedUp        = "picked_up"
	RideStatusInProgress      = "in_progress"
	RideStatusCompleted       = "completed"
	RideStatusCancelled       = "cancelled"
)

// Valid ride state transitions. pending, searching and awaiting_driver_confirmation
// form one logical unassigned superstate; a declined offer returns the ride to
// searching, and a cancel is legal from any non-terminal state.
var ValidRideTransitions = map[string][]string{
	RideStatusPending:         {RideStatusSearching, RideStatusAwaitingConfirm, RideStatusAccepted, RideStatusCancelled},
	RideStatusSearching:       {RideStatusAwaitingConfirm, RideStatusAccepted, RideStatusCancelled},
	RideStatusAwaitingConfirm: {RideStatusSearching, RideStatusAccepted, RideStatusCancelled},
	RideStatusAccepted:        {RideStatusArrived, RideStatusCancelled},
	RideStatusArrived:         {RideStatusPickedUp, RideStatusCancelled},
	RideStatusPickedUp:        {RideStatusInProgress, RideStatusCancelled},
	RideStatusInProgress:      {RideStatusCompleted, RideStatusCancelled},
	RideStatusCompleted:       {},
	RideStatusCancelled:       {},
}

// Payment methods
const (
	PaymentMethodCash   = "cash"
	PaymentMethodOnline = "online"
)

// Location carries an address, coordinates, or both. Pointer coordinates
// distinguish "not supplied" from the valid point (0, 0).
type Location struct {
	Address string   `json:"address,omitempty"`
	Lat     *float64 `json:"lat,omitempty" validate:"omitempty,latitude"`
	Lng     *float64 `json:"lng,omitempty" validate:"omitempty,longitude"`
}

// Coords returns the coordinate pair and whether both were supplied.
func (l Location) Coords() (float64, float64, bool) {
	if l.Lat == nil || l.Lng == nil {
		return 0, 0, false
	}
	return *l.Lat, *l.Lng, true
}

// FareBreakdown holds the frozen fare components as integers in the
// smallest currency unit.
type FareBreakdown struct {
	BaseFare     int64 `json:"base_fare"`
	DistanceFare int64 `json:"distance_fare"`
	TimeFare     int64 `json:"time_fare"`
	ServiceFee   int64 `json:"service_fee"`
	Total        int64 `json:"total"`
}

type Ride struct {
	ID            string     `db:"id" json:"id"`
	RiderID       string     `db:"rider_id" json:"rider_id"`
	DriverID      *string    `db:"driver_id" json:"driver_id,omitempty"`
	VehicleID     *string    `db:"vehicle_id" json:"vehicle_id,omitempty"`
	PickupAddress string     `db:"pickup_address" json:"pickup_address"`
	PickupLat     float64    `db:"pickup_lat" json:"pickup_lat"`
	PickupLng     float64    `db:"pickup_lng" json:"pickup_lng"`
	DestAddress   string     `db:"dest_address" json:"dest_address"`
	DestLat       float64    `db:"dest_lat" json:"dest_lat"`
	DestLng       float64    `db:"dest_lng" json:"dest_lng"`
	VehicleClass  string     `db:"vehicle_class" json:"vehicle_class"`
	Status        string     `db:"status" json:"status"`
	DistanceKm    float64    `db:"distance_km" json:"distance_km"`
	DurationMins  int        `db:"duration_mins" json:"duration_mins"`
	BaseFare      int64      `db:"base_fare" json:"base_fare"`
	DistanceFare  int64      `db:"distance_fare" json:"distance_fare"`
	TimeFare      int64      `db:"time_fare" json:"time_fare"`
	ServiceFee    int64      `db:"service_fee" json:"service_fee"`
	TotalFare     int64      `db:"total_fare" json:"total_fare"`
	PaymentMethod string     `db:"payment_method" json:"payment_method"`
	Instructions  *string    `db:"instructions" json:"instructions,omitempty"`
	CancelledBy   *string    `db:"cancelled_by" json:"cancelled_by,omitempty"`
	RiderRating   *int       `db:"rider_rating" json:"rider_rating,omitempty"`
	RiderFeedback *string    `db:"rider_feedback" json:"rider_feedback,omitempty"`
	RequestedAt   time.Time  `db:"requested_at" json:"requested_at"`
	AcceptedAt    *time.Time `db:"accepted_at" json:"accepted_at,omitempty"`
	ArrivedAt     *time.Time `db:"arrived_at" json:"arrived_at,omitempty"`
	PickedUpAt    *time.Time `db:"picked_up_at" json:"picked_up_at,omitempty"`
	StartedAt     *time.Time `db:"started_at" json:"started_at,omitempty"`
	CompletedAt   *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	CancelledAt   *time.Time `db:"cancelled_at" json:"cancelled_at,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

type CreateRideRequest struct {
	RiderID       string   `json:"rider_id" validate:"required,uuid"`
	Pickup        Location `json:"pickup" validate:"required"`
	Destination   Location `json:"destination" validate:"required"`
	VehicleClass  string   `json:"vehicle_class" validate:"required,oneof=bicycle motorcycle car"`
	PaymentMethod string   `json:"payment_method" validate:"required,oneof=cash online"`
	Instructions  string   `json:"instructions,omitempty" validate:"omitempty,max=500"`
}

type EstimateRequest struct {
	Pickup       Location `json:"pickup" validate:"required"`
	Destination  Location `json:"destination" validate:"required"`
	VehicleClass string   `json:"vehicle_class" validate:"required,oneof=bicycle motorcycle car"`
}

type CancelRideRequest struct {
	Reason      string `json:"reason,omitempty"`
	CancelledBy string `json:"cancelled_by" validate:"required,oneof=rider driver admin"`
}

type AcceptRideRequest struct {
	DriverID string `json:"driver_id" validate:"required,uuid"`
}

type UpdateRideStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=arrived picked_up in_progress completed"`
}

type RateRideRequest struct {
	Rating   int    `json:"rating" validate:"required,min=1,max=5"`
	Feedback string `json:"feedback,omitempty" validate:"omitempty,max=1000"`
}

type RideFilter struct {
	RiderID  string
	DriverID string
	Status   string
	Limit    int
}

type RideResponse struct {
	ID            string          `json:"id"`
	Status        string          `json:"status"`
	Rider         *UserResponse   `json:"rider,omitempty"`
	Driver        *DriverResponse `json:"driver,omitempty"`
	Pickup        Location        `json:"pickup"`
	Destination   Location        `json:"destination"`
	VehicleClass  string          `json:"vehicle_class"`
	DistanceKm    float64         `json:"distance_km"`
	DurationMins  int             `json:"duration_mins"`
	Fare          FareBreakdown   `json:"fare"`
	PaymentMethod string          `json:"payment_method"`
	Instructions  *string         `json:"instructions,omitempty"`
	CancelledBy   *string         `json:"cancelled_by,omitempty"`
	RequestedAt   time.Time       `json:"requested_at"`
	AcceptedAt    *time.Time      `json:"accepted_at,omitempty"`
	ArrivedAt     *time.Time      `json:"arrived_at,omitempty"`
	PickedUpAt    *time.Time      `json:"picked_up_at,omitempty"`
	StartedAt     *time.Time      `json:"started_at,omitempty"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty"`
	CancelledAt   *time.Time      `json:"cancelled_at,omitempty"`
}

func (r *Ride) ToResponse() *RideResponse {
	return &RideResponse{
		ID:     r.ID,
		Status: r.Status,
		Pickup: Location{
			Address: r.PickupAddress,
			Lat:     &r.PickupLat,
			Lng:     &r.PickupLng,
		},
		Destination: Location{
			Address: r.DestAddress,
			Lat:     &r.DestLat,
			Lng:     &r.DestLng,
		},
		VehicleClass: r.VehicleClass,
		DistanceKm:   r.DistanceKm,
		DurationMins: r.DurationMins,
		Fare: FareBreakdown{
			BaseFare:     r.BaseFare,
			DistanceFare: r.DistanceFare,
			TimeFare:     r.TimeFare,
			ServiceFee:   r.ServiceFee,
			Total:        r.TotalFare,
		},
		PaymentMethod: r.PaymentMethod,
		Instructions:  r.Instructions,
		CancelledBy:   r.CancelledBy,
		RequestedAt:   r.RequestedAt,
		AcceptedAt:    r.AcceptedAt,
		ArrivedAt:     r.ArrivedAt,
		PickedUpAt:    r.PickedUpAt,
		StartedAt:     r.StartedAt,
		CompletedAt:   r.CompletedAt,
		CancelledAt:   r.CancelledAt,
	}
}

// CanTransitionTo checks if a ride can transition to a new status
func (r *Ride) CanTransitionTo(newStatus string) bool {
	validNextStates, exists := ValidRideTransitions[r.Status]
	if !exists {
		return false
	}

	for _, state := range validNextStates {
		if state == newStatus {
			return true
		}
	}
	return false
}

// ApplyTransition moves the ride to newStatus and records the transition
// timestamp. Each timestamp is set at most once.
func (r *Ride) ApplyTransition(newStatus string, now time.Time) bool {
	if !r.CanTransitionTo(newStatus) {
		return false
	}

	r.Status = newStatus

	switch newStatus {
	case RideStatusAccepted:
		if r.AcceptedAt == nil {
			t := now
			r.AcceptedAt = &t
		}
	case RideStatusArrived:
		if r.ArrivedAt == nil {
			t := now
			r.ArrivedAt = &t
		}
	case RideStatusPickedUp:
		if r.PickedUpAt == nil {
			t := now
			r.PickedUpAt = &t
		}
	case RideStatusInProgress:
		if r.StartedAt == nil {
			t := now
			r.StartedAt = &t
		}
	case RideStatusCompleted:
		if r.CompletedAt == nil {
			t := now
			r.CompletedAt = &t
		}
	case RideStatusCancelled:
		if r.CancelledAt == nil {
			t := now
			r.CancelledAt = &t
		}
	}
	return true
}

// IsActive returns true if the ride is not in a terminal state
func (r *Ride) IsActive() bool {
	return r.Status != RideStatusCompleted && r.Status != RideStatusCancelled
}

// IsTerminal reports whether status permits no further transitions.
func IsTerminalRideStatus(status string) bool {
	return status == RideStatusCompleted || status == RideStatusCancelled
}

// IsUnassignedRideStatus reports whether status belongs to the pre-assignment
// superstate (no driver or vehicle bound yet).
func IsUnassignedRideStatus(status string) bool {
	return status == RideStatusPending || status == RideStatusSearching || status == RideStatusAwaitingConfirm
}

// IsAssigned reports whether the ride currently holds a driver and vehicle.
func (r *Ride) IsAssigned() bool {
	return r.DriverID != nil && r.VehicleID != nil && !IsUnassignedRideStatus(r.Status)
}
