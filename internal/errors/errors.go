package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource conflict")
	ErrBadRequest     = errors.New("bad request")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInternalServer = errors.New("internal server error")

	// Business errors
	ErrUnresolvableLocation = errors.New("location could not be resolved")
	ErrInvalidTransition    = errors.New("invalid state transition")
	ErrAlreadyAssigned      = errors.New("resource claimed by a concurrent request")
	ErrDriverUnavailable    = errors.New("driver is not available")
	ErrDriverBusy           = errors.New("driver is on a ride")
	ErrVehicleUnavailable   = errors.New("vehicle is not available")
	ErrRiderHasActiveRide   = errors.New("rider already has an active ride")
)

// APIError represents a structured API error
type APIError struct {
	Code       string `json:"error"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
}

func (e *APIError) Error() string {
	return e.Message
}

// NewAPIError creates a new API error
func NewAPIError(code, message string, statusCode int) *APIError {
	return &APIError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Common API errors
func NotFound(resource string) *APIError {
	return NewAPIError("not_found", fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

func BadRequest(message string) *APIError {
	return NewAPIError("bad_request", message, http.StatusBadRequest)
}

func Conflict(message string) *APIError {
	return NewAPIError("conflict", message, http.StatusConflict)
}

func InternalError(message string) *APIError {
	return NewAPIError("internal_error", message, http.StatusInternalServerError)
}

func Unauthorized(message string) *APIError {
	return NewAPIError("unauthorized", message, http.StatusUnauthorized)
}

func UnresolvableLocation(which string) *APIError {
	return NewAPIError("unresolvable_location", fmt.Sprintf("no coordinates could be obtained for %s", which), http.StatusUnprocessableEntity)
}

func InvalidTransition(from, to string) *APIError {
	return NewAPIError("invalid_transition", fmt.Sprintf("cannot transition from %s to %s", from, to), http.StatusConflict)
}

func AlreadyAssigned() *APIError {
	return NewAPIError("already_assigned", "claimed by a concurrent request", http.StatusConflict)
}

func DriverUnavailable(reason string) *APIError {
	return NewAPIError("driver_unavailable", reason, http.StatusConflict)
}

func DriverBusy() *APIError {
	return NewAPIError("driver_busy", "driver has a ride in progress", http.StatusConflict)
}

func VehicleUnavailable() *APIError {
	return NewAPIError("vehicle_unavailable", "vehicle is not available for assignment", http.StatusConflict)
}

func RiderHasActiveRide() *APIError {
	return NewAPIError("active_ride_exists", "you already have an active ride", http.StatusConflict)
}
