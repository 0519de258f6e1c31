package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	apperrors "github.com/adeolu/swiftride/internal/errors"
	"github.com/adeolu/swiftride/internal/models"
	"github.com/adeolu/swiftride/internal/service"
	"github.com/adeolu/swiftride/pkg/utils"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type RideHandler struct {
	rideService       service.RideService
	assignmentService service.AssignmentService
	validate          *validator.Validate
}

func NewRideHandler(rideService service.RideService, assignmentService service.AssignmentService) *RideHandler {
	return &RideHandler{
		rideService:       rideService,
		assignmentService: assignmentService,
		validate:          validator.New(),
	}
}

func (h *RideHandler) RegisterRoutes(r chi.Router) {
	r.Post("/rides/estimate", h.Estimate)
	r.Post("/rides", h.OrderRide)
	r.Get("/rides", h.ListRides)
	r.Get("/rides/active", h.ActiveRide)
	r.Get("/rides/{id}", h.GetRide)
	r.Post("/rides/{id}/accept", h.AcceptRide)
	r.Post("/rides/{id}/decline", h.DeclineRide)
	r.Post("/rides/{id}/cancel", h.CancelRide)
	r.Post("/rides/{id}/rate", h.RateRide)
	r.Patch("/rides/{id}/status", h.UpdateStatus)
}

// POST /v1/rides/estimate
func (h *RideHandler) Estimate(w http.ResponseWriter, r *http.Request) {
	var req models.EstimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		utils.BadRequest(w, err.Error())
		return
	}

	quote, err := h.rideService.Quote(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, quote)
}

// POST /v1/rides
func (h *RideHandler) OrderRide(w http.ResponseWriter, r *http.Request) {
	var req models.CreateRideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		utils.BadRequest(w, err.Error())
		return
	}

	ride, err := h.rideService.Order(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.Created(w, ride)
}

// GET /v1/rides
func (h *RideHandler) ListRides(w http.ResponseWriter, r *http.Request) {
	filter := &models.RideFilter{
		RiderID:  r.URL.Query().Get("rider_id"),
		DriverID: r.URL.Query().Get("driver_id"),
		Status:   r.URL.Query().Get("status"),
	}
	if limit := r.URL.Query().Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 1 {
			utils.BadRequest(w, "limit must be a positive integer")
			return
		}
		filter.Limit = n
	}

	rides, err := h.rideService.ListRides(r.Context(), filter)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, rides)
}

// GET /v1/rides/active?rider_id=
func (h *RideHandler) ActiveRide(w http.ResponseWriter, r *http.Request) {
	riderID := r.URL.Query().Get("rider_id")
	if riderID == "" {
		utils.BadRequest(w, "rider_id is required")
		return
	}

	ride, err := h.rideService.ActiveRideForRider(r.Context(), riderID)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, ride)
}

// GET /v1/rides/{id}
func (h *RideHandler) GetRide(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !utils.IsValidUUID(id) {
		utils.BadRequest(w, "ride id must be a valid uuid")
		return
	}

	ride, err := h.rideService.GetRide(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, ride)
}

// POST /v1/rides/{id}/accept
func (h *RideHandler) AcceptRide(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		utils.BadRequest(w, "ride id is required")
		return
	}

	var req models.AcceptRideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		utils.BadRequest(w, err.Error())
		return
	}

	ride, err := h.assignmentService.Assign(r.Context(), id, req.DriverID)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, ride)
}

// POST /v1/rides/{id}/decline
func (h *RideHandler) DeclineRide(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		utils.BadRequest(w, "ride id is required")
		return
	}

	ride, err := h.rideService.Decline(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, ride)
}

// POST /v1/rides/{id}/cancel
func (h *RideHandler) CancelRide(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		utils.BadRequest(w, "ride id is required")
		return
	}

	var req models.CancelRideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		utils.BadRequest(w, err.Error())
		return
	}

	ride, err := h.rideService.Cancel(r.Context(), id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, ride)
}

// POST /v1/rides/{id}/rate
func (h *RideHandler) RateRide(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		utils.BadRequest(w, "ride id is required")
		return
	}

	var req models.RateRideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		utils.BadRequest(w, err.Error())
		return
	}

	if err := h.rideService.Rate(r.Context(), id, &req); err != nil {
		handleError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, map[string]string{
		"status":  "rated",
		"message": "thank you for your feedback",
	})
}

// PATCH /v1/rides/{id}/status
func (h *RideHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		utils.BadRequest(w, "ride id is required")
		return
	}

	var req models.UpdateRideStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		utils.BadRequest(w, err.Error())
		return
	}

	ride, err := h.rideService.AdvanceStatus(r.Context(), id, req.Status)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, ride)
}

func handleError(w http.ResponseWriter, err error) {
	var apiErr *apperrors.APIError
	if errors.As(err, &apiErr) {
		utils.Error(w, apiErr)
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrUnresolvableLocation):
		utils.Error(w, apperrors.UnresolvableLocation("location"))
	case errors.Is(err, apperrors.ErrAlreadyAssigned):
		utils.Error(w, apperrors.AlreadyAssigned())
	case errors.Is(err, apperrors.ErrRiderHasActiveRide):
		utils.Error(w, apperrors.RiderHasActiveRide())
	default:
		utils.InternalError(w, "internal server error")
	}
}
