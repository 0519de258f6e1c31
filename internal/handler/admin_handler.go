package handler

import (
	"encoding/json"
	"net/http"

	"github.com/adeolu/swiftride/internal/models"
	"github.com/adeolu/swiftride/internal/repository"
	"github.com/adeolu/swiftride/internal/service"
	"github.com/adeolu/swiftride/pkg/utils"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// AdminHandler carries the operator-facing surface: vehicle fleet management,
// driver status administration and manual ride assignment.
type AdminHandler struct {
	driverService     service.DriverService
	assignmentService service.AssignmentService
	vehicleRepo       repository.VehicleRepository
	validate          *validator.Validate
}

func NewAdminHandler(
	driverService service.DriverService,
	assignmentService service.AssignmentService,
	vehicleRepo repository.VehicleRepository,
) *AdminHandler {
	return &AdminHandler{
		driverService:     driverService,
		assignmentService: assignmentService,
		vehicleRepo:       vehicleRepo,
		validate:          validator.New(),
	}
}

func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Post("/rides/{id}/assign", h.AssignRide)
		r.Patch("/drivers/{id}/status", h.UpdateDriverStatus)
		r.Post("/drivers/{id}/assign-vehicle", h.AssignVehicle)
		r.Post("/drivers/{id}/unassign-vehicle", h.UnassignVehicle)
		r.Get("/drivers/available", h.AvailableDrivers)
		r.Post("/vehicles", h.CreateVehicle)
		r.Get("/vehicles", h.ListVehicles)
		r.Get("/vehicles/available", h.AvailableVehicles)
	})
}

// POST /v1/admin/rides/{id}/assign
func (h *AdminHandler) AssignRide(w http.ResponseWriter, r *http.Request) {
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

// PATCH /v1/admin/drivers/{id}/status
func (h *AdminHandler) UpdateDriverStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		utils.BadRequest(w, "driver id is required")
		return
	}

	var req models.UpdateDriverStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		utils.BadRequest(w, err.Error())
		return
	}

	driver, err := h.driverService.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, driver.ToResponse())
}

// POST /v1/admin/drivers/{id}/assign-vehicle
func (h *AdminHandler) AssignVehicle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		utils.BadRequest(w, "driver id is required")
		return
	}

	var req models.AssignVehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		utils.BadRequest(w, err.Error())
		return
	}

	driver, err := h.assignmentService.BindVehicle(r.Context(), id, req.VehicleID)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, driver.ToResponse())
}

// POST /v1/admin/drivers/{id}/unassign-vehicle
func (h *AdminHandler) UnassignVehicle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		utils.BadRequest(w, "driver id is required")
		return
	}

	driver, err := h.assignmentService.UnbindVehicle(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, driver.ToResponse())
}

// GET /v1/admin/drivers/available
func (h *AdminHandler) AvailableDrivers(w http.ResponseWriter, r *http.Request) {
	drivers, err := h.driverService.ListAvailable(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, drivers)
}

// POST /v1/admin/vehicles
func (h *AdminHandler) CreateVehicle(w http.ResponseWriter, r *http.Request) {
	var req models.CreateVehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		utils.BadRequest(w, err.Error())
		return
	}

	vehicle := &models.Vehicle{
		Class:        req.Class,
		Make:         req.Make,
		Model:        req.Model,
		Year:         req.Year,
		LicensePlate: req.LicensePlate,
		Color:        req.Color,
		Capacity:     req.Capacity,
	}

	if err := h.vehicleRepo.Create(r.Context(), vehicle); err != nil {
		utils.InternalError(w, "failed to create vehicle")
		return
	}

	utils.Created(w, vehicle.ToResponse())
}

// GET /v1/admin/vehicles
func (h *AdminHandler) ListVehicles(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.vehicleRepo.List(r.Context())
	if err != nil {
		utils.InternalError(w, "failed to list vehicles")
		return
	}

	responses := make([]*models.VehicleResponse, 0, len(vehicles))
	for _, v := range vehicles {
		responses = append(responses, v.ToResponse())
	}
	utils.JSON(w, http.StatusOK, responses)
}

// GET /v1/admin/vehicles/available
func (h *AdminHandler) AvailableVehicles(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.vehicleRepo.ListAvailable(r.Context())
	if err != nil {
		utils.InternalError(w, "failed to list vehicles")
		return
	}

	responses := make([]*models.VehicleResponse, 0, len(vehicles))
	for _, v := range vehicles {
		responses = append(responses, v.ToResponse())
	}
	utils.JSON(w, http.StatusOK, responses)
}
