package handler

import (
	"encoding/json"
	"net/http"

	"github.com/adeolu/swiftride/internal/models"
	"github.com/adeolu/swiftride/internal/service"
	"github.com/adeolu/swiftride/pkg/utils"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type DriverHandler struct {
	driverService service.DriverService
	rideService   service.RideService
	validate      *validator.Validate
}

func NewDriverHandler(driverService service.DriverService, rideService service.RideService) *DriverHandler {
	return &DriverHandler{
		driverService: driverService,
		rideService:   rideService,
		validate:      validator.New(),
	}
}

func (h *DriverHandler) RegisterRoutes(r chi.Router) {
	r.Post("/drivers", h.CreateDriver)
	r.Get("/drivers/{id}", h.GetDriver)
	r.Get("/drivers/{id}/rides", h.GetDriverRides)
}

// POST /v1/drivers
func (h *DriverHandler) CreateDriver(w http.ResponseWriter, r *http.Request) {
	var req models.CreateDriverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		utils.BadRequest(w, err.Error())
		return
	}

	driver, err := h.driverService.CreateDriver(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.Created(w, driver.ToResponse())
}

// GET /v1/drivers/{id}
func (h *DriverHandler) GetDriver(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !utils.IsValidUUID(id) {
		utils.BadRequest(w, "driver id must be a valid uuid")
		return
	}

	driver, err := h.driverService.GetDriver(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, driver)
}

// GET /v1/drivers/{id}/rides
func (h *DriverHandler) GetDriverRides(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		utils.BadRequest(w, "driver id is required")
		return
	}

	rides, err := h.rideService.ListRides(r.Context(), &models.RideFilter{
		DriverID: id,
		Status:   r.URL.Query().Get("status"),
	})
	if err != nil {
		handleError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, rides)
}
