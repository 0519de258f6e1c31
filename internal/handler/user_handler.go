package handler

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/adeolu/swiftride/internal/errors"
	"github.com/adeolu/swiftride/internal/models"
	"github.com/adeolu/swiftride/internal/repository"
	"github.com/adeolu/swiftride/internal/service"
	"github.com/adeolu/swiftride/pkg/utils"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type UserHandler struct {
	userRepo    repository.UserRepository
	rideService service.RideService
	validate    *validator.Validate
}

func NewUserHandler(userRepo repository.UserRepository, rideService service.RideService) *UserHandler {
	return &UserHandler{
		userRepo:    userRepo,
		rideService: rideService,
		validate:    validator.New(),
	}
}

func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Post("/users", h.CreateUser)
	r.Get("/users/{id}", h.GetUser)
	r.Get("/users/{id}/rides", h.GetUserRides)
}

// POST /v1/users
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		utils.BadRequest(w, err.Error())
		return
	}

	existing, err := h.userRepo.GetByPhone(r.Context(), req.Phone)
	if err != nil {
		utils.InternalError(w, "failed to check existing user")
		return
	}
	if existing != nil {
		utils.Error(w, apperrors.Conflict("user with this phone already exists"))
		return
	}

	user := &models.User{
		Phone: req.Phone,
		Name:  req.Name,
	}
	if req.Email != "" {
		user.Email = &req.Email
	}

	if err := h.userRepo.Create(r.Context(), user); err != nil {
		utils.InternalError(w, "failed to create user")
		return
	}

	utils.Created(w, user.ToResponse())
}

// GET /v1/users/{id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !utils.IsValidUUID(id) {
		utils.BadRequest(w, "user id must be a valid uuid")
		return
	}

	user, err := h.userRepo.GetByID(r.Context(), id)
	if err != nil {
		utils.InternalError(w, "failed to get user")
		return
	}
	if user == nil {
		utils.NotFound(w, "user")
		return
	}

	utils.JSON(w, http.StatusOK, user.ToResponse())
}

// GET /v1/users/{id}/rides
func (h *UserHandler) GetUserRides(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		utils.BadRequest(w, "user id is required")
		return
	}

	rides, err := h.rideService.ListRides(r.Context(), &models.RideFilter{
		RiderID: id,
		Status:  r.URL.Query().Get("status"),
	})
	if err != nil {
		handleError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, rides)
}
