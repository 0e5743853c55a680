package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"medstore/middleware"
	"medstore/models"
	"medstore/repository"
	"medstore/services"
)

// AdminService is what AdminController needs from the admin layer
type AdminService interface {
	Login(ctx context.Context, email, password string) (*services.AdminSession, error)
	Create(ctx context.Context, caller *models.Admin, email, password, role string) (*services.AdminProfile, error)
}

// AdminController handles back-office accounts
type AdminController struct {
	base
	admins AdminService
}

// NewAdminController creates a new AdminController
func NewAdminController(admins AdminService, logger *zap.Logger, timeout time.Duration) *AdminController {
	return &AdminController{base: newBase(logger, timeout), admins: admins}
}

type adminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates an admin by email and password
func (ac *AdminController) Login(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if !ac.decode(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		ac.fail(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	ctx, cancel := ac.requestContext(r)
	defer cancel()

	session, err := ac.admins.Login(ctx, req.Email, req.Password)
	if err != nil {
		ac.fromError(w, r, "admin login", err)
		return
	}
	ac.ok(w, "Login successful", session)
}

type createAdminRequest struct {
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password"`
	Role     string `json:"role" validate:"omitempty,oneof=admin superadmin"`
}

// Create registers a new admin. The first admin may be created without a token.
func (ac *AdminController) Create(w http.ResponseWriter, r *http.Request) {
	var req createAdminRequest
	if !ac.decode(w, r, &req) {
		return
	}

	caller, _ := middleware.AdminFromContext(r.Context())

	ctx, cancel := ac.requestContext(r)
	defer cancel()

	admin, err := ac.admins.Create(ctx, caller, req.Email, req.Password, req.Role)
	if errors.Is(err, repository.ErrDuplicate) {
		ac.fail(w, http.StatusBadRequest, "Admin with this email already exists")
		return
	}
	if err != nil {
		ac.fromError(w, r, "create admin", err)
		return
	}
	ac.respond(w, http.StatusCreated, Response{Message: "Admin created successfully", Data: admin})
}
