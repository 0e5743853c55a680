package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"medstore/models"
	"medstore/services"
)

// AuthService is what AuthController needs from the auth layer
type AuthService interface {
	SendOTP(ctx context.Context, mobile string) (time.Duration, error)
	VerifyOTP(ctx context.Context, mobile, code string) (*services.Session, error)
	VerifyIdentityToken(ctx context.Context, idToken, mobileHint string) (*services.Session, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	UpdateLocation(ctx context.Context, userID primitive.ObjectID, latitude, longitude float64) (models.GeoPoint, error)
}

// AuthController handles customer phone login and session endpoints
type AuthController struct {
	base
	auth AuthService
}

// NewAuthController creates a new AuthController
func NewAuthController(auth AuthService, logger *zap.Logger, timeout time.Duration) *AuthController {
	return &AuthController{base: newBase(logger, timeout), auth: auth}
}

type sendOTPRequest struct {
	MobileNumber string `json:"mobileNumber"`
}

// SendOTP texts a one-time code to the given number
func (ac *AuthController) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req sendOTPRequest
	if !ac.decode(w, r, &req) {
		return
	}

	ctx, cancel := ac.requestContext(r)
	defer cancel()

	ttl, err := ac.auth.SendOTP(ctx, strings.TrimSpace(req.MobileNumber))
	if err != nil {
		ac.fromError(w, r, "send otp", err)
		return
	}

	ac.respond(w, http.StatusOK, Response{
		Message:   "OTP sent successfully",
		ExpiresIn: intPtr(int(ttl.Seconds())),
	})
}

type verifyOTPRequest struct {
	MobileNumber string `json:"mobileNumber"`
	OTP          string `json:"otp"`
}

// VerifyOTP exchanges a valid code for a session
func (ac *AuthController) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if !ac.decode(w, r, &req) {
		return
	}
	if req.MobileNumber == "" || req.OTP == "" {
		ac.fail(w, http.StatusBadRequest, "Mobile number and OTP are required")
		return
	}

	ctx, cancel := ac.requestContext(r)
	defer cancel()

	session, err := ac.auth.VerifyOTP(ctx, strings.TrimSpace(req.MobileNumber), strings.TrimSpace(req.OTP))
	if err != nil {
		ac.fromError(w, r, "verify otp", err)
		return
	}
	ac.ok(w, "Login successful", session)
}

type verifyIdentityRequest struct {
	IDToken      string `json:"idToken"`
	MobileNumber string `json:"mobileNumber"`
}

// VerifyIdentityToken exchanges an identity-provider token for a session
func (ac *AuthController) VerifyIdentityToken(w http.ResponseWriter, r *http.Request) {
	var req verifyIdentityRequest
	if !ac.decode(w, r, &req) {
		return
	}
	if req.IDToken == "" {
		ac.fail(w, http.StatusBadRequest, "ID token is required")
		return
	}

	ctx, cancel := ac.requestContext(r)
	defer cancel()

	session, err := ac.auth.VerifyIdentityToken(ctx, req.IDToken, strings.TrimSpace(req.MobileNumber))
	if err != nil {
		ac.fromError(w, r, "verify identity token", err)
		return
	}
	ac.ok(w, "Login successful", session)
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// RefreshToken issues a new access token
func (ac *AuthController) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !ac.decode(w, r, &req) {
		return
	}
	if req.RefreshToken == "" {
		ac.fail(w, http.StatusBadRequest, "Refresh token is required")
		return
	}

	ctx, cancel := ac.requestContext(r)
	defer cancel()

	access, err := ac.auth.Refresh(ctx, req.RefreshToken)
	if err != nil {
		ac.fromError(w, r, "refresh token", err)
		return
	}
	ac.ok(w, "", map[string]string{"accessToken": access})
}

type locationRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// UpdateLocation stores the caller's current coordinates
func (ac *AuthController) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	user, ok := ac.currentUser(w, r)
	if !ok {
		return
	}

	var req locationRequest
	if !ac.decode(w, r, &req) {
		return
	}
	if req.Latitude == nil || req.Longitude == nil {
		ac.fail(w, http.StatusBadRequest, "Latitude and longitude are required")
		return
	}

	ctx, cancel := ac.requestContext(r)
	defer cancel()

	loc, err := ac.auth.UpdateLocation(ctx, user.ID, *req.Latitude, *req.Longitude)
	if err != nil {
		ac.fromError(w, r, "update location", err)
		return
	}
	ac.ok(w, "Location updated successfully", map[string]models.GeoPoint{"location": loc})
}

// Profile returns the authenticated customer
func (ac *AuthController) Profile(w http.ResponseWriter, r *http.Request) {
	user, ok := ac.currentUser(w, r)
	if !ok {
		return
	}
	ac.ok(w, "", user.Profile())
}
