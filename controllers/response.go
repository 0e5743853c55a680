// Package controllers turns HTTP requests into service calls and service
// results into the API's JSON envelope.
package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"medstore/middleware"
	"medstore/models"
	"medstore/repository"
	"medstore/services"
)

const defaultRequestTimeout = 10 * time.Second

// Response is the envelope every endpoint answers with
type Response struct {
	Success    bool                 `json:"success"`
	Message    string               `json:"message,omitempty"`
	Data       any                  `json:"data,omitempty"`
	Count      *int                 `json:"count,omitempty"`
	Pagination *services.Pagination `json:"pagination,omitempty"`
	ExpiresIn  *int                 `json:"expiresIn,omitempty"`
}

// base carries what every controller needs to decode, validate and answer
type base struct {
	logger   *zap.Logger
	validate *validator.Validate
	timeout  time.Duration
}

func newBase(logger *zap.Logger, timeout time.Duration) base {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return base{logger: logger, validate: newValidator(), timeout: timeout}
}

// newValidator reports fields by their json names
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (b base) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), b.timeout)
}

// currentUser returns the customer attached by the auth middleware or
// answers 401 when there is none.
func (b base) currentUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		b.fail(w, http.StatusUnauthorized, "Unauthorized")
	}
	return user, ok
}

// decode reads a JSON body into dst and validates it. It answers the
// request itself and returns false when the body is unusable.
func (b base) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		b.fail(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return b.check(w, dst)
}

func (b base) check(w http.ResponseWriter, v any) bool {
	err := b.validate.Struct(v)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		b.fail(w, http.StatusBadRequest, "Invalid value for "+fieldPath(verrs[0]))
		return false
	}
	b.fail(w, http.StatusBadRequest, "Invalid request body")
	return false
}

// fieldPath drops the struct name from a namespace like "StoreInput.name"
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func (b base) respond(w http.ResponseWriter, status int, resp Response) {
	resp.Success = status < http.StatusBadRequest
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		b.logger.Warn("encode response", zap.Error(err))
	}
}

func (b base) ok(w http.ResponseWriter, message string, data any) {
	b.respond(w, http.StatusOK, Response{Message: message, Data: data})
}

func (b base) fail(w http.ResponseWriter, status int, message string) {
	b.respond(w, status, Response{Message: message})
}

// statusMessages maps sentinel errors to their HTTP status and client message
var statusMessages = []struct {
	err     error
	status  int
	message string
}{
	{services.ErrInvalidMobile, http.StatusBadRequest, "Invalid mobile number. Must be 10 digits."},
	{services.ErrInvalidOTP, http.StatusBadRequest, "Invalid or expired OTP"},
	{services.ErrOTPNotSent, http.StatusInternalServerError, "Failed to send OTP. Please try again."},
	{services.ErrPhoneAuthDisabled, http.StatusBadRequest, "This verification method is disabled"},
	{services.ErrInvalidToken, http.StatusUnauthorized, "Invalid or expired token"},
	{services.ErrIdentityMismatch, http.StatusUnauthorized, "Mobile number does not match the verified phone number"},
	{services.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
	{services.ErrForbidden, http.StatusForbidden, "Only a superadmin can perform this action"},
	{services.ErrInvalidLocation, http.StatusBadRequest, "Invalid coordinates"},
	{services.ErrInvalidStatus, http.StatusBadRequest, "Invalid status"},
	{services.ErrEmptyOrder, http.StatusBadRequest, "Order must have at least one item"},
	{services.ErrNoStore, http.StatusBadRequest, "Store ID is required"},
	{services.ErrInvalidCategory, http.StatusBadRequest, "Invalid category"},
	{repository.ErrDuplicate, http.StatusBadRequest, "Resource already exists"},
}

// fromError answers with the status the error maps to. Anything unmapped
// is logged and reported as a 500.
func (b base) fromError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var (
		notFound   *services.NotFoundError
		stock      *services.InsufficientStockError
		validation *services.ValidationError
	)
	switch {
	case errors.As(err, &notFound):
		b.fail(w, http.StatusNotFound, notFound.Error())
		return
	case errors.As(err, &stock):
		b.fail(w, http.StatusBadRequest, stock.Error())
		return
	case errors.As(err, &validation):
		b.fail(w, http.StatusBadRequest, validation.Message)
		return
	}

	for _, m := range statusMessages {
		if errors.Is(err, m.err) {
			if m.status >= http.StatusInternalServerError {
				b.logger.Error(op, zap.String("path", r.URL.Path), zap.Error(err))
			}
			b.fail(w, m.status, m.message)
			return
		}
	}

	b.logger.Error(op, zap.String("path", r.URL.Path), zap.Error(err))
	b.fail(w, http.StatusInternalServerError, "Internal server error")
}

func intPtr(n int) *int {
	return &n
}
