package controllers

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"medstore/middleware"
	"medstore/models"
	"medstore/services"
)

// StoreService is what StoreController needs from the catalog
type StoreService interface {
	ListStores(ctx context.Context) ([]models.Store, error)
	NearbyStores(ctx context.Context, user *models.User, latitude, longitude *float64, radiusKm float64) ([]models.NearbyStore, error)
	GetStore(ctx context.Context, id string) (*models.Store, error)
	CreateStore(ctx context.Context, in services.StoreInput) (*models.Store, error)
	UpdateStore(ctx context.Context, id string, in services.StoreInput) (*models.Store, error)
	DeleteStore(ctx context.Context, id string) error
}

// StoreController handles store lookup and administration
type StoreController struct {
	base
	stores StoreService
}

// NewStoreController creates a new StoreController
func NewStoreController(stores StoreService, logger *zap.Logger, timeout time.Duration) *StoreController {
	return &StoreController{base: newBase(logger, timeout), stores: stores}
}

// GetStores lists active stores
func (sc *StoreController) GetStores(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := sc.requestContext(r)
	defer cancel()

	stores, err := sc.stores.ListStores(ctx)
	if err != nil {
		sc.fromError(w, r, "list stores", err)
		return
	}
	sc.respond(w, http.StatusOK, Response{Data: stores, Count: intPtr(len(stores))})
}

// GetNearbyStores lists active stores around the query point, or around the
// caller's saved location when no point is given.
func (sc *StoreController) GetNearbyStores(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, err := optionalFloat(q.Get("latitude"))
	if err != nil {
		sc.fail(w, http.StatusBadRequest, "Invalid coordinates")
		return
	}
	lng, err := optionalFloat(q.Get("longitude"))
	if err != nil {
		sc.fail(w, http.StatusBadRequest, "Invalid coordinates")
		return
	}
	radius, err := optionalFloat(q.Get("radius"))
	if err != nil {
		sc.fail(w, http.StatusBadRequest, "Invalid radius")
		return
	}
	var radiusKm float64
	if radius != nil {
		radiusKm = *radius
	}

	user, _ := middleware.UserFromContext(r.Context())

	ctx, cancel := sc.requestContext(r)
	defer cancel()

	stores, err := sc.stores.NearbyStores(ctx, user, lat, lng, radiusKm)
	if err != nil {
		sc.fromError(w, r, "nearby stores", err)
		return
	}
	sc.respond(w, http.StatusOK, Response{Data: stores, Count: intPtr(len(stores))})
}

// GetStoreByID loads one store
func (sc *StoreController) GetStoreByID(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := sc.requestContext(r)
	defer cancel()

	store, err := sc.stores.GetStore(ctx, mux.Vars(r)["id"])
	if err != nil {
		sc.fromError(w, r, "get store", err)
		return
	}
	sc.ok(w, "", store)
}

// CreateStore handles adding a new store (Admin only)
func (sc *StoreController) CreateStore(w http.ResponseWriter, r *http.Request) {
	var in services.StoreInput
	if !sc.decode(w, r, &in) {
		return
	}

	ctx, cancel := sc.requestContext(r)
	defer cancel()

	store, err := sc.stores.CreateStore(ctx, in)
	if err != nil {
		sc.fromError(w, r, "create store", err)
		return
	}
	sc.respond(w, http.StatusCreated, Response{Message: "Store created successfully", Data: store})
}

// UpdateStore handles a partial store update (Admin only)
func (sc *StoreController) UpdateStore(w http.ResponseWriter, r *http.Request) {
	var in services.StoreInput
	if !sc.decode(w, r, &in) {
		return
	}

	ctx, cancel := sc.requestContext(r)
	defer cancel()

	store, err := sc.stores.UpdateStore(ctx, mux.Vars(r)["id"], in)
	if err != nil {
		sc.fromError(w, r, "update store", err)
		return
	}
	sc.ok(w, "Store updated successfully", store)
}

// DeleteStore handles deleting a store (Admin only)
func (sc *StoreController) DeleteStore(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := sc.requestContext(r)
	defer cancel()

	if err := sc.stores.DeleteStore(ctx, mux.Vars(r)["id"]); err != nil {
		sc.fromError(w, r, "delete store", err)
		return
	}
	sc.ok(w, "Store deleted successfully", nil)
}

// optionalFloat parses a query value, treating an empty string as absent
var errNotFinite = errors.New("value is not a finite number")

// optionalFloat parses an optional query value; NaN and infinities are rejected
func optionalFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, errNotFinite
	}
	return &v, nil
}
