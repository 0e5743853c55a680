package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"medstore/models"
	"medstore/services"
)

// AddressService is what AddressController needs from the address layer
type AddressService interface {
	List(ctx context.Context, userID primitive.ObjectID) ([]models.Address, error)
	Create(ctx context.Context, userID primitive.ObjectID, in services.AddressInput) (*models.Address, error)
	Update(ctx context.Context, userID primitive.ObjectID, id string, in services.AddressInput) (*models.Address, error)
	Delete(ctx context.Context, userID primitive.ObjectID, id string) error
	SetDefault(ctx context.Context, userID primitive.ObjectID, id string) (*models.Address, error)
}

// AddressController handles a customer's saved delivery addresses
type AddressController struct {
	base
	addresses AddressService
}

func NewAddressController(addresses AddressService, logger *zap.Logger, timeout time.Duration) *AddressController {
	return &AddressController{base: newBase(logger, timeout), addresses: addresses}
}

func (ac *AddressController) GetAddresses(w http.ResponseWriter, r *http.Request) {
	user, ok := ac.currentUser(w, r)
	if !ok {
		return
	}

	ctx, cancel := ac.requestContext(r)
	defer cancel()

	addresses, err := ac.addresses.List(ctx, user.ID)
	if err != nil {
		ac.fromError(w, r, "list addresses", err)
		return
	}
	ac.respond(w, http.StatusOK, Response{Data: addresses, Count: intPtr(len(addresses))})
}

func (ac *AddressController) CreateAddress(w http.ResponseWriter, r *http.Request) {
	user, ok := ac.currentUser(w, r)
	if !ok {
		return
	}
	var in services.AddressInput
	if !ac.decode(w, r, &in) {
		return
	}

	ctx, cancel := ac.requestContext(r)
	defer cancel()

	addr, err := ac.addresses.Create(ctx, user.ID, in)
	if err != nil {
		ac.fromError(w, r, "create address", err)
		return
	}
	ac.respond(w, http.StatusCreated, Response{Message: "Address created successfully", Data: addr})
}

func (ac *AddressController) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	user, ok := ac.currentUser(w, r)
	if !ok {
		return
	}
	var in services.AddressInput
	if !ac.decode(w, r, &in) {
		return
	}

	ctx, cancel := ac.requestContext(r)
	defer cancel()

	addr, err := ac.addresses.Update(ctx, user.ID, mux.Vars(r)["id"], in)
	if err != nil {
		ac.fromError(w, r, "update address", err)
		return
	}
	ac.ok(w, "Address updated successfully", addr)
}

func (ac *AddressController) DeleteAddress(w http.ResponseWriter, r *http.Request) {
	user, ok := ac.currentUser(w, r)
	if !ok {
		return
	}

	ctx, cancel := ac.requestContext(r)
	defer cancel()

	if err := ac.addresses.Delete(ctx, user.ID, mux.Vars(r)["id"]); err != nil {
		ac.fromError(w, r, "delete address", err)
		return
	}
	ac.ok(w, "Address deleted successfully", nil)
}

// SetDefaultAddress makes one address the caller's only default
func (ac *AddressController) SetDefaultAddress(w http.ResponseWriter, r *http.Request) {
	user, ok := ac.currentUser(w, r)
	if !ok {
		return
	}

	ctx, cancel := ac.requestContext(r)
	defer cancel()

	addr, err := ac.addresses.SetDefault(ctx, user.ID, mux.Vars(r)["id"])
	if err != nil {
		ac.fromError(w, r, "set default address", err)
		return
	}
	ac.ok(w, "Default address updated successfully", addr)
}
