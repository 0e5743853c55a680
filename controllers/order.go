package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"medstore/models"
	"medstore/services"
)

// OrderService is what OrderController needs from the order layer
type OrderService interface {
	PlaceOrder(ctx context.Context, userID primitive.ObjectID, in services.PlaceOrderInput) (*models.Order, error)
	History(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	GetForUser(ctx context.Context, userID primitive.ObjectID, id string) (*models.Order, error)
	UpdateStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error)
	ListByStore(ctx context.Context, storeID string, status models.OrderStatus) ([]models.Order, error)
}

// OrderController handles order-related requests
type OrderController struct {
	base
	orders OrderService
}

// NewOrderController creates a new OrderController
func NewOrderController(orders OrderService, logger *zap.Logger, timeout time.Duration) *OrderController {
	return &OrderController{base: newBase(logger, timeout), orders: orders}
}

// CreateOrder places an order for the authenticated customer
func (oc *OrderController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	user, ok := oc.currentUser(w, r)
	if !ok {
		return
	}

	var in services.PlaceOrderInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		oc.fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	// an empty item list is reported by the service with its own message
	if len(in.Items) > 0 && !oc.check(w, &in) {
		return
	}

	ctx, cancel := oc.requestContext(r)
	defer cancel()

	order, err := oc.orders.PlaceOrder(ctx, user.ID, in)
	if err != nil {
		oc.fromError(w, r, "place order", err)
		return
	}
	oc.respond(w, http.StatusCreated, Response{Message: "Order placed successfully", Data: order})
}

// GetOrderHistory lists the caller's orders, newest first
func (oc *OrderController) GetOrderHistory(w http.ResponseWriter, r *http.Request) {
	user, ok := oc.currentUser(w, r)
	if !ok {
		return
	}

	ctx, cancel := oc.requestContext(r)
	defer cancel()

	orders, err := oc.orders.History(ctx, user.ID)
	if err != nil {
		oc.fromError(w, r, "order history", err)
		return
	}
	oc.respond(w, http.StatusOK, Response{Data: orders, Count: intPtr(len(orders))})
}

// GetOrderByID loads one of the caller's orders
func (oc *OrderController) GetOrderByID(w http.ResponseWriter, r *http.Request) {
	user, ok := oc.currentUser(w, r)
	if !ok {
		return
	}

	ctx, cancel := oc.requestContext(r)
	defer cancel()

	order, err := oc.orders.GetForUser(ctx, user.ID, mux.Vars(r)["id"])
	if err != nil {
		oc.fromError(w, r, "get order", err)
		return
	}
	oc.ok(w, "", order)
}

type orderStatusRequest struct {
	Status models.OrderStatus `json:"status"`
}

// UpdateOrderStatus moves an order through its lifecycle (Admin only)
func (oc *OrderController) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req orderStatusRequest
	if !oc.decode(w, r, &req) {
		return
	}

	ctx, cancel := oc.requestContext(r)
	defer cancel()

	order, err := oc.orders.UpdateStatus(ctx, mux.Vars(r)["id"], req.Status)
	if err != nil {
		oc.fromError(w, r, "update order status", err)
		return
	}
	oc.ok(w, "Order status updated successfully", order)
}

// GetOrdersByStore lists a store's orders, optionally by status (Admin only)
func (oc *OrderController) GetOrdersByStore(w http.ResponseWriter, r *http.Request) {
	status := models.OrderStatus(r.URL.Query().Get("status"))

	ctx, cancel := oc.requestContext(r)
	defer cancel()

	orders, err := oc.orders.ListByStore(ctx, mux.Vars(r)["storeId"], status)
	if err != nil {
		oc.fromError(w, r, "orders by store", err)
		return
	}
	oc.respond(w, http.StatusOK, Response{Data: orders, Count: intPtr(len(orders))})
}
