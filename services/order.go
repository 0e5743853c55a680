package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"medstore/models"
	"medstore/repository"
)

// OrderRepository is the persistence contract for orders
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	FindForUser(ctx context.Context, id, userID primitive.ObjectID) (*models.Order, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	ListByStore(ctx context.Context, storeID primitive.ObjectID, status models.OrderStatus) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus) (*models.Order, error)
}

// StockRepository reads medicines and takes stock off them
type StockRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Medicine, error)
	DecrementStock(ctx context.Context, id primitive.ObjectID, qty int) error
}

// StoreFinder loads a store by id
type StoreFinder interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Store, error)
}

// AddressFinder loads an address owned by a user
type AddressFinder interface {
	FindForUser(ctx context.Context, id, userID primitive.ObjectID) (*models.Address, error)
}

// OrderNotifier is told about every stored order
type OrderNotifier interface {
	NotifyOrderPlaced(ctx context.Context, order *models.Order) error
}

// OrderLine is one requested medicine and quantity
type OrderLine struct {
	MedicineID string `json:"medicineId" validate:"required"`
	Quantity   int    `json:"quantity" validate:"min=1"`
}

// PlaceOrderInput is a checkout request. StoreID falls back to the
// configured default store. AddressID wins over DeliveryAddress.
type PlaceOrderInput struct {
	StoreID         string                  `json:"storeId"`
	Items           []OrderLine             `json:"items" validate:"required,min=1,dive"`
	AddressID       string                  `json:"addressId"`
	DeliveryAddress *models.DeliveryAddress `json:"deliveryAddress" validate:"omitempty"`
	Notes           string                  `json:"notes" validate:"max=500"`
}

// OrderService places and tracks orders
type OrderService struct {
	orders         OrderRepository
	medicines      StockRepository
	stores         StoreFinder
	addresses      AddressFinder
	notifier       OrderNotifier
	logger         *zap.Logger
	defaultStoreID string
	notifyTimeout  time.Duration
}

// NewOrderService creates an OrderService. notifier may be nil.
func NewOrderService(
	orders OrderRepository,
	medicines StockRepository,
	stores StoreFinder,
	addresses AddressFinder,
	notifier OrderNotifier,
	logger *zap.Logger,
	defaultStoreID string,
) *OrderService {
	return &OrderService{
		orders:         orders,
		medicines:      medicines,
		stores:         stores,
		addresses:      addresses,
		notifier:       notifier,
		logger:         logger,
		defaultStoreID: defaultStoreID,
		notifyTimeout:  10 * time.Second,
	}
}

// PlaceOrder checks stock, takes it off line by line and stores a Pending
// order with a price snapshot of every line.
//
// Decrements are committed one line at a time. If line k fails, lines
// 1..k-1 stay decremented and no order is written. Two concurrent requests
// can both pass the stock check and drive quantity below zero.
// TODO: run the loop inside a session transaction and make DecrementStock
// conditional on quantity >= n so the check and the write are one step.
func (s *OrderService) PlaceOrder(ctx context.Context, userID primitive.ObjectID, in PlaceOrderInput) (*models.Order, error) {
	if len(in.Items) == 0 {
		return nil, ErrEmptyOrder
	}
	for _, line := range in.Items {
		if line.Quantity < 1 {
			return nil, &ValidationError{Message: "Item quantity must be at least 1"}
		}
	}

	storeID, err := s.resolveStore(ctx, in.StoreID)
	if err != nil {
		return nil, err
	}
	delivery, err := s.resolveDelivery(ctx, userID, in)
	if err != nil {
		return nil, err
	}

	var total float64
	items := make([]models.OrderItem, 0, len(in.Items))
	for _, line := range in.Items {
		medicineID, err := primitive.ObjectIDFromHex(line.MedicineID)
		if err != nil {
			return nil, &NotFoundError{Kind: "Medicine", ID: line.MedicineID}
		}
		medicine, err := s.medicines.FindByID(ctx, medicineID)
		if err != nil {
			return nil, notFound(err, "Medicine", line.MedicineID)
		}
		if medicine.Quantity < line.Quantity {
			return nil, &InsufficientStockError{
				MedicineID: line.MedicineID,
				Name:       medicine.Name,
				Requested:  line.Quantity,
				Available:  medicine.Quantity,
			}
		}

		total += medicine.Price * float64(line.Quantity)
		if err := s.medicines.DecrementStock(ctx, medicine.ID, line.Quantity); err != nil {
			return nil, fmt.Errorf("decrement stock of %s: %w", medicine.ID.Hex(), err)
		}
		items = append(items, models.OrderItem{
			Medicine: medicine.ID,
			Name:     medicine.Name,
			Price:    medicine.Price,
			Quantity: line.Quantity,
		})
	}

	order := &models.Order{
		User:            userID,
		Store:           storeID,
		Items:           items,
		TotalPrice:      total,
		Status:          models.OrderStatusPending,
		DeliveryAddress: delivery,
		Notes:           in.Notes,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.notify(ctx, order)
	return order, nil
}

func (s *OrderService) resolveStore(ctx context.Context, storeID string) (primitive.ObjectID, error) {
	if storeID == "" {
		storeID = s.defaultStoreID
	}
	if storeID == "" {
		return primitive.NilObjectID, ErrNoStore
	}
	oid, err := parseID("Store", storeID)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if _, err := s.stores.FindByID(ctx, oid); err != nil {
		return primitive.NilObjectID, notFound(err, "Store", storeID)
	}
	return oid, nil
}

func (s *OrderService) resolveDelivery(ctx context.Context, userID primitive.ObjectID, in PlaceOrderInput) (*models.DeliveryAddress, error) {
	if in.AddressID == "" {
		if in.DeliveryAddress != nil {
			if err := checkStruct("deliveryAddress", in.DeliveryAddress); err != nil {
				return nil, err
			}
		}
		return in.DeliveryAddress, nil
	}
	oid, err := parseID("Address", in.AddressID)
	if err != nil {
		return nil, err
	}
	addr, err := s.addresses.FindForUser(ctx, oid, userID)
	if err != nil {
		return nil, notFound(err, "Address", in.AddressID)
	}
	return addr.Snapshot(), nil
}

// notify runs after the order is stored, so a failure is only logged
func (s *OrderService) notify(ctx context.Context, order *models.Order) {
	if s.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	defer cancel()
	if err := s.notifier.NotifyOrderPlaced(ctx, order); err != nil {
		s.logger.Warn("order notification failed", zap.Error(err), zap.String("orderID", order.ID.Hex()))
	}
}

// History returns the user's orders, newest first
func (s *OrderService) History(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// GetForUser loads one of the user's own orders
func (s *OrderService) GetForUser(ctx context.Context, userID primitive.ObjectID, id string) (*models.Order, error) {
	oid, err := parseID("Order", id)
	if err != nil {
		return nil, err
	}
	order, err := s.orders.FindForUser(ctx, oid, userID)
	return order, notFound(err, "Order", id)
}

// UpdateStatus moves an order to a new status
func (s *OrderService) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	oid, err := parseID("Order", id)
	if err != nil {
		return nil, err
	}
	order, err := s.orders.UpdateStatus(ctx, oid, status)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &NotFoundError{Kind: "Order", ID: id}
	}
	return order, err
}

// ListByStore returns a store's orders, optionally filtered by status
func (s *OrderService) ListByStore(ctx context.Context, storeID string, status models.OrderStatus) ([]models.Order, error) {
	if status != "" && !status.Valid() {
		return nil, ErrInvalidStatus
	}
	oid, err := parseID("Store", storeID)
	if err != nil {
		return nil, err
	}
	return s.orders.ListByStore(ctx, oid, status)
}
