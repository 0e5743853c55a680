package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"medstore/models"
)

// OrderRepository persists placed orders
type OrderRepository struct {
	coll *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{coll: db.Collection(OrdersCollection)}
}

// Create inserts an order and fills in its id and timestamps
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	order.ID = primitive.NewObjectID()
	order.CreatedAt = now()
	order.UpdatedAt = order.CreatedAt
	if _, err := r.coll.InsertOne(ctx, order); err != nil {
		return mapErr("insert order", err)
	}
	return nil
}

// FindForUser loads an order only if it belongs to userID
func (r *OrderRepository) FindForUser(ctx context.Context, id, userID primitive.ObjectID) (*models.Order, error) {
	var order models.Order
	if err := r.coll.FindOne(ctx, bson.M{"_id": id, "user": userID}).Decode(&order); err != nil {
		return nil, mapErr("find order", err)
	}
	return &order, nil
}

// ListByUser returns a user's orders, newest first
func (r *OrderRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	return r.find(ctx, bson.M{"user": userID})
}

// ListByStore returns a store's orders, newest first, optionally by status
func (r *OrderRepository) ListByStore(ctx context.Context, storeID primitive.ObjectID, status models.OrderStatus) ([]models.Order, error) {
	filter := bson.M{"store": storeID}
	if status != "" {
		filter["status"] = status
	}
	return r.find(ctx, filter)
}

// UpdateStatus sets the status of an order and returns the updated document
func (r *OrderRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus) (*models.Order, error) {
	update := bson.M{"$set": bson.M{"status": status, "updatedAt": now()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var order models.Order
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&order); err != nil {
		return nil, mapErr("update order status", err)
	}
	return &order, nil
}

func (r *OrderRepository) find(ctx context.Context, filter bson.M) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, mapErr("find orders", err)
	}
	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, mapErr("decode orders", err)
	}
	return orders, nil
}
