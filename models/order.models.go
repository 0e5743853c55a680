package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// OrderStatus is the lifecycle state of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusReady     OrderStatus = "Ready"
	OrderStatusPickedUp  OrderStatus = "Picked Up"
	OrderStatusCancelled OrderStatus = "Cancelled"
)

// Valid reports whether s is a known status
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusReady, OrderStatusPickedUp, OrderStatusCancelled:
		return true
	}
	return false
}

// OrderItem is a denormalized snapshot of a medicine at order time
type OrderItem struct {
	Medicine primitive.ObjectID `bson:"medicine" json:"medicine"`
	Name     string             `bson:"name" json:"name"`
	Price    float64            `bson:"price" json:"price"`
	Quantity int                `bson:"quantity" json:"quantity"`
}

// DeliveryAddress is a copy of an Address taken when the order is placed
type DeliveryAddress struct {
	Name         string    `bson:"name" json:"name" validate:"required,max=50"`
	FullName     string    `bson:"fullName" json:"fullName" validate:"required,max=100"`
	PhoneNumber  string    `bson:"phoneNumber" json:"phoneNumber" validate:"required,max=15"`
	AddressLine1 string    `bson:"addressLine1" json:"addressLine1" validate:"required,max=200"`
	AddressLine2 string    `bson:"addressLine2,omitempty" json:"addressLine2,omitempty" validate:"max=200"`
	Landmark     string    `bson:"landmark" json:"landmark" validate:"required,max=100"`
	Pincode      string    `bson:"pincode" json:"pincode" validate:"required,len=6,number"`
	Location     *GeoPoint `bson:"location,omitempty" json:"location,omitempty" validate:"-"`
}

// Order represents a user's order placed against one store
type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	User            primitive.ObjectID `bson:"user" json:"user"`
	Store           primitive.ObjectID `bson:"store" json:"store"`
	Items           []OrderItem        `bson:"items" json:"items"`
	TotalPrice      float64            `bson:"totalPrice" json:"totalPrice"`
	Status          OrderStatus        `bson:"status" json:"status"`
	DeliveryAddress *DeliveryAddress   `bson:"deliveryAddress,omitempty" json:"deliveryAddress,omitempty"`
	Notes           string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

var OrderIndexes = []mongo.IndexModel{
	{
		Keys:    bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("idx_user_createdAt"),
	},
	{
		Keys:    bson.D{{Key: "store", Value: 1}},
		Options: options.Index().SetName("idx_store"),
	},
}
