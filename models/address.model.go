package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Address represents a saved delivery address of a user
type Address struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	User         primitive.ObjectID `bson:"user" json:"user"`
	Name         string             `bson:"name" json:"name"` // "Home", "Office"
	FullName     string             `bson:"fullName" json:"fullName"`
	PhoneNumber  string             `bson:"phoneNumber" json:"phoneNumber"`
	AddressLine1 string             `bson:"addressLine1" json:"addressLine1"`
	AddressLine2 string             `bson:"addressLine2,omitempty" json:"addressLine2,omitempty"`
	Landmark     string             `bson:"landmark" json:"landmark"`
	Pincode      string             `bson:"pincode" json:"pincode"`
	Location     GeoPoint           `bson:"location" json:"location"`
	IsDefault    bool               `bson:"isDefault" json:"isDefault"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Snapshot copies the address into an order-embeddable value
func (a *Address) Snapshot() *DeliveryAddress {
	loc := a.Location
	return &DeliveryAddress{
		Name:         a.Name,
		FullName:     a.FullName,
		PhoneNumber:  a.PhoneNumber,
		AddressLine1: a.AddressLine1,
		AddressLine2: a.AddressLine2,
		Landmark:     a.Landmark,
		Pincode:      a.Pincode,
		Location:     &loc,
	}
}

var AddressIndexes = []mongo.IndexModel{
	{
		Keys:    bson.D{{Key: "user", Value: 1}, {Key: "isDefault", Value: -1}},
		Options: options.Index().SetName("idx_user_isDefault"),
	},
	{
		Keys:    bson.D{{Key: "location", Value: "2dsphere"}},
		Options: options.Index().SetName("geo_location"),
	},
}
