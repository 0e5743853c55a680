package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	DefaultServiceRadiusKm = 50
	DefaultOpeningHours    = "24/7"
)

// Store represents a physical medical store
type Store struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name          string             `bson:"name" json:"name"`
	Address       string             `bson:"address" json:"address"`
	Location      GeoPoint           `bson:"location" json:"location"`
	ServiceRadius float64            `bson:"serviceRadius" json:"serviceRadius"` // km
	ContactNumber string             `bson:"contactNumber" json:"contactNumber"`
	OpeningHours  string             `bson:"openingHours" json:"openingHours"`
	IsActive      bool               `bson:"isActive" json:"isActive"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// NearbyStore is a store annotated with its distance from the query point
type NearbyStore struct {
	Store    `bson:",inline"`
	Distance float64 `bson:"distance" json:"distance"` // km
}

var StoreIndexes = []mongo.IndexModel{
	{
		Keys:    bson.D{{Key: "location", Value: "2dsphere"}},
		Options: options.Index().SetName("geo_location"),
	},
	{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetName("idx_name"),
	},
}
