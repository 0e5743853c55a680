package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Medicine represents a stock-keeping item sold by a store
type Medicine struct {
	ID                   primitive.ObjectID  `bson:"_id,omitempty" json:"id,omitempty"`
	Name                 string              `bson:"name" json:"name"`
	Description          string              `bson:"description" json:"description"`
	Price                float64             `bson:"price" json:"price"`
	Quantity             int                 `bson:"quantity" json:"quantity"`
	ImageURL             string              `bson:"imageUrl" json:"imageUrl"`
	PrescriptionRequired bool                `bson:"prescriptionRequired" json:"prescriptionRequired"`
	Store                *primitive.ObjectID `bson:"store,omitempty" json:"store,omitempty"`
	Category             string              `bson:"category" json:"category"`
	Subcategory          string              `bson:"subcategory,omitempty" json:"subcategory,omitempty"`
	Manufacturer         string              `bson:"manufacturer,omitempty" json:"manufacturer,omitempty"`
	Dosage               string              `bson:"dosage,omitempty" json:"dosage,omitempty"` // e.g. "500mg"
	Discount             float64             `bson:"discount" json:"discount"`                 // percent
	IsActive             bool                `bson:"isActive" json:"isActive"`
	CreatedAt            time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time           `bson:"updatedAt" json:"updatedAt"`
}

var MedicineIndexes = []mongo.IndexModel{
	{
		Keys:    bson.D{{Key: "name", Value: "text"}, {Key: "description", Value: "text"}},
		Options: options.Index().SetName("text_name_description"),
	},
	{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetName("idx_name"),
	},
	{
		Keys:    bson.D{{Key: "store", Value: 1}},
		Options: options.Index().SetName("idx_store"),
	},
	{
		Keys:    bson.D{{Key: "category", Value: 1}},
		Options: options.Index().SetName("idx_category"),
	},
}
