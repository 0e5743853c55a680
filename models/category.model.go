package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Fixed category names shared by Category and Medicine.Category
const (
	CategoryPharmacy = "Pharmacy"
	CategoryLabTests = "Lab Tests"
	CategoryPetCare  = "Pet Care"
	CategoryConsults = "Consults"
	CategoryWellness = "Wellness"
)

// CategoryNames lists the allowed categories in display order
var CategoryNames = []string{
	CategoryPharmacy,
	CategoryLabTests,
	CategoryPetCare,
	CategoryConsults,
	CategoryWellness,
}

// IsValidCategory reports whether name is one of the fixed categories
func IsValidCategory(name string) bool {
	for _, c := range CategoryNames {
		if c == name {
			return true
		}
	}
	return false
}

// Category represents a browsable product category
type Category struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name         string             `bson:"name" json:"name"`
	Description  string             `bson:"description" json:"description"`
	Icon         string             `bson:"icon" json:"icon"`
	DisplayOrder int                `bson:"displayOrder" json:"displayOrder"`
	IsActive     bool               `bson:"isActive" json:"isActive"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

var CategoryIndexes = []mongo.IndexModel{
	{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetName("uniq_name").SetUnique(true),
	},
}
