package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// User represents a customer identified by mobile number
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	MobileNumber string             `bson:"mobileNumber" json:"mobileNumber"`
	Location     GeoPoint           `bson:"location" json:"location"`
	RefreshToken string             `bson:"refreshToken,omitempty" json:"-"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// UserProfile is the public subset of a user returned after login
type UserProfile struct {
	ID           primitive.ObjectID `json:"id"`
	MobileNumber string             `json:"mobileNumber"`
	Location     GeoPoint           `json:"location"`
}

// Profile strips credentials from the user
func (u *User) Profile() UserProfile {
	return UserProfile{
		ID:           u.ID,
		MobileNumber: u.MobileNumber,
		Location:     u.Location,
	}
}

var UserIndexes = []mongo.IndexModel{
	{
		Keys:    bson.D{{Key: "mobileNumber", Value: 1}},
		Options: options.Index().SetName("uniq_mobileNumber").SetUnique(true),
	},
	{
		Keys:    bson.D{{Key: "location", Value: "2dsphere"}},
		Options: options.Index().SetName("geo_location"),
	},
}
