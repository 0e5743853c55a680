package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// OTP is a one-time code sent to a mobile number
type OTP struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	MobileNumber string             `bson:"mobileNumber" json:"mobileNumber"`
	Code         string             `bson:"otp" json:"otp"`
	ExpiresAt    time.Time          `bson:"expiresAt" json:"expiresAt"`
	Verified     bool               `bson:"verified" json:"verified"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}

var OTPIndexes = []mongo.IndexModel{
	{
		// documents are removed by mongod once expiresAt passes
		Keys:    bson.D{{Key: "expiresAt", Value: 1}},
		Options: options.Index().SetName("ttl_expiresAt").SetExpireAfterSeconds(0),
	},
	{
		Keys:    bson.D{{Key: "mobileNumber", Value: 1}, {Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("idx_mobileNumber_createdAt"),
	},
}
