package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"medstore/models"
)

// OTPRepository keeps one-time codes in MongoDB. Expired documents are
// reaped by the TTL index on expiresAt.
type OTPRepository struct {
	coll *mongo.Collection
}

func NewOTPRepository(db *mongo.Database) *OTPRepository {
	return &OTPRepository{coll: db.Collection(OTPsCollection)}
}

// Save stores a freshly issued code
func (r *OTPRepository) Save(ctx context.Context, otp *models.OTP) error {
	otp.ID = primitive.NewObjectID()
	if otp.CreatedAt.IsZero() {
		otp.CreatedAt = now()
	}
	if _, err := r.coll.InsertOne(ctx, otp); err != nil {
		return mapErr("insert otp", err)
	}
	return nil
}

// Consume marks the newest unverified, unexpired code matching mobile and
// code as verified. ErrNotFound means there was nothing to consume.
func (r *OTPRepository) Consume(ctx context.Context, mobile, code string, at time.Time) error {
	filter := bson.M{
		"mobileNumber": mobile,
		"otp":          code,
		"verified":     false,
		"expiresAt":    bson.M{"$gt": at},
	}
	opts := options.FindOneAndUpdate().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	res := r.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": bson.M{"verified": true}}, opts)
	if err := res.Err(); err != nil {
		return mapErr("consume otp", err)
	}
	return nil
}
