package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"medstore/models"
)

// UserRepository stores customers keyed by mobile number
type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(UsersCollection)}
}

// FindByID loads a user by id
func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		return nil, mapErr("find user", err)
	}
	return &user, nil
}

// FindOrCreateByMobile returns the user owning mobile, inserting it with a
// [0, 0] location on first sight.
func (r *UserRepository) FindOrCreateByMobile(ctx context.Context, mobile string) (*models.User, error) {
	ts := now()
	update := bson.M{
		"$setOnInsert": bson.M{
			"mobileNumber": mobile,
			"location":     models.NewPoint(0, 0),
			"createdAt":    ts,
			"updatedAt":    ts,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var user models.User
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"mobileNumber": mobile}, update, opts).Decode(&user)
	if err != nil {
		return nil, mapErr("upsert user", err)
	}
	return &user, nil
}

// SetRefreshToken persists the current refresh token of a user
func (r *UserRepository) SetRefreshToken(ctx context.Context, id primitive.ObjectID, token string) error {
	return r.set(ctx, id, bson.M{"refreshToken": token})
}

// SetLocation stores the last known position of a user
func (r *UserRepository) SetLocation(ctx context.Context, id primitive.ObjectID, loc models.GeoPoint) error {
	return r.set(ctx, id, bson.M{"location": loc})
}

func (r *UserRepository) set(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	fields["updatedAt"] = now()
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return mapErr("update user", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
