package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"medstore/models"
)

// AddressRepository persists user delivery addresses. Every query is scoped
// by the owning user.
type AddressRepository struct {
	coll *mongo.Collection
}

func NewAddressRepository(db *mongo.Database) *AddressRepository {
	return &AddressRepository{coll: db.Collection(AddressesCollection)}
}

// ListByUser returns the default address first, then the newest
func (r *AddressRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Address, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "isDefault", Value: -1},
		{Key: "createdAt", Value: -1},
	})
	cursor, err := r.coll.Find(ctx, bson.M{"user": userID}, opts)
	if err != nil {
		return nil, mapErr("find addresses", err)
	}
	addresses := []models.Address{}
	if err := cursor.All(ctx, &addresses); err != nil {
		return nil, mapErr("decode addresses", err)
	}
	return addresses, nil
}

// CountByUser returns how many addresses a user has saved
func (r *AddressRepository) CountByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"user": userID})
	if err != nil {
		return 0, mapErr("count addresses", err)
	}
	return n, nil
}

// FindForUser loads an address only if it belongs to userID
func (r *AddressRepository) FindForUser(ctx context.Context, id, userID primitive.ObjectID) (*models.Address, error) {
	var addr models.Address
	if err := r.coll.FindOne(ctx, bson.M{"_id": id, "user": userID}).Decode(&addr); err != nil {
		return nil, mapErr("find address", err)
	}
	return &addr, nil
}

// FindAnyForUser returns the newest remaining address of a user
func (r *AddressRepository) FindAnyForUser(ctx context.Context, userID primitive.ObjectID) (*models.Address, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	var addr models.Address
	if err := r.coll.FindOne(ctx, bson.M{"user": userID}, opts).Decode(&addr); err != nil {
		return nil, mapErr("find address", err)
	}
	return &addr, nil
}

// Create inserts an address and fills in its id and timestamps
func (r *AddressRepository) Create(ctx context.Context, addr *models.Address) error {
	addr.ID = primitive.NewObjectID()
	addr.CreatedAt = now()
	addr.UpdatedAt = addr.CreatedAt
	if _, err := r.coll.InsertOne(ctx, addr); err != nil {
		return mapErr("insert address", err)
	}
	return nil
}

// Update sets the given fields on an address of userID. The default flag is
// owned by SetDefault and ClearDefaults and is never part of fields.
func (r *AddressRepository) Update(ctx context.Context, id, userID primitive.ObjectID, fields bson.M) (*models.Address, error) {
	delete(fields, "isDefault")
	return setFields[models.Address](ctx, r.coll, "update address", bson.M{"_id": id, "user": userID}, fields)
}

// Delete removes an address, scoped by its owner
func (r *AddressRepository) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id, "user": userID})
	if err != nil {
		return mapErr("delete address", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetDefault flags one address as default
func (r *AddressRepository) SetDefault(ctx context.Context, id, userID primitive.ObjectID) error {
	update := bson.M{"$set": bson.M{"isDefault": true, "updatedAt": now()}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id, "user": userID}, update)
	if err != nil {
		return mapErr("set default address", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearDefaults unsets isDefault on every address of userID except keep
func (r *AddressRepository) ClearDefaults(ctx context.Context, userID, keep primitive.ObjectID) error {
	filter := bson.M{"user": userID, "_id": bson.M{"$ne": keep}, "isDefault": true}
	update := bson.M{"$set": bson.M{"isDefault": false, "updatedAt": now()}}
	if _, err := r.coll.UpdateMany(ctx, filter, update); err != nil {
		return mapErr("clear default addresses", err)
	}
	return nil
}
