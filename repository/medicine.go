package repository

import (
	"context"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"medstore/models"
)

// MedicineSearch narrows a medicine lookup.
// A nil StoreIDs means any store; an empty non-nil slice matches nothing.
type MedicineSearch struct {
	Name     string
	StoreIDs []primitive.ObjectID
	Limit    int64
}

// MedicineRepository persists the medicine catalogue and its stock counts
type MedicineRepository struct {
	coll *mongo.Collection
}

func NewMedicineRepository(db *mongo.Database) *MedicineRepository {
	return &MedicineRepository{coll: db.Collection(MedicinesCollection)}
}

// Create inserts a medicine and fills in its id and timestamps
func (r *MedicineRepository) Create(ctx context.Context, m *models.Medicine) error {
	m.ID = primitive.NewObjectID()
	m.CreatedAt = now()
	m.UpdatedAt = m.CreatedAt
	if _, err := r.coll.InsertOne(ctx, m); err != nil {
		return mapErr("insert medicine", err)
	}
	return nil
}

// FindByID loads a medicine by id
func (r *MedicineRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Medicine, error) {
	var m models.Medicine
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		return nil, mapErr("find medicine", err)
	}
	return &m, nil
}

// Search does a case-insensitive substring match on active, in-stock medicines
func (r *MedicineRepository) Search(ctx context.Context, q MedicineSearch) ([]models.Medicine, error) {
	filter := bson.M{
		"name":     primitive.Regex{Pattern: regexp.QuoteMeta(q.Name), Options: "i"},
		"isActive": true,
		"quantity": bson.M{"$gt": 0},
	}
	if q.StoreIDs != nil {
		filter["store"] = bson.M{"$in": q.StoreIDs}
	}
	opts := options.Find()
	if q.Limit > 0 {
		opts.SetLimit(q.Limit)
	}
	return r.find(ctx, filter, opts)
}

// ListByCategory returns one page of active, in-stock medicines in a
// category, newest first, and the total number of matches.
func (r *MedicineRepository) ListByCategory(ctx context.Context, category string, page, limit int64) ([]models.Medicine, int64, error) {
	filter := bson.M{"category": category, "isActive": true, "quantity": bson.M{"$gt": 0}}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, mapErr("count medicines", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)
	items, err := r.find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ListByStore returns the active medicines of one store
func (r *MedicineRepository) ListByStore(ctx context.Context, storeID primitive.ObjectID) ([]models.Medicine, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	return r.find(ctx, bson.M{"store": storeID, "isActive": true}, opts)
}

// Update sets only the given fields and returns the updated medicine.
// Stock moves through DecrementStock, so quantity is written only when
// fields carries it.
func (r *MedicineRepository) Update(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.Medicine, error) {
	return setFields[models.Medicine](ctx, r.coll, "update medicine", bson.M{"_id": id}, fields)
}

// Delete removes a medicine permanently
func (r *MedicineRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mapErr("delete medicine", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DecrementStock subtracts qty from the medicine quantity.
// The update is unconditional; callers check stock beforehand.
func (r *MedicineRepository) DecrementStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	update := bson.M{
		"$inc": bson.M{"quantity": -qty},
		"$set": bson.M{"updatedAt": now()},
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return mapErr("decrement stock", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MedicineRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Medicine, error) {
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, mapErr("find medicines", err)
	}
	items := []models.Medicine{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, mapErr("decode medicines", err)
	}
	return items, nil
}
