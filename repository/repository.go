// Package repository persists medstore documents in MongoDB.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"medstore/models"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate key")
)

// Collection names
const (
	StoresCollection     = "stores"
	MedicinesCollection  = "medicines"
	OrdersCollection     = "orders"
	UsersCollection      = "users"
	AddressesCollection  = "addresses"
	AdminsCollection     = "admins"
	OTPsCollection       = "otps"
	CategoriesCollection = "categories"
)

// Connect opens a client to uri and pings the primary.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the indexes declared next to each model.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		StoresCollection:     models.StoreIndexes,
		MedicinesCollection:  models.MedicineIndexes,
		OrdersCollection:     models.OrderIndexes,
		UsersCollection:      models.UserIndexes,
		AddressesCollection:  models.AddressIndexes,
		AdminsCollection:     models.AdminIndexes,
		OTPsCollection:       models.OTPIndexes,
		CategoriesCollection: models.CategoryIndexes,
	}
	for name, idx := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}

// setFields applies a $set of fields plus a fresh updatedAt to the document
// matching filter and decodes the document as it is after the update.
func setFields[T any](ctx context.Context, coll *mongo.Collection, op string, filter, fields bson.M) (*T, error) {
	set := bson.M{"updatedAt": now()}
	for k, v := range fields {
		set[k] = v
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc T
	if err := coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&doc); err != nil {
		return nil, mapErr(op, err)
	}
	return &doc, nil
}

// mapErr translates driver errors into package sentinels.
func mapErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%s: %w", op, ErrDuplicate)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
