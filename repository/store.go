package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"medstore/models"
)

// StoreRepository persists physical stores
type StoreRepository struct {
	coll *mongo.Collection
}

func NewStoreRepository(db *mongo.Database) *StoreRepository {
	return &StoreRepository{coll: db.Collection(StoresCollection)}
}

// Create inserts a store and fills in its id and timestamps
func (r *StoreRepository) Create(ctx context.Context, store *models.Store) error {
	store.ID = primitive.NewObjectID()
	store.CreatedAt = now()
	store.UpdatedAt = store.CreatedAt
	if _, err := r.coll.InsertOne(ctx, store); err != nil {
		return mapErr("insert store", err)
	}
	return nil
}

// FindByID loads a store by id
func (r *StoreRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Store, error) {
	var store models.Store
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&store); err != nil {
		return nil, mapErr("find store", err)
	}
	return &store, nil
}

// FindByName loads the first store with the given name
func (r *StoreRepository) FindByName(ctx context.Context, name string) (*models.Store, error) {
	var store models.Store
	if err := r.coll.FindOne(ctx, bson.M{"name": name}).Decode(&store); err != nil {
		return nil, mapErr("find store by name", err)
	}
	return &store, nil
}

// ListActive returns active stores ordered by name
func (r *StoreRepository) ListActive(ctx context.Context) ([]models.Store, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"isActive": true}, opts)
	if err != nil {
		return nil, mapErr("list stores", err)
	}
	stores := []models.Store{}
	if err := cursor.All(ctx, &stores); err != nil {
		return nil, mapErr("decode stores", err)
	}
	return stores, nil
}

// Nearby returns active stores within radiusKm of the point, nearest first.
// Distance is reported in kilometres.
func (r *StoreRepository) Nearby(ctx context.Context, longitude, latitude, radiusKm float64) ([]models.NearbyStore, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$geoNear", Value: bson.M{
			"near":          models.NewPoint(longitude, latitude),
			"distanceField": "distance",
			"maxDistance":   radiusKm * 1000,
			"spherical":     true,
			"query":         bson.M{"isActive": true},
		}}},
		{{Key: "$addFields", Value: bson.M{
			"distance": bson.M{"$divide": bson.A{"$distance", 1000}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "distance", Value: 1}}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, mapErr("nearby stores", err)
	}
	stores := []models.NearbyStore{}
	if err := cursor.All(ctx, &stores); err != nil {
		return nil, mapErr("decode nearby stores", err)
	}
	return stores, nil
}

// Update sets the given fields and returns the updated store
func (r *StoreRepository) Update(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.Store, error) {
	return setFields[models.Store](ctx, r.coll, "update store", bson.M{"_id": id}, fields)
}

// Delete removes a store permanently
func (r *StoreRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mapErr("delete store", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
