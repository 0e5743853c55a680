package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"medstore/models"
)

// CategoryRepository persists browsable categories
type CategoryRepository struct {
	coll *mongo.Collection
}

func NewCategoryRepository(db *mongo.Database) *CategoryRepository {
	return &CategoryRepository{coll: db.Collection(CategoriesCollection)}
}

// ListActive returns active categories by displayOrder
func (r *CategoryRepository) ListActive(ctx context.Context) ([]models.Category, error) {
	opts := options.Find().SetSort(bson.D{{Key: "displayOrder", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"isActive": true}, opts)
	if err != nil {
		return nil, mapErr("find categories", err)
	}
	categories := []models.Category{}
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, mapErr("decode categories", err)
	}
	return categories, nil
}

// FindByName loads an active category by its exact name
func (r *CategoryRepository) FindByName(ctx context.Context, name string) (*models.Category, error) {
	var c models.Category
	if err := r.coll.FindOne(ctx, bson.M{"name": name, "isActive": true}).Decode(&c); err != nil {
		return nil, mapErr("find category", err)
	}
	return &c, nil
}

// Create inserts a category; a taken name yields ErrDuplicate
func (r *CategoryRepository) Create(ctx context.Context, c *models.Category) error {
	c.ID = primitive.NewObjectID()
	c.CreatedAt = now()
	c.UpdatedAt = c.CreatedAt
	if _, err := r.coll.InsertOne(ctx, c); err != nil {
		return mapErr("insert category", err)
	}
	return nil
}

// Update sets the given fields; renaming onto a taken name yields ErrDuplicate
func (r *CategoryRepository) Update(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.Category, error) {
	return setFields[models.Category](ctx, r.coll, "update category", bson.M{"_id": id}, fields)
}

// Delete removes a category permanently
func (r *CategoryRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mapErr("delete category", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
