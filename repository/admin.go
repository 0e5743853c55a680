package repository

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"medstore/models"
)

// AdminRepository persists back-office accounts
type AdminRepository struct {
	coll *mongo.Collection
}

func NewAdminRepository(db *mongo.Database) *AdminRepository {
	return &AdminRepository{coll: db.Collection(AdminsCollection)}
}

// Create inserts an admin. Emails are stored lowercase; a taken email yields ErrDuplicate.
func (r *AdminRepository) Create(ctx context.Context, admin *models.Admin) error {
	admin.ID = primitive.NewObjectID()
	admin.Email = strings.ToLower(strings.TrimSpace(admin.Email))
	admin.CreatedAt = now()
	admin.UpdatedAt = admin.CreatedAt
	if _, err := r.coll.InsertOne(ctx, admin); err != nil {
		return mapErr("insert admin", err)
	}
	return nil
}

// FindByEmail loads an admin by case-insensitive email
func (r *AdminRepository) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	var admin models.Admin
	filter := bson.M{"email": strings.ToLower(strings.TrimSpace(email))}
	if err := r.coll.FindOne(ctx, filter).Decode(&admin); err != nil {
		return nil, mapErr("find admin", err)
	}
	return &admin, nil
}

// FindByID loads an admin by id
func (r *AdminRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Admin, error) {
	var admin models.Admin
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&admin); err != nil {
		return nil, mapErr("find admin", err)
	}
	return &admin, nil
}

// Count returns the number of admin accounts
func (r *AdminRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, mapErr("count admins", err)
	}
	return n, nil
}
