// Command seed creates the default store and the fixed product categories.
// It is safe to run repeatedly.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"medstore/config"
	"medstore/models"
	"medstore/repository"
)

// DefaultStoreName identifies the seeded store on reruns
const DefaultStoreName = "ABCD Medical Store"

type storeRepo interface {
	FindByName(ctx context.Context, name string) (*models.Store, error)
	Create(ctx context.Context, store *models.Store) error
}

type categoryRepo interface {
	Create(ctx context.Context, c *models.Category) error
}

var categoryDescriptions = map[string]string{
	models.CategoryPharmacy: "Medicines and health products",
	models.CategoryLabTests: "Book lab tests and health packages",
	models.CategoryPetCare:  "Medicines and supplies for pets",
	models.CategoryConsults: "Consult a doctor online",
	models.CategoryWellness: "Vitamins, supplements and personal care",
}

func main() {
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("configuration error", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := repository.Connect(ctx, cfg.MongoURI)
	if err != nil {
		logger.Fatal("database connection error", zap.Error(err))
	}
	defer client.Disconnect(context.Background())

	db := client.Database(cfg.MongoDatabase)
	if err := repository.EnsureIndexes(ctx, db); err != nil {
		logger.Fatal("create indexes", zap.Error(err))
	}

	store, err := seedStore(ctx, repository.NewStoreRepository(db), logger)
	if err != nil {
		logger.Fatal("seed store", zap.Error(err))
	}
	if err := seedCategories(ctx, repository.NewCategoryRepository(db), logger); err != nil {
		logger.Fatal("seed categories", zap.Error(err))
	}

	fmt.Fprintf(os.Stdout, "Add this to your .env file:\nDEFAULT_STORE_ID=%s\n", store.ID.Hex())
}

// seedStore returns the default store, creating it when it is missing.
func seedStore(ctx context.Context, stores storeRepo, logger *zap.Logger) (*models.Store, error) {
	existing, err := stores.FindByName(ctx, DefaultStoreName)
	if err == nil {
		logger.Info("default store already exists", zap.String("id", existing.ID.Hex()))
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	store := &models.Store{
		Name:          DefaultStoreName,
		Address:       "123 Main St, Central City",
		Location:      models.NewPoint(77.5946, 12.9716),
		ServiceRadius: 100,
		ContactNumber: "9876543210",
		OpeningHours:  models.DefaultOpeningHours,
		IsActive:      true,
	}
	if err := stores.Create(ctx, store); err != nil {
		return nil, err
	}
	logger.Info("default store created", zap.String("id", store.ID.Hex()))
	return store, nil
}

func seedCategories(ctx context.Context, categories categoryRepo, logger *zap.Logger) error {
	for i, name := range models.CategoryNames {
		c := &models.Category{
			Name:         name,
			Description:  categoryDescriptions[name],
			DisplayOrder: i + 1,
			IsActive:     true,
		}
		err := categories.Create(ctx, c)
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			logger.Debug("category already exists", zap.String("name", name))
		case err != nil:
			return fmt.Errorf("create category %s: %w", name, err)
		default:
			logger.Info("category created", zap.String("name", name))
		}
	}
	return nil
}
