package services

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"medstore/models"
	"medstore/repository"
)

func newTestCatalog() (*CatalogService, *fakeStores, *fakeMedicines, *fakeCategories) {
	stores := newFakeStores()
	medicines := newFakeMedicines()
	categories := newFakeCategories()
	return NewCatalogService(stores, medicines, categories), stores, medicines, categories
}

func TestCreateMedicine_RoundTrip(t *testing.T) {
	svc, _, _, _ := newTestCatalog()
	storeID := primitive.NewObjectID().Hex()

	created, err := svc.CreateMedicine(context.Background(), MedicineInput{
		Name:        ptr("Paracetamol 500mg"),
		Description: ptr("Pain relief"),
		Price:       ptr(25.5),
		Quantity:    ptr(100),
		Store:       ptr(storeID),
	})
	require.NoError(t, err)
	assert.Equal(t, models.CategoryPharmacy, created.Category)
	assert.True(t, created.IsActive)

	got, err := svc.GetMedicine(context.Background(), created.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "Paracetamol 500mg", got.Name)
	assert.Equal(t, 25.5, got.Price)
	assert.Equal(t, 100, got.Quantity)
	require.NotNil(t, got.Store)
	assert.Equal(t, storeID, got.Store.Hex())
}

func TestCreateMedicine_Validation(t *testing.T) {
	svc, _, _, _ := newTestCatalog()

	_, err := svc.CreateMedicine(context.Background(), MedicineInput{Name: ptr("Paracetamol")})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Missing required fields", verr.Message)

	_, err = svc.CreateMedicine(context.Background(), MedicineInput{
		Name: ptr("Paracetamol"), Description: ptr(""), Price: ptr(-1.0),
	})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Price cannot be negative", verr.Message)

	_, err = svc.CreateMedicine(context.Background(), MedicineInput{
		Name: ptr("Paracetamol"), Description: ptr(""), Price: ptr(1.0), Category: ptr("Groceries"),
	})
	assert.ErrorIs(t, err, ErrInvalidCategory)
}

func TestUpdateMedicine_Partial(t *testing.T) {
	svc, _, _, _ := newTestCatalog()
	created, err := svc.CreateMedicine(context.Background(), MedicineInput{
		Name: ptr("Cetirizine"), Description: ptr("Allergy"), Price: ptr(10.0), Quantity: ptr(4),
	})
	require.NoError(t, err)

	updated, err := svc.UpdateMedicine(context.Background(), created.ID.Hex(), MedicineInput{Quantity: ptr(9)})
	require.NoError(t, err)
	assert.Equal(t, 9, updated.Quantity)
	assert.Equal(t, "Cetirizine", updated.Name)
	assert.Equal(t, 10.0, updated.Price)
}

func TestGetMedicine_NotFound(t *testing.T) {
	svc, _, _, _ := newTestCatalog()

	for _, id := range []string{primitive.NewObjectID().Hex(), "not-a-hex-id"} {
		_, err := svc.GetMedicine(context.Background(), id)
		var nf *NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, "Medicine", nf.Kind)
	}

	err := svc.DeleteMedicine(context.Background(), primitive.NewObjectID().Hex())
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestNearbyStores(t *testing.T) {
	lat, lng := 12.9716, 77.5946

	t.Run("explicit coordinates", func(t *testing.T) {
		svc, stores, _, _ := newTestCatalog()
		_, err := svc.NearbyStores(context.Background(), nil, &lat, &lng, 0)
		require.NoError(t, err)
		assert.Equal(t, lng, stores.nearbyLng)
		assert.Equal(t, lat, stores.nearbyLat)
		assert.Equal(t, float64(DefaultNearbyRadiusKm), stores.nearbyRadius)
	})

	t.Run("falls back to user location", func(t *testing.T) {
		svc, stores, _, _ := newTestCatalog()
		user := &models.User{Location: models.NewPoint(77.1, 28.6)}
		_, err := svc.NearbyStores(context.Background(), user, nil, nil, 10)
		require.NoError(t, err)
		assert.Equal(t, 77.1, stores.nearbyLng)
		assert.Equal(t, 28.6, stores.nearbyLat)
		assert.Equal(t, 10.0, stores.nearbyRadius)
	})

	t.Run("unset user location", func(t *testing.T) {
		svc, _, _, _ := newTestCatalog()
		user := &models.User{Location: models.NewPoint(0, 0)}
		_, err := svc.NearbyStores(context.Background(), user, nil, nil, 0)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "Location coordinates are required", verr.Message)
	})

	t.Run("out of range", func(t *testing.T) {
		svc, _, _, _ := newTestCatalog()
		bad := 120.0
		_, err := svc.NearbyStores(context.Background(), nil, &bad, &lng, 0)
		assert.ErrorIs(t, err, ErrInvalidLocation)
	})
}

func TestSearchMedicines(t *testing.T) {
	near := primitive.NewObjectID()
	far := primitive.NewObjectID()

	stores := newFakeStores()
	stores.nearby = []models.NearbyStore{{Store: models.Store{ID: near, Name: "Near"}, Distance: 1.2}}
	medicines := newFakeMedicines(
		&models.Medicine{Name: "Paracetamol", Quantity: 3, IsActive: true, Store: &near},
		&models.Medicine{Name: "PARACETAMOL syrup", Quantity: 1, IsActive: true, Store: &far},
		&models.Medicine{Name: "Paracetamol drops", Quantity: 0, IsActive: true, Store: &near},
		&models.Medicine{Name: "Ibuprofen", Quantity: 5, IsActive: true, Store: &near},
	)
	svc := NewCatalogService(stores, medicines, newFakeCategories())
	lat, lng := 12.97, 77.59

	all, err := svc.SearchMedicines(context.Background(), "paracetamol", nil, nil, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Nil(t, medicines.lastSearch.StoreIDs)
	assert.Equal(t, int64(searchLimit), int64(medicines.lastSearch.Limit))

	// location alone does not restrict results
	_, err = svc.SearchMedicines(context.Background(), "paracetamol", &lat, &lng, false)
	require.NoError(t, err)
	assert.Nil(t, medicines.lastSearch.StoreIDs)

	nearby, err := svc.SearchMedicines(context.Background(), "paracetamol", &lat, &lng, true)
	require.NoError(t, err)
	require.Len(t, nearby, 1)
	assert.Equal(t, "Paracetamol", nearby[0].Name)
	assert.Equal(t, []primitive.ObjectID{near}, medicines.lastSearch.StoreIDs)
	assert.Equal(t, float64(DefaultNearbyRadiusKm), stores.nearbyRadius)

	_, err = svc.SearchMedicines(context.Background(), "  ", nil, nil, false)
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestSearchMedicines_NoStoresNearby(t *testing.T) {
	store := primitive.NewObjectID()
	medicines := newFakeMedicines(&models.Medicine{Name: "Paracetamol", Quantity: 3, IsActive: true, Store: &store})
	svc := NewCatalogService(newFakeStores(), medicines, newFakeCategories())
	lat, lng := 12.97, 77.59

	got, err := svc.SearchMedicines(context.Background(), "para", &lat, &lng, true)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, medicines.lastSearch.StoreIDs)
}

func TestMedicinesByCategory_Pagination(t *testing.T) {
	var fixtures []*models.Medicine
	for i := 0; i < 45; i++ {
		fixtures = append(fixtures, &models.Medicine{
			Name:     string(rune('A'+i/26)) + string(rune('a'+i%26)),
			Category: models.CategoryWellness,
			Quantity: 1,
			IsActive: true,
		})
	}
	fixtures = append(fixtures, &models.Medicine{Name: "Out of stock", Category: models.CategoryWellness, IsActive: true})
	svc := NewCatalogService(newFakeStores(), newFakeMedicines(fixtures...), newFakeCategories())

	tests := []struct {
		name        string
		page, limit int64
		want        Pagination
		wantItems   int
	}{
		{name: "defaults", page: 0, limit: 0, want: Pagination{Total: 45, Page: 1, Limit: 20, Pages: 3}, wantItems: 20},
		{name: "last page", page: 3, limit: 20, want: Pagination{Total: 45, Page: 3, Limit: 20, Pages: 3}, wantItems: 5},
		{name: "limit capped", page: 1, limit: 500, want: Pagination{Total: 45, Page: 1, Limit: 100, Pages: 1}, wantItems: 45},
		{name: "past the end", page: 9, limit: 20, want: Pagination{Total: 45, Page: 9, Limit: 20, Pages: 3}, wantItems: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, p, err := svc.MedicinesByCategory(context.Background(), models.CategoryWellness, tt.page, tt.limit)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p)
			assert.Len(t, items, tt.wantItems)
		})
	}
}

func TestStoreCRUD(t *testing.T) {
	svc, _, _, _ := newTestCatalog()

	_, err := svc.CreateStore(context.Background(), StoreInput{Name: ptr("ABCD")})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Missing required fields", verr.Message)

	store, err := svc.CreateStore(context.Background(), StoreInput{
		Name:          ptr("ABCD Medical Store"),
		Address:       ptr("123 Main St, Central City"),
		Latitude:      ptr(12.9716),
		Longitude:     ptr(77.5946),
		ContactNumber: ptr("9876543210"),
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{77.5946, 12.9716}, store.Location.Coordinates)
	assert.Equal(t, float64(models.DefaultServiceRadiusKm), store.ServiceRadius)
	assert.Equal(t, models.DefaultOpeningHours, store.OpeningHours)
	assert.True(t, store.IsActive)

	updated, err := svc.UpdateStore(context.Background(), store.ID.Hex(), StoreInput{ServiceRadius: ptr(100.0)})
	require.NoError(t, err)
	assert.Equal(t, 100.0, updated.ServiceRadius)
	assert.Equal(t, "ABCD Medical Store", updated.Name)

	_, err = svc.UpdateStore(context.Background(), store.ID.Hex(), StoreInput{ServiceRadius: ptr(101.0)})
	assert.ErrorAs(t, err, &verr)

	list, err := svc.ListStores(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.DeleteStore(context.Background(), store.ID.Hex()))
	_, err = svc.GetStore(context.Background(), store.ID.Hex())
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestCategoryCRUD(t *testing.T) {
	svc, _, _, _ := newTestCatalog()

	pharmacy, err := svc.CreateCategory(context.Background(), CategoryInput{Name: ptr(models.CategoryPharmacy), DisplayOrder: ptr(1)})
	require.NoError(t, err)
	_, err = svc.CreateCategory(context.Background(), CategoryInput{Name: ptr(models.CategoryLabTests), DisplayOrder: ptr(0)})
	require.NoError(t, err)

	_, err = svc.CreateCategory(context.Background(), CategoryInput{Name: ptr(models.CategoryPharmacy)})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
	_, err = svc.CreateCategory(context.Background(), CategoryInput{Name: ptr("Groceries")})
	assert.ErrorIs(t, err, ErrInvalidCategory)

	list, err := svc.ListCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, models.CategoryLabTests, list[0].Name)

	_, err = svc.UpdateCategory(context.Background(), pharmacy.ID.Hex(), CategoryInput{IsActive: ptr(false)})
	require.NoError(t, err)
	_, err = svc.CategoryByName(context.Background(), models.CategoryPharmacy)
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)

	require.NoError(t, svc.DeleteCategory(context.Background(), pharmacy.ID.Hex()))
	assert.ErrorAs(t, svc.DeleteCategory(context.Background(), pharmacy.ID.Hex()), &nf)
}

func TestNearbyStores_RadiusBounds(t *testing.T) {
	svc, stores, _, _ := newTestCatalog()
	lat, lng := 12.97, 77.59

	for _, r := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := svc.NearbyStores(context.Background(), nil, &lat, &lng, r)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "Invalid radius", verr.Message)
	}

	_, err := svc.NearbyStores(context.Background(), nil, &lat, &lng, math.MaxFloat64)
	require.NoError(t, err)
	assert.Equal(t, float64(maxNearbyRadiusKm), stores.nearbyRadius)
}

func TestMedicinesByCategory_PageIsCapped(t *testing.T) {
	svc, _, _, _ := newTestCatalog()

	items, p, err := svc.MedicinesByCategory(context.Background(), models.CategoryPharmacy, math.MaxInt64, 100)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, int64(maxPage), p.Page)
	assert.Equal(t, int64(100), p.Limit)
}
