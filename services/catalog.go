package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"medstore/models"
	"medstore/repository"
)

const (
	DefaultNearbyRadiusKm = 50
	searchLimit           = 50
	defaultPageSize       = 20
	maxPageSize           = 100
	maxPage               = 10000

	// half the Earth's circumference; nothing is farther away
	maxNearbyRadiusKm = 20038
)

// StoreRepository is the persistence contract for stores
type StoreRepository interface {
	Create(ctx context.Context, store *models.Store) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Store, error)
	ListActive(ctx context.Context) ([]models.Store, error)
	Nearby(ctx context.Context, longitude, latitude, radiusKm float64) ([]models.NearbyStore, error)
	Update(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.Store, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// MedicineRepository is the persistence contract for medicines
type MedicineRepository interface {
	Create(ctx context.Context, m *models.Medicine) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Medicine, error)
	Search(ctx context.Context, q repository.MedicineSearch) ([]models.Medicine, error)
	ListByCategory(ctx context.Context, category string, page, limit int64) ([]models.Medicine, int64, error)
	ListByStore(ctx context.Context, storeID primitive.ObjectID) ([]models.Medicine, error)
	Update(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.Medicine, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// CategoryRepository is the persistence contract for categories
type CategoryRepository interface {
	ListActive(ctx context.Context) ([]models.Category, error)
	FindByName(ctx context.Context, name string) (*models.Category, error)
	Create(ctx context.Context, c *models.Category) error
	Update(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.Category, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// StoreInput creates or partially updates a store. Nil fields are left alone.
type StoreInput struct {
	Name          *string  `json:"name" validate:"omitempty,min=1,max=200"`
	Address       *string  `json:"address" validate:"omitempty,min=1,max=500"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	ServiceRadius *float64 `json:"serviceRadius" validate:"omitempty,min=1,max=100"`
	ContactNumber *string  `json:"contactNumber" validate:"omitempty,min=1,max=20"`
	OpeningHours  *string  `json:"openingHours" validate:"omitempty,max=100"`
	IsActive      *bool    `json:"isActive"`
}

// MedicineInput creates or partially updates a medicine. Nil fields are left alone.
type MedicineInput struct {
	Name                 *string  `json:"name" validate:"omitempty,min=1,max=200"`
	Description          *string  `json:"description" validate:"omitempty,max=2000"`
	Price                *float64 `json:"price" validate:"omitempty,min=0"`
	Quantity             *int     `json:"quantity" validate:"omitempty,min=0"`
	ImageURL             *string  `json:"imageUrl" validate:"omitempty,max=1000"`
	PrescriptionRequired *bool    `json:"prescriptionRequired"`
	Store                *string  `json:"store" validate:"omitempty,len=24,hexadecimal"`
	Category             *string  `json:"category" validate:"omitempty,oneof='Pharmacy' 'Lab Tests' 'Pet Care' 'Consults' 'Wellness'"`
	Subcategory          *string  `json:"subcategory" validate:"omitempty,max=100"`
	Manufacturer         *string  `json:"manufacturer" validate:"omitempty,max=200"`
	Dosage               *string  `json:"dosage" validate:"omitempty,max=100"`
	Discount             *float64 `json:"discount" validate:"omitempty,min=0,max=100"`
	IsActive             *bool    `json:"isActive"`
}

// CategoryInput creates or partially updates a category
type CategoryInput struct {
	Name         *string `json:"name" validate:"omitempty,oneof='Pharmacy' 'Lab Tests' 'Pet Care' 'Consults' 'Wellness'"`
	Description  *string `json:"description" validate:"omitempty,max=500"`
	Icon         *string `json:"icon" validate:"omitempty,max=200"`
	DisplayOrder *int    `json:"displayOrder" validate:"omitempty,min=0"`
	IsActive     *bool   `json:"isActive"`
}

// Pagination describes one page of a listing
type Pagination struct {
	Total int64 `json:"total"`
	Page  int64 `json:"page"`
	Limit int64 `json:"limit"`
	Pages int64 `json:"pages"`
}

// CatalogService serves stores, medicines and categories
type CatalogService struct {
	stores     StoreRepository
	medicines  MedicineRepository
	categories CategoryRepository
}

func NewCatalogService(stores StoreRepository, medicines MedicineRepository, categories CategoryRepository) *CatalogService {
	return &CatalogService{
		stores:     stores,
		medicines:  medicines,
		categories: categories,
	}
}

// Stores

// ListStores returns every active store
func (s *CatalogService) ListStores(ctx context.Context) ([]models.Store, error) {
	return s.stores.ListActive(ctx)
}

// NearbyStores finds active stores around the given point, falling back to
// the user's saved location when no coordinates are passed.
func (s *CatalogService) NearbyStores(ctx context.Context, user *models.User, latitude, longitude *float64, radiusKm float64) ([]models.NearbyStore, error) {
	var lat, lng float64
	switch {
	case latitude != nil && longitude != nil:
		lat, lng = *latitude, *longitude
	case user != nil && !user.Location.IsZero():
		lat, lng = user.Location.Latitude(), user.Location.Longitude()
	default:
		return nil, &ValidationError{Message: "Location coordinates are required"}
	}
	if !models.ValidCoordinates(lat, lng) {
		return nil, ErrInvalidLocation
	}
	if math.IsNaN(radiusKm) || math.IsInf(radiusKm, 0) {
		return nil, &ValidationError{Message: "Invalid radius"}
	}
	if radiusKm <= 0 {
		radiusKm = DefaultNearbyRadiusKm
	}
	if radiusKm > maxNearbyRadiusKm {
		radiusKm = maxNearbyRadiusKm
	}
	return s.stores.Nearby(ctx, lng, lat, radiusKm)
}

// GetStore loads one store
func (s *CatalogService) GetStore(ctx context.Context, id string) (*models.Store, error) {
	oid, err := parseID("Store", id)
	if err != nil {
		return nil, err
	}
	store, err := s.stores.FindByID(ctx, oid)
	return store, notFound(err, "Store", id)
}

// CreateStore registers a store. Name, address, coordinates and contact
// number are mandatory.
func (s *CatalogService) CreateStore(ctx context.Context, in StoreInput) (*models.Store, error) {
	if isBlank(in.Name) || isBlank(in.Address) || in.Latitude == nil || in.Longitude == nil || isBlank(in.ContactNumber) {
		return nil, &ValidationError{Message: "Missing required fields"}
	}
	store := &models.Store{
		ServiceRadius: models.DefaultServiceRadiusKm,
		OpeningHours:  models.DefaultOpeningHours,
		IsActive:      true,
	}
	if _, err := applyStoreInput(store, in); err != nil {
		return nil, err
	}
	if err := s.stores.Create(ctx, store); err != nil {
		return nil, err
	}
	return store, nil
}

// UpdateStore writes only the non-nil fields of in
func (s *CatalogService) UpdateStore(ctx context.Context, id string, in StoreInput) (*models.Store, error) {
	oid, err := parseID("Store", id)
	if err != nil {
		return nil, err
	}
	fields, err := applyStoreInput(&models.Store{}, in)
	if err != nil {
		return nil, err
	}
	store, err := s.stores.Update(ctx, oid, fields)
	return store, notFound(err, "Store", id)
}

// DeleteStore removes a store
func (s *CatalogService) DeleteStore(ctx context.Context, id string) error {
	oid, err := parseID("Store", id)
	if err != nil {
		return err
	}
	return notFound(s.stores.Delete(ctx, oid), "Store", id)
}

// applyStoreInput copies the non-nil fields of in onto store and returns
// them keyed by their document names.
func applyStoreInput(store *models.Store, in StoreInput) (bson.M, error) {
	fields := bson.M{}
	if in.Name != nil {
		store.Name = strings.TrimSpace(*in.Name)
		fields["name"] = store.Name
	}
	if in.Address != nil {
		store.Address = strings.TrimSpace(*in.Address)
		fields["address"] = store.Address
	}
	// a location change needs both halves of the pair
	if in.Latitude != nil && in.Longitude != nil {
		if !models.ValidCoordinates(*in.Latitude, *in.Longitude) {
			return nil, ErrInvalidLocation
		}
		store.Location = models.NewPoint(*in.Longitude, *in.Latitude)
		fields["location"] = store.Location
	}
	if in.ServiceRadius != nil {
		if *in.ServiceRadius < 1 || *in.ServiceRadius > 100 {
			return nil, &ValidationError{Message: "Service radius must be between 1 and 100 km"}
		}
		store.ServiceRadius = *in.ServiceRadius
		fields["serviceRadius"] = store.ServiceRadius
	}
	if in.ContactNumber != nil {
		store.ContactNumber = strings.TrimSpace(*in.ContactNumber)
		fields["contactNumber"] = store.ContactNumber
	}
	if in.OpeningHours != nil && *in.OpeningHours != "" {
		store.OpeningHours = *in.OpeningHours
		fields["openingHours"] = store.OpeningHours
	}
	if in.IsActive != nil {
		store.IsActive = *in.IsActive
		fields["isActive"] = store.IsActive
	}
	return fields, nil
}

// Medicines

// SearchMedicines matches medicine names case-insensitively. With
// nearbyOnly and a location, only stores within the default radius count.
func (s *CatalogService) SearchMedicines(ctx context.Context, query string, latitude, longitude *float64, nearbyOnly bool) ([]models.Medicine, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &ValidationError{Message: "Search query is required"}
	}

	search := repository.MedicineSearch{Name: query, Limit: searchLimit}
	if nearbyOnly && latitude != nil && longitude != nil {
		if !models.ValidCoordinates(*latitude, *longitude) {
			return nil, ErrInvalidLocation
		}
		nearby, err := s.stores.Nearby(ctx, *longitude, *latitude, DefaultNearbyRadiusKm)
		if err != nil {
			return nil, fmt.Errorf("nearby stores: %w", err)
		}
		search.StoreIDs = make([]primitive.ObjectID, 0, len(nearby))
		for _, st := range nearby {
			search.StoreIDs = append(search.StoreIDs, st.ID)
		}
	}
	return s.medicines.Search(ctx, search)
}

// MedicinesByCategory returns one page of a category listing
func (s *CatalogService) MedicinesByCategory(ctx context.Context, category string, page, limit int64) ([]models.Medicine, Pagination, error) {
	if page < 1 {
		page = 1
	}
	if page > maxPage {
		page = maxPage
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	items, total, err := s.medicines.ListByCategory(ctx, category, page, limit)
	if err != nil {
		return nil, Pagination{}, err
	}
	return items, Pagination{
		Total: total,
		Page:  page,
		Limit: limit,
		Pages: int64(math.Ceil(float64(total) / float64(limit))),
	}, nil
}

// MedicinesByStore lists the active medicines of one store
func (s *CatalogService) MedicinesByStore(ctx context.Context, storeID string) ([]models.Medicine, error) {
	oid, err := parseID("Store", storeID)
	if err != nil {
		return nil, err
	}
	return s.medicines.ListByStore(ctx, oid)
}

// GetMedicine loads one medicine
func (s *CatalogService) GetMedicine(ctx context.Context, id string) (*models.Medicine, error) {
	oid, err := parseID("Medicine", id)
	if err != nil {
		return nil, err
	}
	m, err := s.medicines.FindByID(ctx, oid)
	return m, notFound(err, "Medicine", id)
}

// CreateMedicine adds a medicine. Name, description and price are mandatory.
func (s *CatalogService) CreateMedicine(ctx context.Context, in MedicineInput) (*models.Medicine, error) {
	if isBlank(in.Name) || in.Description == nil || in.Price == nil {
		return nil, &ValidationError{Message: "Missing required fields"}
	}
	m := &models.Medicine{
		Category: models.CategoryPharmacy,
		IsActive: true,
	}
	if _, err := applyMedicineInput(m, in); err != nil {
		return nil, err
	}
	if err := s.medicines.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// UpdateMedicine writes only the non-nil fields of in. Orders decrement
// quantity concurrently, so it is touched only when in.Quantity is set.
func (s *CatalogService) UpdateMedicine(ctx context.Context, id string, in MedicineInput) (*models.Medicine, error) {
	oid, err := parseID("Medicine", id)
	if err != nil {
		return nil, err
	}
	fields, err := applyMedicineInput(&models.Medicine{}, in)
	if err != nil {
		return nil, err
	}
	m, err := s.medicines.Update(ctx, oid, fields)
	return m, notFound(err, "Medicine", id)
}

// DeleteMedicine removes a medicine
func (s *CatalogService) DeleteMedicine(ctx context.Context, id string) error {
	oid, err := parseID("Medicine", id)
	if err != nil {
		return err
	}
	return notFound(s.medicines.Delete(ctx, oid), "Medicine", id)
}

func applyMedicineInput(m *models.Medicine, in MedicineInput) (bson.M, error) {
	fields := bson.M{}
	if in.Name != nil {
		m.Name = strings.TrimSpace(*in.Name)
		fields["name"] = m.Name
	}
	if in.Description != nil {
		m.Description = *in.Description
		fields["description"] = m.Description
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return nil, &ValidationError{Message: "Price cannot be negative"}
		}
		m.Price = *in.Price
		fields["price"] = m.Price
	}
	if in.Quantity != nil {
		if *in.Quantity < 0 {
			return nil, &ValidationError{Message: "Quantity cannot be negative"}
		}
		m.Quantity = *in.Quantity
		fields["quantity"] = m.Quantity
	}
	if in.ImageURL != nil {
		m.ImageURL = *in.ImageURL
		fields["imageUrl"] = m.ImageURL
	}
	if in.PrescriptionRequired != nil {
		m.PrescriptionRequired = *in.PrescriptionRequired
		fields["prescriptionRequired"] = m.PrescriptionRequired
	}
	if in.Store != nil {
		// an empty store id detaches the medicine
		m.Store = nil
		if *in.Store != "" {
			oid, err := primitive.ObjectIDFromHex(*in.Store)
			if err != nil {
				return nil, &ValidationError{Message: "Invalid store id"}
			}
			m.Store = &oid
		}
		fields["store"] = m.Store
	}
	if in.Category != nil {
		if !models.IsValidCategory(*in.Category) {
			return nil, ErrInvalidCategory
		}
		m.Category = *in.Category
		fields["category"] = m.Category
	}
	if in.Subcategory != nil {
		m.Subcategory = *in.Subcategory
		fields["subcategory"] = m.Subcategory
	}
	if in.Manufacturer != nil {
		m.Manufacturer = *in.Manufacturer
		fields["manufacturer"] = m.Manufacturer
	}
	if in.Dosage != nil {
		m.Dosage = *in.Dosage
		fields["dosage"] = m.Dosage
	}
	if in.Discount != nil {
		if *in.Discount < 0 || *in.Discount > 100 {
			return nil, &ValidationError{Message: "Discount must be between 0 and 100"}
		}
		m.Discount = *in.Discount
		fields["discount"] = m.Discount
	}
	if in.IsActive != nil {
		m.IsActive = *in.IsActive
		fields["isActive"] = m.IsActive
	}
	return fields, nil
}

// Categories

// ListCategories returns active categories by display order
func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.categories.ListActive(ctx)
}

// CategoryByName loads an active category
func (s *CatalogService) CategoryByName(ctx context.Context, name string) (*models.Category, error) {
	c, err := s.categories.FindByName(ctx, name)
	return c, notFound(err, "Category", name)
}

// CreateCategory adds one of the fixed categories
func (s *CatalogService) CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, error) {
	if isBlank(in.Name) {
		return nil, &ValidationError{Message: "Missing required fields"}
	}
	c := &models.Category{IsActive: true}
	if _, err := applyCategoryInput(c, in); err != nil {
		return nil, err
	}
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateCategory applies the non-nil fields of in
func (s *CatalogService) UpdateCategory(ctx context.Context, id string, in CategoryInput) (*models.Category, error) {
	oid, err := parseID("Category", id)
	if err != nil {
		return nil, err
	}
	fields, err := applyCategoryInput(&models.Category{}, in)
	if err != nil {
		return nil, err
	}
	c, err := s.categories.Update(ctx, oid, fields)
	return c, notFound(err, "Category", id)
}

// DeleteCategory removes a category
func (s *CatalogService) DeleteCategory(ctx context.Context, id string) error {
	oid, err := parseID("Category", id)
	if err != nil {
		return err
	}
	return notFound(s.categories.Delete(ctx, oid), "Category", id)
}

func applyCategoryInput(c *models.Category, in CategoryInput) (bson.M, error) {
	fields := bson.M{}
	if in.Name != nil {
		if !models.IsValidCategory(*in.Name) {
			return nil, ErrInvalidCategory
		}
		c.Name = *in.Name
		fields["name"] = c.Name
	}
	if in.Description != nil {
		c.Description = *in.Description
		fields["description"] = c.Description
	}
	if in.Icon != nil {
		c.Icon = *in.Icon
		fields["icon"] = c.Icon
	}
	if in.DisplayOrder != nil {
		c.DisplayOrder = *in.DisplayOrder
		fields["displayOrder"] = c.DisplayOrder
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
		fields["isActive"] = c.IsActive
	}
	return fields, nil
}

// parseID turns a malformed hex id into the same not-found error a
// well-formed but unknown id would produce.
func parseID(kind, hex string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, &NotFoundError{Kind: kind, ID: hex}
	}
	return oid, nil
}

func notFound(err error, kind, id string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return &NotFoundError{Kind: kind, ID: id}
	}
	return err
}

func isBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}
