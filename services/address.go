package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"medstore/models"
	"medstore/repository"
)

// AddressRepository is the persistence contract for addresses
type AddressRepository interface {
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Address, error)
	CountByUser(ctx context.Context, userID primitive.ObjectID) (int64, error)
	FindForUser(ctx context.Context, id, userID primitive.ObjectID) (*models.Address, error)
	FindAnyForUser(ctx context.Context, userID primitive.ObjectID) (*models.Address, error)
	Create(ctx context.Context, addr *models.Address) error
	Update(ctx context.Context, id, userID primitive.ObjectID, fields bson.M) (*models.Address, error)
	Delete(ctx context.Context, id, userID primitive.ObjectID) error
	SetDefault(ctx context.Context, id, userID primitive.ObjectID) error
	ClearDefaults(ctx context.Context, userID, keep primitive.ObjectID) error
}

// AddressInput creates or partially updates an address. Nil fields are left alone.
type AddressInput struct {
	Name         *string  `json:"name" validate:"omitempty,max=50"`
	FullName     *string  `json:"fullName" validate:"omitempty,max=100"`
	PhoneNumber  *string  `json:"phoneNumber" validate:"omitempty,max=15"`
	AddressLine1 *string  `json:"addressLine1" validate:"omitempty,max=200"`
	AddressLine2 *string  `json:"addressLine2" validate:"omitempty,max=200"`
	Landmark     *string  `json:"landmark" validate:"omitempty,max=100"`
	Pincode      *string  `json:"pincode" validate:"omitempty,len=6,number"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	IsDefault    bool     `json:"isDefault"`
}

// AddressService manages delivery addresses and keeps at most one default
// address per user.
type AddressService struct {
	addresses AddressRepository
}

func NewAddressService(addresses AddressRepository) *AddressService {
	return &AddressService{addresses: addresses}
}

// List returns the default address first, then the newest
func (s *AddressService) List(ctx context.Context, userID primitive.ObjectID) ([]models.Address, error) {
	return s.addresses.ListByUser(ctx, userID)
}

// Create saves a new address. A user's first address is always default.
func (s *AddressService) Create(ctx context.Context, userID primitive.ObjectID, in AddressInput) (*models.Address, error) {
	if isBlank(in.Name) || isBlank(in.FullName) || isBlank(in.PhoneNumber) || isBlank(in.AddressLine1) ||
		isBlank(in.Landmark) || isBlank(in.Pincode) || in.Latitude == nil || in.Longitude == nil {
		return nil, &ValidationError{Message: "All required fields must be provided"}
	}

	count, err := s.addresses.CountByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count addresses: %w", err)
	}

	addr := &models.Address{User: userID}
	if _, err := applyAddressInput(addr, in); err != nil {
		return nil, err
	}
	addr.IsDefault = count == 0 || in.IsDefault

	if err := s.addresses.Create(ctx, addr); err != nil {
		return nil, err
	}
	if addr.IsDefault {
		if err := s.addresses.ClearDefaults(ctx, userID, addr.ID); err != nil {
			return nil, err
		}
	}
	return addr, nil
}

// Update writes the non-nil fields of in to one of the user's addresses.
// The default flag is changed only through SetDefault.
func (s *AddressService) Update(ctx context.Context, userID primitive.ObjectID, id string, in AddressInput) (*models.Address, error) {
	oid, err := parseID("Address", id)
	if err != nil {
		return nil, err
	}
	fields, err := applyAddressInput(&models.Address{}, in)
	if err != nil {
		return nil, err
	}
	addr, err := s.addresses.Update(ctx, oid, userID, fields)
	return addr, notFound(err, "Address", id)
}

// Delete removes an address. When it was the default, another remaining
// address of the user is promoted.
func (s *AddressService) Delete(ctx context.Context, userID primitive.ObjectID, id string) error {
	addr, err := s.find(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.addresses.Delete(ctx, addr.ID, userID); err != nil {
		return notFound(err, "Address", id)
	}
	if !addr.IsDefault {
		return nil
	}

	next, err := s.addresses.FindAnyForUser(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("find address to promote: %w", err)
	}
	return s.makeDefault(ctx, userID, next.ID)
}

// SetDefault marks one address as the user's only default
func (s *AddressService) SetDefault(ctx context.Context, userID primitive.ObjectID, id string) (*models.Address, error) {
	addr, err := s.find(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.makeDefault(ctx, userID, addr.ID); err != nil {
		return nil, notFound(err, "Address", id)
	}
	addr.IsDefault = true
	return addr, nil
}

func (s *AddressService) makeDefault(ctx context.Context, userID, id primitive.ObjectID) error {
	if err := s.addresses.SetDefault(ctx, id, userID); err != nil {
		return err
	}
	return s.addresses.ClearDefaults(ctx, userID, id)
}

func (s *AddressService) find(ctx context.Context, userID primitive.ObjectID, id string) (*models.Address, error) {
	oid, err := parseID("Address", id)
	if err != nil {
		return nil, err
	}
	addr, err := s.addresses.FindForUser(ctx, oid, userID)
	if err != nil {
		return nil, notFound(err, "Address", id)
	}
	return addr, nil
}

func applyAddressInput(addr *models.Address, in AddressInput) (bson.M, error) {
	fields := bson.M{}
	if in.Pincode != nil && *in.Pincode != "" {
		if validate.Var(*in.Pincode, "len=6,number") != nil {
			return nil, &ValidationError{Message: "Invalid pincode format"}
		}
		addr.Pincode = *in.Pincode
		fields["pincode"] = addr.Pincode
	}
	if in.Latitude != nil && in.Longitude != nil {
		if !models.ValidCoordinates(*in.Latitude, *in.Longitude) {
			return nil, ErrInvalidLocation
		}
		addr.Location = models.NewPoint(*in.Longitude, *in.Latitude)
		fields["location"] = addr.Location
	}
	setIfPresent(fields, "name", &addr.Name, in.Name)
	setIfPresent(fields, "fullName", &addr.FullName, in.FullName)
	setIfPresent(fields, "phoneNumber", &addr.PhoneNumber, in.PhoneNumber)
	setIfPresent(fields, "addressLine1", &addr.AddressLine1, in.AddressLine1)
	setIfPresent(fields, "landmark", &addr.Landmark, in.Landmark)
	// an empty addressLine2 clears it
	if in.AddressLine2 != nil {
		addr.AddressLine2 = strings.TrimSpace(*in.AddressLine2)
		fields["addressLine2"] = addr.AddressLine2
	}
	return fields, nil
}

func setIfPresent(fields bson.M, key string, dst *string, v *string) {
	if v != nil && strings.TrimSpace(*v) != "" {
		*dst = strings.TrimSpace(*v)
		fields[key] = *dst
	}
}
