package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"medstore/middleware"
	"medstore/models"
	"medstore/services"
)

type stubAuth struct {
	ttl      time.Duration
	session  *services.Session
	access   string
	location models.GeoPoint
	err      error

	gotMobile string
	gotHint   string
}

func (s *stubAuth) SendOTP(_ context.Context, mobile string) (time.Duration, error) {
	s.gotMobile = mobile
	return s.ttl, s.err
}

func (s *stubAuth) VerifyOTP(_ context.Context, mobile, _ string) (*services.Session, error) {
	s.gotMobile = mobile
	return s.session, s.err
}

func (s *stubAuth) VerifyIdentityToken(_ context.Context, _, hint string) (*services.Session, error) {
	s.gotHint = hint
	return s.session, s.err
}

func (s *stubAuth) Refresh(_ context.Context, _ string) (string, error) {
	return s.access, s.err
}

func (s *stubAuth) UpdateLocation(_ context.Context, _ primitive.ObjectID, _, _ float64) (models.GeoPoint, error) {
	return s.location, s.err
}

type stubOrders struct {
	order  *models.Order
	orders []models.Order
	err    error

	gotInput  services.PlaceOrderInput
	gotStatus models.OrderStatus
	called    bool
}

func (s *stubOrders) PlaceOrder(_ context.Context, _ primitive.ObjectID, in services.PlaceOrderInput) (*models.Order, error) {
	s.called = true
	s.gotInput = in
	return s.order, s.err
}

func (s *stubOrders) History(_ context.Context, _ primitive.ObjectID) ([]models.Order, error) {
	return s.orders, s.err
}

func (s *stubOrders) GetForUser(_ context.Context, _ primitive.ObjectID, _ string) (*models.Order, error) {
	return s.order, s.err
}

func (s *stubOrders) UpdateStatus(_ context.Context, _ string, status models.OrderStatus) (*models.Order, error) {
	s.gotStatus = status
	return s.order, s.err
}

func (s *stubOrders) ListByStore(_ context.Context, _ string, status models.OrderStatus) ([]models.Order, error) {
	s.gotStatus = status
	return s.orders, s.err
}

type stubMedicines struct {
	medicine   *models.Medicine
	medicines  []models.Medicine
	pagination services.Pagination
	err        error

	gotLat, gotLng *float64
	gotNearbyOnly  bool
	gotPage        int64
	gotLimit       int64
}

func (s *stubMedicines) SearchMedicines(_ context.Context, _ string, lat, lng *float64, nearbyOnly bool) ([]models.Medicine, error) {
	s.gotLat, s.gotLng, s.gotNearbyOnly = lat, lng, nearbyOnly
	return s.medicines, s.err
}

func (s *stubMedicines) MedicinesByCategory(_ context.Context, _ string, page, limit int64) ([]models.Medicine, services.Pagination, error) {
	s.gotPage, s.gotLimit = page, limit
	return s.medicines, s.pagination, s.err
}

func (s *stubMedicines) MedicinesByStore(_ context.Context, _ string) ([]models.Medicine, error) {
	return s.medicines, s.err
}

func (s *stubMedicines) GetMedicine(_ context.Context, _ string) (*models.Medicine, error) {
	return s.medicine, s.err
}

func (s *stubMedicines) CreateMedicine(_ context.Context, _ services.MedicineInput) (*models.Medicine, error) {
	return s.medicine, s.err
}

func (s *stubMedicines) UpdateMedicine(_ context.Context, _ string, _ services.MedicineInput) (*models.Medicine, error) {
	return s.medicine, s.err
}

func (s *stubMedicines) DeleteMedicine(_ context.Context, _ string) error {
	return s.err
}

type stubUploader struct {
	url     string
	err     error
	gotName string
	gotSize int
}

func (s *stubUploader) UploadImage(_ context.Context, name string, data []byte) (string, error) {
	s.gotName, s.gotSize = name, len(data)
	return s.url, s.err
}

type stubStores struct {
	stores []models.NearbyStore
	err    error

	gotUser        *models.User
	gotLat, gotLng *float64
	gotRadius      float64
}

func (s *stubStores) ListStores(_ context.Context) ([]models.Store, error) {
	out := make([]models.Store, 0, len(s.stores))
	for _, st := range s.stores {
		out = append(out, st.Store)
	}
	return out, s.err
}

func (s *stubStores) NearbyStores(_ context.Context, user *models.User, lat, lng *float64, radius float64) ([]models.NearbyStore, error) {
	s.gotUser, s.gotLat, s.gotLng, s.gotRadius = user, lat, lng, radius
	return s.stores, s.err
}

func (s *stubStores) GetStore(_ context.Context, _ string) (*models.Store, error) {
	if len(s.stores) == 0 {
		return nil, s.err
	}
	return &s.stores[0].Store, s.err
}

func (s *stubStores) CreateStore(_ context.Context, _ services.StoreInput) (*models.Store, error) {
	return s.GetStore(context.Background(), "")
}

func (s *stubStores) UpdateStore(_ context.Context, _ string, _ services.StoreInput) (*models.Store, error) {
	return s.GetStore(context.Background(), "")
}

func (s *stubStores) DeleteStore(_ context.Context, _ string) error {
	return s.err
}

type stubAdminService struct {
	session *services.AdminSession
	profile *services.AdminProfile
	err     error

	gotCaller *models.Admin
}

func (s *stubAdminService) Login(_ context.Context, _, _ string) (*services.AdminSession, error) {
	return s.session, s.err
}

func (s *stubAdminService) Create(_ context.Context, caller *models.Admin, _, _, _ string) (*services.AdminProfile, error) {
	s.gotCaller = caller
	return s.profile, s.err
}

type stubAddresses struct {
	address *models.Address
	err     error
}

func (s *stubAddresses) List(_ context.Context, _ primitive.ObjectID) ([]models.Address, error) {
	if s.address == nil {
		return []models.Address{}, s.err
	}
	return []models.Address{*s.address}, s.err
}

func (s *stubAddresses) Create(_ context.Context, _ primitive.ObjectID, _ services.AddressInput) (*models.Address, error) {
	return s.address, s.err
}

func (s *stubAddresses) Update(_ context.Context, _ primitive.ObjectID, _ string, _ services.AddressInput) (*models.Address, error) {
	return s.address, s.err
}

func (s *stubAddresses) Delete(_ context.Context, _ primitive.ObjectID, _ string) error {
	return s.err
}

func (s *stubAddresses) SetDefault(_ context.Context, _ primitive.ObjectID, _ string) (*models.Address, error) {
	return s.address, s.err
}

// envelope mirrors Response with raw data for assertions
type envelope struct {
	Success    bool                 `json:"success"`
	Message    string               `json:"message"`
	Data       json.RawMessage      `json:"data"`
	Count      *int                 `json:"count"`
	Pagination *services.Pagination `json:"pagination"`
	ExpiresIn  *int                 `json:"expiresIn"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	if s, ok := v.(string); ok {
		return bytes.NewBufferString(s)
	}
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

func asUser(r *http.Request, user *models.User) *http.Request {
	return r.WithContext(middleware.WithUser(r.Context(), user))
}

func withVars(r *http.Request, vars map[string]string) *http.Request {
	return mux.SetURLVars(r, vars)
}

func testUser() *models.User {
	return &models.User{ID: primitive.NewObjectID(), MobileNumber: "9876543210", Location: models.NewPoint(0, 0)}
}
