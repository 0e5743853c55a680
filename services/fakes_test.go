package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"medstore/models"
	"medstore/repository"
)

type fakeUsers struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: map[primitive.ObjectID]*models.User{}}
}

func (f *fakeUsers) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) FindOrCreateByMobile(_ context.Context, mobile string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.MobileNumber == mobile {
			cp := *u
			return &cp, nil
		}
	}
	u := &models.User{ID: primitive.NewObjectID(), MobileNumber: mobile, Location: models.NewPoint(0, 0)}
	f.users[u.ID] = u
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) SetRefreshToken(_ context.Context, id primitive.ObjectID, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.RefreshToken = token
	return nil
}

func (f *fakeUsers) SetLocation(_ context.Context, id primitive.ObjectID, loc models.GeoPoint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Location = loc
	return nil
}

type fakeOTPs struct {
	codes   []*models.OTP
	saveErr error
}

func (f *fakeOTPs) Save(_ context.Context, otp *models.OTP) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	cp := *otp
	f.codes = append(f.codes, &cp)
	return nil
}

func (f *fakeOTPs) Consume(_ context.Context, mobile, code string, at time.Time) error {
	for i := len(f.codes) - 1; i >= 0; i-- {
		c := f.codes[i]
		if c.MobileNumber == mobile && c.Code == code && !c.Verified && c.ExpiresAt.After(at) {
			c.Verified = true
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeOTPs) last() *models.OTP {
	if len(f.codes) == 0 {
		return nil
	}
	return f.codes[len(f.codes)-1]
}

type stubSMS struct {
	sent bool
	err  error
	to   []string
}

func (s *stubSMS) SendCode(_ context.Context, phone, _ string) (bool, error) {
	s.to = append(s.to, phone)
	return s.sent, s.err
}

type stubIdentity struct {
	phone string
	err   error
}

func (s *stubIdentity) VerifyIdentityToken(_ context.Context, _ string) (string, error) {
	return s.phone, s.err
}

type fakeMedicines struct {
	mu           sync.Mutex
	items        map[primitive.ObjectID]*models.Medicine
	lastSearch   repository.MedicineSearch
	decrementErr error
	lastFields   bson.M
	// beforeUpdate runs ahead of the $set, like a request racing the update
	beforeUpdate func()
}

func newFakeMedicines(ms ...*models.Medicine) *fakeMedicines {
	f := &fakeMedicines{items: map[primitive.ObjectID]*models.Medicine{}}
	for _, m := range ms {
		if m.ID.IsZero() {
			m.ID = primitive.NewObjectID()
		}
		f.items[m.ID] = m
	}
	return f
}

func (f *fakeMedicines) Create(_ context.Context, m *models.Medicine) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m.ID = primitive.NewObjectID()
	cp := *m
	f.items[m.ID] = &cp
	return nil
}

func (f *fakeMedicines) FindByID(_ context.Context, id primitive.ObjectID) (*models.Medicine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (f *fakeMedicines) Search(_ context.Context, q repository.MedicineSearch) ([]models.Medicine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastSearch = q
	out := []models.Medicine{}
	for _, m := range f.items {
		if !m.IsActive || m.Quantity <= 0 || !strings.Contains(strings.ToLower(m.Name), strings.ToLower(q.Name)) {
			continue
		}
		if q.StoreIDs != nil && (m.Store == nil || !containsID(q.StoreIDs, *m.Store)) {
			continue
		}
		out = append(out, *m)
	}
	return out, nil
}

func (f *fakeMedicines) ListByCategory(_ context.Context, category string, page, limit int64) ([]models.Medicine, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []models.Medicine
	for _, m := range f.items {
		if m.Category == category && m.IsActive && m.Quantity > 0 {
			all = append(all, *m)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	start := (page - 1) * limit
	if start > int64(len(all)) {
		start = int64(len(all))
	}
	end := start + limit
	if end > int64(len(all)) {
		end = int64(len(all))
	}
	return all[start:end], int64(len(all)), nil
}

func (f *fakeMedicines) ListByStore(_ context.Context, storeID primitive.ObjectID) ([]models.Medicine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Medicine{}
	for _, m := range f.items {
		if m.Store != nil && *m.Store == storeID && m.IsActive {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeMedicines) Update(_ context.Context, id primitive.ObjectID, fields bson.M) (*models.Medicine, error) {
	if f.beforeUpdate != nil {
		f.beforeUpdate()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	f.lastFields = fields
	if err := setDocFields(m, fields); err != nil {
		return nil, err
	}
	cp := *m
	return &cp, nil
}

func (f *fakeMedicines) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeMedicines) DecrementStock(_ context.Context, id primitive.ObjectID, qty int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.decrementErr != nil {
		return f.decrementErr
	}
	m, ok := f.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	m.Quantity -= qty
	return nil
}

func (f *fakeMedicines) quantity(id primitive.ObjectID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.items[id].Quantity
}

type fakeStores struct {
	stores map[primitive.ObjectID]*models.Store
	nearby []models.NearbyStore

	nearbyLng, nearbyLat, nearbyRadius float64
}

func newFakeStores(ss ...*models.Store) *fakeStores {
	f := &fakeStores{stores: map[primitive.ObjectID]*models.Store{}}
	for _, s := range ss {
		if s.ID.IsZero() {
			s.ID = primitive.NewObjectID()
		}
		f.stores[s.ID] = s
	}
	return f
}

func (f *fakeStores) Create(_ context.Context, s *models.Store) error {
	s.ID = primitive.NewObjectID()
	cp := *s
	f.stores[s.ID] = &cp
	return nil
}

func (f *fakeStores) FindByID(_ context.Context, id primitive.ObjectID) (*models.Store, error) {
	s, ok := f.stores[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeStores) ListActive(_ context.Context) ([]models.Store, error) {
	out := []models.Store{}
	for _, s := range f.stores {
		if s.IsActive {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeStores) Nearby(_ context.Context, lng, lat, radiusKm float64) ([]models.NearbyStore, error) {
	f.nearbyLng, f.nearbyLat, f.nearbyRadius = lng, lat, radiusKm
	return f.nearby, nil
}

func (f *fakeStores) Update(_ context.Context, id primitive.ObjectID, fields bson.M) (*models.Store, error) {
	s, ok := f.stores[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if err := setDocFields(s, fields); err != nil {
		return nil, err
	}
	cp := *s
	return &cp, nil
}

func (f *fakeStores) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := f.stores[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.stores, id)
	return nil
}

type fakeOrders struct {
	orders    []*models.Order
	createErr error
}

func (f *fakeOrders) Create(_ context.Context, o *models.Order) error {
	if f.createErr != nil {
		return f.createErr
	}
	o.ID = primitive.NewObjectID()
	o.CreatedAt = time.Now()
	cp := *o
	f.orders = append(f.orders, &cp)
	return nil
}

func (f *fakeOrders) FindForUser(_ context.Context, id, userID primitive.ObjectID) (*models.Order, error) {
	for _, o := range f.orders {
		if o.ID == id && o.User == userID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeOrders) ListByUser(_ context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	out := []models.Order{}
	for i := len(f.orders) - 1; i >= 0; i-- {
		if f.orders[i].User == userID {
			out = append(out, *f.orders[i])
		}
	}
	return out, nil
}

func (f *fakeOrders) ListByStore(_ context.Context, storeID primitive.ObjectID, status models.OrderStatus) ([]models.Order, error) {
	out := []models.Order{}
	for i := len(f.orders) - 1; i >= 0; i-- {
		o := f.orders[i]
		if o.Store == storeID && (status == "" || o.Status == status) {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeOrders) UpdateStatus(_ context.Context, id primitive.ObjectID, status models.OrderStatus) (*models.Order, error) {
	for _, o := range f.orders {
		if o.ID == id {
			o.Status = status
			cp := *o
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

type fakeAddresses struct {
	items        map[primitive.ObjectID]*models.Address
	seq          int
	lastFields   bson.M
	beforeUpdate func()
}

func newFakeAddresses() *fakeAddresses {
	return &fakeAddresses{items: map[primitive.ObjectID]*models.Address{}}
}

func (f *fakeAddresses) ListByUser(_ context.Context, userID primitive.ObjectID) ([]models.Address, error) {
	out := []models.Address{}
	for _, a := range f.items {
		if a.User == userID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsDefault != out[j].IsDefault {
			return out[i].IsDefault
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (f *fakeAddresses) CountByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	list, _ := f.ListByUser(ctx, userID)
	return int64(len(list)), nil
}

func (f *fakeAddresses) FindForUser(_ context.Context, id, userID primitive.ObjectID) (*models.Address, error) {
	a, ok := f.items[id]
	if !ok || a.User != userID {
		return nil, repository.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAddresses) FindAnyForUser(ctx context.Context, userID primitive.ObjectID) (*models.Address, error) {
	list, _ := f.ListByUser(ctx, userID)
	if len(list) == 0 {
		return nil, repository.ErrNotFound
	}
	return &list[0], nil
}

func (f *fakeAddresses) Create(_ context.Context, a *models.Address) error {
	f.seq++
	a.ID = primitive.NewObjectID()
	a.CreatedAt = time.Date(2024, 1, 1, 0, 0, f.seq, 0, time.UTC)
	cp := *a
	f.items[a.ID] = &cp
	return nil
}

func (f *fakeAddresses) Update(_ context.Context, id, userID primitive.ObjectID, fields bson.M) (*models.Address, error) {
	if f.beforeUpdate != nil {
		f.beforeUpdate()
	}
	a, ok := f.items[id]
	if !ok || a.User != userID {
		return nil, repository.ErrNotFound
	}
	f.lastFields = fields
	if err := setDocFields(a, fields); err != nil {
		return nil, err
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAddresses) Delete(_ context.Context, id, userID primitive.ObjectID) error {
	a, ok := f.items[id]
	if !ok || a.User != userID {
		return repository.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeAddresses) SetDefault(_ context.Context, id, userID primitive.ObjectID) error {
	a, ok := f.items[id]
	if !ok || a.User != userID {
		return repository.ErrNotFound
	}
	a.IsDefault = true
	return nil
}

func (f *fakeAddresses) ClearDefaults(_ context.Context, userID, keep primitive.ObjectID) error {
	for _, a := range f.items {
		if a.User == userID && a.ID != keep {
			a.IsDefault = false
		}
	}
	return nil
}

func (f *fakeAddresses) defaults(userID primitive.ObjectID) []primitive.ObjectID {
	var out []primitive.ObjectID
	for _, a := range f.items {
		if a.User == userID && a.IsDefault {
			out = append(out, a.ID)
		}
	}
	return out
}

type fakeAdmins struct {
	admins map[string]*models.Admin
	// staleCount makes Count report no admins, as a request that counted
	// before a concurrent bootstrap would see it
	staleCount bool
}

func newFakeAdmins() *fakeAdmins {
	return &fakeAdmins{admins: map[string]*models.Admin{}}
}

func (f *fakeAdmins) Create(_ context.Context, a *models.Admin) error {
	if _, ok := f.admins[a.Email]; ok {
		return repository.ErrDuplicate
	}
	for _, existing := range f.admins {
		if a.Bootstrap && existing.Bootstrap {
			return repository.ErrDuplicate
		}
	}
	a.ID = primitive.NewObjectID()
	cp := *a
	f.admins[a.Email] = &cp
	return nil
}

func (f *fakeAdmins) FindByEmail(_ context.Context, email string) (*models.Admin, error) {
	a, ok := f.admins[strings.ToLower(email)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAdmins) FindByID(_ context.Context, id primitive.ObjectID) (*models.Admin, error) {
	for _, a := range f.admins {
		if a.ID == id {
			cp := *a
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeAdmins) Count(_ context.Context) (int64, error) {
	if f.staleCount {
		return 0, nil
	}
	return int64(len(f.admins)), nil
}

type fakeCategories struct {
	items map[primitive.ObjectID]*models.Category
}

func newFakeCategories() *fakeCategories {
	return &fakeCategories{items: map[primitive.ObjectID]*models.Category{}}
}

func (f *fakeCategories) ListActive(_ context.Context) ([]models.Category, error) {
	out := []models.Category{}
	for _, c := range f.items {
		if c.IsActive {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DisplayOrder < out[j].DisplayOrder })
	return out, nil
}

func (f *fakeCategories) FindByName(_ context.Context, name string) (*models.Category, error) {
	for _, c := range f.items {
		if c.Name == name && c.IsActive {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeCategories) Create(_ context.Context, c *models.Category) error {
	for _, existing := range f.items {
		if existing.Name == c.Name {
			return repository.ErrDuplicate
		}
	}
	c.ID = primitive.NewObjectID()
	cp := *c
	f.items[c.ID] = &cp
	return nil
}

func (f *fakeCategories) Update(_ context.Context, id primitive.ObjectID, fields bson.M) (*models.Category, error) {
	c, ok := f.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if name, ok := fields["name"]; ok {
		for _, other := range f.items {
			if other.ID != id && other.Name == name {
				return nil, repository.ErrDuplicate
			}
		}
	}
	if err := setDocFields(c, fields); err != nil {
		return nil, err
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCategories) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := f.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

type stubNotifier struct {
	calls int
	err   error
}

func (s *stubNotifier) NotifyOrderPlaced(_ context.Context, _ *models.Order) error {
	s.calls++
	return s.err
}

// setDocFields applies a $set to doc the way MongoDB does: named fields are
// overwritten and everything else keeps its stored value.
func setDocFields[T any](doc *T, fields bson.M) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return err
	}
	var stored bson.M
	if err := bson.Unmarshal(raw, &stored); err != nil {
		return err
	}
	for k, v := range fields {
		stored[k] = v
	}
	if raw, err = bson.Marshal(stored); err != nil {
		return err
	}
	var out T
	if err := bson.Unmarshal(raw, &out); err != nil {
		return err
	}
	*doc = out
	return nil
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func ptr[T any](v T) *T {
	return &v
}
