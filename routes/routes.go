// Package routes mounts every API route group on one router.
package routes

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"medstore/controllers"
	"medstore/middleware"
)

// Controllers bundles the handlers mounted by RegisterRoutes
type Controllers struct {
	Auth     *controllers.AuthController
	Admin    *controllers.AdminController
	Store    *controllers.StoreController
	Medicine *controllers.MedicineController
	Category *controllers.CategoryController
	Order    *controllers.OrderController
	Address  *controllers.AddressController
}

// Options toggles the optional parts of the route table
type Options struct {
	OTPEnabled      bool
	IdentityEnabled bool
	UploadDir       string
}

// RegisterRoutes sets up all the routes for the application
func RegisterRoutes(router *mux.Router, c Controllers, auth *middleware.AuthMiddleware, opts Options) {
	user := func(h http.HandlerFunc) http.Handler { return auth.RequireUser(h) }
	admin := func(h http.HandlerFunc) http.Handler { return auth.RequireAdmin(h) }

	router.HandleFunc("/health", controllers.Health).Methods(http.MethodGet)
	if opts.UploadDir != "" {
		router.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", http.FileServer(http.Dir(opts.UploadDir))))
	}

	api := router.PathPrefix("/api").Subrouter()

	// Auth routes
	authRoutes := api.PathPrefix("/auth").Subrouter()
	if opts.OTPEnabled {
		authRoutes.HandleFunc("/send-otp", c.Auth.SendOTP).Methods(http.MethodPost)
		authRoutes.HandleFunc("/verify-otp", c.Auth.VerifyOTP).Methods(http.MethodPost)
	}
	if opts.IdentityEnabled {
		authRoutes.HandleFunc("/verify-firebase-token", c.Auth.VerifyIdentityToken).Methods(http.MethodPost)
	}
	authRoutes.HandleFunc("/refresh-token", c.Auth.RefreshToken).Methods(http.MethodPost)
	authRoutes.Handle("/update-location", user(c.Auth.UpdateLocation)).Methods(http.MethodPost)
	authRoutes.Handle("/profile", user(c.Auth.Profile)).Methods(http.MethodGet)

	// Store routes
	stores := api.PathPrefix("/stores").Subrouter()
	stores.HandleFunc("", c.Store.GetStores).Methods(http.MethodGet)
	stores.Handle("/nearby", user(c.Store.GetNearbyStores)).Methods(http.MethodGet)
	stores.HandleFunc("/{id}", c.Store.GetStoreByID).Methods(http.MethodGet)
	mountStoreAdmin(stores, c.Store, admin)

	// Medicine routes
	medicines := api.PathPrefix("/medicines").Subrouter()
	medicines.HandleFunc("/search", c.Medicine.SearchMedicines).Methods(http.MethodGet)
	medicines.HandleFunc("/category/{category}", c.Medicine.GetMedicinesByCategory).Methods(http.MethodGet)
	medicines.HandleFunc("/store/{storeId}", c.Medicine.GetMedicinesByStore).Methods(http.MethodGet)
	medicines.Handle("/upload-image", admin(c.Medicine.UploadImage)).Methods(http.MethodPost)
	medicines.HandleFunc("/{id}", c.Medicine.GetMedicineByID).Methods(http.MethodGet)
	mountMedicineAdmin(medicines, c.Medicine, admin)

	// Order routes
	orders := api.PathPrefix("/orders").Subrouter()
	orders.Handle("", user(c.Order.CreateOrder)).Methods(http.MethodPost)
	orders.Handle("/history", user(c.Order.GetOrderHistory)).Methods(http.MethodGet)
	mountOrderAdmin(orders, c.Order, admin)
	orders.Handle("/{id}", user(c.Order.GetOrderByID)).Methods(http.MethodGet)

	// Admin routes; the store, medicine and order management endpoints are
	// mounted a second time under /api/admin.
	adminRoutes := api.PathPrefix("/admin").Subrouter()
	adminRoutes.HandleFunc("/login", c.Admin.Login).Methods(http.MethodPost)
	adminRoutes.Handle("/create", auth.OptionalAdmin(http.HandlerFunc(c.Admin.Create))).Methods(http.MethodPost)
	mountStoreAdmin(adminRoutes.PathPrefix("/stores").Subrouter(), c.Store, admin)
	mountMedicineAdmin(adminRoutes.PathPrefix("/medicines").Subrouter(), c.Medicine, admin)
	mountOrderAdmin(adminRoutes.PathPrefix("/orders").Subrouter(), c.Order, admin)

	// Address routes
	addresses := api.PathPrefix("/addresses").Subrouter()
	addresses.Handle("", user(c.Address.GetAddresses)).Methods(http.MethodGet)
	addresses.Handle("", user(c.Address.CreateAddress)).Methods(http.MethodPost)
	addresses.Handle("/{id}", user(c.Address.UpdateAddress)).Methods(http.MethodPut)
	addresses.Handle("/{id}", user(c.Address.DeleteAddress)).Methods(http.MethodDelete)
	addresses.Handle("/{id}/default", user(c.Address.SetDefaultAddress)).Methods(http.MethodPatch)

	// Category routes
	categories := api.PathPrefix("/categories").Subrouter()
	categories.HandleFunc("", c.Category.GetCategories).Methods(http.MethodGet)
	categories.HandleFunc("/{name}", c.Category.GetCategoryByName).Methods(http.MethodGet)
	categories.Handle("", admin(c.Category.CreateCategory)).Methods(http.MethodPost)
	categories.Handle("/{id}", admin(c.Category.UpdateCategory)).Methods(http.MethodPut)
	categories.Handle("/{id}", admin(c.Category.DeleteCategory)).Methods(http.MethodDelete)

	router.NotFoundHandler = http.HandlerFunc(controllers.NotFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(controllers.NotFound)
}

type wrap func(http.HandlerFunc) http.Handler

func mountStoreAdmin(r *mux.Router, c *controllers.StoreController, admin wrap) {
	r.Handle("", admin(c.CreateStore)).Methods(http.MethodPost)
	r.Handle("/{id}", admin(c.UpdateStore)).Methods(http.MethodPut)
	r.Handle("/{id}", admin(c.DeleteStore)).Methods(http.MethodDelete)
}

func mountMedicineAdmin(r *mux.Router, c *controllers.MedicineController, admin wrap) {
	r.Handle("", admin(c.CreateMedicine)).Methods(http.MethodPost)
	r.Handle("/{id}", admin(c.UpdateMedicine)).Methods(http.MethodPut)
	r.Handle("/{id}", admin(c.DeleteMedicine)).Methods(http.MethodDelete)
}

func mountOrderAdmin(r *mux.Router, c *controllers.OrderController, admin wrap) {
	r.Handle("/{id}/status", admin(c.UpdateOrderStatus)).Methods(http.MethodPut)
	r.Handle("/store/{storeId}", admin(c.GetOrdersByStore)).Methods(http.MethodGet)
}

// NewHandler builds the router and wraps it with the cross-cutting middleware
func NewHandler(c Controllers, auth *middleware.AuthMiddleware, opts Options, corsOrigins []string, logger *zap.Logger) http.Handler {
	router := mux.NewRouter()
	RegisterRoutes(router, c, auth, opts)

	cors := handlers.CORS(
		handlers.AllowedOrigins(corsOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type", middleware.RequestIDHeader}),
		handlers.ExposedHeaders([]string{middleware.RequestIDHeader}),
	)

	var h http.Handler = router
	h = middleware.Recoverer(logger)(h)
	h = middleware.RequestLogger(logger)(h)
	h = handlers.CompressHandler(h)
	return cors(h)
}
