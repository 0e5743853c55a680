// Package main starts the medstore HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"medstore/config"
	"medstore/controllers"
	"medstore/middleware"
	"medstore/providers"
	"medstore/repository"
	"medstore/routes"
	"medstore/services"
	"medstore/utils"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("application terminated with error", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsDevelopment() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	client, err := repository.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Error("mongo disconnect", zap.Error(err))
		}
	}()
	logger.Info("connected to MongoDB", zap.String("database", cfg.MongoDatabase))

	db := client.Database(cfg.MongoDatabase)
	if err := repository.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	users := repository.NewUserRepository(db)
	admins := repository.NewAdminRepository(db)
	stores := repository.NewStoreRepository(db)
	medicines := repository.NewMedicineRepository(db)
	categories := repository.NewCategoryRepository(db)
	orders := repository.NewOrderRepository(db)
	addresses := repository.NewAddressRepository(db)

	tokens := utils.NewTokenIssuer(cfg.JWTSecret, cfg.JWTRefreshSecret, cfg.JWTExpiresIn, cfg.JWTRefreshExpiresIn)

	var (
		otps     services.OTPRepository
		sms      providers.SMSSender
		identity providers.IdentityVerifier
	)
	if cfg.OTPEnabled() {
		otps, err = otpStore(ctx, cfg, db, logger)
		if err != nil {
			return err
		}
		sms = smsSender(cfg, logger)
	}
	if cfg.IdentityEnabled() {
		identity, err = identityVerifier(ctx, cfg, logger)
		if err != nil {
			return err
		}
	}

	uploader, err := imageUploader(cfg)
	if err != nil {
		return err
	}

	var notifier services.OrderNotifier
	if cfg.PostmarkAPIToken != "" && cfg.OrderNotifyEmail != "" {
		notifier = utils.NewEmailService(cfg.PostmarkAPIToken, cfg.EmailSender, cfg.OrderNotifyEmail)
	}

	authService := services.NewAuthService(users, otps, sms, identity, tokens, cfg.OTPTTL)
	adminService := services.NewAdminService(admins, tokens)
	catalog := services.NewCatalogService(stores, medicines, categories)
	orderService := services.NewOrderService(orders, medicines, stores, addresses, notifier, logger, cfg.DefaultStoreID)
	addressService := services.NewAddressService(addresses)

	c := routes.Controllers{
		Auth:     controllers.NewAuthController(authService, logger, cfg.RequestTimeout),
		Admin:    controllers.NewAdminController(adminService, logger, cfg.RequestTimeout),
		Store:    controllers.NewStoreController(catalog, logger, cfg.RequestTimeout),
		Medicine: controllers.NewMedicineController(catalog, uploader, cfg.MaxUploadSizeBytes, logger, cfg.RequestTimeout),
		Category: controllers.NewCategoryController(catalog, logger, cfg.RequestTimeout),
		Order:    controllers.NewOrderController(orderService, logger, cfg.RequestTimeout),
		Address:  controllers.NewAddressController(addressService, logger, cfg.RequestTimeout),
	}
	auth := middleware.NewAuthMiddleware(authService, adminService, logger)
	opts := routes.Options{
		OTPEnabled:      cfg.OTPEnabled(),
		IdentityEnabled: cfg.IdentityEnabled(),
		UploadDir:       cfg.UploadDir,
	}
	if _, ok := uploader.(*providers.CloudinaryUploader); ok {
		opts.UploadDir = ""
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           routes.NewHandler(c, auth, opts, cfg.CORSAllowedOrigins, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server started",
			zap.String("addr", server.Addr),
			zap.String("env", cfg.AppEnv),
			zap.String("phone_auth_mode", cfg.PhoneAuthMode),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		logger.Info("server stopped")
		return nil
	})
	return g.Wait()
}

// otpStore keeps codes in Redis when REDIS_ADDR is set and in MongoDB otherwise.
func otpStore(ctx context.Context, cfg *config.Config, db *mongo.Database, logger *zap.Logger) (services.OTPRepository, error) {
	if cfg.RedisAddr == "" {
		return repository.NewOTPRepository(db), nil
	}
	rdb, err := repository.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, err
	}
	logger.Info("otp codes stored in redis", zap.String("addr", cfg.RedisAddr))
	return repository.NewRedisOTPStore(rdb), nil
}

func smsSender(cfg *config.Config, logger *zap.Logger) providers.SMSSender {
	if cfg.TwilioAccountSID == "" || cfg.TwilioAuthToken == "" || cfg.TwilioFromNumber == "" {
		logger.Warn("twilio is not configured, OTP codes will only be logged")
		return providers.NewLogSender(logger)
	}
	return providers.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber, cfg.SMSCountryCode)
}

func identityVerifier(ctx context.Context, cfg *config.Config, logger *zap.Logger) (providers.IdentityVerifier, error) {
	if cfg.FirebaseProjectID == "" && cfg.FirebaseCredentialsFile == "" {
		logger.Warn("firebase is not configured, identity token login is disabled")
		return nil, nil
	}
	v, err := providers.NewFirebaseVerifier(ctx, cfg.FirebaseProjectID, cfg.FirebaseCredentialsFile)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func imageUploader(cfg *config.Config) (providers.ImageUploader, error) {
	if cfg.CloudinaryCloudName == "" {
		return providers.NewDiskUploader(cfg.UploadDir, "/uploads"), nil
	}
	u, err := providers.NewCloudinaryUploader(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		return nil, err
	}
	return u, nil
}
