// Package config reads the medstore API settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Phone verification strategies accepted by PHONE_AUTH_MODE
const (
	PhoneAuthOTP      = "otp"
	PhoneAuthIdentity = "identity"
	PhoneAuthBoth     = "both"
)

// Config holds every setting of the API server and the seed command.
type Config struct {
	Port   string `env:"PORT" envDefault:"5000"`
	AppEnv string `env:"APP_ENV" envDefault:"development"`

	MongoURI      string `env:"MONGODB_URI" envDefault:"mongodb://localhost:27017/medical-store"`
	MongoDatabase string `env:"MONGODB_DATABASE" envDefault:"medical-store"`

	JWTSecret           string        `env:"JWT_SECRET" envDefault:"default-secret"`
	JWTRefreshSecret    string        `env:"JWT_REFRESH_SECRET" envDefault:"default-refresh-secret"`
	JWTExpiresIn        time.Duration `env:"JWT_EXPIRES_IN" envDefault:"168h"`
	JWTRefreshExpiresIn time.Duration `env:"JWT_REFRESH_EXPIRES_IN" envDefault:"720h"`
	PhoneAuthMode       string        `env:"PHONE_AUTH_MODE" envDefault:"both"`
	OTPTTL              time.Duration `env:"OTP_TTL" envDefault:"10m"`
	DefaultStoreID      string        `env:"DEFAULT_STORE_ID"`
	RequestTimeout      time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`
	MaxUploadSizeBytes  int64         `env:"MAX_UPLOAD_SIZE" envDefault:"5242880"`
	UploadDir           string        `env:"UPLOAD_DIR" envDefault:"uploads"`
	CORSAllowedOrigins  []string      `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	FirebaseCredentialsFile string `env:"FIREBASE_CREDENTIALS_FILE"`
	FirebaseProjectID       string `env:"FIREBASE_PROJECT_ID"`

	TwilioAccountSID string `env:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken  string `env:"TWILIO_AUTH_TOKEN"`
	TwilioFromNumber string `env:"TWILIO_FROM_NUMBER"`
	SMSCountryCode   string `env:"SMS_COUNTRY_CODE" envDefault:"+91"`

	CloudinaryCloudName string `env:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `env:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `env:"CLOUDINARY_API_SECRET"`

	PostmarkAPIToken string `env:"POSTMARK_API_TOKEN"`
	EmailSender      string `env:"EMAIL_SENDER"`
	OrderNotifyEmail string `env:"ORDER_NOTIFY_EMAIL"`
}

// Load reads an optional .env file and then parses the environment.
// Variables already present in the environment win over the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return Parse()
}

// Parse builds a Config from the process environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.PhoneAuthMode {
	case PhoneAuthOTP, PhoneAuthIdentity, PhoneAuthBoth:
	default:
		return fmt.Errorf("invalid PHONE_AUTH_MODE %q", c.PhoneAuthMode)
	}
	if c.JWTExpiresIn <= 0 || c.JWTRefreshExpiresIn <= 0 {
		return errors.New("token lifetimes must be positive")
	}
	return nil
}

// IsDevelopment reports whether the server runs with development defaults
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// OTPEnabled reports whether the SMS code flow is mounted
func (c *Config) OTPEnabled() bool {
	return c.PhoneAuthMode == PhoneAuthOTP || c.PhoneAuthMode == PhoneAuthBoth
}

// IdentityEnabled reports whether the identity-provider token flow is mounted
func (c *Config) IdentityEnabled() bool {
	return c.PhoneAuthMode == PhoneAuthIdentity || c.PhoneAuthMode == PhoneAuthBoth
}
