package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		check func(t *testing.T, cfg *Config)
	}{
		{
			name: "defaults",
			env:  map[string]string{},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "5000", cfg.Port)
				assert.Equal(t, "mongodb://localhost:27017/medical-store", cfg.MongoURI)
				assert.Equal(t, "medical-store", cfg.MongoDatabase)
				assert.Equal(t, 7*24*time.Hour, cfg.JWTExpiresIn)
				assert.Equal(t, 30*24*time.Hour, cfg.JWTRefreshExpiresIn)
				assert.Equal(t, 10*time.Minute, cfg.OTPTTL)
				assert.Equal(t, PhoneAuthBoth, cfg.PhoneAuthMode)
				assert.Equal(t, int64(5<<20), cfg.MaxUploadSizeBytes)
				assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
				assert.True(t, cfg.OTPEnabled())
				assert.True(t, cfg.IdentityEnabled())
				assert.True(t, cfg.IsDevelopment())
			},
		},
		{
			name: "env overrides",
			env: map[string]string{
				"PORT":                 "8080",
				"APP_ENV":              "production",
				"JWT_SECRET":           "s3cret",
				"JWT_EXPIRES_IN":       "1h",
				"PHONE_AUTH_MODE":      "otp",
				"REDIS_ADDR":           "localhost:6379",
				"CORS_ALLOWED_ORIGINS": "https://admin.example.com,https://app.example.com",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "8080", cfg.Port)
				assert.Equal(t, "s3cret", cfg.JWTSecret)
				assert.Equal(t, time.Hour, cfg.JWTExpiresIn)
				assert.Equal(t, "localhost:6379", cfg.RedisAddr)
				assert.Len(t, cfg.CORSAllowedOrigins, 2)
				assert.True(t, cfg.OTPEnabled())
				assert.False(t, cfg.IdentityEnabled())
				assert.False(t, cfg.IsDevelopment())
			},
		},
		{
			name: "identity only",
			env:  map[string]string{"PHONE_AUTH_MODE": "identity"},
			check: func(t *testing.T, cfg *Config) {
				assert.False(t, cfg.OTPEnabled())
				assert.True(t, cfg.IdentityEnabled())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Parse()
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestParse_InvalidPhoneAuthMode(t *testing.T) {
	t.Setenv("PHONE_AUTH_MODE", "carrier-pigeon")

	_, err := Parse()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PHONE_AUTH_MODE")
}

func TestParse_InvalidDuration(t *testing.T) {
	t.Setenv("OTP_TTL", "ten minutes")

	_, err := Parse()
	require.Error(t, err)
}
