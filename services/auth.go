package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"medstore/models"
	"medstore/providers"
	"medstore/repository"
	"medstore/utils"
)

// UserRepository is the persistence contract used by AuthService
type UserRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindOrCreateByMobile(ctx context.Context, mobile string) (*models.User, error)
	SetRefreshToken(ctx context.Context, id primitive.ObjectID, token string) error
	SetLocation(ctx context.Context, id primitive.ObjectID, loc models.GeoPoint) error
}

// OTPRepository stores one-time codes
type OTPRepository interface {
	Save(ctx context.Context, otp *models.OTP) error
	Consume(ctx context.Context, mobile, code string, at time.Time) error
}

// Session is what a successful phone verification hands back to the client
type Session struct {
	User         models.UserProfile `json:"user"`
	AccessToken  string             `json:"accessToken"`
	RefreshToken string             `json:"refreshToken"`
}

// AuthService verifies phone ownership and issues session tokens.
// A nil otps/sms pair disables the OTP flow; a nil identity verifier
// disables the identity-token flow.
type AuthService struct {
	users    UserRepository
	otps     OTPRepository
	sms      providers.SMSSender
	identity providers.IdentityVerifier
	tokens   *utils.TokenIssuer
	otpTTL   time.Duration
	now      func() time.Time
}

func NewAuthService(
	users UserRepository,
	otps OTPRepository,
	sms providers.SMSSender,
	identity providers.IdentityVerifier,
	tokens *utils.TokenIssuer,
	otpTTL time.Duration,
) *AuthService {
	return &AuthService{
		users:    users,
		otps:     otps,
		sms:      sms,
		identity: identity,
		tokens:   tokens,
		otpTTL:   otpTTL,
		now:      time.Now,
	}
}

// SendOTP issues a fresh code for mobile and returns its lifetime
func (s *AuthService) SendOTP(ctx context.Context, mobile string) (time.Duration, error) {
	if s.otps == nil || s.sms == nil {
		return 0, ErrPhoneAuthDisabled
	}
	if !utils.IsValidMobile(mobile) {
		return 0, ErrInvalidMobile
	}

	code, err := utils.GenerateOTP()
	if err != nil {
		return 0, err
	}
	issuedAt := s.now()
	otp := &models.OTP{
		MobileNumber: mobile,
		Code:         code,
		CreatedAt:    issuedAt,
		ExpiresAt:    issuedAt.Add(s.otpTTL),
	}
	if err := s.otps.Save(ctx, otp); err != nil {
		return 0, fmt.Errorf("save otp: %w", err)
	}

	sent, err := s.sms.SendCode(ctx, mobile, code)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrOTPNotSent, err)
	}
	if !sent {
		return 0, ErrOTPNotSent
	}
	return s.otpTTL, nil
}

// VerifyOTP consumes a code and logs the owner of mobile in
func (s *AuthService) VerifyOTP(ctx context.Context, mobile, code string) (*Session, error) {
	if s.otps == nil {
		return nil, ErrPhoneAuthDisabled
	}
	err := s.otps.Consume(ctx, mobile, code, s.now())
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidOTP
	}
	if err != nil {
		return nil, fmt.Errorf("consume otp: %w", err)
	}
	return s.login(ctx, mobile)
}

// VerifyIdentityToken exchanges an identity-provider token for a session.
// When mobileHint is set it has to match the verified number.
func (s *AuthService) VerifyIdentityToken(ctx context.Context, idToken, mobileHint string) (*Session, error) {
	if s.identity == nil {
		return nil, ErrPhoneAuthDisabled
	}
	phone, err := s.identity.VerifyIdentityToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	mobile := utils.NormalizeMobile(phone)
	if !utils.IsValidMobile(mobile) {
		return nil, ErrInvalidMobile
	}
	if mobileHint != "" && utils.NormalizeMobile(mobileHint) != mobile {
		return nil, ErrIdentityMismatch
	}
	return s.login(ctx, mobile)
}

func (s *AuthService) login(ctx context.Context, mobile string) (*Session, error) {
	user, err := s.users.FindOrCreateByMobile(ctx, mobile)
	if err != nil {
		return nil, fmt.Errorf("find or create user: %w", err)
	}

	access, err := s.tokens.AccessToken(user.ID.Hex())
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.RefreshToken(user.ID.Hex())
	if err != nil {
		return nil, err
	}
	if err := s.users.SetRefreshToken(ctx, user.ID, refresh); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &Session{
		User:         user.Profile(),
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

// Refresh issues a new access token for a refresh token that is still the
// one stored on its user.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return "", ErrInvalidToken
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return "", ErrInvalidToken
	}

	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return "", ErrInvalidToken
	}
	if err != nil {
		return "", fmt.Errorf("load user: %w", err)
	}
	if user.RefreshToken != refreshToken {
		return "", ErrInvalidToken
	}
	return s.tokens.AccessToken(user.ID.Hex())
}

// Authenticate resolves an access token to its user
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*models.User, error) {
	claims, err := s.tokens.ParseAccess(accessToken)
	if err != nil || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

// UpdateLocation stores a user's coordinates as [lng, lat]
func (s *AuthService) UpdateLocation(ctx context.Context, userID primitive.ObjectID, latitude, longitude float64) (models.GeoPoint, error) {
	if !models.ValidCoordinates(latitude, longitude) {
		return models.GeoPoint{}, ErrInvalidLocation
	}
	loc := models.NewPoint(longitude, latitude)
	if err := s.users.SetLocation(ctx, userID, loc); err != nil {
		return models.GeoPoint{}, fmt.Errorf("set location: %w", err)
	}
	return loc, nil
}
