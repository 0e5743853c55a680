package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims represents the JWT claims for both customers and admins.
// Customer tokens carry UserID, admin tokens carry AdminID and Role.
type Claims struct {
	UserID  string `json:"userId,omitempty"`
	AdminID string `json:"adminId,omitempty"`
	Role    string `json:"role,omitempty"`
	jwt.StandardClaims
}

// TokenIssuer signs and verifies HS256 tokens
type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// NewTokenIssuer creates a TokenIssuer. Refresh tokens use their own secret.
func NewTokenIssuer(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

// AccessTTL is the lifetime of access tokens
func (ti *TokenIssuer) AccessTTL() time.Duration {
	return ti.accessTTL
}

// AccessToken generates a customer access token
func (ti *TokenIssuer) AccessToken(userID string) (string, error) {
	return ti.sign(&Claims{UserID: userID}, ti.accessSecret, ti.accessTTL)
}

// RefreshToken generates a customer refresh token
func (ti *TokenIssuer) RefreshToken(userID string) (string, error) {
	return ti.sign(&Claims{UserID: userID}, ti.refreshSecret, ti.refreshTTL)
}

// AdminToken generates an access token for a back-office account
func (ti *TokenIssuer) AdminToken(adminID, role string) (string, error) {
	return ti.sign(&Claims{AdminID: adminID, Role: role}, ti.accessSecret, ti.accessTTL)
}

// ParseAccess verifies a token signed with the access secret
func (ti *TokenIssuer) ParseAccess(tokenStr string) (*Claims, error) {
	return ti.parse(tokenStr, ti.accessSecret)
}

// ParseRefresh verifies a token signed with the refresh secret
func (ti *TokenIssuer) ParseRefresh(tokenStr string) (*Claims, error) {
	return ti.parse(tokenStr, ti.refreshSecret)
}

func (ti *TokenIssuer) sign(claims *Claims, secret []byte, ttl time.Duration) (string, error) {
	issuedAt := ti.now()
	claims.StandardClaims = jwt.StandardClaims{
		Id:        uuid.NewString(),
		IssuedAt:  issuedAt.Unix(),
		ExpiresAt: issuedAt.Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return tokenString, nil
}

func (ti *TokenIssuer) parse(tokenStr string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
