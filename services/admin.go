package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"medstore/models"
	"medstore/repository"
	"medstore/utils"
)

const minPasswordLength = 6

// AdminRepository is the persistence contract used by AdminService
type AdminRepository interface {
	Create(ctx context.Context, admin *models.Admin) error
	FindByEmail(ctx context.Context, email string) (*models.Admin, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Admin, error)
	Count(ctx context.Context) (int64, error)
}

// AdminProfile is the public view of an admin
type AdminProfile struct {
	ID    primitive.ObjectID `json:"id"`
	Email string             `json:"email"`
	Role  string             `json:"role"`
}

// AdminSession is returned by a successful admin login
type AdminSession struct {
	Admin AdminProfile `json:"admin"`
	Token string       `json:"token"`
}

// AdminService handles back-office accounts
type AdminService struct {
	admins     AdminRepository
	tokens     *utils.TokenIssuer
	bcryptCost int
}

func NewAdminService(admins AdminRepository, tokens *utils.TokenIssuer) *AdminService {
	return &AdminService{
		admins:     admins,
		tokens:     tokens,
		bcryptCost: 10,
	}
}

// Login checks email and password and issues a role-scoped token
func (s *AdminService) Login(ctx context.Context, email, password string) (*AdminSession, error) {
	admin, err := s.admins.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find admin: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.AdminToken(admin.ID.Hex(), admin.Role)
	if err != nil {
		return nil, err
	}
	return &AdminSession{Admin: profileOf(admin), Token: token}, nil
}

// Create registers a new admin. While no admin exists anyone may create the
// first one, which always becomes a superadmin. After that only a
// superadmin caller may create accounts.
func (s *AdminService) Create(ctx context.Context, caller *models.Admin, email, password, role string) (*AdminProfile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, &ValidationError{Message: "Email and password are required"}
	}
	if len(password) < minPasswordLength {
		return nil, &ValidationError{Message: fmt.Sprintf("Password must be at least %d characters", minPasswordLength)}
	}
	if role == "" {
		role = models.RoleAdmin
	}
	if role != models.RoleAdmin && role != models.RoleSuperAdmin {
		return nil, &ValidationError{Message: "Invalid role"}
	}

	existing, err := s.admins.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count admins: %w", err)
	}
	bootstrap := existing == 0
	switch {
	case bootstrap:
		role = models.RoleSuperAdmin
	case caller == nil:
		return nil, ErrInvalidToken
	case caller.Role != models.RoleSuperAdmin:
		return nil, ErrForbidden
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	admin := &models.Admin{Email: email, Password: string(hash), Role: role, Bootstrap: bootstrap}
	if err := s.admins.Create(ctx, admin); err != nil {
		// another request created the first admin after our count
		if bootstrap && errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	p := profileOf(admin)
	return &p, nil
}

// Authenticate resolves an admin access token to its account
func (s *AdminService) Authenticate(ctx context.Context, token string) (*models.Admin, error) {
	claims, err := s.tokens.ParseAccess(token)
	if err != nil || claims.AdminID == "" {
		return nil, ErrInvalidToken
	}
	id, err := primitive.ObjectIDFromHex(claims.AdminID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	admin, err := s.admins.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("load admin: %w", err)
	}
	return admin, nil
}

func profileOf(a *models.Admin) AdminProfile {
	return AdminProfile{ID: a.ID, Email: a.Email, Role: a.Role}
}
