package auth

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/warden-authz/warden/internal/authz"
	"github.com/warden-authz/warden/internal/shared"
)

// DefaultRole is assigned to every self-registered account.
const DefaultRole = "user"

// Service wraps authentication business rules.
type Service struct {
	repo   Repository
	tokens *TokenStore
}

// NewService constructs a new Service.
func NewService(repo Repository, tokens *TokenStore) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// Register creates a user in the given tenant and assigns the default role.
func (s *Service) Register(ctx context.Context, tenantID int64, email, password string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return s.repo.CreateUserWithRole(ctx, tenantID, email, string(hash), DefaultRole)
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// Login authenticates and issues a bearer token.
func (s *Service) Login(ctx context.Context, email, password string) (string, *User, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return "", nil, err
	}
	token, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Logout revokes a bearer token.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.tokens.Revoke(ctx, token)
}

// ResolveToken maps a bearer token to its user.
func (s *Service) ResolveToken(ctx context.Context, token string) (*User, error) {
	userID, err := s.tokens.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, userID)
}

// Principal assembles the read-only principal value consumed by the
// authorization resolver: id, tenant id and assigned role names.
func (s *Service) Principal(ctx context.Context, user *User) (authz.Principal, error) {
	roles, err := s.repo.RoleNames(ctx, user.ID)
	if err != nil {
		return authz.Principal{}, err
	}
	return authz.Principal{ID: user.ID, TenantID: user.TenantID, Roles: roles}, nil
}
