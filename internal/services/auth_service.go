package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/collab-docs-api/internal/constants"
	"github.com/yukikurage/collab-docs-api/internal/models"
	"github.com/yukikurage/collab-docs-api/internal/repository"
	"github.com/yukikurage/collab-docs-api/internal/revocation"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken           = errors.New("email already in use")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrPasswordTooShort     = errors.New("password too short")
	ErrFullnameRequired     = errors.New("fullname is required")
	ErrInvalidEmail         = errors.New("a valid email is required")
	ErrUserNotFound         = errors.New("user not found")
	ErrUserOwnsContent      = errors.New("user still owns workspaces or documents")
	ErrFailedToHashPassword = errors.New("failed to hash password")
	ErrFailedToIssueToken   = errors.New("failed to issue session token")
)

// AuthService handles registration, credentials and the identity store.
type AuthService struct {
	userRepo     repository.UserRepository
	hasher       PasswordHasher
	tokens       TokenService
	denylist     revocation.Denylist
	deletePolicy DeletePolicy
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, hasher PasswordHasher, tokens TokenService, denylist revocation.Denylist, deletePolicy DeletePolicy) *AuthService {
	if denylist == nil {
		denylist = revocation.Noop{}
	}
	if deletePolicy == "" {
		deletePolicy = DeleteCascade
	}
	return &AuthService{
		userRepo:     userRepo,
		hasher:       hasher,
		tokens:       tokens,
		denylist:     denylist,
		deletePolicy: deletePolicy,
	}
}

// RegisterInput represents the required information to create a new user.
type RegisterInput struct {
	Fullname string
	Email    string
	Password string
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// UpdateUserInput is a partial patch; nil fields stay unchanged.
type UpdateUserInput struct {
	Fullname *string
	Email    *string
	Password *string
}

// Register creates a new user with a hashed password.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	fullname := strings.TrimSpace(input.Fullname)
	if fullname == "" {
		return nil, ErrFullnameRequired
	}
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	user := &models.User{
		Fullname:     fullname,
		Email:        email,
		PasswordHash: hashedPassword,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// unique index backstop for concurrent registrations
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login verifies credentials and returns the user with a freshly signed token.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*models.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to find user: %w", err)
	}

	if !s.hasher.Compare(input.Password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Sign(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrFailedToIssueToken, err)
	}

	return user, token, nil
}

// TokenTTL is the lifetime of tokens issued by Login.
func (s *AuthService) TokenTTL() time.Duration {
	return s.tokens.TTL()
}

// Logout revokes token for the rest of its lifetime.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.denylist.Revoke(ctx, token, s.tokens.TTL()); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(ctx context.Context, id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// UpdateUser applies a partial patch to the user's profile and credentials.
func (s *AuthService) UpdateUser(ctx context.Context, id uint64, input UpdateUserInput) (*models.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Fullname != nil {
		fullname := strings.TrimSpace(*input.Fullname)
		if fullname == "" {
			return nil, ErrFullnameRequired
		}
		user.Fullname = fullname
	}

	if input.Email != nil {
		email, err := normalizeEmail(*input.Email)
		if err != nil {
			return nil, err
		}
		if email != user.Email {
			if existing, err := s.userRepo.FindByEmail(ctx, email); err == nil && existing.ID != user.ID {
				return nil, ErrEmailTaken
			} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("failed to check email: %w", err)
			}
		}
		user.Email = email
	}

	if input.Password != nil {
		if len(*input.Password) < constants.MinPasswordLength {
			return nil, ErrPasswordTooShort
		}
		hashedPassword, err := s.hasher.Hash(*input.Password)
		if err != nil {
			return nil, ErrFailedToHashPassword
		}
		user.PasswordHash = hashedPassword
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// DeleteUser removes the user according to the configured delete policy.
func (s *AuthService) DeleteUser(ctx context.Context, id uint64) error {
	var err error
	switch s.deletePolicy {
	case DeleteRestrict:
		workspaces, documents, countErr := s.userRepo.CountOwnedContent(ctx, id)
		if countErr != nil {
			return fmt.Errorf("failed to count owned content: %w", countErr)
		}
		if workspaces > 0 || documents > 0 {
			return ErrUserOwnsContent
		}
		err = s.userRepo.Delete(ctx, id)
	default:
		err = s.userRepo.DeleteWithOwnedContent(ctx, id)
	}

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 || strings.ContainsAny(email, " \t") {
		return "", ErrInvalidEmail
	}
	return email, nil
}
