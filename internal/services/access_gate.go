package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/collab-docs-api/internal/metrics"
	"github.com/yukikurage/collab-docs-api/internal/repository"
	"github.com/yukikurage/collab-docs-api/internal/revocation"
	"gorm.io/gorm"
)

var (
	// ErrUnauthenticated is the kind shared by every access gate rejection.
	ErrUnauthenticated = errors.New("authentication required")
	ErrTokenRevoked    = errors.New("token has been revoked")
	ErrUnknownIdentity = errors.New("token refers to an unknown user")
)

// Identity is the resolved caller handed to the authorities. It carries no roles or scopes.
type Identity struct {
	UserID uint64
}

// AccessGate resolves a bearer token to an Identity before any authority is consulted.
type AccessGate struct {
	tokens   TokenService
	users    repository.UserRepository
	denylist revocation.Denylist
}

// NewAccessGate creates a new AccessGate. A nil denylist disables revocation checks.
func NewAccessGate(tokens TokenService, users repository.UserRepository, denylist revocation.Denylist) *AccessGate {
	if denylist == nil {
		denylist = revocation.Noop{}
	}
	return &AccessGate{
		tokens:   tokens,
		users:    users,
		denylist: denylist,
	}
}

// Resolve validates token and looks its subject up in the identity store.
func (g *AccessGate) Resolve(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{}, reject("missing", ErrUnauthenticated)
	}

	revoked, err := g.denylist.IsRevoked(ctx, token)
	if err != nil {
		return Identity{}, fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		return Identity{}, reject("revoked", fmt.Errorf("%w: %w", ErrUnauthenticated, ErrTokenRevoked))
	}

	userID, err := g.tokens.Verify(token)
	if err != nil {
		reason := "invalid"
		if errors.Is(err, ErrTokenMissingSubject) {
			reason = "missing_subject"
		}
		return Identity{}, reject(reason, fmt.Errorf("%w: %w", ErrUnauthenticated, err))
	}

	user, err := g.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Identity{}, reject("unknown_identity", fmt.Errorf("%w: %w", ErrUnauthenticated, ErrUnknownIdentity))
		}
		return Identity{}, fmt.Errorf("failed to look up identity: %w", err)
	}

	return Identity{UserID: user.ID}, nil
}

func reject(reason string, err error) error {
	metrics.AuthenticationFailures.WithLabelValues(reason).Inc()
	return err
}
