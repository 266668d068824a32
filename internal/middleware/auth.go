package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/collab-docs-api/internal/constants"
	apierrors "github.com/yukikurage/collab-docs-api/internal/errors"
	"github.com/yukikurage/collab-docs-api/internal/services"
)

// RequireAuth resolves the presented token to an identity before the handler runs.
func RequireAuth(gate *services.AccessGate, transport TokenTransport) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := transport.Extract(c)

		identity, err := gate.Resolve(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, services.ErrUnauthenticated) {
				apierrors.Unauthorized(c, "")
				return
			}
			_ = c.Error(err)
			apierrors.InternalError(c, "")
			return
		}

		// Store identity in context for easy access in handlers
		c.Set(constants.ContextKeyIdentity, identity)
		c.Set(constants.ContextKeyUserID, identity.UserID)
		c.Set(constants.ContextKeyToken, token)
		c.Next()
	}
}

// GetIdentity retrieves the identity resolved by RequireAuth
func GetIdentity(c *gin.Context) (services.Identity, bool) {
	value, exists := c.Get(constants.ContextKeyIdentity)
	if !exists {
		return services.Identity{}, false
	}
	identity, ok := value.(services.Identity)
	if !ok || identity.UserID == 0 {
		return services.Identity{}, false
	}
	return identity, true
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	identity, ok := GetIdentity(c)
	return identity.UserID, ok
}

// GetToken returns the raw token the request was authenticated with
func GetToken(c *gin.Context) string {
	return c.GetString(constants.ContextKeyToken)
}
