package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/collab-docs-api/internal/config"
	"github.com/yukikurage/collab-docs-api/internal/constants"
)

// TokenTransport carries the session token between client and server.
type TokenTransport interface {
	// Extract returns the token presented by the request, or "" when absent.
	Extract(c *gin.Context) string
	// Issue hands a freshly signed token to the client.
	Issue(c *gin.Context, token string, ttl time.Duration) error
	// Clear removes the token from the client.
	Clear(c *gin.Context) error
	// RevealsToken reports whether the login response body must include the token.
	RevealsToken() bool
}

// NewTokenTransport selects the transport named by AUTH_TOKEN_SOURCE.
func NewTokenTransport(cfg *config.Config) (TokenTransport, error) {
	switch cfg.Auth.TokenSource {
	case config.TokenSourceHeader:
		return HeaderTransport{}, nil
	case config.TokenSourceCookie:
		return CookieTransport{Name: cfg.Auth.CookieName, Secure: cfg.IsRelease()}, nil
	case config.TokenSourceSession:
		return SessionTransport{Secure: cfg.IsRelease()}, nil
	default:
		return nil, fmt.Errorf("unknown token source %q", cfg.Auth.TokenSource)
	}
}

// HeaderTransport reads "Authorization: Bearer <token>".
type HeaderTransport struct{}

func (HeaderTransport) Extract(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Issue is a no-op; the client takes the token from the login response.
func (HeaderTransport) Issue(*gin.Context, string, time.Duration) error { return nil }

func (HeaderTransport) Clear(*gin.Context) error { return nil }

func (HeaderTransport) RevealsToken() bool { return true }

// CookieTransport keeps the token in an HTTP-only, SameSite=Strict cookie.
type CookieTransport struct {
	Name   string
	Secure bool
}

func (t CookieTransport) name() string {
	if t.Name == "" {
		return constants.DefaultAuthCookieName
	}
	return t.Name
}

func (t CookieTransport) Extract(c *gin.Context) string {
	token, err := c.Cookie(t.name())
	if err != nil {
		return ""
	}
	return token
}

func (t CookieTransport) Issue(c *gin.Context, token string, ttl time.Duration) error {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(t.name(), token, int(ttl.Seconds()), "/", "", t.Secure, true)
	return nil
}

func (t CookieTransport) Clear(c *gin.Context) error {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(t.name(), "", -1, "/", "", t.Secure, true)
	return nil
}

func (CookieTransport) RevealsToken() bool { return false }

// SessionTransport stores the token in a gin-contrib session.
// The sessions middleware must run before it.
type SessionTransport struct {
	Secure bool
}

func (SessionTransport) Extract(c *gin.Context) string {
	token, _ := sessions.Default(c).Get(constants.SessionKeyToken).(string)
	return token
}

func (t SessionTransport) Issue(c *gin.Context, token string, ttl time.Duration) error {
	session := sessions.Default(c)
	session.Set(constants.SessionKeyToken, token)
	session.Options(sessionOptions(int(ttl.Seconds()), t.Secure))
	return session.Save()
}

func (t SessionTransport) Clear(c *gin.Context) error {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessionOptions(-1, t.Secure))
	return session.Save()
}

func (SessionTransport) RevealsToken() bool { return false }

func sessionOptions(maxAge int, secure bool) sessions.Options {
	return sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	}
}

// NewSessionStore builds the session backend named by SESSION_STORE.
func NewSessionStore(cfg *config.Config) (sessions.Store, error) {
	secret := []byte(cfg.Auth.SessionSecret)

	var store sessions.Store
	switch cfg.Auth.SessionStore {
	case "redis":
		s, err := redisStore.NewStore(
			10,
			"tcp",
			cfg.Redis.Addr(),
			"",
			cfg.Redis.Password,
			secret,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis session store: %w", err)
		}
		store = s
	default:
		store = cookie.NewStore(secret)
	}

	store.Options(sessionOptions(int(cfg.Auth.JWTExpiry.Seconds()), cfg.IsRelease()))
	return store, nil
}
