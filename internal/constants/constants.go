package constants

// Context keys shared between middleware and handlers
const (
	ContextKeyUserID    = "user_id"
	ContextKeyIdentity  = "identity"
	ContextKeyToken     = "auth_token"
	ContextKeyRequestID = "request_id"
)

// Transport names
const (
	SessionCookieName     = "collab_session"
	SessionKeyToken       = "token"
	DefaultAuthCookieName = "token"
	RequestIDHeader       = "X-Request-ID"
)

// Validation limits
const (
	MinPasswordLength = 8
	MaxNameLength     = 255
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)
