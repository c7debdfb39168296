package middleware

// contextKey defines a type for context keys to avoid collisions.
type contextKey string

// Defines context keys used within the application middleware and handlers.
const (
	// UserIDKey is the context key for the authenticated member's Supabase user id.
	UserIDKey contextKey = "userID"
	// IdentityKey holds the *Identity resolved from the member's access token.
	IdentityKey contextKey = "identity"
	// AdminIDKey is set once an admin token has been validated.
	AdminIDKey contextKey = "adminID"
)
