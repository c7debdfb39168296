package types

import "time"

// AuthUser is the provider-agnostic view of an account in Supabase Auth.
type AuthUser struct {
	ID           string
	Email        string
	CreatedAt    time.Time
	LastSignInAt *time.Time
	UserMetadata map[string]interface{}
	// AppMetadata is writable only with the service role key.
	AppMetadata map[string]interface{}
}

// AppMetadataBool reads a boolean flag from the app metadata.
func (u AuthUser) AppMetadataBool(key string) bool {
	v, _ := u.AppMetadata[key].(bool)
	return v
}

// MetadataString reads a string entry from the user metadata.
func (u AuthUser) MetadataString(key string) string {
	v, _ := u.UserMetadata[key].(string)
	return v
}

// AuthSession is a Supabase session handed back to the client.
type AuthSession struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int       `json:"expires_in"`
	ExpiresAt    time.Time `json:"expires_at"`
	UserID       string    `json:"user_id"`
	Email        string    `json:"email,omitempty"`
}

// RefreshRequest is the body of POST /v1/auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// AdminLoginRequest is the body of POST /v1/admin/login.
type AdminLoginRequest struct {
	AdminID  string `json:"adminId" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AdminLoginResponse carries the admin session token.
type AdminLoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
