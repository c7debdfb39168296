package middleware

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jungianjournals/journals-backend/config"
	"github.com/jungianjournals/journals-backend/logger"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

var (
	// ErrTokenExpired is returned when JWT validation fails due to expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid is returned for general token validation failures (signature, format).
	ErrTokenInvalid = errors.New("token invalid")
	// ErrTokenMissingClaim is returned if a required claim (like 'sub') is missing.
	ErrTokenMissingClaim = errors.New("token missing required claim")
)

const (
	jwksCacheTTL = 15 * time.Minute
	clockSkew    = 30 * time.Second
)

// Identity is what the API knows about a member from their access token.
type Identity struct {
	UserID string
	Email  string
	// MetadataPremium mirrors app_metadata.isPremium, which the service role
	// writes when a payment is confirmed. user_metadata is user-writable and
	// never grants access.
	MetadataPremium bool
}

// Validator validates Supabase access tokens.
type Validator interface {
	Validate(ctx context.Context, tokenString string) (*Identity, error)
}

// JWTValidator checks tokens against the project JWT secret (HS256) and
// falls back to the project JWKS for asymmetric keys.
type JWTValidator struct {
	jwksCache    *JWKSCache
	staticSecret []byte
}

var _ Validator = (*JWTValidator)(nil)

// NewJWTValidator creates a validator from the Supabase settings.
func NewJWTValidator(cfg *config.SupabaseConfig) (*JWTValidator, error) {
	var jwks *JWKSCache
	if cfg.URL != "" && cfg.AnonKey != "" {
		jwks = NewJWKSCache(cfg.URL+"/auth/v1/.well-known/jwks.json", cfg.AnonKey, jwksCacheTTL, nil)
	}
	return NewJWTValidatorWith([]byte(cfg.JWTSecret), jwks)
}

// NewJWTValidatorWith creates a validator from an explicit secret and cache.
// Either may be empty but not both.
func NewJWTValidatorWith(secret []byte, jwks *JWKSCache) (*JWTValidator, error) {
	if len(secret) == 0 && jwks == nil {
		return nil, fmt.Errorf("JWT validator needs an HS256 secret or a JWKS endpoint")
	}
	return &JWTValidator{jwksCache: jwks, staticSecret: secret}, nil
}

// Validate parses and validates the token. HS256 is tried first when the
// token header asks for it; everything else goes through the JWKS.
func (v *JWTValidator) Validate(ctx context.Context, tokenString string) (*Identity, error) {
	msg, err := jws.Parse([]byte(tokenString))
	if err != nil || len(msg.Signatures()) == 0 {
		return nil, fmt.Errorf("%w: malformed token", ErrTokenInvalid)
	}
	headers := msg.Signatures()[0].ProtectedHeaders()
	alg := headers.Algorithm()

	var token jwt.Token
	switch {
	case alg == jwa.HS256 && len(v.staticSecret) > 0:
		token, err = jwt.Parse([]byte(tokenString),
			jwt.WithKey(jwa.HS256, v.staticSecret),
			jwt.WithValidate(true),
			jwt.WithAcceptableSkew(clockSkew))
	case alg != jwa.HS256 && v.jwksCache != nil && headers.KeyID() != "":
		token, err = v.parseWithJWKS(ctx, tokenString, headers.KeyID(), alg)
	default:
		return nil, fmt.Errorf("%w: no validation method for alg %s", ErrTokenInvalid, alg)
	}
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired()) {
			return nil, fmt.Errorf("%w: %w", ErrTokenExpired, err)
		}
		if errors.Is(err, ErrJWKSKeyNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}
	return identityFromToken(token)
}

func (v *JWTValidator) parseWithJWKS(ctx context.Context, tokenString, kid string, alg jwa.SignatureAlgorithm) (jwt.Token, error) {
	key, err := v.jwksCache.GetKey(ctx, kid)
	if err != nil {
		return nil, err
	}
	var keyAlg jwa.KeyAlgorithm = alg
	if key.Algorithm().String() != "" {
		keyAlg = key.Algorithm()
		if keyAlg.String() != alg.String() {
			logger.GetLogger().Warnw("Token alg header mismatches JWK algorithm",
				"header_alg", alg.String(), "key_alg", keyAlg.String(), "kid", kid)
		}
	}
	return jwt.Parse([]byte(tokenString),
		jwt.WithKey(keyAlg, key),
		jwt.WithValidate(true),
		jwt.WithAcceptableSkew(clockSkew))
}

func identityFromToken(token jwt.Token) (*Identity, error) {
	if token.Subject() == "" {
		return nil, ErrTokenMissingClaim
	}
	id := &Identity{UserID: token.Subject()}
	claims := token.PrivateClaims()
	if email, ok := claims["email"].(string); ok {
		id.Email = email
	}
	if meta, ok := claims["app_metadata"].(map[string]interface{}); ok {
		if premium, ok := meta["isPremium"].(bool); ok {
			id.MetadataPremium = premium
		}
	}
	return id, nil
}
