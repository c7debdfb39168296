package auth

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/jungianjournals/journals-backend/config"
	"github.com/jungianjournals/journals-backend/logger"
	"golang.org/x/crypto/bcrypt"
)

const minSecretLength = 32

// ConfigValidator provides methods to validate auth-related configuration
type ConfigValidator struct {
	config *config.Config
	client *http.Client
}

// NewConfigValidator creates a new validator for auth configuration
func NewConfigValidator(cfg *config.Config) *ConfigValidator {
	return &ConfigValidator{
		config: cfg,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// ValidateAuthConfig checks secrets, the admin password hash and that the
// Supabase JWKS endpoint is reachable.
func (v *ConfigValidator) ValidateAuthConfig() []error {
	var errs []error
	sb := v.config.Supabase
	admin := v.config.Admin

	if sb.JWTSecret == "" {
		errs = append(errs, fmt.Errorf("Supabase JWT secret is not configured"))
	} else if len(sb.JWTSecret) < minSecretLength {
		errs = append(errs, fmt.Errorf("Supabase JWT secret is too short (should be at least %d characters)", minSecretLength))
	}

	if len(admin.TokenSecret) < minSecretLength {
		errs = append(errs, fmt.Errorf("admin token secret is too short (should be at least %d characters)", minSecretLength))
	}
	if _, err := bcrypt.Cost([]byte(admin.PasswordHash)); err != nil {
		errs = append(errs, fmt.Errorf("admin password hash is not a bcrypt hash: %w", err))
	}

	if sb.URL != "" {
		u, err := url.Parse(sb.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("invalid Supabase URL: %q", sb.URL))
			return errs
		}
		if sb.AnonKey == "" {
			errs = append(errs, fmt.Errorf("Supabase anon key is not configured"))
		}
		if err := v.checkEndpointAvailability(JWKSURL(sb.URL)); err != nil {
			errs = append(errs, fmt.Errorf("JWKS endpoint not accessible: %w", err))
		}
	}

	return errs
}

// JWKSURL returns the JWKS endpoint of a Supabase project.
func JWKSURL(supabaseURL string) string {
	return fmt.Sprintf("%s/auth/v1/.well-known/jwks.json", supabaseURL)
}

// checkEndpointAvailability tests if an endpoint is accessible
func (v *ConfigValidator) checkEndpointAvailability(endpoint string) error {
	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	if v.config.Supabase.AnonKey != "" {
		req.Header.Add("apikey", v.config.Supabase.AnonKey)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("endpoint returned status code %d", resp.StatusCode)
	}
	return nil
}

// PrintValidationResults logs all validation results
func (v *ConfigValidator) PrintValidationResults(errs []error) {
	log := logger.GetLogger()

	if len(errs) == 0 {
		log.Info("Auth configuration validation passed successfully")
		return
	}

	log.Errorw("Auth configuration validation failed", "error_count", len(errs))
	for i, err := range errs {
		log.Errorw("Validation error", "index", i+1, "error", err.Error())
	}
}
