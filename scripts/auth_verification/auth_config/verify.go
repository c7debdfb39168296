// Package main checks the auth configuration and the admin session round trip.
// It can be run with: go run scripts/auth_verification/auth_config/verify.go
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jungianjournals/journals-backend/config"
	"github.com/jungianjournals/journals-backend/internal/auth"
	"github.com/jungianjournals/journals-backend/logger"
)

func main() {
	fmt.Println("Jungian Journals Auth Configuration Check")
	fmt.Println("=========================================")

	verbose := flag.Bool("verbose", false, "Enable verbose output")
	flag.Parse()

	log := logger.GetLogger()
	log.Info("Starting auth configuration check")

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("❌ Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Checking auth configuration for environment: %s\n\n", cfg.Server.Environment)
	if *verbose {
		fmt.Printf("Using Supabase URL: %s\n", cfg.Supabase.URL)
		fmt.Printf("JWKS endpoint: %s\n", auth.JWKSURL(cfg.Supabase.URL))
		fmt.Println("Supabase JWT secret configured:", cfg.Supabase.JWTSecret != "")
	}

	validator := auth.NewConfigValidator(cfg)
	errs := validator.ValidateAuthConfig()
	if len(errs) > 0 {
		fmt.Printf("❌ Auth configuration validation failed with %d errors:\n", len(errs))
		for i, err := range errs {
			fmt.Printf("  %d. %s\n", i+1, err)
		}
		os.Exit(1)
	}

	// Admin session round trip
	token, _, err := auth.GenerateAdminToken(cfg.Admin.ID, cfg.Admin.TokenSecret, time.Minute)
	if err != nil {
		fmt.Printf("❌ Admin token creation failed: %v\n", err)
		os.Exit(1)
	}
	claims, err := auth.ValidateAdminToken(token, cfg.Admin.TokenSecret)
	if err != nil || claims.Subject != cfg.Admin.ID {
		fmt.Printf("❌ Admin token validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("✅ Auth configuration is valid")
	fmt.Println("✅ Admin token creation and validation working correctly")
	fmt.Println("✅ Auth configuration check completed successfully")
}
