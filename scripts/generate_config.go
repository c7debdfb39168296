package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jungianjournals/journals-backend/config"
	"gopkg.in/yaml.v3"
)

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func validateRequiredEnv(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("ERROR: %s environment variable is not set in your .env file. Please set it and try again", key)
	}
	if len(value) < 8 {
		return "", fmt.Errorf("ERROR: %s value is too short. It must be at least 8 characters long. Current length: %d", key, len(value))
	}
	return value, nil
}

func mustEnv(key string) string {
	value, err := validateRequiredEnv(key)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	return value
}

func main() {
	// Check if .env file exists
	if _, err := os.Stat(".env"); os.IsNotExist(err) {
		fmt.Println("ERROR: .env file not found!")
		fmt.Println("Please create a .env file by copying .env.example and filling in the required values:")
		fmt.Println("cp .env.example .env")
		os.Exit(1)
	}

	var cfg config.Config

	cfg.Server.Environment = config.Environment(getEnvOrDefault("SERVER_ENVIRONMENT", string(config.EnvDevelopment)))
	cfg.Server.Port = getEnvOrDefault("PORT", "8080")
	cfg.Server.AllowedOrigins = strings.Split(getEnvOrDefault("ALLOWED_ORIGINS", "*"), ",")
	cfg.Server.FrontendURL = getEnvOrDefault("FRONTEND_URL", "https://jungianjournals.com")
	cfg.Server.Version = getEnvOrDefault("APP_VERSION", "dev")

	cfg.Database.Host = getEnvOrDefault("DB_HOST", "postgres")
	cfg.Database.Port = getIntOrDefault("DB_PORT", 5432)
	cfg.Database.User = getEnvOrDefault("DB_USER", "postgres")
	cfg.Database.Password = mustEnv("DB_PASSWORD")
	cfg.Database.Name = getEnvOrDefault("DB_NAME", "journals")
	cfg.Database.SSLMode = getEnvOrDefault("DB_SSL_MODE", "disable")
	cfg.Database.MaxOpenConns = 20

	cfg.Redis.Address = getEnvOrDefault("REDIS_ADDRESS", "redis:6379")
	cfg.Redis.Password = mustEnv("REDIS_PASSWORD")

	cfg.Supabase.URL = mustEnv("SUPABASE_URL")
	cfg.Supabase.AnonKey = mustEnv("SUPABASE_ANON_KEY")
	cfg.Supabase.ServiceKey = mustEnv("SUPABASE_SERVICE_KEY")
	cfg.Supabase.JWTSecret = mustEnv("SUPABASE_JWT_SECRET")

	cfg.Storage.Provider = getEnvOrDefault("STORAGE_PROVIDER", config.StorageProviderSupabase)
	cfg.Storage.Bucket = getEnvOrDefault("STORAGE_BUCKET", "blog-images")
	cfg.Storage.PublicBaseURL = os.Getenv("STORAGE_PUBLIC_BASE_URL")
	if cfg.Storage.Provider != config.StorageProviderSupabase {
		cfg.Storage.AccessKeyID = mustEnv("STORAGE_ACCESS_KEY_ID")
		cfg.Storage.SecretAccessKey = mustEnv("STORAGE_SECRET_ACCESS_KEY")
		cfg.Storage.R2AccountID = os.Getenv("R2_ACCOUNT_ID")
	}

	cfg.Payment.TossClientKey = mustEnv("TOSS_CLIENT_KEY")
	cfg.Payment.TossSecretKey = mustEnv("TOSS_SECRET_KEY")
	cfg.Payment.PriceKRW = int64(getIntOrDefault("PAYMENT_PRICE_KRW", 9900))

	cfg.Email.FromAddress = getEnvOrDefault("EMAIL_FROM_ADDRESS", "hello@jungianjournals.com")
	cfg.Email.FromName = getEnvOrDefault("EMAIL_FROM_NAME", "Jungian Journals")
	cfg.Email.ResendAPIKey = mustEnv("RESEND_API_KEY")

	cfg.Admin.ID = getEnvOrDefault("ADMIN_ID", "admin")
	cfg.Admin.PasswordHash = mustEnv("ADMIN_PASSWORD_HASH")
	cfg.Admin.TokenSecret = mustEnv("ADMIN_TOKEN_SECRET")
	cfg.Admin.SessionHours = getIntOrDefault("ADMIN_SESSION_HOURS", 24)

	// Generate YAML
	yamlData, err := yaml.Marshal(&cfg)
	if err != nil {
		fmt.Printf("Error marshaling YAML: %v\n", err)
		os.Exit(1)
	}

	// Get the environment name from command line args or use default
	env := "development"
	if len(os.Args) > 1 {
		env = os.Args[1]
	}

	if err := os.MkdirAll("config", 0755); err != nil {
		fmt.Printf("Error creating config directory: %v\n", err)
		os.Exit(1)
	}

	filename := fmt.Sprintf("config/config.%s.yaml", env)
	if err := os.WriteFile(filename, yamlData, 0600); err != nil {
		fmt.Printf("Error writing config file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Successfully generated %s\n", filename)
}
