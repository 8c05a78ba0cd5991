// Package main provides a CLI tool to mint an access token for a user and role.
// Usage: go run cmd/generate-token/main.go -user "emp-1" -role hr
// This is useful for development when no identity provider is connected.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/secinto/hrms_backend/internal/auth"
	"github.com/secinto/hrms_backend/internal/config"
	"github.com/secinto/hrms_backend/internal/models"
)

// jwtSettings is the part of the server configuration this tool needs
type jwtSettings struct {
	JWTPrivateKeyPath  string        `envconfig:"JWT_PRIVATE_KEY_PATH" required:"true"`
	JWTPublicKeyPath   string        `envconfig:"JWT_PUBLIC_KEY_PATH" required:"true"`
	AccessTokenExpiry  time.Duration `envconfig:"ACCESS_TOKEN_EXPIRY" default:"1h"`
	RefreshTokenExpiry time.Duration `envconfig:"REFRESH_TOKEN_EXPIRY" default:"720h"`
}

func main() {
	userID := flag.String("user", "", "User ID to put in the token subject (required)")
	role := flag.String("role", string(models.UserRoleEmployee), "Role: admin, hr, manager or employee")
	envFile := flag.String("env", "", "Path to .env file (defaults to .env in current dir or backend dir)")
	pair := flag.Bool("pair", false, "Also print a refresh token")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Generates a signed access token (development use).\n\n")
		fmt.Fprintf(os.Stderr, "Required config (via .env or environment):\n")
		fmt.Fprintf(os.Stderr, "  HRMS_JWT_PRIVATE_KEY_PATH  RSA private key used for signing\n")
		fmt.Fprintf(os.Stderr, "  HRMS_JWT_PUBLIC_KEY_PATH   RSA public key used for verification\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -user \"hr-1\" -role hr\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -user \"emp-1\" -pair\n", os.Args[0])
	}

	flag.Parse()

	// Load .env file
	loadEnvFile(*envFile)

	// Validate required flags
	if *userID == "" {
		log.Fatal("Error: -user is required")
	}
	normalizedRole := models.UserRole(strings.ToUpper(*role))
	if !normalizedRole.IsValid() {
		log.Fatalf("Error: invalid role: %s", *role)
	}

	var settings jwtSettings
	if err := envconfig.Process(config.Prefix, &settings); err != nil {
		log.Fatalf("Error: invalid configuration: %v", err)
	}

	jwtService, err := auth.NewJWTService(auth.JWTConfig{
		PrivateKeyPath:     settings.JWTPrivateKeyPath,
		PublicKeyPath:      settings.JWTPublicKeyPath,
		AccessTokenExpiry:  settings.AccessTokenExpiry,
		RefreshTokenExpiry: settings.RefreshTokenExpiry,
		Issuer:             "hrms-backend",
	})
	if err != nil {
		log.Fatalf("Failed to initialize JWT service: %v", err)
	}

	fmt.Println("=== Access Token ===")
	fmt.Printf("  User: %s\n", *userID)
	fmt.Printf("  Role: %s\n", normalizedRole)

	if *pair {
		tokens, err := jwtService.GenerateTokenPair(*userID, string(normalizedRole))
		if err != nil {
			log.Fatalf("Failed to generate token pair: %v", err)
		}
		fmt.Printf("  Expires: %s\n\n", tokens.ExpiresAt.Format(time.RFC3339))
		fmt.Println(tokens.AccessToken)
		fmt.Println()
		fmt.Println("=== Refresh Token ===")
		fmt.Println(tokens.RefreshToken)
		return
	}

	token, expiresAt, err := jwtService.GenerateAccessToken(*userID, string(normalizedRole))
	if err != nil {
		log.Fatalf("Failed to generate access token: %v", err)
	}
	fmt.Printf("  Expires: %s\n\n", expiresAt.Format(time.RFC3339))
	fmt.Println(token)
	fmt.Println()
	fmt.Printf("Use with: curl -H \"Authorization: Bearer %s\" ...\n", token)
}

func loadEnvFile(path string) {
	if path == "" {
		// Try to find .env in current dir or backend dir
		cwd, _ := os.Getwd()
		if _, err := os.Stat(filepath.Join(cwd, ".env")); err == nil {
			path = ".env"
		} else if _, err := os.Stat(filepath.Join(cwd, "backend", ".env")); err == nil {
			path = filepath.Join(cwd, "backend", ".env")
		}
	}

	if path != "" {
		if err := godotenv.Load(path); err != nil {
			log.Printf("Error loading .env file: %v", err)
		}
	}
}
