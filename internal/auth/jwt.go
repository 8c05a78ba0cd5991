// Package auth issues and verifies the RS512 bearer tokens of the evaluation API.
// #IMPLEMENTATION_DECISION: RS512 chosen for asymmetric signing - allows public key distribution
// #SECURITY_ASSUMPTION: Private key stored securely on server filesystem with 0600 permissions
package auth

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/secinto/hrms_backend/internal/models"
)

// Custom errors
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrTokenExpired     = errors.New("token has expired")
	ErrInvalidClaims    = errors.New("invalid token claims")
	ErrInvalidRole      = errors.New("unknown role")
	ErrKeyNotFound      = errors.New("key file not found")
	ErrInvalidKeyFormat = errors.New("invalid key format")
	ErrKeyMismatch      = errors.New("public key does not match private key")
)

// Token kinds, carried in the "type" claim
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// clockSkew is tolerated on exp/nbf between issuing and verifying instances
const clockSkew = 30 * time.Second

// Claims represents the JWT claims for access tokens
// #INTEGRATION_POINT: The acting identity of every evaluation operation comes from these claims
// #DATA_ASSUMPTION: Tokens are issued by the HRMS identity system, user ids are opaque
type Claims struct {
	jwt.RegisteredClaims
	UserID    string `json:"user_id"`
	Role      string `json:"role"`
	TokenType string `json:"type"`
}

// Actor returns the acting identity carried by the token
func (c *Claims) Actor() models.Actor {
	return models.NewActor(c.UserID, c.Role)
}

// RefreshClaims represents the JWT claims for refresh tokens
type RefreshClaims struct {
	jwt.RegisteredClaims
	UserID    string `json:"user_id"`
	TokenType string `json:"type"`
}

// TokenPair represents an access and refresh token pair
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	ExpiresIn    int64     `json:"expires_in"`
}

// JWTService handles JWT token generation and validation
// #IMPLEMENTATION_DECISION: Service interface so middleware tests can use a mock
type JWTService interface {
	GenerateAccessToken(userID, role string) (string, time.Time, error)
	GenerateRefreshToken(userID string) (string, error)
	GenerateTokenPair(userID, role string) (*TokenPair, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	ValidateRefreshToken(tokenString string) (*RefreshClaims, error)
}

// JWTConfig holds JWT service configuration
type JWTConfig struct {
	PrivateKeyPath     string
	PublicKeyPath      string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
	Issuer             string
}

type jwtService struct {
	privateKey         *rsa.PrivateKey
	publicKey          *rsa.PublicKey
	accessTokenExpiry  time.Duration
	refreshTokenExpiry time.Duration
	issuer             string
	now                func() time.Time
}

// NewJWTService loads the key pair and creates a JWT service
// #LIBRARY_CHOICE: golang-jwt/jwt/v5 - well-maintained, supports RS512
func NewJWTService(cfg JWTConfig) (JWTService, error) {
	privateKey, err := loadPrivateKey(cfg.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load private key: %w", err)
	}

	publicKey, err := loadPublicKey(cfg.PublicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load public key: %w", err)
	}

	if err := checkKeyPair(privateKey, publicKey); err != nil {
		return nil, err
	}

	return &jwtService{
		privateKey:         privateKey,
		publicKey:          publicKey,
		accessTokenExpiry:  cfg.AccessTokenExpiry,
		refreshTokenExpiry: cfg.RefreshTokenExpiry,
		issuer:             cfg.Issuer,
		now:                time.Now,
	}, nil
}

// registered builds the standard claims of a token for subject
func (s *jwtService) registered(subject string, ttl time.Duration) (jwt.RegisteredClaims, time.Time) {
	now := s.now()
	expiresAt := now.Add(ttl)
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    s.issuer,
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}, expiresAt
}

func (s *jwtService) sign(claims jwt.Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodRS512, claims).SignedString(s.privateKey)
}

// GenerateAccessToken creates an access token for an HRMS user
// #BUSINESS_RULE: Only the four HRMS roles can be embedded, stored uppercase
func (s *jwtService) GenerateAccessToken(userID, role string) (string, time.Time, error) {
	normalized := models.UserRole(strings.ToUpper(strings.TrimSpace(role)))
	if !normalized.IsValid() {
		return "", time.Time{}, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	registered, expiresAt := s.registered(userID, s.accessTokenExpiry)
	token, err := s.sign(Claims{
		RegisteredClaims: registered,
		UserID:           userID,
		Role:             string(normalized),
		TokenType:        TokenTypeAccess,
	})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign access token: %w", err)
	}
	return token, expiresAt, nil
}

// GenerateRefreshToken creates a refresh token
// #SECURITY_CONCERN: Refresh tokens are single-use and should be rotated
func (s *jwtService) GenerateRefreshToken(userID string) (string, error) {
	registered, _ := s.registered(userID, s.refreshTokenExpiry)
	token, err := s.sign(RefreshClaims{
		RegisteredClaims: registered,
		UserID:           userID,
		TokenType:        TokenTypeRefresh,
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return token, nil
}

// GenerateTokenPair creates both access and refresh tokens
func (s *jwtService) GenerateTokenPair(userID, role string) (*TokenPair, error) {
	accessToken, expiresAt, err := s.GenerateAccessToken(userID, role)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.GenerateRefreshToken(userID)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
		ExpiresIn:    int64(s.accessTokenExpiry.Seconds()),
	}, nil
}

// parse verifies signature, issuer and time claims of tokenString into claims
func parse[C jwt.Claims](s *jwtService, tokenString string, claims C) (C, error) {
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (interface{}, error) { return s.publicKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodRS512.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithLeeway(clockSkew),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return claims, ErrTokenExpired
		}
		return claims, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return claims, ErrInvalidClaims
	}
	return claims, nil
}

// ValidateAccessToken validates an access token and returns the claims
// #SECURITY_CONCERN: Refresh tokens and tokens with unknown roles are rejected
func (s *jwtService) ValidateAccessToken(tokenString string) (*Claims, error) {
	claims, err := parse(s, tokenString, &Claims{})
	if err != nil {
		return nil, err
	}
	if claims.TokenType != TokenTypeAccess || claims.UserID == "" || claims.UserID != claims.Subject {
		return nil, ErrInvalidClaims
	}
	if !models.UserRole(strings.ToUpper(claims.Role)).IsValid() {
		return nil, fmt.Errorf("%w: %w", ErrInvalidClaims, ErrInvalidRole)
	}
	return claims, nil
}

// ValidateRefreshToken validates a refresh token and returns the claims
func (s *jwtService) ValidateRefreshToken(tokenString string) (*RefreshClaims, error) {
	claims, err := parse(s, tokenString, &RefreshClaims{})
	if err != nil {
		return nil, err
	}
	if claims.TokenType != TokenTypeRefresh || claims.UserID == "" {
		return nil, ErrInvalidClaims
	}
	return claims, nil
}
