package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/secinto/hrms_backend/internal/models"
)

// writeKeyPair writes a fresh RSA key pair into dir and returns the paths
func writeKeyPair(t *testing.T, dir, name string) (privatePath, publicPath string) {
	t.Helper()

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("Failed to generate RSA key: %v", err)
	}

	privatePath = filepath.Join(dir, name+"_private.pem")
	privatePEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(privateKey),
	})
	if err := os.WriteFile(privatePath, privatePEM, 0o600); err != nil {
		t.Fatalf("Failed to write private key: %v", err)
	}

	publicBytes, err := x509.MarshalPKIXPublicKey(&privateKey.PublicKey)
	if err != nil {
		t.Fatalf("Failed to marshal public key: %v", err)
	}
	publicPath = filepath.Join(dir, name+"_public.pem")
	publicPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: publicBytes})
	if err := os.WriteFile(publicPath, publicPEM, 0o644); err != nil {
		t.Fatalf("Failed to write public key: %v", err)
	}
	return privatePath, publicPath
}

func testConfig(t *testing.T) JWTConfig {
	t.Helper()
	privatePath, publicPath := writeKeyPair(t, t.TempDir(), "test")
	return JWTConfig{
		PrivateKeyPath:     privatePath,
		PublicKeyPath:      publicPath,
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 30 * 24 * time.Hour,
		Issuer:             "hrms-test",
	}
}

func newTestService(t *testing.T, cfg JWTConfig) *jwtService {
	t.Helper()
	svc, err := NewJWTService(cfg)
	if err != nil {
		t.Fatalf("NewJWTService() error = %v", err)
	}
	return svc.(*jwtService)
}

func TestNewJWTService(t *testing.T) {
	dir := t.TempDir()
	privatePath, publicPath := writeKeyPair(t, dir, "a")
	_, otherPublic := writeKeyPair(t, dir, "b")

	tests := []struct {
		name    string
		private string
		public  string
		wantErr error
	}{
		{name: "matching pair", private: privatePath, public: publicPath},
		{name: "missing private key", private: "/nonexistent/private.pem", public: publicPath, wantErr: ErrKeyNotFound},
		{name: "missing public key", private: privatePath, public: "/nonexistent/public.pem", wantErr: ErrKeyNotFound},
		{name: "mismatched pair", private: privatePath, public: otherPublic, wantErr: ErrKeyMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewJWTService(JWTConfig{
				PrivateKeyPath:     tt.private,
				PublicKeyPath:      tt.public,
				AccessTokenExpiry:  time.Hour,
				RefreshTokenExpiry: time.Hour,
				Issuer:             "test",
			})
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("NewJWTService() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewJWTService() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestJWTService_AccessTokenCarriesActor(t *testing.T) {
	svc := newTestService(t, testConfig(t))

	tests := []struct {
		role          string
		wantRole      models.UserRole
		canAdminister bool
	}{
		{role: "hr", wantRole: models.UserRoleHR, canAdminister: true},
		{role: "ADMIN", wantRole: models.UserRoleAdmin, canAdminister: true},
		{role: " manager ", wantRole: models.UserRoleManager},
		{role: "employee", wantRole: models.UserRoleEmployee},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			token, expiresAt, err := svc.GenerateAccessToken("employee-123", tt.role)
			if err != nil {
				t.Fatalf("GenerateAccessToken() error = %v", err)
			}
			if !expiresAt.After(time.Now()) {
				t.Error("GenerateAccessToken() returned past expiration time")
			}

			claims, err := svc.ValidateAccessToken(token)
			if err != nil {
				t.Fatalf("ValidateAccessToken() error = %v", err)
			}
			if claims.Role != string(tt.wantRole) || claims.TokenType != TokenTypeAccess {
				t.Errorf("claims = %+v", claims)
			}
			if claims.Subject != "employee-123" || claims.ID == "" {
				t.Errorf("registered claims = %+v", claims.RegisteredClaims)
			}

			actor := claims.Actor()
			if actor.UserID != "employee-123" || actor.Role != tt.wantRole {
				t.Errorf("Actor() = %+v", actor)
			}
			if actor.CanAdminister() != tt.canAdminister {
				t.Errorf("CanAdminister() = %v, want %v", actor.CanAdminister(), tt.canAdminister)
			}
		})
	}
}

func TestJWTService_GenerateAccessToken_UnknownRole(t *testing.T) {
	svc := newTestService(t, testConfig(t))

	for _, role := range []string{"", "contractor", "root"} {
		if _, _, err := svc.GenerateAccessToken("employee-123", role); !errors.Is(err, ErrInvalidRole) {
			t.Errorf("GenerateAccessToken(%q) error = %v, want ErrInvalidRole", role, err)
		}
	}
}

func TestJWTService_ExpiredAccessToken(t *testing.T) {
	svc := newTestService(t, testConfig(t))
	issued := time.Now()
	svc.now = func() time.Time { return issued }

	token, _, err := svc.GenerateAccessToken("employee-123", "employee")
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	// Within the clock skew the token is still accepted
	svc.now = func() time.Time { return issued.Add(time.Hour + clockSkew/2) }
	if _, err := svc.ValidateAccessToken(token); err != nil {
		t.Errorf("ValidateAccessToken() within skew error = %v", err)
	}

	svc.now = func() time.Time { return issued.Add(time.Hour + 2*clockSkew) }
	if _, err := svc.ValidateAccessToken(token); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("ValidateAccessToken() error = %v, want ErrTokenExpired", err)
	}
}

func TestJWTService_RefreshToken(t *testing.T) {
	svc := newTestService(t, testConfig(t))

	token, err := svc.GenerateRefreshToken("employee-123")
	if err != nil {
		t.Fatalf("GenerateRefreshToken() error = %v", err)
	}

	claims, err := svc.ValidateRefreshToken(token)
	if err != nil {
		t.Fatalf("ValidateRefreshToken() error = %v", err)
	}
	if claims.UserID != "employee-123" || claims.TokenType != TokenTypeRefresh {
		t.Errorf("claims = %+v", claims)
	}

	if _, err := svc.ValidateAccessToken(token); !errors.Is(err, ErrInvalidClaims) {
		t.Errorf("refresh token accepted as access token: %v", err)
	}
}

func TestJWTService_GenerateTokenPair(t *testing.T) {
	svc := newTestService(t, testConfig(t))

	pair, err := svc.GenerateTokenPair("employee-123", "admin")
	if err != nil {
		t.Fatalf("GenerateTokenPair() error = %v", err)
	}
	if pair.ExpiresIn != int64(time.Hour.Seconds()) {
		t.Errorf("ExpiresIn = %d", pair.ExpiresIn)
	}
	if _, err := svc.ValidateAccessToken(pair.AccessToken); err != nil {
		t.Errorf("AccessToken validation failed: %v", err)
	}
	if _, err := svc.ValidateRefreshToken(pair.RefreshToken); err != nil {
		t.Errorf("RefreshToken validation failed: %v", err)
	}
	if _, err := svc.ValidateRefreshToken(pair.AccessToken); !errors.Is(err, ErrInvalidClaims) {
		t.Errorf("access token accepted as refresh token: %v", err)
	}

	if _, err := svc.GenerateTokenPair("employee-123", "guest"); !errors.Is(err, ErrInvalidRole) {
		t.Errorf("GenerateTokenPair() error = %v, want ErrInvalidRole", err)
	}
}

func TestJWTService_RejectsForeignTokens(t *testing.T) {
	cfg := testConfig(t)
	svc := newTestService(t, cfg)

	otherIssuer := cfg
	otherIssuer.Issuer = "someone-else"
	foreign := newTestService(t, otherIssuer)
	foreignToken, _, err := foreign.GenerateAccessToken("employee-123", "hr")
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	otherKeys := testConfig(t)
	otherKeys.Issuer = cfg.Issuer
	forged := newTestService(t, otherKeys)
	forgedToken, _, err := forged.GenerateAccessToken("employee-123", "admin")
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"empty token", ""},
		{"malformed token", "not.a.valid.token"},
		{"other issuer", foreignToken},
		{"other signing key", forgedToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.ValidateAccessToken(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("ValidateAccessToken() error = %v, want ErrInvalidToken", err)
			}
			if _, err := svc.ValidateRefreshToken(tt.token); err == nil {
				t.Error("ValidateRefreshToken() should return error")
			}
		})
	}
}

func TestLoadKeys(t *testing.T) {
	dir := t.TempDir()
	garbage := filepath.Join(dir, "garbage.pem")
	if err := os.WriteFile(garbage, []byte("not valid pem data"), 0o600); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}
	wrongBlock := filepath.Join(dir, "wrong.pem")
	if err := os.WriteFile(wrongBlock, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: []byte("junk")}), 0o600); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}

	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{name: "missing file", path: filepath.Join(dir, "missing.pem"), wantErr: ErrKeyNotFound},
		{name: "not pem", path: garbage, wantErr: ErrInvalidKeyFormat},
		{name: "undecodable block", path: wrongBlock, wantErr: ErrInvalidKeyFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := loadPrivateKey(tt.path); !errors.Is(err, tt.wantErr) {
				t.Errorf("loadPrivateKey() error = %v, want %v", err, tt.wantErr)
			}
			if _, err := loadPublicKey(tt.path); !errors.Is(err, tt.wantErr) {
				t.Errorf("loadPublicKey() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
