package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"northwind/internal/config"
)

func TestHS256ValidateToken(t *testing.T) {
	now := time.Unix(1730000000, 0)
	cfg := config.JWTConfig{
		ValidationType: "HS256",
		Issuer:         "auth-service",
		Audience:       "northwind-api",
		HMACSecret:     "super-secret",
		ClockSkewSec:   0,
	}

	v, err := NewJWTValidator(cfg)
	if err != nil {
		t.Fatalf("NewJWTValidator failed: %v", err)
	}
	v.clockFunc = func() time.Time { return now }

	token := buildHS256Token(t, cfg.HMACSecret, jwt.MapClaims{
		"iss": cfg.Issuer,
		"aud": cfg.Audience,
		"iat": now.Unix() - 10,
		"nbf": now.Unix() - 5,
		"exp": now.Unix() + 30,
		"sub": "user-1",
	})

	claims, err := v.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims["sub"] != "user-1" {
		t.Fatalf("unexpected sub: %v", claims["sub"])
	}
}

func TestValidateTokenExpired(t *testing.T) {
	now := time.Unix(1730000000, 0)
	cfg := config.JWTConfig{
		ValidationType: "HS256",
		Issuer:         "auth-service",
		Audience:       "northwind-api",
		HMACSecret:     "super-secret",
		ClockSkewSec:   0,
	}

	v, err := NewJWTValidator(cfg)
	if err != nil {
		t.Fatalf("NewJWTValidator failed: %v", err)
	}
	v.clockFunc = func() time.Time { return now }

	token := buildHS256Token(t, cfg.HMACSecret, jwt.MapClaims{
		"iss": cfg.Issuer,
		"aud": cfg.Audience,
		"iat": now.Unix() - 20,
		"nbf": now.Unix() - 20,
		"exp": now.Unix() - 1,
	})

	if _, err := v.ValidateToken(token); err == nil {
		t.Fatalf("expected expired error")
	}
}

func TestValidateTokenMissingNbf(t *testing.T) {
	now := time.Unix(1730000000, 0)
	cfg := config.JWTConfig{
		ValidationType: "HS256",
		Issuer:         "auth-service",
		Audience:       "northwind-api",
		HMACSecret:     "super-secret",
		ClockSkewSec:   0,
	}

	v, err := NewJWTValidator(cfg)
	if err != nil {
		t.Fatalf("NewJWTValidator failed: %v", err)
	}
	v.clockFunc = func() time.Time { return now }

	token := buildHS256Token(t, cfg.HMACSecret, jwt.MapClaims{
		"iss": cfg.Issuer,
		"aud": cfg.Audience,
		"iat": now.Unix() - 10,
		"exp": now.Unix() + 30,
	})

	if _, err := v.ValidateToken(token); err == nil {
		t.Fatalf("expected missing nbf error")
	}
}

func TestValidateTokenWrongAlgorithm(t *testing.T) {
	now := time.Unix(1730000000, 0)
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}
	pubDER, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		t.Fatalf("MarshalPKIXPublicKey failed: %v", err)
	}
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})

	cfg := config.JWTConfig{
		ValidationType: "RS256",
		Issuer:         "auth-service",
		Audience:       "northwind-api",
		PublicKeyPEM:   string(pubPEM),
		ClockSkewSec:   0,
	}

	v, err := NewJWTValidator(cfg)
	if err != nil {
		t.Fatalf("NewJWTValidator failed: %v", err)
	}
	v.clockFunc = func() time.Time { return now }

	// HS256 token signed with the public key bytes must be rejected by
	// the algorithm pin before any key confusion can happen
	token := buildHS256Token(t, string(pubPEM), jwt.MapClaims{
		"iss": cfg.Issuer,
		"aud": cfg.Audience,
		"iat": now.Unix() - 10,
		"nbf": now.Unix() - 10,
		"exp": now.Unix() + 60,
	})

	if _, err := v.ValidateToken(token); err == nil {
		t.Fatalf("expected algorithm mismatch error")
	}
}

func TestRS256ValidateToken(t *testing.T) {
	now := time.Unix(1730000000, 0)
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}

	pubDER, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		t.Fatalf("MarshalPKIXPublicKey failed: %v", err)
	}
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})

	cfg := config.JWTConfig{
		ValidationType: "RS256",
		Issuer:         "auth-service",
		Audience:       "northwind-api",
		PublicKeyPEM:   string(pubPEM),
		ClockSkewSec:   0,
	}

	v, err := NewJWTValidator(cfg)
	if err != nil {
		t.Fatalf("NewJWTValidator failed: %v", err)
	}
	v.clockFunc = func() time.Time { return now }

	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"iss": cfg.Issuer,
		"aud": cfg.Audience,
		"iat": now.Unix() - 10,
		"nbf": now.Unix() - 10,
		"exp": now.Unix() + 60,
	})
	token, err := tok.SignedString(priv)
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}

	if _, err := v.ValidateToken(token); err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
}

func buildHS256Token(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}
	return signed
}
