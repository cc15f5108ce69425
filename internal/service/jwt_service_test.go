package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"vidtube/internal/domain"
)

func newTestJWTService() *JWTService {
	return NewJWTService("access-secret", "refresh-secret", 15*time.Minute, 30*time.Minute)
}

func TestJWTService_GenerateParseAccess(t *testing.T) {
	svc := newTestJWTService()
	user := domain.User{
		ID:       "u1",
		Username: "alice",
		Email:    "alice@x.com",
		FullName: "Alice",
	}

	pair, err := svc.GeneratePair(user)
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("expected tokens")
	}

	claims, err := svc.ParseAccessToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("parse access: %v", err)
	}
	if claims.UserID != "u1" || claims.Username != "alice" || claims.Email != "alice@x.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	refresh, err := svc.ParseRefreshToken(pair.RefreshToken)
	if err != nil {
		t.Fatalf("parse refresh: %v", err)
	}
	if refresh.UserID != "u1" || refresh.ID == "" {
		t.Fatalf("unexpected refresh claims: %+v", refresh)
	}
}

func TestJWTService_PairsAreUnique(t *testing.T) {
	svc := newTestJWTService()
	user := domain.User{ID: "u1"}

	first, err := svc.GeneratePair(user)
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}
	second, err := svc.GeneratePair(user)
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}
	if first.RefreshToken == second.RefreshToken {
		t.Fatalf("expected distinct refresh tokens")
	}
}

func TestJWTService_SecretsAreNotInterchangeable(t *testing.T) {
	svc := newTestJWTService()
	pair, err := svc.GeneratePair(domain.User{ID: "u1"})
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}

	if _, err := svc.ParseRefreshToken(pair.AccessToken); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected ErrJWTInvalid for access token used as refresh, got %v", err)
	}
	if _, err := svc.ParseAccessToken(pair.RefreshToken); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected ErrJWTInvalid for refresh token used as access, got %v", err)
	}
}

func TestJWTService_RejectsEmptySecret(t *testing.T) {
	svc := NewJWTService("", "refresh-secret", 15*time.Minute, 30*time.Minute)

	if _, err := svc.GeneratePair(domain.User{ID: "u1"}); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected ErrJWTInvalid on empty secret, got %v", err)
	}
}

func TestJWTService_RejectsEmptyUserID(t *testing.T) {
	svc := newTestJWTService()
	if _, err := svc.GeneratePair(domain.User{}); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected ErrJWTInvalid for empty user id, got %v", err)
	}
}

func TestJWTService_Expired(t *testing.T) {
	svc := newTestJWTService()
	past := time.Now().UTC().Add(-2 * time.Hour)
	claims := Claims{
		UserID:    "u1",
		TokenType: tokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   "u1",
			IssuedAt:  jwt.NewNumericDate(past),
			ExpiresAt: jwt.NewNumericDate(past.Add(time.Minute)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("refresh-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := svc.ParseRefreshToken(signed); !errors.Is(err, ErrJWTExpired) {
		t.Fatalf("expected ErrJWTExpired, got %v", err)
	}
}

func TestJWTService_RejectsWrongIssuer(t *testing.T) {
	svc := newTestJWTService()
	now := time.Now().UTC()
	claims := Claims{
		UserID:    "u1",
		TokenType: tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "other-issuer",
			Subject:   "u1",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(10 * time.Minute)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("access-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := svc.ParseAccessToken(signed); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected ErrJWTInvalid for wrong issuer, got %v", err)
	}
}

func TestJWTService_RejectsForeignSecret(t *testing.T) {
	svc := newTestJWTService()
	other := NewJWTService("other-access", "other-refresh", 15*time.Minute, 30*time.Minute)
	pair, err := other.GeneratePair(domain.User{ID: "u1"})
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}
	if _, err := svc.ParseAccessToken(pair.AccessToken); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected ErrJWTInvalid for foreign access token, got %v", err)
	}
	if _, err := svc.ParseRefreshToken(pair.RefreshToken); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected ErrJWTInvalid for foreign refresh token, got %v", err)
	}
}
