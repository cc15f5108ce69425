package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"vidtube/internal/domain"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
	tokenIssuer      = "vidtube"
)

// JWTService emite y valida tokens JWT. Access y refresh usan secretos distintos.
type JWTService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type Claims struct {
	UserID    string `json:"_id"`
	Username  string `json:"username,omitempty"`
	Email     string `json:"email,omitempty"`
	FullName  string `json:"fullname,omitempty"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

var (
	ErrJWTInvalid = errors.New("jwt invalid")
	ErrJWTExpired = errors.New("jwt expired")
)

func NewJWTService(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *JWTService {
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	if refreshTTL <= 0 {
		refreshTTL = 10 * 24 * time.Hour
	}
	return &JWTService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		issuer:        tokenIssuer,
	}
}

func (s *JWTService) AccessTTL() time.Duration  { return s.accessTTL }
func (s *JWTService) RefreshTTL() time.Duration { return s.refreshTTL }

// GeneratePair emite siempre access y refresh juntos para el mismo usuario.
func (s *JWTService) GeneratePair(user domain.User) (TokenPair, error) {
	if len(s.accessSecret) == 0 || len(s.refreshSecret) == 0 {
		return TokenPair{}, ErrJWTInvalid
	}
	if strings.TrimSpace(user.ID) == "" {
		return TokenPair{}, ErrJWTInvalid
	}
	now := time.Now().UTC()

	access, err := s.sign(Claims{
		UserID:           user.ID,
		Username:         user.Username,
		Email:            user.Email,
		FullName:         user.FullName,
		TokenType:        tokenTypeAccess,
		RegisteredClaims: s.registered(user.ID, now, s.accessTTL, ""),
	}, s.accessSecret)
	if err != nil {
		return TokenPair{}, err
	}

	// jti evita tokens idénticos si dos pares se emiten en el mismo segundo.
	refresh, err := s.sign(Claims{
		UserID:           user.ID,
		TokenType:        tokenTypeRefresh,
		RegisteredClaims: s.registered(user.ID, now, s.refreshTTL, uuid.NewString()),
	}, s.refreshSecret)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *JWTService) ParseAccessToken(accessToken string) (Claims, error) {
	return s.parse(accessToken, s.accessSecret, tokenTypeAccess)
}

func (s *JWTService) ParseRefreshToken(refreshToken string) (Claims, error) {
	return s.parse(refreshToken, s.refreshSecret, tokenTypeRefresh)
}

func (s *JWTService) registered(subject string, now time.Time, ttl time.Duration, jti string) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ID:        jti,
		Issuer:    s.issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func (s *JWTService) sign(claims Claims, secret []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func (s *JWTService) parse(tokenString string, secret []byte, tokenType string) (Claims, error) {
	if len(secret) == 0 {
		return Claims{}, ErrJWTInvalid
	}
	if strings.TrimSpace(tokenString) == "" {
		return Claims{}, ErrJWTInvalid
	}
	var claims Claims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
	)
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrJWTExpired
		}
		return Claims{}, ErrJWTInvalid
	}
	if claims.TokenType != tokenType || !isValidClaims(claims) {
		return Claims{}, ErrJWTInvalid
	}
	return claims, nil
}

func isValidClaims(claims Claims) bool {
	if strings.TrimSpace(claims.UserID) == "" {
		return false
	}
	return claims.Subject == claims.UserID
}
