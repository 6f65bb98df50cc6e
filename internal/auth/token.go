package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

var (
	// ErrInvalidToken covers bad signatures, malformed tokens, missing
	// subjects and type confusion between access and refresh tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned for well-formed, correctly signed tokens
	// whose expiry is in the past.
	ErrExpiredToken = errors.New("token expired")
)

// Claims is the signed claim set carried by every bearer token.
type Claims struct {
	TokenType TokenType `json:"type"`
	Scopes    []string  `json:"scopes,omitempty"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim back into a user ID.
func (c *Claims) UserID() (uint64, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return id, nil
}

// TokenService mints and verifies self-contained bearer tokens. Verification
// is a pure computation: signature check, type check and clock comparison.
// Tokens are never persisted or revoked server-side.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenService creates a TokenService with its own signing secret and
// TTLs. Each instance is independent, so tests can run with isolated keys.
func NewTokenService(secret string, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// IssueAccessToken mints a signed access token for the user.
func (s *TokenService) IssueAccessToken(userID uint64, scopes []string) (string, error) {
	return s.issue(userID, TokenTypeAccess, scopes, s.accessTTL)
}

// IssueRefreshToken mints a signed refresh token for the user.
func (s *TokenService) IssueRefreshToken(userID uint64) (string, error) {
	return s.issue(userID, TokenTypeRefresh, nil, s.refreshTTL)
}

func (s *TokenService) issue(userID uint64, tokenType TokenType, scopes []string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		TokenType: tokenType,
		Scopes:    scopes,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks the token's signature, expiry and type. A token of the wrong
// type is never accepted, regardless of signature validity.
func (s *TokenService) Verify(tokenString string, expectedType TokenType) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != expectedType {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// Refresh exchanges a valid refresh token for a new access token. The refresh
// token itself is not rotated or invalidated.
func (s *TokenService) Refresh(refreshToken string) (string, error) {
	claims, err := s.Verify(refreshToken, TokenTypeRefresh)
	if err != nil {
		return "", err
	}

	userID, err := claims.UserID()
	if err != nil {
		return "", err
	}

	return s.IssueAccessToken(userID, nil)
}

// AccessTTL returns the configured access token lifetime.
func (s *TokenService) AccessTTL() time.Duration {
	return s.accessTTL
}
