package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/satwikgupta/backend-project/internal/models"
)

var (
	// ErrInvalidToken indicates the token signature did not verify or the token expired.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrMalformedToken indicates the token payload carries no decodable account id.
	ErrMalformedToken = errors.New("malformed token payload")
)

// TokenKind selects which secret and expiry a token is checked against.
type TokenKind string

const (
	// AccessToken is the short-lived stateless credential.
	AccessToken TokenKind = "access"
	// RefreshToken is the long-lived credential persisted per account.
	RefreshToken TokenKind = "refresh"
)

// Claims is the decoded identity carried by a verified token.
type Claims struct {
	AccountID string
	Username  string
	Email     string
}

type tokenClaims struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies signed access/refresh token pairs. It is
// stateless: validity is purely a function of the configured secrets and TTLs.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration

	now func() time.Time
}

// NewTokenService constructs a TokenService from disjoint secrets. Access
// tokens additionally encode username and email for stateless authorization.
func NewTokenService(accessSecret, refreshSecret []byte, accessTTL, refreshTTL time.Duration) *TokenService {
	if len(accessSecret) == 0 || len(refreshSecret) == 0 {
		panic("auth: token secrets must not be empty")
	}
	if string(accessSecret) == string(refreshSecret) {
		panic("auth: access and refresh secrets must differ")
	}
	return &TokenService{
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

// IssuePair produces a signed access and refresh token for the account.
func (s *TokenService) IssuePair(account models.Account) (models.SessionTokens, error) {
	now := s.now().UTC()

	accessExpiry := now.Add(s.accessTTL)
	access, err := s.sign(tokenClaims{
		Username: account.Username,
		Email:    account.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(accessExpiry),
		},
	}, s.accessSecret)
	if err != nil {
		return models.SessionTokens{}, err
	}

	refreshExpiry := now.Add(s.refreshTTL)
	refresh, err := s.sign(tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(refreshExpiry),
		},
	}, s.refreshSecret)
	if err != nil {
		return models.SessionTokens{}, err
	}

	return models.SessionTokens{
		AccessToken:      access,
		AccessExpiresAt:  accessExpiry,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExpiry,
	}, nil
}

// Verify checks the token against the secret and expiry for its kind and
// returns the decoded claims.
func (s *TokenService) Verify(token string, kind TokenKind) (Claims, error) {
	secret := s.accessSecret
	if kind == RefreshToken {
		secret = s.refreshSecret
	}

	parsed, err := jwt.ParseWithClaims(token, &tokenClaims{},
		func(*jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return Claims{}, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok || claims.Subject == "" {
		return Claims{}, ErrMalformedToken
	}

	return Claims{
		AccountID: claims.Subject,
		Username:  claims.Username,
		Email:     claims.Email,
	}, nil
}

func (s *TokenService) sign(claims tokenClaims, secret []byte) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
