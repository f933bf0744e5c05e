package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/princinho/storefront/apperror"
)

const (
	AccessTTL  = 15 * time.Minute
	RefreshTTL = 7 * 24 * time.Hour

	typeAccess  = "access"
	typeRefresh = "refresh"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims represents JWT claims with token type and user ID.
type Claims struct {
	jwt.RegisteredClaims
	UserID    string `json:"userId"`
	TokenType string `json:"typ"`
}

// Pair is a freshly minted short-lived/long-lived token pair.
type Pair struct {
	AccessToken  string
	RefreshToken string
}

// Issuer mints and verifies HS256 tokens. Access and refresh tokens are
// signed with different secrets.
type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	now           func() time.Time
}

type Option func(*Issuer)

// WithClock overrides the time source used for iat/exp and verification.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) { i.now = now }
}

// NewIssuer fails with a configuration error when a secret is missing or
// both secrets are the same.
func NewIssuer(accessSecret, refreshSecret string, opts ...Option) (*Issuer, error) {
	if accessSecret == "" || refreshSecret == "" {
		return nil, apperror.Configuration("token signing secrets must be set", nil)
	}
	if accessSecret == refreshSecret {
		return nil, apperror.Configuration("access and refresh secrets must differ", nil)
	}
	i := &Issuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// Issue mints an access token and a refresh token for userID.
func (i *Issuer) Issue(userID string) (Pair, error) {
	access, err := i.IssueAccess(userID)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := i.IssueRefresh(userID)
	if err != nil {
		return Pair{}, err
	}
	return Pair{AccessToken: access, RefreshToken: refresh}, nil
}

// IssueAccess creates a short-lived access token.
func (i *Issuer) IssueAccess(userID string) (string, error) {
	now := i.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(AccessTTL)),
		},
		UserID:    userID,
		TokenType: typeAccess,
	})

	s, err := token.SignedString(i.accessSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return s, nil
}

// IssueRefresh creates a long-lived refresh token. Each one carries a random
// JTI so two tokens minted within the same second still differ.
func (i *Issuer) IssueRefresh(userID string) (string, error) {
	now := i.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(RefreshTTL)),
		},
		UserID:    userID,
		TokenType: typeRefresh,
	})

	s, err := token.SignedString(i.refreshSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return s, nil
}

// VerifyAccess validates an access token and returns its user ID.
func (i *Issuer) VerifyAccess(token string) (string, error) {
	return i.verify(token, i.accessSecret, typeAccess, true)
}

// VerifyRefresh validates a refresh token and returns its user ID.
func (i *Issuer) VerifyRefresh(token string) (string, error) {
	return i.verify(token, i.refreshSecret, typeRefresh, true)
}

// RefreshSubject returns the user ID of a refresh token whose signature
// verifies, even if it has expired.
func (i *Issuer) RefreshSubject(token string) (string, error) {
	return i.verify(token, i.refreshSecret, typeRefresh, false)
}

func (i *Issuer) verify(tokenString string, secret []byte, typ string, checkExpiry bool) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
	}
	if checkExpiry {
		opts = append(opts, jwt.WithExpirationRequired())
	} else {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, opts...)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return "", ErrInvalidToken
	}
	if claims.TokenType != typ {
		return "", fmt.Errorf("%w: token type mismatch: %s", ErrInvalidToken, claims.TokenType)
	}
	if claims.UserID == "" {
		return "", fmt.Errorf("%w: missing user id", ErrInvalidToken)
	}
	return claims.UserID, nil
}
