// Package auth issues, verifies, rotates and revokes account sessions.
//
// A session is a pair of signed tokens. The short-lived access token is
// stateless. The long-lived refresh token is only honored while it is the
// exact value stored for its account in the credential store, so deleting or
// overwriting that entry revokes every earlier refresh token at once.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/princinho/storefront/apperror"
	"github.com/princinho/storefront/logger"
	"github.com/princinho/storefront/models"
	"github.com/princinho/storefront/tokens"
	"github.com/princinho/storefront/utils"
)

const (
	minPasswordLen = 6
	minNameLen     = 2
	maxNameLen     = 50

	msgInvalidCredentials = "Invalid email or password"
	msgInvalidRefresh     = "Invalid refresh token"
)

// Accounts is the account store the manager needs.
type Accounts interface {
	Create(ctx context.Context, u *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	UpdatePassword(ctx context.Context, id string, hash string) error
}

// Credentials holds the current refresh token per account.
type Credentials interface {
	Save(ctx context.Context, userID, token string, ttl time.Duration) error
	Get(ctx context.Context, userID string) (string, error)
	Delete(ctx context.Context, userID string) error
}

// Session is the result of a successful signup or login.
type Session struct {
	User   models.Profile
	Tokens tokens.Pair
}

type Manager struct {
	accounts    Accounts
	credentials Credentials
	issuer      *tokens.Issuer
	log         *logger.Logger
	now         func() time.Time
}

func NewManager(accounts Accounts, credentials Credentials, issuer *tokens.Issuer, log *logger.Logger) *Manager {
	return &Manager{
		accounts:    accounts,
		credentials: credentials,
		issuer:      issuer,
		log:         log.With("component", "auth"),
		now:         time.Now,
	}
}

// Register creates a customer account and opens a session for it.
func (m *Manager) Register(ctx context.Context, name, email, password string) (*Session, error) {
	name = strings.TrimSpace(name)
	email = utils.NormalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return nil, apperror.Validation("Name, email, and password are required")
	}
	if n := utf8.RuneCountInString(name); n < minNameLen || n > maxNameLen {
		return nil, apperror.Validation("Name must be between 2 and 50 characters")
	}
	if !strings.Contains(email, "@") {
		return nil, apperror.Validation("Email is invalid")
	}
	if len(password) < minPasswordLen {
		return nil, apperror.Validation("Password must be at least 6 characters long")
	}

	_, err := m.accounts.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, apperror.Conflict("User already exists")
	case !errors.Is(err, models.ErrNotFound):
		return nil, apperror.Internal(err)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	now := m.now().UTC()
	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleCustomer,
		CartItems:    models.Cart{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := m.accounts.Create(ctx, user); err != nil {
		if errors.Is(err, models.ErrDuplicate) {
			return nil, apperror.Conflict("User already exists")
		}
		return nil, apperror.Internal(err)
	}

	return m.open(ctx, user)
}

// Authenticate checks credentials and opens a new session, replacing the
// account's previous refresh token.
func (m *Manager) Authenticate(ctx context.Context, email, password string) (*Session, error) {
	email = utils.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperror.Validation("Email and password are required")
	}

	user, err := m.accounts.FindByEmail(ctx, email)
	if errors.Is(err, models.ErrNotFound) {
		return nil, apperror.Unauthorized(msgInvalidCredentials)
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if err := utils.CheckPassword(user.PasswordHash, password); err != nil {
		return nil, apperror.Unauthorized(msgInvalidCredentials)
	}

	return m.open(ctx, user)
}

// Rotate exchanges a valid refresh token for a new access token. The
// refresh token itself is not replaced.
func (m *Manager) Rotate(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", apperror.Unauthorized("No refresh token provided")
	}

	userID, err := m.issuer.VerifyRefresh(refreshToken)
	if err != nil {
		return "", apperror.Wrap(apperror.KindUnauthorized, msgInvalidRefresh, err)
	}

	stored, err := m.credentials.Get(ctx, userID)
	if errors.Is(err, models.ErrNotFound) {
		return "", apperror.Unauthorized(msgInvalidRefresh)
	}
	if err != nil {
		return "", apperror.Internal(err)
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(refreshToken)) != 1 {
		return "", apperror.Unauthorized(msgInvalidRefresh)
	}

	access, err := m.issuer.IssueAccess(userID)
	if err != nil {
		return "", apperror.Internal(err)
	}
	return access, nil
}

// Revoke drops the stored refresh token of the account the token belongs
// to. It never fails: an absent or undecodable token leaves nothing to
// revoke, and store errors are only logged.
func (m *Manager) Revoke(ctx context.Context, refreshToken string) {
	if refreshToken == "" {
		return
	}
	userID, err := m.issuer.RefreshSubject(refreshToken)
	if err != nil {
		m.log.Debug("revoke: undecodable refresh token", "error", err)
		return
	}
	if err := m.credentials.Delete(context.WithoutCancel(ctx), userID); err != nil {
		m.log.Error("revoke: failed to delete refresh token", "user_id", userID, "error", err)
	}
}

// ChangePassword replaces the account's password digest and revokes its
// refresh token so every other session has to log in again.
func (m *Manager) ChangePassword(ctx context.Context, userID, current, next string) error {
	if current == "" || next == "" {
		return apperror.Validation("Current and new password are required")
	}
	if len(next) < minPasswordLen {
		return apperror.Validation("Password must be at least 6 characters long")
	}

	user, err := m.accounts.FindByID(ctx, userID)
	if errors.Is(err, models.ErrNotFound) {
		return apperror.Unauthorized("User not found")
	}
	if err != nil {
		return apperror.Internal(err)
	}
	if err := utils.CheckPassword(user.PasswordHash, current); err != nil {
		return apperror.Unauthorized("Current password is incorrect")
	}

	hash, err := utils.HashPassword(next)
	if err != nil {
		return apperror.Internal(err)
	}
	if err := m.accounts.UpdatePassword(ctx, userID, hash); err != nil {
		return apperror.Internal(err)
	}
	if err := m.credentials.Delete(context.WithoutCancel(ctx), userID); err != nil {
		m.log.Error("change password: failed to revoke refresh token", "user_id", userID, "error", err)
	}
	return nil
}

// open mints a token pair and stores the refresh half. The write runs on a
// context detached from the request; a failed write is logged and the
// session is still returned, leaving the client with a working access token.
func (m *Manager) open(ctx context.Context, user *models.User) (*Session, error) {
	userID := user.ID.Hex()
	pair, err := m.issuer.Issue(userID)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	if err := m.credentials.Save(context.WithoutCancel(ctx), userID, pair.RefreshToken, tokens.RefreshTTL); err != nil {
		m.log.Error("failed to store refresh token", "user_id", userID, "error", err)
	}

	return &Session{User: models.NewProfile(user), Tokens: pair}, nil
}
