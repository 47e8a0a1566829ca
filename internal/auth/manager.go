package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/ayush/vision-assist/internal/models"
)

// UserStore defines the interface for user persistence. The MongoDB
// implementation lives in internal/store; tests use an in-memory fake.
type UserStore interface {
	// Insert persists a new user. Returns ErrDuplicateUser when the
	// username or email collides with an existing record.
	Insert(ctx context.Context, u *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByAPIKey(ctx context.Context, key string) (*models.User, error)
	// EmailTaken reports whether email belongs to a user other than exceptUsername.
	EmailTaken(ctx context.Context, email, exceptUsername string) (bool, error)
	UpdateFields(ctx context.Context, username string, fields map[string]interface{}) error
	SetLastLogin(ctx context.Context, username string, t time.Time) error
	Delete(ctx context.Context, username string) error
}

// Changes lists the account fields Update may modify. Zero values mean
// "leave unchanged".
type Changes struct {
	Email       string
	NewPassword string
}

var errNoChanges = errors.New("no valid fields to update")

// Manager is the sole reader/writer of the credential store. It issues API
// keys, hashes passwords, and gates every account mutation behind a
// successful authentication.
type Manager struct {
	store  UserStore
	secret string
	now    func() time.Time
}

func NewManager(store UserStore, secret string) *Manager {
	return &Manager{store: store, secret: secret, now: time.Now}
}

// Register creates a new account and returns its API key. Uniqueness of
// username and email is enforced by the store's unique indexes; a collision
// surfaces as ErrDuplicateUser.
func (m *Manager) Register(ctx context.Context, username, email, password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	created := m.now()
	key := DeriveAPIKey(username, m.secret, created)
	u := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashed),
		APIKey:       key,
		CreatedAt:    created,
	}
	if err := m.store.Insert(ctx, u); err != nil {
		return "", err
	}
	return key, nil
}

// Authenticate verifies username/password and stamps last_login on success.
// Returns ErrNotFound for an unknown username and ErrInvalidCredential for a
// password mismatch.
func (m *Manager) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	u, err := m.store.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredential
	}
	if err := m.store.SetLastLogin(ctx, username, m.now()); err != nil {
		return nil, fmt.Errorf("update last_login: %w", err)
	}
	return u, nil
}

// ValidateAPIKey resolves a bearer key to the identity it was issued to.
func (m *Manager) ValidateAPIKey(ctx context.Context, key string) (*models.Identity, error) {
	if key == "" {
		return nil, ErrInvalidKey
	}
	u, err := m.store.GetByAPIKey(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidKey
		}
		return nil, err
	}
	return &models.Identity{
		UserID:   u.ID.Hex(),
		Username: u.Username,
		Email:    u.Email,
	}, nil
}

// Update changes the account's email and/or password after re-authenticating
// with the current password. A failed authentication surfaces as
// ErrUnauthorized; an email owned by another account as ErrEmailInUse.
// Returns the account's API key so callers can invalidate cached lookups.
func (m *Manager) Update(ctx context.Context, username, password string, changes Changes) (string, error) {
	u, err := m.Authenticate(ctx, username, password)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidCredential) {
			return "", ErrUnauthorized
		}
		return "", err
	}

	fields := map[string]interface{}{}
	if changes.Email != "" {
		taken, err := m.store.EmailTaken(ctx, changes.Email, username)
		if err != nil {
			return "", err
		}
		if taken {
			return "", ErrEmailInUse
		}
		fields["email"] = changes.Email
	}
	if changes.NewPassword != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(changes.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return "", fmt.Errorf("hash password: %w", err)
		}
		fields["password_hash"] = string(hashed)
	}
	if len(fields) == 0 {
		return "", errNoChanges
	}
	return u.APIKey, m.store.UpdateFields(ctx, username, fields)
}

// Delete removes the account irreversibly after re-authenticating. Returns
// the removed account's API key so callers can invalidate cached lookups.
func (m *Manager) Delete(ctx context.Context, username, password string) (string, error) {
	u, err := m.Authenticate(ctx, username, password)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidCredential) {
			return "", ErrUnauthorized
		}
		return "", err
	}
	return u.APIKey, m.store.Delete(ctx, username)
}
