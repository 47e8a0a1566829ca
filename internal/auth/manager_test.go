package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ayush/vision-assist/internal/models"
)

// fakeStore is an in-memory UserStore mirroring the MongoDB unique-index
// behavior on username and email.
type fakeStore struct {
	users map[string]*models.User // keyed by username
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: map[string]*models.User{}}
}

func (s *fakeStore) Insert(ctx context.Context, u *models.User) error {
	for _, existing := range s.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return ErrDuplicateUser
		}
	}
	cp := *u
	cp.ID = primitive.NewObjectID()
	s.users[u.Username] = &cp
	return nil
}

func (s *fakeStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	u, ok := s.users[username]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *fakeStore) GetByAPIKey(ctx context.Context, key string) (*models.User, error) {
	for _, u := range s.users {
		if u.APIKey == key {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *fakeStore) EmailTaken(ctx context.Context, email, exceptUsername string) (bool, error) {
	for _, u := range s.users {
		if u.Email == email && u.Username != exceptUsername {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) UpdateFields(ctx context.Context, username string, fields map[string]interface{}) error {
	u, ok := s.users[username]
	if !ok {
		return ErrNotFound
	}
	if v, ok := fields["email"]; ok {
		u.Email = v.(string)
	}
	if v, ok := fields["password_hash"]; ok {
		u.PasswordHash = v.(string)
	}
	return nil
}

func (s *fakeStore) SetLastLogin(ctx context.Context, username string, t time.Time) error {
	u, ok := s.users[username]
	if !ok {
		return ErrNotFound
	}
	u.LastLogin = &t
	return nil
}

func (s *fakeStore) Delete(ctx context.Context, username string) error {
	if _, ok := s.users[username]; !ok {
		return ErrNotFound
	}
	delete(s.users, username)
	return nil
}

func newTestManager() (*Manager, *fakeStore) {
	store := newFakeStore()
	return NewManager(store, "test_secret"), store
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager()

	key, err := m.Register(ctx, "alice", "a@example.com", "pw1")
	require.NoError(t, err)
	require.NotEmpty(t, key)

	u := store.users["alice"]
	require.NotNil(t, u)
	require.Equal(t, "a@example.com", u.Email)
	require.Equal(t, key, u.APIKey)
	require.NotEqual(t, "pw1", u.PasswordHash, "plaintext must never be stored")
	require.Nil(t, u.LastLogin)

	t.Run("duplicate username", func(t *testing.T) {
		_, err := m.Register(ctx, "alice", "other@example.com", "pw2")
		require.ErrorIs(t, err, ErrDuplicateUser)
	})

	t.Run("duplicate email under different username", func(t *testing.T) {
		_, err := m.Register(ctx, "bob", "a@example.com", "pw2")
		require.ErrorIs(t, err, ErrDuplicateUser)
	})
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager()

	key, err := m.Register(ctx, "alice", "a@example.com", "pw1")
	require.NoError(t, err)

	t.Run("wrong password leaves last_login unchanged", func(t *testing.T) {
		_, err := m.Authenticate(ctx, "alice", "wrong")
		require.ErrorIs(t, err, ErrInvalidCredential)
		require.Nil(t, store.users["alice"].LastLogin)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := m.Authenticate(ctx, "nobody", "pw1")
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("success updates last_login and returns existing key", func(t *testing.T) {
		u, err := m.Authenticate(ctx, "alice", "pw1")
		require.NoError(t, err)
		require.Equal(t, key, u.APIKey)
		require.Equal(t, "a@example.com", u.Email)
		require.NotNil(t, store.users["alice"].LastLogin)
	})
}

func TestValidateAPIKey(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager()

	key, err := m.Register(ctx, "alice", "a@example.com", "pw1")
	require.NoError(t, err)

	t.Run("issued key resolves to its owner", func(t *testing.T) {
		id, err := m.ValidateAPIKey(ctx, key)
		require.NoError(t, err)
		require.Equal(t, "alice", id.Username)
		require.Equal(t, "a@example.com", id.Email)
		require.Equal(t, store.users["alice"].ID.Hex(), id.UserID)
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := m.ValidateAPIKey(ctx, "not-a-key")
		require.ErrorIs(t, err, ErrInvalidKey)
	})

	t.Run("empty key", func(t *testing.T) {
		_, err := m.ValidateAPIKey(ctx, "")
		require.ErrorIs(t, err, ErrInvalidKey)
	})
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager()

	_, err := m.Register(ctx, "alice", "a@example.com", "pw1")
	require.NoError(t, err)
	_, err = m.Register(ctx, "bob", "b@example.com", "pw2")
	require.NoError(t, err)

	t.Run("wrong password", func(t *testing.T) {
		_, err := m.Update(ctx, "alice", "wrong", Changes{Email: "new@example.com"})
		require.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("email owned by another user leaves record unmodified", func(t *testing.T) {
		_, err := m.Update(ctx, "alice", "pw1", Changes{Email: "b@example.com"})
		require.ErrorIs(t, err, ErrEmailInUse)
		require.Equal(t, "a@example.com", store.users["alice"].Email)
	})

	t.Run("no fields", func(t *testing.T) {
		_, err := m.Update(ctx, "alice", "pw1", Changes{})
		require.ErrorIs(t, err, errNoChanges)
	})

	t.Run("change email", func(t *testing.T) {
		_, err := m.Update(ctx, "alice", "pw1", Changes{Email: "alice2@example.com"})
		require.NoError(t, err)
		require.Equal(t, "alice2@example.com", store.users["alice"].Email)
	})

	t.Run("change password rehashes", func(t *testing.T) {
		_, err := m.Update(ctx, "alice", "pw1", Changes{NewPassword: "pw9"})
		require.NoError(t, err)

		_, err = m.Authenticate(ctx, "alice", "pw1")
		require.ErrorIs(t, err, ErrInvalidCredential)
		_, err = m.Authenticate(ctx, "alice", "pw9")
		require.NoError(t, err)
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager()

	key, err := m.Register(ctx, "alice", "a@example.com", "pw1")
	require.NoError(t, err)

	t.Run("wrong password", func(t *testing.T) {
		_, err := m.Delete(ctx, "alice", "wrong")
		require.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("removes the record irreversibly", func(t *testing.T) {
		gone, err := m.Delete(ctx, "alice", "pw1")
		require.NoError(t, err)
		require.Equal(t, key, gone)

		_, err = m.Authenticate(ctx, "alice", "pw1")
		require.ErrorIs(t, err, ErrNotFound)

		_, err = m.ValidateAPIKey(ctx, key)
		require.ErrorIs(t, err, ErrInvalidKey)
	})
}

func TestEndToEnd(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager()

	key, err := m.Register(ctx, "alice", "a@example.com", "pw1")
	require.NoError(t, err)

	id, err := m.ValidateAPIKey(ctx, key)
	require.NoError(t, err)
	require.Equal(t, "alice", id.Username)

	_, err = m.Register(ctx, "alice", "a2@example.com", "pw1")
	require.ErrorIs(t, err, ErrDuplicateUser)

	_, err = m.Authenticate(ctx, "alice", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredential)

	u, err := m.Authenticate(ctx, "alice", "pw1")
	require.NoError(t, err)
	require.Equal(t, key, u.APIKey, "key is fixed for the account's lifetime")
}
