package session

import (
	"errors"
	"testing"
	"time"

	"cancha-bot/api"
	"cancha-bot/types"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStorage struct {
	sessions map[int64][]byte
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{sessions: make(map[int64][]byte)}
}

func (f *fakeStorage) SaveSession(chatID int64, data []byte) error {
	f.sessions[chatID] = data
	return nil
}

func (f *fakeStorage) GetSession(chatID int64) ([]byte, error) {
	return f.sessions[chatID], nil
}

func (f *fakeStorage) DeleteSession(chatID int64) error {
	delete(f.sessions, chatID)
	return nil
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "1",
		"exp": exp.Unix(),
	})
	signed, err := token.SignedString([]byte("clave-de-prueba"))
	require.NoError(t, err)
	return signed
}

func TestSaveAndGet(t *testing.T) {
	store := New(newFakeStorage())
	user := types.Usuario{ID: 7, Nombre: "Ana", Email: "ana@test.io", Tipo: "jugador"}

	require.NoError(t, store.Save(42, "un-token", user))

	sess, err := store.Get(42)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "un-token", sess.Token)
	assert.Equal(t, user, sess.User)
	assert.Equal(t, "un-token", store.Token(42))
}

func TestGetWithoutSession(t *testing.T) {
	store := New(newFakeStorage())

	sess, err := store.Get(42)
	require.NoError(t, err)
	assert.Nil(t, sess)
	assert.Equal(t, "", store.Token(42))
}

func TestExpiredTokenIsDropped(t *testing.T) {
	storage := newFakeStorage()
	store := New(storage)
	expired := signedToken(t, time.Now().Add(-time.Hour))

	require.NoError(t, store.Save(42, expired, types.Usuario{ID: 7}))

	sess, err := store.Get(42)
	require.NoError(t, err)
	assert.Nil(t, sess)
	assert.Empty(t, storage.sessions, "expired session should be removed from storage")
}

func TestValidTokenSurvives(t *testing.T) {
	store := New(newFakeStorage())
	valid := signedToken(t, time.Now().Add(time.Hour))

	require.NoError(t, store.Save(42, valid, types.Usuario{ID: 7}))

	sess, err := store.Get(42)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, valid, sess.Token)
}

func TestOpaqueTokenIsNotExpired(t *testing.T) {
	// a token the JWT parser cannot read is left for the backend to judge
	store := New(newFakeStorage())
	require.NoError(t, store.Save(42, "token-opaco", types.Usuario{ID: 7}))

	assert.Equal(t, "token-opaco", store.Token(42))
}

func TestInvalidate(t *testing.T) {
	storage := newFakeStorage()
	store := New(storage)
	require.NoError(t, store.Save(42, "un-token", types.Usuario{ID: 7}))

	// a plain failure keeps the session
	assert.False(t, store.Invalidate(42, errors.New("timeout")))
	assert.Equal(t, "un-token", store.Token(42))

	// a 401 logs the chat out
	assert.True(t, store.Invalidate(42, &api.Error{Status: 401}))
	assert.Equal(t, "", store.Token(42))
}
