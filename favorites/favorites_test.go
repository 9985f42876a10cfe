package favorites

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"cancha-bot/api"
	"cancha-bot/session"
	"cancha-bot/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSessionStorage struct {
	sessions map[int64][]byte
}

func (f *fakeSessionStorage) SaveSession(chatID int64, data []byte) error {
	f.sessions[chatID] = data
	return nil
}

func (f *fakeSessionStorage) GetSession(chatID int64) ([]byte, error) {
	return f.sessions[chatID], nil
}

func (f *fakeSessionStorage) DeleteSession(chatID int64) error {
	delete(f.sessions, chatID)
	return nil
}

// favoritosBackend keeps a server-side favorite set so the tests exercise
// the mutate-then-reload contract end to end
type favoritosBackend struct {
	mu        sync.Mutex
	favoritos map[int64]types.Favorito
}

func (b *favoritosBackend) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()

		switch {
		case r.URL.Path == "/api/favoritos/mis-favoritos":
			list := make([]types.Favorito, 0, len(b.favoritos))
			for _, f := range b.favoritos {
				list = append(list, f)
			}
			json.NewEncoder(w).Encode(map[string]any{"success": true, "favoritos": list})

		case r.URL.Path == "/api/favoritos/agregar" && r.Method == http.MethodPost:
			var body struct {
				CanchaID int64  `json:"canchaId"`
				Notas    string `json:"notas"`
			}
			json.NewDecoder(r.Body).Decode(&body)
			b.favoritos[body.CanchaID] = types.Favorito{
				ID:     body.CanchaID,
				Cancha: types.Cancha{ID: body.CanchaID, Nombre: fmt.Sprintf("Cancha %d", body.CanchaID)},
				Notas:  body.Notas,
			}
			w.Write([]byte(`{"success":true}`))

		case strings.HasPrefix(r.URL.Path, "/api/favoritos/remover/") && r.Method == http.MethodDelete:
			id, _ := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/api/favoritos/remover/"), 10, 64)
			delete(b.favoritos, id)
			w.Write([]byte(`{"success":true}`))

		default:
			http.NotFound(w, r)
		}
	}
}

func newManager(t *testing.T, handler http.Handler) (*Manager, *session.Store) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	sessions := session.New(&fakeSessionStorage{sessions: make(map[int64][]byte)})
	return New(api.New(server.URL), sessions), sessions
}

func TestLoadWithoutSessionIsEmpty(t *testing.T) {
	backend := &favoritosBackend{favoritos: map[int64]types.Favorito{1: {ID: 1}}}
	m, _ := newManager(t, backend.handler())

	favoritos, err := m.Load(context.Background(), 42)
	require.NoError(t, err)
	assert.Empty(t, favoritos)
}

func TestLoadAuthErrorIsEmptyNotFailure(t *testing.T) {
	m, sessions := newManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Token inválido"}`, http.StatusUnauthorized)
	}))
	require.NoError(t, sessions.Save(42, "tok-viejo", types.Usuario{ID: 7}))

	favoritos, err := m.Load(context.Background(), 42)
	require.NoError(t, err, "a rejected token reads as no favorites")
	assert.Empty(t, favoritos)
}

func TestLoadFailureKeepsPreviousList(t *testing.T) {
	var fail bool
	backend := &favoritosBackend{favoritos: map[int64]types.Favorito{
		1: {ID: 1, Cancha: types.Cancha{ID: 1, Nombre: "Cancha 1"}},
	}}
	base := backend.handler()
	m, sessions := newManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		base(w, r)
	}))
	require.NoError(t, sessions.Save(42, "tok", types.Usuario{ID: 7}))

	first, err := m.Load(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, first, 1)

	fail = true
	stale, err := m.Load(context.Background(), 42)
	require.Error(t, err)
	assert.Len(t, stale, 1, "a transient failure keeps the last good list")
	assert.True(t, m.EsFavorito(42, 1))
}

func TestToggleAddsAndRemoves(t *testing.T) {
	backend := &favoritosBackend{favoritos: make(map[int64]types.Favorito)}
	m, sessions := newManager(t, backend.handler())
	require.NoError(t, sessions.Save(42, "tok", types.Usuario{ID: 7}))

	added, err := m.Toggle(context.Background(), 42, 5)
	require.NoError(t, err)
	assert.True(t, added)
	assert.True(t, m.EsFavorito(42, 5))
	assert.Len(t, m.List(42), 1)

	added, err = m.Toggle(context.Background(), 42, 5)
	require.NoError(t, err)
	assert.False(t, added)
	assert.False(t, m.EsFavorito(42, 5))
	assert.Empty(t, m.List(42))
}

func TestToggleWithoutSession(t *testing.T) {
	backend := &favoritosBackend{favoritos: make(map[int64]types.Favorito)}
	m, _ := newManager(t, backend.handler())

	_, err := m.Toggle(context.Background(), 42, 5)
	assert.ErrorIs(t, err, session.ErrNoSession)
}

func TestMembershipReflectsLatestReload(t *testing.T) {
	backend := &favoritosBackend{favoritos: make(map[int64]types.Favorito)}
	m, sessions := newManager(t, backend.handler())
	require.NoError(t, sessions.Save(42, "tok", types.Usuario{ID: 7}))

	_, err := m.Toggle(context.Background(), 42, 5)
	require.NoError(t, err)

	// another client removed it server-side; a reload must notice
	backend.mu.Lock()
	delete(backend.favoritos, 5)
	backend.mu.Unlock()

	_, err = m.Load(context.Background(), 42)
	require.NoError(t, err)
	assert.False(t, m.EsFavorito(42, 5))
}
