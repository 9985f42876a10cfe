package favorites

import (
	"context"
	"log"
	"sync"

	"cancha-bot/api"
	"cancha-bot/session"
	"cancha-bot/types"
)

// Manager keeps each chat's favorite canchas. Every mutation goes
// mutate-then-full-reload against the backend: the server list is the only
// authority, local state is never patched incrementally.
type Manager struct {
	api      *api.Client
	sessions *session.Store

	mu    sync.Mutex
	lists map[int64][]types.Favorito
	ids   map[int64]map[int64]bool // chatID -> set of favorited cancha ids
}

func New(client *api.Client, sessions *session.Store) *Manager {
	return &Manager{
		api:      client,
		sessions: sessions,
		lists:    make(map[int64][]types.Favorito),
		ids:      make(map[int64]map[int64]bool),
	}
}

// Load fetches the authoritative list. No session, or a 401/403 from the
// backend, means "no favorites" rather than a failure; any other error
// leaves the previously loaded list untouched.
func (m *Manager) Load(ctx context.Context, chatID int64) ([]types.Favorito, error) {
	token := m.sessions.Token(chatID)
	if token == "" {
		m.apply(chatID, nil)
		return nil, nil
	}

	favoritos, err := m.api.ListFavoritos(ctx, token)
	if err != nil {
		if api.IsAuthError(err) {
			m.apply(chatID, nil)
			return nil, nil
		}
		log.Printf("⚠️ Error cargando favoritos de chatID %d: %v", chatID, err)
		m.mu.Lock()
		prev := m.lists[chatID]
		m.mu.Unlock()
		return prev, err
	}

	m.apply(chatID, favoritos)
	return favoritos, nil
}

// Toggle favorites/unfavorites a cancha and reloads the canonical list.
// Returns whether the cancha ended up favorited.
func (m *Manager) Toggle(ctx context.Context, chatID, canchaID int64) (bool, error) {
	token := m.sessions.Token(chatID)
	if token == "" {
		return false, session.ErrNoSession
	}

	var err error
	adding := !m.EsFavorito(chatID, canchaID)
	if adding {
		err = m.api.AgregarFavorito(ctx, token, canchaID, "")
	} else {
		err = m.api.RemoverFavorito(ctx, token, canchaID)
	}
	if err != nil {
		return !adding, err
	}

	if _, err := m.Load(ctx, chatID); err != nil {
		return adding, err
	}
	return adding, nil
}

// ActualizarNotas replaces a favorite's notes, then reloads
func (m *Manager) ActualizarNotas(ctx context.Context, chatID, canchaID int64, notas string) error {
	token := m.sessions.Token(chatID)
	if token == "" {
		return session.ErrNoSession
	}
	if err := m.api.ActualizarNotas(ctx, token, canchaID, notas); err != nil {
		return err
	}
	_, err := m.Load(ctx, chatID)
	return err
}

// EsFavorito is the derived fast-membership check; it reflects only the
// most recently reloaded list.
func (m *Manager) EsFavorito(chatID, canchaID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ids[chatID][canchaID]
}

// List returns the last loaded list without hitting the backend
func (m *Manager) List(chatID int64) []types.Favorito {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lists[chatID]
}

func (m *Manager) apply(chatID int64, favoritos []types.Favorito) {
	set := make(map[int64]bool, len(favoritos))
	for _, f := range favoritos {
		set[f.Cancha.ID] = true
	}
	m.mu.Lock()
	m.lists[chatID] = favoritos
	m.ids[chatID] = set
	m.mu.Unlock()
}
