package profile

import (
	"context"
	"log"
	"sync"

	"cancha-bot/api"
	"cancha-bot/session"
	"cancha-bot/types"
)

// Manager keeps each chat's player profile. Every mutation adopts the
// refreshed resource the backend returns, so local state never diverges
// from the server.
type Manager struct {
	api      *api.Client
	sessions *session.Store

	mu       sync.Mutex
	perfiles map[int64]*types.PerfilJugador
}

func New(client *api.Client, sessions *session.Store) *Manager {
	return &Manager{
		api:      client,
		sessions: sessions,
		perfiles: make(map[int64]*types.PerfilJugador),
	}
}

// Load fetches the profile. Like the favorites reads, no session or a
// 401/403 yields "no profile, no error"; other failures keep the previous
// in-memory profile.
func (m *Manager) Load(ctx context.Context, chatID int64) (*types.PerfilJugador, error) {
	token := m.sessions.Token(chatID)
	if token == "" {
		m.apply(chatID, nil)
		return nil, nil
	}

	perfil, err := m.api.GetPerfil(ctx, token)
	if err != nil {
		if api.IsAuthError(err) {
			m.apply(chatID, nil)
			return nil, nil
		}
		log.Printf("⚠️ Error cargando perfil de chatID %d: %v", chatID, err)
		m.mu.Lock()
		prev := m.perfiles[chatID]
		m.mu.Unlock()
		return prev, err
	}

	m.apply(chatID, &perfil)
	return &perfil, nil
}

// Guardar creates or replaces the whole profile
func (m *Manager) Guardar(ctx context.Context, chatID int64, perfil types.PerfilJugador) (*types.PerfilJugador, error) {
	return m.mutate(chatID, func(token string) (types.PerfilJugador, error) {
		return m.api.GuardarPerfil(ctx, token, perfil)
	})
}

// AgregarDeporte adds a sport entry
func (m *Manager) AgregarDeporte(ctx context.Context, chatID int64, deporte types.DeporteJugador) (*types.PerfilJugador, error) {
	return m.mutate(chatID, func(token string) (types.PerfilJugador, error) {
		return m.api.AgregarDeporte(ctx, token, deporte)
	})
}

// ActualizarDeporte replaces the entry named deporteOriginal
func (m *Manager) ActualizarDeporte(ctx context.Context, chatID int64, deporteOriginal string, deporte types.DeporteJugador) (*types.PerfilJugador, error) {
	return m.mutate(chatID, func(token string) (types.PerfilJugador, error) {
		return m.api.ActualizarDeporte(ctx, token, deporteOriginal, deporte)
	})
}

// EliminarDeporte removes a sport entry
func (m *Manager) EliminarDeporte(ctx context.Context, chatID int64, deporte string) (*types.PerfilJugador, error) {
	return m.mutate(chatID, func(token string) (types.PerfilJugador, error) {
		return m.api.EliminarDeporte(ctx, token, deporte)
	})
}

// AgregarAdjetivo attaches an adjective
func (m *Manager) AgregarAdjetivo(ctx context.Context, chatID int64, adjetivo string) (*types.PerfilJugador, error) {
	return m.mutate(chatID, func(token string) (types.PerfilJugador, error) {
		return m.api.AgregarAdjetivo(ctx, token, adjetivo)
	})
}

// RemoverAdjetivo detaches an adjective
func (m *Manager) RemoverAdjetivo(ctx context.Context, chatID int64, adjetivo string) (*types.PerfilJugador, error) {
	return m.mutate(chatID, func(token string) (types.PerfilJugador, error) {
		return m.api.RemoverAdjetivo(ctx, token, adjetivo)
	})
}

// Perfil returns the last loaded profile without hitting the backend
func (m *Manager) Perfil(chatID int64) (*types.PerfilJugador, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.perfiles[chatID]
	return p, ok && p != nil
}

func (m *Manager) mutate(chatID int64, call func(token string) (types.PerfilJugador, error)) (*types.PerfilJugador, error) {
	token := m.sessions.Token(chatID)
	if token == "" {
		return nil, session.ErrNoSession
	}
	perfil, err := call(token)
	if err != nil {
		return nil, err
	}
	m.apply(chatID, &perfil)
	return &perfil, nil
}

func (m *Manager) apply(chatID int64, perfil *types.PerfilJugador) {
	m.mu.Lock()
	m.perfiles[chatID] = perfil
	m.mu.Unlock()
}
