package session

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"cancha-bot/api"
	"cancha-bot/types"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoSession marks operations that need a logged-in chat
var ErrNoSession = errors.New("Debés iniciar sesión con /login para usar esta función")

// Session is the authenticated identity of one chat
type Session struct {
	Token string        `json:"token"`
	User  types.Usuario `json:"user"`
}

// Storage interface para evitar dependencia directa del paquete storage
type Storage interface {
	SaveSession(chatID int64, data []byte) error
	GetSession(chatID int64) ([]byte, error)
	DeleteSession(chatID int64) error
}

// Store holds the bearer token and user identity per chat, persisted so a
// bot restart does not log everyone out. The token is mutated only by
// login/logout/invalidation; everything else just reads it.
type Store struct {
	storage Storage
}

func New(storage Storage) *Store {
	return &Store{storage: storage}
}

// Save records a fresh login
func (s *Store) Save(chatID int64, token string, user types.Usuario) error {
	data, err := json.Marshal(&Session{Token: token, User: user})
	if err != nil {
		return err
	}
	return s.storage.SaveSession(chatID, data)
}

// Get returns the current session, or nil when the chat is not logged in.
// A token whose exp claim already passed counts as no session and is
// dropped from storage.
func (s *Store) Get(chatID int64) (*Session, error) {
	data, err := s.storage.GetSession(chatID)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, err
	}
	if sess.Token == "" {
		return nil, nil
	}

	if tokenExpired(sess.Token) {
		log.Printf("🔐 Token expirado para chatID %d, cerrando sesión", chatID)
		_ = s.storage.DeleteSession(chatID)
		return nil, nil
	}
	return &sess, nil
}

// Token is a read-only convenience: the bearer token or "" when absent.
// Absence is a valid state, calls just go out unauthenticated.
func (s *Store) Token(chatID int64) string {
	sess, err := s.Get(chatID)
	if err != nil || sess == nil {
		return ""
	}
	return sess.Token
}

// Delete logs the chat out
func (s *Store) Delete(chatID int64) error {
	return s.storage.DeleteSession(chatID)
}

// Invalidate drops the session when the backend rejected its token.
// Returns true when a 401/403 actually caused a logout.
func (s *Store) Invalidate(chatID int64, err error) bool {
	if !api.IsAuthError(err) {
		return false
	}
	if delErr := s.storage.DeleteSession(chatID); delErr != nil {
		log.Printf("⚠️ No se pudo eliminar la sesión de chatID %d: %v", chatID, delErr)
	}
	return true
}

// tokenExpired decodes the exp claim without verifying the signature;
// the backend remains the authority, this only avoids a doomed request.
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
