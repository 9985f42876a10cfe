package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ctx = context.Background()

// draft TTL is a safety net so abandoned booking modals clean themselves up
const draftTTL = 30 * time.Minute

type Storage struct {
	client *redis.Client
}

func New(addr, password string, db int) *Storage {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &Storage{client: rdb}
}

func (s *Storage) Ping() error {
	return s.client.Ping(ctx).Err()
}

// ===== Sesiones =====

// SaveSession persists the session blob for a chat; no TTL, the token's own
// expiry decides when it stops being useful.
func (s *Storage) SaveSession(chatID int64, data []byte) error {
	key := fmt.Sprintf("session:%d", chatID)
	return s.client.Set(ctx, key, data, 0).Err()
}

// GetSession returns the stored session blob, or nil when there is none
func (s *Storage) GetSession(chatID int64) ([]byte, error) {
	key := fmt.Sprintf("session:%d", chatID)
	val, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(val), nil
}

func (s *Storage) DeleteSession(chatID int64) error {
	key := fmt.Sprintf("session:%d", chatID)
	return s.client.Del(ctx, key).Err()
}

// ===== Borradores de reserva =====

// SaveDraft stores the in-progress booking state for a chat
func (s *Storage) SaveDraft(chatID int64, draft any) error {
	key := fmt.Sprintf("draft:%d", chatID)
	data, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, draftTTL).Err()
}

func (s *Storage) GetDraft(chatID int64) ([]byte, error) {
	key := fmt.Sprintf("draft:%d", chatID)
	val, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(val), nil
}

func (s *Storage) DeleteDraft(chatID int64) error {
	key := fmt.Sprintf("draft:%d", chatID)
	return s.client.Del(ctx, key).Err()
}

// ===== Cache del catálogo =====

// SaveCanchas caches the facility catalog (TTL: 1 hour)
func (s *Storage) SaveCanchas(canchas any) error {
	data, err := json.Marshal(canchas)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, "cache:canchas", data, time.Hour).Err()
}

// GetCanchas returns the cached catalog, nil when the cache is cold
func (s *Storage) GetCanchas() ([]byte, error) {
	val, err := s.client.Get(ctx, "cache:canchas").Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(val), nil
}

// SaveProductos caches the product catalog (TTL: 1 hour)
func (s *Storage) SaveProductos(productos any) error {
	data, err := json.Marshal(productos)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, "cache:productos", data, time.Hour).Err()
}

func (s *Storage) GetProductos() ([]byte, error) {
	val, err := s.client.Get(ctx, "cache:productos").Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(val), nil
}

// InvalidateProductos drops the product cache after an admin mutation
func (s *Storage) InvalidateProductos() error {
	return s.client.Del(ctx, "cache:productos").Err()
}
