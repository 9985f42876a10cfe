package handlers

import (
	"context"
	"sync"
	"time"

	"cancha-bot/api"
	"cancha-bot/booking"
	"cancha-bot/favorites"
	"cancha-bot/profile"
	"cancha-bot/session"
	"cancha-bot/storage"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// pending input modes: what the next plain-text message of a chat means
const (
	pendingNone     = ""
	pendingLogin    = "login"
	pendingRegister = "registrar"
	pendingContacto = "contacto"
	pendingHoras    = "horas"
	pendingDeporte  = "deporte"
	pendingAdjetivo = "adjetivo"
	pendingProducto = "producto"
)

type Handler struct {
	Bot       *tgbotapi.BotAPI
	API       *api.Client
	Store     *storage.Storage
	Sessions  *session.Store
	Booking   *booking.Controller
	Favoritos *favorites.Manager
	Perfil    *profile.Manager

	// pending is touched by the update loop and by the slot-load
	// goroutines (through onSlotsLoaded), so access goes through mu
	mu      sync.Mutex
	pending map[int64]string
}

func New(bot *tgbotapi.BotAPI, client *api.Client, store *storage.Storage,
	sessions *session.Store, controller *booking.Controller,
	favoritos *favorites.Manager, perfil *profile.Manager) *Handler {

	h := &Handler{
		Bot:       bot,
		API:       client,
		Store:     store,
		Sessions:  sessions,
		Booking:   controller,
		Favoritos: favoritos,
		Perfil:    perfil,
		pending:   make(map[int64]string),
	}
	// async slot loads come back through here
	controller.OnSlots = h.onSlotsLoaded
	return h
}

// reqCtx bounds every backend exchange triggered by one update
func reqCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 20*time.Second)
}

func (h *Handler) send(chatID int64, text string) {
	h.Bot.Send(tgbotapi.NewMessage(chatID, text))
}

func (h *Handler) answer(cq *tgbotapi.CallbackQuery, text string) {
	h.Bot.Request(tgbotapi.NewCallback(cq.ID, text))
}

func (h *Handler) setPending(chatID int64, mode string) {
	h.mu.Lock()
	h.pending[chatID] = mode
	h.mu.Unlock()
}

// takePending consumes the chat's input mode: the next plain-text message
// is interpreted exactly once
func (h *Handler) takePending(chatID int64) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	mode := h.pending[chatID]
	delete(h.pending, chatID)
	return mode
}

func (h *Handler) clearPending(chatID int64) {
	h.mu.Lock()
	delete(h.pending, chatID)
	h.mu.Unlock()
}
