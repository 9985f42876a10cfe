package handlers

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"cancha-bot/session"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// HandleFavoritos shows the user's favorite canchas
func (h *Handler) HandleFavoritos(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	ctx, cancel := reqCtx()
	defer cancel()
	favoritos, err := h.Favoritos.Load(ctx, chatID)
	if err != nil {
		h.send(chatID, "⚠️ No pude cargar tus favoritos.")
		return
	}
	if len(favoritos) == 0 {
		h.send(chatID, "🤍 No tenés favoritos todavía.\n\nMarcá canchas con el corazón en /canchas.")
		return
	}

	var b strings.Builder
	b.WriteString("❤️ Tus canchas favoritas:\n\n")
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, f := range favoritos {
		fmt.Fprintf(&b, "• %s · %s · $%.0f/h\n", f.Cancha.Nombre, f.Cancha.Deporte, f.Cancha.PrecioPorHora)
		if f.Notas != "" {
			fmt.Fprintf(&b, "  📝 %s\n", f.Notas)
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏟 Reservar "+f.Cancha.Nombre,
				"cancha:"+strconv.FormatInt(f.Cancha.ID, 10)),
			tgbotapi.NewInlineKeyboardButtonData("💔",
				"fav:"+strconv.FormatInt(f.Cancha.ID, 10))))
	}

	out := tgbotapi.NewMessage(chatID, b.String())
	out.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	h.Bot.Send(out)
}

// HandleFavToggle flips the favorite state of a cancha and reloads the list
func (h *Handler) HandleFavToggle(cq *tgbotapi.CallbackQuery, rawID string) {
	chatID := cq.Message.Chat.ID

	canchaID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		h.answer(cq, "Cancha inválida")
		return
	}

	ctx, cancel := reqCtx()
	defer cancel()
	added, err := h.Favoritos.Toggle(ctx, chatID, canchaID)
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			h.answer(cq, "Necesitás iniciar sesión")
			h.send(chatID, "🔐 Iniciá sesión con /login para guardar favoritos.")
			return
		}
		log.Printf("⚠️ Error togglando favorito %d de chatID %d: %v", canchaID, chatID, err)
		h.answer(cq, "No se pudo actualizar")
		return
	}

	if added {
		h.answer(cq, "❤️ Agregada a favoritos")
	} else {
		h.answer(cq, "💔 Quitada de favoritos")
	}
}
