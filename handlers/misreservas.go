package handlers

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// HandleMisReservas lists the user's reservations with a cancel button each
func (h *Handler) HandleMisReservas(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	token := h.Sessions.Token(chatID)
	if token == "" {
		h.send(chatID, "🔐 Iniciá sesión con /login para ver tus reservas.")
		return
	}

	ctx, cancel := reqCtx()
	defer cancel()
	reservas, err := h.API.ListMisReservas(ctx, token)
	if err != nil {
		if h.Sessions.Invalidate(chatID, err) {
			h.send(chatID, "🔐 Tu sesión expiró. Iniciá sesión de nuevo con /login")
			return
		}
		log.Printf("⚠️ Error cargando reservas de chatID %d: %v", chatID, err)
		h.send(chatID, "⚠️ No pude cargar tus reservas.")
		return
	}
	if len(reservas) == 0 {
		h.send(chatID, "📭 No tenés reservas todavía. Usá /canchas para hacer una.")
		return
	}

	var b strings.Builder
	b.WriteString("📋 Tus reservas:\n\n")
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, r := range reservas {
		nombre := r.Cancha.Nombre
		if nombre == "" {
			nombre = fmt.Sprintf("Cancha %d", r.CanchaID)
		}
		fmt.Fprintf(&b, "• %s\n  %s → %s (%s)\n", nombre, r.FechaInicio, r.FechaFin, r.Estado)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				"🗑 Cancelar "+nombre, "reserva_cancelar:"+strconv.FormatInt(r.ID, 10))))
	}

	out := tgbotapi.NewMessage(chatID, b.String())
	out.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	h.Bot.Send(out)
}

// HandleReservaCancelar cancels an existing reservation
func (h *Handler) HandleReservaCancelar(cq *tgbotapi.CallbackQuery, rawID string) {
	chatID := cq.Message.Chat.ID

	reservaID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		h.answer(cq, "Reserva inválida")
		return
	}

	token := h.Sessions.Token(chatID)
	if token == "" {
		h.answer(cq, "Sesión expirada")
		h.send(chatID, "🔐 Iniciá sesión de nuevo con /login")
		return
	}

	ctx, cancel := reqCtx()
	defer cancel()
	if err := h.API.CancelReserva(ctx, token, reservaID); err != nil {
		log.Printf("⚠️ Error cancelando reserva %d: %v", reservaID, err)
		h.answer(cq, "No se pudo cancelar")
		h.send(chatID, "❌ No pude cancelar la reserva.")
		return
	}
	h.answer(cq, "Reserva cancelada")
	h.send(chatID, "✅ Reserva cancelada.")
}
