package handlers

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"cancha-bot/booking"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// HandleFecha stores the picked date; the slot list arrives asynchronously
// through onSlotsLoaded once the backend answers.
func (h *Handler) HandleFecha(cq *tgbotapi.CallbackQuery, fecha string) {
	chatID := cq.Message.Chat.ID

	wf, err := h.Booking.SetFecha(chatID, fecha)
	if err != nil {
		h.answer(cq, "")
		h.send(chatID, err.Error())
		return
	}
	h.answer(cq, "")

	if wf.State == booking.StateSlotsLoading {
		h.send(chatID, "⏳ Cargando horarios disponibles...")
	}
}

// onSlotsLoaded renders the slot list once a (non-stale) load applies
func (h *Handler) onSlotsLoaded(chatID int64, wf booking.Workflow) {
	if len(wf.Slots) == 0 {
		h.send(chatID, "😕 No hay horarios disponibles para esa fecha.\n\n"+
			"Elegí otra fecha, o mandá un horario manual así: 19:00 20:30")
		h.setPending(chatID, pendingHoras)
		return
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for i, slot := range wf.Slots {
		label := slot.HoraInicio + " - " + slot.HoraFin
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, "slot:"+strconv.Itoa(i)))
		if len(row) == 3 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("❌ Cancelar", "reserva_cerrar")))

	out := tgbotapi.NewMessage(chatID, fmt.Sprintf(
		"🕐 Horarios disponibles para el %s:\n\n💡 También podés mandar un horario manual así: 19:00 20:30",
		wf.Draft.Fecha))
	out.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	h.Bot.Send(out)
	h.setPending(chatID, pendingHoras)
}

// HandleSlotSelect adopts a rendered slot into the draft
func (h *Handler) HandleSlotSelect(cq *tgbotapi.CallbackQuery, rawIdx string) {
	chatID := cq.Message.Chat.ID

	idx, err := strconv.Atoi(rawIdx)
	if err != nil {
		h.answer(cq, "Horario inválido")
		return
	}
	wf, err := h.Booking.SelectSlot(chatID, idx)
	if err != nil {
		h.answer(cq, err.Error())
		return
	}
	h.answer(cq, "Horario elegido")
	h.clearPending(chatID)
	h.askContacto(chatID, wf)
}

// doHoras parses a manually typed "HH:MM HH:MM" time range
func (h *Handler) doHoras(chatID int64, input string) {
	parts := strings.Fields(input)
	if len(parts) != 2 || !strings.Contains(parts[0], ":") || !strings.Contains(parts[1], ":") {
		h.setPending(chatID, pendingHoras)
		h.send(chatID, "⚠️ Formato inválido. Mandá inicio y fin así: 19:00 20:30")
		return
	}
	wf, err := h.Booking.SetHoras(chatID, parts[0], parts[1])
	if err != nil {
		h.send(chatID, err.Error())
		return
	}
	h.askContacto(chatID, wf)
}

func (h *Handler) askContacto(chatID int64, wf booking.Workflow) {
	if wf.Draft.NombreJugador != "" && wf.Draft.Telefono != "" {
		h.sendResumen(chatID, wf)
		return
	}
	h.setPending(chatID, pendingContacto)
	h.send(chatID, "👤 Mandame el nombre del jugador y un teléfono separados por punto y coma:\n\nJuan Pérez; 555-1234")
}

func (h *Handler) doContacto(chatID int64, input string) {
	parts := strings.Split(input, ";")
	if len(parts) != 2 {
		h.setPending(chatID, pendingContacto)
		h.send(chatID, "⚠️ Formato inválido. Mandá: Nombre; teléfono")
		return
	}
	wf, err := h.Booking.SetContacto(chatID, strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]))
	if err != nil {
		h.send(chatID, err.Error())
		return
	}
	h.sendResumen(chatID, wf)
}

// sendResumen shows the draft with the verify/submit buttons
func (h *Handler) sendResumen(chatID int64, wf booking.Workflow) {
	var b strings.Builder
	fmt.Fprintf(&b, "📋 Tu reserva:\n\n")
	fmt.Fprintf(&b, "🏟 %s\n", wf.Cancha.Nombre)
	fmt.Fprintf(&b, "📅 %s  ⏰ %s - %s\n", wf.Draft.Fecha, wf.Draft.HoraInicio, wf.Draft.HoraFin)
	fmt.Fprintf(&b, "👤 %s  📞 %s\n", wf.Draft.NombreJugador, wf.Draft.Telefono)
	if total := wf.Total(); total > 0 {
		fmt.Fprintf(&b, "💰 Total estimado: $%.2f\n", total)
	}

	switch wf.State {
	case booking.StateConfirmed:
		b.WriteString("\n✅ Horario disponible")
	case booking.StateRejected:
		b.WriteString("\n❌ Horario no disponible")
	default:
		b.WriteString("\n🔍 Verificá la disponibilidad antes de reservar")
	}
	if wf.ErrorMsg != "" {
		fmt.Fprintf(&b, "\n⚠️ %s", wf.ErrorMsg)
	}

	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔍 Verificar disponibilidad", "verificar")),
	}
	if wf.State == booking.StateConfirmed {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💳 Reservar y Pagar", "reservar")))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("❌ Cancelar", "reserva_cerrar")))

	out := tgbotapi.NewMessage(chatID, b.String())
	out.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	h.Bot.Send(out)
}

// HandleVerificar runs the explicit availability re-check
func (h *Handler) HandleVerificar(cq *tgbotapi.CallbackQuery) {
	chatID := cq.Message.Chat.ID
	h.answer(cq, "Verificando...")

	ctx, cancel := reqCtx()
	defer cancel()
	wf, err := h.Booking.Verify(ctx, chatID)
	if err != nil {
		h.send(chatID, "⚠️ "+err.Error())
		return
	}
	h.sendResumen(chatID, wf)
}

// HandleReservar submits the reservation and hands out the payment link
func (h *Handler) HandleReservar(cq *tgbotapi.CallbackQuery) {
	chatID := cq.Message.Chat.ID
	h.answer(cq, "")

	ctx, cancel := reqCtx()
	defer cancel()
	pagoURL, err := h.Booking.Submit(ctx, chatID)
	if err != nil {
		if errors.Is(err, booking.ErrNoSession) {
			h.setPending(chatID, pendingLogin)
			h.send(chatID, "🔐 Necesitás iniciar sesión para reservar.\n\nMandame tu email y contraseña separados por un espacio:")
			return
		}
		log.Printf("⚠️ Reserva fallida para chatID %d: %v", chatID, err)
		h.send(chatID, "❌ "+err.Error())
		return
	}

	h.send(chatID, "🎉 ¡Reserva creada!\n\n💳 Pagala acá para confirmarla:\n"+pagoURL)
}

// HandleReservaCerrar abandons the booking session
func (h *Handler) HandleReservaCerrar(cq *tgbotapi.CallbackQuery) {
	chatID := cq.Message.Chat.ID
	h.Booking.Close(chatID)
	h.clearPending(chatID)
	h.answer(cq, "Reserva cancelada")
	h.send(chatID, "❌ Reserva cancelada. Usá /canchas para empezar de nuevo.")
}
