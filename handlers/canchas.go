package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"strconv"

	"cancha-bot/types"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// HandleCanchas lists the facility catalog with one row per cancha.
// The catalog is cached in redis for an hour.
func (h *Handler) HandleCanchas(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	canchas, err := h.loadCanchas(chatID)
	if err != nil {
		h.send(chatID, "⚠️ No pude cargar las canchas. Intentá de nuevo en un rato.")
		return
	}
	if len(canchas) == 0 {
		h.send(chatID, "🏟 No hay canchas disponibles por ahora.")
		return
	}

	// refresh the favorite set so the hearts are current
	ctx, cancel := reqCtx()
	h.Favoritos.Load(ctx, chatID)
	cancel()

	out := tgbotapi.NewMessage(chatID, "🏟 Elegí una cancha para reservar:")
	out.ReplyMarkup = h.buildCanchasKeyboard(chatID, canchas)
	h.Bot.Send(out)
}

func (h *Handler) loadCanchas(chatID int64) ([]types.Cancha, error) {
	if cached, err := h.Store.GetCanchas(); err == nil && cached != nil {
		var canchas []types.Cancha
		if json.Unmarshal(cached, &canchas) == nil {
			log.Printf("🏟 %d canchas desde cache", len(canchas))
			return canchas, nil
		}
	}

	ctx, cancel := reqCtx()
	defer cancel()
	canchas, err := h.API.ListCanchas(ctx, h.Sessions.Token(chatID))
	if err != nil {
		log.Printf("⚠️ Error cargando canchas: %v", err)
		return nil, err
	}
	if err := h.Store.SaveCanchas(canchas); err != nil {
		log.Printf("⚠️ No pude cachear las canchas: %v", err)
	}
	return canchas, nil
}

func (h *Handler) buildCanchasKeyboard(chatID int64, canchas []types.Cancha) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, cancha := range canchas {
		label := fmt.Sprintf("%s · %s · $%.0f/h", cancha.Nombre, cancha.Deporte, cancha.PrecioPorHora)
		pick := tgbotapi.NewInlineKeyboardButtonData(label, "cancha:"+strconv.FormatInt(cancha.ID, 10))

		heart := "🤍"
		if h.Favoritos.EsFavorito(chatID, cancha.ID) {
			heart = "❤️"
		}
		fav := tgbotapi.NewInlineKeyboardButtonData(heart, "fav:"+strconv.FormatInt(cancha.ID, 10))

		rows = append(rows, tgbotapi.NewInlineKeyboardRow(pick, fav))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// HandleCanchaSelect opens the booking workflow for the chosen cancha
func (h *Handler) HandleCanchaSelect(cq *tgbotapi.CallbackQuery, rawID string) {
	chatID := cq.Message.Chat.ID

	canchaID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		h.answer(cq, "Cancha inválida")
		return
	}

	cancha, ok := h.findCancha(chatID, canchaID)
	if !ok {
		h.answer(cq, "Cancha no encontrada")
		return
	}

	ctx, cancel := reqCtx()
	wf := h.Booking.Open(ctx, chatID, cancha)
	cancel()
	h.answer(cq, "")

	text := fmt.Sprintf("🏟 %s\n%s · %s\n💵 $%.0f por hora\n\n"+
		"🕐 Horario: %s - %s\n⏱ Turnos de %d minutos\n\n📅 Elegí una fecha:",
		cancha.Nombre, cancha.Deporte, cancha.Ubicacion, cancha.PrecioPorHora,
		wf.Config.HoraApertura, wf.Config.HoraCierre, wf.Config.DuracionTurnoMinutos)

	out := tgbotapi.NewMessage(chatID, text)
	out.ReplyMarkup = h.buildFechasKeyboard(chatID)
	h.Bot.Send(out)
}

func (h *Handler) findCancha(chatID, canchaID int64) (types.Cancha, bool) {
	canchas, err := h.loadCanchas(chatID)
	if err == nil {
		for _, c := range canchas {
			if c.ID == canchaID {
				return c, true
			}
		}
	}

	ctx, cancel := reqCtx()
	defer cancel()
	cancha, err := h.API.GetCancha(ctx, h.Sessions.Token(chatID), canchaID)
	if err != nil {
		log.Printf("⚠️ Error cargando cancha %d: %v", canchaID, err)
		return types.Cancha{}, false
	}
	return cancha, true
}

// buildFechasKeyboard offers the next two weeks, filtered by the cancha's
// operating days, three dates per row
func (h *Handler) buildFechasKeyboard(chatID int64) tgbotapi.InlineKeyboardMarkup {
	fechas := h.Booking.AvailableDates(chatID, 14)

	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, fecha := range fechas {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(fecha, "fecha:"+fecha))
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
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
