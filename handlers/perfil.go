package handlers

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"cancha-bot/types"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// HandlePerfil shows the player profile with edit buttons
func (h *Handler) HandlePerfil(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	if h.Sessions.Token(chatID) == "" {
		h.send(chatID, "🔐 Iniciá sesión con /login para ver tu perfil.")
		return
	}

	ctx, cancel := reqCtx()
	defer cancel()
	perfil, err := h.Perfil.Load(ctx, chatID)
	if err != nil {
		h.send(chatID, "⚠️ No pude cargar tu perfil.")
		return
	}

	var b strings.Builder
	if perfil == nil {
		b.WriteString("🙋 Todavía no tenés perfil de jugador.\n\nAgregá un deporte para crearlo:")
	} else {
		fmt.Fprintf(&b, "🙋 Perfil de %s\n", perfil.Nombre)
		if perfil.Bio != "" {
			fmt.Fprintf(&b, "📖 %s\n", perfil.Bio)
		}
		if len(perfil.Deportes) > 0 {
			b.WriteString("\n🏅 Deportes:\n")
			for _, d := range perfil.Deportes {
				fmt.Fprintf(&b, "• %s — %.1f pts, %s, %d años, nivel %s\n",
					d.Deporte, d.Puntuacion, d.Posicion, d.AnosExperiencia, d.Nivel)
			}
		}
		if len(perfil.Adjetivos) > 0 {
			fmt.Fprintf(&b, "\n✨ %s\n", strings.Join(perfil.Adjetivos, ", "))
		}
	}

	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ Deporte", "perfil_deporte"),
			tgbotapi.NewInlineKeyboardButtonData("✨ Adjetivo", "perfil_adjetivo")),
	}
	if perfil != nil {
		for i, d := range perfil.Deportes {
			if i >= 5 {
				break // keyboard space
			}
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("🗑 "+d.Deporte, "perfil_deporte_del:"+d.Deporte)))
		}
		for i, adj := range perfil.Adjetivos {
			if i >= 5 {
				break
			}
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("💨 "+adj, "perfil_adjetivo_del:"+adj)))
		}
	}

	out := tgbotapi.NewMessage(chatID, b.String())
	out.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	h.Bot.Send(out)
}

func (h *Handler) HandlePerfilDeporte(cq *tgbotapi.CallbackQuery) {
	chatID := cq.Message.Chat.ID
	h.answer(cq, "")
	h.setPending(chatID, pendingDeporte)
	h.send(chatID, "🏅 Mandame el deporte separado por punto y coma:\n\nDeporte; puntuación; posición; años de experiencia; nivel\n\nEjemplo: Fútbol; 4.5; Delantero; 3; Intermedio")
}

func (h *Handler) doAgregarDeporte(chatID int64, input string) {
	parts := strings.Split(input, ";")
	if len(parts) != 5 {
		h.setPending(chatID, pendingDeporte)
		h.send(chatID, "⚠️ Formato inválido. Mandá: Deporte; puntuación; posición; años; nivel")
		return
	}
	puntuacion, _ := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	anos, _ := strconv.Atoi(strings.TrimSpace(parts[3]))
	deporte := types.DeporteJugador{
		Deporte:         strings.TrimSpace(parts[0]),
		Puntuacion:      puntuacion,
		Posicion:        strings.TrimSpace(parts[2]),
		AnosExperiencia: anos,
		Nivel:           strings.TrimSpace(parts[4]),
	}

	ctx, cancel := reqCtx()
	defer cancel()
	if _, err := h.Perfil.AgregarDeporte(ctx, chatID, deporte); err != nil {
		log.Printf("⚠️ Error agregando deporte para chatID %d: %v", chatID, err)
		h.send(chatID, "❌ No pude agregar el deporte.")
		return
	}
	h.send(chatID, "✅ Deporte agregado. Mirá tu perfil con /perfil")
}

func (h *Handler) HandlePerfilDeporteDel(cq *tgbotapi.CallbackQuery, deporte string) {
	chatID := cq.Message.Chat.ID

	ctx, cancel := reqCtx()
	defer cancel()
	if _, err := h.Perfil.EliminarDeporte(ctx, chatID, deporte); err != nil {
		h.answer(cq, "No se pudo eliminar")
		return
	}
	h.answer(cq, "Deporte eliminado")
	h.send(chatID, "🗑 Deporte eliminado. Mirá tu perfil con /perfil")
}

func (h *Handler) HandlePerfilAdjetivo(cq *tgbotapi.CallbackQuery) {
	chatID := cq.Message.Chat.ID
	h.answer(cq, "")
	h.setPending(chatID, pendingAdjetivo)
	h.send(chatID, "✨ Mandame un adjetivo que te describa como jugador (por ejemplo: competitivo)")
}

func (h *Handler) doAgregarAdjetivo(chatID int64, input string) {
	adjetivo := strings.TrimSpace(input)
	if adjetivo == "" {
		h.send(chatID, "⚠️ Mandá un adjetivo no vacío.")
		return
	}

	ctx, cancel := reqCtx()
	defer cancel()
	if _, err := h.Perfil.AgregarAdjetivo(ctx, chatID, adjetivo); err != nil {
		log.Printf("⚠️ Error agregando adjetivo para chatID %d: %v", chatID, err)
		h.send(chatID, "❌ No pude agregar el adjetivo.")
		return
	}
	h.send(chatID, "✅ Adjetivo agregado. Mirá tu perfil con /perfil")
}

func (h *Handler) HandlePerfilAdjetivoDel(cq *tgbotapi.CallbackQuery, adjetivo string) {
	chatID := cq.Message.Chat.ID

	ctx, cancel := reqCtx()
	defer cancel()
	if _, err := h.Perfil.RemoverAdjetivo(ctx, chatID, adjetivo); err != nil {
		h.answer(cq, "No se pudo quitar")
		return
	}
	h.answer(cq, "Adjetivo quitado")
}
