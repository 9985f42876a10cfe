package handlers

import (
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (h *Handler) HandleStart(msg *tgbotapi.Message) {
	text := "👋 ¡Hola! Soy el bot de ReservApp para reservar canchas.\n\n" +
		"Comandos disponibles:\n" +
		"/canchas — ver canchas y reservar\n" +
		"/misreservas — mis reservas\n" +
		"/favoritos — mis canchas favoritas\n" +
		"/perfil — mi perfil de jugador\n" +
		"/productos — productos del club\n" +
		"/login — iniciar sesión\n" +
		"/registrar — crear cuenta\n" +
		"/logout — cerrar sesión"
	h.send(msg.Chat.ID, text)
}

func (h *Handler) HandleLogin(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	args := strings.Fields(msg.CommandArguments())
	if len(args) != 2 {
		h.setPending(chatID, pendingLogin)
		h.send(chatID, "🔐 Mandame tu email y contraseña separados por un espacio:\n\nemail@ejemplo.com contraseña")
		return
	}
	h.doLogin(chatID, args[0], args[1])
}

func (h *Handler) doLogin(chatID int64, email, password string) {
	ctx, cancel := reqCtx()
	defer cancel()

	token, user, err := h.API.Login(ctx, email, password)
	if err != nil {
		log.Printf("⚠️ Login fallido para chatID %d: %v", chatID, err)
		h.send(chatID, "❌ No pude iniciar sesión. Revisá tus datos e intentá de nuevo con /login")
		return
	}
	if err := h.Sessions.Save(chatID, token, user); err != nil {
		log.Printf("⚠️ Error guardando sesión de chatID %d: %v", chatID, err)
		h.send(chatID, "⚠️ Inicié sesión pero no pude guardarla. Intentá de nuevo.")
		return
	}
	h.send(chatID, fmt.Sprintf("✅ ¡Hola %s! Sesión iniciada.\n\nUsá /canchas para reservar.", user.Nombre))
}

func (h *Handler) HandleRegistrar(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	h.setPending(chatID, pendingRegister)
	h.send(chatID, "📝 Mandame tus datos separados por punto y coma:\n\nNombre; email@ejemplo.com; contraseña")
}

func (h *Handler) doRegister(chatID int64, input string) {
	parts := strings.Split(input, ";")
	if len(parts) != 3 {
		h.send(chatID, "⚠️ Formato inválido. Mandá: Nombre; email; contraseña")
		return
	}
	nombre := strings.TrimSpace(parts[0])
	email := strings.TrimSpace(parts[1])
	password := strings.TrimSpace(parts[2])

	ctx, cancel := reqCtx()
	defer cancel()

	token, user, err := h.API.Register(ctx, nombre, email, password, "jugador")
	if err != nil {
		log.Printf("⚠️ Registro fallido para chatID %d: %v", chatID, err)
		h.send(chatID, "❌ No pude crear la cuenta. Intentá de nuevo con /registrar")
		return
	}
	if err := h.Sessions.Save(chatID, token, user); err != nil {
		log.Printf("⚠️ Error guardando sesión de chatID %d: %v", chatID, err)
	}
	h.send(chatID, fmt.Sprintf("✅ Cuenta creada. ¡Bienvenido %s!", user.Nombre))
}

func (h *Handler) HandleLogout(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	if err := h.Sessions.Delete(chatID); err != nil {
		h.send(chatID, "⚠️ No pude cerrar la sesión.")
		return
	}
	h.Booking.Close(chatID)
	h.send(chatID, "👋 Sesión cerrada.")
}

// HandleText routes plain text according to the chat's pending input mode
func (h *Handler) HandleText(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	mode := h.takePending(chatID)

	switch mode {
	case pendingLogin:
		args := strings.Fields(msg.Text)
		if len(args) != 2 {
			h.setPending(chatID, pendingLogin)
			h.send(chatID, "⚠️ Mandá email y contraseña separados por un espacio.")
			return
		}
		h.doLogin(chatID, args[0], args[1])

	case pendingRegister:
		h.doRegister(chatID, msg.Text)

	case pendingContacto:
		h.doContacto(chatID, msg.Text)

	case pendingHoras:
		h.doHoras(chatID, msg.Text)

	case pendingDeporte:
		h.doAgregarDeporte(chatID, msg.Text)

	case pendingAdjetivo:
		h.doAgregarAdjetivo(chatID, msg.Text)

	case pendingProducto:
		h.doCrearProducto(chatID, msg.Text)

	default:
		h.send(chatID, "No entendí 🤔 Probá /start para ver los comandos.")
	}
}
