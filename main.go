package main

import (
	"log"
	"os"
	"strings"

	"cancha-bot/api"
	"cancha-bot/booking"
	"cancha-bot/favorites"
	"cancha-bot/handlers"
	"cancha-bot/profile"
	"cancha-bot/session"
	"cancha-bot/storage"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
)

var store *storage.Storage

func initStorage() {
	addr := os.Getenv("REDIS_ADDR")
	pass := os.Getenv("REDIS_PASSWORD")
	db := 0 // cancha-bot
	store = storage.New(addr, pass, db)

	if err := store.Ping(); err != nil {
		log.Fatalf("Redis connection failed: %v", err)
	}
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, using environment variables")
	}

	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		log.Fatal("❌ TELEGRAM_BOT_TOKEN not set")
	}
	apiURL := os.Getenv("RESERVAPP_API_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8080"
	}
	webURL := os.Getenv("RESERVAPP_WEB_URL")
	if webURL == "" {
		webURL = apiURL
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		log.Fatal(err)
	}

	log.Printf("🤖 Authorized on account %s", bot.Self.UserName)

	initStorage()

	client := api.New(apiURL)
	sessions := session.New(store)
	controller := booking.New(client, sessions, store, webURL)
	favoritos := favorites.New(client, sessions)
	perfil := profile.New(client, sessions)

	handler := handlers.New(bot, client, store, sessions, controller, favoritos, perfil)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := bot.GetUpdatesChan(u)

	log.Println("✅ Bot is running...")

	for update := range updates {
		if update.Message != nil {
			handleMessage(handler, update.Message)
		} else if update.CallbackQuery != nil {
			handleCallback(handler, update.CallbackQuery)
		}
	}
}

func handleMessage(h *handlers.Handler, msg *tgbotapi.Message) {
	if !msg.IsCommand() {
		h.HandleText(msg)
		return
	}

	switch msg.Command() {
	case "start":
		h.HandleStart(msg)

	case "login":
		h.HandleLogin(msg)

	case "registrar":
		h.HandleRegistrar(msg)

	case "logout":
		h.HandleLogout(msg)

	case "canchas":
		h.HandleCanchas(msg)

	case "misreservas":
		h.HandleMisReservas(msg)

	case "favoritos":
		h.HandleFavoritos(msg)

	case "perfil":
		h.HandlePerfil(msg)

	case "productos":
		h.HandleProductos(msg)

	default:
		h.Bot.Send(tgbotapi.NewMessage(msg.Chat.ID, "Comando desconocido. Probá /start"))
	}
}

func handleCallback(h *handlers.Handler, cq *tgbotapi.CallbackQuery) {
	if cq == nil || cq.Message == nil {
		return
	}

	data := cq.Data

	switch {
	// catálogo de canchas
	case strings.HasPrefix(data, "cancha:"):
		h.HandleCanchaSelect(cq, strings.TrimPrefix(data, "cancha:"))

	case strings.HasPrefix(data, "fav:"):
		h.HandleFavToggle(cq, strings.TrimPrefix(data, "fav:"))

	// flujo de reserva
	case strings.HasPrefix(data, "fecha:"):
		h.HandleFecha(cq, strings.TrimPrefix(data, "fecha:"))

	case strings.HasPrefix(data, "slot:"):
		h.HandleSlotSelect(cq, strings.TrimPrefix(data, "slot:"))

	case data == "verificar":
		h.HandleVerificar(cq)

	case data == "reservar":
		h.HandleReservar(cq)

	case data == "reserva_cerrar":
		h.HandleReservaCerrar(cq)

	case strings.HasPrefix(data, "reserva_cancelar:"):
		h.HandleReservaCancelar(cq, strings.TrimPrefix(data, "reserva_cancelar:"))

	// perfil de jugador
	case data == "perfil_deporte":
		h.HandlePerfilDeporte(cq)

	case strings.HasPrefix(data, "perfil_deporte_del:"):
		h.HandlePerfilDeporteDel(cq, strings.TrimPrefix(data, "perfil_deporte_del:"))

	case data == "perfil_adjetivo":
		h.HandlePerfilAdjetivo(cq)

	case strings.HasPrefix(data, "perfil_adjetivo_del:"):
		h.HandlePerfilAdjetivoDel(cq, strings.TrimPrefix(data, "perfil_adjetivo_del:"))

	// productos (admin)
	case data == "producto_nuevo":
		h.HandleProductoNuevo(cq)

	case strings.HasPrefix(data, "producto_toggle:"):
		h.HandleProductoToggle(cq, strings.TrimPrefix(data, "producto_toggle:"))

	case strings.HasPrefix(data, "producto_del:"):
		h.HandleProductoDel(cq, strings.TrimPrefix(data, "producto_del:"))

	default:
		h.Bot.Request(tgbotapi.NewCallback(cq.ID, "Comando desconocido"))
	}
}
