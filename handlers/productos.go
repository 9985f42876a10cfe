package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"

	"cancha-bot/types"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// HandleProductos lists the club's products; admins get management buttons
func (h *Handler) HandleProductos(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	productos, err := h.loadProductos(chatID)
	if err != nil {
		h.send(chatID, "⚠️ No pude cargar los productos.")
		return
	}
	if len(productos) == 0 {
		h.send(chatID, "🛒 No hay productos cargados.")
		if h.isAdmin(chatID) {
			h.setPending(chatID, pendingProducto)
			h.send(chatID, "➕ Mandame un producto así: Nombre; precio")
		}
		return
	}

	var b strings.Builder
	b.WriteString("🛒 Productos del club:\n\n")
	for _, p := range productos {
		estado := "✅"
		if !p.Disponible {
			estado = "🚫"
		}
		fmt.Fprintf(&b, "%s %s — $%.2f\n", estado, p.Nombre, p.Precio)
	}

	out := tgbotapi.NewMessage(chatID, b.String())
	if h.isAdmin(chatID) {
		var rows [][]tgbotapi.InlineKeyboardButton
		for i, p := range productos {
			if i >= 8 {
				break
			}
			id := strconv.FormatInt(p.ID, 10)
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("🔄 "+p.Nombre, "producto_toggle:"+id),
				tgbotapi.NewInlineKeyboardButtonData("🗑", "producto_del:"+id)))
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ Nuevo producto", "producto_nuevo")))
		out.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	}
	h.Bot.Send(out)
}

func (h *Handler) loadProductos(chatID int64) ([]types.Producto, error) {
	if cached, err := h.Store.GetProductos(); err == nil && cached != nil {
		var productos []types.Producto
		if json.Unmarshal(cached, &productos) == nil {
			return productos, nil
		}
	}

	ctx, cancel := reqCtx()
	defer cancel()
	productos, err := h.API.ListProductos(ctx, h.Sessions.Token(chatID))
	if err != nil {
		log.Printf("⚠️ Error cargando productos: %v", err)
		return nil, err
	}
	if err := h.Store.SaveProductos(productos); err != nil {
		log.Printf("⚠️ No pude cachear los productos: %v", err)
	}
	return productos, nil
}

func (h *Handler) isAdmin(chatID int64) bool {
	sess, err := h.Sessions.Get(chatID)
	return err == nil && sess != nil && sess.User.Tipo == "admin"
}

func (h *Handler) HandleProductoNuevo(cq *tgbotapi.CallbackQuery) {
	chatID := cq.Message.Chat.ID
	if !h.isAdmin(chatID) {
		h.answer(cq, "Solo administradores")
		return
	}
	h.answer(cq, "")
	h.setPending(chatID, pendingProducto)
	h.send(chatID, "➕ Mandame el producto así: Nombre; precio")
}

func (h *Handler) doCrearProducto(chatID int64, input string) {
	parts := strings.Split(input, ";")
	if len(parts) != 2 {
		h.setPending(chatID, pendingProducto)
		h.send(chatID, "⚠️ Formato inválido. Mandá: Nombre; precio")
		return
	}
	precio, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		h.setPending(chatID, pendingProducto)
		h.send(chatID, "⚠️ Precio inválido.")
		return
	}

	ctx, cancel := reqCtx()
	defer cancel()
	producto := types.Producto{Nombre: strings.TrimSpace(parts[0]), Precio: precio, Disponible: true}
	if _, err := h.API.CreateProducto(ctx, h.Sessions.Token(chatID), producto); err != nil {
		log.Printf("⚠️ Error creando producto: %v", err)
		h.send(chatID, "❌ No pude crear el producto.")
		return
	}
	h.Store.InvalidateProductos()
	h.send(chatID, "✅ Producto creado. Mirá la lista con /productos")
}

func (h *Handler) HandleProductoToggle(cq *tgbotapi.CallbackQuery, rawID string) {
	chatID := cq.Message.Chat.ID
	if !h.isAdmin(chatID) {
		h.answer(cq, "Solo administradores")
		return
	}
	productoID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		h.answer(cq, "Producto inválido")
		return
	}

	ctx, cancel := reqCtx()
	defer cancel()
	if _, err := h.API.ToggleDisponibilidad(ctx, h.Sessions.Token(chatID), productoID); err != nil {
		h.answer(cq, "No se pudo cambiar")
		return
	}
	h.Store.InvalidateProductos()
	h.answer(cq, "Disponibilidad cambiada")
}

func (h *Handler) HandleProductoDel(cq *tgbotapi.CallbackQuery, rawID string) {
	chatID := cq.Message.Chat.ID
	if !h.isAdmin(chatID) {
		h.answer(cq, "Solo administradores")
		return
	}
	productoID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		h.answer(cq, "Producto inválido")
		return
	}

	ctx, cancel := reqCtx()
	defer cancel()
	if err := h.API.DeleteProducto(ctx, h.Sessions.Token(chatID), productoID); err != nil {
		h.answer(cq, "No se pudo eliminar")
		return
	}
	h.Store.InvalidateProductos()
	h.answer(cq, "Producto eliminado")
}
