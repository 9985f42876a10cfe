package api

import (
	"context"
	"fmt"
	"net/http"

	"cancha-bot/types"
)

type favoritosResponse struct {
	Success   bool             `json:"success"`
	Favoritos []types.Favorito `json:"favoritos"`
	Message   string           `json:"message"`
	Total     int              `json:"total"`
}

// ListFavoritos fetches the caller's favorite canchas
func (c *Client) ListFavoritos(ctx context.Context, token string) ([]types.Favorito, error) {
	var resp favoritosResponse
	if err := c.get(ctx, "/api/favoritos/mis-favoritos", token, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		// no favorites yet is not a fault
		return nil, nil
	}
	return resp.Favoritos, nil
}

// AgregarFavorito marks a cancha as favorite, with optional notes
func (c *Client) AgregarFavorito(ctx context.Context, token string, canchaID int64, notas string) error {
	body := map[string]any{"canchaId": canchaID}
	if notas != "" {
		body["notas"] = notas
	}
	var resp favoritosResponse
	if err := c.send(ctx, http.MethodPost, "/api/favoritos/agregar", token, body, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return notSuccess(resp.Message, "Error al agregar favorito")
	}
	return nil
}

// RemoverFavorito unmarks a cancha
func (c *Client) RemoverFavorito(ctx context.Context, token string, canchaID int64) error {
	var resp favoritosResponse
	path := fmt.Sprintf("/api/favoritos/remover/%d", canchaID)
	if err := c.send(ctx, http.MethodDelete, path, token, nil, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return notSuccess(resp.Message, "Error al remover favorito")
	}
	return nil
}

// ActualizarNotas replaces the notes of an existing favorite
func (c *Client) ActualizarNotas(ctx context.Context, token string, canchaID int64, notas string) error {
	body := map[string]string{"notas": notas}
	var resp favoritosResponse
	path := fmt.Sprintf("/api/favoritos/actualizar-notas/%d", canchaID)
	if err := c.send(ctx, http.MethodPut, path, token, body, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return notSuccess(resp.Message, "Error al actualizar notas")
	}
	return nil
}

// ContarFavoritos returns the total count, zero on any failure
func (c *Client) ContarFavoritos(ctx context.Context, token string) int {
	var resp favoritosResponse
	if err := c.get(ctx, "/api/favoritos/contar", token, &resp); err != nil {
		return 0
	}
	if !resp.Success {
		return 0
	}
	return resp.Total
}
