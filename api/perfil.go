package api

import (
	"context"
	"net/http"
	"net/url"

	"cancha-bot/types"
)

type perfilResponse struct {
	Success bool                `json:"success"`
	Perfil  types.PerfilJugador `json:"perfil"`
	Message string              `json:"message"`
}

func (c *Client) perfilCall(ctx context.Context, method, path, token string, body any, fallback string) (types.PerfilJugador, error) {
	var resp perfilResponse
	if err := c.send(ctx, method, path, token, body, &resp); err != nil {
		return types.PerfilJugador{}, err
	}
	if !resp.Success {
		return types.PerfilJugador{}, notSuccess(resp.Message, fallback)
	}
	return resp.Perfil, nil
}

// GetPerfil fetches the caller's player profile
func (c *Client) GetPerfil(ctx context.Context, token string) (types.PerfilJugador, error) {
	return c.perfilCall(ctx, http.MethodGet, "/api/perfil-jugador/mi-perfil", token, nil,
		"Error al cargar el perfil")
}

// GuardarPerfil creates or replaces the profile; the backend answers with
// the refreshed resource, which callers adopt wholesale.
func (c *Client) GuardarPerfil(ctx context.Context, token string, perfil types.PerfilJugador) (types.PerfilJugador, error) {
	return c.perfilCall(ctx, http.MethodPost, "/api/perfil-jugador/guardar", token, perfil,
		"Error al guardar el perfil")
}

// AgregarDeporte adds one sport entry to the profile
func (c *Client) AgregarDeporte(ctx context.Context, token string, deporte types.DeporteJugador) (types.PerfilJugador, error) {
	return c.perfilCall(ctx, http.MethodPost, "/api/perfil-jugador/deportes/agregar", token, deporte,
		"Error al agregar deporte")
}

// ActualizarDeporte replaces a sport entry identified by its original name
func (c *Client) ActualizarDeporte(ctx context.Context, token, deporteOriginal string, deporte types.DeporteJugador) (types.PerfilJugador, error) {
	path := "/api/perfil-jugador/deportes/" + url.PathEscape(deporteOriginal)
	return c.perfilCall(ctx, http.MethodPut, path, token, deporte,
		"Error al actualizar deporte")
}

// EliminarDeporte removes a sport entry
func (c *Client) EliminarDeporte(ctx context.Context, token, deporte string) (types.PerfilJugador, error) {
	path := "/api/perfil-jugador/deportes/" + url.PathEscape(deporte)
	return c.perfilCall(ctx, http.MethodDelete, path, token, nil,
		"Error al eliminar deporte")
}

// AgregarAdjetivo attaches a descriptive adjective to the profile
func (c *Client) AgregarAdjetivo(ctx context.Context, token, adjetivo string) (types.PerfilJugador, error) {
	body := map[string]string{"adjetivo": adjetivo}
	return c.perfilCall(ctx, http.MethodPost, "/api/perfil-jugador/adjetivos/agregar", token, body,
		"Error al agregar adjetivo")
}

// RemoverAdjetivo detaches an adjective
func (c *Client) RemoverAdjetivo(ctx context.Context, token, adjetivo string) (types.PerfilJugador, error) {
	path := "/api/perfil-jugador/adjetivos/" + url.PathEscape(adjetivo)
	return c.perfilCall(ctx, http.MethodDelete, path, token, nil,
		"Error al remover adjetivo")
}
