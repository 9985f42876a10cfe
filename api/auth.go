package api

import (
	"context"
	"net/http"

	"cancha-bot/types"
)

type authResponse struct {
	Success bool          `json:"success"`
	Token   string        `json:"token"`
	User    types.Usuario `json:"user"`
	Message string        `json:"message"`
}

// notSuccess wraps a success=false answer that still came back as 2xx
func notSuccess(msg, fallback string) error {
	if msg == "" {
		msg = fallback
	}
	return &Error{Status: http.StatusOK, Message: msg}
}

// Login exchanges credentials for a bearer token and the user identity
func (c *Client) Login(ctx context.Context, email, password string) (string, types.Usuario, error) {
	body := map[string]string{"email": email, "password": password}
	var resp authResponse
	if err := c.send(ctx, http.MethodPost, "/api/auth/login", "", body, &resp); err != nil {
		return "", types.Usuario{}, err
	}
	if !resp.Success {
		return "", types.Usuario{}, notSuccess(resp.Message, "Error en el login")
	}
	return resp.Token, resp.User, nil
}

// Register creates an account and logs it in, in one call
func (c *Client) Register(ctx context.Context, nombre, email, password, tipo string) (string, types.Usuario, error) {
	body := map[string]string{"nombre": nombre, "email": email, "password": password, "tipo": tipo}
	var resp authResponse
	if err := c.send(ctx, http.MethodPost, "/api/auth/register", "", body, &resp); err != nil {
		return "", types.Usuario{}, err
	}
	if !resp.Success {
		return "", types.Usuario{}, notSuccess(resp.Message, "Error en el registro")
	}
	return resp.Token, resp.User, nil
}

// Me validates the stored token against the backend and returns the identity
func (c *Client) Me(ctx context.Context, token string) (types.Usuario, error) {
	var resp authResponse
	if err := c.get(ctx, "/api/auth/me", token, &resp); err != nil {
		return types.Usuario{}, err
	}
	if !resp.Success {
		return types.Usuario{}, notSuccess(resp.Message, "Error al obtener usuario")
	}
	return resp.User, nil
}
