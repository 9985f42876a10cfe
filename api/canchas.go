package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"cancha-bot/types"
)

// ListCanchas fetches the facility catalog. The backend answers either the
// {success, canchas} envelope or a bare array; both are accepted.
func (c *Client) ListCanchas(ctx context.Context, token string) ([]types.Cancha, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/api/canchas", token, &raw); err != nil {
		return nil, err
	}

	var envelope struct {
		Success bool           `json:"success"`
		Canchas []types.Cancha `json:"canchas"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Canchas != nil {
		return envelope.Canchas, nil
	}

	var canchas []types.Cancha
	if err := json.Unmarshal(raw, &canchas); err != nil {
		return nil, fmt.Errorf("decoding canchas: %w", err)
	}
	return canchas, nil
}

// GetCancha fetches a single facility by id
func (c *Client) GetCancha(ctx context.Context, token string, canchaID int64) (types.Cancha, error) {
	var resp struct {
		Success bool         `json:"success"`
		Cancha  types.Cancha `json:"cancha"`
		Message string       `json:"message"`
	}
	if err := c.get(ctx, fmt.Sprintf("/api/canchas/%d", canchaID), token, &resp); err != nil {
		return types.Cancha{}, err
	}
	if !resp.Success {
		return types.Cancha{}, notSuccess(resp.Message, "Error al obtener cancha")
	}
	return resp.Cancha, nil
}

// CreateCancha registers a new facility (admin surface)
func (c *Client) CreateCancha(ctx context.Context, token string, cancha types.Cancha) (types.Cancha, error) {
	var resp struct {
		Success bool         `json:"success"`
		Cancha  types.Cancha `json:"cancha"`
		Message string       `json:"message"`
	}
	if err := c.send(ctx, http.MethodPost, "/api/canchas", token, cancha, &resp); err != nil {
		return types.Cancha{}, err
	}
	if !resp.Success {
		return types.Cancha{}, notSuccess(resp.Message, "Error al crear cancha")
	}
	return resp.Cancha, nil
}
