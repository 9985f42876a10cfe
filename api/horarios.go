package api

import (
	"context"
	"fmt"
	"net/url"

	"cancha-bot/types"
)

// GetScheduleConfig fetches the operating-hours configuration of a cancha.
// Callers that need the booking flow to stay usable substitute
// types.DefaultScheduleConfig() on any error.
func (c *Client) GetScheduleConfig(ctx context.Context, token string, canchaID int64) (types.ScheduleConfig, error) {
	var resp struct {
		Success       bool                 `json:"success"`
		Configuracion types.ScheduleConfig `json:"configuracion"`
		Message       string               `json:"message"`
	}
	path := fmt.Sprintf("/api/configuracion-horarios/cancha/%d", canchaID)
	if err := c.get(ctx, path, token, &resp); err != nil {
		return types.ScheduleConfig{}, err
	}
	if !resp.Success {
		return types.ScheduleConfig{}, notSuccess(resp.Message, "Error al obtener configuración")
	}
	return resp.Configuracion, nil
}

// ListAvailableSlots fetches the bookable slots of a cancha for one date.
// The slot list is computed entirely by the backend.
func (c *Client) ListAvailableSlots(ctx context.Context, token string, canchaID int64, fecha string) ([]types.TimeSlot, error) {
	var resp struct {
		Success  bool             `json:"success"`
		Horarios []types.TimeSlot `json:"horarios"`
		Message  string           `json:"message"`
	}
	path := fmt.Sprintf("/api/configuracion-horarios/horarios-disponibles/%d?fecha=%s",
		canchaID, url.QueryEscape(fecha))
	if err := c.get(ctx, path, token, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, notSuccess(resp.Message, "Error al obtener horarios disponibles")
	}
	return resp.Horarios, nil
}
