package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"cancha-bot/types"
)

// CheckAvailability asks the backend whether the time range is still
// bookable. Timestamps are local ISO-8601 without timezone suffix,
// e.g. "2024-06-01T10:00:00".
func (c *Client) CheckAvailability(ctx context.Context, token string, canchaID int64, fechaInicio, fechaFin string) (types.AvailabilityResult, error) {
	query := url.Values{}
	query.Set("canchaId", fmt.Sprintf("%d", canchaID))
	query.Set("fechaInicio", fechaInicio)
	query.Set("fechaFin", fechaFin)

	var result types.AvailabilityResult
	if err := c.get(ctx, "/api/reservas/disponibilidad?"+query.Encode(), token, &result); err != nil {
		return types.AvailabilityResult{}, err
	}
	return result, nil
}

// crearReservaRequest is the full creation payload: the backend derives
// everything else (price included) on its side.
type crearReservaRequest struct {
	CanchaID    int64  `json:"canchaId"`
	FechaInicio string `json:"fechaInicio"`
	FechaFin    string `json:"fechaFin"`
}

// CreateReserva books the time range and returns the reservation id used
// to route to payment.
func (c *Client) CreateReserva(ctx context.Context, token string, canchaID int64, fechaInicio, fechaFin string) (int64, error) {
	body := crearReservaRequest{
		CanchaID:    canchaID,
		FechaInicio: fechaInicio,
		FechaFin:    fechaFin,
	}
	var resp struct {
		Reserva types.Reserva `json:"reserva"`
	}
	if err := c.send(ctx, http.MethodPost, "/api/reservas", token, body, &resp); err != nil {
		return 0, err
	}
	return resp.Reserva.ID, nil
}

// ListMisReservas fetches the caller's reservations
func (c *Client) ListMisReservas(ctx context.Context, token string) ([]types.Reserva, error) {
	var resp struct {
		Success  bool            `json:"success"`
		Reservas []types.Reserva `json:"reservas"`
		Message  string          `json:"message"`
	}
	if err := c.get(ctx, "/api/reservas/mis-reservas", token, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, notSuccess(resp.Message, "Error al cargar reservas")
	}
	return resp.Reservas, nil
}

// CancelReserva cancels one of the caller's reservations
func (c *Client) CancelReserva(ctx context.Context, token string, reservaID int64) error {
	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	path := fmt.Sprintf("/api/reservas/%d", reservaID)
	if err := c.send(ctx, http.MethodDelete, path, token, nil, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return notSuccess(resp.Message, "Error al cancelar reserva")
	}
	return nil
}
