package api

import (
	"context"
	"fmt"
	"net/http"

	"cancha-bot/types"
)

type productosResponse struct {
	Success   bool             `json:"success"`
	Productos []types.Producto `json:"productos"`
	Producto  types.Producto   `json:"producto"`
	Message   string           `json:"message"`
}

// ListProductos fetches the product catalog
func (c *Client) ListProductos(ctx context.Context, token string) ([]types.Producto, error) {
	var resp productosResponse
	if err := c.get(ctx, "/api/productos", token, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, notSuccess(resp.Message, "Error al obtener productos")
	}
	return resp.Productos, nil
}

// CreateProducto adds a catalog item (admin)
func (c *Client) CreateProducto(ctx context.Context, token string, producto types.Producto) (types.Producto, error) {
	var resp productosResponse
	if err := c.send(ctx, http.MethodPost, "/api/productos", token, producto, &resp); err != nil {
		return types.Producto{}, err
	}
	if !resp.Success {
		return types.Producto{}, notSuccess(resp.Message, "Error al crear producto")
	}
	return resp.Producto, nil
}

// UpdateProducto replaces a catalog item (admin)
func (c *Client) UpdateProducto(ctx context.Context, token string, productoID int64, producto types.Producto) (types.Producto, error) {
	var resp productosResponse
	path := fmt.Sprintf("/api/productos/%d", productoID)
	if err := c.send(ctx, http.MethodPut, path, token, producto, &resp); err != nil {
		return types.Producto{}, err
	}
	if !resp.Success {
		return types.Producto{}, notSuccess(resp.Message, "Error al actualizar producto")
	}
	return resp.Producto, nil
}

// DeleteProducto removes a catalog item (admin)
func (c *Client) DeleteProducto(ctx context.Context, token string, productoID int64) error {
	path := fmt.Sprintf("/api/productos/%d", productoID)
	return c.send(ctx, http.MethodDelete, path, token, nil, nil)
}

// ToggleDisponibilidad flips a product's availability flag (admin)
func (c *Client) ToggleDisponibilidad(ctx context.Context, token string, productoID int64) (types.Producto, error) {
	var resp productosResponse
	path := fmt.Sprintf("/api/productos/%d/toggle-disponibilidad", productoID)
	if err := c.send(ctx, http.MethodPatch, path, token, nil, &resp); err != nil {
		return types.Producto{}, err
	}
	if !resp.Success {
		return types.Producto{}, notSuccess(resp.Message, "Error al cambiar disponibilidad")
	}
	return resp.Producto, nil
}
