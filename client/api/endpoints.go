package api

import (
	"context"
	"fmt"
	"net/http"
)

func (c *Client) Register(ctx context.Context, name, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	err := c.do(ctx, request{
		method: http.MethodPost, path: "/auth/register",
		body: map[string]string{"name": name, "email": email, "password": password},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	err := c.do(ctx, request{
		method: http.MethodPost, path: "/auth/login",
		body: map[string]string{"email": email, "password": password},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Me resolves the user behind token.
func (c *Client) Me(ctx context.Context, token string) (*User, error) {
	var out struct {
		User *User `json:"user"`
	}
	if err := c.do(ctx, request{method: http.MethodGet, path: "/auth/me", token: token}, &out); err != nil {
		return nil, err
	}
	if out.User == nil {
		return nil, &Error{Status: http.StatusUnauthorized, Message: "no user in response"}
	}
	return out.User, nil
}

func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var out []Category
	if err := c.do(ctx, request{method: http.MethodGet, path: "/menu/categories"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) MenuItems(ctx context.Context) ([]MenuItem, error) {
	var out []MenuItem
	if err := c.do(ctx, request{method: http.MethodGet, path: "/menu/items"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateOrder posts an order; idempotencyKey may be empty.
func (c *Client) CreateOrder(ctx context.Context, token, idempotencyKey string, req *CreateOrderRequest) (*CreateOrderResponse, error) {
	r := request{method: http.MethodPost, path: "/orders", token: token, body: req}
	if idempotencyKey != "" {
		r.headers = map[string]string{"Idempotency-Key": idempotencyKey}
	}
	var out CreateOrderResponse
	if err := c.do(ctx, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Orders(ctx context.Context, token string) ([]OrderSummary, error) {
	var out []OrderSummary
	if err := c.do(ctx, request{method: http.MethodGet, path: "/orders", token: token}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Order(ctx context.Context, token string, id uint) (*OrderDetail, error) {
	var out OrderDetail
	if err := c.do(ctx, request{method: http.MethodGet, path: fmt.Sprintf("/orders/%d", id), token: token}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateOrderStatus needs a staff or admin token.
func (c *Client) UpdateOrderStatus(ctx context.Context, token string, id uint, status string) error {
	return c.do(ctx, request{
		method: http.MethodPatch, path: fmt.Sprintf("/orders/%d/status", id), token: token,
		body: map[string]string{"status": status},
	}, nil)
}
