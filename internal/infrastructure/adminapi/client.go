package adminapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jhoicas/Ordenes-api/internal/application/dto"
	"github.com/jhoicas/Ordenes-api/internal/application/permissions"
	"github.com/jhoicas/Ordenes-api/internal/domain"
	"github.com/jhoicas/Ordenes-api/internal/domain/entity"
)

var _ permissions.MatrixStore = (*Client)(nil)

const (
	permissionsPath = "/api/admin/permissions"
	loginPath       = "/api/auth/login"
	maxBody         = 4 << 20
)

// Client adaptador HTTP del endpoint de administración de permisos.
// Usa net/http de la librería estándar; el token es un JWT de un usuario admin.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient construye el cliente. baseURL sin barra final, p. ej. "http://localhost:8080".
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// WithHTTPClient reemplaza el cliente HTTP (tests).
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// Token devuelve el token en uso.
func (c *Client) Token() string { return c.token }

// Login obtiene un token con usuario y contraseña y lo deja configurado en el cliente.
func (c *Client) Login(ctx context.Context, username, password string) (*dto.LoginResponse, error) {
	var out dto.LoginResponse
	if err := c.do(ctx, http.MethodPost, loginPath, dto.LoginRequest{Username: username, Password: password}, &out); err != nil {
		return nil, err
	}
	c.token = out.Token
	return &out, nil
}

// FetchMatrix implementa MatrixStore con GET /api/admin/permissions.
func (c *Client) FetchMatrix(ctx context.Context) (*permissions.Matrix, error) {
	var out dto.PermissionMatrixResponse
	if err := c.do(ctx, http.MethodGet, permissionsPath, nil, &out); err != nil {
		return nil, err
	}
	return permissions.MatrixFromDTO(&out), nil
}

// SaveMatrix implementa MatrixStore con un único PUT /api/admin/permissions.
func (c *Client) SaveMatrix(ctx context.Context, updates []entity.RolePermission) error {
	in := dto.UpdatePermissionsRequest{Updates: permissions.UpdatesToDTO(updates)}
	var out dto.UpdatePermissionsResponse
	if err := c.do(ctx, http.MethodPut, permissionsPath, in, &out); err != nil {
		return err
	}
	if !out.Success {
		return fmt.Errorf("adminapi: el servidor rechazó el lote: %s", out.Message)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("adminapi: serializar request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("adminapi: crear HTTP request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("adminapi: timeout o cancelación: %w", ctx.Err())
		}
		return fmt.Errorf("adminapi: llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fmt.Errorf("adminapi: leer respuesta: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp.StatusCode, raw)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("adminapi: deserializar respuesta: %w", err)
	}
	return nil
}

// statusError traduce el cuerpo de error del API a errores de dominio cuando aplica.
func statusError(status int, raw []byte) error {
	var e dto.ErrorResponse
	msg := strings.TrimSpace(string(raw))
	if json.Unmarshal(raw, &e) == nil && e.Message != "" {
		msg = e.Message
	}
	switch status {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", domain.ErrUnauthorized, msg)
	case http.StatusForbidden:
		return fmt.Errorf("%w: %s", domain.ErrForbidden, msg)
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, msg)
	}
	return fmt.Errorf("adminapi: HTTP %d: %s", status, msg)
}
