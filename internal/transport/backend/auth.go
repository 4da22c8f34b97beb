package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mkdm/raffly/internal/domain"
)

// AuthResult пара пользователь + bearer токен, возвращаемая операциями аутентификации.
// Cookie сессия при этом устанавливается бэкендом и живет в jar клиента.
type AuthResult struct {
	User  domain.User
	Token string
}

type authResponseDTO struct {
	User  userDTO `json:"user"`
	Token string  `json:"token"`
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Register регистрирует пользователя и сразу аутентифицирует его.
func (c *Client) Register(ctx context.Context, email, password, name string) (*AuthResult, error) {
	req := registerRequest{Email: email, Password: password, Name: name}

	var dto authResponseDTO
	if err := c.doJSON(ctx, http.MethodPost, RouteAuthRegister, nil, req, &dto); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	return &AuthResult{User: dto.User.toDomain(), Token: dto.Token}, nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login аутентифицирует пользователя по паре email/пароль.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	req := loginRequest{Email: email, Password: password}

	var dto authResponseDTO
	if err := c.doJSON(ctx, http.MethodPost, RouteAuthLogin, nil, req, &dto); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	return &AuthResult{User: dto.User.toDomain(), Token: dto.Token}, nil
}

// Me возвращает снапшот текущего пользователя. Для неаутентифицированного запроса
// ошибка будет соответствовать domain.ErrNotAuthenticated.
func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	var dto userDTO
	if err := c.doJSON(ctx, http.MethodGet, RouteAuthMe, nil, nil, &dto); err != nil {
		return nil, fmt.Errorf("me: %w", err)
	}

	user := dto.toDomain()
	return &user, nil
}

type exchangeSessionRequest struct {
	SessionID string `json:"session_id"`
}

// ExchangeSession обменивает одноразовый handoff код стороннего провайдера на сессию.
func (c *Client) ExchangeSession(ctx context.Context, sessionID string) (*AuthResult, error) {
	req := exchangeSessionRequest{SessionID: sessionID}

	var dto authResponseDTO
	if err := c.doJSON(ctx, http.MethodPost, RouteAuthSession, nil, req, &dto); err != nil {
		return nil, fmt.Errorf("exchange session: %w", err)
	}

	return &AuthResult{User: dto.User.toDomain(), Token: dto.Token}, nil
}

// Logout инвалидирует сессию на бэкенде. Локальные credentials чистит сессионный
// контекст независимо от исхода этого вызова.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.doJSON(ctx, http.MethodPost, RouteAuthLogout, nil, struct{}{}, nil); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}
