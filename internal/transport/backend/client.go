// Package backend реализует HTTP клиент к JSON API платформы розыгрышей.
// Бэкенд единственный источник истины: клиент держит только эфемерные снапшоты.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"sync"
	"time"
)

const (
	RouteHealth          = "/api/health"
	RouteCompetitions    = "/api/competitions"
	RouteCompetition     = "/api/competitions/%s"
	RouteFeatured        = "/api/competitions/featured"
	RouteOrderCreate     = "/api/orders/create"
	RouteCheckoutStatus  = "/api/checkout/status/%s"
	RouteAuthRegister    = "/api/auth/register"
	RouteAuthLogin       = "/api/auth/login"
	RouteAuthMe          = "/api/auth/me"
	RouteAuthSession     = "/api/auth/session"
	RouteAuthLogout      = "/api/auth/logout"
	RouteUserEntries     = "/api/user/entries"
	RouteUserTickets     = "/api/user/tickets"
	RouteUserWins        = "/api/user/wins"
	RouteWinners         = "/api/winners"
	HeaderIdempotencyKey = "Idempotency-Key"
)

const defaultRequestTimeout = 10 * time.Second

// Client является клиентом HTTP API бэкенда. Bearer токен - основной канал аутентификации,
// cookie сессия - вторичный (переживает редирект на платежного провайдера, где заголовки
// не прикрепить). Токен мутирует только сессионный контекст.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

func New(baseURL string) *Client {
	// ошибка cookiejar.New возможна только при невалидных PublicSuffixList опциях.
	jar, _ := cookiejar.New(nil)

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: defaultRequestTimeout,
		},
	}
}

// SetToken устанавливает bearer токен для последующих запросов. Пустая строка сбрасывает его.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) bearerToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Health выполняет probe живости бэкенда. Результат сугубо информационный:
// приложение остается рабочим при любом исходе.
func (c *Client) Health(ctx context.Context) error {
	var ignored struct {
		Status string `json:"status"`
	}
	if err := c.doJSON(ctx, http.MethodGet, RouteHealth, nil, nil, &ignored); err != nil {
		return fmt.Errorf("health probe: %w", err)
	}
	return nil
}

// doJSON выполняет запрос с JSON телом reqBody (может быть nil) и парсит успешный ответ в out
// (может быть nil). В случае не-2xx статуса возвращает типизированную ошибку от checkStatus.
//
//nolint:nonamedreturns
func (c *Client) doJSON(
	ctx context.Context,
	method string,
	route string,
	headers map[string]string,
	reqBody any,
	out any,
) (err error) {
	url := c.baseURL + route

	var bodyReader io.Reader
	if reqBody != nil {
		payload, marshalErr := json.Marshal(reqBody)
		if marshalErr != nil {
			return fmt.Errorf("marshal request: %s", marshalErr.Error())
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, reqErr := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if reqErr != nil {
		return fmt.Errorf("create request: %s", reqErr.Error())
	}

	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token := c.bearerToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, doErr := c.httpClient.Do(req)
	if doErr != nil {
		return fmt.Errorf("do request: %s", doErr.Error())
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}()

	body, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		err = fmt.Errorf("read response: %s", readErr.Error())
		return err
	}

	if statusErr := checkStatus(resp.StatusCode, body); statusErr != nil {
		err = statusErr
		return err
	}

	if out == nil {
		return nil
	}

	if jsonErr := json.Unmarshal(body, out); jsonErr != nil {
		err = fmt.Errorf("parse response: %s", jsonErr.Error())
		return err
	}

	return nil
}
