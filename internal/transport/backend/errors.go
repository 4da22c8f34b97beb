package backend

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mkdm/raffly/internal/domain"
)

// StatusCodeError возвращается при не-2xx ответе бэкенда. Detail содержит текст ошибки
// из тела ответа (если бэкенд его прислал) и пригоден для показа пользователю.
type StatusCodeError struct {
	Code   int
	Detail string
}

func NewStatusCodeError(code int, detail string) *StatusCodeError {
	return &StatusCodeError{Code: code, Detail: detail}
}

func (e *StatusCodeError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("unexpected status code %d: %s", e.Code, e.Detail)
	}
	return fmt.Sprintf("unexpected status code %d", e.Code)
}

// checkStatus транслирует статус ответа в доменную или типизированную ошибку.
// 401 и 404 мапятся на доменные sentinel ошибки, остальные не-2xx - в StatusCodeError.
func checkStatus(code int, body []byte) error {
	if code >= http.StatusOK && code < http.StatusMultipleChoices {
		return nil
	}

	detail := extractDetail(body)

	switch code {
	case http.StatusUnauthorized:
		return fmt.Errorf("%s: %w", detail, domain.ErrNotAuthenticated)
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w", detail, domain.ErrRecordNotFound)
	default:
		return NewStatusCodeError(code, detail)
	}
}

func extractDetail(body []byte) string {
	var payload struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Detail != "" {
		return payload.Detail
	}
	return payload.Error
}
