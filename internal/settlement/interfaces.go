package settlement

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/mkdm/raffly/internal/transport/backend"
)

// StatusClient часть API клиента, опрашивающая состояние платежной сессии.
type StatusClient interface {
	CheckoutStatus(ctx context.Context, sessionID string) (*backend.CheckoutStatusResponse, error)
}

// SessionRefresher обновляет снапшот пользователя после завершения оплаты.
type SessionRefresher interface {
	Refresh(ctx context.Context) error
}
