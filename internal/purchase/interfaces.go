package purchase

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/mkdm/raffly/internal/domain"
	"github.com/mkdm/raffly/internal/transport/backend"
)

// Sessioner часть сессионного контекста, нужная композеру покупки.
type Sessioner interface {
	User() *domain.User
	IsAuthenticated() bool
	Refresh(ctx context.Context) error
}

// OrderCreator часть API клиента, создающая заказы.
type OrderCreator interface {
	CreateOrder(ctx context.Context, args backend.CreateOrderArgs) (*backend.CreateOrderResult, error)
}
