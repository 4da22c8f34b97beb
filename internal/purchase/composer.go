// Package purchase реализует композер покупки билетов: выбор количества, зачет
// баланса, локальная валидация и отправка заказа. Авторитетная валидация остается
// за бэкендом, здесь только UX сглаживание и отсечение заведомо невалидных запросов.
package purchase

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/mkdm/raffly/internal/domain"
	"github.com/mkdm/raffly/internal/transport/backend"
)

// quickPresets варианты быстрого выбора количества, как в оригинальном селекторе.
var quickPresets = []int{1, 5, 10, 25}

type Composer struct {
	competition domain.Competition
	session     Sessioner
	orders      OrderCreator
	originURL   string
	l           *logrus.Entry

	mu            sync.Mutex
	count         int
	useBalance    bool
	termsAccepted bool
	inFlight      bool
}

func NewComposer(
	competition domain.Competition,
	session Sessioner,
	orders OrderCreator,
	originURL string,
	l *logrus.Logger,
) *Composer {
	return &Composer{
		competition: competition,
		session:     session,
		orders:      orders,
		originURL:   originURL,
		l: l.WithFields(logrus.Fields{
			"component":   "purchase",
			"competition": competition.ID,
		}),
		count: 1,
	}
}

// maxAllowed верхняя граница количества: лимит на пользователя либо остаток инвентаря,
// что меньше.
func (c *Composer) maxAllowed() int {
	maxPerUser := c.competition.MaxTicketsPerUser
	if available := c.competition.AvailableTickets(); available < maxPerUser {
		return available
	}
	return maxPerUser
}

// SetCount устанавливает количество билетов. Значение вне диапазона
// [1, min(maxPerUser, available)] молча приводится к границе - это UX сглаживание,
// бэкенд перепроверит заказ самостоятельно.
func (c *Composer) SetCount(n int) int {
	clamped := clamp(n, 1, c.maxAllowed())

	c.mu.Lock()
	c.count = clamped
	c.mu.Unlock()

	return clamped
}

func (c *Composer) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// LuckyDip выбирает случайное количество в допустимых границах. Чистое удобство
// поверх SetCount, новых инвариантов не вносит.
func (c *Composer) LuckyDip() int {
	limit := c.maxAllowed()
	if limit < 1 {
		limit = 1
	}
	return c.SetCount(rand.IntN(limit) + 1)
}

// QuickOptions возвращает пресеты количества, не превышающие допустимый максимум.
func (c *Composer) QuickOptions() []int {
	limit := c.maxAllowed()
	options := make([]int, 0, len(quickPresets))
	for _, n := range quickPresets {
		if n <= limit {
			options = append(options, n)
		}
	}
	return options
}

func (c *Composer) SetUseBalance(use bool) {
	c.mu.Lock()
	c.useBalance = use
	c.mu.Unlock()
}

func (c *Composer) SetTermsAccepted(accepted bool) {
	c.mu.Lock()
	c.termsAccepted = accepted
	c.mu.Unlock()
}

// Quote расчет стоимости для текущего состояния композера.
type Quote struct {
	TicketCount  int
	TotalPrice   decimal.Decimal
	BalanceToUse decimal.Decimal
	FinalPrice   decimal.Decimal
}

// Quote считает стоимость: balanceToUse = min(balance, price*count),
// finalPrice = price*count - balanceToUse. FinalPrice никогда не отрицателен.
func (c *Composer) Quote() Quote {
	c.mu.Lock()
	count := c.count
	useBalance := c.useBalance
	c.mu.Unlock()

	total := c.competition.TicketPrice.Mul(decimal.NewFromInt(int64(count)))

	balanceToUse := decimal.Zero
	if useBalance {
		if user := c.session.User(); user != nil {
			balanceToUse = decimal.Min(user.Balance, total)
		}
	}

	return Quote{
		TicketCount:  count,
		TotalPrice:   total,
		BalanceToUse: balanceToUse,
		FinalPrice:   total.Sub(balanceToUse),
	}
}

// Result исход успешной отправки заказа. Либо RedirectURL для внешней оплаты,
// либо Completed с билетами, когда сумма целиком покрыта балансом.
type Result struct {
	OrderID     string
	RedirectURL string
	Completed   bool
	Tickets     []domain.Ticket
}

// Submit валидирует предусловия и отправляет заказ.
//
// Пока запрос в полете, повторный Submit возвращает domain.ErrSubmitInFlight -
// двойной клик не должен породить два заказа. Вторая линия защиты - Idempotency-Key,
// новый на каждую логическую отправку.
//
// Ошибки валидации (условия не приняты, розыгрыш закрыт) разрешаются локально без
// сетевого вызова. Ошибка бэкенда не терминальна: композер остается рабочим.
func (c *Composer) Submit(ctx context.Context) (*Result, error) {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return nil, domain.ErrSubmitInFlight
	}
	c.inFlight = true
	count := c.count
	useBalance := c.useBalance
	termsAccepted := c.termsAccepted
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.inFlight = false
		c.mu.Unlock()
	}()

	if !c.session.IsAuthenticated() {
		return nil, domain.NewAuthRequiredError("/competitions/" + c.competition.ID)
	}

	if !termsAccepted {
		return nil, domain.ErrTermsNotAccepted
	}

	if err := c.checkCompetitionOpen(time.Now()); err != nil {
		return nil, err
	}

	result, createErr := c.orders.CreateOrder(ctx, backend.CreateOrderArgs{
		CompetitionID:  c.competition.ID,
		TicketCount:    count,
		UseBalance:     useBalance,
		OriginURL:      c.originURL,
		IdempotencyKey: uuid.NewString(),
	})
	if createErr != nil {
		return nil, fmt.Errorf("submit order: %w", createErr)
	}

	if result.Status == domain.OrderStatusCompleted {
		// баланс уже списан на бэкенде, снапшот сессии обязан обновиться.
		if refreshErr := c.session.Refresh(ctx); refreshErr != nil {
			c.l.WithError(refreshErr).Warn("refresh after balance-covered order")
		}
		c.l.WithField("orderID", result.OrderID).Info("order completed from balance")
		return &Result{
			OrderID:   result.OrderID,
			Completed: true,
			Tickets:   result.Tickets,
		}, nil
	}

	c.l.WithField("orderID", result.OrderID).Info("order pending, redirecting to payment")
	return &Result{
		OrderID:     result.OrderID,
		RedirectURL: result.RedirectURL,
	}, nil
}

func (c *Composer) checkCompetitionOpen(now time.Time) error {
	switch {
	case c.competition.Status == domain.CompetitionStatusSoldOut || c.competition.AvailableTickets() == 0:
		return domain.ErrSoldOut
	case c.competition.Status != domain.CompetitionStatusActive || !now.Before(c.competition.EndDate):
		return domain.ErrCompetitionEnded
	default:
		return nil
	}
}

func clamp(n, low, high int) int {
	if high < low {
		high = low
	}
	if n < low {
		return low
	}
	if n > high {
		return high
	}
	return n
}
