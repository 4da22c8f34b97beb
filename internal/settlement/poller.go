// Package settlement определяет финальное состояние заказа после возврата
// с внешней оплаты и сверяет результаты мгновенных выигрышей.
//
// Явная машина состояний: checking -> success | timeout | error. Попытки строго
// последовательны, бюджет попыток считается на стороне клиента и при перезапуске
// процесса обнуляется - это принятое ограничение, дашборд всегда отражает
// авторитетное состояние бэкенда.
package settlement

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mkdm/raffly/internal/domain"
	"github.com/mkdm/raffly/internal/transport/backend"
)

type State string

const (
	StateChecking State = "checking"
	StateSuccess  State = "success"
	StateTimeout  State = "timeout"
	StateError    State = "error"
)

const (
	defaultPollInterval   = 2 * time.Second
	defaultMaxAttempts    = 10
	defaultAttemptTimeout = 10 * time.Second
)

// Poller опрашивает статус платежной сессии до терминального состояния.
// Компонент только читает: единственный side effect - запрос обновления
// сессионного снапшота при успехе.
type Poller struct {
	client  StatusClient
	session SessionRefresher
	l       *logrus.Entry

	interval       time.Duration
	maxAttempts    uint
	attemptTimeout time.Duration

	mu    sync.RWMutex
	state State
}

func New(client StatusClient, session SessionRefresher, l *logrus.Logger) *Poller {
	return &Poller{
		client:  client,
		session: session,
		l: l.WithFields(logrus.Fields{
			"component": "settlement",
			"module":    "poller",
		}),
		interval:       defaultPollInterval,
		maxAttempts:    defaultMaxAttempts,
		attemptTimeout: defaultAttemptTimeout,
		state:          StateChecking,
	}
}

// SetInterval устанавливает фиксированную паузу между попытками.
func (p *Poller) SetInterval(interval time.Duration) *Poller {
	p.interval = interval
	return p
}

// SetMaxAttempts устанавливает бюджет попыток.
func (p *Poller) SetMaxAttempts(attempts uint) *Poller {
	p.maxAttempts = attempts
	return p
}

// State текущее состояние машины. До первого терминального перехода - checking.
func (p *Poller) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

func (p *Poller) setState(state State) {
	p.mu.Lock()
	p.state = state
	p.mu.Unlock()
}

// Result терминальный исход поллинга. При State == StateSuccess заполнены билеты,
// разбитые на обычные и мгновенные выигрыши. LastErr хранит последнюю ошибку
// транспорта для State == StateError.
type Result struct {
	State       State
	Attempts    uint
	Order       *domain.Order
	Tickets     []domain.Ticket
	InstantWins []domain.Ticket
	LastErr     error
}

// Run ведет машину состояний до терминального исхода.
//
// Защитное предусловие: без correlation identifier поллинг не запускается вообще
// (ErrNoSession). Ошибка возвращается также при отмене контекста - снятый поллер
// не планирует новых попыток и не трогает никакое состояние.
//
// Каждая попытка ограничена собственным таймаутом, отличным от общего бюджета
// interval * maxAttempts. Ответ "pending" и ошибка транспорта тратят попытку;
// исчерпание бюджета дает timeout либо error в зависимости от последнего исхода.
func (p *Poller) Run(ctx context.Context, sessionID string) (*Result, error) {
	if sessionID == "" {
		return nil, ErrNoSession
	}

	l := p.l.WithField("sessionID", sessionID)
	l.WithFields(logrus.Fields{
		"interval":    p.interval,
		"maxAttempts": p.maxAttempts,
	}).Info("starting settlement polling")

	var lastErr error

	for attempt := uint(1); attempt <= p.maxAttempts; attempt++ {
		reqCtx, cancel := context.WithTimeout(ctx, p.attemptTimeout)
		resp, pollErr := p.client.CheckoutStatus(reqCtx, sessionID)
		cancel()

		switch {
		case pollErr != nil:
			lastErr = pollErr
			l.WithError(pollErr).WithField("attempt", attempt).Warn("status poll failed")
		case resp.Paid():
			result := p.Reconcile(resp)
			result.Attempts = attempt

			p.setState(StateSuccess)
			// ровно один refresh на терминальный переход: покупка могла списать баланс,
			// а мгновенный выигрыш - начислить.
			if refreshErr := p.session.Refresh(ctx); refreshErr != nil {
				l.WithError(refreshErr).Warn("refresh after settlement")
			}

			l.WithFields(logrus.Fields{
				"attempt":     attempt,
				"tickets":     len(result.Tickets),
				"instantWins": len(result.InstantWins),
			}).Info("settlement confirmed")
			return result, nil
		default:
			lastErr = nil
			l.WithField("attempt", attempt).Debug("payment still pending")
		}

		if attempt == p.maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err() //nolint:wrapcheck
		case <-time.After(p.interval):
		}
	}

	if lastErr != nil {
		p.setState(StateError)
		l.WithError(lastErr).Error("settlement polling gave up on repeated errors")
		return &Result{State: StateError, Attempts: p.maxAttempts, LastErr: lastErr}, nil
	}

	p.setState(StateTimeout)
	l.Warn("settlement polling budget exhausted")
	return &Result{State: StateTimeout, Attempts: p.maxAttempts}, nil
}

// Reconcile превращает терминальный оплаченный ответ в результат для отображения:
// билеты разбиваются по флагу мгновенного выигрыша. Функция чистая и идемпотентная -
// повторный вызов с тем же ответом дает тот же набор билетов и не дублирует эффекты.
func (p *Poller) Reconcile(resp *backend.CheckoutStatusResponse) *Result {
	result := &Result{
		State:   StateSuccess,
		Order:   resp.Order,
		Tickets: make([]domain.Ticket, 0, len(resp.Tickets)),
	}

	for _, ticket := range resp.Tickets {
		result.Tickets = append(result.Tickets, ticket)
		if ticket.IsInstantWin {
			result.InstantWins = append(result.InstantWins, ticket)
		}
	}
	return result
}
