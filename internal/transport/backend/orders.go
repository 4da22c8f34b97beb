package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mkdm/raffly/internal/domain"
)

// CreateOrderArgs параметры создания заказа. IdempotencyKey защищает от дублей
// при повторной отправке одного и того же запроса (двойной клик, ретрай сети).
type CreateOrderArgs struct {
	CompetitionID  string
	TicketCount    int
	UseBalance     bool
	OriginURL      string
	IdempotencyKey string
}

// CreateOrderResult результат создания заказа. Ровно один из исходов:
// RedirectURL непустой - оплата продолжается у внешнего провайдера;
// Status == completed - заказ покрыт балансом целиком, Tickets заполнен сразу.
type CreateOrderResult struct {
	OrderID     string
	Status      domain.OrderStatus
	RedirectURL string
	Tickets     []domain.Ticket
}

type createOrderRequest struct {
	CompetitionID string `json:"competition_id"`
	TicketCount   int    `json:"ticket_count"`
	UseBalance    bool   `json:"use_balance"`
	OriginURL     string `json:"origin_url"`
}

type createOrderResponse struct {
	OrderID     string      `json:"order_id"`
	Status      string      `json:"status"`
	RedirectURL string      `json:"redirect_url"`
	Tickets     []ticketDTO `json:"tickets"`
}

// CreateOrder создает заказ на билеты и инициирует оплату.
func (c *Client) CreateOrder(ctx context.Context, args CreateOrderArgs) (*CreateOrderResult, error) {
	req := createOrderRequest{
		CompetitionID: args.CompetitionID,
		TicketCount:   args.TicketCount,
		UseBalance:    args.UseBalance,
		OriginURL:     args.OriginURL,
	}

	var headers map[string]string
	if args.IdempotencyKey != "" {
		headers = map[string]string{HeaderIdempotencyKey: args.IdempotencyKey}
	}

	var resp createOrderResponse
	if err := c.doJSON(ctx, http.MethodPost, RouteOrderCreate, headers, req, &resp); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	tickets := make([]domain.Ticket, len(resp.Tickets))
	for i, dto := range resp.Tickets {
		tickets[i] = dto.toDomain()
	}

	return &CreateOrderResult{
		OrderID:     resp.OrderID,
		Status:      domain.OrderStatus(resp.Status),
		RedirectURL: resp.RedirectURL,
		Tickets:     tickets,
	}, nil
}

// CheckoutStatusResponse снапшот состояния платежной сессии по correlation id.
type CheckoutStatusResponse struct {
	Status        domain.OrderStatus
	PaymentStatus string
	Order         *domain.Order
	Tickets       []domain.Ticket
}

// Paid сообщает, достигла ли сессия терминального оплаченного состояния.
func (r *CheckoutStatusResponse) Paid() bool {
	return r.PaymentStatus == "paid" || r.Status == domain.OrderStatusCompleted
}

type checkoutStatusDTO struct {
	Status        string      `json:"status"`
	PaymentStatus string      `json:"payment_status"`
	Order         *orderDTO   `json:"order"`
	Tickets       []ticketDTO `json:"tickets"`
}

// CheckoutStatus опрашивает состояние платежной сессии. Компонент только читает:
// завершение заказа и выпуск билетов происходят на стороне бэкенда.
func (c *Client) CheckoutStatus(ctx context.Context, sessionID string) (*CheckoutStatusResponse, error) {
	var dto checkoutStatusDTO
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf(RouteCheckoutStatus, sessionID), nil, nil, &dto); err != nil {
		return nil, fmt.Errorf("checkout status: %w", err)
	}

	var order *domain.Order
	if dto.Order != nil {
		o := dto.Order.toDomain()
		order = &o
	}

	tickets := make([]domain.Ticket, len(dto.Tickets))
	for i, t := range dto.Tickets {
		tickets[i] = t.toDomain()
	}

	return &CheckoutStatusResponse{
		Status:        domain.OrderStatus(dto.Status),
		PaymentStatus: dto.PaymentStatus,
		Order:         order,
		Tickets:       tickets,
	}, nil
}

// UserEntry участие пользователя в розыгрыше с его билетами.
type UserEntry struct {
	Competition domain.Competition
	Tickets     []domain.Ticket
}

type userEntryDTO struct {
	Competition competitionDTO `json:"competition"`
	Tickets     []ticketDTO    `json:"tickets"`
}

// UserEntries возвращает участия текущего пользователя для дашборда.
func (c *Client) UserEntries(ctx context.Context) ([]UserEntry, error) {
	var dtos []userEntryDTO
	if err := c.doJSON(ctx, http.MethodGet, RouteUserEntries, nil, nil, &dtos); err != nil {
		return nil, fmt.Errorf("user entries: %w", err)
	}

	entries := make([]UserEntry, len(dtos))
	for i, dto := range dtos {
		tickets := make([]domain.Ticket, len(dto.Tickets))
		for j, t := range dto.Tickets {
			tickets[j] = t.toDomain()
		}
		entries[i] = UserEntry{
			Competition: dto.Competition.toDomain(),
			Tickets:     tickets,
		}
	}
	return entries, nil
}

// UserTickets возвращает все билеты текущего пользователя.
func (c *Client) UserTickets(ctx context.Context) ([]domain.Ticket, error) {
	var dtos []ticketDTO
	if err := c.doJSON(ctx, http.MethodGet, RouteUserTickets, nil, nil, &dtos); err != nil {
		return nil, fmt.Errorf("user tickets: %w", err)
	}

	tickets := make([]domain.Ticket, len(dtos))
	for i, dto := range dtos {
		tickets[i] = dto.toDomain()
	}
	return tickets, nil
}

// UserWins возвращает выигравшие билеты пользователя (мгновенные выигрыши и основные призы).
func (c *Client) UserWins(ctx context.Context) ([]domain.Ticket, error) {
	var dtos []ticketDTO
	if err := c.doJSON(ctx, http.MethodGet, RouteUserWins, nil, nil, &dtos); err != nil {
		return nil, fmt.Errorf("user wins: %w", err)
	}

	wins := make([]domain.Ticket, len(dtos))
	for i, dto := range dtos {
		wins[i] = dto.toDomain()
	}
	return wins, nil
}
