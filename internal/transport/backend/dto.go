package backend

import (
	"time"

	"github.com/mkdm/raffly/internal/domain"
	"github.com/shopspring/decimal"
)

// Wire-структуры повторяют JSON схему бэкенда (snake_case). Наружу пакет отдает
// доменные типы, конвертация выполняется на границе.

type competitionDTO struct {
	CompetitionID     string               `json:"competition_id"`
	Title             string               `json:"title"`
	Description       string               `json:"description"`
	PrizeType         string               `json:"prize_type"`
	PrizeValue        decimal.Decimal      `json:"prize_value"`
	PrizeImage        string               `json:"prize_image"`
	TicketPrice       decimal.Decimal      `json:"ticket_price"`
	TotalTickets      int                  `json:"total_tickets"`
	SoldTickets       int                  `json:"sold_tickets"`
	MaxTicketsPerUser int                  `json:"max_tickets_per_user"`
	EndDate           time.Time            `json:"end_date"`
	Status            string               `json:"status"`
	IsInstantWin      bool                 `json:"is_instant_win"`
	InstantWinPrizes  []instantWinPrizeDTO `json:"instant_win_prizes"`
	WinnerID          string               `json:"winner_id"`
	CreatedAt         time.Time            `json:"created_at"`
}

func (d competitionDTO) toDomain() domain.Competition {
	prizes := make([]domain.InstantWinPrize, len(d.InstantWinPrizes))
	for i, p := range d.InstantWinPrizes {
		prizes[i] = p.toDomain()
	}
	return domain.Competition{
		ID:                d.CompetitionID,
		CreatedAt:         d.CreatedAt,
		EndDate:           d.EndDate,
		Title:             d.Title,
		Description:       d.Description,
		PrizeType:         domain.PrizeType(d.PrizeType),
		PrizeValue:        d.PrizeValue,
		PrizeImage:        d.PrizeImage,
		TicketPrice:       d.TicketPrice,
		TotalTickets:      d.TotalTickets,
		SoldTickets:       d.SoldTickets,
		MaxTicketsPerUser: d.MaxTicketsPerUser,
		Status:            domain.CompetitionStatus(d.Status),
		IsInstantWin:      d.IsInstantWin,
		InstantWinPrizes:  prizes,
		WinnerID:          d.WinnerID,
	}
}

type instantWinPrizeDTO struct {
	Name      string          `json:"name"`
	Remaining int             `json:"remaining"`
	Value     decimal.Decimal `json:"value"`
	Image     string          `json:"image"`
}

func (d instantWinPrizeDTO) toDomain() domain.InstantWinPrize {
	return domain.InstantWinPrize{
		Name:      d.Name,
		Remaining: d.Remaining,
		Value:     d.Value,
		Image:     d.Image,
	}
}

type userDTO struct {
	UserID    string          `json:"user_id"`
	Email     string          `json:"email"`
	Name      string          `json:"name"`
	Picture   string          `json:"picture"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
}

func (d userDTO) toDomain() domain.User {
	return domain.User{
		ID:        d.UserID,
		CreatedAt: d.CreatedAt,
		Email:     d.Email,
		Name:      d.Name,
		Picture:   d.Picture,
		Balance:   d.Balance,
	}
}

type ticketDTO struct {
	TicketID        string              `json:"ticket_id"`
	TicketNumber    string              `json:"ticket_number"`
	UserID          string              `json:"user_id"`
	CompetitionID   string              `json:"competition_id"`
	OrderID         string              `json:"order_id"`
	IsInstantWin    bool                `json:"is_instant_win"`
	InstantWinPrize *instantWinPrizeDTO `json:"instant_win_prize"`
	CreatedAt       time.Time           `json:"created_at"`
}

func (d ticketDTO) toDomain() domain.Ticket {
	var prize *domain.InstantWinPrize
	if d.InstantWinPrize != nil {
		p := d.InstantWinPrize.toDomain()
		prize = &p
	}
	return domain.Ticket{
		ID:              d.TicketID,
		CreatedAt:       d.CreatedAt,
		Number:          d.TicketNumber,
		UserID:          d.UserID,
		CompetitionID:   d.CompetitionID,
		OrderID:         d.OrderID,
		IsInstantWin:    d.IsInstantWin,
		InstantWinPrize: prize,
	}
}

type orderDTO struct {
	OrderID       string          `json:"order_id"`
	UserID        string          `json:"user_id"`
	CompetitionID string          `json:"competition_id"`
	TicketCount   int             `json:"ticket_count"`
	Amount        decimal.Decimal `json:"amount"`
	BalanceUsed   decimal.Decimal `json:"balance_used"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (d orderDTO) toDomain() domain.Order {
	return domain.Order{
		ID:            d.OrderID,
		CreatedAt:     d.CreatedAt,
		UserID:        d.UserID,
		CompetitionID: d.CompetitionID,
		TicketCount:   d.TicketCount,
		Amount:        d.Amount,
		BalanceUsed:   d.BalanceUsed,
		Status:        domain.OrderStatus(d.Status),
	}
}

type winnerDTO struct {
	WinnerID      string          `json:"winner_id"`
	CompetitionID string          `json:"competition_id"`
	UserName      string          `json:"user_name"`
	TicketNumber  string          `json:"ticket_number"`
	PrizeType     string          `json:"prize_type"`
	PrizeValue    decimal.Decimal `json:"prize_value"`
	AnnouncedAt   time.Time       `json:"announced_at"`
}

func (d winnerDTO) toDomain() domain.Winner {
	return domain.Winner{
		ID:            d.WinnerID,
		AnnouncedAt:   d.AnnouncedAt,
		CompetitionID: d.CompetitionID,
		UserName:      d.UserName,
		TicketNumber:  d.TicketNumber,
		PrizeType:     domain.PrizeType(d.PrizeType),
		PrizeValue:    d.PrizeValue,
	}
}
