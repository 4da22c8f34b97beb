package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Competition struct {
	ID                string
	CreatedAt         time.Time
	EndDate           time.Time
	Title             string
	Description       string
	PrizeType         PrizeType
	PrizeValue        decimal.Decimal
	PrizeImage        string
	TicketPrice       decimal.Decimal
	TotalTickets      int
	SoldTickets       int
	MaxTicketsPerUser int
	Status            CompetitionStatus
	IsInstantWin      bool
	InstantWinPrizes  []InstantWinPrize
	WinnerID          string
}

// AvailableTickets возвращает остаток билетов. Значение не бывает отрицательным:
// бэкенд гарантирует sold <= total, но снапшот может прийти неконсистентным.
func (c Competition) AvailableTickets() int {
	available := c.TotalTickets - c.SoldTickets
	if available < 0 {
		return 0
	}
	return available
}

// IsOpen сообщает, принимает ли розыгрыш новые заказы. Статус бэкенда авторитетен,
// дата окончания проверяется дополнительно на случай устаревшего снапшота.
func (c Competition) IsOpen(now time.Time) bool {
	return c.Status == CompetitionStatusActive && now.Before(c.EndDate) && c.AvailableTickets() > 0
}

type InstantWinPrize struct {
	Name      string
	Remaining int
	Value     decimal.Decimal
	Image     string
}

type User struct {
	ID        string
	CreatedAt time.Time
	Email     string
	Name      string
	Picture   string
	Balance   decimal.Decimal
}

type Order struct {
	ID            string
	CreatedAt     time.Time
	UserID        string
	CompetitionID string
	TicketCount   int
	Amount        decimal.Decimal
	BalanceUsed   decimal.Decimal
	Status        OrderStatus
	Tickets       []Ticket
}

type Ticket struct {
	ID              string
	CreatedAt       time.Time
	Number          string
	UserID          string
	CompetitionID   string
	OrderID         string
	IsInstantWin    bool
	InstantWinPrize *InstantWinPrize
}

// Winner неизменяемая запись об объявленном победителе розыгрыша.
type Winner struct {
	ID            string
	AnnouncedAt   time.Time
	CompetitionID string
	UserName      string
	TicketNumber  string
	PrizeType     PrizeType
	PrizeValue    decimal.Decimal
}
