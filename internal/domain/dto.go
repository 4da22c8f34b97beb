package domain

type CompetitionStatus string

const (
	CompetitionStatusActive  CompetitionStatus = "active"
	CompetitionStatusEnded   CompetitionStatus = "ended"
	CompetitionStatusSoldOut CompetitionStatus = "sold_out"
)

type PrizeType string

const (
	PrizeTypeCash   PrizeType = "cash"
	PrizeTypeCar    PrizeType = "car"
	PrizeTypeTech   PrizeType = "tech"
	PrizeTypeLuxury PrizeType = "luxury"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusFailed    OrderStatus = "failed"
)

type SortType string

const (
	SortNewest     SortType = "newest"
	SortEndingSoon SortType = "ending_soon"
	SortPriceLow   SortType = "price_low"
	SortPriceHigh  SortType = "price_high"
)
