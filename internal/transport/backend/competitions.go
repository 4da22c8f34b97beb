package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/mkdm/raffly/internal/domain"
)

// ListFilter параметры выборки розыгрышей. Пустые поля в query не попадают,
// сортировка по умолчанию на стороне бэкенда - newest.
type ListFilter struct {
	Status    domain.CompetitionStatus
	PrizeType domain.PrizeType
	Sort      domain.SortType
}

func (f ListFilter) encode() string {
	values := url.Values{}
	if f.Status != "" {
		values.Set("status", string(f.Status))
	}
	if f.PrizeType != "" {
		values.Set("prize_type", string(f.PrizeType))
	}
	if f.Sort != "" {
		values.Set("sort", string(f.Sort))
	}
	return values.Encode()
}

// ListCompetitions возвращает список розыгрышей с учетом фильтра.
func (c *Client) ListCompetitions(ctx context.Context, filter ListFilter) ([]domain.Competition, error) {
	route := RouteCompetitions
	if query := filter.encode(); query != "" {
		route += "?" + query
	}

	var dtos []competitionDTO
	if err := c.doJSON(ctx, http.MethodGet, route, nil, nil, &dtos); err != nil {
		return nil, fmt.Errorf("list competitions: %w", err)
	}

	competitions := make([]domain.Competition, len(dtos))
	for i, dto := range dtos {
		competitions[i] = dto.toDomain()
	}
	return competitions, nil
}

// FeaturedCompetitions возвращает активные розыгрыши для витрины.
func (c *Client) FeaturedCompetitions(ctx context.Context) ([]domain.Competition, error) {
	var dtos []competitionDTO
	if err := c.doJSON(ctx, http.MethodGet, RouteFeatured, nil, nil, &dtos); err != nil {
		return nil, fmt.Errorf("featured competitions: %w", err)
	}

	competitions := make([]domain.Competition, len(dtos))
	for i, dto := range dtos {
		competitions[i] = dto.toDomain()
	}
	return competitions, nil
}

// GetCompetition возвращает один розыгрыш по идентификатору.
// Если розыгрыш не найден, ошибка будет соответствовать domain.ErrRecordNotFound.
func (c *Client) GetCompetition(ctx context.Context, id string) (*domain.Competition, error) {
	var dto competitionDTO
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf(RouteCompetition, id), nil, nil, &dto); err != nil {
		return nil, fmt.Errorf("get competition %s: %w", id, err)
	}

	competition := dto.toDomain()
	return &competition, nil
}

// Winners возвращает опубликованные записи о победителях.
func (c *Client) Winners(ctx context.Context) ([]domain.Winner, error) {
	var dtos []winnerDTO
	if err := c.doJSON(ctx, http.MethodGet, RouteWinners, nil, nil, &dtos); err != nil {
		return nil, fmt.Errorf("winners: %w", err)
	}

	winners := make([]domain.Winner, len(dtos))
	for i, dto := range dtos {
		winners[i] = dto.toDomain()
	}
	return winners, nil
}
