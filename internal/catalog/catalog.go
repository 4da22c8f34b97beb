// Package catalog тонкий слой выборки розыгрышей для витрины и списка.
package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mkdm/raffly/internal/domain"
	"github.com/mkdm/raffly/internal/transport/backend"
)

// endingSoonWindow окно, в котором розыгрыш косметически помечается "скоро закончится".
// Статус остается авторитетным на стороне бэкенда.
const endingSoonWindow = 24 * time.Hour

// Lister часть API клиента, отдающая списки розыгрышей.
type Lister interface {
	ListCompetitions(ctx context.Context, filter backend.ListFilter) ([]domain.Competition, error)
	FeaturedCompetitions(ctx context.Context) ([]domain.Competition, error)
}

type Service struct {
	client Lister
	l      *logrus.Entry
}

func New(client Lister, l *logrus.Logger) *Service {
	return &Service{
		client: client,
		l:      l.WithField("component", "catalog"),
	}
}

// Filter пользовательские фильтры списка. Поля мапятся один в один
// на query параметры бэкенда.
type Filter struct {
	Status    domain.CompetitionStatus
	PrizeType domain.PrizeType
	Sort      domain.SortType
}

// Item розыгрыш с производными полями для отображения.
type Item struct {
	domain.Competition
	EndingSoon bool
}

// List возвращает розыгрыши с учетом фильтра.
func (s *Service) List(ctx context.Context, filter Filter) ([]Item, error) {
	competitions, listErr := s.client.ListCompetitions(ctx, backend.ListFilter{
		Status:    filter.Status,
		PrizeType: filter.PrizeType,
		Sort:      filter.Sort,
	})
	if listErr != nil {
		return nil, fmt.Errorf("catalog list: %w", listErr)
	}

	return s.decorate(competitions), nil
}

// Featured возвращает розыгрыши для главной витрины.
func (s *Service) Featured(ctx context.Context) ([]Item, error) {
	competitions, err := s.client.FeaturedCompetitions(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog featured: %w", err)
	}

	return s.decorate(competitions), nil
}

func (s *Service) decorate(competitions []domain.Competition) []Item {
	now := time.Now()
	items := make([]Item, len(competitions))
	for i, c := range competitions {
		items[i] = Item{
			Competition: c,
			EndingSoon:  endingSoon(c, now),
		}
	}
	return items
}

func endingSoon(c domain.Competition, now time.Time) bool {
	return c.Status == domain.CompetitionStatusActive &&
		now.Before(c.EndDate) &&
		c.EndDate.Sub(now) <= endingSoonWindow
}
