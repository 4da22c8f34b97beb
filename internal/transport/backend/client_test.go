package backend

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/mkdm/raffly/internal/domain"
)

type ClientTestSuite struct {
	suite.Suite
	server *httptest.Server
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

func (s *ClientTestSuite) TearDownTest() {
	if s.server != nil {
		s.server.Close()
		s.server = nil
	}
}

func (s *ClientTestSuite) newClient(handler http.HandlerFunc) *Client {
	s.server = httptest.NewServer(handler)
	return New(s.server.URL)
}

func (s *ClientTestSuite) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	s.Require().NoError(json.NewEncoder(w).Encode(body))
}

// TestGetCompetition Успешный ответ парсится в доменную модель.
func (s *ClientTestSuite) TestGetCompetition() {
	endDate := time.Now().Add(72 * time.Hour).UTC().Truncate(time.Second)

	client := s.newClient(func(w http.ResponseWriter, r *http.Request) {
		s.Equal("/api/competitions/comp_1", r.URL.Path)
		s.writeJSON(w, http.StatusOK, map[string]any{
			"competition_id":       "comp_1",
			"title":                "Win £10,000 Cash",
			"prize_type":           "cash",
			"prize_value":          10000,
			"ticket_price":         2.5,
			"total_tickets":        5000,
			"sold_tickets":         1200,
			"max_tickets_per_user": 50,
			"end_date":             endDate.Format(time.RFC3339),
			"status":               "active",
			"is_instant_win":       true,
			"instant_win_prizes": []map[string]any{
				{"name": "AirPods", "remaining": 3, "value": 199},
			},
		})
	})

	competition, err := client.GetCompetition(s.T().Context(), "comp_1")

	s.Require().NoError(err)
	s.Equal("comp_1", competition.ID)
	s.Equal(domain.PrizeTypeCash, competition.PrizeType)
	s.Equal(domain.CompetitionStatusActive, competition.Status)
	s.True(competition.TicketPrice.Equal(decimal.NewFromFloat(2.5)))
	s.Equal(3800, competition.AvailableTickets())
	s.True(competition.IsInstantWin)
	s.Require().Len(competition.InstantWinPrizes, 1)
	s.Equal("AirPods", competition.InstantWinPrizes[0].Name)
	s.True(endDate.Equal(competition.EndDate))
}

// TestGetCompetition_NotFound 404 мапится на доменную ошибку.
func (s *ClientTestSuite) TestGetCompetition_NotFound() {
	client := s.newClient(func(w http.ResponseWriter, _ *http.Request) {
		s.writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Competition not found"})
	})

	competition, err := client.GetCompetition(s.T().Context(), "missing")

	s.Nil(competition)
	s.ErrorIs(err, domain.ErrRecordNotFound)
}

// TestGetCompetition_ServerError 5xx дает StatusCodeError с текстом из тела.
func (s *ClientTestSuite) TestGetCompetition_ServerError() {
	client := s.newClient(func(w http.ResponseWriter, _ *http.Request) {
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "db down"})
	})

	_, err := client.GetCompetition(s.T().Context(), "comp_1")

	var statusErr *StatusCodeError
	s.Require().ErrorAs(err, &statusErr)
	s.Equal(http.StatusInternalServerError, statusErr.Code)
	s.Equal("db down", statusErr.Detail)
}

// TestListCompetitions_QueryMapping Фильтры мапятся один в один на query параметры бэкенда.
func (s *ClientTestSuite) TestListCompetitions_QueryMapping() {
	client := s.newClient(func(w http.ResponseWriter, r *http.Request) {
		s.Equal("/api/competitions", r.URL.Path)
		s.Equal("active", r.URL.Query().Get("status"))
		s.Equal("tech", r.URL.Query().Get("prize_type"))
		s.Equal("ending_soon", r.URL.Query().Get("sort"))
		s.writeJSON(w, http.StatusOK, []map[string]any{
			{"competition_id": "comp_1", "status": "active"},
			{"competition_id": "comp_2", "status": "active"},
		})
	})

	competitions, err := client.ListCompetitions(s.T().Context(), ListFilter{
		Status:    domain.CompetitionStatusActive,
		PrizeType: domain.PrizeTypeTech,
		Sort:      domain.SortEndingSoon,
	})

	s.Require().NoError(err)
	s.Len(competitions, 2)
}

// TestListCompetitions_EmptyFilter Пустой фильтр не добавляет query параметров.
func (s *ClientTestSuite) TestListCompetitions_EmptyFilter() {
	client := s.newClient(func(w http.ResponseWriter, r *http.Request) {
		s.Empty(r.URL.RawQuery)
		s.writeJSON(w, http.StatusOK, []map[string]any{})
	})

	competitions, err := client.ListCompetitions(s.T().Context(), ListFilter{})

	s.Require().NoError(err)
	s.Empty(competitions)
}

// TestCreateOrder_Redirect Создание заказа с внешней оплатой: bearer и Idempotency-Key
// уходят в заголовках, назад приходит redirect URL.
func (s *ClientTestSuite) TestCreateOrder_Redirect() {
	client := s.newClient(func(w http.ResponseWriter, r *http.Request) {
		s.Equal(http.MethodPost, r.Method)
		s.Equal("/api/orders/create", r.URL.Path)
		s.Equal("Bearer test-token", r.Header.Get("Authorization"))
		s.Equal("idem-123", r.Header.Get(HeaderIdempotencyKey))

		var req map[string]any
		s.Require().NoError(json.NewDecoder(r.Body).Decode(&req))
		s.Equal("comp_1", req["competition_id"])
		s.InEpsilon(5.0, req["ticket_count"], 0.001)
		s.Equal(true, req["use_balance"])
		s.Equal("http://localhost:8971", req["origin_url"])

		s.writeJSON(w, http.StatusOK, map[string]any{
			"order_id":     "order_1",
			"status":       "pending",
			"redirect_url": "https://pay.example.com/cs_1",
		})
	})
	client.SetToken("test-token")

	result, err := client.CreateOrder(s.T().Context(), CreateOrderArgs{
		CompetitionID:  "comp_1",
		TicketCount:    5,
		UseBalance:     true,
		OriginURL:      "http://localhost:8971",
		IdempotencyKey: "idem-123",
	})

	s.Require().NoError(err)
	s.Equal("order_1", result.OrderID)
	s.Equal(domain.OrderStatusPending, result.Status)
	s.Equal("https://pay.example.com/cs_1", result.RedirectURL)
	s.Empty(result.Tickets)
}

// TestCreateOrder_CompletedFromBalance Заказ, целиком покрытый балансом, приходит
// завершенным с билетами сразу.
func (s *ClientTestSuite) TestCreateOrder_CompletedFromBalance() {
	client := s.newClient(func(w http.ResponseWriter, _ *http.Request) {
		s.writeJSON(w, http.StatusOK, map[string]any{
			"order_id": "order_2",
			"status":   "completed",
			"tickets": []map[string]any{
				{"ticket_id": "t1", "ticket_number": "AAAA1111"},
				{"ticket_id": "t2", "ticket_number": "BBBB2222", "is_instant_win": true},
			},
		})
	})

	result, err := client.CreateOrder(s.T().Context(), CreateOrderArgs{
		CompetitionID: "comp_1",
		TicketCount:   2,
		UseBalance:    true,
	})

	s.Require().NoError(err)
	s.Equal(domain.OrderStatusCompleted, result.Status)
	s.Require().Len(result.Tickets, 2)
	s.True(result.Tickets[1].IsInstantWin)
}

// TestCheckoutStatus Оплаченная сессия: Paid() истинен, билеты распарсены
// вместе с данными мгновенного выигрыша.
func (s *ClientTestSuite) TestCheckoutStatus() {
	client := s.newClient(func(w http.ResponseWriter, r *http.Request) {
		s.Equal("/api/checkout/status/cs_1", r.URL.Path)
		s.writeJSON(w, http.StatusOK, map[string]any{
			"status":         "completed",
			"payment_status": "paid",
			"order": map[string]any{
				"order_id":     "order_1",
				"ticket_count": 2,
				"balance_used": 5,
			},
			"tickets": []map[string]any{
				{"ticket_id": "t1", "ticket_number": "AAAA1111"},
				{
					"ticket_id":         "t2",
					"ticket_number":     "BBBB2222",
					"is_instant_win":    true,
					"instant_win_prize": map[string]any{"name": "PS5", "value": 479},
				},
			},
		})
	})

	resp, err := client.CheckoutStatus(s.T().Context(), "cs_1")

	s.Require().NoError(err)
	s.True(resp.Paid())
	s.Require().NotNil(resp.Order)
	s.True(resp.Order.BalanceUsed.Equal(decimal.NewFromInt(5)))
	s.Require().Len(resp.Tickets, 2)
	s.Require().NotNil(resp.Tickets[1].InstantWinPrize)
	s.Equal("PS5", resp.Tickets[1].InstantWinPrize.Name)
}

// TestCheckoutStatus_Pending Неоплаченная сессия не считается терминальной.
func (s *ClientTestSuite) TestCheckoutStatus_Pending() {
	client := s.newClient(func(w http.ResponseWriter, _ *http.Request) {
		s.writeJSON(w, http.StatusOK, map[string]any{
			"status":         "pending",
			"payment_status": "unpaid",
		})
	})

	resp, err := client.CheckoutStatus(s.T().Context(), "cs_2")

	s.Require().NoError(err)
	s.False(resp.Paid())
}

// TestLogin Успешный вход возвращает пользователя и токен.
func (s *ClientTestSuite) TestLogin() {
	email := gofakeit.Email()

	client := s.newClient(func(w http.ResponseWriter, r *http.Request) {
		s.Equal("/api/auth/login", r.URL.Path)

		var req map[string]string
		s.Require().NoError(json.NewDecoder(r.Body).Decode(&req))
		s.Equal(email, req["email"])

		s.writeJSON(w, http.StatusOK, map[string]any{
			"user":  map[string]any{"user_id": "user_1", "email": email, "balance": 12.5},
			"token": "jwt-token",
		})
	})

	result, err := client.Login(s.T().Context(), email, "secret123")

	s.Require().NoError(err)
	s.Equal("user_1", result.User.ID)
	s.True(result.User.Balance.Equal(decimal.NewFromFloat(12.5)))
	s.Equal("jwt-token", result.Token)
}

// TestMe_Unauthorized 401 мапится на domain.ErrNotAuthenticated.
func (s *ClientTestSuite) TestMe_Unauthorized() {
	client := s.newClient(func(w http.ResponseWriter, _ *http.Request) {
		s.writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Not authenticated"})
	})

	user, err := client.Me(s.T().Context())

	s.Nil(user)
	s.ErrorIs(err, domain.ErrNotAuthenticated)
}

// TestHealth Probe живости: успех и деградация.
func (s *ClientTestSuite) TestHealth() {
	client := s.newClient(func(w http.ResponseWriter, r *http.Request) {
		s.Equal("/api/health", r.URL.Path)
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})
	s.NoError(client.Health(s.T().Context()))
}

func (s *ClientTestSuite) TestHealth_Degraded() {
	client := s.newClient(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	s.Error(client.Health(s.T().Context()))
}
