package settlement

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"

	"github.com/mkdm/raffly/internal/domain"
	"github.com/mkdm/raffly/internal/settlement/mocks"
	"github.com/mkdm/raffly/internal/transport/backend"
)

type PollerTestSuite struct {
	suite.Suite
	poller      *Poller
	mockClient  *mocks.MockStatusClient
	mockSession *mocks.MockSessionRefresher
	ctrl        *gomock.Controller
}

func (s *PollerTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())

	s.mockClient = mocks.NewMockStatusClient(s.ctrl)
	s.mockSession = mocks.NewMockSessionRefresher(s.ctrl)

	l := logrus.New()
	l.SetLevel(logrus.DebugLevel)

	// интервал сведен к минимуму, чтобы прогон бюджета попыток не тормозил тесты.
	s.poller = New(s.mockClient, s.mockSession, l).SetInterval(time.Millisecond)
}

func (s *PollerTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestPollerSuite(t *testing.T) {
	suite.Run(t, new(PollerTestSuite))
}

func pendingResponse() *backend.CheckoutStatusResponse {
	return &backend.CheckoutStatusResponse{
		Status:        domain.OrderStatusPending,
		PaymentStatus: "unpaid",
	}
}

func paidResponse(tickets []domain.Ticket) *backend.CheckoutStatusResponse {
	return &backend.CheckoutStatusResponse{
		Status:        domain.OrderStatusCompleted,
		PaymentStatus: "paid",
		Order:         &domain.Order{ID: "order_1", Status: domain.OrderStatusCompleted},
		Tickets:       tickets,
	}
}

// TestRun_NoSessionID Защитный инвариант: без correlation id поллинг не запускается вовсе.
func (s *PollerTestSuite) TestRun_NoSessionID() {
	result, err := s.poller.Run(s.T().Context(), "")

	s.Nil(result)
	s.ErrorIs(err, ErrNoSession)
	s.Equal(StateChecking, s.poller.State())
}

// TestRun_PaidOnLastAttempt Статус pending девять раз подряд, paid на десятой попытке -
// в пределах бюджета, исход success.
func (s *PollerTestSuite) TestRun_PaidOnLastAttempt() {
	tickets := []domain.Ticket{
		{ID: "t1", Number: "AAAA1111"},
		{ID: "t2", Number: "BBBB2222", IsInstantWin: true, InstantWinPrize: &domain.InstantWinPrize{Name: "AirPods"}},
		{ID: "t3", Number: "CCCC3333"},
	}

	gomock.InOrder(
		s.mockClient.EXPECT().
			CheckoutStatus(gomock.Any(), "cs_test_1").
			Return(pendingResponse(), nil).
			Times(9),
		s.mockClient.EXPECT().
			CheckoutStatus(gomock.Any(), "cs_test_1").
			Return(paidResponse(tickets), nil),
	)
	// ровно один refresh на терминальный переход.
	s.mockSession.EXPECT().Refresh(gomock.Any()).Return(nil).Times(1)

	result, err := s.poller.Run(s.T().Context(), "cs_test_1")

	s.Require().NoError(err)
	s.Equal(StateSuccess, result.State)
	s.Equal(StateSuccess, s.poller.State())
	s.Equal(uint(10), result.Attempts)
	s.Len(result.Tickets, 3)
	s.Len(result.InstantWins, 1)
	s.Equal("BBBB2222", result.InstantWins[0].Number)
}

// TestRun_BudgetExhausted Статус pending на всех попытках - исход timeout, никогда success.
func (s *PollerTestSuite) TestRun_BudgetExhausted() {
	s.mockClient.EXPECT().
		CheckoutStatus(gomock.Any(), "cs_test_2").
		Return(pendingResponse(), nil).
		Times(int(s.poller.maxAttempts))

	result, err := s.poller.Run(s.T().Context(), "cs_test_2")

	s.Require().NoError(err)
	s.Equal(StateTimeout, result.State)
	s.Equal(uint(10), result.Attempts)
	s.Empty(result.Tickets)
}

// TestRun_RepeatedErrors Эндпоинт статуса падает на каждой попытке - исход error,
// последняя ошибка сохранена для диагностики.
func (s *PollerTestSuite) TestRun_RepeatedErrors() {
	statusErr := backend.NewStatusCodeError(http.StatusInternalServerError, "boom")

	s.mockClient.EXPECT().
		CheckoutStatus(gomock.Any(), "cs_test_3").
		Return(nil, statusErr).
		Times(int(s.poller.maxAttempts))

	result, err := s.poller.Run(s.T().Context(), "cs_test_3")

	s.Require().NoError(err)
	s.Equal(StateError, result.State)
	s.ErrorAs(result.LastErr, new(*backend.StatusCodeError))
}

// TestRun_TransientErrorThenPaid Разовая ошибка транспорта тратит попытку, но не
// прерывает поллинг: следующий успешный ответ дает success.
func (s *PollerTestSuite) TestRun_TransientErrorThenPaid() {
	gomock.InOrder(
		s.mockClient.EXPECT().
			CheckoutStatus(gomock.Any(), "cs_test_4").
			Return(nil, backend.NewStatusCodeError(http.StatusBadGateway, "")),
		s.mockClient.EXPECT().
			CheckoutStatus(gomock.Any(), "cs_test_4").
			Return(paidResponse(nil), nil),
	)
	s.mockSession.EXPECT().Refresh(gomock.Any()).Return(nil)

	result, err := s.poller.Run(s.T().Context(), "cs_test_4")

	s.Require().NoError(err)
	s.Equal(StateSuccess, result.State)
	s.Equal(uint(2), result.Attempts)
}

// TestRun_Cancellation Отмена контекста между попытками: поллер выходит без
// терминального перехода и не трогает сессию.
func (s *PollerTestSuite) TestRun_Cancellation() {
	ctx, cancel := context.WithCancel(s.T().Context())

	s.mockClient.EXPECT().
		CheckoutStatus(gomock.Any(), "cs_test_5").
		DoAndReturn(func(context.Context, string) (*backend.CheckoutStatusResponse, error) {
			cancel()
			return pendingResponse(), nil
		})

	result, err := s.poller.Run(ctx, "cs_test_5")

	s.Nil(result)
	s.ErrorIs(err, context.Canceled)
	s.Equal(StateChecking, s.poller.State())
}

// TestReconcile_Idempotent Повторная сверка того же терминального ответа дает
// идентичный набор билетов и не дублирует эффекты.
func (s *PollerTestSuite) TestReconcile_Idempotent() {
	resp := paidResponse([]domain.Ticket{
		{ID: "t1", Number: "AAAA1111", IsInstantWin: true},
		{ID: "t2", Number: "BBBB2222"},
	})

	first := s.poller.Reconcile(resp)
	second := s.poller.Reconcile(resp)

	s.Equal(first.Tickets, second.Tickets)
	s.Equal(first.InstantWins, second.InstantWins)
	s.Len(second.Tickets, 2)
	s.Len(second.InstantWins, 1)
}

// TestReconcile_Partition Разбиение N билетов с k мгновенными выигрышами: ровно k
// в InstantWins и N всего.
func (s *PollerTestSuite) TestReconcile_Partition() {
	tickets := make([]domain.Ticket, 0, 5)
	for i := range 5 {
		tickets = append(tickets, domain.Ticket{
			Number:       string(rune('A' + i)),
			IsInstantWin: i%2 == 0,
		})
	}

	result := s.poller.Reconcile(paidResponse(tickets))

	s.Len(result.Tickets, 5)
	s.Len(result.InstantWins, 3)
	ordinary := len(result.Tickets) - len(result.InstantWins)
	s.Equal(2, ordinary)
}
