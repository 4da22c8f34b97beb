// Package callback принимает возвратную навигацию внешних редиректов: возврат
// с платежной страницы и callback стороннего логина. Локальный аналог браузерного
// return URL: провайдер редиректит сюда, correlation identifier уходит приложению
// через канал.
package callback

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	RouteCheckoutSuccess = "/checkout/success"
	RouteCheckoutCancel  = "/checkout/cancel"
	RouteAuthCallback    = "/auth/callback"
)

const shutdownTimeout = 3 * time.Second

type Server struct {
	addr string
	l    *logrus.Entry

	checkoutCh chan string
	authCh     chan string
	cancelCh   chan struct{}
}

func New(addr string, l *logrus.Logger) *Server {
	return &Server{
		addr: addr,
		l:    l.WithField("component", "callback"),
		// буфер на одну навигацию: повторный редирект с тем же id дропается.
		checkoutCh: make(chan string, 1),
		authCh:     make(chan string, 1),
		cancelCh:   make(chan struct{}, 1),
	}
}

// OriginURL базовый URL, который отдается бэкенду как origin для построения
// success/cancel ссылок платежного провайдера.
func (s *Server) OriginURL() string {
	return "http://" + s.addr
}

// CheckoutSessions канал correlation id, пришедших с возврата после оплаты.
func (s *Server) CheckoutSessions() <-chan string {
	return s.checkoutCh
}

// AuthSessions канал handoff кодов стороннего логина.
func (s *Server) AuthSessions() <-chan string {
	return s.authCh
}

// Cancellations сигнал отмены оплаты пользователем на странице провайдера.
func (s *Server) Cancellations() <-chan struct{} {
	return s.cancelCh
}

func (s *Server) router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET(RouteCheckoutSuccess, s.handleCheckoutSuccess)
	router.GET(RouteCheckoutCancel, s.handleCheckoutCancel)
	router.GET(RouteAuthCallback, s.handleAuthCallback)
	return router
}

// Run поднимает HTTP сервер и гасит его при отмене контекста.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if serveErr := srv.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errCh <- serveErr
		}
	}()

	s.l.WithField("addr", s.addr).Info("callback server listening")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx) //nolint:wrapcheck
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleCheckoutSuccess(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		// возврат без correlation identifier бесполезен, поллер по нему не запустится.
		c.String(http.StatusBadRequest, "missing session_id")
		return
	}

	select {
	case s.checkoutCh <- sessionID:
		s.l.WithField("sessionID", sessionID).Info("payment return received")
	default:
		s.l.WithField("sessionID", sessionID).Debug("duplicate payment return dropped")
	}

	c.String(http.StatusOK, "Payment received. You can return to the raffly app.")
}

func (s *Server) handleCheckoutCancel(c *gin.Context) {
	select {
	case s.cancelCh <- struct{}{}:
	default:
	}
	c.String(http.StatusOK, "Payment cancelled. You can return to the raffly app.")
}

func (s *Server) handleAuthCallback(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		c.String(http.StatusBadRequest, "missing session_id")
		return
	}

	select {
	case s.authCh <- sessionID:
		s.l.Info("auth handoff received")
	default:
		s.l.Debug("duplicate auth handoff dropped")
	}

	c.String(http.StatusOK, "Login complete. You can return to the raffly app.")
}
