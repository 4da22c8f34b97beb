// Package session владеет процессным состоянием аутентификации: снапшот текущего
// пользователя и credentials. Единственный компонент, которому разрешено их мутировать;
// остальные читают снапшоты и просят Refresh.
package session

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/mkdm/raffly/internal/domain"
	"github.com/mkdm/raffly/internal/transport/backend"
)

// Store абстракция над локальным хранилищем credentials.
type Store interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

type Context struct {
	client          *backend.Client
	store           Store
	providerAuthURL string
	l               *logrus.Entry
	validate        *validator.Validate

	refreshGroup singleflight.Group

	mu   sync.RWMutex
	user *domain.User
}

func New(client *backend.Client, store Store, providerAuthURL string, l *logrus.Logger) *Context {
	return &Context{
		client:          client,
		store:           store,
		providerAuthURL: providerAuthURL,
		l: l.WithFields(logrus.Fields{
			"component": "session",
		}),
		validate: validator.New(),
	}
}

// Init выполняет ровно одну проверку сессии при старте приложения.
//
// Жесткий инвариант порядка: если во входящей навигации присутствует handoff код
// стороннего логина (pendingHandoff), проверка пропускается целиком - иначе она
// могла бы обогнать обмен кода и преждевременно сбросить состояние в "logged out".
// Обмен выполнит ExchangeSession, он же и установит пользователя.
func (s *Context) Init(ctx context.Context, pendingHandoff bool) error {
	token, loadErr := s.store.Load()
	if loadErr != nil {
		return fmt.Errorf("session init: %w", loadErr)
	}
	s.client.SetToken(token)

	if pendingHandoff {
		s.l.Info("handoff in progress, skipping session check")
		return nil
	}

	user, meErr := s.client.Me(ctx)
	if meErr != nil {
		// отсутствие валидной сессии - штатный исход инициализации.
		s.setUser(nil)
		s.l.WithError(meErr).Debug("no active session")
		return nil
	}

	s.setUser(user)
	return nil
}

type LoginArgs struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6,max=255"`
}

// Login аутентифицирует пользователя и сохраняет полученные credentials.
func (s *Context) Login(ctx context.Context, args LoginArgs) (*domain.User, error) {
	if valErr := s.validate.Struct(args); valErr != nil {
		return nil, fmt.Errorf("login: %w", valErr)
	}

	result, loginErr := s.client.Login(ctx, args.Email, args.Password)
	if loginErr != nil {
		return nil, fmt.Errorf("login: %w", loginErr)
	}

	if err := s.adoptCredentials(result); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return s.User(), nil
}

type RegisterArgs struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6,max=255"`
	Name     string `validate:"required,min=1,max=100"`
}

// Register создает аккаунт и сразу аутентифицирует пользователя.
func (s *Context) Register(ctx context.Context, args RegisterArgs) (*domain.User, error) {
	if valErr := s.validate.Struct(args); valErr != nil {
		return nil, fmt.Errorf("register: %w", valErr)
	}

	result, regErr := s.client.Register(ctx, args.Email, args.Password, args.Name)
	if regErr != nil {
		return nil, fmt.Errorf("register: %w", regErr)
	}

	if err := s.adoptCredentials(result); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return s.User(), nil
}

// BeginExternalLogin возвращает URL провайдера стороннего логина. После успешного
// входа провайдер вернет навигацию на returnURL с handoff кодом.
func (s *Context) BeginExternalLogin(returnURL string) string {
	return s.providerAuthURL + "?redirect=" + url.QueryEscape(returnURL)
}

// ExchangeSession обменивает одноразовый handoff код на аутентифицированную сессию.
func (s *Context) ExchangeSession(ctx context.Context, sessionID string) (*domain.User, error) {
	result, exchErr := s.client.ExchangeSession(ctx, sessionID)
	if exchErr != nil {
		return nil, fmt.Errorf("exchange session: %w", exchErr)
	}

	if err := s.adoptCredentials(result); err != nil {
		return nil, fmt.Errorf("exchange session: %w", err)
	}
	return s.User(), nil
}

// Logout завершает сессию. Удаленная инвалидация best-effort: локальные credentials
// чистятся безусловно, даже если бэкенд недоступен.
func (s *Context) Logout(ctx context.Context) {
	if remoteErr := s.client.Logout(ctx); remoteErr != nil {
		s.l.WithError(remoteErr).Warn("remote logout failed")
	}

	s.setUser(nil)
	s.client.SetToken("")
	if clearErr := s.store.Clear(); clearErr != nil {
		s.l.WithError(clearErr).Warn("clear stored credentials")
	}
}

// Refresh перечитывает снапшот пользователя с бэкенда. Конкурентные вызовы
// схлопываются в один сетевой запрос.
func (s *Context) Refresh(ctx context.Context) error {
	_, refreshErr, _ := s.refreshGroup.Do("refresh", func() (any, error) {
		user, meErr := s.client.Me(ctx)
		if meErr != nil {
			return nil, meErr
		}
		s.setUser(user)
		return nil, nil //nolint:nilnil
	})

	if refreshErr != nil {
		return fmt.Errorf("session refresh: %w", refreshErr)
	}
	return nil
}

// User возвращает копию снапшота текущего пользователя или nil.
func (s *Context) User() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil {
		return nil
	}
	snapshot := *s.user
	return &snapshot
}

func (s *Context) IsAuthenticated() bool {
	return s.User() != nil
}

func (s *Context) adoptCredentials(result *backend.AuthResult) error {
	s.client.SetToken(result.Token)
	s.setUser(&result.User)

	if saveErr := s.store.Save(result.Token); saveErr != nil {
		return saveErr
	}
	return nil
}

func (s *Context) setUser(user *domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
}
