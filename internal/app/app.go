package app

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/mkdm/raffly/internal/catalog"
	"github.com/mkdm/raffly/internal/config"
	"github.com/mkdm/raffly/internal/domain"
	"github.com/mkdm/raffly/internal/purchase"
	"github.com/mkdm/raffly/internal/session"
	"github.com/mkdm/raffly/internal/settlement"
	"github.com/mkdm/raffly/internal/transport/backend"
	"github.com/mkdm/raffly/internal/transport/callback"
)

type App struct {
	Config *config.Config
	Logger *logrus.Logger
}

func New(conf *config.Config, l *logrus.Logger) *App {
	return &App{
		Config: conf,
		Logger: l,
	}
}

// Run поднимает клиент и выполняет запрошенную операцию: просмотр каталога,
// покупку билетов либо доведение до конца ранее начатой оплаты.
func (a *App) Run() error {
	notifyCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := backend.New(a.Config.BackendURL)
	store := session.NewFileStore(a.Config.CredentialsFile)
	sess := session.New(client, store, a.Config.ProviderAuthURL, a.Logger)

	// Probe живости сугубо информационный: при недоступном бэкенде приложение
	// продолжает работать, пользователь лишь предупрежден.
	if healthErr := client.Health(notifyCtx); healthErr != nil {
		a.Logger.WithError(healthErr).Warn("backend degraded, some operations may fail")
		fmt.Println("! service degraded: backend health probe failed")
	}

	// Проверка сессии пропускается при входящем handoff коде, чтобы не обогнать
	// и не инвалидировать его обмен.
	pendingHandoff := a.Config.HandoffCode != ""
	if initErr := sess.Init(notifyCtx, pendingHandoff); initErr != nil {
		return fmt.Errorf("app run: %s", initErr.Error())
	}

	if pendingHandoff {
		user, exchErr := sess.ExchangeSession(notifyCtx, a.Config.HandoffCode)
		if exchErr != nil {
			return fmt.Errorf("app run: %s", exchErr.Error())
		}
		fmt.Printf("logged in as %s\n", user.Name)
	}

	switch {
	case a.Config.SettleSession != "":
		return a.settle(notifyCtx, client, sess, a.Config.SettleSession)
	case a.Config.CompetitionID != "":
		return a.purchase(notifyCtx, client, sess)
	default:
		return a.browse(notifyCtx, client)
	}
}

// browse печатает витрину и список розыгрышей с победителями.
func (a *App) browse(ctx context.Context, client *backend.Client) error {
	cat := catalog.New(client, a.Logger)

	items, listErr := cat.List(ctx, catalog.Filter{Sort: domain.SortEndingSoon})
	if listErr != nil {
		return fmt.Errorf("browse: %s", listErr.Error())
	}

	for _, item := range items {
		marker := " "
		if item.EndingSoon {
			marker = "!"
		}
		fmt.Printf("%s %-14s %-40s £%s (%d/%d sold)\n",
			marker, item.ID, item.Title, item.TicketPrice, item.SoldTickets, item.TotalTickets)
	}

	winners, winErr := client.Winners(ctx)
	if winErr != nil {
		// список победителей не обязателен для просмотра каталога.
		a.Logger.WithError(winErr).Warn("fetch winners")
		return nil
	}
	for _, w := range winners {
		fmt.Printf("won: %s took £%s with ticket %s\n", w.UserName, w.PrizeValue, w.TicketNumber)
	}
	return nil
}

// purchase ведет полный цикл покупки: композер, внешняя оплата через редирект
// и поллинг settlement после возврата.
func (a *App) purchase(ctx context.Context, client *backend.Client, sess *session.Context) error {
	competition, compErr := client.GetCompetition(ctx, a.Config.CompetitionID)
	if compErr != nil {
		return fmt.Errorf("purchase: %s", compErr.Error())
	}

	cb := callback.New(a.Config.CallbackAddress, a.Logger)
	cbCtx, stopCb := context.WithCancel(ctx)
	defer stopCb()

	cbErrCh := make(chan error, 1)
	go func() {
		if runErr := cb.Run(cbCtx); runErr != nil {
			cbErrCh <- runErr
		}
	}()

	composer := purchase.NewComposer(*competition, sess, client, cb.OriginURL(), a.Logger)
	composer.SetCount(a.Config.TicketCount)
	composer.SetUseBalance(a.Config.UseBalance)
	composer.SetTermsAccepted(a.Config.AcceptTerms)

	quote := composer.Quote()
	fmt.Printf("%d ticket(s) for %q: total £%s, balance -£%s, to pay £%s\n",
		quote.TicketCount, competition.Title, quote.TotalPrice, quote.BalanceToUse, quote.FinalPrice)

	result, submitErr := composer.Submit(ctx)
	if submitErr != nil {
		var authErr *domain.AuthRequiredError
		if errors.As(submitErr, &authErr) {
			retried, loginErr := a.loginAndRetry(ctx, sess, composer, cb)
			if loginErr != nil {
				return fmt.Errorf("purchase: %s", loginErr.Error())
			}
			result = retried
		} else {
			return fmt.Errorf("purchase: %s", submitErr.Error())
		}
	}

	if result.Completed {
		// оплата целиком покрыта балансом, внешний провайдер не задействован.
		printTickets(result.Tickets)
		return a.showDashboard(ctx, client)
	}

	fmt.Printf("complete the payment in your browser:\n  %s\n", result.RedirectURL)

	select {
	case <-ctx.Done():
		return ctx.Err() //nolint:wrapcheck
	case cbErr := <-cbErrCh:
		return fmt.Errorf("purchase: callback server: %s", cbErr.Error())
	case <-cb.Cancellations():
		fmt.Println("payment cancelled")
		return nil
	case sessionID := <-cb.CheckoutSessions():
		return a.settle(ctx, client, sess, sessionID)
	}
}

// loginAndRetry направляет пользователя на вход через внешнего провайдера и после
// успешного handoff возвращает его к той же незавершенной покупке.
func (a *App) loginAndRetry(
	ctx context.Context,
	sess *session.Context,
	composer *purchase.Composer,
	cb *callback.Server,
) (*purchase.Result, error) {
	loginURL := sess.BeginExternalLogin(cb.OriginURL() + callback.RouteAuthCallback)
	fmt.Printf("login required, open in your browser:\n  %s\n", loginURL)

	select {
	case <-ctx.Done():
		return nil, ctx.Err() //nolint:wrapcheck
	case handoff := <-cb.AuthSessions():
		user, exchErr := sess.ExchangeSession(ctx, handoff)
		if exchErr != nil {
			return nil, exchErr
		}
		fmt.Printf("logged in as %s\n", user.Name)
	}

	result, submitErr := composer.Submit(ctx)
	if submitErr != nil {
		return nil, submitErr
	}
	return result, nil
}

// settle доводит платежную сессию до терминального состояния и показывает итог.
// При неопределенности (timeout/error) пользователь направляется в дашборд:
// тот всегда отражает авторитетное состояние бэкенда.
func (a *App) settle(ctx context.Context, client *backend.Client, sess *session.Context, sessionID string) error {
	poller := settlement.New(client, sess, a.Logger).
		SetInterval(a.Config.SettleInterval).
		SetMaxAttempts(a.Config.SettleMaxRetries)

	result, runErr := poller.Run(ctx, sessionID)
	if runErr != nil {
		return fmt.Errorf("settle: %s", runErr.Error())
	}

	switch result.State {
	case settlement.StateSuccess:
		fmt.Println("tickets secured, good luck!")
		printTickets(result.Tickets)
		for _, win := range result.InstantWins {
			if win.InstantWinPrize != nil {
				fmt.Printf("instant win! %s (£%s) - ticket %s\n",
					win.InstantWinPrize.Name, win.InstantWinPrize.Value, win.Number)
			}
		}
	case settlement.StateTimeout, settlement.StateError:
		fmt.Println("payment is still processing, check your dashboard for tickets")
	case settlement.StateChecking:
		// Run не возвращает нетерминальное состояние.
	}

	return a.showDashboard(ctx, client)
}

func (a *App) showDashboard(ctx context.Context, client *backend.Client) error {
	entries, entriesErr := client.UserEntries(ctx)
	if entriesErr != nil {
		return fmt.Errorf("dashboard: %s", entriesErr.Error())
	}

	for _, entry := range entries {
		fmt.Printf("%s: %d ticket(s)\n", entry.Competition.Title, len(entry.Tickets))
	}
	return nil
}

func printTickets(tickets []domain.Ticket) {
	for _, t := range tickets {
		marker := " "
		if t.IsInstantWin {
			marker = "*"
		}
		fmt.Printf("%s ticket %s\n", marker, t.Number)
	}
}
