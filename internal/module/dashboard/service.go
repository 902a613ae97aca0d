package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"cloud.google.com/go/civil"
	"golang.org/x/sync/errgroup"

	"github.com/kislikjeka/fintrack/internal/ledger"
	"github.com/kislikjeka/fintrack/internal/module/forms"
	"github.com/kislikjeka/fintrack/internal/module/summary"
	"github.com/kislikjeka/fintrack/internal/platform/account"
	"github.com/kislikjeka/fintrack/internal/platform/transaction"
	"github.com/kislikjeka/fintrack/pkg/logger"
	"github.com/kislikjeka/fintrack/pkg/money"
)

// Service is the application state: the view store, the backend behind it and
// both creation dialogs. Handlers receive it explicitly.
type Service struct {
	store   *ledger.Store
	backend Backend
	log     *logger.Logger

	txForm  *forms.TransactionForm
	accForm *forms.AccountForm

	currency string

	mu            sync.RWMutex
	loadGen       uint64
	spending      map[string]float64
	categoryChart *string
	monthlyChart  *string
}

// Option configures a Service
type Option func(*Service)

// WithClock sets the source of the default date for new transactions
func WithClock(today func() civil.Date) Option {
	return func(s *Service) {
		s.txForm = forms.NewTransactionForm(today)
	}
}

// WithCurrency sets the symbol used in formatted amounts
func WithCurrency(symbol string) Option {
	return func(s *Service) {
		s.currency = symbol
	}
}

// NewService wires a dashboard over store and backend
func NewService(store *ledger.Store, backend Backend, log *logger.Logger, opts ...Option) *Service {
	if log == nil {
		log = logger.Discard()
	}
	s := &Service{
		store:    store,
		backend:  backend,
		log:      log.WithComponent("dashboard"),
		txForm:   forms.NewTransactionForm(nil),
		accForm:  forms.NewAccountForm(),
		currency: "₹",
		spending: map[string]float64{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load refetches everything the dashboard shows. The store snapshot, spending
// and charts are fetched concurrently. A load overtaken by a newer one is not an error.
func (s *Service) Load(ctx context.Context) error {
	start := time.Now()

	s.mu.Lock()
	s.loadGen++
	gen := s.loadGen
	s.mu.Unlock()

	var (
		spending      map[string]float64
		categoryChart *string
		monthlyChart  *string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.store.Load(gctx, s.backend)
	})
	g.Go(func() error {
		spending = s.backend.SpendingByCategory(gctx, transaction.DateRange{})
		return nil
	})
	g.Go(func() error {
		categoryChart = s.backend.CategoryChart(gctx, transaction.DateRange{})
		return nil
	})
	g.Go(func() error {
		monthlyChart = s.backend.MonthlyChart(gctx)
		return nil
	})

	err := g.Wait()
	if errors.Is(err, ledger.ErrStaleLoad) {
		s.log.WithContext(ctx).Debug("dashboard load superseded")
		return nil
	}
	if err != nil {
		s.log.WithContext(ctx).WithError(err).Error("dashboard load failed")
		return err
	}

	if spending == nil {
		spending = map[string]float64{}
	}

	s.mu.Lock()
	if gen != s.loadGen {
		s.mu.Unlock()
		s.log.WithContext(ctx).Debug("dashboard load superseded")
		return nil
	}
	s.spending = spending
	s.categoryChart = categoryChart
	s.monthlyChart = monthlyChart
	s.mu.Unlock()

	s.log.WithContext(ctx).WithDuration(time.Since(start)).
		WithField("transactions", len(s.store.Transactions())).
		Debug("dashboard loaded")

	return nil
}

// View assembles the current dashboard
func (s *Service) View() *View {
	accounts := s.store.Accounts()
	txs := s.store.Transactions()
	status, loadErr := s.store.Status()
	hidden := s.store.Hidden()
	f := money.Formatter{Symbol: s.currency, Hidden: hidden}

	var personal, friends []*account.Account
	balances := make(map[string]float64, len(accounts))
	for _, a := range accounts {
		if a.IsPersonal() {
			personal = append(personal, a)
		} else {
			friends = append(friends, a)
		}
		balances[a.Name] = a.Balance
	}

	overview := summary.Compute(accounts, txs)
	total := summary.TotalBalance(balances)

	s.mu.RLock()
	spending := make(map[string]float64, len(s.spending))
	for k, v := range s.spending {
		spending[k] = v
	}
	hasCategory := s.categoryChart != nil
	hasMonthly := s.monthlyChart != nil
	s.mu.RUnlock()

	v := &View{
		Status:           status,
		Hidden:           hidden,
		Currency:         s.currency,
		Overview:         overview,
		OverviewDisplay:  newOverviewDisplay(overview, total, f),
		MoodMessage:      overview.Mood.Message(),
		PersonalAccounts: newAccountViews(personal, f),
		FriendAccounts:   newAccountViews(friends, f),
		Transactions:     newTransactionViews(txs, f),
		Balances:         balances,
		TotalBalance:     total,
		Spending:         spending,
		HasCategoryChart: hasCategory,
		HasMonthlyChart:  hasMonthly,
		Dialogs: Dialogs{
			Transaction: s.txForm.View(),
			Account:     s.accForm.View(),
		},
	}
	if loadErr != nil {
		v.Error = loadErr.Error()
	}
	return v
}

// Accounts returns the loaded accounts
func (s *Service) Accounts() []*account.Account {
	return s.store.Accounts()
}

// Transactions returns the loaded transactions, most recent first
func (s *Service) Transactions() []*transaction.Transaction {
	return s.store.Transactions()
}

// TransactionDialog returns the add-transaction dialog
func (s *Service) TransactionDialog() *forms.TransactionForm {
	return s.txForm
}

// AccountDialog returns the add-account dialog
func (s *Service) AccountDialog() *forms.AccountForm {
	return s.accForm
}

// SubmitTransaction commits the add-transaction draft through the backend and refetches.
// Account names are checked against the loaded accounts before anything is sent.
func (s *Service) SubmitTransaction(ctx context.Context) (*transaction.Transaction, error) {
	created, err := s.txForm.Submit(ctx, func(ctx context.Context, tx *transaction.Transaction) (*transaction.Transaction, error) {
		if _, err := s.store.Account(tx.Account); err != nil {
			return nil, err
		}
		if tx.Direction == transaction.DirectionTransfer {
			if _, err := s.store.Account(tx.ToAccount); err != nil {
				return nil, fmt.Errorf("%w: %q", ledger.ErrDestinationNotFound, tx.ToAccount)
			}
		}
		return s.backend.CreateTransaction(ctx, tx)
	})
	if err != nil {
		return nil, err
	}

	s.log.WithContext(ctx).
		WithField("transaction_id", created.ID.String()).
		WithField("account", created.Account).
		Info("transaction created")

	s.refetch(ctx)
	return created, nil
}

// SubmitAccount commits the add-account draft through the backend and refetches
func (s *Service) SubmitAccount(ctx context.Context) (*account.Account, error) {
	created, err := s.accForm.Submit(ctx, s.backend.CreateAccount)
	if err != nil {
		return nil, err
	}

	s.log.WithContext(ctx).
		WithField("account_id", created.ID.String()).
		WithField("kind", string(created.Kind)).
		Info("account created")

	s.refetch(ctx)
	return created, nil
}

// refetch reloads after a write; the write itself already succeeded
func (s *Service) refetch(ctx context.Context) {
	if err := s.Load(ctx); err != nil {
		s.log.WithContext(ctx).WithError(err).Warn("refetch after write failed")
	}
}

// Spending returns spending per category for the range
func (s *Service) Spending(ctx context.Context, r transaction.DateRange) map[string]float64 {
	return s.backend.SpendingByCategory(ctx, r)
}

// CategoryChart returns the base64 category chart for the range, or nil
func (s *Service) CategoryChart(ctx context.Context, r transaction.DateRange) *string {
	return s.backend.CategoryChart(ctx, r)
}

// MonthlyChart returns the base64 monthly chart, or nil
func (s *Service) MonthlyChart(ctx context.Context) *string {
	return s.backend.MonthlyChart(ctx)
}

// ToggleVisibility flips balance masking and returns whether balances are now hidden
func (s *Service) ToggleVisibility() bool {
	return s.store.ToggleVisibility()
}

// Status returns the store's load state
func (s *Service) Status() (ledger.Status, error) {
	return s.store.Status()
}
