package financeapi

import (
	"context"
	"strconv"

	"github.com/kislikjeka/fintrack/internal/platform/transaction"
	apperrors "github.com/kislikjeka/fintrack/internal/shared/errors"
	"github.com/kislikjeka/fintrack/pkg/logger"
)

// ResponseCache stores decoded API reads. Fresh entries short-circuit a read;
// stale entries outlive them and are served when the API is down.
type ResponseCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	GetStale(ctx context.Context, key string, dest any) (bool, error)
	SetStale(ctx context.Context, key string, value any) error
	Invalidate(ctx context.Context) error
}

// Service maps each store operation onto one API call.
// Reads never fail: on error they log and return an empty map, an empty slice or nil.
// Only CreateTransaction reports failure, as a NetworkError.
type Service struct {
	client *Client
	cache  ResponseCache
	logger *logger.Logger
}

// ServiceOption configures a Service
type ServiceOption func(*Service)

// WithCache puts a response cache in front of the reads
func WithCache(cache ResponseCache) ServiceOption {
	return func(s *Service) {
		s.cache = cache
	}
}

// NewService creates a degrading adapter over client
func NewService(client *Client, log *logger.Logger, opts ...ServiceOption) *Service {
	if log == nil {
		log = logger.Discard()
	}
	s := &Service{
		client: client,
		logger: log.WithComponent("financeapi"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetTransactions returns the newest limit transactions, or none on failure.
// Records that fail to convert are skipped.
func (s *Service) GetTransactions(ctx context.Context, limit int) []*transaction.Transaction {
	dtos := read(ctx, s, "transactions:"+strconv.Itoa(limit), "fetch transactions", []TransactionDTO{},
		func(ctx context.Context) ([]TransactionDTO, error) {
			return s.client.GetTransactions(ctx, limit)
		})

	out := make([]*transaction.Transaction, 0, len(dtos))
	for _, dto := range dtos {
		tx, err := FromDTO(dto)
		if err != nil {
			s.logger.WithContext(ctx).WithError(err).Warn("skipping malformed transaction", "id", string(dto.ID))
			continue
		}
		out = append(out, tx)
	}
	return out
}

// GetBalances returns account name to balance, or an empty map on failure
func (s *Service) GetBalances(ctx context.Context) map[string]float64 {
	return read(ctx, s, "balances", "fetch balances", map[string]float64{},
		func(ctx context.Context) (map[string]float64, error) {
			return s.client.GetBalances(ctx)
		})
}

// GetSpendingByCategory returns spending per category in r, or an empty map on failure
func (s *Service) GetSpendingByCategory(ctx context.Context, r transaction.DateRange) map[string]float64 {
	return read(ctx, s, "spending:"+r.Key(), "fetch spending by category", map[string]float64{},
		func(ctx context.Context) (map[string]float64, error) {
			return s.client.GetSpendingByCategory(ctx, r.StartString(), r.EndString())
		})
}

// GetCategoryChart returns the base64 category chart for r, or nil
func (s *Service) GetCategoryChart(ctx context.Context, r transaction.DateRange) *string {
	return read(ctx, s, "chart:category:"+r.Key(), "fetch category chart", (*string)(nil),
		func(ctx context.Context) (*string, error) {
			return s.client.GetCategoryChart(ctx, r.StartString(), r.EndString())
		})
}

// GetMonthlyChart returns the base64 monthly chart, or nil
func (s *Service) GetMonthlyChart(ctx context.Context) *string {
	return read(ctx, s, "chart:monthly", "fetch monthly chart", (*string)(nil),
		func(ctx context.Context) (*string, error) {
			return s.client.GetMonthlyChart(ctx)
		})
}

// CreateTransaction posts tx and returns the server's record. Any failure is
// returned as a NetworkError so the caller can offer a retry.
func (s *Service) CreateTransaction(ctx context.Context, tx *transaction.Transaction) (*transaction.Transaction, error) {
	created, err := s.client.CreateTransaction(ctx, ToDTO(tx))
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("create transaction failed")
		return nil, apperrors.Network("create transaction", err)
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logger.WithContext(ctx).WithError(err).Warn("failed to invalidate response cache")
		}
	}

	confirmed, err := FromDTO(*created)
	if err != nil {
		// The write went through; keep our own copy rather than fail it
		s.logger.WithContext(ctx).WithError(err).Warn("server returned an unreadable transaction")
		return tx.Clone(), nil
	}
	return confirmed, nil
}

// read runs fetch behind the cache and degrades to neutral on failure
func read[T any](ctx context.Context, s *Service, key, operation string, neutral T, fetch func(context.Context) (T, error)) T {
	log := s.logger.WithContext(ctx).WithField("operation", operation)

	if s.cache != nil {
		var cached T
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			log.WithError(err).Warn("cache read failed")
		} else if found {
			return cached
		}
	}

	v, err := fetch(ctx)
	if err == nil {
		if s.cache != nil {
			if err := s.cache.Set(ctx, key, v); err != nil {
				log.WithError(err).Warn("cache write failed")
			}
			if err := s.cache.SetStale(ctx, key, v); err != nil {
				log.WithError(err).Warn("stale cache write failed")
			}
		}
		return nonNil(v, neutral)
	}

	log.WithError(err).Error("finance API read failed, degrading")

	if s.cache != nil {
		var stale T
		if found, cacheErr := s.cache.GetStale(ctx, key, &stale); cacheErr == nil && found {
			log.Info("serving stale response")
			return nonNil(stale, neutral)
		}
	}

	return neutral
}

// nonNil swaps a nil map or slice decoded from JSON null for the neutral value
func nonNil[T any](v, neutral T) T {
	switch x := any(v).(type) {
	case map[string]float64:
		if x == nil {
			return neutral
		}
	case []TransactionDTO:
		if x == nil {
			return neutral
		}
	}
	return v
}
