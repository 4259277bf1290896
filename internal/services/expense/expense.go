// Package expense implements the expense scoring pipeline: normalization of
// raw request attributes, cancelability scoring with rigidity classification,
// persistence and caching of the result.
package expense

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/solvradar/solvency-radar/internal/engine/rigidity"
	"github.com/solvradar/solvency-radar/internal/models"
)

var scoredTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "solvency_expenses_scored_total",
	Help: "Number of expenses scored, by effective rigidity.",
}, []string{"rigidity"})

// Repository is the storage contract for expenses.
type Repository interface {
	CreateExpense(ctx context.Context, e models.Expense) (int, error)
	ListExpenses(ctx context.Context, username string) ([]*models.Expense, error)
	RemoveExpense(ctx context.Context, id int, username string) (int, error)
}

// Cache is the JSON cache contract.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// Service scores, stores and lists expenses.
type Service struct {
	repo       Repository
	cache      Cache
	classifier *rigidity.Classifier
	log        *slog.Logger
}

// New creates the expense service with the default wall-clock classifier.
func New(repo Repository, cache Cache, log *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		cache:      cache,
		classifier: rigidity.New(nil),
		log:        log,
	}
}

// Normalize applies defaults and bounds checks to a raw expense, producing the
// attributes consumed by the scorer. Absent optional fields take their
// documented defaults; any violation aborts with InvalidInput.
func Normalize(req models.RawExpense) (models.ExpenseAttributes, error) {
	attrs := models.ExpenseAttributes{
		Intention:        models.IntentionComfort,
		Substitutability: 5,
		OverrideReason:   req.OverrideReason,
	}

	attrs.Name = strings.TrimSpace(req.Name)
	if attrs.Name == "" {
		return attrs, models.NewInvalidInput("name", "must be non-empty")
	}

	if req.Amount == nil {
		return attrs, models.NewInvalidInput("amount", "is required")
	}
	if *req.Amount < 0 {
		return attrs, models.NewInvalidInput("amount", "must be >= 0")
	}
	attrs.Amount = *req.Amount

	if req.Intention != "" {
		switch models.Intention(req.Intention) {
		case models.IntentionEssential, models.IntentionComfort, models.IntentionGrowth,
			models.IntentionWealth, models.IntentionLeisure:
			attrs.Intention = models.Intention(req.Intention)
		default:
			return attrs, models.NewInvalidInput("intention", "unknown value "+req.Intention)
		}
	}

	if req.ContractMonthsRemaining != nil {
		if *req.ContractMonthsRemaining < 0 {
			return attrs, models.NewInvalidInput("contract_months_remaining", "must be >= 0")
		}
		attrs.ContractMonthsRemaining = *req.ContractMonthsRemaining
	}
	if req.NoticeDays != nil {
		if *req.NoticeDays < 0 {
			return attrs, models.NewInvalidInput("notice_days", "must be >= 0")
		}
		attrs.NoticeDays = *req.NoticeDays
	}
	if req.CancellationFeePct != nil {
		if *req.CancellationFeePct < 0 || *req.CancellationFeePct > 100 {
			return attrs, models.NewInvalidInput("cancellation_fee_pct", "must be in [0,100]")
		}
		attrs.CancellationFeePct = *req.CancellationFeePct
	}
	if req.HasLegalLink != nil {
		attrs.HasLegalLink = *req.HasLegalLink
	}
	if req.EssentialObligation != nil {
		attrs.EssentialObligation = *req.EssentialObligation
	}
	if req.Substitutability != nil {
		if *req.Substitutability < 0 || *req.Substitutability > 10 {
			return attrs, models.NewInvalidInput("substitutability", "must be in [0,10]")
		}
		attrs.Substitutability = *req.Substitutability
	}
	if req.OverrideRigidity != nil {
		switch models.Rigidity(*req.OverrideRigidity) {
		case models.RigidityFixed, models.RigidityFlexible:
			r := models.Rigidity(*req.OverrideRigidity)
			attrs.OverrideRigidity = &r
		default:
			return attrs, models.NewInvalidInput("override_rigidity", "must be FIXED or FLEXIBLE")
		}
	}

	return attrs, nil
}

// Score normalizes and classifies the expense, persists it with its score
// result and returns the stored record.
func (s *Service) Score(ctx context.Context, username string, req models.RawExpense) (*models.Expense, error) {
	attrs, err := Normalize(req)
	if err != nil {
		return nil, err
	}

	result := s.classifier.Classify(attrs)

	item := models.Expense{
		Username:          username,
		Attributes:        attrs,
		Score:             &result.CancelabilityScore,
		ComputedRigidity:  &result.ComputedRigidity,
		RigidityEffective: &result.RigidityEffective,
		Warnings:          result.Warnings,
		ComputedAt:        &result.ComputedAt,
	}

	id, err := s.repo.CreateExpense(ctx, item)
	if err != nil {
		return nil, err
	}
	item.ID = id

	s.log.Info("scored new expense",
		slog.Int("id", id),
		slog.Int("score", result.CancelabilityScore),
		slog.String("rigidity", string(result.RigidityEffective)))
	scoredTotal.WithLabelValues(string(result.RigidityEffective)).Inc()

	cacheKey := fmt.Sprintf("expense:%d", id)
	if err := s.cache.Set(cacheKey, item, time.Hour); err != nil {
		s.log.Warn("failed to cache expense", slog.String("key", cacheKey), slog.Any("err", err))
	}
	if err := s.cache.Invalidate("report:" + username); err != nil {
		s.log.Warn("failed to invalidate report cache", slog.Any("err", err))
	}

	return &item, nil
}

// List returns all of the user's expenses with their stored score results.
func (s *Service) List(ctx context.Context, username string) ([]*models.Expense, error) {
	return s.repo.ListExpenses(ctx, username)
}

// Remove deletes the user's expense and returns the number of deleted rows.
func (s *Service) Remove(ctx context.Context, id int, username string) (int, error) {
	cacheKey := fmt.Sprintf("expense:%d", id)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to remove from cache", slog.String("key", cacheKey), slog.Any("err", err))
	}
	if err := s.cache.Invalidate("report:" + username); err != nil {
		s.log.Warn("failed to invalidate report cache", slog.Any("err", err))
	}

	count, err := s.repo.RemoveExpense(ctx, id, username)
	if err != nil {
		return 0, err
	}
	return count, nil
}
