// Package risk implements the portfolio-level operations: monthly risk
// report assembly, the income-drop stress test, the compound-growth
// projection and profile management.
package risk

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/solvradar/solvency-radar/internal/engine/report"
	"github.com/solvradar/solvency-radar/internal/engine/simulate"
	"github.com/solvradar/solvency-radar/internal/models"
)

// reportCacheTTL keeps monthly reports fresh enough that a new expense is
// reflected within minutes even if invalidation is missed.
const reportCacheTTL = 5 * time.Minute

var reportsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "solvency_reports_generated_total",
	Help: "Number of monthly risk reports generated, by overall risk level.",
}, []string{"level"})

// ProfileRepository is the storage contract for financial profiles.
type ProfileRepository interface {
	GetProfile(ctx context.Context, username string) (*models.Profile, error)
	UpsertProfile(ctx context.Context, profile models.Profile) error
}

// ExpenseRepository lists the user's classified expenses.
type ExpenseRepository interface {
	ListExpenses(ctx context.Context, username string) ([]*models.Expense, error)
}

// UserRepository resolves account data for alert delivery.
type UserRepository interface {
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// AlertPublisher pushes risk alerts to the message broker.
type AlertPublisher interface {
	Publish(routingKey string, message any) error
}

// Cache is the JSON cache contract.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// Service assembles risk reports and runs the what-if simulators.
type Service struct {
	profiles  ProfileRepository
	expenses  ExpenseRepository
	users     UserRepository
	cache     Cache
	publisher AlertPublisher
	log       *slog.Logger
	now       func() time.Time
}

// New creates the risk service. publisher may be nil, in which case zone
// alerts are skipped.
func New(profiles ProfileRepository, expenses ExpenseRepository, users UserRepository,
	cache Cache, publisher AlertPublisher, log *slog.Logger) *Service {
	return &Service{
		profiles:  profiles,
		expenses:  expenses,
		users:     users,
		cache:     cache,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

// MonthlyReport computes the user's monthly risk report from the profile and
// all stored expenses. Reports are cached briefly; a cache hit skips both the
// aggregation and the alert publication.
func (s *Service) MonthlyReport(ctx context.Context, username string) (*models.MonthlyRiskReport, error) {
	cacheKey := "report:" + username
	var cached models.MonthlyRiskReport
	found, err := s.cache.Get(cacheKey, &cached)
	if err != nil {
		s.log.Warn("report cache read failed", slog.String("key", cacheKey), slog.Any("err", err))
	}
	if found {
		return &cached, nil
	}

	profile, err := s.profiles.GetProfile(ctx, username)
	if err != nil {
		return nil, err
	}
	items, err := s.expenses.ListExpenses(ctx, username)
	if err != nil {
		return nil, err
	}

	result := report.Aggregate(*profile, items, s.now().UTC())

	reportsGenerated.WithLabelValues(result.OverallRisk.Level).Inc()
	s.log.Info("generated monthly report",
		slog.String("username", username),
		slog.String("overall", result.OverallRisk.Level),
		slog.Int("expenses", result.ExpenseCount))

	if err := s.cache.Set(cacheKey, result, reportCacheTTL); err != nil {
		s.log.Warn("failed to cache report", slog.String("key", cacheKey), slog.Any("err", err))
	}

	if result.FixedZone.Level != models.ZoneOK {
		s.publishAlert(ctx, username, &result)
	}

	return &result, nil
}

// publishAlert sends a zone-crossed alert to the broker. Failures are logged,
// never surfaced: the report itself is already complete.
func (s *Service) publishAlert(ctx context.Context, username string, r *models.MonthlyRiskReport) {
	if s.publisher == nil {
		return
	}
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		s.log.Warn("cannot resolve user for alert", slog.String("username", username), slog.Any("err", err))
		return
	}
	alert := models.RiskAlert{
		Email:    user.Email,
		Username: username,
		Level:    r.FixedZone.Level,
		FixedPct: r.FixedPct,
		Message: fmt.Sprintf("Fixed expenses take %.1f%% of your income floor (zone %s, limit %.0f%%)",
			r.FixedPct, r.FixedZone.Level, r.AdaptiveLimitPct),
	}
	if err := s.publisher.Publish("zone-crossed", alert); err != nil {
		s.log.Warn("failed to publish risk alert", slog.Any("err", err))
		return
	}
	s.log.Info("published risk alert", slog.String("username", username), slog.String("level", alert.Level))
}

// SimulateIncomeDrop stress-tests the user's fixed costs against a
// hypothetical income reduction. fixedTotal overrides the aggregated fixed
// total when non-nil.
func (s *Service) SimulateIncomeDrop(ctx context.Context, username string, dropPct float64, fixedTotal *float64) (*models.IncomeDropResult, error) {
	profile, err := s.profiles.GetProfile(ctx, username)
	if err != nil {
		return nil, err
	}

	var fixed float64
	if fixedTotal != nil {
		if *fixedTotal < 0 {
			return nil, models.NewInvalidInput("fixed_total", "must be >= 0")
		}
		fixed = *fixedTotal
	} else {
		items, err := s.expenses.ListExpenses(ctx, username)
		if err != nil {
			return nil, err
		}
		r := report.Aggregate(*profile, items, s.now().UTC())
		fixed = r.FixedTotal
	}

	return simulate.IncomeDrop(*profile, fixed, dropPct)
}

// ProjectGrowth runs the compound-growth projection. It needs no stored
// state, only the request parameters.
func (s *Service) ProjectGrowth(_ context.Context, monthlyContribution, annualReturnPct, target float64) (*models.GrowthProjection, error) {
	return simulate.Growth(monthlyContribution, annualReturnPct, target)
}

// SaveProfile validates and upserts the user's financial profile, then drops
// the cached report since every metric depends on the profile.
func (s *Service) SaveProfile(ctx context.Context, username string, req models.RawProfile) (*models.Profile, error) {
	if req.IncomeFloor == nil {
		return nil, models.NewInvalidInput("income_floor", "is required")
	}
	if *req.IncomeFloor < 0 {
		return nil, models.NewInvalidInput("income_floor", "must be >= 0")
	}

	profile := models.Profile{
		Username:         username,
		IncomeFloor:      *req.IncomeFloor,
		IncomeIsVariable: req.IncomeIsVariable,
	}
	if req.Dependents != nil {
		if *req.Dependents < 0 {
			return nil, models.NewInvalidInput("dependents", "must be >= 0")
		}
		profile.Dependents = *req.Dependents
	}
	if req.EmergencyReserve != nil {
		if *req.EmergencyReserve < 0 {
			return nil, models.NewInvalidInput("emergency_reserve", "must be >= 0")
		}
		profile.EmergencyReserve = *req.EmergencyReserve
	}
	if req.DebtService != nil {
		if *req.DebtService < 0 {
			return nil, models.NewInvalidInput("debt_service", "must be >= 0")
		}
		profile.DebtService = *req.DebtService
	}

	if err := s.profiles.UpsertProfile(ctx, profile); err != nil {
		return nil, err
	}
	if err := s.cache.Invalidate("report:" + username); err != nil {
		s.log.Warn("failed to invalidate report cache", slog.Any("err", err))
	}
	s.log.Info("profile saved", slog.String("username", username))
	return &profile, nil
}
