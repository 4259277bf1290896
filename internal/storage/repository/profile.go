package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/solvradar/solvency-radar/internal/models"
)

// GetProfile returns the user's financial profile or ErrProfileNotFound.
func (s *Storage) GetProfile(ctx context.Context, username string) (*models.Profile, error) {
	const op = "storage.GetProfile"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT username, income_floor, income_is_variable, dependents,
			      emergency_reserve, debt_service
			  FROM profiles
			  WHERE username = $1`
	var profile models.Profile
	err := s.DB.QueryRowContext(ctx, query, username).Scan(
		&profile.Username, &profile.IncomeFloor, &profile.IncomeIsVariable,
		&profile.Dependents, &profile.EmergencyReserve, &profile.DebtService)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrProfileNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &profile, nil
}

// UpsertProfile creates or replaces the user's financial profile.
func (s *Storage) UpsertProfile(ctx context.Context, profile models.Profile) error {
	const op = "storage.UpsertProfile"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO profiles (username, income_floor, income_is_variable,
			      dependents, emergency_reserve, debt_service)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  ON CONFLICT (username) DO UPDATE SET
			      income_floor = EXCLUDED.income_floor,
			      income_is_variable = EXCLUDED.income_is_variable,
			      dependents = EXCLUDED.dependents,
			      emergency_reserve = EXCLUDED.emergency_reserve,
			      debt_service = EXCLUDED.debt_service`
	_, err := s.DB.ExecContext(ctx, query,
		profile.Username, profile.IncomeFloor, profile.IncomeIsVariable,
		profile.Dependents, profile.EmergencyReserve, profile.DebtService)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
