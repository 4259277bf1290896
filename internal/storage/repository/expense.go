package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/solvradar/solvency-radar/internal/models"
)

// CreateExpense inserts a classified expense and returns its ID. The score
// columns come from the server-side classifier; they are nullable only to
// accommodate legacy rows, new inserts always carry them.
func (s *Storage) CreateExpense(ctx context.Context, e models.Expense) (int, error) {
	const op = "storage.CreateExpense"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	warningsJSON, err := json.Marshal(e.Warnings)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	query := `INSERT INTO expenses (username, name, amount, intention,
			      contract_months_remaining, notice_days, cancellation_fee_pct,
			      has_legal_link, essential_obligation, substitutability,
			      override_rigidity, override_reason,
			      cancelability_score, computed_rigidity, rigidity_effective,
			      warnings, computed_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
			  RETURNING id`
	var newID int
	err = s.DB.QueryRowContext(ctx, query,
		e.Username, e.Attributes.Name, e.Attributes.Amount, string(e.Attributes.Intention),
		e.Attributes.ContractMonthsRemaining, e.Attributes.NoticeDays, e.Attributes.CancellationFeePct,
		e.Attributes.HasLegalLink, e.Attributes.EssentialObligation, e.Attributes.Substitutability,
		rigidityToNull(e.Attributes.OverrideRigidity), e.Attributes.OverrideReason,
		intToNull(e.Score), rigidityToNull(e.ComputedRigidity), rigidityToNull(e.RigidityEffective),
		warningsJSON, timeToNull(e.ComputedAt)).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListExpenses returns all expenses of the user, with their persisted score
// results, oldest first.
func (s *Storage) ListExpenses(ctx context.Context, username string) ([]*models.Expense, error) {
	const op = "storage.ListExpenses"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, username, name, amount, intention, contract_months_remaining,
			      notice_days, cancellation_fee_pct, has_legal_link, essential_obligation,
			      substitutability, override_rigidity, override_reason,
			      cancelability_score, computed_rigidity, rigidity_effective, warnings, computed_at
			  FROM expenses
			  WHERE username = $1
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Expense
	for rows.Next() {
		item, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// RemoveExpense deletes the user's expense by ID and returns the number of
// deleted rows.
func (s *Storage) RemoveExpense(ctx context.Context, id int, username string) (int, error) {
	const op = "storage.RemoveExpense"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM expenses WHERE id = $1 AND username = $2`
	result, err := s.DB.ExecContext(ctx, query, id, username)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

func scanExpense(rows *sql.Rows) (*models.Expense, error) {
	var (
		item              models.Expense
		intention         string
		overrideRigidity  sql.NullString
		score             sql.NullInt64
		computedRigidity  sql.NullString
		rigidityEffective sql.NullString
		warningsJSON      []byte
		computedAt        sql.NullTime
	)
	if err := rows.Scan(&item.ID, &item.Username, &item.Attributes.Name, &item.Attributes.Amount,
		&intention, &item.Attributes.ContractMonthsRemaining, &item.Attributes.NoticeDays,
		&item.Attributes.CancellationFeePct, &item.Attributes.HasLegalLink,
		&item.Attributes.EssentialObligation, &item.Attributes.Substitutability,
		&overrideRigidity, &item.Attributes.OverrideReason,
		&score, &computedRigidity, &rigidityEffective, &warningsJSON, &computedAt); err != nil {
		return nil, err
	}

	item.Attributes.Intention = models.Intention(intention)
	item.Attributes.OverrideRigidity = nullToRigidity(overrideRigidity)
	if score.Valid {
		v := int(score.Int64)
		item.Score = &v
	}
	item.ComputedRigidity = nullToRigidity(computedRigidity)
	item.RigidityEffective = nullToRigidity(rigidityEffective)
	if computedAt.Valid {
		item.ComputedAt = &computedAt.Time
	}
	if len(warningsJSON) > 0 {
		if err := json.Unmarshal(warningsJSON, &item.Warnings); err != nil {
			return nil, err
		}
	}
	return &item, nil
}

func rigidityToNull(r *models.Rigidity) sql.NullString {
	if r == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*r), Valid: true}
}

func nullToRigidity(ns sql.NullString) *models.Rigidity {
	if !ns.Valid {
		return nil
	}
	r := models.Rigidity(ns.String)
	return &r
}

func intToNull(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func timeToNull(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
