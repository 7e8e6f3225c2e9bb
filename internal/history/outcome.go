package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"nimbus/internal/journal"
)

// Result is what happened to a reviewed command.
type Result string

const (
	ResultApplied  Result = "applied"
	ResultDeclined Result = "declined"
	ResultFailed   Result = "failed"
	ResultNoAction Result = "no_action"
)

// Outcome is one reviewed command.
type Outcome struct {
	ID         int64
	SessionID  string
	Command    journal.Command
	Result     Result
	NewPath    string
	Error      string
	ReviewedAt time.Time
}

// Record stores outcome. A zero ReviewedAt is stamped with the current time.
func (s *Store) Record(ctx context.Context, outcome Outcome) (int64, error) {
	if strings.TrimSpace(outcome.Command.FilePath) == "" && outcome.Command.Action != journal.ActionIndeterminate {
		return 0, errors.New("history record: file path required")
	}
	if outcome.ReviewedAt.IsZero() {
		outcome.ReviewedAt = s.now()
	}
	var res sql.Result
	err := withBusyRetry(ctx, func() error {
		var execErr error
		res, execErr = s.db.ExecContext(ctx,
			`INSERT INTO outcomes (session_id, file_path, action, destination, reason, result, new_path, error_message, reviewed_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			outcome.SessionID,
			outcome.Command.FilePath,
			outcome.Command.Action.String(),
			nullableString(outcome.Command.Destination),
			nullableString(reasonText(outcome.Command.Reason)),
			string(outcome.Result),
			nullableString(outcome.NewPath),
			nullableString(outcome.Error),
			outcome.ReviewedAt.UTC().Format(time.RFC3339Nano),
		)
		return execErr
	})
	if err != nil {
		return 0, fmt.Errorf("history record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("history record: last insert id: %w", err)
	}
	return id, nil
}

// LastApplied returns the most recent applied outcome for filePath.
func (s *Store) LastApplied(ctx context.Context, filePath string) (*Outcome, error) {
	var outcome *Outcome
	err := withBusyRetry(ctx, func() error {
		row := s.db.QueryRowContext(ctx,
			selectOutcome+` WHERE file_path = ? AND result = ? ORDER BY id DESC LIMIT 1`,
			filePath, string(ResultApplied))
		found, scanErr := scanOutcome(row)
		if errors.Is(scanErr, sql.ErrNoRows) {
			outcome = nil
			return nil
		}
		outcome = found
		return scanErr
	})
	if err != nil {
		return nil, fmt.Errorf("history last applied: %w", err)
	}
	return outcome, nil
}

// Recent returns up to limit outcomes, newest first. limit <= 0 returns all.
func (s *Store) Recent(ctx context.Context, limit int) ([]Outcome, error) {
	query := selectOutcome + ` ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	var outcomes []Outcome
	err := withBusyRetry(ctx, func() error {
		outcomes = outcomes[:0]
		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			outcome, err := scanOutcome(rows)
			if err != nil {
				return err
			}
			outcomes = append(outcomes, *outcome)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("history recent: %w", err)
	}
	return outcomes, nil
}

const selectOutcome = `SELECT id, session_id, file_path, action, destination, reason, result, new_path, error_message, reviewed_at FROM outcomes`

type scanner interface {
	Scan(dest ...any) error
}

func scanOutcome(row scanner) (*Outcome, error) {
	var (
		outcome                               Outcome
		action, result, reviewedAt            string
		destination, reason, newPath, message sql.NullString
	)
	if err := row.Scan(&outcome.ID, &outcome.SessionID, &outcome.Command.FilePath, &action,
		&destination, &reason, &result, &newPath, &message, &reviewedAt); err != nil {
		return nil, err
	}
	parsedAction, err := journal.ParseAction(action)
	if err != nil {
		return nil, err
	}
	outcome.Command.Action = parsedAction
	if reason.Valid {
		if outcome.Command.Reason, err = journal.ParseReason(reason.String); err != nil {
			return nil, err
		}
	}
	outcome.Command.Destination = destination.String
	outcome.Result = Result(result)
	outcome.NewPath = newPath.String
	outcome.Error = message.String
	if outcome.ReviewedAt, err = time.Parse(time.RFC3339Nano, reviewedAt); err != nil {
		return nil, fmt.Errorf("parse reviewed_at: %w", err)
	}
	return &outcome, nil
}

func reasonText(reason journal.Reason) string {
	if reason == journal.ReasonNone {
		return ""
	}
	return reason.String()
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
