package access

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) PutRule(ctx context.Context, r Rule) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO access_groups (department,level,status,updated_at)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (department,level) DO UPDATE SET status=EXCLUDED.status, updated_at=EXCLUDED.updated_at`,
		r.Department, r.Level, string(r.Status), time.Now().Unix())
	return err
}

func (s *SQLStore) DeleteRule(ctx context.Context, department, level string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM access_groups WHERE department=$1 AND level=$2`, department, level)
	return err
}

func (s *SQLStore) RuleStatus(ctx context.Context, department, level string) (Status, error) {
	var status string
	err := s.db.QueryRowContext(ctx, `SELECT status FROM access_groups WHERE department=$1 AND level=$2`,
		department, level).Scan(&status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNoRule
		}
		return "", err
	}
	return Status(status), nil
}

// ReplaceSchedule is the administrative bulk-clear-and-load of the
// scheduled-student list.
func (s *SQLStore) ReplaceSchedule(ctx context.Context, matrics []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, `DELETE FROM scheduled_students`); err != nil {
		return err
	}
	for _, m := range matrics {
		if _, err := tx.ExecContext(ctx, `INSERT INTO scheduled_students (matric) VALUES ($1) ON CONFLICT (matric) DO NOTHING`, m); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLStore) IsScheduled(ctx context.Context, matric string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM scheduled_students WHERE matric=$1`, matric).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
