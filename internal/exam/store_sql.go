package exam

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) PutCourse(ctx context.Context, c Course) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO courses (code,title,duration_sec,question_count,created_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (code) DO UPDATE SET title=EXCLUDED.title, duration_sec=EXCLUDED.duration_sec, question_count=EXCLUDED.question_count`,
		c.Code, c.Title, c.DurationSec, c.QuestionCount, time.Now().Unix())
	return err
}

func (s *SQLStore) GetCourse(ctx context.Context, code string) (Course, error) {
	row := s.db.QueryRowContext(ctx, `SELECT code,title,duration_sec,question_count,created_at FROM courses WHERE code=$1`, code)
	var c Course
	if err := row.Scan(&c.Code, &c.Title, &c.DurationSec, &c.QuestionCount, &c.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Course{}, ErrCourseNotFound
		}
		return Course{}, err
	}
	return c, nil
}

func (s *SQLStore) ListCourses(ctx context.Context) ([]Course, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT code,title,duration_sec,question_count,created_at FROM courses ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Course
	for rows.Next() {
		var c Course
		if err := rows.Scan(&c.Code, &c.Title, &c.DurationSec, &c.QuestionCount, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLStore) PutQuestions(ctx context.Context, qs []Question) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	for _, q := range qs {
		if _, err := tx.ExecContext(ctx, `INSERT INTO questions (id,course_code,text,option_a,option_b,option_c,option_d,correct_option)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
			ON CONFLICT (id) DO NOTHING`,
			q.ID, q.CourseCode, q.Text, q.OptionA, q.OptionB, q.OptionC, q.OptionD, q.CorrectOption); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLStore) QuestionsForCourse(ctx context.Context, code string) ([]Question, error) {
	var exist int
	if err := s.db.QueryRowContext(ctx, `SELECT 1 FROM courses WHERE code=$1`, code).Scan(&exist); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id,course_code,text,option_a,option_b,option_c,option_d,correct_option
		FROM questions WHERE course_code=$1 ORDER BY id`, code)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Question
	for rows.Next() {
		var q Question
		if err := rows.Scan(&q.ID, &q.CourseCode, &q.Text, &q.OptionA, &q.OptionB, &q.OptionC, &q.OptionD, &q.CorrectOption); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *SQLStore) StudentQuestions(ctx context.Context, code string) ([]StudentQuestion, error) {
	qs, err := s.QuestionsForCourse(ctx, code)
	if err != nil {
		return nil, err
	}
	// Strip answer keys when serving to students (parity with in-memory behavior)
	out := make([]StudentQuestion, len(qs))
	for i, q := range qs {
		out[i] = q.StudentView()
	}
	return out, nil
}

func (s *SQLStore) CreateSubmission(ctx context.Context, sub Submission) error {
	aj, err := json.Marshal(sub.Answers)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO submissions (id,matric,student_name,department,course_code,answers_json,submitted_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		sub.ID, sub.Matric, sub.StudentName, sub.Department, sub.CourseCode, string(aj), sub.SubmittedAt.Unix())
	return err
}

// CreateResult relies on the composite primary key (matric, course_code)
// to make the insert atomic: the losing racer sees zero rows affected
// and reports ErrDuplicateResult instead of overwriting.
func (s *SQLStore) CreateResult(ctx context.Context, r Result) error {
	res, err := s.db.ExecContext(ctx, `INSERT INTO results (matric,course_code,score,question_total,ca_score,total_score,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (matric,course_code) DO NOTHING`,
		r.Matric, r.CourseCode, r.Score, r.QuestionTotal, r.CAScore, r.TotalScore, r.CreatedAt.Unix())
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrDuplicateResult
	}
	return nil
}

func (s *SQLStore) GetResult(ctx context.Context, matric, courseCode string) (Result, error) {
	row := s.db.QueryRowContext(ctx, `SELECT matric,course_code,score,question_total,ca_score,total_score,created_at
		FROM results WHERE matric=$1 AND course_code=$2`, matric, courseCode)
	return scanResult(row)
}

func (s *SQLStore) ListResults(ctx context.Context, courseCode string) ([]Result, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT matric,course_code,score,question_total,ca_score,total_score,created_at
		FROM results WHERE course_code=$1 ORDER BY matric`, courseCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Result
	for rows.Next() {
		var r Result
		var created int64
		if err := rows.Scan(&r.Matric, &r.CourseCode, &r.Score, &r.QuestionTotal, &r.CAScore, &r.TotalScore, &created); err != nil {
			return nil, err
		}
		r.CreatedAt = time.Unix(created, 0)
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanResult(row *sql.Row) (Result, error) {
	var r Result
	var created int64
	if err := row.Scan(&r.Matric, &r.CourseCode, &r.Score, &r.QuestionTotal, &r.CAScore, &r.TotalScore, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Result{}, ErrResultNotFound
		}
		return Result{}, err
	}
	r.CreatedAt = time.Unix(created, 0)
	return r, nil
}
