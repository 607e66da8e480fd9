// Package audit keeps an append-only trail of admin actions: who
// toggled the session, rewrote the schedule, loaded questions.
package audit

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/examforge/cbt-backend/internal/auth"
)

type Event struct {
	ID        int64  `json:"id"`
	Actor     string `json:"actor"`
	Action    string `json:"action"`
	Detail    string `json:"detail,omitempty"`
	CreatedAt int64  `json:"created_at"`
}

type Recorder struct{ db *sql.DB }

func NewRecorder(db *sql.DB) *Recorder { return &Recorder{db: db} }

func (r *Recorder) Append(ctx context.Context, e Event) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_log (actor, action, detail, created_at) VALUES ($1,$2,$3,$4)`,
		e.Actor, e.Action, e.Detail, time.Now().Unix())
	return err
}

// Recent returns the newest events first, capped at limit.
func (r *Recorder) Recent(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, actor, action, detail, created_at FROM audit_log ORDER BY id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.Actor, &e.Action, &e.Detail, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Middleware records every mutating request passing through it. Mount
// on the admin routes only; student traffic is already captured by the
// submissions table.
func Middleware(rec *Recorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				_ = rec.Append(r.Context(), Event{
					Actor:  auth.SubjectFromContext(r.Context()),
					Action: r.Method + " " + r.URL.Path,
				})
			}
			next.ServeHTTP(w, r)
		})
	}
}
