package http

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/examforge/cbt-backend/internal/access"
	"github.com/examforge/cbt-backend/internal/auth"
	"github.com/examforge/cbt-backend/internal/exam"
)

// SubmitExamHandler accepts one exam sitting and blocks until the
// admission queue has processed it. The matric comes from the token,
// never from the body.
func SubmitExamHandler(svc *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			StudentName string            `json:"student_name"`
			Department  string            `json:"department"`
			Answers     map[string]string `json:"answers"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}

		res, err := svc.SubmitWait(r.Context(), exam.SubmitRequest{
			Matric:      auth.SubjectFromContext(r.Context()),
			StudentName: body.StudentName,
			Department:  body.Department,
			CourseCode:  chi.URLParam(r, "courseCode"),
			Answers:     body.Answers,
		})
		if err != nil {
			var verr *exam.ValidationError
			var cerr *exam.ConflictError
			switch {
			case errors.As(err, &verr):
				http.Error(w, verr.Error(), http.StatusBadRequest)
			case errors.As(err, &cerr):
				http.Error(w, cerr.Error(), http.StatusConflict)
			case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
				// Client went away while waiting; the submission still
				// completes in the background.
				http.Error(w, "submission accepted, result pending", http.StatusAccepted)
			default:
				http.Error(w, "submission failed", http.StatusInternalServerError)
			}
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(res)
	}
}

// GetQuestionsHandler serves the answer-key-free question set.
func GetQuestionsHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "courseCode")
		qs, err := store.StudentQuestions(r.Context(), code)
		if err != nil {
			if errors.Is(err, exam.ErrCourseNotFound) {
				http.Error(w, "course not found", http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(qs)
	}
}

func ListCoursesHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cs, err := store.ListCourses(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(cs)
	}
}

// GetOwnResultHandler returns the caller's result for one course.
func GetOwnResultHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matric := auth.SubjectFromContext(r.Context())
		res, err := store.GetResult(r.Context(), matric, chi.URLParam(r, "courseCode"))
		if err != nil {
			if errors.Is(err, exam.ErrResultNotFound) {
				http.Error(w, "no result yet", http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(res)
	}
}

// EligibilityHandler reports the caller's gate decision without logging
// them in. Useful for the exam lobby screen.
func EligibilityHandler(db *sql.DB, gate *access.Gate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matric := auth.SubjectFromContext(r.Context())

		var dept, level string
		err := db.QueryRowContext(r.Context(),
			`SELECT department, level FROM users WHERE matric=$1`, matric).
			Scan(&dept, &level)
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "unknown user", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		d, err := gate.Check(r.Context(), matric, dept, level)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(d)
	}
}
