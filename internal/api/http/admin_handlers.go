package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/examforge/cbt-backend/internal/access"
	"github.com/examforge/cbt-backend/internal/audit"
	"github.com/examforge/cbt-backend/internal/exam"
)

// PutCourseHandler creates or replaces a course's metadata.
func PutCourseHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var c exam.Course
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if c.Code == "" || c.Title == "" {
			http.Error(w, "code and title required", http.StatusBadRequest)
			return
		}
		if err := store.PutCourse(r.Context(), c); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(c)
	}
}

// PutQuestionsHandler bulk-loads questions for one course. Existing
// question ids are left untouched.
func PutQuestionsHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "courseCode")
		var qs []exam.Question
		if err := json.NewDecoder(r.Body).Decode(&qs); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		for i := range qs {
			qs[i].CourseCode = code
			if qs[i].ID == "" || qs[i].CorrectOption == "" {
				http.Error(w, "every question needs id and correct_option", http.StatusBadRequest)
				return
			}
		}
		if err := store.PutQuestions(r.Context(), qs); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]int{"loaded": len(qs)})
	}
}

// ListResultsHandler is the admin view of every result for a course.
func ListResultsHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rs, err := store.ListResults(r.Context(), chi.URLParam(r, "courseCode"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(rs)
	}
}

// PutAccessRuleHandler grants or blocks a (department, level) pair.
// Writing an existing pair overwrites it.
func PutAccessRuleHandler(store access.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rule access.Rule
		if err := json.NewDecoder(r.Body).Decode(&rule); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if rule.Department == "" || rule.Level == "" {
			http.Error(w, "department and level required", http.StatusBadRequest)
			return
		}
		if rule.Status != access.StatusAllowed && rule.Status != access.StatusBlocked {
			http.Error(w, "status must be allowed or blocked", http.StatusBadRequest)
			return
		}
		if err := store.PutRule(r.Context(), rule); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(rule)
	}
}

// DeleteAccessRuleHandler removes a rule; the pair falls back to the
// default deny.
func DeleteAccessRuleHandler(store access.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Department string `json:"department"`
			Level      string `json:"level"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if err := store.DeleteRule(r.Context(), req.Department, req.Level); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ReplaceScheduleHandler swaps the whole scheduled-student list; the
// upload is the source of truth, not a delta.
func ReplaceScheduleHandler(store access.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Matrics []string `json:"matrics"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if err := store.ReplaceSchedule(r.Context(), req.Matrics); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]int{"scheduled": len(req.Matrics)})
	}
}

// SessionHandler flips or reads the process-wide exam session flag.
func SessionHandler(sc *access.SessionControl) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			_ = json.NewEncoder(w).Encode(map[string]bool{"active": sc.Active()})
			return
		}
		var req struct {
			Active bool `json:"active"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		sc.SetActive(req.Active)
		_ = json.NewEncoder(w).Encode(map[string]bool{"active": sc.Active()})
	}
}

// AuditLogHandler lists recent admin actions, newest first.
func AuditLogHandler(rec *audit.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		es, err := rec.Recent(r.Context(), limit)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(es)
	}
}

// QueueStatusHandler exposes the admission queue depth so operators can
// watch backlog during a sitting.
func QueueStatusHandler(svc *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]int{"waiting": svc.QueueDepth()})
	}
}
