package auth

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/examforge/cbt-backend/internal/access"
)

var validate = validator.New()

var denialMessages = map[access.Reason]string{
	access.ReasonSessionInactive: "exam session is not active",
	access.ReasonGroupBlocked:    "your department and level are not admitted for this session",
	access.ReasonNotScheduled:    "you are not on the exam schedule",
}

// POST /auth/login  { "matric": "...", "password": "..." }
// Students must additionally pass the access gate; admins bypass it.
func LoginHandler(db *sql.DB, gate *access.Gate, a *AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Matric   string `json:"matric" validate:"required"`
			Password string `json:"password" validate:"required"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(&req); err != nil {
			http.Error(w, "matric and password required", http.StatusBadRequest)
			return
		}

		var fullName, hash, role, dept, level string
		err := db.QueryRowContext(r.Context(),
			`SELECT full_name, password_hash, role, department, level FROM users WHERE matric=$1`,
			req.Matric).Scan(&fullName, &hash, &role, &dept, &level)
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}

		if role == "student" {
			d, err := gate.Check(r.Context(), req.Matric, dept, level)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			if !d.Allowed {
				http.Error(w, denialMessages[d.Reason], http.StatusForbidden)
				return
			}
		}

		tok, err := a.IssueJWT(req.Matric, role)
		if err != nil {
			http.Error(w, "issue token", 500)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"access_token": tok,
			"role":         role,
			"full_name":    fullName,
		})
	}
}

// POST /auth/register is student self-registration. Requires an unused
// exam token bought through the payment flow; redeeming it and creating
// the user happen in one transaction.
func RegisterHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Matric     string `json:"matric" validate:"required"`
			FullName   string `json:"full_name" validate:"required"`
			Department string `json:"department" validate:"required"`
			Level      string `json:"level" validate:"required"`
			Password   string `json:"password" validate:"required,min=6"`
			ExamToken  string `json:"exam_token" validate:"required"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		phash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		ctx := r.Context()
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		defer func() { _ = tx.Rollback() }()

		// Redeem exactly once: the guarded UPDATE loses if the token is
		// unknown or already redeemed.
		res, err := tx.ExecContext(ctx,
			`UPDATE exam_tokens SET redeemed_by=$1, redeemed_at=$2 WHERE token=$3 AND redeemed_by=''`,
			req.Matric, time.Now().Unix(), req.ExamToken)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			http.Error(w, "invalid or used exam token", http.StatusBadRequest)
			return
		}

		res, err = tx.ExecContext(ctx,
			`INSERT INTO users (matric, full_name, password_hash, role, department, level, created_at)
			 VALUES ($1,$2,$3,'student',$4,$5,$6)
			 ON CONFLICT (matric) DO NOTHING`,
			req.Matric, req.FullName, string(phash), req.Department, req.Level, time.Now().Unix())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			http.Error(w, "matric already registered", http.StatusConflict)
			return
		}

		if err := tx.Commit(); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"matric": req.Matric})
	}
}
