package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/examforge/cbt-backend/internal/access"
	api "github.com/examforge/cbt-backend/internal/api/http"
	"github.com/examforge/cbt-backend/internal/audit"
	"github.com/examforge/cbt-backend/internal/auth"
	"github.com/examforge/cbt-backend/internal/config"
	"github.com/examforge/cbt-backend/internal/db"
	"github.com/examforge/cbt-backend/internal/exam"
	"github.com/examforge/cbt-backend/internal/payment"
	"github.com/examforge/cbt-backend/internal/rbac"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}

	examStore := exam.NewSQLStore(dbh)
	accessStore := access.NewSQLStore(dbh)
	payStore := payment.NewSQLStore(dbh)

	// --- Domain services ---
	session := access.NewSessionControl()
	gate := access.NewGate(session, accessStore)

	examSvc := exam.NewService(examStore, exam.WithConcurrency(cfg.SubmitConcurrency))

	gw := payment.NewSnapGateway(cfg.MidtransServerKey, cfg.MidtransProduction)
	paySvc := payment.NewService(payStore, gw, cfg.TokenPrice)

	authSvc := auth.NewAuthService(cfg.AuthSecret)
	auditRec := audit.NewRecorder(dbh)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Public surface
	r.Post("/auth/login", auth.LoginHandler(dbh, gate, authSvc))
	r.Post("/auth/register", auth.RegisterHandler(dbh))
	r.Post("/payments/notify", api.NotifyHandler(paySvc))

	// Protected API (JWT -> role in context -> RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		// Student flow
		pr.With(rbac.Require("exam:view")).
			Get("/courses", api.ListCoursesHandler(examStore))
		pr.With(rbac.Require("exam:view")).
			Get("/exams/{courseCode}/questions", api.GetQuestionsHandler(examStore))
		pr.With(rbac.Require("exam:submit")).
			Post("/exams/{courseCode}/submissions", api.SubmitExamHandler(examSvc))
		pr.With(rbac.Require("result:view-own")).
			Get("/results/{courseCode}", api.GetOwnResultHandler(examStore))
		pr.With(rbac.Require("eligibility:check")).
			Get("/eligibility", api.EligibilityHandler(dbh, gate))

		// Exam-token sales
		pr.With(rbac.Require("payment:order")).
			Post("/payments/orders", api.CreateOrderHandler(paySvc))
		pr.With(rbac.Require("payment:order")).
			Get("/payments/orders/{orderID}", api.GetOrderHandler(paySvc))

		// Admin surface; every mutation lands in the audit trail.
		pr.Route("/admin", func(ar chi.Router) {
			ar.Use(audit.Middleware(auditRec))

			ar.With(rbac.Require("course:manage")).
				Post("/courses", api.PutCourseHandler(examStore))
			ar.With(rbac.Require("course:manage")).
				Post("/courses/{courseCode}/questions", api.PutQuestionsHandler(examStore))
			ar.With(rbac.Require("result:view-all")).
				Get("/courses/{courseCode}/results", api.ListResultsHandler(examStore))
			ar.With(rbac.Require("access:manage")).
				Post("/access-groups", api.PutAccessRuleHandler(accessStore))
			ar.With(rbac.Require("access:manage")).
				Delete("/access-groups", api.DeleteAccessRuleHandler(accessStore))
			ar.With(rbac.Require("access:manage")).
				Post("/schedule", api.ReplaceScheduleHandler(accessStore))
			ar.With(rbac.Require("session:manage")).
				Put("/session", api.SessionHandler(session))
			ar.With(rbac.Require("session:manage")).
				Get("/session", api.SessionHandler(session))
			ar.With(rbac.Require("queue:view")).
				Get("/queue", api.QueueStatusHandler(examSvc))
			ar.With(rbac.Require("audit:view")).
				Get("/audit", api.AuditLogHandler(auditRec))
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := dbh.PingContext(r.Context()); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(200)
	})

	log.Printf("listening on %s (db=%s, submit concurrency=%d)", cfg.HTTPAddr, cfg.DBDriver, cfg.SubmitConcurrency)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
