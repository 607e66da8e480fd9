package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/examforge/cbt-backend/internal/auth"
	"github.com/examforge/cbt-backend/internal/payment"
)

// CreateOrderHandler starts an exam-token purchase and returns the
// gateway snap token the client pays with.
func CreateOrderHandler(svc *payment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name  string `json:"name"`
			Email string `json:"email"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.Name == "" || req.Email == "" {
			http.Error(w, "name and email required", http.StatusBadRequest)
			return
		}

		o, err := svc.CreateOrder(r.Context(), auth.SubjectFromContext(r.Context()), req.Name, req.Email)
		if err != nil {
			http.Error(w, "could not start payment", http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(o)
	}
}

// GetOrderHandler returns an order and, once settled, the exam token it
// minted.
func GetOrderHandler(svc *payment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		o, tok, err := svc.GetOrder(r.Context(), chi.URLParam(r, "orderID"))
		if err != nil {
			if errors.Is(err, payment.ErrOrderNotFound) {
				http.Error(w, "order not found", http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		resp := struct {
			payment.Order
			ExamToken *payment.ExamToken `json:"exam_token,omitempty"`
		}{Order: o, ExamToken: tok}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// NotifyHandler is the unauthenticated gateway webhook. It must return
// 200 for anything it understood, or the gateway keeps retrying.
func NotifyHandler(svc *payment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var n struct {
			OrderID           string `json:"order_id"`
			TransactionStatus string `json:"transaction_status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&n); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if n.OrderID == "" {
			http.Error(w, "order_id required", http.StatusBadRequest)
			return
		}

		if err := svc.HandleNotification(r.Context(), n.OrderID, n.TransactionStatus); err != nil {
			if errors.Is(err, payment.ErrOrderNotFound) {
				http.Error(w, "order not found", http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}
