package payment

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service owns the payment-to-token flow: create order, hand the snap
// token to the client, settle on gateway notification, mint one exam
// token per settled order.
type Service struct {
	store    Store
	gw       Gateway
	price    int64
	now      func() time.Time
	newID    func() string
	newToken func() string
}

func NewService(store Store, gw Gateway, price int64) *Service {
	return &Service{
		store:    store,
		gw:       gw,
		price:    price,
		now:      time.Now,
		newID:    func() string { return "EXM-" + uuid.NewString() },
		newToken: randomToken,
	}
}

func (s *Service) CreateOrder(ctx context.Context, matric, name, email string) (Order, error) {
	o := Order{
		ID:        s.newID(),
		Matric:    matric,
		Email:     email,
		Amount:    s.price,
		Status:    StatusPending,
		CreatedAt: s.now(),
		UpdatedAt: s.now(),
	}
	if err := s.store.CreateOrder(ctx, o); err != nil {
		return Order{}, fmt.Errorf("create order: %w", err)
	}

	tok, err := s.gw.SnapToken(ctx, o.ID, o.Amount, name, email)
	if err != nil {
		return Order{}, fmt.Errorf("payment gateway: %w", err)
	}
	if err := s.store.SetSnapToken(ctx, o.ID, tok); err != nil {
		return Order{}, fmt.Errorf("save snap token: %w", err)
	}
	o.SnapToken = tok
	return o, nil
}

// HandleNotification applies a gateway transaction_status to the order.
// Notifications are retried by the gateway, so every branch is
// idempotent; only the first settlement mints a token.
func (s *Service) HandleNotification(ctx context.Context, orderID, transactionStatus string) error {
	if _, err := s.store.GetOrder(ctx, orderID); err != nil {
		return err
	}

	switch transactionStatus {
	case "settlement", "capture", "success":
		won, err := s.store.SettleOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if !won {
			return nil
		}
		return s.store.CreateToken(ctx, ExamToken{
			Token:     s.newToken(),
			OrderID:   orderID,
			CreatedAt: s.now(),
		})
	case "deny", "cancel", "expire", "failure", "failed":
		return s.store.FailOrder(ctx, orderID)
	default:
		// pending and other intermediate states: leave the order alone
		return nil
	}
}

// GetOrder returns the order and, once settled, its exam token.
func (s *Service) GetOrder(ctx context.Context, id string) (Order, *ExamToken, error) {
	o, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return Order{}, nil, err
	}
	if o.Status != StatusSettled {
		return o, nil, nil
	}
	t, err := s.store.TokenForOrder(ctx, id)
	if err != nil {
		return Order{}, nil, err
	}
	return o, &t, nil
}

// randomToken is the scratch-card style pin handed to the buyer.
func randomToken() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		panic(err) // crypto/rand never fails on supported platforms
	}
	return strings.ToUpper(hex.EncodeToString(b))
}
