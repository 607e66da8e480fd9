package payment

import (
	"context"
	"errors"
	"time"
)

type OrderStatus string

const (
	StatusPending OrderStatus = "pending"
	StatusSettled OrderStatus = "settled"
	StatusFailed  OrderStatus = "failed"
)

// Order is one exam-token purchase routed through the gateway.
type Order struct {
	ID        string      `json:"id"`
	Matric    string      `json:"matric"`
	Email     string      `json:"email"`
	Amount    int64       `json:"amount"`
	Status    OrderStatus `json:"status"`
	SnapToken string      `json:"snap_token,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// ExamToken is minted once per settled order and redeemed once during
// registration.
type ExamToken struct {
	Token      string     `json:"token"`
	OrderID    string     `json:"order_id"`
	RedeemedBy string     `json:"redeemed_by,omitempty"`
	RedeemedAt *time.Time `json:"redeemed_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrTokenNotFound = errors.New("exam token not found")
)

type Store interface {
	CreateOrder(ctx context.Context, o Order) error
	GetOrder(ctx context.Context, id string) (Order, error)
	SetSnapToken(ctx context.Context, id, snapToken string) error

	// SettleOrder flips pending -> settled exactly once; the boolean
	// reports whether this call won the flip. Repeated gateway
	// notifications for the same order must not mint a second token.
	SettleOrder(ctx context.Context, id string) (bool, error)
	FailOrder(ctx context.Context, id string) error

	CreateToken(ctx context.Context, t ExamToken) error
	TokenForOrder(ctx context.Context, orderID string) (ExamToken, error)
}
