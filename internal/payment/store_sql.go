package payment

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

func (s *SQLStore) CreateOrder(ctx context.Context, o Order) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO orders (id,matric,email,amount,status,snap_token,created_at,updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		o.ID, o.Matric, o.Email, o.Amount, string(o.Status), o.SnapToken, o.CreatedAt.Unix(), o.UpdatedAt.Unix())
	return err
}

func (s *SQLStore) GetOrder(ctx context.Context, id string) (Order, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,matric,email,amount,status,snap_token,created_at,updated_at FROM orders WHERE id=$1`, id)
	var o Order
	var status string
	var created, updated int64
	if err := row.Scan(&o.ID, &o.Matric, &o.Email, &o.Amount, &status, &o.SnapToken, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Order{}, ErrOrderNotFound
		}
		return Order{}, err
	}
	o.Status = OrderStatus(status)
	o.CreatedAt = time.Unix(created, 0)
	o.UpdatedAt = time.Unix(updated, 0)
	return o, nil
}

func (s *SQLStore) SetSnapToken(ctx context.Context, id, snapToken string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE orders SET snap_token=$1, updated_at=$2 WHERE id=$3`,
		snapToken, time.Now().Unix(), id)
	return err
}

// SettleOrder races gateway retries against each other; the guarded
// UPDATE lets exactly one notification win.
func (s *SQLStore) SettleOrder(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE orders SET status='settled', updated_at=$1 WHERE id=$2 AND status='pending'`,
		time.Now().Unix(), id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *SQLStore) FailOrder(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE orders SET status='failed', updated_at=$1 WHERE id=$2 AND status='pending'`,
		time.Now().Unix(), id)
	return err
}

func (s *SQLStore) CreateToken(ctx context.Context, t ExamToken) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO exam_tokens (token,order_id,created_at) VALUES ($1,$2,$3)`,
		t.Token, t.OrderID, t.CreatedAt.Unix())
	return err
}

func (s *SQLStore) TokenForOrder(ctx context.Context, orderID string) (ExamToken, error) {
	row := s.db.QueryRowContext(ctx, `SELECT token,order_id,redeemed_by,redeemed_at,created_at FROM exam_tokens WHERE order_id=$1`, orderID)
	var t ExamToken
	var redeemedAt sql.NullInt64
	var created int64
	if err := row.Scan(&t.Token, &t.OrderID, &t.RedeemedBy, &redeemedAt, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ExamToken{}, ErrTokenNotFound
		}
		return ExamToken{}, err
	}
	if redeemedAt.Valid {
		at := time.Unix(redeemedAt.Int64, 0)
		t.RedeemedAt = &at
	}
	t.CreatedAt = time.Unix(created, 0)
	return t, nil
}
