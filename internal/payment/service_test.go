package payment

import (
	"context"
	"errors"
	"testing"
)

type fakeGateway struct {
	calls   int
	lastID  string
	lastAmt int64
	err     error
}

func (f *fakeGateway) SnapToken(_ context.Context, orderID string, amount int64, _, _ string) (string, error) {
	f.calls++
	f.lastID = orderID
	f.lastAmt = amount
	if f.err != nil {
		return "", f.err
	}
	return "snap-" + orderID, nil
}

func newTestService(gw *fakeGateway) (*Service, Store) {
	store := NewInMemoryStore()
	svc := NewService(store, gw, 1500)
	svc.newID = func() string { return "EXM-1" }
	svc.newToken = func() string { return "ABCD1234EF567890" }
	return svc, store
}

func TestCreateOrder(t *testing.T) {
	gw := &fakeGateway{}
	svc, store := newTestService(gw)

	o, err := svc.CreateOrder(context.Background(), "U/2020/001", "Ada", "ada@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.Status != StatusPending || o.Amount != 1500 {
		t.Fatalf("unexpected order: %+v", o)
	}
	if o.SnapToken != "snap-EXM-1" {
		t.Fatalf("expected snap token passed through, got %q", o.SnapToken)
	}
	if gw.lastID != "EXM-1" || gw.lastAmt != 1500 {
		t.Fatalf("gateway saw %s/%d", gw.lastID, gw.lastAmt)
	}

	stored, err := store.GetOrder(context.Background(), "EXM-1")
	if err != nil || stored.SnapToken != "snap-EXM-1" {
		t.Fatalf("snap token not persisted: %+v err=%v", stored, err)
	}
}

func TestCreateOrder_GatewayFailure(t *testing.T) {
	gw := &fakeGateway{err: errors.New("gateway down")}
	svc, _ := newTestService(gw)

	if _, err := svc.CreateOrder(context.Background(), "U/2020/001", "Ada", "ada@example.com"); err == nil {
		t.Fatal("expected gateway error")
	}
}

func TestHandleNotification_SettlementMintsOneToken(t *testing.T) {
	gw := &fakeGateway{}
	svc, store := newTestService(gw)
	ctx := context.Background()

	if _, err := svc.CreateOrder(ctx, "U/2020/001", "Ada", "ada@example.com"); err != nil {
		t.Fatalf("create order: %v", err)
	}

	// Gateways retry notifications; only the first settles and mints.
	for i := 0; i < 3; i++ {
		if err := svc.HandleNotification(ctx, "EXM-1", "settlement"); err != nil {
			t.Fatalf("notification %d: %v", i, err)
		}
	}

	o, tok, err := svc.GetOrder(ctx, "EXM-1")
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if o.Status != StatusSettled {
		t.Fatalf("expected settled, got %s", o.Status)
	}
	if tok == nil || tok.Token != "ABCD1234EF567890" {
		t.Fatalf("expected minted token, got %+v", tok)
	}

	if _, err := store.TokenForOrder(ctx, "EXM-1"); err != nil {
		t.Fatalf("token missing from store: %v", err)
	}
}

func TestHandleNotification_FailureAndPending(t *testing.T) {
	gw := &fakeGateway{}
	svc, _ := newTestService(gw)
	ctx := context.Background()

	if _, err := svc.CreateOrder(ctx, "U/2020/001", "Ada", "ada@example.com"); err != nil {
		t.Fatalf("create order: %v", err)
	}

	if err := svc.HandleNotification(ctx, "EXM-1", "pending"); err != nil {
		t.Fatalf("pending notification: %v", err)
	}
	o, tok, _ := svc.GetOrder(ctx, "EXM-1")
	if o.Status != StatusPending || tok != nil {
		t.Fatalf("pending should not change order: %+v", o)
	}

	if err := svc.HandleNotification(ctx, "EXM-1", "expire"); err != nil {
		t.Fatalf("expire notification: %v", err)
	}
	o, tok, _ = svc.GetOrder(ctx, "EXM-1")
	if o.Status != StatusFailed || tok != nil {
		t.Fatalf("expected failed order without token, got %+v tok=%v", o, tok)
	}

	// A late settlement cannot resurrect a failed order.
	if err := svc.HandleNotification(ctx, "EXM-1", "settlement"); err != nil {
		t.Fatalf("late settlement: %v", err)
	}
	o, tok, _ = svc.GetOrder(ctx, "EXM-1")
	if o.Status != StatusFailed || tok != nil {
		t.Fatalf("failed order resurrected: %+v", o)
	}
}

func TestHandleNotification_UnknownOrder(t *testing.T) {
	gw := &fakeGateway{}
	svc, _ := newTestService(gw)

	err := svc.HandleNotification(context.Background(), "EXM-9", "settlement")
	if !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestRandomToken(t *testing.T) {
	a, b := randomToken(), randomToken()
	if len(a) != 16 || a == b {
		t.Fatalf("expected distinct 16-char tokens, got %q %q", a, b)
	}
}
