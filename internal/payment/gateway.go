package payment

import (
	"context"

	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
)

// Gateway is the payment-provider boundary: order in, checkout token
// out. The provider confirms payment later through the notification
// webhook.
type Gateway interface {
	SnapToken(ctx context.Context, orderID string, amount int64, name, email string) (string, error)
}

type snapGateway struct {
	client snap.Client
}

// NewSnapGateway initialises a Midtrans Snap client with the server key.
func NewSnapGateway(serverKey string, production bool) Gateway {
	env := midtrans.Sandbox
	if production {
		env = midtrans.Production
	}
	g := &snapGateway{}
	g.client.New(serverKey, env)
	return g
}

func (g *snapGateway) SnapToken(_ context.Context, orderID string, amount int64, name, email string) (string, error) {
	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  orderID,
			GrossAmt: amount,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: name,
			Email: email,
		},
	}

	resp, err := g.client.CreateTransaction(req)
	if err != nil {
		return "", err
	}
	return resp.Token, nil
}
