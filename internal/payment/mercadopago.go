package payment

import (
	"context"
	"strconv"

	mpconfig "github.com/mercadopago/sdk-go/pkg/config"
	mppayment "github.com/mercadopago/sdk-go/pkg/payment"
)

// ======================================================
// Mercado Pago
// ======================================================

type MercadoPago struct {
	client mppayment.Client
}

func NewMercadoPago(accessToken string) (*MercadoPago, error) {
	cfg, err := mpconfig.New(accessToken)
	if err != nil {
		return nil, err
	}

	return &MercadoPago{
		client: mppayment.NewClient(cfg),
	}, nil
}

func (m *MercadoPago) Get(ctx context.Context, paymentID string) (*Info, error) {
	id, err := strconv.Atoi(paymentID)
	if err != nil {
		return nil, err
	}

	res, err := m.client.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	return &Info{
		Status: res.Status,
		Amount: res.TransactionAmount,
	}, nil
}

var _ Authority = (*MercadoPago)(nil)
