package payment

import "context"

const StatusApproved = "approved"

// Info é o que a autoridade de pagamento externa sabe sobre uma
// cobrança já processada.
type Info struct {
	Status string
	Amount float64
}

type Authority interface {
	Get(ctx context.Context, paymentID string) (*Info, error)
}
