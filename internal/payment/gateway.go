package payment

import "context"

// Gateway is the payment provider as seen by the service.
type Gateway interface {
	CreatePaymentIntent(ctx context.Context, req IntentRequest) (*Intent, error)
	GetPaymentIntent(ctx context.Context, id string) (*Intent, error)
	CreateRefund(ctx context.Context, req RefundRequest) (*Refund, error)
	ParseWebhookEvent(payload []byte, signatureHeader string) (*Event, error)
}
