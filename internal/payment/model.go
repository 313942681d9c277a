package payment

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Intent statuses reported by the provider.
const (
	IntentSucceeded             = "succeeded"
	IntentProcessing            = "processing"
	IntentRequiresPaymentMethod = "requires_payment_method"
	IntentCanceled              = "canceled"
)

// Webhook event types acted upon. Everything else is acknowledged and ignored.
const (
	EventIntentSucceeded = "payment_intent.succeeded"
	EventIntentFailed    = "payment_intent.payment_failed"
)

const (
	RefundSucceeded = "succeeded"
	RefundPending   = "pending"
	RefundFailed    = "failed"
	RefundCanceled  = "canceled"
)

const ProviderStripe = "stripe"

type Intent struct {
	ID           string            `json:"id"`
	Amount       int64             `json:"amount"`
	Currency     string            `json:"currency"`
	Status       string            `json:"status"`
	ClientSecret string            `json:"client_secret"`
	Metadata     map[string]string `json:"metadata"`
}

type IntentRequest struct {
	Amount      int64
	Currency    string
	OrderID     uint
	OrderNumber string
	UserID      uint
}

type Refund struct {
	ID            string `json:"id"`
	Amount        int64  `json:"amount"`
	Status        string `json:"status"`
	PaymentIntent string `json:"payment_intent"`
}

// Accepted reports whether the provider took the refund on.
func (r *Refund) Accepted() bool {
	return r.Status != RefundFailed && r.Status != RefundCanceled
}

type RefundRequest struct {
	PaymentIntentID string
	Amount          int64
	OrderID         uint
	Reason          string
	IdempotencyKey  string
}

// Event is a verified webhook delivery.
type Event struct {
	ID      string
	Type    string
	Created time.Time
	Intent  *Intent
	Payload json.RawMessage
}

type IntentResult struct {
	ClientSecret    string          `json:"clientSecret"`
	PaymentIntentID string          `json:"paymentIntentId"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
}

type RefundInput struct {
	OrderID uint             `json:"orderId"`
	Reason  string           `json:"reason"`
	Amount  *decimal.Decimal `json:"amount"`
}

type RefundResult struct {
	RefundID string          `json:"refundId"`
	Amount   decimal.Decimal `json:"amount"`
	Status   string          `json:"status"`
}

type WebhookRecord struct {
	Provider  string
	EventID   string
	EventType string
	IntentID  string
	Payload   json.RawMessage
}

// ToMinorUnits converts a major-unit amount to the provider's integer
// minor units, rounding half away from zero.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

func FromMinorUnits(amount int64) decimal.Decimal {
	return decimal.New(amount, -2)
}
