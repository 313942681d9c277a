package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"mshop-be/internal/logger"
	"mshop-be/internal/metrics"

	"go.uber.org/zap"
)

const (
	defaultStripeBaseURL = "https://api.stripe.com"
	maxResponseBytes     = 1 << 20
)

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	BaseURL       string
	Timeout       time.Duration
}

type stripeGateway struct {
	secretKey     string
	webhookSecret string
	baseURL       string
	httpClient    *http.Client
	tolerance     time.Duration
	now           func() time.Time
}

// ----------------- Constructor -----------------

func NewStripeGateway(cfg StripeConfig) Gateway {
	if cfg.SecretKey == "" {
		logger.L().Warn("Stripe secret key is empty")
	}
	if cfg.WebhookSecret == "" {
		logger.L().Warn("Stripe webhook secret is empty, webhooks will be rejected")
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultStripeBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &stripeGateway{
		secretKey:     cfg.SecretKey,
		webhookSecret: cfg.WebhookSecret,
		baseURL:       baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		tolerance: DefaultWebhookTolerance,
		now:       time.Now,
	}
}

// do sends a form-encoded request and decodes a 2xx JSON body into out.
// idempotencyKey, when set, lets the provider collapse retried or concurrent
// POSTs into one object.
func (s *stripeGateway) do(ctx context.Context, operation, method, path string, form url.Values, idempotencyKey string, out any) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "gateway"),
		zap.String("operation", operation),
	)

	timer := metrics.StartTimer()
	defer timer.ObserveGateway(operation)

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		log.Error("Failed creating request", zap.Error(err))
		return err
	}

	req.Header.Set("Authorization", "Bearer "+s.secretKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		log.Error("Stripe request failed", zap.Error(err), zap.Duration("duration", timer.Duration()))
		return fmt.Errorf("stripe %s: %w", operation, err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		log.Error("Failed to read response body", zap.Error(err))
		return fmt.Errorf("failed to read stripe response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		perr := &ProviderError{StatusCode: resp.StatusCode}
		var envelope struct {
			Error *ProviderError `json:"error"`
		}
		if json.Unmarshal(bodyBytes, &envelope) == nil && envelope.Error != nil {
			perr.Type = envelope.Error.Type
			perr.Code = envelope.Error.Code
			perr.Message = envelope.Error.Message
		}
		log.Error("Stripe returned non-success status",
			zap.Int("status", resp.StatusCode),
			zap.String("type", perr.Type),
			zap.String("code", perr.Code),
		)
		return perr
	}

	if err := json.Unmarshal(bodyBytes, out); err != nil {
		log.Error("Failed decoding Stripe response", zap.Error(err))
		return fmt.Errorf("decode stripe %s: %w", operation, err)
	}

	log.Debug("Stripe request done", zap.Duration("duration", timer.Duration()))
	return nil
}

// ----------------- Payment intents -----------------

func (s *stripeGateway) CreatePaymentIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(req.Amount, 10))
	form.Set("currency", req.Currency)
	form.Set("automatic_payment_methods[enabled]", "true")
	form.Set("metadata[orderId]", strconv.FormatUint(uint64(req.OrderID), 10))
	form.Set("metadata[userId]", strconv.FormatUint(uint64(req.UserID), 10))
	if req.OrderNumber != "" {
		form.Set("metadata[orderNumber]", req.OrderNumber)
	}

	var intent Intent
	if err := s.do(ctx, "create_intent", http.MethodPost, "/v1/payment_intents", form, "", &intent); err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("Stripe payment intent created",
		zap.String("intent_id", intent.ID),
		zap.Uint("order_id", req.OrderID),
		zap.Int64("amount", intent.Amount),
	)
	return &intent, nil
}

func (s *stripeGateway) GetPaymentIntent(ctx context.Context, id string) (*Intent, error) {
	if id == "" {
		return nil, errors.New("payment intent id is empty")
	}

	var intent Intent
	path := "/v1/payment_intents/" + url.PathEscape(id)
	if err := s.do(ctx, "get_intent", http.MethodGet, path, nil, "", &intent); err != nil {
		return nil, err
	}
	return &intent, nil
}

// ----------------- Refunds -----------------

func (s *stripeGateway) CreateRefund(ctx context.Context, req RefundRequest) (*Refund, error) {
	form := url.Values{}
	form.Set("payment_intent", req.PaymentIntentID)
	form.Set("amount", strconv.FormatInt(req.Amount, 10))
	form.Set("reason", "requested_by_customer")
	form.Set("metadata[orderId]", strconv.FormatUint(uint64(req.OrderID), 10))
	form.Set("metadata[reason]", req.Reason)

	var refund Refund
	if err := s.do(ctx, "create_refund", http.MethodPost, "/v1/refunds", form, req.IdempotencyKey, &refund); err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("Stripe refund created",
		zap.String("refund_id", refund.ID),
		zap.String("status", refund.Status),
	)
	return &refund, nil
}

// ----------------- Webhooks -----------------

type stripeEvent struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Created int64  `json:"created"`
	Data    struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

func (s *stripeGateway) ParseWebhookEvent(payload []byte, signatureHeader string) (*Event, error) {
	if err := verifySignature(signatureHeader, payload, s.webhookSecret, s.now(), s.tolerance); err != nil {
		return nil, err
	}

	var raw stripeEvent
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("decode webhook event: %w", err)
	}
	if raw.ID == "" || raw.Type == "" {
		return nil, errors.New("webhook event is missing id or type")
	}

	ev := &Event{
		ID:      raw.ID,
		Type:    raw.Type,
		Created: time.Unix(raw.Created, 0).UTC(),
		Payload: json.RawMessage(payload),
	}

	if strings.HasPrefix(raw.Type, "payment_intent.") && len(raw.Data.Object) > 0 {
		var intent Intent
		if err := json.Unmarshal(raw.Data.Object, &intent); err != nil {
			return nil, fmt.Errorf("decode payment intent: %w", err)
		}
		ev.Intent = &intent
	}

	return ev, nil
}
