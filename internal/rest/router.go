package rest

import (
	"context"
	"net/http"
	"time"

	"mshop-be/internal/access"
	"mshop-be/internal/logger"
	"mshop-be/internal/metrics"
	"mshop-be/internal/middleware"
	"mshop-be/internal/transport"

	"go.uber.org/zap"
)

const WebhookPath = "/api/payments/webhook"

type Router struct {
	Handler *Handler
	Webhook http.Handler
	Auth    middleware.Authenticator
	Limiter *middleware.RateLimiter
}

// NewRouter builds the full handler chain:
// request id -> access log -> metrics -> mux -> [auth -> role] -> rate limit -> handler.
func NewRouter(rt Router) http.Handler {
	h := rt.Handler
	mux := http.NewServeMux()

	limited := func(fn http.HandlerFunc) http.Handler {
		return rt.Limiter.Middleware(fn)
	}
	authed := func(fn http.HandlerFunc) http.Handler {
		return middleware.RequireAuth(rt.Auth)(limited(fn))
	}
	adminOnly := func(fn http.HandlerFunc) http.Handler {
		return middleware.RequireAuth(rt.Auth)(
			middleware.RequireRole(access.RoleAdmin, access.RoleSuperAdmin)(limited(fn)),
		)
	}

	// ---- Operability ----
	mux.HandleFunc("GET /healthz", h.Health)
	mux.Handle("GET /metrics", metrics.Handler())

	// ---- Auth ----
	mux.Handle("POST /api/auth/register", limited(h.Register))
	mux.Handle("POST /api/auth/login", limited(h.Login))
	mux.Handle("GET /api/auth/me", authed(h.Me))

	// ---- Products ----
	mux.Handle("GET /api/products", limited(h.ListProducts))
	mux.Handle("GET /api/products/{id}", limited(h.GetProduct))
	mux.Handle("POST /api/products", adminOnly(h.CreateProduct))
	mux.Handle("PUT /api/products/{id}", adminOnly(h.UpdateProduct))
	mux.Handle("DELETE /api/products/{id}", adminOnly(h.DeleteProduct))

	// ---- Orders ----
	mux.Handle("GET /api/orders", authed(h.ListOrders))
	mux.Handle("POST /api/orders", authed(h.CreateOrder))
	mux.Handle("GET /api/orders/{id}", authed(h.GetOrder))
	mux.Handle("PUT /api/orders/{id}", authed(h.UpdateOrder))

	// ---- Payments ----
	mux.Handle("POST /api/payments/create-payment-intent", authed(h.CreatePaymentIntent))
	mux.Handle("POST /api/payments/confirm-payment", authed(h.ConfirmPayment))
	mux.Handle("POST /api/payments/refund", adminOnly(h.Refund))
	mux.Handle("POST "+WebhookPath, rt.Limiter.Middleware(rt.Webhook))

	// ---- Admin ----
	mux.Handle("GET /api/admin/dashboard", adminOnly(h.Dashboard))
	mux.Handle("GET /api/admin/orders", adminOnly(h.AdminListOrders))
	mux.Handle("GET /api/admin/users", adminOnly(h.AdminListUsers))
	mux.Handle("PUT /api/admin/users/{id}/role", adminOnly(h.ChangeUserRole))
	mux.Handle("DELETE /api/admin/users/{id}", adminOnly(h.DeleteUser))

	return logger.RequestIDMiddleware(logger.LoggingMiddleware(metrics.Middleware(mux)))
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		logger.FromCtx(ctx).Error("health check failed", zap.Error(err))
		transport.Message(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	transport.OK(w, map[string]string{"status": "ok"})
}
