// Package rest exposes the services over HTTP/JSON.
package rest

import (
	"context"
	"net/http"
	"strconv"

	"mshop-be/internal/access"
	"mshop-be/internal/admin"
	"mshop-be/internal/apperror"
	"mshop-be/internal/order"
	"mshop-be/internal/payment"
	"mshop-be/internal/product"
	"mshop-be/internal/user"
	"mshop-be/internal/utils"
)

var ErrInvalidID = apperror.InvalidRequest("invalid id")

// Pinger reports database reachability for /healthz.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handler struct {
	users    user.Service
	products product.Service
	orders   order.Service
	payments payment.Service
	admin    admin.Service
	db       Pinger
}

func NewHandler(
	users user.Service,
	products product.Service,
	orders order.Service,
	payments payment.Service,
	adminSvc admin.Service,
	db Pinger,
) *Handler {
	return &Handler{
		users:    users,
		products: products,
		orders:   orders,
		payments: payments,
		admin:    adminSvc,
		db:       db,
	}
}

func pathID(r *http.Request) (uint, error) {
	id, err := utils.ToUint(r.PathValue("id"))
	if err != nil || id == 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}

func queryInt(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.InvalidRequest(key + " must be a number")
	}
	return n, nil
}

func pageParams(r *http.Request) (page, limit int, err error) {
	if page, err = queryInt(r, "page"); err != nil {
		return 0, 0, err
	}
	if limit, err = queryInt(r, "limit"); err != nil {
		return 0, 0, err
	}
	return page, limit, nil
}

// actor is only called behind RequireAuth.
func actor(r *http.Request) access.Actor {
	a, _ := utils.ActorFromContext(r.Context())
	return a
}

