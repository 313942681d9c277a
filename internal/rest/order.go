package rest

import (
	"net/http"

	"mshop-be/internal/order"
	"mshop-be/internal/transport"
)

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var in order.CreateOrderInput
	if err := transport.DecodeJSON(w, r, &in); err != nil {
		transport.Error(w, r, err)
		return
	}

	o, err := h.orders.CreateOrder(r.Context(), actor(r).UserID, in)
	if err != nil {
		transport.Error(w, r, err)
		return
	}
	transport.Created(w, o)
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	page, limit, err := pageParams(r)
	if err != nil {
		transport.Error(w, r, err)
		return
	}

	orders, p, err := h.orders.ListOrders(r.Context(), actor(r).UserID, order.ListQuery{
		Status: r.URL.Query().Get("status"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		transport.Error(w, r, err)
		return
	}
	transport.Paginated(w, orders, p)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		transport.Error(w, r, err)
		return
	}

	o, err := h.orders.GetOrder(r.Context(), actor(r), id)
	if err != nil {
		transport.Error(w, r, err)
		return
	}
	transport.OK(w, o)
}

func (h *Handler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		transport.Error(w, r, err)
		return
	}

	var patch order.UpdatePatch
	if err := transport.DecodeJSON(w, r, &patch); err != nil {
		transport.Error(w, r, err)
		return
	}

	o, err := h.orders.UpdateOrder(r.Context(), actor(r), id, patch)
	if err != nil {
		transport.Error(w, r, err)
		return
	}
	transport.OK(w, o)
}
