package rest

import (
	"net/http"

	"mshop-be/internal/product"
	"mshop-be/internal/transport"
)

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	page, limit, err := pageParams(r)
	if err != nil {
		transport.Error(w, r, err)
		return
	}

	items, p, err := h.products.List(r.Context(), product.ListQuery{
		Category: r.URL.Query().Get("category"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		transport.Error(w, r, err)
		return
	}
	transport.Paginated(w, items, p)
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		transport.Error(w, r, err)
		return
	}

	p, err := h.products.Get(r.Context(), id)
	if err != nil {
		transport.Error(w, r, err)
		return
	}
	transport.OK(w, p)
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var in product.CreateInput
	if err := transport.DecodeJSON(w, r, &in); err != nil {
		transport.Error(w, r, err)
		return
	}

	p, err := h.products.Create(r.Context(), actor(r), in)
	if err != nil {
		transport.Error(w, r, err)
		return
	}
	transport.Created(w, p)
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		transport.Error(w, r, err)
		return
	}

	var in product.UpdateInput
	if err := transport.DecodeJSON(w, r, &in); err != nil {
		transport.Error(w, r, err)
		return
	}

	p, err := h.products.Update(r.Context(), actor(r), id, in)
	if err != nil {
		transport.Error(w, r, err)
		return
	}
	transport.OK(w, p)
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		transport.Error(w, r, err)
		return
	}

	if err := h.products.Delete(r.Context(), actor(r), id); err != nil {
		transport.Error(w, r, err)
		return
	}
	transport.Message(w, http.StatusOK, "product deleted")
}
