package rest

import (
	"net/http"

	"mshop-be/internal/access"
	"mshop-be/internal/order"
	"mshop-be/internal/transport"
	"mshop-be/internal/user"
)

type roleRequest struct {
	Role access.Role `json:"role"`
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.admin.Dashboard(r.Context(), actor(r))
	if err != nil {
		transport.Error(w, r, err)
		return
	}
	transport.OK(w, d)
}

func (h *Handler) AdminListOrders(w http.ResponseWriter, r *http.Request) {
	page, limit, err := pageParams(r)
	if err != nil {
		transport.Error(w, r, err)
		return
	}

	orders, p, err := h.admin.ListOrders(r.Context(), actor(r), order.ListQuery{
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

func (h *Handler) AdminListUsers(w http.ResponseWriter, r *http.Request) {
	page, limit, err := pageParams(r)
	if err != nil {
		transport.Error(w, r, err)
		return
	}

	q := user.ListQuery{Page: page, Limit: limit}
	if raw := r.URL.Query().Get("role"); raw != "" {
		role := access.Role(raw)
		if !role.IsValid() {
			transport.Error(w, r, user.ErrInvalidRole)
			return
		}
		q.Role = &role
	}

	users, p, err := h.users.ListUsers(r.Context(), q)
	if err != nil {
		transport.Error(w, r, err)
		return
	}
	transport.Paginated(w, users, p)
}

func (h *Handler) ChangeUserRole(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		transport.Error(w, r, err)
		return
	}

	var in roleRequest
	if err := transport.DecodeJSON(w, r, &in); err != nil {
		transport.Error(w, r, err)
		return
	}

	u, err := h.users.ChangeRole(r.Context(), actor(r), id, in.Role)
	if err != nil {
		transport.Error(w, r, err)
		return
	}
	transport.OK(w, u)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		transport.Error(w, r, err)
		return
	}

	if err := h.users.Delete(r.Context(), actor(r), id); err != nil {
		transport.Error(w, r, err)
		return
	}
	transport.Message(w, http.StatusOK, "user deleted")
}
