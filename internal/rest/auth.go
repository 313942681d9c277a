package rest

import (
	"net/http"

	"mshop-be/internal/auth"
	"mshop-be/internal/transport"
	"mshop-be/internal/user"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func setTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var in user.RegisterInput
	if err := transport.DecodeJSON(w, r, &in); err != nil {
		transport.Error(w, r, err)
		return
	}

	res, err := h.users.Register(r.Context(), in)
	if err != nil {
		transport.Error(w, r, err)
		return
	}

	setTokenCookie(w, res.Token)
	transport.Created(w, res)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := transport.DecodeJSON(w, r, &in); err != nil {
		transport.Error(w, r, err)
		return
	}

	res, err := h.users.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		transport.Error(w, r, err)
		return
	}

	setTokenCookie(w, res.Token)
	transport.OK(w, res)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.GetByID(r.Context(), actor(r).UserID)
	if err != nil {
		transport.Error(w, r, err)
		return
	}
	transport.OK(w, u)
}
