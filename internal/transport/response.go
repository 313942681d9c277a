// Package transport holds the JSON envelope every HTTP endpoint answers
// with: {success, data | message, pagination?}.
package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"mshop-be/internal/apperror"
	"mshop-be/internal/logger"
	"mshop-be/internal/utils"

	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

type Response struct {
	Success    bool              `json:"success"`
	Data       any               `json:"data"`
	Pagination *utils.Pagination `json:"pagination,omitempty"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

var ErrInvalidBody = apperror.InvalidRequest("invalid JSON body")

func JSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.L().Warn("failed to write response", zap.Error(err))
	}
}

func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, Response{Success: true, Data: data})
}

func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, Response{Success: true, Data: data})
}

func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, MessageResponse{Success: status < 400, Message: msg})
}

func Paginated(w http.ResponseWriter, data any, p utils.Pagination) {
	JSON(w, http.StatusOK, Response{Success: true, Data: data, Pagination: &p})
}

// Error maps err onto its HTTP status. Internal and provider failures are
// logged in full and answered with a generic message.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperror.KindOf(err)
	status := apperror.HTTPStatus(kind)

	log := logger.FromCtx(r.Context()).With(
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
	)
	if status >= 500 {
		log.Error("request failed", zap.String("kind", kind.String()), zap.Error(err))
	} else {
		log.Debug("request rejected", zap.Error(err))
	}

	Message(w, status, apperror.PublicMessage(err))
}

// DecodeJSON reads a bounded JSON body into dst, rejecting unknown fields
// and trailing data.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return apperror.InvalidRequest("request body too large")
		case errors.Is(err, io.EOF):
			return apperror.InvalidRequest("request body is empty")
		default:
			return apperror.Wrap(apperror.KindInvalidRequest, fmt.Sprintf("invalid JSON body: %v", err), err)
		}
	}
	if dec.More() {
		return ErrInvalidBody
	}
	return nil
}
