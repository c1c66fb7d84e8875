package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/shopmesh/payment-service/internal/payment/application"
	"github.com/shopmesh/payment-service/internal/payment/domain"
)

type Handler struct {
	log     *slog.Logger
	service *application.Service
}

func NewHandler(log *slog.Logger, service *application.Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/payments", h.createPayment)
	r.Get("/payments/{payID}", h.getPayment)
	r.Post("/payments/{payID}/callback", h.paymentCallback)
	return r
}

type createPaymentReq struct {
	OrderID string `json:"order_id"`
}

type callbackReq struct {
	Status string `json:"status"`
}

type paymentResp struct {
	Code    string `json:"code"`
	PayID   int64  `json:"pay_id,omitempty"`
	OrderID string `json:"order_id,omitempty"`
	Status  string `json:"status,omitempty"`
}

type errorResp struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (h *Handler) createPayment(w http.ResponseWriter, r *http.Request) {
	var req createPaymentReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "invalid body")
		return
	}

	p, err := h.service.CreatePayment(r.Context(), req.OrderID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, paymentResp{Code: "OK", PayID: p.PayID, OrderID: p.OrderID, Status: string(p.Status)})
}

func (h *Handler) getPayment(w http.ResponseWriter, r *http.Request) {
	payID, err := strconv.ParseInt(chi.URLParam(r, "payID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "pay_id must be an integer")
		return
	}

	p, err := h.service.GetPayment(r.Context(), payID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, paymentResp{Code: "OK", PayID: p.PayID, OrderID: p.OrderID, Status: string(p.Status)})
}

// paymentCallback acknowledges quickly: success means the status flip and
// the event staging are durable, not that the broker has the message yet.
func (h *Handler) paymentCallback(w http.ResponseWriter, r *http.Request) {
	payID, err := strconv.ParseInt(chi.URLParam(r, "payID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "pay_id must be an integer")
		return
	}

	var req callbackReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "invalid body")
		return
	}
	if req.Status != string(domain.StatusPaid) {
		writeError(w, http.StatusPreconditionFailed, "PRECONDITION_FAILED", "callback target status must be PAID")
		return
	}

	p, err := h.service.MarkPaid(r.Context(), payID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, paymentResp{Code: "OK", PayID: p.PayID, OrderID: p.OrderID, Status: string(p.Status)})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrOrderIDRequired):
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", err.Error())
	case errors.Is(err, domain.ErrAlreadyPaid):
		writeError(w, http.StatusConflict, "ALREADY_PAID", err.Error())
	case errors.Is(err, domain.ErrPaymentNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	default:
		h.log.Error("payment request failed", "err", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResp{Code: code, Message: msg})
}
