package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shopmesh/payment-service/internal/payment/application"
	paymenthttp "github.com/shopmesh/payment-service/internal/payment/infrastructure/http"
	"github.com/shopmesh/payment-service/internal/payment/infrastructure/memory"
	"github.com/shopmesh/payment-service/pkg/outbox"
)

type nopPool struct{}

func (nopPool) Submit(context.Context, outbox.Event) error { return nil }

type seqIDs struct{ next int64 }

func (s *seqIDs) NextID() int64 {
	s.next++
	return s.next
}

func newServer(t *testing.T) (*httptest.Server, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	svc := application.NewService(
		slog.New(slog.DiscardHandler),
		store,
		&seqIDs{},
		nopPool{},
		application.Route{GroupName: "g", Topic: "payment.events", Tag: "paid"},
	)
	h := paymenthttp.NewHandler(slog.New(slog.DiscardHandler), svc)
	srv := httptest.NewServer(h.Routes())
	t.Cleanup(srv.Close)
	return srv, store
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

type apiResp struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	PayID   int64  `json:"pay_id"`
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

func TestCreateAndCallbackHappyPath(t *testing.T) {
	srv, store := newServer(t)

	resp := postJSON(t, srv.URL+"/payments", map[string]string{"order_id": "ORD-1"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[apiResp](t, resp)
	require.Equal(t, "OK", created.Code)
	require.Equal(t, "UNPAID", created.Status)

	resp = postJSON(t, fmt.Sprintf("%s/payments/%d/callback", srv.URL, created.PayID), map[string]string{"status": "PAID"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	paid := decode[apiResp](t, resp)
	require.Equal(t, "PAID", paid.Status)
	require.Len(t, store.Events(), 1, "callback staged the event")
}

func TestCreatePaymentMissingOrderID(t *testing.T) {
	srv, _ := newServer(t)

	resp := postJSON(t, srv.URL+"/payments", map[string]string{})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "INVALID_ARGUMENT", decode[apiResp](t, resp).Code)
}

func TestCreatePaymentAlreadyPaid(t *testing.T) {
	srv, _ := newServer(t)

	created := decode[apiResp](t, postJSON(t, srv.URL+"/payments", map[string]string{"order_id": "ORD-1"}))
	resp := postJSON(t, fmt.Sprintf("%s/payments/%d/callback", srv.URL, created.PayID), map[string]string{"status": "PAID"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, srv.URL+"/payments", map[string]string{"order_id": "ORD-1"})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.Equal(t, "ALREADY_PAID", decode[apiResp](t, resp).Code)
}

func TestCallbackUnknownPayment(t *testing.T) {
	srv, _ := newServer(t)

	resp := postJSON(t, srv.URL+"/payments/9999/callback", map[string]string{"status": "PAID"})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "NOT_FOUND", decode[apiResp](t, resp).Code)
}

func TestCallbackRejectsUnpaidTarget(t *testing.T) {
	srv, store := newServer(t)

	created := decode[apiResp](t, postJSON(t, srv.URL+"/payments", map[string]string{"order_id": "ORD-1"}))

	resp := postJSON(t, fmt.Sprintf("%s/payments/%d/callback", srv.URL, created.PayID), map[string]string{"status": "UNPAID"})
	require.Equal(t, http.StatusPreconditionFailed, resp.StatusCode)
	require.Equal(t, "PRECONDITION_FAILED", decode[apiResp](t, resp).Code)
	require.Empty(t, store.Events())
}

func TestCallbackBadPayID(t *testing.T) {
	srv, _ := newServer(t)

	resp := postJSON(t, srv.URL+"/payments/abc/callback", map[string]string{"status": "PAID"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "INVALID_ARGUMENT", decode[apiResp](t, resp).Code)
}
