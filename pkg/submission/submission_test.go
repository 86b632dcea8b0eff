package submission

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/govtech-bb/formflow/pkg/values"
)

func TestSubmit(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/forms/birth-certificate/submit", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "Jane", payload["firstName"])

		json.NewEncoder(w).Encode(Result{
			Success: true,
			Message: "Application received",
			Data: &ResultData{
				SubmissionID:    "sub-1",
				FormID:          "birth-certificate",
				Status:          "received",
				ReferenceNumber: "BC-2026-0001",
			},
		})
	}))
	defer srv.Close()

	client, err := New(srv.URL)
	require.NoError(t, err)

	res, err := client.Submit(context.Background(), "birth-certificate", values.Map{"firstName": "Jane"})
	require.NoError(t, err)
	assert.True(t, res.Success)
	require.NotNil(t, res.Data)
	assert.Equal(t, "BC-2026-0001", res.Data.ReferenceNumber)
}

func TestSubmitPaymentRequired(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(Result{
			Success: true,
			Data: &ResultData{
				SubmissionID:    "sub-2",
				FormID:          "birth-certificate",
				Status:          "awaiting-payment",
				PaymentRequired: true,
				PaymentURL:      "https://gateway.example/payment_page?token=tok-1",
				PaymentToken:    "tok-1",
				Amount:          50,
			},
		})
	}))
	defer srv.Close()

	client, err := New(srv.URL)
	require.NoError(t, err)

	res, err := client.Submit(context.Background(), "birth-certificate", values.Map{})
	require.NoError(t, err)
	require.NotNil(t, res.Data)
	assert.True(t, res.Data.PaymentRequired)
	assert.Equal(t, "tok-1", res.Data.PaymentToken)
	assert.Equal(t, 50.0, res.Data.Amount)
}

func TestSubmitNon2xx(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client, err := New(srv.URL)
	require.NoError(t, err)

	_, err = client.Submit(context.Background(), "birth-certificate", values.Map{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestSubmitValidatesInput(t *testing.T) {
	t.Parallel()

	_, err := New("")
	require.Error(t, err)

	client, err := New("https://backend.example")
	require.NoError(t, err)
	_, err = client.Submit(context.Background(), "", values.Map{})
	require.Error(t, err)
}
