package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"crafthub/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIClient_HoldSendsTokenAndBody(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"b1","workshop_id":"w1","quantity":2,"status":"pending"}}`))
	}))
	defer srv.Close()

	c := NewAPIClient(srv.URL).WithToken("tok")
	resp, err := c.HoldSeats(context.Background(), "w1", 2)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "w1", gotBody["workshopId"])
	assert.EqualValues(t, 2, gotBody["quantity"])

	b, err := DecodeBooking(resp)
	require.NoError(t, err)
	assert.Equal(t, "b1", b.ID)
	assert.Equal(t, model.StatusPending, b.Status)
}

func TestAPIClient_ErrorMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"not enough seats available","code":"INSUFFICIENT_CAPACITY"}`))
	}))
	defer srv.Close()

	resp, err := NewAPIClient(srv.URL).ConfirmBookings(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "not enough seats available", GetErrorMessage(resp))

	_, err = DecodeConfirmResults(resp)
	assert.Error(t, err)
}

func TestAPIClient_WaitForHealthy(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := NewAPIClient(srv.URL).WaitForHealthy(context.Background(), 5*time.Second)
	assert.NoError(t, err)
}
