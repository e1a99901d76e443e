// cmd/worker-manager/main_test.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"placement-workers/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryWithBackoff(t *testing.T) {
	log := logger.NewTestLogger(t)

	calls := 0
	err := retryWithBackoff(func() error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	}, 5, time.Millisecond, log, "dial")

	require.NoError(t, err)
	assert.Equal(t, 3, calls)

	calls = 0
	err = retryWithBackoff(func() error {
		calls++
		return errors.New("connection refused")
	}, 2, time.Millisecond, log, "dial")

	assert.Equal(t, 2, calls)
	assert.EqualError(t, err, "dial failed after 2 attempts: connection refused")
}

type fakeStore struct {
	pingErr error
	closed  bool
}

func (f *fakeStore) Ping(context.Context) error { return f.pingErr }

func (f *fakeStore) Close() error {
	f.closed = true
	return nil
}

func TestOpenAndPing_ClosesFailedClients(t *testing.T) {
	var opened []*fakeStore
	open := func() (*fakeStore, error) {
		store := &fakeStore{}
		if len(opened) < 2 {
			store.pingErr = errors.New("connection refused")
		}
		opened = append(opened, store)
		return store, nil
	}

	var store *fakeStore
	err := retryWithBackoff(func() error {
		var err error
		store, err = openAndPing(context.Background(), open)
		return err
	}, 5, time.Millisecond, logger.NewTestLogger(t), "dial")

	require.NoError(t, err)
	require.Len(t, opened, 3)
	assert.True(t, opened[0].closed)
	assert.True(t, opened[1].closed)
	assert.False(t, store.closed)
	assert.Same(t, opened[2], store)
}

func TestOpenAndPing_OpenError(t *testing.T) {
	store, err := openAndPing(context.Background(), func() (*fakeStore, error) {
		return nil, errors.New("redis address is required")
	})

	assert.EqualError(t, err, "redis address is required")
	assert.Nil(t, store)
}

func TestHealthEndpoint(t *testing.T) {
	srv := newServer(":0", nil)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
}

func TestReadyEndpoint(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("redis ping failed") }

	tests := []struct {
		name       string
		checks     []readinessCheck
		wantStatus int
		wantState  string
	}{
		{"all ok", []readinessCheck{{"postgres", ok}, {"redis", ok}}, http.StatusOK, "ready"},
		{"one down", []readinessCheck{{"postgres", ok}, {"redis", down}}, http.StatusServiceUnavailable, "not ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(":0", tt.checks)

			rec := httptest.NewRecorder()
			srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
			assert.Equal(t, tt.wantStatus, rec.Code)

			var body struct {
				Status string            `json:"status"`
				Checks map[string]string `json:"checks"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantState, body.Status)
			assert.Equal(t, "ok", body.Checks["postgres"])
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newServer(":0", nil)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}
