// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WellNest Contributors

package observability

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func startServer(t *testing.T, ready ReadinessChecker) (*Server, *Metrics, <-chan error) {
	t.Helper()
	reg, metrics := NewRegistry()
	server := NewServer("127.0.0.1:0", reg, ready)

	errCh, err := server.Start()
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Stop(ctx)
		for range errCh { //nolint:revive // drain until the serve goroutine exits
		}
	})
	return server, metrics, errCh
}

func get(t *testing.T, server *Server, path string) (int, string) {
	t.Helper()
	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	resp, err := client.Get("http://" + server.Addr() + path)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestServer_Probes(t *testing.T) {
	tests := []struct {
		name     string
		ready    ReadinessChecker
		path     string
		wantCode int
		wantBody string
	}{
		{"liveness", func() bool { return false }, "/healthz/liveness", http.StatusOK, "ok\n"},
		{"ready", func() bool { return true }, "/healthz/readiness", http.StatusOK, "ok\n"},
		{"not ready", func() bool { return false }, "/healthz/readiness", http.StatusServiceUnavailable, "not ready\n"},
		{"nil checker", nil, "/healthz/readiness", http.StatusOK, "ok\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, _, _ := startServer(t, tt.ready)
			code, body := get(t, server, tt.path)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantBody, body)
		})
	}
}

func TestServer_ExposesCounters(t *testing.T) {
	server, metrics, _ := startServer(t, nil)

	metrics.ObserveLogin("password", "success")
	metrics.ObserveLogin("password", "success")
	metrics.ObserveLogin("guest", "denied")
	metrics.ObserveRegistration("rejected")
	metrics.ObserveRequest("/api/login", http.StatusUnauthorized)

	code, body := get(t, server, "/metrics")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `wellnest_logins_total{method="password",result="success"} 2`)
	assert.Contains(t, body, `wellnest_logins_total{method="guest",result="denied"} 1`)
	assert.Contains(t, body, `wellnest_registrations_total{result="rejected"} 1`)
	assert.Contains(t, body, `wellnest_http_requests_total{route="/api/login",status="401"} 1`)
	assert.Contains(t, body, "go_goroutines")
}

func TestServer_Lifecycle(t *testing.T) {
	reg, _ := NewRegistry()
	server := NewServer("127.0.0.1:0", reg, nil)
	assert.Empty(t, server.Addr())

	errCh, err := server.Start()
	require.NoError(t, err)

	_, err = server.Start()
	require.Error(t, err, "second Start must fail")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, server.Stop(ctx))
	require.NoError(t, server.Stop(ctx), "Stop is idempotent")

	select {
	case err, ok := <-errCh:
		assert.False(t, ok && err != nil, "unexpected serve error: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("error channel not closed after Stop")
	}
}

func TestServer_ReportsServeFailure(t *testing.T) {
	server, _, errCh := startServer(t, nil)

	require.NoError(t, server.listener.Close())

	select {
	case err := <-errCh:
		assert.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("serve failure not reported")
	}
}

func TestServer_ListenFailure(t *testing.T) {
	reg, _ := NewRegistry()
	_, err := NewServer("256.0.0.1:bad", reg, nil).Start()
	require.Error(t, err)
}
