package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fairyhunter13/ai-interview-coach/internal/config"
	"github.com/fairyhunter13/ai-interview-coach/internal/domain"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrInvalidArgument, http.StatusBadRequest, "INVALID_ARGUMENT"},
		{domain.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
		{domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{domain.ErrConflict, http.StatusConflict, "CONFLICT"},
		{domain.ErrRateLimited, http.StatusTooManyRequests, "RATE_LIMITED"},
		{domain.ErrUpstreamTimeout, http.StatusGatewayTimeout, "UPSTREAM_TIMEOUT"},
		{domain.ErrUpstreamRateLimit, http.StatusServiceUnavailable, "UPSTREAM_RATE_LIMIT"},
		{domain.ErrSchemaInvalid, http.StatusBadGateway, "SCHEMA_INVALID"},
		{errors.New("boom"), http.StatusInternalServerError, "INTERNAL"},
		{fmt.Errorf("op=test: %w", domain.ErrConflict), http.StatusConflict, "CONFLICT"},
	}
	for _, tc := range cases {
		status, code := statusFor(tc.err)
		if status != tc.status || code != tc.code {
			t.Errorf("statusFor(%v): want (%d,%s), got (%d,%s)", tc.err, tc.status, tc.code, status, code)
		}
	}
}

func TestWriteError_ProdHidesServerSideDetail(t *testing.T) {
	srv := &Server{Cfg: config.Config{AppEnv: "prod"}}
	rw := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/interviews/evaluate", nil)

	srv.writeError(rw, r, fmt.Errorf("%w: raw model output with secrets", domain.ErrSchemaInvalid), "AI evaluation failed")

	if rw.Code != http.StatusBadGateway {
		t.Fatalf("want 502, got %d", rw.Code)
	}
	var env errorEnvelope
	_ = json.NewDecoder(rw.Body).Decode(&env)
	if env.Error.Message != "AI evaluation failed" {
		t.Fatalf("message not scrubbed: %q", env.Error.Message)
	}
	if env.Error.Details != nil {
		t.Fatalf("details leaked in prod: %v", env.Error.Details)
	}
}

func TestWriteError_DevKeepsDetail(t *testing.T) {
	srv := &Server{Cfg: config.Config{AppEnv: "dev"}}
	rw := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/interviews/evaluate", nil)

	srv.writeError(rw, r, fmt.Errorf("%w: parse failed", domain.ErrSchemaInvalid), "AI evaluation failed")

	var env errorEnvelope
	_ = json.NewDecoder(rw.Body).Decode(&env)
	if env.Error.Details == nil {
		t.Fatal("want details outside prod")
	}
}

func TestWriteError_ClientErrorKeepsMessage(t *testing.T) {
	srv := &Server{Cfg: config.Config{AppEnv: "prod"}}
	rw := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)

	srv.writeError(rw, r, fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized), "login failed")

	var env errorEnvelope
	_ = json.NewDecoder(rw.Body).Decode(&env)
	if env.Error.Code != "UNAUTHORIZED" {
		t.Fatalf("code: %q", env.Error.Code)
	}
	if env.Error.Message == "login failed" {
		t.Fatal("4xx message must not be replaced by the 5xx public message")
	}
}
