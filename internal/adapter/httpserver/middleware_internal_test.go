package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fairyhunter13/ai-interview-coach/internal/adapter/observability"
	"github.com/fairyhunter13/ai-interview-coach/internal/domain"
)

func userForToken() domain.User {
	return domain.User{ID: "u-1", Username: "alice", Email: "a@b.com"}
}

func TestRequestID_GeneratesAndEchoes(t *testing.T) {
	var seen string
	h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = observability.RequestIDFromContext(r.Context())
	}))
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/", nil))

	if seen == "" {
		t.Fatal("request id not stored in context")
	}
	if got := rw.Header().Get("X-Request-Id"); got != seen {
		t.Fatalf("header/context mismatch: %q vs %q", got, seen)
	}
}

func TestRequestID_KeepsIncomingID(t *testing.T) {
	h := RequestID()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Request-Id", "given-id")
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, r)
	if got := rw.Header().Get("X-Request-Id"); got != "given-id" {
		t.Fatalf("incoming id replaced: %q", got)
	}
}

func TestRecoverer(t *testing.T) {
	h := Recoverer()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/", nil))
	if rw.Code != http.StatusInternalServerError {
		t.Fatalf("want 500, got %d", rw.Code)
	}
}

func TestTimeoutMiddleware(t *testing.T) {
	h := TimeoutMiddleware(10 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.Context().Deadline(); !ok {
			t.Error("no deadline on request context")
		}
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}

func TestSecurityHeaders(t *testing.T) {
	h := SecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/", nil))
	if rw.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatal("nosniff header missing")
	}
	if rw.Header().Get("X-Frame-Options") != "DENY" {
		t.Fatal("frame options header missing")
	}
}

func TestIssueAndParseToken(t *testing.T) {
	srv := &Server{}
	srv.Cfg.JWTSecret = "secret"
	srv.Cfg.JWTTTL = time.Hour

	token, err := srv.issueToken(userForToken())
	if err != nil {
		t.Fatalf("issueToken: %v", err)
	}
	claims, err := srv.parseToken(token)
	if err != nil {
		t.Fatalf("parseToken: %v", err)
	}
	if claims.UserID != "u-1" || claims.Email != "a@b.com" {
		t.Fatalf("claims mismatch: %+v", claims)
	}

	other := &Server{}
	other.Cfg.JWTSecret = "different"
	if _, err := other.parseToken(token); err == nil {
		t.Fatal("token verified with wrong secret")
	}
}

func TestParseToken_Expired(t *testing.T) {
	srv := &Server{}
	srv.Cfg.JWTSecret = "secret"
	srv.Cfg.JWTTTL = -time.Hour

	token, err := srv.issueToken(userForToken())
	if err != nil {
		t.Fatalf("issueToken: %v", err)
	}
	if _, err := srv.parseToken(token); err == nil {
		t.Fatal("expired token accepted")
	}
}
