package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fairyhunter13/ai-interview-coach/internal/domain"
)

// Claims is the JWT payload issued on register and login.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string `json:"uid"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type ctxKeyUserID struct{}

// UserIDFromContext returns the authenticated user id, or "" when the
// request did not pass the auth middleware.
func UserIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyUserID{}).(string); ok {
		return v
	}
	return ""
}

// issueToken signs an HS256 token for the user with the configured TTL.
func (s *Server) issueToken(u domain.User) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.Cfg.JWTTTL)),
		},
		UserID:   u.ID,
		Username: u.Username,
		Email:    u.Email,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.Cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("op=auth.issue: %w", err)
	}
	return signed, nil
}

// parseToken validates signature, algorithm and expiry, returning the claims.
func (s *Server) parseToken(raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return []byte(s.Cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: invalid token", domain.ErrUnauthorized)
	}
	if !token.Valid || claims.UserID == "" {
		return nil, fmt.Errorf("%w: invalid token", domain.ErrUnauthorized)
	}
	return claims, nil
}

// RequireAuth rejects requests without a valid bearer token and stores the
// authenticated user id in the request context.
func (s *Server) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		const prefix = "Bearer "
		if !strings.HasPrefix(header, prefix) {
			s.writeError(w, r, fmt.Errorf("%w: missing bearer token", domain.ErrUnauthorized), "")
			return
		}
		claims, err := s.parseToken(strings.TrimSpace(strings.TrimPrefix(header, prefix)))
		if err != nil {
			s.writeError(w, r, err, "")
			return
		}
		ctx := context.WithValue(r.Context(), ctxKeyUserID{}, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
