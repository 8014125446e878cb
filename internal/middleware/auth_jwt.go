package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/marketdesk/server/internal/domain"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrMissingSub   = errors.New("missing subject in claims")
)

// DemoSessionHeader carries the id of a local demo session.
const DemoSessionHeader = "X-Demo-Session"

// TokenClaims are the claims of a marketdesk session token. Subject is the
// identity used against the counter store.
type TokenClaims struct {
	jwt.RegisteredClaims
	Locale string `json:"locale,omitempty"`
}

// TokenIssuer signs and verifies HS256 session tokens.
type TokenIssuer struct {
	secret []byte
	issuer string
}

func NewTokenIssuer(secret, issuer string) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), issuer: issuer}
}

// Sign mints a token for identity valid for ttl.
func (t *TokenIssuer) Sign(identity, locale string, ttl time.Duration) (string, error) {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return "", ErrMissingSub
	}
	now := time.Now()
	claims := &TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    t.issuer,
			Subject:   identity,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Locale: locale,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Verify parses token and checks its signature, issuer and expiry.
func (t *TokenIssuer) Verify(token string) (*TokenClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &TokenClaims{}, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return t.secret, nil
	}, jwt.WithIssuer(t.issuer), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*TokenClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, ErrMissingSub
	}
	return claims, nil
}

type sessionKey struct{}

// Session resolves the ActorSession for every request. A bearer token yields a
// remote session, otherwise a demo session header yields a local demo session.
// Requests with neither are rejected.
func Session(tokens *TokenIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if authHeader := r.Header.Get("Authorization"); authHeader != "" {
				parts := strings.SplitN(authHeader, " ", 2)
				if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
					writeUnauthorized(w, "invalid authorization")
					return
				}
				claims, err := tokens.Verify(strings.TrimSpace(parts[1]))
				if err != nil {
					writeUnauthorized(w, err.Error())
					return
				}
				ctx = ContextWithSession(ctx, domain.RemoteSession(claims.Subject))
				if claims.Locale != "" && r.Header.Get("X-Locale") == "" {
					ctx = context.WithValue(ctx, LocaleKey, normalizeLocale(claims.Locale))
				}
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}
			if demoID := strings.TrimSpace(r.Header.Get(DemoSessionHeader)); demoID != "" {
				id, err := uuid.Parse(demoID)
				if err != nil {
					writeUnauthorized(w, "invalid demo session")
					return
				}
				ctx = ContextWithSession(ctx, domain.DemoSession(id.String()))
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}
			writeUnauthorized(w, "missing authorization")
		})
	}
}

// SessionFromContext returns the session resolved by Session.
func SessionFromContext(ctx context.Context) (domain.ActorSession, bool) {
	s, ok := ctx.Value(sessionKey{}).(domain.ActorSession)
	return s, ok
}

func ContextWithSession(ctx context.Context, s domain.ActorSession) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": "unauthorized", "message": msg},
	})
}
