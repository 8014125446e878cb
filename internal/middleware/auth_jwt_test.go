package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/marketdesk/server/internal/domain"
)

func TestSignAndVerifyToken(t *testing.T) {
	tokens := NewTokenIssuer("test-secret", "tester")
	token, err := tokens.Sign("user-123", "id", time.Hour)
	if err != nil {
		t.Fatalf("Sign() unexpected error: %v", err)
	}
	claims, err := tokens.Verify(token)
	if err != nil {
		t.Fatalf("Verify() unexpected error: %v", err)
	}
	if claims.Subject != "user-123" || claims.Locale != "id" || claims.Issuer != "tester" {
		t.Fatalf("Verify() returned %+v", claims)
	}
}

func TestVerifyTokenInvalidSignature(t *testing.T) {
	token, err := NewTokenIssuer("secret-a", "tester").Sign("user-123", "", time.Hour)
	if err != nil {
		t.Fatalf("Sign() error: %v", err)
	}
	if _, err := NewTokenIssuer("secret-b", "tester").Verify(token); err != ErrInvalidToken {
		t.Fatalf("Verify() error = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyTokenWrongIssuer(t *testing.T) {
	token, err := NewTokenIssuer("secret", "someone-else").Sign("user-123", "", time.Hour)
	if err != nil {
		t.Fatalf("Sign() error: %v", err)
	}
	if _, err := NewTokenIssuer("secret", "tester").Verify(token); err == nil {
		t.Fatal("Verify() expected issuer error")
	}
}

func TestVerifyTokenExpired(t *testing.T) {
	tokens := NewTokenIssuer("secret", "tester")
	token, err := tokens.Sign("user-123", "", -time.Minute)
	if err != nil {
		t.Fatalf("Sign() error: %v", err)
	}
	if _, err := tokens.Verify(token); err != ErrExpiredToken {
		t.Fatalf("Verify() error = %v, want ErrExpiredToken", err)
	}
}

func TestSignRequiresIdentity(t *testing.T) {
	if _, err := NewTokenIssuer("secret", "tester").Sign("  ", "", time.Hour); err != ErrMissingSub {
		t.Fatalf("Sign() error = %v, want ErrMissingSub", err)
	}
}

func TestSessionMiddleware(t *testing.T) {
	tokens := NewTokenIssuer("secret", "tester")
	valid, err := tokens.Sign("user-7", "", time.Hour)
	if err != nil {
		t.Fatalf("Sign() error: %v", err)
	}

	tests := []struct {
		name       string
		headers    map[string]string
		wantStatus int
		want       domain.ActorSession
	}{
		{
			name:       "bearer token",
			headers:    map[string]string{"Authorization": "Bearer " + valid},
			wantStatus: http.StatusOK,
			want:       domain.RemoteSession("user-7"),
		},
		{
			name: "bearer wins over demo header",
			headers: map[string]string{
				"Authorization":   "bearer " + valid,
				DemoSessionHeader: "0b0a4d02-4a8d-4d3e-8a49-6b0f3c1f2f10",
			},
			wantStatus: http.StatusOK,
			want:       domain.RemoteSession("user-7"),
		},
		{
			name:       "demo header",
			headers:    map[string]string{DemoSessionHeader: "0B0A4D02-4A8D-4D3E-8A49-6B0F3C1F2F10"},
			wantStatus: http.StatusOK,
			want:       domain.DemoSession("0b0a4d02-4a8d-4d3e-8a49-6b0f3c1f2f10"),
		},
		{
			name:       "malformed demo id",
			headers:    map[string]string{DemoSessionHeader: "../../etc/passwd"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "bad token",
			headers:    map[string]string{"Authorization": "Bearer nope"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "basic auth scheme",
			headers:    map[string]string{"Authorization": "Basic dXNlcjpwYXNz"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "nothing",
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got domain.ActorSession
			var seen bool
			h := Session(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got, seen = SessionFromContext(r.Context())
			}))
			req := httptest.NewRequest(http.MethodGet, "/v1/usage", nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			if rr.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tc.wantStatus)
			}
			if tc.wantStatus != http.StatusOK {
				if seen {
					t.Fatal("handler ran for rejected request")
				}
				return
			}
			if got != tc.want {
				t.Fatalf("session = %+v, want %+v", got, tc.want)
			}
		})
	}
}
