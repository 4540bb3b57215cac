package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/example/roombooking/internal/application"
)

type sessionValidatorStub struct {
	principal application.Principal
	err       error
}

func (s *sessionValidatorStub) ValidateSession(ctx context.Context, token string) (application.Principal, error) {
	if s.err != nil {
		return application.Principal{}, s.err
	}
	return s.principal, nil
}

func TestRequireSession(t *testing.T) {
	principal := application.Principal{UserID: "user-1", Email: "alice@example.com"}

	newProtected := func(validator SessionValidator) (http.Handler, *application.Principal) {
		var seen application.Principal
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen, _ = PrincipalFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		})
		return RequireSession(validator, nil)(next), &seen
	}

	t.Run("valid bearer token attaches the principal", func(t *testing.T) {
		handler, seen := newProtected(&sessionValidatorStub{principal: principal})

		req := httptest.NewRequest(http.MethodGet, "/rooms", nil)
		req.Header.Set("Authorization", "Bearer tok-1")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}
		if seen.UserID != principal.UserID {
			t.Fatalf("expected downstream principal %+v, got %+v", principal, *seen)
		}
	})

	t.Run("cookie token is accepted", func(t *testing.T) {
		handler, _ := newProtected(&sessionValidatorStub{principal: principal})

		req := httptest.NewRequest(http.MethodGet, "/rooms", nil)
		req.AddCookie(&http.Cookie{Name: "session_token", Value: "tok-1"})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}
	})

	t.Run("missing token is unauthorized", func(t *testing.T) {
		handler, _ := newProtected(&sessionValidatorStub{principal: principal})

		req := httptest.NewRequest(http.MethodGet, "/rooms", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
		}
	})

	t.Run("expired session is unauthorized with a code", func(t *testing.T) {
		handler, _ := newProtected(&sessionValidatorStub{err: application.ErrSessionExpired})

		req := httptest.NewRequest(http.MethodGet, "/rooms", nil)
		req.Header.Set("Authorization", "Bearer tok-1")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
		}
		resp := decodeError(t, rec)
		if resp.ErrorCode != "AUTH_SESSION_EXPIRED" {
			t.Fatalf("expected expiry error code, got %+v", resp)
		}
	})

	t.Run("revoked session is unauthorized with a code", func(t *testing.T) {
		handler, _ := newProtected(&sessionValidatorStub{err: application.ErrSessionRevoked})

		req := httptest.NewRequest(http.MethodGet, "/rooms", nil)
		req.Header.Set("Authorization", "Bearer tok-1")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
		}
		resp := decodeError(t, rec)
		if resp.ErrorCode != "AUTH_SESSION_REVOKED" {
			t.Fatalf("expected revocation error code, got %+v", resp)
		}
	})
}
