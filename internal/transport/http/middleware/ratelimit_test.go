package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"smarthr/internal/domain/auth"
)

func noContent(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func throttled(t Throttle) http.Handler {
	if t.Window == 0 {
		t.Window = time.Minute
	}
	return t.Middleware()(http.HandlerFunc(noContent))
}

func serve(h http.Handler, req *http.Request, addr string) *httptest.ResponseRecorder {
	req.RemoteAddr = addr
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func loginRequest(username string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString(`{"username":"`+username+`","password":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestThrottleKeysMutationsByActor(t *testing.T) {
	h := throttled(Throttle{Login: 1, Mutations: 1})
	hr := WithUser(t.Context(), auth.UserContext{Username: "hr.lead", Role: auth.RoleHR})
	admin := WithUser(t.Context(), auth.UserContext{Username: "admin", Role: auth.RoleAdmin})
	generate := func(ctx context.Context) *http.Request {
		return httptest.NewRequest(http.MethodPost, "/api/v1/payroll/generate", nil).WithContext(ctx)
	}

	if rec := serve(h, generate(hr), "198.51.100.11:2222"); rec.Code != http.StatusNoContent {
		t.Fatalf("expected first request to pass, got %d", rec.Code)
	}
	if rec := serve(h, generate(hr), "198.51.100.12:3333"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled by user key, got %d", rec.Code)
	}
	if rec := serve(h, generate(admin), "198.51.100.12:3333"); rec.Code != http.StatusNoContent {
		t.Fatalf("expected another actor to pass, got %d", rec.Code)
	}
}

func TestThrottleWindowReset(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	h := throttled(Throttle{Login: 1, Mutations: 1, Now: func() time.Time { return now }})

	if rec := serve(h, loginRequest("admin"), "192.0.2.20:1111"); rec.Code != http.StatusNoContent {
		t.Fatalf("expected first login to pass, got %d", rec.Code)
	}
	if rec := serve(h, loginRequest("admin"), "192.0.2.20:1111"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second login to be throttled, got %d", rec.Code)
	}
	now = now.Add(61 * time.Second)
	if rec := serve(h, loginRequest("admin"), "192.0.2.20:1111"); rec.Code != http.StatusNoContent {
		t.Fatalf("expected login after window reset to pass, got %d", rec.Code)
	}
}

func TestThrottleReturnsRetryMetadata(t *testing.T) {
	h := throttled(Throttle{Login: 1, Mutations: 1})
	serve(h, httptest.NewRequest(http.MethodPost, "/api/v1/payroll/compute", nil), "192.0.2.30:1111")
	rec := serve(h, httptest.NewRequest(http.MethodPost, "/api/v1/payroll/compute", nil), "192.0.2.30:1111")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}
	if rec.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Fatalf("expected remaining 0, got %q", rec.Header().Get("X-RateLimit-Remaining"))
	}
}

func TestThrottleKeysLoginByUsernameAndIP(t *testing.T) {
	h := throttled(Throttle{Login: 1, Mutations: 1})

	if rec := serve(h, loginRequest("admin"), "203.0.113.1:1"); rec.Code != http.StatusNoContent {
		t.Fatalf("expected first login to pass, got %d", rec.Code)
	}
	if rec := serve(h, loginRequest("admin"), "203.0.113.2:1"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected username throttle across IPs, got %d", rec.Code)
	}
	if rec := serve(h, loginRequest("alice"), "203.0.113.3:1"); rec.Code != http.StatusNoContent {
		t.Fatalf("expected different username to pass, got %d", rec.Code)
	}
	if rec := serve(h, loginRequest("bob"), "203.0.113.3:1"); rec.Code != http.StatusNoContent {
		t.Fatalf("expected second username from one IP to pass, got %d", rec.Code)
	}
	if rec := serve(h, loginRequest("carol"), "203.0.113.3:1"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected IP throttle after two logins, got %d", rec.Code)
	}
}

func TestThrottleLoginKeepsBody(t *testing.T) {
	h := Throttle{Login: 5}.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(raw), `"username":"admin"`) {
			t.Fatalf("expected login body to reach the handler, got %q", raw)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	if rec := serve(h, loginRequest("admin"), "203.0.113.9:1"); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestThrottleScopes(t *testing.T) {
	h := throttled(Throttle{Login: 1, Mutations: 1})
	for i := 0; i < 3; i++ {
		if rec := serve(h, httptest.NewRequest(http.MethodGet, "/api/v1/payroll/records", nil), "192.0.2.40:1"); rec.Code != http.StatusNoContent {
			t.Fatalf("expected reads to pass, got %d", rec.Code)
		}
		if rec := serve(h, httptest.NewRequest(http.MethodPost, "/api/v1/leave/requests", nil), "192.0.2.40:1"); rec.Code != http.StatusNoContent {
			t.Fatalf("expected leave requests to pass, got %d", rec.Code)
		}
	}
	serve(h, httptest.NewRequest(http.MethodPost, "/api/v1/leave/requests/3/approve", nil), "192.0.2.41:1")
	if rec := serve(h, httptest.NewRequest(http.MethodDelete, "/api/v1/employees/3", nil), "192.0.2.41:1"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected leave decisions and removals to share the actor budget, got %d", rec.Code)
	}
}

func TestBodyLimitRejectsLargePayload(t *testing.T) {
	handler := BodyLimit(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := new(bytes.Buffer)
		if _, err := buf.ReadFrom(r.Body); err == nil {
			t.Fatal("expected body limit error")
		}
		w.WriteHeader(http.StatusRequestEntityTooLarge)
	}))
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"username":"someone"}`))
	handler.ServeHTTP(httptest.NewRecorder(), req)
}
