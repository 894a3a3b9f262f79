package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"smarthr/internal/app/server"
	"smarthr/internal/platform/config"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   any             `json:"error"`
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	return config.Config{
		Addr:               ":0",
		DataDir:            dir,
		PayslipDir:         dir + "/payslips",
		JWTSecret:          "test-secret",
		Environment:        "test",
		TokenTTL:           time.Hour,
		MaxBodyBytes:       1048576,
		LoginRatePerMinute: 1000,
		MetricsEnabled:     true,
	}
}

func startServer(t *testing.T) (*httptest.Server, *server.App) {
	t.Helper()
	return startServerWith(t, testConfig(t))
}

func startServerWith(t *testing.T, cfg config.Config) (*httptest.Server, *server.App) {
	t.Helper()
	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	t.Cleanup(app.Close)
	ts := httptest.NewServer(app.Router)
	t.Cleanup(ts.Close)
	return ts, app
}

func doJSON(t *testing.T, client *http.Client, method, url, token string, body any, want int) envelope {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewBuffer(raw)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	if resp.StatusCode != want {
		t.Fatalf("%s %s: expected status %d, got %d: %s", method, url, want, resp.StatusCode, string(raw))
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}
	return env
}

func decodeData(t *testing.T, env envelope, dst any) {
	t.Helper()
	if err := json.Unmarshal(env.Data, dst); err != nil {
		t.Fatalf("failed to decode data: %v (%s)", err, string(env.Data))
	}
}

func login(t *testing.T, client *http.Client, baseURL, username, password string) string {
	t.Helper()
	env := doJSON(t, client, http.MethodPost, baseURL+"/api/v1/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	}, http.StatusOK)
	var data struct {
		Token string `json:"token"`
	}
	decodeData(t, env, &data)
	if data.Token == "" {
		t.Fatal("expected token")
	}
	return data.Token
}

func envelopeErrorCode(env envelope) string {
	errMap, ok := env.Error.(map[string]any)
	if !ok {
		return ""
	}
	code, _ := errMap["code"].(string)
	return code
}

func assertErrorCode(t *testing.T, env envelope, code string) {
	t.Helper()
	if got := envelopeErrorCode(env); got != code {
		t.Fatalf("expected error code %s, got %+v", code, env.Error)
	}
}

func assertValidationErrorField(t *testing.T, env envelope, field string) {
	t.Helper()
	assertErrorCode(t, env, "validation_error")
	errMap := env.Error.(map[string]any)
	details, ok := errMap["details"].(map[string]any)
	if !ok {
		t.Fatalf("expected details object, got %+v", errMap["details"])
	}
	fieldsRaw, ok := details["fields"].([]any)
	if !ok {
		t.Fatalf("expected details.fields array, got %+v", details["fields"])
	}
	for _, item := range fieldsRaw {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if value, _ := entry["field"].(string); value == field {
			return
		}
	}
	t.Fatalf("expected validation error for field %q, got %+v", field, fieldsRaw)
}
