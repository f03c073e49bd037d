package httpkit

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestCORS(t *testing.T) {
	h := CORS(CORSOptions{AllowedOrigins: []string{" http://localhost:5173 ", ""}})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/videos/j1", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
			t.Fatalf("Allow-Origin = %q", got)
		}
		if got := rec.Header().Get("Access-Control-Max-Age"); got != "600" {
			t.Fatalf("Max-Age = %q", got)
		}
		if rec.Code != http.StatusTeapot {
			t.Fatalf("request not forwarded, status %d", rec.Code)
		}
	})

	t.Run("foreign origin", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/videos/j1", nil)
		req.Header.Set("Origin", "https://evil.example")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Fatalf("unexpected Allow-Origin %q", got)
		}
	})

	t.Run("preflight short-circuits", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/videos/status", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("status = %d", rec.Code)
		}
		if !strings.Contains(rec.Header().Get("Access-Control-Allow-Methods"), "PATCH") {
			t.Fatalf("PATCH missing from allowed methods")
		}
	})
}

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	var v struct {
		VideoID string `json:"videoId"`
	}
	req := httptest.NewRequest("PATCH", "/", strings.NewReader(`{"videoId":"j1","extra":1}`))
	if err := DecodeJSON(req, &v); err == nil {
		t.Fatal("expected unknown field error")
	}
}

func TestWriteErr(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteErr(rec, http.StatusConflict, "CONFLICT", "no going back", map[string]any{"videoId": "j1"})

	var env ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusConflict || env.Error.Code != "CONFLICT" || env.Error.Details["videoId"] != "j1" {
		t.Fatalf("unexpected response %d %+v", rec.Code, env)
	}
}

func TestIsUndefinedTable(t *testing.T) {
	if !IsUndefinedTable(fmt.Errorf("query: %w", &pgconn.PgError{Code: "42P01"})) {
		t.Fatal("expected wrapped 42P01 to match")
	}
	if IsUndefinedTable(&pgconn.PgError{Code: "23505"}) {
		t.Fatal("unique violation is not undefined table")
	}
}

func TestCORSWildcardAndExposedHeaders(t *testing.T) {
	h := CORS(CORSOptions{AllowedOrigins: []string{"*"}, ExposedHeaders: []string{"X-Request-ID"}})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("Origin", "https://any.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Header().Get("Access-Control-Allow-Origin") != "https://any.example" {
		t.Fatal("wildcard origin not echoed")
	}
	if rec.Header().Get("Access-Control-Expose-Headers") != "X-Request-ID" {
		t.Fatal("exposed headers missing")
	}
}

func TestDecodeJSONRejectsTrailingData(t *testing.T) {
	var v map[string]string
	req := httptest.NewRequest("PATCH", "/", strings.NewReader(`{"a":"b"}{"c":"d"}`))
	if err := DecodeJSON(req, &v); err == nil {
		t.Fatal("expected trailing data error")
	}
}
