package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"vidsphere/internal/httpkit"
	"vidsphere/internal/pkg/errors"
	"vidsphere/internal/pkg/logger"
)

func newBufferLogger(buf *bytes.Buffer) *logger.Logger {
	return logger.New(logger.Config{Level: "debug", Format: "json", Output: buf})
}

func TestRequestID(t *testing.T) {
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, _ := r.Context().Value(logger.RequestIDKey).(string); id == "" {
			t.Error("expected request ID in context")
		}
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("generates new request ID", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/videos/j1", nil))

		if id := rec.Header().Get(RequestIDHeader); len(id) != 36 {
			t.Errorf("expected a uuid request ID, got %q", id)
		}
	})

	t.Run("preserves existing request ID", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/videos/j1", nil)
		req.Header.Set(RequestIDHeader, "existing-id-123")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if id := rec.Header().Get(RequestIDHeader); id != "existing-id-123" {
			t.Errorf("expected preserved request ID, got %s", id)
		}
	})
}

func TestLoggingLevels(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{200, "INFO"},
		{302, "INFO"},
		{409, "WARN"},
		{503, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			var buf bytes.Buffer
			handler := Logging(newBufferLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("PATCH", "/videos/status", nil))

			out := buf.String()
			for _, want := range []string{"request completed", tt.level, "/videos/status", "PATCH", "duration_ms"} {
				if !strings.Contains(out, want) {
					t.Errorf("expected %q in log, got: %s", want, out)
				}
			}
		})
	}
}

func TestRecovery(t *testing.T) {
	var buf bytes.Buffer
	handler := Recovery(newBufferLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), string(errors.CodeInternal)) {
		t.Errorf("expected internal code in body, got: %s", rec.Body.String())
	}
	if !strings.Contains(buf.String(), "panic recovered") || !strings.Contains(buf.String(), "boom") {
		t.Errorf("expected panic in log, got: %s", buf.String())
	}
}

func TestStatusRecorder(t *testing.T) {
	rw := &statusRecorder{ResponseWriter: httptest.NewRecorder()}
	if rw.code() != http.StatusOK {
		t.Errorf("expected 200 before any write, got %d", rw.code())
	}
	rw.Write([]byte("hello world"))
	rw.WriteHeader(http.StatusCreated)

	if rw.code() != http.StatusOK {
		t.Errorf("expected implicit 200 to stick, got %d", rw.code())
	}
	if rw.size != 11 {
		t.Errorf("expected size 11, got %d", rw.size)
	}
	if http.NewResponseController(rw).Flush() != nil {
		t.Error("expected flush to reach the recorder")
	}
}

func TestRecoveryReraisesAbort(t *testing.T) {
	handler := Recovery(logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	defer func() {
		if rec := recover(); rec != http.ErrAbortHandler {
			t.Fatalf("expected ErrAbortHandler to propagate, got %v", rec)
		}
	}()
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) httpkit.ErrorEnvelope {
	t.Helper()
	var env httpkit.ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("invalid error body %q: %v", rec.Body.String(), err)
	}
	return env
}

func TestWrapHandler(t *testing.T) {
	var buf bytes.Buffer
	log := newBufferLogger(&buf)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{"not found", errors.NotFound("video", "j1"), 404, "NOT_FOUND", "video not found"},
		{"conflict", errors.Conflict("status cannot move backwards"), 409, "CONFLICT", "status cannot move backwards"},
		{"internal hides cause", fmt.Errorf("pq: password authentication failed"), 500, "INTERNAL_ERROR", "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := WrapHandler(log, func(w http.ResponseWriter, r *http.Request) error {
				return tt.err
			})
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest("GET", "/videos/j1", nil))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			env := decodeEnvelope(t, rec)
			if env.Error.Code != tt.wantCode || !strings.Contains(env.Error.Message, tt.wantMsg) {
				t.Fatalf("unexpected envelope: %+v", env.Error)
			}
		})
	}

	t.Run("success passes through", func(t *testing.T) {
		handler := WrapHandler(log, func(w http.ResponseWriter, r *http.Request) error {
			w.WriteHeader(http.StatusNoContent)
			return nil
		})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
		if rec.Code != http.StatusNoContent {
			t.Fatalf("status = %d", rec.Code)
		}
	})
}

func TestHandleErrorIncludesValidationDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleError(rec, httptest.NewRequest("PATCH", "/videos/status", nil), logger.Discard(),
		errors.ValidationField("status", "unknown status"))

	env := decodeEnvelope(t, rec)
	if rec.Code != http.StatusBadRequest || env.Error.Details["field"] != "status" {
		t.Fatalf("unexpected response %d %+v", rec.Code, env.Error)
	}
}
