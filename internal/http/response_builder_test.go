package http

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fintrack/internal/currency"
	"fintrack/internal/ledger"
)

func TestJSONResponseBuilder_Basic(t *testing.T) {
	w := httptest.NewRecorder()

	NewJSONResponse().
		Status(http.StatusCreated).
		Header("X-Custom", "value").
		Body(map[string]int{"count": 2}).
		Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
	if w.Header().Get("X-Custom") != "value" {
		t.Error("Custom header not set")
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	if got := strings.TrimSpace(w.Body.String()); got != `{"count":2}` {
		t.Errorf("Body = %q", got)
	}
}

func TestJSONResponseBuilder_NilBody(t *testing.T) {
	w := httptest.NewRecorder()
	NewJSONResponse().Body(nil).Write(w)
	if got := strings.TrimSpace(w.Body.String()); got != "null" {
		t.Errorf("Body = %q, want null", got)
	}
}

func TestJSONResponseBuilder_EncodingFailure(t *testing.T) {
	w := httptest.NewRecorder()
	NewJSONResponse().Body(math.NaN()).Write(w)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Status code = %d, want 500", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"error"`) {
		t.Errorf("Body = %q", w.Body.String())
	}
}

func TestErrorResponse(t *testing.T) {
	tests := []struct {
		name       string
		builder    *JSONResponseBuilder
		wantStatus int
		wantBody   string
	}{
		{"bad request", BadRequestError("invalid input"), http.StatusBadRequest, `{"error":"invalid input"}`},
		{"not found", NotFoundError("asset \"x\": not found"), http.StatusNotFound, `{"error":"asset \"x\": not found"}`},
		{"internal server error", InternalServerError("internal error"), http.StatusInternalServerError, `{"error":"internal error"}`},
		{"service unavailable", ServiceUnavailableError("down"), http.StatusServiceUnavailable, `{"error":"down"}`},
		{"too many requests", TooManyRequestsError(), http.StatusTooManyRequests, `{"error":"rate limit exceeded, please try again later"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.builder.Write(w)

			if w.Code != tt.wantStatus {
				t.Errorf("Status code = %d, want %d", w.Code, tt.wantStatus)
			}
			if got := strings.TrimSpace(w.Body.String()); got != tt.wantBody {
				t.Errorf("Body = %q, want %q", got, tt.wantBody)
			}
		})
	}
}

func TestFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"request error", badRequest("unknown unit"), http.StatusBadRequest},
		{"wrapped not found", fmt.Errorf("asset %q: %w", "9", ledger.ErrNotFound), http.StatusNotFound},
		{"rates unavailable", fmt.Errorf("%w: timeout", currency.ErrRatesUnavailable), http.StatusServiceUnavailable},
		{"anything else", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/api/period", nil)
			FromError(r, tt.err).Write(w)
			if w.Code != tt.want {
				t.Errorf("Status code = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestJSONFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{12.5, "12.5"},
		{0, "0"},
		{math.NaN(), "null"},
		{math.Inf(1), "null"},
		{math.Inf(-1), "null"},
	}
	for _, tt := range tests {
		got, err := jsonFloat(tt.in).MarshalJSON()
		if err != nil {
			t.Fatalf("MarshalJSON(%v) error = %v", tt.in, err)
		}
		if string(got) != tt.want {
			t.Errorf("MarshalJSON(%v) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
