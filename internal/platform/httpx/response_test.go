package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWriteErrorEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(context.Background(), rec, NewError("invalid_request", "name is required\n", http.StatusBadRequest).
		WithFields(map[string]string{"name": "required"}))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var payload map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload["error"] != "invalid_request" || payload["message"] != "name is required" {
		t.Fatalf("unexpected payload %#v", payload)
	}
	fields, ok := payload["fields"].(map[string]any)
	if !ok || fields["name"] != "required" {
		t.Fatalf("expected field details, got %#v", payload["fields"])
	}
}

func TestDecodeJSON(t *testing.T) {
	type body struct {
		Name string `json:"name"`
	}

	t.Run("empty body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
		var dst body
		if err := DecodeJSON(req, 1024, &dst); !errors.Is(err, ErrEmptyBody) {
			t.Fatalf("expected ErrEmptyBody, got %v", err)
		}
	})

	t.Run("unknown field", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a","extra":1}`))
		var dst body
		if err := DecodeJSON(req, 1024, &dst); err == nil {
			t.Fatalf("expected unknown field error")
		}
	})

	t.Run("trailing document", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a"}{"name":"b"}`))
		var dst body
		if err := DecodeJSON(req, 1024, &dst); err == nil {
			t.Fatalf("expected trailing data error")
		}
	})

	t.Run("ok", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Wallbox"}`))
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
		var dst body
		if err := DecodeJSON(req, 1024, &dst); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if dst.Name != "Wallbox" {
			t.Fatalf("expected name decoded, got %q", dst.Name)
		}
	})
}
