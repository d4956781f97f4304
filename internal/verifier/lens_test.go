package verifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/basket/clearvue/internal/catalog"
)

func TestLensClient_Pass(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		var req struct {
			Image          string `json:"image"`
			CameraPosition string `json:"camera_position"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.CameraPosition != "back" {
			t.Errorf("camera_position = %q, want back", req.CameraPosition)
		}
		if req.Image == "" {
			t.Error("empty image payload")
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"pass":        true,
			"explanation": "Clear image with good contrast; no lens damage visible.",
		})
	}))
	defer srv.Close()

	client, err := NewLensClient(srv.URL, time.Second)
	if err != nil {
		t.Fatalf("new lens client: %v", err)
	}
	v, err := client.AnalyzeLens(context.Background(), "dGVzdC1qcGVn", catalog.CameraBack)
	if err != nil {
		t.Fatalf("analyze lens: %v", err)
	}
	if !v.Pass {
		t.Fatal("expected pass verdict")
	}
	if v.Explanation == "" {
		t.Fatal("expected explanation")
	}
}

func TestLensClient_Non200IsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"Analysis failed"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, err := NewLensClient(srv.URL, time.Second)
	if err != nil {
		t.Fatalf("new lens client: %v", err)
	}
	if _, err := client.AnalyzeLens(context.Background(), "aW1n", catalog.CameraFront); err == nil {
		t.Fatal("expected error for 500 response")
	}
}

func TestLensClient_MalformedJSONIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	client, err := NewLensClient(srv.URL, time.Second)
	if err != nil {
		t.Fatalf("new lens client: %v", err)
	}
	if _, err := client.AnalyzeLens(context.Background(), "aW1n", catalog.CameraFront); err == nil {
		t.Fatal("expected error for malformed body")
	}
}

func TestLensClient_SchemaRejectsWrongShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Valid JSON but pass is a string, not a bool.
		w.Write([]byte(`{"pass": "yes", "explanation": "ok"}`))
	}))
	defer srv.Close()

	client, err := NewLensClient(srv.URL, time.Second)
	if err != nil {
		t.Fatalf("new lens client: %v", err)
	}
	_, err = client.AnalyzeLens(context.Background(), "aW1n", catalog.CameraFront)
	if err == nil || !strings.Contains(err.Error(), "schema") {
		t.Fatalf("expected schema validation error, got %v", err)
	}
}

func TestLensClient_OversizedPayloadRejectedLocally(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	client, err := NewLensClient(srv.URL, time.Second)
	if err != nil {
		t.Fatalf("new lens client: %v", err)
	}
	big := strings.Repeat("A", maxLensPayload+1)
	if _, err := client.AnalyzeLens(context.Background(), big, catalog.CameraBack); err == nil {
		t.Fatal("expected error for oversized payload")
	}
	if called {
		t.Fatal("oversized payload must not reach the service")
	}
}
