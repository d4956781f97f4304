package verifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestTACClient_Lookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			IMEI string `json:"imei"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.IMEI != "490154203237518" {
			t.Errorf("imei = %q", req.IMEI)
		}
		json.NewEncoder(w).Encode(TACResult{
			Valid:   true,
			TAC:     "49015420",
			Make:    "Apple",
			Model:   "iPhone 15 Pro",
			Storage: "256 GB",
		})
	}))
	defer srv.Close()

	client := NewTACClient(srv.URL, time.Second)
	res, err := client.LookupIMEI(context.Background(), "490154203237518")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if !res.Valid {
		t.Fatal("expected valid result")
	}
	if got := res.DeviceLabel(); got != "Apple iPhone 15 Pro 256 GB" {
		t.Fatalf("device label = %q", got)
	}
}

func TestTACClient_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	client := NewTACClient(srv.URL, 200*time.Millisecond)
	if _, err := client.LookupIMEI(context.Background(), "490154203237518"); err == nil {
		t.Fatal("expected error for unreachable service")
	}
}

func TestTACResult_DeviceLabel(t *testing.T) {
	cases := []struct {
		name string
		in   TACResult
		want string
	}{
		{"full", TACResult{Make: "Apple", Model: "iPhone 14", Storage: "128 GB"}, "Apple iPhone 14 128 GB"},
		{"no storage", TACResult{Make: "Apple", Model: "iPhone 14"}, "Apple iPhone 14"},
		{"no model", TACResult{Make: "Apple"}, ""},
		{"empty", TACResult{}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.in.DeviceLabel(); got != tc.want {
				t.Fatalf("DeviceLabel() = %q, want %q", got, tc.want)
			}
		})
	}
}
