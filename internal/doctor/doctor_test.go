package doctor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/basket/clearvue/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("CLEARVUE_HOME", t.TempDir())
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	return &cfg
}

func TestCheckConfig_NilConfig(t *testing.T) {
	result := checkConfig(context.Background(), nil)
	if result.Status != "FAIL" {
		t.Fatalf("expected FAIL for nil config, got %s", result.Status)
	}
}

func TestCheckConfig_FirstRun(t *testing.T) {
	cfg := testConfig(t)
	result := checkConfig(context.Background(), cfg)
	if result.Status != "WARN" {
		t.Fatalf("expected WARN on first run, got %s: %s", result.Status, result.Message)
	}
}

func TestCheckConfig_Loaded(t *testing.T) {
	cfg := testConfig(t)
	cfg.FirstRun = false
	result := checkConfig(context.Background(), cfg)
	if result.Status != "PASS" {
		t.Fatalf("expected PASS, got %s: %s", result.Status, result.Message)
	}
}

func TestCheckPermissions(t *testing.T) {
	cfg := testConfig(t)
	result := checkPermissions(context.Background(), cfg)
	if result.Status != "PASS" {
		t.Fatalf("expected PASS, got %s: %s", result.Status, result.Message)
	}
}

func TestCheckCatalog_Variants(t *testing.T) {
	cfg := testConfig(t)

	cfg.Catalog.Variant = "iphone_extended"
	if result := checkCatalog(context.Background(), cfg); result.Status != "PASS" {
		t.Fatalf("expected PASS for iphone_extended, got %s: %s", result.Status, result.Message)
	}

	cfg.Catalog.Variant = "android"
	if result := checkCatalog(context.Background(), cfg); result.Status != "FAIL" {
		t.Fatalf("expected FAIL for unknown variant, got %s", result.Status)
	}
}

func TestCheckCatalog_CustomFile(t *testing.T) {
	cfg := testConfig(t)

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	data := `tests:
  - id: screen
    name: Screen
    category:
      kind: display
    verification: self_reported
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	cfg.Catalog.File = path

	if result := checkCatalog(context.Background(), cfg); result.Status != "PASS" {
		t.Fatalf("expected PASS for valid custom catalog, got %s: %s", result.Status, result.Message)
	}

	cfg.Catalog.File = filepath.Join(t.TempDir(), "absent.yaml")
	if result := checkCatalog(context.Background(), cfg); result.Status != "FAIL" {
		t.Fatalf("expected FAIL for missing custom catalog, got %s", result.Status)
	}
}

func TestCheckReportStore(t *testing.T) {
	cfg := testConfig(t)
	result := checkReportStore(context.Background(), cfg)
	if result.Status != "PASS" {
		t.Fatalf("expected PASS, got %s: %s", result.Status, result.Message)
	}
}

func TestCheckEndpointDNS_Invalid(t *testing.T) {
	result := checkEndpointDNS(context.Background(), "Lens Service", "not a url")
	if result.Status != "FAIL" {
		t.Fatalf("expected FAIL for malformed endpoint, got %s", result.Status)
	}
}

func TestCheckEndpointDNS_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := checkEndpointDNS(ctx, "Lens Service", "https://rhex.app/api/analyze-lens")
	if result.Status != "FAIL" {
		t.Fatalf("expected FAIL for canceled context, got %s", result.Status)
	}
}

func TestRunCollectsAllChecks(t *testing.T) {
	cfg := testConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // keep the DNS checks offline-safe

	d := Run(ctx, cfg, "test")
	if len(d.Results) != 6 {
		t.Fatalf("results = %d, want 6", len(d.Results))
	}
	if d.System.Version != "test" {
		t.Fatalf("version = %q", d.System.Version)
	}
	names := map[string]bool{}
	for _, r := range d.Results {
		names[r.Name] = true
	}
	for _, want := range []string{"Config", "Permissions", "Catalog", "Report Store", "Lens Service", "IMEI Service"} {
		if !names[want] {
			t.Fatalf("missing check %q in %v", want, names)
		}
	}
}

func TestHealthy(t *testing.T) {
	d := Diagnosis{Results: []CheckResult{{Status: "PASS"}, {Status: "WARN"}}}
	if !d.Healthy() {
		t.Fatal("Healthy = false with no failures")
	}
	d.Results = append(d.Results, CheckResult{Status: "FAIL"})
	if d.Healthy() {
		t.Fatal("Healthy = true with a failure")
	}
}
