// Package doctor runs environment checks so a support engineer can tell at
// a glance why a diagnostic station is misbehaving: unwritable home dir,
// corrupt report store, unreachable verifier endpoints.
package doctor

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/basket/clearvue/internal/catalog"
	"github.com/basket/clearvue/internal/config"
	"github.com/basket/clearvue/internal/persistence"
)

type CheckResult struct {
	Name    string `json:"name"`
	Status  string `json:"status"` // "PASS", "FAIL", "WARN", "SKIP"
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

type Diagnosis struct {
	Timestamp time.Time     `json:"timestamp"`
	System    SystemInfo    `json:"system"`
	Results   []CheckResult `json:"results"`
}

type SystemInfo struct {
	OS      string `json:"os"`
	Arch    string `json:"arch"`
	Go      string `json:"go_version"`
	Version string `json:"version"`
}

// Run executes all diagnostic checks.
func Run(ctx context.Context, cfg *config.Config, version string) Diagnosis {
	d := Diagnosis{
		Timestamp: time.Now().UTC(),
		System: SystemInfo{
			OS:      runtime.GOOS,
			Arch:    runtime.GOARCH,
			Go:      runtime.Version(),
			Version: version,
		},
	}

	checks := []func(context.Context, *config.Config) CheckResult{
		checkConfig,
		checkPermissions,
		checkCatalog,
		checkReportStore,
		checkLensEndpoint,
		checkIMEIEndpoint,
	}

	for _, check := range checks {
		d.Results = append(d.Results, check(ctx, cfg))
	}

	return d
}

// Healthy reports whether no check failed. Warnings do not count.
func (d Diagnosis) Healthy() bool {
	for _, r := range d.Results {
		if r.Status == "FAIL" {
			return false
		}
	}
	return true
}

func checkConfig(_ context.Context, cfg *config.Config) CheckResult {
	if cfg == nil {
		return CheckResult{Name: "Config", Status: "FAIL", Message: "Configuration not loaded"}
	}
	if cfg.FirstRun {
		return CheckResult{
			Name:    "Config",
			Status:  "WARN",
			Message: "No config.yaml yet (defaults active)",
			Detail:  fmt.Sprintf("Will be created at %s", config.ConfigPath(cfg.HomeDir)),
		}
	}
	return CheckResult{Name: "Config", Status: "PASS", Message: fmt.Sprintf("Loaded from %s (%s)", cfg.HomeDir, cfg.Fingerprint())}
}

func checkPermissions(_ context.Context, cfg *config.Config) CheckResult {
	if cfg == nil {
		return CheckResult{Name: "Permissions", Status: "SKIP", Message: "Config missing"}
	}

	testFile := filepath.Join(cfg.HomeDir, ".write_test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		return CheckResult{Name: "Permissions", Status: "FAIL", Message: fmt.Sprintf("Home dir unwritable: %v", err)}
	}
	os.Remove(testFile)

	return CheckResult{Name: "Permissions", Status: "PASS", Message: "Home directory writable"}
}

func checkCatalog(_ context.Context, cfg *config.Config) CheckResult {
	if cfg == nil {
		return CheckResult{Name: "Catalog", Status: "SKIP", Message: "Config missing"}
	}

	if cfg.Catalog.File != "" {
		cat, err := catalog.LoadFile(cfg.Catalog.File)
		if err != nil {
			return CheckResult{Name: "Catalog", Status: "FAIL", Message: fmt.Sprintf("Custom catalog invalid: %v", err)}
		}
		return CheckResult{Name: "Catalog", Status: "PASS", Message: fmt.Sprintf("Custom catalog with %d tests", cat.Len())}
	}

	cat, ok := catalog.Variant(cfg.Catalog.Variant)
	if !ok {
		return CheckResult{
			Name:    "Catalog",
			Status:  "FAIL",
			Message: fmt.Sprintf("Unknown variant %q", cfg.Catalog.Variant),
			Detail:  "Known variants: iphone, iphone_extended, browser",
		}
	}
	return CheckResult{Name: "Catalog", Status: "PASS", Message: fmt.Sprintf("Variant %q with %d tests", cfg.Catalog.Variant, cat.Len())}
}

func checkReportStore(ctx context.Context, cfg *config.Config) CheckResult {
	if cfg == nil {
		return CheckResult{Name: "Report Store", Status: "SKIP", Message: "Config missing"}
	}

	store, err := persistence.Open(config.DBPath(cfg.HomeDir))
	if err != nil {
		return CheckResult{Name: "Report Store", Status: "FAIL", Message: fmt.Sprintf("Open failed: %v", err)}
	}
	defer store.Close()

	n, err := store.CountReports(ctx)
	if err != nil {
		return CheckResult{Name: "Report Store", Status: "FAIL", Message: fmt.Sprintf("Query failed: %v", err)}
	}

	return CheckResult{Name: "Report Store", Status: "PASS", Message: fmt.Sprintf("Schema valid, %d reports stored", n)}
}

func checkLensEndpoint(ctx context.Context, cfg *config.Config) CheckResult {
	if cfg == nil {
		return CheckResult{Name: "Lens Service", Status: "SKIP", Message: "Config missing"}
	}
	return checkEndpointDNS(ctx, "Lens Service", cfg.Lens.Endpoint)
}

func checkIMEIEndpoint(ctx context.Context, cfg *config.Config) CheckResult {
	if cfg == nil {
		return CheckResult{Name: "IMEI Service", Status: "SKIP", Message: "Config missing"}
	}
	return checkEndpointDNS(ctx, "IMEI Service", cfg.IMEI.Endpoint)
}

// checkEndpointDNS resolves the endpoint host. It does not issue a request;
// the verifier services only accept well-formed POSTs, and a resolvable host
// is enough to distinguish "station offline" from "service down".
func checkEndpointDNS(ctx context.Context, name, endpoint string) CheckResult {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return CheckResult{Name: name, Status: "FAIL", Message: fmt.Sprintf("Invalid endpoint %q", endpoint)}
	}
	host := u.Hostname()

	lookupCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	start := time.Now()
	addrs, err := net.DefaultResolver.LookupHost(lookupCtx, host)
	latency := time.Since(start)

	if err != nil {
		return CheckResult{
			Name:    name,
			Status:  "FAIL",
			Message: fmt.Sprintf("DNS lookup failed for %s: %v", host, err),
			Detail:  fmt.Sprintf("endpoint=%s, latency=%dms", endpoint, latency.Milliseconds()),
		}
	}

	return CheckResult{
		Name:    name,
		Status:  "PASS",
		Message: fmt.Sprintf("DNS resolved %s (%d addresses, %dms)", host, len(addrs), latency.Milliseconds()),
		Detail:  fmt.Sprintf("endpoint=%s", endpoint),
	}
}
