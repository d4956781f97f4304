package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/basket/clearvue/internal/config"
)

func TestLoadCatalog(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.CatalogConfig
		wantLen int
		wantErr bool
	}{
		{name: "default variant", cfg: config.CatalogConfig{Variant: "iphone"}, wantLen: 13},
		{name: "extended variant", cfg: config.CatalogConfig{Variant: "iphone_extended"}, wantLen: 17},
		{name: "browser variant", cfg: config.CatalogConfig{Variant: "browser"}, wantLen: 13},
		{name: "unknown variant", cfg: config.CatalogConfig{Variant: "android"}, wantErr: true},
		{name: "missing file", cfg: config.CatalogConfig{File: "/nonexistent/catalog.yaml"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat, err := loadCatalog(config.Config{Catalog: tt.cfg})
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cat.Len() != tt.wantLen {
				t.Fatalf("catalog len = %d, want %d", cat.Len(), tt.wantLen)
			}
		})
	}
}

func TestLoadCatalog_CustomFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	data := `tests:
  - id: screen
    name: Screen
    category:
      kind: display
    verification: self_reported
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cat, err := loadCatalog(config.Config{Catalog: config.CatalogConfig{File: path}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cat.Len() != 1 {
		t.Fatalf("catalog len = %d, want 1", cat.Len())
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	data := "# comment\nCLEARVUE_TEST_DOTENV=from_file\nCLEARVUE_TEST_PRESET=from_file\n\nNOEQUALS\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("CLEARVUE_TEST_DOTENV", "")
	os.Unsetenv("CLEARVUE_TEST_DOTENV")
	t.Setenv("CLEARVUE_TEST_PRESET", "from_env")

	loadDotEnv(path)

	if got := os.Getenv("CLEARVUE_TEST_DOTENV"); got != "from_file" {
		t.Fatalf("CLEARVUE_TEST_DOTENV = %q, want from_file", got)
	}
	// Existing env vars win over .env entries.
	if got := os.Getenv("CLEARVUE_TEST_PRESET"); got != "from_env" {
		t.Fatalf("CLEARVUE_TEST_PRESET = %q, want from_env", got)
	}
}

func TestLoadDotEnv_MissingFile(t *testing.T) {
	// Must be a silent no-op.
	loadDotEnv(filepath.Join(t.TempDir(), "absent.env"))
}
