package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeDotEnv(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write dotenv: %v", err)
	}
	return path
}

func TestLoadDotEnv_LoadsValuesAndIgnoresNoise(t *testing.T) {
	t.Setenv("GX_A", "")
	t.Setenv("GX_B", "")
	t.Setenv("GX_C", "")

	path := writeDotEnv(t, `
# comment

GX_A=one
export GX_B=two
GX_C="three"
not a pair
=orphan
`)

	loaded, err := loadDotEnv(path)
	if err != nil {
		t.Fatalf("loadDotEnv: %v", err)
	}
	if loaded != 3 {
		t.Fatalf("loaded=%d, want 3", loaded)
	}

	for key, want := range map[string]string{"GX_A": "one", "GX_B": "two", "GX_C": "three"} {
		if got := os.Getenv(key); got != want {
			t.Fatalf("%s=%q, want %q", key, got, want)
		}
	}
}

func TestLoadDotEnv_DoesNotOverwriteExistingEnv(t *testing.T) {
	t.Setenv("GX_KEEP", "already")

	path := writeDotEnv(t, "GX_KEEP=fromfile\n")

	loaded, err := loadDotEnv(path)
	if err != nil {
		t.Fatalf("loadDotEnv: %v", err)
	}
	if loaded != 0 {
		t.Fatalf("loaded=%d, want 0", loaded)
	}
	if got := os.Getenv("GX_KEEP"); got != "already" {
		t.Fatalf("GX_KEEP=%q, want %q", got, "already")
	}
}

func TestLoadDotEnv_MissingFileIsIgnored(t *testing.T) {
	loaded, err := loadDotEnv(filepath.Join(t.TempDir(), "absent.env"))
	if err != nil {
		t.Fatalf("loadDotEnv: %v", err)
	}
	if loaded != 0 {
		t.Fatalf("loaded=%d, want 0", loaded)
	}
}

func TestParseDotEnvLine_Quotes(t *testing.T) {
	tests := []struct {
		line  string
		value string
	}{
		{"Q='hello world'", "hello world"},
		{`Q="hello world"`, "hello world"},
		{`Q="mismatched'`, `"mismatched'`},
		{"Q=plain", "plain"},
	}

	for _, tt := range tests {
		_, got, ok := parseDotEnvLine(tt.line)
		if !ok {
			t.Fatalf("parseDotEnvLine(%q) not ok", tt.line)
		}
		if got != tt.value {
			t.Fatalf("parseDotEnvLine(%q) value=%q, want %q", tt.line, got, tt.value)
		}
	}
}
