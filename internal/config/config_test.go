package config

import (
	"os"
	"path/filepath"
	"testing"

	"ledgerlens/internal/domain"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"PORT", "AI_PROVIDER", "AI_MODEL", "ANTHROPIC_API_KEY"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Port)
	}
	if cfg.AI.Provider != ProviderNone {
		t.Errorf("provider = %q, want %q", cfg.AI.Provider, ProviderNone)
	}
	if cfg.Import != domain.DefaultImportSettings() {
		t.Errorf("import settings = %+v, want defaults", cfg.Import)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
port: 9000
ai:
  provider: gemini
  model: gemini-2.5-pro
import:
  delimiter: ";"
  dateFormat: "DD.MM.YYYY"
  decimalSeparator: ","
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 9000 {
		t.Errorf("port = %d, want 9000", cfg.Port)
	}
	if cfg.AI.Provider != ProviderGemini || cfg.AI.Model != "gemini-2.5-pro" {
		t.Errorf("ai = %+v, want gemini/gemini-2.5-pro", cfg.AI)
	}
	if cfg.Import.Delimiter != ";" || cfg.Import.DecimalSeparator != "," {
		t.Errorf("import settings = %+v, want German defaults from file", cfg.Import)
	}
	// Unset fields fall back to defaults rather than staying empty.
	if cfg.Import.Direction != domain.PositiveIsIncome {
		t.Errorf("direction = %q, want default %q", cfg.Import.Direction, domain.PositiveIsIncome)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "3333")
	t.Setenv("AI_PROVIDER", "claude")
	t.Setenv("ANTHROPIC_API_KEY", "test-key")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 3333 {
		t.Errorf("port = %d, want 3333 from env", cfg.Port)
	}
	if cfg.AI.Provider != ProviderClaude || cfg.AI.APIKey != "test-key" {
		t.Errorf("ai = %+v, want claude with key from env", cfg.AI)
	}
}

func TestClaudeRequiresAPIKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("AI_PROVIDER", "claude")

	if _, err := Load(""); err == nil {
		t.Error("expected error for claude provider without ANTHROPIC_API_KEY")
	}
}

func TestUnknownProviderRejected(t *testing.T) {
	clearEnv(t)
	t.Setenv("AI_PROVIDER", "skynet")

	if _, err := Load(""); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestMissingFileIsNotAnError(t *testing.T) {
	clearEnv(t)

	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err != nil {
		t.Errorf("Load with missing file: %v", err)
	}
}
