package common

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewDefaultConfig(t *testing.T) {
	config := NewDefaultConfig()

	if config.Server.Port != 8085 {
		t.Errorf("Server.Port = %d, want 8085", config.Server.Port)
	}
	if config.Storage.Type != "badger" {
		t.Errorf("Storage.Type = %q, want badger", config.Storage.Type)
	}
	if config.Analysis.CacheTTLSeconds != 1800 {
		t.Errorf("Analysis.CacheTTLSeconds = %d, want 1800", config.Analysis.CacheTTLSeconds)
	}
	if config.Conversation.SessionTTLDays != 7 {
		t.Errorf("Conversation.SessionTTLDays = %d, want 7", config.Conversation.SessionTTLDays)
	}
	if config.Analysis.SpecialistTimeout != "90s" {
		t.Errorf("Analysis.SpecialistTimeout = %q, want 90s", config.Analysis.SpecialistTimeout)
	}
}

func TestLoadFromFiles_MergesInOrder(t *testing.T) {
	dir := t.TempDir()

	first := filepath.Join(dir, "first.toml")
	if err := os.WriteFile(first, []byte("[server]\nport = 9000\n\n[logging]\nlevel = \"debug\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	second := filepath.Join(dir, "second.toml")
	if err := os.WriteFile(second, []byte("[server]\nport = 9001\n"), 0644); err != nil {
		t.Fatal(err)
	}

	config, err := LoadFromFiles(first, second)
	if err != nil {
		t.Fatalf("LoadFromFiles() error = %v", err)
	}

	if config.Server.Port != 9001 {
		t.Errorf("Server.Port = %d, want 9001 (later file wins)", config.Server.Port)
	}
	if config.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug (earlier file preserved)", config.Logging.Level)
	}
	if config.Server.Host == "" {
		t.Error("Server.Host default lost during merge")
	}
}

func TestLoadFromFiles_MissingFile(t *testing.T) {
	_, err := LoadFromFiles("/nonexistent/verdict.toml")
	if err == nil {
		t.Error("LoadFromFiles() expected error for missing file")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("VERDICT_SERVER_PORT", "7777")
	t.Setenv("VERDICT_STORAGE_TYPE", "memory")
	t.Setenv("VERDICT_LLM_PROVIDER", "claude")
	t.Setenv("ANTHROPIC_API_KEY", "test-key")

	config, err := LoadFromFiles()
	if err != nil {
		t.Fatalf("LoadFromFiles() error = %v", err)
	}

	if config.Server.Port != 7777 {
		t.Errorf("Server.Port = %d, want 7777", config.Server.Port)
	}
	if config.Storage.Type != "memory" {
		t.Errorf("Storage.Type = %q, want memory", config.Storage.Type)
	}
	if config.LLM.Provider != LLMProviderClaude {
		t.Errorf("LLM.Provider = %q, want claude", config.LLM.Provider)
	}
	if config.LLM.Claude.APIKey != "test-key" {
		t.Errorf("LLM.Claude.APIKey = %q, want test-key", config.LLM.Claude.APIKey)
	}
}

func TestApplyFlagOverrides(t *testing.T) {
	config := NewDefaultConfig()

	ApplyFlagOverrides(config, 9090, "0.0.0.0")
	if config.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", config.Server.Port)
	}
	if config.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want 0.0.0.0", config.Server.Host)
	}

	ApplyFlagOverrides(config, 0, "")
	if config.Server.Port != 9090 || config.Server.Host != "0.0.0.0" {
		t.Error("zero-value flags must not override previous values")
	}
}
