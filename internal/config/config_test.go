package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Provider != ProviderOpenAI {
		t.Errorf("expected default provider %q, got %q", ProviderOpenAI, cfg.Provider)
	}
	if cfg.IdeasFile != "IDEAS.md" || cfg.BacklogFile != "BACKLOG.md" {
		t.Errorf("unexpected default documents %q, %q", cfg.IdeasFile, cfg.BacklogFile)
	}
	if cfg.Language != "es" {
		t.Errorf("expected default language es, got %q", cfg.Language)
	}
	if cfg.DuplicateThreshold != 0.80 {
		t.Errorf("expected default threshold 0.80, got %v", cfg.DuplicateThreshold)
	}
	if cfg.RequestsPerMinute != 60 {
		t.Errorf("expected default requests_per_minute 60, got %d", cfg.RequestsPerMinute)
	}
	if !cfg.EmbeddingsEnabled() {
		t.Error("embeddings should be enabled by default")
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)

	original := DefaultConfig()
	original.Provider = ProviderAnthropic
	original.Model = "claude-haiku-4-5-20251001"
	original.Quality = QualityLite
	original.EmbeddingProvider = ProviderNone
	original.Language = "en"
	original.IdeasFile = "docs/IDEAS.md"
	original.DuplicateThreshold = 0.9
	original.DryRun = true

	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if *loaded != *original {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", *loaded, *original)
	}
	if loaded.EmbeddingsEnabled() {
		t.Error("embedding_provider none should disable embeddings")
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nonexistent.yml")

	// Loading a missing file should return defaults, not an error.
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load should not fail for missing file: %v", err)
	}
	if *cfg != *DefaultConfig() {
		t.Errorf("expected defaults, got %+v", *cfg)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte("language: en\nduplicate_threshold: 0.75\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Language != "en" || cfg.DuplicateThreshold != 0.75 {
		t.Errorf("file values not applied: %+v", *cfg)
	}
	if cfg.BacklogFile != "BACKLOG.md" || cfg.Provider != ProviderOpenAI {
		t.Errorf("defaults lost: %+v", *cfg)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yml")

	cfg := DefaultConfig()
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	t.Setenv("IDEAFLOW_PROVIDER", "google")
	t.Setenv("IDEAFLOW_DUPLICATE_THRESHOLD", "0.9")
	t.Setenv("IDEAFLOW_DRY_RUN", "true")

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Provider != ProviderGoogle {
		t.Errorf("env override failed: got %q, want %q", loaded.Provider, ProviderGoogle)
	}
	if loaded.DuplicateThreshold != 0.9 {
		t.Errorf("threshold override failed: got %v", loaded.DuplicateThreshold)
	}
	if !loaded.DryRun {
		t.Error("dry_run override failed")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"no embeddings", func(c *Config) { c.EmbeddingProvider = ProviderNone }, true},
		{"english", func(c *Config) { c.Language = "en" }, true},
		{"threshold one", func(c *Config) { c.DuplicateThreshold = 1 }, true},
		{"empty provider", func(c *Config) { c.Provider = "" }, false},
		{"invalid provider", func(c *Config) { c.Provider = "invalid" }, false},
		{"empty model", func(c *Config) { c.Model = "" }, false},
		{"embedding openrouter", func(c *Config) { c.EmbeddingProvider = ProviderOpenRouter }, false},
		{"invalid quality", func(c *Config) { c.Quality = "ultra" }, false},
		{"no ideas file", func(c *Config) { c.IdeasFile = "" }, false},
		{"no backlog file", func(c *Config) { c.BacklogFile = "" }, false},
		{"unknown language", func(c *Config) { c.Language = "fr" }, false},
		{"zero threshold", func(c *Config) { c.DuplicateThreshold = 0 }, false},
		{"threshold above one", func(c *Config) { c.DuplicateThreshold = 1.2 }, false},
		{"negative rpm", func(c *Config) { c.RequestsPerMinute = -1 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok && err != nil {
				t.Errorf("expected valid, got %v", err)
			}
			if !tt.ok && err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestGetPreset(t *testing.T) {
	p := GetPreset(ProviderAnthropic, QualityLite)
	if p.Model != "claude-haiku-4-5-20251001" {
		t.Errorf("expected haiku model, got %q", p.Model)
	}

	p = GetPreset(ProviderGoogle, QualityNormal)
	if p.EmbeddingModel != "gemini-embedding-001" {
		t.Errorf("expected gemini embeddings, got %q", p.EmbeddingModel)
	}

	// Unknown combination falls back.
	p = GetPreset("unknown", QualityLite)
	if p.Model != "gpt-4o" {
		t.Errorf("expected fallback to gpt-4o, got %q", p.Model)
	}
}

func TestAPIKeyEnvVar(t *testing.T) {
	tests := []struct {
		provider ProviderType
		want     string
	}{
		{ProviderAnthropic, "ANTHROPIC_API_KEY"},
		{ProviderOpenAI, "OPENAI_API_KEY"},
		{ProviderOpenRouter, "OPENROUTER_API_KEY"},
		{ProviderGoogle, "GOOGLE_API_KEY"},
		{ProviderOllama, ""},
		{ProviderNone, ""},
	}
	for _, tt := range tests {
		got := APIKeyEnvVar(tt.provider)
		if got != tt.want {
			t.Errorf("APIKeyEnvVar(%q) = %q, want %q", tt.provider, got, tt.want)
		}
	}
}

func TestCheckAPIKeys(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")
	t.Setenv("OPENAI_API_KEY", "")

	cfg := DefaultConfig()
	cfg.Provider = ProviderAnthropic
	if err := cfg.CheckAPIKeys(); err == nil {
		t.Error("expected missing OPENAI_API_KEY for embeddings")
	}

	cfg.EmbeddingProvider = ProviderNone
	if err := cfg.CheckAPIKeys(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	cfg.Provider = ProviderOllama
	cfg.EmbeddingProvider = ProviderOllama
	if err := cfg.CheckAPIKeys(); err != nil {
		t.Errorf("ollama needs no key: %v", err)
	}
}

func TestEmbeddingChoices(t *testing.T) {
	got := embeddingChoices(ProviderOllama)
	want := []string{"ollama", "openai", "google", "none"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("choice %d = %q, want %q", i, got[i], want[i])
		}
	}
	if embeddingChoices(ProviderAnthropic)[0] != "openai" {
		t.Error("cloud providers default to openai embeddings")
	}
}

func TestEmbeddingModelFor(t *testing.T) {
	tests := []struct {
		provider ProviderType
		preset   QualityPreset
		want     string
	}{
		{ProviderOpenAI, QualityPreset{EmbeddingModel: "text-embedding-3-large"}, "text-embedding-3-large"},
		{ProviderOpenAI, QualityPreset{EmbeddingModel: "nomic-embed-text"}, "text-embedding-3-small"},
		{ProviderGoogle, QualityPreset{}, "gemini-embedding-001"},
		{ProviderOllama, QualityPreset{}, "nomic-embed-text"},
		{ProviderNone, QualityPreset{EmbeddingModel: "text-embedding-3-small"}, ""},
	}
	for _, tt := range tests {
		if got := embeddingModelFor(tt.provider, tt.preset); got != tt.want {
			t.Errorf("embeddingModelFor(%q) = %q, want %q", tt.provider, got, tt.want)
		}
	}
}

func TestParseThreshold(t *testing.T) {
	if f, err := parseThreshold("0.85"); err != nil || f != 0.85 {
		t.Errorf("parseThreshold(0.85) = %v, %v", f, err)
	}
	for _, bad := range []string{"", "abc", "0", "1.5", "-0.2"} {
		if _, err := parseThreshold(bad); err == nil {
			t.Errorf("parseThreshold(%q) should fail", bad)
		}
	}
}
