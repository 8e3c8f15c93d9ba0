package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard, saves the result to
// path and returns it.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to ideaflow! Let's configure your backlog.")
	fmt.Println()

	// 1. Provider selection.
	providerPrompt := promptui.Select{
		Label: "Select LLM provider",
		Items: []string{"openai", "anthropic", "openrouter", "google", "ollama"},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	provider := ProviderType(providerStr)

	// 2. Quality tier.
	qualityPrompt := promptui.Select{
		Label: "Select quality tier",
		Items: []string{
			"lite   - fast & cheap",
			"normal - balanced",
			"max    - highest quality",
		},
		CursorPos: 1,
	}
	qualityIdx, _, err := qualityPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("quality selection: %w", err)
	}
	tiers := []QualityTier{QualityLite, QualityNormal, QualityMax}
	quality := tiers[qualityIdx]
	preset := GetPreset(provider, quality)

	// 3. Embeddings. The provider's usual embedder is listed first.
	embeddingPrompt := promptui.Select{
		Label: "Screen candidates with embeddings",
		Items: embeddingChoices(provider),
	}
	_, embeddingStr, err := embeddingPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("embedding selection: %w", err)
	}
	embeddingProvider := ProviderType(embeddingStr)

	// 4. Document language.
	langPrompt := promptui.Select{
		Label: "Document language",
		Items: []string{"es", "en"},
	}
	_, language, err := langPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("language selection: %w", err)
	}

	// 5. Document paths.
	ideasPrompt := promptui.Prompt{Label: "Ideas file", Default: "IDEAS.md"}
	ideasFile, err := ideasPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("ideas file: %w", err)
	}
	backlogPrompt := promptui.Prompt{Label: "Backlog file", Default: "BACKLOG.md"}
	backlogFile, err := backlogPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("backlog file: %w", err)
	}

	// 6. Threshold.
	thresholdPrompt := promptui.Prompt{
		Label:    "Duplicate threshold (0-1]",
		Default:  "0.80",
		Validate: func(s string) error { _, err := parseThreshold(s); return err },
	}
	thresholdStr, err := thresholdPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("threshold: %w", err)
	}
	threshold, _ := parseThreshold(thresholdStr)

	cfg := DefaultConfig()
	cfg.Provider = provider
	cfg.Model = preset.Model
	cfg.Quality = quality
	cfg.EmbeddingProvider = embeddingProvider
	cfg.EmbeddingModel = embeddingModelFor(embeddingProvider, preset)
	cfg.Language = language
	cfg.IdeasFile = ideasFile
	cfg.BacklogFile = backlogFile
	cfg.DuplicateThreshold = threshold

	for _, p := range []ProviderType{cfg.Provider, cfg.EmbeddingProvider} {
		if envVar := APIKeyEnvVar(p); envVar != "" && os.Getenv(envVar) == "" {
			fmt.Printf("\nNote: Set %s in your environment before running ideaflow process.\n", envVar)
		}
	}

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

// embeddingProviderFor returns the default embedding provider for a given
// LLM provider. OpenAI embeddings are used for all cloud providers.
func embeddingProviderFor(p ProviderType) ProviderType {
	if p == ProviderOllama {
		return ProviderOllama
	}
	return ProviderOpenAI
}

// embeddingChoices lists the embedding providers with the default for p first.
func embeddingChoices(p ProviderType) []string {
	first := embeddingProviderFor(p)
	choices := []string{string(first)}
	for _, c := range []ProviderType{ProviderOpenAI, ProviderGoogle, ProviderOllama, ProviderNone} {
		if c != first {
			choices = append(choices, string(c))
		}
	}
	return choices
}

// embeddingModelFor picks the embedding model for the chosen embedding
// provider. The preset applies only when it is an OpenAI model.
func embeddingModelFor(p ProviderType, preset QualityPreset) string {
	switch p {
	case ProviderNone:
		return ""
	case ProviderGoogle:
		return "gemini-embedding-001"
	case ProviderOllama:
		return "nomic-embed-text"
	}
	if strings.HasPrefix(preset.EmbeddingModel, "text-embedding-") {
		return preset.EmbeddingModel
	}
	return "text-embedding-3-small"
}

func parseThreshold(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	if f <= 0 || f > 1 {
		return 0, fmt.Errorf("threshold must be in (0, 1]")
	}
	return f, nil
}
