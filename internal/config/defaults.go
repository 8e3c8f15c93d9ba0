package config

// QualityPreset describes the models to use for a given quality tier.
type QualityPreset struct {
	Model          string
	EmbeddingModel string
}

// qualityPresets maps each provider+quality combination to its model choices.
var qualityPresets = map[ProviderType]map[QualityTier]QualityPreset{
	ProviderAnthropic: {
		QualityLite:   {Model: "claude-haiku-4-5-20251001", EmbeddingModel: "text-embedding-3-small"},
		QualityNormal: {Model: "claude-sonnet-4-5-20250929", EmbeddingModel: "text-embedding-3-small"},
		QualityMax:    {Model: "claude-opus-4-1-20250805", EmbeddingModel: "text-embedding-3-large"},
	},
	ProviderOpenAI: {
		QualityLite:   {Model: "gpt-4o-mini", EmbeddingModel: "text-embedding-3-small"},
		QualityNormal: {Model: "gpt-4o", EmbeddingModel: "text-embedding-3-small"},
		QualityMax:    {Model: "gpt-4.1", EmbeddingModel: "text-embedding-3-large"},
	},
	ProviderOpenRouter: {
		QualityLite:   {Model: "openai/gpt-4o-mini", EmbeddingModel: "text-embedding-3-small"},
		QualityNormal: {Model: "anthropic/claude-sonnet-4.5", EmbeddingModel: "text-embedding-3-small"},
		QualityMax:    {Model: "anthropic/claude-opus-4.1", EmbeddingModel: "text-embedding-3-large"},
	},
	ProviderGoogle: {
		QualityLite:   {Model: "gemini-2.5-flash", EmbeddingModel: "gemini-embedding-001"},
		QualityNormal: {Model: "gemini-2.5-pro", EmbeddingModel: "gemini-embedding-001"},
		QualityMax:    {Model: "gemini-2.5-pro", EmbeddingModel: "gemini-embedding-001"},
	},
	ProviderOllama: {
		QualityLite:   {Model: "llama3", EmbeddingModel: "nomic-embed-text"},
		QualityNormal: {Model: "llama3", EmbeddingModel: "nomic-embed-text"},
		QualityMax:    {Model: "llama3:70b", EmbeddingModel: "nomic-embed-text"},
	},
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider:           ProviderOpenAI,
		Model:              "gpt-4o",
		EmbeddingProvider:  ProviderOpenAI,
		EmbeddingModel:     "text-embedding-3-small",
		Quality:            QualityNormal,
		IdeasFile:          "IDEAS.md",
		BacklogFile:        "BACKLOG.md",
		Language:           "es",
		DuplicateThreshold: 0.80,
		RequestsPerMinute:  60,
	}
}

// GetPreset returns the quality preset for the given provider and tier.
// Returns the Normal OpenAI preset if the combination is not found.
func GetPreset(provider ProviderType, tier QualityTier) QualityPreset {
	if tiers, ok := qualityPresets[provider]; ok {
		if preset, ok := tiers[tier]; ok {
			return preset
		}
	}
	return qualityPresets[ProviderOpenAI][QualityNormal]
}
