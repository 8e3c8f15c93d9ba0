package config

// QualityTier controls the model selection and trade-off between speed/cost and quality.
type QualityTier string

const (
	QualityLite   QualityTier = "lite"
	QualityNormal QualityTier = "normal"
	QualityMax    QualityTier = "max"
)

// ProviderType identifies an LLM or embedding provider.
type ProviderType string

const (
	ProviderAnthropic  ProviderType = "anthropic"
	ProviderOpenAI     ProviderType = "openai"
	ProviderOpenRouter ProviderType = "openrouter"
	ProviderGoogle     ProviderType = "google"
	ProviderOllama     ProviderType = "ollama"
	// ProviderNone disables embeddings; every candidate goes to the LLM judge.
	ProviderNone ProviderType = "none"
)

// FileName is the default configuration file, looked up in the working directory.
const FileName = ".ideaflow.yml"

// Config is the top-level ideaflow configuration, corresponding to .ideaflow.yml.
type Config struct {
	Provider          ProviderType `yaml:"provider" koanf:"provider"`
	Model             string       `yaml:"model" koanf:"model"`
	EmbeddingProvider ProviderType `yaml:"embedding_provider" koanf:"embedding_provider"`
	EmbeddingModel    string       `yaml:"embedding_model" koanf:"embedding_model"`
	Quality           QualityTier  `yaml:"quality" koanf:"quality"`

	IdeasFile   string `yaml:"ideas_file" koanf:"ideas_file"`
	BacklogFile string `yaml:"backlog_file" koanf:"backlog_file"`
	Language    string `yaml:"language" koanf:"language"`

	DuplicateThreshold float64 `yaml:"duplicate_threshold" koanf:"duplicate_threshold"`
	RequestsPerMinute  int     `yaml:"requests_per_minute" koanf:"requests_per_minute"`
	DryRun             bool    `yaml:"dry_run" koanf:"dry_run"`
}

// EmbeddingsEnabled reports whether candidates are screened by embeddings
// before reaching the judge.
func (c *Config) EmbeddingsEnabled() bool {
	return c.EmbeddingProvider != "" && c.EmbeddingProvider != ProviderNone
}
