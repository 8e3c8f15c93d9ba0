package cmd

import (
	"fmt"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ziadkadry99/ideaflow/internal/backlog"
	"github.com/ziadkadry99/ideaflow/internal/config"
	"github.com/ziadkadry99/ideaflow/internal/embeddings"
	"github.com/ziadkadry99/ideaflow/internal/llm"
	"github.com/ziadkadry99/ideaflow/internal/similarity"
	"github.com/ziadkadry99/ideaflow/internal/vectordb"
)

// newLogger builds the process logger. Logs go to stderr so stdout stays
// free for the summary and the MCP protocol.
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `ideaflow init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// pipeline holds the components shared by process and serve.
type pipeline struct {
	vocab    *backlog.Vocabulary
	metered  *llm.MeteredProvider
	embedder embeddings.Embedder
	engine   similarity.Engine
}

// buildPipeline wires the LLM stack, the optional embedder and the
// similarity engine from cfg.
func buildPipeline(cfg *config.Config, log *zap.Logger) (*pipeline, error) {
	if err := cfg.CheckAPIKeys(); err != nil {
		return nil, err
	}
	vocab, err := backlog.VocabularyFor(cfg.Language)
	if err != nil {
		return nil, err
	}

	base, err := llm.NewProvider(string(cfg.Provider), cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("creating LLM provider: %w", err)
	}
	provider := llm.Wrap(base, cfg.RequestsPerMinute, llm.BreakerSettings{
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("llm circuit breaker", zap.String("provider", name),
				zap.String("from", from.String()), zap.String("to", to.String()))
		},
	})
	p := &pipeline{vocab: vocab, metered: llm.NewMeteredProvider(provider, cfg.Model)}

	judge := similarity.NewLLMJudge(p.metered, cfg.Model, vocab)
	opts := similarity.Options{Threshold: cfg.DuplicateThreshold, Vocabulary: vocab, Logger: log}

	if !cfg.EmbeddingsEnabled() {
		p.engine = similarity.New(judge, nil, opts)
		return p, nil
	}

	p.embedder, err = embeddings.NewEmbedder(string(cfg.EmbeddingProvider), cfg.EmbeddingModel)
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}
	index, err := vectordb.NewIndex(p.embedder)
	if err != nil {
		return nil, err
	}
	p.engine = similarity.New(judge, index, opts)
	return p, nil
}
