package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	defaultOllamaBaseURL = "http://localhost:11434"
	defaultGoogleBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"
)

// GoogleModel represents a supported Google embedding model.
type GoogleModel string

const ModelGeminiEmbedding001 GoogleModel = "gemini-embedding-001"

// GoogleEmbedder generates embeddings using Google's Generative AI API.
type GoogleEmbedder struct {
	apiKey     string
	model      GoogleModel
	baseURL    string
	httpClient *http.Client
}

// NewGoogleEmbedder creates a new Google embedder.
func NewGoogleEmbedder(apiKey string, model GoogleModel) *GoogleEmbedder {
	return &GoogleEmbedder{apiKey: apiKey, model: model, baseURL: defaultGoogleBaseURL, httpClient: &http.Client{}}
}

func (e *GoogleEmbedder) Name() string   { return string(e.model) }
func (e *GoogleEmbedder) Dimensions() int { return 3072 }

func (e *GoogleEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return embedEach(ctx, texts, func(ctx context.Context, text string) ([]float32, error) {
		body := map[string]any{"content": map[string]any{"parts": []map[string]string{{"text": text}}}}
		var resp struct {
			Embedding struct {
				Values []float32 `json:"values"`
			} `json:"embedding"`
		}
		url := fmt.Sprintf("%s/%s:embedContent?key=%s", e.baseURL, e.model, e.apiKey)
		if err := postEmbed(ctx, e.httpClient, "google", url, body, &resp); err != nil {
			return nil, err
		}
		if len(resp.Embedding.Values) == 0 {
			return nil, fmt.Errorf("google returned empty embedding")
		}
		return resp.Embedding.Values, nil
	})
}

// OllamaEmbedder generates embeddings using a local Ollama instance.
type OllamaEmbedder struct {
	baseURL    string
	model      string
	dimensions int
	httpClient *http.Client
}

// NewOllamaEmbedder creates a new Ollama embedder.
// baseURL defaults to http://localhost:11434 if empty.
func NewOllamaEmbedder(model string, dimensions int, baseURL string) *OllamaEmbedder {
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}
	return &OllamaEmbedder{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		dimensions: dimensions,
		httpClient: &http.Client{},
	}
}

func (e *OllamaEmbedder) Name() string   { return "ollama/" + e.model }
func (e *OllamaEmbedder) Dimensions() int { return e.dimensions }

func (e *OllamaEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return embedEach(ctx, texts, func(ctx context.Context, text string) ([]float32, error) {
		var resp struct {
			Embeddings [][]float32 `json:"embeddings"`
		}
		body := map[string]string{"model": e.model, "input": text}
		if err := postEmbed(ctx, e.httpClient, "ollama", e.baseURL+"/api/embed", body, &resp); err != nil {
			return nil, err
		}
		if len(resp.Embeddings) == 0 || len(resp.Embeddings[0]) == 0 {
			return nil, fmt.Errorf("ollama returned no embeddings")
		}
		return resp.Embeddings[0], nil
	})
}

func embedEach(ctx context.Context, texts []string, one func(context.Context, string) ([]float32, error)) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		vec, err := one(ctx, text)
		if err != nil {
			return nil, err
		}
		out = append(out, vec)
	}
	return out, nil
}

func postEmbed(ctx context.Context, client *http.Client, provider, url string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal %s embed request: %w", provider, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create %s embed request: %w", provider, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s embed request failed: %w", provider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s embed API error (status %d): %s", provider, resp.StatusCode, string(respBody))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s embed response: %w", provider, err)
	}
	return nil
}
