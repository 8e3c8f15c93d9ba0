// Package embedtest provides deterministic embedders for tests.
package embedtest

import (
	"context"
	"errors"
	"sync"
)

// ErrEmbed is returned by Embedder for texts listed in Fail.
var ErrEmbed = errors.New("embedding failed")

// Embedder returns the vector registered for a text in Vectors, or a
// character-histogram vector for unknown texts. Texts in Fail error.
type Embedder struct {
	Dims    int
	Vectors map[string][]float32
	Fail    map[string]bool

	mu    sync.Mutex
	texts []string
}

// New returns an Embedder with the given dimension count.
func New(dims int) *Embedder {
	return &Embedder{Dims: dims, Vectors: map[string][]float32{}, Fail: map[string]bool{}}
}

func (e *Embedder) Name() string    { return "mock" }
func (e *Embedder) Dimensions() int { return e.Dims }

func (e *Embedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if e.Fail[text] {
			return nil, ErrEmbed
		}
		e.texts = append(e.texts, text)
		if v, ok := e.Vectors[text]; ok {
			out[i] = append([]float32(nil), v...)
			continue
		}
		vec := make([]float32, e.Dims)
		for j, ch := range text {
			vec[(int(ch)+j)%e.Dims]++
		}
		out[i] = vec
	}
	return out, nil
}

// Embedded returns every text embedded so far, in call order.
func (e *Embedder) Embedded() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.texts...)
}
