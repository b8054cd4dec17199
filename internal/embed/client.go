package embed

import (
	"context"
	"errors"
)

// Client produces fixed-dimension embedding vectors. Implementations must
// be deterministic (same text, same vector) and fail fast on service
// errors; retry policy belongs to the transport.
type Client interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dim() int
}

// Provider is the enumeration of supported embedding providers.
type Provider string

const (
	ProviderHTTP   Provider = "http"
	ProviderGoogle Provider = "google"
	ProviderStub   Provider = "stub"
)

// ClientConfig holds configuration for embedding clients.
type ClientConfig struct {
	Provider  Provider
	Endpoint  string
	Model     string
	Dim       int
	APIKey    string
	ProjectID string
	Location  string
}

// NewClient creates an embedding client based on configuration.
func NewClient(ctx context.Context, config *ClientConfig) (Client, error) {
	if config == nil {
		return nil, errors.New("client config is required")
	}
	switch config.Provider {
	case ProviderHTTP:
		return NewHTTPClient(config), nil
	case ProviderGoogle:
		return NewGoogleClient(ctx, config)
	case ProviderStub:
		return NewStubClient(config.Dim), nil
	default:
		return nil, errors.New("unsupported provider: " + string(config.Provider))
	}
}

// IndexInput decorates chunk text with its filename so the embedding model
// sees file context. Query embeddings use the raw query instead.
func IndexInput(filename, chunkText string) string {
	if filename == "" {
		return chunkText
	}
	return "File: " + filename + "\n" + chunkText
}

// StubClient returns zero vectors; it keeps tests and offline runs off the
// network.
type StubClient struct {
	dim int
}

// NewStubClient creates a new StubClient.
func NewStubClient(dim int) *StubClient {
	return &StubClient{dim: dim}
}

func (s *StubClient) Embed(ctx context.Context, text string) ([]float32, error) {
	return make([]float32, s.dim), nil
}

func (s *StubClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, s.dim)
	}
	return out, nil
}

func (s *StubClient) Dim() int { return s.dim }
