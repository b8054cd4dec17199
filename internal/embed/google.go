package embed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GoogleClient embeds through the Gemini API on the Vertex backend.
type GoogleClient struct {
	config *ClientConfig
	client *genai.Client
}

// NewGoogleClient creates a client for the Google Gemini API.
func NewGoogleClient(ctx context.Context, config *ClientConfig) (*GoogleClient, error) {
	if config == nil {
		return nil, errors.New("config cannot be nil")
	}
	if config.Model == "" {
		config.Model = "text-embedding-005"
	}
	if config.Dim == 0 {
		config.Dim = 768
	}
	if config.Location == "" && strings.TrimSpace(config.APIKey) == "" {
		config.Location = "us-central1"
	}

	cc := genai.ClientConfig{
		Backend: genai.BackendVertexAI,
	}
	if strings.TrimSpace(config.APIKey) != "" {
		cc.APIKey = config.APIKey
	}
	if strings.TrimSpace(config.ProjectID) != "" {
		cc.Project = config.ProjectID
	}
	if strings.TrimSpace(config.Location) != "" {
		cc.Location = config.Location
	}

	client, err := genai.NewClient(ctx, &cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GoogleClient{config: config, client: client}, nil
}

func (c *GoogleClient) Embed(ctx context.Context, text string) ([]float32, error) {
	out, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

func (c *GoogleClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	cfg := genai.EmbedContentConfig{
		TaskType: "RETRIEVAL_DOCUMENT",
	}

	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		res, err := c.client.Models.EmbedContent(ctx, c.config.Model, genai.Text(text), &cfg)
		if err != nil {
			return nil, fmt.Errorf("embedding failed: %w", err)
		}
		if res == nil || len(res.Embeddings) == 0 {
			return nil, errors.New("no embedding returned")
		}
		out = append(out, res.Embeddings[0].Values)
	}
	return out, nil
}

func (c *GoogleClient) Dim() int { return c.config.Dim }
