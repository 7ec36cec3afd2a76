package llm

import (
	"context"

	"github.com/adelmans/zev/internal/config"
)

// ollamaAPIKey is sent because the OpenAI-compatible endpoint expects a key,
// though Ollama ignores its value.
const ollamaAPIKey = "ollama"

// OllamaProvider implements Provider using a local Ollama server's
// OpenAI-compatible endpoint
type OllamaProvider struct {
	chat     *chatClient
	baseURL  string
	boundary boundary
}

// NewOllama creates an Ollama adapter. Both OLLAMA_BASE_URL and OLLAMA_MODEL
// are required; there is no default model.
func NewOllama(cfg config.Config, opts Options) (*OllamaProvider, error) {
	if cfg.OllamaBaseURL == "" {
		return nil, config.MissingKey(config.KeyOllamaBaseURL)
	}
	if cfg.OllamaModel == "" {
		return nil, config.MissingKey(config.KeyOllamaModel)
	}
	opts = opts.withDefaults()

	name := string(config.ProviderOllama)
	return &OllamaProvider{
		chat: &chatClient{
			provider:  name,
			url:       chatCompletionsURL(cfg.OllamaBaseURL),
			model:     cfg.OllamaModel,
			http:      opts.HTTPClient,
			authorize: bearer(ollamaAPIKey),
		},
		baseURL:  cfg.OllamaBaseURL,
		boundary: newBoundary(name, "Ollama", opts),
	}, nil
}

func (p *OllamaProvider) Name() string    { return p.chat.provider }
func (p *OllamaProvider) Model() string   { return p.chat.model }
func (p *OllamaProvider) BaseURL() string { return p.baseURL }

// GetOptions implements Provider
func (p *OllamaProvider) GetOptions(ctx context.Context, prompt, envContext string) *OptionsResponse {
	return p.boundary.getOptions(ctx, prompt, envContext, p.chat.complete)
}
