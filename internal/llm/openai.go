package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/adelmans/zev/internal/config"
)

const openAIBaseURL = "https://api.openai.com/v1"

// chatClient speaks the OpenAI chat-completions protocol, which OpenAI, Azure
// OpenAI and Ollama all serve.
type chatClient struct {
	provider string
	url      string
	model    string
	http     *http.Client

	// authorize sets credentials on each request
	authorize func(ctx context.Context, header http.Header) error
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatJSONSchema struct {
	Name   string         `json:"name"`
	Strict bool           `json:"strict"`
	Schema map[string]any `json:"schema"`
}

type chatResponseFormat struct {
	Type       string          `json:"type"`
	JSONSchema *chatJSONSchema `json:"json_schema,omitempty"`
}

type chatRequest struct {
	Model          string             `json:"model,omitempty"`
	Messages       []chatMessage      `json:"messages"`
	ResponseFormat chatResponseFormat `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
			Refusal string `json:"refusal,omitempty"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func (c *chatClient) complete(ctx context.Context, prompt string) (*OptionsResponse, error) {
	header := http.Header{}
	if c.authorize != nil {
		if err := c.authorize(ctx, header); err != nil {
			return nil, err
		}
	}

	body := chatRequest{
		Model:    c.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
		ResponseFormat: chatResponseFormat{
			Type: "json_schema",
			JSONSchema: &chatJSONSchema{
				Name:   "options_response",
				Strict: true,
				Schema: OptionsSchema(),
			},
		},
	}

	var cr chatResponse
	if err := postJSON(ctx, c.http, c.provider, c.url, header, body, &cr); err != nil {
		return nil, err
	}
	if len(cr.Choices) == 0 {
		return nil, NewAPIError(c.provider, 0, "no choices returned", ErrEmptyResponse)
	}

	msg := cr.Choices[0].Message
	if msg.Refusal != "" {
		return nil, NewAPIError(c.provider, 0, "model refused the request", errors.New(msg.Refusal))
	}

	resp, err := ParseOptions(msg.Content)
	if err != nil {
		var parseErr *ParseError
		if errors.As(err, &parseErr) {
			parseErr.Provider = c.provider
		}
		return nil, err
	}
	return resp, nil
}

func bearer(key string) func(context.Context, http.Header) error {
	return func(_ context.Context, header http.Header) error {
		header.Set("Authorization", "Bearer "+key)
		return nil
	}
}

func chatCompletionsURL(base string) string {
	return strings.TrimSuffix(base, "/") + "/chat/completions"
}

// OpenAIProvider implements Provider using the OpenAI API
type OpenAIProvider struct {
	chat     *chatClient
	boundary boundary
}

// NewOpenAI creates an OpenAI adapter. OPENAI_API_KEY is required and
// OPENAI_MODEL falls back to OpenAIDefaultModel.
func NewOpenAI(cfg config.Config, opts Options) (*OpenAIProvider, error) {
	if cfg.OpenAIAPIKey == "" {
		return nil, config.MissingKey(config.KeyOpenAIAPIKey)
	}
	opts = opts.withDefaults()

	model := cfg.OpenAIModel
	if model == "" {
		model = OpenAIDefaultModel
	}

	name := string(config.ProviderOpenAI)
	return &OpenAIProvider{
		chat: &chatClient{
			provider:  name,
			url:       chatCompletionsURL(opts.OpenAIBaseURL),
			model:     model,
			http:      opts.HTTPClient,
			authorize: bearer(cfg.OpenAIAPIKey),
		},
		boundary: newBoundary(name, "OpenAI", opts),
	}, nil
}

func (p *OpenAIProvider) Name() string  { return p.chat.provider }
func (p *OpenAIProvider) Model() string { return p.chat.model }

// GetOptions implements Provider
func (p *OpenAIProvider) GetOptions(ctx context.Context, prompt, envContext string) *OptionsResponse {
	return p.boundary.getOptions(ctx, prompt, envContext, p.chat.complete)
}
