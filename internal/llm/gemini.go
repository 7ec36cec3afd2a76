package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/adelmans/zev/internal/config"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiProvider implements Provider using the Gemini generateContent API
type GeminiProvider struct {
	apiURL   string
	model    string
	http     *http.Client
	boundary boundary
}

// API request/response shapes (minimal for our use)
type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiGenerationConfig struct {
	ResponseMimeType string         `json:"responseMimeType"`
	ResponseSchema   map[string]any `json:"responseSchema"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
}

// NewGemini creates a Gemini adapter. GEMINI_API_KEY is required and
// GEMINI_MODEL falls back to GeminiDefaultModel.
func NewGemini(cfg config.Config, opts Options) (*GeminiProvider, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, config.MissingKey(config.KeyGeminiAPIKey)
	}
	opts = opts.withDefaults()

	model := cfg.GeminiModel
	if model == "" {
		model = GeminiDefaultModel
	}

	apiURL := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		strings.TrimSuffix(opts.GeminiBaseURL, "/"), url.PathEscape(model), url.QueryEscape(cfg.GeminiAPIKey))

	return &GeminiProvider{
		apiURL:   apiURL,
		model:    model,
		http:     opts.HTTPClient,
		boundary: newBoundary(string(config.ProviderGemini), "Gemini", opts),
	}, nil
}

func (p *GeminiProvider) Name() string  { return string(config.ProviderGemini) }
func (p *GeminiProvider) Model() string { return p.model }

// APIURL returns the generateContent endpoint, including the API key
func (p *GeminiProvider) APIURL() string { return p.apiURL }

// GetOptions implements Provider
func (p *GeminiProvider) GetOptions(ctx context.Context, prompt, envContext string) *OptionsResponse {
	return p.boundary.getOptions(ctx, prompt, envContext, p.generate)
}

func (p *GeminiProvider) generate(ctx context.Context, prompt string) (*OptionsResponse, error) {
	body := geminiRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: prompt}},
		}},
		GenerationConfig: geminiGenerationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   GeminiSchema(),
		},
	}

	var gr geminiResponse
	if err := postJSON(ctx, p.http, p.Name(), p.apiURL, nil, body, &gr); err != nil {
		return nil, err
	}
	if gr.PromptFeedback != nil && gr.PromptFeedback.BlockReason != "" {
		return nil, NewAPIError(p.Name(), 0, "prompt blocked", errors.New(gr.PromptFeedback.BlockReason))
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return nil, NewAPIError(p.Name(), 0, "no candidates returned", ErrEmptyResponse)
	}

	var text strings.Builder
	for _, part := range gr.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}

	resp, err := ParseOptions(text.String())
	if err != nil {
		var parseErr *ParseError
		if errors.As(err, &parseErr) {
			parseErr.Provider = p.Name()
		}
		return nil, err
	}
	return resp, nil
}
