package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"github.com/adelmans/zev/internal/config"
)

const (
	OpenAIDefaultModel = "gpt-4o-mini"
	GeminiDefaultModel = "gemini-2.0-flash"

	defaultTimeout = 60 * time.Second
)

// Provider is an LLM backend that turns a natural-language request into
// candidate shell commands.
type Provider interface {
	// Name returns the backend identifier (e.g. "openai")
	Name() string

	// Model returns the model or deployment the backend will be asked to use
	Model() string

	// GetOptions returns the backend's answer, or nil when no answer could be
	// obtained. Failures are reported to the user, never returned.
	GetOptions(ctx context.Context, prompt, envContext string) *OptionsResponse
}

// Options carries the collaborators shared by every backend adapter
type Options struct {
	// HTTPClient is used for all backend calls. Defaults to a client with a 60s timeout.
	HTTPClient *http.Client

	// Out receives user-facing failure messages. Defaults to os.Stdout.
	Out io.Writer

	// Logger receives debug output. Defaults to a disabled logger.
	Logger *zerolog.Logger

	// Endpoint overrides; empty means the vendor default
	OpenAIBaseURL string
	GeminiBaseURL string
	AzureEndpoint string

	// AzureCredential replaces the default Azure credential chain when no
	// Azure API key is configured
	AzureCredential azcore.TokenCredential
}

func (o Options) withDefaults() Options {
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{Timeout: defaultTimeout}
	}
	if o.Out == nil {
		o.Out = os.Stdout
	}
	if o.Logger == nil {
		nop := zerolog.Nop()
		o.Logger = &nop
	}
	if o.OpenAIBaseURL == "" {
		o.OpenAIBaseURL = openAIBaseURL
	}
	if o.GeminiBaseURL == "" {
		o.GeminiBaseURL = geminiBaseURL
	}
	return o
}

type constructor func(config.Config, Options) (Provider, error)

var constructors = map[config.Provider]constructor{
	config.ProviderOpenAI: func(cfg config.Config, opts Options) (Provider, error) {
		return NewOpenAI(cfg, opts)
	},
	config.ProviderOllama: func(cfg config.Config, opts Options) (Provider, error) {
		return NewOllama(cfg, opts)
	},
	config.ProviderGemini: func(cfg config.Config, opts Options) (Provider, error) {
		return NewGemini(cfg, opts)
	},
	config.ProviderAzureOpenAI: func(cfg config.Config, opts Options) (Provider, error) {
		return NewAzureOpenAI(cfg, opts)
	},
}

// New returns the adapter selected by LLM_PROVIDER. An unset or unknown value
// is a configuration error; there is no default backend.
func New(cfg config.Config, opts Options) (Provider, error) {
	build, ok := constructors[config.Provider(cfg.LLMProvider)]
	if !ok {
		return nil, config.InvalidProvider(cfg.LLMProvider)
	}
	return build(cfg, opts)
}

// requestFunc performs one backend call with an already assembled prompt
type requestFunc func(ctx context.Context, prompt string) (*OptionsResponse, error)

// boundary is where adapter errors stop: everything is reported to the user
// and converted to a nil response.
type boundary struct {
	provider    string
	authMessage string
	out         io.Writer
	log         zerolog.Logger
}

func newBoundary(provider, vendor string, opts Options) boundary {
	return boundary{
		provider:    provider,
		authMessage: authErrorMessage(vendor),
		out:         opts.Out,
		log:         opts.Logger.With().Str("provider", provider).Logger(),
	}
}

const rateLimitHint = "The provider is rate limiting requests. Wait a moment and try again."

func authErrorMessage(vendor string) string {
	return fmt.Sprintf("Error: There was an error with your %s API key. You can change it by running `zev --setup`.", vendor)
}

func (b boundary) getOptions(ctx context.Context, prompt, envContext string, do requestFunc) *OptionsResponse {
	assembled := AssemblePrompt(prompt, envContext)
	b.log.Debug().Int("prompt_len", len(assembled)).Msg("requesting options")

	start := time.Now()
	resp, err := do(ctx, assembled)
	if err == nil {
		b.log.Debug().Dur("took", time.Since(start)).Int("commands", len(resp.Commands)).Bool("valid", resp.IsValid).Msg("received options")
		return resp
	}

	b.log.Debug().Err(err).Dur("took", time.Since(start)).Msg("request failed")

	var parseErr *ParseError
	var apiErr *APIError
	red := color.New(color.FgRed)
	switch {
	case errors.Is(err, context.Canceled):
		// interrupted by the user; nothing to report
	case IsAuthError(err):
		red.Fprintln(b.out, b.authMessage)
	case errors.As(err, &apiErr) && apiErr.IsRateLimited():
		red.Fprintf(b.out, "Error: %v\n", err)
		fmt.Fprintln(b.out, rateLimitHint)
	case errors.As(err, &parseErr):
		b.log.Debug().Str("input", truncate(parseErr.Input, 200)).Msg("unparseable reply")
		red.Fprintf(b.out, "Error: %v\n", err)
	default:
		red.Fprintf(b.out, "Error: %v\n", err)
		fmt.Fprintln(b.out, "Note that to update settings, you can run `zev --setup`.")
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
