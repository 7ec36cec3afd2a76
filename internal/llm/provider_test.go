package llm

import (
	"errors"
	"strings"
	"testing"

	"github.com/adelmans/zev/internal/config"
)

func TestNewSelectsProvider(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.Config
		wantName string
		check    func(Provider) bool
	}{
		{
			name:     "openai",
			cfg:      config.Config{LLMProvider: "openai", OpenAIAPIKey: "test-key"},
			wantName: "openai",
			check:    func(p Provider) bool { _, ok := p.(*OpenAIProvider); return ok },
		},
		{
			name:     "ollama",
			cfg:      config.Config{LLMProvider: "ollama", OllamaBaseURL: "http://localhost:11434", OllamaModel: "llama2"},
			wantName: "ollama",
			check:    func(p Provider) bool { _, ok := p.(*OllamaProvider); return ok },
		},
		{
			name:     "gemini",
			cfg:      config.Config{LLMProvider: "gemini", GeminiAPIKey: "test-key"},
			wantName: "gemini",
			check:    func(p Provider) bool { _, ok := p.(*GeminiProvider); return ok },
		},
		{
			name: "azure_openai",
			cfg: config.Config{
				LLMProvider:            "azure_openai",
				AzureOpenAIAccountName: "myaccount",
				AzureOpenAIAPIKey:      "azure-key",
				AzureOpenAIDeployment:  "my-deployment",
				AzureOpenAIAPIVersion:  "2024-02-01",
			},
			wantName: "azure_openai",
			check:    func(p Provider) bool { _, ok := p.(*AzureOpenAIProvider); return ok },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(tt.cfg, Options{})
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if !tt.check(p) {
				t.Errorf("New() returned %T", p)
			}
			if p.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", p.Name(), tt.wantName)
			}
		})
	}
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	for _, value := range []string{"unknown_provider", "", "OpenAI"} {
		_, err := New(config.Config{LLMProvider: value, OpenAIAPIKey: "k"}, Options{})

		var cfgErr *config.Error
		if !errors.As(err, &cfgErr) {
			t.Fatalf("New(%q) expected config error, got %v", value, err)
		}
		if cfgErr.Key != config.KeyLLMProvider {
			t.Errorf("error key = %q, want %q", cfgErr.Key, config.KeyLLMProvider)
		}
		if !strings.Contains(err.Error(), "Invalid LLM provider") {
			t.Errorf("unexpected message: %s", err)
		}
	}
}

func TestConstructorsNameMissingField(t *testing.T) {
	azure := config.Config{
		AzureOpenAIAccountName: "account",
		AzureOpenAIDeployment:  "deployment",
		AzureOpenAIAPIVersion:  "2024-02-01",
		AzureOpenAIAPIKey:      "key",
	}
	withoutAccount, withoutDeployment, withoutVersion := azure, azure, azure
	withoutAccount.AzureOpenAIAccountName = ""
	withoutDeployment.AzureOpenAIDeployment = ""
	withoutVersion.AzureOpenAIAPIVersion = ""

	tests := []struct {
		name    string
		build   func() error
		wantKey string
	}{
		{"openai key", func() error { _, err := NewOpenAI(config.Config{}, Options{}); return err }, "OPENAI_API_KEY"},
		{"ollama url", func() error {
			_, err := NewOllama(config.Config{OllamaModel: "llama2"}, Options{})
			return err
		}, "OLLAMA_BASE_URL"},
		{"ollama model", func() error {
			_, err := NewOllama(config.Config{OllamaBaseURL: "http://localhost:11434"}, Options{})
			return err
		}, "OLLAMA_MODEL"},
		{"gemini key", func() error { _, err := NewGemini(config.Config{}, Options{}); return err }, "GEMINI_API_KEY"},
		{"azure account", func() error { _, err := NewAzureOpenAI(withoutAccount, Options{}); return err }, "AZURE_OPENAI_ACCOUNT_NAME"},
		{"azure deployment", func() error { _, err := NewAzureOpenAI(withoutDeployment, Options{}); return err }, "AZURE_OPENAI_DEPLOYMENT"},
		{"azure api version", func() error { _, err := NewAzureOpenAI(withoutVersion, Options{}); return err }, "AZURE_OPENAI_API_VERSION"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.build()

			var cfgErr *config.Error
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected config error, got %v", err)
			}
			if cfgErr.Key != tt.wantKey {
				t.Errorf("error key = %q, want %q", cfgErr.Key, tt.wantKey)
			}
			if !strings.Contains(err.Error(), tt.wantKey+" must be set") {
				t.Errorf("message %q does not name %s", err, tt.wantKey)
			}
		})
	}
}

func TestModelResolution(t *testing.T) {
	tests := []struct {
		name string
		p    func() (Provider, error)
		want string
	}{
		{"openai configured", func() (Provider, error) {
			return NewOpenAI(config.Config{OpenAIAPIKey: "k", OpenAIModel: "gpt-4"}, Options{})
		}, "gpt-4"},
		{"openai default", func() (Provider, error) {
			return NewOpenAI(config.Config{OpenAIAPIKey: "k"}, Options{})
		}, OpenAIDefaultModel},
		{"gemini configured", func() (Provider, error) {
			return NewGemini(config.Config{GeminiAPIKey: "k", GeminiModel: "gemini-pro"}, Options{})
		}, "gemini-pro"},
		{"gemini default", func() (Provider, error) {
			return NewGemini(config.Config{GeminiAPIKey: "k"}, Options{})
		}, GeminiDefaultModel},
		{"ollama configured", func() (Provider, error) {
			return NewOllama(config.Config{OllamaBaseURL: "http://localhost:11434", OllamaModel: "llama2"}, Options{})
		}, "llama2"},
		{"azure uses deployment", func() (Provider, error) {
			return NewAzureOpenAI(config.Config{
				AzureOpenAIAccountName: "myaccount",
				AzureOpenAIAPIKey:      "azure-key",
				AzureOpenAIDeployment:  "my-deployment",
				AzureOpenAIAPIVersion:  "2024-02-01",
			}, Options{})
		}, "my-deployment"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := tt.p()
			if err != nil {
				t.Fatalf("constructor error = %v", err)
			}
			if p.Model() != tt.want {
				t.Errorf("Model() = %q, want %q", p.Model(), tt.want)
			}
		})
	}
}

func TestAPIErrorClassification(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantAuth bool
	}{
		{"401", NewAPIError("openai", 401, "Incorrect API key", nil), true},
		{"403", NewAPIError("azure_openai", 403, "forbidden", nil), true},
		{"gemini invalid key", NewAPIError("gemini", 400, "API key not valid [API_KEY_INVALID]", nil), true},
		{"rate limited", NewAPIError("openai", 429, "slow down", nil), false},
		{"server error", NewAPIError("openai", 500, "boom", nil), false},
		{"parse error", &ParseError{Err: ErrEmptyResponse}, false},
	}
	for _, tt := range tests {
		if got := IsAuthError(tt.err); got != tt.wantAuth {
			t.Errorf("%s: IsAuthError() = %v, want %v", tt.name, got, tt.wantAuth)
		}
	}
}
