package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"

	"github.com/adelmans/zev/internal/config"
)

const azureCognitiveScope = "https://cognitiveservices.azure.com/.default"

// AzureOpenAIProvider implements Provider using an Azure OpenAI deployment
type AzureOpenAIProvider struct {
	chat     *chatClient
	boundary boundary
}

// NewAzureOpenAI creates an Azure OpenAI adapter. The account name, deployment
// and API version are required. Without AZURE_OPENAI_API_KEY the adapter
// authenticates with Microsoft Entra ID through the default Azure credential
// chain (environment, managed identity, Azure CLI).
func NewAzureOpenAI(cfg config.Config, opts Options) (*AzureOpenAIProvider, error) {
	if cfg.AzureOpenAIAccountName == "" {
		return nil, config.MissingKey(config.KeyAzureAccountName)
	}
	if cfg.AzureOpenAIDeployment == "" {
		return nil, config.MissingKey(config.KeyAzureDeployment)
	}
	if cfg.AzureOpenAIAPIVersion == "" {
		return nil, config.MissingKey(config.KeyAzureAPIVersion)
	}
	opts = opts.withDefaults()

	authorize := apiKeyHeader(cfg.AzureOpenAIAPIKey)
	if cfg.AzureOpenAIAPIKey == "" {
		cred := opts.AzureCredential
		if cred == nil {
			dc, err := azidentity.NewDefaultAzureCredential(nil)
			if err != nil {
				return nil, fmt.Errorf("failed to create Azure credential: %w", err)
			}
			cred = dc
		}
		authorize = entraToken(cred)
	}

	endpoint := opts.AzureEndpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://%s.openai.azure.com", cfg.AzureOpenAIAccountName)
	}

	name := string(config.ProviderAzureOpenAI)
	return &AzureOpenAIProvider{
		chat: &chatClient{
			provider:  name,
			url:       azureChatURL(endpoint, cfg.AzureOpenAIDeployment, cfg.AzureOpenAIAPIVersion),
			model:     cfg.AzureOpenAIDeployment,
			http:      opts.HTTPClient,
			authorize: authorize,
		},
		boundary: newBoundary(name, "Azure OpenAI", opts),
	}, nil
}

func azureChatURL(endpoint, deployment, apiVersion string) string {
	return fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		strings.TrimSuffix(endpoint, "/"), url.PathEscape(deployment), url.QueryEscape(apiVersion))
}

func apiKeyHeader(key string) func(context.Context, http.Header) error {
	return func(_ context.Context, header http.Header) error {
		header.Set("api-key", key)
		return nil
	}
}

func entraToken(cred azcore.TokenCredential) func(context.Context, http.Header) error {
	return func(ctx context.Context, header http.Header) error {
		tok, err := cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{azureCognitiveScope}})
		if err != nil {
			return NewAPIError(string(config.ProviderAzureOpenAI), http.StatusUnauthorized, "failed to acquire Entra ID token", err)
		}
		header.Set("Authorization", "Bearer "+tok.Token)
		return nil
	}
}

func (p *AzureOpenAIProvider) Name() string  { return p.chat.provider }
func (p *AzureOpenAIProvider) Model() string { return p.chat.model }

// GetOptions implements Provider
func (p *AzureOpenAIProvider) GetOptions(ctx context.Context, prompt, envContext string) *OptionsResponse {
	return p.boundary.getOptions(ctx, prompt, envContext, p.chat.complete)
}
