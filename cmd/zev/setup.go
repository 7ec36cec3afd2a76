package main

import (
	"errors"
	"fmt"

	"github.com/adelmans/zev/internal/config"
	"github.com/adelmans/zev/internal/llm"
	"github.com/adelmans/zev/internal/ui"
)

const (
	defaultOllamaBaseURL   = "http://localhost:11434/v1"
	defaultAzureAPIVersion = "2024-02-01"
)

var providerLabels = map[config.Provider]string{
	config.ProviderOpenAI:      "OpenAI",
	config.ProviderOllama:      "Ollama (local)",
	config.ProviderGemini:      "Google Gemini",
	config.ProviderAzureOpenAI: "Azure OpenAI",
}

var historyBackends = []config.HistoryBackend{config.HistoryFile, config.HistorySQLite}

// runSetup walks the user through choosing a provider and its settings, then
// writes ~/.zevrc. Values already configured are offered as defaults.
func runSetup() error {
	ui.ShowSection("zev setup")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	labels := make([]string, len(config.Providers))
	for i, p := range config.Providers {
		labels[i] = providerLabels[p]
	}
	idx, err := ui.ShowMenu("Pick the LLM provider you want to use:", labels)
	if err != nil {
		return ignoreInterrupt(err)
	}
	provider := config.Providers[idx]
	cfg.LLMProvider = string(provider)

	if err := askProviderSettings(&cfg, provider); err != nil {
		return ignoreInterrupt(err)
	}

	idx, err = ui.ShowMenu("Where should query history be kept?", []string{
		"Plain file (~/.zev_history)",
		"SQLite database (~/.zev_history.db)",
	})
	if err != nil {
		return ignoreInterrupt(err)
	}
	cfg.HistoryBackend = string(historyBackends[idx])

	if _, err := llm.New(cfg, llm.Options{}); err != nil {
		var cfgErr *config.Error
		if errors.As(err, &cfgErr) {
			ui.ShowError(cfgErr.Message)
			return nil
		}
		return err
	}

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	configPath, _ := config.GetConfigPath()
	ui.ShowSuccess(fmt.Sprintf("Configuration saved to %s", configPath))
	ui.ShowInfo("\nYou're all set! Try running: zev \"list all files\"")
	return nil
}

func askProviderSettings(cfg *config.Config, provider config.Provider) error {
	var err error
	switch provider {
	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey, err = ui.AskSecret("OpenAI API key:", cfg.OpenAIAPIKey); err != nil {
			return err
		}
		cfg.OpenAIModel, err = ui.AskInput("Model:", orDefault(cfg.OpenAIModel, llm.OpenAIDefaultModel), true)

	case config.ProviderOllama:
		if cfg.OllamaBaseURL, err = ui.AskInput("Ollama base URL:", orDefault(cfg.OllamaBaseURL, defaultOllamaBaseURL), true); err != nil {
			return err
		}
		cfg.OllamaModel, err = ui.AskInput("Model (e.g. llama3.2):", cfg.OllamaModel, true)

	case config.ProviderGemini:
		if cfg.GeminiAPIKey, err = ui.AskSecret("Gemini API key:", cfg.GeminiAPIKey); err != nil {
			return err
		}
		cfg.GeminiModel, err = ui.AskInput("Model:", orDefault(cfg.GeminiModel, llm.GeminiDefaultModel), true)

	case config.ProviderAzureOpenAI:
		if cfg.AzureOpenAIAccountName, err = ui.AskInput("Azure OpenAI account name:", cfg.AzureOpenAIAccountName, true); err != nil {
			return err
		}
		if cfg.AzureOpenAIDeployment, err = ui.AskInput("Deployment name:", cfg.AzureOpenAIDeployment, true); err != nil {
			return err
		}
		if cfg.AzureOpenAIAPIVersion, err = ui.AskInput("API version:", orDefault(cfg.AzureOpenAIAPIVersion, defaultAzureAPIVersion), true); err != nil {
			return err
		}
		ui.ShowInfo("Leave the API key empty to sign in with Microsoft Entra ID (az login, managed identity).")
		cfg.AzureOpenAIAPIKey, err = ui.AskSecret("Azure OpenAI API key:", cfg.AzureOpenAIAPIKey)
	}
	return err
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func ignoreInterrupt(err error) error {
	if ui.IsInterrupt(err) {
		ui.ShowInfo("Setup cancelled.")
		return nil
	}
	return err
}
