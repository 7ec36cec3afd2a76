package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
)

const (
	ConfigFileName = ".zevrc"
)

// Provider identifies one of the supported LLM backends
type Provider string

const (
	ProviderOpenAI      Provider = "openai"
	ProviderOllama      Provider = "ollama"
	ProviderGemini      Provider = "gemini"
	ProviderAzureOpenAI Provider = "azure_openai"
)

// Providers lists every backend identifier accepted in LLM_PROVIDER
var Providers = []Provider{ProviderOpenAI, ProviderOllama, ProviderGemini, ProviderAzureOpenAI}

// HistoryBackend selects where query history is persisted
type HistoryBackend string

const (
	HistoryFile   HistoryBackend = "file"
	HistorySQLite HistoryBackend = "sqlite"
)

// Keys recognized in the configuration file
const (
	KeyLLMProvider      = "LLM_PROVIDER"
	KeyOpenAIAPIKey     = "OPENAI_API_KEY"
	KeyOpenAIModel      = "OPENAI_MODEL"
	KeyOllamaBaseURL    = "OLLAMA_BASE_URL"
	KeyOllamaModel      = "OLLAMA_MODEL"
	KeyGeminiAPIKey     = "GEMINI_API_KEY"
	KeyGeminiModel      = "GEMINI_MODEL"
	KeyAzureAccountName = "AZURE_OPENAI_ACCOUNT_NAME"
	KeyAzureAPIKey      = "AZURE_OPENAI_API_KEY"
	KeyAzureDeployment  = "AZURE_OPENAI_DEPLOYMENT"
	KeyAzureAPIVersion  = "AZURE_OPENAI_API_VERSION"
	KeyHistoryBackend   = "HISTORY_BACKEND"
)

var secretKeys = map[string]bool{
	KeyOpenAIAPIKey: true,
	KeyGeminiAPIKey: true,
	KeyAzureAPIKey:  true,
}

// Config represents the application configuration. An empty field means the
// key was absent from the file.
type Config struct {
	LLMProvider string

	OpenAIAPIKey string
	OpenAIModel  string

	OllamaBaseURL string
	OllamaModel   string

	GeminiAPIKey string
	GeminiModel  string

	AzureOpenAIAccountName string
	AzureOpenAIAPIKey      string
	AzureOpenAIDeployment  string
	AzureOpenAIAPIVersion  string

	HistoryBackend string
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ConfigFileName), nil
}

// Load reads the configuration from the default location
func Load() (Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return Config{}, err
	}
	return LoadFile(configPath)
}

// LoadFile reads a dotenv-style configuration file. A missing file yields an
// empty Config, not an error.
func LoadFile(path string) (Config, error) {
	vals, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	return FromValues(vals), nil
}

// FromValues builds a Config from raw key/value pairs
func FromValues(vals map[string]string) Config {
	get := func(key string) string {
		return strings.TrimSpace(vals[key])
	}
	return Config{
		LLMProvider:            get(KeyLLMProvider),
		OpenAIAPIKey:           get(KeyOpenAIAPIKey),
		OpenAIModel:            get(KeyOpenAIModel),
		OllamaBaseURL:          get(KeyOllamaBaseURL),
		OllamaModel:            get(KeyOllamaModel),
		GeminiAPIKey:           get(KeyGeminiAPIKey),
		GeminiModel:            get(KeyGeminiModel),
		AzureOpenAIAccountName: get(KeyAzureAccountName),
		AzureOpenAIAPIKey:      get(KeyAzureAPIKey),
		AzureOpenAIDeployment:  get(KeyAzureDeployment),
		AzureOpenAIAPIVersion:  get(KeyAzureAPIVersion),
		HistoryBackend:         get(KeyHistoryBackend),
	}
}

// Values returns the non-empty settings keyed by their file names
func (c Config) Values() map[string]string {
	all := map[string]string{
		KeyLLMProvider:      c.LLMProvider,
		KeyOpenAIAPIKey:     c.OpenAIAPIKey,
		KeyOpenAIModel:      c.OpenAIModel,
		KeyOllamaBaseURL:    c.OllamaBaseURL,
		KeyOllamaModel:      c.OllamaModel,
		KeyGeminiAPIKey:     c.GeminiAPIKey,
		KeyGeminiModel:      c.GeminiModel,
		KeyAzureAccountName: c.AzureOpenAIAccountName,
		KeyAzureAPIKey:      c.AzureOpenAIAPIKey,
		KeyAzureDeployment:  c.AzureOpenAIDeployment,
		KeyAzureAPIVersion:  c.AzureOpenAIAPIVersion,
		KeyHistoryBackend:   c.HistoryBackend,
	}
	vals := make(map[string]string, len(all))
	for k, v := range all {
		if v != "" {
			vals[k] = v
		}
	}
	return vals
}

// Masked returns the settings with secrets partially hidden, suitable for display
func (c Config) Masked() map[string]string {
	vals := c.Values()
	for k, v := range vals {
		if secretKeys[k] {
			vals[k] = maskSecret(v)
		}
	}
	return vals
}

// History returns the configured history backend, defaulting to the jsonl file
func (c Config) History() HistoryBackend {
	if strings.EqualFold(c.HistoryBackend, string(HistorySQLite)) {
		return HistorySQLite
	}
	return HistoryFile
}

func maskSecret(v string) string {
	if len(v) <= 8 {
		return strings.Repeat("*", len(v))
	}
	return v[:4] + strings.Repeat("*", len(v)-8) + v[len(v)-4:]
}

// Save writes the configuration to the default location
func Save(cfg Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}
	return SaveFile(configPath, cfg)
}

// SaveFile writes the configuration as a dotenv file readable only by the user
func SaveFile(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(marshal(cfg.Values())), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	// WriteFile keeps the mode of a file that already exists
	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("failed to secure config file: %w", err)
	}

	return nil
}

// marshal renders vals as sorted KEY="value" lines. Every value is quoted so
// godotenv.Read returns it unchanged; godotenv.Marshal writes digit-only
// values as integers and drops their leading zeros.
func marshal(vals map[string]string) string {
	keys := make([]string, 0, len(vals))
	for k := range vals {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=\"%s\"\n", k, dotenvEscaper.Replace(vals[k]))
	}
	return b.String()
}

var dotenvEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	`$`, `\$`,
	"\n", `\n`,
	"\r", `\r`,
)

// Exists checks if a configuration file exists
func Exists() (bool, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return false, err
	}

	_, err = os.Stat(configPath)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}
