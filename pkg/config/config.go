package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"github.com/shouni/image-studio-kit/pkg/adapters"
	"github.com/shouni/image-studio-kit/pkg/domain"
)

const settingsFileName = "settings.yaml"

// Config は環境変数から読み込む既定値です。呼び出しごとの Credentials の初期値になります。
type Config struct {
	OpenAIAPIKey     string `env:"OPENAI_API_KEY"`
	LegacyOpenAIKey  string `env:"VITE_OPENAI_API_KEY"`
	OpenAIBaseURL    string `env:"OPENAI_BASE_URL"`
	LegacyOpenAIBase string `env:"VITE_OPENAI_BASE_URL"`
	GeminiAPIKey     string `env:"GEMINI_API_KEY"`
	Provider         string `env:"IMAGE_STUDIO_PROVIDER" envDefault:"openai"`
	// 未設定ならプロバイダーの既定モデル (OpenAI は gpt-image-1 / gpt-4.1-mini)
	ImageModel   string `env:"IMAGE_STUDIO_MODEL"`
	ChatModel    string `env:"IMAGE_STUDIO_CHAT_MODEL"`
	SettingsPath string `env:"IMAGE_STUDIO_SETTINGS"`
	Addr         string `env:"IMAGE_STUDIO_ADDR" envDefault:":8080"`
	LogLevel     string `env:"IMAGE_STUDIO_LOG_LEVEL" envDefault:"info"`
}

// Load は環境変数を Config に読み込みます。
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	cfg.OpenAIAPIKey = firstNonEmpty(cfg.OpenAIAPIKey, cfg.LegacyOpenAIKey)
	cfg.OpenAIBaseURL = firstNonEmpty(cfg.OpenAIBaseURL, cfg.LegacyOpenAIBase)
	cfg.GeminiAPIKey = strings.TrimSpace(cfg.GeminiAPIKey)
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	switch p := domain.Provider(strings.ToLower(strings.TrimSpace(cfg.Provider))); p {
	case domain.ProviderOpenAI, domain.ProviderGemini:
		cfg.Provider = string(p)
	default:
		return nil, fmt.Errorf("IMAGE_STUDIO_PROVIDER must be openai or gemini, got %q", cfg.Provider)
	}

	cfg.ImageModel = strings.TrimSpace(cfg.ImageModel)
	cfg.ChatModel = strings.TrimSpace(cfg.ChatModel)

	if strings.TrimSpace(cfg.SettingsPath) == "" {
		cfg.SettingsPath = defaultSettingsPath()
	}
	return cfg, nil
}

// LoadEnvFiles はカレントと親ディレクトリの .env を読み込み、既存の環境変数を上書きします。
func LoadEnvFiles(paths ...string) {
	if len(paths) == 0 {
		paths = []string{".env", "../.env"}
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}

// ProviderValue は設定されたプロバイダーを返します。
func (c *Config) ProviderValue() domain.Provider {
	return domain.Provider(c.Provider).Normalize()
}

// Models は Generator に渡すモデル設定です。未設定の項目はプロバイダーの既定値になります。
func (c *Config) Models() adapters.Models {
	defaults := adapters.DefaultModels(c.ProviderValue())
	return adapters.Models{
		Image: firstNonEmpty(c.ImageModel, defaults.Image),
		Chat:  firstNonEmpty(c.ChatModel, defaults.Chat),
	}
}

// Defaults は設定されたプロバイダーの既定の Credentials を返します。
func (c *Config) Defaults() domain.Credentials {
	return c.DefaultsFor(c.ProviderValue())
}

// DefaultsFor は指定プロバイダーの環境変数から既定の Credentials を作ります。
// IMAGE_STUDIO_MODEL は設定されたプロバイダーにだけ適用します。
func (c *Config) DefaultsFor(p domain.Provider) domain.Credentials {
	p = p.Normalize()
	model := adapters.DefaultModels(p).Image
	if p == c.ProviderValue() {
		model = c.Models().Image
	}
	creds := domain.Credentials{Provider: p, Model: model}
	if p == domain.ProviderGemini {
		creds.APIKey = c.GeminiAPIKey
		return creds
	}
	creds.APIKey = c.OpenAIAPIKey
	creds.BaseURL = c.OpenAIBaseURL
	return creds
}

func defaultSettingsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".image-studio", settingsFileName)
	}
	return filepath.Join(dir, "image-studio", settingsFileName)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
