package config

import (
	"errors"
	"fmt"
	"os"
)

// ErrMissing marks configuration required at startup that is absent.
// Startup treats it as fatal; it is never recoverable per-turn.
var ErrMissing = errors.New("missing configuration")

// ApplyEnv overlays environment variables onto the config. Environment
// values win over the config file so deployments can inject credentials
// without writing them to disk.
func ApplyEnv(cfg *Config) {
	setKey := func(llm *LLMConfig) {
		if llm == nil {
			return
		}
		var envKey string
		switch llm.Provider {
		case "gemini":
			envKey = "GEMINI_API_KEY"
		case "openai", "openrouter":
			envKey = "OPENAI_API_KEY"
		case "anthropic":
			envKey = "ANTHROPIC_API_KEY"
		}
		if envKey != "" {
			if v := os.Getenv(envKey); v != "" {
				llm.APIKey = v
			}
		}
	}
	setKey(&cfg.LLM)
	setKey(cfg.FallbackLLM)

	if v := os.Getenv("TAXITALK_TELEGRAM_TOKEN"); v != "" {
		if cfg.Channels.Telegram == nil {
			cfg.Channels.Telegram = &TelegramConfig{}
		}
		cfg.Channels.Telegram.Token = v
	}
	if v := os.Getenv("TAXITALK_WAREHOUSE_PATH"); v != "" {
		cfg.Warehouse.Path = v
	}
	if v := os.Getenv("TAXITALK_MEMORY_PATH"); v != "" {
		cfg.Memory.Path = v
	}
}

// Validate checks that everything required to start is present.
func Validate(cfg *Config) error {
	if cfg.LLM.Provider == "" {
		return fmt.Errorf("%w: llm.provider", ErrMissing)
	}
	if cfg.LLM.APIKey == "" && cfg.LLM.Provider != "local" {
		return fmt.Errorf("%w: llm.api_key (set %s_API_KEY or store it in the keyring)", ErrMissing, providerEnvPrefix(cfg.LLM.Provider))
	}
	if cfg.Warehouse.Path == "" {
		return fmt.Errorf("%w: warehouse.path", ErrMissing)
	}
	if cfg.Warehouse.Table == "" {
		return fmt.Errorf("%w: warehouse.table", ErrMissing)
	}
	if cfg.Memory.EmbedProvider == "genai" && cfg.LLM.APIKey == "" && os.Getenv("GEMINI_API_KEY") == "" {
		return fmt.Errorf("%w: memory embedding api key", ErrMissing)
	}
	if cfg.Channels.Telegram != nil && cfg.Channels.Telegram.Token == "" {
		return fmt.Errorf("%w: channels.telegram.token", ErrMissing)
	}
	return nil
}

func providerEnvPrefix(provider string) string {
	switch provider {
	case "gemini":
		return "GEMINI"
	case "anthropic":
		return "ANTHROPIC"
	default:
		return "OPENAI"
	}
}
