package config

// Defaults returns a Config with sensible default values.
func Defaults() *Config {
	return &Config{
		Agent: AgentConfig{
			MaxHistory:     10,
			ShortTermLimit: 10,
			RetrieveK:      3,
			MaxTokens:      2048,
			Temperature:    0.7,
			TopP:           0.95,
			TopK:           40,
			AnswerMarker:   "📊",
		},
		LLM: LLMConfig{
			Provider:    "gemini",
			Model:       "gemini-2.0-flash",
			MaxRetries:  3,
			TimeoutSecs: 120,
		},
		Warehouse: WarehouseConfig{
			Driver:   "sqlite",
			Path:     "data/taxi_trips.db",
			Table:    "taxi_trips",
			RowLimit: 100,
		},
		Memory: MemoryConfig{
			Path:           "data/chat_memory.db",
			Collection:     "taxi_chat_history",
			EmbedProvider:  "genai",
			EmbedModel:     "gemini-embedding-001",
			OllamaEndpoint: "http://localhost:11434",
		},
		Channels: ChannelsConfig{},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    ":9090",
		},
		Security: SecurityConfig{
			PIIFiltering: PIIFilterConfig{
				Enabled:      false,
				FilterEmails: true,
				FilterPhones: true,
				FilterCards:  true,
				FilterSSN:    true,
			},
		},
	}
}
