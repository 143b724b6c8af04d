package config

// Config is the top-level application configuration.
type Config struct {
	Agent       AgentConfig     `json:"agent"`
	LLM         LLMConfig       `json:"llm"`
	FallbackLLM *LLMConfig      `json:"fallback_llm,omitempty"`
	Warehouse   WarehouseConfig `json:"warehouse"`
	Memory      MemoryConfig    `json:"memory"`
	Channels    ChannelsConfig  `json:"channels"`
	Metrics     MetricsConfig   `json:"metrics"`
	Security    SecurityConfig  `json:"security"`
}

type AgentConfig struct {
	// MaxHistory is the number of user+assistant turn pairs retained in
	// short-term memory. Older turns are dropped, not archived.
	MaxHistory     int     `json:"max_history"`
	ShortTermLimit int     `json:"short_term_limit"`
	RetrieveK      int     `json:"retrieve_k"`
	MaxTokens      int     `json:"max_tokens"`
	Temperature    float64 `json:"temperature"`
	TopP           float64 `json:"top_p"`
	TopK           int     `json:"top_k"`
	AnswerMarker   string  `json:"answer_marker"`
}

type LLMConfig struct {
	Provider    string `json:"provider"`
	Model       string `json:"model"`
	APIKey      string `json:"api_key,omitempty"`
	BaseURL     string `json:"base_url,omitempty"`
	MaxRetries  int    `json:"max_retries"`
	TimeoutSecs int    `json:"timeout_secs"`
}

type WarehouseConfig struct {
	Driver string `json:"driver"`
	Path   string `json:"path"`
	// Table is the fully qualified trips table name. Bare references in
	// generated SQL are rewritten to this name before execution.
	Table    string `json:"table"`
	RowLimit int    `json:"row_limit"`
}

type MemoryConfig struct {
	Path           string `json:"path"`
	Collection     string `json:"collection"`
	EmbedProvider  string `json:"embed_provider"`
	EmbedModel     string `json:"embed_model"`
	OllamaEndpoint string `json:"ollama_endpoint,omitempty"`
}

type ChannelsConfig struct {
	Telegram *TelegramConfig `json:"telegram,omitempty"`
}

type TelegramConfig struct {
	Token      string  `json:"token"`
	AllowedIDs []int64 `json:"allowed_ids,omitempty"`
}

type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Addr    string `json:"addr"`
}

type SecurityConfig struct {
	PIIFiltering PIIFilterConfig `json:"pii_filtering"`
}

type PIIFilterConfig struct {
	Enabled      bool `json:"enabled"`
	FilterEmails bool `json:"filter_emails"`
	FilterPhones bool `json:"filter_phones"`
	FilterCards  bool `json:"filter_cards"`
	FilterSSN    bool `json:"filter_ssn"`
}
