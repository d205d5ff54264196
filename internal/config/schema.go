package config

// Config holds lenslate configuration.
// Stored at: ~/.lenslate/config.yaml (or ./config.yaml)
type Config struct {
	Engines      map[string]EngineCfg `mapstructure:"engines" yaml:"engines"`
	Defaults     DefaultsCfg          `mapstructure:"defaults" yaml:"defaults"`
	Orchestrator OrchestratorCfg      `mapstructure:"orchestrator" yaml:"orchestrator"`
	Diagnostics  DiagnosticsCfg       `mapstructure:"diagnostics" yaml:"diagnostics"`
}

// EngineCfg configures a translation engine.
type EngineCfg struct {
	Type           string  `mapstructure:"type" yaml:"type"`                       // "google", "llm", "openai", "mock"
	APIKey         string  `mapstructure:"api_key" yaml:"api_key"`                 // API key (supports ${ENV_VAR} syntax)
	BaseURL        string  `mapstructure:"base_url" yaml:"base_url"`               // Backend endpoint
	Model          string  `mapstructure:"model" yaml:"model"`                     // Model name (LLM engines)
	Shape          string  `mapstructure:"shape" yaml:"shape"`                     // "chat" or "responses" (llm type)
	Temperature    float64 `mapstructure:"temperature" yaml:"temperature"`         // Sampling temperature
	RateLimit      int     `mapstructure:"rate_limit" yaml:"rate_limit"`           // Requests per minute
	TimeoutSeconds int     `mapstructure:"timeout_seconds" yaml:"timeout_seconds"` // HTTP timeout
	Enabled        bool    `mapstructure:"enabled" yaml:"enabled"`
}

// DefaultsCfg specifies default selections for a translation run.
type DefaultsCfg struct {
	Engine      string `mapstructure:"engine" yaml:"engine"`             // Default engine name
	Source      string `mapstructure:"source" yaml:"source"`             // Default source language ("auto" allowed)
	Target      string `mapstructure:"target" yaml:"target"`             // Default target language
	OCRLanguage string `mapstructure:"ocr_language" yaml:"ocr_language"` // Language hint for the recognizer
}

// OrchestratorCfg tunes batching and retry behavior.
type OrchestratorCfg struct {
	MaxChunkLines   int `mapstructure:"max_chunk_lines" yaml:"max_chunk_lines"`
	MaxChunkChars   int `mapstructure:"max_chunk_chars" yaml:"max_chunk_chars"`
	CooldownSeconds int `mapstructure:"cooldown_seconds" yaml:"cooldown_seconds"` // Wait before the single rate-limit retry
	DebounceMillis  int `mapstructure:"debounce_millis" yaml:"debounce_millis"`   // Quiet period before free-text runs
	SlowAfterSecs   int `mapstructure:"slow_after_seconds" yaml:"slow_after_seconds"`
}

// DiagnosticsCfg configures the in-memory diagnostic log.
type DiagnosticsCfg struct {
	Capacity int `mapstructure:"capacity" yaml:"capacity"` // Max retained entries
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Engines: map[string]EngineCfg{
			"google": {
				Type:    "google",
				Enabled: true,
			},
			"openai": {
				Type:        "openai",
				Model:       "gpt-4o-mini",
				APIKey:      "${OPENAI_API_KEY}",
				Temperature: 0.3,
				RateLimit:   60,
				Enabled:     true,
			},
			"local": {
				Type:    "llm",
				Shape:   "chat",
				BaseURL: "http://localhost:11434/v1",
				Model:   "qwen2.5:7b",
				APIKey:  "${LOCAL_LLM_API_KEY}",
				Enabled: false,
			},
		},
		Defaults: DefaultsCfg{
			Engine:      "google",
			Source:      "auto",
			Target:      "en",
			OCRLanguage: "auto",
		},
		Orchestrator: OrchestratorCfg{
			MaxChunkLines:   14,
			MaxChunkChars:   2200,
			CooldownSeconds: 2,
			DebounceMillis:  400,
			SlowAfterSecs:   6,
		},
		Diagnostics: DiagnosticsCfg{
			Capacity: 100,
		},
	}
}

// GetEngine returns an engine config by name.
func (c *Config) GetEngine(name string) (EngineCfg, bool) {
	cfg, ok := c.Engines[name]
	return cfg, ok
}

// EnabledEngines returns all enabled engines.
func (c *Config) EnabledEngines() map[string]EngineCfg {
	result := make(map[string]EngineCfg)
	for name, cfg := range c.Engines {
		if cfg.Enabled {
			result[name] = cfg
		}
	}
	return result
}
