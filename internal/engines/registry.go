package engines

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Registry holds instantiated engines by name with thread-safe access and
// config-driven setup.
type Registry struct {
	mu      sync.RWMutex
	engines map[string]Engine
	logger  *slog.Logger
}

// RegistryConfig defines the engines to instantiate from configuration.
// This mirrors the config.Config engines section with resolved API keys.
type RegistryConfig struct {
	Engines map[string]EngineConfig
}

// EngineConfig configures one engine instance.
type EngineConfig struct {
	Type           string // "google", "llm", "openai", "mock"
	APIKey         string
	BaseURL        string
	Model          string
	Shape          string // LLM engine endpoint shape
	Temperature    float64
	RateLimit      int // Requests per minute
	TimeoutSeconds int
	Enabled        bool
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{engines: make(map[string]Engine), logger: logger}
}

// NewRegistryFromConfig creates a registry with engines built from
// configuration. Engines that fail to construct are skipped with a warning;
// a missing credential on an unused engine should not break the others.
func NewRegistryFromConfig(cfg RegistryConfig, logger *slog.Logger) *Registry {
	r := NewRegistry(logger)
	for name, ec := range cfg.Engines {
		if !ec.Enabled {
			continue
		}
		eng, err := newEngine(name, ec)
		if err != nil {
			r.logger.Warn("skipping engine", "name", name, "error", err)
			continue
		}
		r.Register(name, eng)
	}
	return r
}

// newEngine is the pure, stateless mapping from a configuration value to a
// concrete engine instance.
func newEngine(name string, ec EngineConfig) (Engine, error) {
	timeout := time.Duration(ec.TimeoutSeconds) * time.Second
	switch ec.Type {
	case GoogleFreeName:
		return NewGoogleFreeEngine(GoogleFreeConfig{BaseURL: ec.BaseURL, Timeout: timeout}), nil
	case LLMName:
		return NewLLMEngine(LLMConfig{
			APIKey:      ec.APIKey,
			BaseURL:     ec.BaseURL,
			Model:       ec.Model,
			Shape:       ec.Shape,
			Temperature: ec.Temperature,
			RateLimit:   ec.RateLimit,
			Timeout:     timeout,
		})
	case OpenAIName:
		return NewOpenAIEngine(OpenAIConfig{
			APIKey:      ec.APIKey,
			Model:       ec.Model,
			BaseURL:     ec.BaseURL,
			Temperature: ec.Temperature,
			RateLimit:   ec.RateLimit,
			Timeout:     timeout,
		})
	case MockName:
		return NewMockEngine(), nil
	default:
		return nil, fmt.Errorf("unknown engine type %q for %s", ec.Type, name)
	}
}

// Register adds an engine by name.
func (r *Registry) Register(name string, eng Engine) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.engines[name] = eng
	r.logger.Info("registered engine", "name", name, "type", eng.Name())
}

// Get returns an engine by name.
func (r *Registry) Get(name string) (Engine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	eng, ok := r.engines[name]
	if !ok {
		return nil, fmt.Errorf("engine not found: %s", name)
	}
	return eng, nil
}

// List returns registered engine names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.engines))
	for name := range r.engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
