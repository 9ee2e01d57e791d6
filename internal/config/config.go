package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// MonitorConfig controls the observe phase.
type MonitorConfig struct {
	PollingInterval  time.Duration `yaml:"polling_interval"`
	AnomalyThreshold float64       `yaml:"anomaly_threshold"`
}

// DecisionConfig controls the decide phase.
type DecisionConfig struct {
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`
	MaxActionsPerCycle  int     `yaml:"max_actions_per_cycle"`
}

// ActionConfig controls the act phase.
type ActionConfig struct {
	DryRun        bool          `yaml:"dry_run"`
	ActionTimeout time.Duration `yaml:"action_timeout"`
}

// SimulationConfig controls the synthetic metrics source.
type SimulationConfig struct {
	Nodes            int     `yaml:"nodes"`
	BaseLatency      float64 `yaml:"base_latency"`
	BaseBandwidth    float64 `yaml:"base_bandwidth"`
	BasePacketLoss   float64 `yaml:"base_packet_loss"`
	EventProbability float64 `yaml:"event_probability"`
}

// LLMConfig selects and tunes the reasoning backend.
type LLMConfig struct {
	Provider    string  `yaml:"provider"` // "openai" or "mock"
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	APIKey      string  `yaml:"-"` // from env only
}

// FeedbackConfig controls the evaluate phase.
type FeedbackConfig struct {
	HistoryWindow int `yaml:"history_window"`
}

// APIConfig controls the HTTP facade.
type APIConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// Config is the full configuration surface. A zero-value file (or no file at
// all) yields the defaults from Default.
type Config struct {
	LogLevel string           `yaml:"log_level"`
	DataDir  string           `yaml:"data_dir"`
	Monitor  MonitorConfig    `yaml:"monitor"`
	Decision DecisionConfig   `yaml:"decision"`
	Action   ActionConfig     `yaml:"action"`
	Network  SimulationConfig `yaml:"network"`
	LLM      LLMConfig        `yaml:"llm"`
	Feedback FeedbackConfig   `yaml:"feedback"`
	API      APIConfig        `yaml:"api"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		LogLevel: "info",
		DataDir:  "data",
		Monitor: MonitorConfig{
			PollingInterval:  5 * time.Second,
			AnomalyThreshold: 0.8,
		},
		Decision: DecisionConfig{
			ConfidenceThreshold: 0.7,
			MaxActionsPerCycle:  3,
		},
		Action: ActionConfig{
			DryRun:        false,
			ActionTimeout: 30 * time.Second,
		},
		Network: SimulationConfig{
			Nodes:            10,
			BaseLatency:      20.0,
			BaseBandwidth:    1000.0,
			BasePacketLoss:   0.01,
			EventProbability: 0.3,
		},
		LLM: LLMConfig{
			Provider:    "mock",
			Model:       "gpt-4o-mini",
			Temperature: 0.3,
			MaxTokens:   1024,
		},
		Feedback: FeedbackConfig{
			HistoryWindow: 100,
		},
		API: APIConfig{
			ListenAddr: ":8000",
		},
	}
}

// Load reads configuration from a YAML file with env overrides. A missing
// file is not an error: defaults apply. Unset fields in a present file fall
// back to defaults too.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("read config: %w", err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	// Env overrides
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.LLM.APIKey = key
	}
	if provider := os.Getenv("NETOPT_LLM_PROVIDER"); provider != "" {
		cfg.LLM.Provider = provider
	}
	if addr := os.Getenv("NETOPT_LISTEN_ADDR"); addr != "" {
		cfg.API.ListenAddr = addr
	}

	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.Monitor.PollingInterval <= 0 {
		return fmt.Errorf("monitor.polling_interval must be positive")
	}
	if c.Decision.MaxActionsPerCycle <= 0 {
		return fmt.Errorf("decision.max_actions_per_cycle must be positive")
	}
	if c.Action.ActionTimeout <= 0 {
		return fmt.Errorf("action.action_timeout must be positive")
	}
	if c.Network.Nodes <= 0 {
		return fmt.Errorf("network.nodes must be positive")
	}
	if c.Network.EventProbability < 0 || c.Network.EventProbability > 1 {
		return fmt.Errorf("network.event_probability must be in [0,1]")
	}
	if c.Feedback.HistoryWindow <= 0 {
		return fmt.Errorf("feedback.history_window must be positive")
	}
	switch c.LLM.Provider {
	case "openai", "mock":
	default:
		return fmt.Errorf("llm.provider must be %q or %q, got %q", "openai", "mock", c.LLM.Provider)
	}
	return nil
}
