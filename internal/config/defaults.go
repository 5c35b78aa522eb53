package config

// Config holds all application configuration values.
// Defaults are set in DefaultConfig() and can be overridden via dotfile.
// NOTE: Values in config files override defaults, including explicit zero values.
// Missing keys are left at their default values.
type Config struct {
	Agent     AgentConfig     `json:"agent"`
	Provider  ProviderConfig  `json:"provider"`
	Tools     ToolsConfig     `json:"tools"`
	Logging   LoggingConfig   `json:"logging"`
	Telemetry TelemetryConfig `json:"telemetry"`
}

type AgentConfig struct {
	Name string `json:"name"` // Default: "react-agent"

	// Step budget
	MaxSteps int `json:"max_steps"` // Default: 50, clamped to MaxStepsCeiling

	// Finish gating: "strict", "standard" or "lenient"
	FinishPolicy string `json:"finish_policy"` // Default: "standard"

	// Reject finish when the workspace shows no changes (git status)
	VerifyChanges bool `json:"verify_changes"` // Default: true

	// Repeated identical tool calls before a warning turn is appended; 0 disables
	LoopWindow int `json:"loop_window"` // Default: 6
}

type ProviderConfig struct {
	Name            string `json:"name"`              // Default: "gemini" ("gemini" or "openai")
	Model           string `json:"model"`             // Default: "" (backend default)
	MaxOutputTokens int    `json:"max_output_tokens"` // Default: 4096

	// Retries for retryable provider errors
	MaxRetries       int `json:"max_retries"`         // Default: 2
	RetryBaseDelayMs int `json:"retry_base_delay_ms"` // Default: 1000
	RetryMaxDelayMs  int `json:"retry_max_delay_ms"`  // Default: 60000

	// Client-side throttle; 0 disables
	RequestsPerMinute int `json:"requests_per_minute"` // Default: 0

	// Directory for llm_calls.jsonl; empty disables call logging
	CallLogDir string `json:"call_log_dir"` // Default: ""
}

type ToolsConfig struct {
	// File Operations
	MaxFileSize      int64 `json:"max_file_size"`       // Default: 20 * 1024 * 1024 (20MB)
	MaxShowFileLines int   `json:"max_show_file_lines"` // Default: 2000

	// Command Execution
	DefaultMaxCommandOutputSize int64 `json:"default_max_command_output_size"` // Default: 10 * 1024 * 1024 (10MB)
	DefaultShellTimeout         int   `json:"default_shell_timeout"`           // Default: 600 (10 minutes, in seconds)
	TestTimeout                 int   `json:"test_timeout"`                    // Default: 900 (seconds)
	GracefulShutdownMs          int   `json:"graceful_shutdown_ms"`            // Default: 2000

	// Search
	MaxSearchResults   int `json:"max_search_results"`    // Default: 200
	MaxLineLength      int `json:"max_line_length"`       // Default: 10000
	MaxFindFileResults int `json:"max_find_file_results"` // Default: 500

	// Observation size shown to the model
	MaxObservationChars int `json:"max_observation_chars"` // Default: 30000

	// Interpreter used by run_test/check_syntax
	Python string `json:"python"` // Default: "python"
}

type LoggingConfig struct {
	Level   string `json:"level"`    // Default: "info"
	NoColor bool   `json:"no_color"` // Default: false
}

type TelemetryConfig struct {
	Enabled     bool              `json:"enabled"`      // Default: false
	Endpoint    string            `json:"endpoint"`     // OTLP/HTTP endpoint, e.g. "localhost:4318"
	Insecure    bool              `json:"insecure"`     // Default: true
	ServiceName string            `json:"service_name"` // Default: "reactagent"
	Headers     map[string]string `json:"headers,omitempty"`
}

// MaxStepsCeiling bounds any requested step budget.
const MaxStepsCeiling = 100

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Agent: AgentConfig{
			Name:          "react-agent",
			MaxSteps:      50,
			FinishPolicy:  "standard",
			VerifyChanges: true,
			LoopWindow:    6,
		},
		Provider: ProviderConfig{
			Name:             "gemini",
			MaxOutputTokens:  4096,
			MaxRetries:       2,
			RetryBaseDelayMs: 1000,
			RetryMaxDelayMs:  60000,
		},
		Tools: ToolsConfig{
			MaxFileSize:                 20 * 1024 * 1024,
			MaxShowFileLines:            2000,
			DefaultMaxCommandOutputSize: 10 * 1024 * 1024,
			DefaultShellTimeout:         600,
			TestTimeout:                 900,
			GracefulShutdownMs:          2000,
			MaxSearchResults:            200,
			MaxLineLength:               10000,
			MaxFindFileResults:          500,
			MaxObservationChars:         30000,
			Python:                      "python",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Telemetry: TelemetryConfig{
			Insecure:    true,
			ServiceName: "reactagent",
		},
	}
}
