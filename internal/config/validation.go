package config

import (
	"fmt"
	"slices"
)

var (
	finishPolicies = []string{"strict", "standard", "lenient"}
	providerNames  = []string{"gemini", "openai"}
	logLevels      = []string{"debug", "info", "warn", "error"}
)

// Validate checks config values for correctness.
// Returns an error listing every invalid value.
func (c *Config) Validate() error {
	var errs []string

	// Agent validation
	if c.Agent.MaxSteps < 1 {
		errs = append(errs, "agent.max_steps must be >= 1")
	}
	if c.Agent.MaxSteps > MaxStepsCeiling {
		errs = append(errs, fmt.Sprintf("agent.max_steps must be <= %d", MaxStepsCeiling))
	}
	if !slices.Contains(finishPolicies, c.Agent.FinishPolicy) {
		errs = append(errs, fmt.Sprintf("agent.finish_policy must be one of %v", finishPolicies))
	}
	if c.Agent.LoopWindow < 0 {
		errs = append(errs, "agent.loop_window must be >= 0")
	}

	// Provider validation
	if !slices.Contains(providerNames, c.Provider.Name) {
		errs = append(errs, fmt.Sprintf("provider.name must be one of %v", providerNames))
	}
	if c.Provider.MaxOutputTokens < 1 {
		errs = append(errs, "provider.max_output_tokens must be >= 1")
	}
	if c.Provider.MaxRetries < 0 {
		errs = append(errs, "provider.max_retries must be >= 0")
	}
	if c.Provider.RetryBaseDelayMs < 1 {
		errs = append(errs, "provider.retry_base_delay_ms must be >= 1")
	}
	if c.Provider.RetryMaxDelayMs < c.Provider.RetryBaseDelayMs {
		errs = append(errs, "provider.retry_max_delay_ms must be >= provider.retry_base_delay_ms")
	}
	if c.Provider.RequestsPerMinute < 0 {
		errs = append(errs, "provider.requests_per_minute must be >= 0")
	}

	// Tools validation
	if c.Tools.MaxFileSize < 1 {
		errs = append(errs, "tools.max_file_size must be >= 1")
	}
	if c.Tools.MaxShowFileLines < 1 {
		errs = append(errs, "tools.max_show_file_lines must be >= 1")
	}
	if c.Tools.DefaultMaxCommandOutputSize < 1 {
		errs = append(errs, "tools.default_max_command_output_size must be >= 1")
	}
	if c.Tools.DefaultShellTimeout < 1 {
		errs = append(errs, "tools.default_shell_timeout must be >= 1")
	}
	if c.Tools.TestTimeout < 1 {
		errs = append(errs, "tools.test_timeout must be >= 1")
	}
	if c.Tools.GracefulShutdownMs < 1 {
		errs = append(errs, "tools.graceful_shutdown_ms must be >= 1")
	}
	if c.Tools.MaxSearchResults < 1 {
		errs = append(errs, "tools.max_search_results must be >= 1")
	}
	if c.Tools.MaxLineLength < 1 {
		errs = append(errs, "tools.max_line_length must be >= 1")
	}
	if c.Tools.MaxFindFileResults < 1 {
		errs = append(errs, "tools.max_find_file_results must be >= 1")
	}
	if c.Tools.MaxObservationChars < 1 {
		errs = append(errs, "tools.max_observation_chars must be >= 1")
	}
	if c.Tools.Python == "" {
		errs = append(errs, "tools.python must not be empty")
	}

	// Logging validation
	if !slices.Contains(logLevels, c.Logging.Level) {
		errs = append(errs, fmt.Sprintf("logging.level must be one of %v", logLevels))
	}

	// Telemetry validation
	if c.Telemetry.Enabled && c.Telemetry.Endpoint == "" {
		errs = append(errs, "telemetry.endpoint is required when telemetry.enabled is true")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %v", errs)
	}

	return nil
}
