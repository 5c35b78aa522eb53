package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate_AllDefaults_Pass(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.Validate()
	assert.NoError(t, err)
}

func TestValidate_Agent(t *testing.T) {
	t.Run("Zero MaxSteps Fails", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Agent.MaxSteps = 0
		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "max_steps")
	})

	t.Run("MaxSteps Above Ceiling Fails", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Agent.MaxSteps = MaxStepsCeiling + 1
		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "max_steps")
	})

	t.Run("Unknown Finish Policy Fails", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Agent.FinishPolicy = "yolo"
		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "finish_policy")
	})
}

func TestValidate_Provider(t *testing.T) {
	t.Run("Unknown Provider Fails", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Provider.Name = "llama"
		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "provider.name")
	})

	t.Run("Max Delay Below Base Fails", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Provider.RetryMaxDelayMs = 10
		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "retry_max_delay_ms")
	})
}

func TestValidate_Tools(t *testing.T) {
	t.Run("Zero File Size Fails", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Tools.MaxFileSize = 0
		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "max_file_size")
	})

	t.Run("Empty Python Fails", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Tools.Python = ""
		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "tools.python")
	})
}

func TestValidate_Telemetry_EnabledWithoutEndpointFails(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Telemetry.Enabled = true
	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "telemetry.endpoint")
}

func TestValidate_MultipleErrors_AllReported(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Agent.MaxSteps = 0
	cfg.Tools.MaxLineLength = 0
	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "agent.max_steps")
	assert.Contains(t, err.Error(), "tools.max_line_length")
}
