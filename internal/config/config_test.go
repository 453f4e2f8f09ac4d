package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goal-navigator/internal/config"
)

func TestGetConfigDefaultsMatchDefault(t *testing.T) {
	t.Setenv("AI_API_KEY", "sk-test")

	cfg, err := config.GetConfig()
	require.NoError(t, err)

	want := config.Default()
	want.AIConfig.APIKey = "sk-test"

	assert.Equal(t, want, cfg)
}

func TestGetConfigOverrides(t *testing.T) {
	t.Setenv("AI_API_KEY", "sk-test")
	t.Setenv("AI_PROVIDER", "azure")
	t.Setenv("AGENT_MAX_STEPS", "25")
	t.Setenv("AGENT_STEP_DELAY", "250ms")
	t.Setenv("AGENT_GOAL_CONFIDENCE", "0.65")
	t.Setenv("BROWSER_HEADLESS", "true")
	t.Setenv("SCORE_CRITICAL", "90")
	t.Setenv("SCORE_DEPTH_OVERLAY_THRESHOLD", "4")

	cfg, err := config.GetConfig()
	require.NoError(t, err)

	assert.Equal(t, "azure", cfg.AIConfig.Provider)
	assert.Equal(t, 25, cfg.AgentConfig.MaxSteps)
	assert.Equal(t, 250*time.Millisecond, cfg.AgentConfig.StepDelay)
	assert.Equal(t, 0.65, cfg.AgentConfig.GoalConfidence)
	assert.True(t, cfg.BrowserConfig.Headless)
	assert.Equal(t, 90.0, cfg.Scoring.Critical)
	assert.Equal(t, 4, cfg.Scoring.DepthOverlayThreshold)
}

func TestGetConfigRequiresAPIKey(t *testing.T) {
	t.Setenv("AI_API_KEY", "restored after the test")
	require.NoError(t, os.Unsetenv("AI_API_KEY"))

	_, err := config.GetConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AI_API_KEY")
}
