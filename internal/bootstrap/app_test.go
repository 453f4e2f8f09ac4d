package bootstrap

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"

	"goal-navigator/internal/config"
	"goal-navigator/internal/entity"
	"goal-navigator/pkg/apperr"
)

func TestAppGraphIsComplete(t *testing.T) {
	require.NoError(t, fx.ValidateApp(appOptions(Options{})))
	require.NoError(t, fx.ValidateApp(appOptions(Options{Run: &entity.RunRequest{URL: "https://example.com", Goal: "x"}})))
}

func TestApplyOptions(t *testing.T) {
	cfg := config.Default()
	headless := true

	applyOptions(cfg, Options{
		Run:        &entity.RunRequest{MaxSteps: 25},
		Headless:   &headless,
		Confidence: 0.95,
		Provider:   "openai",
		Model:      "gpt-4o-mini",
	})

	assert.True(t, cfg.BrowserConfig.Headless)
	assert.Equal(t, 0.95, cfg.AgentConfig.GoalConfidence)
	assert.Equal(t, 25, cfg.AgentConfig.MaxSteps)
	assert.Equal(t, "openai", cfg.AIConfig.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.AIConfig.Model)

	untouched := config.Default()
	applyOptions(untouched, Options{})
	assert.Equal(t, config.Default(), untouched)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitOK, ExitCode(nil))
	assert.Equal(t, ExitFatal, ExitCode(apperr.WrapErrorWithReason("Step", apperr.CodeBrowserNotReady, "page_closed")))
	assert.Equal(t, ExitCancelled, ExitCode(apperr.WrapErrorWithReason("Execute", apperr.CodeCancelledByUser, "stopped_by_user")))
	assert.Equal(t, ExitFailed, ExitCode(apperr.Wrap("Execute", apperr.CodeMaxIterations, errors.New("budget"), nil)))
}
