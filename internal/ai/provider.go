package ai

import (
	"context"
	"fmt"
	"goal-navigator/internal/config"
	"strings"
)

const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderAzure     = "azure"

	screenshotMediaType = "image/jpeg"
)

type role string

const (
	roleUser      role = "user"
	roleAssistant role = "assistant"
)

// turn is one message of the conversation. Image is only sent for the newest user turn.
type turn struct {
	role  role
	text  string
	image []byte
}

// completer sends a system prompt plus conversation and returns the raw reply text.
type completer interface {
	complete(ctx context.Context, system string, turns []turn) (string, error)
}

func newCompleter(cfg *config.AIConfig) (completer, error) {
	switch strings.ToLower(cfg.Provider) {
	case ProviderAnthropic, "claude", "":
		return newAnthropicCompleter(cfg), nil
	case ProviderOpenAI, "gpt":
		return newOpenAICompleter(cfg, false), nil
	case ProviderAzure:
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("azure provider requires AI_BASE_URL")
		}

		return newOpenAICompleter(cfg, true), nil
	default:
		return nil, fmt.Errorf("unknown provider %q (supported: anthropic, openai, azure)", cfg.Provider)
	}
}
