package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"goal-navigator/internal/config"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

var errEmptyReply = errors.New("empty reply from model")

type anthropicCompleter struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

func newAnthropicCompleter(cfg *config.AIConfig) *anthropicCompleter {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = string(anthropic.ModelClaudeSonnet4_20250514)
	}

	return &anthropicCompleter{
		client:    anthropic.NewClient(opts...),
		model:     model,
		maxTokens: int64(maxTokensOf(cfg)),
	}
}

func (a *anthropicCompleter) complete(ctx context.Context, system string, turns []turn) (string, error) {
	messages := make([]anthropic.MessageParam, 0, len(turns))
	for _, t := range turns {
		if t.role == roleAssistant {
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(t.text)))
			continue
		}

		blocks := []anthropic.ContentBlockParamUnion{}
		if len(t.image) > 0 {
			blocks = append(blocks, anthropic.NewImageBlockBase64(screenshotMediaType, base64.StdEncoding.EncodeToString(t.image)))
		}

		blocks = append(blocks, anthropic.NewTextBlock(t.text))
		messages = append(messages, anthropic.NewUserMessage(blocks...))
	}

	resp, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: a.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: messages,
	})
	if err != nil {
		return "", err
	}

	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text, nil
		}
	}

	return "", errEmptyReply
}

func maxTokensOf(cfg *config.AIConfig) int {
	if cfg.MaxTokens <= 0 {
		return 1024
	}

	return cfg.MaxTokens
}
