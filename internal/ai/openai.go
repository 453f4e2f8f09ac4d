package ai

import (
	"context"
	"encoding/base64"
	"goal-navigator/internal/config"

	openai "github.com/sashabaranov/go-openai"
)

type openAICompleter struct {
	client    *openai.Client
	model     string
	maxTokens int
}

func newOpenAICompleter(cfg *config.AIConfig, azure bool) *openAICompleter {
	var clientConfig openai.ClientConfig

	switch {
	case azure:
		clientConfig = openai.DefaultAzureConfig(cfg.APIKey, cfg.BaseURL)
		if cfg.APIVersion != "" {
			clientConfig.APIVersion = cfg.APIVersion
		}
	default:
		clientConfig = openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			clientConfig.BaseURL = cfg.BaseURL
		}
	}

	model := cfg.Model
	if model == "" {
		model = openai.GPT4o
	}

	return &openAICompleter{
		client:    openai.NewClientWithConfig(clientConfig),
		model:     model,
		maxTokens: maxTokensOf(cfg),
	}
}

func (o *openAICompleter) complete(ctx context.Context, system string, turns []turn) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(turns)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: system,
	})

	for _, t := range turns {
		if t.role == roleAssistant {
			messages = append(messages, openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleAssistant,
				Content: t.text,
			})

			continue
		}

		if len(t.image) == 0 {
			messages = append(messages, openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleUser,
				Content: t.text,
			})

			continue
		}

		messages = append(messages, openai.ChatCompletionMessage{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{
					Type: openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{
						URL:    "data:" + screenshotMediaType + ";base64," + base64.StdEncoding.EncodeToString(t.image),
						Detail: openai.ImageURLDetailLow,
					},
				},
				{Type: openai.ChatMessagePartTypeText, Text: t.text},
			},
		})
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     o.model,
		Messages:  messages,
		MaxTokens: o.maxTokens,
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", errEmptyReply
	}

	return resp.Choices[0].Message.Content, nil
}
