// Package ai asks a language model for the next navigation action.
package ai

import (
	"context"
	"goal-navigator/internal/config"
	"goal-navigator/internal/entity"
	"goal-navigator/internal/ports"
	"goal-navigator/pkg/apperr"
	"goal-navigator/pkg/logg"
	"goal-navigator/pkg/tracing"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	aiClientName = "AIClient"
	aiTracer     = "ai.client"
)

var _ ports.DecisionClient = (*Client)(nil)

// Client keeps a short rolling conversation with the configured provider.
type Client struct {
	logger      *zap.Logger
	tracer      trace.Tracer
	completer   completer
	historySize int

	mu      sync.Mutex
	history []turn
}

type Params struct {
	fx.In

	Config *config.Config
	Logger *zap.Logger
}

func NewClient(params Params) (*Client, error) {
	c, err := newCompleter(params.Config.AIConfig)
	if err != nil {
		return nil, apperr.Wrap("NewClient", apperr.CodeInvalidArgument, err, map[string]any{
			apperr.MetaField: "AI_PROVIDER",
			apperr.MetaStage: apperr.StageAI,
		})
	}

	return newClient(params.Logger, c, params.Config.AIConfig.HistorySize), nil
}

func newClient(logger *zap.Logger, c completer, historySize int) *Client {
	return &Client{
		logger:      logger.With(zap.String(logg.Layer, aiClientName)),
		tracer:      otel.Tracer(aiTracer),
		completer:   c,
		historySize: historySize,
	}
}

// Decide sends one observation and decodes the reply. The exchange is kept in
// history even when the reply cannot be decoded, so the model sees its mistake.
func (c *Client) Decide(ctx context.Context, req entity.DecisionRequest) (decision *entity.ActionDecision, err error) {
	const op = "Decide"
	logger := c.logger.With(zap.String(logg.Operation, op), zap.Int(logg.Step, req.Step))

	ctx, step := tracing.StartSpan(ctx, c.tracer, logger, op,
		attribute.Int("step", req.Step),
		attribute.Int("elements", req.Scan.Len()),
		attribute.Bool("screenshot", len(req.Screenshot) > 0))
	defer func() {
		step.End(err)
	}()

	text, err := userMessage(req)
	if err != nil {
		return nil, apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "prompt_failed",
			apperr.MetaStage:  apperr.StageAI,
		})
	}

	current := turn{role: roleUser, text: text, image: req.Screenshot}

	c.mu.Lock()
	turns := append(append(make([]turn, 0, len(c.history)+1), c.history...), current)
	c.mu.Unlock()

	step.AddEvent("requesting completion")

	reply, err := c.completer.complete(ctx, systemPrompt, turns)
	if err != nil {
		if ctx.Err() != nil {
			return nil, apperr.Wrap(op, apperr.CodeCancelledByUser, err, map[string]any{
				apperr.MetaStage: apperr.StageAI,
			})
		}

		return nil, apperr.Wrap(op, apperr.CodeAIError, err, map[string]any{
			apperr.MetaReason: "completion_failed",
			apperr.MetaStage:  apperr.StageAI,
		})
	}

	c.remember(turn{role: roleUser, text: text}, turn{role: roleAssistant, text: reply})

	parsed, err := ParseDecision(reply)
	if err != nil {
		logger.Warn("Undecodable reply", zap.Int("reply_len", len(reply)))
		return nil, err
	}

	logger.Debug("Decision received",
		zap.String(logg.Intent, string(parsed.Intent)),
		zap.String("target", parsed.Target.Kind.String()),
		zap.Bool("goal_achieved", parsed.GoalAchieved),
		zap.Float64("confidence", parsed.Confidence))

	return &parsed, nil
}

// Reset forgets the conversation; called at the start of every run.
func (c *Client) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.history = nil
}

func (c *Client) remember(turns ...turn) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.history = append(c.history, turns...)

	if c.historySize <= 0 {
		c.history = nil
		return
	}

	// Drop whole exchanges so the history always opens with a user turn.
	for len(c.history) > c.historySize {
		c.history = c.history[2:]
	}
}
