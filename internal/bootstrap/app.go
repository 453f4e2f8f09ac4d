package bootstrap

import (
	"goal-navigator/internal/ai"
	"goal-navigator/internal/browser"
	"goal-navigator/internal/config"
	"goal-navigator/internal/console"
	"goal-navigator/internal/entity"
	"goal-navigator/internal/execute"
	"goal-navigator/internal/inspect"
	"goal-navigator/internal/ports"
	"goal-navigator/internal/rank"
	"goal-navigator/internal/resolve"
	"goal-navigator/internal/usecase"
	"time"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// Options carries command-line overrides. A nil Run starts the console.
type Options struct {
	Run        *entity.RunRequest
	Headless   *bool
	Confidence float64
	Provider   string
	Model      string
}

func NewApp(opts Options) *fx.App {
	return fx.New(
		appOptions(opts),
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger.Named("fx").WithOptions(zap.IncreaseLevel(zap.WarnLevel))}
		}),
	)
}

func appOptions(opts Options) fx.Option {
	mode := fx.Invoke(runConsole)
	if opts.Run != nil {
		mode = fx.Invoke(runOnce)
	}

	return fx.Options(
		fx.Supply(opts),
		fx.Provide(
			loadConfig,
			newLogger,
			newTraceProvider,
			newRanker,

			fx.Annotate(browser.NewManager, fx.As(new(ports.BrowserManager))),
			fx.Annotate(ai.NewClient, fx.As(new(ports.DecisionClient))),

			resolve.New,
			inspect.New,
			execute.New,
			usecase.NewUsecase,

			console.NewInterface,
		),

		fx.Invoke(func(*sdktrace.TracerProvider) {}),
		mode,

		fx.StartTimeout(2*time.Minute),
	)
}

func newRanker(cfg *config.Config) *rank.Ranker {
	return rank.New(*cfg.Scoring)
}

// loadConfig reads the environment and applies command-line overrides on top.
func loadConfig(opts Options) (*config.Config, error) {
	cfg, err := config.GetConfig()
	if err != nil {
		return nil, err
	}

	applyOptions(cfg, opts)

	return cfg, nil
}

func applyOptions(cfg *config.Config, opts Options) {
	if opts.Headless != nil {
		cfg.BrowserConfig.Headless = *opts.Headless
	}

	if opts.Confidence > 0 {
		cfg.AgentConfig.GoalConfidence = opts.Confidence
	}

	if opts.Provider != "" {
		cfg.AIConfig.Provider = opts.Provider
	}

	if opts.Model != "" {
		cfg.AIConfig.Model = opts.Model
	}

	if opts.Run != nil && opts.Run.MaxSteps > 0 {
		cfg.AgentConfig.MaxSteps = opts.Run.MaxSteps
	}
}
