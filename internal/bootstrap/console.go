package bootstrap

import (
	"context"
	"fmt"
	"goal-navigator/internal/console"
	"goal-navigator/internal/entity"
	"goal-navigator/internal/usecase"
	"goal-navigator/internal/usecase/adapters"
	"goal-navigator/pkg/apperr"
	"io"
	"os"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Process exit codes of a one-shot run.
const (
	ExitOK        = 0
	ExitFailed    = 1
	ExitFatal     = 2
	ExitCancelled = 130
)

func runConsole(lc fx.Lifecycle, consoleInterface *console.Interface, svc *usecase.Service, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("Starting Goal Navigator Console Interface...")

			if err := launch(ctx, svc.Browser, logger); err != nil {
				return err
			}

			go func() {
				if err := consoleInterface.Start(); err != nil {
					logger.Error("Console interface error", zap.Error(err))
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Shutting down Goal Navigator...")

			if err := consoleInterface.Stop(); err != nil {
				logger.Error("Failed to stop console", zap.Error(err))
			}

			if err := svc.Browser.Close(ctx); err != nil {
				logger.Error("Failed to close browser", zap.Error(err))
			}

			return nil
		},
	})
}

// runOnce executes the run from Options and shuts the app down with its exit code.
func runOnce(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	svc *usecase.Service,
	opts Options,
	logger *zap.Logger,
) {
	runCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := launch(ctx, svc.Browser, logger); err != nil {
				cancel()
				close(done)

				return err
			}

			go func() {
				defer close(done)

				task, err := svc.Agent.Execute(runCtx, *opts.Run)
				report(os.Stdout, task, err)

				if err := shutdowner.Shutdown(fx.ExitCode(ExitCode(err))); err != nil {
					logger.Error("Failed to request shutdown", zap.Error(err))
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			svc.Agent.Stop()

			select {
			case <-done:
			case <-ctx.Done():
				logger.Warn("Run did not finish before shutdown")
			}

			if err := svc.Browser.Close(ctx); err != nil {
				logger.Error("Failed to close browser", zap.Error(err))
			}

			return nil
		},
	})
}

func launch(ctx context.Context, browser adapters.BrowserService, logger *zap.Logger) error {
	logger.Info("Launching browser...")

	if err := browser.Launch(ctx); err != nil {
		logger.Error("Failed to launch browser", zap.Error(err))

		return err
	}

	logger.Info("Browser launched successfully")

	return nil
}

// ExitCode maps a run error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case apperr.IsFatal(err):
		return ExitFatal
	case apperr.HasCode(err, apperr.CodeCancelledByUser):
		return ExitCancelled
	default:
		return ExitFailed
	}
}

func report(w io.Writer, task *entity.Task, err error) {
	if task != nil {
		console.PrintSteps(w, task)
	}

	if err != nil {
		fmt.Fprintf(w, "Run failed: %v\n", err)

		return
	}

	fmt.Fprintf(w, "Goal reached (confidence %.2f): %s\n", task.Confidence, task.Result)
}
