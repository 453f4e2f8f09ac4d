package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"goal-navigator/internal/bootstrap"
	"goal-navigator/internal/console"
)

const stopTimeout = 30 * time.Second

func main() {
	os.Exit(execute())
}

func execute() int {
	code := bootstrap.ExitOK

	root := newRootCommand(&code)
	if err := root.ExecuteContext(context.Background()); err != nil {
		if code == bootstrap.ExitOK {
			code = bootstrap.ExitFailed
		}
	}

	return code
}

func newRootCommand(code *int) *cobra.Command {
	var (
		provider string
		model    string
	)

	root := &cobra.Command{
		Use:   "navigator",
		Short: "Drive a browser toward a goal, one action at a time",
		Long: `navigator opens a real browser, ranks the interactive elements of each page,
asks a language model for the next action and performs it until the goal is reached.

Without a subcommand it starts the interactive console.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			*code = startApp(cmd.Context(), bootstrap.Options{Provider: provider, Model: model})
			return nil
		},
	}

	root.PersistentFlags().StringVar(&provider, "provider", "", "Decision provider: anthropic, openai, azure (default: AI_PROVIDER)")
	root.PersistentFlags().StringVar(&model, "model", "", "Model override (default: AI_MODEL)")

	root.AddCommand(newRunCommand(code, &provider, &model))

	return root
}

func newRunCommand(code *int, provider, model *string) *cobra.Command {
	var (
		target     string
		goal       string
		maxSteps   int
		headless   bool
		confidence float64
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one goal and exit",
		Example: `  navigator run --url https://duckduckgo.com --goal "search for playwright go"
  navigator run --url github.com --goal "open the sign in page" --headless --max-steps 5`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := console.ParseRequest(target + " " + goal)
			if err != nil {
				return err
			}

			req.MaxSteps = maxSteps

			opts := bootstrap.Options{
				Run:        &req,
				Confidence: confidence,
				Provider:   *provider,
				Model:      *model,
			}

			if cmd.Flags().Changed("headless") {
				opts.Headless = &headless
			}

			*code = startApp(cmd.Context(), opts)

			return nil
		},
	}

	cmd.Flags().StringVar(&target, "url", "", "Start URL")
	cmd.Flags().StringVar(&goal, "goal", "", "Goal in natural language")
	cmd.Flags().IntVar(&maxSteps, "max-steps", 0, "Step budget (default: AGENT_MAX_STEPS)")
	cmd.Flags().BoolVar(&headless, "headless", false, "Run the browser without a window")
	cmd.Flags().Float64Var(&confidence, "confidence", 0, "Goal confidence threshold (default: AGENT_GOAL_CONFIDENCE)")

	_ = cmd.MarkFlagRequired("url")
	_ = cmd.MarkFlagRequired("goal")

	return cmd
}

// startApp runs the fx app until it shuts down and returns the exit code it carried.
func startApp(ctx context.Context, opts bootstrap.Options) int {
	app := bootstrap.NewApp(opts)

	if err := app.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "start: %v\n", err)
		return bootstrap.ExitFailed
	}

	sig := <-app.Wait()

	stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	if err := app.Stop(stopCtx); err != nil {
		fmt.Fprintf(os.Stderr, "stop: %v\n", err)
	}

	if opts.Run == nil {
		return bootstrap.ExitOK
	}

	return sig.ExitCode
}
