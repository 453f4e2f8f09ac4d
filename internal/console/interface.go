// Package console is the interactive front end: one goal run per input line.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"goal-navigator/internal/config"
	"goal-navigator/internal/entity"
	"goal-navigator/internal/usecase"
	"goal-navigator/pkg/logg"
	"io"
	"net/url"
	"os"
	"strings"
	"sync"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

var errExit = errors.New("exit")

type Interface struct {
	config     *config.Config
	logger     *zap.Logger
	usecase    *usecase.Service
	shutdowner fx.Shutdowner
	in         io.Reader
	out        io.Writer

	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
}

type Params struct {
	fx.In

	Config     *config.Config
	Logger     *zap.Logger
	Usecase    *usecase.Service
	Shutdowner fx.Shutdowner
}

func NewInterface(params Params) *Interface {
	return newInterface(params, os.Stdin, os.Stdout)
}

func newInterface(params Params, in io.Reader, out io.Writer) *Interface {
	ctx, cancel := context.WithCancel(context.Background())

	return &Interface{
		config:     params.Config,
		logger:     params.Logger.With(zap.String(logg.Layer, "Console")),
		usecase:    params.Usecase,
		shutdowner: params.Shutdowner,
		in:         in,
		out:        out,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start reads commands until input ends or the user exits, then asks the app to shut down.
func (i *Interface) Start() error {
	i.printBanner()
	i.printHelp()

	scanner := bufio.NewScanner(i.in)

	for i.ctx.Err() == nil {
		fmt.Fprint(i.out, "\n> ")

		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		if err := i.handleCommand(input); err != nil {
			if errors.Is(err, errExit) {
				break
			}

			i.logger.Error("Command error", zap.Error(err))
			fmt.Fprintf(i.out, "Error: %v\n", err)
		}
	}

	if i.shutdowner != nil && i.ctx.Err() == nil {
		return i.shutdowner.Shutdown()
	}

	return scanner.Err()
}

// Stop cancels the running goal, if any. Safe to call more than once.
func (i *Interface) Stop() error {
	i.once.Do(func() {
		i.logger.Info("Stopping console interface...")
		i.cancel()
		i.usecase.Agent.Stop()
	})

	return nil
}

func (i *Interface) handleCommand(input string) error {
	switch strings.ToLower(input) {
	case "help", "h":
		i.printHelp()

		return nil
	case "status", "s":
		i.printStatus()

		return nil
	case "exit", "quit", "q":
		fmt.Fprintln(i.out, "Shutting down...")

		return errExit
	}

	req, err := ParseRequest(input)
	if err != nil {
		return err
	}

	return i.executeTask(req)
}

// ParseRequest reads "<url> <goal...>". A URL without a scheme gets https.
func ParseRequest(input string) (entity.RunRequest, error) {
	fields := strings.Fields(input)
	if len(fields) < 2 {
		return entity.RunRequest{}, errors.New("usage: <url> <goal>")
	}

	raw := fields[0]
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return entity.RunRequest{}, fmt.Errorf("invalid url %q", fields[0])
	}

	return entity.RunRequest{
		URL:  u.String(),
		Goal: strings.Join(fields[1:], " "),
	}, nil
}

func (i *Interface) executeTask(req entity.RunRequest) error {
	if req.MaxSteps <= 0 {
		req.MaxSteps = i.config.AgentConfig.MaxSteps
	}

	fmt.Fprintf(i.out, "\n🤖 Goal: %s\n🌐 Start: %s (up to %d steps)\n", req.Goal, req.URL, req.MaxSteps)
	fmt.Fprintln(i.out, strings.Repeat("─", 57))

	task, err := i.usecase.Agent.Execute(i.ctx, req)

	fmt.Fprintln(i.out, strings.Repeat("─", 57))

	if task != nil {
		PrintSteps(i.out, task)
	}

	if page := i.usecase.Browser.CurrentURL(); page != "" {
		fmt.Fprintf(i.out, "Page: %s\n", page)
	}

	if err != nil {
		fmt.Fprintf(i.out, "❌ Run failed: %v\n", err)

		return nil
	}

	fmt.Fprintf(i.out, "✅ Goal reached (confidence %.2f)\n", task.Confidence)

	if task.Result != "" {
		fmt.Fprintf(i.out, "Result: %s\n", task.Result)
	}

	return nil
}

// PrintSteps writes one line per recorded step.
func PrintSteps(w io.Writer, task *entity.Task) {
	for _, st := range task.Steps {
		mark := "✔"
		if !st.Success {
			mark = "✘"
		}

		line := fmt.Sprintf("%s %2d. %s", mark, st.Index, st.Description)
		if st.Description == "" {
			line = fmt.Sprintf("%s %2d. %s", mark, st.Index, st.Action)
		}

		if st.Substituted {
			line += " (substituted)"
		}

		if st.Error != "" {
			line += ": " + st.Error
		}

		fmt.Fprintln(w, line)
	}

	fmt.Fprintf(w, "Steps taken: %d\n", len(task.Steps))
}

func (i *Interface) printStatus() {
	if !i.usecase.Browser.IsReady() {
		fmt.Fprintln(i.out, "Browser: not ready")

		return
	}

	fmt.Fprintf(i.out, "Browser: ready\nPage: %s\n", i.usecase.Browser.CurrentURL())
}

func (i *Interface) printBanner() {
	fmt.Fprintln(i.out, `
╔═══════════════════════════════════════════════════════╗
║                                                       ║
║              🧭  Goal Navigator  🌐                   ║
║                                                       ║
║   Reaches a goal on a website one click at a time     ║
║                                                       ║
╚═══════════════════════════════════════════════════════╝`)
}

func (i *Interface) printHelp() {
	fmt.Fprintln(i.out, `
Available commands:
  help, h       - Show this help message
  status, s     - Show the browser state and current page
  exit, quit, q - Exit the application

To start a run, type a URL followed by the goal:
  Examples:
    - https://github.com sign in with my account
    - duckduckgo.com search for playwright go
    - news.ycombinator.com open the top story`)
}
