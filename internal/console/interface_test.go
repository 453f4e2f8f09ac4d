package console

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/zap/zaptest"

	"goal-navigator/internal/config"
	"goal-navigator/internal/entity"
	"goal-navigator/internal/testutil/fakes"
	"goal-navigator/internal/usecase"
	"goal-navigator/pkg/apperr"
)

type agentStub struct {
	requests []entity.RunRequest
	task     *entity.Task
	err      error
	stopped  int
}

func (a *agentStub) Execute(_ context.Context, req entity.RunRequest) (*entity.Task, error) {
	a.requests = append(a.requests, req)

	return a.task, a.err
}

func (a *agentStub) Stop() {
	a.stopped++
}

type shutdownStub struct {
	calls int
}

func (s *shutdownStub) Shutdown(...fx.ShutdownOption) error {
	s.calls++

	return nil
}

func newTestInterface(t *testing.T, input string, agent *agentStub) (*Interface, *bytes.Buffer, *shutdownStub) {
	t.Helper()

	return newTestInterfaceWithBrowser(t, input, agent, fakes.NewBrowser("https://example.com/account"))
}

func newTestInterfaceWithBrowser(
	t *testing.T,
	input string,
	agent *agentStub,
	browser *fakes.Browser,
) (*Interface, *bytes.Buffer, *shutdownStub) {
	t.Helper()

	out := &bytes.Buffer{}
	sd := &shutdownStub{}

	return newInterface(Params{
		Config:     config.Default(),
		Logger:     zaptest.NewLogger(t),
		Usecase:    &usecase.Service{Agent: agent, Browser: browser},
		Shutdowner: sd,
	}, strings.NewReader(input), out), out, sd
}

func TestParseRequest(t *testing.T) {
	tests := []struct {
		input   string
		wantURL string
		goal    string
		wantErr bool
	}{
		{input: "https://example.com/login sign in", wantURL: "https://example.com/login", goal: "sign in"},
		{input: "duckduckgo.com  search for   go", wantURL: "https://duckduckgo.com", goal: "search for go"},
		{input: "http://localhost:8080 open settings", wantURL: "http://localhost:8080", goal: "open settings"},
		{input: "example.com", wantErr: true},
		{input: "ftp://example.com get file", wantErr: true},
		{input: "https:// nothing", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			req, err := ParseRequest(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantURL, req.URL)
			assert.Equal(t, tt.goal, req.Goal)
		})
	}
}

func TestStartRunsGoalsAndShutsDown(t *testing.T) {
	agent := &agentStub{task: &entity.Task{
		Status:     entity.TaskStatusCompleted,
		Result:     "signed in",
		Confidence: 0.9,
		Steps: []entity.Step{
			{Index: 1, Action: "click", Description: `click [0] <button> "Accept all"`, Success: true},
			{Index: 2, Action: "type", Description: `type "[REDACTED]" into [1] <input>`, Success: true, Substituted: true},
		},
	}}

	c, out, sd := newTestInterface(t, "help\n\nnot-a-command\nexample.com sign in\nexit\nexample.com ignored\n", agent)

	require.NoError(t, c.Start())

	require.Len(t, agent.requests, 1)
	assert.Equal(t, entity.RunRequest{URL: "https://example.com", Goal: "sign in", MaxSteps: 10}, agent.requests[0])
	assert.Equal(t, 1, sd.calls)

	text := out.String()
	assert.Contains(t, text, "Error: usage: <url> <goal>")
	assert.Contains(t, text, "Goal reached (confidence 0.90)")
	assert.Contains(t, text, "(substituted)")
	assert.Contains(t, text, "Steps taken: 2")
	assert.Contains(t, text, "Page: https://example.com/account")
}

func TestStatusReportsBrowserState(t *testing.T) {
	browser := fakes.NewBrowser("https://example.com/cart")

	c, out, _ := newTestInterfaceWithBrowser(t, "status\n", &agentStub{}, browser)
	require.NoError(t, c.Start())
	assert.Contains(t, out.String(), "Browser: ready\nPage: https://example.com/cart")

	browser.Ready = false

	c, out, _ = newTestInterfaceWithBrowser(t, "s\n", &agentStub{}, browser)
	require.NoError(t, c.Start())
	assert.Contains(t, out.String(), "Browser: not ready")
}

func TestStartReportsFailedRun(t *testing.T) {
	agent := &agentStub{
		task: &entity.Task{Status: entity.TaskStatusFailed, Steps: []entity.Step{{Index: 1, Action: "click", Error: "element not found"}}},
		err:  apperr.Wrap("Execute", apperr.CodeMaxIterations, errors.New("step budget exhausted"), nil),
	}

	c, out, _ := newTestInterface(t, "example.com find pricing\n", agent)

	require.NoError(t, c.Start())
	assert.Contains(t, out.String(), "Run failed")
	assert.Contains(t, out.String(), "✘  1. click: element not found")
}

func TestStopIsIdempotent(t *testing.T) {
	agent := &agentStub{}
	c, _, sd := newTestInterface(t, "example.com sign in\n", agent)

	require.NoError(t, c.Stop())
	require.NoError(t, c.Stop())
	assert.Equal(t, 1, agent.stopped)

	require.NoError(t, c.Start())
	assert.Empty(t, agent.requests)
	assert.Zero(t, sd.calls)
}
