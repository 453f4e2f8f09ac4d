package usecase

import (
	"context"
	"errors"
	"fmt"
	"goal-navigator/internal/config"
	"goal-navigator/internal/entity"
	"goal-navigator/internal/execute"
	"goal-navigator/internal/inspect"
	"goal-navigator/internal/ports"
	"goal-navigator/pkg/apperr"
	"goal-navigator/pkg/logg"
	"goal-navigator/pkg/tracing"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	agentServiceName = "AgentService"
	agentTracer      = "usecase.agent"
)

var (
	errStopped         = errors.New("stopped by user")
	errStepBudget      = errors.New("step budget exhausted")
	errTooManyFailures = errors.New("too many consecutive failures")
)

var _ ports.AgentExecutor = (*AgentService)(nil)

// AgentService drives one goal run at a time: inspect, decide, execute, repeat.
type AgentService struct {
	config    *config.Config
	logger    *zap.Logger
	browser   ports.BrowserManager
	ai        ports.DecisionClient
	inspector *inspect.Inspector
	executor  *execute.Executor
	tracer    trace.Tracer

	mu     sync.Mutex
	cancel context.CancelCauseFunc
}

type AgentServiceParams struct {
	fx.In

	Config    *config.Config
	Logger    *zap.Logger
	Browser   ports.BrowserManager
	AI        ports.DecisionClient
	Inspector *inspect.Inspector
	Executor  *execute.Executor
}

func NewAgentService(params AgentServiceParams) *AgentService {
	return &AgentService{
		config:    params.Config,
		logger:    params.Logger.With(zap.String(logg.Layer, agentServiceName)),
		browser:   params.Browser,
		ai:        params.AI,
		inspector: params.Inspector,
		executor:  params.Executor,
		tracer:    otel.Tracer(agentTracer),
	}
}

// run is the mutable state of one Execute call.
type run struct {
	task     *entity.Task
	session  *entity.Session
	maxSteps int
	failures int
	last     string
}

func (s *AgentService) Execute(ctx context.Context, req entity.RunRequest) (task *entity.Task, err error) {
	const op = "Execute"
	logger := s.logger.With(zap.String(logg.Operation, op), zap.String(logg.URL, req.URL))

	ctx, step := tracing.StartSpan(ctx, s.tracer, logger, op,
		attribute.String("url", req.URL),
		attribute.Int("max_steps", req.MaxSteps))
	defer func() {
		step.End(err)
	}()

	if req.URL == "" {
		return nil, apperr.InvalidReqError(op, "url", errors.New("url cannot be empty"))
	}

	if req.Goal == "" {
		return nil, apperr.InvalidReqError(op, "goal", errors.New("goal cannot be empty"))
	}

	r := &run{
		task: &entity.Task{
			ID:        uuid.New(),
			URL:       req.URL,
			Goal:      req.Goal,
			Status:    entity.TaskStatusInProgress,
			CreatedAt: time.Now(),
			Steps:     make([]entity.Step, 0),
		},
		session:  entity.NewSession(req.Goal),
		maxSteps: req.MaxSteps,
	}

	if r.maxSteps <= 0 {
		r.maxSteps = s.config.AgentConfig.MaxSteps
	}

	logger = logger.With(zap.String(logg.TaskID, r.task.ID.String()))
	step.SetAttributes(attribute.String("task_id", r.task.ID.String()))

	if !s.browser.IsReady() {
		return s.fail(r, apperr.WrapErrorWithReason(op, apperr.CodeBrowserNotReady, "browser_not_ready"))
	}

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.cancel = nil
		s.mu.Unlock()
	}()

	s.ai.Reset()

	logger.Info("Run started", zap.String(logg.Goal, req.Goal), zap.Int("max_steps", r.maxSteps))

	if err := s.browser.Navigate(ctx, req.URL); err != nil {
		return s.fail(r, s.interrupted(ctx, op, err))
	}

	for i := 1; i <= r.maxSteps; i++ {
		if ctx.Err() != nil {
			return s.fail(r, s.interrupted(ctx, op, ctx.Err()))
		}

		done, err := s.step(ctx, r, i)
		if err != nil {
			return s.fail(r, s.interrupted(ctx, op, err))
		}

		if done {
			logger.Info("Goal achieved", zap.Int(logg.Step, i), zap.Float64("confidence", r.task.Confidence))
			step.AddEvent("goal achieved")

			return r.task, nil
		}

		if r.failures >= s.config.AgentConfig.MaxConsecutiveErrors {
			return s.fail(r, apperr.Wrap(op, apperr.CodeActionFailed, errTooManyFailures, map[string]any{
				apperr.MetaReason: "too_many_failures",
				apperr.MetaStage:  apperr.StageExecution,
			}))
		}

		if i < r.maxSteps {
			if err := sleep(ctx, s.config.AgentConfig.StepDelay); err != nil {
				return s.fail(r, s.interrupted(ctx, op, err))
			}
		}
	}

	return s.fail(r, apperr.Wrap(op, apperr.CodeMaxIterations, errStepBudget, map[string]any{
		apperr.MetaReason: "max_steps_reached",
	}))
}

// step runs one inspect/decide/execute cycle. It reports done when the goal is
// reached and returns an error only when the run cannot continue.
func (s *AgentService) step(ctx context.Context, r *run, index int) (done bool, err error) {
	const op = "Step"
	logger := s.logger.With(
		zap.String(logg.Operation, op),
		zap.String(logg.TaskID, r.task.ID.String()),
		zap.Int(logg.Step, index),
	)

	ctx, span := tracing.StartSpan(ctx, s.tracer, logger, op, attribute.Int("step", index))
	defer func() {
		span.End(err)
	}()

	scan, err := s.inspector.Inspect(ctx, r.session)
	if err != nil {
		if apperr.IsFatal(err) || ctx.Err() != nil {
			return false, err
		}

		logger.Warn("Inspection failed, retrying next step", zap.Error(err))
		s.record(r, index, entity.Step{Action: "inspect", Error: err.Error()})
		r.last = "the page could not be inspected"

		return false, nil
	}

	span.SetAttributes(attribute.Int("elements", scan.Len()))

	var screenshot []byte
	if s.config.BrowserConfig.UseScreenshots {
		if screenshot, err = s.browser.Screenshot(ctx); err != nil {
			if apperr.IsFatal(err) || ctx.Err() != nil {
				return false, err
			}

			logger.Warn("Screenshot failed, continuing without it", zap.Error(err))
			screenshot = nil
		}
	}

	decision, err := s.decide(ctx, logger, r, index, scan, screenshot)
	if err != nil {
		if ctx.Err() != nil {
			return false, err
		}

		logger.Warn("Decision service failed", zap.Error(err))
		s.record(r, index, entity.Step{Action: "decide", Error: err.Error()})

		return false, nil
	}

	if decision.GoalAchieved && decision.Confidence >= s.config.AgentConfig.GoalConfidence {
		now := time.Now()
		r.task.Status = entity.TaskStatusCompleted
		r.task.CompletedAt = &now
		r.task.Result = decision.Reasoning
		r.task.Confidence = decision.Confidence

		return true, nil
	}

	out, err := s.executor.Execute(ctx, r.session, decision, scan)

	rec := entity.Step{
		Action:      string(decision.Intent),
		Description: decision.Description,
		Strategy:    out.Strategy,
		Substituted: out.Substituted,
	}

	if out.Action != "" {
		rec.Description = out.Action
	}

	if err != nil {
		if apperr.IsFatal(err) || ctx.Err() != nil {
			return false, err
		}

		if apperr.HasCode(err, apperr.CodeDuplicateAction) {
			r.session.Retry.Forget()
			r.last = "the same action was repeated without effect; choose a different element"
		} else {
			r.last = fmt.Sprintf("%s failed: %s", decision.Intent, apperr.CodeOf(err))
		}

		logger.Warn("Action failed", zap.Error(err))
		rec.Error = err.Error()
		s.record(r, index, rec)

		return false, nil
	}

	rec.Success = true
	s.record(r, index, rec)
	r.last = out.Action

	if err := s.browser.WaitForLoad(ctx); err != nil {
		if apperr.IsFatal(err) || ctx.Err() != nil {
			return false, err
		}

		logger.Debug("Page did not settle", zap.Error(err))
	}

	return false, nil
}

// decide asks the decision service and replaces an unusable answer with the default action.
func (s *AgentService) decide(
	ctx context.Context,
	logger *zap.Logger,
	r *run,
	index int,
	scan *entity.ScanResult,
	screenshot []byte,
) (entity.ActionDecision, error) {
	d, err := s.ai.Decide(ctx, entity.DecisionRequest{
		Goal:        r.task.Goal,
		URL:         scan.URL,
		Step:        index,
		MaxSteps:    r.maxSteps,
		Scan:        scan,
		Screenshot:  screenshot,
		LastOutcome: r.last,
	})

	switch {
	case apperr.HasCode(err, apperr.CodeMalformedDecision):
		logger.Warn("Malformed decision, using default action", zap.Error(err))

		return entity.DefaultDecision("malformed decision"), nil
	case err != nil:
		return entity.ActionDecision{}, err
	case d == nil:
		return entity.DefaultDecision("empty decision"), nil
	}

	if d.GoalAchieved && d.Confidence >= s.config.AgentConfig.GoalConfidence {
		return *d, nil
	}

	if !d.Usable(scan) {
		logger.Warn("Unusable decision, using default action",
			zap.String(logg.Intent, string(d.Intent)),
			zap.String("reference", d.Target.Raw))

		return entity.DefaultDecision("unusable decision"), nil
	}

	return *d, nil
}

func (s *AgentService) record(r *run, index int, st entity.Step) {
	st.ID = uuid.New()
	st.Index = index
	st.Timestamp = time.Now()

	if st.Success {
		r.failures = 0
	} else {
		r.failures++
	}

	r.task.Steps = append(r.task.Steps, st)
}

func (s *AgentService) fail(r *run, err error) (*entity.Task, error) {
	now := time.Now()
	r.task.Status = entity.TaskStatusFailed
	r.task.CompletedAt = &now
	r.task.Error = err.Error()

	if apperr.IsFatal(err) {
		s.logger.Error("Run aborted", zap.String(logg.TaskID, r.task.ID.String()), zap.Error(err))
	} else {
		s.logger.Warn("Run ended without reaching the goal", zap.String(logg.TaskID, r.task.ID.String()), zap.Error(err))
	}

	return r.task, err
}

// interrupted maps a cancelled context to cancelled_by_user and leaves other errors alone.
func (s *AgentService) interrupted(ctx context.Context, op string, err error) error {
	if ctx.Err() == nil {
		return err
	}

	cause := context.Cause(ctx)
	if errors.Is(cause, errStopped) {
		return apperr.Wrap(op, apperr.CodeCancelledByUser, cause, map[string]any{
			apperr.MetaReason: "stopped_by_user",
		})
	}

	return apperr.Wrap(op, apperr.CodeCancelledByUser, cause, map[string]any{
		apperr.MetaReason: "context_cancelled",
	})
}

// Stop interrupts the active run, if any.
func (s *AgentService) Stop() {
	const op = "Stop"

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel == nil {
		return
	}

	s.logger.Info("Stopping agent...", zap.String(logg.Operation, op))
	s.cancel(errStopped)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
