// Package execute performs resolved actions on the page and guards against loops.
package execute

import (
	"context"
	"errors"
	"fmt"
	"goal-navigator/internal/config"
	"goal-navigator/internal/entity"
	"goal-navigator/internal/inspect"
	"goal-navigator/internal/ports"
	"goal-navigator/internal/resolve"
	"goal-navigator/pkg/apperr"
	"goal-navigator/pkg/logg"
	"goal-navigator/pkg/tracing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	executorName   = "Executor"
	executorTracer = "execute.executor"

	KeyConfirm   = "Enter"
	keySelectAll = "Control+A"
	keyErase     = "Backspace"

	// Redacted replaces text typed into sensitive fields in logs and step records.
	Redacted = "[REDACTED]"

	StrategyConfirmKey    = "confirm_key"
	StrategySubmitControl = "submit_control"
)

// Outcome describes what was done for one decision.
type Outcome struct {
	Success     bool
	Intent      entity.Intent
	Element     *entity.CandidateElement
	Strategy    string
	Substituted bool
	// Action is a log-safe description of the page effect.
	Action string
}

type Executor struct {
	logger   *zap.Logger
	browser  ports.BrowserManager
	resolver *resolve.Resolver
	guard    *Guard
	tracer   trace.Tracer
}

type Params struct {
	fx.In

	Config   *config.Config
	Logger   *zap.Logger
	Browser  ports.BrowserManager
	Resolver *resolve.Resolver
}

func New(params Params) *Executor {
	return &Executor{
		logger:   params.Logger.With(zap.String(logg.Layer, executorName)),
		browser:  params.Browser,
		resolver: params.Resolver,
		guard:    NewGuard(params.Config.AgentConfig.MaxRepeats),
		tracer:   otel.Tracer(executorTracer),
	}
}

// Execute resolves the decision against scan and acts on the page. Any failure is
// returned as an error next to an unsuccessful Outcome; only browser loss is fatal.
func (e *Executor) Execute(
	ctx context.Context,
	session *entity.Session,
	decision entity.ActionDecision,
	scan *entity.ScanResult,
) (out *Outcome, err error) {
	const op = "Execute"
	logger := e.logger.With(
		zap.String(logg.Operation, op),
		zap.String(logg.Intent, string(decision.Intent)),
	)

	ctx, step := tracing.StartSpan(ctx, e.tracer, logger, op,
		attribute.String("intent", string(decision.Intent)),
		attribute.String("reference", decision.Target.Raw))
	defer func() {
		step.End(err)
	}()

	out = &Outcome{Intent: decision.Intent}

	if !decision.Intent.Valid() {
		return out, apperr.InvalidReqError(op, "intent", fmt.Errorf("unknown intent %q", decision.Intent))
	}

	target, strategy, err := e.target(ctx, decision, scan)
	if err != nil {
		return out, err
	}

	if target == nil {
		if !decision.MentionsSearch() {
			return out, apperr.Wrap(op, apperr.CodeNotFound, errors.New("element not found"), map[string]any{
				apperr.MetaStage:    apperr.StageResolution,
				apperr.MetaSelector: decision.Target.Raw,
			})
		}

		logger.Warn("Target not resolved in a search context, submitting instead")
		out.Substituted = true

		return out, e.submit(ctx, out, scan, "")
	}

	out.Element = target
	out.Strategy = strategy
	logger = logger.With(zap.Int(logg.ElementID, target.ID), zap.String(logg.Strategy, strategy))

	sig := Signature(target, decision.Intent)
	verdict, repeats := e.guard.Check(session.Retry, sig, target)
	step.SetAttributes(attribute.Int("repeats", repeats))

	switch verdict {
	case Loop:
		session.Retry.Record(sig)
		logger.Warn("Repeated action loop detected", zap.Int("repeats", repeats))

		return out, apperr.Wrap(op, apperr.CodeDuplicateAction, errors.New("action repeated too often"), map[string]any{
			apperr.MetaStage:   apperr.StageExecution,
			apperr.MetaElement: target.ID,
			apperr.MetaAction:  string(decision.Intent),
		})
	case Substitute:
		session.Retry.Record(sig)
		logger.Warn("Repeated action, using substitute strategy", zap.Int("repeats", repeats))
		out.Substituted = true

		if target.Search {
			return out, e.confirm(ctx, out)
		}

		return out, e.submit(ctx, out, scan, target.Fingerprint)
	}

	switch decision.Intent {
	case entity.IntentClick:
		err = e.click(ctx, out, target)
	case entity.IntentType:
		err = e.typeInto(ctx, out, target, decision.InputText)
	}

	if err != nil {
		return out, err
	}

	session.Retry.Record(sig)

	if target.CookieConsent && scan != nil {
		session.Retry.MarkConsentHandled(scan.Domain)
		logger.Info("Cookie consent handled", zap.String(logg.Domain, scan.Domain))
	}

	logger.Info("Action executed", zap.String(logg.Action, out.Action))

	return out, nil
}

// target maps the resolver outcome to an element. A nil element with a nil error means not found.
func (e *Executor) target(
	ctx context.Context,
	decision entity.ActionDecision,
	scan *entity.ScanResult,
) (*entity.CandidateElement, string, error) {
	const op = "ResolveTarget"

	res := e.resolver.Resolve(decision, scan)

	if res.Outcome == resolve.DirectSelector {
		raw, err := e.browser.LocateByID(ctx, res.DOMID)
		if err != nil {
			if apperr.IsFatal(err) {
				return nil, "", err
			}

			return nil, "", apperr.Wrap(op, apperr.CodeActionFailed, err, map[string]any{
				apperr.MetaStage:    apperr.StageResolution,
				apperr.MetaSelector: "#" + res.DOMID,
			})
		}

		if raw == nil {
			decision.Target = decision.Target.AsText()

			return e.fromScan(e.resolver.Resolve(decision, scan))
		}

		el := inspect.Candidate(*raw)
		el.ID = -1

		return &el, res.Strategy, nil
	}

	return e.fromScan(res)
}

// fromScan copies a scanned hit. Any other outcome is not found.
func (e *Executor) fromScan(res resolve.Resolution) (*entity.CandidateElement, string, error) {
	if res.Outcome != resolve.Found {
		return nil, res.Strategy, nil
	}

	el := *res.Element

	return &el, res.Strategy, nil
}

func (e *Executor) click(ctx context.Context, out *Outcome, el *entity.CandidateElement) error {
	if err := e.pointAndClick(ctx, el); err != nil {
		return err
	}

	out.Action = fmt.Sprintf("click %s", Describe(el))

	if el.Search && el.Value != "" {
		if err := e.press(ctx, KeyConfirm); err != nil {
			return err
		}

		out.Action += " + " + KeyConfirm
	}

	out.Success = true

	return nil
}

func (e *Executor) typeInto(ctx context.Context, out *Outcome, el *entity.CandidateElement, text string) error {
	const op = "TypeInto"

	if text == "" {
		return apperr.InvalidReqError(op, "input_text", errors.New("nothing to type"))
	}

	if err := e.pointAndClick(ctx, el); err != nil {
		return err
	}

	for _, key := range []string{keySelectAll, keyErase} {
		if err := e.press(ctx, key); err != nil {
			return err
		}
	}

	if err := e.browser.TypeText(ctx, text); err != nil {
		return e.interactionError(op, err, el)
	}

	out.Action = fmt.Sprintf("type %q into %s", MaskInput(el, text), Describe(el))

	if el.Search {
		if err := e.press(ctx, KeyConfirm); err != nil {
			return err
		}

		out.Action += " + " + KeyConfirm
	}

	out.Success = true

	return nil
}

// submit clicks a submit-like control from the scan, or presses the confirm key when there is none.
func (e *Executor) submit(ctx context.Context, out *Outcome, scan *entity.ScanResult, exclude string) error {
	ctrl := FindSubmit(scan, exclude)
	if ctrl == nil {
		return e.confirm(ctx, out)
	}

	if err := e.pointAndClick(ctx, ctrl); err != nil {
		return err
	}

	out.Strategy = StrategySubmitControl
	out.Action = fmt.Sprintf("click submit %s", Describe(ctrl))
	out.Success = true

	return nil
}

func (e *Executor) confirm(ctx context.Context, out *Outcome) error {
	if err := e.press(ctx, KeyConfirm); err != nil {
		return err
	}

	out.Strategy = StrategyConfirmKey
	out.Action = "press " + KeyConfirm
	out.Success = true

	return nil
}

func (e *Executor) pointAndClick(ctx context.Context, el *entity.CandidateElement) error {
	const op = "PointAndClick"

	box, err := e.browser.ScrollIntoView(ctx, el.BoundingBox)
	if err != nil {
		return e.interactionError(op, err, el)
	}

	x, y := box.Center()

	if err := e.browser.MoveMouse(ctx, x, y); err != nil {
		return e.interactionError(op, err, el)
	}

	if err := e.browser.ClickAt(ctx, x, y); err != nil {
		return e.interactionError(op, err, el)
	}

	return nil
}

func (e *Executor) press(ctx context.Context, key string) error {
	const op = "Press"

	if err := e.browser.Press(ctx, key); err != nil {
		if apperr.IsFatal(err) {
			return err
		}

		return apperr.Wrap(op, apperr.CodeActionFailed, err, map[string]any{
			apperr.MetaStage:  apperr.StageInteraction,
			apperr.MetaAction: key,
		})
	}

	return nil
}

func (e *Executor) interactionError(op string, err error, el *entity.CandidateElement) error {
	if apperr.IsFatal(err) {
		return err
	}

	return apperr.Wrap(op, apperr.CodeActionFailed, err, map[string]any{
		apperr.MetaStage:   apperr.StageInteraction,
		apperr.MetaElement: el.ID,
	})
}

// MaskInput hides text typed into sensitive fields.
func MaskInput(el *entity.CandidateElement, text string) string {
	if el != nil && el.Sensitive {
		return Redacted
	}

	return text
}

// Describe renders a short human label for an element.
func Describe(el *entity.CandidateElement) string {
	label := el.Text
	for _, alt := range []string{el.AriaLabel, el.Placeholder, el.Name, el.IDAttr} {
		if label != "" {
			break
		}

		label = alt
	}

	ref := fmt.Sprintf("[%d]", el.ID)
	if el.ID < 0 {
		ref = "#" + el.IDAttr
	}

	if label == "" {
		return fmt.Sprintf("%s <%s>", ref, el.Tag)
	}

	return fmt.Sprintf("%s <%s> %q", ref, el.Tag, label)
}
