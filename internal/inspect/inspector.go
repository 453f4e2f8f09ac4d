// Package inspect turns a raw page scan into a ranked, re-indexed ScanResult.
package inspect

import (
	"context"
	"errors"
	"goal-navigator/internal/dom"
	"goal-navigator/internal/entity"
	"goal-navigator/internal/ports"
	"goal-navigator/internal/rank"
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
	inspectorName   = "Inspector"
	inspectorTracer = "inspect.inspector"
)

type Inspector struct {
	logger  *zap.Logger
	browser ports.BrowserManager
	ranker  *rank.Ranker
	tracer  trace.Tracer
}

type Params struct {
	fx.In

	Logger  *zap.Logger
	Browser ports.BrowserManager
	Ranker  *rank.Ranker
}

func New(params Params) *Inspector {
	return &Inspector{
		logger:  params.Logger.With(zap.String(logg.Layer, inspectorName)),
		browser: params.Browser,
		ranker:  params.Ranker,
		tracer:  otel.Tracer(inspectorTracer),
	}
}

// Inspect scans the active page. A failed scan yields an empty result together
// with a scan_failed error; browser loss is returned unchanged so callers can stop.
func (i *Inspector) Inspect(ctx context.Context, session *entity.Session) (result *entity.ScanResult, err error) {
	const op = "Inspect"
	logger := i.logger.With(zap.String(logg.Operation, op))

	ctx, step := tracing.StartSpan(ctx, i.tracer, logger, op)
	defer func() {
		step.End(err)
	}()

	snapshot, err := i.browser.ScanPage(ctx)
	if err != nil {
		if apperr.IsFatal(err) {
			return nil, err
		}

		logger.Warn("Page scan failed", zap.Error(err))

		return i.empty(), apperr.Wrap(op, apperr.CodeScanFailed, err, map[string]any{
			apperr.MetaStage: apperr.StageInspection,
		})
	}

	if snapshot.Error != "" {
		logger.Warn("Page scan reported an error", zap.String("scan_error", snapshot.Error))

		return i.empty(), apperr.Wrap(op, apperr.CodeScanFailed, errors.New(snapshot.Error), map[string]any{
			apperr.MetaStage: apperr.StageInspection,
			apperr.MetaURL:   snapshot.URL,
		})
	}

	result = i.Build(snapshot, session)

	step.SetAttributes(
		attribute.Int("candidates", result.Len()),
		attribute.Bool("consent_handled", result.ConsentHandled),
	)
	logger.Debug("Page inspected",
		zap.String(logg.URL, result.URL),
		zap.String(logg.Domain, result.Domain),
		zap.Int("candidates", result.Len()),
		zap.Int("skipped", snapshot.Skipped),
		zap.Bool("consent_handled", result.ConsentHandled),
	)

	return result, nil
}

// Build scores, filters, ranks and orders a snapshot. It does not touch the browser.
func (i *Inspector) Build(snapshot *entity.PageSnapshot, session *entity.Session) *entity.ScanResult {
	domain := DomainOf(snapshot.URL)
	handled := session != nil && session.Retry.ConsentHandled(domain)

	goal := ""
	if session != nil {
		goal = session.Goal
	}

	result := &entity.ScanResult{
		URL:            snapshot.URL,
		Title:          snapshot.Title,
		Domain:         domain,
		PageWidth:      snapshot.PageWidth,
		PageHeight:     snapshot.PageHeight,
		ConsentHandled: handled,
		Elements:       make([]entity.CandidateElement, 0, len(snapshot.Candidates)),
	}

	for _, raw := range snapshot.Candidates {
		el := Candidate(raw)

		overlay := dom.ScoreOverlay(dom.Chain(raw), dom.OverlayOptions{SkipConsent: handled})
		if handled && overlay.CookieConsent {
			continue
		}

		el.OverlayScore = overlay.Score
		el.CookieConsent = overlay.CookieConsent
		result.Elements = append(result.Elements, el)
	}

	i.ranker.Rank(result.Elements, goal, snapshot.PageWidth*snapshot.PageHeight)
	rank.Order(result.Elements)
	result.Reindex()

	return result
}

func (i *Inspector) empty() *entity.ScanResult {
	url := i.browser.CurrentURL()

	return &entity.ScanResult{
		URL:      url,
		Domain:   DomainOf(url),
		Elements: []entity.CandidateElement{},
	}
}
