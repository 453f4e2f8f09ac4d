package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"goal-navigator/internal/entity"
	"goal-navigator/pkg/apperr"
	"goal-navigator/pkg/logg"
	"goal-navigator/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ScanPage runs the scan script on the active page.
func (m *Manager) ScanPage(ctx context.Context) (snapshot *entity.PageSnapshot, err error) {
	const op = "ScanPage"
	logger := m.logger.With(zap.String(logg.Operation, op))

	ctx, step := tracing.StartSpan(ctx, m.tracer, logger, op)
	defer func() {
		step.End(err)
	}()

	m.opMu.Lock()
	defer m.opMu.Unlock()

	page, err := m.begin(ctx, op)
	if err != nil {
		return nil, err
	}

	result, err := page.Evaluate(scanScript(), map[string]any{
		"maxCandidates": m.config.BrowserConfig.MaxCandidates,
	})
	if err != nil {
		return nil, m.classify(op, apperr.StageInspection, err)
	}

	snapshot = &entity.PageSnapshot{}
	if err := decode(result, snapshot); err != nil {
		return nil, apperr.Wrap(op, apperr.CodeScanFailed, err, map[string]any{
			apperr.MetaReason: "unexpected_result_type",
			apperr.MetaStage:  apperr.StageInspection,
		})
	}

	step.SetAttributes(
		attribute.Int("candidates", len(snapshot.Candidates)),
		attribute.Int("skipped", snapshot.Skipped),
	)

	return snapshot, nil
}

func (m *Manager) LocateByID(ctx context.Context, id string) (raw *entity.RawCandidate, err error) {
	const op = "LocateByID"
	logger := m.logger.With(zap.String(logg.Operation, op), zap.String(logg.Selector, "#"+id))

	ctx, step := tracing.StartSpan(ctx, m.tracer, logger, op, attribute.String("id", id))
	defer func() {
		step.End(err)
	}()

	m.opMu.Lock()
	defer m.opMu.Unlock()

	page, err := m.begin(ctx, op)
	if err != nil {
		return nil, err
	}

	result, err := page.Evaluate(scanScript(), map[string]any{"id": id})
	if err != nil {
		return nil, m.classify(op, apperr.StageResolution, err)
	}

	if result == nil {
		logger.Debug("Element not present on page")

		return nil, nil
	}

	raw = &entity.RawCandidate{}
	if err := decode(result, raw); err != nil {
		return nil, apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "unexpected_result_type",
			apperr.MetaStage:  apperr.StageResolution,
		})
	}

	return raw, nil
}

// decode converts an Evaluate result (maps, slices, float64s) into a typed value.
func decode(result any, out any) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode evaluate result: %w", err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode evaluate result: %w", err)
	}

	return nil
}
