package browser

import (
	"context"
	"goal-navigator/internal/entity"
	"goal-navigator/pkg/apperr"
	"goal-navigator/pkg/logg"
	"goal-navigator/pkg/tracing"
	"time"

	"github.com/playwright-community/playwright-go"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	networkIdleTimeout = 10000
	settleDelay        = time.Second
	navigateSettle     = 500 * time.Millisecond
	screenshotQuality  = 60
)

// begin checks cancellation and returns the active page. Callers hold opMu.
func (m *Manager) begin(ctx context.Context, op string) (playwright.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperr.Wrap(op, apperr.CodeCancelledByUser, err, nil)
	}

	return m.activePage(op)
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func (m *Manager) Navigate(ctx context.Context, url string) (err error) {
	const op = "Navigate"
	logger := m.logger.With(zap.String(logg.Operation, op), zap.String(logg.URL, url))

	ctx, step := tracing.StartSpan(ctx, m.tracer, logger, op, attribute.String("url", url))
	defer func() {
		step.End(err)
	}()

	m.opMu.Lock()
	defer m.opMu.Unlock()

	page, err := m.begin(ctx, op)
	if err != nil {
		return err
	}

	_, err = page.Goto(url, playwright.PageGotoOptions{
		Timeout:   playwright.Float(float64(m.config.BrowserConfig.Timeout)),
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	if err != nil {
		return m.classify(op, apperr.StageNavigation, err)
	}

	sleep(ctx, navigateSettle)
	step.AddEvent("navigation completed")

	return nil
}

// WaitForLoad waits for network idle, falling back to DOMContentLoaded plus a short settle.
func (m *Manager) WaitForLoad(ctx context.Context) (err error) {
	const op = "WaitForLoad"
	logger := m.logger.With(zap.String(logg.Operation, op))

	ctx, step := tracing.StartSpan(ctx, m.tracer, logger, op)
	defer func() {
		step.End(err)
	}()

	m.opMu.Lock()
	defer m.opMu.Unlock()

	page, err := m.begin(ctx, op)
	if err != nil {
		return err
	}

	idleErr := page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: playwright.Float(networkIdleTimeout),
	})
	if idleErr == nil {
		return nil
	}

	logger.Debug("Network idle not reached, falling back", zap.Error(idleErr))

	err = page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State: playwright.LoadStateDomcontentloaded,
	})
	if err != nil {
		return m.classify(op, apperr.StagePageState, err)
	}

	sleep(ctx, settleDelay)

	return nil
}

func (m *Manager) CurrentURL() string {
	page, err := m.activePage("CurrentURL")
	if err != nil {
		return ""
	}

	return page.URL()
}

// ScrollIntoView scrolls the page so the box center is inside the viewport and
// returns the box shifted by the distance actually scrolled.
func (m *Manager) ScrollIntoView(ctx context.Context, box entity.BoundingBox) (_ entity.BoundingBox, err error) {
	const op = "ScrollIntoView"

	m.opMu.Lock()
	defer m.opMu.Unlock()

	page, err := m.begin(ctx, op)
	if err != nil {
		return box, err
	}

	vw, vh := float64(m.config.BrowserConfig.ViewportWidth), float64(m.config.BrowserConfig.ViewportHeight)
	if size := page.ViewportSize(); size != nil {
		vw, vh = float64(size.Width), float64(size.Height)
	}

	cx, cy := box.Center()

	var dx, dy float64
	if cx < 0 || cx > vw {
		dx = cx - vw/2
	}

	if cy < 0 || cy > vh {
		dy = cy - vh/2
	}

	if dx == 0 && dy == 0 {
		return box, nil
	}

	result, err := page.Evaluate(`([dx, dy]) => {
		const x = window.scrollX, y = window.scrollY;
		window.scrollBy(dx, dy);
		return [window.scrollX - x, window.scrollY - y];
	}`, []float64{dx, dy})
	if err != nil {
		return box, m.classify(op, apperr.StageInteraction, err)
	}

	var moved [2]float64
	if err := decode(result, &moved); err != nil {
		return box, apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "unexpected_result_type",
		})
	}

	m.logger.Debug("Scrolled target into view",
		zap.String(logg.Operation, op), zap.Float64("dx", moved[0]), zap.Float64("dy", moved[1]))

	box.X -= moved[0]
	box.Y -= moved[1]

	return box, nil
}

// MoveMouse moves the pointer in steps so hover handlers fire along the way.
func (m *Manager) MoveMouse(ctx context.Context, x, y float64) (err error) {
	const op = "MoveMouse"

	m.opMu.Lock()
	defer m.opMu.Unlock()

	page, err := m.begin(ctx, op)
	if err != nil {
		return err
	}

	steps := m.config.BrowserConfig.MouseSteps
	if steps < 1 {
		steps = 1
	}

	if err := page.Mouse().Move(x, y, playwright.MouseMoveOptions{Steps: playwright.Int(steps)}); err != nil {
		return m.classify(op, apperr.StageInteraction, err)
	}

	return nil
}

func (m *Manager) ClickAt(ctx context.Context, x, y float64) (err error) {
	const op = "ClickAt"
	logger := m.logger.With(zap.String(logg.Operation, op))

	ctx, step := tracing.StartSpan(ctx, m.tracer, logger, op,
		attribute.Float64("x", x), attribute.Float64("y", y))
	defer func() {
		step.End(err)
	}()

	m.opMu.Lock()
	defer m.opMu.Unlock()

	page, err := m.begin(ctx, op)
	if err != nil {
		return err
	}

	if err := page.Mouse().Click(x, y); err != nil {
		return m.classify(op, apperr.StageInteraction, err)
	}

	return nil
}

// TypeText types into the focused element. The text is never logged here.
func (m *Manager) TypeText(ctx context.Context, text string) (err error) {
	const op = "TypeText"
	logger := m.logger.With(zap.String(logg.Operation, op))

	ctx, step := tracing.StartSpan(ctx, m.tracer, logger, op, attribute.Int("length", len(text)))
	defer func() {
		step.End(err)
	}()

	m.opMu.Lock()
	defer m.opMu.Unlock()

	page, err := m.begin(ctx, op)
	if err != nil {
		return err
	}

	if err := page.Keyboard().Type(text); err != nil {
		return m.classify(op, apperr.StageInteraction, err)
	}

	return nil
}

func (m *Manager) Press(ctx context.Context, key string) (err error) {
	const op = "Press"
	logger := m.logger.With(zap.String(logg.Operation, op))

	ctx, step := tracing.StartSpan(ctx, m.tracer, logger, op, attribute.String("key", key))
	defer func() {
		step.End(err)
	}()

	m.opMu.Lock()
	defer m.opMu.Unlock()

	page, err := m.begin(ctx, op)
	if err != nil {
		return err
	}

	if err := page.Keyboard().Press(key); err != nil {
		return m.classify(op, apperr.StageInteraction, err)
	}

	return nil
}

func (m *Manager) Screenshot(ctx context.Context) (data []byte, err error) {
	const op = "Screenshot"
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

	data, err = page.Screenshot(playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(false),
		Type:     playwright.ScreenshotTypeJpeg,
		Quality:  playwright.Int(screenshotQuality),
	})
	if err != nil {
		return nil, m.classify(op, apperr.StageScreenshot, err)
	}

	return data, nil
}
