package browser

import (
	"context"
	"errors"
	"goal-navigator/internal/config"
	"goal-navigator/internal/ports"
	"goal-navigator/pkg/apperr"
	"goal-navigator/pkg/logg"
	"goal-navigator/pkg/tracing"
	"os"
	"sync"
	"sync/atomic"

	"github.com/playwright-community/playwright-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	browserManagerName = "BrowserManager"
	browserTracer      = "browser.manager"
	userAgent          = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
)

var _ ports.BrowserManager = (*Manager)(nil)

// Manager drives one Chromium instance through playwright. All primitives are
// serialized by opMu; pageMu only guards the active page pointer, which tab
// events swap from playwright's own goroutine.
type Manager struct {
	config         *config.Config
	logger         *zap.Logger
	tracer         trace.Tracer
	playwright     *playwright.Playwright
	browser        playwright.Browser
	browserContext playwright.BrowserContext

	opMu   sync.Mutex
	pageMu sync.RWMutex
	page   playwright.Page
	ready  atomic.Bool
}

type Params struct {
	fx.In

	Config *config.Config
	Logger *zap.Logger
}

func NewManager(params Params) *Manager {
	return &Manager{
		config: params.Config,
		logger: params.Logger.With(zap.String(logg.Layer, browserManagerName)),
		tracer: otel.Tracer(browserTracer),
	}
}

func (m *Manager) Launch(ctx context.Context) (err error) {
	const op = "Launch"
	logger := m.logger.With(zap.String(logg.Operation, op))

	ctx, step := tracing.StartSpan(ctx, m.tracer, logger, op)
	defer func() {
		step.End(err)
	}()

	m.opMu.Lock()
	defer m.opMu.Unlock()

	logger.Info("Launching browser...")
	step.AddEvent("installing playwright")

	err = playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}})
	if err != nil {
		return apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "playwright_install_failed",
			apperr.MetaStage:  apperr.StageBrowser,
		})
	}

	step.AddEvent("starting playwright")

	pw, err := playwright.Run()
	if err != nil {
		return apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "playwright_start_failed",
			apperr.MetaStage:  apperr.StageBrowser,
		})
	}
	m.playwright = pw

	if m.config.BrowserConfig.UserDataDir != "" {
		err = m.launchPersistent(ctx)
	} else {
		err = m.launchNew(ctx)
	}

	if err != nil {
		if stopErr := m.release(logger); stopErr != nil {
			logger.Warn("Failed to stop playwright after launch failure", zap.Error(stopErr))
		}

		return err
	}

	m.browserContext.OnPage(m.adoptPage)

	m.ready.Store(true)
	logger.Info("Browser launched successfully")

	return nil
}

func (m *Manager) viewport() *playwright.Size {
	return &playwright.Size{
		Width:  m.config.BrowserConfig.ViewportWidth,
		Height: m.config.BrowserConfig.ViewportHeight,
	}
}

func (m *Manager) launchPersistent(ctx context.Context) (err error) {
	const op = "launchPersistent"
	logger := m.logger.With(zap.String(logg.Operation, op))

	_, step := tracing.StartSpan(ctx, m.tracer, logger, op)
	defer func() {
		step.End(err)
	}()

	userDataDir := m.config.BrowserConfig.UserDataDir

	if err := os.MkdirAll(userDataDir, 0o755); err != nil {
		return apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "mkdir_failed",
			apperr.MetaStage:  apperr.StageBrowser,
		})
	}

	browserContext, err := m.playwright.Chromium.LaunchPersistentContext(userDataDir,
		playwright.BrowserTypeLaunchPersistentContextOptions{
			Headless:          playwright.Bool(m.config.BrowserConfig.Headless),
			SlowMo:            playwright.Float(float64(m.config.BrowserConfig.SlowMo)),
			Viewport:          m.viewport(),
			UserAgent:         playwright.String(userAgent),
			JavaScriptEnabled: playwright.Bool(true),
			IgnoreHttpsErrors: playwright.Bool(true),
			Args: []string{
				"--disable-blink-features=AutomationControlled",
				"--disable-dev-shm-usage",
			},
		})
	if err != nil {
		return apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "launch_persistent_failed",
			apperr.MetaStage:  apperr.StageBrowser,
		})
	}

	m.browserContext = browserContext

	if pages := browserContext.Pages(); len(pages) > 0 {
		m.setPage(pages[0])
		logger.Info("Using existing page")

		return nil
	}

	page, err := browserContext.NewPage()
	if err != nil {
		return apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "new_page_failed",
			apperr.MetaStage:  apperr.StageBrowser,
		})
	}

	m.setPage(page)

	return nil
}

func (m *Manager) launchNew(ctx context.Context) (err error) {
	const op = "launchNew"
	logger := m.logger.With(zap.String(logg.Operation, op))

	_, step := tracing.StartSpan(ctx, m.tracer, logger, op)
	defer func() {
		step.End(err)
	}()

	browser, err := m.playwright.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(m.config.BrowserConfig.Headless),
		SlowMo:   playwright.Float(float64(m.config.BrowserConfig.SlowMo)),
		Args:     []string{"--disable-blink-features=AutomationControlled"},
	})
	if err != nil {
		return apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "browser_launch_failed",
			apperr.MetaStage:  apperr.StageBrowser,
		})
	}
	m.browser = browser

	browserContext, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport:          m.viewport(),
		UserAgent:         playwright.String(userAgent),
		JavaScriptEnabled: playwright.Bool(true),
	})
	if err != nil {
		return apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "context_create_failed",
			apperr.MetaStage:  apperr.StageBrowser,
		})
	}

	m.browserContext = browserContext

	page, err := browserContext.NewPage()
	if err != nil {
		return apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "page_create_failed",
			apperr.MetaStage:  apperr.StageBrowser,
		})
	}

	m.setPage(page)

	return nil
}

// adoptPage makes a newly opened tab the active page.
func (m *Manager) adoptPage(page playwright.Page) {
	m.logger.Info("New tab opened, switching active page", zap.String(logg.URL, page.URL()))
	m.setPage(page)
}

// setPage swaps the active page and wires its dialog and close handlers.
func (m *Manager) setPage(page playwright.Page) {
	page.OnDialog(func(dialog playwright.Dialog) {
		m.logger.Debug("Accepting dialog", zap.String("type", dialog.Type()), zap.String("message", dialog.Message()))

		if err := dialog.Accept(); err != nil {
			m.logger.Warn("Failed to accept dialog", zap.Error(err))
		}
	})
	page.OnClose(m.pageClosed)

	m.pageMu.Lock()
	m.page = page
	m.pageMu.Unlock()
}

// pageClosed falls back to the newest live page when the active one goes away.
func (m *Manager) pageClosed(closed playwright.Page) {
	m.pageMu.Lock()
	defer m.pageMu.Unlock()

	if m.page != closed || m.browserContext == nil {
		return
	}

	pages := m.browserContext.Pages()
	for i := len(pages) - 1; i >= 0; i-- {
		if pages[i] != closed && !pages[i].IsClosed() {
			m.page = pages[i]
			m.logger.Info("Active tab closed, switched to another page", zap.String(logg.URL, pages[i].URL()))

			return
		}
	}

	m.page = nil
	m.logger.Warn("Active tab closed and no page left")
}

// activePage returns the live page or a browser_not_ready error.
func (m *Manager) activePage(op string) (playwright.Page, error) {
	if !m.ready.Load() {
		return nil, apperr.WrapErrorWithReason(op, apperr.CodeBrowserNotReady, "browser_not_ready")
	}

	m.pageMu.RLock()
	page := m.page
	m.pageMu.RUnlock()

	if page == nil || page.IsClosed() {
		return nil, apperr.WrapErrorWithReason(op, apperr.CodeBrowserNotReady, "page_not_active")
	}

	return page, nil
}

// classify maps a driver error: a closed target with no live page left is fatal,
// anything else is a recoverable action failure.
func (m *Manager) classify(op, stage string, err error) error {
	if errors.Is(err, playwright.ErrTargetClosed) {
		if _, pageErr := m.activePage(op); pageErr != nil {
			return apperr.Wrap(op, apperr.CodeBrowserNotReady, err, map[string]any{
				apperr.MetaReason: "target_closed",
				apperr.MetaStage:  stage,
			})
		}
	}

	code := apperr.CodeActionFailed
	if errors.Is(err, playwright.ErrTimeout) {
		code = apperr.CodeTimeout
	}

	return apperr.Wrap(op, code, err, map[string]any{
		apperr.MetaStage: stage,
	})
}

func (m *Manager) Close(ctx context.Context) (err error) {
	const op = "Close"
	logger := m.logger.With(zap.String(logg.Operation, op))

	_, step := tracing.StartSpan(ctx, m.tracer, logger, op)
	defer func() {
		step.End(err)
	}()

	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.ready.Store(false)

	if err := m.release(logger); err != nil {
		return apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "playwright_stop_failed",
		})
	}

	logger.Info("Browser closed")

	return nil
}

// release closes whatever Launch got to create and stops the driver. Callers hold opMu.
func (m *Manager) release(logger *zap.Logger) error {
	if m.browserContext != nil {
		if err := m.browserContext.Close(); err != nil {
			logger.Warn("Failed to close context", zap.Error(err))
		}
	}

	if m.browser != nil {
		if err := m.browser.Close(); err != nil {
			logger.Warn("Failed to close browser", zap.Error(err))
		}
	}

	pw := m.playwright
	m.browserContext, m.browser, m.playwright = nil, nil, nil

	m.pageMu.Lock()
	m.page = nil
	m.pageMu.Unlock()

	if pw == nil {
		return nil
	}

	return pw.Stop()
}

func (m *Manager) IsReady() bool {
	m.pageMu.RLock()
	defer m.pageMu.RUnlock()

	return m.ready.Load() && m.page != nil && !m.page.IsClosed()
}
