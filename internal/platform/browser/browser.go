package browser

import (
	"fmt"

	"galleryscraper/internal/config"
	"galleryscraper/internal/logger"

	"github.com/playwright-community/playwright-go"
)

// Engine owns the Playwright runtime, a headless Chromium instance and the
// single page reused across all tasks. It is acquired once per run and
// released with Close.
type Engine struct {
	log  *logger.Logger
	pw   *playwright.Playwright
	br   playwright.Browser
	page playwright.Page

	navTimeout  float64 // milliseconds
	settleDelay float64 // milliseconds
}

func New(cfg config.Config) (*Engine, error) {
	log := logger.New("Browser")

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("playwright run: %w", err)
	}

	br, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
		Args: []string{
			"--no-sandbox",
			"--disable-dev-shm-usage",
			"--disable-blink-features=AutomationControlled",
		},
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("browser launch: %w", err)
	}

	page, err := br.NewPage()
	if err != nil {
		_ = br.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("page creation: %w", err)
	}

	return &Engine{
		log:         log,
		pw:          pw,
		br:          br,
		page:        page,
		navTimeout:  float64(cfg.NavTimeout.Milliseconds()),
		settleDelay: float64(cfg.SettleDelay.Milliseconds()),
	}, nil
}

// Navigate loads a listing page and waits the fixed settle delay so the
// client-side carousel has a chance to render. The delay is a heuristic, not
// a completion signal.
func (e *Engine) Navigate(url string) error {
	e.log.LogDebugf("navigating to %s", url)
	if _, err := e.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(e.navTimeout),
	}); err != nil {
		return fmt.Errorf("goto %s: %w", url, err)
	}
	e.page.WaitForTimeout(e.settleDelay)
	return nil
}

// Content returns the rendered HTML of the current page.
func (e *Engine) Content() (string, error) {
	return e.page.Content()
}

// Fetch navigates the shared page to an asset URL and returns the response
// body bytes.
func (e *Engine) Fetch(url string) ([]byte, error) {
	resp, err := e.page.Goto(url, playwright.PageGotoOptions{
		Timeout: playwright.Float(e.navTimeout),
	})
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	if resp == nil {
		return nil, fmt.Errorf("fetch %s: no response", url)
	}
	body, err := resp.Body()
	if err != nil {
		return nil, fmt.Errorf("fetch %s: read body: %w", url, err)
	}
	return body, nil
}

// Close releases the page, browser and Playwright runtime.
func (e *Engine) Close() {
	if e.page != nil {
		_ = e.page.Close()
	}
	if e.br != nil {
		_ = e.br.Close()
	}
	if e.pw != nil {
		_ = e.pw.Stop()
	}
}
