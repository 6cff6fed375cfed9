package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
)

// PlaywrightLauncher starts Firefox through Playwright. The Playwright
// driver and its Firefox build live in LaunchOptions.DriverDir.
type PlaywrightLauncher struct{}

func runOptions(dir string) *playwright.RunOptions {
	return &playwright.RunOptions{
		DriverDirectory: dir,
		Browsers:        []string{"firefox"},
		Verbose:         false,
	}
}

// Install downloads the Playwright driver and its Firefox build into dir
// unless they are already there.
func (PlaywrightLauncher) Install(_ context.Context, dir string) error {
	if err := playwright.Install(runOptions(dir)); err != nil {
		return fmt.Errorf("failed to install playwright firefox: %w", err)
	}
	return nil
}

// Launch starts Firefox from an installed driver. A browser that comes up
// after ctx is done is closed again.
func (PlaywrightLauncher) Launch(ctx context.Context, opts LaunchOptions) (Driver, error) {
	pw, err := playwright.Run(runOptions(opts.DriverDir))
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	}
	if len(opts.Preferences) > 0 {
		launchOpts.FirefoxUserPrefs = opts.Preferences
	}
	if opts.ProxyAddress != "" {
		launchOpts.Proxy = &playwright.Proxy{Server: "socks5://" + opts.ProxyAddress}
	}
	if opts.Timeout > 0 {
		launchOpts.Timeout = playwright.Float(float64(opts.Timeout.Milliseconds()))
	}

	browser, err := pw.Firefox.Launch(launchOpts)
	if err != nil {
		_ = pw.Stop() //nolint:errcheck // best effort cleanup
		return nil, fmt.Errorf("failed to launch firefox: %w", err)
	}

	browserCtx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		IgnoreHttpsErrors: playwright.Bool(opts.AcceptInsecureCerts),
	})
	if err != nil {
		_ = browser.Close() //nolint:errcheck // best effort cleanup
		_ = pw.Stop()       //nolint:errcheck // best effort cleanup
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}

	page, err := browserCtx.NewPage()
	if err != nil {
		_ = browser.Close() //nolint:errcheck // best effort cleanup
		_ = pw.Stop()       //nolint:errcheck // best effort cleanup
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	driver := &playwrightDriver{pw: pw, browser: browser, context: browserCtx, page: page}
	if err := ctx.Err(); err != nil {
		_ = driver.Close() //nolint:errcheck // the context error is returned
		return nil, err
	}
	return driver, nil
}

type playwrightDriver struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
}

func millis(d time.Duration) *float64 {
	return playwright.Float(float64(d.Milliseconds()))
}

// waitError maps Playwright timeouts to ErrWaitTimeout.
func waitError(selector string, err error) error {
	if errors.Is(err, playwright.ErrTimeout) {
		return fmt.Errorf("%w: %s", ErrWaitTimeout, selector)
	}
	return fmt.Errorf("wait for %s failed: %w", selector, err)
}

func (d *playwrightDriver) Find(selector string) (Element, error) {
	handle, err := d.page.QuerySelector(selector)
	if err != nil {
		return nil, fmt.Errorf("find %s failed: %w", selector, err)
	}
	if handle == nil {
		return nil, fmt.Errorf("%w: %s", ErrElementNotFound, selector)
	}
	return handleElement{handle}, nil
}

func (d *playwrightDriver) FindAll(selector string) ([]Element, error) {
	handles, err := d.page.QuerySelectorAll(selector)
	if err != nil {
		return nil, fmt.Errorf("find %s failed: %w", selector, err)
	}
	elements := make([]Element, 0, len(handles))
	for _, h := range handles {
		elements = append(elements, handleElement{h})
	}
	return elements, nil
}

func (d *playwrightDriver) WaitVisible(selector string, timeout time.Duration) (Element, error) {
	locator, err := d.waitVisible(selector, timeout)
	if err != nil {
		return nil, err
	}
	return locatorElement{locator}, nil
}

func (d *playwrightDriver) waitVisible(selector string, timeout time.Duration) (playwright.Locator, error) {
	locator := d.page.Locator(selector).First()
	err := locator.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: millis(timeout),
	})
	if err != nil {
		return nil, waitError(selector, err)
	}
	return locator, nil
}

func (d *playwrightDriver) WaitClickable(selector string, timeout time.Duration) (Element, error) {
	start := time.Now()
	locator, err := d.waitVisible(selector, timeout)
	if err != nil {
		return nil, err
	}

	remaining := timeout - time.Since(start)
	if remaining <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrWaitTimeout, selector)
	}

	// A trial click runs the actionability checks without clicking.
	err = locator.Click(playwright.LocatorClickOptions{
		Trial:   playwright.Bool(true),
		Timeout: millis(remaining),
	})
	if err != nil {
		return nil, waitError(selector, err)
	}
	return locatorElement{locator}, nil
}

func (d *playwrightDriver) Navigate(url string, timeout time.Duration) error {
	if _, err := d.page.Goto(url, playwright.PageGotoOptions{Timeout: millis(timeout)}); err != nil {
		return fmt.Errorf("failed to open %s: %w", url, err)
	}
	return nil
}

func (d *playwrightDriver) Refresh(timeout time.Duration) error {
	if _, err := d.page.Reload(playwright.PageReloadOptions{Timeout: millis(timeout)}); err != nil {
		return fmt.Errorf("failed to reload page: %w", err)
	}
	return nil
}

// Maximize sizes the viewport to the screen's available area. Playwright
// has no window manager call for Firefox.
func (d *playwrightDriver) Maximize() error {
	result, err := d.page.Evaluate("() => [screen.availWidth, screen.availHeight]")
	if err != nil {
		return fmt.Errorf("failed to read screen size: %w", err)
	}
	size, ok := result.([]interface{})
	if !ok || len(size) != 2 {
		return fmt.Errorf("unexpected screen size %v", result)
	}
	width, height := toInt(size[0]), toInt(size[1])
	if width <= 0 || height <= 0 {
		return fmt.Errorf("unexpected screen size %v", result)
	}
	return d.page.SetViewportSize(width, height)
}

func toInt(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

func (d *playwrightDriver) ClearCookies() error {
	return d.context.ClearCookies()
}

func (d *playwrightDriver) Close() error {
	var errs []error
	if err := d.browser.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close firefox: %w", err))
	}
	if err := d.pw.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("failed to stop playwright: %w", err))
	}
	return errors.Join(errs...)
}

type handleElement struct {
	handle playwright.ElementHandle
}

func (e handleElement) Click() error {
	return e.handle.Click()
}

func (e handleElement) Text() (string, error) {
	return e.handle.TextContent()
}

func (e handleElement) Attribute(name string) (string, error) {
	return e.handle.GetAttribute(name)
}

type locatorElement struct {
	locator playwright.Locator
}

func (e locatorElement) Click() error {
	return e.locator.Click()
}

func (e locatorElement) Text() (string, error) {
	return e.locator.TextContent()
}

func (e locatorElement) Attribute(name string) (string, error) {
	return e.locator.GetAttribute(name)
}
