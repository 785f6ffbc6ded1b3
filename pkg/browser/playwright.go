package browser

import (
	"regexp"
	"time"

	pw "github.com/playwright-community/playwright-go"
)

// pwPage adapts a playwright page to the Page interface.
type pwPage struct {
	page pw.Page
}

// nameMatcher turns a name/text argument into what playwright expects: the
// literal string for exact matches, a case-insensitive regexp otherwise. An
// invalid pattern falls back to a literal match rather than panicking.
func nameMatcher(pattern string, exact bool) any {
	if exact {
		return pattern
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return pattern
	}
	return re
}

func (p *pwPage) ByRole(role, name string, exact bool) Element {
	opts := pw.PageGetByRoleOptions{}
	if name != "" {
		opts.Name = nameMatcher(name, exact)
		if exact {
			opts.Exact = pw.Bool(true)
		}
	}
	return &pwElement{locator: p.page.GetByRole(pw.AriaRole(role), opts)}
}

func (p *pwPage) ByText(pattern string, exact bool) Element {
	opts := pw.PageGetByTextOptions{}
	if exact {
		opts.Exact = pw.Bool(true)
	}
	return &pwElement{locator: p.page.GetByText(nameMatcher(pattern, exact), opts)}
}

func (p *pwPage) ByLabel(pattern string) Element {
	return &pwElement{locator: p.page.GetByLabel(nameMatcher(pattern, false))}
}

func (p *pwPage) BySelector(selector string) Element {
	return &pwElement{locator: p.page.Locator(selector)}
}

func (p *pwPage) Goto(url string) error {
	_, err := p.page.Goto(url, pw.PageGotoOptions{
		WaitUntil: pw.WaitUntilStateDomcontentloaded,
	})
	return err
}

func (p *pwPage) GoBack() error {
	_, err := p.page.GoBack()
	return err
}

func (p *pwPage) URL() string {
	return p.page.URL()
}

func (p *pwPage) Title() string {
	title, err := p.page.Title()
	if err != nil {
		return ""
	}
	return title
}

func (p *pwPage) Content() (string, error) {
	return p.page.Content()
}

func (p *pwPage) Screenshot(path string) error {
	_, err := p.page.Screenshot(pw.PageScreenshotOptions{
		Path:     pw.String(path),
		FullPage: pw.Bool(true),
	})
	return err
}

func (p *pwPage) PressKey(key string) error {
	return p.page.Keyboard().Press(key)
}

func (p *pwPage) MouseClick(x, y float64) error {
	return p.page.Mouse().Click(x, y)
}

func (p *pwPage) Evaluate(expression string) (any, error) {
	return p.page.Evaluate(expression)
}

func (p *pwPage) WaitForLoad(timeout time.Duration) error {
	return p.page.WaitForLoadState(pw.PageWaitForLoadStateOptions{
		State:   pw.LoadStateDomcontentloaded,
		Timeout: pw.Float(float64(timeout.Milliseconds())),
	})
}

func (p *pwPage) Pause(d time.Duration) {
	p.page.WaitForTimeout(float64(d.Milliseconds()))
}

// pwElement adapts a playwright locator to the Element interface.
type pwElement struct {
	locator pw.Locator
}

func (e *pwElement) Count() (int, error) {
	return e.locator.Count()
}

func (e *pwElement) First() Element {
	return &pwElement{locator: e.locator.First()}
}

func (e *pwElement) Nth(i int) Element {
	return &pwElement{locator: e.locator.Nth(i)}
}

func (e *pwElement) IsVisible() (bool, error) {
	return e.locator.IsVisible()
}

func (e *pwElement) IsEnabled() (bool, error) {
	return e.locator.IsEnabled()
}

func (e *pwElement) IsChecked() (bool, error) {
	return e.locator.IsChecked()
}

func (e *pwElement) Click(timeout time.Duration) error {
	return e.locator.Click(pw.LocatorClickOptions{
		Timeout: pw.Float(float64(timeout.Milliseconds())),
	})
}

func (e *pwElement) Fill(value string, timeout time.Duration) error {
	return e.locator.Fill(value, pw.LocatorFillOptions{
		Timeout: pw.Float(float64(timeout.Milliseconds())),
	})
}

func (e *pwElement) Press(key string) error {
	return e.locator.Press(key)
}

func (e *pwElement) Focus() error {
	return e.locator.Focus()
}

func (e *pwElement) ScrollIntoView() error {
	return e.locator.ScrollIntoViewIfNeeded()
}

func (e *pwElement) DispatchClick() error {
	return e.locator.DispatchEvent("click", nil)
}

func (e *pwElement) InnerText() (string, error) {
	return e.locator.InnerText()
}

func (e *pwElement) AllInnerTexts() ([]string, error) {
	return e.locator.AllInnerTexts()
}

func (e *pwElement) GetAttribute(name string) (string, error) {
	return e.locator.GetAttribute(name)
}

func (e *pwElement) BoundingBox() (float64, float64, float64, float64, error) {
	box, err := e.locator.BoundingBox()
	if err != nil {
		return 0, 0, 0, 0, err
	}
	if box == nil {
		return 0, 0, 0, 0, nil
	}
	return box.X, box.Y, box.Width, box.Height, nil
}

func (e *pwElement) Locator(selector string) Element {
	return &pwElement{locator: e.locator.Locator(selector)}
}
