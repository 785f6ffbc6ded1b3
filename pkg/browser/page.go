// Package browser defines the narrow page-driving surface the booking flow
// needs and provides a Playwright-backed implementation of it. Keeping the
// flow behind these interfaces is what lets the drivers run against a
// scripted fake site in tests.
package browser

import "time"

// Element is a handle to zero or more matched page elements. Matching is
// lazy: Count reports how many elements the underlying query resolves to at
// call time.
type Element interface {
	Count() (int, error)
	First() Element
	Nth(i int) Element

	IsVisible() (bool, error)
	IsEnabled() (bool, error)
	IsChecked() (bool, error)

	Click(timeout time.Duration) error
	Fill(value string, timeout time.Duration) error
	Press(key string) error
	Focus() error
	ScrollIntoView() error

	// DispatchClick fires a synthetic click event directly on the node,
	// bypassing actionability checks. Last-resort confirmation strategy.
	DispatchClick() error

	InnerText() (string, error)
	AllInnerTexts() ([]string, error)
	GetAttribute(name string) (string, error)
	BoundingBox() (x, y, width, height float64, err error)

	// Locator narrows the match to descendants of the first matched element.
	Locator(selector string) Element
}

// Page is one browsing tab. The four By* methods are the independent signals
// the resilient locator degrades across.
type Page interface {
	// ByRole matches by ARIA role and accessible name. When exact is false
	// the name is treated as a case-insensitive pattern.
	ByRole(role, name string, exact bool) Element
	ByText(pattern string, exact bool) Element
	ByLabel(pattern string) Element
	BySelector(selector string) Element

	Goto(url string) error
	GoBack() error
	URL() string
	Title() string
	Content() (string, error)

	Screenshot(path string) error
	PressKey(key string) error
	MouseClick(x, y float64) error
	Evaluate(expression string) (any, error)

	WaitForLoad(timeout time.Duration) error
	Pause(d time.Duration)
}
