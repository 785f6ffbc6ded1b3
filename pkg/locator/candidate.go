// Package locator implements the resilient element-location strategy. The
// target form is a third-party SPA whose markup and class names can change on
// any redeploy, so every lookup degrades across several independent signals
// (ARIA role and name, visible text, label, CSS hooks) instead of depending
// on one.
package locator

import (
	"fmt"
	"strings"

	"github.com/mkershaw/bookpilot/pkg/browser"
)

// Kind discriminates the candidate strategy variants.
type Kind int

const (
	KindRole Kind = iota
	KindText
	KindLabel
	KindCSS
)

// Candidate is one way of locating an element. Construct via the By*
// helpers; candidates are ephemeral and built per call site.
type Candidate struct {
	Kind     Kind
	Role     string
	Name     string
	Pattern  string
	Selector string
	Exact    bool
}

// ByRole matches by ARIA role with a case-insensitive name pattern.
func ByRole(role, namePattern string) Candidate {
	return Candidate{Kind: KindRole, Role: role, Name: namePattern}
}

// ByRoleExact matches by ARIA role with an exact accessible name.
func ByRoleExact(role, name string) Candidate {
	return Candidate{Kind: KindRole, Role: role, Name: name, Exact: true}
}

// ByText matches visible text against a case-insensitive pattern.
func ByText(pattern string) Candidate {
	return Candidate{Kind: KindText, Pattern: pattern}
}

// ByTextExact matches visible text exactly.
func ByTextExact(text string) Candidate {
	return Candidate{Kind: KindText, Pattern: text, Exact: true}
}

// ByLabel matches form controls by their associated label.
func ByLabel(pattern string) Candidate {
	return Candidate{Kind: KindLabel, Pattern: pattern}
}

// ByCSS matches a raw CSS selector.
func ByCSS(selector string) Candidate {
	return Candidate{Kind: KindCSS, Selector: selector}
}

// ByTestID is a convenience for the data-testid hooks some screens expose.
func ByTestID(id string) Candidate {
	return ByCSS(fmt.Sprintf(`[data-testid=%q]`, id))
}

// Element resolves the candidate to a (possibly empty) element handle.
func (c Candidate) Element(page browser.Page) browser.Element {
	switch c.Kind {
	case KindRole:
		return page.ByRole(c.Role, c.Name, c.Exact)
	case KindText:
		return page.ByText(c.Pattern, c.Exact)
	case KindLabel:
		return page.ByLabel(c.Pattern)
	case KindCSS:
		return page.BySelector(c.Selector)
	default:
		panic(fmt.Sprintf("unknown candidate kind %d", c.Kind))
	}
}

func (c Candidate) String() string {
	switch c.Kind {
	case KindRole:
		if c.Exact {
			return fmt.Sprintf("role=%s name==%q", c.Role, c.Name)
		}
		return fmt.Sprintf("role=%s name~%q", c.Role, c.Name)
	case KindText:
		if c.Exact {
			return fmt.Sprintf("text==%q", c.Pattern)
		}
		return fmt.Sprintf("text~%q", c.Pattern)
	case KindLabel:
		return fmt.Sprintf("label~%q", c.Pattern)
	case KindCSS:
		return fmt.Sprintf("css=%q", c.Selector)
	default:
		return "unknown"
	}
}

// Resolve tries each candidate in declaration order and returns the first one
// that resolves to at least one element. There is no retry within a single
// candidate: absence means "try the next strategy". All candidates exhausted
// means not found; callers decide whether that is fatal.
func Resolve(page browser.Page, candidates []Candidate) (browser.Element, bool) {
	for _, c := range candidates {
		el := c.Element(page)
		count, err := el.Count()
		if err != nil || count == 0 {
			continue
		}
		return el.First(), true
	}
	return nil, false
}

// ResolveVisible is Resolve with an additional visibility requirement, used
// by the menu-detection probes where a hidden match is as good as no match.
func ResolveVisible(page browser.Page, candidates []Candidate) (browser.Element, bool) {
	for _, c := range candidates {
		el := c.Element(page)
		count, err := el.Count()
		if err != nil || count == 0 {
			continue
		}
		first := el.First()
		visible, err := first.IsVisible()
		if err != nil || !visible {
			continue
		}
		return first, true
	}
	return nil, false
}

// Describe renders a candidate list for diagnostics. It is the logging
// counterpart of Resolve: when a required element cannot be found, the
// transcript shows exactly which strategies were tried.
func Describe(candidates []Candidate) string {
	parts := make([]string, len(candidates))
	for i, c := range candidates {
		parts[i] = c.String()
	}
	return strings.Join(parts, " -> ")
}
