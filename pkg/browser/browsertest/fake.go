// Package browsertest provides an in-memory implementation of the browser
// interfaces for driver and engine tests. Tests register nodes describing the
// current screen and attach hooks that mutate the page the way the real site
// would, which lets the full flow run against a scripted wizard.
package browsertest

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/mkershaw/bookpilot/pkg/browser"
)

// browserElement keeps the method signatures below aligned with the real
// interface without repeating the package qualifier everywhere.
type browserElement = browser.Element

// Page must satisfy the driving interface the flow consumes.
var _ browser.Page = (*Page)(nil)

// Node is one fake page element.
type Node struct {
	ID        string // recorded in Page.Clicks; defaults to Name/Text/selector
	Role      string
	Name      string // accessible name
	Text      string // visible text
	Label     string // associated label
	Selectors []string
	Attrs     map[string]string

	Hidden   bool
	Disabled bool
	Checked  bool
	Removed  bool

	Value   string // last filled value
	Pressed []string

	X, Y, W, H float64

	Parent *Node

	OnClick func(p *Page, n *Node)
	OnFill  func(p *Page, n *Node, value string)
}

func (n *Node) id() string {
	switch {
	case n.ID != "":
		return n.ID
	case n.Name != "":
		return n.Name
	case n.Text != "":
		return n.Text
	case len(n.Selectors) > 0:
		return n.Selectors[0]
	default:
		return "<anon>"
	}
}

// Page is a scriptable fake of browser.Page.
type Page struct {
	Nodes []*Node

	URLValue   string
	TitleValue string

	Clicks      []string
	Keys        []string
	MouseClicks [][2]float64
	Evaluated   []string
	GotoURLs    []string
	Screenshots []string
	BackCount   int
	Pauses      int

	EvalResults map[string]any

	OnGoto     func(p *Page, url string)
	OnGoBack   func(p *Page)
	OnEvaluate func(p *Page, expression string)
}

func NewPage() *Page {
	return &Page{URLValue: "https://fake.test/booking", TitleValue: "Booking"}
}

// Add registers a node and returns it for further tweaking.
func (p *Page) Add(n *Node) *Node {
	p.Nodes = append(p.Nodes, n)
	return n
}

// AddButton is shorthand for the most common node shape in these tests.
func (p *Page) AddButton(name string, onClick func(p *Page, n *Node)) *Node {
	return p.Add(&Node{Role: "button", Name: name, Text: name, OnClick: onClick})
}

// Remove marks a node gone, as if the site re-rendered without it.
func (p *Page) Remove(n *Node) {
	n.Removed = true
}

func matchPattern(pattern, value string, exact bool) bool {
	if exact {
		return pattern == value
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return strings.Contains(strings.ToLower(value), strings.ToLower(pattern))
	}
	return re.MatchString(value)
}

func (p *Page) selectNodes(pred func(*Node) bool) []*Node {
	var out []*Node
	for _, n := range p.Nodes {
		if n.Removed {
			continue
		}
		if pred(n) {
			out = append(out, n)
		}
	}
	return out
}

func (p *Page) ByRole(role, name string, exact bool) browserElement {
	return p.query(func(n *Node) bool {
		if n.Role != role {
			return false
		}
		if name == "" {
			return true
		}
		return matchPattern(name, n.Name, exact)
	})
}

func (p *Page) ByText(pattern string, exact bool) browserElement {
	return p.query(func(n *Node) bool {
		return matchPattern(pattern, n.Text, exact)
	})
}

func (p *Page) ByLabel(pattern string) browserElement {
	return p.query(func(n *Node) bool {
		return matchPattern(pattern, n.Label, false)
	})
}

func (p *Page) BySelector(selector string) browserElement {
	return p.query(func(n *Node) bool {
		for _, s := range n.Selectors {
			if s == selector {
				return true
			}
		}
		return false
	})
}

func (p *Page) query(pred func(*Node) bool) *Query {
	return &Query{page: p, resolve: func() []*Node { return p.selectNodes(pred) }}
}

func (p *Page) Goto(url string) error {
	p.GotoURLs = append(p.GotoURLs, url)
	p.URLValue = url
	if p.OnGoto != nil {
		p.OnGoto(p, url)
	}
	return nil
}

func (p *Page) GoBack() error {
	p.BackCount++
	if p.OnGoBack != nil {
		p.OnGoBack(p)
	}
	return nil
}

func (p *Page) URL() string { return p.URLValue }

func (p *Page) Title() string { return p.TitleValue }

func (p *Page) Content() (string, error) {
	return "<html><body>fake</body></html>", nil
}

func (p *Page) Screenshot(path string) error {
	p.Screenshots = append(p.Screenshots, path)
	return os.WriteFile(path, []byte("fake screenshot"), 0644)
}

func (p *Page) PressKey(key string) error {
	p.Keys = append(p.Keys, key)
	return nil
}

func (p *Page) MouseClick(x, y float64) error {
	p.MouseClicks = append(p.MouseClicks, [2]float64{x, y})
	return nil
}

func (p *Page) Evaluate(expression string) (any, error) {
	p.Evaluated = append(p.Evaluated, expression)
	if p.OnEvaluate != nil {
		p.OnEvaluate(p, expression)
	}
	if p.EvalResults != nil {
		if v, ok := p.EvalResults[expression]; ok {
			return v, nil
		}
	}
	return nil, nil
}

func (p *Page) WaitForLoad(timeout time.Duration) error { return nil }

func (p *Page) Pause(d time.Duration) { p.Pauses++ }

// Query implements browser.Element over a lazy node predicate, so polling
// callers observe page mutations made by click hooks.
type Query struct {
	page    *Page
	resolve func() []*Node
}

func (q *Query) nodes() []*Node { return q.resolve() }

func (q *Query) first() (*Node, error) {
	nodes := q.nodes()
	if len(nodes) == 0 {
		return nil, errors.New("no element matched")
	}
	return nodes[0], nil
}

func (q *Query) Count() (int, error) {
	return len(q.nodes()), nil
}

func (q *Query) First() browserElement {
	return &Query{page: q.page, resolve: func() []*Node {
		nodes := q.resolve()
		if len(nodes) == 0 {
			return nil
		}
		return nodes[:1]
	}}
}

func (q *Query) Nth(i int) browserElement {
	return &Query{page: q.page, resolve: func() []*Node {
		nodes := q.resolve()
		if i < 0 || i >= len(nodes) {
			return nil
		}
		return nodes[i : i+1]
	}}
}

func (q *Query) IsVisible() (bool, error) {
	nodes := q.nodes()
	return len(nodes) > 0 && !nodes[0].Hidden, nil
}

func (q *Query) IsEnabled() (bool, error) {
	nodes := q.nodes()
	return len(nodes) > 0 && !nodes[0].Disabled, nil
}

func (q *Query) IsChecked() (bool, error) {
	nodes := q.nodes()
	return len(nodes) > 0 && nodes[0].Checked, nil
}

func (q *Query) Click(timeout time.Duration) error {
	n, err := q.first()
	if err != nil {
		return err
	}
	if n.Hidden {
		return fmt.Errorf("element %q not visible", n.id())
	}
	if n.Disabled {
		return fmt.Errorf("element %q disabled", n.id())
	}
	q.page.Clicks = append(q.page.Clicks, n.id())
	if n.OnClick != nil {
		n.OnClick(q.page, n)
	}
	return nil
}

func (q *Query) Fill(value string, timeout time.Duration) error {
	n, err := q.first()
	if err != nil {
		return err
	}
	if n.Disabled {
		return fmt.Errorf("element %q disabled", n.id())
	}
	n.Value = value
	if n.OnFill != nil {
		n.OnFill(q.page, n, value)
	}
	return nil
}

func (q *Query) Press(key string) error {
	n, err := q.first()
	if err != nil {
		return err
	}
	n.Pressed = append(n.Pressed, key)
	return nil
}

func (q *Query) Focus() error {
	_, err := q.first()
	return err
}

func (q *Query) ScrollIntoView() error {
	_, err := q.first()
	return err
}

func (q *Query) DispatchClick() error {
	n, err := q.first()
	if err != nil {
		return err
	}
	q.page.Clicks = append(q.page.Clicks, n.id())
	if n.OnClick != nil {
		n.OnClick(q.page, n)
	}
	return nil
}

func (q *Query) InnerText() (string, error) {
	n, err := q.first()
	if err != nil {
		return "", err
	}
	return n.Text, nil
}

func (q *Query) AllInnerTexts() ([]string, error) {
	var out []string
	for _, n := range q.nodes() {
		out = append(out, n.Text)
	}
	return out, nil
}

func (q *Query) GetAttribute(name string) (string, error) {
	n, err := q.first()
	if err != nil {
		return "", err
	}
	return n.Attrs[name], nil
}

func (q *Query) BoundingBox() (float64, float64, float64, float64, error) {
	n, err := q.first()
	if err != nil {
		return 0, 0, 0, 0, err
	}
	if n.W == 0 && n.H == 0 {
		return 10, 10, 120, 32, nil
	}
	return n.X, n.Y, n.W, n.H, nil
}

func (q *Query) Locator(selector string) browserElement {
	return &Query{page: q.page, resolve: func() []*Node {
		parents := q.resolve()
		if len(parents) == 0 {
			return nil
		}
		return q.page.selectNodes(func(n *Node) bool {
			if n.Parent != parents[0] {
				return false
			}
			for _, s := range n.Selectors {
				if s == selector {
					return true
				}
			}
			return false
		})
	}}
}
