package page

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Event is a DOM event recorded by Static
type Event struct {
	Target Handle
	Name   string
}

// Static is an in-memory Page over a parsed HTML document.
// It backs offline inspection of saved forms and the package tests.
// Interactions mutate the parsed tree the way a browser would mutate the live DOM
// for the handful of ARIA widgets form products render.
type Static struct {
	doc     *goquery.Document
	handles map[*html.Node]Handle
	nodes   map[Handle]*html.Node
	next    int

	focused   *html.Node
	selectAll bool

	URL    string
	Clicks []Handle
	Events []Event
	Keys   []string
	Typed  []string

	// OnEvent runs after each dispatched event; tests use it to emulate form-side validation.
	OnEvent func(s *Static, target Handle, name string)
}

var _ Page = (*Static)(nil)

// NewStatic parses markup into a Static page.
func NewStatic(markup string) (*Static, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return &Static{
		doc:     doc,
		handles: make(map[*html.Node]Handle),
		nodes:   make(map[Handle]*html.Node),
	}, nil
}

func (s *Static) handle(n *html.Node) Handle {
	if h, ok := s.handles[n]; ok {
		return h
	}
	s.next++
	h := Handle(fmt.Sprintf("n%d", s.next))
	s.handles[n] = h
	s.nodes[h] = n
	return h
}

func (s *Static) node(h Handle) (*html.Node, error) {
	if h == Document {
		return s.doc.Nodes[0], nil
	}
	n, ok := s.nodes[h]
	if !ok || !attached(n) {
		return nil, fmt.Errorf("handle %q: %w", h, ErrNotFound)
	}
	return n, nil
}

func (s *Static) selection(h Handle) (*goquery.Selection, error) {
	n, err := s.node(h)
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromNode(n).Selection, nil
}

// Navigate records the URL; the document is already loaded.
func (s *Static) Navigate(_ context.Context, url string) error {
	s.URL = url
	return nil
}

func (s *Static) QueryAll(_ context.Context, scope Handle, selector string) ([]Handle, error) {
	sel, err := s.selection(scope)
	if err != nil {
		return nil, err
	}
	found := sel.Find(selector)
	out := make([]Handle, 0, found.Length())
	for _, n := range found.Nodes {
		out = append(out, s.handle(n))
	}
	return out, nil
}

func (s *Static) Query(ctx context.Context, scope Handle, selector string) (Handle, error) {
	all, err := s.QueryAll(ctx, scope, selector)
	if err != nil {
		return "", err
	}
	if len(all) == 0 {
		return "", fmt.Errorf("%s: %w", selector, ErrNotFound)
	}
	return all[0], nil
}

func (s *Static) Closest(_ context.Context, h Handle, selector string) (Handle, error) {
	sel, err := s.selection(h)
	if err != nil {
		return "", err
	}
	c := sel.Closest(selector)
	if c.Length() == 0 {
		return "", fmt.Errorf("closest %s: %w", selector, ErrNotFound)
	}
	return s.handle(c.Nodes[0]), nil
}

func (s *Static) Parent(_ context.Context, h Handle) (Handle, error) {
	n, err := s.node(h)
	if err != nil {
		return "", err
	}
	if n.Parent == nil || n.Parent.Type != html.ElementNode {
		return "", fmt.Errorf("parent of %q: %w", h, ErrNotFound)
	}
	return s.handle(n.Parent), nil
}

func (s *Static) Text(_ context.Context, h Handle) (string, error) {
	sel, err := s.selection(h)
	if err != nil {
		return "", err
	}
	return sel.Text(), nil
}

func (s *Static) Attribute(_ context.Context, h Handle, name string) (string, bool, error) {
	n, err := s.node(h)
	if err != nil {
		return "", false, err
	}
	v, ok := getAttr(n, name)
	return v, ok, nil
}

func (s *Static) Value(ctx context.Context, h Handle) (string, error) {
	n, err := s.node(h)
	if err != nil {
		return "", err
	}
	if v, ok := getAttr(n, "value"); ok {
		return v, nil
	}
	if n.Data == "textarea" {
		return s.Text(ctx, h)
	}
	return "", nil
}

func (s *Static) Focus(_ context.Context, h Handle) error {
	n, err := s.node(h)
	if err != nil {
		return err
	}
	s.focused = n
	s.selectAll = false
	return nil
}

func (s *Static) Click(_ context.Context, h Handle) error {
	n, err := s.node(h)
	if err != nil {
		return err
	}
	s.Clicks = append(s.Clicks, h)

	if n.Data == "input" || n.Data == "textarea" {
		s.focused = n
		s.selectAll = false
	}

	role, _ := getAttr(n, "role")
	switch role {
	case "radio":
		group := enclosing(n, "radiogroup", "listitem")
		for _, r := range descendantsWithRole(group, "radio") {
			setAttr(r, "aria-checked", "false")
		}
		setAttr(n, "aria-checked", "true")
	case "checkbox":
		if v, _ := getAttr(n, "aria-checked"); v == "true" {
			setAttr(n, "aria-checked", "false")
		} else {
			setAttr(n, "aria-checked", "true")
		}
	case "listbox":
		setAttr(n, "aria-expanded", "true")
	case "option":
		box := enclosing(n, "listbox")
		for _, o := range descendantsWithRole(box, "option") {
			setAttr(o, "aria-selected", "false")
		}
		setAttr(n, "aria-selected", "true")
		if box != nil && box != n {
			setAttr(box, "aria-expanded", "false")
			if v, ok := getAttr(n, "data-value"); ok {
				setAttr(box, "data-value", v)
			}
		}
	}
	return nil
}

func (s *Static) SetValue(_ context.Context, h Handle, value string) error {
	n, err := s.node(h)
	if err != nil {
		return err
	}
	setAttr(n, "value", value)
	return nil
}

func (s *Static) DispatchEvents(_ context.Context, h Handle, events ...string) error {
	if _, err := s.node(h); err != nil {
		return err
	}
	for _, name := range events {
		s.Events = append(s.Events, Event{Target: h, Name: name})
		if s.OnEvent != nil {
			s.OnEvent(s, h, name)
		}
	}
	return nil
}

func (s *Static) Type(_ context.Context, text string) error {
	if s.focused == nil {
		return fmt.Errorf("type %q: no focused element: %w", text, ErrNotFound)
	}
	cur, _ := getAttr(s.focused, "value")
	if s.selectAll {
		cur = ""
		s.selectAll = false
	}
	setAttr(s.focused, "value", cur+text)
	s.Typed = append(s.Typed, text)
	return nil
}

func (s *Static) Press(_ context.Context, key Key) error {
	s.Keys = append(s.Keys, key.String())
	switch key {
	case KeySelectAll:
		s.selectAll = true
	case KeyBackspace:
		if s.focused == nil {
			return nil
		}
		cur, _ := getAttr(s.focused, "value")
		if s.selectAll {
			cur = ""
		} else if cur != "" {
			_, size := utf8.DecodeLastRuneInString(cur)
			cur = cur[:len(cur)-size]
		}
		setAttr(s.focused, "value", cur)
		s.selectAll = false
	case KeyTab:
		if s.focused != nil {
			h := s.handle(s.focused)
			s.focused = nil
			s.Events = append(s.Events, Event{Target: h, Name: "blur"})
			if s.OnEvent != nil {
				s.OnEvent(s, h, "blur")
			}
		}
	}
	return nil
}

func (s *Static) Blur(_ context.Context) error {
	s.focused = nil
	s.selectAll = false
	return nil
}

// WaitFor succeeds immediately when selector matches; a static document never changes on its own.
func (s *Static) WaitFor(ctx context.Context, selector string, _ time.Duration) error {
	all, err := s.QueryAll(ctx, Document, selector)
	if err != nil {
		return err
	}
	if len(all) == 0 {
		return fmt.Errorf("%s: %w", selector, ErrTimeout)
	}
	return nil
}

// Remove detaches the node from the document.
func (s *Static) Remove(h Handle) error {
	n, err := s.node(h)
	if err != nil {
		return err
	}
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
	return nil
}

// HTML renders the current document.
func (s *Static) HTML() (string, error) {
	return s.doc.Html()
}

func getAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func attached(n *html.Node) bool {
	for ; n != nil; n = n.Parent {
		if n.Type == html.DocumentNode {
			return true
		}
	}
	return false
}

// enclosing returns the nearest ancestor-or-self with one of roles, in priority order.
func enclosing(n *html.Node, roles ...string) *html.Node {
	for _, role := range roles {
		for p := n; p != nil; p = p.Parent {
			if v, _ := getAttr(p, "role"); v == role {
				return p
			}
		}
	}
	return nil
}

func descendantsWithRole(root *html.Node, role string) []*html.Node {
	if root == nil {
		return nil
	}
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode {
				if v, _ := getAttr(c, "role"); v == role {
					out = append(out, c)
				}
			}
			walk(c)
		}
	}
	walk(root)
	return out
}
