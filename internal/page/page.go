// Package page defines the narrow set of DOM capabilities the form filler needs
// and provides implementations over a live Chrome tab and over static HTML.
package page

import (
	"context"
	"errors"
	"time"
)

// Handle identifies a DOM node for the duration of one fill pass.
// The empty handle denotes the document itself when used as a query scope.
type Handle string

// Document is the scope for document-wide queries.
const Document Handle = ""

// Key is a named non-character key press
type Key int

const (
	KeyTab Key = iota
	KeyBackspace
	KeyEnter
	// KeySelectAll is the platform select-all chord (Ctrl+A).
	KeySelectAll
)

func (k Key) String() string {
	switch k {
	case KeyTab:
		return "Tab"
	case KeyBackspace:
		return "Backspace"
	case KeyEnter:
		return "Enter"
	case KeySelectAll:
		return "SelectAll"
	}
	return "Unknown"
}

var (
	// ErrNotFound is returned when a query matches nothing or a handle no longer resolves.
	ErrNotFound = errors.New("element not found")
	// ErrTimeout is returned when WaitFor gives up.
	ErrTimeout = errors.New("timed out waiting for element")
)

// Page is everything the classifier and the filler are allowed to do to a form.
type Page interface {
	// Navigate loads url and returns once the document has loaded.
	Navigate(ctx context.Context, url string) error

	// QueryAll returns every node under scope matching selector, in document order.
	QueryAll(ctx context.Context, scope Handle, selector string) ([]Handle, error)
	// Query returns the first node under scope matching selector, or ErrNotFound.
	Query(ctx context.Context, scope Handle, selector string) (Handle, error)
	// Closest returns the nearest ancestor-or-self of h matching selector, or ErrNotFound.
	Closest(ctx context.Context, h Handle, selector string) (Handle, error)
	// Parent returns the parent element of h, or ErrNotFound.
	Parent(ctx context.Context, h Handle) (Handle, error)

	Text(ctx context.Context, h Handle) (string, error)
	// Attribute returns the attribute value and whether it is present.
	Attribute(ctx context.Context, h Handle, name string) (string, bool, error)
	Value(ctx context.Context, h Handle) (string, error)

	Focus(ctx context.Context, h Handle) error
	Click(ctx context.Context, h Handle) error
	// SetValue writes the value property directly, bypassing keystrokes.
	SetValue(ctx context.Context, h Handle, value string) error
	// DispatchEvents fires bubbling DOM events of the given names on h.
	DispatchEvents(ctx context.Context, h Handle, events ...string) error
	// Type sends text as keystrokes to the focused element.
	Type(ctx context.Context, text string) error
	Press(ctx context.Context, key Key) error
	// Blur removes focus from the active element.
	Blur(ctx context.Context) error

	// WaitFor blocks until selector matches a visible node or timeout elapses.
	WaitFor(ctx context.Context, selector string, timeout time.Duration) error
}

// Find is Query with ErrNotFound folded into the boolean.
func Find(ctx context.Context, p Page, scope Handle, selector string) (Handle, bool, error) {
	h, err := p.Query(ctx, scope, selector)
	if errors.Is(err, ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return h, true, nil
}

// Label returns the aria-label of h, falling back to its text content.
func Label(ctx context.Context, p Page, h Handle) (string, error) {
	if v, ok, err := p.Attribute(ctx, h, "aria-label"); err != nil {
		return "", err
	} else if ok && v != "" {
		return v, nil
	}
	return p.Text(ctx, h)
}
