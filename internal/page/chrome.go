package page

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
)

// handleAttr tags every node handed out by Chrome so later calls can find it again
// with a plain attribute selector. Tagging happens inside the page so the Go side
// never holds onto cdp.Node values that race with the chromedp event loop.
const handleAttr = "data-formfill-id"

// tagScript defines window.__formfill once per document. It resolves scopes,
// tags matches, and returns their ids.
const tagScript = `(function() {
  if (window.__formfill) { return true; }
  let seq = 0;
  const attr = %q;
  const tag = (el) => {
    if (!el.hasAttribute(attr)) { el.setAttribute(attr, 'ff' + (++seq)); }
    return el.getAttribute(attr);
  };
  const byId = (id) => id === '' ? document : document.querySelector('[' + attr + '="' + id + '"]');
  window.__formfill = {
    queryAll(scope, sel) {
      const root = byId(scope);
      if (!root) { return null; }
      return Array.from(root.querySelectorAll(sel)).map(tag);
    },
    closest(id, sel) {
      const el = byId(id);
      if (!el || el === document) { return null; }
      const c = el.closest(sel);
      return c ? tag(c) : '';
    },
    parent(id) {
      const el = byId(id);
      if (!el || el === document) { return null; }
      return el.parentElement ? tag(el.parentElement) : '';
    },
    attr(id, name) {
      const el = byId(id);
      if (!el || el === document) { return null; }
      return { present: el.hasAttribute(name), value: el.getAttribute(name) || '' };
    },
    text(id) {
      const el = byId(id);
      if (!el) { return null; }
      return el === document ? document.body.textContent : el.textContent;
    },
    value(id) {
      const el = byId(id);
      if (!el || el === document) { return null; }
      return el.value === undefined ? '' : String(el.value);
    },
    dispatch(id, names) {
      const el = byId(id);
      if (!el || el === document) { return false; }
      for (const n of names) { el.dispatchEvent(new Event(n, { bubbles: true })); }
      return true;
    },
    blur() {
      if (document.activeElement) { document.activeElement.blur(); }
      return true;
    },
  };
  return true;
})()`

// Chrome is a Page over a chromedp tab context.
type Chrome struct {
	tab context.Context
}

var _ Page = (*Chrome)(nil)

// NewChrome wraps a chromedp tab context (from chromedp.NewContext).
func NewChrome(tab context.Context) *Chrome {
	return &Chrome{tab: tab}
}

// run executes actions on the tab, aborting when either ctx or the tab ends.
func (c *Chrome) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(c.tab)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(runCtx, actions...)
}

func (c *Chrome) eval(ctx context.Context, call string, out any) error {
	expr := fmt.Sprintf(tagScript, handleAttr) + ";\n" + call
	return c.run(ctx, chromedp.Evaluate(expr, out))
}

func selectorFor(h Handle) string {
	return fmt.Sprintf(`[%s=%q]`, handleAttr, string(h))
}

func jsArgs(args ...any) string {
	out := ""
	for i, a := range args {
		b, _ := json.Marshal(a)
		if i > 0 {
			out += ", "
		}
		out += string(b)
	}
	return out
}

func (c *Chrome) Navigate(ctx context.Context, url string) error {
	if err := c.run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	return nil
}

func (c *Chrome) QueryAll(ctx context.Context, scope Handle, selector string) ([]Handle, error) {
	var ids *[]string
	if err := c.eval(ctx, fmt.Sprintf("window.__formfill.queryAll(%s)", jsArgs(string(scope), selector)), &ids); err != nil {
		return nil, fmt.Errorf("query %s: %w", selector, err)
	}
	if ids == nil {
		return nil, fmt.Errorf("scope %q: %w", scope, ErrNotFound)
	}
	out := make([]Handle, len(*ids))
	for i, id := range *ids {
		out[i] = Handle(id)
	}
	return out, nil
}

func (c *Chrome) Query(ctx context.Context, scope Handle, selector string) (Handle, error) {
	all, err := c.QueryAll(ctx, scope, selector)
	if err != nil {
		return "", err
	}
	if len(all) == 0 {
		return "", fmt.Errorf("%s: %w", selector, ErrNotFound)
	}
	return all[0], nil
}

func (c *Chrome) lookup(ctx context.Context, call string) (Handle, error) {
	var id *string
	if err := c.eval(ctx, call, &id); err != nil {
		return "", err
	}
	if id == nil || *id == "" {
		return "", ErrNotFound
	}
	return Handle(*id), nil
}

func (c *Chrome) Closest(ctx context.Context, h Handle, selector string) (Handle, error) {
	return c.lookup(ctx, fmt.Sprintf("window.__formfill.closest(%s)", jsArgs(string(h), selector)))
}

func (c *Chrome) Parent(ctx context.Context, h Handle) (Handle, error) {
	return c.lookup(ctx, fmt.Sprintf("window.__formfill.parent(%s)", jsArgs(string(h))))
}

func (c *Chrome) Text(ctx context.Context, h Handle) (string, error) {
	var text *string
	if err := c.eval(ctx, fmt.Sprintf("window.__formfill.text(%s)", jsArgs(string(h))), &text); err != nil {
		return "", err
	}
	if text == nil {
		return "", fmt.Errorf("handle %q: %w", h, ErrNotFound)
	}
	return *text, nil
}

type attrResult struct {
	Present bool   `json:"present"`
	Value   string `json:"value"`
}

func (c *Chrome) Attribute(ctx context.Context, h Handle, name string) (string, bool, error) {
	var res *attrResult
	if err := c.eval(ctx, fmt.Sprintf("window.__formfill.attr(%s)", jsArgs(string(h), name)), &res); err != nil {
		return "", false, err
	}
	if res == nil {
		return "", false, fmt.Errorf("handle %q: %w", h, ErrNotFound)
	}
	return res.Value, res.Present, nil
}

func (c *Chrome) Value(ctx context.Context, h Handle) (string, error) {
	var v *string
	if err := c.eval(ctx, fmt.Sprintf("window.__formfill.value(%s)", jsArgs(string(h))), &v); err != nil {
		return "", err
	}
	if v == nil {
		return "", fmt.Errorf("handle %q: %w", h, ErrNotFound)
	}
	return *v, nil
}

func (c *Chrome) Focus(ctx context.Context, h Handle) error {
	return c.run(ctx, chromedp.Focus(selectorFor(h), chromedp.ByQuery))
}

func (c *Chrome) Click(ctx context.Context, h Handle) error {
	return c.run(ctx, chromedp.Click(selectorFor(h), chromedp.ByQuery, chromedp.NodeVisible))
}

func (c *Chrome) SetValue(ctx context.Context, h Handle, value string) error {
	return c.run(ctx, chromedp.SetValue(selectorFor(h), value, chromedp.ByQuery))
}

func (c *Chrome) DispatchEvents(ctx context.Context, h Handle, events ...string) error {
	var ok bool
	if err := c.eval(ctx, fmt.Sprintf("window.__formfill.dispatch(%s)", jsArgs(string(h), events)), &ok); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("handle %q: %w", h, ErrNotFound)
	}
	return nil
}

func (c *Chrome) Type(ctx context.Context, text string) error {
	return c.run(ctx, chromedp.KeyEvent(text))
}

func (c *Chrome) Press(ctx context.Context, key Key) error {
	switch key {
	case KeyTab:
		return c.run(ctx, chromedp.KeyEvent(kb.Tab))
	case KeyBackspace:
		return c.run(ctx, chromedp.KeyEvent(kb.Backspace))
	case KeyEnter:
		return c.run(ctx, chromedp.KeyEvent(kb.Enter))
	case KeySelectAll:
		return c.run(ctx, chromedp.KeyEvent("a", chromedp.KeyModifiers(input.ModifierCtrl)))
	}
	return fmt.Errorf("unsupported key %v", key)
}

func (c *Chrome) Blur(ctx context.Context) error {
	var ok bool
	return c.eval(ctx, "window.__formfill.blur()", &ok)
}

// WaitFor waits without a deadline of its own when timeout is not positive.
func (c *Chrome) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	waitCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := c.run(waitCtx, chromedp.WaitVisible(selector, chromedp.ByQuery)); err != nil {
		if waitCtx.Err() != nil && ctx.Err() == nil {
			return fmt.Errorf("%s after %s: %w", selector, timeout, ErrTimeout)
		}
		return err
	}
	return nil
}
