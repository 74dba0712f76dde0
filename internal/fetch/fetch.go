// Package fetch retrieves form markup for offline inspection, over plain HTTP
// or through a headless browser when the form is rendered by scripts.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is the user agent string for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (compatible; formfill/1.0)"

// MaxBodyBytes caps how much of a response is read. Form pages are well under it.
const MaxBodyBytes = 8 << 20

// signInHosts serve the login page a restricted form redirects to.
var signInHosts = map[string]bool{
	"accounts.google.com": true,
}

// ErrSignInRequired means the form only opens for a signed-in account, so its
// questions cannot be read over plain HTTP.
var ErrSignInRequired = errors.New("form requires sign-in")

// Result is one fetched form page.
type Result struct {
	URL string
	// FinalURL is where redirects ended.
	FinalURL    string
	HTML        string
	ContentType string
	StatusCode  int
}

// Error represents an error during URL fetching.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures the fetch behavior.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Headers   map[string]string
}

// DefaultOptions returns the options used by Load.
func DefaultOptions() *Options {
	return &Options{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
		Headers:   map[string]string{"Accept-Language": "en"},
	}
}

// URL fetches a form page over HTTP. A non-200 status returns the Result along
// with the error; a redirect to a sign-in page wraps ErrSignInRequired.
func URL(ctx context.Context, formURL string, opts *Options) (*Result, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if u, err := url.Parse(formURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, &Error{URL: formURL, Message: "invalid URL", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, formURL, nil)
	if err != nil {
		return nil, &Error{URL: formURL, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", opts.UserAgent)
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	client := &http.Client{Timeout: opts.Timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &Error{URL: formURL, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes))
	if err != nil {
		return nil, &Error{URL: formURL, Message: "failed to read response body", Cause: err}
	}

	result := &Result{
		URL:         formURL,
		FinalURL:    resp.Request.URL.String(),
		HTML:        string(body),
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}
	if signInHosts[resp.Request.URL.Hostname()] {
		return result, &Error{URL: formURL, Message: "redirected to " + resp.Request.URL.Hostname(), Cause: ErrSignInRequired}
	}
	if resp.StatusCode != http.StatusOK {
		return result, &Error{URL: formURL, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}
	return result, nil
}

// Title returns the form's display title: the Google Forms heading when
// present, else the document <title>.
func Title(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	for _, selector := range titleSelectors {
		if selection := doc.Find(selector); selection.Length() > 0 {
			if text := cleanWhitespace(selection.First().Text()); text != "" {
				return text, nil
			}
		}
	}
	return cleanWhitespace(doc.Find("title").First().Text()), nil
}

// titleSelectors are tried in order before falling back to <title>.
var titleSelectors = []string{
	`div[role="heading"][aria-level="1"]`,
	".freebirdFormviewerViewHeaderTitle",
	"form h1",
}

// questionSelector matches the question containers the classifier reads.
const questionSelector = `div[role="listitem"], .freebirdFormviewerComponentsQuestionBaseRoot, input, textarea, div[role="radio"], div[role="listbox"]`

// HasQuestions reports whether the markup already contains form controls.
// A form page without any is still waiting for scripts to render it.
func HasQuestions(html string) bool {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return false
	}
	return doc.Find(questionSelector).Not(`input[type="hidden"]`).Length() > 0
}

// cleanWhitespace collapses runs of whitespace to single spaces.
func cleanWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
