package fetch

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"time"

	"go.uber.org/zap"
)

// Source is where a form's markup came from.
type Source struct {
	Location string
	HTML     string
	Rendered bool
}

// IsURL reports whether loc is an http(s) URL rather than a file path.
func IsURL(loc string) bool {
	u, err := url.Parse(loc)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Load reads form markup from a local file or a URL. URLs are fetched over
// HTTP first and rendered headlessly when forceRender is set or the fetched
// markup has no controls yet.
func Load(ctx context.Context, loc string, forceRender bool, timeout time.Duration, logger *zap.Logger) (*Source, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if !IsURL(loc) {
		data, err := os.ReadFile(loc)
		if err != nil {
			return nil, fmt.Errorf("failed to read form file %s: %w", loc, err)
		}
		return &Source{Location: loc, HTML: string(data)}, nil
	}

	if !forceRender {
		opts := DefaultOptions()
		if timeout > 0 {
			opts.Timeout = timeout
		}
		result, err := URL(ctx, loc, opts)
		if err != nil {
			return nil, err
		}
		if !NeedsRender(result.HTML) {
			return &Source{Location: loc, HTML: result.HTML}, nil
		}
		logger.Info("fetched markup has no form controls, rendering", zap.String("url", loc))
	}

	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	html, err := Render(ctx, loc, timeout, logger)
	if err != nil {
		return nil, &Error{URL: loc, Message: "render failed", Cause: err}
	}
	return &Source{Location: loc, HTML: html, Rendered: true}, nil
}
