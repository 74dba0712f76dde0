// Package browser obtains a Chrome tab to fill forms in. It prefers an
// already running Chrome with remote debugging enabled, so the form opens in
// the user's own signed-in profile, and falls back to launching one.
package browser

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/jonathan/formfill/internal/page"
)

// DefaultDebugURL is where Chrome listens when started with --remote-debugging-port=9222.
const DefaultDebugURL = "http://localhost:9222"

// Options controls how a session is obtained.
type Options struct {
	DebugURL          string
	ConnectToExisting bool
	Headless          bool
	// UseExistingProfile launches Chrome on the user's normal profile directory.
	UseExistingProfile bool
	ExecPath           string
	UserDataDir        string
	// LaunchWait bounds how long a launched Chrome has to expose its debugging endpoint.
	LaunchWait time.Duration
}

// UnavailableError means no browser could be reached or started.
type UnavailableError struct {
	Message string
	// Command is a shell command the user can run to start Chrome manually.
	Command string
	Cause   error
}

func (e *UnavailableError) Error() string {
	msg := "browser unavailable: " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *UnavailableError) Unwrap() error {
	return e.Cause
}

// Session is one Chrome tab plus the allocator that owns it.
type Session struct {
	Page *page.Chrome
	// Launched is true when this process started Chrome itself.
	Launched bool

	headless bool
	tab      context.Context
	cancels  []context.CancelFunc
}

// Done is closed when the tab or the browser goes away.
func (s *Session) Done() <-chan struct{} {
	return s.tab.Done()
}

// Close releases the tab. A launched browser is shut down with it, and the
// tab of a running Chrome is closed.
func (s *Session) Close() {
	for i := len(s.cancels) - 1; i >= 0; i-- {
		s.cancels[i]()
	}
}

// Detach lets go of the browser and leaves the form's tab open in it, so the
// user can keep reviewing after this process exits. A headless browser cannot
// be reviewed and is closed instead.
func (s *Session) Detach() {
	switch {
	case s.Launched && s.headless:
		s.Close()
	case s.Launched:
		// Cancelling would kill the process. It runs in its own process
		// group and keeps going once we exit.
	default:
		// chromedp closes any target the tab context still holds when it is
		// cancelled; with the target dropped only the connection goes away.
		if c := chromedp.FromContext(s.tab); c != nil {
			c.Target = nil
		}
		s.Close()
	}
}

// attach makes the first Run on s, which attaches to the browser and creates
// the tab. ctx aborts the attempt but does not own the session afterwards.
func (s *Session) attach(ctx context.Context) error {
	stop := context.AfterFunc(ctx, s.Close)
	err := chromedp.Run(s.tab)
	if !stop() {
		return ctx.Err()
	}
	if err != nil {
		s.Close()
	}
	return err
}

// Open connects to a running Chrome, or launches one when that fails.
// Any failure to produce a usable tab is an *UnavailableError.
//
// Cancelling ctx after Open returns leaves the session alone; callers end it
// with Close or Detach.
func Open(ctx context.Context, opts Options, logger *zap.Logger) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("browser")
	if opts.DebugURL == "" {
		opts.DebugURL = DefaultDebugURL
	}

	if opts.ConnectToExisting {
		s, err := connect(ctx, opts.DebugURL)
		if err == nil {
			logger.Info("connected to running chrome", zap.String("debug_url", opts.DebugURL))
			return s, nil
		}
		logger.Warn("no chrome listening, launching one",
			zap.String("debug_url", opts.DebugURL),
			zap.Error(err),
		)
	}

	return launch(ctx, opts, logger)
}

func connect(ctx context.Context, debugURL string) (*Session, error) {
	allocCtx, cancelAlloc := chromedp.NewRemoteAllocator(context.WithoutCancel(ctx), debugURL)
	tab, cancelTab := chromedp.NewContext(allocCtx)

	s := &Session{
		Page:    page.NewChrome(tab),
		tab:     tab,
		cancels: []context.CancelFunc{cancelAlloc, cancelTab},
	}
	if err := s.attach(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func launch(ctx context.Context, opts Options, logger *zap.Logger) (*Session, error) {
	execPath := opts.ExecPath
	if execPath == "" {
		execPath = FindChrome()
	}
	userDataDir := opts.UserDataDir
	if userDataDir == "" && opts.UseExistingProfile {
		userDataDir = DefaultUserDataDir()
	}
	port := DebugPort(opts.DebugURL)
	manual := ChromeCommand(execPath, port, userDataDir)

	if execPath == "" {
		return nil, &UnavailableError{Message: "chrome executable not found", Command: manual}
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(execPath),
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("remote-debugging-port", port),
		chromedp.Flag("start-maximized", true),
	)
	if userDataDir != "" {
		allocOpts = append(allocOpts, chromedp.UserDataDir(userDataDir))
	}
	if opts.LaunchWait > 0 {
		allocOpts = append(allocOpts, chromedp.WSURLReadTimeout(opts.LaunchWait))
	}
	if !opts.Headless {
		allocOpts = append(allocOpts, chromedp.ModifyCmdFunc(detachProcess))
	}

	logger.Info("launching chrome",
		zap.String("exec_path", execPath),
		zap.String("user_data_dir", userDataDir),
		zap.Bool("headless", opts.Headless),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.WithoutCancel(ctx), allocOpts...)
	tab, cancelTab := chromedp.NewContext(allocCtx)

	s := &Session{
		Page:     page.NewChrome(tab),
		Launched: true,
		headless: opts.Headless,
		tab:      tab,
		cancels:  []context.CancelFunc{cancelAlloc, cancelTab},
	}
	if err := s.attach(ctx); err != nil {
		return nil, &UnavailableError{Message: "failed to start chrome", Command: manual, Cause: err}
	}
	return s, nil
}

// DebugPort extracts the port from a debugging URL, defaulting to 9222.
func DebugPort(debugURL string) string {
	u, err := url.Parse(debugURL)
	if err != nil || u.Port() == "" {
		return "9222"
	}
	return u.Port()
}

// ChromeCommand renders the shell command that starts Chrome with remote
// debugging on port, for users who prefer to start it themselves.
func ChromeCommand(execPath, port, userDataDir string) string {
	if execPath == "" {
		execPath = "google-chrome"
	}
	cmd := fmt.Sprintf("%q --remote-debugging-port=%s", execPath, port)
	if userDataDir != "" {
		cmd += fmt.Sprintf(" --user-data-dir=%q", userDataDir)
	}
	return cmd
}
