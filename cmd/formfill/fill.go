package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/formfill/internal/automator"
	"github.com/jonathan/formfill/internal/browser"
	"github.com/jonathan/formfill/internal/db"
	"github.com/jonathan/formfill/internal/profile"
	"github.com/jonathan/formfill/internal/types"
)

var fillCommand = &cobra.Command{
	Use:   "fill <form-url>",
	Short: "Fill a form in Chrome and leave it open for review",
	Long: `Opens the form in Chrome, answers every question it recognises from the
profile and waits while you review and submit the form yourself. Press Ctrl+C
when you are done; the form stays open in Chrome after formfill exits.

Chrome is reached on its remote debugging port (see chrome-command); when
nothing is listening a new Chrome is launched.`,
	Args: cobra.ExactArgs(1),
	RunE: runFill,
}

var (
	fillHeadless      bool
	fillDebugURL      string
	fillReviewTimeout time.Duration
	fillNoReview      bool
)

func init() {
	fillCommand.Flags().BoolVar(&fillHeadless, "headless", false, "Launch Chrome headless when no running browser is found")
	fillCommand.Flags().StringVar(&fillDebugURL, "debug-url", "", "Chrome remote debugging endpoint (default "+browser.DefaultDebugURL+")")
	fillCommand.Flags().DurationVar(&fillReviewTimeout, "review-timeout", 0, "Stop waiting for review after this long (0 waits until interrupted)")
	fillCommand.Flags().BoolVar(&fillNoReview, "no-review", false, "Exit right after filling instead of waiting for review")

	rootCmd.AddCommand(fillCommand)
}

func runFill(cmd *cobra.Command, args []string) error {
	url := args[0]

	if cmd.Flags().Changed("headless") {
		settings.Browser.Headless = fillHeadless
	}
	if cmd.Flags().Changed("debug-url") {
		settings.Browser.DebugURL = fillDebugURL
	}
	if cmd.Flags().Changed("review-timeout") {
		settings.ReviewTimeoutMs = int(fillReviewTimeout / time.Millisecond)
	}

	p, err := profile.Load(settings.Profile)
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session, err := browser.Open(ctx, browser.Options{
		DebugURL:           settings.Browser.DebugURL,
		ConnectToExisting:  settings.Browser.ConnectToExisting,
		Headless:           settings.Browser.Headless,
		UseExistingProfile: settings.Browser.UseExistingProfile,
		ExecPath:           settings.Browser.ExecPath,
		UserDataDir:        settings.Browser.UserDataDir,
		LaunchWait:         settings.LaunchWait(),
	}, logger)
	if err != nil {
		var unavailable *browser.UnavailableError
		if errors.As(err, &unavailable) && unavailable.Command != "" {
			fmt.Fprintf(os.Stderr, "Start Chrome yourself with:\n  %s\nthen run this command again.\n", unavailable.Command)
		}
		return err
	}
	filled := false
	defer func() { releaseSession(session, filled) }()

	a := automator.New(session.Page, p, logger, automator.Options{
		NavigationTimeout: settings.NavigationTimeout(),
		AutoSubmit:        settings.AutoSubmit,
		Verbose:           settings.Verbose,
		Fill:              settings.FillOptions(),
		Out:               cmd.OutOrStdout(),
	})

	report, err := a.Run(ctx, url)
	if err != nil {
		return err
	}
	filled = true
	logger.Debug("fill report ready", zap.String("run_id", report.RunID.String()))
	recordReport(ctx, report)

	if fillNoReview {
		return nil
	}
	a.AwaitReview(ctx, session.Done(), settings.ReviewTimeout())
	return nil
}

// browserSession is the part of browser.Session runFill needs to let go of it.
type browserSession interface {
	Close()
	Detach()
}

var _ browserSession = (*browser.Session)(nil)

// releaseSession leaves a filled form open in the browser however the review
// ended. Only a run that never got to fill closes its tab.
func releaseSession(s browserSession, filled bool) {
	if filled {
		s.Detach()
		return
	}
	s.Close()
}

// recordReport saves the pass to the history database when one is configured.
// History is best effort; failures are logged and the review still happens.
func recordReport(ctx context.Context, report *types.FillReport) {
	if settings.DatabaseURL == "" {
		return
	}
	store, err := openHistory(ctx)
	if err != nil {
		logger.Warn("fill history unavailable", zap.Error(err))
		return
	}
	defer store.Close()

	if err := store.SaveReport(ctx, report); err != nil {
		logger.Warn("failed to record fill history", zap.Error(err))
		return
	}
	logger.Info("fill recorded", zap.String("run_id", report.RunID.String()))
}

func openHistory(ctx context.Context) (*db.DB, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	store, err := db.Connect(connectCtx, settings.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}
