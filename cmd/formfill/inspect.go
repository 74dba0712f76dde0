package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/formfill/internal/classify"
	"github.com/jonathan/formfill/internal/fetch"
	"github.com/jonathan/formfill/internal/observability"
	"github.com/jonathan/formfill/internal/page"
	"github.com/jonathan/formfill/internal/profile"
	"github.com/jonathan/formfill/internal/resolve"
	"github.com/jonathan/formfill/internal/types"
)

// maxConcurrentLoads caps parallel fetches and renders.
const maxConcurrentLoads = 4

var inspectCommand = &cobra.Command{
	Use:   "inspect <form-url|file.html>...",
	Short: "Show how each question would be classified and answered, without filling",
	Long: `Loads one or more forms, from URLs or saved HTML files, classifies their
questions and prints the answer and rule the profile would supply for each.
Nothing is typed and no browser window is opened; URLs whose markup is built by
scripts are rendered headlessly.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInspect,
}

var (
	inspectRender  bool
	inspectTimeout time.Duration
)

func init() {
	inspectCommand.Flags().BoolVar(&inspectRender, "render", false, "Always render URLs in headless Chrome")
	inspectCommand.Flags().DurationVar(&inspectTimeout, "timeout", fetch.DefaultTimeout, "Per-form fetch or render timeout")

	rootCmd.AddCommand(inspectCommand)
}

func runInspect(cmd *cobra.Command, args []string) error {
	p, err := profile.Load(settings.Profile)
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}

	sources, err := loadSources(cmd.Context(), args)
	if err != nil {
		return err
	}

	printer := observability.NewPrinter(cmd.OutOrStdout())
	classifier := classify.New(logger)
	resolver := resolve.New(p, logger)

	for _, src := range sources {
		plan, err := inspectSource(cmd.Context(), src, classifier, resolver)
		if err != nil {
			return fmt.Errorf("%s: %w", src.Location, err)
		}
		title, _ := fetch.Title(src.HTML)
		if title == "" {
			title = src.Location
		}
		printer.PrintPlan(title, plan)
	}
	return nil
}

// loadSources fetches every location concurrently, keeping argument order.
func loadSources(ctx context.Context, locations []string) ([]*fetch.Source, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	sources := make([]*fetch.Source, len(locations))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLoads)
	for i, loc := range locations {
		g.Go(func() error {
			src, err := fetch.Load(gCtx, loc, inspectRender, inspectTimeout, logger)
			if err != nil {
				return err
			}
			logger.Debug("loaded form", zap.String("location", loc), zap.Bool("rendered", src.Rendered))
			sources[i] = src
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sources, nil
}

func inspectSource(ctx context.Context, src *fetch.Source, classifier *classify.Classifier, resolver *resolve.Resolver) ([]types.FillResult, error) {
	doc, err := page.NewStatic(src.HTML)
	if err != nil {
		return nil, err
	}
	fields, err := classifier.Classify(ctx, doc)
	if err != nil {
		return nil, err
	}

	plan := make([]types.FillResult, 0, len(fields))
	for _, f := range fields {
		r := types.FillResult{Field: f}
		if f.Modality.Fillable() {
			r.Value, r.Rule = resolver.Explain(f.QuestionText)
		}
		plan = append(plan, r)
	}
	return plan, nil
}
