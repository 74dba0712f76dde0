// Package classify discovers the questions on a form page and decides which
// input style each one expects.
package classify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/formfill/internal/page"
	"github.com/jonathan/formfill/internal/types"
)

// Classifier scans a page in several independent passes. Later passes only add
// fields whose controls earlier passes did not bind.
type Classifier struct {
	logger *zap.Logger
}

// New creates a Classifier. A nil logger discards output.
func New(logger *zap.Logger) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{logger: logger.Named("classifier")}
}

// scan accumulates fields across passes and remembers which controls are taken.
type scan struct {
	fields []types.ClassifiedField
	bound  map[page.Handle]bool
}

func (s *scan) add(f types.ClassifiedField) {
	f.Position = len(s.fields)
	s.fields = append(s.fields, f)
	for _, h := range f.Handles() {
		s.bound[h] = true
	}
}

func (s *scan) taken(hs ...page.Handle) bool {
	for _, h := range hs {
		if s.bound[h] {
			return true
		}
	}
	return false
}

// Classify returns the questions on p in discovery order. It fails only when the
// context ends; a question that cannot be inspected is reported as unknown.
func (c *Classifier) Classify(ctx context.Context, p page.Page) ([]types.ClassifiedField, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := &scan{bound: make(map[page.Handle]bool)}

	containers, err := c.containers(ctx, p, s)
	if err != nil {
		return nil, err
	}
	if containers == 0 {
		c.logger.Info("no question containers found, scanning controls directly")
		if err := c.direct(ctx, p, s); err != nil {
			return nil, err
		}
	}
	if err := c.attributes(ctx, p, s); err != nil {
		return nil, err
	}
	if err := c.vendor(ctx, p, s); err != nil {
		return nil, err
	}

	for _, f := range s.fields {
		c.logger.Debug("classified field",
			zap.Int("position", f.Position),
			zap.String("question", f.QuestionText),
			zap.String("modality", string(f.Modality)),
			zap.String("source", string(f.Source)),
		)
	}
	c.logger.Info("classification complete", zap.Int("fields", len(s.fields)))
	return s.fields, nil
}

// containers runs the primary scan over question list items.
func (c *Classifier) containers(ctx context.Context, p page.Page, s *scan) (int, error) {
	items, err := p.QueryAll(ctx, page.Document, selContainer)
	if err != nil {
		return 0, c.fatal(ctx, "query containers", err)
	}
	c.logger.Info("found question containers", zap.Int("count", len(items)))

	for i, item := range items {
		question, err := headingText(ctx, p, item, selHeading)
		if err != nil {
			if ctx.Err() != nil {
				return 0, ctx.Err()
			}
			c.logger.Warn("unreadable question heading", zap.Int("container", i), zap.Error(err))
		}

		in, err := c.inferContainer(ctx, p, item, question)
		if err != nil {
			if ctx.Err() != nil {
				return 0, ctx.Err()
			}
			c.logger.Warn("type inference failed", zap.String("question", question), zap.Error(err))
			in = unknown
		}
		s.add(types.ClassifiedField{
			QuestionText: question,
			Modality:     in.modality,
			Target:       in.target,
			Choices:      in.choices,
			Source:       types.SourceContainer,
		})
	}
	return len(items), nil
}

// inferContainer binds percentage questions to their first input as text and
// runs the normal precedence for everything else.
func (c *Classifier) inferContainer(ctx context.Context, p page.Page, item page.Handle, question string) (inference, error) {
	if isPercentage(question) {
		h, ok, err := page.Find(ctx, p, item, selInput)
		if err != nil {
			return unknown, err
		}
		if ok {
			c.logger.Debug("percentage question forced to text", zap.String("question", question))
			return inference{modality: types.ModalityText, target: h}, nil
		}
	}
	return infer(ctx, p, item)
}

func isPercentage(question string) bool {
	q := strings.ToLower(question)
	return strings.Contains(q, "percentage") || strings.Contains(q, "%")
}

// direct scans bare controls when the page has no question containers.
func (c *Classifier) direct(ctx context.Context, p page.Page, s *scan) error {
	singles := []struct {
		selector string
		modality types.Modality
		fallback string
	}{
		{selTextInput, types.ModalityText, "Text Input"},
		{selEmailInput, types.ModalityEmail, "Email"},
	}
	for _, kind := range singles {
		hs, err := p.QueryAll(ctx, page.Document, kind.selector)
		if err != nil {
			return c.fatal(ctx, "query "+kind.selector, err)
		}
		for i, h := range hs {
			if s.taken(h) {
				continue
			}
			label := c.nearestLabel(ctx, p, h, "div", selNearestLabel, fmt.Sprintf("%s %d", kind.fallback, i+1))
			s.add(types.ClassifiedField{QuestionText: label, Modality: kind.modality, Target: h, Source: types.SourceDirect})
		}
	}

	groups := []struct {
		selector string
		member   string
		modality types.Modality
		fallback string
	}{
		{selRadioGroup, selRadio, types.ModalityRadio, "Radio Group"},
		{selCheckboxGroup, selCheckbox, types.ModalityCheckbox, "Checkbox Group"},
	}
	for _, kind := range groups {
		hs, err := p.QueryAll(ctx, page.Document, kind.selector)
		if err != nil {
			return c.fatal(ctx, "query "+kind.selector, err)
		}
		for i, g := range hs {
			choices, err := p.QueryAll(ctx, g, kind.member)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				c.logger.Warn("unreadable choice group", zap.String("selector", kind.selector), zap.Error(err))
				continue
			}
			if len(choices) == 0 || s.taken(choices...) {
				continue
			}
			label := c.nearestLabel(ctx, p, g, selContainer, selHeading, fmt.Sprintf("%s %d", kind.fallback, i+1))
			s.add(types.ClassifiedField{QuestionText: label, Modality: kind.modality, Choices: choices, Source: types.SourceDirect})
		}
	}

	boxes, err := p.QueryAll(ctx, page.Document, selListbox)
	if err != nil {
		return c.fatal(ctx, "query listboxes", err)
	}
	for i, h := range boxes {
		if s.taken(h) {
			continue
		}
		label := c.nearestLabel(ctx, p, h, selContainer, selHeading, fmt.Sprintf("Dropdown %d", i+1))
		s.add(types.ClassifiedField{QuestionText: label, Modality: types.ModalityDropdown, Target: h, Source: types.SourceDirect})
	}
	return nil
}

// attributes picks up labelled controls the earlier passes missed.
func (c *Classifier) attributes(ctx context.Context, p page.Page, s *scan) error {
	kinds := []struct {
		selector string
		modality types.Modality
		fallback string
	}{
		{`input[aria-label]`, types.ModalityText, "Text"},
		{`textarea[aria-label]`, types.ModalityParagraph, "Paragraph"},
		{selEmailInput, types.ModalityEmail, "Email"},
	}
	for _, kind := range kinds {
		hs, err := p.QueryAll(ctx, page.Document, kind.selector)
		if err != nil {
			return c.fatal(ctx, "query "+kind.selector, err)
		}
		for i, h := range hs {
			if s.taken(h) {
				continue
			}
			modality, ok, err := controlModality(ctx, p, h, kind.modality)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				c.logger.Warn("unreadable control", zap.String("selector", kind.selector), zap.Error(err))
				modality, ok = types.ModalityUnknown, true
			}
			if !ok {
				continue
			}
			label := attributeLabel(ctx, p, h, fmt.Sprintf("%s %d", kind.fallback, i+1))
			s.add(types.ClassifiedField{QuestionText: label, Modality: modality, Target: h, Source: types.SourceAttribute})
		}
	}
	return nil
}

// controlModality refines the pass default from the input's own type. The
// boolean is false for inputs that are never questions on their own.
func controlModality(ctx context.Context, p page.Page, h page.Handle, def types.Modality) (types.Modality, bool, error) {
	if def != types.ModalityText {
		return def, true, nil
	}
	typ, _, err := p.Attribute(ctx, h, "type")
	if err != nil {
		return "", false, err
	}
	switch strings.ToLower(typ) {
	case "hidden", "radio", "checkbox", "submit", "button", "reset", "image":
		return "", false, nil
	case "email":
		return types.ModalityEmail, true, nil
	case "date":
		return types.ModalityDate, true, nil
	case "file":
		return types.ModalityFile, true, nil
	}
	placeholder, _, err := p.Attribute(ctx, h, "placeholder")
	if err != nil {
		return "", false, err
	}
	if looksLikeDatePlaceholder(placeholder) {
		return types.ModalityDate, true, nil
	}
	return types.ModalityText, true, nil
}

func attributeLabel(ctx context.Context, p page.Page, h page.Handle, fallback string) string {
	for _, name := range []string{"aria-label", "placeholder"} {
		v, ok, err := p.Attribute(ctx, h, name)
		if err == nil && ok {
			if v = collapse(v); v != "" {
				return v
			}
		}
	}
	return fallback
}

// vendor runs inference inside the Google Forms question root class.
func (c *Classifier) vendor(ctx context.Context, p page.Page, s *scan) error {
	roots, err := p.QueryAll(ctx, page.Document, selVendorRoot)
	if err != nil {
		return c.fatal(ctx, "query vendor roots", err)
	}
	if len(roots) > 0 {
		c.logger.Debug("found vendor question roots", zap.Int("count", len(roots)))
	}
	for i, root := range roots {
		in, err := infer(ctx, p, root)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Warn("type inference failed on vendor root", zap.Int("root", i), zap.Error(err))
			continue
		}
		if !in.bound() {
			continue
		}
		if s.taken(in.target) || s.taken(in.choices...) {
			continue
		}
		question, err := headingText(ctx, p, root, selVendorHeader)
		if err != nil || question == "" {
			question = fmt.Sprintf("Question %d", i+1)
		}
		s.add(types.ClassifiedField{
			QuestionText: question,
			Modality:     in.modality,
			Target:       in.target,
			Choices:      in.choices,
			Source:       types.SourceVendor,
		})
	}
	return nil
}

// nearestLabel reads the label under the closest ancestor matching ancestorSel.
func (c *Classifier) nearestLabel(ctx context.Context, p page.Page, h page.Handle, ancestorSel, labelSel, fallback string) string {
	anc, err := p.Closest(ctx, h, ancestorSel)
	if err != nil {
		return fallback
	}
	text, err := headingText(ctx, p, anc, labelSel)
	if err != nil || text == "" {
		return fallback
	}
	return text
}

// headingText returns the collapsed text of the first match under scope, or ""
// when there is none.
func headingText(ctx context.Context, p page.Page, scope page.Handle, selector string) (string, error) {
	h, ok, err := page.Find(ctx, p, scope, selector)
	if err != nil || !ok {
		return "", err
	}
	text, err := p.Text(ctx, h)
	if err != nil {
		return "", err
	}
	return collapse(text), nil
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// fatal wraps a document-level query failure. Only a finished context aborts the
// scan; anything else is logged and treated as an empty result.
func (c *Classifier) fatal(ctx context.Context, what string, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, page.ErrNotFound) {
		return nil
	}
	c.logger.Warn("query failed", zap.String("query", what), zap.Error(err))
	return nil
}
