package pipeline

import (
	"context"
	"log/slog"

	"golang.org/x/net/html"

	"github.com/favilink/favilink/internal/dom"
	"github.com/favilink/favilink/internal/favicon"
	"github.com/favilink/favilink/internal/model"
)

// faviconKey maps a link classification to its favicon key. The second
// result is false for links that get no favicon.
func faviconKey(norm *favicon.Normalizer, cls favicon.Classification) (string, bool) {
	switch cls.Kind {
	case favicon.KindMail:
		return favicon.MailPath, true
	case favicon.KindAnchor:
		return favicon.AnchorPath, true
	case favicon.KindRSS:
		return favicon.RSSPath, true
	case favicon.KindExternal:
		return norm.FaviconKey(cls.Host), true
	default:
		return "", false
	}
}

// CountStep is sweep one: it tallies, across the whole corpus, how often
// each favicon would be used, without touching any document. The tally is
// persisted after every document so a crashed build still leaves a usable
// partial tally.
type CountStep struct {
	classifier  *favicon.Classifier
	norm        *favicon.Normalizer
	counter     *favicon.Counter
	concurrency int
	logger      *slog.Logger
}

// NewCountStep creates the counting sweep.
func NewCountStep(classifier *favicon.Classifier, norm *favicon.Normalizer, counter *favicon.Counter, concurrency int, logger *slog.Logger) *CountStep {
	return &CountStep{
		classifier:  classifier,
		norm:        norm,
		counter:     counter,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Name returns the step name.
func (s *CountStep) Name() string { return "count" }

// Do tallies favicon usage for every document in the build.
func (s *CountStep) Do(ctx context.Context, build *model.Build) error {
	return forEachDocument(ctx, build, s.concurrency, func(_ context.Context, path string) error {
		doc, err := model.LoadDocument(path)
		if err != nil {
			return err
		}

		skipped := 0
		for _, a := range dom.FindElements(doc.Root, "a") {
			key, ok := faviconKey(s.norm, s.classifier.Classify(a))
			if !ok {
				skipped++
				continue
			}
			s.counter.Tally(key)
		}
		build.AddSkipped(skipped)
		build.AddCounted()

		if err := s.counter.Persist(); err != nil {
			return err
		}
		s.logger.Debug("counted document", "path", path)
		return nil
	})
}

// InsertStep is sweep two: it resolves favicons, gates them against the
// persisted tally, and splices the surviving icons into the documents.
type InsertStep struct {
	classifier  *favicon.Classifier
	norm        *favicon.Normalizer
	counter     *favicon.Counter
	resolver    *favicon.Resolver
	gate        *favicon.Gate
	concurrency int
	logger      *slog.Logger
}

// NewInsertStep creates the insertion sweep.
func NewInsertStep(classifier *favicon.Classifier, norm *favicon.Normalizer, counter *favicon.Counter, resolver *favicon.Resolver, gate *favicon.Gate, concurrency int, logger *slog.Logger) *InsertStep {
	return &InsertStep{
		classifier:  classifier,
		norm:        norm,
		counter:     counter,
		resolver:    resolver,
		gate:        gate,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Name returns the step name.
func (s *InsertStep) Name() string { return "insert" }

// Do decorates every document in the build. The persisted tally is
// re-read first so the gate sees the complete corpus-wide counts even
// when counting ran in an earlier process.
func (s *InsertStep) Do(ctx context.Context, build *model.Build) error {
	if err := s.counter.Load(); err != nil {
		return err
	}

	return forEachDocument(ctx, build, s.concurrency, func(ctx context.Context, path string) error {
		doc, err := model.LoadDocument(path)
		if err != nil {
			return err
		}

		icons, skipped := 0, 0
		for _, a := range dom.FindElements(doc.Root, "a") {
			inserted, err := s.decorate(ctx, a)
			if err != nil {
				return err
			}
			if inserted {
				icons++
			} else {
				skipped++
			}
		}

		if icons > 0 {
			if err := doc.Save(); err != nil {
				return err
			}
		}
		build.AddSkipped(skipped)
		build.AddInserted(icons)
		s.logger.Debug("decorated document", "path", path, "icons", icons)
		return nil
	})
}

// decorate resolves, gates, and splices the favicon for one anchor.
// Returns whether an icon was inserted; the only error is context
// cancellation bubbling out of the resolver.
func (s *InsertStep) decorate(ctx context.Context, a *html.Node) (bool, error) {
	cls := s.classifier.Classify(a)
	key, ok := faviconKey(s.norm, cls)
	if !ok {
		return false, nil
	}

	src := key
	if cls.Kind == favicon.KindExternal {
		resolved, err := s.resolver.Resolve(ctx, cls.Host)
		if err != nil {
			return false, err
		}
		if resolved == "" {
			return false, nil
		}
		src = resolved
	}

	if !s.gate.Include(key, src) {
		return false, nil
	}

	favicon.InsertIcon(a, src)
	return true, nil
}

// Populator fills inventory placeholders after the sweeps.
type Populator interface {
	Populate(ctx context.Context, build *model.Build) error
}

// PopulateStep fills favicon inventory containers in the rendered output.
type PopulateStep struct {
	populator Populator
}

// NewPopulateStep creates the container population step.
func NewPopulateStep(populator Populator) *PopulateStep {
	return &PopulateStep{populator: populator}
}

// Name returns the step name.
func (s *PopulateStep) Name() string { return "populate" }

// Do delegates to the populator.
func (s *PopulateStep) Do(ctx context.Context, build *model.Build) error {
	return s.populator.Populate(ctx, build)
}

// FlushStep writes the URL cache back to disk at the end of the build.
type FlushStep struct {
	cache *favicon.URLCache
}

// NewFlushStep creates the cache flush step.
func NewFlushStep(cache *favicon.URLCache) *FlushStep {
	return &FlushStep{cache: cache}
}

// Name returns the step name.
func (s *FlushStep) Name() string { return "flush" }

// Do flushes the URL cache.
func (s *FlushStep) Do(_ context.Context, _ *model.Build) error {
	return s.cache.Flush()
}
