package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/favilink/favilink/internal/model"
)

// forEachDocument runs fn for every document path on a bounded worker
// group. Per-document errors are recorded on the build and do not cancel
// the other workers: one unreadable file must not lose the whole sweep.
func forEachDocument(ctx context.Context, build *model.Build, concurrency int, fn func(ctx context.Context, path string) error) error {
	if concurrency < 1 {
		concurrency = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, path := range build.Documents {
		path := path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(ctx, path); err != nil {
				build.AddFailure(path + ": " + err.Error())
			}
			return nil
		})
	}

	return g.Wait()
}
