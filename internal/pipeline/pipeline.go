package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/favilink/favilink/internal/model"
)

// Step is one ordered stage of a build.
type Step interface {
	// Do executes the step against the build.
	Do(ctx context.Context, build *model.Build) error

	// Name returns the step name for logging and build records.
	Name() string
}

// Pipeline executes steps strictly in order. Concurrency lives inside a
// step (documents within a sweep run in parallel); between steps there is
// a hard barrier, which is what makes the count-then-insert protocol sound.
type Pipeline struct {
	steps []Step

	// continueOnError keeps executing later steps after a failure.
	continueOnError bool

	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError makes the pipeline run every step even when an
// earlier one failed, collecting failures on the build instead.
func WithContinueOnError() Option {
	return func(p *Pipeline) {
		p.continueOnError = true
	}
}

// New creates a Pipeline that runs the given steps in order.
func New(steps []Step, opts ...Option) *Pipeline {
	p := &Pipeline{
		steps:  steps,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Execute runs every step against the build, honoring context cancellation
// between steps.
func (p *Pipeline) Execute(ctx context.Context, build *model.Build) error {
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			return err
		}

		p.logger.Debug("running step", "step", step.Name())
		if err := step.Do(ctx, build); err != nil {
			if p.continueOnError {
				p.logger.Warn("step failed, continuing", "step", step.Name(), "error", err)
				build.AddFailure(fmt.Sprintf("%s: %v", step.Name(), err))
				continue
			}
			return fmt.Errorf("step %s failed: %w", step.Name(), err)
		}
		build.PerformedSteps = append(build.PerformedSteps, step.Name())
	}
	return nil
}
