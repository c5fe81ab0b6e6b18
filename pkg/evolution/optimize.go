package evolution

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"k8s.io/klog/v2"

	"github.com/policyevo/policyevo/pkg/outcomes"
	"github.com/policyevo/policyevo/pkg/rng"
)

const tracerName = "github.com/policyevo/policyevo/pkg/evolution"

// Observer receives advisory progress after each ranked generation. Observers
// run on the driver goroutine and must not retain the stats' backing state.
type Observer interface {
	ObserveGeneration(ctx context.Context, stats GenerationStats)
}

// ObserverFunc adapts a function to an Observer.
type ObserverFunc func(ctx context.Context, stats GenerationStats)

func (f ObserverFunc) ObserveGeneration(ctx context.Context, stats GenerationStats) {
	f(ctx, stats)
}

// Point is a policy's position in objective space.
type Point struct {
	Utility1 float64 `json:"utility1"`
	Utility2 float64 `json:"utility2"`
	Rank     int32   `json:"rank"`
}

// Result is the outcome of an optimization run.
type Result struct {
	// Assignments holds one treatment vector per rank-1 policy of the final
	// generation, in ranking order.
	Assignments [][]bool `json:"assignments"`
	// Elite holds the objective values of the returned policies.
	Elite []Point `json:"elite"`
	// Population holds every policy of the final generation.
	Population  []Point `json:"population,omitempty"`
	Generations int     `json:"generations"`
}

type options struct {
	src       rng.Source
	observers []Observer
	tracer    trace.Tracer
}

// Option configures Optimize.
type Option func(*options)

// WithSource injects the random source. It overrides Config.Seed.
func WithSource(src rng.Source) Option {
	return func(o *options) {
		o.src = src
	}
}

// WithObservers registers progress observers.
func WithObservers(observers ...Observer) Option {
	return func(o *options) {
		o.observers = append(o.observers, observers...)
	}
}

// WithTracer sets the tracer used for run and generation spans. The global
// tracer provider is used otherwise.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) {
		o.tracer = tracer
	}
}

// Optimize evolves a population of policies for cfg.Generations generations
// and returns the treatment vectors of the final rank-1 tier.
//
// Cancelling ctx stops the run between generations; a generation already in
// progress always completes.
func Optimize(ctx context.Context, po *outcomes.PotentialOutcomes, cfg Config, opts ...Option) (*Result, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.src == nil {
		if cfg.Seed != nil {
			o.src = rng.New(*cfg.Seed)
		} else {
			o.src = rng.NewTimeSeeded()
		}
	}
	if o.tracer == nil {
		o.tracer = otel.Tracer(tracerName)
	}

	ctx, span := o.tracer.Start(ctx, Name, trace.WithAttributes(
		attribute.Int("units", po.Len()),
		attribute.Int("treatCount", cfg.TreatCount),
		attribute.Int("generations", cfg.Generations),
		attribute.Int("generationSize", cfg.GenerationSize),
	))
	defer span.End()

	result, err := optimize(ctx, po, cfg, o)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("eliteWidth", len(result.Assignments)))
	return result, nil
}

func optimize(ctx context.Context, po *outcomes.PotentialOutcomes, cfg Config, o *options) (*Result, error) {
	logger := klog.FromContext(ctx).WithValues("optimizer", Name)

	pop, err := NewPopulation(po, cfg, o.src)
	if err != nil {
		return nil, err
	}

	logger.Info("Starting evolution",
		"units", pop.n,
		"treatCount", cfg.TreatCount,
		"generations", cfg.Generations,
		"generationSize", cfg.GenerationSize,
		"mutationFloor", cfg.MutationFloor,
		"anchors", cfg.SeedAnchors,
		"workers", cfg.workers())

	// A started generation always runs to completion.
	work := context.WithoutCancel(ctx)
	for gen := 0; gen < cfg.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("evolution stopped after %d generations: %w", gen, err)
		}
		genCtx, genSpan := o.tracer.Start(work, "Generation", trace.WithAttributes(attribute.Int("generation", gen)))
		pop.Evaluate(genCtx)
		stats := pop.Stats()
		notify(genCtx, o.observers, stats)
		pop.NextGeneration(genCtx)
		genSpan.End()

		if gen%10 == 0 {
			logger.V(2).Info("Generation complete",
				"generation", gen+1,
				"eliteWidth", stats.EliteWidth,
				"bestUtility1", stats.BestUtility1,
				"bestUtility2", stats.BestUtility2)
		}
	}

	pop.Evaluate(work)
	stats := pop.Stats()
	stats.Final = true
	notify(work, o.observers, stats)

	elite := pop.EliteTier()
	if len(elite) == 0 || len(elite) == len(pop.policies) {
		return nil, fmt.Errorf("%w: %d of %d policies in the elite tier", ErrDegenerateResult, len(elite), len(pop.policies))
	}

	result := &Result{
		Assignments: make([][]bool, 0, len(elite)),
		Elite:       make([]Point, 0, len(elite)),
		Population:  make([]Point, 0, len(pop.policies)),
		Generations: pop.generation,
	}
	for _, policy := range elite {
		result.Assignments = append(result.Assignments, policy.Assignment())
		result.Elite = append(result.Elite, pointOf(policy))
	}
	for _, policy := range pop.policies {
		result.Population = append(result.Population, pointOf(policy))
	}

	logger.Info("Evolution complete",
		"generations", pop.generation,
		"eliteWidth", len(elite),
		"bestUtility1", stats.BestUtility1,
		"bestUtility2", stats.BestUtility2)
	return result, nil
}

func notify(ctx context.Context, observers []Observer, stats GenerationStats) {
	for _, observer := range observers {
		observer.ObserveGeneration(ctx, stats)
	}
}

func pointOf(policy *Policy) Point {
	return Point{Utility1: policy.Utility1(), Utility2: policy.Utility2(), Rank: policy.Rank()}
}
