package evolution

import (
	"context"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"k8s.io/klog/v2"

	"github.com/policyevo/policyevo/pkg/outcomes"
	"github.com/policyevo/policyevo/pkg/rng"
)

// Population is one generation of candidate policies together with the
// state that carries across generations.
type Population struct {
	cfg      Config
	outcomes *outcomes.PotentialOutcomes
	src      rng.Source

	policies    []*Policy
	n           int
	nTreat      int
	generation  int
	temperature float64
	tiers       int
}

// GenerationStats summarizes a ranked generation.
type GenerationStats struct {
	Generation     int
	Temperature    float64
	MutationCount  int
	PopulationSize int
	EliteWidth     int
	Tiers          int

	BestUtility1   float64
	MeanUtility1   float64
	StdDevUtility1 float64
	BestUtility2   float64
	MeanUtility2   float64
	StdDevUtility2 float64

	// Final is set on the stats of the last ranking, after which no further
	// generation is bred.
	Final bool
}

// NewPopulation validates its inputs and seeds the first generation: the two
// single-objective anchors when enabled, then cfg.GenerationSize random
// policies.
func NewPopulation(po *outcomes.PotentialOutcomes, cfg Config, src rng.Source) (*Population, error) {
	if err := po.Validate(); err != nil {
		return nil, err
	}
	n := po.Len()
	if err := cfg.validate(n); err != nil {
		return nil, err
	}

	policies := make([]*Policy, 0, cfg.GenerationSize+2)
	if cfg.SeedAnchors {
		policies = append(policies,
			NewAnchorPolicy(po.Advantage1(), cfg.TreatCount),
			NewAnchorPolicy(po.Advantage2(), cfg.TreatCount),
		)
	}
	for i := 0; i < cfg.GenerationSize; i++ {
		policies = append(policies, NewRandomPolicy(src, n, cfg.TreatCount))
	}

	return &Population{
		cfg:         cfg,
		outcomes:    po,
		src:         src,
		policies:    policies,
		n:           n,
		nTreat:      cfg.TreatCount,
		temperature: 1.0,
	}, nil
}

// Policies returns the current generation in its current order.
func (p *Population) Policies() []*Policy {
	return slices.Clone(p.policies)
}

// Generation returns the number of generations bred so far.
func (p *Population) Generation() int {
	return p.generation
}

// Temperature returns the current annealing temperature.
func (p *Population) Temperature() float64 {
	return p.temperature
}

// MutationCount returns the number of swaps applied to mutated elites and
// offspring at the current temperature.
func (p *Population) MutationCount() int {
	return max(int(math.Floor(p.temperature*float64(p.n))), p.cfg.MutationFloor)
}

// Evaluate scores every policy in parallel, then ranks the generation into
// tiers. Afterwards every policy carries a rank and the utility2 maximizer
// sits at index 0 with rank 1.
func (p *Population) Evaluate(ctx context.Context) {
	logger := klog.FromContext(ctx).WithValues("generation", p.generation)

	parallelize(p.cfg.workers(), len(p.policies), func(i int) {
		p.policies[i].Evaluate(p.outcomes)
	})

	p.assignTiers()

	logger.V(4).Info("Ranked generation", "size", len(p.policies), "tiers", p.tiers, "eliteWidth", len(p.EliteTier()))
}

func (p *Population) assignTiers() {
	slices.SortStableFunc(p.policies, func(a, b *Policy) int {
		return compareDesc(a.Utility1(), b.Utility1())
	})

	for _, policy := range p.policies {
		policy.clearRank()
	}

	size := len(p.policies)
	unranked := size
	tiers := 0
	for unranked > 0 && size/(tiers+1) > p.cfg.TierRatioThreshold {
		tiers++
		best := 0.0
		for _, policy := range p.policies {
			if policy.Ranked() {
				continue
			}
			if u2 := policy.Utility2(); u2 > best {
				policy.setRank(int32(tiers))
				best = u2
				unranked--
			}
		}
	}
	p.tiers = tiers

	slices.SortStableFunc(p.policies, func(a, b *Policy) int {
		return compareDesc(a.Utility2(), b.Utility2())
	})
	if size > 0 {
		p.policies[0].setRank(EliteTier)
	}

	for _, policy := range p.policies {
		if !policy.Ranked() {
			policy.setRank(UnrankedTier)
		}
	}
}

func compareDesc(a, b float64) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	}
	return 0
}

// EliteTier returns the rank-1 policies in their current order.
func (p *Population) EliteTier() []*Policy {
	var elite []*Policy
	for _, policy := range p.policies {
		if policy.Ranked() && policy.Rank() == EliteTier {
			elite = append(elite, policy)
		}
	}
	return elite
}

// NextGeneration replaces the ranked generation with a new one of exactly
// cfg.GenerationSize policies. Each elite contributes an unchanged clone and
// a mutated clone while room remains; tournament offspring fill the rest.
func (p *Population) NextGeneration(ctx context.Context) {
	logger := klog.FromContext(ctx)

	p.generation++
	p.temperature *= p.cfg.TemperatureDecay
	numMutates := p.MutationCount()

	size := p.cfg.GenerationSize
	next := make([]*Policy, 0, size)
	elite := p.EliteTier()
	for _, policy := range elite {
		if len(next) >= size {
			break
		}
		next = append(next, policy.Clone())
		if len(next) >= size {
			break
		}
		mutated := policy.Clone()
		mutated.Mutate(p.src, numMutates)
		next = append(next, mutated)
	}
	if 2*len(elite) > size {
		logger.V(2).Info("Elite tier truncated to fit generation size", "eliteWidth", len(elite), "generationSize", size)
	}

	current := p.policies
	offset := len(next)
	offspring := make([]*Policy, size-offset)
	sources := make([]rng.Source, len(offspring))
	for i := range sources {
		sources[i] = rng.Split(p.src)
	}
	parallelize(p.cfg.workers(), len(offspring), func(i int) {
		offspring[i] = breed(sources[i], current, p.nTreat, numMutates)
	})

	p.policies = append(next, offspring...)

	logger.V(4).Info("Bred generation",
		"generation", p.generation,
		"temperature", p.temperature,
		"mutations", numMutates,
		"elites", offset,
		"offspring", len(offspring))
}

// Stats summarizes the current ranked generation.
func (p *Population) Stats() GenerationStats {
	u1 := make([]float64, len(p.policies))
	u2 := make([]float64, len(p.policies))
	for i, policy := range p.policies {
		u1[i] = policy.Utility1()
		u2[i] = policy.Utility2()
	}

	s := GenerationStats{
		Generation:     p.generation,
		Temperature:    p.temperature,
		MutationCount:  p.MutationCount(),
		PopulationSize: len(p.policies),
		EliteWidth:     len(p.EliteTier()),
		Tiers:          p.tiers,
	}
	if len(p.policies) > 0 {
		s.BestUtility1 = floats.Max(u1)
		s.BestUtility2 = floats.Max(u2)
		s.MeanUtility1 = stat.Mean(u1, nil)
		s.MeanUtility2 = stat.Mean(u2, nil)
	}
	if len(p.policies) > 1 {
		s.StdDevUtility1 = stat.StdDev(u1, nil)
		s.StdDevUtility2 = stat.StdDev(u2, nil)
	}
	return s
}

func (p *Population) String() string {
	return fmt.Sprintf("Population{generation: %d, size: %d, temperature: %g}", p.generation, len(p.policies), p.temperature)
}
