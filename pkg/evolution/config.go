package evolution

import (
	"errors"
	"fmt"
	"runtime"

	"k8s.io/utils/ptr"

	"github.com/policyevo/policyevo/pkg/api/v1alpha1"
)

const (
	// Name identifies the optimizer in logs, traces and metrics.
	Name = "PolicyEvolution"

	// EliteTier is the rank shared by the policies that survive unchanged.
	EliteTier int32 = 1
	// UnrankedTier is assigned to every policy the tier pass did not reach.
	UnrankedTier int32 = 99
)

var (
	// ErrInvalidQuota is returned when the treatment count is not in [1, n].
	ErrInvalidQuota = errors.New("invalid treatment quota")
	// ErrInvalidConfig is returned for out-of-range evolution parameters.
	ErrInvalidConfig = errors.New("invalid evolution configuration")
	// ErrDegenerateResult is returned when the final elite tier is empty or
	// spans the whole population.
	ErrDegenerateResult = errors.New("degenerate elite tier")
)

// Config holds the resolved parameters of one run.
type Config struct {
	TreatCount         int
	Generations        int
	TemperatureDecay   float64
	GenerationSize     int
	MutationFloor      int
	TierRatioThreshold int
	SeedAnchors        bool
	Workers            int
	// Seed is used when no Source is injected. Nil means time-seeded.
	Seed *uint64
}

// ConfigFromAPI resolves a defaulted OptimizerConfiguration.
func ConfigFromAPI(cfg *v1alpha1.OptimizerConfiguration) Config {
	c := Config{
		TreatCount:         int(cfg.TreatCount),
		Generations:        int(ptr.Deref(cfg.Generations, v1alpha1.DefaultGenerations)),
		TemperatureDecay:   ptr.Deref(cfg.TemperatureDecay, v1alpha1.DefaultTemperatureDecay),
		GenerationSize:     int(ptr.Deref(cfg.GenerationSize, v1alpha1.DefaultQuotaGenerationSize)),
		MutationFloor:      int(ptr.Deref(cfg.MutationFloor, v1alpha1.DefaultQuotaMutationFloor)),
		TierRatioThreshold: int(ptr.Deref(cfg.TierRatioThreshold, v1alpha1.DefaultTierRatioThreshold)),
		SeedAnchors:        ptr.Deref(cfg.SeedAnchors, true),
		Workers:            int(ptr.Deref(cfg.Workers, 0)),
	}
	if cfg.Seed != nil {
		c.Seed = ptr.To(uint64(*cfg.Seed))
	}
	return c
}

func (c Config) validate(n int) error {
	if c.TreatCount <= 0 || c.TreatCount > n {
		return fmt.Errorf("%w: treat count %d must be in [1, %d]", ErrInvalidQuota, c.TreatCount, n)
	}
	switch {
	case c.Generations < 0:
		return fmt.Errorf("%w: generations %d is negative", ErrInvalidConfig, c.Generations)
	case c.TemperatureDecay <= 0 || c.TemperatureDecay > 1:
		return fmt.Errorf("%w: temperature decay %v must be in (0, 1]", ErrInvalidConfig, c.TemperatureDecay)
	case c.GenerationSize <= 0:
		return fmt.Errorf("%w: generation size %d must be positive", ErrInvalidConfig, c.GenerationSize)
	case c.MutationFloor < 0:
		return fmt.Errorf("%w: mutation floor %d is negative", ErrInvalidConfig, c.MutationFloor)
	case c.TierRatioThreshold < 0:
		return fmt.Errorf("%w: tier ratio threshold %d is negative", ErrInvalidConfig, c.TierRatioThreshold)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers %d is negative", ErrInvalidConfig, c.Workers)
	}
	return nil
}

func (c Config) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.NumCPU()
}
