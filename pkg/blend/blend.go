// Package blend builds scalarized single-objective policies across a grid of
// objective weights. It is a cheap, deterministic baseline next to the
// evolutionary optimizer.
package blend

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"k8s.io/client-go/util/workqueue"
	"k8s.io/klog/v2"

	"github.com/policyevo/policyevo/pkg/evolution"
	"github.com/policyevo/policyevo/pkg/outcomes"
	"github.com/policyevo/policyevo/pkg/rank"
)

// ErrInvalidPolicyCount is returned when fewer than one policy is requested.
var ErrInvalidPolicyCount = errors.New("invalid policy count")

// Weights returns the objective-1 weights of the sweep: i/nPolicies for
// i in [0, nPolicies). Objective 2 receives the complement.
func Weights(nPolicies int) []float64 {
	if nPolicies <= 0 {
		return nil
	}
	weights := make([]float64, nPolicies)
	for i := range weights {
		weights[i] = float64(i) / float64(nPolicies)
	}
	return weights
}

// Sweep returns one treatment vector per weight of Weights(nPolicies). For
// weight w each unit scores w*adv1 + (1-w)*adv2 and the nTreat units with
// the lowest score are treated; ties go to the earlier unit. Weights are
// scored by at most workers goroutines, or one per CPU when workers <= 0.
func Sweep(ctx context.Context, po *outcomes.PotentialOutcomes, nTreat, nPolicies, workers int) ([][]bool, error) {
	if err := po.Validate(); err != nil {
		return nil, err
	}
	n := po.Len()
	if nTreat <= 0 || nTreat > n {
		return nil, fmt.Errorf("%w: treat count %d must be in [1, %d]", evolution.ErrInvalidQuota, nTreat, n)
	}
	if nPolicies <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPolicyCount, nPolicies)
	}

	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	logger := klog.FromContext(ctx).WithValues("sweep", "blend")
	adv1, adv2 := po.Advantage1(), po.Advantage2()
	weights := Weights(nPolicies)
	policies := make([][]bool, nPolicies)

	workqueue.ParallelizeUntil(ctx, workers, nPolicies, func(i int) {
		w := weights[i]
		loss := make([]float64, n)
		for u := range loss {
			loss[u] = w*adv1[u] + (1-w)*adv2[u]
		}
		policies[i] = rank.Below(rank.Ascending(loss), nTreat)
	})
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("blend sweep interrupted: %w", err)
	}

	logger.V(2).Info("Blend sweep complete", "units", n, "treatCount", nTreat, "policies", nPolicies, "workers", workers)
	return policies, nil
}
