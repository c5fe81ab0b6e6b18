package evolution

import "github.com/policyevo/policyevo/pkg/rng"

// tournament returns whichever of the two indexed policies holds the lower
// rank. The first index wins ties.
func tournament(policies []*Policy, a, b int) *Policy {
	if policies[b].Rank() < policies[a].Rank() {
		return policies[b]
	}
	return policies[a]
}

// breed draws two binary tournaments from the ranked generation and returns
// their repaired, mutated child.
func breed(src rng.Source, policies []*Policy, nTreat, numMutates int) *Policy {
	size := len(policies)
	i1, i2 := src.Intn(size), src.Intn(size)
	i3, i4 := src.Intn(size), src.Intn(size)

	parent1 := tournament(policies, i1, i2)
	parent2 := tournament(policies, i3, i4)

	child := parent1.Merge(src, parent2)
	child.Repair(src, nTreat)
	child.Mutate(src, numMutates)
	return child
}
