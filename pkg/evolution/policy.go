package evolution

import (
	"fmt"

	"k8s.io/utils/ptr"

	"github.com/policyevo/policyevo/pkg/outcomes"
	"github.com/policyevo/policyevo/pkg/rank"
	"github.com/policyevo/policyevo/pkg/rng"
)

// Policy is one candidate treatment assignment. Utilities and rank are unset
// until the population evaluates and ranks it; reading them earlier is a
// programming error and panics.
type Policy struct {
	assignment []bool

	utility1 *float64
	utility2 *float64
	rank     *int32
}

// NewRandomPolicy treats nTreat units drawn uniformly without replacement.
func NewRandomPolicy(src rng.Source, n, nTreat int) *Policy {
	p := &Policy{assignment: make([]bool, n)}
	for _, idx := range rng.SampleIndices(src, n, nTreat) {
		p.assignment[idx] = true
	}
	return p
}

// NewAnchorPolicy treats the nTreat units with the highest advantage. Ties
// favour the unit that comes first.
func NewAnchorPolicy(advantage []float64, nTreat int) *Policy {
	return &Policy{assignment: rank.Below(rank.Descending(advantage), nTreat)}
}

// NewPolicy wraps an explicit assignment. The slice is copied.
func NewPolicy(assignment []bool) *Policy {
	return &Policy{assignment: append([]bool(nil), assignment...)}
}

// Len returns the number of units.
func (p *Policy) Len() int {
	return len(p.assignment)
}

// Assignment returns a copy of the treatment vector.
func (p *Policy) Assignment() []bool {
	return append([]bool(nil), p.assignment...)
}

// TreatedCount returns the number of treated units.
func (p *Policy) TreatedCount() int {
	count := 0
	for _, treated := range p.assignment {
		if treated {
			count++
		}
	}
	return count
}

// Evaluate scores the policy on both objectives: each unit contributes its
// treated outcome if treated and its control outcome otherwise.
func (p *Policy) Evaluate(po *outcomes.PotentialOutcomes) {
	var u1, u2 float64
	for i, treated := range p.assignment {
		if treated {
			u1 += po.Obj1Treated[i]
			u2 += po.Obj2Treated[i]
		} else {
			u1 += po.Obj1Control[i]
			u2 += po.Obj2Control[i]
		}
	}
	p.utility1 = ptr.To(u1)
	p.utility2 = ptr.To(u2)
}

// Evaluated reports whether both utilities are set.
func (p *Policy) Evaluated() bool {
	return p.utility1 != nil && p.utility2 != nil
}

// Utility1 returns the objective-1 utility.
func (p *Policy) Utility1() float64 {
	if p.utility1 == nil {
		panic("evolution: Utility1 read before Evaluate")
	}
	return *p.utility1
}

// Utility2 returns the objective-2 utility.
func (p *Policy) Utility2() float64 {
	if p.utility2 == nil {
		panic("evolution: Utility2 read before Evaluate")
	}
	return *p.utility2
}

// Ranked reports whether a tier has been assigned.
func (p *Policy) Ranked() bool {
	return p.rank != nil
}

// Rank returns the assigned tier; 1 is the elite tier.
func (p *Policy) Rank() int32 {
	if p.rank == nil {
		panic("evolution: Rank read before the population was ranked")
	}
	return *p.rank
}

func (p *Policy) setRank(r int32) {
	p.rank = ptr.To(r)
}

func (p *Policy) clearRank() {
	p.rank = nil
}

// Clone copies the assignment. The clone is neither evaluated nor ranked.
func (p *Policy) Clone() *Policy {
	return NewPolicy(p.assignment)
}

// Mutate swaps count random pairs of positions. Positions may coincide, so
// some swaps are no-ops; the treated count never changes.
func (p *Policy) Mutate(src rng.Source, count int) {
	n := len(p.assignment)
	if n == 0 {
		return
	}
	for i := 0; i < count; i++ {
		a, b := src.Intn(n), src.Intn(n)
		p.assignment[a], p.assignment[b] = p.assignment[b], p.assignment[a]
	}
	p.invalidate()
}

// Repair flips random positions until exactly nTreat units are treated.
func (p *Policy) Repair(src rng.Source, nTreat int) {
	n := len(p.assignment)
	if nTreat < 0 || nTreat > n {
		panic(fmt.Sprintf("evolution: cannot repair %d units to %d treated", n, nTreat))
	}
	treated := p.TreatedCount()
	for treated != nTreat {
		idx := src.Intn(n)
		switch {
		case p.assignment[idx] && treated > nTreat:
			p.assignment[idx] = false
			treated--
		case !p.assignment[idx] && treated < nTreat:
			p.assignment[idx] = true
			treated++
		}
	}
	p.invalidate()
}

// Merge builds a child taking every position from p or other with equal
// probability. The child's treated count is arbitrary; Repair it.
func (p *Policy) Merge(src rng.Source, other *Policy) *Policy {
	child := p.Clone()
	for i := range child.assignment {
		if rng.Coin(src) {
			child.assignment[i] = other.assignment[i]
		}
	}
	return child
}

func (p *Policy) invalidate() {
	p.utility1 = nil
	p.utility2 = nil
	p.rank = nil
}

func (p *Policy) String() string {
	if !p.Evaluated() {
		return fmt.Sprintf("Policy{treated: %d/%d}", p.TreatedCount(), len(p.assignment))
	}
	return fmt.Sprintf("Policy{treated: %d/%d, utility1: %g, utility2: %g}", p.TreatedCount(), len(p.assignment), *p.utility1, *p.utility2)
}
