package outcomes

import (
	"github.com/policyevo/policyevo/pkg/rng"
)

// Synthetic builds a random instance of n units in which the two objectives
// trade off: tradeoff in [0,1] controls how strongly a unit's objective-2
// advantage is anti-correlated with its objective-1 advantage.
func Synthetic(src rng.Source, n int, tradeoff float64) *PotentialOutcomes {
	po := &PotentialOutcomes{
		Obj1Treated: make([]float64, n),
		Obj1Control: make([]float64, n),
		Obj2Treated: make([]float64, n),
		Obj2Control: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		base1 := src.Float64() * 10
		base2 := src.Float64() * 10
		adv1 := src.Float64()*2 - 1
		noise := src.Float64()*2 - 1
		adv2 := -tradeoff*adv1 + (1-tradeoff)*noise

		po.Obj1Control[i] = base1
		po.Obj1Treated[i] = base1 + adv1
		po.Obj2Control[i] = base2
		po.Obj2Treated[i] = base2 + adv2
	}
	return po
}
