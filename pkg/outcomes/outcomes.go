// Package outcomes holds the per-unit potential-outcome estimates that every
// policy is scored against.
package outcomes

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInputShapeMismatch is returned when the four outcome vectors differ in length.
	ErrInputShapeMismatch = errors.New("potential outcome vectors differ in length")
	// ErrNonFinite is returned when an outcome is NaN or infinite.
	ErrNonFinite = errors.New("potential outcome is not finite")
	// ErrMalformedInput is returned when an input document cannot be decoded.
	ErrMalformedInput = errors.New("malformed potential outcomes")
)

// PotentialOutcomes contains, for each unit, the estimated outcome under
// treatment and under control for two objectives. It is read-only once a run
// starts and may be shared between goroutines.
type PotentialOutcomes struct {
	Obj1Treated []float64 `json:"obj1_treated"`
	Obj1Control []float64 `json:"obj1_control"`
	Obj2Treated []float64 `json:"obj2_treated"`
	Obj2Control []float64 `json:"obj2_control"`
}

// Len returns the number of units.
func (po *PotentialOutcomes) Len() int {
	return len(po.Obj1Treated)
}

// Validate checks that all four vectors have the same length.
func (po *PotentialOutcomes) Validate() error {
	n := len(po.Obj1Treated)
	for _, v := range po.vectors() {
		if len(v.values) != n {
			return fmt.Errorf("%w: obj1_treated has %d entries, %s has %d", ErrInputShapeMismatch, n, v.name, len(v.values))
		}
	}
	return nil
}

// CheckFinite rejects NaN and infinite values. The optimizer itself never
// sanitizes its input, so callers at the input boundary run this.
func (po *PotentialOutcomes) CheckFinite() error {
	for _, v := range po.vectors() {
		for i, x := range v.values {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return fmt.Errorf("%w: %s[%d] = %v", ErrNonFinite, v.name, i, x)
			}
		}
	}
	return nil
}

// Advantage1 returns treated minus control for the first objective.
func (po *PotentialOutcomes) Advantage1() []float64 {
	return advantage(po.Obj1Treated, po.Obj1Control)
}

// Advantage2 returns treated minus control for the second objective.
func (po *PotentialOutcomes) Advantage2() []float64 {
	return advantage(po.Obj2Treated, po.Obj2Control)
}

// vectors lists the four vectors in a fixed order so error messages are stable.
func (po *PotentialOutcomes) vectors() []namedVector {
	return []namedVector{
		{"obj1_treated", po.Obj1Treated},
		{"obj1_control", po.Obj1Control},
		{"obj2_treated", po.Obj2Treated},
		{"obj2_control", po.Obj2Control},
	}
}

type namedVector struct {
	name   string
	values []float64
}

func advantage(treated, control []float64) []float64 {
	adv := make([]float64, len(treated))
	for i := range treated {
		adv[i] = treated[i] - control[i]
	}
	return adv
}
