/*
Copyright 2024 The Kubernetes Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// Variant selects a preset of the numeric constants that distinguish the two
// known configurations of the optimizer.
type Variant string

const (
	// VariantQuota is the quota-configurable variant: mutation floor 100,
	// caller-supplied generation size, anchor policies seeded.
	VariantQuota Variant = "Quota"
	// VariantFixed is the fixed-size variant: mutation floor 10, generation
	// size defaulted to 5000, no anchor policies.
	VariantFixed Variant = "Fixed"
)

// +k8s:deepcopy-gen:interfaces=k8s.io/apimachinery/pkg/runtime.Object

// OptimizerConfiguration configures one evolutionary run and, where relevant,
// the deterministic blend sweep.
type OptimizerConfiguration struct {
	metav1.TypeMeta `json:",inline"`

	// Variant picks the preset used to default the remaining fields.
	Variant Variant `json:"variant,omitempty"`

	// TreatCount is the number of units every policy treats.
	TreatCount int32 `json:"treatCount"`

	// Generations is the number of Evaluate/NextGeneration rounds.
	Generations *int32 `json:"generations,omitempty"`

	// TemperatureDecay multiplies the mutation temperature every generation.
	// Must be in (0, 1].
	TemperatureDecay *float64 `json:"temperatureDecay,omitempty"`

	// GenerationSize is the number of policies per generation.
	GenerationSize *int32 `json:"generationSize,omitempty"`

	// MutationFloor is the minimum number of swaps applied per mutation.
	MutationFloor *int32 `json:"mutationFloor,omitempty"`

	// TierRatioThreshold stops the tier pass once
	// populationSize / (tiersIssued + 1) is no longer above it.
	TierRatioThreshold *int32 `json:"tierRatioThreshold,omitempty"`

	// SeedAnchors adds the two single-objective anchor policies to generation 0.
	SeedAnchors *bool `json:"seedAnchors,omitempty"`

	// Seed makes a run reproducible. A nil seed uses the wall clock.
	Seed *int64 `json:"seed,omitempty"`

	// Workers bounds the evaluation worker pool. Zero means one per CPU.
	Workers *int32 `json:"workers,omitempty"`

	// BlendPolicies is the number of weights in the blend sweep grid.
	BlendPolicies *int32 `json:"blendPolicies,omitempty"`
}
