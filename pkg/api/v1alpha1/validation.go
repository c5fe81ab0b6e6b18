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
	"k8s.io/apimachinery/pkg/util/validation/field"
)

// ValidateOptimizerConfiguration validates a defaulted OptimizerConfiguration.
// The upper bound of TreatCount depends on the input and is checked when the
// population is built.
func ValidateOptimizerConfiguration(cfg *OptimizerConfiguration) error {
	var allErrs field.ErrorList

	if gvk := cfg.GroupVersionKind(); !gvk.Empty() {
		if gvk.GroupVersion() != SchemeGroupVersion {
			allErrs = append(allErrs, field.Invalid(field.NewPath("apiVersion"), gvk.GroupVersion().String(), "must be "+SchemeGroupVersion.String()))
		}
		if gvk.Kind != "" && gvk.Kind != "OptimizerConfiguration" {
			allErrs = append(allErrs, field.Invalid(field.NewPath("kind"), gvk.Kind, "must be OptimizerConfiguration"))
		}
	}

	switch cfg.Variant {
	case VariantQuota, VariantFixed:
	default:
		allErrs = append(allErrs, field.NotSupported(field.NewPath("variant"), cfg.Variant, []Variant{VariantQuota, VariantFixed}))
	}

	if cfg.TreatCount <= 0 {
		allErrs = append(allErrs, field.Invalid(field.NewPath("treatCount"), cfg.TreatCount, "must be greater than 0"))
	}
	if cfg.Generations != nil && *cfg.Generations < 0 {
		allErrs = append(allErrs, field.Invalid(field.NewPath("generations"), *cfg.Generations, "must not be negative"))
	}
	if cfg.TemperatureDecay != nil && (*cfg.TemperatureDecay <= 0 || *cfg.TemperatureDecay > 1) {
		allErrs = append(allErrs, field.Invalid(field.NewPath("temperatureDecay"), *cfg.TemperatureDecay, "must be in (0, 1]"))
	}
	if cfg.GenerationSize != nil && *cfg.GenerationSize <= 0 {
		allErrs = append(allErrs, field.Invalid(field.NewPath("generationSize"), *cfg.GenerationSize, "must be greater than 0"))
	}
	if cfg.MutationFloor != nil && *cfg.MutationFloor < 0 {
		allErrs = append(allErrs, field.Invalid(field.NewPath("mutationFloor"), *cfg.MutationFloor, "must not be negative"))
	}
	if cfg.TierRatioThreshold != nil && *cfg.TierRatioThreshold < 0 {
		allErrs = append(allErrs, field.Invalid(field.NewPath("tierRatioThreshold"), *cfg.TierRatioThreshold, "must not be negative"))
	}
	if cfg.Workers != nil && *cfg.Workers < 0 {
		allErrs = append(allErrs, field.Invalid(field.NewPath("workers"), *cfg.Workers, "must not be negative"))
	}
	if cfg.BlendPolicies != nil && *cfg.BlendPolicies <= 0 {
		allErrs = append(allErrs, field.Invalid(field.NewPath("blendPolicies"), *cfg.BlendPolicies, "must be greater than 0"))
	}

	return allErrs.ToAggregate()
}
