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
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/klog/v2"
	"k8s.io/utils/ptr"
)

const (
	DefaultGenerations         = 100
	DefaultTemperatureDecay    = 0.99
	DefaultQuotaGenerationSize = 1000
	DefaultFixedGenerationSize = 5000
	DefaultQuotaMutationFloor  = 100
	DefaultFixedMutationFloor  = 10
	DefaultTierRatioThreshold  = 4
	DefaultBlendPolicies       = 10
)

func addDefaultingFuncs(scheme *runtime.Scheme) error {
	return RegisterDefaults(scheme)
}

func RegisterDefaults(scheme *runtime.Scheme) error {
	klog.V(5).InfoS("Registering defaults", "kind", "OptimizerConfiguration")
	scheme.AddTypeDefaultingFunc(&OptimizerConfiguration{}, func(obj interface{}) {
		SetDefaults_OptimizerConfiguration(obj.(*OptimizerConfiguration))
	})
	return nil
}

func SetDefaults_OptimizerConfiguration(obj runtime.Object) {
	cfg := obj.(*OptimizerConfiguration)

	if cfg.Variant == "" {
		cfg.Variant = VariantQuota
	}
	if cfg.Generations == nil {
		cfg.Generations = ptr.To[int32](DefaultGenerations)
	}
	if cfg.TemperatureDecay == nil {
		cfg.TemperatureDecay = ptr.To(DefaultTemperatureDecay)
	}
	if cfg.TierRatioThreshold == nil {
		cfg.TierRatioThreshold = ptr.To[int32](DefaultTierRatioThreshold)
	}
	if cfg.Workers == nil {
		cfg.Workers = ptr.To[int32](0)
	}
	if cfg.BlendPolicies == nil {
		cfg.BlendPolicies = ptr.To[int32](DefaultBlendPolicies)
	}

	switch cfg.Variant {
	case VariantFixed:
		if cfg.GenerationSize == nil {
			cfg.GenerationSize = ptr.To[int32](DefaultFixedGenerationSize)
		}
		if cfg.MutationFloor == nil {
			cfg.MutationFloor = ptr.To[int32](DefaultFixedMutationFloor)
		}
		if cfg.SeedAnchors == nil {
			cfg.SeedAnchors = ptr.To(false)
		}
	default:
		if cfg.GenerationSize == nil {
			cfg.GenerationSize = ptr.To[int32](DefaultQuotaGenerationSize)
		}
		if cfg.MutationFloor == nil {
			cfg.MutationFloor = ptr.To[int32](DefaultQuotaMutationFloor)
		}
		if cfg.SeedAnchors == nil {
			cfg.SeedAnchors = ptr.To(true)
		}
	}
}
