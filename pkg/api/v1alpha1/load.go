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
	"fmt"
	"os"

	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	"sigs.k8s.io/yaml"
)

var scheme = runtime.NewScheme()

func init() {
	utilruntime.Must(AddToScheme(scheme))
}

// Decode parses a YAML or JSON OptimizerConfiguration without applying
// defaults, so callers can merge flag overrides first.
func Decode(data []byte) (*OptimizerConfiguration, error) {
	cfg := &OptimizerConfiguration{}
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode optimizer configuration: %w", err)
	}
	return cfg, nil
}

// DecodeFile reads and decodes the configuration file at path.
func DecodeFile(path string) (*OptimizerConfiguration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read optimizer configuration: %w", err)
	}
	return Decode(data)
}

// Default applies the registered defaulting functions to cfg.
func Default(cfg *OptimizerConfiguration) {
	scheme.Default(cfg)
}
