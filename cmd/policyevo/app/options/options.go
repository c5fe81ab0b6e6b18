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

// Package options provides the flags used by the policyevo command.
package options

import (
	"errors"
	"fmt"

	"github.com/spf13/pflag"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	logsapi "k8s.io/component-base/logs/api/v1"
	"k8s.io/utils/ptr"

	"github.com/policyevo/policyevo/pkg/api/v1alpha1"
	"github.com/policyevo/policyevo/pkg/outcomes"
	"github.com/policyevo/policyevo/pkg/progress"
	"github.com/policyevo/policyevo/pkg/rng"
	"github.com/policyevo/policyevo/pkg/tracing"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// RunOptions are the flags shared by the optimize and blend subcommands.
type RunOptions struct {
	InputFile         string
	SyntheticUnits    int
	SyntheticTradeoff float64
	ConfigFile        string

	Variant          string
	TreatCount       int32
	Generations      int32
	TemperatureDecay float64
	GenerationSize   int32
	MutationFloor    int32
	Seed             int64
	Workers          int32
	BlendPolicies    int32

	OutputFile string
	Format     string
	PlotOutput string

	ProgressNATSURL string
	ProgressSubject string

	Tracing tracing.Options

	// flags is the set the options were bound to; only flags the user set
	// override values from ConfigFile.
	flags *pflag.FlagSet
}

// NewRunOptions returns RunOptions with default values.
func NewRunOptions() *RunOptions {
	return &RunOptions{
		SyntheticTradeoff: 0.5,
		Format:            FormatJSON,
		ProgressSubject:   progress.DefaultSubject,
		Tracing: tracing.Options{
			ServiceName: tracing.DefaultServiceName,
			SampleRate:  tracing.DefaultSampleRate,
		},
	}
}

// AddFlags binds the options to fs.
func (o *RunOptions) AddFlags(fs *pflag.FlagSet) {
	o.flags = fs

	fs.StringVar(&o.InputFile, "input", o.InputFile, "Path to a JSON file with obj1_treated, obj1_control, obj2_treated and obj2_control arrays.")
	fs.IntVar(&o.SyntheticUnits, "synthetic-units", o.SyntheticUnits, "Generate a synthetic input with this many units instead of reading --input.")
	fs.Float64Var(&o.SyntheticTradeoff, "synthetic-tradeoff", o.SyntheticTradeoff, "Conflict between the objectives of a synthetic input, in [0, 1].")
	fs.StringVar(&o.ConfigFile, "config", o.ConfigFile, "Path to an OptimizerConfiguration file. Flags override its values.")

	fs.StringVar(&o.Variant, "variant", o.Variant, "Preset used to default unset parameters: Quota or Fixed.")
	fs.Int32Var(&o.TreatCount, "treat", o.TreatCount, "Number of units every policy treats.")
	fs.Int32Var(&o.Generations, "generations", o.Generations, "Number of generations to evolve.")
	fs.Float64Var(&o.TemperatureDecay, "temperature-decay", o.TemperatureDecay, "Per-generation multiplier of the mutation temperature, in (0, 1].")
	fs.Int32Var(&o.GenerationSize, "generation-size", o.GenerationSize, "Number of policies per generation.")
	fs.Int32Var(&o.MutationFloor, "mutation-floor", o.MutationFloor, "Minimum number of swaps per mutation.")
	fs.Int64Var(&o.Seed, "seed", o.Seed, "Seed for a reproducible run. Unset uses the wall clock.")
	fs.Int32Var(&o.Workers, "workers", o.Workers, "Size of the worker pool. Zero uses one worker per CPU.")
	fs.Int32Var(&o.BlendPolicies, "policies", o.BlendPolicies, "Number of weights in the blend sweep.")

	fs.StringVarP(&o.OutputFile, "output", "o", o.OutputFile, "Write the result to this file instead of stdout.")
	fs.StringVar(&o.Format, "format", o.Format, "Output format: json or yaml.")
	fs.StringVar(&o.PlotOutput, "plot-output", o.PlotOutput, "Write an HTML scatter plot of the result to this file.")

	fs.StringVar(&o.ProgressNATSURL, "progress-nats-url", o.ProgressNATSURL, "Publish per-generation progress events to this NATS server.")
	fs.StringVar(&o.ProgressSubject, "progress-subject", o.ProgressSubject, "NATS subject of progress events.")

	fs.StringVar(&o.Tracing.CollectorEndpoint, "otel-collector-endpoint", o.Tracing.CollectorEndpoint, "OTLP gRPC collector host:port. Tracing is disabled when empty.")
	fs.StringVar(&o.Tracing.CACertFile, "otel-trace-ca-cert", o.Tracing.CACertFile, "CA certificate for a TLS connection to the collector.")
	fs.StringVar(&o.Tracing.ServiceName, "otel-service-name", o.Tracing.ServiceName, "Service name reported with traces.")
	fs.Float64Var(&o.Tracing.SampleRate, "otel-sample-rate", o.Tracing.SampleRate, "Fraction of traces to sample.")
}

// Validate checks flag combinations that do not depend on the input.
func (o *RunOptions) Validate() error {
	var errs []error
	if (o.InputFile == "") == (o.SyntheticUnits == 0) {
		errs = append(errs, errors.New("exactly one of --input and --synthetic-units must be set"))
	}
	if o.SyntheticUnits < 0 {
		errs = append(errs, errors.New("--synthetic-units must not be negative"))
	}
	if o.SyntheticTradeoff < 0 || o.SyntheticTradeoff > 1 {
		errs = append(errs, errors.New("--synthetic-tradeoff must be in [0, 1]"))
	}
	if o.Format != FormatJSON && o.Format != FormatYAML {
		errs = append(errs, fmt.Errorf("--format must be %s or %s", FormatJSON, FormatYAML))
	}
	if o.Tracing.SampleRate < 0 || o.Tracing.SampleRate > 1 {
		errs = append(errs, errors.New("--otel-sample-rate must be in [0, 1]"))
	}
	return utilerrors.NewAggregate(errs)
}

// LoadOutcomes reads --input or generates the synthetic input.
func (o *RunOptions) LoadOutcomes() (*outcomes.PotentialOutcomes, error) {
	if o.SyntheticUnits > 0 {
		src := rng.NewTimeSeeded()
		if o.changed("seed") {
			src = rng.New(uint64(o.Seed))
		}
		return outcomes.Synthetic(src, o.SyntheticUnits, o.SyntheticTradeoff), nil
	}
	return outcomes.LoadFile(o.InputFile)
}

// Configuration returns the OptimizerConfiguration from --config with the
// set flags applied on top. The result is not defaulted.
func (o *RunOptions) Configuration() (*v1alpha1.OptimizerConfiguration, error) {
	cfg := &v1alpha1.OptimizerConfiguration{}
	if o.ConfigFile != "" {
		var err error
		if cfg, err = v1alpha1.DecodeFile(o.ConfigFile); err != nil {
			return nil, err
		}
	}

	if o.changed("variant") {
		cfg.Variant = v1alpha1.Variant(o.Variant)
	}
	if o.changed("treat") {
		cfg.TreatCount = o.TreatCount
	}
	if o.changed("generations") {
		cfg.Generations = ptr.To(o.Generations)
	}
	if o.changed("temperature-decay") {
		cfg.TemperatureDecay = ptr.To(o.TemperatureDecay)
	}
	if o.changed("generation-size") {
		cfg.GenerationSize = ptr.To(o.GenerationSize)
	}
	if o.changed("mutation-floor") {
		cfg.MutationFloor = ptr.To(o.MutationFloor)
	}
	if o.changed("seed") {
		cfg.Seed = ptr.To(o.Seed)
	}
	if o.changed("workers") {
		cfg.Workers = ptr.To(o.Workers)
	}
	if o.changed("policies") {
		cfg.BlendPolicies = ptr.To(o.BlendPolicies)
	}
	return cfg, nil
}

func (o *RunOptions) changed(name string) bool {
	return o.flags != nil && o.flags.Changed(name)
}

// ServeOptions are the flags of the serve subcommand.
type ServeOptions struct {
	BindAddress     string
	ProgressNATSURL string
	ProgressSubject string
	Tracing         tracing.Options
}

// NewServeOptions returns ServeOptions with default values.
func NewServeOptions() *ServeOptions {
	return &ServeOptions{
		BindAddress:     ":8080",
		ProgressSubject: progress.DefaultSubject,
		Tracing: tracing.Options{
			ServiceName: tracing.DefaultServiceName,
			SampleRate:  tracing.DefaultSampleRate,
		},
	}
}

// AddFlags binds the options to fs.
func (o *ServeOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.BindAddress, "bind-address", o.BindAddress, "Address the HTTP server listens on.")
	fs.StringVar(&o.ProgressNATSURL, "progress-nats-url", o.ProgressNATSURL, "Publish per-generation progress events to this NATS server.")
	fs.StringVar(&o.ProgressSubject, "progress-subject", o.ProgressSubject, "NATS subject of progress events.")
	fs.StringVar(&o.Tracing.CollectorEndpoint, "otel-collector-endpoint", o.Tracing.CollectorEndpoint, "OTLP gRPC collector host:port. Tracing is disabled when empty.")
	fs.StringVar(&o.Tracing.CACertFile, "otel-trace-ca-cert", o.Tracing.CACertFile, "CA certificate for a TLS connection to the collector.")
	fs.StringVar(&o.Tracing.ServiceName, "otel-service-name", o.Tracing.ServiceName, "Service name reported with traces.")
	fs.Float64Var(&o.Tracing.SampleRate, "otel-sample-rate", o.Tracing.SampleRate, "Fraction of traces to sample.")
}

// GlobalOptions are flags shared by every subcommand.
type GlobalOptions struct {
	Logging *logsapi.LoggingConfiguration
}

// NewGlobalOptions returns GlobalOptions with default values.
func NewGlobalOptions() *GlobalOptions {
	return &GlobalOptions{Logging: logsapi.NewLoggingConfiguration()}
}

// AddFlags binds the logging flags to fs.
func (o *GlobalOptions) AddFlags(fs *pflag.FlagSet) {
	logsapi.AddFlags(o.Logging, fs)
}

// Apply validates and installs the logging configuration.
func (o *GlobalOptions) Apply() error {
	return logsapi.ValidateAndApply(o.Logging, nil)
}
