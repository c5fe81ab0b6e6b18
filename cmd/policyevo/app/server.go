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

// Package app implements the policyevo command.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"k8s.io/apimachinery/pkg/util/uuid"
	"k8s.io/klog/v2"

	"github.com/policyevo/policyevo/cmd/policyevo/app/options"
	"github.com/policyevo/policyevo/pkg/evolution"
	"github.com/policyevo/policyevo/pkg/outcomes"
	"github.com/policyevo/policyevo/pkg/plot"
	"github.com/policyevo/policyevo/pkg/progress"
	"github.com/policyevo/policyevo/pkg/runner"
	"github.com/policyevo/policyevo/pkg/server"
	"github.com/policyevo/policyevo/pkg/tracing"
)

// NewPolicyEvoCommand creates the root command with its subcommands.
func NewPolicyEvoCommand() *cobra.Command {
	global := options.NewGlobalOptions()

	cmd := &cobra.Command{
		Use:   "policyevo",
		Short: "policyevo searches for treatment policies that trade off two objectives",
		Long: `policyevo evolves a population of treatment policies that each treat a
fixed number of units, and returns the policies on the final trade-off front
between two objectives. A deterministic weight sweep is available as a baseline.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return global.Apply()
		},
	}
	global.AddFlags(cmd.PersistentFlags())

	cmd.AddCommand(
		newRunCommand(runner.ModeOptimize),
		newRunCommand(runner.ModeBlend),
		newServeCommand(),
		NewVersionCommand(),
	)
	return cmd
}

func newRunCommand(mode runner.Mode) *cobra.Command {
	o := options.NewRunOptions()
	cmd := &cobra.Command{
		Use:   string(mode),
		Short: shortDescription(mode),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Validate(); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return Run(ctx, mode, o)
		},
	}
	o.AddFlags(cmd.Flags())
	return cmd
}

func shortDescription(mode runner.Mode) string {
	if mode == runner.ModeBlend {
		return "Sweep objective weights and treat the units with the lowest blended advantage"
	}
	return "Evolve treatment policies and print the final elite tier"
}

// Run executes one optimize or blend run as configured by o.
func Run(ctx context.Context, mode runner.Mode, o *options.RunOptions) error {
	logger := klog.FromContext(ctx)

	_, shutdown, err := tracing.NewTracerProvider(ctx, o.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.Error(err, "Failed to flush traces")
		}
	}()

	po, err := o.LoadOutcomes()
	if err != nil {
		return err
	}
	cfg, err := o.Configuration()
	if err != nil {
		return err
	}
	if err := runner.Complete(cfg); err != nil {
		return err
	}

	runOpts := []evolution.Option{
		evolution.WithObservers(progress.LogObserver{Verbosity: 2, Every: 10}),
	}
	if o.ProgressNATSURL != "" {
		nc, err := progress.Connect(ctx, o.ProgressNATSURL, "policyevo")
		if err != nil {
			return err
		}
		defer nc.Close()
		runOpts = append(runOpts, evolution.WithObservers(progress.NewNATSObserver(nc, o.ProgressSubject, string(uuid.NewUUID()))))
	}

	resp, err := runner.Run(ctx, &runner.Request{Mode: mode, Outcomes: po, Config: cfg}, runOpts...)
	if err != nil {
		return err
	}

	if o.PlotOutput != "" {
		if err := writePlot(o.PlotOutput, mode, po, resp); err != nil {
			return fmt.Errorf("failed to write plot: %w", err)
		}
		logger.Info("Wrote plot", "path", o.PlotOutput)
	}
	return writeResponse(o.OutputFile, o.Format, resp)
}

func newServeCommand() *cobra.Command {
	o := options.NewServeOptions()
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve optimize and blend requests over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return Serve(ctx, o)
		},
	}
	o.AddFlags(cmd.Flags())
	return cmd
}

// Serve runs the HTTP server until ctx is cancelled.
func Serve(ctx context.Context, o *options.ServeOptions) error {
	logger := klog.FromContext(ctx)

	_, shutdown, err := tracing.NewTracerProvider(ctx, o.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.Error(err, "Failed to flush traces")
		}
	}()

	serverOpts := server.Options{BindAddress: o.BindAddress, Subject: o.ProgressSubject}
	if o.ProgressNATSURL != "" {
		nc, err := progress.Connect(ctx, o.ProgressNATSURL, "policyevo-server")
		if err != nil {
			return err
		}
		defer nc.Close()
		serverOpts.Publisher = nc
	}

	return server.New(serverOpts).Run(ctx)
}

func writePlot(path string, mode runner.Mode, po *outcomes.PotentialOutcomes, resp *runner.Response) error {
	if mode == runner.ModeBlend {
		return plot.RenderFile(path, "Blend sweep", plot.AssignmentSeries("Blend", po, resp.Assignments))
	}
	result := &evolution.Result{Elite: resp.Elite, Population: resp.Population}
	return plot.RenderFile(path, fmt.Sprintf("Final population after %d generations", resp.Generations), plot.ResultSeries(result)...)
}
