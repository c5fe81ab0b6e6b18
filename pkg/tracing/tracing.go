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

package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"google.golang.org/grpc/credentials"
	"k8s.io/klog/v2"
)

const (
	// DefaultServiceName is reported as service.name when none is set.
	DefaultServiceName = "policyevo"
	// DefaultSampleRate samples every trace.
	DefaultSampleRate = 1.0
)

// Options configures the OTLP trace exporter.
type Options struct {
	// CollectorEndpoint is the host:port of an OTLP gRPC collector. Tracing is
	// disabled when empty.
	CollectorEndpoint string
	// CACertFile enables TLS to the collector when set.
	CACertFile  string
	ServiceName string
	SampleRate  float64
}

// ShutdownFunc flushes and stops the installed provider.
type ShutdownFunc func(ctx context.Context) error

// NewTracerProvider builds a tracer provider from opts and installs it as
// the global provider. Without a collector endpoint a no-op provider is
// installed.
func NewTracerProvider(ctx context.Context, opts Options) (trace.TracerProvider, ShutdownFunc, error) {
	logger := klog.FromContext(ctx)

	if opts.CollectorEndpoint == "" {
		logger.V(2).Info("No trace collector endpoint configured, using a no-op tracer provider")
		provider := noop.NewTracerProvider()
		otel.SetTracerProvider(provider)
		return provider, func(context.Context) error { return nil }, nil
	}

	clientOpts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(opts.CollectorEndpoint)}
	if opts.CACertFile != "" {
		creds, err := credentials.NewClientTLSFromFile(opts.CACertFile, "")
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load collector CA certificate: %w", err)
		}
		clientOpts = append(clientOpts, otlptracegrpc.WithTLSCredentials(creds))
	} else {
		clientOpts = append(clientOpts, otlptracegrpc.WithInsecure())
	}

	exporter, err := otlptrace.New(ctx, otlptracegrpc.NewClient(clientOpts...))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}

	serviceName := opts.ServiceName
	if serviceName == "" {
		serviceName = DefaultServiceName
	}
	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(serviceName)))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create trace resource: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(opts.SampleRate))),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	logger.Info("Exporting traces", "endpoint", opts.CollectorEndpoint, "tls", opts.CACertFile != "", "sampleRate", opts.SampleRate)
	return provider, provider.Shutdown, nil
}
