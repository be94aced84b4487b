package main

import (
	"context"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/skillet-cli/skillet/pkg/telemetry"
	"github.com/skillet-cli/skillet/pkg/version"
)

var cliTracer = telemetry.Tracer("skillet.cli")

// loadTracingConfig decodes the tracing section of the configuration
func loadTracingConfig() (telemetry.Config, error) {
	config := telemetry.Config{
		ServiceName:    "skillet",
		ServiceVersion: version.Get().Version,
		SamplerType:    "always",
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &config,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return config, errors.Wrap(err, "failed to create tracing config decoder")
	}
	if err := decoder.Decode(viper.GetStringMap("tracing")); err != nil {
		return config, errors.Wrap(err, "failed to decode tracing config")
	}

	return config, nil
}

// initTracing initializes the OpenTelemetry tracing system
func initTracing(ctx context.Context) (func(context.Context) error, error) {
	config, err := loadTracingConfig()
	if err != nil {
		return nil, err
	}
	return telemetry.InitTracer(ctx, config)
}

// startCommandSpan opens a span for a CLI invocation, recording the command
// path and its non-sensitive flags as attributes.
func startCommandSpan(cmd *cobra.Command, args []string) trace.Span {
	attrs := []attribute.KeyValue{
		attribute.String("command.name", cmd.Name()),
		attribute.String("command.path", cmd.CommandPath()),
		attribute.Int("args.count", len(args)),
	}

	cmd.Flags().Visit(func(flag *pflag.Flag) {
		if flag.Name != "password" && flag.Name != "token" && flag.Name != "key" {
			attrs = append(attrs, attribute.String("flag."+flag.Name, flag.Value.String()))
		}
	})

	ctx, span := cliTracer.Start(cmd.Context(), "cli.command", trace.WithAttributes(attrs...))
	cmd.SetContext(ctx)
	return span
}
