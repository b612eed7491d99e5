package test

import (
	"context"

	"github.com/infinitescroll/image-store/internal/logger"
	"github.com/infinitescroll/image-store/internal/tracing"
	"go.opentelemetry.io/otel/trace"
)

// Tracer returns a no-op tracer for tests
func Tracer(log *logger.Logger) *tracing.Tracer {
	tp := trace.NewNoopTracerProvider()
	return &tracing.Tracer{
		ServiceName:    "test",
		Log:            log,
		TracerProvider: tp,
		ShutdownFunc: func(context.Context) error {
			return nil
		},
		TracerInstance: tp.Tracer("test"),
	}
}
