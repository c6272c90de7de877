package tracing

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// TestInitTracerWithoutEndpoint verifies an empty endpoint installs a provider whose spans are not recorded.
func TestInitTracerWithoutEndpoint(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), "contractops", "", false)
	require.NoError(t, err)
	defer shutdown(context.Background())

	_, span := StartSpan(context.Background(), "call")
	assert.False(t, span.IsRecording())
	EndSpan(span, nil)
}

// TestEndSpanRecordsErrors verifies a failed operation marks its span as an error.
func TestEndSpanRecordsErrors(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	defer otel.SetTracerProvider(previous)

	_, span := StartSpan(context.Background(), "send", attribute.String("network", "sepolia"))
	EndSpan(span, errors.New("nonce too low"))

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "send", ended[0].Name())
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "nonce too low", ended[0].Status().Description)
}
