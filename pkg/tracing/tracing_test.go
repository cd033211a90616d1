package tracing

import (
	"bytes"
	"context"
	"testing"

	"github.com/DRSN-tech/storefront-assistant/internal/cfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestInit_ExportsSpans(t *testing.T) {
	var buf bytes.Buffer

	shutdown, err := Init(&cfg.TracingCfg{Enabled: true, ServiceName: "assistant-test"}, &buf)
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(context.Background(), "tool.searchProducts")
	span.End()

	require.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), "tool.searchProducts")
	assert.Contains(t, buf.String(), "assistant-test")
}

func TestInit_Disabled(t *testing.T) {
	shutdown, err := Init(&cfg.TracingCfg{}, nil)
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
