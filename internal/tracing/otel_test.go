package tracing

import (
	"context"
	"testing"

	"github.com/foodgram/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupDisabled(t *testing.T) {
	shutdown, err := Setup(context.Background(), config.TracingConfig{})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetupEnabled(t *testing.T) {
	shutdown, err := Setup(context.Background(), config.TracingConfig{Enabled: true, ServiceName: "foodgram-test", SampleRatio: 1, Metrics: true})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
