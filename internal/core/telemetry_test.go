// AngelaMos | 2026
// telemetry_test.go

package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pierkoo/flasktaskr/internal/config"
)

func TestSampler(t *testing.T) {
	tests := []struct {
		name        string
		rate        float64
		environment string
		want        string
	}{
		{"development samples everything", 0.01, "development", "root:AlwaysOnSampler"},
		{"configured rate", 0.5, "production", "root:TraceIDRatioBased{0.5}"},
		{"out of range falls back", 3, "production", "root:TraceIDRatioBased{0.1}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc := sampler(tt.rate, tt.environment).Description()
			assert.Contains(t, desc, tt.want)
		})
	}
}

func TestNewTelemetryDisabled(t *testing.T) {
	tel, err := NewTelemetry(
		context.Background(),
		config.OtelConfig{Enabled: false},
		config.AppConfig{Environment: "production"},
	)
	require.NoError(t, err)
	assert.Nil(t, tel.TracerProvider)
	assert.NoError(t, tel.Shutdown(context.Background()))
}
