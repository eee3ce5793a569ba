package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.False(t, cfg.Enabled)
	assert.Equal(t, "retrievald", cfg.ServiceName)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "disabled skips validation",
			mutate: func(c *Config) { c.Enabled = false; c.Endpoint = "" },
		},
		{
			name:    "enabled requires endpoint",
			mutate:  func(c *Config) { c.Enabled = true; c.Endpoint = "" },
			wantErr: "endpoint",
		},
		{
			name:    "insecure remote endpoint rejected",
			mutate:  func(c *Config) { c.Enabled = true; c.Endpoint = "collector.example.com:4317" },
			wantErr: "insecure",
		},
		{
			name:   "insecure localhost allowed",
			mutate: func(c *Config) { c.Enabled = true; c.Endpoint = "localhost:4317" },
		},
		{
			name:   "secure remote endpoint allowed",
			mutate: func(c *Config) { c.Enabled = true; c.Endpoint = "collector.example.com:4317"; c.Insecure = false },
		},
		{
			name:    "sampling rate out of range",
			mutate:  func(c *Config) { c.Enabled = true; c.Sampling.Rate = 1.5 },
			wantErr: "sampling.rate",
		},
		{
			name:    "non-positive export interval",
			mutate:  func(c *Config) { c.Enabled = true; c.Metrics.ExportInterval = 0 },
			wantErr: "export_interval",
		},
		{
			name:    "non-positive shutdown timeout",
			mutate:  func(c *Config) { c.Enabled = true; c.Shutdown.Timeout = 0 },
			wantErr: "shutdown.timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDisabledTelemetryLifecycle(t *testing.T) {
	ctx := context.Background()

	tel, err := New(ctx, NewDefaultConfig())
	require.NoError(t, err)
	assert.False(t, tel.IsEnabled())
	assert.False(t, tel.IsDegraded())

	shutdownCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	assert.NoError(t, tel.Shutdown(shutdownCtx))
	assert.NoError(t, tel.ForceFlush(ctx))
}

func TestNilTelemetrySafe(t *testing.T) {
	var tel *Telemetry
	assert.NoError(t, tel.Shutdown(context.Background()))
	assert.NoError(t, tel.ForceFlush(context.Background()))
	assert.False(t, tel.IsEnabled())
	assert.True(t, tel.IsDegraded())
}
