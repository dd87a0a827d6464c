package otelx

import (
	"context"
	"testing"
)

func TestConfigFromEnv(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		wantEnabled bool
		wantRatio   float64
		wantEP      string
	}{
		{name: "defaults", env: map[string]string{}, wantEnabled: false, wantRatio: 1, wantEP: DefaultEndpoint},
		{name: "enabled", env: map[string]string{EnvEnabled: "true", EnvEndpoint: "jaeger:4317"}, wantEnabled: true, wantRatio: 1, wantEP: "jaeger:4317"},
		{name: "explicitly off", env: map[string]string{EnvEnabled: "0"}, wantEnabled: false, wantRatio: 1, wantEP: DefaultEndpoint},
		{name: "ratio", env: map[string]string{EnvSamplingRatio: "0.25"}, wantRatio: 0.25, wantEP: DefaultEndpoint},
		{name: "ratio out of range ignored", env: map[string]string{EnvSamplingRatio: "3"}, wantRatio: 1, wantEP: DefaultEndpoint},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvEnabled, "")
			t.Setenv(EnvEndpoint, "")
			t.Setenv(EnvSamplingRatio, "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg := ConfigFromEnv("slotbook")
			if cfg.Enabled != tt.wantEnabled {
				t.Errorf("Enabled = %v, want %v", cfg.Enabled, tt.wantEnabled)
			}
			if cfg.SampleRatio != tt.wantRatio {
				t.Errorf("SampleRatio = %v, want %v", cfg.SampleRatio, tt.wantRatio)
			}
			if cfg.OTLPEndpoint != tt.wantEP {
				t.Errorf("OTLPEndpoint = %s, want %s", cfg.OTLPEndpoint, tt.wantEP)
			}
			if cfg.ServiceName != "slotbook" {
				t.Errorf("ServiceName = %s", cfg.ServiceName)
			}
		})
	}
}

func TestSetup_DisabledIsNoop(t *testing.T) {
	shutdown, err := Setup(context.Background(), Config{Enabled: false, ServiceName: "slotbook"})
	if err != nil {
		t.Fatalf("Setup() error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown() error: %v", err)
	}
}
