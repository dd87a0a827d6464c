package kafka_config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv(EnvKafkaBrokers, "k1:9092, k2:9092")
	t.Setenv(EnvKafkaProducerCompression, "lz4")
	t.Setenv(EnvKafkaProducerBatchTimeout, "50ms")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(cfg.Brokers) != 2 || cfg.Brokers[1] != "k2:9092" {
		t.Errorf("Brokers = %v", cfg.Brokers)
	}
	if cfg.ProducerCompression != "lz4" {
		t.Errorf("ProducerCompression = %s", cfg.ProducerCompression)
	}
	if cfg.ProducerBatchTimeout != 50*time.Millisecond {
		t.Errorf("ProducerBatchTimeout = %s", cfg.ProducerBatchTimeout)
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		Brokers:              []string{"localhost:9092", ""},
		ProducerMaxAttempts:  0,
		ProducerBatchTimeout: time.Millisecond,
		ProducerRequireAcks:  2,
		ProducerCompression:  "brotli",
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"Broker 1 cannot be empty", "ProducerMaxAttempts", "ProducerCompression", "ProducerRequireAcks"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err.Error(), want)
		}
	}
}
