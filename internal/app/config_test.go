package app_test

import (
	"reflect"
	"testing"

	"github.com/vladislavdragonenkov/crm/internal/app"
)

func TestDefaultConfig(t *testing.T) {
	cfg := app.DefaultConfig()
	if cfg.HTTPAddr != ":8000" {
		t.Fatalf("expected :8000, got %s", cfg.HTTPAddr)
	}
	if cfg.MetricsAddr != ":9090" {
		t.Fatalf("expected :9090, got %s", cfg.MetricsAddr)
	}
	if cfg.PostgresDSN != "" || cfg.KafkaBrokers != nil {
		t.Fatalf("expected empty storage and kafka config, got %+v", cfg)
	}
}

func TestParseBrokers(t *testing.T) {
	if got := app.ParseBrokers(""); got != nil {
		t.Fatalf("expected nil for empty input, got %v", got)
	}

	got := app.ParseBrokers("kafka-1:9092, kafka-2:9092 ,,kafka-3:9092")
	want := []string{"kafka-1:9092", "kafka-2:9092", "kafka-3:9092"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
