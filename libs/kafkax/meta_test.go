package kafkax

import (
	"testing"

	"github.com/segmentio/kafka-go"
)

func TestSplitBrokers(t *testing.T) {
	got := SplitBrokers(" kafka-1:9092, ,kafka-2:9092 ")
	if len(got) != 2 || got[0] != "kafka-1:9092" || got[1] != "kafka-2:9092" {
		t.Fatalf("unexpected brokers: %v", got)
	}
	if SplitBrokers("") != nil {
		t.Fatal("expected nil for empty input")
	}
}

func TestCarrierSetOverwrites(t *testing.T) {
	c := &kafkaHeaderCarrier{headers: []kafka.Header{{Key: HeaderEventID, Value: []byte("a")}}}
	c.Set(HeaderEventID, "b")
	c.Set("traceparent", "00-abc-def-01")
	if len(c.headers) != 2 {
		t.Fatalf("expected 2 headers, got %d", len(c.headers))
	}
	if HeaderValue(c.headers, HeaderEventID) != "b" {
		t.Fatalf("expected overwritten event_id, got %q", c.Get(HeaderEventID))
	}
	if keys := c.Keys(); keys[1] != "traceparent" {
		t.Fatalf("unexpected keys %v", keys)
	}
}
