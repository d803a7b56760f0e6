package cache

import (
	"testing"
	"time"
)

func TestMemoryGetSet(t *testing.T) {
	c := NewMemory()

	if _, ok := c.Get("k"); ok {
		t.Fatal("expected miss on empty cache")
	}

	c.Set("k", 5.0, time.Minute)
	value, ok := c.Get("k")
	if !ok {
		t.Fatal("expected hit after set")
	}
	if value.(float64) != 5.0 {
		t.Fatalf("expected 5.0, got %v", value)
	}
}

func TestMemoryExpiry(t *testing.T) {
	c := NewMemory()
	current := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return current }

	c.Set("k", "v", 5*time.Minute)
	if _, ok := c.Get("k"); !ok {
		t.Fatal("expected hit before expiry")
	}

	current = current.Add(6 * time.Minute)
	if _, ok := c.Get("k"); ok {
		t.Fatal("expected miss after expiry")
	}
}

func TestMemoryInvalidate(t *testing.T) {
	c := NewMemory()
	c.Set("k", "v", time.Minute)
	c.Invalidate("k")
	if _, ok := c.Get("k"); ok {
		t.Fatal("expected miss after invalidate")
	}
}

func TestMemoryZeroTTLNotStored(t *testing.T) {
	c := NewMemory()
	c.Set("k", "v", 0)
	if _, ok := c.Get("k"); ok {
		t.Fatal("zero ttl must not be stored")
	}
}
