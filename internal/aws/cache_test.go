package aws

import (
	"testing"
	"time"
)

func TestTTLCache_GetSet(t *testing.T) {
	cache := newTTLCache(time.Minute, 10)

	if _, ok := cache.get("vpc:vpc-1"); ok {
		t.Error("expected miss on empty cache")
	}

	cache.set("vpc:vpc-1", "value")
	v, ok := cache.get("vpc:vpc-1")
	if !ok {
		t.Fatal("expected hit")
	}
	if v.(string) != "value" {
		t.Errorf("expected value, got %v", v)
	}
}

func TestTTLCache_Expiry(t *testing.T) {
	cache := newTTLCache(10*time.Millisecond, 10)
	cache.set("key", "value")

	time.Sleep(20 * time.Millisecond)

	if _, ok := cache.get("key"); ok {
		t.Error("expected expired entry to miss")
	}
}

func TestTTLCache_CapacityEviction(t *testing.T) {
	cache := newTTLCache(time.Minute, 2)
	cache.set("a", 1)
	cache.set("b", 2)
	cache.set("c", 3)

	hits := 0
	for _, key := range []string{"a", "b", "c"} {
		if _, ok := cache.get(key); ok {
			hits++
		}
	}
	if hits != 2 {
		t.Errorf("expected one eviction leaving 2 entries, got %d", hits)
	}
}
