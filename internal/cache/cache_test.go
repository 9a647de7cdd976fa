package cache

import (
	"fmt"
	"testing"
	"time"
)

func TestSetGet(t *testing.T) {
	c := New(time.Minute, 10)
	defer c.Stop()

	c.Set("k", 42)
	v, ok := c.Get("k")
	if !ok || v.(int) != 42 {
		t.Fatalf("Get = (%v, %v), want (42, true)", v, ok)
	}

	if _, ok := c.Get("missing"); ok {
		t.Error("Get on missing key should report false")
	}
}

func TestExpiry(t *testing.T) {
	c := New(10*time.Millisecond, 10)
	defer c.Stop()

	c.Set("k", "v")
	time.Sleep(25 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Error("expired entry should not be returned")
	}
	// Lazy eviction removed it.
	if c.Len() != 0 {
		t.Errorf("Len = %d after expired access, want 0", c.Len())
	}
}

func TestBoundedSize(t *testing.T) {
	c := New(time.Minute, 3)
	defer c.Stop()

	for i := 0; i < 5; i++ {
		c.Set(fmt.Sprintf("k%d", i), i)
	}
	if c.Len() > 3 {
		t.Errorf("Len = %d, want <= 3", c.Len())
	}
	// The most recent insert must survive eviction.
	if _, ok := c.Get("k4"); !ok {
		t.Error("most recent entry was evicted")
	}
}

func TestDelete(t *testing.T) {
	c := New(time.Minute, 10)
	defer c.Stop()

	c.Set("k", 1)
	c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Error("deleted entry still present")
	}
}

func TestSetRefreshesExisting(t *testing.T) {
	c := New(time.Minute, 1)
	defer c.Stop()

	c.Set("k", 1)
	c.Set("k", 2) // same key must not trigger eviction at cap
	v, ok := c.Get("k")
	if !ok || v.(int) != 2 {
		t.Fatalf("Get = (%v, %v), want (2, true)", v, ok)
	}
}
