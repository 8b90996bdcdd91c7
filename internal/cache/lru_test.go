package cache

import (
	"testing"
	"time"
)

func TestLRUCache_Eviction(t *testing.T) {
	c := NewLRUCache[int64, string](2, time.Minute)
	c.Set(1, "admin")
	c.Set(2, "bob")
	c.Get(1) // 2 is now least recently used
	c.Set(3, "carol")

	if _, ok := c.Get(2); ok {
		t.Errorf("expected key 2 to be evicted")
	}
	if v, ok := c.Get(1); !ok || v != "admin" {
		t.Errorf("Get(1) = %q, %v", v, ok)
	}
	if c.Size() != 2 {
		t.Errorf("Size() = %d, want 2", c.Size())
	}
}

func TestLRUCache_TTL(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewLRUCache[int64, string](10, time.Minute)
	c.now = func() time.Time { return now }

	c.Set(1, "admin")
	c.Set(2, "bob")
	now = now.Add(30 * time.Second)
	c.Set(2, "bob") // refreshes expiry

	now = now.Add(45 * time.Second)
	if _, ok := c.Get(1); ok {
		t.Errorf("expected key 1 to expire")
	}
	if _, ok := c.Get(2); !ok {
		t.Errorf("expected key 2 to survive")
	}

	now = now.Add(time.Hour)
	if n := c.CleanExpired(); n != 1 {
		t.Errorf("CleanExpired() = %d, want 1", n)
	}
	if c.Size() != 0 {
		t.Errorf("Size() = %d, want 0", c.Size())
	}
}
