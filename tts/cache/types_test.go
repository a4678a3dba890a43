package cache

import (
	"bytes"
	"testing"
)

// TestStoreTiers runs the same checks against every tier through Store.
func TestStoreTiers(t *testing.T) {
	disk, err := NewDiskCache(t.TempDir(), 1<<20, 3)
	if err != nil {
		t.Fatalf("NewDiskCache() error = %v", err)
	}
	t.Cleanup(func() { _ = disk.Close() })

	tiers := map[string]Store{
		"memory": NewMemoryCache(1 << 20),
		"disk":   disk,
	}

	for name, store := range tiers {
		t.Run(name, func(t *testing.T) {
			value := bytes.Repeat([]byte{1, 2, 3, 4}, 64)

			if _, ok := store.Get("a"); ok {
				t.Fatal("Get() on an empty store should miss")
			}
			if err := store.Put("a", value); err != nil {
				t.Fatalf("Put() error = %v", err)
			}
			if !store.Contains("a") || store.Size() <= 0 {
				t.Errorf("Contains() = %v, Size() = %d after Put", store.Contains("a"), store.Size())
			}

			got, ok := store.Get("a")
			if !ok || !bytes.Equal(got, value) {
				t.Errorf("Get() = %v, %v; want the stored value", len(got), ok)
			}

			stats := store.Stats()
			if stats.Hits != 1 || stats.Misses != 1 || stats.ItemCount != 1 || stats.HitRate != 0.5 {
				t.Errorf("Stats() = %+v", stats)
			}

			if err := store.Delete("a"); err != nil || store.Contains("a") {
				t.Errorf("Delete() error = %v, Contains() = %v", err, store.Contains("a"))
			}
			if err := store.Delete("missing"); err != nil {
				t.Errorf("Delete() of a missing key error = %v", err)
			}

			_ = store.Put("b", value)
			if err := store.Clear(); err != nil || store.Size() != 0 {
				t.Errorf("Clear() error = %v, Size() = %d", err, store.Size())
			}
		})
	}
}
