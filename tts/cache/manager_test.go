package cache

import (
	"testing"

	"github.com/dgnsrekt/ttsbridge/tts"
)

func testConfig(t *testing.T) tts.CacheConfig {
	t.Helper()
	cfg := tts.DefaultCacheConfig()
	cfg.Enabled = true
	cfg.Dir = t.TempDir()
	cfg.MemoryMB = 1
	cfg.DiskMB = 1
	return cfg
}

func TestManager_RoundTrip(t *testing.T) {
	m, err := New(testConfig(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer m.Close()

	key := Key("model.pth", tts.VoiceSettings{Speed: 1, Pitch: 1}, "Hello.")
	want := tts.Samples{0, 0.5, -0.5, 1}

	if _, ok := m.Get(key); ok {
		t.Fatal("empty cache reported a hit")
	}
	if err := m.Put(key, want); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, ok := m.Get(key)
	if !ok {
		t.Fatal("Get() missed a stored key")
	}
	if len(got) != len(want) {
		t.Fatalf("got %d samples, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d = %v, want %v", i, got[i], want[i])
		}
	}

	stats := m.Stats()
	if stats["hits"].(int64) != 1 || stats["misses"].(int64) != 1 {
		t.Errorf("stats = %v, want one hit and one miss", stats)
	}
}

func TestManager_PromotesDiskHits(t *testing.T) {
	cfg := testConfig(t)

	first, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	key := Key("", tts.VoiceSettings{}, "persisted")
	_ = first.Put(key, tts.Samples{0.25})
	_ = first.Close()

	second, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer second.Close()

	if _, ok := second.Get(key); !ok {
		t.Fatal("a new manager should find the entry on disk")
	}
	if _, ok := second.Get(key); !ok {
		t.Fatal("second Get missed")
	}

	stats := second.Stats()
	if stats["disk_hits"].(int64) != 1 || stats["memory_hits"].(int64) != 1 {
		t.Errorf("stats = %v, want one disk hit then one memory hit", stats)
	}
}

func TestManager_MemoryOnly(t *testing.T) {
	cfg := testConfig(t)
	cfg.DiskMB = 0

	m, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer m.Close()

	_ = m.Put("k", tts.Samples{1})
	if _, ok := m.Get("k"); !ok {
		t.Error("memory-only cache missed")
	}
	if _, ok := m.Stats()["disk_size"]; ok {
		t.Error("memory-only cache reports a disk size")
	}
}

func TestManager_InvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.CompressionLevel = 0

	if _, err := New(cfg); err == nil {
		t.Error("New() should reject an invalid compression level")
	}
}

func TestKey(t *testing.T) {
	base := Key("m", tts.VoiceSettings{Voice: "a", Speed: 1, Pitch: 1}, "text")

	variants := map[string]string{
		"model": Key("m2", tts.VoiceSettings{Voice: "a", Speed: 1, Pitch: 1}, "text"),
		"voice": Key("m", tts.VoiceSettings{Voice: "b", Speed: 1, Pitch: 1}, "text"),
		"speed": Key("m", tts.VoiceSettings{Voice: "a", Speed: 1.5, Pitch: 1}, "text"),
		"pitch": Key("m", tts.VoiceSettings{Voice: "a", Speed: 1, Pitch: 0.8}, "text"),
		"text":  Key("m", tts.VoiceSettings{Voice: "a", Speed: 1, Pitch: 1}, "other"),
	}
	for name, key := range variants {
		if key == base {
			t.Errorf("changing the %s did not change the key", name)
		}
	}

	if Key("m", tts.VoiceSettings{Voice: "a", Speed: 1, Pitch: 1}, "text") != base {
		t.Error("Key is not deterministic")
	}
	// Field boundaries matter.
	if Key("ab", tts.VoiceSettings{}, "c") == Key("a", tts.VoiceSettings{}, "bc") {
		t.Error("keys collide across field boundaries")
	}
}

func TestSampleEncoding(t *testing.T) {
	if _, ok := decodeSamples([]byte{1, 2, 3}); ok {
		t.Error("decodeSamples accepted a truncated buffer")
	}
	got, ok := decodeSamples(encodeSamples(nil))
	if !ok || len(got) != 0 {
		t.Errorf("empty samples decoded as %v, %v", got, ok)
	}
}
