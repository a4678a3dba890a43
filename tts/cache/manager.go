package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"

	"github.com/dgnsrekt/ttsbridge/tts"
)

const mb = 1024 * 1024

// Manager coordinates the memory and disk tiers and stores samples.
type Manager struct {
	memory *MemoryCache
	disk   *DiskCache // nil when the disk tier is disabled
	logger *log.Logger

	mu    sync.Mutex
	stats struct {
		hits       int64
		misses     int64
		memoryHits int64
		diskHits   int64
		promotions int64
	}
}

// New builds a cache from cfg. An empty cfg.Dir selects the user cache
// directory. DiskMB of 0 disables the disk tier.
func New(cfg tts.CacheConfig) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &Manager{
		memory: NewMemoryCache(int64(cfg.MemoryMB) * mb),
		logger: log.WithPrefix("cache"),
	}

	if cfg.DiskMB > 0 {
		dir := cfg.Dir
		if dir == "" {
			var err error
			if dir, err = DefaultDir(); err != nil {
				return nil, err
			}
		}
		disk, err := NewDiskCache(dir, int64(cfg.DiskMB)*mb, cfg.CompressionLevel)
		if err != nil {
			return nil, fmt.Errorf("failed to create disk cache: %w", err)
		}
		m.disk = disk
		m.logger.Debug("disk cache opened", "dir", dir, "entries", disk.Stats().ItemCount)
	}

	return m, nil
}

// DefaultDir returns the per-user directory for cached audio.
func DefaultDir() (string, error) {
	scope := gap.NewScope(gap.User, "ttsbridge")
	dir, err := scope.CacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate cache directory: %w", err)
	}
	return filepath.Join(dir, "audio"), nil
}

// Key identifies the audio for text under a model and voice settings.
func Key(modelPath string, s tts.VoiceSettings, text string) string {
	h := sha256.New()
	for _, part := range []string{
		modelPath,
		s.Voice,
		strconv.FormatFloat(s.Speed, 'f', 3, 64),
		strconv.FormatFloat(s.Pitch, 'f', 3, 64),
		text,
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get looks key up in memory, then on disk. Disk hits are promoted to
// memory.
func (m *Manager) Get(key string) (tts.Samples, bool) {
	if data, ok := m.memory.Get(key); ok {
		m.count(LevelMemory)
		return decodeSamples(data)
	}

	if m.disk != nil {
		if data, ok := m.disk.Get(key); ok {
			samples, ok := decodeSamples(data)
			if !ok {
				m.logger.Warn("dropping corrupted entry", "key", key, "err", ErrCacheCorrupted)
				_ = m.disk.Delete(key)
			} else {
				m.count(LevelDisk)
				if err := m.memory.Put(key, data); err == nil {
					m.mu.Lock()
					m.stats.promotions++
					m.mu.Unlock()
				}
				return samples, true
			}
		}
	}

	m.mu.Lock()
	m.stats.misses++
	m.mu.Unlock()
	return nil, false
}

// Put stores samples in both tiers. A value too large for a tier is
// skipped there.
func (m *Manager) Put(key string, samples tts.Samples) error {
	data := encodeSamples(samples)

	if err := m.memory.Put(key, data); err != nil && err != ErrItemTooLarge {
		return fmt.Errorf("memory cache: %w", err)
	}
	if m.disk != nil {
		if err := m.disk.Put(key, data); err != nil && err != ErrItemTooLarge {
			return fmt.Errorf("disk cache: %w", err)
		}
	}
	return nil
}

// Clear empties both tiers.
func (m *Manager) Clear() error {
	if err := m.memory.Clear(); err != nil {
		return err
	}
	if m.disk != nil {
		return m.disk.Clear()
	}
	return nil
}

// Stats returns aggregated statistics.
func (m *Manager) Stats() map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	var hitRate float64
	if total := m.stats.hits + m.stats.misses; total > 0 {
		hitRate = float64(m.stats.hits) / float64(total)
	}

	stats := map[string]interface{}{
		"hits":        m.stats.hits,
		"misses":      m.stats.misses,
		"hit_rate":    hitRate,
		"memory_hits": m.stats.memoryHits,
		"disk_hits":   m.stats.diskHits,
		"promotions":  m.stats.promotions,
		"memory_size": m.memory.Size(),
	}
	if m.disk != nil {
		stats["disk_size"] = m.disk.Size()
	}
	return stats
}

// Close releases the disk tier.
func (m *Manager) Close() error {
	if m.disk != nil {
		return m.disk.Close()
	}
	return nil
}

func (m *Manager) count(level Level) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stats.hits++
	switch level {
	case LevelMemory:
		m.stats.memoryHits++
	case LevelDisk:
		m.stats.diskHits++
	}
}

// encodeSamples stores samples as little-endian float32 bits.
func encodeSamples(samples tts.Samples) []byte {
	out := make([]byte, 4*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(s))
	}
	return out
}

func decodeSamples(data []byte) (tts.Samples, bool) {
	if len(data)%4 != 0 {
		return nil, false
	}
	samples := make(tts.Samples, len(data)/4)
	for i := range samples {
		samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[4*i:]))
	}
	return samples, true
}
