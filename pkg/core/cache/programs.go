package cache

import (
	"crypto/sha256"
	"time"
)

// SourceKey identifies a source text in the program cache
type SourceKey [sha256.Size]byte

// KeyOf returns the cache key of source
func KeyOf(source string) SourceKey {
	return sha256.Sum256([]byte(source))
}

// ProgramCache caches parse results of type T keyed by their source.
// Identical sources share one entry, so T must not be mutated after parsing.
type ProgramCache[T any] struct {
	cache *Cache[SourceKey, T]
}

// ProgramsConfig holds configuration for the program cache
type ProgramsConfig struct {
	TTL             time.Duration // TTL for parse results (default: 10 minutes)
	MaxPrograms     int           // Max cached programs (default: 1000)
	CleanupInterval time.Duration // Expiry sweep period (default: 1 minute)
}

// DefaultProgramsConfig returns default program cache configuration
func DefaultProgramsConfig() ProgramsConfig {
	return ProgramsConfig{
		TTL:             10 * time.Minute,
		MaxPrograms:     1000,
		CleanupInterval: time.Minute,
	}
}

// NewProgramCache creates a new program cache
func NewProgramCache[T any](cfg ProgramsConfig) *ProgramCache[T] {
	def := DefaultProgramsConfig()
	if cfg.TTL <= 0 {
		cfg.TTL = def.TTL
	}
	if cfg.MaxPrograms <= 0 {
		cfg.MaxPrograms = def.MaxPrograms
	}

	return &ProgramCache[T]{
		cache: New[SourceKey, T](Config{
			MaxItems:        cfg.MaxPrograms,
			TTL:             cfg.TTL,
			CleanupInterval: cfg.CleanupInterval,
		}),
	}
}

// GetOrParse returns the cached result for source or caches what parse
// produces. The flag reports a cache hit.
func (c *ProgramCache[T]) GetOrParse(source string, parse func() (T, error)) (T, bool, error) {
	return c.cache.GetOrLoad(KeyOf(source), parse)
}

// Stats returns cache statistics
func (c *ProgramCache[T]) Stats() map[string]interface{} {
	hits, misses, rate := c.cache.Stats()

	return map[string]interface{}{
		"programs_cache_size": c.cache.Size(),
		"programs_hits":       hits,
		"programs_misses":     misses,
		"programs_hit_rate":   rate,
	}
}

// Close stops the background sweep
func (c *ProgramCache[T]) Close() {
	c.cache.Close()
}
