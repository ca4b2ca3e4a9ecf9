package cparse

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/maypok86/otter"
)

// Extractor parses bucket text. *Parser and *CachedParser implement it.
type Extractor interface {
	ParseLines(ctx context.Context, lines []string) (*Extraction, error)
}

// CachedParser memoises extractions by content hash. Repeated conversions of a listing
// only reparse the buckets whose text changed. Returned extractions are shared and
// must not be modified.
type CachedParser struct {
	parser *Parser
	cache  otter.Cache[string, *Extraction]
}

// NewCachedParser creates a parser whose cache holds up to capacity extractions.
func NewCachedParser(capacity int) (*CachedParser, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("cache capacity must be positive, got %d", capacity)
	}
	cache, err := otter.MustBuilder[string, *Extraction](capacity).
		CollectStats().
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build extraction cache: %w", err)
	}
	return &CachedParser{parser: NewParser(), cache: cache}, nil
}

// ParseLines returns the cached extraction for lines, parsing on a miss.
func (c *CachedParser) ParseLines(ctx context.Context, lines []string) (*Extraction, error) {
	text := strings.Join(lines, "\n")
	sum := sha256.Sum256([]byte(text))
	key := hex.EncodeToString(sum[:])

	if ex, ok := c.cache.Get(key); ok {
		return ex, nil
	}

	ex, err := c.parser.Parse(ctx, []byte(text))
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, ex)
	return ex, nil
}

// Hits returns the number of cache hits so far.
func (c *CachedParser) Hits() int64 {
	return c.cache.Stats().Hits()
}

// Close releases the cache.
func (c *CachedParser) Close() {
	c.cache.Close()
}
