package bpm

import (
	"strconv"
	"strings"
	"sync"
)

const (
	DefaultNumericCacheSize     = 1000
	DefaultEnvironmentCacheSize = 500
)

// fifoCache evicts the oldest fifth of its keys, by insertion order, once
// it is full. Reads do not refresh an entry.
type fifoCache[K comparable, V any] struct {
	max     int
	order   []K
	entries map[K]V
}

func newFIFOCache[K comparable, V any](max int) *fifoCache[K, V] {
	if max < 1 {
		max = 1
	}
	return &fifoCache[K, V]{max: max, entries: make(map[K]V)}
}

func (c *fifoCache[K, V]) get(key K) (V, bool) {
	v, ok := c.entries[key]
	return v, ok
}

func (c *fifoCache[K, V]) put(key K, value V) {
	if _, ok := c.entries[key]; ok {
		c.entries[key] = value
		return
	}

	if len(c.entries) >= c.max {
		n := c.max / 5
		if n < 1 {
			n = 1
		}
		for _, k := range c.order[:n] {
			delete(c.entries, k)
		}
		c.order = append(c.order[:0:0], c.order[n:]...)
	}

	c.order = append(c.order, key)
	c.entries[key] = value
}

func (c *fifoCache[K, V]) len() int {
	return len(c.entries)
}

func (c *fifoCache[K, V]) clear() {
	c.order = nil
	c.entries = make(map[K]V)
}

type numericEntry struct {
	ok    bool
	value int
}

// Cache memoizes numeric parsing and environment classification. It is safe
// for concurrent use; LookupMany shares one across goroutines.
type Cache struct {
	mu          sync.Mutex
	numeric     *fifoCache[string, numericEntry]
	environment *fifoCache[string, Environment]
	hits        int
	misses      int
}

// NewCache sizes both caches; non-positive sizes fall back to the defaults.
func NewCache(numericMax, environmentMax int) *Cache {
	if numericMax <= 0 {
		numericMax = DefaultNumericCacheSize
	}
	if environmentMax <= 0 {
		environmentMax = DefaultEnvironmentCacheSize
	}
	return &Cache{
		numeric:     newFIFOCache[string, numericEntry](numericMax),
		environment: newFIFOCache[string, Environment](environmentMax),
	}
}

// Clear empties both caches and resets the counters.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.numeric.clear()
	c.environment.clear()
	c.hits = 0
	c.misses = 0
}

type CacheStats struct {
	NumericSize     int `json:"numeric_cache_size"`
	EnvironmentSize int `json:"environment_cache_size"`
	NumericMax      int `json:"numeric_cache_max"`
	EnvironmentMax  int `json:"environment_cache_max"`
	Hits            int `json:"hits"`
	Misses          int `json:"misses"`
}

func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return CacheStats{
		NumericSize:     c.numeric.len(),
		EnvironmentSize: c.environment.len(),
		NumericMax:      c.numeric.max,
		EnvironmentMax:  c.environment.max,
		Hits:            c.hits,
		Misses:          c.misses,
	}
}

func (c *Cache) lookupNumeric(key string) (numericEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.numeric.get(key)
	c.count(ok)
	return e, ok
}

func (c *Cache) storeNumeric(key string, e numericEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.numeric.put(key, e)
}

func (c *Cache) lookupEnvironment(key string) (Environment, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	env, ok := c.environment.get(key)
	c.count(ok)
	return env, ok
}

func (c *Cache) storeEnvironment(key string, env Environment) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.environment.put(key, env)
}

func (c *Cache) count(hit bool) {
	if hit {
		c.hits++
	} else {
		c.misses++
	}
}

// CachedParser memoizes a NumericParser by trimmed input text.
type CachedParser struct {
	cache *Cache
	next  NumericParser
}

func NewCachedParser(cache *Cache, next NumericParser) *CachedParser {
	if next == nil {
		next = DefaultNumericParser{}
	}
	return &CachedParser{cache: cache, next: next}
}

func (p *CachedParser) Parse(text string) (bool, *int) {
	key := strings.TrimSpace(text)
	if e, ok := p.cache.lookupNumeric(key); ok {
		return e.result()
	}

	ok, value := p.next.Parse(key)
	e := numericEntry{ok: ok && value != nil}
	if e.ok {
		e.value = *value
	}
	p.cache.storeNumeric(key, e)
	return e.result()
}

func (e numericEntry) result() (bool, *int) {
	if !e.ok {
		return false, nil
	}
	v := e.value
	return true, &v
}

// CachedClassifier memoizes a Classifier by the ordered sequence of numeric
// values in the columns. Order is part of the key: only the first numeric
// value decides the tier, so sorting would merge rows that classify
// differently.
type CachedClassifier struct {
	cache *Cache
	next  Classifier
}

func NewCachedClassifier(cache *Cache, next Classifier) *CachedClassifier {
	if next == nil {
		next = NewClassifier(nil)
	}
	return &CachedClassifier{cache: cache, next: next}
}

func (c *CachedClassifier) Classify(columns []Column) Environment {
	key := environmentKey(columns)
	if env, ok := c.cache.lookupEnvironment(key); ok {
		return env
	}

	env := c.next.Classify(columns)
	c.cache.storeEnvironment(key, env)
	return env
}

func environmentKey(columns []Column) string {
	var b strings.Builder
	for _, col := range columns {
		v, ok := col.NumericValue()
		if !ok {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(v))
	}
	return b.String()
}
