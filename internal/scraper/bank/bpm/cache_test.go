package bpm

import (
	"fmt"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFIFOCache_Eviction(t *testing.T) {
	c := newFIFOCache[string, int](10)
	for i := range 10 {
		c.put(strconv.Itoa(i), i)
	}
	require.Equal(t, 10, c.len())

	c.put("10", 10)

	assert.Equal(t, 9, c.len(), "oldest fifth dropped before insert")
	for _, gone := range []string{"0", "1"} {
		_, ok := c.get(gone)
		assert.False(t, ok, "key %s", gone)
	}
	for _, kept := range []string{"2", "9", "10"} {
		_, ok := c.get(kept)
		assert.True(t, ok, "key %s", kept)
	}
}

func TestFIFOCache_SmallMaxEvictsOne(t *testing.T) {
	c := newFIFOCache[string, int](3)
	c.put("a", 1)
	c.put("b", 2)
	c.put("c", 3)

	c.get("a") // reads do not refresh
	c.put("d", 4)

	_, ok := c.get("a")
	assert.False(t, ok)
	assert.Equal(t, 3, c.len())
}

func TestFIFOCache_UpdateKeepsOrder(t *testing.T) {
	c := newFIFOCache[string, int](2)
	c.put("a", 1)
	c.put("a", 2)

	v, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, c.len())
}

func TestCachedParser_Equivalence(t *testing.T) {
	inputs := []string{"25", " 25 ", "25.9", "-3.7", "25-Q1", "ABC123DEF456", "PENDING", "", "  ", "99999999999999999999"}
	cached := NewCachedParser(NewCache(0, 0), nil)

	for round := range 2 {
		for _, in := range inputs {
			wantOK, wantValue := ParseNumeric(in)
			gotOK, gotValue := cached.Parse(in)

			assert.Equal(t, wantOK, gotOK, "round %d input %q", round, in)
			assert.Equal(t, wantValue, gotValue, "round %d input %q", round, in)
		}
	}
}

func TestCachedParser_ReturnsCopies(t *testing.T) {
	cached := NewCachedParser(NewCache(0, 0), nil)

	_, first := cached.Parse("27")
	*first = 99
	_, second := cached.Parse("27")

	assert.Equal(t, 27, *second)
}

func TestCachedClassifier_Equivalence(t *testing.T) {
	cache := NewCache(0, 0)
	cached := NewCachedClassifier(cache, nil)
	plain := NewClassifier(nil)

	inputs := [][]Column{
		nil,
		textColumns("REF", "SWIFT"),
		numericColumns(27),
		numericColumns(15, 27),
		numericColumns(27, 15),
		{NewTextColumn(1, "REF"), NewNumericColumn(2, "15-PROD", 15), NewNumericColumn(3, "27", 27)},
	}

	for round := range 2 {
		for i, cols := range inputs {
			assert.Equal(t, plain.Classify(cols), cached.Classify(cols), "round %d input %d", round, i)
		}
	}

	stats := cache.Stats()
	assert.Positive(t, stats.Hits)
}

func TestEnvironmentKey_KeepsOrder(t *testing.T) {
	assert.Equal(t, "15,27", environmentKey(numericColumns(15, 27)))
	assert.Equal(t, "27,15", environmentKey(numericColumns(27, 15)))
	assert.Equal(t, "", environmentKey(textColumns("A")))
}

func TestCache_ClearAndStats(t *testing.T) {
	cache := NewCache(50, 20)
	parser := NewCachedParser(cache, nil)
	classifier := NewCachedClassifier(cache, nil)

	parser.Parse("1")
	parser.Parse("1")
	classifier.Classify(numericColumns(26))

	stats := cache.Stats()
	assert.Equal(t, CacheStats{
		NumericSize:     1,
		EnvironmentSize: 1,
		NumericMax:      50,
		EnvironmentMax:  20,
		Hits:            1,
		Misses:          2,
	}, stats)

	cache.Clear()
	cache.Clear()

	assert.Equal(t, CacheStats{NumericMax: 50, EnvironmentMax: 20}, cache.Stats())
}

func TestCache_Defaults(t *testing.T) {
	stats := NewCache(-1, 0).Stats()

	assert.Equal(t, DefaultNumericCacheSize, stats.NumericMax)
	assert.Equal(t, DefaultEnvironmentCacheSize, stats.EnvironmentMax)
}

func TestCache_Concurrent(t *testing.T) {
	cache := NewCache(100, 10)
	parser := NewCachedParser(cache, nil)
	classifier := NewCachedClassifier(cache, nil)

	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 500 {
				text := fmt.Sprintf("%d-%d", g, i)
				ok, value := parser.Parse(text)
				assert.True(t, ok)
				assert.Equal(t, g, *value)
				classifier.Classify(numericColumns(i % 40))
			}
		}()
	}
	wg.Wait()

	stats := cache.Stats()
	assert.LessOrEqual(t, stats.NumericSize, 100)
	assert.LessOrEqual(t, stats.EnvironmentSize, 10)
}
