package pathquery

import (
	"errors"
	"sync"
	"testing"
)

func TestCache(t *testing.T) {
	t.Parallel()

	cache := NewCache(2)

	a1, err := cache.Get("$.a")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	a2, err := cache.Get("$.a")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if a1 != a2 {
		t.Error("second Get() should return the cached query")
	}

	for _, q := range []string{"$.b", "$.c"} {
		if _, err := cache.Get(q); err != nil {
			t.Fatalf("Get(%q) error = %v", q, err)
		}
	}

	if got := cache.Len(); got != 2 {
		t.Errorf("Len() = %d, want 2", got)
	}

	want := CacheStats{Hits: 1, Misses: 3, Evictions: 1}
	if got := cache.Stats(); got != want {
		t.Errorf("Stats() = %+v, want %+v", got, want)
	}

	// $.a was least recently used and has been evicted.
	a3, err := cache.Get("$.a")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if a3 == a1 {
		t.Error("evicted query should be compiled again")
	}
}

func TestCacheDoesNotKeepFailures(t *testing.T) {
	t.Parallel()

	cache := NewCache(4)
	for range 2 {
		if _, err := cache.Get("$["); !errors.Is(err, ErrSyntax) {
			t.Fatalf("Get() error = %v, want ErrSyntax", err)
		}
	}
	if cache.Len() != 0 {
		t.Errorf("Len() = %d, want 0", cache.Len())
	}
}

func TestCacheUsesOptions(t *testing.T) {
	t.Parallel()

	cache := NewCache(1, WithResultType(ResultPath))
	q, err := cache.Get("$.a")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	result, err := q.Evaluate(map[string]any{"a": 1})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if len(result.Paths) != 1 || result.Paths[0] != "$['a']" {
		t.Errorf("Paths = %v, want [$['a']]", result.Paths)
	}
}

func TestCacheConcurrentGet(t *testing.T) {
	t.Parallel()

	cache := NewCache(8)
	queries := []string{"$.a", "$.b", "$..c", "$[0]"}

	var wg sync.WaitGroup
	for i := range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Get(queries[i%len(queries)]); err != nil {
				t.Errorf("Get() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if got := cache.Len(); got != len(queries) {
		t.Errorf("Len() = %d, want %d", got, len(queries))
	}
}
