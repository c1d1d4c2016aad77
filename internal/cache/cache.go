package cache

import "sync"

// Memo is a thread-safe memo table: each key is created at most once and
// kept until it is explicitly forgotten.
//
// Memo is safe for concurrent use.
// Memo must not be copied after creation (has mutex).
type Memo[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]V
	hits    uint64
	misses  uint64
}

// New creates an empty memo table.
func New[K comparable, V any]() *Memo[K, V] {
	return &Memo[K, V]{
		entries: make(map[K]V),
	}
}

// Get retrieves a value from the memo.
// Returns (value, true) if found, (zero, false) otherwise.
func (m *Memo[K, V]) Get(key K) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.entries[key]
	return v, ok
}

// GetOrCreate returns the memoized value or creates it.
// Thread-safe: create is called under lock, so concurrent first calls for
// one key run create exactly once. create must not call back into m.
// The second result reports whether the value was already present.
func (m *Memo[K, V]) GetOrCreate(key K, create func() V) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if v, ok := m.entries[key]; ok {
		m.hits++
		return v, true
	}

	m.misses++
	v := create()
	m.entries[key] = v
	return v, false
}

// Forget removes key. Returns true if the entry was present.
func (m *Memo[K, V]) Forget(key K) bool {
	return m.ForgetFunc(key, func(V) bool { return true })
}

// ForgetFunc removes key only if match reports true for the stored value.
// Use it to drop a specific value without racing a newer one stored under
// the same key.
func (m *Memo[K, V]) ForgetFunc(key K, match func(V) bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.entries[key]
	if !ok || !match(v) {
		return false
	}
	delete(m.entries, key)
	return true
}

// Len returns the number of memoized entries.
func (m *Memo[K, V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.entries)
}

// Stats returns memo statistics.
func (m *Memo[K, V]) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Stats{
		Len:    len(m.entries),
		Hits:   m.hits,
		Misses: m.misses,
	}
}

// Stats contains memo statistics.
type Stats struct {
	// Len is the current number of entries.
	Len int
	// Hits is the number of GetOrCreate calls served from the table.
	Hits uint64
	// Misses is the number of GetOrCreate calls that ran create.
	Misses uint64
}

// HitRate returns the fraction of GetOrCreate calls served from the table.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}
