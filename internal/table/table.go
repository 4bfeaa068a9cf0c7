// Package table implements the open-addressed hash table shared by the VM's
// globals and by the string intern set.
package table

const (
	initialCapacity = 8
	maxLoad         = 0.75
)

type entryState uint8

const (
	stateEmpty entryState = iota
	stateTombstone
	stateOccupied
)

type entry[K comparable, V any] struct {
	key   K
	value V
	state entryState
}

// HashTable is a generic open-addressed table with linear probing and
// tombstone deletion. Collision resolution probes the table itself rather
// than chaining; tombstones keep probe chains intact across deletes and
// count toward the load factor so churn cannot degenerate them.
type HashTable[K comparable, V any] struct {
	entries []entry[K, V]
	count   int // occupied + tombstone slots
	hash    func(K) uint32
}

// New creates an empty table. hash must be deterministic and consistent
// with K's equality (equal keys must hash identically).
func New[K comparable, V any](hash func(K) uint32) *HashTable[K, V] {
	return &HashTable[K, V]{hash: hash}
}

// Len returns the number of live (non-tombstone) entries.
func (t *HashTable[K, V]) Len() int {
	n := 0
	for _, e := range t.entries {
		if e.state == stateOccupied {
			n++
		}
	}
	return n
}

// Get looks up key, returning its value and true if present.
func (t *HashTable[K, V]) Get(key K) (V, bool) {
	var zero V
	if len(t.entries) == 0 {
		return zero, false
	}
	idx, found := t.find(key)
	if !found {
		return zero, false
	}
	return t.entries[idx].value, true
}

// Set inserts or overwrites key -> value. Reports whether the key was new.
func (t *HashTable[K, V]) Set(key K, value V) bool {
	if float64(t.count+1) > float64(len(t.entries))*maxLoad {
		t.grow()
	}
	idx := t.probe(key)
	isNew := t.entries[idx].state != stateOccupied
	if isNew && t.entries[idx].state == stateEmpty {
		t.count++
	}
	t.entries[idx] = entry[K, V]{key: key, value: value, state: stateOccupied}
	return isNew
}

// SetExisting overwrites the value for key only if it is already present.
// Used for assignment to a global, which must not implicitly declare it.
func (t *HashTable[K, V]) SetExisting(key K, value V) bool {
	idx, found := t.find(key)
	if !found {
		return false
	}
	t.entries[idx].value = value
	return true
}

// Delete removes key, leaving a tombstone in its slot.
func (t *HashTable[K, V]) Delete(key K) bool {
	idx, found := t.find(key)
	if !found {
		return false
	}
	var zeroK K
	var zeroV V
	t.entries[idx] = entry[K, V]{key: zeroK, value: zeroV, state: stateTombstone}
	return true
}

// AddAll copies every entry of other into t; entries already present in t
// are overwritten (later insertions win).
func (t *HashTable[K, V]) AddAll(other *HashTable[K, V]) {
	for _, e := range other.entries {
		if e.state == stateOccupied {
			t.Set(e.key, e.value)
		}
	}
}

// FindMatch scans the probe chain for hash looking for a live key that
// satisfies match, without requiring a constructed K up front. This backs
// string interning: the caller probes by content hash before it has
// decided whether to allocate a new key object.
func (t *HashTable[K, V]) FindMatch(hash uint32, match func(K) bool) (K, bool) {
	var zero K
	if len(t.entries) == 0 {
		return zero, false
	}
	capacity := uint32(len(t.entries))
	idx := hash % capacity
	for {
		e := &t.entries[idx]
		switch e.state {
		case stateEmpty:
			return zero, false
		case stateOccupied:
			if match(e.key) {
				return e.key, true
			}
		}
		idx = (idx + 1) % capacity
	}
}

// find returns the slot index holding key, if occupied.
func (t *HashTable[K, V]) find(key K) (int, bool) {
	if len(t.entries) == 0 {
		return 0, false
	}
	capacity := uint32(len(t.entries))
	idx := t.hash(key) % capacity
	for {
		e := &t.entries[idx]
		switch e.state {
		case stateEmpty:
			return 0, false
		case stateOccupied:
			if e.key == key {
				return int(idx), true
			}
		}
		idx = (idx + 1) % capacity
	}
}

// probe finds the slot key should occupy: its existing slot if present,
// otherwise the first tombstone seen along the way, otherwise the first
// empty slot.
func (t *HashTable[K, V]) probe(key K) int {
	capacity := uint32(len(t.entries))
	idx := t.hash(key) % capacity
	tombstone := -1
	for {
		e := &t.entries[idx]
		switch e.state {
		case stateEmpty:
			if tombstone != -1 {
				return tombstone
			}
			return int(idx)
		case stateTombstone:
			if tombstone == -1 {
				tombstone = int(idx)
			}
		case stateOccupied:
			if e.key == key {
				return int(idx)
			}
		}
		idx = (idx + 1) % capacity
	}
}

// grow doubles capacity (or allocates the initial capacity), dropping
// tombstones and re-inserting every live entry under the new capacity.
func (t *HashTable[K, V]) grow() {
	newCap := initialCapacity
	if len(t.entries) > 0 {
		newCap = len(t.entries) * 2
	}
	old := t.entries
	t.entries = make([]entry[K, V], newCap)
	t.count = 0
	for _, e := range old {
		if e.state == stateOccupied {
			idx := t.probe(e.key)
			t.entries[idx] = e
			t.count++
		}
	}
}
