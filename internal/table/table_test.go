package table

import (
	"fmt"
	"testing"
)

func hashString(s string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}

func TestSetGetRoundTrip(t *testing.T) {
	tbl := New[string, int](hashString)

	isNew := tbl.Set("a", 1)
	if !isNew {
		t.Fatalf("expected a to be a new key")
	}
	tbl.Set("b", 2)
	tbl.Set("a", 3) // overwrite

	v, ok := tbl.Get("a")
	if !ok || v != 3 {
		t.Fatalf("Get(a) = %v, %v; want 3, true", v, ok)
	}
	v, ok = tbl.Get("b")
	if !ok || v != 2 {
		t.Fatalf("Get(b) = %v, %v; want 2, true", v, ok)
	}
	if _, ok := tbl.Get("missing"); ok {
		t.Fatalf("Get(missing) should not be found")
	}
}

func TestGetOnEmptyTable(t *testing.T) {
	tbl := New[string, int](hashString)
	if _, ok := tbl.Get("x"); ok {
		t.Fatalf("empty table should never report found")
	}
}

func TestDeleteWritesTombstone(t *testing.T) {
	tbl := New[string, int](hashString)
	tbl.Set("a", 1)
	tbl.Set("b", 2)

	if !tbl.Delete("a") {
		t.Fatalf("Delete(a) should succeed")
	}
	if tbl.Delete("a") {
		t.Fatalf("Delete(a) twice should report not-found")
	}
	if _, ok := tbl.Get("a"); ok {
		t.Fatalf("deleted key should not be found")
	}
	// Unrelated key survives the delete.
	if v, ok := tbl.Get("b"); !ok || v != 2 {
		t.Fatalf("Get(b) = %v, %v; want 2, true", v, ok)
	}
}

func TestSetExisting(t *testing.T) {
	tbl := New[string, int](hashString)
	if tbl.SetExisting("x", 1) {
		t.Fatalf("SetExisting on absent key should fail")
	}
	tbl.Set("x", 1)
	if !tbl.SetExisting("x", 2) {
		t.Fatalf("SetExisting on present key should succeed")
	}
	if v, _ := tbl.Get("x"); v != 2 {
		t.Fatalf("Get(x) = %v; want 2", v)
	}
}

// TestGrowthPreservesContent forces several grow cycles by inserting 1,500
// keys while churning a third of them (set then delete then re-set), and
// verifies every live key is still findable and that tombstones do not get
// counted as live entries.
func TestGrowthPreservesContent(t *testing.T) {
	tbl := New[string, int](hashString)
	const n = 500

	live := map[string]int{}
	for cycle := 0; cycle < 3; cycle++ {
		for i := 0; i < n; i++ {
			key := fmt.Sprintf("key-%d-%d", cycle, i)
			tbl.Set(key, i)
			live[key] = i
			if i%3 == 0 {
				// Churn: delete and re-insert a third of the keys, so each
				// re-insert has to reuse (or, on a grow, drop) the tombstone
				// the delete left behind.
				tbl.Delete(key)
				delete(live, key)
				tbl.Set(key, i*10)
				live[key] = i * 10
			}
		}
	}

	for key, want := range live {
		got, ok := tbl.Get(key)
		if !ok || got != want {
			t.Fatalf("Get(%s) = %v, %v; want %v, true", key, got, ok, want)
		}
	}
	if got := tbl.Len(); got != len(live) {
		t.Fatalf("Len() = %d; want %d", got, len(live))
	}
}

func TestAddAllLaterWins(t *testing.T) {
	a := New[string, int](hashString)
	b := New[string, int](hashString)
	a.Set("shared", 1)
	a.Set("onlyA", 10)
	b.Set("shared", 2)
	b.Set("onlyB", 20)

	a.AddAll(b)

	if v, _ := a.Get("shared"); v != 2 {
		t.Fatalf("AddAll should let later insertions win, got %d", v)
	}
	if v, _ := a.Get("onlyA"); v != 10 {
		t.Fatalf("AddAll should preserve keys unique to the receiver, got %d", v)
	}
	if v, _ := a.Get("onlyB"); v != 20 {
		t.Fatalf("AddAll should copy keys unique to the argument, got %d", v)
	}
}

func TestFindMatch(t *testing.T) {
	tbl := New[string, string](hashString)
	tbl.Set("hello", "hello")
	tbl.Set("world", "world")

	key, ok := tbl.FindMatch(hashString("hello"), func(k string) bool { return k == "hello" })
	if !ok || key != "hello" {
		t.Fatalf("FindMatch(hello) = %v, %v; want hello, true", key, ok)
	}
	if _, ok := tbl.FindMatch(hashString("nope"), func(k string) bool { return k == "nope" }); ok {
		t.Fatalf("FindMatch should not find an absent key")
	}
}
