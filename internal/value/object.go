package value

import (
	"hash/fnv"

	"github.com/Ashymad/dlox/internal/table"
)

// ObjType discriminates the Object union. Only strings exist today; the
// variant set is left open for the tagged-union style the spec calls for,
// without speculative cases the bytecode core never produces.
type ObjType uint8

const (
	ObjString ObjType = iota
)

// ObjStringData is the immutable payload of a string object: its bytes and
// a precomputed 32-bit hash, used both for map lookups and for the intern
// set's content probe.
type ObjStringData struct {
	Bytes string
	Hash  uint32
}

// Object is a heap-allocated value. It carries a Next pointer so the Heap
// that owns it can keep every live object on one intrusive singly-linked
// list, the sweep root a future collector would walk.
type Object struct {
	Type ObjType
	Str  *ObjStringData // valid when Type == ObjString
	Next *Object
}

// String renders an object the way PRINT does.
func (o *Object) String() string {
	switch o.Type {
	case ObjString:
		return o.Str.Bytes
	default:
		return "<object>"
	}
}

// Equal compares two objects by variant. Strings are interned, so equality
// reduces to reference identity; this still checks Type first so it stays
// correct if a second object variant is ever added.
func (o *Object) Equal(other *Object) bool {
	if o == other {
		return true
	}
	if other == nil || o.Type != other.Type {
		return false
	}
	switch o.Type {
	case ObjString:
		return false // distinct *Object of the same Type never share bytes once interned
	default:
		return false
	}
}

// Heap owns every object allocated for the lifetime of one VM: the
// intrusive object list freed on teardown, and the string intern set that
// guarantees one Object per distinct byte content.
type Heap struct {
	objects *Object
	strings *table.HashTable[*Object, *Object]
}

func NewHeap() *Heap {
	return &Heap{
		strings: table.New[*Object, *Object](func(o *Object) uint32 { return o.Str.Hash }),
	}
}

// NewString interns bytes: if a live string object with identical content
// already exists, its reference is returned; otherwise a new object is
// allocated, linked into the heap's object list, and inserted into the
// intern set.
func (h *Heap) NewString(bytes string) *Object {
	hash := hashString(bytes)
	if existing, ok := h.strings.FindMatch(hash, func(o *Object) bool {
		return o.Str.Hash == hash && o.Str.Bytes == bytes
	}); ok {
		return existing
	}
	obj := &Object{
		Type: ObjString,
		Str:  &ObjStringData{Bytes: bytes, Hash: hash},
	}
	h.link(obj)
	h.strings.Set(obj, obj)
	return obj
}

// Concat allocates the single buffer a+b and interns it, per spec.
func (h *Heap) Concat(a, b *Object) *Object {
	return h.NewString(a.Str.Bytes + b.Str.Bytes)
}

func (h *Heap) link(o *Object) {
	o.Next = h.objects
	h.objects = o
}

// Free releases every object owned by this heap and the intern set
// alongside it. Go's garbage collector reclaims the underlying memory once
// the last reference is dropped here; this walk exists so the ownership
// model matches spec.md's explicit-lifecycle design (and so a future
// manually-managed allocator could be dropped in without changing callers).
func (h *Heap) Free() {
	for o := h.objects; o != nil; {
		next := o.Next
		o.Next = nil
		o = next
	}
	h.objects = nil
	h.strings = table.New[*Object, *Object](func(o *Object) uint32 { return o.Str.Hash })
}

func hashString(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}
