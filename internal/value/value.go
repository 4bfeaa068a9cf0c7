// Package value implements the VM's Value and Object model: a tagged union
// of number/bool/nil/object-reference, and a heap-allocated Object variant
// set (currently just strings) owned by a per-VM intrusive list.
package value

import "fmt"

// Kind discriminates the Value union.
type Kind uint8

const (
	KindNil Kind = iota
	KindBool
	KindNumber
	KindObj
)

// Value is a tagged union: exactly one of the payload fields is meaningful,
// selected by Kind. It is a plain struct rather than an interface so that
// VM dispatch never allocates or type-asserts.
type Value struct {
	Kind Kind
	Num  float64
	Bool bool
	Obj  *Object // non-owning: the VM's object list owns the referent
}

func Nil() Value                 { return Value{Kind: KindNil} }
func Bool(b bool) Value          { return Value{Kind: KindBool, Bool: b} }
func Number(n float64) Value     { return Value{Kind: KindNumber, Num: n} }
func Obj(o *Object) Value        { return Value{Kind: KindObj, Obj: o} }

// IsNil, IsBool, IsNumber, IsString report the dynamic type of a Value.
func (v Value) IsNil() bool    { return v.Kind == KindNil }
func (v Value) IsBool() bool   { return v.Kind == KindBool }
func (v Value) IsNumber() bool { return v.Kind == KindNumber }
func (v Value) IsString() bool { return v.Kind == KindObj && v.Obj != nil && v.Obj.Type == ObjString }

// AsString returns the underlying Go string of a string Value. The caller
// must have checked IsString first.
func (v Value) AsString() string { return v.Obj.Str.Bytes }

// IsTruthy: nil and bool(false) are false; everything else (including 0
// and the empty string) is true.
func (v Value) IsTruthy() bool {
	switch v.Kind {
	case KindNil:
		return false
	case KindBool:
		return v.Bool
	default:
		return true
	}
}

// Equal implements Value equality: same tag and same payload. Two strings
// are equal iff they are the same interned object (reference identity).
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindNil:
		return true
	case KindBool:
		return a.Bool == b.Bool
	case KindNumber:
		return a.Num == b.Num
	case KindObj:
		return a.Obj == b.Obj
	default:
		return false
	}
}

// String renders a Value the way PRINT does.
func (v Value) String() string {
	switch v.Kind {
	case KindNil:
		return "nil"
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case KindNumber:
		return formatNumber(v.Num)
	case KindObj:
		return v.Obj.String()
	default:
		return "<invalid value>"
	}
}

func formatNumber(n float64) string {
	if n == float64(int64(n)) {
		return fmt.Sprintf("%d", int64(n))
	}
	return fmt.Sprintf("%g", n)
}

// TypeName names a Value's dynamic type for diagnostics.
func TypeName(v Value) string {
	switch v.Kind {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindObj:
		switch v.Obj.Type {
		case ObjString:
			return "string"
		default:
			return "object"
		}
	default:
		return "unknown"
	}
}
