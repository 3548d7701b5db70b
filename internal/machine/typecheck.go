package machine

import "fmt"

// Equal implements a structural type-check: primitive types equal
// iff same tag, struct types equal iff same name id, function types
// equal iff same arity and pointwise-equal parameters and return, and
// pointer types equal iff pointees are equal — except that Poly*
// matches any pointer type.
func Equal(a, b *Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	if IsPolyPointer(a) && b.Kind == TypePointer {
		return true
	}
	if IsPolyPointer(b) && a.Kind == TypePointer {
		return true
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case TypeU16, TypeU32, TypeI64, TypeF64, TypeChar:
		return true
	case TypePointer:
		return Equal(a.Pointee, b.Pointee)
	case TypeStruct:
		return a.StructName.ID == b.StructName.ID
	case TypeFunction:
		if len(a.Params) != len(b.Params) || !Equal(a.Return, b.Return) {
			return false
		}
		for i := range a.Params {
			if !Equal(a.Params[i], b.Params[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// assertType panics with the given context when got doesn't match want.
// A mismatch here is a programmer error, not a user diagnostic: the IR
// is not meant to be constructed in an ill-typed state.
func assertType(where string, want, got *Type) {
	if !Equal(want, got) {
		panic(fmt.Sprintf("machine: %s: type mismatch: want %s, got %s", where, TypeString(want), TypeString(got)))
	}
}

// assertPointer panics unless t is a pointer type.
func assertPointer(where string, t *Type) *Type {
	if t == nil || t.Kind != TypePointer {
		panic(fmt.Sprintf("machine: %s: expected pointer type, got %s", where, TypeString(t)))
	}
	return t.Pointee
}

// TypeString renders a Type for diagnostics. Not a general pretty-printer
// (internal/machine/printer owns that) — just enough for assertion
// messages to be legible.
func TypeString(t *Type) string {
	if t == nil {
		return "<none>"
	}
	switch t.Kind {
	case TypeU16:
		return "u16"
	case TypeU32:
		return "u32"
	case TypeI64:
		return "i64"
	case TypeF64:
		return "f64"
	case TypeChar:
		return "char"
	case TypePointer:
		return TypeString(t.Pointee) + "*"
	case TypeStruct:
		return fmt.Sprintf("struct#%d", t.StructName.ID)
	case TypeFunction:
		s := "fn("
		for i, p := range t.Params {
			if i > 0 {
				s += ", "
			}
			s += TypeString(p)
		}
		return s + ") -> " + TypeString(t.Return)
	default:
		return "<unknown>"
	}
}
