// Package machine implements the Machine IR: a small register-based,
// struct-and-closure-aware intermediate representation
// whose distinguishing feature is the NodeDef — a definition that
// bundles a function's persistent state (its "members") with the pure
// update logic that reads and writes it, so that recurrent/stateful
// source bindings compile to ordinary heap-allocated structs instead of
// a separate runtime concept.
//
// Grounded on internal/bytecode/instruction.go's typed-opcode idiom and
// internal/bytecode/bytecode.go's Value-with-constructor-functions idiom
// (NilValue/BoolValue/IntValue → RegValue/ParamValue/GlobalValue/...),
// adapted from a flat stack-machine instruction set to a tree-shaped,
// struct-typed IR since this compiler's target is node/closure-based,
// not stack-based.
package machine

import "github.com/curtismckinney/necronomicon/internal/intern"

// TypeKind tags a Type's concrete shape.
type TypeKind uint8

const (
	TypeU16 TypeKind = iota
	TypeU32
	TypeI64
	TypeF64
	TypeChar
	TypePointer
	TypeStruct
	TypeFunction
)

// Type is a Machine IR type. Only the fields relevant to Kind are
// populated; the rest are zero.
type Type struct {
	Kind TypeKind

	Pointee *Type // TypePointer

	StructName intern.Symbol // TypeStruct: struct types are equal iff same name id
	Members    []*Type       // TypeStruct: ordered member types

	Params []*Type // TypeFunction
	Return *Type   // TypeFunction
}

func U16Type() *Type  { return &Type{Kind: TypeU16} }
func U32Type() *Type  { return &Type{Kind: TypeU32} }
func I64Type() *Type  { return &Type{Kind: TypeI64} }
func F64Type() *Type  { return &Type{Kind: TypeF64} }
func CharType() *Type { return &Type{Kind: TypeChar} }

func PointerType(pointee *Type) *Type {
	return &Type{Kind: TypePointer, Pointee: pointee}
}

func StructType(name intern.Symbol, members []*Type) *Type {
	return &Type{Kind: TypeStruct, StructName: name, Members: members}
}

func FunctionType(params []*Type, ret *Type) *Type {
	return &Type{Kind: TypeFunction, Params: params, Return: ret}
}

// polyName is the distinguished wildcard struct's name, standing in for
// unresolved or universally quantified values. It is stamped once by
// the prim initializer (internal/machine/prim) and compared by symbol
// id here.
var polyName intern.Symbol

// SetPolyName records the interned "Poly" symbol so IsPoly/IsPolyPointer
// can recognize it. Called exactly once by prim.Install.
func SetPolyName(s intern.Symbol) { polyName = s }

// IsPoly reports whether t is the wildcard Poly struct type itself.
func IsPoly(t *Type) bool {
	return t != nil && t.Kind == TypeStruct && t.StructName.ID == polyName.ID && polyName.ID != 0
}

// IsPolyPointer reports whether t is Poly* — a pointer to the wildcard
// struct, which the structural type check treats as matching any pointer
// type.
func IsPolyPointer(t *Type) bool {
	return t != nil && t.Kind == TypePointer && IsPoly(t.Pointee)
}
