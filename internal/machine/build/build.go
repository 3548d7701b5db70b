// Package build implements the Machine IR builder: stateless
// helpers that append statements to a function's current block, each
// returning the Value produced (if any) so callers can thread data
// dependencies without naming every intermediate register by hand.
//
// Grounded on internal/bytecode/compiler.go's emit-returns-nothing /
// emitLoadConstant-returns-value split, generalized here so every
// builder call (not just constant loads) returns its produced Value,
// since this IR's Call/Load/GetElementPtr/Binop results are consumed by
// later builder calls far more often than the bytecode compiler's
// stack-implicit opcodes are.
package build

import (
	"fmt"

	"github.com/curtismckinney/necronomicon/internal/intern"
	"github.com/curtismckinney/necronomicon/internal/machine"
)

// Builder appends statements to one function's current block. It is
// cheap to construct and carries no state beyond a register-naming
// counter.
type Builder struct {
	Fn       *machine.FnDef
	Interner *intern.Table
	counter  int
}

func New(fn *machine.FnDef, interner *intern.Table) *Builder {
	return &Builder{Fn: fn, Interner: interner}
}

func (b *Builder) freshReg(t *machine.Type) machine.Value {
	b.counter++
	return machine.RegValue(b.Interner.Intern(fmt.Sprintf("%%r%d", b.counter)), t)
}

func (b *Builder) emit(s machine.Stmt) {
	b.Fn.Current.Append(s)
}

// Nalloc allocates a struct of t; slots hints the allocation's capacity.
func (b *Builder) Nalloc(t *machine.Type, slots int) machine.Value {
	result := b.freshReg(machine.PointerType(t))
	b.emit(&machine.Nalloc{Result: result, Struct: t, Slots: slots})
	return result
}

// StoreIntoSlot stores v into member i of *p.
func (b *Builder) StoreIntoSlot(v, p machine.Value, i int) {
	leaf := memberType("store_into_slot", p.Type, i)
	if !machine.Equal(leaf, v.Type) {
		panic(fmt.Sprintf("machine/build: store_into_slot: slot %d wants %s, got %s", i, machine.TypeString(leaf), machine.TypeString(v.Type)))
	}
	b.emit(&machine.Store{Val: v, Ptr: p, Slot: i})
}

// StoreIntoTag stores u32 v into the tag field (slot 0) of *p.
func (b *Builder) StoreIntoTag(v, p machine.Value) {
	if v.Type == nil || v.Type.Kind != machine.TypeU32 {
		panic("machine/build: store_into_tag: value must be u32")
	}
	b.emit(&machine.Store{Val: v, Ptr: p, Slot: 0})
}

// LoadFromSlot loads member i of *p.
func (b *Builder) LoadFromSlot(p machine.Value, i int) machine.Value {
	leaf := memberType("load_from_slot", p.Type, i)
	result := b.freshReg(leaf)
	b.emit(&machine.Load{Result: result, Ptr: p, Slot: i})
	return result
}

// GEP computes the address of a nested member. indices[0] steps through
// the pointer (must be 0); subsequent indices step through struct
// members, tracking the leaf type so the result pointer is correctly
// typed.
func (b *Builder) GEP(p machine.Value, indices []int) machine.Value {
	if len(indices) == 0 || indices[0] != 0 {
		panic("machine/build: gep: first index must be 0")
	}
	t := pointeeType("gep", p.Type)
	for _, idx := range indices[1:] {
		if t.Kind != machine.TypeStruct {
			panic("machine/build: gep: index into non-struct type")
		}
		if idx < 0 || idx >= len(t.Members) {
			panic(fmt.Sprintf("machine/build: gep: member index %d out of range (%d members)", idx, len(t.Members)))
		}
		t = t.Members[idx]
	}
	result := b.freshReg(machine.PointerType(t))
	b.emit(&machine.GetElementPtr{Result: result, Ptr: p, Indices: indices})
	return result
}

// BitCast reinterprets pointer value v as pointer type to.
func (b *Builder) BitCast(v machine.Value, to *machine.Type) machine.Value {
	if v.Type == nil || v.Type.Kind != machine.TypePointer {
		panic("machine/build: bit_cast: source value is not a pointer")
	}
	if to == nil || to.Kind != machine.TypePointer {
		panic("machine/build: bit_cast: target type is not a pointer")
	}
	result := b.freshReg(to)
	b.emit(&machine.BitCast{Result: result, Src: v})
	return result
}

// Call invokes fn with args, type-checking arity and parameter types:
// fn's IR type must be Function, and the argument count and types must
// structurally match its parameter list.
func (b *Builder) Call(fn machine.Value, args []machine.Value) machine.Value {
	if fn.Type == nil || fn.Type.Kind != machine.TypeFunction {
		panic("machine/build: call: fn is not a function value")
	}
	if len(args) != len(fn.Type.Params) {
		panic(fmt.Sprintf("machine/build: call: want %d arguments, got %d", len(fn.Type.Params), len(args)))
	}
	for i, a := range args {
		if !machine.Equal(a.Type, fn.Type.Params[i]) {
			panic(fmt.Sprintf("machine/build: call: argument %d: want %s, got %s", i, machine.TypeString(fn.Type.Params[i]), machine.TypeString(a.Type)))
		}
	}
	result := b.freshReg(fn.Type.Return)
	b.emit(&machine.Call{Result: result, Fn: fn, Args: args})
	return result
}

// Binop applies op to two primitive operands of matching type.
func (b *Builder) Binop(l, r machine.Value, op machine.BinOpKind) machine.Value {
	if !machine.Equal(l.Type, r.Type) {
		panic(fmt.Sprintf("machine/build: binop: operand type mismatch: %s vs %s", machine.TypeString(l.Type), machine.TypeString(r.Type)))
	}
	result := b.freshReg(l.Type)
	b.emit(&machine.Binop{Result: result, Op: op, L: l, R: r})
	return result
}

// Return terminates the current block with a return of v.
func (b *Builder) Return(v machine.Value) {
	b.Fn.Current.Term = &machine.Terminator{Kind: machine.TermReturn, Value: v}
}

func pointeeType(where string, t *machine.Type) *machine.Type {
	if t == nil || t.Kind != machine.TypePointer {
		panic(fmt.Sprintf("machine/build: %s: expected pointer type, got %s", where, machine.TypeString(t)))
	}
	return t.Pointee
}

func memberType(where string, t *machine.Type, slot int) *machine.Type {
	structT := pointeeType(where, t)
	if structT.Kind != machine.TypeStruct {
		panic(fmt.Sprintf("machine/build: %s: pointee is not a struct (%s)", where, machine.TypeString(structT)))
	}
	if slot < 0 || slot >= len(structT.Members) {
		panic(fmt.Sprintf("machine/build: %s: slot %d out of range (%d members)", where, slot, len(structT.Members)))
	}
	return structT.Members[slot]
}
