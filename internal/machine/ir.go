package machine

import (
	"github.com/curtismckinney/necronomicon/internal/intern"
	"github.com/curtismckinney/necronomicon/internal/symtable"
)

// Kind tags a Machine IR AST node's concrete variant: Value, Block,
// Call, Load, Store, BitCast, Nalloc, GetElementPtr, Binop, StructDef,
// FnDef, or NodeDef.
type Kind uint8

const (
	KindValue Kind = iota
	KindBlock
	KindCall
	KindLoad
	KindStore
	KindBitCast
	KindNalloc
	KindGetElementPtr
	KindBinop
	KindStructDef
	KindFnDef
	KindNodeDef
)

// Stmt is any Machine IR AST node that can appear in a block's statement
// list (plus the top-level definition kinds, which share the same tagged
// variant). IRType returns nil ("None") for statements that produce no
// value, e.g. Store.
type Stmt interface {
	Kind() Kind
	IRType() *Type
}

// ValueStmt wraps a bare Value used in statement position (e.g. a
// trivial pass-through result of a Let whose bound expression was
// already a Value — nothing to compute, just a value to remember).
type ValueStmt struct{ V Value }

func (s *ValueStmt) Kind() Kind    { return KindValue }
func (s *ValueStmt) IRType() *Type { return s.V.Type }

// Call invokes a function value with arguments.
type Call struct {
	Result Value
	Fn     Value
	Args   []Value
}

func (s *Call) Kind() Kind    { return KindCall }
func (s *Call) IRType() *Type { return s.Result.Type }

// Load reads a struct member through a pointer.
type Load struct {
	Result Value
	Ptr    Value
	Slot   int
}

func (s *Load) Kind() Kind    { return KindLoad }
func (s *Load) IRType() *Type { return s.Result.Type }

// Store writes a value into a struct member through a pointer. It
// produces no value.
type Store struct {
	Val  Value
	Ptr  Value
	Slot int // 0 is the tag field, per store_into_tag
}

func (s *Store) Kind() Kind    { return KindStore }
func (s *Store) IRType() *Type { return nil }

// BitCast reinterprets a pointer value as another pointer type.
type BitCast struct {
	Result Value
	Src    Value
}

func (s *BitCast) Kind() Kind    { return KindBitCast }
func (s *BitCast) IRType() *Type { return s.Result.Type }

// Nalloc allocates a struct. Slots hints the
// allocator's capacity; it need not equal len(T.Members) (a node's
// member list can grow across the lowering passes while a single nalloc
// site is emitted once Pass 2 has settled the final count).
type Nalloc struct {
	Result Value
	Struct *Type
	Slots  int
}

func (s *Nalloc) Kind() Kind    { return KindNalloc }
func (s *Nalloc) IRType() *Type { return s.Result.Type }

// GetElementPtr computes the address of a nested member.
// Indices[0] steps through the base pointer (must be 0); subsequent
// indices step through struct members.
type GetElementPtr struct {
	Result  Value
	Ptr     Value
	Indices []int
}

func (s *GetElementPtr) Kind() Kind    { return KindGetElementPtr }
func (s *GetElementPtr) IRType() *Type { return s.Result.Type }

// BinOpKind is the primitive arithmetic/logical operation a Binop
// applies to two operands of matching type.
type BinOpKind uint8

const (
	BinAdd BinOpKind = iota
	BinSub
	BinMul
	BinDiv
	BinEq
	BinNeq
	BinLt
	BinGt
	BinLte
	BinGte
)

// Binop applies a primitive operation to two operands.
type Binop struct {
	Result Value
	Op     BinOpKind
	L, R   Value
}

func (s *Binop) Kind() Kind    { return KindBinop }
func (s *Binop) IRType() *Type { return s.Result.Type }

// TermKind tags a Block's terminator shape: return, unconditional
// branch, conditional branch, switch, or unreachable.
type TermKind uint8

const (
	TermReturn TermKind = iota
	TermBr
	TermCondBr
	TermSwitch
	TermUnreachable
)

// SwitchCase is one arm of a Switch terminator, dispatching on a
// constructor tag loaded from the scrutinee.
type SwitchCase struct {
	Tag    int
	Target *Block
}

// Terminator ends exactly one Block. Every block has exactly one
// terminator; no statement appears after a terminator.
type Terminator struct {
	Kind TermKind

	Value Value // TermReturn

	Target *Block // TermBr

	Cond Value  // TermCondBr
	Then *Block // TermCondBr
	Else *Block // TermCondBr

	SwitchOn Value // TermSwitch
	Cases    []SwitchCase
	Default  *Block
}

// Block is a named statement sequence terminated by exactly one
// Terminator, linked into its owning function's block list via Next.
type Block struct {
	Name  intern.Symbol
	Stmts []Stmt
	Term  *Terminator
	Next  *Block
}

func (b *Block) Kind() Kind    { return KindBlock }
func (b *Block) IRType() *Type { return nil }

// Append adds a statement to the block. Builders (internal/machine/build)
// call this through a function's "current block" cursor rather than
// constructing Blocks directly.
func (b *Block) Append(s Stmt) { b.Stmts = append(b.Stmts, s) }

// FnClass classifies a FnDef's origin: user-defined, runtime, or
// primitive op.
type FnClass uint8

const (
	FnUser FnClass = iota
	FnRuntime
	FnPrimitive
)

// FnDef is a function definition: name, signature, and its block list,
// plus a "current block" cursor used while the builder is still
// appending statements to it.
type FnDef struct {
	Name    intern.Symbol
	Params  []*Type
	Return  *Type
	Blocks  *Block // head of the linked list
	Current *Block // cursor; nil once construction is finished
	Class   FnClass
}

func (f *FnDef) Kind() Kind    { return KindFnDef }
func (f *FnDef) IRType() *Type { return FunctionType(f.Params, f.Return) }

// NewFnDef creates a function definition with one entry block, current
// on Current.
func NewFnDef(name intern.Symbol, params []*Type, ret *Type, class FnClass) *FnDef {
	entry := &Block{Name: name}
	return &FnDef{Name: name, Params: params, Return: ret, Blocks: entry, Current: entry, Class: class}
}

// AddBlock appends a new block to fn's list and makes it current.
func (fn *FnDef) AddBlock(name intern.Symbol) *Block {
	b := &Block{Name: name}
	tail := fn.Blocks
	for tail.Next != nil {
		tail = tail.Next
	}
	tail.Next = b
	fn.Current = b
	return b
}

// Slot is one member of a NodeDef's persistent state: an ordered
// sequence of Slots, each pairing an IR type with a slot index >= 2.
type Slot struct {
	Type  *Type
	Index int
}

// NodeDef is the distinguishing entity of this IR.
type NodeDef struct {
	BindingName intern.Symbol
	TypeName    intern.Symbol

	ValueType *Type
	FnType    *Type // nullable: nil for a nullary node

	ArgNames []intern.Symbol
	ArgDefs  []symtable.ID // parallel to ArgNames; the symbol table id each argument name was declared under

	Members []Slot

	State symtable.StateClass

	Mk     *FnDef
	Init   *FnDef
	Update *FnDef

	Global *Value // non-nil only for top-level stateful/constant-nullary nodes
	Outer  *NodeDef

	InitialTag int

	// StructT is the node's own synthesized struct type (NecroData,
	// value type, member 0, member 1, ...), attached once Pass 2 has
	// settled the final member list.
	StructT *Type
}

func (n *NodeDef) Kind() Kind    { return KindNodeDef }
func (n *NodeDef) IRType() *Type { return n.ValueType }

// StructDef is a named struct type definition, kept alongside the Type
// it describes so the program's struct vector can enumerate definitions
// in declaration order (Type values compare by name id alone and can be
// freely copied; StructDef is the one owning record).
type StructDef struct {
	Name    intern.Symbol
	Members []*Type
}

func (s *StructDef) Kind() Kind    { return KindStructDef }
func (s *StructDef) IRType() *Type { return StructType(s.Name, s.Members) }

// Program is the Machine Program: four ordered vectors plus cached
// primitive-type handles. All of it is conceptually arena-owned; this
// lets Go's GC stand in for the paged arena (per internal/ast's design
// note), since every Machine IR value is reachable from exactly one
// Program and nothing outlives it.
type Program struct {
	Structs []*StructDef
	Funcs   []*FnDef
	Nodes   []*NodeDef
	Globals []*Value

	NecroDataT *Type
	PolyT      *Type
	PolyPtrT   *Type
}

func NewProgram() *Program { return &Program{} }

func (p *Program) AddStruct(s *StructDef) { p.Structs = append(p.Structs, s) }
func (p *Program) AddFunc(f *FnDef)       { p.Funcs = append(p.Funcs, f) }
func (p *Program) AddNode(n *NodeDef)     { p.Nodes = append(p.Nodes, n) }
func (p *Program) AddGlobal(g *Value)     { p.Globals = append(p.Globals, g) }
