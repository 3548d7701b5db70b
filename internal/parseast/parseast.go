// Package parseast defines the input Parse AST: a compact arena of
// variant records, where child references are integer offsets into the
// same arena and the null offset (0) means "none". This is the external
// collaborator's output format (the lexer and parser are out of scope)
// — the reifier (package reify) is this package's only consumer.
package parseast

import "github.com/curtismckinney/necronomicon/internal/diag"

// Ref is an integer offset into an Arena's Nodes slice. 0 is the null
// offset ("none"), matching the arena's reserved sentinel convention.
type Ref int32

// Tag discriminates the arena's variant records. The set is fixed by the
// list of input variant tags the reifier depends on.
type Tag uint8

const (
	TagNone Tag = iota

	// Constants: sub-tagged by ConstKind. Pattern-literal variants carry
	// IsPattern=true and are left as literals by the reifier.
	TagConst

	TagBinOp // binary operator application; OpType carries the canonical-method tie-break
	TagUnOp  // unary operator application

	TagIfThenElse

	TagTopDecl // one top-level declaration; Next threads the top-level list
	TagDecl    // one local (let/where) declaration; Next threads the block

	TagSimpleAssignment // name = rhs
	TagApatsAssignment  // name apat1 apat2 ... = rhs (curried function clause)
	TagPatAssignment    // pat = rhs (pattern destructuring binding)

	TagRHS // a right-hand side, with an optional `where` block

	TagLet
	TagFunExpr // curried application chain: Item holds one term, Next threads the chain (f a b c -> four chained nodes)

	TagVar // a name occurrence; VarType says which namespace/role it plays

	TagApat     // one atomic pattern; Next threads a curried parameter list
	TagWildcard

	TagLambda
	TagDo

	TagPatExpr // a pattern appearing in an expression-like position (e.g. as-pattern)

	TagListExpr
	TagArrayExpr
	TagTupleExpr
	TagListNode // one list/tuple element; Item holds the element, Next threads it

	TagBindAssignment    // a `bind`-desugared statement in a do-block
	TagPatBindAssignment // a pattern bind statement in a do-block

	TagArithSeq // sub-tagged by ArithSeqKind: from / from-to / from-then-to

	TagCaseExpr
	TagCaseAlt

	TagConId // a constructor name occurrence; ConKind says term or type position

	TagDataDecl

	TagTypeApp
	TagOpSymbol     // Left op Right, pre-rewrite operator-as-symbol node
	TagLeftSection  // (expr op)
	TagRightSection // (op expr)

	TagTypeSig      // a type signature, with an optional class context
	TagClassContext
	TagClassDecl
	TagInstanceDecl
	TagFunType
	TagSimpleType
	TagConstructor // one data-declaration constructor (name + field types)
)

// ConstKind is the constant literal's sub-tag.
type ConstKind uint8

const (
	ConstInt ConstKind = iota
	ConstFloat
	ConstString
	ConstChar
)

// OpType is the canonical operator classification preserved through the
// reifier's rewrite of the operator token into a method-name symbol,
// so downstream tie-breaking (e.g. fixity) can still consult it.
type OpType uint8

const (
	OpNone OpType = iota
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpEq
	OpNeq
	OpLt
	OpGt
	OpLte
	OpGte
	OpRightBind // `>>=`-style monadic bind
	OpAppend    // list append, `++`
	OpUser      // a user-defined operator with no canonical dictionary method
)

// MethodName returns the canonical method-name spelling the reifier
// rewrites this OpType's symbol to, and whether one exists at all
// (OpUser and OpNone do not get rewritten — user-defined operators keep
// their source spelling rather than being mapped onto a fixed dictionary
// method).
func (op OpType) MethodName() (string, bool) {
	switch op {
	case OpAdd:
		return "add", true
	case OpSub:
		return "sub", true
	case OpMul:
		return "mul", true
	case OpDiv:
		return "div", true
	case OpEq:
		return "eq", true
	case OpNeq:
		return "neq", true
	case OpLt:
		return "lt", true
	case OpGt:
		return "gt", true
	case OpLte:
		return "lte", true
	case OpGte:
		return "gte", true
	case OpRightBind:
		return "bind", true
	case OpAppend:
		return "append", true
	default:
		return "", false
	}
}

// VarType distinguishes the roles a name occurrence can play: an
// ordinary use, a binding declaration, a type signature, a class-method
// signature, or a type-variable occurrence (bound or free).
type VarType uint8

const (
	VarUse VarType = iota
	VarDeclaration
	VarSig
	VarClassSig
	VarTypeVarDecl
	VarTypeFreeVar
)

// ConKind distinguishes a constructor-id occurrence in term position from
// one in type position.
type ConKind uint8

const (
	ConTerm ConKind = iota
	ConTypeCtor
)

// ArithSeqKind is the arithmetic-sequence sub-tag.
type ArithSeqKind uint8

const (
	ArithFrom ArithSeqKind = iota
	ArithFromTo
	ArithFromThenTo
)

// Node is one arena record. Which fields are meaningful depends on Tag;
// this follows the same tagged-instruction idiom as a bytecode
// instruction set: one flat record type carrying generic operand slots,
// adapted here to an AST arena with integer child offsets instead of
// bytecode operands.
type Node struct {
	Tag Tag
	Pos diag.Position

	// Chain threading, used by TagTopDecl, TagDecl, TagApat, TagListNode,
	// TagFunExpr: Item is the wrapped node, Next continues the list.
	Item Ref
	Next Ref

	// Structural children; meaning varies by Tag (documented per-tag in
	// reify.go where each is consumed).
	Left, Right   Ref // TagBinOp, TagUnOp (Right only), TagOpSymbol, TagLeftSection, TagRightSection
	Cond, Then, Else Ref // TagIfThenElse
	Name   Ref // TagSimpleAssignment/TagApatsAssignment/TagPatAssignment: the TagVar(VarDeclaration) or TagPatExpr being bound
	Apats  Ref // TagApatsAssignment/TagLambda: chain head of TagApat
	RHS    Ref // TagSimpleAssignment/TagApatsAssignment/TagPatAssignment/TagCaseAlt: the TagRHS
	Where  Ref // TagRHS: optional chain head of TagDecl
	Body   Ref // TagRHS (the expression itself), TagLet (the `in` body), TagLambda (the body expr)
	Decls  Ref // TagLet: chain head of TagDecl
	Scrutinee Ref // TagCaseExpr
	Alts      Ref // TagCaseExpr: chain head of TagCaseAlt (threaded via Next)
	Pattern   Ref // TagCaseAlt, TagPatAssignment, TagPatBindAssignment: the pattern (TagPatExpr/TagConId application/TagVar/TagWildcard/TagConst)
	Elements  Ref // TagListExpr/TagArrayExpr/TagTupleExpr: chain head of TagListNode
	From, To, Then_ Ref // TagArithSeq (Then_ used only for from-then-to)
	TypeExpr  Ref // TagTypeSig/TagConstructor/TagSimpleType field type
	Context   Ref // TagTypeSig/TagInstanceDecl: optional chain head of TagClassContext
	Methods   Ref // TagClassDecl/TagInstanceDecl: chain head of TagDecl/TagTypeSig
	Ctors     Ref // TagDataDecl: chain head of TagConstructor
	TyVars    Ref // TagDataDecl/TagClassDecl: chain head of TagVar(VarTypeVarDecl)
	Fields    Ref // TagConstructor: chain head of TagSimpleType/TagTypeApp (field types)
	Params    Ref // TagFunType: chain head of param type nodes; RHS reused as return type
	Stmts     Ref // TagDo: chain head of statement nodes (TagBindAssignment/TagPatBindAssignment/expr), threaded via Next on TagDecl-like wrappers

	Ident    string // interned on demand by the reifier: source name for Var/ConId/ClassDecl/InstanceDecl/DataDecl/TypeSig/Constructor
	OpType   OpType
	VarType  VarType
	ConKind  ConKind
	ConstKind ConstKind
	ArithKind ArithSeqKind
	IsPattern bool // true for pattern-literal constant variants, left undesugared

	IntVal   int64
	FloatVal float64
	StrVal   string
}

// Arena owns every Node of one parse; index 0 is the unused sentinel so
// the zero Ref always means "none".
type Arena struct {
	Nodes []Node
	Root  Ref // head of the TagTopDecl chain
}

// NewArena creates an empty arena with its sentinel slot in place.
func NewArena() *Arena {
	return &Arena{Nodes: make([]Node, 1, 64)}
}

// Add appends n and returns its Ref.
func (a *Arena) Add(n Node) Ref {
	r := Ref(len(a.Nodes))
	a.Nodes = append(a.Nodes, n)
	return r
}

// Get dereferences r. Dereferencing the null Ref (0) is a compiler bug:
// every caller must check r != 0 first, following the arena's "zero
// offset means none" convention.
func (a *Arena) Get(r Ref) *Node {
	if r == 0 {
		panic("parseast: dereference of null ref")
	}
	return &a.Nodes[r]
}

// Valid reports whether r is a non-null, in-range reference.
func (a *Arena) Valid(r Ref) bool {
	return r != 0 && int(r) < len(a.Nodes)
}
