// Package core implements the Core AST: the desugared representation
// the (externally supplied, in principle) type inferencer hands to the
// machine IR builder. Its variant set is deliberately smaller than
// internal/ast's: type classes, sections, do-notation, arithmetic
// sequences and list/array/tuple literals have all been desugared away
// by the time a tree reaches Core, leaving only literal / variable /
// application / lambda / let / bind / case / case-alt / data
// declaration / data constructor / list-cons / type.
//
// No external inferencer exists in this exercise, so this package also
// provides a minimal desugarer (Desugarer) from internal/ast.Node, enough
// to exercise the rest of the pipeline end to end. It performs no type
// inference: ResolvedType fields are left unset, and is free to lean on
// facts the renamer already pinned down (symbol ids, declaration
// groups) rather than re-deriving them.
//
// Grounded on internal/ast/ast.go's variant style once more, scaled down
// to Core's smaller variant set; the desugarer's shape mirrors
// internal/reify/reify.go's one-function-per-source-shape dispatch.
package core

import (
	"github.com/curtismckinney/necronomicon/internal/diag"
	"github.com/curtismckinney/necronomicon/internal/intern"
	"github.com/curtismckinney/necronomicon/internal/symtable"
)

// Kind tags a Core node's concrete variant.
type Kind uint8

const (
	KindLit Kind = iota
	KindVar
	KindApp
	KindLambda
	KindLet
	KindBind
	KindCase
	KindCaseAlt
	KindDataDecl
	KindDataCon
	KindListCons
	KindType
)

// Node is the single interface every Core variant satisfies, mirroring
// internal/ast.Node's collapsed-hierarchy design: one Kind-tagged
// interface instead of a type per AST layer (type-class hierarchies
// don't fit a language with no subtyping).
type Node interface {
	Kind() Kind
	Pos() diag.Position
}

// Base is embedded by every Core node for its source position.
type Base struct {
	pos diag.Position
}

func NewBase(pos diag.Position) Base { return Base{pos: pos} }
func (b Base) Pos() diag.Position    { return b.pos }

// LitKind distinguishes Core's literal payload shapes. Unlike
// internal/ast, Core never carries pattern-literal vs. expression-literal
// as separate concerns — by the time a tree is Core it is always in
// expression position (patterns have been compiled into Case's
// CaseAlt.LitEq field instead).
type LitKind uint8

const (
	LitInt LitKind = iota
	LitFloat
	LitString
	LitChar
)

// Lit is a literal constant. Unlike internal/ast's per-kind literal
// types, Core folds them into one variant with a payload union, since
// nothing downstream needs per-kind Go types once fromInt/fromRational
// wrapping has already happened upstream in the reifier.
type Lit struct {
	Base
	LitKind LitKind
	Int     int64
	Float   float64
	Str     string
	Char    rune
}

func (l *Lit) Kind() Kind { return KindLit }

// Var is an occurrence of a bound name or data constructor. Ref is
// always populated (Core is built only from already-renamed trees); IsCon
// distinguishes a constructor occurrence from an ordinary variable, since
// Core has no separate ConRef variant.
type Var struct {
	Base
	Sym   intern.Symbol
	Ref   symtable.ID
	IsCon bool
}

func (v *Var) Kind() Kind { return KindVar }

// App is function application, left-associative and always exactly one
// argument per node (curried), matching how internal/reify folds a
// function-expression chain.
type App struct {
	Base
	Fn  Node
	Arg Node
}

func (a *App) Kind() Kind { return KindApp }

// Lambda binds exactly one parameter (multi-parameter source lambdas are
// folded into nested single-parameter Lambdas during desugaring, so the
// machine IR builder's structural recursion can process "parameters
// bound above" one register at a time).
type Lambda struct {
	Base
	ParamSym intern.Symbol
	ParamDef symtable.ID
	Body     Node
}

func (l *Lambda) Kind() Kind { return KindLambda }

// Let is a non-recursive-looking but (per the source language) possibly
// mutually recursive group of Binds followed by a body expression. Binds
// is flat and in source order; neither the desugarer nor Core reorders
// them by dependency.
type Let struct {
	Base
	Binds []*Bind
	Body  Node
}

func (l *Let) Kind() Kind { return KindLet }

// Bind is one source-level definition: a name bound to an expression, carrying
// the renamer's symbol id and declaration group forward so the IR
// builder's passes can look up statefulness/slot information by walking
// straight to Sym without re-resolving anything.
type Bind struct {
	Base
	Sym   intern.Symbol
	Def   symtable.ID
	Group symtable.GroupID
	Expr  Node
}

func (b *Bind) Kind() Kind { return KindBind }

// Case dispatches on a scrutinee's constructor tag. Unlike
// internal/ast.Case, whose CaseAlt carries an arbitrary nested pattern,
// Core's CaseAlt is compiled down to "one constructor tag, N bound
// fields" — nested patterns are flattened into nested Cases by the
// desugarer, leaving the machine IR builder to load the scrutinee's tag
// and dispatch with a switch terminator.
type Case struct {
	Base
	Scrutinee Node
	Alts      []*CaseAlt
}

func (c *Case) Kind() Kind { return KindCase }

// CaseAlt is one alternative. ConRef/Tag are zero for a wildcard-only
// alternative (at most one per Case, and it must be last); FieldSyms/Defs
// bind the constructor's fields in order. LitEq is non-nil for a literal
// pattern alternative (desugared as an equality-guarded wildcard rather
// than a tag match, since literals don't carry a constructor tag).
type CaseAlt struct {
	Base
	IsWildcard bool
	ConRef     symtable.ID
	Tag        int
	FieldSyms  []intern.Symbol
	FieldDefs  []symtable.ID
	LitEq      Node
	Body       Node
}

func (c *CaseAlt) Kind() Kind { return KindCaseAlt }

// DataDecl mirrors internal/ast.DataDecl; carried into Core mostly
// unchanged since the machine IR builder's pass 1 traverses the
// desugared tree looking for data declarations directly.
type DataDecl struct {
	Base
	Sym          intern.Symbol
	Def          symtable.ID
	Constructors []*DataCon
}

func (d *DataDecl) Kind() Kind { return KindDataDecl }

// DataCon is one constructor of a DataDecl, with its declared arity and
// tag carried forward from the renamer's constructor declaration, which
// already stamped is_constructor/arity/tag on the same symbol record.
type DataCon struct {
	Base
	Sym   intern.Symbol
	Def   symtable.ID
	Tag   int
	Arity int
}

func (d *DataCon) Kind() Kind { return KindDataCon }

// ListCons is used only for top-level declaration chains, never for
// source list literals — source list/array/tuple literals are desugared
// into constructor applications of the builtin List/Array/Tuple
// constructors instead, so that Case and the IR builder only ever see
// ordinary data constructors.
type ListCons struct {
	Base
	Head Node
	Tail Node
}

func (l *ListCons) Kind() Kind { return KindListCons }

// Type is a minimal carrier for a Core-level type annotation. No
// inference runs in this exercise, so Type nodes are only ever produced
// by desugaring a TypeSig's already-parsed type expression; nothing
// downstream reads through it except as an opaque placeholder.
type Type struct {
	Base
	Sym  intern.Symbol
	Ref  symtable.ID
	Args []*Type
}

func (t *Type) Kind() Kind { return KindType }
