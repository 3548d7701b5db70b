// Package symtable implements the process-wide flat symbol table: a
// dynamically growing vector of symbol records, indexed by a 32-bit id
// assigned in insertion order starting at 1. Id 0 is reserved for
// "null/unresolved".
package symtable

import (
	"github.com/curtismckinney/necronomicon/internal/intern"
)

// ID identifies a row in a Table. 0 means "null/unresolved".
type ID uint32

// StateClass is the node's state-type classification, assigned by the
// machine IR builder's pass 2.
type StateClass uint8

const (
	StateUnknown StateClass = iota
	StateConstant
	StatePointwise
	StateStateful
	StateStatic
)

func (s StateClass) String() string {
	switch s {
	case StateConstant:
		return "constant"
	case StatePointwise:
		return "pointwise"
	case StateStateful:
		return "stateful"
	case StateStatic:
		return "static"
	default:
		return "unknown"
	}
}

// Namespace distinguishes the term namespace from the type namespace,
// used when resolving a conid occurrence.
type Namespace uint8

const (
	TermNamespace Namespace = iota
	TypeNamespace
)

// IRNode is the current-stage IR node a symbol resolves to: the semantic
// AST during renaming, the machine-IR AST during lowering. It is opaque
// here so symtable never imports ast or machine, avoiding an import
// cycle; callers type-assert to the stage they expect, since only one
// stage's representation is ever live on a given record at a time.
type IRNode interface{}

// ScopeID is an opaque handle to the scope that owns a symbol, minted by
// package scope. It is stored here (not a *scope.Scope pointer) so this
// package has no dependency on scope; it is a back-reference to the
// owning scope rather than an ownership relationship.
type ScopeID uint32

// GroupID is an opaque handle to a symbol's DeclarationGroup, minted by
// package depanalysis.
type GroupID uint32

// Record is one row of the symbol table.
type Record struct {
	ID ID

	Name   intern.Symbol
	Pos    Pos
	Arity  int // -1 if not a function
	Scope  ScopeID
	Group  GroupID // populated during renaming

	IsConstructor  bool
	IsEnum         bool
	ConstructorTag int

	Namespace Namespace

	TypeSig  IRNode // optional type-signature AST, populated during renaming
	ResolvedType IRNode // populated by the (external) inferencer

	State       StateClass
	SlotIndex   int // persistent-slot index; 0 until assigned by pass 2
	CurrentNode IRNode
}

// Pos is a minimal re-export point so symtable doesn't need to import
// diag for every field access; the renamer's toPos converts from
// diag.Position.
type Pos struct {
	Line, Column, Offset int
}

// Table is the flat, append-only vector of symbol records.
type Table struct {
	records []Record // records[0] is the unused sentinel for id 0
}

// New creates an empty table with the reserved id-0 sentinel in place.
func New() *Table {
	return &Table{records: make([]Record, 1, 256)}
}

// Insert appends a new row and returns its freshly assigned id. Callers
// building the row should leave ID unset; Insert fills it in.
func (t *Table) Insert(rec Record) ID {
	id := ID(len(t.records))
	rec.ID = id
	t.records = append(t.records, rec)
	return id
}

// Get returns the record for id. Out-of-range or id 0 is a compiler bug:
// every id observed downstream of the renamer must have been produced by
// this table, and a once-issued id's row is never reassigned to a
// different symbol.
func (t *Table) Get(id ID) *Record {
	if id == 0 || int(id) >= len(t.records) {
		panic("symtable: invalid id")
	}
	return &t.records[id]
}

// Len returns the number of live records (excluding the id-0 sentinel).
func (t *Table) Len() int { return len(t.records) - 1 }

// All iterates every live record in insertion order.
func (t *Table) All(fn func(ID, *Record)) {
	for i := 1; i < len(t.records); i++ {
		fn(ID(i), &t.records[i])
	}
}
