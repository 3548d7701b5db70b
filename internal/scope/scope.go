// Package scope implements the lexical scope stack used only during
// renaming: a chain of frames mapping source name to symbol id, backed
// by the process-wide symtable.Table, with an outer-pointer scope chain.
package scope

import (
	"github.com/curtismckinney/necronomicon/internal/intern"
	"github.com/curtismckinney/necronomicon/internal/symtable"
)

// Scope is one lexical frame: a parent pointer and a name-to-id map.
// Lifetime: created on syntactic scope entry, discarded on exit, except
// the top scope which Stack retains after popping completes.
type Scope struct {
	id     symtable.ScopeID
	parent *Scope
	names  map[intern.ID]symtable.ID
}

// Stack owns the backing symtable.Table and the chain of lexical Scope
// frames.
type Stack struct {
	Table   *symtable.Table
	top     *Scope // current innermost scope
	global  *Scope // preserved top-level namespace, see Top()
	nextID  symtable.ScopeID
}

// New creates a Stack wrapping a fresh symbol table and an
// initial (global) scope.
func New() *Stack {
	s := &Stack{Table: symtable.New()}
	s.top = s.newFrame(nil)
	s.global = s.top
	return s
}

func (s *Stack) newFrame(parent *Scope) *Scope {
	s.nextID++
	return &Scope{id: s.nextID, parent: parent, names: make(map[intern.ID]symtable.ID)}
}

// NewScope pushes an empty child frame.
func (s *Stack) NewScope() {
	s.top = s.newFrame(s.top)
}

// PopScope drops the top frame. Its entries remain live in the symbol
// table (ids never recycle) but are no longer reachable by name.
func (s *Stack) PopScope() {
	if s.top.parent == nil {
		panic("scope: pop of root scope")
	}
	s.top = s.top.parent
}

// Current returns the innermost scope's id, for stamping into symbol
// records and AST back-pointers.
func (s *Stack) Current() symtable.ScopeID { return s.top.id }

// Top returns the program's top-level namespace, preserved after
// renaming completes for later stages.
func (s *Stack) Top() symtable.ScopeID { return s.global.id }

// Find walks parent links until name resolves or the root is exhausted;
// returns the id (or 0).
func (s *Stack) Find(name intern.ID) symtable.ID {
	for sc := s.top; sc != nil; sc = sc.parent {
		if id, ok := sc.names[name]; ok {
			return id
		}
	}
	return 0
}

// IsBoundHere reports whether name is already bound in the current
// (innermost) scope, without walking outward.
func (s *Stack) IsBoundHere(name intern.ID) bool {
	_, ok := s.top.names[name]
	return ok
}

// Declare installs rec as a new row (via Table.Insert) and binds name to
// it in the current scope. The caller must have already checked
// IsBoundHere to raise the "multiple declarations" diagnostic; Declare
// itself does not re-check and will overwrite an existing binding
// silently. The renamer always guards it first, since duplicate
// declarations are a user error there, not silent shadowing;
// prim.SeedScope declares the builtin rows without that check.
func (s *Stack) Declare(name intern.ID, rec symtable.Record) symtable.ID {
	rec.Scope = s.top.id
	id := s.Table.Insert(rec)
	s.top.names[name] = id
	return id
}
