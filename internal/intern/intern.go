// Package intern implements a hash-consing string interner: every
// source name is assigned a dense identity integer, and identical
// strings always resolve to the same id. Id 0 is reserved for "none".
package intern

import (
	"golang.org/x/text/cases"
)

// ID is the dense identity integer assigned to an interned string.
// 0 means "none" and is never returned by Intern.
type ID uint32

// Symbol pairs an interned id with the hash used to place it, so callers
// that only need fast equality never have to touch the backing string.
type Symbol struct {
	Hash uint64
	ID   ID
}

type entry struct {
	str  string
	hash uint64
}

// Table is a hash-consed string table: entries live in a dense slice
// indexed by id, and a map from hash to ids resolves lookups. It is not
// open-addressed; colliding hashes share one map bucket. Strings are
// copied into table-owned storage on first insertion; there is no
// deletion. The table grows (capacity doubles, all live entries
// reinserted) once load exceeds one half.
type Table struct {
	slots   []entry // index 0 is always empty; ids are slots index
	occ     []bool
	byHash  map[uint64][]ID
	count   int
	folder  cases.Caser
}

// New creates an empty interner with the reserved id 0 pre-allocated.
func New() *Table {
	t := &Table{
		slots:  make([]entry, 1, 64),
		occ:    make([]bool, 1, 64),
		byHash: make(map[uint64][]ID),
		folder: cases.Fold(),
	}
	return t
}

// Fold returns name normalized for a case-insensitive identifier
// namespace. The source language is case-sensitive by default, so
// Intern never calls this implicitly; it exists for the reserved,
// currently-unused case-insensitive pragma-name namespace.
func (t *Table) Fold(name string) string {
	return t.folder.String(name)
}

func fnv1a(s string) uint64 {
	const offset64 = 14695981039346656037
	const prime64 = 1099511628211
	h := uint64(offset64)
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime64
	}
	return h
}

// Intern returns the Symbol for s, inserting it if this is the first
// occurrence. Identical strings always return an equal Symbol.
func (t *Table) Intern(s string) Symbol {
	h := fnv1a(s)
	if id, ok := t.find(h, s); ok {
		return Symbol{Hash: h, ID: id}
	}
	if t.count+1 > cap(t.slots)/2 {
		t.grow()
	}
	id := ID(len(t.slots))
	t.slots = append(t.slots, entry{str: s, hash: h})
	t.occ = append(t.occ, true)
	t.byHash[h] = append(t.byHash[h], id)
	t.count++
	return Symbol{Hash: h, ID: id}
}

// InternSlice matches a byte slice against existing entries by hash
// without allocating a new string unless the slice is actually new.
func (t *Table) InternSlice(b []byte) Symbol {
	h := fnv1a(string(b))
	for _, id := range t.byHash[h] {
		if t.slots[id].str == string(b) {
			return Symbol{Hash: h, ID: id}
		}
	}
	return t.Intern(string(b))
}

func (t *Table) find(h uint64, s string) (ID, bool) {
	for _, id := range t.byHash[h] {
		if t.slots[id].str == s {
			return id, true
		}
	}
	return 0, false
}

func (t *Table) grow() {
	newCap := cap(t.slots) * 2
	if newCap < 64 {
		newCap = 64
	}
	newSlots := make([]entry, 1, newCap)
	newOcc := make([]bool, 1, newCap)
	newByHash := make(map[uint64][]ID, len(t.byHash))
	for id := ID(1); int(id) < len(t.slots); id++ {
		if !t.occ[id] {
			continue
		}
		e := t.slots[id]
		newSlots = append(newSlots, e)
		newOcc = append(newOcc, true)
		newByHash[e.hash] = append(newByHash[e.hash], ID(len(newSlots)-1))
	}
	t.slots = newSlots
	t.occ = newOcc
	t.byHash = newByHash
}

// Lookup returns the backing string for id, or "" and false if id is 0
// or out of range.
func (t *Table) Lookup(id ID) (string, bool) {
	if id == 0 || int(id) >= len(t.slots) || !t.occ[id] {
		return "", false
	}
	return t.slots[id].str, true
}

// MustLookup panics (a compiler bug, not a user error — every id in the
// pipeline must have been produced by this table) if id is unknown.
func (t *Table) MustLookup(id ID) string {
	s, ok := t.Lookup(id)
	if !ok {
		panic("intern: unknown id")
	}
	return s
}

// Len reports the number of interned strings (excluding the reserved 0).
func (t *Table) Len() int { return t.count }
