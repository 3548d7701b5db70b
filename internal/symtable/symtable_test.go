package symtable

import (
	"testing"

	"github.com/curtismckinney/necronomicon/internal/intern"
)

func TestTable_InsertAssignsSequentialIDsStartingAt1(t *testing.T) {
	tab := New()
	interner := intern.New()
	var ids []ID
	for _, n := range []string{"a", "b", "c"} {
		ids = append(ids, tab.Insert(Record{Name: interner.Intern(n)}))
	}
	for i, id := range ids {
		if int(id) != i+1 {
			t.Fatalf("Insert #%d got id %d, want %d", i, id, i+1)
		}
	}
	if tab.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", tab.Len())
	}
}

func TestTable_GetReturnsStampedID(t *testing.T) {
	tab := New()
	id := tab.Insert(Record{Arity: 2})
	if got := tab.Get(id).ID; got != id {
		t.Fatalf("Get(%d).ID = %d, want %d (symbol id must round-trip stably)", id, got, id)
	}
	if tab.Get(id).Arity != 2 {
		t.Fatal("Get should return the same record that was inserted")
	}
}

func TestTable_GetInvalidIDPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Get(0) should panic: 0 is the reserved null id")
		}
	}()
	New().Get(0)
}

func TestTable_GetOutOfRangeIDPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Get of an out-of-range id should panic")
		}
	}()
	New().Get(999)
}

func TestTable_AllVisitsEveryLiveRecordInInsertionOrder(t *testing.T) {
	tab := New()
	interner := intern.New()
	names := []string{"x", "y", "z"}
	for _, n := range names {
		tab.Insert(Record{Name: interner.Intern(n)})
	}

	var seen []ID
	tab.All(func(id ID, rec *Record) {
		seen = append(seen, id)
		if rec.ID != id {
			t.Fatalf("All should hand back a record whose ID matches the key, got %d != %d", rec.ID, id)
		}
	})
	if len(seen) != len(names) {
		t.Fatalf("All visited %d records, want %d", len(seen), len(names))
	}
	for i, id := range seen {
		if int(id) != i+1 {
			t.Fatalf("All should visit in insertion order: entry %d has id %d", i, id)
		}
	}
}

func TestStateClass_String(t *testing.T) {
	cases := map[StateClass]string{
		StateConstant:  "constant",
		StatePointwise: "pointwise",
		StateStateful:  "stateful",
		StateStatic:    "static",
		StateUnknown:   "unknown",
	}
	for class, want := range cases {
		if got := class.String(); got != want {
			t.Fatalf("%v.String() = %q, want %q", class, got, want)
		}
	}
}
