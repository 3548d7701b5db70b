// Package prim implements the machine prim initializer: the fixed set
// of struct types, functions, and constructors installed into an empty
// machine.Program before any user code is lowered.
//
// Grounded on internal/bytecode/vm_core.go's registerBuiltins (a fixed
// table of runtime primitives installed once at VM construction),
// adapted here to emit Machine IR definitions (struct types and
// FnDefs) into a Program instead of registering Go closures into a VM's
// builtin table, since this compiler's primitives are compiled nodes,
// not an interpreter's native calls.
package prim

import (
	"github.com/curtismckinney/necronomicon/internal/intern"
	"github.com/curtismckinney/necronomicon/internal/machine"
	"github.com/curtismckinney/necronomicon/internal/machine/build"
	"github.com/curtismckinney/necronomicon/internal/symtable"
)

// Handles are the cached primitive-type handles every later stage needs
// by name rather than by re-deriving them.
type Handles struct {
	NecroData *machine.Type
	Poly      *machine.Type
	PolyPtr   *machine.Type
	Env       *machine.Type
	Int       *machine.Type
	Float     *machine.Type

	MkInt       *machine.FnDef
	MkFloat     *machine.FnDef
	FromInt     *machine.FnDef
	FromRational *machine.FnDef
}

// Install populates prog with the fixed primitive set and returns the
// cached handles. Must run exactly once, before any user declaration is
// lowered. ids is what SeedScope returned
// when the renamer's scope was first set up; Install resolves each
// builtin name against it and updates that row in place, rather than
// minting a fresh, disconnected one, so references resolved during
// renaming (which already ran by this point) and the definitions built
// here end up on the same symbol-table row. A zero-value PreludeIDs is
// accepted for callers that only need a standalone Program (tests, the
// printer fixture) with no renaming involved — names fall back to
// fresh rows.
func Install(prog *machine.Program, table *symtable.Table, interner *intern.Table, ids PreludeIDs) *Handles {
	h := &Handles{}

	necroDataSym := interner.Intern("NecroData")
	h.NecroData = defineStruct(prog, necroDataSym, []*machine.Type{machine.U32Type(), machine.U32Type()})

	polySym := interner.Intern("Poly")
	h.Poly = defineStruct(prog, polySym, []*machine.Type{h.NecroData})
	h.PolyPtr = machine.PointerType(h.Poly)
	machine.SetPolyName(polySym)

	envSym := interner.Intern("Env")
	h.Env = defineStruct(prog, envSym, []*machine.Type{h.NecroData})

	intSym := interner.Intern("Int")
	h.Int = defineStruct(prog, intSym, []*machine.Type{h.NecroData, machine.I64Type()})
	floatSym := interner.Intern("Float")
	h.Float = defineStruct(prog, floatSym, []*machine.Type{h.NecroData, machine.F64Type()})

	h.MkInt = buildMk(prog, interner, "Int", h.Int)
	h.MkFloat = buildMk(prog, interner, "Float", h.Float)
	h.FromInt = buildFromPayload(prog, interner, "fromInt@Int", h.Int, machine.I64Type(), h.MkInt)
	h.FromRational = buildFromPayload(prog, interner, "fromRational@Float", h.Float, machine.F64Type(), h.MkFloat)
	declarePrimFn(table, interner, ids, "fromInt", 1, h.FromInt)
	declarePrimFn(table, interner, ids, "fromRational", 1, h.FromRational)

	// No real type inferencer runs here, so a generic
	// method name like "add" never gets resolved to a dictionary-passed
	// instance; it is bound here directly to its @Int variant, the
	// pragmatic default documented in DESIGN.md's Open Question on
	// numeric dispatch. The @Float variant is still built and callable
	// by its suffixed name for anything that reaches it directly.
	for _, arith := range []struct {
		name string
		op   machine.BinOpKind
	}{{"add", machine.BinAdd}, {"sub", machine.BinSub}, {"mul", machine.BinMul}, {"div", machine.BinDiv}} {
		intFn := buildBoxedBinop(prog, interner, arith.name+"@Int", h.Int, arith.op, h.MkInt)
		buildBoxedBinop(prog, interner, arith.name+"@Float", h.Float, arith.op, h.MkFloat)
		declarePrimFn(table, interner, ids, arith.name, 2, intFn)
	}

	installUnit(prog, table, interner, ids, h)
	installList(prog, table, interner, ids, h)
	installMaybe(prog, table, interner, ids, h)
	installArray(prog, table, interner, ids, h)
	installRational(prog, table, interner, ids, h)
	installAudio(prog, table, interner, ids, h)

	return h
}

func defineStruct(prog *machine.Program, name intern.Symbol, members []*machine.Type) *machine.Type {
	prog.AddStruct(&machine.StructDef{Name: name, Members: members})
	return machine.StructType(name, members)
}

func globalFn(fn *machine.FnDef) machine.Value {
	return machine.Value{Kind: machine.ValGlobal, Type: fn.IRType(), Global: fn.Name}
}

// buildMk emits a zero-arg allocator: nalloc a fresh struct of structT
// and return it, payload left for the caller to fill in.
func buildMk(prog *machine.Program, interner *intern.Table, name string, structT *machine.Type) *machine.FnDef {
	fnName := interner.Intern("mk@" + name)
	fn := machine.NewFnDef(fnName, nil, machine.PointerType(structT), machine.FnPrimitive)
	b := build.New(fn, interner)
	ptr := b.Nalloc(structT, len(structT.Members))
	b.Return(ptr)
	prog.AddFunc(fn)
	return fn
}

// buildFromPayload emits a one-arg identity wrapper (fromInt@Int,
// fromRational@Float): allocate via mk, store the raw payload into slot
// 1, return the boxed pointer.
func buildFromPayload(prog *machine.Program, interner *intern.Table, name string, structT, payloadT *machine.Type, mk *machine.FnDef) *machine.FnDef {
	fnName := interner.Intern(name)
	fn := machine.NewFnDef(fnName, []*machine.Type{payloadT}, machine.PointerType(structT), machine.FnPrimitive)
	b := build.New(fn, interner)
	arg := machine.ParamValue(fnName, 0, payloadT)
	ptr := b.Call(globalFn(mk), nil)
	b.StoreIntoSlot(arg, ptr, 1)
	b.Return(ptr)
	prog.AddFunc(fn)
	return fn
}

// buildBoxedBinop emits a two-arg boxed arithmetic function: load both
// operands' payloads, apply op, box the result via mk.
func buildBoxedBinop(prog *machine.Program, interner *intern.Table, name string, structT *machine.Type, op machine.BinOpKind, mk *machine.FnDef) *machine.FnDef {
	fnName := interner.Intern(name)
	ptrT := machine.PointerType(structT)
	fn := machine.NewFnDef(fnName, []*machine.Type{ptrT, ptrT}, ptrT, machine.FnPrimitive)
	b := build.New(fn, interner)
	a := machine.ParamValue(fnName, 0, ptrT)
	c := machine.ParamValue(fnName, 1, ptrT)
	av := b.LoadFromSlot(a, 1)
	cv := b.LoadFromSlot(c, 1)
	result := b.Binop(av, cv, op)
	boxed := b.Call(globalFn(mk), nil)
	b.StoreIntoSlot(result, boxed, 1)
	b.Return(boxed)
	prog.AddFunc(fn)
	return fn
}

// resolveTermID returns the row SeedScope already created for name, or
// mints a fresh one if ids is nil/lacks an entry (standalone callers
// with no renaming pass).
func resolveTermID(table *symtable.Table, interner *intern.Table, ids PreludeIDs, name string) symtable.ID {
	if ids.Terms != nil {
		if id, ok := ids.Terms[name]; ok {
			return id
		}
	}
	return table.Insert(symtable.Record{Name: interner.Intern(name), Namespace: symtable.TermNamespace})
}

func resolveTypeID(table *symtable.Table, interner *intern.Table, ids PreludeIDs, name string) symtable.ID {
	if ids.Types != nil {
		if id, ok := ids.Types[name]; ok {
			return id
		}
	}
	return table.Insert(symtable.Record{Name: interner.Intern(name), Namespace: symtable.TypeNamespace})
}

// declareConstructor updates the constructor's symbol record (already
// seeded by SeedScope, so the renamer resolved user references against
// the same row) with is_constructor, arity, and a pointer to its mk
// function.
func declareConstructor(table *symtable.Table, interner *intern.Table, ids PreludeIDs, name string, arity, tag int, mk *machine.FnDef) symtable.ID {
	id := resolveTermID(table, interner, ids, name)
	rec := table.Get(id)
	rec.Name = interner.Intern(name)
	rec.Arity = arity
	rec.IsConstructor = true
	rec.ConstructorTag = tag
	rec.Namespace = symtable.TermNamespace
	rec.CurrentNode = mk
	return id
}

func declareType(table *symtable.Table, interner *intern.Table, ids PreludeIDs, name string, isEnum bool) symtable.ID {
	id := resolveTypeID(table, interner, ids, name)
	rec := table.Get(id)
	rec.Name = interner.Intern(name)
	rec.Arity = -1
	rec.IsEnum = isEnum
	rec.Namespace = symtable.TypeNamespace
	return id
}

// declarePrimFn updates a non-constructor builtin (fromInt, fromRational,
// the generic arithmetic method names) with its arity and a pointer to
// the FnDef that implements it, the same two-step update declareConstructor
// performs for constructors.
func declarePrimFn(table *symtable.Table, interner *intern.Table, ids PreludeIDs, name string, arity int, fn *machine.FnDef) symtable.ID {
	id := resolveTermID(table, interner, ids, name)
	rec := table.Get(id)
	rec.Name = interner.Intern(name)
	rec.Arity = arity
	rec.Namespace = symtable.TermNamespace
	rec.CurrentNode = fn
	return id
}

// nullFillSlots null-fills member slots [from, len(members)) with
// Poly* null, used by sum-type makers whose arity is less than the
// type's max constructor arity.
func nullFillSlots(b *build.Builder, ptr machine.Value, structT *machine.Type, from int) {
	for i := from; i < len(structT.Members); i++ {
		b.StoreIntoSlot(machine.NullPtrValue(structT.Members[i]), ptr, i)
	}
}

func installUnit(prog *machine.Program, table *symtable.Table, interner *intern.Table, ids PreludeIDs, h *Handles) {
	unitSym := interner.Intern("()")
	unitT := defineStruct(prog, unitSym, []*machine.Type{h.NecroData})
	declareType(table, interner, ids, "()", false)

	fn := machine.NewFnDef(interner.Intern("mk@()"), nil, machine.PointerType(unitT), machine.FnPrimitive)
	b := build.New(fn, interner)
	ptr := b.Nalloc(unitT, 1)
	b.StoreIntoTag(machine.U32Value(0), ptr)
	b.Return(ptr)
	prog.AddFunc(fn)

	declareConstructor(table, interner, ids, "()", 0, 0, fn)
}

func installList(prog *machine.Program, table *symtable.Table, interner *intern.Table, ids PreludeIDs, h *Handles) {
	listSym := interner.Intern("[]")
	listT := defineStruct(prog, listSym, []*machine.Type{h.NecroData, h.PolyPtr, h.PolyPtr})
	declareType(table, interner, ids, "List", true)

	nilFn := machine.NewFnDef(interner.Intern("mk@[]"), nil, machine.PointerType(listT), machine.FnPrimitive)
	{
		b := build.New(nilFn, interner)
		ptr := b.Nalloc(listT, len(listT.Members))
		b.StoreIntoTag(machine.U32Value(0), ptr)
		nullFillSlots(b, ptr, listT, 1)
		b.Return(ptr)
	}
	prog.AddFunc(nilFn)
	declareConstructor(table, interner, ids, "[]", 0, 0, nilFn)

	consFn := machine.NewFnDef(interner.Intern("mk@:"), []*machine.Type{h.PolyPtr, h.PolyPtr}, machine.PointerType(listT), machine.FnPrimitive)
	{
		b := build.New(consFn, interner)
		head := machine.ParamValue(consFn.Name, 0, h.PolyPtr)
		tail := machine.ParamValue(consFn.Name, 1, h.PolyPtr)
		ptr := b.Nalloc(listT, len(listT.Members))
		b.StoreIntoTag(machine.U32Value(1), ptr)
		b.StoreIntoSlot(head, ptr, 1)
		b.StoreIntoSlot(tail, ptr, 2)
		b.Return(ptr)
	}
	prog.AddFunc(consFn)
	declareConstructor(table, interner, ids, ":", 2, 1, consFn)
}

func installMaybe(prog *machine.Program, table *symtable.Table, interner *intern.Table, ids PreludeIDs, h *Handles) {
	maybeSym := interner.Intern("Maybe")
	maybeT := defineStruct(prog, maybeSym, []*machine.Type{h.NecroData, h.PolyPtr})
	declareType(table, interner, ids, "Maybe", true)

	nothingFn := machine.NewFnDef(interner.Intern("mk@Nothing"), nil, machine.PointerType(maybeT), machine.FnPrimitive)
	{
		b := build.New(nothingFn, interner)
		ptr := b.Nalloc(maybeT, len(maybeT.Members))
		b.StoreIntoTag(machine.U32Value(0), ptr)
		nullFillSlots(b, ptr, maybeT, 1)
		b.Return(ptr)
	}
	prog.AddFunc(nothingFn)
	declareConstructor(table, interner, ids, "Nothing", 0, 0, nothingFn)

	justFn := machine.NewFnDef(interner.Intern("mk@Just"), []*machine.Type{h.PolyPtr}, machine.PointerType(maybeT), machine.FnPrimitive)
	{
		b := build.New(justFn, interner)
		x := machine.ParamValue(justFn.Name, 0, h.PolyPtr)
		ptr := b.Nalloc(maybeT, len(maybeT.Members))
		b.StoreIntoTag(machine.U32Value(1), ptr)
		b.StoreIntoSlot(x, ptr, 1)
		b.Return(ptr)
	}
	prog.AddFunc(justFn)
	declareConstructor(table, interner, ids, "Just", 1, 1, justFn)
}

// installArray wraps an already-built cons-list in a single-constructor
// Array struct (the desugarer emits Array literals as
// App(Var("Array"), consChain), per internal/core's desugarer).
func installArray(prog *machine.Program, table *symtable.Table, interner *intern.Table, ids PreludeIDs, h *Handles) {
	arraySym := interner.Intern("Array")
	arrayT := defineStruct(prog, arraySym, []*machine.Type{h.NecroData, h.PolyPtr})
	declareType(table, interner, ids, "Array", false)

	fn := machine.NewFnDef(interner.Intern("mk@Array"), []*machine.Type{h.PolyPtr}, machine.PointerType(arrayT), machine.FnPrimitive)
	b := build.New(fn, interner)
	list := machine.ParamValue(fn.Name, 0, h.PolyPtr)
	ptr := b.Nalloc(arrayT, len(arrayT.Members))
	b.StoreIntoTag(machine.U32Value(0), ptr)
	b.StoreIntoSlot(list, ptr, 1)
	b.Return(ptr)
	prog.AddFunc(fn)
	declareConstructor(table, interner, ids, "Array", 1, 0, fn)
}

// installRational installs a boxed num/denom pair, unlike the Poly*
// slotted sum types above since a ratio's fields are always concrete
// i64s, never polymorphic payloads.
func installRational(prog *machine.Program, table *symtable.Table, interner *intern.Table, ids PreludeIDs, h *Handles) {
	ratSym := interner.Intern("Rational")
	ratT := defineStruct(prog, ratSym, []*machine.Type{h.NecroData, machine.I64Type(), machine.I64Type()})
	declareType(table, interner, ids, "Rational", false)

	fn := machine.NewFnDef(interner.Intern("mk@Rational"), []*machine.Type{machine.I64Type(), machine.I64Type()}, machine.PointerType(ratT), machine.FnPrimitive)
	b := build.New(fn, interner)
	num := machine.ParamValue(fn.Name, 0, machine.I64Type())
	den := machine.ParamValue(fn.Name, 1, machine.I64Type())
	ptr := b.Nalloc(ratT, len(ratT.Members))
	b.StoreIntoTag(machine.U32Value(0), ptr)
	b.StoreIntoSlot(num, ptr, 1)
	b.StoreIntoSlot(den, ptr, 2)
	b.Return(ptr)
	prog.AddFunc(fn)
	declareConstructor(table, interner, ids, "Rational", 2, 0, fn)
}

// installAudio installs a single opaque sample-handle wrapper; the
// handle itself (a device or buffer reference) is out of this
// compiler's scope (native code emission is external), so it is
// represented as an opaque Poly* slot.
func installAudio(prog *machine.Program, table *symtable.Table, interner *intern.Table, ids PreludeIDs, h *Handles) {
	audioSym := interner.Intern("Audio")
	audioT := defineStruct(prog, audioSym, []*machine.Type{h.NecroData, h.PolyPtr})
	declareType(table, interner, ids, "Audio", false)

	fn := machine.NewFnDef(interner.Intern("mk@Audio"), []*machine.Type{h.PolyPtr}, machine.PointerType(audioT), machine.FnPrimitive)
	b := build.New(fn, interner)
	handle := machine.ParamValue(fn.Name, 0, h.PolyPtr)
	ptr := b.Nalloc(audioT, len(audioT.Members))
	b.StoreIntoTag(machine.U32Value(0), ptr)
	b.StoreIntoSlot(handle, ptr, 1)
	b.Return(ptr)
	prog.AddFunc(fn)
	declareConstructor(table, interner, ids, "Audio", 1, 0, fn)
}
