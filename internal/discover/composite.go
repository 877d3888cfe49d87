package discover

import (
	lua "github.com/yuin/gopher-lua"
)

// Composite is a Lua value whose members can be enumerated, read and
// written: either a plain table, or an opaque value whose metatable
// implements the generic iteration protocol (__pairs, __index, __newindex).
// Traversal and instrumentation are written once against this interface.
type Composite interface {
	// Value returns the underlying Lua value. Callers compare it by
	// reference identity, never structurally.
	Value() lua.LValue
	// Enumerate visits every (key, value) member pair in enumeration order.
	Enumerate(visit func(key, value lua.LValue)) error
	// Get reads the member stored under key.
	Get(key lua.LValue) lua.LValue
	// Set writes value under key, replacing any previous member.
	Set(key, value lua.LValue)
}

// AsComposite classifies v. Values carrying the iteration protocol are
// protocol-driven even when they are also tables; plain tables enumerate
// natively; everything else is not a composite.
func AsComposite(L *lua.LState, v lua.LValue) (Composite, bool) {
	if hasIterationProtocol(L, v) {
		return protocolValue{L: L, v: v}, true
	}
	if tbl, ok := v.(*lua.LTable); ok {
		return nativeTable{tbl: tbl}, true
	}
	return nil, false
}

func hasIterationProtocol(L *lua.LState, v lua.LValue) bool {
	mt, ok := L.GetMetatable(v).(*lua.LTable)
	if !ok {
		return false
	}
	return mt.RawGetString("__pairs") != lua.LNil &&
		mt.RawGetString("__index") != lua.LNil &&
		mt.RawGetString("__newindex") != lua.LNil
}

// nativeTable enumerates a plain table with raw accesses, bypassing
// metamethods the way lua_next/lua_rawget would.
type nativeTable struct {
	tbl *lua.LTable
}

func (n nativeTable) Value() lua.LValue { return n.tbl }

func (n nativeTable) Enumerate(visit func(key, value lua.LValue)) error {
	key := lua.LValue(lua.LNil)
	for {
		k, v := n.tbl.Next(key)
		if k == lua.LNil {
			return nil
		}
		visit(k, v)
		key = k
	}
}

func (n nativeTable) Get(key lua.LValue) lua.LValue {
	return n.tbl.RawGet(key)
}

func (n nativeTable) Set(key, value lua.LValue) {
	n.tbl.RawSet(key, value)
}

// reservedKeys are the protocol's own support entries. They appear during
// protocol enumeration and must never be mistaken for user content.
var reservedKeys = map[string]struct{}{
	"__pairs":    {},
	"__index":    {},
	"__newindex": {},
}

// protocolValue drives an opaque value through its metatable: enumeration by
// invoking __pairs and walking the returned iterator, reads and writes
// through __index and __newindex.
type protocolValue struct {
	L *lua.LState
	v lua.LValue
}

func (p protocolValue) Value() lua.LValue { return p.v }

func (p protocolValue) Enumerate(visit func(key, value lua.LValue)) error {
	mt, ok := p.L.GetMetatable(p.v).(*lua.LTable)
	if !ok {
		return nil
	}
	pairsFn := mt.RawGetString("__pairs")
	if err := p.L.CallByParam(lua.P{Fn: pairsFn, NRet: 3, Protect: true}, p.v); err != nil {
		return err
	}
	iter := p.L.Get(-3)
	state := p.L.Get(-2)
	ctrl := p.L.Get(-1)
	p.L.Pop(3)

	for {
		if err := p.L.CallByParam(lua.P{Fn: iter, NRet: 2, Protect: true}, state, ctrl); err != nil {
			return err
		}
		k := p.L.Get(-2)
		v := p.L.Get(-1)
		p.L.Pop(2)
		if k == lua.LNil {
			return nil
		}
		ctrl = k
		if s, isStr := k.(lua.LString); isStr {
			if _, reserved := reservedKeys[string(s)]; reserved {
				continue
			}
		}
		visit(k, v)
	}
}

func (p protocolValue) Get(key lua.LValue) lua.LValue {
	return p.L.GetTable(p.v, key)
}

func (p protocolValue) Set(key, value lua.LValue) {
	p.L.SetTable(p.v, key, value)
}
