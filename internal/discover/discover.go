// Package discover walks a Lua composite hierarchy and finds every function
// reachable from a root, recording where each one lives so it can later be
// replaced and restored in place.
package discover

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/lualens/lualens/internal/profile"
)

// Record describes one discovered function: the path locating it from the
// traversal root, the composite containing it, its key within that
// composite, and the original function value.
type Record struct {
	Path   profile.Path
	Parent Composite
	Key    lua.LValue
	Fn     lua.LValue
}

// seenKey identifies a (composite, key) slot. The first discovery of a slot
// wins, so aliased composites cannot produce a second record for the same
// location.
type seenKey struct {
	parent lua.LValue
	key    lua.LValue
}

type walker struct {
	L       *lua.LState
	deny    *Denylist
	path    profile.Path
	seen    map[seenKey]struct{}
	records []Record
}

// Find walks the composite graph reachable from root and returns one Record
// per distinct (composite, key) slot holding a function, in enumeration
// order. A root that is not a composite yields no records.
func Find(L *lua.LState, root lua.LValue, deny *Denylist) ([]Record, error) {
	comp, ok := AsComposite(L, root)
	if !ok {
		return nil, nil
	}
	w := &walker{L: L, deny: deny, seen: make(map[seenKey]struct{})}
	if err := w.walk(comp); err != nil {
		return nil, err
	}
	return w.records, nil
}

func (w *walker) walk(comp Composite) error {
	var inner error
	err := comp.Enumerate(func(key, value lua.LValue) {
		if inner != nil {
			return
		}
		// A member identical to its own parent would recurse forever.
		if value == comp.Value() {
			return
		}
		if w.deny != nil && w.deny.MustNotSearch(value) {
			return
		}
		if child, ok := AsComposite(w.L, value); ok {
			w.path = append(w.path, keyString(key))
			inner = w.walk(child)
			w.path = w.path[:len(w.path)-1]
			return
		}
		if value.Type() != lua.LTFunction {
			return
		}
		slot := seenKey{parent: comp.Value(), key: key}
		if _, dup := w.seen[slot]; dup {
			return
		}
		w.seen[slot] = struct{}{}
		w.records = append(w.records, Record{
			Path:   append(w.path.Clone(), keyString(key)),
			Parent: comp,
			Key:    key,
			Fn:     value,
		})
	})
	if err != nil {
		return err
	}
	return inner
}

func keyString(key lua.LValue) string {
	if s, ok := key.(lua.LString); ok {
		return string(s)
	}
	return key.String()
}
