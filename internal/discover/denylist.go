package discover

import (
	lua "github.com/yuin/gopher-lua"
)

// DefaultDenyPaths returns the composites excluded from traversal by
// default. The globals table and package.loaded are reachable through other
// composites, so searching them again would duplicate work or recurse
// forever; package.loaders holds the module loader hooks, and wrapping its
// entries would change how the interpreter itself loads code.
func DefaultDenyPaths() [][]string {
	return [][]string{
		{"_G"},
		{"package", "loaded"},
		{"package", "loaders"},
	}
}

// Denylist decides whether a composite's subtree must be excluded from
// traversal. Candidates are matched against configured root-relative key
// paths by reference identity.
type Denylist struct {
	root  *lua.LTable
	paths [][]string
}

// NewDenylist builds a denylist anchored at root. A nil paths slice selects
// DefaultDenyPaths.
func NewDenylist(root *lua.LTable, paths [][]string) *Denylist {
	if paths == nil {
		paths = DefaultDenyPaths()
	}
	return &Denylist{root: root, paths: paths}
}

// MustNotSearch reports whether v is one of the configured composites.
// Configured paths that do not resolve to a composite never match.
func (d *Denylist) MustNotSearch(v lua.LValue) bool {
	for _, path := range d.paths {
		resolved, ok := d.resolve(path)
		if !ok {
			continue
		}
		if resolved == v {
			return true
		}
	}
	return false
}

// resolve walks one configured path from the root by successive raw key
// lookups, abandoning the path as soon as an intermediate step is not a
// table.
func (d *Denylist) resolve(path []string) (lua.LValue, bool) {
	cur := lua.LValue(d.root)
	for _, key := range path {
		tbl, ok := cur.(*lua.LTable)
		if !ok {
			return nil, false
		}
		cur = tbl.RawGetString(key)
	}
	switch cur.Type() {
	case lua.LTTable, lua.LTUserData:
		return cur, true
	default:
		return nil, false
	}
}
