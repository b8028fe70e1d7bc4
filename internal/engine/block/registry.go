package block

import "github.com/go-gl/mathgl/mgl32"

// Registry indexes block states by id and by name.
type Registry struct {
	byID   map[State]Info
	byName map[string]Info
	all    []Info
}

// NewRegistry builds a registry from the given table. Later entries win on
// duplicate ids or names.
func NewRegistry(infos []Info) *Registry {
	r := &Registry{
		byID:   make(map[State]Info, len(infos)),
		byName: make(map[string]Info, len(infos)),
		all:    make([]Info, 0, len(infos)),
	}
	pos := make(map[State]int, len(infos))
	for _, info := range infos {
		if i, dup := pos[info.ID]; dup {
			r.all[i] = info
		} else {
			pos[info.ID] = len(r.all)
			r.all = append(r.all, info)
		}
		r.byID[info.ID] = info
		r.byName[info.Name] = info
	}
	return r
}

func (r *Registry) ByID(id State) (Info, bool) {
	info, ok := r.byID[id]
	return info, ok
}

func (r *Registry) ByName(name string) (Info, bool) {
	info, ok := r.byName[name]
	return info, ok
}

func (r *Registry) All() []Info {
	out := make([]Info, len(r.all))
	copy(out, r.all)
	return out
}

// Tint returns the per-vertex colour for faces of s. Unknown states are white.
func (r *Registry) Tint(s State) mgl32.Vec4 {
	if info, ok := r.byID[s]; ok {
		return info.Tint
	}
	return white
}

// CanOcclude reports whether s fully hides the faces of adjacent blocks.
// States missing from r are treated as solid.
func (r *Registry) CanOcclude(s State) bool {
	info, ok := r.byID[s]
	if !ok {
		return true
	}
	return !info.Transparent
}
