package graph

import (
	"sort"

	"github.com/RoaringBitmap/roaring"
)

// Index is a read-side companion to a sealed tree. It answers reverse
// lookups (parent of a scope) and type queries without back-pointers in
// the tree itself.
//
// Scopes are numbered in depth-first order; byType maps each type tag to a
// roaring bitmap of those ordinals, so FindByType returns document order.
type Index struct {
	root     *Scope
	byID     map[string]*Scope
	parent   map[string]string // child id -> parent id
	ordinal  map[string]uint32
	scopes   []*Scope // ordinal -> scope
	byType   map[string]*roaring.Bitmap
	maxDepth int
	leaves   int
}

// NewIndex walks root once and builds every lookup table.
func NewIndex(root *Scope) *Index {
	idx := &Index{
		root:    root,
		byID:    make(map[string]*Scope),
		parent:  make(map[string]string),
		ordinal: make(map[string]uint32),
		byType:  make(map[string]*roaring.Bitmap),
	}
	root.Walk(func(s *Scope, depth int) bool {
		n := uint32(len(idx.scopes))
		idx.scopes = append(idx.scopes, s)
		idx.byID[s.id] = s
		idx.ordinal[s.id] = n
		if depth > idx.maxDepth {
			idx.maxDepth = depth
		}
		if s.typeTag != "" {
			bm, ok := idx.byType[s.typeTag]
			if !ok {
				bm = roaring.New()
				idx.byType[s.typeTag] = bm
			}
			bm.Add(n)
		}
		for _, k := range s.keys {
			e := s.props[k]
			if e.IsScope() {
				idx.parent[e.scopeID] = s.id
			} else {
				idx.leaves++
			}
		}
		return true
	})
	return idx
}

// Lookup returns the scope with the given id.
func (idx *Index) Lookup(id string) (*Scope, error) {
	s, ok := idx.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Parent returns the scope that owns id. The root has no parent.
func (idx *Index) Parent(id string) (*Scope, error) {
	pid, ok := idx.parent[id]
	if !ok {
		return nil, ErrNotFound
	}
	return idx.byID[pid], nil
}

// Path returns the property names leading from the root to id.
func (idx *Index) Path(id string) ([]string, error) {
	if _, ok := idx.byID[id]; !ok {
		return nil, ErrNotFound
	}
	var path []string
	for cur := id; ; {
		pid, ok := idx.parent[cur]
		if !ok {
			break
		}
		path = append(path, idx.byID[pid].refs[cur])
		cur = pid
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}

// FindByType returns scopes whose type tag is tag, in document order.
func (idx *Index) FindByType(tag string) []*Scope {
	bm, ok := idx.byType[tag]
	if !ok {
		return nil
	}
	out := make([]*Scope, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		out = append(out, idx.scopes[it.Next()])
	}
	return out
}

// FindByAnyType is the union of FindByType over tags, in document order.
func (idx *Index) FindByAnyType(tags ...string) []*Scope {
	var bms []*roaring.Bitmap
	for _, t := range tags {
		if bm, ok := idx.byType[t]; ok {
			bms = append(bms, bm)
		}
	}
	if len(bms) == 0 {
		return nil
	}
	u := roaring.FastOr(bms...)
	out := make([]*Scope, 0, u.GetCardinality())
	it := u.Iterator()
	for it.HasNext() {
		out = append(out, idx.scopes[it.Next()])
	}
	return out
}

// Types returns every type tag present with its scope count, sorted by tag.
func (idx *Index) Types() []TypeCount {
	out := make([]TypeCount, 0, len(idx.byType))
	for tag, bm := range idx.byType {
		out = append(out, TypeCount{Tag: tag, Count: int(bm.GetCardinality())})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tag < out[j].Tag })
	return out
}

// TypeCount pairs a type tag with the number of scopes carrying it.
type TypeCount struct {
	Tag   string
	Count int
}

// Scopes is the total number of scopes, root included.
func (idx *Index) Scopes() int { return len(idx.scopes) }

// Depth is the height of the tree.
func (idx *Index) Depth() int { return idx.maxDepth }

// Leaves is the number of scalar properties in the tree.
func (idx *Index) Leaves() int { return idx.leaves }
