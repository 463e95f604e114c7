package graph

// Reserved keys in the generic projection. "@scope" rather than "@id",
// since JSON-LD documents carry their own "@id" properties.
const (
	ScopeKey = "@scope"
	TypeKey  = "@type"
)

// Export projects the tree onto plain Go values: objects become
// map[string]any carrying ScopeKey and, when set, TypeKey; sequences become
// []any; scalars become their native payload. Properties win over the
// reserved keys on collision. Query runs against this projection.
func (s *Scope) Export() any {
	if s.sequence {
		out := make([]any, 0, len(s.keys))
		for _, k := range s.keys {
			out = append(out, s.exportEntity(s.props[k]))
		}
		return out
	}
	out := make(map[string]any, len(s.keys)+2)
	out[ScopeKey] = s.id
	if s.typeTag != "" {
		out[TypeKey] = s.typeTag
	}
	for _, k := range s.keys {
		out[k] = s.exportEntity(s.props[k])
	}
	return out
}

func (s *Scope) exportEntity(e Entity) any {
	if e.IsScope() {
		return s.children[e.scopeID].Export()
	}
	return e.value.Native()
}
