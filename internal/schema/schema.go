// Package schema describes input schemas as the switcher sees them: an
// opaque identifier with an optional display name, listed in configuration
// under schema_list.
package schema

import (
	"imeswitch/internal/config"
)

// ListKey is the configuration path of the ordered schema list.
const ListKey = "schema_list"

// Schema is an input configuration that an engine can apply.
type Schema struct {
	ID   string
	Name string
}

// New returns a schema with the given id.
func New(id string) *Schema {
	return &Schema{ID: id}
}

// DisplayName returns Name, or ID when no name is configured.
func (s *Schema) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.ID
}

// List returns the entries of schema_list in order. Entries that are not
// maps, or whose schema id is missing or empty, are skipped. The second
// result is false when the list itself is absent.
func List(src *config.Source) ([]*Schema, bool) {
	if src == nil {
		return nil, false
	}
	items, ok := src.GetList(ListKey)
	if !ok {
		return nil, false
	}
	out := make([]*Schema, 0, len(items))
	for _, item := range items {
		s, ok := fromNode(item)
		if !ok {
			continue
		}
		out = append(out, s)
	}
	return out, true
}

func fromNode(n config.Node) (*Schema, bool) {
	m, ok := n.AsMap()
	if !ok {
		return nil, false
	}
	id, ok := m["schema"].AsString()
	if !ok || id == "" {
		return nil, false
	}
	s := New(id)
	if name, ok := m["name"].AsString(); ok {
		s.Name = name
	}
	return s, true
}

// Find returns the entry with the given id.
func Find(list []*Schema, id string) (*Schema, bool) {
	for _, s := range list {
		if s.ID == id {
			return s, true
		}
	}
	return nil, false
}
