package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Node is a value in a decoded settings tree: a scalar, a list or a map.
// The zero Node is null.
type Node struct {
	v any
}

// NewNode wraps a decoded value, normalizing the container types produced by
// the YAML, TOML and JSON decoders into []any and map[string]any.
func NewNode(v any) Node {
	return Node{v: normalize(v)}
}

// IsNull reports whether the node holds nothing.
func (n Node) IsNull() bool { return n.v == nil }

// Value returns the underlying normalized value.
func (n Node) Value() any { return n.v }

// AsString returns a scalar rendered as a string. Lists and maps are not
// strings.
func (n Node) AsString() (string, bool) {
	switch v := n.v.(type) {
	case string:
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), true
	}
	return "", false
}

// AsBool returns a boolean scalar. The strings "true" and "false" are
// accepted as well.
func (n Node) AsBool() (bool, bool) {
	switch v := n.v.(type) {
	case bool:
		return v, true
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, false
		}
		return b, true
	}
	return false, false
}

// AsInt returns an integer scalar.
func (n Node) AsInt() (int, bool) {
	switch v := n.v.(type) {
	case int64:
		return int(v), true
	case float64:
		if v != float64(int(v)) {
			return 0, false
		}
		return int(v), true
	case string:
		i, err := strconv.Atoi(v)
		if err != nil {
			return 0, false
		}
		return i, true
	}
	return 0, false
}

// AsList returns the items of a list node.
func (n Node) AsList() ([]Node, bool) {
	items, ok := n.v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]Node, len(items))
	for i, item := range items {
		out[i] = Node{v: item}
	}
	return out, true
}

// AsMap returns the entries of a map node.
func (n Node) AsMap() (map[string]Node, bool) {
	m, ok := n.v.(map[string]any)
	if !ok {
		return nil, false
	}
	out := make(map[string]Node, len(m))
	for k, v := range m {
		out[k] = Node{v: v}
	}
	return out, true
}

// Get returns the child of a map node, or a null node.
func (n Node) Get(key string) Node {
	m, ok := n.v.(map[string]any)
	if !ok {
		return Node{}
	}
	return Node{v: m[key]}
}

// Lookup follows a slash-delimited path. Map keys are path segments; list
// items are addressed as "@N" or "@last".
func (n Node) Lookup(path string) (Node, bool) {
	cur := n
	path = strings.Trim(path, "/")
	if path == "" {
		return cur, !cur.IsNull()
	}
	for _, key := range strings.Split(path, "/") {
		if strings.HasPrefix(key, "@") {
			items, ok := cur.v.([]any)
			if !ok {
				return Node{}, false
			}
			idx := len(items) - 1
			if key != "@last" {
				i, err := strconv.Atoi(key[1:])
				if err != nil {
					return Node{}, false
				}
				idx = i
			}
			if idx < 0 || idx >= len(items) {
				return Node{}, false
			}
			cur = Node{v: items[idx]}
			continue
		}
		m, ok := cur.v.(map[string]any)
		if !ok {
			return Node{}, false
		}
		v, ok := m[key]
		if !ok || v == nil {
			return Node{}, false
		}
		cur = Node{v: v}
	}
	return cur, true
}

// Source is a thread-safe settings tree addressed by slash-delimited paths,
// e.g. "switcher/hotkeys" or "schema_list/@0/schema". Every getter reports
// whether the node was present and of the requested shape.
type Source struct {
	mu     sync.RWMutex
	root   Node
	path   string
	issues ValidationErrors
}

// NewSource wraps an already decoded tree.
func NewSource(root any) *Source {
	return &Source{root: NewNode(root)}
}

// Path returns the file the source was loaded from, if any.
func (s *Source) Path() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.path
}

// Root returns the whole tree.
func (s *Source) Root() Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.root
}

// Replace swaps the tree, e.g. after a reload.
func (s *Source) Replace(root Node) {
	s.replace(root, nil)
}

func (s *Source) replace(root Node, issues ValidationErrors) {
	s.mu.Lock()
	s.root = root
	s.issues = issues
	s.mu.Unlock()
}

// Issues returns the schema violations found when the tree was loaded.
func (s *Source) Issues() ValidationErrors {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append(ValidationErrors(nil), s.issues...)
}

// Get returns the node at path.
func (s *Source) Get(path string) (Node, bool) {
	return s.Root().Lookup(path)
}

// GetString returns the scalar at path as a string.
func (s *Source) GetString(path string) (string, bool) {
	n, ok := s.Get(path)
	if !ok {
		return "", false
	}
	return n.AsString()
}

// GetBool returns the boolean at path.
func (s *Source) GetBool(path string) (bool, bool) {
	n, ok := s.Get(path)
	if !ok {
		return false, false
	}
	return n.AsBool()
}

// GetInt returns the integer at path.
func (s *Source) GetInt(path string) (int, bool) {
	n, ok := s.Get(path)
	if !ok {
		return 0, false
	}
	return n.AsInt()
}

// GetList returns the list at path.
func (s *Source) GetList(path string) ([]Node, bool) {
	n, ok := s.Get(path)
	if !ok {
		return nil, false
	}
	return n.AsList()
}

// GetMap returns the map at path.
func (s *Source) GetMap(path string) (map[string]Node, bool) {
	n, ok := s.Get(path)
	if !ok {
		return nil, false
	}
	return n.AsMap()
}

// Keys returns the sorted keys of the map at path.
func (s *Source) Keys(path string) []string {
	m, ok := s.GetMap(path)
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// normalize converts decoder output into map[string]any, []any, string,
// bool, int64 and float64 values.
func normalize(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[k] = normalize(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[fmt.Sprint(k)] = normalize(item)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = normalize(item)
		}
		return out
	case []map[string]any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = normalize(item)
		}
		return out
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	case uint64:
		return int64(x)
	case float32:
		return float64(x)
	case string, bool, float64, nil:
		return x
	}
	return fmt.Sprint(v)
}
