package config

import "strings"

// Store implements ports.ConfigStore over the merged configuration map.
// It is read-only after Load.
type Store struct {
	raw map[string]any
}

// NewStore wraps a raw configuration map.
func NewStore(raw map[string]any) *Store {
	return &Store{raw: raw}
}

// Get resolves a dotted key such as "vpn.dir" or "channels.music".
func (s *Store) Get(key string) (any, bool) {
	var cur any = s.raw
	for _, part := range strings.Split(key, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// String returns the string at key, or def when it is missing or not a string.
func (s *Store) String(key, def string) string {
	v, ok := s.Get(key)
	if !ok {
		return def
	}
	str, ok := v.(string)
	if !ok || str == "" {
		return def
	}
	return str
}
