package resolver

import "strings"

// ReplacementMapping records which legacy links each baseline link
// replaces. Keys and the ABBs under each key keep encounter order.
type ReplacementMapping struct {
	keys     []string
	replaces map[string][]string
}

// NewReplacementMapping returns an empty mapping.
func NewReplacementMapping() *ReplacementMapping {
	return &ReplacementMapping{replaces: make(map[string][]string)}
}

// Add appends abb to the links replaced by key.
func (m *ReplacementMapping) Add(key, abb string) {
	if _, ok := m.replaces[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.replaces[key] = append(m.replaces[key], abb)
}

// Keys returns the synthetic keys in first-seen order.
func (m *ReplacementMapping) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Has reports whether key replaces anything.
func (m *ReplacementMapping) Has(key string) bool {
	_, ok := m.replaces[key]
	return ok
}

// Replaces returns the ABBs replaced by key in encounter order.
func (m *ReplacementMapping) Replaces(key string) []string {
	out := make([]string, len(m.replaces[key]))
	copy(out, m.replaces[key])
	return out
}

// Render joins the ABBs replaced by key with ", ".
func (m *ReplacementMapping) Render(key string) string {
	return strings.Join(m.replaces[key], ", ")
}

// Len returns the number of distinct replacing links.
func (m *ReplacementMapping) Len() int { return len(m.keys) }
