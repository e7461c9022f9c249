package lyric

// Metadata is a multi-valued string map that remembers the order in which
// keys were first added.
type Metadata struct {
	keys   []string
	values map[string][]string
}

// Add appends value to the list stored under key.
func (m *Metadata) Add(key, value string) {
	if m.values == nil {
		m.values = make(map[string][]string)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = append(m.values[key], value)
}

// Values returns the values stored under key, in insertion order.
func (m *Metadata) Values(key string) []string {
	return m.values[key]
}

// First returns the first value under key.
func (m *Metadata) First(key string) (string, bool) {
	v := m.values[key]
	if len(v) == 0 {
		return "", false
	}
	return v[0], true
}

// Keys returns the keys in first-insertion order.
func (m *Metadata) Keys() []string {
	return m.keys
}

// Len returns the number of distinct keys.
func (m *Metadata) Len() int {
	return len(m.keys)
}
