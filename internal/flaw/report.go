package flaw

// Entry is one observed rule value.
type Entry struct {
	Name  string `msgpack:"name"`
	Value Value  `msgpack:"value"`
}

// Report holds the observed values in rule-table order.
type Report struct {
	Entries []Entry `msgpack:"entries"`
}

// Get returns the value observed for name.
func (r Report) Get(name string) (Value, bool) {
	for _, e := range r.Entries {
		if e.Name == name {
			return e.Value, true
		}
	}
	return Value{}, false
}

// Len returns the number of entries.
func (r Report) Len() int {
	return len(r.Entries)
}

// Map renders the report as name → plain value.
func (r Report) Map() map[string]any {
	m := make(map[string]any, len(r.Entries))
	for _, e := range r.Entries {
		m[e.Name] = e.Value.Any()
	}
	return m
}
