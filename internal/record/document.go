package record

import "bytes"

// Wire document type preserving field insertion order. Encoding a plain map
// would serialize keys alphabetically; callers rely on declaration order
// for readable output and introspection.
type OrderedDoc struct {
	keys   []string
	values map[string]any
}

func NewOrderedDoc() *OrderedDoc {
	return &OrderedDoc{values: make(map[string]any)}
}

// Set assigns a value, appending the key on first use.
func (d *OrderedDoc) Set(key string, v any) {
	if _, exists := d.values[key]; !exists {
		d.keys = append(d.keys, key)
	}
	d.values[key] = v
}

// Get returns the value for key and whether it is present.
func (d *OrderedDoc) Get(key string) (any, bool) {
	v, ok := d.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (d *OrderedDoc) Keys() []string {
	return d.keys
}

// Len returns the number of entries.
func (d *OrderedDoc) Len() int {
	return len(d.keys)
}

// MarshalJSON serializes the document with keys in insertion order.
func (d *OrderedDoc) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range d.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(d.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
