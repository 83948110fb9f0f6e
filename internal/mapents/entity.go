// Package mapents models the placement entities of a map and parses them
// from the entity-data block that ships next to the compiled geometry.
package mapents

// attribute is a single resolved key/value pair of an Entity.
type attribute struct {
	Key   string
	Value string
}

// Entity is an ordered mapping of attribute names to string values.
//
// An Entity is built once by Parse and never mutated afterwards.
type Entity struct {
	attrs []attribute
	index map[string]int
}

func newEntity() *Entity {
	return &Entity{index: make(map[string]int)}
}

// set stores value under key. A repeated key overwrites the earlier value
// but keeps its original position.
func (e *Entity) set(key, value string) {
	if i, ok := e.index[key]; ok {
		e.attrs[i].Value = value
		return
	}
	e.index[key] = len(e.attrs)
	e.attrs = append(e.attrs, attribute{Key: key, Value: value})
}

// Lookup returns the value stored under key and whether it exists.
func (e *Entity) Lookup(key string) (string, bool) {
	i, ok := e.index[key]
	if !ok {
		return "", false
	}
	return e.attrs[i].Value, true
}

// Get returns the value stored under key, or "" when the key is absent.
func (e *Entity) Get(key string) string {
	v, _ := e.Lookup(key)
	return v
}

// Len returns the number of distinct attributes.
func (e *Entity) Len() int { return len(e.attrs) }

// Store is the ordered list of entities parsed from one entity-data block.
type Store struct {
	entities []*Entity
}

// Len returns the number of entities.
func (s *Store) Len() int { return len(s.entities) }

// ByClass returns every entity whose classname attribute equals classname,
// in source order.
func (s *Store) ByClass(classname string) []*Entity {
	var out []*Entity
	for _, e := range s.entities {
		if e.Get("classname") == classname {
			out = append(out, e)
		}
	}
	return out
}
