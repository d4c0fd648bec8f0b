package cache

import "time"

// Snapshot is the explicit record of prior cache state captured before an
// optimistic write: every key the write touches, in touch order, with the
// exact value (or absence) it had. Rollback consumes it in reverse order.
type Snapshot struct {
	keys   []Key
	values map[Key]snapValue
}

type snapValue struct {
	data      any
	present   bool
	stale     bool
	updatedAt time.Time
	filter    func(Document) bool
}

func newSnapshot() *Snapshot {
	return &Snapshot{values: make(map[Key]snapValue)}
}

func (s *Snapshot) record(key Key, e *Entry, present bool) {
	if _, done := s.values[key]; done {
		return
	}
	val := snapValue{present: present}
	if present {
		val.stale = e.Stale
		val.updatedAt = e.UpdatedAt
		val.filter = e.filter
		switch data := e.Data.(type) {
		case Document:
			val.data = data.Clone()
		case List:
			val.data = data.Clone()
		default:
			val.data = e.Data
		}
	}
	s.keys = append(s.keys, key)
	s.values[key] = val
}

// Keys returns the snapshot's keys in the order they were touched.
func (s *Snapshot) Keys() []Key {
	out := make([]Key, len(s.keys))
	copy(out, s.keys)
	return out
}

func (s *Snapshot) has(key Key) bool {
	_, ok := s.values[key]
	return ok
}

func (s *Snapshot) value(key Key) snapValue {
	return s.values[key]
}
