package cache

import (
	"sync"
	"time"
)

// Entry is one cached value plus its freshness metadata. List entries
// optionally carry a membership filter so the synchronizer can decide
// whether a changed entity belongs in them without per-entity knowledge.
type Entry struct {
	Data      any
	UpdatedAt time.Time
	Stale     bool

	filter func(Document) bool
}

// Matches reports whether doc belongs in this list entry: either the
// registered filter says so, or the list already contains the id.
func (e *Entry) Matches(doc Document) bool {
	if e.filter != nil && e.filter(doc) {
		return true
	}
	if list, ok := e.Data.(List); ok {
		return list.indexOf(doc.ID()) >= 0
	}
	return false
}

// Store is the in-memory key→entry map every view reads from. It is
// constructed explicitly and injected, never a package-level singleton,
// so tests get isolated instances. Subscribers are notified after each
// change with the keys that changed.
type Store struct {
	mu      sync.Mutex
	entries map[Key]*Entry
	subs    map[int]func(Key)
	nextSub int
	now     func() time.Time
}

func NewStore() *Store {
	return &Store{
		entries: make(map[Key]*Entry),
		subs:    make(map[int]func(Key)),
		now:     time.Now,
	}
}

func (s *Store) Get(key Key) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	return e.Data, true
}

// Lookup returns a copy of the entry so callers can inspect staleness
// without holding the lock.
func (s *Store) Lookup(key Key) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

func (s *Store) Set(key Key, data any) {
	s.Batch(func(b *Batch) { b.Set(key, data) })
}

// SetList stores a list-query result together with its membership filter.
func (s *Store) SetList(key Key, list List, filter func(Document) bool) {
	s.Batch(func(b *Batch) { b.SetList(key, list, filter) })
}

func (s *Store) Remove(key Key) {
	s.Batch(func(b *Batch) { b.Remove(key) })
}

func (s *Store) MarkStale(key Key) {
	s.Batch(func(b *Batch) { b.MarkStale(key) })
}

func (s *Store) IsStale(key Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	return ok && e.Stale
}

// Keys returns all keys matching the predicate, single-entity and list
// alike.
func (s *Store) Keys(match func(Key) bool) []Key {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := []Key{}
	for k := range s.entries {
		if match(k) {
			keys = append(keys, k)
		}
	}
	return keys
}

// Subscribe registers fn to run after every change, once per changed key,
// in the order the keys were touched. The returned func unsubscribes.
func (s *Store) Subscribe(fn func(Key)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Batch applies a group of changes under one lock acquisition, so no
// reader observes a state where only some of them have landed.
// Notifications fire after the lock is released.
func (s *Store) Batch(fn func(b *Batch)) {
	s.mu.Lock()
	b := &Batch{store: s}
	fn(b)

	subs := make([]func(Key), 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	changed := b.changed
	s.mu.Unlock()

	for _, key := range changed {
		for _, sub := range subs {
			sub(key)
		}
	}
}

// Batch collects store mutations applied under a single lock pass. Only
// valid inside Store.Batch.
type Batch struct {
	store   *Store
	changed []Key
}

func (b *Batch) touch(key Key) {
	b.changed = append(b.changed, key)
}

func (b *Batch) Get(key Key) (any, bool) {
	e, ok := b.store.entries[key]
	if !ok {
		return nil, false
	}
	return e.Data, true
}

func (b *Batch) Set(key Key, data any) {
	e, ok := b.store.entries[key]
	if !ok {
		e = &Entry{}
		b.store.entries[key] = e
	}
	e.Data = data
	e.UpdatedAt = b.store.now()
	e.Stale = false
	b.touch(key)
}

func (b *Batch) SetList(key Key, list List, filter func(Document) bool) {
	b.Set(key, list)
	b.store.entries[key].filter = filter
}

// setKeepingFilter writes data without clobbering a list entry's filter
// or staleness; the synchronizer uses it for in-place optimistic edits.
func (b *Batch) setKeepingFilter(key Key, data any) {
	e, ok := b.store.entries[key]
	if !ok {
		e = &Entry{}
		b.store.entries[key] = e
	}
	e.Data = data
	e.UpdatedAt = b.store.now()
	b.touch(key)
}

func (b *Batch) Remove(key Key) {
	if _, ok := b.store.entries[key]; !ok {
		return
	}
	delete(b.store.entries, key)
	b.touch(key)
}

func (b *Batch) MarkStale(key Key) {
	e, ok := b.store.entries[key]
	if !ok {
		return
	}
	e.Stale = true
	b.touch(key)
}

// InvalidateLists marks every list entry of the given entity type stale.
// Staleness is a lazy-refetch signal; the data stays readable until the
// next fetch replaces it.
func (b *Batch) InvalidateLists(entityType string) {
	for k := range b.store.entries {
		if k.Type == entityType && k.IsList() {
			b.MarkStale(k)
		}
	}
}

// restore puts back an exact prior entry state, presence included.
func (b *Batch) restore(key Key, val snapValue) {
	if !val.present {
		b.Remove(key)
		return
	}
	e, ok := b.store.entries[key]
	if !ok {
		e = &Entry{}
		b.store.entries[key] = e
	}
	e.Data = val.data
	e.UpdatedAt = val.updatedAt
	e.Stale = val.stale
	e.filter = val.filter
	b.touch(key)
}
