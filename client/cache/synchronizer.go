package cache

import (
	"errors"
	"sort"
	"sync"
)

type mutationKind int

const (
	patchMutation mutationKind = iota
	deleteMutation
)

// Mutation is one optimistic write in flight: the patch it applied, the
// snapshot it captured, and where it sits in its key's chain. It resolves
// through exactly one Commit or Rollback.
type Mutation struct {
	Key      Key
	kind     mutationKind
	patch    Patch
	snapshot *Snapshot

	listKeys  []Key        // list entries touched, in touch order
	addedTo   map[Key]bool // lists the optimistic write appended to
	positions map[Key]int  // original element positions, for delete restore

	// set when the mutation commits while an earlier one on the same key
	// is still unresolved; its server truth folds into the chain base
	// once everything before it resolves
	resolved bool
	server   Document
}

// Snapshot exposes the prior-state record captured when the mutation was
// applied.
func (m *Mutation) Snapshot() *Snapshot {
	return m.snapshot
}

// chain tracks the in-flight mutations against one entity key. base is
// the authoritative value before the first of them; the current cache
// value is always base plus the remaining patches in order, which is what
// lets a rollback remove exactly one delta while preserving the rest.
type chain struct {
	base        Document
	basePresent bool
	rebased     bool // a commit replaced base with server truth
	dirty       bool // a rollback removed a mutation while others were pending
	muts        []*Mutation
}

func (c *chain) indexOf(m *Mutation) int {
	for i, it := range c.muts {
		if it == m {
			return i
		}
	}
	return -1
}

func (c *chain) remove(i int) {
	c.muts = append(c.muts[:i], c.muts[i+1:]...)
}

// foldResolved absorbs leading already-committed mutations into the
// base, applying their server truth in call order.
func (c *chain) foldResolved() {
	for len(c.muts) > 0 && c.muts[0].resolved {
		c.base = c.muts[0].server
		c.basePresent = c.muts[0].server != nil
		c.rebased = true
		c.muts = c.muts[1:]
	}
}

func (c *chain) recompute() (Document, bool) {
	v := c.base.Clone()
	present := c.basePresent
	for _, m := range c.muts {
		if m.kind == deleteMutation {
			v = nil
			present = false
			continue
		}
		v = Merge(v, m.patch)
		present = true
	}
	return v, present
}

// Synchronizer implements the optimistic-mutation protocol over a Store:
// Apply writes the expected result immediately, Commit reconciles with
// server truth, Rollback unwinds exactly the failed mutation's delta.
// Uniform across entity types; only the "id" field and the list entries'
// membership filters are consulted.
type Synchronizer struct {
	mu     sync.Mutex
	store  *Store
	chains map[Key]*chain
}

func NewSynchronizer(store *Store) *Synchronizer {
	return &Synchronizer{
		store:  store,
		chains: make(map[Key]*chain),
	}
}

// Apply captures a snapshot of every key the write touches, then writes
// the merged value synchronously: the single-entity key plus every list
// entry of the same type that contains or accepts the entity. A second
// Apply against the same key while the first is unresolved snapshots the
// already-optimistic value, so sequential edits compose.
func (s *Synchronizer) Apply(key Key, patch Patch) (*Mutation, error) {
	if key.IsList() {
		return nil, errors.New("optimistic mutations target single-entity keys")
	}

	m := &Mutation{
		Key:       key,
		kind:      patchMutation,
		patch:     patch.Clone(),
		snapshot:  newSnapshot(),
		addedTo:   make(map[Key]bool),
		positions: make(map[Key]int),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.store.Batch(func(b *Batch) {
		cur, present := b.Get(key)
		curDoc, _ := cur.(Document)
		next := Merge(curDoc, patch)
		if next.ID() == "" {
			next["id"] = key.ID
		}

		b.snapshotRecord(m.snapshot, key)

		for _, lk := range b.listKeysFor(key.Type, next) {
			b.snapshotRecord(m.snapshot, lk)
			m.listKeys = append(m.listKeys, lk)
		}

		b.setKeepingFilter(key, next)

		for _, lk := range m.listKeys {
			list := b.listAt(lk)
			nl := list.Clone()
			if idx := nl.indexOf(key.ID); idx >= 0 {
				nl[idx] = next.Clone()
			} else {
				nl = append(nl, next.Clone())
				m.addedTo[lk] = true
			}
			b.setKeepingFilter(lk, nl)
		}

		ch := s.chains[key]
		if ch == nil {
			ch = &chain{base: curDoc.Clone(), basePresent: present}
			s.chains[key] = ch
		}
		ch.muts = append(ch.muts, m)
	})

	return m, nil
}

// Delete is the special-case mutation: the snapshot captures the
// entity's presence in every list, the optimistic write removes it
// everywhere and evicts the single-entity key.
func (s *Synchronizer) Delete(key Key) (*Mutation, error) {
	if key.IsList() {
		return nil, errors.New("optimistic mutations target single-entity keys")
	}

	m := &Mutation{
		Key:       key,
		kind:      deleteMutation,
		snapshot:  newSnapshot(),
		addedTo:   make(map[Key]bool),
		positions: make(map[Key]int),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.store.Batch(func(b *Batch) {
		cur, present := b.Get(key)
		curDoc, _ := cur.(Document)

		b.snapshotRecord(m.snapshot, key)

		for _, lk := range b.listKeysFor(key.Type, Document{"id": key.ID}) {
			b.snapshotRecord(m.snapshot, lk)
			m.listKeys = append(m.listKeys, lk)
		}

		for _, lk := range m.listKeys {
			list := b.listAt(lk)
			idx := list.indexOf(key.ID)
			if idx < 0 {
				continue
			}
			m.positions[lk] = idx
			nl := list.Clone()
			nl = append(nl[:idx], nl[idx+1:]...)
			b.setKeepingFilter(lk, nl)
		}

		b.Remove(key)

		ch := s.chains[key]
		if ch == nil {
			ch = &chain{base: curDoc.Clone(), basePresent: present}
			s.chains[key] = ch
		}
		ch.muts = append(ch.muts, m)
	})

	return m, nil
}

// Commit resolves a mutation with the authoritative server document. The
// single-entity key is rebased onto server truth (with any still-pending
// patches reapplied on top) and related list entries go stale for lazy
// refetch. Committing a mutation that was already superseded is a no-op.
func (s *Synchronizer) Commit(m *Mutation, server Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := s.chains[m.Key]
	if ch == nil {
		return nil
	}
	idx := ch.indexOf(m)
	if idx < 0 || m.resolved {
		return nil
	}

	var err error
	s.store.Batch(func(b *Batch) {
		if !m.snapshot.has(m.Key) {
			err = &CacheInvariantError{Key: m.Key, Op: "commit"}
			return
		}

		if m.kind == deleteMutation {
			// Deletion confirmed: the key stays evicted and whatever else
			// was queued against it is moot.
			ch.remove(idx)
			delete(s.chains, m.Key)
			for _, lk := range m.listKeys {
				b.MarkStale(lk)
			}
			return
		}

		if idx > 0 {
			// Resolved out of call order: earlier mutations are still in
			// flight, so the delta stays in place and the server truth
			// waits its turn at the head of the chain.
			m.resolved = true
			m.server = server.Clone()
			for _, lk := range m.listKeys {
				if !m.snapshot.has(lk) {
					err = &CacheInvariantError{Key: lk, Op: "commit"}
					return
				}
				b.MarkStale(lk)
			}
			return
		}

		ch.remove(0)
		ch.base = server.Clone()
		ch.basePresent = server != nil
		ch.rebased = true
		ch.foldResolved()

		v, present := ch.recompute()
		if len(ch.muts) == 0 {
			delete(s.chains, m.Key)
		}

		if present {
			b.setKeepingFilter(m.Key, v)
		} else {
			b.Remove(m.Key)
		}

		for _, lk := range m.listKeys {
			if !m.snapshot.has(lk) {
				err = &CacheInvariantError{Key: lk, Op: "commit"}
				return
			}
			if present {
				list := b.listAt(lk)
				if i := list.indexOf(m.Key.ID); i >= 0 {
					nl := list.Clone()
					nl[i] = v.Clone()
					b.setKeepingFilter(lk, nl)
				}
			}
			b.MarkStale(lk)
		}
	})

	return err
}

// Rollback unwinds exactly this mutation's delta. When it is the only
// mutation the chain ever resolved, that is a literal restore of the
// snapshot, key by key in reverse touch order. Otherwise the surviving
// patches are recomputed over the chain's base so only the failed delta
// disappears; snapshots taken after another mutation's write are never
// restored verbatim. Rolling back a superseded mutation is a no-op.
func (s *Synchronizer) Rollback(m *Mutation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := s.chains[m.Key]
	if ch == nil {
		return nil
	}
	idx := ch.indexOf(m)
	if idx < 0 || m.resolved {
		return nil
	}

	var err error
	s.store.Batch(func(b *Batch) {
		if !m.snapshot.has(m.Key) {
			err = &CacheInvariantError{Key: m.Key, Op: "rollback"}
			return
		}

		ch.remove(idx)
		ch.foldResolved()
		last := len(ch.muts) == 0
		if !last {
			// The remaining mutations' snapshots include this rollback's
			// now-removed delta, so a later literal restore would
			// resurrect it.
			ch.dirty = true
		}

		if last && !ch.rebased && !ch.dirty {
			delete(s.chains, m.Key)
			keys := m.snapshot.Keys()
			for i := len(keys) - 1; i >= 0; i-- {
				b.restore(keys[i], m.snapshot.value(keys[i]))
			}
			return
		}

		v, present := ch.recompute()
		if last {
			delete(s.chains, m.Key)
		}

		if present {
			b.setKeepingFilter(m.Key, v)
		} else {
			b.Remove(m.Key)
		}

		for i := len(m.listKeys) - 1; i >= 0; i-- {
			lk := m.listKeys[i]
			if !m.snapshot.has(lk) {
				err = &CacheInvariantError{Key: lk, Op: "rollback"}
				return
			}
			list := b.listAt(lk)
			nl := list.Clone()
			at := nl.indexOf(m.Key.ID)

			switch {
			case !present:
				if at >= 0 {
					nl = append(nl[:at], nl[at+1:]...)
				}
			case m.kind == deleteMutation && at < 0:
				pos, ok := m.positions[lk]
				if !ok || pos > len(nl) {
					pos = len(nl)
				}
				nl = append(nl[:pos], append(List{v.Clone()}, nl[pos:]...)...)
			case m.addedTo[lk] && at >= 0 && last:
				// The optimistic write introduced the element; unwind it.
				nl = append(nl[:at], nl[at+1:]...)
			case at >= 0:
				nl[at] = v.Clone()
			}

			b.setKeepingFilter(lk, nl)
		}
	})

	return err
}

// Pending reports whether any mutation is still unresolved against key.
func (s *Synchronizer) Pending(key Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.chains[key]
	return ok && len(ch.muts) > 0
}

// listKeysFor finds every list entry of entityType whose filter accepts
// doc or which already holds its id. Sorted by signature so snapshot
// touch order is deterministic.
func (b *Batch) listKeysFor(entityType string, doc Document) []Key {
	keys := []Key{}
	for k, e := range b.store.entries {
		if k.Type != entityType || !k.IsList() {
			continue
		}
		if e.Matches(doc) {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Signature < keys[j].Signature })
	return keys
}

func (b *Batch) listAt(key Key) List {
	e, ok := b.store.entries[key]
	if !ok {
		return nil
	}
	list, _ := e.Data.(List)
	return list
}

func (b *Batch) snapshotRecord(s *Snapshot, key Key) {
	e, ok := b.store.entries[key]
	s.record(key, e, ok)
}
