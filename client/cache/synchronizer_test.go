package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedLead(s *Store) (Key, Key, Key) {
	entityKey := EntityKey(TypeLead, "l1")
	memberList := ListKey(TypeLead, "all")
	filterList := ListKey(TypeLead, "status=assigned")

	s.Set(entityKey, Document{"id": "l1", "name": "Acme", "status": "new"})
	s.SetList(memberList, List{
		{"id": "l0", "name": "Zero", "status": "new"},
		{"id": "l1", "name": "Acme", "status": "new"},
	}, nil)
	s.SetList(filterList, List{}, func(d Document) bool {
		return d["status"] == "assigned"
	})
	return entityKey, memberList, filterList
}

func TestApplyWritesOptimisticallyEverywhere(t *testing.T) {
	store := NewStore()
	entityKey, memberList, filterList := seedLead(store)
	sync := NewSynchronizer(store)

	m, err := sync.Apply(entityKey, Patch{"status": "assigned"})
	require.NoError(t, err)
	require.NotNil(t, m)

	v, _ := store.Get(entityKey)
	assert.Equal(t, "assigned", v.(Document)["status"])
	assert.Equal(t, "Acme", v.(Document)["name"], "unpatched fields survive")

	lv, _ := store.Get(memberList)
	assert.Equal(t, "assigned", lv.(List)[1]["status"], "member list updated in place")

	fv, _ := store.Get(filterList)
	require.Len(t, fv.(List), 1, "entity now matches the filter, so it joins the list")
	assert.Equal(t, "l1", fv.(List)[0].ID())

	assert.True(t, sync.Pending(entityKey))
}

// Rolling back the only pending mutation must leave the cache exactly as
// the snapshot recorded it, every touched key included.
func TestRollbackRestoresExactPriorState(t *testing.T) {
	store := NewStore()
	entityKey, memberList, filterList := seedLead(store)
	sync := NewSynchronizer(store)

	before := map[Key]any{}
	for _, k := range []Key{entityKey, memberList, filterList} {
		v, _ := store.Get(k)
		switch tv := v.(type) {
		case Document:
			before[k] = tv.Clone()
		case List:
			before[k] = tv.Clone()
		}
	}

	m, err := sync.Apply(entityKey, Patch{"status": "assigned", "owner": "maria"})
	require.NoError(t, err)
	require.NoError(t, sync.Rollback(m))

	for k, want := range before {
		got, ok := store.Get(k)
		require.True(t, ok, "key %s evicted by rollback", k)
		assert.Equal(t, want, got, "key %s not restored", k)
	}
	assert.False(t, sync.Pending(entityKey))
}

func TestSequentialEditsComposeOnRollbackOfFirst(t *testing.T) {
	store := NewStore()
	entityKey, _, _ := seedLead(store)
	sync := NewSynchronizer(store)

	a, err := sync.Apply(entityKey, Patch{"status": "assigned"})
	require.NoError(t, err)
	_, err = sync.Apply(entityKey, Patch{"owner": "maria"})
	require.NoError(t, err)

	// A fails while B is still pending: only A's delta disappears.
	require.NoError(t, sync.Rollback(a))

	v, _ := store.Get(entityKey)
	doc := v.(Document)
	assert.Equal(t, "new", doc["status"], "A's delta gone")
	assert.Equal(t, "maria", doc["owner"], "B's delta preserved")
	assert.True(t, sync.Pending(entityKey))
}

// When every pending edit fails, the cache must settle on the value from
// before the first of them. The second snapshot was taken after the first
// optimistic write, so restoring it verbatim would resurrect the first
// edit's already-rolled-back delta.
func TestRollbackOfAllSequentialEditsRestoresOriginal(t *testing.T) {
	store := NewStore()
	entityKey, memberList, _ := seedLead(store)
	sync := NewSynchronizer(store)

	original := Document{"id": "l1", "name": "Acme", "status": "new"}

	a, err := sync.Apply(entityKey, Patch{"status": "assigned"})
	require.NoError(t, err)
	b, err := sync.Apply(entityKey, Patch{"owner": "maria"})
	require.NoError(t, err)

	require.NoError(t, sync.Rollback(a))
	require.NoError(t, sync.Rollback(b))

	v, ok := store.Get(entityKey)
	require.True(t, ok)
	assert.Equal(t, original, v.(Document), "no delta of either edit survives")

	lv, _ := store.Get(memberList)
	assert.Equal(t, original, lv.(List)[1], "list element back to original")
	assert.False(t, sync.Pending(entityKey))
}

// Same pair of edits, unwound in reverse order.
func TestRollbackOfAllSequentialEditsReverseOrder(t *testing.T) {
	store := NewStore()
	entityKey, _, _ := seedLead(store)
	sync := NewSynchronizer(store)

	a, _ := sync.Apply(entityKey, Patch{"status": "assigned"})
	b, _ := sync.Apply(entityKey, Patch{"owner": "maria"})

	require.NoError(t, sync.Rollback(b))
	require.NoError(t, sync.Rollback(a))

	v, _ := store.Get(entityKey)
	doc := v.(Document)
	assert.Equal(t, "new", doc["status"])
	assert.NotContains(t, doc, "owner")
}

func TestCommitRebasesPendingEditsOntoServerTruth(t *testing.T) {
	store := NewStore()
	entityKey, _, _ := seedLead(store)
	sync := NewSynchronizer(store)

	a, err := sync.Apply(entityKey, Patch{"status": "assigned"})
	require.NoError(t, err)
	b, err := sync.Apply(entityKey, Patch{"owner": "maria"})
	require.NoError(t, err)

	serverA := Document{"id": "l1", "name": "Acme", "status": "assigned", "updated_at": "2026-09-01T10:00:00Z"}
	require.NoError(t, sync.Commit(a, serverA))

	v, _ := store.Get(entityKey)
	doc := v.(Document)
	assert.Equal(t, "2026-09-01T10:00:00Z", doc["updated_at"], "server fields land")
	assert.Equal(t, "maria", doc["owner"], "pending edit reapplied on top")

	// B then fails: the cache settles on exactly what the server confirmed.
	require.NoError(t, sync.Rollback(b))
	v, _ = store.Get(entityKey)
	assert.Equal(t, serverA, v.(Document))
	assert.False(t, sync.Pending(entityKey))
}

// Responses can land out of call order. A later mutation's server truth
// must wait for the earlier one to resolve, then win.
func TestOutOfOrderCommitsApplyInCallOrder(t *testing.T) {
	store := NewStore()
	entityKey, _, _ := seedLead(store)
	sync := NewSynchronizer(store)

	a, _ := sync.Apply(entityKey, Patch{"status": "assigned"})
	b, _ := sync.Apply(entityKey, Patch{"owner": "maria"})

	serverB := Document{"id": "l1", "name": "Acme", "status": "assigned", "owner": "maria"}
	require.NoError(t, sync.Commit(b, serverB))

	// B's delta stays visible while A is unresolved.
	v, _ := store.Get(entityKey)
	assert.Equal(t, "maria", v.(Document)["owner"])
	assert.True(t, sync.Pending(entityKey))

	serverA := Document{"id": "l1", "name": "Acme", "status": "assigned"}
	require.NoError(t, sync.Commit(a, serverA))

	v, _ = store.Get(entityKey)
	assert.Equal(t, serverB, v.(Document), "later call's server truth wins")
	assert.False(t, sync.Pending(entityKey))
}

func TestRollbackOfFirstFoldsLaterCommit(t *testing.T) {
	store := NewStore()
	entityKey, _, _ := seedLead(store)
	sync := NewSynchronizer(store)

	a, _ := sync.Apply(entityKey, Patch{"status": "assigned"})
	b, _ := sync.Apply(entityKey, Patch{"owner": "maria"})

	serverB := Document{"id": "l1", "name": "Acme", "status": "new", "owner": "maria"}
	require.NoError(t, sync.Commit(b, serverB))
	require.NoError(t, sync.Rollback(a))

	v, _ := store.Get(entityKey)
	assert.Equal(t, serverB, v.(Document), "committed B survives A's rollback")
	assert.False(t, sync.Pending(entityKey))
}

func TestCommitMarksTouchedListsStale(t *testing.T) {
	store := NewStore()
	entityKey, memberList, _ := seedLead(store)
	sync := NewSynchronizer(store)

	m, _ := sync.Apply(entityKey, Patch{"status": "assigned"})
	require.NoError(t, sync.Commit(m, Document{"id": "l1", "name": "Acme", "status": "assigned"}))

	assert.True(t, store.IsStale(memberList))
	assert.False(t, store.IsStale(entityKey))
}

func TestDeleteRollbackRestoresListPositions(t *testing.T) {
	store := NewStore()
	entityKey := EntityKey(TypeContact, "c2")
	listKey := ListKey(TypeContact, "all")

	original := List{
		{"id": "c1", "name": "Ana"},
		{"id": "c2", "name": "Bruno"},
		{"id": "c3", "name": "Clara"},
	}
	store.Set(entityKey, Document{"id": "c2", "name": "Bruno"})
	store.SetList(listKey, original, nil)

	sync := NewSynchronizer(store)
	m, err := sync.Delete(entityKey)
	require.NoError(t, err)

	lv, _ := store.Get(listKey)
	require.Len(t, lv.(List), 2)
	_, ok := store.Get(entityKey)
	assert.False(t, ok, "entity evicted optimistically")

	require.NoError(t, sync.Rollback(m))

	lv, _ = store.Get(listKey)
	assert.Equal(t, original, lv.(List), "order and content restored")
	v, ok := store.Get(entityKey)
	require.True(t, ok)
	assert.Equal(t, "Bruno", v.(Document)["name"])
}

func TestCommitDeleteLeavesKeyEvicted(t *testing.T) {
	store := NewStore()
	entityKey := EntityKey(TypeContact, "c1")
	listKey := ListKey(TypeContact, "all")
	store.Set(entityKey, Document{"id": "c1"})
	store.SetList(listKey, List{{"id": "c1"}}, nil)

	sync := NewSynchronizer(store)
	m, _ := sync.Delete(entityKey)
	require.NoError(t, sync.Commit(m, nil))

	_, ok := store.Get(entityKey)
	assert.False(t, ok)
	assert.True(t, store.IsStale(listKey))
	assert.False(t, sync.Pending(entityKey))
}

// A mutation resolves exactly once; late commits and rollbacks are no-ops.
func TestSupersededResolutionIsNoOp(t *testing.T) {
	store := NewStore()
	entityKey, _, _ := seedLead(store)
	sync := NewSynchronizer(store)

	m, _ := sync.Apply(entityKey, Patch{"status": "assigned"})
	require.NoError(t, sync.Rollback(m))

	v, _ := store.Get(entityKey)
	restored := v.(Document).Clone()

	require.NoError(t, sync.Commit(m, Document{"id": "l1", "status": "assigned"}))
	require.NoError(t, sync.Rollback(m))

	v, _ = store.Get(entityKey)
	assert.Equal(t, restored, v.(Document), "late resolutions change nothing")
}

func TestApplyRejectsListKeys(t *testing.T) {
	sync := NewSynchronizer(NewStore())

	_, err := sync.Apply(ListKey(TypeLead, "all"), Patch{"x": 1})
	assert.Error(t, err)
	_, err = sync.Delete(ListKey(TypeLead, "all"))
	assert.Error(t, err)
}

func TestCommitWithIncompleteSnapshotFailsLoudly(t *testing.T) {
	store := NewStore()
	entityKey := EntityKey(TypeLead, "l1")
	store.Set(entityKey, Document{"id": "l1"})

	sync := NewSynchronizer(store)

	// A mutation whose snapshot never recorded its own key is a bug in
	// the write path; resolution must refuse to touch the cache.
	m := &Mutation{Key: entityKey, kind: patchMutation, snapshot: newSnapshot()}
	sync.chains[entityKey] = &chain{muts: []*Mutation{m}}

	err := sync.Commit(m, Document{"id": "l1"})
	assert.True(t, IsCacheInvariantError(err))

	err = sync.Rollback(m)
	assert.True(t, IsCacheInvariantError(err))
}
