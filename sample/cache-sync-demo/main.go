// Standalone probe for the client cache synchronizer: seeds a store,
// runs an optimistic edit through commit and a second one through
// rollback, then a delete, printing the cache after each step.
// Run: go run ./sample/cache-sync-demo
package main

import (
	"fmt"

	"github.com/nextgencrm/nextgencrm-go/client/cache"
)

func main() {
	store := cache.NewStore()
	sync := cache.NewSynchronizer(store)

	store.Subscribe(func(k cache.Key) {
		fmt.Printf("  changed: %s\n", k)
	})

	leadKey := cache.EntityKey(cache.TypeLead, "l1")
	listKey := cache.ListKey(cache.TypeLead, "all")

	store.Set(leadKey, cache.Document{"id": "l1", "name": "Acme", "status": "new"})
	store.SetList(listKey, cache.List{
		{"id": "l1", "name": "Acme", "status": "new"},
		{"id": "l2", "name": "Globex", "status": "new"},
	}, nil)

	fmt.Println("== optimistic edit, then server confirms ==")
	m1, _ := sync.Apply(leadKey, cache.Patch{"status": "assigned"})
	dump(store, leadKey, listKey)

	sync.Commit(m1, cache.Document{"id": "l1", "name": "Acme", "status": "assigned", "updated_at": "2026-09-01T12:00:00Z"})
	dump(store, leadKey, listKey)

	fmt.Println("== optimistic edit, then server rejects ==")
	m2, _ := sync.Apply(leadKey, cache.Patch{"owner": "maria"})
	dump(store, leadKey, listKey)

	sync.Rollback(m2)
	dump(store, leadKey, listKey)

	fmt.Println("== optimistic delete, then server rejects ==")
	m3, _ := sync.Delete(leadKey)
	dump(store, leadKey, listKey)

	sync.Rollback(m3)
	dump(store, leadKey, listKey)
}

func dump(store *cache.Store, leadKey, listKey cache.Key) {
	if v, ok := store.Get(leadKey); ok {
		fmt.Printf("  %s = %v\n", leadKey, v)
	} else {
		fmt.Printf("  %s = (evicted)\n", leadKey)
	}
	if v, ok := store.Get(listKey); ok {
		fmt.Printf("  %s = %v (stale=%v)\n", listKey, v, store.IsStale(listKey))
	}
	fmt.Println()
}
