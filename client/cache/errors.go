package cache

import "fmt"

// CacheInvariantError means a commit or rollback had to touch a key its
// snapshot never captured. That is a bug in key extraction or list
// membership, not a runtime condition; it fails loudly instead of
// corrupting state.
type CacheInvariantError struct {
	Key Key
	Op  string
}

func (e *CacheInvariantError) Error() string {
	return fmt.Sprintf("cache invariant violated: %s needed key %s missing from snapshot", e.Op, e.Key)
}

func IsCacheInvariantError(err error) bool {
	_, ok := err.(*CacheInvariantError)
	return ok
}
