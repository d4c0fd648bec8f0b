package cache

import "fmt"

// Entity type names used for cache keys. They match the REST resource
// names the backend serves.
const (
	TypeLead         = "lead"
	TypeOrganization = "organization"
	TypeContact      = "contact"
	TypeOpportunity  = "opportunity"
	TypeTask         = "task"
	TypeCall         = "call"
	TypeDashboard    = "dashboard"
)

// Key addresses one cache entry: either a single entity (Type+ID) or a
// list query (Type+Signature, where the signature encodes the filter).
type Key struct {
	Type      string
	ID        string
	Signature string
}

func EntityKey(entityType, id string) Key {
	return Key{Type: entityType, ID: id}
}

func ListKey(entityType, signature string) Key {
	return Key{Type: entityType, Signature: signature}
}

// DashboardKey addresses the dashboard aggregate entry.
func DashboardKey() Key {
	return ListKey(TypeDashboard, "stats")
}

func (k Key) IsList() bool {
	return k.Signature != ""
}

func (k Key) String() string {
	if k.IsList() {
		return fmt.Sprintf("%s[%s]", k.Type, k.Signature)
	}
	return fmt.Sprintf("%s/%s", k.Type, k.ID)
}
