package cache

// Document is the cache's value shape for a single entity: a decoded JSON
// object. The synchronizer needs no per-entity knowledge beyond the "id"
// field.
type Document map[string]any

// Patch is a partial Document merged over the current value.
type Patch = Document

// List is the value shape of a list-query entry.
type List []Document

func (d Document) ID() string {
	id, _ := d["id"].(string)
	return id
}

func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

func (l List) Clone() List {
	if l == nil {
		return nil
	}
	out := make(List, len(l))
	for i, d := range l {
		out[i] = d.Clone()
	}
	return out
}

// indexOf returns the position of the document with the given id, or -1.
func (l List) indexOf(id string) int {
	for i, d := range l {
		if d.ID() == id {
			return i
		}
	}
	return -1
}

// Merge applies patch over base field by field and returns a new
// Document. Base is not modified; a nil base means the patch becomes the
// whole document.
func Merge(base Document, patch Patch) Document {
	out := base.Clone()
	if out == nil {
		out = make(Document, len(patch))
	}
	for k, v := range patch {
		out[k] = v
	}
	return out
}
