package document

import (
	"github.com/partforge/ooxmlsvc/internal/opc"
)

// UpsertResult reports what UpsertPart did, for the Operation Engine's
// per-op report entry (§4.4).
type UpsertResult struct {
	Created bool
}

// UpsertPart implements the upsertPart contract (§4.4): replace the part's
// contents if it exists (re-registering its content type if one is given),
// otherwise insert it at the end of the part list, register it with C3,
// and — because a freshly inserted part is otherwise unreachable from the
// relationship graph — add a relationship to it from the package root.
func (d *Document) UpsertPart(path string, isXML bool, text string, data []byte, contentType string) (*UpsertResult, error) {
	path = opc.CanonicalPartPath(path)
	_, existed := d.Get(path)

	part := &Part{Path: path}
	if isXML {
		part.Type = PartXML
		part.Text = text
	} else {
		part.Type = PartBin
		part.Data = data
	}
	part.ContentType = contentType
	d.Put(part)

	if err := d.RegisterPart(path, contentType); err != nil {
		return nil, err
	}
	if !existed {
		d.AddRelationship("", opc.InferRelType(path), path)
	}
	return &UpsertResult{Created: !existed}, nil
}

// RemovePartResult reports what RemovePart did.
type RemovePartResult struct {
	NotFound bool
}

// RemovePart implements the removePart contract (§4.4): a no-op reported
// as NotFound if the part is absent, otherwise removed from the store with
// the C3 cascade applied.
func (d *Document) RemovePart(path string) *RemovePartResult {
	path = opc.CanonicalPartPath(path)
	if !d.Remove(path) {
		return &RemovePartResult{NotFound: true}
	}
	d.OnRemove(path)
	return &RemovePartResult{}
}

// RenamePart implements the renamePart contract (§4.4): C009 if from is
// absent or to already exists, otherwise moves the part (preserving
// content) and applies the C3 onRename cascade. Returns any non-fatal
// warnings produced by the cascade.
func (d *Document) RenamePart(from, to, contentType string) ([]string, error) {
	from = opc.CanonicalPartPath(from)
	to = opc.CanonicalPartPath(to)
	if err := d.Rename(from, to); err != nil {
		return nil, err
	}
	warnings := d.OnRename(from, to)
	if contentType != "" {
		if err := d.RegisterPart(to, contentType); err != nil {
			return warnings, err
		}
	}
	return warnings, nil
}
