// Package document provides the in-memory Document and Part Store (C2):
// an ordered, addressable collection of OOXML parts plus the structured
// Content-Types and Relationships maintenance (C3) that keeps them
// consistent under mutation.
//
// It generalizes the teacher's Word-only `internal/packaging.Document`
// (mesocyclon-docx-api) — which hard-codes fields like Styles/Headers/
// Footers for a single format — into the format-agnostic engine this spec
// requires, built directly on internal/opc's PackURI/ContentTypeMap/
// Relationships primitives instead of a typed Part hierarchy.
package document

import (
	"strings"

	"github.com/partforge/ooxmlsvc/internal/apierr"
	"github.com/partforge/ooxmlsvc/internal/opc"
)

// Kind identifies which OOXML format a Document holds.
type Kind string

const (
	KindPPTX    Kind = "pptx"
	KindDOCX    Kind = "docx"
	KindXLSX    Kind = "xlsx"
	KindGeneric Kind = "generic"
)

// mainPartByKind names the format's required main part (§3 Document
// invariants): "[Content_Types].xml", "_rels/.rels", and this path must
// always exist in a well-formed Document.
var mainPartByKind = map[Kind]string{
	KindPPTX: "ppt/presentation.xml",
	KindDOCX: "word/document.xml",
	KindXLSX: "xl/workbook.xml",
}

// detectKind infers Kind from which main part is present.
func detectKind(has map[string]bool) Kind {
	for k, p := range mainPartByKind {
		if has[p] {
			return k
		}
	}
	return KindGeneric
}

// PartType distinguishes textual XML content from opaque binary content
// (§3 Part entity).
type PartType string

const (
	PartXML PartType = "xml"
	PartBin PartType = "bin"
)

// Part is a single archive entry (§3). Path is canonical: forward slashes,
// no leading slash.
type Part struct {
	Path        string
	Type        PartType
	Text        string // populated when Type == PartXML
	Data        []byte // populated when Type == PartBin
	ContentType string // explicit override, "" if not set
	Modified    bool

	// origEntry, when non-nil, is the opc.Entry this part was decoded
	// from. Encode reuses it verbatim for unmodified binary parts so their
	// original compressed bytes are re-emitted without a fresh DEFLATE
	// pass (§4.1 encode invariant: "minimize churn").
	origEntry *opc.Entry
}

// Document is the in-memory representation of one OOXML file (§3).
type Document struct {
	Kind Kind

	order []string // part paths in insertion/round-trip order
	parts map[string]*Part

	ctypes *opc.ContentTypeMap
	// relsBySource maps a rels-source path ("" for the package root) to its
	// parsed Relationships set. The corresponding "_rels/<x>.rels" Part
	// text is regenerated from this set at Encode time.
	relsBySource map[string]*opc.Relationships
}

// New creates a Document of the given kind with no parts, seeded with a
// content-types table holding the standard defaults and an empty root
// relationship set (the models Encode writes out as [Content_Types].xml
// and _rels/.rels).
func New(kind Kind) *Document {
	d := &Document{
		Kind:         kind,
		parts:        make(map[string]*Part),
		ctypes:       opc.NewContentTypeMap(),
		relsBySource: make(map[string]*opc.Relationships),
	}
	d.relsBySource[""] = opc.NewRelationships(opc.PackageURI)
	return d
}

// --------------------------------------------------------------------------
// Part Store primitives (C2)
// --------------------------------------------------------------------------

// Get returns the part at path, if present.
func (d *Document) Get(p string) (*Part, bool) {
	part, ok := d.parts[opc.CanonicalPartPath(p)]
	return part, ok
}

// Put inserts or replaces the part at its Path, appending to the order if
// new. Sets the modification flag.
func (d *Document) Put(part *Part) {
	part.Path = opc.CanonicalPartPath(part.Path)
	part.Modified = true
	part.origEntry = nil
	if _, exists := d.parts[part.Path]; !exists {
		d.order = append(d.order, part.Path)
	}
	d.parts[part.Path] = part
}

// Remove deletes the part at path. Returns false if it was absent.
func (d *Document) Remove(p string) bool {
	p = opc.CanonicalPartPath(p)
	if _, ok := d.parts[p]; !ok {
		return false
	}
	delete(d.parts, p)
	for i, q := range d.order {
		if q == p {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	delete(d.relsBySource, p)
	return true
}

// Rename moves the part at from to to, preserving its content and modified
// flag becomes true. Fails with C009 if from is absent or to already
// exists.
func (d *Document) Rename(from, to string) error {
	from = opc.CanonicalPartPath(from)
	to = opc.CanonicalPartPath(to)
	part, ok := d.parts[from]
	if !ok {
		return apierr.Newf(apierr.CRelInconsistency, map[string]string{"from": from, "to": to},
			"renamePart: %q does not exist", from)
	}
	if _, exists := d.parts[to]; exists {
		return apierr.Newf(apierr.CRelInconsistency, map[string]string{"from": from, "to": to},
			"renamePart: %q already exists", to)
	}
	delete(d.parts, from)
	part.Path = to
	part.Modified = true
	d.parts[to] = part
	for i, q := range d.order {
		if q == from {
			d.order[i] = to
			break
		}
	}
	if rels, ok := d.relsBySource[from]; ok {
		delete(d.relsBySource, from)
		d.relsBySource[to] = rels
	}
	return nil
}

// List returns parts whose path has prefixFilter as a prefix, in document
// order. An empty filter returns every part.
func (d *Document) List(prefixFilter string) []*Part {
	var out []*Part
	for _, p := range d.order {
		if strings.HasPrefix(p, prefixFilter) {
			out = append(out, d.parts[p])
		}
	}
	return out
}

// XMLParts returns every XML-typed part whose path has scope as a prefix,
// in document order. Used by the Operation Engine's replaceText (§4.4) and
// by the Text Scanner (§4.5).
func (d *Document) XMLParts(scope string) []*Part {
	var out []*Part
	for _, p := range d.List(scope) {
		if p.Type == PartXML {
			out = append(out, p)
		}
	}
	return out
}

// Paths returns every part path in document order.
func (d *Document) Paths() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// Len reports the number of parts.
func (d *Document) Len() int { return len(d.order) }
