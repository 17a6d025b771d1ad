package opc

import (
	"path"
	"path/filepath"
	"strings"
)

// PackURI is an absolute, forward-slash package part name such as
// "/ppt/slides/slide1.xml" or the package pseudo-root "/".
//
// Mirrors the PackURI contract exercised by the teacher's opc.Part /
// opc.Relationships layer (package.go, reader.go): relationship targets are
// resolved relative to a base URI and normalized back to an absolute,
// leading-slash form.
type PackURI string

// PackageURI is the pseudo part name used as the source of package-level
// relationships (the root of the OPC graph).
const PackageURI PackURI = "/"

// CanonicalPartPath strips any leading slash and normalizes separators,
// producing the form used as a Part.Path and as a ZIP entry name (§3: "path
// is unique within a Document... no leading slash").
func CanonicalPartPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.TrimPrefix(p, "/")
	return p
}

// FromPartPath builds a PackURI (leading-slash form) from a canonical part
// path.
func FromPartPath(p string) PackURI {
	return PackURI("/" + CanonicalPartPath(p))
}

// PartPath returns the canonical (no leading slash) form of the PackURI,
// suitable for use as a Document.Part path or ZIP entry name.
func (u PackURI) PartPath() string {
	return CanonicalPartPath(string(u))
}

// BaseURI returns the directory containing this part, as a PackURI, used
// as the resolution base for relationships sourced from this part (and for
// locating its "_rels/<name>.rels" sidecar).
func (u PackURI) BaseURI() PackURI {
	dir := path.Dir(string(u))
	if dir == "." {
		dir = "/"
	}
	return PackURI(dir)
}

// RelsPartName returns the PackURI of the relationships part for this
// source part: "_rels/<basename>.rels" alongside the source, or "_rels/.rels"
// for the package pseudo-root.
func (u PackURI) RelsPartName() PackURI {
	if u == PackageURI {
		return "/_rels/.rels"
	}
	dir := string(u.BaseURI())
	base := path.Base(string(u))
	return PackURI(path.Join(dir, "_rels", base+".rels"))
}

// FromRelRef resolves a relationship's TargetRef (which may be relative,
// using ".." segments, or already absolute) against baseURI, returning the
// normalized absolute PackURI. Standard OOXML semantics: relative to the
// directory of the rels source's parent part, "..' allowed (§4.3).
func FromRelRef(baseURI PackURI, targetRef string) PackURI {
	if strings.HasPrefix(targetRef, "/") {
		return PackURI(path.Clean(targetRef))
	}
	joined := path.Join(string(baseURI), targetRef)
	return PackURI(path.Clean(joined))
}

// RelativeRef computes the TargetRef that should be written into a rels
// XML file so that FromRelRef(baseURI, ref) round-trips back to target.
// Mirrors OOXML convention of writing relationship targets relative to the
// rels source's base directory rather than as absolute part names.
func RelativeRef(baseURI PackURI, target PackURI) string {
	rel, err := filepath.Rel(string(baseURI), string(target))
	if err != nil {
		return string(target)
	}
	return rel
}

// IsXMLPredicate reports whether a canonical part path should be decoded as
// UTF-8 XML text rather than kept as opaque binary (§4.1): extension .xml
// or .rels, or the exact literal name "[Content_Types].xml".
func IsXMLPredicate(partPath string) bool {
	if partPath == "[Content_Types].xml" {
		return true
	}
	ext := path.Ext(partPath)
	return ext == ".xml" || ext == ".rels"
}
