package document

import (
	"path"

	"github.com/partforge/ooxmlsvc/internal/apierr"
	"github.com/partforge/ooxmlsvc/internal/opc"
)

// Decode turns compressed OOXML bytes into a Document (§4.1 decode).
func Decode(zipBytes []byte) (*Document, error) {
	entries, err := opc.DecodeZip(zipBytes)
	if err != nil {
		return nil, err
	}

	d := &Document{
		parts:        make(map[string]*Part),
		relsBySource: make(map[string]*opc.Relationships),
	}

	var ctBlob []byte
	relsBlobBySource := make(map[string][]byte)

	for _, e := range entries {
		if e.Path == "[Content_Types].xml" {
			ctBlob = []byte(e.Text)
			continue
		}
		if src, isRels := relsSourceFor(e.Path); isRels {
			relsBlobBySource[src] = []byte(e.Text)
			continue
		}
		p := &Part{Path: e.Path, origEntry: e}
		if e.IsXML {
			p.Type = PartXML
			p.Text = e.Text
		} else {
			p.Type = PartBin
			p.Data = e.Data
		}
		d.order = append(d.order, p.Path)
		d.parts[p.Path] = p
	}

	ctypes, err := opc.ParseContentTypes(ctBlob)
	if err != nil {
		return nil, err
	}
	d.ctypes = ctypes

	has := make(map[string]bool, len(d.parts)+1)
	for p := range d.parts {
		has[p] = true
	}
	d.Kind = detectKind(has)

	if main, ok := mainPartByKind[d.Kind]; ok && !has[main] {
		return nil, apierr.Newf(apierr.CMissingMainPart, map[string]string{"path": main},
			"missing format main part %q", main)
	}

	// Always resolve the package-root rels set, creating an empty one if
	// the archive had none — a well-formed Document always has one (§3).
	rootBlob, hadRoot := relsBlobBySource[""]
	rootRels, err := opc.ParseRelationships(rootBlob, opc.PackageURI)
	if err != nil {
		return nil, err
	}
	d.relsBySource[""] = rootRels
	if !hadRoot {
		// Missing root rels is tolerated at decode time: the Document gets
		// an empty root set, Validate() does not report it, and Encode
		// omits "_rels/.rels" while the set stays empty.
		_ = hadRoot
	}

	for src, blob := range relsBlobBySource {
		if src == "" {
			continue
		}
		rels, err := opc.ParseRelationships(blob, opc.PackURI("/"+path.Dir(src)))
		if err != nil {
			return nil, err
		}
		d.relsBySource[src] = rels
	}

	return d, nil
}

// relsSourceFor reports whether path is a "*.rels" sidecar, and if so which
// source part (or "" for the package root) it belongs to.
func relsSourceFor(p string) (source string, isRels bool) {
	if p == "_rels/.rels" {
		return "", true
	}
	dir := path.Dir(p)
	base := path.Base(p)
	if path.Base(dir) != "_rels" {
		return "", false
	}
	if len(base) < 6 || base[len(base)-5:] != ".rels" {
		return "", false
	}
	parentDir := path.Dir(dir)
	name := base[:len(base)-5]
	if parentDir == "." {
		return name, true
	}
	return path.Join(parentDir, name), true
}

// Encode serializes the Document back to compressed OOXML bytes (§4.1
// encode), regenerating "[Content_Types].xml" and every "*.rels" part from
// their structured models before handing entries to the archive codec.
func (d *Document) Encode() ([]byte, error) {
	entries := make([]*opc.Entry, 0, len(d.parts)+1+len(d.relsBySource))

	ctBlob, err := d.ctypes.Serialize()
	if err != nil {
		return nil, err
	}
	entries = append(entries, &opc.Entry{Path: "[Content_Types].xml", IsXML: true, Text: string(ctBlob), Modified: true})

	for src, rels := range d.relsBySource {
		if rels.Len() == 0 {
			continue
		}
		relsPath := relsPathFor(src)
		blob, err := rels.Serialize()
		if err != nil {
			return nil, err
		}
		entries = append(entries, &opc.Entry{Path: relsPath, IsXML: true, Text: string(blob), Modified: true})
	}

	for _, p := range d.order {
		part := d.parts[p]
		if part.Type == PartBin && !part.Modified && part.origEntry != nil {
			entries = append(entries, part.origEntry)
			continue
		}
		e := &opc.Entry{Path: part.Path, Modified: true}
		if part.Type == PartXML {
			e.IsXML = true
			e.Text = part.Text
		} else {
			e.Data = part.Data
		}
		entries = append(entries, e)
	}

	return opc.EncodeZip(entries)
}

// relsPathFor returns the "_rels/<name>.rels" path for a rels source
// ("" meaning the package root).
func relsPathFor(source string) string {
	if source == "" {
		return "_rels/.rels"
	}
	dir := path.Dir(source)
	base := path.Base(source)
	if dir == "." {
		return path.Join("_rels", base+".rels")
	}
	return path.Join(dir, "_rels", base+".rels")
}
