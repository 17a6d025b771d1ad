package document

import (
	"encoding/base64"

	"github.com/partforge/ooxmlsvc/internal/apierr"
)

// Manifest is the wire representation of a Document (§6.2).
type Manifest struct {
	Kind    string          `json:"kind"`
	Entries []ManifestEntry `json:"entries"`
}

// ManifestEntry is one manifest array element.
type ManifestEntry struct {
	Path        string `json:"path"`
	Type        string `json:"type"`
	Text        string `json:"text,omitempty"`
	DataB64     string `json:"dataB64,omitempty"`
	ContentType string `json:"contentType,omitempty"`
}

// ToManifest converts the Document to its wire form, preserving part order.
func (d *Document) ToManifest() *Manifest {
	m := &Manifest{Kind: string(d.Kind), Entries: make([]ManifestEntry, 0, len(d.order))}
	for _, p := range d.order {
		part := d.parts[p]
		entry := ManifestEntry{Path: part.Path, Type: string(part.Type)}
		if ct, ok := d.ctypes.OverrideFor(part.Path); ok {
			entry.ContentType = ct
		}
		switch part.Type {
		case PartXML:
			entry.Text = part.Text
		case PartBin:
			entry.DataB64 = base64.StdEncoding.EncodeToString(part.Data)
		}
		m.Entries = append(m.Entries, entry)
	}
	return m
}

// FromManifest reconstructs a Document from its wire form (§6.2 round trip
// — "Entry order is preserved on round-trip").
func FromManifest(m *Manifest) (*Document, error) {
	d := New(Kind(m.Kind))
	for _, entry := range m.Entries {
		part, err := partFromEntry(entry)
		if err != nil {
			return nil, err
		}
		d.order = append(d.order, part.Path)
		d.parts[part.Path] = part
		if entry.ContentType != "" {
			if err := d.ctypes.RegisterPart(part.Path, entry.ContentType); err != nil {
				return nil, err
			}
		}
	}
	return d, nil
}

func partFromEntry(entry ManifestEntry) (*Part, error) {
	p := &Part{Path: entry.Path, ContentType: entry.ContentType}
	switch PartType(entry.Type) {
	case PartXML:
		if entry.DataB64 != "" {
			return nil, apierr.New(apierr.CPartContentAmbig,
				"manifest entry of type xml must not carry dataB64", map[string]string{"path": entry.Path})
		}
		p.Type = PartXML
		p.Text = entry.Text
	case PartBin:
		if entry.Text != "" {
			return nil, apierr.New(apierr.CPartContentAmbig,
				"manifest entry of type bin must not carry text", map[string]string{"path": entry.Path})
		}
		data, err := base64.StdEncoding.DecodeString(entry.DataB64)
		if err != nil {
			return nil, apierr.Newf(apierr.CPartContentAmbig, map[string]string{"path": entry.Path},
				"invalid base64 in dataB64: %v", err)
		}
		p.Type = PartBin
		p.Data = data
	default:
		return nil, apierr.Newf(apierr.CPartContentAmbig, map[string]string{"path": entry.Path},
			"unknown part type %q", entry.Type)
	}
	return p, nil
}
