// Package opc implements the low-level OOXML package primitives: PackURI
// resolution, the Content-Types table, the Relationships graph, and the
// ZIP archive codec that moves bytes between a compressed OOXML container
// and an ordered list of parts.
//
// It generalizes the teacher's vendored `go-docx/pkg/docx/opc` package
// (PackURI/Part/Relationships/PackageReader, all beevik/etree-backed) from a
// single Word-document shape to the format-agnostic pptx/docx/xlsx/generic
// engine this spec describes.
package opc

import (
	"archive/zip"
	"bytes"
	"io"
	"path"
	"sort"
	"strings"
	"time"

	securejoin "github.com/cyphar/filepath-securejoin"

	"github.com/partforge/ooxmlsvc/internal/apierr"
)

// fixedModTime is the timestamp every ZIP entry is written with, so that
// identical logical content produces byte-identical archives modulo
// nothing at all (§4.1, §6.4).
var fixedModTime = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)

// Entry is one decoded archive member: either UTF-8 XML text or an opaque
// binary blob, plus enough bookkeeping to re-emit unmodified binary entries
// with their original compressed bytes (§4.1 encode invariant).
type Entry struct {
	Path     string // canonical, no leading slash
	IsXML    bool
	Text     string // populated when IsXML
	Data     []byte // populated when !IsXML
	Modified bool

	// raw, when non-nil, is the original *zip.File this entry was read
	// from. EncodeZip re-emits its compressed bytes verbatim when the
	// entry is unmodified, avoiding a fresh DEFLATE pass.
	raw *zip.File
}

// DecodeZip reads every member of a ZIP archive into an ordered slice of
// Entry, classifying each by the XML/rels predicate (§4.1). It validates
// every entry name with filepath-securejoin so a maliciously crafted
// archive cannot escape the package root via "../" traversal.
func DecodeZip(data []byte) ([]*Entry, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, apierr.Newf(apierr.CBadZip, nil, "reading ZIP: %v", err)
	}

	entries := make([]*Entry, 0, len(zr.File))
	for _, f := range zr.File {
		p := CanonicalPartPath(f.Name)
		if p == "" {
			continue // directory entries and the empty root
		}
		if p == ".." || strings.HasPrefix(p, "../") || strings.HasSuffix(p, "/..") || strings.Contains(p, "/../") {
			return nil, apierr.Newf(apierr.CZipCorrupt, map[string]string{"path": p},
				"unsafe archive entry path %q: escapes the package root", p)
		}
		if _, err := securejoin.SecureJoin(".", p); err != nil {
			return nil, apierr.Newf(apierr.CZipCorrupt, map[string]string{"path": p},
				"unsafe archive entry path %q: %v", p, err)
		}

		rc, err := f.Open()
		if err != nil {
			return nil, apierr.Newf(apierr.CZipCorrupt, map[string]string{"path": p}, "opening entry %q: %v", p, err)
		}
		raw, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, apierr.Newf(apierr.CZipCorrupt, map[string]string{"path": p}, "reading entry %q: %v", p, err)
		}

		entry := &Entry{Path: p, raw: f}
		if IsXMLPredicate(p) {
			entry.IsXML = true
			entry.Text = string(raw)
		} else {
			entry.Data = raw
		}
		entries = append(entries, entry)
	}

	if err := validateCoreEntries(entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// validateCoreEntries requires "[Content_Types].xml" (C008 when absent). A
// missing "_rels/.rels" is not rejected here. The format main part is
// validated one layer up (internal/document), once Kind has been determined.
func validateCoreEntries(entries []*Entry) error {
	has := make(map[string]bool, len(entries))
	for _, e := range entries {
		has[e.Path] = true
	}
	if !has["[Content_Types].xml"] {
		return apierr.New(apierr.CContentTypeMismatch, "missing [Content_Types].xml", nil)
	}
	return nil
}

// EncodeZip writes entries back out as a ZIP archive (§4.1 encode).
// Entries are emitted in a deterministic order: Content Types first, then
// rels parts, then remaining parts lexicographically by path, so that
// identical logical content produces byte-identical archives. Unmodified
// binary entries are re-emitted via zip.Writer.Copy from their original
// compressed bytes; everything else is freshly deflated.
func EncodeZip(entries []*Entry) ([]byte, error) {
	ordered := orderForEncode(entries)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, e := range ordered {
		if err := writeEntry(zw, e); err != nil {
			zw.Close()
			return nil, err
		}
	}

	if err := zw.Close(); err != nil {
		return nil, apierr.Newf(apierr.CCompressionFailure, nil, "closing archive: %v", err)
	}
	return buf.Bytes(), nil
}

func writeEntry(zw *zip.Writer, e *Entry) error {
	if !e.IsXML && e.raw != nil && !e.Modified {
		return zw.Copy(e.raw)
	}

	fh := &zip.FileHeader{
		Name:     e.Path,
		Method:   zip.Deflate,
		Modified: fixedModTime,
	}
	fh.SetModTime(fixedModTime)
	for _, c := range e.Path {
		if c > 127 {
			fh.Flags |= 0x800 // Unicode general-purpose flag bit (§6.4)
			break
		}
	}

	w, err := zw.CreateHeader(fh)
	if err != nil {
		return apierr.Newf(apierr.CCompressionFailure, map[string]string{"path": e.Path}, "writing entry %q: %v", e.Path, err)
	}
	payload := e.Data
	if e.IsXML {
		payload = []byte(e.Text)
	}
	if _, err := w.Write(payload); err != nil {
		return apierr.Newf(apierr.CCompressionFailure, map[string]string{"path": e.Path}, "compressing entry %q: %v", e.Path, err)
	}
	return nil
}

// orderForEncode sorts entries per the §4.1 deterministic ordering:
// "[Content_Types].xml" first, then every "*.rels" part, then everything
// else lexicographically.
func orderForEncode(entries []*Entry) []*Entry {
	out := make([]*Entry, len(entries))
	copy(out, entries)
	rank := func(p string) int {
		switch {
		case p == "[Content_Types].xml":
			return 0
		case path.Ext(p) == ".rels":
			return 1
		default:
			return 2
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := rank(out[i].Path), rank(out[j].Path)
		if ri != rj {
			return ri < rj
		}
		if ri == 2 {
			return out[i].Path < out[j].Path
		}
		return out[i].Path < out[j].Path
	})
	return out
}
