package opc

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/beevik/etree"

	"github.com/partforge/ooxmlsvc/internal/apierr"
)

// Well-known OOXML content types, named the way the teacher's vendored opc
// layer names its CT* constants (part.go / parts/register.go), extended
// here to cover pptx and xlsx main parts in addition to docx.
const (
	CTRelationships    = "application/vnd.openxmlformats-package.relationships+xml"
	CTXML              = "application/xml"

	CTWmlDocumentMain = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
	CTPmlPresentation = "application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"
	CTSmlWorkbook     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml"

	CTPmlSlide       = "application/vnd.openxmlformats-officedocument.presentationml.slide+xml"
	CTPmlSlideLayout = "application/vnd.openxmlformats-officedocument.presentationml.slideLayout+xml"
	CTPmlSlideMaster = "application/vnd.openxmlformats-officedocument.presentationml.slideMaster+xml"
	CTPmlNotesSlide  = "application/vnd.openxmlformats-officedocument.presentationml.notesSlide+xml"
	CTPmlNotesMaster = "application/vnd.openxmlformats-officedocument.presentationml.notesMaster+xml"
	CTSmlWorksheet   = "application/vnd.openxmlformats-officedocument.spreadsheetml.worksheet+xml"
	CTSmlSharedStr   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sharedStrings+xml"
	CTSmlStyles      = "application/vnd.openxmlformats-officedocument.spreadsheetml.styles+xml"

	CTCoreProperties = "application/vnd.openxmlformats-package.core-properties+xml"
	CTAppProperties  = "application/vnd.openxmlformats-officedocument.extended-properties+xml"
	CTTheme          = "application/vnd.openxmlformats-officedocument.theme+xml"
)

// defaultExtensionTypes are the `<Default/>` extension→content-type entries
// common to all three formats. Parts whose extension falls outside this
// table must carry an explicit Override (§3 Content Types invariant).
var defaultExtensionTypes = map[string]string{
	"rels": CTRelationships,
	"xml":  CTXML,
	"png":  "image/png",
	"jpeg": "image/jpeg",
	"jpg":  "image/jpeg",
	"gif":  "image/gif",
	"bmp":  "image/bmp",
	"tiff": "image/tiff",
	"emf":  "image/x-emf",
	"wmf":  "image/x-wmf",
}

// dirPatternType is one entry in the canonical-directory inference table
// used by registerPart when no explicit content type is supplied (§4.3).
type dirPatternType struct {
	matches func(p string) bool
	ct      string
}

var dirPatternTable = []dirPatternType{
	{exact("ppt/presentation.xml"), CTPmlPresentation},
	{prefix("ppt/slides/slide") , CTPmlSlide},
	{prefix("ppt/slideLayouts/slideLayout"), CTPmlSlideLayout},
	{prefix("ppt/slideMasters/slideMaster"), CTPmlSlideMaster},
	{prefix("ppt/notesSlides/notesSlide"), CTPmlNotesSlide},
	{prefix("ppt/notesMasters/notesMaster"), CTPmlNotesMaster},
	{exact("word/document.xml"), CTWmlDocumentMain},
	{exact("xl/workbook.xml"), CTSmlWorkbook},
	{prefix("xl/worksheets/sheet"), CTSmlWorksheet},
	{exact("xl/sharedStrings.xml"), CTSmlSharedStr},
	{exact("xl/styles.xml"), CTSmlStyles},
	{exact("docProps/core.xml"), CTCoreProperties},
	{exact("docProps/app.xml"), CTAppProperties},
	{prefix("ppt/theme/theme"), CTTheme},
	{prefix("word/theme/theme"), CTTheme},
}

func exact(p string) func(string) bool  { return func(s string) bool { return s == p } }
func prefix(p string) func(string) bool { return func(s string) bool { return strings.HasPrefix(s, p) } }

// inferContentType looks up the canonical-directory table for a part path.
func inferContentType(partPath string) (string, bool) {
	for _, e := range dirPatternTable {
		if e.matches(partPath) {
			return e.ct, true
		}
	}
	return "", false
}

// ContentTypeMap is a structured, mutable model of "[Content_Types].xml":
// a table of default extension→MIME mappings plus explicit part→MIME
// overrides. Built with beevik/etree, the same library the teacher uses for
// every XML part — per Design Note 9, this is one of the two parts ("these
// two well-typed parts") that get a real structured model instead of
// string splicing.
type ContentTypeMap struct {
	defaults  map[string]string // extension (no dot) -> content type
	overrides map[string]string // canonical part path -> content type
}

// NewContentTypeMap creates a map seeded with the standard defaults.
func NewContentTypeMap() *ContentTypeMap {
	m := &ContentTypeMap{
		defaults:  make(map[string]string, len(defaultExtensionTypes)),
		overrides: make(map[string]string),
	}
	for ext, ct := range defaultExtensionTypes {
		m.defaults[ext] = ct
	}
	return m
}

// ParseContentTypes parses "[Content_Types].xml" bytes into a ContentTypeMap.
func ParseContentTypes(blob []byte) (*ContentTypeMap, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.Permissive = true
	if err := doc.ReadFromBytes(blob); err != nil {
		return nil, apierr.Newf(apierr.CXMLParse, nil, "parsing [Content_Types].xml: %v", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, apierr.New(apierr.CXMLParse, "[Content_Types].xml has no root element", nil)
	}

	m := &ContentTypeMap{
		defaults:  make(map[string]string),
		overrides: make(map[string]string),
	}
	for _, child := range root.ChildElements() {
		switch child.Tag {
		case "Default":
			ext := child.SelectAttrValue("Extension", "")
			ct := child.SelectAttrValue("ContentType", "")
			if ext != "" {
				m.defaults[strings.ToLower(ext)] = ct
			}
		case "Override":
			pn := child.SelectAttrValue("PartName", "")
			ct := child.SelectAttrValue("ContentType", "")
			if pn != "" {
				m.overrides[CanonicalPartPath(pn)] = ct
			}
		}
	}
	return m, nil
}

// Serialize writes the ContentTypeMap back to canonical
// "[Content_Types].xml" bytes: defaults sorted by extension, then overrides
// sorted by part path, for deterministic output (§4.1).
func (m *ContentTypeMap) Serialize() ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	doc.WriteSettings.CanonicalEndTags = true
	root := doc.CreateElement("Types")
	root.CreateAttr("xmlns", "http://schemas.openxmlformats.org/package/2006/content-types")

	for _, ext := range sortedStringKeys(m.defaults) {
		el := root.CreateElement("Default")
		el.CreateAttr("Extension", ext)
		el.CreateAttr("ContentType", m.defaults[ext])
	}
	for _, pn := range sortedStringKeys(m.overrides) {
		el := root.CreateElement("Override")
		el.CreateAttr("PartName", "/"+pn)
		el.CreateAttr("ContentType", m.overrides[pn])
	}

	b, err := doc.WriteToBytes()
	if err != nil {
		return nil, apierr.Newf(apierr.CCompressionFailure, nil, "serializing [Content_Types].xml: %v", err)
	}
	return b, nil
}

func sortedStringKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ContentType resolves the content type for partPath: an explicit Override
// wins, otherwise the Default for its extension. Returns C008 if neither
// covers it.
func (m *ContentTypeMap) ContentType(partPath string) (string, error) {
	partPath = CanonicalPartPath(partPath)
	if ct, ok := m.overrides[partPath]; ok {
		return ct, nil
	}
	ext := strings.TrimPrefix(path.Ext(partPath), ".")
	if ct, ok := m.defaults[strings.ToLower(ext)]; ok {
		return ct, nil
	}
	return "", apierr.Newf(apierr.CContentTypeMismatch, map[string]string{"path": partPath},
		"no content type registered for %q", partPath)
}

// HasDefaultFor reports whether partPath's extension is covered by a
// Default entry (no Override needed).
func (m *ContentTypeMap) HasDefaultFor(partPath string) bool {
	ext := strings.TrimPrefix(path.Ext(partPath), ".")
	_, ok := m.defaults[strings.ToLower(ext)]
	return ok
}

// RegisterPart ensures partPath is covered by the content-types table,
// per the registerPart contract in §4.3. If contentType is empty, it is
// inferred from the canonical-directory table; C008 if neither an explicit
// type nor an inference-table entry exists and no default covers the
// extension either.
func (m *ContentTypeMap) RegisterPart(partPath, contentType string) error {
	partPath = CanonicalPartPath(partPath)
	if m.HasDefaultFor(partPath) && contentType == "" {
		return nil
	}
	if contentType == "" {
		inferred, ok := inferContentType(partPath)
		if !ok {
			return apierr.Newf(apierr.CContentTypeMismatch, map[string]string{"path": partPath},
				"cannot infer content type for %q: no explicit type given and no directory-pattern match", partPath)
		}
		contentType = inferred
	}
	m.overrides[partPath] = contentType
	return nil
}

// UnregisterPart removes any Override for partPath. Defaults are never
// touched, per §4.3.
func (m *ContentTypeMap) UnregisterPart(partPath string) {
	delete(m.overrides, CanonicalPartPath(partPath))
}

// OverrideFor returns the explicit override content type for partPath, if
// any.
func (m *ContentTypeMap) OverrideFor(partPath string) (string, bool) {
	ct, ok := m.overrides[CanonicalPartPath(partPath)]
	return ct, ok
}

// ValidateAgainst checks every Override references an existing part path
// (from the supplied set) and returns a slice of human-readable warnings for
// violations, per the validate() contract in §4.3 (warn, never abort).
func (m *ContentTypeMap) ValidateAgainst(existing map[string]bool) []string {
	var warnings []string
	for _, pn := range sortedStringKeys(m.overrides) {
		if !existing[pn] {
			warnings = append(warnings, fmt.Sprintf("content-types override references missing part %q", pn))
		}
	}
	for p := range existing {
		if m.HasDefaultFor(p) {
			continue
		}
		if _, ok := m.overrides[p]; !ok {
			warnings = append(warnings, fmt.Sprintf("part %q has no default or override content type", p))
		}
	}
	return warnings
}
