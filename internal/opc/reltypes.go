package opc

import "strings"

// Well-known OOXML relationship types, named like the teacher's RT*
// constants (go-docx/pkg/docx/parts/register.go references opc.RTImage,
// opc.RTStyles, etc., though their definitions weren't retrieved in the
// pack — this table reconstructs and extends them to cover pptx/xlsx).
const (
	RTOfficeDocument     = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	RTCoreProperties     = "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties"
	RTExtendedProperties = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/extended-properties"
	RTCustomProperties   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/custom-properties"
	RTStyles             = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles"
	RTSettings           = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/settings"
	RTNumbering          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/numbering"
	RTFontTable          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/fontTable"
	RTComments           = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/comments"
	RTFootnotes          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/footnotes"
	RTEndnotes           = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/endnotes"
	RTTheme              = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/theme"
	RTWebSettings        = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/webSettings"
	RTHeader             = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/header"
	RTFooter             = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/footer"
	RTImage              = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
	RTSlide              = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide"
	RTSlideLayout        = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout"
	RTSlideMaster        = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster"
	RTWorksheet          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet"
	RTSharedStrings      = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/sharedStrings"
)

var relTypeTable = []dirPatternType{
	{exact("docProps/custom.xml"), RTCustomProperties},
	{exact("docProps/core.xml"), RTCoreProperties},
	{exact("docProps/app.xml"), RTExtendedProperties},
	{exact("word/styles.xml"), RTStyles},
	{exact("word/settings.xml"), RTSettings},
	{exact("word/numbering.xml"), RTNumbering},
	{exact("ppt/presentation.xml"), RTOfficeDocument},
	{exact("word/document.xml"), RTOfficeDocument},
	{exact("xl/workbook.xml"), RTOfficeDocument},
	{prefix("ppt/slides/slide"), RTSlide},
	{prefix("ppt/slideLayouts/slideLayout"), RTSlideLayout},
	{prefix("ppt/slideMasters/slideMaster"), RTSlideMaster},
	{prefix("xl/worksheets/sheet"), RTWorksheet},
	{exact("xl/sharedStrings.xml"), RTSharedStrings},
}

// InferRelType best-effort maps a new part's path to an OOXML relationship
// type, for use when the Operation Engine's upsertPart inserts a brand new
// part and must add a relationship reaching it (§8 scenario S2). Falls
// back to a same-shaped synthetic type derived from the part's own file
// name, the convention OOXML producers use for custom/auxiliary parts with
// no predefined relationship type.
func InferRelType(partPath string) string {
	for _, e := range relTypeTable {
		if e.matches(partPath) {
			return e.ct
		}
	}
	name := partPath
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[:i]
	}
	return "http://schemas.openxmlformats.org/officeDocument/2006/relationships/" + name
}
