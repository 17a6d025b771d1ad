package document

import (
	"archive/zip"
	"bytes"
	"testing"
)

func buildMinimalDocx(t *testing.T) []byte {
	t.Helper()
	files := map[string]string{
		"[Content_Types].xml": `<?xml version="1.0"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
</Types>`,
		"_rels/.rels": `<?xml version="1.0"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`,
		"word/document.xml": `<?xml version="1.0"?><w:document xmlns:w="ns"><w:body>hello world</w:body></w:document>`,
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zw.Create(%q): %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("write %q: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zw.Close: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeDetectsKind(t *testing.T) {
	d, err := Decode(buildMinimalDocx(t))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if d.Kind != KindDOCX {
		t.Errorf("Kind = %q, want %q", d.Kind, KindDOCX)
	}
	part, ok := d.Get("word/document.xml")
	if !ok {
		t.Fatal("missing word/document.xml")
	}
	if part.Type != PartXML {
		t.Errorf("Type = %q, want xml", part.Type)
	}
}

func TestDecodeMissingMainPart(t *testing.T) {
	// A package holding only [Content_Types].xml has no format main part at
	// all, so it is reported generic, not an error, per detectKind falling
	// back to KindGeneric when no main part matches.
	files := map[string]string{
		"[Content_Types].xml": `<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`,
	}
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, _ := zw.Create(name)
		w.Write([]byte(content))
	}
	zw.Close()

	d, err := Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if d.Kind != KindGeneric {
		t.Errorf("Kind = %q, want generic", d.Kind)
	}
}

func TestDecodeEncodeRoundTrip(t *testing.T) {
	original := buildMinimalDocx(t)
	d, err := Decode(original)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	reencoded, err := d.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	d2, err := Decode(reencoded)
	if err != nil {
		t.Fatalf("Decode(reencoded): %v", err)
	}
	if d2.Kind != KindDOCX {
		t.Errorf("round-tripped Kind = %q, want docx", d2.Kind)
	}
	part, ok := d2.Get("word/document.xml")
	if !ok || part.Text == "" {
		t.Fatal("round-tripped document missing body text")
	}
}

func TestRelsPathFor(t *testing.T) {
	cases := map[string]string{
		"":                  "_rels/.rels",
		"word/document.xml": "word/_rels/document.xml.rels",
		"document.xml":      "_rels/document.xml.rels",
	}
	for in, want := range cases {
		if got := relsPathFor(in); got != want {
			t.Errorf("relsPathFor(%q) = %q, want %q", in, got, want)
		}
	}
}
