package document

import "testing"

func TestNewHasRootRelsSet(t *testing.T) {
	d := New(KindDOCX)
	if d.Len() != 0 {
		t.Errorf("Len() = %d, want 0", d.Len())
	}
	if d.rootRels() == nil {
		t.Fatal("New() should seed an empty root Relationships set")
	}
}

func TestPutGetRemove(t *testing.T) {
	d := New(KindDOCX)
	d.Put(&Part{Path: "word/document.xml", Type: PartXML, Text: "<document/>"})

	part, ok := d.Get("word/document.xml")
	if !ok || part.Text != "<document/>" {
		t.Fatalf("Get = %v, %v", part, ok)
	}
	if !part.Modified {
		t.Error("Put should mark the part Modified")
	}

	if !d.Remove("word/document.xml") {
		t.Error("Remove should report success")
	}
	if d.Remove("word/document.xml") {
		t.Error("second Remove of the same path should report false")
	}
}

func TestPutPreservesOrderOnReplace(t *testing.T) {
	d := New(KindDOCX)
	d.Put(&Part{Path: "a.xml", Type: PartXML, Text: "1"})
	d.Put(&Part{Path: "b.xml", Type: PartXML, Text: "2"})
	d.Put(&Part{Path: "a.xml", Type: PartXML, Text: "3"})

	paths := d.Paths()
	if len(paths) != 2 || paths[0] != "a.xml" || paths[1] != "b.xml" {
		t.Errorf("Paths() = %v, want [a.xml b.xml]", paths)
	}
	part, _ := d.Get("a.xml")
	if part.Text != "3" {
		t.Errorf("replaced part Text = %q, want 3", part.Text)
	}
}

func TestRename(t *testing.T) {
	d := New(KindDOCX)
	d.Put(&Part{Path: "a.xml", Type: PartXML, Text: "1"})

	if err := d.Rename("a.xml", "b.xml"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if _, ok := d.Get("a.xml"); ok {
		t.Error("a.xml should no longer exist")
	}
	part, ok := d.Get("b.xml")
	if !ok || part.Text != "1" {
		t.Errorf("Get(b.xml) = %v, %v", part, ok)
	}
}

func TestRenameMissingSource(t *testing.T) {
	d := New(KindDOCX)
	if err := d.Rename("missing.xml", "b.xml"); err == nil {
		t.Fatal("expected error renaming a missing part")
	}
}

func TestRenameCollision(t *testing.T) {
	d := New(KindDOCX)
	d.Put(&Part{Path: "a.xml", Type: PartXML, Text: "1"})
	d.Put(&Part{Path: "b.xml", Type: PartXML, Text: "2"})
	if err := d.Rename("a.xml", "b.xml"); err == nil {
		t.Fatal("expected error renaming onto an existing part")
	}
}

func TestListAndXMLParts(t *testing.T) {
	d := New(KindPPTX)
	d.Put(&Part{Path: "ppt/slides/slide1.xml", Type: PartXML, Text: "<slide/>"})
	d.Put(&Part{Path: "ppt/media/image1.png", Type: PartBin, Data: []byte{1, 2}})
	d.Put(&Part{Path: "ppt/slides/slide2.xml", Type: PartXML, Text: "<slide/>"})

	slides := d.List("ppt/slides/")
	if len(slides) != 2 {
		t.Errorf("List(ppt/slides/) = %d entries, want 2", len(slides))
	}

	xmlOnly := d.XMLParts("ppt/")
	if len(xmlOnly) != 2 {
		t.Errorf("XMLParts(ppt/) = %d entries, want 2 (image excluded)", len(xmlOnly))
	}
}
