package opc

import (
	"strings"
	"testing"
)

func TestAddAllocatesSequentialRIDs(t *testing.T) {
	rs := NewRelationships("/word")
	r1 := rs.Add(RTStyles, "styles.xml", false)
	r2 := rs.Add(RTImage, "../media/image1.png", false)

	if r1.RID != "rId1" || r2.RID != "rId2" {
		t.Errorf("RIDs = %s, %s, want rId1, rId2", r1.RID, r2.RID)
	}
	if rs.Len() != 2 {
		t.Errorf("Len() = %d, want 2", rs.Len())
	}
}

func TestNextRIDFillsGaps(t *testing.T) {
	rs := NewRelationships("/word")
	rs.Load("rId1", RTStyles, "styles.xml", TargetModeInternal)
	rs.Load("rId3", RTSettings, "settings.xml", TargetModeInternal)

	added := rs.Add(RTNumbering, "numbering.xml", false)
	if added.RID != "rId2" {
		t.Errorf("Add() RID = %s, want rId2 (fills the gap)", added.RID)
	}
}

func TestGetByRIDAndRelType(t *testing.T) {
	rs := NewRelationships("/word")
	rs.Add(RTStyles, "styles.xml", false)

	rel, ok := rs.GetByRID("rId1")
	if !ok || rel.RelType != RTStyles {
		t.Errorf("GetByRID = %v, %v", rel, ok)
	}

	rel2, err := rs.GetByRelType(RTStyles)
	if err != nil || rel2.RID != "rId1" {
		t.Errorf("GetByRelType = %v, %v", rel2, err)
	}

	if _, err := rs.GetByRelType(RTNumbering); err == nil {
		t.Error("expected error for missing relType")
	}
}

func TestRemove(t *testing.T) {
	rs := NewRelationships("/word")
	rs.Add(RTStyles, "styles.xml", false)
	rs.Add(RTSettings, "settings.xml", false)

	rs.Remove("rId1")
	if rs.Len() != 1 {
		t.Errorf("Len() after Remove = %d, want 1", rs.Len())
	}
	if _, ok := rs.GetByRID("rId1"); ok {
		t.Error("rId1 should be gone")
	}
}

func TestTargetPartPath(t *testing.T) {
	rs := NewRelationships("/word")
	rel := rs.Add(RTImage, "../media/image1.png", false)
	if got := rel.TargetPartPath(rs.BaseURI()); got != "media/image1.png" {
		t.Errorf("TargetPartPath = %q", got)
	}
}

func TestRewriteTarget(t *testing.T) {
	rs := NewRelationships("/word")
	rel := rs.Add(RTImage, "../media/image1.png", false)
	rel.RewriteTarget(rs.BaseURI(), "/media/image2.png")
	if rel.TargetRef != "../media/image2.png" {
		t.Errorf("RewriteTarget -> TargetRef = %q", rel.TargetRef)
	}
}

func TestParseAndSerializeRoundTrip(t *testing.T) {
	rs := NewRelationships("/word")
	rs.Add(RTStyles, "styles.xml", false)
	rs.Add(RTHeader, "http://example.com/ext", true)

	blob, err := rs.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if !strings.Contains(string(blob), `TargetMode="External"`) {
		t.Errorf("expected TargetMode=External in serialized output: %s", blob)
	}

	parsed, err := ParseRelationships(blob, "/word")
	if err != nil {
		t.Fatalf("ParseRelationships: %v", err)
	}
	if parsed.Len() != 2 {
		t.Errorf("parsed.Len() = %d, want 2", parsed.Len())
	}
	rel, ok := parsed.GetByRID("rId2")
	if !ok || !rel.IsExternal() {
		t.Errorf("rId2 should round-trip as external: %v %v", rel, ok)
	}
}

func TestParseRelationshipsEmptyBlob(t *testing.T) {
	rs, err := ParseRelationships(nil, "/word")
	if err != nil {
		t.Fatalf("ParseRelationships(nil): %v", err)
	}
	if rs.Len() != 0 {
		t.Errorf("Len() = %d, want 0", rs.Len())
	}
}

func TestInferRelTypeKnownAndFallback(t *testing.T) {
	if got := InferRelType("word/styles.xml"); got != RTStyles {
		t.Errorf("InferRelType(styles) = %q", got)
	}
	got := InferRelType("customXml/item1.xml")
	if !strings.HasSuffix(got, "/item1") {
		t.Errorf("InferRelType fallback = %q, want suffix /item1", got)
	}
}
