package opc

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/partforge/ooxmlsvc/internal/apierr"
)

// TargetMode mirrors the OOXML TargetMode attribute on a relationship.
type TargetMode string

const (
	TargetModeInternal TargetMode = "Internal"
	TargetModeExternal TargetMode = "External"
)

// Relationship is one directed edge in a rels-source's relationship set
// (§3 Relationships Graph entity).
type Relationship struct {
	RID        string
	RelType    string
	TargetRef  string // as written in the .rels file (relative or absolute)
	TargetMode TargetMode
}

// IsExternal reports whether this relationship targets an external
// resource rather than a package part.
func (r *Relationship) IsExternal() bool {
	return r.TargetMode == TargetModeExternal
}

// Relationships holds the ordered relationship set for one rels source
// (a part, or the package pseudo-root), grounded on the teacher's
// opc.Relationships contract (NewRelationships/Add/Load/All/GetByRelType)
// generalized to carry structured TargetMode instead of a bool and to
// support the rId-reuse and removal operations §4.3 requires.
type Relationships struct {
	baseURI PackURI
	order   []string // RIDs in insertion order
	byRID   map[string]*Relationship
}

// NewRelationships creates an empty relationship set rooted at baseURI.
func NewRelationships(baseURI PackURI) *Relationships {
	return &Relationships{
		baseURI: baseURI,
		byRID:   make(map[string]*Relationship),
	}
}

// BaseURI returns the directory relationships in this set are resolved
// against.
func (rs *Relationships) BaseURI() PackURI { return rs.baseURI }

// All returns every relationship in insertion order.
func (rs *Relationships) All() []*Relationship {
	out := make([]*Relationship, 0, len(rs.order))
	for _, rid := range rs.order {
		out = append(out, rs.byRID[rid])
	}
	return out
}

// Len reports how many relationships are in the set.
func (rs *Relationships) Len() int { return len(rs.order) }

// nextRID returns the smallest positive integer N such that "rId{N}" is
// unused, per the tie-break policy in §4.3.
func (rs *Relationships) nextRID() string {
	for n := 1; ; n++ {
		candidate := "rId" + strconv.Itoa(n)
		if _, taken := rs.byRID[candidate]; !taken {
			return candidate
		}
	}
}

// Add creates a new relationship with an auto-allocated rId and returns it.
func (rs *Relationships) Add(relType, targetRef string, external bool) *Relationship {
	rid := rs.nextRID()
	mode := TargetModeInternal
	if external {
		mode = TargetModeExternal
	}
	rel := &Relationship{RID: rid, RelType: relType, TargetRef: targetRef, TargetMode: mode}
	rs.byRID[rid] = rel
	rs.order = append(rs.order, rid)
	return rel
}

// Load inserts a relationship with an explicit rId, used when reconstructing
// a Relationships set from parsed XML (preserves existing IDs exactly, so
// that IDs remain stable across unrelated mutations — §4.3).
func (rs *Relationships) Load(rid, relType, targetRef string, mode TargetMode) {
	rel := &Relationship{RID: rid, RelType: relType, TargetRef: targetRef, TargetMode: mode}
	if _, exists := rs.byRID[rid]; !exists {
		rs.order = append(rs.order, rid)
	}
	rs.byRID[rid] = rel
}

// GetByRID returns the relationship with the given ID, if any.
func (rs *Relationships) GetByRID(rid string) (*Relationship, bool) {
	rel, ok := rs.byRID[rid]
	return rel, ok
}

// GetByRelType returns the first relationship of the given type, if any.
func (rs *Relationships) GetByRelType(relType string) (*Relationship, error) {
	for _, rid := range rs.order {
		if rs.byRID[rid].RelType == relType {
			return rs.byRID[rid], nil
		}
	}
	return nil, apierr.Newf(apierr.CRelInconsistency, map[string]string{"relType": relType},
		"no relationship of type %q", relType)
}

// Remove deletes the relationship with the given rId.
func (rs *Relationships) Remove(rid string) {
	if _, ok := rs.byRID[rid]; !ok {
		return
	}
	delete(rs.byRID, rid)
	for i, r := range rs.order {
		if r == rid {
			rs.order = append(rs.order[:i], rs.order[i+1:]...)
			break
		}
	}
}

// TargetPartPath resolves an internal relationship's TargetRef against this
// set's BaseURI, returning the canonical (no leading slash) part path.
func (r *Relationship) TargetPartPath(baseURI PackURI) string {
	return FromRelRef(baseURI, r.TargetRef).PartPath()
}

// ParseRelationships parses a "*.rels" blob into a Relationships set rooted
// at baseURI. Mirrors teacher's reader.go readSRels/ParseRelationships
// contract, now returning the richer structured type directly instead of
// an intermediate Serialized form, since this engine reads every ZIP entry
// up front rather than discovering parts via graph traversal (§4.1).
func ParseRelationships(blob []byte, baseURI PackURI) (*Relationships, error) {
	rs := NewRelationships(baseURI)
	if len(blob) == 0 {
		return rs, nil
	}
	doc := etree.NewDocument()
	doc.ReadSettings.Permissive = true
	if err := doc.ReadFromBytes(blob); err != nil {
		return nil, apierr.Newf(apierr.CXMLParse, map[string]string{"baseURI": string(baseURI)},
			"parsing relationships: %v", err)
	}
	root := doc.Root()
	if root == nil {
		return rs, nil
	}
	for _, child := range root.ChildElements() {
		if child.Tag != "Relationship" {
			continue
		}
		rid := child.SelectAttrValue("Id", "")
		relType := child.SelectAttrValue("Type", "")
		target := child.SelectAttrValue("Target", "")
		mode := TargetMode(child.SelectAttrValue("TargetMode", string(TargetModeInternal)))
		if rid == "" {
			continue
		}
		rs.Load(rid, relType, target, mode)
	}
	return rs, nil
}

// Serialize writes the Relationships set to canonical "*.rels" bytes,
// relationships ordered by rId numerically for deterministic output.
func (rs *Relationships) Serialize() ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	doc.WriteSettings.CanonicalEndTags = true
	root := doc.CreateElement("Relationships")
	root.CreateAttr("xmlns", "http://schemas.openxmlformats.org/package/2006/relationships")

	rids := append([]string(nil), rs.order...)
	sort.Slice(rids, func(i, j int) bool { return ridNum(rids[i]) < ridNum(rids[j]) })

	for _, rid := range rids {
		rel := rs.byRID[rid]
		el := root.CreateElement("Relationship")
		el.CreateAttr("Id", rel.RID)
		el.CreateAttr("Type", rel.RelType)
		el.CreateAttr("Target", rel.TargetRef)
		if rel.IsExternal() {
			el.CreateAttr("TargetMode", string(TargetModeExternal))
		}
	}

	b, err := doc.WriteToBytes()
	if err != nil {
		return nil, apierr.Newf(apierr.CCompressionFailure, nil, "serializing relationships: %v", err)
	}
	return b, nil
}

func ridNum(rid string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(rid, "rId"))
	if err != nil {
		return 0
	}
	return n
}

// RewriteTarget mutates rel's TargetRef in place, keeping it relative to
// baseURI and pointing at newTarget. Used by onRename cascades (§4.3).
func (r *Relationship) RewriteTarget(baseURI PackURI, newTarget PackURI) {
	r.TargetRef = RelativeRef(baseURI, newTarget)
}

// String is used in warnings/log context formatting.
func (r *Relationship) String() string {
	return fmt.Sprintf("%s(%s->%s)", r.RID, r.RelType, r.TargetRef)
}
