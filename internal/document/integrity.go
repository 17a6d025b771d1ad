package document

import (
	"fmt"
	"path"

	"github.com/partforge/ooxmlsvc/internal/opc"
)

// This file is the Content-Types & Rels Maintainer (C3): the hard
// invariant enforcer described in §4.3, generalized from the teacher's
// ad-hoc classify() relationship walk (internal/packaging/document.go) into
// explicit register/unregister/onRename/onRemove/validate operations that
// the Operation Engine (C4) calls after every mutating op.

// RegisterPart ensures "[Content_Types].xml" covers path, inferring the
// content type from the canonical-directory table when contentType is
// empty (§4.3 registerPart).
func (d *Document) RegisterPart(path, contentType string) error {
	return d.ctypes.RegisterPart(path, contentType)
}

// UnregisterPart removes any Override for path. Defaults are untouched
// (§4.3 unregisterPart).
func (d *Document) UnregisterPart(path string) {
	d.ctypes.UnregisterPart(path)
}

// rootRels returns the package-level relationship set.
func (d *Document) rootRels() *opc.Relationships {
	return d.relsBySource[""]
}

// relsFor returns (creating if absent) the relationship set sourced from
// the given part path.
func (d *Document) relsFor(source string) *opc.Relationships {
	if rels, ok := d.relsBySource[source]; ok {
		return rels
	}
	base := opc.PackageURI
	if source != "" {
		base = opc.PackURI("/" + path.Dir(source))
	}
	rels := opc.NewRelationships(base)
	d.relsBySource[source] = rels
	return rels
}

// OnRename performs unregisterPart(from)+registerPart(to, preservedType),
// then rewrites every Relationship (package-level and part-level) whose
// internal target resolves to from, so it instead resolves to to (§4.3
// onRename).
func (d *Document) OnRename(from, to string) []string {
	preserved, hadOverride := d.ctypes.OverrideFor(from)
	d.UnregisterPart(from)
	if hadOverride {
		_ = d.RegisterPart(to, preserved)
	} else if !d.ctypes.HasDefaultFor(to) {
		_ = d.RegisterPart(to, "")
	}

	var warnings []string
	for _, rels := range d.relsBySource {
		baseURI := rels.BaseURI()
		for _, rel := range rels.All() {
			if rel.IsExternal() {
				continue
			}
			if rel.TargetPartPath(baseURI) != from {
				continue
			}
			rel.RewriteTarget(baseURI, opc.FromPartPath(to))
		}
	}

	// The rename's own rels sidecar, if any, moves with it — handled by
	// Document.Rename via relsBySource key migration. If the renamed part
	// itself is a rels source with internal relative references, their
	// resolution base directory is unchanged as long as source and target
	// live in the same directory; cross-directory renames that would
	// invalidate a part's own relative rels targets produce a warning
	// rather than silently corrupting them.
	if rels, ok := d.relsBySource[to]; ok {
		fromDir := dirOf(from)
		toDir := dirOf(to)
		if fromDir != toDir && rels.Len() > 0 {
			warnings = append(warnings, fmt.Sprintf(
				"renamePart %q -> %q changed directory; %d relative relationship target(s) were not renormalized",
				from, to, rels.Len()))
		}
	}
	return warnings
}

// OnRemove unregisters path's content-types override and removes every
// relationship whose target resolves to path from its parent rels set
// (§4.3 onRemove).
func (d *Document) OnRemove(path string) {
	d.UnregisterPart(path)
	for _, rels := range d.relsBySource {
		baseURI := rels.BaseURI()
		for _, rel := range rels.All() {
			if rel.IsExternal() {
				continue
			}
			if rel.TargetPartPath(baseURI) == path {
				rels.Remove(rel.RID)
			}
		}
	}
}

// AddRelationship creates a relationship from source (a part path, or ""
// for the package root) to target, returning the allocated rId. Used by
// upsertPart when inserting a brand-new part (§8 scenario S2 expects a new
// root-rels entry for a newly upserted docProps/custom.xml-style part).
func (d *Document) AddRelationship(source, relType, target string) string {
	rels := d.relsFor(source)
	ref := opc.RelativeRef(rels.BaseURI(), opc.FromPartPath(target))
	return rels.Add(relType, ref, false).RID
}

// Validate checks every Content-Types invariant and every internal
// Relationship target, returning human-readable warnings. Per §4.3 and the
// Open Question resolution in DESIGN.md, violations are warnings, never
// errors — a successful process response always has validate() report no
// errors (Testable Property 4), only warnings.
func (d *Document) Validate() []string {
	existing := make(map[string]bool, len(d.parts))
	for p := range d.parts {
		existing[p] = true
	}
	warnings := d.ctypes.ValidateAgainst(existing)

	for source, rels := range d.relsBySource {
		baseURI := rels.BaseURI()
		for _, rel := range rels.All() {
			if rel.IsExternal() {
				continue
			}
			target := rel.TargetPartPath(baseURI)
			if !existing[target] {
				warnings = append(warnings, fmt.Sprintf(
					"relationship %s in %q targets missing part %q", rel.RID, relsSourceLabel(source), target))
			}
		}
	}

	if _, ok := d.parts[mainPartByKind[d.Kind]]; d.Kind != KindGeneric && !ok {
		warnings = append(warnings, fmt.Sprintf("missing format main part %q", mainPartByKind[d.Kind]))
	}

	return warnings
}

func relsSourceLabel(source string) string {
	if source == "" {
		return "<package>"
	}
	return source
}

func dirOf(p string) string {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] == '/' {
			return p[:i]
		}
	}
	return ""
}
