// Package ops implements the Operation Engine (C4): a tagged list of edit
// operations applied sequentially against one Document, producing a
// per-batch Report.
//
// Per Design Note 9 ("Dynamic dispatch on operation kind... Reimplement as
// a tagged variant with a per-variant handler table"), Operation is a
// discriminated union decoded from its wire "type" field rather than the
// teacher's string-typed object literals, and unknown tags fail
// deterministically with V043.
package ops

import (
	"encoding/json"

	"github.com/partforge/ooxmlsvc/internal/apierr"
)

// Kind names a wire operation type (§6.3).
type Kind string

const (
	KindReplaceText Kind = "replaceText"
	KindUpsertPart  Kind = "upsertPart"
	KindRemovePart  Kind = "removePart"
	KindRenamePart  Kind = "renamePart"
)

// Operation is one declarative edit record (§3 Operation entity),
// discriminated by Type. UnmarshalJSON below validates only Type; fields
// that do not belong to Type are decoded as given and ignored by the Engine.
type Operation struct {
	Type Kind `json:"type"`

	// replaceText
	Find    string `json:"find,omitempty"`
	Replace string `json:"replace,omitempty"`
	Scope   string `json:"scope,omitempty"`
	Regex   bool   `json:"regex,omitempty"`
	Flags   string `json:"flags,omitempty"`

	// upsertPart
	Path        string `json:"path,omitempty"`
	Text        string `json:"text,omitempty"`
	DataB64     string `json:"dataB64,omitempty"`
	ContentType string `json:"contentType,omitempty"`

	// removePart (Path above) / renamePart
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

// UnmarshalJSON validates the discriminant up front so an unknown or
// missing "type" fails deterministically with V043 at decode time, rather
// than surfacing as a confusing per-op failure later in the batch.
func (o *Operation) UnmarshalJSON(data []byte) error {
	type raw Operation
	var r raw
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	switch Kind(r.Type) {
	case KindReplaceText, KindUpsertPart, KindRemovePart, KindRenamePart:
		*o = Operation(r)
		return nil
	default:
		return apierr.Newf(apierr.V043Validation, map[string]string{"type": string(r.Type)},
			"unknown operation type %q", r.Type)
	}
}

// State is an operation's position in the §4.4 state machine:
// Queued -> Running -> (Succeeded|Warned|Failed).
type State string

const (
	StateQueued    State = "queued"
	StateRunning   State = "running"
	StateSucceeded State = "succeeded"
	StateWarned    State = "warned"
	StateFailed    State = "failed"
)

// OpResult is one per-operation report entry.
type OpResult struct {
	Index        int      `json:"index"`
	Type         Kind     `json:"type"`
	State        State    `json:"state"`
	OK           bool     `json:"ok"`
	NotFound     bool     `json:"notFound,omitempty"`
	Replacements int      `json:"replacements,omitempty"`
	Warnings     []string `json:"warnings,omitempty"`
	Error        *apierr.Error `json:"error,omitempty"`
	TimedOut     bool     `json:"timedOut,omitempty"`
	ElapsedMs    int64    `json:"elapsedMs"`
}

// Report is the result of processing a batch (§3 Report entity).
type Report struct {
	TotalOps      int        `json:"totalOps"`
	Results       []OpResult `json:"results"`
	Replacements  int        `json:"replacements"`
	PartsAdded    int        `json:"partsAdded"`
	PartsRemoved  int        `json:"partsRemoved"`
	PartsRenamed  int        `json:"partsRenamed"`
	Warnings      []string   `json:"warnings,omitempty"`
	ElapsedMs     int64      `json:"elapsedMs"`
}
