package ops

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/partforge/ooxmlsvc/internal/apierr"
	"github.com/partforge/ooxmlsvc/internal/document"
	"github.com/partforge/ooxmlsvc/internal/textscan"
)

// Engine applies an ordered list of Operations against one Document (C4).
// It is a value type — constructed fresh per request, never shared — per
// Design Note 9's "global singletons" redesign: no engine-level state
// outlives a single Run call except the Text Scanner's pattern cache,
// which is itself request-scoped.
type Engine struct {
	scanner *textscan.Scanner
	// opTimeout is the soft per-operation budget (§5): an operation that
	// exceeds it still completes, but is flagged TimedOut in its report
	// entry.
	opTimeout time.Duration
}

// New creates an Engine with the given per-operation soft timeout.
func New(opTimeout time.Duration) *Engine {
	return &Engine{scanner: textscan.New(), opTimeout: opTimeout}
}

// Run applies ops to doc in array order (§5 ordering guarantee),
// short-circuiting on the first Failed operation: the Document is
// discarded by the caller and the partial report plus the error are
// returned together (§4.4 atomic-per-request semantics). ctx cancellation
// is honored at operation boundaries only — a disconnect stops the batch
// after the current operation finishes, never mid-operation (§5).
func (e *Engine) Run(ctx context.Context, doc *document.Document, batch []Operation) (*Report, *apierr.Error) {
	start := time.Now()
	report := &Report{TotalOps: len(batch), Results: make([]OpResult, 0, len(batch))}

	for i, op := range batch {
		if err := ctx.Err(); err != nil {
			break
		}

		opStart := time.Now()
		budgetCtx, cancel := context.WithTimeout(ctx, e.budget())
		result, warnings, appErr := e.dispatch(budgetCtx, doc, op)
		timedOut := budgetCtx.Err() == context.DeadlineExceeded
		cancel()

		elapsed := time.Since(opStart)
		entry := OpResult{
			Index:     i,
			Type:      op.Type,
			ElapsedMs: elapsed.Milliseconds(),
			TimedOut:  timedOut,
			Warnings:  warnings,
		}

		if appErr != nil {
			entry.State = StateFailed
			entry.Error = appErr.WithCorrelation("")
			report.Results = append(report.Results, entry)
			report.ElapsedMs = time.Since(start).Milliseconds()
			return report, appErr
		}

		entry.OK = true
		if result != nil {
			entry.NotFound = result.notFound
			entry.Replacements = result.replacements
			report.Replacements += result.replacements
			if result.added {
				report.PartsAdded++
			}
			if result.removed {
				report.PartsRemoved++
			}
			if result.renamed {
				report.PartsRenamed++
			}
		}
		if len(warnings) > 0 {
			entry.State = StateWarned
			report.Warnings = append(report.Warnings, warnings...)
		} else {
			entry.State = StateSucceeded
		}
		report.Results = append(report.Results, entry)
	}

	report.ElapsedMs = time.Since(start).Milliseconds()
	return report, nil
}

func (e *Engine) budget() time.Duration {
	if e.opTimeout <= 0 {
		return 5 * time.Second
	}
	return e.opTimeout
}

// opOutcome captures the bits of state one dispatched operation can
// contribute to the Report, independent of its Kind.
type opOutcome struct {
	notFound     bool
	replacements int
	added        bool
	removed      bool
	renamed      bool
}

// dispatch is the per-variant handler table described in Design Note 9.
func (e *Engine) dispatch(ctx context.Context, doc *document.Document, op Operation) (*opOutcome, []string, *apierr.Error) {
	switch op.Type {
	case KindReplaceText:
		return e.replaceText(doc, op)
	case KindUpsertPart:
		return e.upsertPart(doc, op)
	case KindRemovePart:
		return e.removePart(doc, op)
	case KindRenamePart:
		return e.renamePart(doc, op)
	default:
		return nil, nil, apierr.Newf(apierr.V043Validation, map[string]string{"type": string(op.Type)},
			"unknown operation type %q", op.Type)
	}
}

func (e *Engine) replaceText(doc *document.Document, op Operation) (*opOutcome, []string, *apierr.Error) {
	if op.Find == op.Replace {
		// Testable Property 5: find == replace is a guaranteed no-op.
		return &opOutcome{}, nil, nil
	}
	result, err := e.scanner.Rewrite(doc, op.Find, op.Replace, op.Scope, op.Regex, op.Flags)
	if err != nil {
		return nil, nil, apierr.As(err)
	}
	return &opOutcome{replacements: result.Total}, nil, nil
}

func (e *Engine) upsertPart(doc *document.Document, op Operation) (*opOutcome, []string, *apierr.Error) {
	hasText := op.Text != ""
	hasData := op.DataB64 != ""
	if hasText == hasData {
		return nil, nil, apierr.New(apierr.CPartContentAmbig,
			"upsertPart requires exactly one of text or dataB64", map[string]string{"path": op.Path})
	}

	var data []byte
	if hasData {
		var err error
		data, err = base64.StdEncoding.DecodeString(op.DataB64)
		if err != nil {
			return nil, nil, apierr.Newf(apierr.CPartContentAmbig, map[string]string{"path": op.Path},
				"invalid base64 in dataB64: %v", err)
		}
	}

	result, err := doc.UpsertPart(op.Path, hasText, op.Text, data, op.ContentType)
	if err != nil {
		return nil, nil, apierr.As(err)
	}
	return &opOutcome{added: result.Created}, nil, nil
}

func (e *Engine) removePart(doc *document.Document, op Operation) (*opOutcome, []string, *apierr.Error) {
	result := doc.RemovePart(op.Path)
	if result.NotFound {
		return &opOutcome{notFound: true}, nil, nil
	}
	return &opOutcome{removed: true}, nil, nil
}

func (e *Engine) renamePart(doc *document.Document, op Operation) (*opOutcome, []string, *apierr.Error) {
	warnings, err := doc.RenamePart(op.From, op.To, op.ContentType)
	if err != nil {
		return nil, nil, apierr.Newf(apierr.CRelInconsistency,
			map[string]string{"from": op.From, "to": op.To}, "renamePart: %v", err)
	}
	return &opOutcome{renamed: true}, warnings, nil
}
