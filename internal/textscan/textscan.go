// Package textscan implements the Text Scanner (C5): scoped literal/regex
// text search-replace over a Document's XML parts. It is deliberately
// abstracted out of the Operation Engine (§4.5: "so it can be reused by
// future ops") and never parses XML — callers carrying XML-sensitive
// patterns are responsible for them.
package textscan

import (
	"regexp"
	"strings"
	"sync"

	"github.com/partforge/ooxmlsvc/internal/apierr"
	"github.com/partforge/ooxmlsvc/internal/document"
)

// Scanner compiles patterns lazily and caches them for the lifetime of a
// single request, per §4.5.
type Scanner struct {
	mu    sync.Mutex
	cache map[string]*regexp.Regexp
}

// New creates an empty Scanner.
func New() *Scanner {
	return &Scanner{cache: make(map[string]*regexp.Regexp)}
}

// compile returns a cached *regexp.Regexp for find, compiling it with the
// given flags on first use. literal patterns are compiled via
// regexp.QuoteMeta so the rewrite machinery is uniform regardless of mode.
func (s *Scanner) compile(find string, isRegex bool, flags string) (*regexp.Regexp, error) {
	key := find + "\x00" + flags + "\x00"
	if isRegex {
		key += "r"
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if re, ok := s.cache[key]; ok {
		return re, nil
	}

	pattern := find
	if !isRegex {
		pattern = regexp.QuoteMeta(find)
	}
	if strings.Contains(flags, "i") {
		pattern = "(?i)" + pattern
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, apierr.Newf(apierr.V042RegexCompile, map[string]string{"find": find}, "compiling pattern: %v", err)
	}
	s.cache[key] = re
	return re, nil
}

// Result is the outcome of a scoped rewrite: replacement counts keyed by
// part path, plus the total.
type Result struct {
	Total      int
	ByPart     map[string]int
	PartsTouched []string // in scan order, only parts with > 0 replacements
}

// Rewrite applies find->replace across every XML part in doc whose path
// has scope as a prefix, mutating matching parts in place and returning a
// replacement count (§4.4 replaceText, §4.5 rewrite primitive).
//
// "g" in flags (the default) replaces every match per part; without it,
// only the first match per part is replaced. "i" makes the pattern
// case-insensitive.
func (s *Scanner) Rewrite(doc *document.Document, find, replace, scope string, isRegex bool, flags string) (*Result, error) {
	if flags == "" {
		flags = "g"
	}
	re, err := s.compile(find, isRegex, flags)
	if err != nil {
		return nil, err
	}
	if isRegex {
		if err := checkCaptureGroups(re, replace); err != nil {
			return nil, err
		}
	}

	global := strings.Contains(flags, "g")
	goReplace := toGoReplaceTemplate(replace, isRegex)

	result := &Result{ByPart: make(map[string]int)}
	for _, part := range doc.XMLParts(scope) {
		n := 0
		var out string
		if global {
			out = re.ReplaceAllStringFunc(part.Text, func(m string) string {
				n++
				return re.ReplaceAllString(m, goReplace)
			})
		} else {
			loc := re.FindStringIndex(part.Text)
			if loc == nil {
				out = part.Text
			} else {
				n = 1
				matched := re.ReplaceAllString(part.Text[loc[0]:loc[1]], goReplace)
				out = part.Text[:loc[0]] + matched + part.Text[loc[1]:]
			}
		}
		if n == 0 {
			continue
		}
		if out != part.Text {
			part.Text = out
			part.Modified = true
			result.PartsTouched = append(result.PartsTouched, part.Path)
		}
		result.ByPart[part.Path] = n
		result.Total += n
	}
	return result, nil
}

// Scan reports match counts per XML part without mutating the document,
// exposed for future read-only ops (§4.5 scan primitive).
func (s *Scanner) Scan(doc *document.Document, find, scope string, isRegex bool, flags string) (*Result, error) {
	re, err := s.compile(find, isRegex, flags)
	if err != nil {
		return nil, err
	}
	result := &Result{ByPart: make(map[string]int)}
	for _, part := range doc.XMLParts(scope) {
		n := len(re.FindAllStringIndex(part.Text, -1))
		if n == 0 {
			continue
		}
		result.ByPart[part.Path] = n
		result.Total += n
		result.PartsTouched = append(result.PartsTouched, part.Path)
	}
	return result, nil
}

// toGoReplaceTemplate converts a replacement string using $1-style or
// literal backreferences into Go's regexp ReplaceAll template syntax. For
// literal (non-regex) find patterns the replacement is used verbatim, with
// '$' escaped so it is never interpreted as a backreference.
func toGoReplaceTemplate(replace string, isRegex bool) string {
	if !isRegex {
		return strings.ReplaceAll(replace, "$", "$$")
	}
	return replace
}

// checkCaptureGroups returns V041 if replace references a capture group
// number higher than re has (§4.4).
func checkCaptureGroups(re *regexp.Regexp, replace string) error {
	max := re.NumSubexp()
	groupRefs := regexp.MustCompile(`\$(\d+)`)
	for _, m := range groupRefs.FindAllStringSubmatch(replace, -1) {
		n := 0
		for _, c := range m[1] {
			n = n*10 + int(c-'0')
		}
		if n > max {
			return apierr.Newf(apierr.V041BadReplace, map[string]string{"replace": replace},
				"replacement references capture group $%d but pattern has only %d group(s)", n, max)
		}
	}
	return nil
}
