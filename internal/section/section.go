// Package section segments a long-form ticket description into
// header-delimited sections so each can be translated and reassembled in
// place. Header matching tolerates the decoration ticket authors actually
// use: color spans, bold markers, trailing colons, bilingual labels
// ("Expected/기대 결과:") and parenthesized qualifiers.
package section

import (
	"regexp"
	"strings"
)

// headerVocabulary is the fixed set of recognized section labels.
var headerVocabulary = []string{
	"Observed",
	"Expected",
	"Expected Result",
	"Note",
	"Notes",
	"Video",
	"Etc.",
}

// skipTranslationLabels name sections carried through untranslated. Matched
// case-insensitively against the English part of a bracket label.
var skipTranslationLabels = []string{
	"QA Environment",
}

// Section is one header-delimited span of a description field. Header is ""
// for leading content that precedes any recognized header.
type Section struct {
	Header  string
	Content string
}

// NeedsTranslation reports whether the section content should be sent to the
// translator. Sections labelled with a skip keyword (e.g. a QA environment
// table) keep their original text.
func (s Section) NeedsTranslation() bool {
	return !ShouldSkipTranslation(s.Header)
}

var (
	reColorSpan    = regexp.MustCompile(`\{color:[^}]+\}|\{color\}`)
	reBracketLabel = regexp.MustCompile(`^\*\[[^\]]+\]\*\s*$`)
	reBracketInner = regexp.MustCompile(`^\*\[([^\]]+)\]\*`)
	reLabelDivider = regexp.MustCompile(`[([]`)
)

// MatchHeader reports whether line is a section header. It returns the
// original header text (decoration intact, color spans removed) so the
// assembled output can reproduce the author's label verbatim.
func MatchHeader(line string) (string, bool) {
	stripped := strings.TrimSpace(reColorSpan.ReplaceAllString(line, ""))
	if stripped == "" {
		return "", false
	}

	// Bold bracket labels like *[QA 환경 / QA Environment]* are headers in
	// their own right.
	if reBracketLabel.MatchString(stripped) {
		return stripped, true
	}

	// Strip the trailing colon and emphasis characters for matching only.
	candidate := strings.Trim(strings.TrimRight(stripped, ":"), "*_ ")
	lowered := strings.ToLower(candidate)

	// Bilingual labels keep only the part before the slash; parenthesized or
	// bracketed qualifiers are cut off too.
	if i := strings.Index(lowered, "/"); i >= 0 {
		lowered = strings.TrimSpace(lowered[:i])
	}
	if loc := reLabelDivider.FindStringIndex(lowered); loc != nil {
		lowered = strings.TrimSpace(lowered[:loc[0]])
	}

	for _, header := range headerVocabulary {
		normalized := strings.ToLower(header)
		if lowered == normalized || strings.HasPrefix(lowered, normalized+" ") {
			return stripped, true
		}
	}
	return "", false
}

// IsHeaderLine reports whether line resolves to a recognized section header.
func IsHeaderLine(line string) bool {
	_, ok := MatchHeader(line)
	return ok
}

// ShouldSkipTranslation reports whether a header names a section that must
// not be translated. Bracket labels are compared on the English part after
// the slash.
func ShouldSkipTranslation(header string) bool {
	if header == "" {
		return false
	}

	m := reBracketInner.FindStringSubmatch(strings.TrimSpace(header))
	if m == nil {
		return false
	}

	label := m[1]
	english := label
	if i := strings.Index(label, "/"); i >= 0 {
		english = label[i+1:]
	}
	english = strings.ToLower(strings.TrimSpace(english))

	for _, keyword := range skipTranslationLabels {
		if strings.Contains(english, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}

// Split segments text into ordered sections. Non-header lines accumulate
// under the current (possibly empty) header; a new header flushes the
// buffer. Sections whose content trims to nothing are dropped. Line breaks
// inside content are preserved exactly; only leading and trailing blank
// lines are trimmed.
func Split(text string) []Section {
	if text == "" {
		return nil
	}

	var (
		sections      []Section
		currentHeader string
		buffer        []string
	)

	flush := func() {
		if len(buffer) == 0 {
			return
		}
		content := strings.Trim(strings.Join(buffer, "\n"), "\n")
		buffer = buffer[:0]
		if content != "" {
			sections = append(sections, Section{Header: currentHeader, Content: content})
		}
	}

	for _, line := range strings.Split(text, "\n") {
		if header, ok := MatchHeader(line); ok {
			flush()
			currentHeader = header
			continue
		}
		buffer = append(buffer, line)
	}
	flush()

	return sections
}
