// Package glossary loads project terminology files and narrows them to the
// subset relevant to a given text in two stages: a permissive string match
// over every known key, then an optional LLM classification pass that only
// runs when the candidate list is large enough to be worth an extra call.
package glossary

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// FilterThreshold is the candidate count at or below which the LLM
// refinement stage is skipped entirely.
const FilterThreshold = 30

// Term is one normalized glossary entry. ID is the internal key and may
// carry a numeric suffix when two entries share the same English term; En is
// always the displayed key.
type Term struct {
	ID       string
	En       string
	Ko       string
	Note     string
	Category string
}

// KoWithNote renders the Korean value with its disambiguation note appended
// in parentheses, the form the translation prompt consumes.
func (t Term) KoWithNote() string {
	if t.Note == "" {
		return t.Ko
	}
	return fmt.Sprintf("%s (%s)", t.Ko, t.Note)
}

// Table is a loaded, normalized glossary.
type Table struct {
	Name  string
	Terms []Term
}

// FormatError reports a glossary file that is present but matches neither
// supported schema.
type FormatError struct {
	Path  string
	Cause error
}

func (e *FormatError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("glossary %s: unrecognized format: %v", e.Path, e.Cause)
	}
	return fmt.Sprintf("glossary %s: unrecognized format", e.Path)
}

func (e *FormatError) Unwrap() error { return e.Cause }

// flatFile is the {"terms": {en: ko}} schema.
// categorizedFile is the {"glossary": {category: [{ko, en, note}]}} schema.
type glossaryFile struct {
	Terms    map[string]string            `json:"terms"`
	Glossary map[string][]categorizedTerm `json:"glossary"`
}

type categorizedTerm struct {
	Ko   string `json:"ko"`
	En   string `json:"en"`
	Note string `json:"note"`
}

var reNoteSuffix = regexp.MustCompile(`^(.*?)\s*\(([^)]*)\)\s*$`)

// Load reads and normalizes a glossary file. A missing file is not an error:
// it yields an empty table so translation proceeds without terminology.
func Load(path, name string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Table{Name: name}, nil
		}
		return nil, fmt.Errorf("failed to read glossary: %w", err)
	}
	return Parse(data, path, name)
}

// Parse normalizes raw glossary JSON into a Table. Duplicate English keys
// are kept: the second and later occurrences get a stable "__n" suffix on
// the internal ID, never on the displayed term.
func Parse(data []byte, path, name string) (*Table, error) {
	var file glossaryFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, &FormatError{Path: path, Cause: err}
	}

	table := &Table{Name: name}
	usedIDs := make(map[string]bool)

	switch {
	case file.Terms != nil:
		for _, en := range sortedKeys(file.Terms) {
			raw := strings.TrimSpace(file.Terms[en])
			en = strings.TrimSpace(en)
			if en == "" || raw == "" {
				continue
			}
			ko, note := splitKoAndNote(raw)
			table.Terms = append(table.Terms, Term{
				ID:   uniqueID(en, usedIDs),
				En:   en,
				Ko:   ko,
				Note: note,
			})
		}
	case file.Glossary != nil:
		for _, category := range sortedCategoryKeys(file.Glossary) {
			for _, raw := range file.Glossary[category] {
				en := strings.TrimSpace(raw.En)
				ko := strings.TrimSpace(raw.Ko)
				if en == "" || ko == "" {
					continue
				}
				table.Terms = append(table.Terms, Term{
					ID:       uniqueID(en, usedIDs),
					En:       en,
					Ko:       ko,
					Note:     strings.TrimSpace(raw.Note),
					Category: category,
				})
			}
		}
	default:
		return nil, &FormatError{Path: path}
	}

	return table, nil
}

// splitKoAndNote separates a flat-schema value like "저격수 (플레이어 롤)"
// into the Korean term and its parenthesized note.
func splitKoAndNote(raw string) (ko, note string) {
	if m := reNoteSuffix.FindStringSubmatch(raw); m != nil && strings.TrimSpace(m[1]) != "" {
		return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
	}
	return raw, ""
}

func uniqueID(base string, used map[string]bool) string {
	if !used[base] {
		used[base] = true
		return base
	}
	for suffix := 2; ; suffix++ {
		candidate := fmt.Sprintf("%s__%d", base, suffix)
		if !used[candidate] {
			used[candidate] = true
			return candidate
		}
	}
}

// SelectCandidates returns every term whose English key appears
// word-bounded, or whose Korean value appears as a substring, in the given
// texts. Matching is case-insensitive and NFC-normalized. It is intentionally
// permissive: no stemming is applied, so over-inclusion is preferred to
// missing a term.
func (t *Table) SelectCandidates(texts []string) []Term {
	if len(t.Terms) == 0 {
		return nil
	}

	combined := strings.ToLower(norm.NFC.String(strings.Join(texts, "\n")))

	var candidates []Term
	for _, term := range t.Terms {
		en := strings.ToLower(norm.NFC.String(term.En))
		if en != "" {
			re, err := regexp.Compile(`\b` + regexp.QuoteMeta(en) + `\b`)
			if err == nil && re.MatchString(combined) {
				candidates = append(candidates, term)
				continue
			}
		}
		ko := strings.ToLower(norm.NFC.String(term.Ko))
		if ko != "" && strings.Contains(combined, ko) {
			candidates = append(candidates, term)
		}
	}
	return candidates
}

// Classifier is the LLM-backed second selection stage. Implementations
// return the internal IDs of the candidates actually relevant to the texts.
type Classifier interface {
	SelectGlossaryIDs(ctx context.Context, texts []string, candidates []Term) ([]string, error)
}

// Refine narrows candidates to the terms a classifier judges relevant. The
// stage is skipped when the candidate count is at or below FilterThreshold,
// and any classifier failure (call error, empty or malformed selection)
// falls back to the full candidate set: correctness over optimization. The
// result is always a subset of candidates.
func Refine(ctx context.Context, c Classifier, candidates []Term, texts []string) []Term {
	if len(candidates) <= FilterThreshold || c == nil {
		return candidates
	}

	ids, err := c.SelectGlossaryIDs(ctx, texts, candidates)
	if err != nil || len(ids) == 0 {
		return candidates
	}

	selected := make(map[string]bool, len(ids))
	for _, id := range ids {
		selected[id] = true
	}

	var refined []Term
	for _, term := range candidates {
		if selected[term.ID] {
			refined = append(refined, term)
		}
	}
	if len(refined) == 0 {
		return candidates
	}
	return refined
}

// BuildInstruction serializes the selected terms into the prompt fragment
// appended to the translation system message. The displayed English term is
// always the plain key; internal dedup suffixes never leak into the prompt.
func BuildInstruction(name string, terms []Term) string {
	if len(terms) == 0 {
		return ""
	}

	display := name
	if display == "" {
		display = "Project"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Use this %s glossary for specific terms (bidirectional mapping):\n", display)
	for _, term := range terms {
		fmt.Fprintf(&sb, "- %s <-> %s\n", term.En, term.KoWithNote())
	}
	sb.WriteString(
		"GLOSSARY NOTE RULE:\n" +
			"- In glossary mappings, any text inside parentheses '(...)' is a note for disambiguation.\n" +
			"- Use the note to choose the correct meaning, but DO NOT include it in the translation output.\n")
	return sb.String()
}

// Map iteration order is random; loading must be deterministic so dedup
// suffixes stay stable across invocations.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedCategoryKeys(m map[string][]categorizedTerm) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
