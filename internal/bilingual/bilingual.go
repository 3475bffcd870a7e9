// Package bilingual assembles the field values written back to Jira:
// original text with the translation interleaved below it. Translations are
// wrapped in a fixed color span so a later run can recognize an already
// processed field and leave it alone.
package bilingual

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/Hyunsang-coder/jira-translator/internal/langdetect"
	"github.com/Hyunsang-coder/jira-translator/internal/markup"
	"github.com/Hyunsang-coder/jira-translator/internal/section"
)

const (
	colorOpen  = "{color:#4c9aff}"
	colorClose = "{color}"

	summaryMaxLen    = 255
	summarySeparator = " / "
)

var (
	reBulletPrefix  = regexp.MustCompile(`^(\s*(?:[-*#]+|\d+\.)\s+)(.*)`)
	reStripBullet   = regexp.MustCompile(`^\s*(?:[-*#]+|\d+[.)])\s*`)
	reLeadingSpace  = regexp.MustCompile(`^\s*`)
	reCodeTag       = regexp.MustCompile(`\{code(?::[^}]*)?\}`)
	reBracketPrefix = regexp.MustCompile(`^(\s*(?:\[[^\]]*\]\s*)+)(.*)`)

	// A color pair whose payload is empty or a lone table separator does not
	// count as a translation.
	reEmptyColorPair = regexp.MustCompile(`^\s*\|?\s*\{color\}`)
)

// FormatSummary joins the original and translated summary on one line.
// Jira caps the field at 255 characters; the original is kept whole and
// only the translated half is truncated to fit.
func FormatSummary(original, translated string) string {
	original = normalizeLine(original)
	translated = normalizeLine(translated)

	if original == "" {
		return truncate(translated, summaryMaxLen)
	}
	if translated == "" {
		return original
	}

	remaining := summaryMaxLen - len([]rune(original)) - len(summarySeparator)
	if remaining <= 0 {
		return original
	}
	translated = truncate(translated, remaining)
	if translated == "" {
		return original
	}
	return original + summarySeparator + translated
}

// FormatSteps stacks the translated steps below the original as two blocks.
func FormatSteps(original, translated string) string {
	original = strings.TrimSpace(original)
	translated = strings.TrimSpace(translated)
	if original != "" && translated != "" {
		return original + "\n\n" + translated
	}
	if original != "" {
		return original
	}
	return translated
}

// SplitBracketPrefix separates a summary's leading bracket blocks, e.g.
// "[Test] [System Menu] editor crash" -> ("[Test] [System Menu] ",
// "editor crash"). Consecutive blocks all belong to the prefix.
func SplitBracketPrefix(text string) (prefix, rest string) {
	if text == "" {
		return "", ""
	}
	if m := reBracketPrefix.FindStringSubmatch(text); m != nil {
		return m[1], m[2]
	}
	return "", text
}

// FormatBlock interleaves a translation into the original text: runs of
// plain lines are emitted verbatim and followed by a blank line plus their
// color-wrapped translations, while media lines, section headers, code
// blocks, and table rows stay in place. header, when non-empty, is emitted
// as the first line.
func FormatBlock(original, translated, header string) string {
	original = strings.Trim(original, "\n")
	translated = strings.TrimSpace(translated)

	var lines []string
	if header != "" {
		lines = append(lines, header)
	}

	if original == "" {
		if translated != "" {
			lines = append(lines, colorOpen+translated+colorClose)
		}
		return strings.TrimSpace(strings.Join(lines, "\n"))
	}

	translations := translatableLines(translated)
	idx := 0
	next := func() string {
		if idx < len(translations) {
			line := translations[idx]
			idx++
			return line
		}
		return ""
	}

	var buffer []string
	flush := func() {
		if len(buffer) == 0 {
			return
		}
		lines = append(lines, buffer...)

		var block []string
		for _, origLine := range buffer {
			if strings.TrimSpace(origLine) == "" {
				continue
			}
			translation := strings.TrimSpace(next())
			if translation == "" {
				continue
			}
			if formatted := formatTranslatedLine(origLine, translation); formatted != "" {
				block = append(block, formatted)
			}
		}
		if len(block) > 0 {
			lines = append(lines, "")
			lines = append(lines, block...)
		}
		buffer = nil
	}

	inCode := false
	for _, line := range strings.Split(original, "\n") {
		stripped := strings.TrimSpace(line)

		var isCode bool
		isCode, inCode = codeLineState(line, inCode)
		if isCode || inCode {
			flush()
			lines = append(lines, line)
			continue
		}

		if strings.HasPrefix(stripped, "|") && strings.HasSuffix(stripped, "|") {
			flush()
			// Jira needs a blank line before a table to render it.
			lines = append(lines, "", formatTableRow(line, next()))
			continue
		}

		if markup.IsMediaLine(stripped) {
			flush()
			lines = append(lines, line)
			continue
		}

		if section.IsHeaderLine(stripped) {
			flush()
			lines = append(lines, line)
			continue
		}

		buffer = append(buffer, line)
	}
	flush()

	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// IsAlreadyTranslated reports whether the value carries a translation color
// span with an actual payload. A span that is empty or holds only a table
// separator does not count.
func IsAlreadyTranslated(value string) bool {
	rest := value
	for {
		i := strings.Index(rest, colorOpen)
		if i < 0 {
			return false
		}
		rest = rest[i+len(colorOpen):]
		if rest == "" || rest[0] == '\n' {
			continue
		}
		if !reEmptyColorPair.MatchString(rest) {
			return true
		}
	}
}

// IsBilingualSummary reports whether the summary core (bracket prefix
// excluded) is already an "original / translated" pair in two different
// languages.
func IsBilingualSummary(summary string) bool {
	_, core := SplitBracketPrefix(summary)
	left, right, ok := strings.Cut(core, summarySeparator)
	if !ok {
		return false
	}
	leftLang := langdetect.Detect(left)
	rightLang := langdetect.Detect(right)
	if leftLang == langdetect.Unknown || rightLang == langdetect.Unknown {
		return false
	}
	return leftLang != rightLang
}

// IsStepsBilingual reports whether the steps field already holds an
// original block and a translated block in two different languages.
func IsStepsBilingual(value string) bool {
	var parts []string
	for _, p := range strings.Split(value, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) < 2 {
		return false
	}
	first := langdetect.Detect(parts[0])
	second := langdetect.Detect(parts[1])
	if first == langdetect.Unknown || second == langdetect.Unknown {
		return false
	}
	return first != second
}

// formatTranslatedLine wraps one translated line in the color span while
// mirroring the original line's bullet or numbering prefix and indentation.
// Lines whose original already carries a color span are never re-wrapped.
func formatTranslatedLine(originalLine, translation string) string {
	translation = strings.TrimSpace(translation)
	if translation == "" {
		return ""
	}

	hasColor := strings.Contains(originalLine, "{color:") || strings.Contains(originalLine, colorClose)

	if m := reBulletPrefix.FindStringSubmatch(originalLine); m != nil {
		prefix := m[1]
		cleaned := strings.TrimSpace(reStripBullet.ReplaceAllString(translation, ""))
		if hasColor {
			return prefix + cleaned
		}
		return prefix + colorOpen + cleaned + colorClose
	}

	indent := reLeadingSpace.FindString(originalLine)
	if hasColor {
		return indent + translation
	}
	return indent + colorOpen + translation + colorClose
}

// translatableLines extracts the lines of the model reply that map onto
// translatable original lines: code blocks, blanks, media, and header lines
// are dropped so positional matching stays aligned.
func translatableLines(translated string) []string {
	var out []string
	inCode := false
	for _, line := range strings.Split(translated, "\n") {
		var isCode bool
		isCode, inCode = codeLineState(line, inCode)
		if isCode || inCode {
			continue
		}
		stripped := strings.TrimSpace(line)
		if stripped == "" {
			continue
		}
		if markup.IsMediaLine(stripped) || section.IsHeaderLine(stripped) {
			continue
		}
		out = append(out, line)
	}
	return out
}

// codeLineState reports whether the line belongs to a code block and the
// updated in-block state. An odd number of {code} or {noformat} tags on a
// line toggles the state.
func codeLineState(line string, inBlock bool) (isCode, nowInBlock bool) {
	if line == "" {
		return false, inBlock
	}
	stripped := strings.TrimSpace(line)

	if n := strings.Count(stripped, "{noformat}"); n > 0 {
		if n%2 == 1 {
			return true, !inBlock
		}
		return true, inBlock
	}
	if tags := reCodeTag.FindAllString(stripped, -1); len(tags) > 0 {
		if len(tags)%2 == 1 {
			return true, !inBlock
		}
		return true, inBlock
	}
	return inBlock, inBlock
}

func formatTableRow(line, translated string) string {
	if strings.HasPrefix(strings.TrimSpace(line), "||") {
		return mergeTableCells(line, translated, "||", true)
	}
	return mergeTableCells(line, translated, "|", false)
}

// mergeTableCells rewrites each cell as "original/translation", pairing
// cells positionally with the translated row. Header cells keep their bold
// markers; media cells and unmatched cells pass through unchanged.
func mergeTableCells(line, translated, sep string, headerRow bool) string {
	origCells := strings.Split(line, sep)
	var transCells []string
	if translated != "" {
		transCells = strings.Split(translated, sep)
	}

	cells := make([]string, 0, len(origCells))
	for i, cell := range origCells {
		if i == 0 || i == len(origCells)-1 {
			cells = append(cells, cell)
			continue
		}

		content := strings.TrimSpace(cell)
		if headerRow {
			content = strings.TrimSpace(strings.Trim(content, "*"))
		}
		if content == "" || (!headerRow && markup.IsMediaLine(content)) {
			cells = append(cells, cell)
			continue
		}

		if i >= len(transCells) {
			cells = append(cells, cell)
			continue
		}
		translation := strings.TrimSpace(transCells[i])
		if headerRow {
			translation = strings.TrimSpace(strings.Trim(translation, "*"))
		}
		if translation == "" || (!headerRow && markup.IsMediaLine(translation)) {
			cells = append(cells, cell)
			continue
		}

		if headerRow {
			cells = append(cells, "*"+content+"/"+translation+"*")
		} else {
			cells = append(cells, content+"/"+translation)
		}
	}
	return strings.Join(cells, sep)
}

func normalizeLine(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
}

// truncate shortens s to limit runes, replacing the tail with an ellipsis.
func truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	if limit == 1 {
		return string(runes[:1])
	}
	cut := strings.TrimRightFunc(string(runes[:limit-1]), unicode.IsSpace)
	return cut + "…"
}
