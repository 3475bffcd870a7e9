// Package langdetect classifies free ticket text as Korean or English.
//
// It is a rule-based heuristic, not a statistical model: Korean grammatical
// structure (particles, sentence-final endings) is the strongest signal and
// wins even when the text is full of English proper nouns. The decision rules
// form an ordered table; the order is part of the contract and covered by
// tests.
package langdetect

import (
	"regexp"
	"strings"
)

// Lang is the detected language of a piece of text.
type Lang string

const (
	Korean  Lang = "ko"
	English Lang = "en"
	Unknown Lang = "unknown"
)

var (
	reImage      = regexp.MustCompile(`![^!]+!`)
	reAttachment = regexp.MustCompile(`\[\^[^\]]+\]`)
	reEmphasis   = regexp.MustCompile(`__.*?__`)
	reColorSpan  = regexp.MustCompile(`\{color:[^}]+\}|\{color\}`)
	reInlineCode = regexp.MustCompile("`[^`]+`")
	reNonLetter  = regexp.MustCompile(`[^A-Za-z\x{AC00}-\x{D7A3}]`)

	reHangul = regexp.MustCompile(`[\x{AC00}-\x{D7A3}]`)
	reLatin  = regexp.MustCompile(`[A-Za-z]`)
)

// particlePatterns match Korean case/topic particles and postpositions,
// including the common case of an English proper noun followed by a Korean
// particle ("Tab을", "Records에서").
var particlePatterns = []*regexp.Regexp{
	regexp.MustCompile(`[\x{AC00}-\x{D7A3}][이가](?:\s|$|[^\x{AC00}-\x{D7A3}])`),
	regexp.MustCompile(`[\x{AC00}-\x{D7A3}][을를](?:\s|$|[^\x{AC00}-\x{D7A3}])`),
	regexp.MustCompile(`[\x{AC00}-\x{D7A3}][은는](?:\s|$|[^\x{AC00}-\x{D7A3}])`),
	regexp.MustCompile(`[\x{AC00}-\x{D7A3}]에서(?:\s|$)`),
	regexp.MustCompile(`[\x{AC00}-\x{D7A3}]에(?:\s|$)`),
	regexp.MustCompile(`[\x{AC00}-\x{D7A3}]으?로(?:\s|$)`),
	regexp.MustCompile(`[\x{AC00}-\x{D7A3}][와과](?:\s|$)`),
	regexp.MustCompile(`[\x{AC00}-\x{D7A3}]의(?:\s|$)`),
	regexp.MustCompile(`[A-Za-z]에서(?:\s|$)`),
	regexp.MustCompile(`[A-Za-z]으?로(?:\s|$)`),
	regexp.MustCompile(`[A-Za-z][을를](?:\s|$)`),
	regexp.MustCompile(`[A-Za-z][이가](?:\s|$)`),
	regexp.MustCompile(`[A-Za-z][은는](?:\s|$)`),
	regexp.MustCompile(`[A-Za-z]와(?:\s|$)`),
}

// endingPatterns match sentence-final Korean verb endings anywhere in the
// text (multiline). Each pattern contributes at most one point.
var endingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?m)입니다[.!?\s]?$`),
	regexp.MustCompile(`(?m)습니다[.!?\s]?$`),
	regexp.MustCompile(`(?m)됩니다[.!?\s]?$`),
	regexp.MustCompile(`(?m)있습니다[.!?\s]?$`),
	regexp.MustCompile(`(?m)없습니다[.!?\s]?$`),
	regexp.MustCompile(`(?m)했습니다[.!?\s]?$`),
	regexp.MustCompile(`(?m)합니다[.!?\s]?$`),
	regexp.MustCompile(`(?m)집니다[.!?\s]?$`),
	regexp.MustCompile(`(?m)입니까[.!?\s]?$`),
	regexp.MustCompile(`(?m)습니까[.!?\s]?$`),
	regexp.MustCompile(`(?m)세요[.!?\s]?$`),
	regexp.MustCompile(`(?m)해요[.!?\s]?$`),
	regexp.MustCompile(`(?m)돼요[.!?\s]?$`),
	regexp.MustCompile(`(?m)[다음임함됨없음있음][.!?\s]?$`),
	regexp.MustCompile(`현상입니다`),
	regexp.MustCompile(`현상임`),
	regexp.MustCompile(`발생함`),
	regexp.MustCompile(`확인됨`),
	regexp.MustCompile(`느립니다`),
	regexp.MustCompile(`빠릅니다`),
	regexp.MustCompile(`많습니다`),
	regexp.MustCompile(`적습니다`),
	regexp.MustCompile(`않습니다`),
	regexp.MustCompile(`못합니다`),
}

// englishPatterns match common English function-word sequences against the
// lower-cased text. Bare vocabulary hits are not enough; these require the
// structural context (article + noun, auxiliary + verb, ...) so that Korean
// text peppered with English proper nouns does not score.
var englishPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(the|a|an)\s+\w+`),
	regexp.MustCompile(`\b(is|are|was|were|be)\s+`),
	regexp.MustCompile(`\b(have|has|had)\s+(been|to)`),
	regexp.MustCompile(`\b(to|for|from|with|by|at|in|on)\s+\w+`),
	regexp.MustCompile(`\b(when|where|what|who|why|how)\s+`),
	regexp.MustCompile(`\b(if|then|else|because|although)\s+`),
	regexp.MustCompile(`\bshould\s+(be|not|have)`),
	regexp.MustCompile(`\bcan\s+(be|not|have)`),
	regexp.MustCompile(`\bwill\s+(be|not|have)`),
}

// stats holds the counts the decision rules are evaluated against.
type stats struct {
	koreanChars          int
	latinChars           int
	koreanStructureScore int
	englishSentenceCount int
}

// rule is one entry of the ordered decision table. The first rule whose
// predicate holds decides the language.
type rule struct {
	name string
	when func(s stats) bool
	lang Lang
}

// decisionRules is evaluated top to bottom; the order is load-bearing.
var decisionRules = []rule{
	{"korean-structure", func(s stats) bool { return s.koreanStructureScore >= 1 }, Korean},
	{"hangul-no-english-structure", func(s stats) bool { return s.koreanChars >= 1 && s.englishSentenceCount == 0 }, Korean},
	{"hangul-majority", func(s stats) bool { return s.koreanChars > s.latinChars }, Korean},
	{"english-structure-no-hangul", func(s stats) bool { return s.englishSentenceCount >= 1 && s.koreanChars == 0 }, English},
	{"latin-only", func(s stats) bool { return s.koreanChars == 0 && s.latinChars > 0 }, English},
	{"any-hangul", func(s stats) bool { return s.koreanChars > 0 }, Korean},
}

// Detect classifies text as Korean, English, or Unknown. It is pure and
// never fails; garbage input degrades to Unknown.
func Detect(text string) Lang {
	if strings.TrimSpace(text) == "" {
		return Unknown
	}

	sanitized := Sanitize(text)
	if sanitized == "" {
		return Unknown
	}

	s := stats{
		koreanChars: len(reHangul.FindAllString(sanitized, -1)),
		latinChars:  len(reLatin.FindAllString(sanitized, -1)),
	}

	// Structure scores run against the original text: markup removal can
	// destroy particle boundaries.
	for _, re := range particlePatterns {
		s.koreanStructureScore += len(re.FindAllString(text, -1))
	}
	for _, re := range endingPatterns {
		if re.MatchString(text) {
			s.koreanStructureScore++
		}
	}

	lowered := strings.ToLower(text)
	for _, re := range englishPatterns {
		s.englishSentenceCount += len(re.FindAllString(lowered, -1))
	}

	for _, r := range decisionRules {
		if r.when(s) {
			return r.lang
		}
	}
	return Unknown
}

// Sanitize strips markup (images, attachments, emphasis, color spans, inline
// code) and everything that is neither a Hangul syllable nor a Latin letter,
// leaving the residue character counting operates on.
func Sanitize(text string) string {
	cleaned := reImage.ReplaceAllString(text, " ")
	cleaned = reAttachment.ReplaceAllString(cleaned, " ")
	cleaned = reEmphasis.ReplaceAllString(cleaned, " ")
	cleaned = reColorSpan.ReplaceAllString(cleaned, " ")
	cleaned = reInlineCode.ReplaceAllString(cleaned, " ")
	return reNonLetter.ReplaceAllString(cleaned, "")
}
