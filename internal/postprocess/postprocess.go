// Package postprocess strips common LLM artifacts from translated text
// before it is matched back to chunk ids: leading instruction echoes
// ("Here is the translation:") and a wrapping quote pair around the whole
// reply.
package postprocess

import (
	"regexp"
	"strings"
)

// echoPatterns are anchored to the start of the reply and require a colon to
// avoid eating legitimate content.
var echoPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^here(?:'s| is)(?: the)? (?:translated )?(?:translation|text)\s*:`),
	regexp.MustCompile(`(?i)^(?:the )?(?:translation|translated text)\s*:`),
	regexp.MustCompile(`(?i)^(?:sure|certainly|of course)[,.]? here(?:'s| is)(?: the)? (?:translation|text)\s*:`),
}

// quotePairs lists the wrapping pairs models sometimes add around a reply.
var quotePairs = [][2]rune{
	{'"', '"'},
	{'\'', '\''},
	{'«', '»'},
	{'“', '”'},
	{'‘', '’'},
}

// Clean trims a raw model reply down to the translation payload.
func Clean(text string) string {
	text = strings.TrimSpace(text)
	text = removeEcho(text)
	text = unwrapQuotes(text)
	return strings.TrimSpace(text)
}

func removeEcho(text string) string {
	for _, re := range echoPatterns {
		if loc := re.FindStringIndex(text); loc != nil && loc[0] == 0 {
			text = strings.TrimSpace(text[loc[1]:])
		}
	}
	return text
}

func unwrapQuotes(text string) string {
	runes := []rune(text)
	if len(runes) < 2 {
		return text
	}
	for _, pair := range quotePairs {
		if runes[0] == pair[0] && runes[len(runes)-1] == pair[1] {
			return strings.TrimSpace(string(runes[1 : len(runes)-1]))
		}
	}
	return text
}
