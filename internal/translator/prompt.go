package translator

import (
	"encoding/json"
	"fmt"
	"strings"
)

// systemMessage builds the translation system prompt for the given
// direction. The Korean→English and English→Korean variants carry different
// style rules tuned on real ticket output; batch mode adds the line-count
// and commentary constraints the structured response depends on.
func systemMessage(opts PromptOptions, batch bool) string {
	var sb strings.Builder

	if opts.SourceLang == "ko" {
		sb.WriteString("You are a professional Korean to English translator. ")
		if batch {
			sb.WriteString("Translate each provided Korean text to English. ")
		} else {
			sb.WriteString("Translate the following Korean text to English. ")
		}
		sb.WriteString("The output MUST be 100% in English - do NOT leave any Korean words. ")
		sb.WriteString("Preserve Jira markup (*bold*, _italic_, {{code}}, etc.)")
		if batch {
			sb.WriteString(", bullet indentation, and placeholder tokens like __IMAGE_PLACEHOLDER__. ")
			sb.WriteString("IMPORTANT: Keep the exact same number of lines as the source text. ")
			sb.WriteString("Do not add commentary. ")
		} else {
			sb.WriteString(". ")
		}
		sb.WriteString("Title rule: When translating titles/summaries, start with the symptom directly. ")
		sb.WriteString("Do NOT start with 'There is an issue where...' or 'An issue where...'. ")
		sb.WriteString("Prefer patterns like 'Error occurs when ...', 'Crash when ...', 'Cannot ...'. ")
		sb.WriteString("Observation rule: When translating '확인하다' in reproduction steps, ")
		sb.WriteString("prefer 'observe' or 'notice' over 'confirm'. ")
	} else {
		sb.WriteString("You are a professional English to Korean translator. ")
		if batch {
			sb.WriteString("Translate each provided English text to Korean. ")
		} else {
			sb.WriteString("Translate the following English text to Korean. ")
		}
		sb.WriteString("Keep proper nouns and game-specific terms in English. ")
		sb.WriteString("Concise noun phrases for titles/summaries. ")
		sb.WriteString("Preserve Jira markup (*bold*, _italic_, {{code}}, etc.)")
		if batch {
			sb.WriteString(", bullet indentation, and placeholder tokens like __IMAGE_PLACEHOLDER__. ")
			sb.WriteString("IMPORTANT: Keep the exact same number of lines as the source text. ")
			sb.WriteString("Do not add commentary. ")
		} else {
			sb.WriteString(". ")
		}
	}

	if opts.GlossaryInstruction != "" {
		sb.WriteString("\n\n")
		sb.WriteString(opts.GlossaryInstruction)
	}

	return sb.String()
}

// batchUserMessage serializes the chunk payload the model translates in
// place: ids and field hints stay untouched, only the text values change.
func batchUserMessage(items []BatchItem) (string, error) {
	payload := struct {
		Items []BatchItem `json:"items"`
	}{Items: items}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal batch payload: %w", err)
	}

	return "Translate the 'text' fields in the following JSON data. " +
		"Keep 'id' and 'field' unchanged. Use 'field' as a context hint for tone/style.\n" +
		string(data), nil
}
