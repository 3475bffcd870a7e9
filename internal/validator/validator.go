// Package validator checks that a translation result is in the expected target language.
package validator

import (
	"fmt"
	"regexp"
	"strings"

	lingua "github.com/pemistahl/lingua-go"
)

// minValidationLength is the minimum rune count required to attempt language
// detection. Shorter texts produce unreliable results and are accepted
// without validation.
const minValidationLength = 20

// reMarkup strips the tokens the pipeline injects before detection: color
// spans, placeholders, and Jira media markup would otherwise skew the
// statistical model.
var reMarkup = regexp.MustCompile(`\{color:[^}]+\}|\{color\}|__(?:IMAGE|ATTACHMENT)_PLACEHOLDER_\d+__|![^!]+!|\[\^[^\]]+\]`)

// Validator checks that a translation result is written in the expected
// target language. The underlying language detector is expensive to build;
// reuse the instance.
type Validator struct {
	det lingua.LanguageDetector
}

// New creates a Validator restricted to the two languages the pipeline
// produces. Restricting the model keeps detection sharp on short, markup
// heavy ticket text.
func New() *Validator {
	det := lingua.NewLanguageDetectorBuilder().
		FromLanguages(lingua.Korean, lingua.English).
		Build()
	return &Validator{det: det}
}

// IsValid returns true when translatedText appears to be written in
// targetLang ("ko" or "en").
//
// Short texts (fewer than minValidationLength runes) and texts whose
// language cannot be determined pass without error. When the detected
// language differs from targetLang the returned error names both codes.
func (v *Validator) IsValid(translatedText, targetLang string) (bool, error) {
	if targetLang == "" {
		return true, nil
	}

	text := strings.TrimSpace(reMarkup.ReplaceAllString(translatedText, " "))
	if text == "" {
		return false, fmt.Errorf("translation is empty")
	}

	// Detector is unreliable for very short texts; skip validation.
	if len([]rune(text)) < minValidationLength {
		return true, nil
	}

	lang, ok := v.det.DetectLanguageOf(text)
	if !ok {
		// Ambiguous language, cannot validate, pass through.
		return true, nil
	}

	detected := lang.IsoCode639_1().String()
	if !strings.EqualFold(detected, targetLang) {
		return false, fmt.Errorf("expected %s but detected %s", targetLang, detected)
	}

	return true, nil
}
