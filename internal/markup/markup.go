// Package markup protects non-translatable Jira markup (image embeds,
// attachment references) during translation by replacing each occurrence
// with an indexed placeholder token the LLM is instructed to preserve.
// After translation, Restore substitutes the original markup back.
package markup

import (
	"fmt"
	"regexp"
	"strings"
)

// Kind distinguishes the two protected markup families.
type Kind string

const (
	Image      Kind = "image"
	Attachment Kind = "attachment"
)

// Block is one captured markup literal. Index is its position in the shared
// extraction order and keys the placeholder token.
type Block struct {
	Index   int
	Kind    Kind
	Literal string
}

// Placeholder returns the token that replaced this block in the clean text.
func (b Block) Placeholder() string {
	if b.Kind == Attachment {
		return fmt.Sprintf("__ATTACHMENT_PLACEHOLDER_%d__", b.Index)
	}
	return fmt.Sprintf("__IMAGE_PLACEHOLDER_%d__", b.Index)
}

var (
	// image embeds: !image.png!, !image.png|thumbnail!, !image.png|width=300!
	reImage = regexp.MustCompile(`!([^!]+?)(?:\|[^!]*)?!`)

	// attachment references: [^attachment.pdf]
	reAttachment = regexp.MustCompile(`\[\^([^\]]+?)\]`)

	// bullet or numbering prefix on a line
	reBulletPrefix = regexp.MustCompile(`^\s*(?:[-*#]+|\d+[.)])\s*`)

	// trailing image metadata, e.g. width=...,height=...,alt="..."!
	reImageMeta = regexp.MustCompile(`(width|height|alt)=.*!$`)
)

// Extract replaces image and attachment markup with placeholder tokens and
// returns the captured blocks in extraction order. Images are matched first:
// image syntax may contain characters that would otherwise be picked up by
// the attachment pattern.
func Extract(text string) ([]Block, string) {
	if text == "" {
		return nil, ""
	}

	var blocks []Block

	capture := func(kind Kind) func(string) string {
		return func(match string) string {
			b := Block{Index: len(blocks), Kind: kind, Literal: match}
			blocks = append(blocks, b)
			return b.Placeholder()
		}
	}

	text = reImage.ReplaceAllStringFunc(text, capture(Image))
	text = reAttachment.ReplaceAllStringFunc(text, capture(Attachment))

	return blocks, text
}

// Restore substitutes every block's placeholder in text with its original
// literal. It is a no-op on text containing no placeholders, and it leaves a
// placeholder alone when the block list does not cover it: a token surviving
// Restore is a parity defect the caller must surface, not mask.
func Restore(text string, blocks []Block) string {
	for _, b := range blocks {
		text = strings.ReplaceAll(text, b.Placeholder(), b.Literal)
	}
	return text
}

// Missing reports the indices of blocks whose placeholder no longer appears
// in text, i.e. tokens the translation step dropped or mangled.
func Missing(text string, blocks []Block) []int {
	var missing []int
	for _, b := range blocks {
		if !strings.Contains(text, b.Placeholder()) {
			missing = append(missing, b.Index)
		}
	}
	return missing
}

// IsMediaLine reports whether a trimmed line consists of media markup (image
// embed, attachment reference, or a placeholder left by Extract) rather than
// translatable text. A leading bullet or numbering prefix is ignored.
func IsMediaLine(line string) bool {
	if line == "" {
		return false
	}

	for _, candidate := range []string{line, reBulletPrefix.ReplaceAllString(line, "")} {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		if strings.HasPrefix(candidate, "!") || strings.HasPrefix(candidate, "[^") {
			return true
		}
		if reImageMeta.MatchString(candidate) {
			return true
		}
	}

	return strings.Contains(line, "__IMAGE_PLACEHOLDER") ||
		strings.Contains(line, "__ATTACHMENT_PLACEHOLDER")
}
