package markup

import (
	"strings"
	"testing"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		wantClean  string
		wantBlocks []string
	}{
		{
			name:      "no markup",
			text:      "plain text with no markup",
			wantClean: "plain text with no markup",
		},
		{
			name:       "single image",
			text:       "before !shot.png! after",
			wantClean:  "before __IMAGE_PLACEHOLDER_0__ after",
			wantBlocks: []string{"!shot.png!"},
		},
		{
			name:       "image with attributes",
			text:       "!shot.png|width=300,height=200!",
			wantClean:  "__IMAGE_PLACEHOLDER_0__",
			wantBlocks: []string{"!shot.png|width=300,height=200!"},
		},
		{
			name:       "image and attachment",
			text:       "See !shot.png! and [^log.txt]",
			wantClean:  "See __IMAGE_PLACEHOLDER_0__ and __ATTACHMENT_PLACEHOLDER_1__",
			wantBlocks: []string{"!shot.png!", "[^log.txt]"},
		},
		{
			name:       "multiple images keep order",
			text:       "!a.png! mid !b.png!",
			wantClean:  "__IMAGE_PLACEHOLDER_0__ mid __IMAGE_PLACEHOLDER_1__",
			wantBlocks: []string{"!a.png!", "!b.png!"},
		},
		{
			name: "empty text",
			text: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocks, clean := Extract(tt.text)
			if clean != tt.wantClean {
				t.Errorf("clean text = %q, want %q", clean, tt.wantClean)
			}
			if len(blocks) != len(tt.wantBlocks) {
				t.Fatalf("got %d blocks, want %d", len(blocks), len(tt.wantBlocks))
			}
			for i, want := range tt.wantBlocks {
				if blocks[i].Literal != want {
					t.Errorf("block %d = %q, want %q", i, blocks[i].Literal, want)
				}
				if blocks[i].Index != i {
					t.Errorf("block %d has index %d", i, blocks[i].Index)
				}
			}
		})
	}
}

func TestRestore_RoundTrip(t *testing.T) {
	texts := []string{
		"See !shot.png! and [^log.txt]",
		"no markup here",
		"!a.png|thumbnail!\ntext line\n[^report.pdf]\n!b.png!",
		"",
	}

	for _, text := range texts {
		blocks, clean := Extract(text)
		if got := Restore(clean, blocks); got != text {
			t.Errorf("round trip of %q = %q", text, got)
		}
	}
}

func TestRestore_NoPlaceholders(t *testing.T) {
	blocks, _ := Extract("!a.png!")
	if got := Restore("translated text without tokens", blocks); got != "translated text without tokens" {
		t.Errorf("Restore changed text without placeholders: %q", got)
	}
}

func TestRestore_LeavesUnknownPlaceholder(t *testing.T) {
	// A placeholder with no matching block survives verbatim so the defect
	// stays visible upstream.
	out := Restore("keep __IMAGE_PLACEHOLDER_7__ as is", nil)
	if !strings.Contains(out, "__IMAGE_PLACEHOLDER_7__") {
		t.Errorf("unknown placeholder was altered: %q", out)
	}
}

func TestMissing(t *testing.T) {
	blocks, clean := Extract("!a.png! and [^log.txt]")

	if got := Missing(clean, blocks); got != nil {
		t.Errorf("Missing on intact text = %v, want nil", got)
	}

	// Simulate the translator dropping the second token.
	mutated := strings.ReplaceAll(clean, "__ATTACHMENT_PLACEHOLDER_1__", "")
	got := Missing(mutated, blocks)
	if len(got) != 1 || got[0] != 1 {
		t.Errorf("Missing = %v, want [1]", got)
	}
}

func TestIsMediaLine(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"!shot.png!", true},
		{"[^log.txt]", true},
		{"- !shot.png!", true},
		{"2. [^video.mp4]", true},
		{"__IMAGE_PLACEHOLDER_0__", true},
		{"screenshot: width=300,height=200,alt=\"x\"!", true},
		{"plain text", false},
		{"", false},
		{"[link text]", false},
	}

	for _, tt := range tests {
		if got := IsMediaLine(tt.line); got != tt.want {
			t.Errorf("IsMediaLine(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}
