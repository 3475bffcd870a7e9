package bilingual

import (
	"strings"
	"testing"
)

func TestFormatSummary(t *testing.T) {
	tests := []struct {
		name       string
		original   string
		translated string
		want       string
	}{
		{
			name:       "joins with separator",
			original:   "버그 발생",
			translated: "Bug occurs",
			want:       "버그 발생 / Bug occurs",
		},
		{
			name:       "empty original returns translation",
			original:   "",
			translated: "Bug occurs",
			want:       "Bug occurs",
		},
		{
			name:       "empty translation returns original",
			original:   "버그 발생",
			translated: "",
			want:       "버그 발생",
		},
		{
			name:       "newlines collapsed to spaces",
			original:   "버그\n발생",
			translated: "Bug\noccurs",
			want:       "버그 발생 / Bug occurs",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatSummary(tt.original, tt.translated); got != tt.want {
				t.Errorf("FormatSummary(%q, %q) = %q, want %q", tt.original, tt.translated, got, tt.want)
			}
		})
	}
}

func TestFormatSummary_TruncatesOnlyTranslatedHalf(t *testing.T) {
	original := strings.Repeat("가", 200)
	translated := strings.Repeat("b", 100)

	got := FormatSummary(original, translated)

	if !strings.HasPrefix(got, original+" / ") {
		t.Fatal("original half must stay whole")
	}
	if runes := []rune(got); len(runes) != 255 {
		t.Errorf("len = %d, want 255", len(runes))
	}
	if !strings.HasSuffix(got, "…") {
		t.Error("truncated translation must end with ellipsis")
	}
}

func TestFormatSummary_OriginalFillsLimit(t *testing.T) {
	original := strings.Repeat("가", 255)
	if got := FormatSummary(original, "translated"); got != original {
		t.Errorf("no room for translation: got %q", got)
	}
}

func TestFormatSteps(t *testing.T) {
	tests := []struct {
		name       string
		original   string
		translated string
		want       string
	}{
		{"both blocks", "1. 접속", "1. Connect", "1. 접속\n\n1. Connect"},
		{"original only", "1. 접속", "", "1. 접속"},
		{"translation only", "", "1. Connect", "1. Connect"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatSteps(tt.original, tt.translated); got != tt.want {
				t.Errorf("FormatSteps = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSplitBracketPrefix(t *testing.T) {
	tests := []struct {
		in         string
		wantPrefix string
		wantRest   string
	}{
		{"[Test] [System Menu] 에디터 크래시", "[Test] [System Menu] ", "에디터 크래시"},
		{"[PUBG-123] crash", "[PUBG-123] ", "crash"},
		{"no prefix here", "", "no prefix here"},
		{"", "", ""},
		{"[unclosed bracket", "", "[unclosed bracket"},
	}

	for _, tt := range tests {
		prefix, rest := SplitBracketPrefix(tt.in)
		if prefix != tt.wantPrefix || rest != tt.wantRest {
			t.Errorf("SplitBracketPrefix(%q) = (%q, %q), want (%q, %q)",
				tt.in, prefix, rest, tt.wantPrefix, tt.wantRest)
		}
	}
}

func TestFormatBlock_PlainText(t *testing.T) {
	got := FormatBlock("버그가 발생했습니다.\n재현 확인", "A bug occurred.\nReproduction confirmed.", "")

	want := "버그가 발생했습니다.\n재현 확인\n\n" +
		"{color:#4c9aff}A bug occurred.{color}\n" +
		"{color:#4c9aff}Reproduction confirmed.{color}"
	if got != want {
		t.Errorf("FormatBlock = %q, want %q", got, want)
	}
}

func TestFormatBlock_Header(t *testing.T) {
	got := FormatBlock("버그 발생", "Bug occurs", "Observed:")

	want := "Observed:\n버그 발생\n\n{color:#4c9aff}Bug occurs{color}"
	if got != want {
		t.Errorf("FormatBlock = %q, want %q", got, want)
	}
}

func TestFormatBlock_MediaLineStaysInPlace(t *testing.T) {
	got := FormatBlock("앱을 엽니다\n!screen.png!\n크래시 발생", "Open the app\nCrash occurs", "")

	want := "앱을 엽니다\n\n{color:#4c9aff}Open the app{color}\n" +
		"!screen.png!\n" +
		"크래시 발생\n\n{color:#4c9aff}Crash occurs{color}"
	if got != want {
		t.Errorf("FormatBlock = %q, want %q", got, want)
	}
}

func TestFormatBlock_BulletPrefixPreserved(t *testing.T) {
	got := FormatBlock("- 로그인\n- 종료", "- Login\n- Quit", "")

	want := "- 로그인\n- 종료\n\n" +
		"- {color:#4c9aff}Login{color}\n" +
		"- {color:#4c9aff}Quit{color}"
	if got != want {
		t.Errorf("FormatBlock = %q, want %q", got, want)
	}
}

func TestFormatBlock_CodeBlockPassedThrough(t *testing.T) {
	got := FormatBlock("실행하세요\n{code}\nx = 1\n{code}", "Run this\n{code}\nx = 1\n{code}", "")

	want := "실행하세요\n\n{color:#4c9aff}Run this{color}\n{code}\nx = 1\n{code}"
	if got != want {
		t.Errorf("FormatBlock = %q, want %q", got, want)
	}
}

func TestFormatBlock_TableRowsMergedPerCell(t *testing.T) {
	got := FormatBlock("||이름||값||\n|로비|10|", "||Name||Value||\n|Lobby|10|", "")

	want := "||*이름/Name*||*값/Value*||\n\n|로비/Lobby|10/10|"
	if got != want {
		t.Errorf("FormatBlock = %q, want %q", got, want)
	}
}

func TestFormatBlock_EmptyOriginal(t *testing.T) {
	got := FormatBlock("", "Hello", "")
	if got != "{color:#4c9aff}Hello{color}" {
		t.Errorf("FormatBlock = %q", got)
	}
}

func TestFormatBlock_ColoredOriginalNotRewrapped(t *testing.T) {
	got := FormatBlock("{color:#ff0000}경고{color}", "Warning", "")

	if strings.Contains(got, "{color:#4c9aff}{color:") || strings.Contains(got, "Warning{color}{color}") {
		t.Errorf("double-wrapped color span: %q", got)
	}
	if !strings.Contains(got, "Warning") {
		t.Errorf("translation missing: %q", got)
	}
}

func TestIsAlreadyTranslated(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"real payload", "원문\n{color:#4c9aff}Translation{color}", true},
		{"empty pair", "{color:#4c9aff}{color}", false},
		{"table separator only", "{color:#4c9aff}|{color}", false},
		{"separator with spaces", "{color:#4c9aff} | {color}", false},
		{"no marker", "plain text", false},
		{"other color", "{color:#ff0000}red{color}", false},
		{"payload on next line", "{color:#4c9aff}\nText{color}", false},
		{"empty pair then real pair", "{color:#4c9aff}{color} {color:#4c9aff}Real{color}", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAlreadyTranslated(tt.in); got != tt.want {
				t.Errorf("IsAlreadyTranslated(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsBilingualSummary(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"korean and english", "버그 발생 / Bug occurs", true},
		{"bracket prefix ignored", "[Test] [Menu] 버그 발생 / Bug occurs", true},
		{"no separator", "버그 발생", false},
		{"same language both sides", "hello there / general greeting", false},
		{"unknown side", "12345 / Bug occurs", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsBilingualSummary(tt.in); got != tt.want {
				t.Errorf("IsBilingualSummary(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsStepsBilingual(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"two blocks two languages", "1. 로비 접속\n\n1. Enter the lobby", true},
		{"single block", "1. 로비 접속", false},
		{"same language blocks", "First block here\n\nSecond block here", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsStepsBilingual(tt.in); got != tt.want {
				t.Errorf("IsStepsBilingual(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
