package langdetect

import "testing"

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Lang
	}{
		{
			name: "empty text",
			text: "",
			want: Unknown,
		},
		{
			name: "whitespace only",
			text: "   \n\t  ",
			want: Unknown,
		},
		{
			name: "digits and punctuation only",
			text: "12345 !!! ???",
			want: Unknown,
		},
		{
			name: "korean sentence with polite ending",
			text: "버그가 발생했습니다.",
			want: Korean,
		},
		{
			name: "korean report style ending",
			text: "클라이언트 접속 시 크래시 발생함",
			want: Korean,
		},
		{
			name: "plain english sentence",
			text: "The button is not working when clicked.",
			want: English,
		},
		{
			name: "english with modal verb",
			text: "This value should be reset after relog.",
			want: English,
		},
		{
			name: "english proper noun with korean particle",
			text: "Records에서 데이터 확인",
			want: Korean,
		},
		{
			name: "mostly english nouns but korean structure",
			text: "Lobby에서 Settings Tab을 열면 UI 깨짐",
			want: Korean,
		},
		{
			name: "hangul without english sentence patterns",
			text: "에디터 크래시",
			want: Korean,
		},
		{
			name: "latin letters without sentence structure",
			text: "NullReferenceException",
			want: English,
		},
		{
			name: "markup only",
			text: "!screenshot.png|width=300! [^log.txt]",
			want: Unknown,
		},
		{
			name: "korean hidden behind markup still detected",
			text: "!screenshot.png! 로그인이 되지 않습니다.",
			want: Korean,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detect(tt.text); got != tt.want {
				t.Errorf("Detect(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

// The tie-break order of the decision table is a contract: a text carrying
// both Korean structure and English sentence patterns must resolve Korean
// because the korean-structure rule is evaluated first.
func TestDetect_RuleOrder(t *testing.T) {
	text := "The error occurs and 버그가 발생했습니다."
	if got := Detect(text); got != Korean {
		t.Errorf("mixed text with korean particles: got %q, want %q", got, Korean)
	}

	// Hangul present, english structure present, more latin than hangul,
	// and no particles/endings: falls through to any-hangul.
	text = "The quick brown fox jumps over the lazy dog near the river 강"
	if got := Detect(text); got != Korean {
		t.Errorf("hangul fallback rule: got %q, want %q", got, Korean)
	}
}

func TestSanitize(t *testing.T) {
	got := Sanitize("See !shot.png! and [^log.txt] for `details` __here__ {color:red}now{color}")
	for _, forbidden := range []string{"!", "[", "]", "`", "_", "{", "}"} {
		if contains := indexOf(got, forbidden); contains {
			t.Errorf("Sanitize left %q in %q", forbidden, got)
		}
	}
}

func indexOf(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}
