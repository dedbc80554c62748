package langid

import "testing"

func TestDetectDefaultsOnEmpty(t *testing.T) {
	d := New()

	tests := []struct {
		name string
		text string
	}{
		{name: "empty", text: ""},
		{name: "whitespace only", text: "   \n\t  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := d.Detect(tt.text); got != DefaultLanguage {
				t.Errorf("Detect(%q) = %q, want %q", tt.text, got, DefaultLanguage)
			}
		})
	}
}

func TestDetectReturnsISOCode(t *testing.T) {
	d := New()

	got := d.Detect("The quick brown fox jumps over the lazy dog and sings along with the radio")
	if len(got) != 2 {
		t.Errorf("Detect returned %q, want a two-letter ISO-639-1 code", got)
	}
}
