package normalize

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		want         string
		wantHTML     bool
		wantEntities bool
	}{
		{
			name: "plain text untouched",
			raw:  "hello world",
			want: "hello world",
		},
		{
			name:         "decimal references decode to cyrillic",
			raw:          "&#1057;&#1077;&#1090;&#1082;&#1072;",
			want:         "Сетка",
			wantEntities: true,
		},
		{
			name:         "hex references decode",
			raw:          "&#x41F;&#x440;&#x438;&#x432;&#x435;&#x442;",
			want:         "Привет",
			wantEntities: true,
		},
		{
			name:         "tags stripped and entities decoded",
			raw:          "<b>Hi</b> &amp; bye",
			want:         "Hi & bye",
			wantHTML:     true,
			wantEntities: true,
		},
		{
			name:         "decoding reveals tags which are stripped",
			raw:          "&lt;b&gt;bold&lt;/b&gt;",
			want:         "bold",
			wantEntities: true,
		},
		{
			name:         "named entity set",
			raw:          "&quot;a&quot; &apos;b&apos;&nbsp;&lt;c&gt;",
			want:         `"a" 'b' c`,
			wantEntities: true,
		},
		{
			name:         "nbsp only collapses to empty",
			raw:          "&nbsp;&nbsp;",
			want:         "",
			wantEntities: true,
		},
		{
			name: "whitespace runs collapse",
			raw:  "  a \t b\n\nc  ",
			want: "a b c",
		},
		{
			name:         "malformed reference left untouched",
			raw:          "x &#xyz; y",
			want:         "x &#xyz; y",
			wantEntities: true,
		},
		{
			name:         "out of range reference left untouched",
			raw:          "&#x110000;",
			want:         "&#x110000;",
			wantEntities: true,
		},
		{
			name:         "double encoded ampersand decodes one level",
			raw:          "&amp;lt;",
			want:         "&lt;",
			wantEntities: true,
		},
		{
			name:     "attribute tags stripped",
			raw:      `<span style="color:red">red</span>`,
			want:     "red",
			wantHTML: true,
		},
		{
			name: "empty input",
			raw:  "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.raw)
			if got.Cleaned != tt.want {
				t.Errorf("Normalize(%q).Cleaned = %q, want %q", tt.raw, got.Cleaned, tt.want)
			}
			if got.HasHTML != tt.wantHTML {
				t.Errorf("Normalize(%q).HasHTML = %v, want %v", tt.raw, got.HasHTML, tt.wantHTML)
			}
			if got.HasEntities != tt.wantEntities {
				t.Errorf("Normalize(%q).HasEntities = %v, want %v", tt.raw, got.HasEntities, tt.wantEntities)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"hello world",
		"&#1057;&#1077;&#1090;&#1082;&#1072;",
		"<b>Hi</b> &amp; bye",
		"&lt;b&gt;bold&lt;/b&gt;",
		"  spaced \t out  ",
		"x &#xyz; y",
		"",
	}

	for _, raw := range inputs {
		once := Normalize(raw).Cleaned
		twice := Normalize(once).Cleaned
		if twice != once {
			t.Errorf("Normalize not idempotent for %q: first %q, second %q", raw, once, twice)
		}
	}
}

func TestIsTranslatable(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"", false},
		{"   ", false},
		{"42", false},
		{"3.14", false},
		{"3,14", false},
		{"-7", false},
		{"+100", false},
		{"a", false},
		{"ab", false},
		{"AB", false},
		{"Да", false},
		{"true", false},
		{"FALSE", false},
		{"abc", true},
		{"Привет мир", true},
		{"a1", true},
		{"What is 2+2?", true},
		{"  padded text  ", true},
	}

	for _, tt := range tests {
		if got := IsTranslatable(tt.in); got != tt.want {
			t.Errorf("IsTranslatable(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
