package translate

import (
	"reflect"
	"testing"
)

// --- ParseBatch Tests ---

func TestParseBatch_Strategies(t *testing.T) {
	tests := []struct {
		name         string
		content      string
		want         []string
		wantStrategy string
	}{
		{
			name:         "structured object",
			content:      `{"translations": ["Сетка", "Вода"]}`,
			want:         []string{"Сетка", "Вода"},
			wantStrategy: "structured",
		},
		{
			name:         "structured object in code fence",
			content:      "```json\n{\"translations\": [\"Сетка\"]}\n```",
			want:         []string{"Сетка"},
			wantStrategy: "structured",
		},
		{
			name:         "bare array",
			content:      `["uno", "dos", "tres"]`,
			want:         []string{"uno", "dos", "tres"},
			wantStrategy: "bare-array",
		},
		{
			name:         "bare array in code fence",
			content:      "```\n[\"uno\", \"dos\"]\n```",
			want:         []string{"uno", "dos"},
			wantStrategy: "bare-array",
		},
		{
			name:         "array embedded in prose",
			content:      `Here are your translations: ["eins", "zwei"] Let me know if you need more.`,
			want:         []string{"eins", "zwei"},
			wantStrategy: "embedded-array",
		},
		{
			name:         "numbered lines",
			content:      "1. premier\n2. deuxième\n3. troisième",
			want:         []string{"premier", "deuxième", "troisième"},
			wantStrategy: "line-split",
		},
		{
			name:         "plain lines with quotes",
			content:      "\"hola\"\n\"adiós\"",
			want:         []string{"hola", "adiós"},
			wantStrategy: "line-split",
		},
		{
			name:         "lines with parenthesis numbering",
			content:      "1) alpha\n2) beta",
			want:         []string{"alpha", "beta"},
			wantStrategy: "line-split",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, strategy := ParseBatch(tt.content)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseBatch() = %v, want %v", got, tt.want)
			}
			if strategy != tt.wantStrategy {
				t.Errorf("strategy = %q, want %q", strategy, tt.wantStrategy)
			}
		})
	}
}

func TestParseBatch_Unreadable(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty", ""},
		{"whitespace", "   \n\t  "},
		{"truncated json object", `{"translations": ["one", "tw`},
		{"truncated json array", `["one", "two`},
		{"non-string array", `[1, 2, 3]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, strategy := ParseBatch(tt.content)
			if got != nil {
				t.Errorf("ParseBatch() = %v, want nil", got)
			}
			if strategy != "none" {
				t.Errorf("strategy = %q, want %q", strategy, "none")
			}
		})
	}
}

func TestParseBatch_StructuredWinsOverLines(t *testing.T) {
	// A valid structured response must not fall through to line
	// splitting even though it spans multiple lines.
	content := "{\n\"translations\": [\n\"one\",\n\"two\"\n]\n}"

	got, strategy := ParseBatch(content)
	if strategy != "structured" {
		t.Fatalf("strategy = %q, want structured", strategy)
	}
	if !reflect.DeepEqual(got, []string{"one", "two"}) {
		t.Errorf("ParseBatch() = %v", got)
	}
}

// --- StripMarkdownCodeBlock Tests ---

func TestStripMarkdownCodeBlock(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"json fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"plain fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"no fence", `{"a": 1}`, `{"a": 1}`},
		{"surrounding whitespace", "  {\"a\": 1}  ", `{"a": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripMarkdownCodeBlock(tt.input); got != tt.want {
				t.Errorf("StripMarkdownCodeBlock() = %q, want %q", got, tt.want)
			}
		})
	}
}

// --- Schema Tests ---

func TestBatchSchema_Shape(t *testing.T) {
	s := batchSchema()

	if s["type"] != "object" {
		t.Errorf("expected object schema, got %v", s["type"])
	}

	props, ok := s["properties"].(map[string]any)
	if !ok {
		t.Fatalf("expected properties map, got %T", s["properties"])
	}
	if _, ok := props["translations"]; !ok {
		t.Error("schema should declare a translations property")
	}

	if extra, ok := s["additionalProperties"].(bool); !ok || extra {
		t.Errorf("schema should forbid additional properties, got %v", s["additionalProperties"])
	}
}
