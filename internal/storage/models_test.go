package storage

import (
	"encoding/json"
	"testing"
)

func TestContent_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantText string
		wantDoc  string
	}{
		{
			name:     "string becomes text",
			input:    `"buy milk"`,
			wantText: "buy milk",
		},
		{
			name:    "object becomes doc",
			input:   `{"type":"doc","content":[]}`,
			wantDoc: `{"type":"doc","content":[]}`,
		},
		{
			name:     "leading whitespace before string",
			input:    `  "padded"`,
			wantText: "padded",
		},
		{
			name:     "empty string",
			input:    `""`,
			wantText: "",
		},
		{
			name:    "array becomes doc",
			input:   `[1,2,3]`,
			wantDoc: `[1,2,3]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Content
			if err := json.Unmarshal([]byte(tt.input), &c); err != nil {
				t.Fatalf("Unmarshal(%q) error = %v", tt.input, err)
			}
			if c.Text != tt.wantText {
				t.Errorf("Text = %q, want %q", c.Text, tt.wantText)
			}
			if string(c.Doc) != tt.wantDoc {
				t.Errorf("Doc = %q, want %q", c.Doc, tt.wantDoc)
			}
		})
	}
}

func TestContent_MarshalJSON(t *testing.T) {
	quick := Content{Text: "a quick thought"}
	data, err := json.Marshal(quick)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `"a quick thought"` {
		t.Errorf("Marshal() = %s, want quoted string", data)
	}

	rich := Content{Doc: json.RawMessage(`{"type":"doc"}`)}
	data, err = json.Marshal(rich)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `{"type":"doc"}` {
		t.Errorf("Marshal() = %s, want raw document", data)
	}
}

func TestContent_PlainText(t *testing.T) {
	if got := (Content{Text: "hello"}).PlainText(); got != "hello" {
		t.Errorf("PlainText() = %q, want %q", got, "hello")
	}
	doc := Content{Doc: json.RawMessage(`{"type":"doc"}`)}
	if got := doc.PlainText(); got != `{"type":"doc"}` {
		t.Errorf("PlainText() = %q, want raw doc", got)
	}
}

func TestNoteType_Valid(t *testing.T) {
	if !NoteTypeQuick.Valid() || !NoteTypeRich.Valid() {
		t.Error("known note types should be valid")
	}
	if NoteType("").Valid() {
		t.Error("empty note type should not be valid")
	}
	if NoteType("journal").Valid() {
		t.Error("unknown note type should not be valid")
	}
}

func TestNote_EffectiveType(t *testing.T) {
	legacy := &Note{}
	if got := legacy.EffectiveType(); got != NoteTypeRich {
		t.Errorf("EffectiveType() = %q, want %q", got, NoteTypeRich)
	}
	quick := &Note{NoteType: NoteTypeQuick}
	if got := quick.EffectiveType(); got != NoteTypeQuick {
		t.Errorf("EffectiveType() = %q, want %q", got, NoteTypeQuick)
	}
}
