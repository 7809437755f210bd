package llm

import "testing"

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		wantErr bool
	}{
		{name: "bare-object", content: `{"a":1}`, want: `{"a":1}`},
		{name: "fenced", content: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "fenced-no-lang", content: "```\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "lead-in-prose", content: "Here is my argument:\n{\"a\":1}", want: `{"a":1}`},
		{name: "trailing-prose", content: "{\"a\":1}\nLet me know if you need more.", want: `{"a":1}`},
		{name: "no-object", content: "I cannot answer that.", wantErr: true},
		{name: "empty", content: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.content)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
