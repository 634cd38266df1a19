package repl

import "testing"

func TestPadRight(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		width    int
		expected string
	}{
		{"short", "hi", 5, "hi   "},
		{"exact", "hello", 5, "hello"},
		{"long", "hello world", 5, "hello world"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := padRight(tt.input, tt.width)
			if result != tt.expected {
				t.Errorf("padRight(%q, %d) = %q, want %q", tt.input, tt.width, result, tt.expected)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{"short", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"long", "hello world", 8, "hello..."},
		{"multiline", "hello\nworld", 20, "hello world"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := truncate(tt.input, tt.maxLen)
			if result != tt.expected {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, result, tt.expected)
			}
		})
	}
}

func TestFormatRecordTable(t *testing.T) {
	config := &Config{NoColor: true, Prompt: "test> "}
	r := &REPL{config: config, format: "table"}

	rec := &nodeRecord{
		ID:           "/src/app.js",
		Permanent:    true,
		Dependencies: []string{"/src/util.js"},
		Dependents:   nil,
	}

	if err := r.formatResult(rec); err != nil {
		t.Errorf("formatResult() returned error: %v", err)
	}
}

func TestFormatResultJSON(t *testing.T) {
	config := &Config{NoColor: true, Prompt: "test> "}
	r := &REPL{config: config, format: "json"}

	rec := &nodeRecord{ID: "/src/app.js", Permanent: false}

	if err := r.formatResult(rec); err != nil {
		t.Errorf("formatResult() returned error: %v", err)
	}
}

func TestFormatNodesTable(t *testing.T) {
	config := &Config{NoColor: true, Prompt: "test> "}
	r := &REPL{config: config, format: "table"}

	summaries := []nodeSummary{
		{ID: "/src/app.js", Permanent: true, DependencyCount: 2, DependentCount: 0},
		{ID: "/src/util.js", Permanent: false, DependencyCount: 0, DependentCount: 1},
	}

	if err := r.formatNodesTable(summaries); err != nil {
		t.Errorf("formatNodesTable() returned error: %v", err)
	}
}
