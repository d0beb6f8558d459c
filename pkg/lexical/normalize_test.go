package lexical

import (
	"reflect"
	"testing"
)

func TestNormalizeName(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "lowercases", input: "Honda Civic", expected: "honda civic"},
		{name: "collapses whitespace", input: "  Honda\t Civic \n", expected: "honda civic"},
		{name: "already normalized", input: "honda civic", expected: "honda civic"},
		{name: "empty", input: "", expected: ""},
		{name: "whitespace only", input: " \t ", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeName(tt.input); got != tt.expected {
				t.Errorf("NormalizeName(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestTokenize(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "mixed case and punctuation",
			input:    "Compare the Honda Civic, versus Toyota-Corolla!",
			expected: []string{"compare", "the", "honda", "civic", "versus", "toyota", "corolla"},
		},
		{
			name:     "apostrophes trimmed at edges",
			input:    "the engine's 'output'",
			expected: []string{"the", "engine's", "output"},
		},
		{
			name:     "digits kept",
			input:    "Model 3 from 2020",
			expected: []string{"model", "3", "from", "2020"},
		},
		{name: "empty", input: "", expected: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.input)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestInitials(t *testing.T) {
	t.Parallel()
	if got := Initials("International Business Machines"); got != "ibm" {
		t.Errorf("Initials() = %q, want %q", got, "ibm")
	}
	if got := Initials("  "); got != "" {
		t.Errorf("Initials() on blank = %q, want empty", got)
	}
}

func TestIsInitialism(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		a        string
		b        string
		expected bool
	}{
		{name: "short first", a: "IBM", b: "International Business Machines", expected: true},
		{name: "long first", a: "International Business Machines", b: "IBM", expected: true},
		{name: "dotted form", a: "I.B.M.", b: "International Business Machines", expected: true},
		{name: "wrong initials", a: "IBX", b: "International Business Machines", expected: false},
		{name: "single word expansion", a: "IBM", b: "Ibm", expected: false},
		{name: "both multi-word", a: "Big Blue", b: "International Business Machines", expected: false},
		{name: "empty short form", a: "", b: "International Business Machines", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsInitialism(tt.a, tt.b); got != tt.expected {
				t.Errorf("IsInitialism(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.expected)
			}
		})
	}
}

func TestIsStopWord(t *testing.T) {
	t.Parallel()
	for _, word := range []string{"this", "would", "about"} {
		if !IsStopWord(word) {
			t.Errorf("IsStopWord(%q) = false, want true", word)
		}
	}
	for _, word := range []string{"engine", "honda", "analyze"} {
		if IsStopWord(word) {
			t.Errorf("IsStopWord(%q) = true, want false", word)
		}
	}
}
