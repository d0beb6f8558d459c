package analyzer

import (
	"reflect"
	"testing"

	"github.com/soundprediction/legame/pkg/types"
)

func TestClassifyIntent(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		query string
		want  types.Intent
	}{
		{"plain lookup", "What is the capital of France", types.IntentFactual},
		{"compare", "Compare Honda and Toyota engines", types.IntentComparative},
		{"versus", "Tesla versus Ford reliability", types.IntentComparative},
		{"analyze", "Analyze the supply chain", types.IntentAnalytical},
		{"explain", "explain how engines work", types.IntentAnalytical},
		{"describe", "Describe the braking system", types.IntentAnalytical},
		{"comparative beats analytical", "Compare and explain both options", types.IntentComparative},
		{"empty", "", types.IntentFactual},
	}

	a := New(nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Analyze(tt.query).Intent; got != tt.want {
				t.Errorf("Analyze(%q).Intent = %q, want %q", tt.query, got, tt.want)
			}
		})
	}
}

func TestExtractEntities(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{
			"capitalized tokens in order",
			"How is the Honda Civic related to Toyota",
			[]string{"How", "Honda", "Civic", "Toyota"},
		},
		{
			"short capitals are dropped",
			"the AI lab at IBM",
			[]string{"IBM"},
		},
		{
			"no capitals",
			"how does an engine work",
			[]string{},
		},
		{
			"duplicates collapse",
			"IBM versus IBM",
			[]string{"IBM"},
		},
		{
			"quoted names keep their case",
			"tell me about 'Honda'",
			[]string{"Honda"},
		},
	}

	a := New(nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.Analyze(tt.query).Entities
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Analyze(%q).Entities = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestExtractKeywords(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{
			"drops short tokens and stop words",
			"explain how the engine works",
			[]string{"explain", "engine", "works"},
		},
		{
			"lowercases",
			"Honda Civic ENGINE",
			[]string{"honda", "civic", "engine"},
		},
		{
			"duplicates collapse",
			"engine engine engine",
			[]string{"engine"},
		},
		{
			"stop words only",
			"what would they have been",
			[]string{},
		},
	}

	a := New(nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.Analyze(tt.query).Keywords
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Analyze(%q).Keywords = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestAnalyzePreservesQuery(t *testing.T) {
	t.Parallel()
	a := New(nil, nil)
	const query = "Compare the Honda Civic against the Toyota Corolla"
	if got := a.Analyze(query).Query; got != query {
		t.Errorf("Query = %q, want the input back", got)
	}
}

func TestCustomMarkers(t *testing.T) {
	t.Parallel()
	a := New(&Config{ComparativeMarkers: []string{"weigh"}}, nil)
	if got := a.Analyze("weigh the two options").Intent; got != types.IntentComparative {
		t.Errorf("Intent = %q, want comparative with a custom marker", got)
	}
	if got := a.Analyze("explain the options").Intent; got != types.IntentAnalytical {
		t.Errorf("Intent = %q, want analytical from default markers", got)
	}
}
