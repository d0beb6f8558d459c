// Package analyzer classifies query intent and extracts candidate entity
// mentions and keywords. It is a lexical heuristic, not NER: downstream
// consumers are expected to tolerate noisy mentions.
package analyzer

import (
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/soundprediction/legame/pkg/lexical"
	"github.com/soundprediction/legame/pkg/types"
)

// Config holds the intent marker words and extraction length bounds.
type Config struct {
	// ComparativeMarkers classify a query as comparative when any of them
	// appears in it. Checked before AnalyticalMarkers.
	ComparativeMarkers []string
	// AnalyticalMarkers classify a query as analytical.
	AnalyticalMarkers []string
	// MinEntityLength is the minimum rune count for an entity mention.
	MinEntityLength int
	// MinKeywordLength is the minimum rune count for a keyword.
	MinKeywordLength int
}

// WithDefaults returns a copy of the config with default values applied.
func (c *Config) WithDefaults() *Config {
	if c == nil {
		c = &Config{}
	}
	result := *c
	if len(result.ComparativeMarkers) == 0 {
		result.ComparativeMarkers = []string{"compare", "versus"}
	}
	if len(result.AnalyticalMarkers) == 0 {
		result.AnalyticalMarkers = []string{"analyze", "explain", "describe"}
	}
	if result.MinEntityLength == 0 {
		result.MinEntityLength = 3
	}
	if result.MinKeywordLength == 0 {
		result.MinKeywordLength = 4
	}
	return &result
}

// Analyzer turns raw query strings into a structured QueryAnalysis.
type Analyzer struct {
	config *Config
	logger *slog.Logger
}

// New creates an analyzer. A nil config uses defaults and a nil logger
// falls back to slog.Default().
func New(config *Config, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{
		config: config.WithDefaults(),
		logger: logger,
	}
}

// Analyze classifies the query's intent and extracts entity mentions and
// keywords. It never fails: an empty or unparseable query comes back as
// factual with empty mention and keyword lists.
func (a *Analyzer) Analyze(query string) *types.QueryAnalysis {
	analysis := &types.QueryAnalysis{
		Query:    query,
		Intent:   a.classify(query),
		Entities: extractEntities(query, a.config.MinEntityLength),
		Keywords: extractKeywords(query, a.config.MinKeywordLength),
	}
	a.logger.Debug("query analyzed",
		"intent", analysis.Intent,
		"entities", len(analysis.Entities),
		"keywords", len(analysis.Keywords))
	return analysis
}

func (a *Analyzer) classify(query string) types.Intent {
	lower := strings.ToLower(query)
	for _, marker := range a.config.ComparativeMarkers {
		if strings.Contains(lower, marker) {
			return types.IntentComparative
		}
	}
	for _, marker := range a.config.AnalyticalMarkers {
		if strings.Contains(lower, marker) {
			return types.IntentAnalytical
		}
	}
	return types.IntentFactual
}

// extractEntities collects capitalized tokens of at least minLength runes,
// deduplicated in order of first appearance.
func extractEntities(query string, minLength int) []string {
	entities := []string{}
	seen := make(map[string]bool)
	for _, token := range splitWords(query) {
		first, _ := utf8.DecodeRuneInString(token)
		if !unicode.IsUpper(first) || utf8.RuneCountInString(token) < minLength {
			continue
		}
		if seen[token] {
			continue
		}
		seen[token] = true
		entities = append(entities, token)
	}
	return entities
}

// extractKeywords collects lowercased tokens of at least minLength runes
// that are not stop words, deduplicated in order of first appearance.
func extractKeywords(query string, minLength int) []string {
	keywords := []string{}
	seen := make(map[string]bool)
	for _, token := range lexical.Tokenize(query) {
		if utf8.RuneCountInString(token) < minLength || lexical.IsStopWord(token) {
			continue
		}
		if seen[token] {
			continue
		}
		seen[token] = true
		keywords = append(keywords, token)
	}
	return keywords
}

// splitWords breaks a query into case-preserving word tokens, keeping
// interior apostrophes but trimming quoting ones.
func splitWords(query string) []string {
	fields := strings.FieldsFunc(query, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
	words := fields[:0]
	for _, field := range fields {
		if word := strings.Trim(field, "'"); word != "" {
			words = append(words, word)
		}
	}
	return words
}
