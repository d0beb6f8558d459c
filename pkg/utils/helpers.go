package utils

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

const (
	DefaultSemaphoreLimit = 20
)

// GetSemaphoreLimit returns the concurrency limit for bulk operations from
// the SEMAPHORE_LIMIT environment variable, or the default.
func GetSemaphoreLimit() int {
	val := os.Getenv("SEMAPHORE_LIMIT")
	if val == "" {
		return DefaultSemaphoreLimit
	}
	limit, err := strconv.Atoi(val)
	if err != nil || limit <= 0 {
		return DefaultSemaphoreLimit
	}
	return limit
}

// GenerateUUID generates a new UUID7 string.
func GenerateUUID() string {
	return uuid.Must(uuid.NewV7()).String()
}

var luceneOperatorRe = regexp.MustCompile(`\b(AND|OR|NOT)\b`)

// LuceneSanitize escapes special characters and neutralizes boolean
// operators in a query before passing it to a Lucene fulltext index.
func LuceneSanitize(query string) string {
	replacer := strings.NewReplacer(
		"+", `\+`,
		"-", `\-`,
		"&", `\&`,
		"|", `\|`,
		"!", `\!`,
		"(", `\(`,
		")", `\)`,
		"{", `\{`,
		"}", `\}`,
		"[", `\[`,
		"]", `\]`,
		"^", `\^`,
		"\"", `\"`,
		"~", `\~`,
		"*", `\*`,
		"?", `\?`,
		":", `\:`,
		"\\", `\\`,
		"/", `\/`,
	)
	escaped := replacer.Replace(query)
	return luceneOperatorRe.ReplaceAllStringFunc(escaped, strings.ToLower)
}

// UnmarshalYAML parses a YAML list and unmarshals it into a slice of structs.
// Invalid items are skipped so one malformed record does not sink the batch.
// An error is returned only when the outer structure cannot be parsed or
// every item fails to decode.
func UnmarshalYAML[T any](yamlString string) ([]*T, error) {
	var nodes []yaml.Node
	if err := yaml.Unmarshal([]byte(yamlString), &nodes); err != nil {
		return nil, fmt.Errorf("failed to parse YAML structure: %w", err)
	}

	results := make([]*T, 0, len(nodes))
	var failures []error
	for i, node := range nodes {
		var item T
		if err := node.Decode(&item); err != nil {
			failures = append(failures, fmt.Errorf("failed to unmarshal item %d: %v", i, err))
			continue
		}
		results = append(results, &item)
	}

	if len(results) == 0 && len(failures) > 0 {
		return nil, fmt.Errorf("failed to unmarshal any items: %v", failures[0])
	}
	return results, nil
}
