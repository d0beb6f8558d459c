package types

import (
	"fmt"
	"strings"
)

// Intent classifies what kind of answer a query is after.
type Intent string

const (
	// IntentFactual covers direct lookups with no analysis cue.
	IntentFactual Intent = "factual"
	// IntentAnalytical covers queries asking to analyze, explain, or describe.
	IntentAnalytical Intent = "analytical"
	// IntentComparative covers queries weighing one thing against another.
	IntentComparative Intent = "comparative"
)

// QueryAnalysis is the structured reading of a raw query string.
type QueryAnalysis struct {
	Query    string   `json:"query"`
	Intent   Intent   `json:"intent"`
	Entities []string `json:"entities"`
	Keywords []string `json:"keywords"`
}

// ResultType records which retrieval branch produced a search result.
type ResultType string

const (
	ResultTypeVector  ResultType = "vector"
	ResultTypeGraph   ResultType = "graph"
	ResultTypeKeyword ResultType = "keyword"
)

// SearchResult is a single scored hit from any retrieval branch.
type SearchResult struct {
	ID         string                 `json:"id,omitempty"`
	Content    string                 `json:"content"`
	Score      float64                `json:"score"`
	ResultType ResultType             `json:"result_type"`
	Entity     string                 `json:"entity,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// ReasoningPath is an ordered walk through the graph from Source to Target.
// Path holds the node sequence including both endpoints, and Relationships
// the edge types between consecutive nodes, so len(Relationships) ==
// len(Path)-1 == PathLength.
type ReasoningPath struct {
	Source        string   `json:"source"`
	Target        string   `json:"target"`
	Path          []string `json:"path"`
	Relationships []string `json:"relationships"`
	Confidence    float64  `json:"confidence"`
	PathLength    int      `json:"path_length"`
}

// Hops returns the number of edges in the path, derived from the node
// sequence rather than trusting PathLength.
func (p *ReasoningPath) Hops() int {
	if p == nil || len(p.Path) == 0 {
		return 0
	}
	return len(p.Path) - 1
}

// String renders the walk with its edge types, "a -[contains]-> b".
func (p *ReasoningPath) String() string {
	if p == nil {
		return ""
	}
	var b strings.Builder
	for i, node := range p.Path {
		if i > 0 && i-1 < len(p.Relationships) {
			fmt.Fprintf(&b, " -[%s]-> ", p.Relationships[i-1])
		} else if i > 0 {
			b.WriteString(" -> ")
		}
		b.WriteString(node)
	}
	return b.String()
}

// RelatedEntity is a neighbor discovered by graph expansion, with the
// confidence decayed by distance from the origin.
type RelatedEntity struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// Centrality reports how connected an entity is.
type Centrality struct {
	Entity string `json:"entity"`
	// Degree is the raw count of distinct neighbors.
	Degree int `json:"degree"`
	// Score is the degree normalized by the rest of the graph, in [0, 1].
	Score float64 `json:"score"`
}

// RelationshipExplanation is the composed answer to "how are these two
// entities connected": the discovered paths, the relationships inferred from
// them, and a human-readable trace of the reasoning.
type RelationshipExplanation struct {
	Source                string           `json:"source"`
	Target                string           `json:"target"`
	Paths                 []*ReasoningPath `json:"paths"`
	InferredRelationships []*Relationship  `json:"inferred_relationships"`
	ReasoningSteps        []string         `json:"reasoning_steps"`
	Confidence            float64          `json:"confidence"`
}

// Strategy identifies which processing path answered a query.
type Strategy string

const (
	StrategyRelationship      Strategy = "relationship_query"
	StrategyMultiHop          Strategy = "multi_hop"
	StrategyEntityExploration Strategy = "entity_exploration"
	StrategyFallback          Strategy = "fallback"
)

// QueryResponse is the uniform envelope every processing strategy returns.
// Fields a strategy does not populate are empty, never absent.
type QueryResponse struct {
	Query                 string                  `json:"query"`
	Strategy              Strategy                `json:"strategy"`
	Results               []*SearchResult         `json:"results"`
	ReasoningPaths        []*ReasoningPath        `json:"reasoning_paths"`
	InferredRelationships []*Relationship         `json:"inferred_relationships"`
	EntityClusters        map[int][]RelatedEntity `json:"entity_clusters"`
	Explanation           []string                `json:"explanation"`
	Confidence            float64                 `json:"confidence"`
}

// NewQueryResponse returns an envelope with every collection initialized so
// callers and JSON consumers never see null fields.
func NewQueryResponse(query string, strategy Strategy) *QueryResponse {
	return &QueryResponse{
		Query:                 query,
		Strategy:              strategy,
		Results:               []*SearchResult{},
		ReasoningPaths:        []*ReasoningPath{},
		InferredRelationships: []*Relationship{},
		EntityClusters:        map[int][]RelatedEntity{},
		Explanation:           []string{},
	}
}

// RetrieveOptions holds per-call configuration for fusion retrieval.
type RetrieveOptions struct {
	// TopK is the maximum number of results to return.
	TopK int
	// GraphDepth is how many hops the graph branch expands.
	GraphDepth int
	// Branches restricts retrieval to the named branches. Empty means all.
	Branches []ResultType
}

// Validate checks if the options have valid values.
func (o *RetrieveOptions) Validate() error {
	if o.TopK < 0 {
		return ErrInvalidLimit
	}
	return nil
}

// WithDefaults returns a copy of the options with default values applied.
func (o *RetrieveOptions) WithDefaults() *RetrieveOptions {
	if o == nil {
		return &RetrieveOptions{
			TopK:       10,
			GraphDepth: 2,
		}
	}
	result := *o
	if result.TopK == 0 {
		result.TopK = 10
	}
	if result.GraphDepth == 0 {
		result.GraphDepth = 2
	}
	return &result
}
