package types

import (
	"errors"
	"strings"
	"time"
	"unicode"
)

// Validation errors
var (
	ErrEmptyName         = errors.New("name cannot be empty")
	ErrInvalidName       = errors.New("name must be at least 2 characters with an alphanumeric character")
	ErrEmptyID           = errors.New("id cannot be empty")
	ErrEmptyContent      = errors.New("content cannot be empty")
	ErrEmptyQuery        = errors.New("query cannot be empty")
	ErrEmptySource       = errors.New("relationship source cannot be empty")
	ErrEmptyTarget       = errors.New("relationship target cannot be empty")
	ErrSelfRelationship  = errors.New("relationship source and target must differ")
	ErrInvalidConfidence = errors.New("confidence must be between 0 and 1")
	ErrInvalidLimit      = errors.New("limit must be positive")
)

// Entity represents a named thing in the knowledge graph: a person, product,
// organization, component, or any other unit worth linking and reasoning over.
// Identity is derived by clustering, never assigned up front.
type Entity struct {
	ID          string  `json:"id,omitempty" mapstructure:"id"`
	Name        string  `json:"name" mapstructure:"name"`
	Type        string  `json:"type,omitempty" mapstructure:"type"`
	Description string  `json:"description,omitempty" mapstructure:"description"`
	Confidence  float64 `json:"confidence,omitempty" mapstructure:"confidence"`

	// Common fields
	Embedding []float32              `json:"embedding,omitempty" mapstructure:"embedding"`
	Metadata  map[string]interface{} `json:"metadata,omitempty" mapstructure:"metadata"`

	// Source tracking
	SourceChunk string    `json:"source_chunk,omitempty" mapstructure:"source_chunk"`
	CreatedAt   time.Time `json:"created_at,omitempty" mapstructure:"created_at"`
}

// Validate checks if the Entity has all required fields set. A surviving
// entity always has a trimmed name of at least two characters containing at
// least one letter or digit, and a confidence inside [0, 1].
func (e *Entity) Validate() error {
	name := strings.TrimSpace(e.Name)
	if name == "" {
		return ErrEmptyName
	}
	runes := []rune(name)
	if len(runes) < 2 {
		return ErrInvalidName
	}
	hasAlnum := false
	for _, r := range runes {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			hasAlnum = true
			break
		}
	}
	if !hasAlnum {
		return ErrInvalidName
	}
	if e.Confidence < 0 || e.Confidence > 1 {
		return ErrInvalidConfidence
	}
	return nil
}

// ValidateForCreate checks if the Entity has all required fields for creation.
func (e *Entity) ValidateForCreate() error {
	if e.ID == "" {
		return ErrEmptyID
	}
	return e.Validate()
}

// Profile is the text an entity is embedded and compared under. It
// concatenates name, type, and description in that order.
func (e *Entity) Profile() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{e.Name, e.Type, e.Description} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// Relationship represents a directed, typed edge between two canonical
// entities. Confidence is the extractor's belief in the statement, in [0, 1].
type Relationship struct {
	Source     string  `json:"source"`
	Target     string  `json:"target"`
	Type       string  `json:"relation_type"`
	Context    string  `json:"context,omitempty"`
	Confidence float64 `json:"confidence"`

	// Inferred marks relationships derived by transitive chaining rather
	// than asserted directly. Via lists the intermediate entities.
	Inferred bool     `json:"inferred,omitempty"`
	Via      []string `json:"via,omitempty"`

	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Validate checks if the Relationship has all required fields set.
func (r *Relationship) Validate() error {
	if strings.TrimSpace(r.Source) == "" {
		return ErrEmptySource
	}
	if strings.TrimSpace(r.Target) == "" {
		return ErrEmptyTarget
	}
	if r.Confidence < 0 || r.Confidence > 1 {
		return ErrInvalidConfidence
	}
	return nil
}

// LinkMethod identifies which matching stage produced an entity link.
type LinkMethod string

const (
	// LinkExact is a case-insensitive, whitespace-normalized name match.
	LinkExact LinkMethod = "exact"
	// LinkFuzzy is a character-sequence similarity match.
	LinkFuzzy LinkMethod = "fuzzy"
	// LinkSemantic is a profile-text cosine similarity match.
	LinkSemantic LinkMethod = "semantic"
	// LinkNew means no cluster scored high enough and a fresh one was created.
	LinkNew LinkMethod = "new"
)

// EntityLink is the outcome of resolving an entity against the store.
type EntityLink struct {
	// SourceEntity is the name of the entity that was resolved.
	SourceEntity string `json:"source_entity"`
	// TargetEntity is the canonical name of the matched cluster. For new
	// singleton clusters it equals SourceEntity.
	TargetEntity string `json:"target_entity"`
	// Score is the winning similarity score, 1.0 for exact matches.
	Score float64 `json:"similarity_score"`
	// LinkType records which matching stage won.
	LinkType LinkMethod `json:"link_type"`
	// Confidence combines the similarity score with the entity's own
	// extraction confidence.
	Confidence float64 `json:"confidence"`
	// ClusterID identifies the matched (or newly created) cluster.
	ClusterID string `json:"cluster_id,omitempty"`
}

// EntityCluster groups entity records that refer to the same real-world
// thing. The first member registered becomes the canonical representative.
type EntityCluster struct {
	ID        string    `json:"id"`
	Canonical string    `json:"canonical"`
	Members   []*Entity `json:"members"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Size returns the number of member records in the cluster.
func (c *EntityCluster) Size() int {
	if c == nil {
		return 0
	}
	return len(c.Members)
}

// Community is a structural group of graph nodes that link densely to each
// other. Unlike an EntityCluster it says nothing about shared identity.
type Community struct {
	ID      int      `json:"id"`
	Members []string `json:"members"`
}

// Document is a retrievable unit of content: a chunk, a passage, or a whole
// record, indexed for vector and keyword search.
type Document struct {
	ID      string `json:"id" mapstructure:"id"`
	Content string `json:"content" mapstructure:"content"`

	// Entities lists canonical entity names mentioned in the content, used
	// to join retrieval results back onto the graph.
	Entities []string `json:"entities,omitempty" mapstructure:"entities"`

	Embedding []float32              `json:"embedding,omitempty" mapstructure:"embedding"`
	Metadata  map[string]interface{} `json:"metadata,omitempty" mapstructure:"metadata"`
	CreatedAt time.Time              `json:"created_at,omitempty" mapstructure:"created_at"`
}

// Validate checks if the Document has all required fields set.
func (d *Document) Validate() error {
	if strings.TrimSpace(d.Content) == "" {
		return ErrEmptyContent
	}
	return nil
}

// ValidateForCreate checks if the Document has all required fields for creation.
func (d *Document) ValidateForCreate() error {
	if d.ID == "" {
		return ErrEmptyID
	}
	return d.Validate()
}
