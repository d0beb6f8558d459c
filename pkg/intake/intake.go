// Package intake converts extractor output into validated entity and
// relationship records. Extraction itself happens upstream, in an NER
// service, a local GLiNER or rust-bert model, or an LLM prompted to emit
// JSON. What arrives here is whatever those producers managed to emit, so
// the parsers repair malformed JSON, tolerate the field-name variants seen
// in the wild, and skip records that fail validation instead of sinking the
// whole batch.
package intake

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"gopkg.in/yaml.v3"

	"github.com/soundprediction/legame/pkg/types"
	"github.com/soundprediction/legame/pkg/utils"
)

const (
	// DefaultConfidence is assumed for records that omit a confidence value.
	DefaultConfidence = 1.0
	// DefaultRelationType labels relationships whose records carry no type.
	DefaultRelationType = "related_to"
)

// Extractor turns raw text into intake records. Implementations run a model
// in process; remote extraction services deliver payloads that go through
// the Parser instead.
type Extractor interface {
	Extract(ctx context.Context, text string) (*Payload, error)
	Close() error
}

// Payload is a validated batch ready for linking and graph construction.
// Skipped counts the records dropped during validation.
type Payload struct {
	Entities      []*types.Entity
	Relationships []*types.Relationship
	Skipped       int
}

// EntityRecord is one extracted entity as producers emit it. Each logical
// field keeps the aliases different extractors use for it.
type EntityRecord struct {
	Name       string `json:"name" yaml:"name"`
	Entity     string `json:"entity" yaml:"entity"`
	EntityName string `json:"entity_name" yaml:"entity_name"`

	Type       string `json:"type" yaml:"type"`
	EntityType string `json:"entity_type" yaml:"entity_type"`
	Label      string `json:"label" yaml:"label"`

	Description string   `json:"description" yaml:"description"`
	Confidence  *float64 `json:"confidence" yaml:"confidence"`
}

// GetName returns the entity name, checking all known field aliases.
func (r *EntityRecord) GetName() string {
	if r.Name != "" {
		return r.Name
	}
	if r.Entity != "" {
		return r.Entity
	}
	return r.EntityName
}

// GetType returns the entity type, checking all known field aliases.
func (r *EntityRecord) GetType() string {
	if r.Type != "" {
		return r.Type
	}
	if r.EntityType != "" {
		return r.EntityType
	}
	return r.Label
}

// RelationshipRecord is one extracted relationship as producers emit it.
type RelationshipRecord struct {
	Source string `json:"source" yaml:"source"`
	From   string `json:"from" yaml:"from"`
	Head   string `json:"head" yaml:"head"`

	Target string `json:"target" yaml:"target"`
	To     string `json:"to" yaml:"to"`
	Tail   string `json:"tail" yaml:"tail"`

	RelationType string `json:"relation_type" yaml:"relation_type"`
	Relation     string `json:"relation" yaml:"relation"`
	Type         string `json:"type" yaml:"type"`

	Context    string   `json:"context" yaml:"context"`
	Confidence *float64 `json:"confidence" yaml:"confidence"`
}

// GetSource returns the source entity name, checking all known aliases.
func (r *RelationshipRecord) GetSource() string {
	if r.Source != "" {
		return r.Source
	}
	if r.From != "" {
		return r.From
	}
	return r.Head
}

// GetTarget returns the target entity name, checking all known aliases.
func (r *RelationshipRecord) GetTarget() string {
	if r.Target != "" {
		return r.Target
	}
	if r.To != "" {
		return r.To
	}
	return r.Tail
}

// GetType returns the relation type, checking all known aliases.
func (r *RelationshipRecord) GetType() string {
	if r.RelationType != "" {
		return r.RelationType
	}
	if r.Relation != "" {
		return r.Relation
	}
	return r.Type
}

// Envelope is the wrapped payload format, {"entities": [...],
// "relationships": [...]}, with the key aliases different producers use.
type Envelope struct {
	ExtractedEntities []EntityRecord `json:"extracted_entities" yaml:"extracted_entities"`
	Entities          []EntityRecord `json:"entities" yaml:"entities"`

	ExtractedRelationships []RelationshipRecord `json:"extracted_relationships" yaml:"extracted_relationships"`
	Relationships          []RelationshipRecord `json:"relationships" yaml:"relationships"`
	Relations              []RelationshipRecord `json:"relations" yaml:"relations"`
}

// GetEntities returns the entity list, checking all known key aliases.
func (e *Envelope) GetEntities() []EntityRecord {
	if len(e.ExtractedEntities) > 0 {
		return e.ExtractedEntities
	}
	return e.Entities
}

// GetRelationships returns the relationship list, checking all known key
// aliases.
func (e *Envelope) GetRelationships() []RelationshipRecord {
	if len(e.ExtractedRelationships) > 0 {
		return e.ExtractedRelationships
	}
	if len(e.Relationships) > 0 {
		return e.Relationships
	}
	return e.Relations
}

// Parser decodes extractor payloads. Safe for concurrent use.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a payload parser. A nil logger falls back to
// slog.Default().
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

// ParseJSON decodes a JSON payload. The content is repaired first, then
// parsed with a cascade of strategies: the wrapped envelope format, a bare
// array of entity records, the same two applied to the JSON-looking span of
// a prose response, and finally line scraping for responses that carry no
// JSON at all. Each strategy runs over the repaired form and the raw one.
func (p *Parser) ParseJSON(content string) (*Payload, error) {
	candidates := []string{content}
	if repaired, err := jsonrepair.JSONRepair(content); err == nil && repaired != "" && repaired != content {
		candidates = []string{repaired, content}
	}

	for _, candidate := range candidates {
		if env, ok := decodeJSON(candidate); ok {
			return convert(env, p.logger), nil
		}
	}

	for _, candidate := range candidates {
		start := strings.IndexAny(candidate, "[{")
		end := strings.LastIndexAny(candidate, "]}")
		if start != -1 && end > start {
			if env, ok := decodeJSON(candidate[start : end+1]); ok {
				return convert(env, p.logger), nil
			}
		}
	}

	return p.parseEntitiesFromText(content), nil
}

// decodeJSON tries the wrapped envelope format first, then a bare array of
// entity records.
func decodeJSON(content string) (*Envelope, bool) {
	var env Envelope
	if err := json.Unmarshal([]byte(content), &env); err == nil {
		if len(env.GetEntities()) > 0 || len(env.GetRelationships()) > 0 {
			return &env, true
		}
	}
	var records []EntityRecord
	if err := json.Unmarshal([]byte(content), &records); err == nil && len(records) > 0 {
		return &Envelope{Entities: records}, true
	}
	return nil, false
}

// parseEntitiesFromText scrapes "entity: X" and "name: X" lines out of
// responses that carry no parseable JSON.
func (p *Parser) parseEntitiesFromText(content string) *Payload {
	var records []EntityRecord
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimSpace(strings.TrimLeft(line, "-*"))
		lower := strings.ToLower(line)
		if !strings.HasPrefix(lower, "entity:") && !strings.HasPrefix(lower, "name:") {
			continue
		}
		_, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		name := strings.Trim(strings.TrimSpace(value), `"'.,`)
		if name == "" {
			continue
		}
		records = append(records, EntityRecord{Name: name})
	}
	if len(records) > 0 {
		p.logger.Warn("Payload carried no parseable JSON, scraped entity lines from text",
			"entities", len(records))
	}
	return convert(&Envelope{Entities: records}, p.logger)
}

// ParseYAML decodes a YAML payload: either a mapping in the envelope format
// or a bare list of entity records. Type errors on individual fields do not
// discard the rest of the document, and list items are decoded one by one so
// a single malformed item cannot sink the batch.
func (p *Parser) ParseYAML(content string) (*Payload, error) {
	var env Envelope
	err := yaml.Unmarshal([]byte(content), &env)
	var typeErr *yaml.TypeError
	if err == nil || errors.As(err, &typeErr) {
		if len(env.GetEntities()) > 0 || len(env.GetRelationships()) > 0 {
			return convert(&env, p.logger), nil
		}
	}

	records, err := utils.UnmarshalYAML[EntityRecord](content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse YAML payload: %w", err)
	}
	list := Envelope{Entities: make([]EntityRecord, 0, len(records))}
	for _, rec := range records {
		list.Entities = append(list.Entities, *rec)
	}
	return convert(&list, p.logger), nil
}

// ParseFile reads a payload file and dispatches on its extension: .yaml and
// .yml go to the YAML parser, everything else to the JSON parser.
func (p *Parser) ParseFile(path string) (*Payload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read payload file: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return p.ParseYAML(string(data))
	default:
		return p.ParseJSON(string(data))
	}
}

// convert validates records and maps them onto the core types. Records that
// fail validation are logged and counted, never fatal.
func convert(env *Envelope, logger *slog.Logger) *Payload {
	entities := env.GetEntities()
	relationships := env.GetRelationships()
	payload := &Payload{
		Entities:      make([]*types.Entity, 0, len(entities)),
		Relationships: make([]*types.Relationship, 0, len(relationships)),
	}

	for _, rec := range entities {
		entity := &types.Entity{
			Name:        strings.TrimSpace(rec.GetName()),
			Type:        strings.TrimSpace(rec.GetType()),
			Description: strings.TrimSpace(rec.Description),
			Confidence:  confidenceOrDefault(rec.Confidence),
		}
		if err := entity.Validate(); err != nil {
			logger.Debug("Skipping entity record", "name", rec.GetName(), "error", err)
			payload.Skipped++
			continue
		}
		payload.Entities = append(payload.Entities, entity)
	}

	for _, rec := range relationships {
		rel := &types.Relationship{
			Source:     strings.TrimSpace(rec.GetSource()),
			Target:     strings.TrimSpace(rec.GetTarget()),
			Type:       strings.TrimSpace(rec.GetType()),
			Context:    strings.TrimSpace(rec.Context),
			Confidence: confidenceOrDefault(rec.Confidence),
		}
		if rel.Type == "" {
			rel.Type = DefaultRelationType
		}
		if err := rel.Validate(); err != nil {
			logger.Debug("Skipping relationship record",
				"source", rec.GetSource(), "target", rec.GetTarget(), "error", err)
			payload.Skipped++
			continue
		}
		payload.Relationships = append(payload.Relationships, rel)
	}

	return payload
}

func confidenceOrDefault(c *float64) float64 {
	if c == nil {
		return DefaultConfidence
	}
	return *c
}
