package intake

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/soundprediction/go-gline-rs/pkg/gline"

	"github.com/soundprediction/legame/pkg/utils"
)

// DefaultGLiNERLabels are the entity types predicted when the caller does
// not supply a label set.
var DefaultGLiNERLabels = []string{
	"person", "organization", "location", "product", "component", "specification",
}

// GLiNERConfig configures the GLiNER extractor.
type GLiNERConfig struct {
	// ModelID is a HuggingFace model ID or a local directory holding
	// model.onnx and tokenizer.json.
	ModelID string
	// RelationModelID optionally enables relation extraction.
	RelationModelID string
	// Labels are the entity types the span model predicts.
	Labels []string
	// RelationSchema maps a relation type to its allowed head and tail
	// label sets.
	RelationSchema map[string][2][]string
}

// GLiNERExtractor produces entity and relationship records with GLiNER
// span and relation models running in process over ONNX.
type GLiNERExtractor struct {
	spanModel     *gline.Model
	relationModel *gline.RelationModel
	config        GLiNERConfig
	logger        *slog.Logger
	mu            sync.Mutex
}

// NewGLiNERExtractor initializes the gline runtime and loads the configured
// models. A nil logger falls back to slog.Default().
func NewGLiNERExtractor(config GLiNERConfig, logger *slog.Logger) (*GLiNERExtractor, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(config.Labels) == 0 {
		config.Labels = DefaultGLiNERLabels
	}

	if err := gline.Init(); err != nil {
		return nil, fmt.Errorf("failed to init gline runtime: %w", err)
	}

	spanModel, err := loadSpanModel(config.ModelID)
	if err != nil {
		return nil, fmt.Errorf("failed to load span model %q: %w", config.ModelID, err)
	}

	extractor := &GLiNERExtractor{
		spanModel: spanModel,
		config:    config,
		logger:    logger,
	}

	if config.RelationModelID != "" {
		relationModel, err := loadRelationModel(config.RelationModelID)
		if err != nil {
			spanModel.Close()
			return nil, fmt.Errorf("failed to load relation model %q: %w", config.RelationModelID, err)
		}
		for relation, sides := range config.RelationSchema {
			if err := relationModel.AddRelationSchema(relation, sides[0], sides[1]); err != nil {
				spanModel.Close()
				relationModel.Close()
				return nil, fmt.Errorf("failed to register relation schema %q: %w", relation, err)
			}
		}
		extractor.relationModel = relationModel
	}

	return extractor, nil
}

// loadSpanModel loads from a local directory when modelID is one, otherwise
// treats modelID as a HuggingFace ID and downloads it.
func loadSpanModel(modelID string) (*gline.Model, error) {
	if info, err := os.Stat(modelID); err == nil && info.IsDir() {
		return gline.NewSpanModel(
			filepath.Join(modelID, "model.onnx"),
			filepath.Join(modelID, "tokenizer.json"),
		)
	}
	return gline.NewSpanModelFromHF(modelID)
}

func loadRelationModel(modelID string) (*gline.RelationModel, error) {
	if info, err := os.Stat(modelID); err == nil && info.IsDir() {
		return gline.NewRelationModel(
			filepath.Join(modelID, "model.onnx"),
			filepath.Join(modelID, "tokenizer.json"),
		)
	}
	return gline.NewRelationModelFromHF(modelID)
}

// Extract runs span prediction over the text, plus relation prediction when
// a relation model is loaded, and returns the validated payload.
func (g *GLiNERExtractor) Extract(ctx context.Context, text string) (_ *Payload, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer utils.RecoverAsError(&err)

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.spanModel == nil {
		return nil, fmt.Errorf("gliner extractor is closed")
	}

	spans, err := g.spanModel.Predict([]string{text}, g.config.Labels)
	if err != nil {
		return nil, fmt.Errorf("failed to predict entity spans: %w", err)
	}

	env := &Envelope{}
	if len(spans) > 0 {
		for _, span := range spans[0] {
			confidence := float64(span.Probability)
			env.Entities = append(env.Entities, EntityRecord{
				Name:       span.Text,
				Type:       span.Label,
				Confidence: &confidence,
			})
		}
	}

	if g.relationModel != nil {
		relations, err := g.relationModel.Predict([]string{text}, g.relationLabels())
		if err != nil {
			return nil, fmt.Errorf("failed to predict relations: %w", err)
		}
		if len(relations) > 0 {
			for _, relation := range relations[0] {
				confidence := float64(relation.Probability)
				env.Relationships = append(env.Relationships, RelationshipRecord{
					Source:       relation.Source,
					Target:       relation.Target,
					RelationType: relation.Relation,
					Confidence:   &confidence,
				})
			}
		}
	}

	return convert(env, g.logger), nil
}

// relationLabels collects the head and tail labels the relation schema
// mentions, falling back to the span labels for an empty schema.
func (g *GLiNERExtractor) relationLabels() []string {
	seen := make(map[string]bool)
	var labels []string
	for _, sides := range g.config.RelationSchema {
		for _, side := range sides {
			for _, label := range side {
				if !seen[label] {
					seen[label] = true
					labels = append(labels, label)
				}
			}
		}
	}
	if len(labels) == 0 {
		return g.config.Labels
	}
	return labels
}

// Close releases the loaded models. Extract fails after Close.
func (g *GLiNERExtractor) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.spanModel != nil {
		g.spanModel.Close()
		g.spanModel = nil
	}
	if g.relationModel != nil {
		g.relationModel.Close()
		g.relationModel = nil
	}
	return nil
}
