package intake

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/soundprediction/go-rust-bert/pkg/rustbert"

	"github.com/soundprediction/legame/pkg/utils"
)

// RustBertExtractor produces entity records with a rust-bert NER pipeline.
// The model is loaded lazily on first use. NER predicts no relations, so
// payloads carry entities only.
type RustBertExtractor struct {
	modelID string
	model   *rustbert.NERModel
	logger  *slog.Logger
	mu      sync.Mutex
}

// NewRustBertExtractor creates an extractor. An empty modelID selects the
// library's default BERT NER model; otherwise artifacts for modelID are
// downloaded and loaded from files.
func NewRustBertExtractor(modelID string, logger *slog.Logger) *RustBertExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &RustBertExtractor{modelID: modelID, logger: logger}
}

// load must be called with the mutex held.
func (r *RustBertExtractor) load() error {
	if r.model != nil {
		return nil
	}

	if r.modelID != "" {
		r.logger.Info("Loading NER model", "model", r.modelID)
		modelPath, configPath, vocabPath, mergesPath, err := rustbert.DownloadArtifacts(r.modelID, "")
		if err != nil {
			return fmt.Errorf("failed to download artifacts for %s: %w", r.modelID, err)
		}
		model, err := rustbert.NewNERModelFromFiles(modelPath, configPath, vocabPath, mergesPath, rustbert.ModelTypeBert)
		if err != nil {
			return fmt.Errorf("failed to load NER model %s: %w", r.modelID, err)
		}
		r.model = model
		return nil
	}

	model, err := rustbert.NewNERModel()
	if err != nil {
		return fmt.Errorf("failed to load default NER model: %w", err)
	}
	r.model = model
	return nil
}

// Extract runs NER over the text and returns the validated payload. Labels
// lose their B-/I- tagging prefix so entity types read PER, ORG, LOC.
func (r *RustBertExtractor) Extract(ctx context.Context, text string) (_ *Payload, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer utils.RecoverAsError(&err)

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.load(); err != nil {
		return nil, err
	}

	results, err := r.model.Predict(text)
	if err != nil {
		return nil, fmt.Errorf("NER prediction failed: %w", err)
	}

	env := &Envelope{Entities: make([]EntityRecord, 0, len(results))}
	for _, result := range results {
		confidence := result.Score
		env.Entities = append(env.Entities, EntityRecord{
			Name:       result.Word,
			Type:       stripBIOPrefix(result.Label),
			Confidence: &confidence,
		})
	}
	return convert(env, r.logger), nil
}

// stripBIOPrefix removes the B-/I- tagging-scheme prefix from a NER label.
func stripBIOPrefix(label string) string {
	if len(label) > 2 && (label[0] == 'B' || label[0] == 'I') && label[1] == '-' {
		return label[2:]
	}
	return label
}

// Close releases the loaded model. A later Extract reloads it.
func (r *RustBertExtractor) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.model != nil {
		r.model.Close()
		r.model = nil
	}
	return nil
}
