// Package resolver links entity records that denote the same real-world
// identity. Matching runs three strategies in precedence order: exact
// normalized name and type, character-sequence similarity with an initialism
// boost, and TF-IDF cosine over the entity profile text. Records that match
// nothing well enough start a new singleton cluster.
package resolver

import (
	"log/slog"
	"sync"

	"github.com/soundprediction/legame/pkg/lexical"
	"github.com/soundprediction/legame/pkg/types"
)

// Config holds the similarity thresholds for entity linking. The stock
// values are carried over from tuning runs, not derived, so treat them as
// starting points.
type Config struct {
	// MatchThreshold is the floor any winning candidate must clear.
	MatchThreshold float64
	// FuzzyThreshold accepts a fuzzy candidate at or above this score. The
	// bound is inclusive so the initialism boost, which floors scores at
	// exactly this value, still qualifies.
	FuzzyThreshold float64
	// SemanticThreshold accepts a semantic candidate strictly above this
	// score.
	SemanticThreshold float64
}

// WithDefaults returns a copy of the config with default values applied.
func (c *Config) WithDefaults() *Config {
	if c == nil {
		return &Config{
			MatchThreshold:    0.6,
			FuzzyThreshold:    0.8,
			SemanticThreshold: 0.7,
		}
	}
	result := *c
	if result.MatchThreshold == 0 {
		result.MatchThreshold = 0.6
	}
	if result.FuzzyThreshold == 0 {
		result.FuzzyThreshold = 0.8
	}
	if result.SemanticThreshold == 0 {
		result.SemanticThreshold = 0.7
	}
	return &result
}

// Resolver links new entity records against the clusters in its store.
type Resolver struct {
	// linkMu serializes writers so the match-then-insert sequence of a
	// link cannot interleave with another link or merge.
	linkMu sync.Mutex
	store  *Store
	config *Config
	logger *slog.Logger
}

// NewResolver creates a resolver over the given store. A nil config uses
// the default thresholds and a nil logger falls back to slog.Default().
func NewResolver(store *Store, config *Config, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		store:  store,
		config: config.WithDefaults(),
		logger: logger,
	}
}

// Store returns the underlying entity store.
func (r *Resolver) Store() *Store {
	return r.store
}

// Link resolves one entity against the store. An accepted match appends the
// entity to the winning cluster; otherwise a new singleton cluster is
// created and the link is reported with type "new". Invalid entities return
// the validation error unwrapped so callers can decide to skip the record.
func (r *Resolver) Link(entity *types.Entity) (*types.EntityLink, error) {
	if err := entity.Validate(); err != nil {
		return nil, err
	}

	r.linkMu.Lock()
	defer r.linkMu.Unlock()

	match := r.bestMatch(entity)
	if match != nil && match.score > r.config.MatchThreshold {
		if err := r.store.Append(match.cluster.ID, entity); err != nil {
			return nil, err
		}
		r.logger.Debug("linked entity",
			"name", entity.Name,
			"target", match.cluster.Canonical,
			"method", match.method,
			"score", match.score)
		return &types.EntityLink{
			SourceEntity: entity.Name,
			TargetEntity: match.cluster.Canonical,
			Score:        match.score,
			LinkType:     match.method,
			Confidence:   linkConfidence(match.score, entity.Confidence),
			ClusterID:    match.cluster.ID,
		}, nil
	}

	cluster, err := r.store.Add(entity)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("created singleton cluster", "name", entity.Name, "cluster_id", cluster.ID)
	return &types.EntityLink{
		SourceEntity: entity.Name,
		TargetEntity: entity.Name,
		Score:        0,
		LinkType:     types.LinkNew,
		Confidence:   entity.Confidence,
		ClusterID:    cluster.ID,
	}, nil
}

// LinkAll resolves a batch of entities. Malformed records are skipped with a
// warning rather than failing the batch, and an empty input yields an empty
// output.
func (r *Resolver) LinkAll(entities []*types.Entity) []*types.EntityLink {
	links := make([]*types.EntityLink, 0, len(entities))
	for _, entity := range entities {
		if entity == nil {
			continue
		}
		link, err := r.Link(entity)
		if err != nil {
			r.logger.Warn("skipping invalid entity record", "name", entity.Name, "error", err)
			continue
		}
		links = append(links, link)
	}
	return links
}

// Disambiguate picks the cluster member that best fits the given context.
// Candidates are members whose name similarity to the entity exceeds the
// match threshold; they are ranked by TF-IDF cosine of their profile against
// the context. If no member qualifies the input entity itself is returned.
func (r *Resolver) Disambiguate(entity *types.Entity, context string) *types.Entity {
	if entity == nil {
		return nil
	}

	name := lexical.NormalizeName(entity.Name)
	var candidates []*types.Entity
	for _, member := range r.store.Entities() {
		if lexical.SimilarityRatio(name, lexical.NormalizeName(member.Name)) > r.config.MatchThreshold {
			candidates = append(candidates, member)
		}
	}
	if len(candidates) == 0 || context == "" {
		return entity
	}

	corpus := make([]string, 0, len(candidates)+1)
	for _, candidate := range candidates {
		corpus = append(corpus, candidate.Profile())
	}
	corpus = append(corpus, context)
	vectorizer := lexical.NewVectorizer(corpus)
	contextVec := vectorizer.Vector(context)

	best := candidates[0]
	bestScore := lexical.Cosine(vectorizer.Vector(best.Profile()), contextVec)
	for _, candidate := range candidates[1:] {
		score := lexical.Cosine(vectorizer.Vector(candidate.Profile()), contextVec)
		if score > bestScore {
			best = candidate
			bestScore = score
		}
	}
	r.logger.Debug("disambiguated entity", "name", entity.Name, "chosen", best.Name, "score", bestScore)
	return best
}

// MergeClusters moves all members of cluster b into cluster a and deletes b.
// Merging is never triggered automatically during linking; callers decide
// when two clusters denote the same identity.
func (r *Resolver) MergeClusters(aID, bID string) error {
	r.linkMu.Lock()
	defer r.linkMu.Unlock()
	if err := r.store.Merge(aID, bID); err != nil {
		return err
	}
	r.logger.Info("merged clusters", "into", aID, "from", bID)
	return nil
}

// candidate is an internal match against one cluster.
type candidate struct {
	cluster *types.EntityCluster
	method  types.LinkMethod
	score   float64
}

// bestMatch runs the three matching strategies against every cluster member
// and returns the winning candidate, or nil when nothing qualifies. An exact
// hit short-circuits; otherwise the higher of the accepted fuzzy and
// semantic candidates wins, fuzzy first on ties.
func (r *Resolver) bestMatch(entity *types.Entity) *candidate {
	clusters := r.store.Clusters()
	if len(clusters) == 0 {
		return nil
	}

	name := lexical.NormalizeName(entity.Name)
	entityType := lexical.NormalizeName(entity.Type)

	var bestFuzzy *candidate
	for _, cluster := range clusters {
		for _, member := range cluster.Members {
			memberName := lexical.NormalizeName(member.Name)
			if memberName == name && lexical.NormalizeName(member.Type) == entityType {
				return &candidate{cluster: cluster, method: types.LinkExact, score: 1.0}
			}

			score := lexical.SimilarityRatio(name, memberName)
			if lexical.IsInitialism(entity.Name, member.Name) && score < r.config.FuzzyThreshold {
				score = r.config.FuzzyThreshold
			}
			if bestFuzzy == nil || score > bestFuzzy.score {
				bestFuzzy = &candidate{cluster: cluster, method: types.LinkFuzzy, score: score}
			}
		}
	}

	bestSemantic := r.bestSemantic(entity, clusters)

	var winner *candidate
	if bestFuzzy != nil && bestFuzzy.score >= r.config.FuzzyThreshold {
		winner = bestFuzzy
	}
	if bestSemantic != nil && bestSemantic.score > r.config.SemanticThreshold {
		if winner == nil || bestSemantic.score > winner.score {
			winner = bestSemantic
		}
	}
	return winner
}

// bestSemantic scores the entity profile against every member profile with
// a TF-IDF vectorizer fit on all of them together.
func (r *Resolver) bestSemantic(entity *types.Entity, clusters []*types.EntityCluster) *candidate {
	profile := entity.Profile()
	corpus := []string{profile}
	for _, cluster := range clusters {
		for _, member := range cluster.Members {
			corpus = append(corpus, member.Profile())
		}
	}

	vectorizer := lexical.NewVectorizer(corpus)
	entityVec := vectorizer.Vector(profile)
	if len(entityVec) == 0 {
		return nil
	}

	var best *candidate
	for _, cluster := range clusters {
		for _, member := range cluster.Members {
			score := lexical.Cosine(entityVec, vectorizer.Vector(member.Profile()))
			if best == nil || score > best.score {
				best = &candidate{cluster: cluster, method: types.LinkSemantic, score: score}
			}
		}
	}
	return best
}

func linkConfidence(score, entityConfidence float64) float64 {
	if entityConfidence > 0 {
		return score * entityConfidence
	}
	return score
}
