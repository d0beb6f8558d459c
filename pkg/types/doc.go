// Package types defines the core data types for the legame knowledge graph.
//
// This package contains the fundamental types used throughout legame:
//   - Entity: A named thing worth linking and reasoning over
//   - EntityCluster: Entity records resolved to the same real-world thing
//   - Relationship: A directed, typed edge between canonical entities
//   - Document: A retrievable unit of content for vector and keyword search
//   - QueryAnalysis: The structured reading of a raw query
//   - SearchResult / QueryResponse: Retrieval and processing outputs
//
// # Link Methods
//
// Entity resolution reports how a mention matched a cluster:
//   - LinkExact: case-insensitive, whitespace-normalized name match
//   - LinkFuzzy: character-sequence similarity match
//   - LinkSemantic: profile-text cosine similarity match
//   - LinkNew: no cluster scored high enough, a fresh one was created
//
// # Validation
//
// Types provide Validate() and ValidateForCreate() methods for input validation:
//
//	entity := &types.Entity{Name: "Honda Civic", Type: "car"}
//	if err := entity.Validate(); err != nil {
//	    // Handle validation error
//	}
//
// # JSON Serialization
//
// All types are designed to be JSON-serializable with appropriate struct tags.
// The QueryResponse envelope initializes every collection so consumers never
// see null fields.
package types
