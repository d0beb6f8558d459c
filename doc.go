// Package legame provides a hybrid graph retrieval library for Go.
//
// Legame builds an in-process relationship graph from entities and
// relationships delivered by an upstream extractor, resolves entity
// identities across mentions, and answers queries by fusing vector
// similarity, graph traversal, and keyword overlap into one ranked result
// list.
//
// # Basic Usage
//
// Create a client with an index and an embedder:
//
//	// Embedded Ladybug index
//	idx, err := index.NewLadybug("./legame_db", nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// OpenAI embeddings
//	embConfig := embedder.Config{Model: "text-embedding-3-small"}
//	embedderClient := embedder.NewOpenAIEmbedder("your-api-key", embConfig)
//
//	client, err := legame.NewClient(idx, embedderClient, nil, nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
// NewClient(nil, nil, nil, nil) is also valid: the in-memory index is used
// and the vector branch stays quiet, which is enough for graph-only work and
// tests.
//
// # Building the Graph
//
// Entities and relationships come from an upstream extractor; the library
// never re-derives them from raw text:
//
//	entities := []*types.Entity{
//		{Name: "Honda Civic", Type: "Product", Confidence: 0.95},
//		{Name: "engine", Type: "Component", Confidence: 0.9},
//	}
//	relationships := []*types.Relationship{
//		{Source: "Honda Civic", Target: "engine", Type: "contains", Confidence: 0.9},
//	}
//
//	stats, err := client.BuildGraph(ctx, entities, relationships)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Printf("graph has %d nodes and %d edges\n", stats.Nodes, stats.Edges)
//
// Extractor output saved to disk loads through the intake parser, which
// repairs malformed JSON and skips invalid records:
//
//	payload, err := client.LoadExtractionFile(ctx, "extraction.json")
//
// # Retrieval
//
// Retrieve fuses three branches and returns at most topK results:
//
//	results, err := client.Retrieve(ctx, "how does the engine connect to the drivetrain", 10)
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, r := range results {
//		fmt.Printf("%s (%s, %.2f)\n", r.Content, r.ResultType, r.Score)
//	}
//
// Each result keeps the ResultType of the branch that produced it, so
// provenance survives fusion.
//
// # Processing Queries
//
// ProcessQuery is the one-call pipeline: link entities, rebuild the graph,
// and dispatch the query to the strategy its phrasing selects
// (relationship explanation, multi-hop path search, entity exploration, or
// fallback expansion):
//
//	response, err := client.ProcessQuery(ctx, "How is the Honda Civic related to the engine?", entities, relationships)
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, line := range response.Explanation {
//		fmt.Println(line)
//	}
//
// # Snapshots
//
// Sessions persist to an embedded store so a restarted process can restore
// its graph without re-extraction:
//
//	if err := client.SaveSnapshot(ctx, "inspection-42"); err != nil {
//		log.Fatal(err)
//	}
//	// later, in a fresh process
//	stats, err := client.LoadSnapshot(ctx, "inspection-42")
//
// # Error Handling
//
// "No relationship exists" is an answer, not an error: traversal and
// retrieval return empty collections with explanatory text when nothing is
// found. Errors are reserved for misuse and broken configuration:
//
//   - ErrEntityNotFound: a named entity is not in the graph
//   - ErrSessionNotFound: no snapshot was saved under the requested name
//   - ErrClientClosed: the client was closed
//
// # Architecture
//
// The library follows a modular architecture:
//
//   - pkg/resolver: entity identity resolution and clustering
//   - pkg/graph: the relationship graph and multi-hop reasoner
//   - pkg/fusion: hybrid retrieval branch fusion
//   - pkg/processor: strategy dispatch for query answering
//   - pkg/index: document index backends (memory, Neo4j, Ladybug)
//   - pkg/embedder: embedding client interfaces
//   - pkg/intake: extractor payload parsing and NER adapters
//   - pkg/types: core type definitions
//
// This design allows easy extension with additional index backends,
// embedding providers, and extractor adapters.
package legame
