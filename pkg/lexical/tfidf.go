package lexical

import "math"

// SparseVector maps vocabulary indices to weights. Vectors produced by the
// same Vectorizer share a vocabulary and can be compared with Cosine.
type SparseVector map[int]float64

// Vectorizer turns text into TF-IDF weighted vectors over the vocabulary of
// the corpus it was fit on. Terms outside the vocabulary are ignored at
// transform time. The smoothed inverse document frequency
// ln((1+n)/(1+df)) + 1 keeps unseen-term weights finite, and every vector is
// L2-normalized so cosine similarity reduces to a dot product.
type Vectorizer struct {
	vocab map[string]int
	idf   []float64
	docs  int
}

// NewVectorizer fits a vectorizer on the corpus. An empty corpus yields a
// vectorizer whose vectors are always empty.
func NewVectorizer(corpus []string) *Vectorizer {
	v := &Vectorizer{
		vocab: make(map[string]int),
		docs:  len(corpus),
	}

	df := make([]int, 0)
	for _, doc := range corpus {
		seen := make(map[int]bool)
		for _, term := range Tokenize(doc) {
			idx, ok := v.vocab[term]
			if !ok {
				idx = len(v.vocab)
				v.vocab[term] = idx
				df = append(df, 0)
			}
			if !seen[idx] {
				df[idx]++
				seen[idx] = true
			}
		}
	}

	v.idf = make([]float64, len(df))
	for i, count := range df {
		v.idf[i] = math.Log(float64(1+v.docs)/float64(1+count)) + 1.0
	}
	return v
}

// Vocabulary returns the number of distinct terms the vectorizer knows.
func (v *Vectorizer) Vocabulary() int {
	return len(v.vocab)
}

// Vector transforms text into an L2-normalized TF-IDF vector.
func (v *Vectorizer) Vector(text string) SparseVector {
	counts := make(map[int]float64)
	for _, term := range Tokenize(text) {
		if idx, ok := v.vocab[term]; ok {
			counts[idx]++
		}
	}
	if len(counts) == 0 {
		return SparseVector{}
	}

	vec := make(SparseVector, len(counts))
	var norm float64
	for idx, tf := range counts {
		w := tf * v.idf[idx]
		vec[idx] = w
		norm += w * w
	}
	if norm == 0 {
		return SparseVector{}
	}
	norm = math.Sqrt(norm)
	for idx := range vec {
		vec[idx] /= norm
	}
	return vec
}

// Similarity is shorthand for the cosine of the vectors of two texts.
func (v *Vectorizer) Similarity(a, b string) float64 {
	return Cosine(v.Vector(a), v.Vector(b))
}

// Cosine returns the cosine similarity of two sparse vectors. Empty vectors
// score 0 against everything.
func Cosine(a, b SparseVector) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	if len(b) < len(a) {
		a, b = b, a
	}

	var dot, normA, normB float64
	for idx, w := range a {
		normA += w * w
		if bw, ok := b[idx]; ok {
			dot += w * bw
		}
	}
	for _, w := range b {
		normB += w * w
	}
	if normA == 0 || normB == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
