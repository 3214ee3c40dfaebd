package embedding

import (
	"context"
	"hash/fnv"

	"github.com/sorrel/kioku/pkg/utils"
)

// HashingEmbedder maps text to a fixed-dimension bag-of-words vector without
// any learned model. Each term is hashed to a bucket, a second independent
// hash picks the sign of its contribution, and the result is L2-normalized.
// Cosine between two such vectors approximates term-overlap similarity, fully
// reproducible offline.
type HashingEmbedder struct {
	dimensions int
}

// NewHashingEmbedder returns a hashing embedder of the given dimension.
func NewHashingEmbedder(dimensions int) *HashingEmbedder {
	if dimensions <= 0 {
		dimensions = 4096
	}
	return &HashingEmbedder{dimensions: dimensions}
}

// Embed returns the hashed bag-of-words embedding for text. Empty or
// token-free text returns the zero vector.
func (e *HashingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dimensions)
	for _, term := range utils.Tokenize(text) {
		bucket := bucketHash(term) % uint32(e.dimensions)
		if signHash(term)&1 == 0 {
			vec[bucket] += 1.0
		} else {
			vec[bucket] -= 1.0
		}
	}
	utils.NormalizeL2(vec)
	return vec, nil
}

// EmbedBatch calls Embed for each text.
func (e *HashingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		emb, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = emb
	}
	return embeddings, nil
}

// Dimensions returns the embedding dimension.
func (e *HashingEmbedder) Dimensions() int {
	return e.dimensions
}

// Name returns the backend identifier.
func (e *HashingEmbedder) Name() string {
	return "hashing"
}

// Close is a no-op for HashingEmbedder.
func (e *HashingEmbedder) Close() error {
	return nil
}

// bucketHash is the stable term-to-bucket hash (FNV-1a).
func bucketHash(term string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(term))
	return h.Sum32()
}

// signHash is a second hash independent of bucketHash, used only for the
// contribution sign. FNV-1 with a salt byte so the two hashes decorrelate.
func signHash(term string) uint32 {
	h := fnv.New32()
	_, _ = h.Write([]byte{0x9e})
	_, _ = h.Write([]byte(term))
	return h.Sum32()
}
