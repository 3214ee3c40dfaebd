package vector

import "math"

// InnerProduct scores two embeddings. Both sides are unit-normalized at
// embed time, so this is cosine similarity. Mismatched or empty inputs
// score zero rather than panicking.
func InnerProduct(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i] * b[i])
	}
	return dot
}

// L2Norm reports the Euclidean length of x; 1.0 for a properly normalized
// embedding.
func L2Norm(x []float32) float64 {
	var sum float64
	for _, v := range x {
		sum += float64(v * v)
	}
	return math.Sqrt(sum)
}
