// Package vector implements TF-IDF vector encoding and the float64 vector
// math used by the similarity ranker.
package vector

import "math"

// Encode produces the weighted vector for a term-count profile. Entry i is
// counts[terms[i]] * log10(numDocs/docFreq[i]). terms and docFreq share the
// vocabulary's fixed order, and every docFreq entry must be at least 1.
// Terms absent from counts score zero. Encode is a pure function of its
// inputs.
func Encode(counts map[string]int, terms []string, docFreq []int, numDocs int) []float64 {
	vec := make([]float64, len(terms))
	for i, term := range terms {
		tf := counts[term]
		if tf == 0 {
			continue
		}
		idf := math.Log10(float64(numDocs) / float64(docFreq[i]))
		vec[i] = float64(tf) * idf
	}
	return vec
}

// Dot returns the dot product of a and b. Both vectors must have the same
// length.
func Dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// Norm returns the Euclidean norm of v.
func Norm(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// Cosine returns the cosine similarity of a and b: their dot product
// divided by the product of their norms. It returns 0 when the lengths
// differ or either vector has zero norm, so callers never divide by zero.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
