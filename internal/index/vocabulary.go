package index

import "sort"

// Vocabulary is the fixed, ordered set of terms spanning all vector
// dimensions. Every vector encoded against it is positional: dimension i
// always refers to Terms()[i], for documents and queries alike.
type Vocabulary struct {
	terms    []string
	position map[string]int
}

// NewVocabulary builds a vocabulary from a term set, excluding stop words.
// The ordering is the sorted term order and stays fixed for the
// vocabulary's lifetime.
func NewVocabulary(termSet map[string]struct{}, stopWords map[string]struct{}) *Vocabulary {
	terms := make([]string, 0, len(termSet))
	for term := range termSet {
		if _, stop := stopWords[term]; stop {
			continue
		}
		terms = append(terms, term)
	}
	sort.Strings(terms)

	position := make(map[string]int, len(terms))
	for i, term := range terms {
		position[term] = i
	}
	return &Vocabulary{terms: terms, position: position}
}

// Len returns the number of terms.
func (v *Vocabulary) Len() int { return len(v.terms) }

// Terms returns the vocabulary in its fixed order. The returned slice is
// shared; callers must not modify it.
func (v *Vocabulary) Terms() []string { return v.terms }

// Position returns the vector dimension assigned to term.
func (v *Vocabulary) Position(term string) (int, bool) {
	pos, ok := v.position[term]
	return pos, ok
}

// Contains reports whether term belongs to the vocabulary.
func (v *Vocabulary) Contains(term string) bool {
	_, ok := v.position[term]
	return ok
}
