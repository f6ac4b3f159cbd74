// Package answer holds the deterministic answerers that short-circuit
// generation for question intents the resume can answer verbatim.
package answer

import "github.com/portfolio-site/backend/internal/corpus"

// Answerer recognises one question intent and, when it can, answers it
// from the ranked matches without calling a model.
type Answerer interface {
	Name() string
	Answer(query string, matches []corpus.Chunk) (string, bool)
}

// Dispatch tries each answerer in order and returns the first answer along
// with the name of the answerer that produced it.
func Dispatch(answerers []Answerer, query string, matches []corpus.Chunk) (string, string, bool) {
	for _, a := range answerers {
		if text, ok := a.Answer(query, matches); ok {
			return text, a.Name(), true
		}
	}
	return "", "", false
}
