// Package scoring defines how free-text recall answers are turned into
// a 0–1 score. The real comprehension scorer is an external service;
// this package only provides the interface it plugs into and a cheap
// word-count heuristic used when no external score is supplied.
package scoring

import "strings"

// Scorer converts a learner's free-text answer into a score in [0, 1]
// and an optional feedback string.
type Scorer interface {
	Score(answer string) (score float64, feedback string)
}

// WordCountScorer scores an answer purely by length: a full answer is
// assumed at TargetWords words. It is a placeholder for an external
// text-comprehension scorer, not a measure of correctness.
type WordCountScorer struct {
	TargetWords int
}

// NewWordCountScorer returns a WordCountScorer with the default target
// of 50 words.
func NewWordCountScorer() *WordCountScorer {
	return &WordCountScorer{TargetWords: 50}
}

// Score implements Scorer.
func (s *WordCountScorer) Score(answer string) (float64, string) {
	target := s.TargetWords
	if target <= 0 {
		target = 50
	}

	words := len(strings.Fields(answer))
	score := float64(words) / float64(target)
	if score > 1.0 {
		score = 1.0
	}
	return score, ""
}
