package model

import (
	"cmp"
	"slices"
)

// Scores maps a category name to a numeric score. It is sparse: categories
// that are absent score zero. Used both for the running tally of a quiz
// session and for the contribution of a single answer.
type Scores map[string]float64

// Get returns the score of category, zero when absent
func (s Scores) Get(category string) float64 {
	return s[category]
}

// AllNonPositive reports whether no category has a positive score.
// An empty tally is all non-positive.
func (s Scores) AllNonPositive() bool {
	for _, v := range s {
		if v > 0 {
			return false
		}
	}
	return true
}

// Clone returns a copy that never aliases s. A nil tally clones to an empty one.
func (s Scores) Clone() Scores {
	out := make(Scores, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// CategoryScore is a single entry of a ranked tally
type CategoryScore struct {
	Category string
	Score    float64
}

// Ranked returns the categories ordered by score, highest first.
// Equal scores are ordered by category name so the ranking is deterministic.
func (s Scores) Ranked() []CategoryScore {
	ranked := make([]CategoryScore, 0, len(s))
	for k, v := range s {
		ranked = append(ranked, CategoryScore{Category: k, Score: v})
	}
	slices.SortFunc(ranked, func(a, b CategoryScore) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Category, b.Category)
	})
	return ranked
}
