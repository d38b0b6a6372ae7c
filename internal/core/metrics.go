package core

import (
	"errors"
	"fmt"
	"strings"

	"ner-eval/internal/core/types"
)

type Strictness string

const (
	Exact   Strictness = "exact"
	Overlap Strictness = "overlap"
)

var Strictnesses = []Strictness{Exact, Overlap}

var ErrUnknownStrictness = errors.New("unknown strictness")

func ParseStrictness(s string) (Strictness, error) {
	switch Strictness(s) {
	case Exact, Overlap:
		return Strictness(s), nil
	}
	return "", fmt.Errorf("%w %q: must be one of {%s, %s}", ErrUnknownStrictness, s, Exact, Overlap)
}

func StrictnessOf(strict bool) Strictness {
	if strict {
		return Exact
	}
	return Overlap
}

// ExactMatch requires identical boundaries and that the gold text occurs
// within the predicted text.
func ExactMatch(g types.GoldAnnotation, p types.PredictedSpan) bool {
	return g.Stop == p.Stop && g.Start == p.Start && strings.Contains(p.Text, g.Text)
}

// OverlapMatch reports whether the two closed intervals intersect.
func OverlapMatch(g types.GoldAnnotation, p types.PredictedSpan) bool {
	return g.Start <= p.Stop && p.Start <= g.Stop
}

func (s Strictness) matcher() func(types.GoldAnnotation, types.PredictedSpan) bool {
	if s == Exact {
		return ExactMatch
	}
	return OverlapMatch
}

type Counts struct {
	TP int
	FP int
	FN int
}

func (c Counts) Add(other Counts) Counts {
	return Counts{TP: c.TP + other.TP, FP: c.FP + other.FP, FN: c.FN + other.FN}
}

type Scores struct {
	Precision float64
	Recall    float64
	F1        float64
}

func ComputeScores(c Counts) Scores {
	var s Scores
	if c.TP+c.FP > 0 {
		s.Precision = float64(c.TP) / float64(c.TP+c.FP)
	}
	if c.TP+c.FN > 0 {
		s.Recall = float64(c.TP) / float64(c.TP+c.FN)
	}
	if s.Precision+s.Recall > 0 {
		s.F1 = 2 * s.Precision * s.Recall / (s.Precision + s.Recall)
	}
	return s
}

// CountMatches compares the gold and predicted spans of one label in one
// document. Every matching pair counts as a true positive, so a predicted
// span overlapping two gold spans contributes two.
func CountMatches(gold []types.GoldAnnotation, predicted []types.PredictedSpan, strictness Strictness) Counts {
	match := strictness.matcher()

	var c Counts
	goldMatched := make([]bool, len(gold))

	for _, p := range predicted {
		matched := false
		for i, g := range gold {
			if match(g, p) {
				c.TP++
				matched = true
				goldMatched[i] = true
			}
		}
		if !matched {
			c.FP++
		}
	}

	for _, ok := range goldMatched {
		if !ok {
			c.FN++
		}
	}

	return c
}
