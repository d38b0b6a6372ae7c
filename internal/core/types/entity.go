package types

import (
	"strings"
)

// GoldAnnotation is a human-authored reference span that has been resolved
// into the sentence containing its start offset.
type GoldAnnotation struct {
	Tag          string
	Start        int
	Stop         int
	Text         string
	SentOrderIdx int
}

// TokenLabel is the tagging model's output for a single token. A document's
// token labels are kept in reading order.
type TokenLabel struct {
	Start      int     `json:"start"`
	Stop       int     `json:"stop"`
	Text       string  `json:"text"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// PredictedSpan is a maximal run of same-label tokens reduced to one span.
type PredictedSpan struct {
	Label                string
	Start                int
	Stop                 int
	Text                 string
	PredictionConfidence float64
	// DocID is left nil by the chunker; callers that need it attach it.
	DocID *string
}

// NewPredictedSpan reduces a run of token labels into a single span. The run
// must be non-empty.
func NewPredictedSpan(label string, run []TokenLabel) PredictedSpan {
	start, stop := run[0].Start, run[0].Stop
	texts := make([]string, 0, len(run))
	total := 0.0

	for _, tok := range run {
		if tok.Start < start {
			start = tok.Start
		}
		if tok.Stop > stop {
			stop = tok.Stop
		}
		texts = append(texts, tok.Text)
		total += tok.Confidence
	}

	return PredictedSpan{
		Label:                label,
		Start:                start,
		Stop:                 stop,
		Text:                 strings.Join(texts, " "),
		PredictionConfidence: total / float64(len(run)),
	}
}

// WithDocID returns a copy of the span tagged with the given document id.
func (p PredictedSpan) WithDocID(docID string) PredictedSpan {
	p.DocID = &docID
	return p
}

// RawAnnotation is an annotation record as produced by the annotation file
// parser, before it has been aligned to a sentence.
type RawAnnotation struct {
	Start int
	Stop  int
	Label string
	Text  string
}
