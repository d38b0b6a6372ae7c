package types

import "strings"

// Sentence is a sentence span produced by the upstream segmenter. SpanEnd is
// treated as inclusive when aligning annotations.
type Sentence struct {
	SentOrderIdx int `json:"-"`
	SpanStart    int `json:"start"`
	SpanEnd      int `json:"end"`
}

// Contains reports whether offset falls within the sentence, inclusive on
// both ends.
func (s Sentence) Contains(offset int) bool {
	return offset >= s.SpanStart && offset <= s.SpanEnd
}

type Document struct {
	ID        string
	Text      string
	Sentences []Sentence

	ConceptsGold map[string][]GoldAnnotation
	TokenLabels  []TokenLabel
}

// NewDocument creates a document and assigns each sentence its position in
// document order.
func NewDocument(id, text string, sentences []Sentence, tokens []TokenLabel) *Document {
	sents := make([]Sentence, len(sentences))
	for i, s := range sentences {
		s.SentOrderIdx = i
		sents[i] = s
	}

	return &Document{
		ID:           id,
		Text:         text,
		Sentences:    sents,
		ConceptsGold: make(map[string][]GoldAnnotation),
		TokenLabels:  tokens,
	}
}

// Slice returns the text between the character offsets start and end. The
// offsets are clamped to the document so that drifted annotations can still
// be logged.
func (d *Document) Slice(start, end int) string {
	runes := []rune(d.Text)
	if start < 0 {
		start = 0
	}
	if end > len(runes) {
		end = len(runes)
	}
	if start >= end {
		return ""
	}
	return strings.ToValidUTF8(string(runes[start:end]), "")
}

// GoldCount returns the total number of gold annotations across all labels.
func (d *Document) GoldCount() int {
	total := 0
	for _, anns := range d.ConceptsGold {
		total += len(anns)
	}
	return total
}
