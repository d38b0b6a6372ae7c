package core

import (
	"log/slog"

	"ner-eval/internal/core/types"
)

// GoldBuilder attaches parsed annotation records to documents as gold
// annotations and remembers every label it has been offered.
type GoldBuilder struct {
	diag *Diagnostics

	labels   []string
	seen     map[string]struct{}
	offered  int
	retained int
}

func NewGoldBuilder(diag *Diagnostics) *GoldBuilder {
	return &GoldBuilder{diag: diag, seen: make(map[string]struct{})}
}

// Build aligns each record to a sentence of doc and appends the accepted ones
// to doc.ConceptsGold. Records whose start offset falls outside every sentence
// are dropped. The same document is returned.
func (b *GoldBuilder) Build(doc *types.Document, records []types.RawAnnotation) *types.Document {
	if doc.ConceptsGold == nil {
		doc.ConceptsGold = make(map[string][]types.GoldAnnotation)
	}

	added := 0
	for _, rec := range records {
		b.observeLabel(rec.Label)

		idx, ok := ResolveSentence(doc, rec.Start, rec.Stop)
		if !ok {
			b.diag.Record(DropEvent{
				Reason: AlignmentMiss,
				DocID:  doc.ID,
				Start:  rec.Start,
				Stop:   rec.Stop,
				Detail: doc.Slice(rec.Start, rec.Stop),
			})
			continue
		}

		doc.ConceptsGold[rec.Label] = append(doc.ConceptsGold[rec.Label], types.GoldAnnotation{
			Tag:          rec.Label,
			Start:        rec.Start,
			Stop:         rec.Stop,
			Text:         rec.Text,
			SentOrderIdx: idx,
		})
		added++
	}

	b.offered += len(records)
	b.retained += added

	slog.Info("added gold annotations", "doc_id", doc.ID, "retained", added, "offered", len(records))

	return doc
}

func (b *GoldBuilder) observeLabel(label string) {
	if _, ok := b.seen[label]; ok {
		return
	}
	b.seen[label] = struct{}{}
	b.labels = append(b.labels, label)
}

// DetectedLabels returns the distinct labels offered so far, in first-seen order.
func (b *GoldBuilder) DetectedLabels() []string {
	return append([]string(nil), b.labels...)
}

func (b *GoldBuilder) Offered() int {
	return b.offered
}

func (b *GoldBuilder) Retained() int {
	return b.retained
}
