package core

import (
	"log/slog"

	"ner-eval/internal/core/types"
)

// ResolveSentence returns the index of the first sentence whose inclusive span
// contains start. Only the start offset is considered, so an annotation that
// runs into the next sentence is attributed to the one it starts in. When two
// adjacent sentences share a boundary offset the earlier sentence wins.
func ResolveSentence(doc *types.Document, start, stop int) (int, bool) {
	for _, sent := range doc.Sentences {
		if sent.Contains(start) {
			return sent.SentOrderIdx, true
		}
	}

	slog.Error("no sentence bounds found for annotation",
		"doc_id", doc.ID,
		"start", start,
		"stop", stop,
		"text", doc.Slice(start, stop),
	)
	return -1, false
}
