package core

import (
	"log/slog"

	"ner-eval/internal/core/types"
)

// ChunkByLabel merges maximal runs of consecutive same-label tokens into
// predicted spans. Every label in labels gets an entry in the result, and
// spans for a label appear in the order their runs occur in the document.
// Runs of labels outside the label set (such as the outside label) are
// skipped.
//
// The tokens are scanned once; this yields the same spans as scanning the
// sequence separately for each label.
func ChunkByLabel(docID string, tokens []types.TokenLabel, labels []string, diag *Diagnostics) map[string][]types.PredictedSpan {
	out := make(map[string][]types.PredictedSpan, len(labels))
	for _, label := range labels {
		out[label] = make([]types.PredictedSpan, 0)
	}

	n := len(tokens)
	i := 0

	for i < n {
		label := tokens[i].Label

		j := i + 1
		for j < n && tokens[j].Label == label {
			j++
		}

		if _, ok := out[label]; ok {
			if j == n {
				// The run was terminated by the end of the sequence rather than by
				// a token with a different label.
				last := tokens[n-1]
				slog.Warn("token run reached end of sequence, closing chunk at document end",
					"doc_id", docID,
					"label", label,
					"index", n,
					"last_token", last.Text,
					"last_token_stop", last.Stop,
				)
				diag.Record(DropEvent{
					Reason: ChunkOverrun,
					DocID:  docID,
					Start:  tokens[i].Start,
					Stop:   last.Stop,
					Detail: label,
				})
			}
			out[label] = append(out[label], types.NewPredictedSpan(label, tokens[i:j]))
		}

		i = j
	}

	return out
}
