package core

import "ner-eval/internal/core/types"

const tumorText = "Tumor is present. No metastasis."

func tok(start, stop int, text, label string, conf float64) types.TokenLabel {
	return types.TokenLabel{Start: start, Stop: stop, Text: text, Label: label, Confidence: conf}
}

// tumorDoc builds the two sentence document used across the scoring tests.
// firstLabel and firstStop describe the prediction for the first token.
func tumorDoc(id string, firstLabel string, firstStop int) *types.Document {
	tokens := []types.TokenLabel{
		tok(0, firstStop, "Tumor"[:firstStop], firstLabel, 0.9),
		tok(6, 8, "is", "O", 0.99),
		tok(9, 16, "present", "O", 0.99),
		tok(16, 17, ".", "O", 0.99),
		tok(18, 20, "No", "O", 0.99),
		tok(21, 31, "metastasis", "O", 0.95),
		tok(31, 32, ".", "O", 0.99),
	}
	return types.NewDocument(id, tumorText, []types.Sentence{
		{SpanStart: 0, SpanEnd: 17},
		{SpanStart: 18, SpanEnd: 33},
	}, tokens)
}
