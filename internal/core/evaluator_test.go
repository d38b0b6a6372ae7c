package core

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ner-eval/internal/core/types"
)

func buildGold(t *testing.T, diag *Diagnostics, doc *types.Document, records ...types.RawAnnotation) {
	t.Helper()
	NewGoldBuilder(diag).Build(doc, records)
}

func TestEvaluatorExactBoundaryMatch(t *testing.T) {
	doc := tumorDoc("d1", "finding", 5)
	buildGold(t, nil, doc, types.RawAnnotation{Start: 0, Stop: 5, Label: "finding", Text: "Tumor"})

	eval := NewEvaluator([]*types.Document{doc}, []string{"finding"})

	assert.Equal(t, Counts{TP: 1, FP: 0, FN: 0}, eval.Counts("finding", Exact))
	assert.Equal(t, 1.0, eval.Precision("finding", true))
	assert.Equal(t, 1.0, eval.Recall("finding", true))
	assert.Equal(t, 1.0, eval.F1("finding", true))
}

func TestEvaluatorBoundaryMismatch(t *testing.T) {
	doc := tumorDoc("d1", "finding", 4)
	buildGold(t, nil, doc, types.RawAnnotation{Start: 0, Stop: 5, Label: "finding", Text: "Tumor"})

	eval := NewEvaluator([]*types.Document{doc}, []string{"finding"})

	assert.Equal(t, Counts{TP: 0, FP: 1, FN: 1}, eval.Counts("finding", Exact))
	assert.Equal(t, 0.0, eval.F1("finding", true))

	assert.Equal(t, Counts{TP: 1, FP: 0, FN: 0}, eval.Counts("finding", Overlap))
	assert.Equal(t, 1.0, eval.Precision("finding", false))
	assert.Equal(t, 1.0, eval.Recall("finding", false))
	assert.Equal(t, 1.0, eval.F1("finding", false))
}

func TestEvaluatorDroppedAnnotation(t *testing.T) {
	diag := NewDiagnostics()
	doc := tumorDoc("d1", "O", 5)
	buildGold(t, diag, doc, types.RawAnnotation{Start: 40, Stop: 45, Label: "finding", Text: "Tumor"})

	eval := NewEvaluator([]*types.Document{doc}, []string{"finding"}, WithDiagnostics(diag))

	assert.Empty(t, doc.ConceptsGold["finding"])
	assert.Equal(t, 1, eval.Diagnostics().Count(AlignmentMiss))
	assert.Equal(t, Counts{}, eval.Counts("finding", Exact))
	assert.Equal(t, Counts{}, eval.Counts("finding", Overlap))
}

func TestEvaluatorDegenerateLabel(t *testing.T) {
	doc := tumorDoc("d1", "O", 5)

	eval := NewEvaluator([]*types.Document{doc}, []string{"finding"})

	for _, strict := range []bool{true, false} {
		assert.Equal(t, 0.0, eval.Precision("finding", strict))
		assert.Equal(t, 0.0, eval.Recall("finding", strict))
		assert.Equal(t, 0.0, eval.F1("finding", strict))
	}

	assert.Equal(t, 0.0, eval.F1("not-a-label", true))
	assert.Equal(t, Counts{}, eval.Counts("not-a-label", Overlap))
}

func TestEvaluatorEmptyCorpus(t *testing.T) {
	eval := NewEvaluator(nil, []string{"finding"}, WithWorkers(4))

	assert.Equal(t, Counts{}, eval.Counts("finding", Exact))
	assert.Empty(t, eval.Documents())
	assert.Nil(t, eval.Predicted("d1"))
}

func TestEvaluatorLabelsAreDeduplicated(t *testing.T) {
	doc := tumorDoc("d1", "finding", 5)
	buildGold(t, nil, doc, types.RawAnnotation{Start: 0, Stop: 5, Label: "finding", Text: "Tumor"})

	eval := NewEvaluator([]*types.Document{doc}, []string{"finding", "negation", "finding"}, WithWorkers(3))

	assert.Equal(t, []string{"finding", "negation"}, eval.Labels())
	assert.Equal(t, Counts{TP: 1}, eval.Counts("finding", Exact))
}

func TestEvaluatorPredicted(t *testing.T) {
	doc := tumorDoc("d1", "finding", 5)

	eval := NewEvaluator([]*types.Document{doc}, []string{"finding"})

	spans := eval.Predicted("d1")
	require.Len(t, spans["finding"], 1)
	assert.Equal(t, "Tumor", spans["finding"][0].Text)
	assert.Nil(t, spans["finding"][0].DocID)
}

// randomCorpus builds documents with random gold spans and random token
// labels over a fixed grid of single character tokens.
func randomCorpus(rng *rand.Rand, docs int, labels []string) []*types.Document {
	out := make([]*types.Document, 0, docs)
	for d := 0; d < docs; d++ {
		const n = 60
		text := make([]byte, 0, 2*n)
		tokens := make([]types.TokenLabel, 0, n)
		for i := 0; i < n; i++ {
			text = append(text, 'a'+byte(i%26), ' ')
			label := "O"
			if rng.Intn(3) == 0 {
				label = labels[rng.Intn(len(labels))]
			}
			tokens = append(tokens, tok(2*i, 2*i+1, string('a'+byte(i%26)), label, rng.Float64()))
		}

		doc := types.NewDocument(fmt.Sprintf("doc%d", d), string(text), []types.Sentence{
			{SpanStart: 0, SpanEnd: n - 1},
			{SpanStart: n, SpanEnd: 2 * n},
		}, tokens)

		var records []types.RawAnnotation
		for k := 0; k < 8; k++ {
			start := 2 * rng.Intn(n)
			stop := start + 1 + 2*rng.Intn(3)
			records = append(records, types.RawAnnotation{
				Start: start,
				Stop:  stop,
				Label: labels[rng.Intn(len(labels))],
				Text:  doc.Slice(start, stop),
			})
		}
		NewGoldBuilder(nil).Build(doc, records)

		out = append(out, doc)
	}
	return out
}

func TestEvaluatorExactNeverExceedsOverlap(t *testing.T) {
	labels := []string{"finding", "negation", "anatomy"}
	rng := rand.New(rand.NewSource(7))

	for trial := 0; trial < 20; trial++ {
		docs := randomCorpus(rng, 5, labels)
		eval := NewEvaluator(docs, labels)

		for _, label := range labels {
			exact := eval.Counts(label, Exact)
			overlap := eval.Counts(label, Overlap)
			assert.LessOrEqual(t, exact.TP, overlap.TP, "label %s trial %d", label, trial)
		}
	}
}

func TestEvaluatorWorkersMatchSequential(t *testing.T) {
	labels := []string{"finding", "negation", "anatomy"}
	docs := randomCorpus(rand.New(rand.NewSource(42)), 10, labels)

	sequential := NewEvaluator(docs, labels)
	pooled := NewEvaluator(docs, labels, WithWorkers(4))

	for _, label := range labels {
		for _, s := range Strictnesses {
			assert.Equal(t, sequential.Counts(label, s), pooled.Counts(label, s), "label %s strictness %s", label, s)
		}
	}
}
