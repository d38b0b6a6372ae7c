package integrationtests

import (
	"context"
	"errors"
	"testing"
	"time"

	"ner-eval/internal/core"
	"ner-eval/internal/database"
	"ner-eval/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresRunLifecycle(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	db, err := database.NewDatabase(setupPostgresContainer(t, ctx))
	require.NoError(t, err)

	textDir, annDir := writeCorpus(t)
	loader := &storage.CorpusLoader{TextDir: textDir, AnnotationDir: annDir, LowercaseLabels: true}

	docs, err := loader.LoadDocuments()
	require.NoError(t, err)
	annotations, err := loader.LoadAnnotations()
	require.NoError(t, err)

	run, err := database.CreateRun(ctx, db, "crf", "run1")
	require.NoError(t, err)

	_, err = database.CreateRun(ctx, db, "crf", "run1")
	require.Error(t, err)

	summary, err := core.RunEvaluation(core.EvaluationInput{
		RunID:       "run1",
		ModelName:   "crf",
		OutDir:      t.TempDir(),
		Documents:   docs,
		Annotations: annotations,
		Labels:      []string{"finding"},
	})
	require.NoError(t, err)

	require.NoError(t, database.CompleteRun(ctx, db, run.Id, summary, storage.RunPrefix("crf", "run1")))

	stored, err := database.GetRun(ctx, db, "crf", "run1")
	require.NoError(t, err)
	assert.Equal(t, run.Id, stored.Id)
	assert.Equal(t, []string{"finding"}, stored.Labels)
	assert.Equal(t, 1, stored.Documents)
	assert.Equal(t, 2, stored.OfferedAnnotations)
	assert.Equal(t, 1, stored.RetainedAnnotations)
	assert.Equal(t, map[string]int{"alignment_miss": 1}, stored.Diagnostics)

	overlap, ok := stored.Score("finding", "overlap")
	require.True(t, ok)
	assert.Equal(t, 1, overlap.TruePositives)
	assert.Equal(t, 1, overlap.FalsePositives)
	assert.InDelta(t, 0.5, overlap.Precision, 1e-9)
	assert.InDelta(t, 1.0, overlap.Recall, 1e-9)

	runs, err := database.ListRuns(ctx, db, "crf")
	require.NoError(t, err)
	require.Len(t, runs, 1)

	_, err = database.GetRun(ctx, db, "crf", "missing")
	assert.True(t, errors.Is(err, database.ErrRunNotFound))
}
