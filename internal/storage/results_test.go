package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ner-eval/pkg/api"
)

func TestPublishRun(t *testing.T) {
	store, _ := setupTestObjectStore(t)
	ctx := context.Background()

	out := t.TempDir()
	runDir := filepath.Join(out, "run1")
	writeTestFile(t, filepath.Join(runDir, "d1.ann"), "T1\tfinding 0 5\tTumor\n")
	writeTestFile(t, filepath.Join(runDir, "summary.json"), "{}")
	scoreFile := filepath.Join(out, "exact_scores_crf_run1.txt")
	writeTestFile(t, scoreFile, "finding:\n\tP:\t1.0\n\tR:\t1.0\n\tF1:\t1.0\n")

	prefix, err := PublishRun(ctx, store, "results", api.RunSummary{
		RunId:          "run1",
		ModelName:      "crf",
		AnnotationsDir: runDir,
		ScoreFiles:     []string{scoreFile},
	})
	require.NoError(t, err)
	assert.Equal(t, "crf/run1", prefix)

	objects, err := ListObjects(ctx, store, "results", "crf/run1/")
	require.NoError(t, err)

	var keys []string
	for _, obj := range objects {
		keys = append(keys, obj.Name)
	}
	assert.ElementsMatch(t, []string{
		"crf/run1/d1.ann",
		"crf/run1/summary.json",
		"crf/run1/exact_scores_crf_run1.txt",
	}, keys)
}

func TestParseS3URI(t *testing.T) {
	bucket, prefix, ok, err := ParseS3URI("s3://corpus/radiology/texts")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "corpus", bucket)
	assert.Equal(t, "radiology/texts", prefix)

	_, _, ok, err = ParseS3URI("/data/texts")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, ok, err = ParseS3URI("s3:///texts")
	assert.True(t, ok)
	assert.Error(t, err)
}

func TestFetchDir(t *testing.T) {
	store, _ := setupTestObjectStore(t)
	ctx := context.Background()

	local, err := FetchDir(ctx, nil, "/data/texts", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "/data/texts", local)

	src := t.TempDir()
	writeTestFile(t, filepath.Join(src, "d1.txt"), "Tumor is present.")
	require.NoError(t, store.UploadDir(ctx, "corpus", "texts", src))

	cache := t.TempDir()
	local, err = FetchDir(ctx, store, "s3://corpus/texts", cache)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cache, "corpus", "texts"), local)
	assert.FileExists(t, filepath.Join(local, "d1.txt"))

	_, err = FetchDir(ctx, nil, "s3://corpus/texts", cache)
	assert.Error(t, err)
}
