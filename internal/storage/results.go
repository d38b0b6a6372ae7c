package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"ner-eval/pkg/api"
)

// RunPrefix is the key prefix a run is published under.
func RunPrefix(modelName, runID string) string {
	return path.Join(modelName, runID)
}

// PublishRun uploads the reconstructed annotations, the run summary and the
// score reports of a finished run to bucket under <model>/<run>/.
func PublishRun(ctx context.Context, store ObjectStore, bucket string, summary api.RunSummary) (string, error) {
	if err := store.CreateBucket(ctx, bucket); err != nil {
		return "", err
	}

	prefix := RunPrefix(summary.ModelName, summary.RunId)

	if summary.AnnotationsDir != "" {
		if err := store.UploadDir(ctx, bucket, prefix, summary.AnnotationsDir); err != nil {
			return "", fmt.Errorf("error publishing run %s: %w", summary.RunId, err)
		}
	}

	for _, scoreFile := range summary.ScoreFiles {
		if err := putFile(ctx, store, bucket, path.Join(prefix, filepath.Base(scoreFile)), scoreFile); err != nil {
			return "", fmt.Errorf("error publishing run %s: %w", summary.RunId, err)
		}
	}

	slog.Info("published run", "bucket", bucket, "prefix", prefix)

	return prefix, nil
}

func putFile(ctx context.Context, store ObjectStore, bucket, key, src string) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()

	return store.PutObject(ctx, bucket, key, f)
}

// FetchDir makes the contents of dir available locally. Local paths are
// returned as is; s3://bucket/prefix URIs are downloaded below cacheDir.
func FetchDir(ctx context.Context, store ObjectStore, dir, cacheDir string) (string, error) {
	bucket, prefix, ok, err := ParseS3URI(dir)
	if err != nil {
		return "", err
	}
	if !ok {
		return dir, nil
	}
	if store == nil {
		return "", fmt.Errorf("no object store configured for %s", dir)
	}

	dest := filepath.Join(cacheDir, bucket, filepath.FromSlash(prefix))
	if err := store.DownloadDir(ctx, bucket, prefix, dest, true); err != nil {
		return "", err
	}

	slog.Info("downloaded corpus directory", "uri", dir, "dest", dest)

	return dest, nil
}
