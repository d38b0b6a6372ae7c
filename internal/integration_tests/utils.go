package integrationtests

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/minio"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	minioUsername = "admin"
	minioPassword = "password"
)

func setupMinioContainer(t *testing.T, ctx context.Context) string {
	minioContainer, err := minio.Run(
		ctx,
		"minio/minio:RELEASE.2024-01-16T16-07-38Z",
		minio.WithUsername(minioUsername),
		minio.WithPassword(minioPassword),
	)
	require.NoError(t, err, "Failed to start MinIO container")

	t.Cleanup(func() {
		err := minioContainer.Terminate(context.Background())
		require.NoError(t, err, "Failed to terminate MinIO container")
	})

	connStr, err := minioContainer.ConnectionString(ctx)
	require.NoError(t, err, "Failed to get MinIO connection string")

	return "http://" + connStr
}

func setupPostgresContainer(t *testing.T, ctx context.Context) string {
	dbName, dbUser, dbPassword := "test_db", "test_user", "test_password"

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")

	t.Cleanup(func() {
		err := postgresContainer.Terminate(context.Background())
		require.NoError(t, err, "Failed to terminate PostgreSQL container")
	})

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "Failed to get PostgreSQL connection string")

	return connStr
}

const (
	tumorText   = "Tumor is present. No metastasis."
	tumorParsed = `{
  "sentences": [{"start": 0, "end": 17}, {"start": 18, "end": 33}],
  "tokens": [
    {"start": 0, "stop": 5, "text": "Tumor", "label": "finding", "confidence": 0.9},
    {"start": 6, "stop": 8, "text": "is", "label": "O", "confidence": 1},
    {"start": 9, "stop": 16, "text": "present", "label": "O", "confidence": 1},
    {"start": 16, "stop": 17, "text": ".", "label": "O", "confidence": 1},
    {"start": 18, "stop": 20, "text": "No", "label": "O", "confidence": 1},
    {"start": 21, "stop": 31, "text": "metastasis", "label": "finding", "confidence": 0.7},
    {"start": 31, "stop": 32, "text": ".", "label": "O", "confidence": 1}
  ]
}`
	tumorAnnotations = "T1\tFinding 0 5\tTumor\nT2\tFinding 40 45\tlost\n"
)

// writeCorpus writes a one document corpus and returns its text and
// annotation directories.
func writeCorpus(t *testing.T) (string, string) {
	t.Helper()

	textDir := t.TempDir()
	annDir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(textDir, "d1.txt"), []byte(tumorText), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(textDir, "d1.json"), []byte(tumorParsed), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(annDir, "d1.ann"), []byte(tumorAnnotations), 0644))

	return textDir, annDir
}
