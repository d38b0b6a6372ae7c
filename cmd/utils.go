package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"ner-eval/internal/config"
	"ner-eval/internal/storage"

	"github.com/joho/godotenv"
)

func LoadEnvFile(configPath string) {
	if configPath == "" {
		log.Printf("no env file specified, using os.Environ only")
		return
	}

	log.Printf("loading env from file %s", configPath)
	err := godotenv.Load(configPath)
	if err != nil {
		log.Fatalf("error loading .env file '%s': %v", configPath, err)
	}
}

// SetupLogFile mirrors the standard logger, and therefore slog's default
// handler, into <dir>/<name>. The returned file must be closed by the caller.
func SetupLogFile(dir, name string) *os.File {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		log.Fatalf("error creating directory for log file: %v", err)
	}

	f, err := os.OpenFile(filepath.Join(dir, name), os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}

	log.SetOutput(io.MultiWriter(f, os.Stderr))

	return f
}

// NewObjectStore returns the store used to fetch s3:// corpus directories and
// to publish results. A configured STORAGE_DIR takes precedence over S3.
func NewObjectStore(cfg config.Config) (storage.ObjectStore, error) {
	if cfg.StorageDir != "" {
		store, err := storage.NewLocalObjectStore(cfg.StorageDir)
		if err != nil {
			return nil, fmt.Errorf("error creating local object store: %w", err)
		}
		return store, nil
	}

	store, err := storage.NewS3ObjectStore(storage.S3ClientConfig{
		Endpoint:        cfg.S3EndpointURL,
		Region:          cfg.S3Region,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating s3 object store: %w", err)
	}
	return store, nil
}

// NeedsObjectStore reports whether any input or output of the run lives in an
// object store.
func NeedsObjectStore(cfg config.Config) bool {
	for _, dir := range []string{cfg.TextDir, cfg.AnnotationDir} {
		if _, _, ok, _ := storage.ParseS3URI(dir); ok {
			return true
		}
	}
	return cfg.ResultsBucket != ""
}
