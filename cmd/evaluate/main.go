package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"ner-eval/cmd"
	"ner-eval/internal/config"
	"ner-eval/internal/core"
	"ner-eval/internal/database"
	"ner-eval/internal/storage"
	"ner-eval/pkg/api"

	"github.com/schollz/progressbar/v3"
	"gorm.io/gorm"
)

type flags struct {
	envFile    string
	textDir    string
	annDir     string
	outDir     string
	modelName  string
	labelsFile string
	runID      string
	workers    int
	list       bool
}

func parseFlags() flags {
	var f flags
	flag.StringVar(&f.envFile, "env", "", "path to load env from")
	flag.StringVar(&f.textDir, "t", "", "directory (or s3://bucket/prefix) of <id>.txt documents with <id>.json parses")
	flag.StringVar(&f.annDir, "a", "", "directory (or s3://bucket/prefix) of <id>.ann gold annotations")
	flag.StringVar(&f.outDir, "o", "", "output directory for reports and reconstructed annotations")
	flag.StringVar(&f.modelName, "m", "", "name of the model being evaluated")
	flag.StringVar(&f.labelsFile, "labels", "", "yaml file with the ordered label set")
	flag.StringVar(&f.runID, "run", "", "run identifier, defaults to the start time")
	flag.IntVar(&f.workers, "workers", 0, "number of workers used to aggregate counts")
	flag.BoolVar(&f.list, "list", false, "list the stored runs of the model (or show the run given by -run) and exit")
	flag.Parse()
	return f
}

// apply overrides the environment configuration with the flags that were set.
func (f flags) apply(cfg *config.Config) {
	flag.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "t":
			cfg.TextDir = f.textDir
		case "a":
			cfg.AnnotationDir = f.annDir
		case "o":
			cfg.OutputDir = f.outDir
		case "m":
			cfg.ModelName = f.modelName
		case "labels":
			cfg.LabelsFile = f.labelsFile
		case "workers":
			cfg.Workers = f.workers
		}
	})
}

func loadLabels(cfg config.Config) ([]string, string) {
	if cfg.LabelsFile == "" {
		return nil, cfg.OutsideLabel
	}

	set, err := config.LoadLabelSet(cfg.LabelsFile, cfg.LowercaseLabels)
	if err != nil {
		log.Fatalf("error loading labels: %v", err)
	}

	outside := cfg.OutsideLabel
	if set.Outside != "" {
		outside = set.Outside
	}
	return set.Labels, outside
}

func fetchInputs(ctx context.Context, cfg *config.Config, store storage.ObjectStore) func() {
	cacheDir := cfg.CacheDir
	cleanup := func() {}
	if cacheDir == "" {
		dir, err := os.MkdirTemp("", "ner-eval-corpus")
		if err != nil {
			log.Fatalf("error creating corpus cache directory: %v", err)
		}
		cacheDir = dir
		cleanup = func() { os.RemoveAll(dir) }
	}

	textDir, err := storage.FetchDir(ctx, store, cfg.TextDir, cacheDir)
	if err != nil {
		log.Fatalf("error fetching documents: %v", err)
	}
	cfg.TextDir = textDir

	if cfg.AnnotationDir != "" {
		annDir, err := storage.FetchDir(ctx, store, cfg.AnnotationDir, cacheDir)
		if err != nil {
			log.Fatalf("error fetching annotations: %v", err)
		}
		cfg.AnnotationDir = annDir
	}

	return cleanup
}

// storedRuns returns the completed runs of a model, or only the run with the
// given id when runID is set.
func storedRuns(ctx context.Context, db *gorm.DB, modelName, runID string) ([]api.RunSummary, error) {
	if runID != "" {
		run, err := database.GetRun(ctx, db, modelName, runID)
		if err != nil {
			return nil, err
		}
		return []api.RunSummary{run}, nil
	}
	return database.ListRuns(ctx, db, modelName)
}

func listRuns(ctx context.Context, cfg config.Config, runID string) {
	if cfg.DatabaseURL == "" {
		log.Fatalf("DATABASE_URL must be set to list runs")
	}

	db, err := database.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("error connecting to database: %v", err)
	}

	runs, err := storedRuns(ctx, db, cfg.ModelName, runID)
	if err != nil {
		log.Fatalf("error reading runs: %v", err)
	}

	for _, run := range runs {
		slog.Info("run",
			"id", run.Id,
			"run_id", run.RunId,
			"model", run.ModelName,
			"created", run.CreationTime,
			"documents", run.Documents,
			"retained_annotations", run.RetainedAnnotations,
		)
		logScores(run)
	}
}

func logScores(summary api.RunSummary) {
	for _, s := range summary.Scores {
		slog.Info("score",
			"label", s.Label,
			"strictness", s.Strictness,
			"tp", s.TruePositives,
			"fp", s.FalsePositives,
			"fn", s.FalseNegatives,
			"precision", s.Precision,
			"recall", s.Recall,
			"f1", s.F1,
		)
	}
	for reason, n := range summary.Diagnostics {
		slog.Warn("dropped during evaluation", "reason", reason, "count", n)
	}
}

func main() {
	start := time.Now()

	f := parseFlags()
	cmd.LoadEnvFile(f.envFile)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}
	f.apply(&cfg)

	if f.list {
		listRuns(context.Background(), cfg, f.runID)
		return
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	runID := f.runID
	if runID == "" {
		runID = start.Format("20060102-150405")
	}

	logFile := cmd.SetupLogFile(cfg.OutputDir, "evaluate.log")
	defer logFile.Close()

	slog.Info("starting evaluation", "run_id", runID, "model", cfg.ModelName, "text_dir", cfg.TextDir, "annotation_dir", cfg.AnnotationDir, "output_dir", cfg.OutputDir)

	ctx := context.Background()

	var store storage.ObjectStore
	if cmd.NeedsObjectStore(cfg) {
		store, err = cmd.NewObjectStore(cfg)
		if err != nil {
			log.Fatalf("error creating object store: %v", err)
		}
	}

	cleanup := fetchInputs(ctx, &cfg, store)
	defer cleanup()

	labels, outside := loadLabels(cfg)

	diag := core.NewDiagnostics()
	loader := &storage.CorpusLoader{
		TextDir:         cfg.TextDir,
		AnnotationDir:   cfg.AnnotationDir,
		LowercaseLabels: cfg.LowercaseLabels,
		Diagnostics:     diag,
	}

	total, err := loader.CountDocuments()
	if err != nil {
		log.Fatalf("error listing documents: %v", err)
	}
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetDescription("⏳ loading documents"),
		progressbar.OptionSetWidth(30),
		progressbar.OptionClearOnFinish(),
	)
	loader.OnDocument = func(string) { _ = bar.Add(1) }

	docs, err := loader.LoadDocuments()
	if err != nil {
		log.Fatalf("error loading documents: %v", err)
	}

	annotations, err := loader.LoadAnnotations()
	if err != nil {
		log.Fatalf("error loading annotations: %v", err)
	}

	var db *gorm.DB
	var run database.EvaluationRun
	if cfg.DatabaseURL != "" {
		db, err = database.NewDatabase(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("error connecting to database: %v", err)
		}
		run, err = database.CreateRun(ctx, db, cfg.ModelName, runID)
		if err != nil {
			log.Fatalf("error recording run: %v", err)
		}
	}

	summary, err := core.RunEvaluation(core.EvaluationInput{
		ID:           run.Id,
		RunID:        runID,
		ModelName:    cfg.ModelName,
		OutDir:       cfg.OutputDir,
		StartedAt:    start.UTC(),
		Documents:    docs,
		Annotations:  annotations,
		Labels:       labels,
		OutsideLabel: outside,
		Workers:      cfg.Workers,
		Diagnostics:  diag,
	})
	if err != nil {
		if db != nil {
			database.FailRun(ctx, db, run.Id, err)
		}
		log.Fatalf("evaluation failed: %v", err)
	}

	var prefix string
	if cfg.ResultsBucket != "" {
		prefix, err = storage.PublishRun(ctx, store, cfg.ResultsBucket, summary)
		if err != nil {
			if db != nil {
				database.FailRun(ctx, db, run.Id, err)
			}
			log.Fatalf("error publishing results: %v", err)
		}
	}

	if db != nil {
		if err := database.CompleteRun(ctx, db, run.Id, summary, prefix); err != nil {
			log.Fatalf("error saving run: %v", err)
		}
	}

	logScores(summary)

	elapsed := time.Since(start)
	slog.Info("evaluation finished",
		"run_id", runID,
		"documents", summary.Documents,
		"minutes", int(elapsed.Minutes()),
		"seconds", int(elapsed.Seconds())%60,
	)
}
