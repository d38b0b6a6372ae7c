package core

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"ner-eval/internal/core/utils"
	"ner-eval/pkg/api"
)

var ErrRunExists = errors.New("run output directory already exists")

const SummaryFileName = "summary.json"

// ResultWriter writes the score reports and the reconstructed annotations of
// an evaluation to an output directory. The run identifier is always supplied
// by the caller.
type ResultWriter struct {
	outDir string
	eval   *Evaluator
}

func NewResultWriter(outDir string, eval *Evaluator) *ResultWriter {
	return &ResultWriter{outDir: outDir, eval: eval}
}

func ScoresFileName(strictness Strictness, modelName, runID string) string {
	return fmt.Sprintf("%s_scores_%s_%s.txt", strictness, modelName, runID)
}

// WriteScores writes the precision, recall and F1 of every label under the
// given strictness and returns the path of the report.
func (w *ResultWriter) WriteScores(strictness string, modelName, runID string) (string, error) {
	s, err := ParseStrictness(strictness)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(w.outDir, 0755); err != nil {
		return "", fmt.Errorf("error creating output directory: %w", err)
	}

	path := filepath.Join(w.outDir, ScoresFileName(s, modelName, runID))

	err = writeFile(path, func(bw *bufio.Writer) error {
		for _, label := range w.eval.Labels() {
			scores := w.eval.Scores(label, s)
			if _, err := fmt.Fprintf(bw, "%s:\n\tP:\t%s\n\tR:\t%s\n\tF1:\t%s\n",
				label,
				utils.FormatScore(scores.Precision),
				utils.FormatScore(scores.Recall),
				utils.FormatScore(scores.F1),
			); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("error writing %s scores: %w", s, err)
	}

	slog.Info("wrote scores", "strictness", s, "path", path)

	return path, nil
}

// WriteAnnotations reconstructs the predicted spans of every document in brat
// format under <out>/<runID>/ together with a copy of the document text. An
// existing run directory is never merged into.
func (w *ResultWriter) WriteAnnotations(runID string) (string, error) {
	if err := os.MkdirAll(w.outDir, 0755); err != nil {
		return "", fmt.Errorf("error creating output directory: %w", err)
	}

	dir := filepath.Join(w.outDir, runID)
	if err := os.Mkdir(dir, 0755); err != nil {
		if errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("%w: %s", ErrRunExists, dir)
		}
		return "", fmt.Errorf("error creating run directory: %w", err)
	}

	labels := w.eval.Labels()

	for _, doc := range w.eval.Documents() {
		spans := w.eval.Predicted(doc.ID)

		err := writeFile(filepath.Join(dir, doc.ID+".ann"), func(bw *bufio.Writer) error {
			idx := 1
			for _, label := range labels {
				for _, span := range spans[label] {
					if _, err := fmt.Fprintf(bw, "T%d\t%s %d %d\t%s\n", idx, label, span.Start, span.Stop, span.Text); err != nil {
						return err
					}
					idx++
				}
			}
			return nil
		})
		if err != nil {
			return "", fmt.Errorf("error writing annotations for document %s: %w", doc.ID, err)
		}

		err = writeFile(filepath.Join(dir, doc.ID+".txt"), func(bw *bufio.Writer) error {
			_, err := bw.WriteString(utils.NormalizeLineEndings(doc.Text))
			return err
		})
		if err != nil {
			return "", fmt.Errorf("error writing text for document %s: %w", doc.ID, err)
		}
	}

	slog.Info("wrote reconstructed annotations", "dir", dir, "documents", len(w.eval.Documents()))

	return dir, nil
}

// WriteSummary stores the summary as JSON in the run directory.
func (w *ResultWriter) WriteSummary(summary api.RunSummary, runID string) (string, error) {
	dir := filepath.Join(w.outDir, runID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("error creating run directory: %w", err)
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("error encoding run summary: %w", err)
	}

	path := filepath.Join(dir, SummaryFileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("error writing run summary: %w", err)
	}

	return path, nil
}

func writeFile(path string, write func(*bufio.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	if err := write(bw); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	return f.Close()
}
