package core

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"

	"ner-eval/internal/core/types"
	"ner-eval/pkg/api"
)

const DefaultOutsideLabel = "O"

type EvaluationInput struct {
	// ID identifies the run in the summary, typically the database id of
	// the run. A new id is generated when it is unset.
	ID        uuid.UUID
	RunID     string
	ModelName string
	OutDir    string
	// StartedAt is copied into the summary as its creation time.
	StartedAt time.Time

	Documents []*types.Document
	// Annotations holds the parsed annotation records of each document, keyed
	// by document id.
	Annotations map[string][]types.RawAnnotation

	// Labels is the ordered label set to score. When empty it is detected
	// from the gold and predicted labels.
	Labels       []string
	OutsideLabel string

	Workers     int
	Diagnostics *Diagnostics
}

// RunEvaluation attaches the gold annotations to the documents, scores the
// predictions under both strictness levels and writes the reports, the
// reconstructed annotations and a JSON summary to OutDir.
func RunEvaluation(in EvaluationInput) (api.RunSummary, error) {
	if in.RunID == "" {
		return api.RunSummary{}, fmt.Errorf("run id must be set")
	}

	diag := in.Diagnostics
	if diag == nil {
		diag = NewDiagnostics()
	}
	outside := in.OutsideLabel
	if outside == "" {
		outside = DefaultOutsideLabel
	}

	known := make(map[string]struct{}, len(in.Documents))
	builder := NewGoldBuilder(diag)
	for _, doc := range in.Documents {
		known[doc.ID] = struct{}{}
		builder.Build(doc, in.Annotations[doc.ID])
	}

	for _, docID := range slices.Sorted(maps.Keys(in.Annotations)) {
		if _, ok := known[docID]; ok {
			continue
		}
		slog.Warn("annotations found for unknown document", "doc_id", docID, "annotations", len(in.Annotations[docID]))
		diag.Record(DropEvent{Reason: UnknownDocument, DocID: docID, Start: -1, Stop: -1})
	}

	labels := in.Labels
	if len(labels) == 0 {
		labels = DetectLabels(builder.DetectedLabels(), in.Documents, outside)
		slog.Info("detected labels", "labels", labels)
	}

	eval := NewEvaluator(in.Documents, labels, WithWorkers(in.Workers), WithDiagnostics(diag))
	writer := NewResultWriter(in.OutDir, eval)

	id := in.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	summary := api.RunSummary{
		Id:                  id,
		RunId:               in.RunID,
		ModelName:           in.ModelName,
		Labels:              eval.Labels(),
		Documents:           len(in.Documents),
		OfferedAnnotations:  builder.Offered(),
		RetainedAnnotations: builder.Retained(),
		Scores:              LabelScores(eval),
		CreationTime:        in.StartedAt,
	}

	// The run directory is claimed before any report is written so that a
	// rerun under an existing id leaves the earlier reports untouched.
	dir, err := writer.WriteAnnotations(in.RunID)
	if err != nil {
		return api.RunSummary{}, err
	}
	summary.AnnotationsDir = dir

	for _, s := range Strictnesses {
		path, err := writer.WriteScores(string(s), in.ModelName, in.RunID)
		if err != nil {
			return api.RunSummary{}, err
		}
		summary.ScoreFiles = append(summary.ScoreFiles, path)
	}

	summary.Diagnostics = DiagnosticCounts(diag)

	if _, err := writer.WriteSummary(summary, in.RunID); err != nil {
		return api.RunSummary{}, err
	}

	return summary, nil
}

// DetectLabels returns the gold labels followed by any predicted labels not
// already present, excluding the outside label.
func DetectLabels(goldLabels []string, docs []*types.Document, outside string) []string {
	var labels []string
	seen := map[string]struct{}{outside: {}}

	add := func(label string) {
		if _, ok := seen[label]; ok {
			return
		}
		seen[label] = struct{}{}
		labels = append(labels, label)
	}

	for _, label := range goldLabels {
		add(label)
	}
	for _, doc := range docs {
		for _, tok := range doc.TokenLabels {
			add(tok.Label)
		}
	}

	return labels
}

func LabelScores(eval *Evaluator) []api.LabelScore {
	var out []api.LabelScore
	for _, label := range eval.Labels() {
		for _, s := range Strictnesses {
			counts := eval.Counts(label, s)
			scores := ComputeScores(counts)
			out = append(out, api.LabelScore{
				Label:          label,
				Strictness:     string(s),
				TruePositives:  counts.TP,
				FalsePositives: counts.FP,
				FalseNegatives: counts.FN,
				Precision:      scores.Precision,
				Recall:         scores.Recall,
				F1:             scores.F1,
			})
		}
	}
	return out
}

func DiagnosticCounts(diag *Diagnostics) map[string]int {
	out := make(map[string]int)
	for reason, n := range diag.Counts() {
		out[string(reason)] = n
	}
	return out
}
