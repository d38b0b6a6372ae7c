package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ner-eval/pkg/api"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrRunNotFound = errors.New("evaluation run not found")

// CreateRun records a run as started. The same run id may be used by
// different models.
func CreateRun(ctx context.Context, db *gorm.DB, modelName, runID string) (EvaluationRun, error) {
	run := EvaluationRun{
		Id:           uuid.New(),
		RunId:        runID,
		ModelName:    modelName,
		Status:       RunRunning,
		CreationTime: time.Now().UTC(),
		Labels:       datatypes.JSON("[]"),
		Diagnostics:  datatypes.JSON("{}"),
	}

	if err := db.WithContext(ctx).Create(&run).Error; err != nil {
		return EvaluationRun{}, fmt.Errorf("error creating run %s for model %s: %w", runID, modelName, err)
	}

	return run, nil
}

// CompleteRun stores the results of a finished run together with its per
// label scores.
func CompleteRun(ctx context.Context, db *gorm.DB, id uuid.UUID, summary api.RunSummary, resultsPrefix string) error {
	labels, err := json.Marshal(summary.Labels)
	if err != nil {
		return fmt.Errorf("error encoding labels: %w", err)
	}

	diagnostics, err := json.Marshal(summary.Diagnostics)
	if err != nil {
		return fmt.Errorf("error encoding diagnostics: %w", err)
	}

	scores := make([]LabelScore, 0, len(summary.Scores))
	for _, s := range summary.Scores {
		scores = append(scores, LabelScore{
			EvaluationRunId: id,
			Label:           s.Label,
			Strictness:      s.Strictness,
			TruePositives:   s.TruePositives,
			FalsePositives:  s.FalsePositives,
			FalseNegatives:  s.FalseNegatives,
			Precision:       s.Precision,
			Recall:          s.Recall,
			F1:              s.F1,
		})
	}

	return db.WithContext(ctx).Transaction(func(txn *gorm.DB) error {
		updates := map[string]any{
			"status":               RunCompleted,
			"completion_time":      time.Now().UTC(),
			"labels":               datatypes.JSON(labels),
			"documents":            summary.Documents,
			"offered_annotations":  summary.OfferedAnnotations,
			"retained_annotations": summary.RetainedAnnotations,
			"diagnostics":          datatypes.JSON(diagnostics),
			"results_prefix":       sql.NullString{String: resultsPrefix, Valid: resultsPrefix != ""},
		}

		result := txn.Model(&EvaluationRun{Id: id}).Updates(updates)
		if result.Error != nil {
			return fmt.Errorf("error updating run %s: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: %s", ErrRunNotFound, id)
		}

		if len(scores) > 0 {
			if err := txn.Create(&scores).Error; err != nil {
				return fmt.Errorf("error saving scores for run %s: %w", id, err)
			}
		}

		return nil
	})
}

func GetRun(ctx context.Context, db *gorm.DB, modelName, runID string) (api.RunSummary, error) {
	var run EvaluationRun
	err := db.WithContext(ctx).
		Where("model_name = ? AND run_id = ?", modelName, runID).
		Preload("Scores", func(db *gorm.DB) *gorm.DB { return db.Order("label, strictness") }).
		First(&run).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return api.RunSummary{}, fmt.Errorf("%w: model %s run %s", ErrRunNotFound, modelName, runID)
		}
		return api.RunSummary{}, fmt.Errorf("error querying run %s: %w", runID, err)
	}

	return convertRun(run)
}

// ListRuns returns the completed runs of a model, oldest first.
func ListRuns(ctx context.Context, db *gorm.DB, modelName string) ([]api.RunSummary, error) {
	var runs []EvaluationRun
	err := db.WithContext(ctx).
		Where("model_name = ? AND status = ?", modelName, RunCompleted).
		Order("creation_time").
		Preload("Scores", func(db *gorm.DB) *gorm.DB { return db.Order("label, strictness") }).
		Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("error listing runs for model %s: %w", modelName, err)
	}

	out := make([]api.RunSummary, 0, len(runs))
	for _, run := range runs {
		summary, err := convertRun(run)
		if err != nil {
			return nil, err
		}
		out = append(out, summary)
	}
	return out, nil
}

func FailRun(ctx context.Context, db *gorm.DB, id uuid.UUID, runErr error) {
	updates := map[string]any{
		"status":          RunFailed,
		"completion_time": time.Now().UTC(),
		"error":           sql.NullString{String: runErr.Error(), Valid: true},
	}

	if err := db.WithContext(ctx).Model(&EvaluationRun{Id: id}).Updates(updates).Error; err != nil {
		slog.Error("error marking run as failed", "id", id, "error", err)
	}
}
