package database

import (
	"encoding/json"
	"fmt"

	"ner-eval/pkg/api"
)

func convertRun(run EvaluationRun) (api.RunSummary, error) {
	summary := api.RunSummary{
		Id:                  run.Id,
		RunId:               run.RunId,
		ModelName:           run.ModelName,
		Documents:           run.Documents,
		OfferedAnnotations:  run.OfferedAnnotations,
		RetainedAnnotations: run.RetainedAnnotations,
		CreationTime:        run.CreationTime,
	}

	if len(run.Labels) > 0 {
		if err := json.Unmarshal(run.Labels, &summary.Labels); err != nil {
			return api.RunSummary{}, fmt.Errorf("invalid labels JSON for run %s: %w", run.Id, err)
		}
	}

	if len(run.Diagnostics) > 0 {
		if err := json.Unmarshal(run.Diagnostics, &summary.Diagnostics); err != nil {
			return api.RunSummary{}, fmt.Errorf("invalid diagnostics JSON for run %s: %w", run.Id, err)
		}
	}

	for _, s := range run.Scores {
		summary.Scores = append(summary.Scores, api.LabelScore{
			Label:          s.Label,
			Strictness:     s.Strictness,
			TruePositives:  s.TruePositives,
			FalsePositives: s.FalsePositives,
			FalseNegatives: s.FalseNegatives,
			Precision:      s.Precision,
			Recall:         s.Recall,
			F1:             s.F1,
		})
	}

	return summary, nil
}
