package api

import (
	"time"

	"github.com/google/uuid"
)

type LabelScore struct {
	Label      string
	Strictness string

	TruePositives  int
	FalsePositives int
	FalseNegatives int

	Precision float64
	Recall    float64
	F1        float64
}

type RunSummary struct {
	Id        uuid.UUID
	RunId     string
	ModelName string

	Labels []string

	Documents           int
	OfferedAnnotations  int
	RetainedAnnotations int

	Scores      []LabelScore
	Diagnostics map[string]int

	CreationTime time.Time

	ScoreFiles     []string `json:"ScoreFiles,omitempty"`
	AnnotationsDir string   `json:"AnnotationsDir,omitempty"`
}

// Score returns the entry for label under the given strictness.
func (s RunSummary) Score(label, strictness string) (LabelScore, bool) {
	for _, score := range s.Scores {
		if score.Label == label && score.Strictness == strictness {
			return score, true
		}
	}
	return LabelScore{}, false
}
