package database

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	RunRunning   string = "RUNNING"
	RunCompleted string = "COMPLETED"
	RunFailed    string = "FAILED"
)

type EvaluationRun struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	RunId     string    `gorm:"size:100;not null;uniqueIndex:idx_model_run"`
	ModelName string    `gorm:"size:100;not null;uniqueIndex:idx_model_run"`

	Status         string `gorm:"size:20;not null"`
	Error          sql.NullString
	CreationTime   time.Time
	CompletionTime sql.NullTime

	Labels datatypes.JSON `gorm:"type:jsonb"` // ["finding","negation"]

	Documents           int `gorm:"default:0"`
	OfferedAnnotations  int `gorm:"default:0"`
	RetainedAnnotations int `gorm:"default:0"`

	Diagnostics datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'"` // {"alignment_miss": 2}

	ResultsPrefix sql.NullString

	Scores []LabelScore `gorm:"foreignKey:EvaluationRunId;constraint:OnDelete:CASCADE"`
}

type LabelScore struct {
	EvaluationRunId uuid.UUID `gorm:"type:uuid;primaryKey"`
	Label           string    `gorm:"primaryKey"`
	Strictness      string    `gorm:"primaryKey;size:20"`

	TruePositives  int
	FalsePositives int
	FalseNegatives int

	Precision float64
	Recall    float64
	F1        float64
}
