package migration_0

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type EvaluationRun struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	RunId     string    `gorm:"size:100;not null;uniqueIndex:idx_model_run"`
	ModelName string    `gorm:"size:100;not null;uniqueIndex:idx_model_run"`

	Status         string `gorm:"size:20;not null"`
	Error          sql.NullString
	CreationTime   time.Time
	CompletionTime sql.NullTime

	Labels datatypes.JSON `gorm:"type:jsonb"`

	Documents           int `gorm:"default:0"`
	OfferedAnnotations  int `gorm:"default:0"`
	RetainedAnnotations int `gorm:"default:0"`

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

func Migration(db *gorm.DB) error {
	if err := db.AutoMigrate(&EvaluationRun{}, &LabelScore{}); err != nil {
		return fmt.Errorf("error creating evaluation tables: %w", err)
	}
	return nil
}
