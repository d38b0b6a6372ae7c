package migration_1

import (
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Drop diagnostics were only logged before this migration.
type EvaluationRun struct {
	Diagnostics datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'"`
}

func Migration(db *gorm.DB) error {
	if err := db.Migrator().AddColumn(&EvaluationRun{}, "Diagnostics"); err != nil {
		return fmt.Errorf("error adding diagnostics column: %w", err)
	}

	if err := db.Model(&EvaluationRun{}).
		Where("diagnostics IS NULL").
		Update("diagnostics", datatypes.JSON("{}")).Error; err != nil {
		return fmt.Errorf("error setting default value for diagnostics: %w", err)
	}

	return nil
}

func Rollback(db *gorm.DB) error {
	if err := db.Migrator().DropColumn(&EvaluationRun{}, "Diagnostics"); err != nil {
		return fmt.Errorf("error dropping diagnostics column: %w", err)
	}

	return nil
}
