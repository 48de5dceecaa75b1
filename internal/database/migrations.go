package database

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/yukikurage/vuln-kanban-api/internal/models"
	"gorm.io/gorm"
)

type compositeIndex struct {
	name    string
	columns []string
}

// activityIndexes back the owner timeline query (owner, newest first).
var activityIndexes = []compositeIndex{
	{"idx_board_activities_owner_created", []string{"owner_id", "created_at"}},
	{"idx_board_activities_owner_task", []string{"owner_id", "task_id"}},
}

// EnsureIndexes adds the composite indexes the struct tags cannot express.
func EnsureIndexes(db *gorm.DB) error {
	table := models.Activity{}.TableName()

	for _, idx := range activityIndexes {
		if db.Migrator().HasIndex(&models.Activity{}, idx.name) {
			log.WithField("index", idx.name).Debug("Index already exists, skipping")
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, table, strings.Join(idx.columns, ", "))
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.WithFields(log.Fields{"index": idx.name, "table": table}).Info("Created index")
	}

	return nil
}
