package db

import (
	"fmt"

	types "github.com/yungbote/philoatlas-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&types.User{},

		&types.Content{},
		&types.MetadataEntry{},
		&types.MetadataSchema{},
		&types.ContentRelationship{},
	); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return EnsureContentIndexes(db)
}

// EnsureContentIndexes adds indexes gorm tags cannot express portably.
func EnsureContentIndexes(db *gorm.DB) error {
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_content_metadata_content_key ON content_metadata (content_id, key);`).Error; err != nil {
		return fmt.Errorf("create idx_content_metadata_content_key: %w", err)
	}
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_content_type_title ON content (type, title);`).Error; err != nil {
		return fmt.Errorf("create idx_content_type_title: %w", err)
	}
	return nil
}
