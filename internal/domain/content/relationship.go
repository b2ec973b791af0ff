package content

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContentRelationship is one directed edge. Writers always store both directions.
type ContentRelationship struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Content1ID uuid.UUID `gorm:"type:uuid;column:content1_id;not null;index:idx_content_relationship_pair,unique,priority:1" json:"content1_id"`
	Content2ID uuid.UUID `gorm:"type:uuid;column:content2_id;not null;index:idx_content_relationship_pair,unique,priority:2;index" json:"content2_id"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (ContentRelationship) TableName() string { return "content_relationship" }

func (r *ContentRelationship) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// RelatedContent is the projection returned for the far end of an edge.
type RelatedContent struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
	Type  Type      `json:"type"`
}
