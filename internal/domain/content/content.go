package content

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Content is the single polymorphic entity behind philosophers, questions and terms.
type Content struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Title              string          `gorm:"column:title;not null;index" json:"title"`
	Body               string          `gorm:"column:content;type:text" json:"content"`
	Description        string          `gorm:"column:description;type:text" json:"description"`
	Type               Type            `gorm:"column:type;type:varchar(32);not null;index" json:"type"`
	FullPicture        *string         `gorm:"column:full_picture" json:"full_picture,omitempty"`
	DescriptionPicture *string         `gorm:"column:description_picture" json:"description_picture,omitempty"`
	Metadata           []MetadataEntry `gorm:"foreignKey:ContentID;references:ID" json:"-"`
	CreatedAt          time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (Content) TableName() string { return "content" }

func (c *Content) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// MetadataEntry is one stored attribute of a content item. Values are always strings.
type MetadataEntry struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ContentID uuid.UUID `gorm:"type:uuid;column:content_id;not null;index" json:"content_id"`
	Key       string    `gorm:"column:key;not null;index" json:"key"`
	Value     string    `gorm:"column:value;type:text;not null" json:"value"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (MetadataEntry) TableName() string { return "content_metadata" }

func (m *MetadataEntry) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
