package content

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DataType is the declared type of a metadata attribute.
type DataType string

const (
	DataTypeString DataType = "string"
	DataTypeNumber DataType = "number"
	DataTypeDate   DataType = "date"
	DataTypeText   DataType = "text"
)

func (d DataType) Valid() bool {
	switch d {
	case DataTypeString, DataTypeNumber, DataTypeDate, DataTypeText:
		return true
	}
	return false
}

// MetadataSchema defines one attribute a content type may carry.
type MetadataSchema struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ContentType  Type      `gorm:"column:content_type;type:varchar(32);not null;index:idx_metadata_schema_type_key,unique,priority:1" json:"contentType"`
	Key          string    `gorm:"column:key;not null;index:idx_metadata_schema_type_key,unique,priority:2" json:"key"`
	DisplayName  string    `gorm:"column:display_name;not null" json:"displayName"`
	DataType     DataType  `gorm:"column:data_type;type:varchar(16);not null;default:string" json:"dataType"`
	IsRequired   bool      `gorm:"column:is_required;not null;default:false" json:"isRequired"`
	DisplayOrder int       `gorm:"column:display_order;not null;default:0" json:"displayOrder"`
	CreatedAt    time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (MetadataSchema) TableName() string { return "metadata_schema" }

func (m *MetadataSchema) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
