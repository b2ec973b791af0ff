package domain

import (
	"github.com/yungbote/philoatlas-backend/internal/domain/content"
	"github.com/yungbote/philoatlas-backend/internal/domain/user"
)

type ContentType = content.Type

const (
	ContentTypePhilosopher = content.TypePhilosopher
	ContentTypeQuestion    = content.TypeQuestion
	ContentTypeTerm        = content.TypeTerm
)

type MetadataDataType = content.DataType

const (
	DataTypeString = content.DataTypeString
	DataTypeNumber = content.DataTypeNumber
	DataTypeDate   = content.DataTypeDate
	DataTypeText   = content.DataTypeText
)

type Content = content.Content
type MetadataEntry = content.MetadataEntry
type MetadataSchema = content.MetadataSchema
type ContentRelationship = content.ContentRelationship
type RelatedContent = content.RelatedContent

type User = user.User

var (
	ParseContentType = content.ParseType
	ContentTypes     = content.Types
	ValidateContent  = content.ValidateFor
)
