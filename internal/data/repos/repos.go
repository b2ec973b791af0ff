package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/philoatlas-backend/internal/data/repos/content"
	"github.com/yungbote/philoatlas-backend/internal/data/repos/user"
	"github.com/yungbote/philoatlas-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo

type ContentRepo = content.ContentRepo
type MetadataEntryRepo = content.MetadataEntryRepo
type ContentRelationshipRepo = content.ContentRelationshipRepo
type MetadataSchemaRepo = content.MetadataSchemaRepo

type ContentListFilter = content.ListFilter
type ContentPair = content.Pair

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return user.NewUserRepo(db, baseLog)
}

func NewContentRepo(db *gorm.DB, baseLog *logger.Logger) ContentRepo {
	return content.NewContentRepo(db, baseLog)
}

func NewMetadataEntryRepo(db *gorm.DB, baseLog *logger.Logger) MetadataEntryRepo {
	return content.NewMetadataEntryRepo(db, baseLog)
}

func NewContentRelationshipRepo(db *gorm.DB, baseLog *logger.Logger) ContentRelationshipRepo {
	return content.NewContentRelationshipRepo(db, baseLog)
}

func NewMetadataSchemaRepo(db *gorm.DB, baseLog *logger.Logger) MetadataSchemaRepo {
	return content.NewMetadataSchemaRepo(db, baseLog)
}
