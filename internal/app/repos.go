package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/philoatlas-backend/internal/data/repos"
	"github.com/yungbote/philoatlas-backend/internal/platform/logger"
)

type Repos struct {
	User                repos.UserRepo
	Content             repos.ContentRepo
	MetadataEntry       repos.MetadataEntryRepo
	ContentRelationship repos.ContentRelationshipRepo
	MetadataSchema      repos.MetadataSchemaRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:                repos.NewUserRepo(db, log),
		Content:             repos.NewContentRepo(db, log),
		MetadataEntry:       repos.NewMetadataEntryRepo(db, log),
		ContentRelationship: repos.NewContentRelationshipRepo(db, log),
		MetadataSchema:      repos.NewMetadataSchemaRepo(db, log),
	}
}
