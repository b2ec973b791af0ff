package content

import (
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/philoatlas-backend/internal/domain"
	"github.com/yungbote/philoatlas-backend/internal/platform/dbctx"
	"github.com/yungbote/philoatlas-backend/internal/platform/logger"
)

type MetadataEntryRepo interface {
	GetByContentIDs(dbc dbctx.Context, contentIDs []uuid.UUID) ([]*types.MetadataEntry, error)
	// ReplaceForContent deletes every entry of contentID and inserts values instead.
	ReplaceForContent(dbc dbctx.Context, contentID uuid.UUID, values map[string]string) ([]*types.MetadataEntry, error)
	DistinctKeys(dbc dbctx.Context, contentType types.ContentType) ([]string, error)
	FullDeleteByContentIDs(dbc dbctx.Context, contentIDs []uuid.UUID) error
}

type metadataEntryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMetadataEntryRepo(db *gorm.DB, baseLog *logger.Logger) MetadataEntryRepo {
	return &metadataEntryRepo{db: db, log: baseLog.With("repo", "MetadataEntryRepo")}
}

func (r *metadataEntryRepo) GetByContentIDs(dbc dbctx.Context, contentIDs []uuid.UUID) ([]*types.MetadataEntry, error) {
	var out []*types.MetadataEntry
	if len(contentIDs) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("content_id IN ?", contentIDs).
		Order("content_id ASC, key ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *metadataEntryRepo) ReplaceForContent(dbc dbctx.Context, contentID uuid.UUID, values map[string]string) ([]*types.MetadataEntry, error) {
	t := dbc.DB(r.db)
	if err := t.Where("content_id = ?", contentID).Delete(&types.MetadataEntry{}).Error; err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return []*types.MetadataEntry{}, nil
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([]*types.MetadataEntry, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, &types.MetadataEntry{
			ContentID: contentID,
			Key:       k,
			Value:     values[k],
		})
	}
	if err := t.Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// DistinctKeys lists the metadata keys in use, optionally restricted to one content type.
func (r *metadataEntryRepo) DistinctKeys(dbc dbctx.Context, contentType types.ContentType) ([]string, error) {
	q := dbc.DB(r.db).
		Table("content_metadata AS m").
		Select("DISTINCT m.key")
	if contentType != "" {
		q = q.Joins("JOIN content c ON c.id = m.content_id").
			Where("c.type = ?", contentType)
	}
	keys := []string{}
	if err := q.Order("m.key ASC").Scan(&keys).Error; err != nil {
		return nil, err
	}
	return keys, nil
}

func (r *metadataEntryRepo) FullDeleteByContentIDs(dbc dbctx.Context, contentIDs []uuid.UUID) error {
	if len(contentIDs) == 0 {
		return nil
	}
	return dbc.DB(r.db).
		Where("content_id IN ?", contentIDs).
		Delete(&types.MetadataEntry{}).Error
}
