package content

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/philoatlas-backend/internal/domain"
	"github.com/yungbote/philoatlas-backend/internal/platform/dbctx"
	"github.com/yungbote/philoatlas-backend/internal/platform/logger"
)

type MetadataSchemaRepo interface {
	Create(dbc dbctx.Context, rows []*types.MetadataSchema) ([]*types.MetadataSchema, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.MetadataSchema, error)
	GetByType(dbc dbctx.Context, contentType types.ContentType) ([]*types.MetadataSchema, error)
	GetByTypeAndKey(dbc dbctx.Context, contentType types.ContentType, key string) (*types.MetadataSchema, error)
	Update(dbc dbctx.Context, row *types.MetadataSchema) error
	Count(dbc dbctx.Context) (int64, error)
	FullDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error
}

type metadataSchemaRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMetadataSchemaRepo(db *gorm.DB, baseLog *logger.Logger) MetadataSchemaRepo {
	return &metadataSchemaRepo{db: db, log: baseLog.With("repo", "MetadataSchemaRepo")}
}

func (r *metadataSchemaRepo) Create(dbc dbctx.Context, rows []*types.MetadataSchema) ([]*types.MetadataSchema, error) {
	if len(rows) == 0 {
		return []*types.MetadataSchema{}, nil
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *metadataSchemaRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.MetadataSchema, error) {
	var row types.MetadataSchema
	err := dbc.DB(r.db).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *metadataSchemaRepo) GetByType(dbc dbctx.Context, contentType types.ContentType) ([]*types.MetadataSchema, error) {
	out := []*types.MetadataSchema{}
	if err := dbc.DB(r.db).
		Where("content_type = ?", contentType).
		Order("display_order ASC, key ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *metadataSchemaRepo) GetByTypeAndKey(dbc dbctx.Context, contentType types.ContentType, key string) (*types.MetadataSchema, error) {
	var row types.MetadataSchema
	err := dbc.DB(r.db).
		Where("content_type = ? AND key = ?", contentType, key).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *metadataSchemaRepo) Update(dbc dbctx.Context, row *types.MetadataSchema) error {
	return dbc.DB(r.db).
		Model(&types.MetadataSchema{}).
		Where("id = ?", row.ID).
		Updates(map[string]any{
			"key":           row.Key,
			"display_name":  row.DisplayName,
			"data_type":     row.DataType,
			"is_required":   row.IsRequired,
			"display_order": row.DisplayOrder,
		}).Error
}

func (r *metadataSchemaRepo) Count(dbc dbctx.Context) (int64, error) {
	var n int64
	if err := dbc.DB(r.db).Model(&types.MetadataSchema{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *metadataSchemaRepo) FullDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return dbc.DB(r.db).
		Where("id IN ?", ids).
		Delete(&types.MetadataSchema{}).Error
}
