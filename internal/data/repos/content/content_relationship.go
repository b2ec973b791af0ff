package content

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/philoatlas-backend/internal/domain"
	"github.com/yungbote/philoatlas-backend/internal/platform/dbctx"
	"github.com/yungbote/philoatlas-backend/internal/platform/logger"
)

// Pair is an undirected link between two content items.
type Pair struct {
	A uuid.UUID
	B uuid.UUID
}

type ContentRelationshipRepo interface {
	// CreatePairs stores both directions of every pair, skipping edges that already exist.
	CreatePairs(dbc dbctx.Context, pairs []Pair) (int, error)
	GetByContentIDs(dbc dbctx.Context, contentIDs []uuid.UUID) ([]*types.ContentRelationship, error)
	GetRelatedContents(dbc dbctx.Context, contentID uuid.UUID, targetType types.ContentType) ([]*types.RelatedContent, error)
	// FullDeleteByContentIDs removes every edge touching the given ids, in either direction.
	FullDeleteByContentIDs(dbc dbctx.Context, contentIDs []uuid.UUID) error
}

type contentRelationshipRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContentRelationshipRepo(db *gorm.DB, baseLog *logger.Logger) ContentRelationshipRepo {
	return &contentRelationshipRepo{db: db, log: baseLog.With("repo", "ContentRelationshipRepo")}
}

func (r *contentRelationshipRepo) CreatePairs(dbc dbctx.Context, pairs []Pair) (int, error) {
	rows := make([]*types.ContentRelationship, 0, len(pairs)*2)
	for _, p := range pairs {
		if p.A == uuid.Nil || p.B == uuid.Nil || p.A == p.B {
			continue
		}
		rows = append(rows,
			&types.ContentRelationship{Content1ID: p.A, Content2ID: p.B},
			&types.ContentRelationship{Content1ID: p.B, Content2ID: p.A},
		)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	res := dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "content1_id"}, {Name: "content2_id"}},
			DoNothing: true,
		}).
		Create(&rows)
	if res.Error != nil {
		return 0, res.Error
	}
	return int(res.RowsAffected), nil
}

func (r *contentRelationshipRepo) GetByContentIDs(dbc dbctx.Context, contentIDs []uuid.UUID) ([]*types.ContentRelationship, error) {
	var out []*types.ContentRelationship
	if len(contentIDs) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("content1_id IN ? OR content2_id IN ?", contentIDs, contentIDs).
		Order("content1_id ASC, content2_id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// GetRelatedContents follows outgoing edges only; the mirrored edge makes that complete.
func (r *contentRelationshipRepo) GetRelatedContents(dbc dbctx.Context, contentID uuid.UUID, targetType types.ContentType) ([]*types.RelatedContent, error) {
	q := dbc.DB(r.db).
		Table("content_relationship AS r").
		Select("c.id AS id, c.title AS title, c.type AS type").
		Joins("JOIN content c ON c.id = r.content2_id").
		Where("r.content1_id = ?", contentID)
	if targetType != "" {
		q = q.Where("c.type = ?", targetType)
	}
	out := []*types.RelatedContent{}
	if err := q.Order("c.title ASC, c.id ASC").Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *contentRelationshipRepo) FullDeleteByContentIDs(dbc dbctx.Context, contentIDs []uuid.UUID) error {
	if len(contentIDs) == 0 {
		return nil
	}
	return dbc.DB(r.db).
		Where("content1_id IN ? OR content2_id IN ?", contentIDs, contentIDs).
		Delete(&types.ContentRelationship{}).Error
}
