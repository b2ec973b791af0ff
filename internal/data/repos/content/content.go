package content

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/philoatlas-backend/internal/domain"
	"github.com/yungbote/philoatlas-backend/internal/platform/dbctx"
	"github.com/yungbote/philoatlas-backend/internal/platform/logger"
)

// ListFilter selects a page of content. Zero values mean "no filter".
type ListFilter struct {
	Search string
	Type   types.ContentType
	Offset int
	Limit  int
}

type ContentRepo interface {
	Create(dbc dbctx.Context, rows []*types.Content) ([]*types.Content, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Content, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Content, error)
	ExistingIDs(dbc dbctx.Context, ids []uuid.UUID) ([]uuid.UUID, error)
	List(dbc dbctx.Context, filter ListFilter) ([]*types.Content, int64, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, fields map[string]any) error
	FullDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error
}

type contentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContentRepo(db *gorm.DB, baseLog *logger.Logger) ContentRepo {
	return &contentRepo{db: db, log: baseLog.With("repo", "ContentRepo")}
}

func (r *contentRepo) Create(dbc dbctx.Context, rows []*types.Content) ([]*types.Content, error) {
	if len(rows) == 0 {
		return []*types.Content{}, nil
	}
	if err := dbc.DB(r.db).Omit(clause.Associations).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetByID returns the row with its metadata preloaded, or nil when it does not exist.
func (r *contentRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Content, error) {
	var row types.Content
	err := dbc.DB(r.db).
		Preload("Metadata", orderByKey).
		Where("id = ?", id).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *contentRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Content, error) {
	var out []*types.Content
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("id IN ?", ids).
		Order("title ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *contentRepo) ExistingIDs(dbc dbctx.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	var out []uuid.UUID
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Model(&types.Content{}).
		Where("id IN ?", ids).
		Pluck("id", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *contentRepo) List(dbc dbctx.Context, filter ListFilter) ([]*types.Content, int64, error) {
	base := func() *gorm.DB {
		q := dbc.DB(r.db).Model(&types.Content{})
		if s := strings.TrimSpace(filter.Search); s != "" {
			cond, pattern := titleMatch(q.Dialector.Name(), s)
			q = q.Where(cond, pattern)
		}
		if filter.Type != "" {
			q = q.Where("type = ?", filter.Type)
		}
		return q
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	out := []*types.Content{}
	if total == 0 {
		return out, 0, nil
	}
	q := base().Preload("Metadata", orderByKey).Order("title ASC, id ASC")
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *contentRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return dbc.DB(r.db).
		Model(&types.Content{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *contentRepo) FullDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return dbc.DB(r.db).
		Where("id IN ?", ids).
		Delete(&types.Content{}).Error
}

func orderByKey(db *gorm.DB) *gorm.DB {
	return db.Order("key ASC")
}

// titleMatch builds the case-insensitive substring match on title. Postgres
// folds Unicode with ILIKE; SQLite's LOWER only folds ASCII.
func titleMatch(dialect, search string) (string, string) {
	if dialect == "postgres" {
		return `title ILIKE ? ESCAPE '\'`, "%" + escapeLike(search) + "%"
	}
	return `LOWER(title) LIKE ? ESCAPE '\'`, "%" + escapeLike(strings.ToLower(search)) + "%"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
