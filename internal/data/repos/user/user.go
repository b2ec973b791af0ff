package user

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/philoatlas-backend/internal/domain"
	"github.com/yungbote/philoatlas-backend/internal/platform/dbctx"
	"github.com/yungbote/philoatlas-backend/internal/platform/logger"
)

type UserRepo interface {
	Create(dbc dbctx.Context, users []*types.User) ([]*types.User, error)
	GetByIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.User, error)
	GetByUsername(dbc dbctx.Context, username string) (*types.User, error)
	UsernameExists(dbc dbctx.Context, username string) (bool, error)
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	repoLog := baseLog.With("repo", "UserRepo")
	return &userRepo{db: db, log: repoLog}
}

func (ur *userRepo) Create(dbc dbctx.Context, users []*types.User) ([]*types.User, error) {
	if len(users) == 0 {
		return []*types.User{}, nil
	}
	if err := dbc.DB(ur.db).Create(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (ur *userRepo) GetByIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.User, error) {
	var results []*types.User
	if len(userIDs) == 0 {
		return results, nil
	}
	if err := dbc.DB(ur.db).
		Where("id IN ?", userIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// GetByUsername returns nil when no user has that name.
func (ur *userRepo) GetByUsername(dbc dbctx.Context, username string) (*types.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, nil
	}
	var results []*types.User
	if err := dbc.DB(ur.db).
		Where("username = ?", username).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (ur *userRepo) UsernameExists(dbc dbctx.Context, username string) (bool, error) {
	var count int64
	if err := dbc.DB(ur.db).
		Model(&types.User{}).
		Where("username = ?", strings.TrimSpace(username)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
