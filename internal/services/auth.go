package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/yungbote/philoatlas-backend/internal/data/repos"
	types "github.com/yungbote/philoatlas-backend/internal/domain"
	"github.com/yungbote/philoatlas-backend/internal/platform/apierr"
	"github.com/yungbote/philoatlas-backend/internal/platform/ctxutil"
	"github.com/yungbote/philoatlas-backend/internal/platform/dbctx"
	"github.com/yungbote/philoatlas-backend/internal/platform/logger"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 64
	minPasswordLength = 6
)

type LoginResult struct {
	AccessToken string      `json:"access_token"`
	User        *types.User `json:"user"`
}

type AuthService interface {
	Signup(ctx context.Context, username, password string) (*types.User, error)
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	Profile(ctx context.Context) (*types.User, error)
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetAccessTTL() time.Duration
}

type authService struct {
	log          *logger.Logger
	userRepo     repos.UserRepo
	jwtSecretKey []byte
	accessTTL    time.Duration
	bcryptCost   int
}

func NewAuthService(log *logger.Logger, userRepo repos.UserRepo, jwtSecretKey string, accessTTL time.Duration) AuthService {
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	return &authService{
		log:          log.With("service", "AuthService"),
		userRepo:     userRepo,
		jwtSecretKey: []byte(jwtSecretKey),
		accessTTL:    accessTTL,
		bcryptCost:   bcrypt.DefaultCost,
	}
}

func (as *authService) GetAccessTTL() time.Duration { return as.accessTTL }

func (as *authService) Signup(ctx context.Context, username, password string) (*types.User, error) {
	username = strings.TrimSpace(username)
	if n := utf8.RuneCountInString(username); n < minUsernameLength || n > maxUsernameLength {
		return nil, apierr.Validation("username must be %d to %d characters", minUsernameLength, maxUsernameLength)
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		return nil, apierr.Validation("password must be at least %d characters", minPasswordLength)
	}

	dbc := dbctx.Of(ctx)
	exists, err := as.userRepo.UsernameExists(dbc, username)
	if err != nil {
		as.log.Error("signup lookup failed", "error", err)
		return nil, apierr.Internal(err)
	}
	if exists {
		return nil, apierr.Unauthorized("username already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), as.bcryptCost)
	if err != nil {
		as.log.Error("password hash failed", "error", err)
		return nil, apierr.Internal(err)
	}

	created, err := as.userRepo.Create(dbc, []*types.User{{Username: username, Password: string(hash)}})
	if err != nil {
		// Lost a race against a concurrent signup for the same name.
		if taken, lookupErr := as.userRepo.UsernameExists(dbc, username); lookupErr == nil && taken {
			return nil, apierr.Unauthorized("username already taken")
		}
		as.log.Error("create user failed", "error", err)
		return nil, apierr.Internal(err)
	}
	as.log.Info("user signed up", "user_id", created[0].ID)
	return created[0], nil
}

func (as *authService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := as.userRepo.GetByUsername(dbctx.Of(ctx), strings.TrimSpace(username))
	if err != nil {
		as.log.Error("login lookup failed", "error", err)
		return nil, apierr.Internal(err)
	}
	if user == nil {
		return nil, apierr.Unauthorized("invalid username or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apierr.Unauthorized("invalid username or password")
	}

	token, err := as.generateAccessToken(user)
	if err != nil {
		as.log.Error("sign access token failed", "error", err)
		return nil, apierr.Internal(err)
	}
	return &LoginResult{AccessToken: token, User: user}, nil
}

func (as *authService) generateAccessToken(user *types.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      user.ID.String(),
		"username": user.Username,
		"iat":      now.Unix(),
		"exp":      now.Add(as.accessTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(as.jwtSecretKey)
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		return as.jwtSecretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ctx, apierr.Unauthorized("token expired")
		}
		return ctx, apierr.Unauthorized("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ctx, apierr.Unauthorized("invalid token claims")
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return ctx, apierr.Unauthorized("invalid token subject")
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return ctx, apierr.Unauthorized("invalid token subject")
	}
	username, _ := claims["username"].(string)

	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{
		TokenString: tokenString,
		UserID:      userID,
		Username:    username,
	}), nil
}

func (as *authService) Profile(ctx context.Context) (*types.User, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.Unauthorized("not authenticated")
	}
	users, err := as.userRepo.GetByIDs(dbctx.Of(ctx), []uuid.UUID{rd.UserID})
	if err != nil {
		as.log.Error("profile lookup failed", "error", err)
		return nil, apierr.Internal(fmt.Errorf("load profile: %w", err))
	}
	if len(users) == 0 {
		return nil, apierr.Unauthorized("user no longer exists")
	}
	return users[0], nil
}
