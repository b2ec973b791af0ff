package testutil

import (
	"context"
	"testing"

	"gorm.io/gorm"

	types "github.com/yungbote/philoatlas-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, username string) *types.User {
	tb.Helper()
	u := &types.User{Username: username, Password: "pw"}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedContent(tb testing.TB, ctx context.Context, tx *gorm.DB, t types.ContentType, title string, meta map[string]string) *types.Content {
	tb.Helper()
	c := &types.Content{Title: title, Type: t, Body: title + " body", Description: title + " description"}
	if err := tx.WithContext(ctx).Omit("Metadata").Create(c).Error; err != nil {
		tb.Fatalf("seed content: %v", err)
	}
	for k, v := range meta {
		m := &types.MetadataEntry{ContentID: c.ID, Key: k, Value: v}
		if err := tx.WithContext(ctx).Create(m).Error; err != nil {
			tb.Fatalf("seed metadata: %v", err)
		}
	}
	return c
}

func SeedLink(tb testing.TB, ctx context.Context, tx *gorm.DB, a, b *types.Content) {
	tb.Helper()
	rows := []*types.ContentRelationship{
		{Content1ID: a.ID, Content2ID: b.ID},
		{Content1ID: b.ID, Content2ID: a.ID},
	}
	if err := tx.WithContext(ctx).Create(&rows).Error; err != nil {
		tb.Fatalf("seed link: %v", err)
	}
}

func PtrString(v string) *string { return &v }
