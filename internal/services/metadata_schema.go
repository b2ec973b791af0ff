package services

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"

	"github.com/yungbote/philoatlas-backend/internal/data/aggregates"
	"github.com/yungbote/philoatlas-backend/internal/data/cache"
	"github.com/yungbote/philoatlas-backend/internal/data/repos"
	types "github.com/yungbote/philoatlas-backend/internal/domain"
	"github.com/yungbote/philoatlas-backend/internal/platform/apierr"
	"github.com/yungbote/philoatlas-backend/internal/platform/dbctx"
	"github.com/yungbote/philoatlas-backend/internal/platform/logger"
)

//go:embed metadata_defaults.yaml
var defaultSchemaYAML []byte

// MetadataSchemaInput is one attribute definition as submitted by a client. A nil ID creates or
// replaces the definition with the same key.
type MetadataSchemaInput struct {
	ID           *uuid.UUID `json:"id,omitempty"`
	Key          string     `json:"key"`
	DisplayName  string     `json:"displayName"`
	DataType     string     `json:"dataType"`
	IsRequired   bool       `json:"isRequired"`
	DisplayOrder int        `json:"displayOrder"`
}

type ContentTypeInfo struct {
	Type        types.ContentType `json:"type"`
	DisplayName string            `json:"displayName"`
}

type MetadataValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

type MetadataSchemaService interface {
	GetMetadataSchema(ctx context.Context, rawType string) ([]*types.MetadataSchema, error)
	// SchemaFor is GetMetadataSchema without the not-found check; an undefined type yields an empty list.
	SchemaFor(ctx context.Context, contentType types.ContentType) ([]*types.MetadataSchema, error)
	UpsertMetadataSchema(ctx context.Context, rawType string, in MetadataSchemaInput) (*types.MetadataSchema, error)
	DeleteMetadataSchema(ctx context.Context, id uuid.UUID) error
	ValidateMetadata(ctx context.Context, rawType string, metadata map[string]any) (*MetadataValidationResult, error)
	ListTypes() []ContentTypeInfo
	ListKeys(ctx context.Context, rawType string) ([]string, error)
	SeedDefaults(ctx context.Context) (int, error)
	Warm(ctx context.Context) error
}

type metadataSchemaService struct {
	log        *logger.Logger
	tx         aggregates.TxRunner
	schemaRepo repos.MetadataSchemaRepo
	entryRepo  repos.MetadataEntryRepo
	cache      cache.SchemaCache
	loads      singleflight.Group

	mu       sync.Mutex
	versions map[types.ContentType]uint64
}

func NewMetadataSchemaService(
	log *logger.Logger,
	tx aggregates.TxRunner,
	schemaRepo repos.MetadataSchemaRepo,
	entryRepo repos.MetadataEntryRepo,
	schemaCache cache.SchemaCache,
) MetadataSchemaService {
	if schemaCache == nil {
		schemaCache = cache.NewMemorySchemaCache()
	}
	return &metadataSchemaService{
		log:        log.With("service", "MetadataSchemaService"),
		tx:         tx,
		schemaRepo: schemaRepo,
		entryRepo:  entryRepo,
		cache:      schemaCache,
		versions:   map[types.ContentType]uint64{},
	}
}

func parseTypeParam(raw string) (types.ContentType, error) {
	t, ok := types.ParseContentType(raw)
	if !ok {
		return "", apierr.Validation("unknown content type %q", strings.TrimSpace(raw))
	}
	return t, nil
}

func (s *metadataSchemaService) GetMetadataSchema(ctx context.Context, rawType string) ([]*types.MetadataSchema, error) {
	t, err := parseTypeParam(rawType)
	if err != nil {
		return nil, err
	}
	defs, err := s.SchemaFor(ctx, t)
	if err != nil {
		return nil, err
	}
	if len(defs) == 0 {
		return nil, apierr.NotFound("no metadata schema defined for %s", t)
	}
	return defs, nil
}

func (s *metadataSchemaService) SchemaFor(ctx context.Context, contentType types.ContentType) ([]*types.MetadataSchema, error) {
	defs, ok, err := s.cache.Get(ctx, contentType)
	if err != nil {
		s.log.Warn("schema cache read failed, using database", "content_type", contentType, "error", err)
	} else if ok {
		return defs, nil
	}

	// Shared by every waiter, so it is detached from the caller's cancellation.
	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := s.loads.Do(string(contentType), func() (any, error) {
		version := s.version(contentType)
		rows, err := s.schemaRepo.GetByType(dbctx.Of(loadCtx), contentType)
		if err != nil {
			return nil, err
		}
		s.storeIfCurrent(loadCtx, contentType, version, rows)
		return rows, nil
	})
	if err != nil {
		s.log.Error("load metadata schema failed", "content_type", contentType, "error", err)
		return nil, apierr.Internal(err)
	}
	return v.([]*types.MetadataSchema), nil
}

func (s *metadataSchemaService) version(t types.ContentType) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.versions[t]
}

// storeIfCurrent caches rows loaded at version. An invalidation that lands while Set is in flight
// bumps the version, and the entry is dropped again.
func (s *metadataSchemaService) storeIfCurrent(ctx context.Context, t types.ContentType, version uint64, rows []*types.MetadataSchema) {
	if s.version(t) != version {
		return
	}
	if err := s.cache.Set(ctx, t, rows); err != nil {
		s.log.Warn("schema cache write failed", "content_type", t, "error", err)
		return
	}
	if s.version(t) != version {
		if err := s.cache.Invalidate(ctx, t); err != nil {
			s.log.Warn("schema cache invalidate failed", "content_type", t, "error", err)
		}
	}
}

// invalidate drops the cached schema and fences off loads that started before the write.
func (s *metadataSchemaService) invalidate(ctx context.Context, t types.ContentType) {
	s.mu.Lock()
	s.versions[t]++
	s.mu.Unlock()
	s.loads.Forget(string(t))
	if err := s.cache.Invalidate(ctx, t); err != nil {
		s.log.Warn("schema cache invalidate failed", "content_type", t, "error", err)
	}
}

func (s *metadataSchemaService) UpsertMetadataSchema(ctx context.Context, rawType string, in MetadataSchemaInput) (*types.MetadataSchema, error) {
	t, err := parseTypeParam(rawType)
	if err != nil {
		return nil, err
	}
	row, err := normalizeSchemaInput(t, in)
	if err != nil {
		return nil, err
	}

	err = s.tx.InTx(ctx, func(dbc dbctx.Context) error {
		if in.ID != nil && *in.ID != uuid.Nil {
			existing, err := s.schemaRepo.GetByID(dbc, *in.ID)
			if err != nil {
				return err
			}
			if existing == nil {
				return apierr.NotFound("metadata schema %s not found", *in.ID)
			}
			if existing.ContentType != t {
				return apierr.Validation("metadata schema %s belongs to %s, not %s", existing.ID, existing.ContentType, t)
			}
			clash, err := s.schemaRepo.GetByTypeAndKey(dbc, t, row.Key)
			if err != nil {
				return err
			}
			if clash != nil && clash.ID != existing.ID {
				return apierr.Validation("key %q is already defined for %s", row.Key, t)
			}
			row.ID = existing.ID
			row.CreatedAt = existing.CreatedAt
			return s.schemaRepo.Update(dbc, row)
		}

		existing, err := s.schemaRepo.GetByTypeAndKey(dbc, t, row.Key)
		if err != nil {
			return err
		}
		if existing != nil {
			row.ID = existing.ID
			row.CreatedAt = existing.CreatedAt
			return s.schemaRepo.Update(dbc, row)
		}
		_, err = s.schemaRepo.Create(dbc, []*types.MetadataSchema{row})
		return err
	})
	if err != nil {
		return nil, s.fail("upsert metadata schema", err)
	}

	s.invalidate(ctx, t)
	s.log.Info("metadata schema upserted", "content_type", t, "key", row.Key, "id", row.ID)

	saved, err := s.schemaRepo.GetByID(dbctx.Of(ctx), row.ID)
	if err != nil {
		return nil, s.fail("reload metadata schema", err)
	}
	if saved == nil {
		return row, nil
	}
	return saved, nil
}

func normalizeSchemaInput(t types.ContentType, in MetadataSchemaInput) (*types.MetadataSchema, error) {
	key := strings.TrimSpace(in.Key)
	if key == "" {
		return nil, apierr.Validation("key is required")
	}
	if len(key) > 100 {
		return nil, apierr.Validation("key must be at most 100 characters")
	}
	dataType := types.MetadataDataType(strings.ToLower(strings.TrimSpace(in.DataType)))
	if dataType == "" {
		dataType = types.DataTypeString
	}
	if !dataType.Valid() {
		return nil, apierr.Validation("dataType must be one of string, number, date, text")
	}
	if in.DisplayOrder < 0 {
		return nil, apierr.Validation("displayOrder must not be negative")
	}
	displayName := strings.TrimSpace(in.DisplayName)
	if displayName == "" {
		displayName = key
	}
	return &types.MetadataSchema{
		ContentType:  t,
		Key:          key,
		DisplayName:  displayName,
		DataType:     dataType,
		IsRequired:   in.IsRequired,
		DisplayOrder: in.DisplayOrder,
	}, nil
}

func (s *metadataSchemaService) DeleteMetadataSchema(ctx context.Context, id uuid.UUID) error {
	var contentType types.ContentType
	err := s.tx.InTx(ctx, func(dbc dbctx.Context) error {
		row, err := s.schemaRepo.GetByID(dbc, id)
		if err != nil {
			return err
		}
		if row == nil {
			return apierr.NotFound("metadata schema %s not found", id)
		}
		contentType = row.ContentType
		return s.schemaRepo.FullDeleteByIDs(dbc, []uuid.UUID{id})
	})
	if err != nil {
		return s.fail("delete metadata schema", err)
	}
	s.invalidate(ctx, contentType)
	s.log.Info("metadata schema deleted", "content_type", contentType, "id", id)
	return nil
}

func (s *metadataSchemaService) ValidateMetadata(ctx context.Context, rawType string, metadata map[string]any) (*MetadataValidationResult, error) {
	t, err := parseTypeParam(rawType)
	if err != nil {
		return nil, err
	}
	values, err := StringifyMetadata(metadata)
	if err != nil {
		return nil, apierr.Validation("%v", err)
	}
	defs, err := s.SchemaFor(ctx, t)
	if err != nil {
		return nil, err
	}
	problems := validateMetadataValues(values, defs)
	return &MetadataValidationResult{Valid: len(problems) == 0, Errors: problems}, nil
}

func (s *metadataSchemaService) ListTypes() []ContentTypeInfo {
	all := types.ContentTypes()
	out := make([]ContentTypeInfo, 0, len(all))
	for _, t := range all {
		out = append(out, ContentTypeInfo{Type: t, DisplayName: t.DisplayName()})
	}
	return out
}

func (s *metadataSchemaService) ListKeys(ctx context.Context, rawType string) ([]string, error) {
	var t types.ContentType
	if strings.TrimSpace(rawType) != "" {
		parsed, err := parseTypeParam(rawType)
		if err != nil {
			return nil, err
		}
		t = parsed
	}
	keys, err := s.entryRepo.DistinctKeys(dbctx.Of(ctx), t)
	if err != nil {
		return nil, s.fail("list metadata keys", err)
	}
	return keys, nil
}

type defaultSchemaEntry struct {
	Key          string `yaml:"key"`
	DisplayName  string `yaml:"displayName"`
	DataType     string `yaml:"dataType"`
	IsRequired   bool   `yaml:"isRequired"`
	DisplayOrder int    `yaml:"displayOrder"`
}

func loadDefaultSchema(raw []byte) ([]*types.MetadataSchema, error) {
	var doc map[string][]defaultSchemaEntry
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse default metadata schema: %w", err)
	}
	out := []*types.MetadataSchema{}
	for _, t := range types.ContentTypes() {
		for _, e := range doc[string(t)] {
			row, err := normalizeSchemaInput(t, MetadataSchemaInput{
				Key:          e.Key,
				DisplayName:  e.DisplayName,
				DataType:     e.DataType,
				IsRequired:   e.IsRequired,
				DisplayOrder: e.DisplayOrder,
			})
			if err != nil {
				return nil, fmt.Errorf("default metadata schema %s.%s: %w", t, e.Key, err)
			}
			out = append(out, row)
		}
	}
	for rawType := range doc {
		if _, ok := types.ParseContentType(rawType); !ok {
			return nil, fmt.Errorf("default metadata schema: unknown content type %q", rawType)
		}
	}
	return out, nil
}

// SeedDefaults inserts the embedded definitions when the table is empty and reports how many
// rows were written.
func (s *metadataSchemaService) SeedDefaults(ctx context.Context) (int, error) {
	rows, err := loadDefaultSchema(defaultSchemaYAML)
	if err != nil {
		return 0, err
	}
	inserted := 0
	err = s.tx.InTx(ctx, func(dbc dbctx.Context) error {
		n, err := s.schemaRepo.Count(dbc)
		if err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
		if _, err := s.schemaRepo.Create(dbc, rows); err != nil {
			return err
		}
		inserted = len(rows)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("seed metadata schema: %w", err)
	}
	if inserted > 0 {
		for _, t := range types.ContentTypes() {
			s.invalidate(ctx, t)
		}
		s.log.Info("seeded default metadata schema", "rows", inserted)
	}
	return inserted, nil
}

// Warm loads every type's schema into the cache.
func (s *metadataSchemaService) Warm(ctx context.Context) error {
	for _, t := range types.ContentTypes() {
		defs, err := s.SchemaFor(ctx, t)
		if err != nil {
			return fmt.Errorf("warm schema cache for %s: %w", t, err)
		}
		s.log.Debug("schema cache warmed", "content_type", t, "definitions", len(defs))
	}
	return nil
}

func (s *metadataSchemaService) fail(op string, err error) error {
	if _, ok := apierr.As(err); ok {
		return err
	}
	s.log.Error(op+" failed", "error", err)
	return apierr.Internal(err)
}
