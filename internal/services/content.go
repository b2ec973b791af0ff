package services

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/yungbote/philoatlas-backend/internal/data/aggregates"
	"github.com/yungbote/philoatlas-backend/internal/data/repos"
	types "github.com/yungbote/philoatlas-backend/internal/domain"
	"github.com/yungbote/philoatlas-backend/internal/platform/apierr"
	"github.com/yungbote/philoatlas-backend/internal/platform/dbctx"
	"github.com/yungbote/philoatlas-backend/internal/platform/logger"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
	maxTitleLength   = 255
)

type CreateContentInput struct {
	Title              string         `json:"title"`
	Content            string         `json:"content"`
	Description        string         `json:"description"`
	Type               string         `json:"type"`
	FullPicture        *string        `json:"full_picture"`
	DescriptionPicture *string        `json:"description_picture"`
	Metadata           map[string]any `json:"metadata"`
}

// RelationRef names a related item in an update. Only ID is used; title and type are accepted so
// clients can send back what they read.
type RelationRef struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title,omitempty"`
	Type  string    `json:"type,omitempty"`
}

// UpdateContentInput is a partial update. Nil fields are left alone; a non-nil relation slice,
// even an empty one, replaces the item's whole relationship set.
type UpdateContentInput struct {
	Title              *string        `json:"title"`
	Content            *string        `json:"content"`
	Description        *string        `json:"description"`
	Type               *string        `json:"type"`
	FullPicture        *string        `json:"full_picture"`
	DescriptionPicture *string        `json:"description_picture"`
	Metadata           map[string]any `json:"metadata"`
	Philosopher        []RelationRef  `json:"philosopher"`
	Question           []RelationRef  `json:"question"`
	Term               []RelationRef  `json:"term"`
}

func (in UpdateContentInput) hasRelations() bool {
	return in.Philosopher != nil || in.Question != nil || in.Term != nil
}

type ListContentQuery struct {
	Page   int
	Limit  int
	Search string
	Type   string
}

// ContentListItem is one row of a listing: scalar fields plus flattened metadata.
type ContentListItem struct {
	ID                 uuid.UUID         `json:"id"`
	Title              string            `json:"title"`
	Content            string            `json:"content"`
	Description        string            `json:"description"`
	Type               types.ContentType `json:"type"`
	TypeDisplayName    string            `json:"type_display_name"`
	FullPicture        *string           `json:"full_picture"`
	DescriptionPicture *string           `json:"description_picture"`
	Metadata           map[string]any    `json:"metadata"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

// ContentView is a fully hydrated item with its related items grouped by their type.
type ContentView struct {
	ContentListItem
	Philosopher []*types.RelatedContent `json:"philosopher"`
	Question    []*types.RelatedContent `json:"question"`
	Term        []*types.RelatedContent `json:"term"`
}

func (v *ContentView) Related() []*types.RelatedContent {
	out := make([]*types.RelatedContent, 0, len(v.Philosopher)+len(v.Question)+len(v.Term))
	out = append(out, v.Philosopher...)
	out = append(out, v.Question...)
	return append(out, v.Term...)
}

type ContentPage struct {
	Items []*ContentListItem `json:"items"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

// ContentGraphMirror receives committed relationship changes. Errors are logged, never returned
// to API callers.
type ContentGraphMirror interface {
	SyncNeighborhood(ctx context.Context, center *types.Content, related []*types.RelatedContent) error
	Link(ctx context.Context, a, b *types.Content) error
	Delete(ctx context.Context, ids []uuid.UUID) error
}

type ContentService interface {
	Create(ctx context.Context, in CreateContentInput) (*ContentView, error)
	FindAll(ctx context.Context, q ListContentQuery) (*ContentPage, error)
	FindOne(ctx context.Context, id uuid.UUID) (*ContentView, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateContentInput) (*ContentView, error)
	Remove(ctx context.Context, id uuid.UUID) error
	LinkContents(ctx context.Context, id1, id2 uuid.UUID) error
	FindRelated(ctx context.Context, id uuid.UUID, rawType string) ([]*types.RelatedContent, error)
}

type contentService struct {
	log       *logger.Logger
	tx        aggregates.TxRunner
	contents  repos.ContentRepo
	entries   repos.MetadataEntryRepo
	relations repos.ContentRelationshipRepo
	schemas   MetadataSchemaService
	graph     ContentGraphMirror
}

func NewContentService(
	log *logger.Logger,
	tx aggregates.TxRunner,
	contents repos.ContentRepo,
	entries repos.MetadataEntryRepo,
	relations repos.ContentRelationshipRepo,
	schemas MetadataSchemaService,
	graph ContentGraphMirror,
) ContentService {
	return &contentService{
		log:       log.With("service", "ContentService"),
		tx:        tx,
		contents:  contents,
		entries:   entries,
		relations: relations,
		schemas:   schemas,
		graph:     graph,
	}
}

func validateTitle(raw string) (string, error) {
	title := strings.TrimSpace(raw)
	if title == "" {
		return "", apierr.Validation("title is required")
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return "", apierr.Validation("title must be at most %d characters", maxTitleLength)
	}
	return title, nil
}

func normalizePicture(raw *string) *string {
	if raw == nil {
		return nil
	}
	v := strings.TrimSpace(*raw)
	if v == "" {
		return nil
	}
	return &v
}

func (s *contentService) Create(ctx context.Context, in CreateContentInput) (*ContentView, error) {
	title, err := validateTitle(in.Title)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Type) == "" {
		return nil, apierr.Validation("type is required")
	}
	t, err := parseTypeParam(in.Type)
	if err != nil {
		return nil, err
	}
	row := &types.Content{
		Title:              title,
		Body:               in.Content,
		Description:        in.Description,
		Type:               t,
		FullPicture:        normalizePicture(in.FullPicture),
		DescriptionPicture: normalizePicture(in.DescriptionPicture),
	}
	if err := types.ValidateContent(row); err != nil {
		return nil, apierr.Validation("%v", err)
	}

	var metadata map[string]string
	if in.Metadata != nil {
		if metadata, err = StringifyMetadata(in.Metadata); err != nil {
			return nil, apierr.Validation("%v", err)
		}
	}

	err = s.tx.InTx(ctx, func(dbc dbctx.Context) error {
		if _, err := s.contents.Create(dbc, []*types.Content{row}); err != nil {
			return err
		}
		if metadata != nil {
			if _, err := s.entries.ReplaceForContent(dbc, row.ID, metadata); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, s.fail("create content", err)
	}
	s.log.Info("content created", "content_id", row.ID, "type", row.Type)

	view, err := s.FindOne(ctx, row.ID)
	if err != nil {
		return nil, err
	}
	s.mirror(ctx, row, view)
	return view, nil
}

func (s *contentService) FindAll(ctx context.Context, q ListContentQuery) (*ContentPage, error) {
	page, limit := q.Page, q.Limit
	if page < 0 || limit < 0 {
		return nil, apierr.Validation("page and limit must be positive")
	}
	if page == 0 {
		page = 1
	}
	if limit == 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}

	var t types.ContentType
	if strings.TrimSpace(q.Type) != "" {
		parsed, err := parseTypeParam(q.Type)
		if err != nil {
			return nil, err
		}
		t = parsed
	}

	rows, total, err := s.contents.List(dbctx.Of(ctx), repos.ContentListFilter{
		Search: q.Search,
		Type:   t,
		Offset: (page - 1) * limit,
		Limit:  limit,
	})
	if err != nil {
		return nil, s.fail("list content", err)
	}

	schemaByType := map[types.ContentType][]*types.MetadataSchema{}
	items := make([]*ContentListItem, 0, len(rows))
	for _, row := range rows {
		schema, ok := schemaByType[row.Type]
		if !ok {
			schema = s.schemaFor(ctx, row.Type)
			schemaByType[row.Type] = schema
		}
		items = append(items, toListItem(row, schema))
	}
	return &ContentPage{Items: items, Total: total, Page: page, Limit: limit}, nil
}

func (s *contentService) FindOne(ctx context.Context, id uuid.UUID) (*ContentView, error) {
	dbc := dbctx.Of(ctx)
	row, err := s.contents.GetByID(dbc, id)
	if err != nil {
		return nil, s.fail("load content", err)
	}
	if row == nil {
		return nil, apierr.NotFound("content %s not found", id)
	}
	related, err := s.relations.GetRelatedContents(dbc, id, "")
	if err != nil {
		return nil, s.fail("load related content", err)
	}

	view := &ContentView{
		ContentListItem: *toListItem(row, s.schemaFor(ctx, row.Type)),
		Philosopher:     []*types.RelatedContent{},
		Question:        []*types.RelatedContent{},
		Term:            []*types.RelatedContent{},
	}
	for _, r := range related {
		switch r.Type {
		case types.ContentTypePhilosopher:
			view.Philosopher = append(view.Philosopher, r)
		case types.ContentTypeQuestion:
			view.Question = append(view.Question, r)
		case types.ContentTypeTerm:
			view.Term = append(view.Term, r)
		}
	}
	return view, nil
}

func (s *contentService) Update(ctx context.Context, id uuid.UUID, in UpdateContentInput) (*ContentView, error) {
	var metadata map[string]string
	if in.Metadata != nil {
		var err error
		if metadata, err = StringifyMetadata(in.Metadata); err != nil {
			return nil, apierr.Validation("%v", err)
		}
	}

	var updated *types.Content
	err := s.tx.InTx(ctx, func(dbc dbctx.Context) error {
		existing, err := s.contents.GetByID(dbc, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return apierr.NotFound("content %s not found", id)
		}

		fields, err := applyPatch(existing, in)
		if err != nil {
			return err
		}
		if err := s.contents.UpdateFields(dbc, id, fields); err != nil {
			return err
		}
		if metadata != nil {
			if _, err := s.entries.ReplaceForContent(dbc, id, metadata); err != nil {
				return err
			}
		}
		if in.hasRelations() {
			if err := s.replaceRelations(dbc, id, in); err != nil {
				return err
			}
		}
		updated = existing
		return nil
	})
	if err != nil {
		return nil, s.fail("update content", err)
	}
	s.log.Info("content updated", "content_id", id, "relations_replaced", in.hasRelations(), "metadata_replaced", metadata != nil)

	view, err := s.FindOne(ctx, id)
	if err != nil {
		return nil, err
	}
	s.mirror(ctx, updated, view)
	return view, nil
}

// applyPatch merges the scalar fields of in onto c and returns the columns to write.
func applyPatch(c *types.Content, in UpdateContentInput) (map[string]any, error) {
	fields := map[string]any{"updated_at": time.Now().UTC()}
	if in.Type != nil {
		t, ok := types.ParseContentType(*in.Type)
		if !ok {
			return nil, apierr.Validation("unknown content type %q", strings.TrimSpace(*in.Type))
		}
		if t != c.Type {
			return nil, apierr.Validation("content type cannot be changed from %s to %s", c.Type, t)
		}
	}
	if in.Title != nil {
		title, err := validateTitle(*in.Title)
		if err != nil {
			return nil, err
		}
		c.Title = title
		fields["title"] = title
	}
	if in.Content != nil {
		c.Body = *in.Content
		fields["content"] = *in.Content
	}
	if in.Description != nil {
		c.Description = *in.Description
		fields["description"] = *in.Description
	}
	if in.FullPicture != nil {
		c.FullPicture = normalizePicture(in.FullPicture)
		fields["full_picture"] = c.FullPicture
	}
	if in.DescriptionPicture != nil {
		c.DescriptionPicture = normalizePicture(in.DescriptionPicture)
		fields["description_picture"] = c.DescriptionPicture
	}
	if err := types.ValidateContent(c); err != nil {
		return nil, apierr.Validation("%v", err)
	}
	return fields, nil
}

func (s *contentService) replaceRelations(dbc dbctx.Context, id uuid.UUID, in UpdateContentInput) error {
	seen := map[uuid.UUID]bool{}
	targets := []uuid.UUID{}
	for _, group := range [][]RelationRef{in.Philosopher, in.Question, in.Term} {
		for _, ref := range group {
			if ref.ID == uuid.Nil {
				return apierr.Validation("related items need an id")
			}
			if ref.ID == id || seen[ref.ID] {
				continue
			}
			seen[ref.ID] = true
			targets = append(targets, ref.ID)
		}
	}

	if len(targets) > 0 {
		found, err := s.contents.ExistingIDs(dbc, targets)
		if err != nil {
			return err
		}
		if missing := missingIDs(targets, found); len(missing) > 0 {
			return apierr.NotFound("related content %s not found", missing[0])
		}
	}

	if err := s.relations.FullDeleteByContentIDs(dbc, []uuid.UUID{id}); err != nil {
		return err
	}
	pairs := make([]repos.ContentPair, 0, len(targets))
	for _, target := range targets {
		pairs = append(pairs, repos.ContentPair{A: id, B: target})
	}
	_, err := s.relations.CreatePairs(dbc, pairs)
	return err
}

func missingIDs(want, found []uuid.UUID) []uuid.UUID {
	have := make(map[uuid.UUID]bool, len(found))
	for _, id := range found {
		have[id] = true
	}
	var out []uuid.UUID
	for _, id := range want {
		if !have[id] {
			out = append(out, id)
		}
	}
	return out
}

func (s *contentService) Remove(ctx context.Context, id uuid.UUID) error {
	err := s.tx.InTx(ctx, func(dbc dbctx.Context) error {
		found, err := s.contents.ExistingIDs(dbc, []uuid.UUID{id})
		if err != nil {
			return err
		}
		if len(found) == 0 {
			return apierr.NotFound("content %s not found", id)
		}
		ids := []uuid.UUID{id}
		if err := s.relations.FullDeleteByContentIDs(dbc, ids); err != nil {
			return err
		}
		if err := s.entries.FullDeleteByContentIDs(dbc, ids); err != nil {
			return err
		}
		return s.contents.FullDeleteByIDs(dbc, ids)
	})
	if err != nil {
		return s.fail("remove content", err)
	}
	s.log.Info("content removed", "content_id", id)

	if s.graph != nil {
		if err := s.graph.Delete(ctx, []uuid.UUID{id}); err != nil {
			s.log.Warn("graph mirror delete failed", "content_id", id, "error", err)
		}
	}
	return nil
}

func (s *contentService) LinkContents(ctx context.Context, id1, id2 uuid.UUID) error {
	if id1 == uuid.Nil || id2 == uuid.Nil {
		return apierr.Validation("contentId1 and contentId2 are required")
	}
	if id1 == id2 {
		return apierr.Validation("content cannot be linked to itself")
	}

	var a, b *types.Content
	err := s.tx.InTx(ctx, func(dbc dbctx.Context) error {
		rows, err := s.contents.GetByIDs(dbc, []uuid.UUID{id1, id2})
		if err != nil {
			return err
		}
		for _, r := range rows {
			switch r.ID {
			case id1:
				a = r
			case id2:
				b = r
			}
		}
		if a == nil {
			return apierr.NotFound("content %s not found", id1)
		}
		if b == nil {
			return apierr.NotFound("content %s not found", id2)
		}
		_, err = s.relations.CreatePairs(dbc, []repos.ContentPair{{A: id1, B: id2}})
		return err
	})
	if err != nil {
		return s.fail("link content", err)
	}
	s.log.Info("content linked", "content_id", id1, "related_id", id2)

	if s.graph != nil {
		if err := s.graph.Link(ctx, a, b); err != nil {
			s.log.Warn("graph mirror link failed", "content_id", id1, "related_id", id2, "error", err)
		}
	}
	return nil
}

func (s *contentService) FindRelated(ctx context.Context, id uuid.UUID, rawType string) ([]*types.RelatedContent, error) {
	var t types.ContentType
	if strings.TrimSpace(rawType) != "" {
		parsed, err := parseTypeParam(rawType)
		if err != nil {
			return nil, err
		}
		t = parsed
	}
	dbc := dbctx.Of(ctx)
	found, err := s.contents.ExistingIDs(dbc, []uuid.UUID{id})
	if err != nil {
		return nil, s.fail("load content", err)
	}
	if len(found) == 0 {
		return nil, apierr.NotFound("content %s not found", id)
	}
	related, err := s.relations.GetRelatedContents(dbc, id, t)
	if err != nil {
		return nil, s.fail("load related content", err)
	}
	return related, nil
}

// schemaFor degrades to schema-less conversion when the schema cannot be loaded.
func (s *contentService) schemaFor(ctx context.Context, t types.ContentType) []*types.MetadataSchema {
	if s.schemas == nil {
		return nil
	}
	defs, err := s.schemas.SchemaFor(ctx, t)
	if err != nil {
		s.log.Warn("metadata schema unavailable, inferring value types", "content_type", t, "error", err)
		return nil
	}
	return defs
}

func (s *contentService) mirror(ctx context.Context, row *types.Content, view *ContentView) {
	if s.graph == nil || row == nil || view == nil {
		return
	}
	if err := s.graph.SyncNeighborhood(ctx, row, view.Related()); err != nil {
		s.log.Warn("graph mirror sync failed", "content_id", row.ID, "error", err)
	}
}

func (s *contentService) fail(op string, err error) error {
	if _, ok := apierr.As(err); ok {
		return err
	}
	s.log.Error(op+" failed", "error", err)
	return apierr.Internal(err)
}

func toListItem(row *types.Content, schema []*types.MetadataSchema) *ContentListItem {
	return &ContentListItem{
		ID:                 row.ID,
		Title:              row.Title,
		Content:            row.Body,
		Description:        row.Description,
		Type:               row.Type,
		TypeDisplayName:    row.Type.DisplayName(),
		FullPicture:        row.FullPicture,
		DescriptionPicture: row.DescriptionPicture,
		Metadata:           ConvertMetadataEntriesToJSON(row.Metadata, schema),
		CreatedAt:          row.CreatedAt,
		UpdatedAt:          row.UpdatedAt,
	}
}
