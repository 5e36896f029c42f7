package posts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-blog/internal/content"
	"github.com/goliatone/go-blog/internal/headings"
	"github.com/goliatone/go-blog/internal/identity"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/pkg/interfaces"
	"github.com/goliatone/go-slug"
	"github.com/google/uuid"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	DefaultShelf    = 5
)

var (
	ErrValidation       = errors.New("posts: validation failed")
	ErrInvalidSlug      = errors.New("posts: slug has no usable characters")
	ErrCategoryNotFound = errors.New("posts: category not found")
)

// Service exposes post and category operations.
type Service interface {
	List(ctx context.Context, opts ListOptions) (*ListResult, error)
	Recent(ctx context.Context, limit int) ([]*Post, error)
	Featured(ctx context.Context, limit int) ([]*Post, error)
	ByCategory(ctx context.Context, categoryID uuid.UUID, page, limit int) (*ListResult, error)
	Get(ctx context.Context, id uuid.UUID) (*Post, error)
	GetBySlug(ctx context.Context, slug string) (*Post, error)
	Create(ctx context.Context, req CreatePostRequest) (*Post, error)
	Update(ctx context.Context, req UpdatePostRequest) (*Post, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CreateCategory(ctx context.Context, req CreateCategoryRequest) (*Category, error)
	ListCategories(ctx context.Context) ([]*Category, error)
}

// ListOptions selects a page of posts. Page is one-based.
type ListOptions struct {
	Page       int
	Limit      int
	Published  *bool
	Featured   *bool
	CategoryID *uuid.UUID
	Tag        string
}

// Pagination describes the page returned by List.
type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// ListResult bundles a page of posts with its pagination.
type ListResult struct {
	Posts      []*Post    `json:"posts"`
	Pagination Pagination `json:"pagination"`
}

// CreatePostRequest carries the fields accepted when creating a post.
type CreatePostRequest struct {
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	Slug       string     `json:"slug"`
	Excerpt    *string    `json:"excerpt,omitempty"`
	Date       *time.Time `json:"date,omitempty"`
	Author     *string    `json:"author,omitempty"`
	Tags       []string   `json:"tags,omitempty"`
	Published  *bool      `json:"published,omitempty"`
	Featured   *bool      `json:"featured,omitempty"`
	CoverImage *string    `json:"coverImage,omitempty"`
	CategoryID *uuid.UUID `json:"categoryId,omitempty"`
}

// Validate checks the required fields.
func (r CreatePostRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 300)),
		validation.Field(&r.Content, validation.Required),
		validation.Field(&r.Slug, validation.Required, validation.Length(1, 300)),
	)
}

// UpdatePostRequest applies a partial update. Nil fields are left unchanged.
type UpdatePostRequest struct {
	ID         uuid.UUID  `json:"-"`
	Title      *string    `json:"title,omitempty"`
	Content    *string    `json:"content,omitempty"`
	Slug       *string    `json:"slug,omitempty"`
	Excerpt    *string    `json:"excerpt,omitempty"`
	Date       *time.Time `json:"date,omitempty"`
	Author     *string    `json:"author,omitempty"`
	Tags       *[]string  `json:"tags,omitempty"`
	Published  *bool      `json:"published,omitempty"`
	Featured   *bool      `json:"featured,omitempty"`
	CoverImage *string    `json:"coverImage,omitempty"`
	CategoryID *uuid.UUID `json:"categoryId,omitempty"`
}

// Validate rejects blank replacements for required fields.
func (r UpdatePostRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ID, validation.By(func(value any) error {
			if value.(uuid.UUID) == uuid.Nil {
				return validation.NewError("blog.posts.id_required", "id is required")
			}
			return nil
		})),
		validation.Field(&r.Title, validation.NilOrNotEmpty),
		validation.Field(&r.Content, validation.NilOrNotEmpty),
		validation.Field(&r.Slug, validation.NilOrNotEmpty),
	)
}

// CreateCategoryRequest carries the fields accepted when creating a category.
type CreateCategoryRequest struct {
	Name        string  `json:"name"`
	Slug        string  `json:"slug,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Validate checks the required fields.
func (r CreateCategoryRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 120)),
	)
}

// ServiceOption configures the posts service.
type ServiceOption func(*service)

// WithClock overrides the time source.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithIDGenerator overrides post id generation.
func WithIDGenerator(generator func() uuid.UUID) ServiceOption {
	return func(s *service) {
		if generator != nil {
			s.newID = generator
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

type service struct {
	posts      PostRepository
	categories CategoryRepository
	now        func() time.Time
	newID      func() uuid.UUID
	logger     interfaces.Logger
}

// NewService wires the posts service.
func NewService(posts PostRepository, categories CategoryRepository, opts ...ServiceOption) Service {
	s := &service{
		posts:      posts,
		categories: categories,
		now:        time.Now,
		newID:      uuid.New,
		logger:     logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	page, limit := normalizePage(opts.Page, opts.Limit)
	records, total, err := s.posts.List(ctx, ListQuery{
		Published:  opts.Published,
		Featured:   opts.Featured,
		CategoryID: opts.CategoryID,
		Tag:        strings.TrimSpace(opts.Tag),
		Limit:      limit,
		Offset:     (page - 1) * limit,
	})
	if err != nil {
		return nil, err
	}
	return &ListResult{
		Posts: records,
		Pagination: Pagination{
			Total:      total,
			Page:       page,
			Limit:      limit,
			TotalPages: (total + limit - 1) / limit,
		},
	}, nil
}

func (s *service) Recent(ctx context.Context, limit int) ([]*Post, error) {
	return s.shelf(ctx, limit, nil)
}

func (s *service) Featured(ctx context.Context, limit int) ([]*Post, error) {
	featured := true
	return s.shelf(ctx, limit, &featured)
}

func (s *service) shelf(ctx context.Context, limit int, featured *bool) ([]*Post, error) {
	if limit <= 0 {
		limit = DefaultShelf
	}
	published := true
	records, _, err := s.posts.List(ctx, ListQuery{
		Published: &published,
		Featured:  featured,
		Limit:     min(limit, MaxPageSize),
	})
	return records, err
}

func (s *service) ByCategory(ctx context.Context, categoryID uuid.UUID, page, limit int) (*ListResult, error) {
	if _, err := s.categories.GetByID(ctx, categoryID); err != nil {
		if content.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrCategoryNotFound, categoryID)
		}
		return nil, err
	}
	published := true
	return s.List(ctx, ListOptions{
		Page:       page,
		Limit:      limit,
		Published:  &published,
		CategoryID: &categoryID,
	})
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.attachCategory(ctx, post), nil
}

func (s *service) GetBySlug(ctx context.Context, slug string) (*Post, error) {
	normalized := content.NormalizeSlug(slug)
	if normalized == "" {
		return nil, &content.NotFoundError{Resource: "post", Key: slug}
	}
	post, err := s.posts.GetBySlug(ctx, normalized)
	if err != nil {
		return nil, err
	}
	return s.attachCategory(ctx, post), nil
}

func (s *service) Create(ctx context.Context, req CreatePostRequest) (*Post, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	slugValue, err := NormalizeSlug(req.Slug)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if err := s.ensureSlugFree(ctx, slugValue, uuid.Nil); err != nil {
		return nil, err
	}
	if err := s.ensureCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	post := &Post{
		ID:         s.newID(),
		Title:      strings.TrimSpace(req.Title),
		Content:    req.Content,
		Slug:       slugValue,
		Excerpt:    trimmedPtr(req.Excerpt),
		Date:       now,
		Author:     trimmedPtr(req.Author),
		Tags:       cleanTags(req.Tags),
		CoverImage: trimmedPtr(req.CoverImage),
		CategoryID: req.CategoryID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if req.Date != nil && !req.Date.IsZero() {
		post.Date = req.Date.UTC()
	}
	if req.Published != nil {
		post.Published = *req.Published
	}
	if req.Featured != nil {
		post.Featured = *req.Featured
	}

	created, err := s.posts.Create(ctx, post)
	if err != nil {
		return nil, err
	}
	logging.WithFields(s.logger, map[string]any{"post_id": created.ID, "slug": created.Slug}).Info("posts.created")
	return created, nil
}

func (s *service) Update(ctx context.Context, req UpdatePostRequest) (*Post, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	post, err := s.posts.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Slug != nil {
		slugValue, err := NormalizeSlug(*req.Slug)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrValidation, err)
		}
		if slugValue != post.Slug {
			if err := s.ensureSlugFree(ctx, slugValue, post.ID); err != nil {
				return nil, err
			}
			post.Slug = slugValue
		}
	}
	if req.CategoryID != nil {
		if err := s.ensureCategory(ctx, req.CategoryID); err != nil {
			return nil, err
		}
		post.CategoryID = req.CategoryID
	}
	if req.Title != nil {
		post.Title = strings.TrimSpace(*req.Title)
	}
	if req.Content != nil {
		post.Content = *req.Content
	}
	if req.Excerpt != nil {
		post.Excerpt = trimmedPtr(req.Excerpt)
	}
	if req.Date != nil && !req.Date.IsZero() {
		post.Date = req.Date.UTC()
	}
	if req.Author != nil {
		post.Author = trimmedPtr(req.Author)
	}
	if req.Tags != nil {
		post.Tags = cleanTags(*req.Tags)
	}
	if req.Published != nil {
		post.Published = *req.Published
	}
	if req.Featured != nil {
		post.Featured = *req.Featured
	}
	if req.CoverImage != nil {
		post.CoverImage = trimmedPtr(req.CoverImage)
	}
	post.Category = nil
	post.UpdatedAt = s.now().UTC()

	updated, err := s.posts.Update(ctx, post)
	if err != nil {
		return nil, err
	}
	logging.WithFields(s.logger, map[string]any{"post_id": updated.ID, "slug": updated.Slug}).Info("posts.updated")
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.posts.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, id); err != nil {
		return err
	}
	logging.WithFields(s.logger, map[string]any{"post_id": id}).Info("posts.deleted")
	return nil
}

func (s *service) CreateCategory(ctx context.Context, req CreateCategoryRequest) (*Category, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	source := req.Slug
	if strings.TrimSpace(source) == "" {
		source = req.Name
	}
	slugValue, err := NormalizeSlug(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if strings.Contains(slugValue, "/") {
		return nil, fmt.Errorf("%w: category slug cannot contain '/'", ErrValidation)
	}
	if _, err := s.categories.GetBySlug(ctx, slugValue); err == nil {
		return nil, &content.ConflictError{Resource: "category", Key: slugValue}
	} else if !content.IsNotFound(err) {
		return nil, err
	}

	now := s.now().UTC()
	return s.categories.Create(ctx, &Category{
		ID:          identity.CategoryUUID(slugValue),
		Name:        strings.TrimSpace(req.Name),
		Slug:        slugValue,
		Description: trimmedPtr(req.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (s *service) ListCategories(ctx context.Context) ([]*Category, error) {
	return s.categories.List(ctx)
}

func (s *service) ensureSlugFree(ctx context.Context, slugValue string, owner uuid.UUID) error {
	existing, err := s.posts.GetBySlug(ctx, slugValue)
	switch {
	case err == nil && existing.ID != owner:
		return &content.ConflictError{Resource: "post", Key: slugValue}
	case err != nil && !content.IsNotFound(err):
		return err
	}
	return nil
}

func (s *service) ensureCategory(ctx context.Context, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	if _, err := s.categories.GetByID(ctx, *id); err != nil {
		if content.IsNotFound(err) {
			return fmt.Errorf("%w: %s", ErrCategoryNotFound, id)
		}
		return err
	}
	return nil
}

func (s *service) attachCategory(ctx context.Context, post *Post) *Post {
	if post.CategoryID == nil {
		return post
	}
	category, err := s.categories.GetByID(ctx, *post.CategoryID)
	if err != nil {
		s.logger.Warn("posts.category_lookup_failed", "post_id", post.ID, "error", err)
		return post
	}
	post.Category = category
	return post
}

// NormalizeSlug turns a free-form slug into lowercase dash-joined segments,
// keeping '/' as the segment separator.
func NormalizeSlug(raw string) (string, error) {
	segments := strings.Split(content.NormalizeSlug(raw), "/")
	out := make([]string, 0, len(segments))
	for _, segment := range segments {
		if segment == "" {
			continue
		}
		if normalized, err := slug.Normalize(segment); err == nil && normalized != "" && isASCII(segment) {
			out = append(out, normalized)
			continue
		}
		if fallback := headings.Slugify(segment); fallback != "" {
			out = append(out, fallback)
		}
	}
	if len(out) == 0 {
		return "", fmt.Errorf("%w: %q", ErrInvalidSlug, raw)
	}
	return strings.Join(out, "/"), nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	switch {
	case limit <= 0:
		limit = DefaultPageSize
	case limit > MaxPageSize:
		limit = MaxPageSize
	}
	return page, limit
}

func trimmedPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		trimmed := strings.TrimSpace(tag)
		if trimmed == "" {
			continue
		}
		if _, dup := seen[trimmed]; dup {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}

func isASCII(value string) bool {
	for i := 0; i < len(value); i++ {
		if value[i] >= 0x80 {
			return false
		}
	}
	return true
}
