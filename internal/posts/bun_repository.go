package posts

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-blog/internal/content"
	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	cache "github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

const (
	postNamespace     = "post"
	categoryNamespace = "category"
)

// NewPostRecordRepository creates a repository for Post entities keyed by slug.
func NewPostRecordRepository(db *bun.DB) repository.Repository[*Post] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Post]{
		NewRecord: func() *Post { return &Post{} },
		GetID: func(p *Post) uuid.UUID {
			return p.ID
		},
		SetID: func(p *Post, id uuid.UUID) {
			p.ID = id
		},
		GetIdentifier: func() string {
			return "slug"
		},
		GetIdentifierValue: func(p *Post) string {
			return p.Slug
		},
	})
}

// NewCategoryRecordRepository creates a repository for Category entities keyed by slug.
func NewCategoryRecordRepository(db *bun.DB) repository.Repository[*Category] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Category]{
		NewRecord: func() *Category { return &Category{} },
		GetID: func(c *Category) uuid.UUID {
			return c.ID
		},
		SetID: func(c *Category, id uuid.UUID) {
			c.ID = id
		},
		GetIdentifier: func() string {
			return "slug"
		},
		GetIdentifierValue: func(c *Category) string {
			return c.Slug
		},
	})
}

// BunPostRepository implements PostRepository with optional caching.
type BunPostRepository struct {
	db           *bun.DB
	repo         repository.Repository[*Post]
	cacheService cache.CacheService
	cachePrefix  string
}

// NewBunPostRepository creates a post repository without caching.
func NewBunPostRepository(db *bun.DB) *BunPostRepository {
	return NewBunPostRepositoryWithCache(db, nil, nil)
}

// NewBunPostRepositoryWithCache creates a post repository with caching services.
func NewBunPostRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunPostRepository {
	base := NewPostRecordRepository(db)
	var svc cache.CacheService
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
		svc = cacheService
	}
	prefix := ""
	if svc != nil {
		prefix = cachePrefix(postNamespace)
	}
	return &BunPostRepository{db: db, repo: base, cacheService: svc, cachePrefix: prefix}
}

func (r *BunPostRepository) Create(ctx context.Context, post *Post) (*Post, error) {
	record, err := r.repo.Create(ctx, post)
	if err != nil {
		return nil, mapRepositoryError(err, postNamespace, post.Slug)
	}
	if err := r.InvalidateCache(ctx); err != nil {
		return nil, err
	}
	return record, nil
}

func (r *BunPostRepository) GetByID(ctx context.Context, id uuid.UUID) (*Post, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, postNamespace, id.String())
	}
	return record, nil
}

func (r *BunPostRepository) GetBySlug(ctx context.Context, slug string) (*Post, error) {
	record, err := r.repo.GetByIdentifier(ctx, slug)
	if err != nil {
		return nil, mapRepositoryError(err, postNamespace, slug)
	}
	return record, nil
}

func (r *BunPostRepository) List(ctx context.Context, query ListQuery) ([]*Post, int, error) {
	filter := repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return r.applyQuery(q, query).
			OrderExpr("?TableAlias.date DESC").
			OrderExpr("?TableAlias.created_at DESC")
	})

	var (
		records []*Post
		total   int
		err     error
	)
	if query.Limit > 0 {
		records, total, err = r.repo.List(ctx, filter, repository.SelectPaginate(query.Limit, max(query.Offset, 0)))
	} else {
		records, total, err = r.repo.List(ctx, filter)
	}
	if err != nil {
		return nil, 0, mapRepositoryError(err, postNamespace, "list")
	}
	return records, total, nil
}

func (r *BunPostRepository) applyQuery(q *bun.SelectQuery, query ListQuery) *bun.SelectQuery {
	if query.Published != nil {
		q = q.Where("?TableAlias.published = ?", *query.Published)
	}
	if query.Featured != nil {
		q = q.Where("?TableAlias.featured = ?", *query.Featured)
	}
	if query.CategoryID != nil {
		q = q.Where("?TableAlias.category_id = ?", *query.CategoryID)
	}
	if query.Tag != "" {
		if r.db.Dialect().Name() == dialect.PG {
			encoded, _ := json.Marshal([]string{query.Tag})
			q = q.Where("?TableAlias.tags @> ?::jsonb", string(encoded))
		} else {
			q = q.Where("EXISTS (SELECT 1 FROM json_each(?TableAlias.tags) AS tag WHERE tag.value = ?)", query.Tag)
		}
	}
	return q
}

func (r *BunPostRepository) Update(ctx context.Context, post *Post) (*Post, error) {
	record, err := r.repo.Update(ctx, post)
	if err != nil {
		return nil, mapRepositoryError(err, postNamespace, post.ID.String())
	}
	if err := r.InvalidateCache(ctx); err != nil {
		return nil, err
	}
	return record, nil
}

func (r *BunPostRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.repo.Delete(ctx, &Post{ID: id}); err != nil {
		return mapRepositoryError(err, postNamespace, id.String())
	}
	return r.InvalidateCache(ctx)
}

// InvalidateCache drops every cached post lookup.
func (r *BunPostRepository) InvalidateCache(ctx context.Context) error {
	if r.cacheService == nil || r.cachePrefix == "" {
		return nil
	}
	return r.cacheService.DeleteByPrefix(ctx, r.cachePrefix)
}

// BunCategoryRepository implements CategoryRepository with optional caching.
type BunCategoryRepository struct {
	repo         repository.Repository[*Category]
	cacheService cache.CacheService
	cachePrefix  string
}

// NewBunCategoryRepository creates a category repository without caching.
func NewBunCategoryRepository(db *bun.DB) *BunCategoryRepository {
	return NewBunCategoryRepositoryWithCache(db, nil, nil)
}

// NewBunCategoryRepositoryWithCache creates a category repository with caching services.
func NewBunCategoryRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunCategoryRepository {
	base := NewCategoryRecordRepository(db)
	var svc cache.CacheService
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
		svc = cacheService
	}
	prefix := ""
	if svc != nil {
		prefix = cachePrefix(categoryNamespace)
	}
	return &BunCategoryRepository{repo: base, cacheService: svc, cachePrefix: prefix}
}

func (r *BunCategoryRepository) Create(ctx context.Context, category *Category) (*Category, error) {
	record, err := r.repo.Create(ctx, category)
	if err != nil {
		return nil, mapRepositoryError(err, categoryNamespace, category.Slug)
	}
	if err := r.InvalidateCache(ctx); err != nil {
		return nil, err
	}
	return record, nil
}

func (r *BunCategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*Category, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, categoryNamespace, id.String())
	}
	return record, nil
}

func (r *BunCategoryRepository) GetBySlug(ctx context.Context, slug string) (*Category, error) {
	record, err := r.repo.GetByIdentifier(ctx, slug)
	if err != nil {
		return nil, mapRepositoryError(err, categoryNamespace, slug)
	}
	return record, nil
}

func (r *BunCategoryRepository) List(ctx context.Context) ([]*Category, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("?TableAlias.name ASC")
		}),
	)
	if err != nil {
		return nil, mapRepositoryError(err, categoryNamespace, "list")
	}
	return records, nil
}

// InvalidateCache drops every cached category lookup.
func (r *BunCategoryRepository) InvalidateCache(ctx context.Context) error {
	if r.cacheService == nil || r.cachePrefix == "" {
		return nil
	}
	return r.cacheService.DeleteByPrefix(ctx, r.cachePrefix)
}

// CreateSchema creates the tables backing posts and categories when missing.
func CreateSchema(ctx context.Context, db bun.IDB) error {
	for _, model := range Models() {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("posts: create table for %T: %w", model, err)
		}
	}
	return nil
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}

	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &content.NotFoundError{Resource: resource, Key: key}
	}

	return fmt.Errorf("%s repository error: %w", resource, err)
}

func cachePrefix(namespace string) string {
	if namespace == "" {
		return ""
	}
	return namespace + cache.KeySeparator
}
