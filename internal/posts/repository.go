package posts

import (
	"context"

	"github.com/google/uuid"
)

// ListQuery filters post listings. Nil pointers do not filter.
type ListQuery struct {
	Published  *bool
	Featured   *bool
	CategoryID *uuid.UUID
	Tag        string
	Limit      int
	Offset     int
}

// PostRepository persists posts.
type PostRepository interface {
	Create(ctx context.Context, post *Post) (*Post, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Post, error)
	GetBySlug(ctx context.Context, slug string) (*Post, error)
	List(ctx context.Context, query ListQuery) ([]*Post, int, error)
	Update(ctx context.Context, post *Post) (*Post, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CategoryRepository persists categories.
type CategoryRepository interface {
	Create(ctx context.Context, category *Category) (*Category, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Category, error)
	GetBySlug(ctx context.Context, slug string) (*Category, error)
	List(ctx context.Context) ([]*Category, error)
}
